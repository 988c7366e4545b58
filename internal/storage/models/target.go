package models

import "time"

// Target is a saved host:port probed by batch --saved and watch.
type Target struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Host      string    `json:"host"`
	Port      int       `json:"port"`
	TimeoutMS int       `json:"timeout_ms"`
	UseICMP   bool      `json:"use_icmp"`
	UseTCP    bool      `json:"use_tcp"`
	Enabled   bool      `json:"enabled"`
	Tags      []string  `json:"tags,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
