package sqlite

const schema = `
-- Saved probe targets
CREATE TABLE IF NOT EXISTS targets (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    host TEXT NOT NULL,
    port INTEGER NOT NULL DEFAULT 80,
    timeout_ms INTEGER NOT NULL DEFAULT 5000,
    use_icmp BOOLEAN DEFAULT 1,
    use_tcp BOOLEAN DEFAULT 1,
    enabled BOOLEAN DEFAULT 1,
    tags TEXT,
    notes TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Application settings
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Indexes for performance
CREATE INDEX IF NOT EXISTS idx_targets_enabled ON targets(enabled);
CREATE INDEX IF NOT EXISTS idx_targets_host ON targets(host);

-- Triggers for updated_at
CREATE TRIGGER IF NOT EXISTS update_targets_timestamp AFTER UPDATE ON targets
BEGIN
    UPDATE targets SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
END;

CREATE TRIGGER IF NOT EXISTS update_settings_timestamp AFTER UPDATE ON settings
BEGIN
    UPDATE settings SET updated_at = CURRENT_TIMESTAMP WHERE key = NEW.key;
END;
`

const defaultData = `
-- Insert default settings
INSERT OR IGNORE INTO settings (key, value) VALUES
    ('probe_timeout_ms', '5000'),
    ('probe_workers', '10'),
    ('monitor_interval_ms', '5000'),
    ('use_icmp', 'true'),
    ('use_tcp', 'true'),
    ('ping_binary', 'ping'),
    ('watch_interval_s', '60'),
    ('log_level', 'info');
`

// runMigrations executes the database schema and default data
func runMigrations(db *DB) error {
	// Execute schema
	if _, err := db.db.Exec(schema); err != nil {
		return err
	}

	// Insert default data
	if _, err := db.db.Exec(defaultData); err != nil {
		return err
	}

	return nil
}
