// Package netstate answers cheap questions about the host's network: is any
// path with internet capability up, and what kind of link carries it.
package netstate

import (
	"net"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Network types reported by NetworkType.
const (
	TypeWiFi     = "WiFi"
	TypeCellular = "Cellular"
	TypeEthernet = "Ethernet"
	TypeUnknown  = "Unknown"
)

// Interface is the subset of net.Interface the inspector needs.
type Interface struct {
	Name  string
	Flags net.Flags
	Addrs []net.Addr
}

// InterfaceLister enumerates the host's network interfaces.
type InterfaceLister func() ([]Interface, error)

// Inspector queries the OS for the active network.
type Inspector struct {
	list       InterfaceLister
	isWireless func(name string) bool
	logger     *zap.Logger
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithLister replaces the OS interface enumeration.
func WithLister(fn InterfaceLister) Option {
	return func(i *Inspector) {
		if fn != nil {
			i.list = fn
		}
	}
}

// WithWirelessCheck replaces the sysfs wireless lookup.
func WithWirelessCheck(fn func(name string) bool) Option {
	return func(i *Inspector) {
		if fn != nil {
			i.isWireless = fn
		}
	}
}

// WithLogger sets the logger used for query failures.
func WithLogger(logger *zap.Logger) Option {
	return func(i *Inspector) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// New returns an Inspector backed by net.Interfaces.
func New(opts ...Option) *Inspector {
	i := &Inspector{
		list:       systemInterfaces,
		isWireless: sysfsWireless,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Available reports whether an active network with internet capability
// exists. Any query failure counts as unavailable.
func (i *Inspector) Available() bool {
	_, ok := i.active()
	return ok
}

// NetworkType classifies the active network's transport. Any query failure
// yields TypeUnknown.
func (i *Inspector) NetworkType() string {
	iface, ok := i.active()
	if !ok {
		return TypeUnknown
	}
	return i.classify(iface.Name)
}

// active returns the first interface that is up, not loopback, and holds a
// global unicast address.
func (i *Inspector) active() (iface Interface, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			i.logger.Warn("network query panicked", zap.Any("panic", r))
			ok = false
		}
	}()

	ifaces, err := i.list()
	if err != nil {
		i.logger.Warn("failed to list interfaces", zap.Error(err))
		return Interface{}, false
	}
	for _, candidate := range ifaces {
		if candidate.Flags&net.FlagUp == 0 || candidate.Flags&net.FlagLoopback != 0 {
			continue
		}
		if hasGlobalUnicast(candidate.Addrs) {
			return candidate, true
		}
	}
	return Interface{}, false
}

func (i *Inspector) classify(name string) string {
	lower := strings.ToLower(name)
	switch {
	case i.isWireless(name), hasAnyPrefix(lower, "wl", "wlan", "wifi", "ath"):
		return TypeWiFi
	case hasAnyPrefix(lower, "wwan", "rmnet", "ccmni", "pdp", "usb"):
		return TypeCellular
	case hasAnyPrefix(lower, "eth", "en"):
		return TypeEthernet
	default:
		return TypeUnknown
	}
}

func hasGlobalUnicast(addrs []net.Addr) bool {
	for _, addr := range addrs {
		var ip net.IP
		switch v := addr.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		}
		if ip != nil && ip.IsGlobalUnicast() {
			return true
		}
	}
	return false
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func systemInterfaces() ([]Interface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	out := make([]Interface, 0, len(ifaces))
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		out = append(out, Interface{Name: iface.Name, Flags: iface.Flags, Addrs: addrs})
	}
	return out, nil
}

// sysfsWireless reports whether Linux exposes a wireless directory for name.
func sysfsWireless(name string) bool {
	_, err := os.Stat(filepath.Join("/sys/class/net", name, "wireless"))
	return err == nil
}
