package netstate

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ipNet(s string) *net.IPNet {
	return &net.IPNet{IP: net.ParseIP(s), Mask: net.CIDRMask(24, 32)}
}

var loopback = Interface{
	Name:  "lo",
	Flags: net.FlagUp | net.FlagLoopback,
	Addrs: []net.Addr{ipNet("127.0.0.1")},
}

func inspector(ifaces ...Interface) *Inspector {
	return New(
		WithLister(func() ([]Interface, error) { return ifaces, nil }),
		WithWirelessCheck(func(string) bool { return false }),
	)
}

func TestNetworkType(t *testing.T) {
	tests := []struct {
		name  string
		iface string
		want  string
	}{
		{name: "wifi", iface: "wlan0", want: TypeWiFi},
		{name: "predictable wifi", iface: "wlp3s0", want: TypeWiFi},
		{name: "ethernet", iface: "eth0", want: TypeEthernet},
		{name: "predictable ethernet", iface: "enp0s31f6", want: TypeEthernet},
		{name: "cellular", iface: "rmnet_data0", want: TypeCellular},
		{name: "modem", iface: "wwan0", want: TypeCellular},
		{name: "tunnel", iface: "tun0", want: TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := inspector(loopback, Interface{
				Name:  tt.iface,
				Flags: net.FlagUp,
				Addrs: []net.Addr{ipNet("192.168.1.10")},
			})
			assert.True(t, i.Available())
			assert.Equal(t, tt.want, i.NetworkType())
		})
	}
}

func TestWirelessCheckWins(t *testing.T) {
	i := New(
		WithLister(func() ([]Interface, error) {
			return []Interface{{Name: "enx001122", Flags: net.FlagUp, Addrs: []net.Addr{ipNet("10.0.0.2")}}}, nil
		}),
		WithWirelessCheck(func(name string) bool { return name == "enx001122" }),
	)
	assert.Equal(t, TypeWiFi, i.NetworkType())
}

func TestUnavailable(t *testing.T) {
	tests := []struct {
		name   string
		ifaces []Interface
	}{
		{name: "loopback only", ifaces: []Interface{loopback}},
		{name: "interface down", ifaces: []Interface{{Name: "eth0", Addrs: []net.Addr{ipNet("192.168.1.10")}}}},
		{name: "link-local only", ifaces: []Interface{{Name: "eth0", Flags: net.FlagUp, Addrs: []net.Addr{ipNet("169.254.3.4")}}}},
		{name: "no addresses", ifaces: []Interface{{Name: "wlan0", Flags: net.FlagUp}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := inspector(tt.ifaces...)
			assert.False(t, i.Available())
			assert.Equal(t, TypeUnknown, i.NetworkType())
		})
	}
}

func TestQueryFailuresAreUnavailable(t *testing.T) {
	failing := New(WithLister(func() ([]Interface, error) { return nil, errors.New("netlink: permission denied") }))
	assert.False(t, failing.Available())
	assert.Equal(t, TypeUnknown, failing.NetworkType())

	panicking := New(WithLister(func() ([]Interface, error) { panic("unexpected") }))
	assert.NotPanics(t, func() {
		assert.False(t, panicking.Available())
		assert.Equal(t, TypeUnknown, panicking.NetworkType())
	})
}
