package filters

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
)

// ErrInvalidAddress describes an --ip or --subnet literal that does not parse
var ErrInvalidAddress = errors.New("invalid address filter")

// AddressMatcher matches client addresses against an exact address and/or a subnet
type AddressMatcher struct {
	exact  *netip.Addr
	subnet *netip.Prefix
	err    error
}

// NewAddressMatcher parses the optional exact and subnet filters; empty strings disable them.
// The subnet may carry host bits ("10.0.0.7/24"); a bare address is a single-host subnet.
// A literal that does not parse leaves the matcher enabled but matching nothing; see Err.
func NewAddressMatcher(exact, subnet string) *AddressMatcher {
	m := &AddressMatcher{}

	if exact != "" {
		addr, err := netip.ParseAddr(exact)
		if err != nil {
			m.err = fmt.Errorf("%w: --ip %q: %w", ErrInvalidAddress, exact, err)
			return m
		}
		m.exact = &addr
	}

	if subnet != "" {
		prefix, err := parseSubnet(subnet)
		if err != nil {
			m.err = fmt.Errorf("%w: --subnet %q: %w", ErrInvalidAddress, subnet, err)
			return m
		}
		m.subnet = &prefix
	}

	return m
}

// Enabled reports whether any address filter is configured, parsed or not
func (m *AddressMatcher) Enabled() bool {
	return m.exact != nil || m.subnet != nil || m.err != nil
}

// Err returns the parse error of a malformed filter literal, if any
func (m *AddressMatcher) Err() error {
	return m.err
}

// Match reports whether candidate passes both filters. Invalid candidates never match,
// and nothing matches a malformed filter.
func (m *AddressMatcher) Match(candidate string) bool {
	if m.err != nil {
		return false
	}

	addr, err := netip.ParseAddr(candidate)
	if err != nil {
		return false
	}

	if m.exact != nil && addr != *m.exact {
		return false
	}

	if m.subnet != nil && !m.subnet.Contains(addr) {
		return false
	}

	return true
}

func parseSubnet(subnet string) (netip.Prefix, error) {
	if !strings.Contains(subnet, "/") {
		addr, err := netip.ParseAddr(subnet)
		if err != nil {
			return netip.Prefix{}, err
		}
		return netip.PrefixFrom(addr, addr.BitLen()), nil
	}

	prefix, err := netip.ParsePrefix(subnet)
	if err != nil {
		return netip.Prefix{}, err
	}
	return prefix.Masked(), nil
}
