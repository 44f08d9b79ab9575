package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressMatcher_Match(t *testing.T) {
	tests := []struct {
		name      string
		exact     string
		subnet    string
		candidate string
		expected  bool
	}{
		{"no filters - valid address", "", "", "10.0.0.5", true},
		{"no filters - invalid address", "", "", "999.0.0.1", false},
		{"subnet - inside", "", "10.0.0.0/24", "10.0.0.5", true},
		{"subnet - outside", "", "10.0.0.0/24", "10.0.1.5", false},
		{"subnet with host bits", "", "10.0.0.77/24", "10.0.0.5", true},
		{"bare address subnet", "", "10.0.0.5", "10.0.0.5", true},
		{"bare address subnet - other host", "", "10.0.0.5", "10.0.0.6", false},
		{"exact - match", "10.0.0.5", "", "10.0.0.5", true},
		{"exact - mismatch", "10.0.0.5", "", "10.0.0.50", false},
		{"exact and subnet - both pass", "10.0.0.5", "10.0.0.0/24", "10.0.0.5", true},
		{"exact and subnet - subnet fails", "10.0.0.5", "10.1.0.0/16", "10.0.0.5", false},
		{"invalid candidate fails closed", "", "10.0.0.0/8", "10.0.0", false},
		{"ipv4 candidate vs ipv6 subnet", "", "2001:db8::/32", "10.0.0.5", false},
		{"ipv6 subnet", "", "2001:db8::/32", "2001:db8::1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matcher := NewAddressMatcher(tt.exact, tt.subnet)
			require.NoError(t, matcher.Err())
			assert.Equal(t, tt.expected, matcher.Match(tt.candidate))
		})
	}
}

func TestNewAddressMatcher(t *testing.T) {
	t.Run("disabled when empty", func(t *testing.T) {
		matcher := NewAddressMatcher("", "")
		assert.NoError(t, matcher.Err())
		assert.False(t, matcher.Enabled())
	})

	t.Run("enabled with subnet only", func(t *testing.T) {
		matcher := NewAddressMatcher("", "192.168.0.0/16")
		assert.NoError(t, matcher.Err())
		assert.True(t, matcher.Enabled())
	})

	t.Run("invalid exact address", func(t *testing.T) {
		matcher := NewAddressMatcher("10.0.0.256", "")
		assert.ErrorIs(t, matcher.Err(), ErrInvalidAddress)
		assert.True(t, matcher.Enabled())
		assert.False(t, matcher.Match("10.0.0.256"))
		assert.False(t, matcher.Match("10.0.0.1"))
	})

	t.Run("invalid subnet", func(t *testing.T) {
		matcher := NewAddressMatcher("10.0.0.5", "10.0.0.0/33")
		assert.ErrorIs(t, matcher.Err(), ErrInvalidAddress)
		assert.Contains(t, matcher.Err().Error(), "--subnet")
		assert.True(t, matcher.Enabled())
		assert.False(t, matcher.Match("10.0.0.5"))
	})
}
