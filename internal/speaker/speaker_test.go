package speaker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrivate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantDir Direction
		want    string
	}{
		{"single word to", "(PM to Bob:", To, "Bob"},
		{"single word from", "(PM from Bob:", From, "Bob"},
		{"two words", "(PM to Jane Doe:", To, "Jane Doe"},
		{"three words", "(PM from Bill Van Dipperly:", From, "Bill Van Dipperly"},
		{"multibyte decoration", "(PM to Zoë»", To, "Zoë"},
		{"unknown direction kept", "(PM via Bob:", Direction("via"), "Bob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrivate(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, "(PM", got.Marker)
			assert.Equal(t, tt.wantDir, got.Direction)
			assert.Equal(t, tt.want, got.Peer)
		})
	}
}

func TestParsePrivate_Malformed(t *testing.T) {
	for _, raw := range []string{"", "(PM", "(PM to", "(PM to ", "(PM to :"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParsePrivate(raw)
			if !errors.Is(err, ErrMalformedLabel) {
				t.Errorf("ParsePrivate(%q) error = %v, want ErrMalformedLabel", raw, err)
			}
		})
	}
}

func TestFormatRoundTrip(t *testing.T) {
	label := Format(To, "Jane Doe")
	assert.Equal(t, "(PM to Jane Doe:", label)

	got, err := ParsePrivate(label)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.Peer)
	assert.Equal(t, To, got.Direction)
}
