package ibpi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Pattern
	}{
		{"normal", PatternNormal},
		{"NORMAL", PatternNormal},
		{"off", PatternNormal},
		{"oneshot_normal", PatternOneshotNormal},
		{"locate", PatternLocate},
		{"identify", PatternLocate},
		{"ident", PatternLocate},
		{"locate_off", PatternLocateOff},
		{"failure", PatternFailedDrive},
		{"fail", PatternFailedDrive},
		{"failed", PatternFailedDrive},
		{"failed_array", PatternFailedArray},
		{"rebuild", PatternRebuild},
		{"pfa", PatternPFA},
		{"hotspare", PatternHotspare},
		{" locate ", PatternLocate},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseUnknown(t *testing.T) {
	_, err := Parse("blinkenlights")
	assert.ErrorIs(t, err, ErrUnknownPattern)

	// "unknown" is not an acceptable pattern name
	_, err = Parse("unknown")
	assert.ErrorIs(t, err, ErrUnknownPattern)
}

func TestString(t *testing.T) {
	assert.Equal(t, "locate", PatternLocate.String())
	assert.Equal(t, "failure", PatternFailedDrive.String())
	assert.Equal(t, "unknown", PatternUnknown.String())
	assert.Equal(t, "pattern(99)", Pattern(99).String())
}

func TestClearsAll(t *testing.T) {
	assert.True(t, PatternNormal.ClearsAll())
	assert.True(t, PatternOneshotNormal.ClearsAll())
	assert.False(t, PatternLocate.ClearsAll())
	assert.False(t, PatternLocateOff.ClearsAll())
}

func TestNamesRoundTrip(t *testing.T) {
	for _, name := range Names() {
		p, err := Parse(name)
		require.NoError(t, err)
		assert.Equal(t, name, p.String())
	}
}
