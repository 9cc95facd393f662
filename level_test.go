// FILE: lixenwraith/logtree/level_test.go
package logtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input    string
		expected Level
	}{
		{"trace", LevelTrace},
		{"DEBUG", LevelDebug},
		{"info", LevelInformation},
		{"information", LevelInformation},
		{" warn ", LevelWarning},
		{"warning", LevelWarning},
		{"error", LevelError},
		{"crit", LevelCritical},
		{"critical", LevelCritical},
		{"none", LevelNone},
		{"off", LevelNone},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			level, err := ParseLevel(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, level)
		})
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "information", LevelInformation.String())
	assert.Equal(t, "none", LevelNone.String())
	assert.Equal(t, "level(9)", Level(9).String())

	assert.True(t, LevelNone.Valid())
	assert.False(t, Level(7).Valid())
	assert.False(t, Level(-1).Valid())
}

func TestLevelText(t *testing.T) {
	text, err := LevelWarning.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "warning", string(text))

	var level Level
	require.NoError(t, level.UnmarshalText([]byte("crit")))
	assert.Equal(t, LevelCritical, level)

	_, err = Level(42).MarshalText()
	assert.Error(t, err)
	assert.Error(t, level.UnmarshalText([]byte("??")))
}
