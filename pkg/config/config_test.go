package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, 21, cfg.Games.Anidle.MaxGuesses)
	assert.Equal(t, 5, cfg.Global.MaxRetries)
}

func TestLoad_PartialFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("games:\n  anidle:\n    max_guesses: 10\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Games.Anidle.MaxGuesses)
	// untouched sections fall back
	assert.Equal(t, 5, cfg.Games.Screenshot.Stages)
	assert.Equal(t, 4, cfg.Games.Character.Cards)
	assert.NotEmpty(t, cfg.Selection.RankRanges)
}

func TestLoad_MalformedFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("games: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestHintCost(t *testing.T) {
	cfg := Default()

	cost, ok := cfg.HintCost("genre")
	assert.True(t, ok)
	assert.Equal(t, 3, cost)

	_, ok = cfg.HintCost("bogus")
	assert.False(t, ok)
}

func TestRankRange_StaysInsideBracket(t *testing.T) {
	cfg := Default()

	for i := 0; i < 100; i++ {
		lo, hi := cfg.RankRange("easy")
		assert.GreaterOrEqual(t, lo, 1)
		assert.LessOrEqual(t, hi, 1000)
		assert.LessOrEqual(t, lo, hi)
	}
}

func TestRankRange_ZeroWeightsFallBack(t *testing.T) {
	cfg := Default()
	cfg.Selection.RankRanges["easy"] = map[string]int{"1-500": 0, "501-1000": 0}

	lo, hi := cfg.RankRange("easy")
	assert.Equal(t, 500, lo)
	assert.Equal(t, 2500, hi)
}

func TestRankRange_UnknownDifficultyFallsBack(t *testing.T) {
	cfg := Default()
	lo, hi := cfg.RankRange("bogus")
	assert.GreaterOrEqual(t, lo, 500)
	assert.LessOrEqual(t, hi, 2500)
}

func TestIsDifficulty(t *testing.T) {
	for _, d := range Difficulties {
		assert.True(t, IsDifficulty(d))
	}
	assert.False(t, IsDifficulty("nightmare"))
	assert.False(t, IsDifficulty(""))
}

func TestParseRange(t *testing.T) {
	lo, hi := parseRange("100-200")
	assert.Equal(t, 100, lo)
	assert.Equal(t, 200, hi)

	// malformed ranges fall back to the normal bracket
	lo, hi = parseRange("garbage")
	assert.Equal(t, 500, lo)
	assert.Equal(t, 2500, hi)
}
