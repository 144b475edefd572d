package config

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Difficulties lists the supported tiers, easiest first.
var Difficulties = []string{"easy", "normal", "hard", "expert", "crazy", "insanity"}

// Config is the game policy configuration: difficulty brackets, attempt
// budgets and hint costs. These are policy data, not structure, so they are
// loaded from config.yml and never hard-coded in the engine.
type Config struct {
	Global    Global    `yaml:"global"`
	Selection Selection `yaml:"anime_selection"`
	Games     Games     `yaml:"games"`
}

type Global struct {
	SearchLimit    int `yaml:"search_limit"`
	MaxRetries     int `yaml:"max_retries"`      // sampler attempt ceiling
	SessionTTLMins int `yaml:"session_ttl_mins"` // idle sessions older than this are swept
}

// Selection maps each difficulty to weighted popularity-rank ranges.
// Keys are "min-max" rank strings, values are selection weights.
// Rank 1 = most popular = easiest.
type Selection struct {
	RankRanges map[string]map[string]int `yaml:"rank_ranges"`
}

type Games struct {
	Anidle     AnidleConfig     `yaml:"anidle"`
	Screenshot ScreenshotConfig `yaml:"screenshot"`
	Character  CharacterConfig  `yaml:"character"`
}

type AnidleConfig struct {
	MaxGuesses int            `yaml:"max_guesses"`
	HintCosts  map[string]int `yaml:"hint_costs"` // per hint kind, in attempts
}

type ScreenshotConfig struct {
	MinScreenshots int `yaml:"min_screenshots"`
	Stages         int `yaml:"stages"` // image stages + 1 name-hint stage
}

type CharacterConfig struct {
	Cards int `yaml:"cards"` // simultaneous cards per batch start
}

// Default returns the built-in policy used when no config file exists.
func Default() Config {
	return Config{
		Global: Global{
			SearchLimit:    25,
			MaxRetries:     5,
			SessionTTLMins: 60,
		},
		Selection: Selection{
			RankRanges: map[string]map[string]int{
				"easy":     {"1-500": 10, "501-1000": 2},
				"normal":   {"500-1500": 10, "1501-2500": 5},
				"hard":     {"2000-3500": 10, "3501-4500": 5},
				"expert":   {"3500-5000": 10, "5001-6000": 5},
				"crazy":    {"5000-6500": 10, "6501-7500": 3},
				"insanity": {"6500-8000": 10, "7500-8000": 2},
			},
		},
		Games: Games{
			Anidle: AnidleConfig{
				MaxGuesses: 21,
				HintCosts: map[string]int{
					"genre": 3, "year": 3, "studio": 3, "media_type": 3, "tag": 3,
				},
			},
			Screenshot: ScreenshotConfig{MinScreenshots: 4, Stages: 5},
			Character:  CharacterConfig{Cards: 4},
		},
	}
}

// Load reads config.yml from path (or ANIGUESS_CONFIG if path is empty).
// Missing file falls back to defaults; a malformed file is an error.
// Unset fields are filled from defaults so partial files are fine.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv("ANIGUESS_CONFIG")
	}
	if path == "" {
		path = "config.yml"
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("[config] %s not found, using defaults", path)
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.fillDefaults()
	log.Printf("[config] loaded %s", path)
	return cfg, nil
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.Global.SearchLimit <= 0 {
		c.Global.SearchLimit = def.Global.SearchLimit
	}
	if c.Global.MaxRetries <= 0 {
		c.Global.MaxRetries = def.Global.MaxRetries
	}
	if c.Global.SessionTTLMins <= 0 {
		c.Global.SessionTTLMins = def.Global.SessionTTLMins
	}
	if len(c.Selection.RankRanges) == 0 {
		c.Selection.RankRanges = def.Selection.RankRanges
	}
	if c.Games.Anidle.MaxGuesses <= 0 {
		c.Games.Anidle.MaxGuesses = def.Games.Anidle.MaxGuesses
	}
	if len(c.Games.Anidle.HintCosts) == 0 {
		c.Games.Anidle.HintCosts = def.Games.Anidle.HintCosts
	}
	if c.Games.Screenshot.MinScreenshots <= 0 {
		c.Games.Screenshot.MinScreenshots = def.Games.Screenshot.MinScreenshots
	}
	if c.Games.Screenshot.Stages <= 0 {
		c.Games.Screenshot.Stages = def.Games.Screenshot.Stages
	}
	if c.Games.Character.Cards <= 0 {
		c.Games.Character.Cards = def.Games.Character.Cards
	}
}

// HintCost returns the attempt cost of a hint kind, or ok=false for an
// unknown kind.
func (c Config) HintCost(kind string) (int, bool) {
	cost, ok := c.Games.Anidle.HintCosts[kind]
	return cost, ok
}

// RankRange picks one popularity-rank range for a difficulty, weighted by
// the configured weights. Unknown difficulties fall back to "normal".
func (c Config) RankRange(difficulty string) (minRank, maxRank int) {
	ranges, ok := c.Selection.RankRanges[difficulty]
	if !ok {
		ranges = c.Selection.RankRanges["normal"]
	}
	if len(ranges) == 0 {
		return 500, 2500
	}

	// Deterministic iteration order so weights behave the same run to run.
	keys := make([]string, 0, len(ranges))
	total := 0
	for k := range ranges {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		total += ranges[k]
	}
	if total <= 0 {
		// all weights zeroed out in config
		return 500, 2500
	}

	pick := rand.Intn(total)
	for _, k := range keys {
		pick -= ranges[k]
		if pick < 0 {
			return parseRange(k)
		}
	}
	return parseRange(keys[len(keys)-1])
}

// IsDifficulty reports whether d names a known tier.
func IsDifficulty(d string) bool {
	for _, x := range Difficulties {
		if x == d {
			return true
		}
	}
	return false
}

func parseRange(s string) (int, int) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 500, 2500
	}
	lo, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	hi, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || lo <= 0 || hi < lo {
		return 500, 2500
	}
	return lo, hi
}
