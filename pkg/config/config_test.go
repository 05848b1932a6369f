package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestInitConfigCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	config, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
	assert.FileExists(t, path)

	reloaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), reloaded)
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[server]
max_query_len = 64

[search]
fuzzy_threshold = 80
scorer = "levenshtein"
cache_size = 16

[autocomplete]
limit = 5

[history]
noise_floor = 0.5
unknown_lab = "n/a"

[data]
path = "/srv/nrel.csv"
watch = true

[metrics]
addr = ":9464"

[terms]
"silizium" = "Silicon"
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 64, config.Server.MaxQueryLen)
	assert.Equal(t, SearchConfig{FuzzyThreshold: 80, Scorer: "levenshtein", CacheSize: 16}, config.Search)
	assert.Equal(t, AutocompleteConfig{Limit: 5, MinLen: 2}, config.Autocomplete)
	assert.Equal(t, HistoryConfig{NoiseFloor: 0.5, UnknownLab: "n/a"}, config.History)
	assert.Equal(t, DataConfig{Path: "/srv/nrel.csv", Watch: true}, config.Data)
	assert.Equal(t, ":9464", config.Metrics.Addr)
	assert.Equal(t, map[string]string{"silizium": "Silicon"}, config.Terms)
}

func TestLoadConfigPartialRecovery(t *testing.T) {
	// wrong value types make the struct decode fail; valid keys still apply
	path := writeConfig(t, `
[search]
fuzzy_threshold = "high"
scorer = "wratio"
cache_size = 32

[data]
path = "other.csv"

[terms]
"silizium" = "Silicon"
"broken" = 3
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 75, config.Search.FuzzyThreshold)
	assert.Equal(t, 32, config.Search.CacheSize)
	assert.Equal(t, "other.csv", config.Data.Path)
	assert.Equal(t, map[string]string{"silizium": "Silicon"}, config.Terms)
}

func TestLoadConfigSyntaxError(t *testing.T) {
	path := writeConfig(t, "[search\nfuzzy_threshold = 80\n")

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
}

func TestSanitize(t *testing.T) {
	path := writeConfig(t, `
[server]
max_query_len = -1

[search]
fuzzy_threshold = 150
scorer = "soundex"

[autocomplete]
limit = 0
min_len = -3

[history]
unknown_lab = ""
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)
	def := DefaultConfig()
	assert.Equal(t, def.Server, config.Server)
	assert.Equal(t, def.Search.FuzzyThreshold, config.Search.FuzzyThreshold)
	assert.Equal(t, def.Search.Scorer, config.Search.Scorer)
	assert.Equal(t, def.Autocomplete, config.Autocomplete)
	assert.Equal(t, def.History.UnknownLab, config.History.UnknownLab)
}

func TestSanitizeZeroValues(t *testing.T) {
	path := writeConfig(t, `
[search]
fuzzy_threshold = 0

[history]
noise_floor = 0.0
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)
	def := DefaultConfig()
	assert.Equal(t, def.Search.FuzzyThreshold, config.Search.FuzzyThreshold)
	assert.Equal(t, def.History.NoiseFloor, config.History.NoiseFloor)

	path = writeConfig(t, "[history]\nnoise_floor = -2.5\n")
	config, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, def.History.NoiseFloor, config.History.NoiseFloor)
}

func TestLoadConfigWithPriorityCustomPath(t *testing.T) {
	path := writeConfig(t, "[search]\nfuzzy_threshold = 90\n")

	config, used, err := LoadConfigWithPriority(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, 90, config.Search.FuzzyThreshold)
}
