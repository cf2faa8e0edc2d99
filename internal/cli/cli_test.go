package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/namecrawler/internal/cache"
	"github.com/ppiankov/namecrawler/internal/model"
	"github.com/ppiankov/namecrawler/internal/store/storetest"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	registerDefaults(v, model.DefaultConfig())
	return v
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(newTestViper())
	require.NoError(t, err)

	def := model.DefaultConfig()
	assert.Equal(t, def.Finder.MinScore, cfg.Finder.MinScore)
	assert.Equal(t, def.Finder.StopWords, cfg.Finder.StopWords)
	assert.Equal(t, def.Age.Survival, cfg.Age.Survival)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.Cache.DiskTTL)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("NAMECRAWLER_FINDER_MAX_DISTANCE", "3")
	t.Setenv("NAMECRAWLER_HTTP_TIMEOUT", "5s")

	v := newTestViper()
	v.SetEnvPrefix("NAMECRAWLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Finder.MaxDistance)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `finder:
  min_score: 0.8
  unique_names: true
age:
  normalize: true
  survival:
    - {age: 0, probability: 1}
    - {age: 120, probability: 0}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	v := newTestViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, cfg.Finder.MinScore, 1e-12)
	assert.True(t, cfg.Finder.UniqueNames)
	assert.True(t, cfg.Age.Normalize)
	assert.Len(t, cfg.Age.Survival, 2)
	// untouched keys keep their defaults
	assert.Equal(t, 5, cfg.Finder.MaxDistance)
	assert.NoError(t, cfg.Validate())
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, writeDefaultConfig(path))

	v := newTestViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig().Finder.MaxDistance, cfg.Finder.MaxDistance)
	assert.Equal(t, model.DefaultConfig().HTTP.UserAgent, cfg.HTTP.UserAgent)

	assert.Error(t, writeDefaultConfig(path), "existing file must not be overwritten")
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://en.wikipedia.org/wiki/Ada_Lovelace", "en.wikipedia.org_wiki_Ada_Lovelace"},
		{"reports/minutes.pdf", "reports_minutes"},
		{"notes.txt", "notes"},
		{"???", "report"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in), tt.in)
	}

	long := sanitizeFilename(strings.Repeat("a", 300))
	assert.Len(t, long, 100)
}

func TestUniqueSlug(t *testing.T) {
	used := map[string]int{}
	assert.Equal(t, "notes", uniqueSlug(used, "notes"))
	assert.Equal(t, "notes-2", uniqueSlug(used, "notes"))
	assert.Equal(t, "other", uniqueSlug(used, "other"))
}

// runRoot executes the root command with args against a fixture database
func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	db := filepath.Join(t.TempDir(), "names.sqlite")
	storetest.WriteSQLite(t, db, storetest.FirstNames(), storetest.Surnames())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--db", db}, args...))
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestFindCommand(t *testing.T) {
	out, err := runRoot(t, "find", "--format", "json", "--no-cache",
		"The report was filed by John Smith and reviewed by Mary Johnson.")
	require.NoError(t, err)

	var report model.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Matches, 2)
	assert.Equal(t, "John Smith", report.Matches[0].Name)
	assert.Equal(t, "args", report.Source)
}

func TestSexCommand(t *testing.T) {
	out, err := runRoot(t, "sex", "--format", "json", "Mary")
	require.NoError(t, err)
	assert.Contains(t, out, `"sex": "F"`)
}

func TestRaceCommandUnknownSurname(t *testing.T) {
	out, err := runRoot(t, "race", "--format", "text", "Report")
	require.NoError(t, err)
	assert.Contains(t, out, "unknown")
}

func TestMissingDatabase(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	rootCmd.SetArgs([]string{"--db", filepath.Join(t.TempDir(), "missing.sqlite"), "info"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	assert.ErrorIs(t, err, model.ErrDataIntegrity)
}

func TestCachePruneCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NAMECRAWLER_CACHE_DIR", dir)

	disk := cache.NewDiskCache(dir, time.Hour)
	require.NoError(t, disk.Put(&cache.Document{URL: "https://example.com/old"}, -time.Second))
	require.NoError(t, disk.Put(&cache.Document{URL: "https://example.com/new"}, 0))

	out, err := runRoot(t, "cache", "prune")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 expired document(s)")

	_, ok := disk.Get("https://example.com/new")
	assert.True(t, ok)
}

func TestSexCommandUnknownName(t *testing.T) {
	_, err := runRoot(t, "sex", "Zebulonia")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Contains(t, err.Error(), `"Zebulonia" is not in the reference data`)
}
