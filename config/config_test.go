package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Angabebr/shop-tools/comments"
	"github.com/Angabebr/shop-tools/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	unsetEnv(t, "LOG_LEVEL", "OPENAI_API_KEY", "OPENAI_MODEL", "CHROME_PATH", "BROWSER_USER_DATA_DIR", "HEADLESS")

	dir := t.TempDir()
	path := filepath.Join(dir, config.CONFIG_FILE)
	require.NoError(t, os.WriteFile(path, []byte(`
logging:
  level: debug
augment:
  position: prepend
  img_style: "width: 300px;"
comments:
  product_url: https://shop.example/p/1
  row_delay: 2s
  selectors:
    submit: "#send"
`), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "prepend", cfg.Augment.Position)
	assert.Equal(t, "width: 300px;", cfg.Augment.ImgStyle)
	assert.Equal(t, "product.csv", cfg.Augment.Input)
	assert.Equal(t, "https://shop.example/p/1", cfg.Comments.ProductURL)
	assert.Equal(t, 2*time.Second, cfg.Comments.RowDelay)
	assert.Equal(t, 10*time.Second, cfg.Comments.PageLoadTimeout)
	assert.Equal(t, "#send", cfg.Comments.Selectors.Submit)
	assert.Equal(t, comments.DefaultSelectors.Author, cfg.Comments.Selectors.Author)
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	unsetEnv(t, "OPENAI_API_KEY", "OPENAI_MODEL")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("HEADLESS", "true")
	t.Setenv("CHROME_PATH", "/usr/bin/chromium")

	dir := t.TempDir()
	path := filepath.Join(dir, config.CONFIG_FILE)
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ENV_FILE), []byte("OPENAI_API_KEY=sk-test\nOPENAI_MODEL=gpt-test\n"), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.True(t, cfg.Comments.Headless)
	assert.Equal(t, "/usr/bin/chromium", cfg.Comments.ChromePath)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "gpt-test", cfg.OpenAI.Model)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.CONFIG_FILE)
	require.NoError(t, os.WriteFile(path, []byte("comments: [unclosed"), 0644))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestTimingMapping(t *testing.T) {
	timing := config.Default().Comments.Timing()
	assert.Equal(t, comments.DefaultTiming, timing)
}
