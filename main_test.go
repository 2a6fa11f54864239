package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestAugmentCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "augment:\n  position: prepend\n")
	input := filepath.Join(dir, "product.csv")
	output := filepath.Join(dir, "product_updated.csv")
	require.NoError(t, os.WriteFile(input, []byte("images_url,description\nhttp://a.com/x.jpg,Great product\n"), 0644))

	out, err := execute(t, "--config", cfgPath, "augment", input, output)
	require.NoError(t, err)
	assert.Contains(t, out, "Processed 1 rows")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\"<img src=\"\"http://a.com/x.jpg\"\" alt=\"\"Product Image 1\"\"")
	assert.Contains(t, string(data), "\n\nGreat product\"")
}

func TestAugmentCommandMissingInput(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "{}\n")

	_, err := execute(t, "--config", cfgPath, "augment", filepath.Join(dir, "missing.csv"), filepath.Join(dir, "out.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input-not-found")
}

func TestSubmitCommandRequiresURL(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "{}\n")

	_, err := execute(t, "--config", cfgPath, "comments", "submit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product URL is required")
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}

func TestHeadlessFlagOverridesConfig(t *testing.T) {
	assert.True(t, headless(submitCmd, true))

	require.NoError(t, submitCmd.Flags().Set("headless", "false"))
	t.Cleanup(func() {
		submitFlags.headless = false
		submitCmd.Flags().Lookup("headless").Changed = false
	})
	assert.False(t, headless(submitCmd, true))

	require.NoError(t, submitCmd.Flags().Set("headless", "true"))
	assert.True(t, headless(submitCmd, false))
}
