package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t testing.TB, path, contents string) {
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
}

func TestReadConfigMergesLocalOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.json5"), `{
		// comments are allowed
		portal: { base_url: "https://example.test", timeout_seconds: 10 },
		captcha: { model: "gpt-4o-mini" },
	}`)
	writeFile(t, filepath.Join(dir, "config.local.json5"), `{
		portal: { timeout_seconds: 60 },
	}`)

	cfg, err := ReadConfig[Config](filepath.Join(dir, "config.json5"))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "https://example.test", cfg.Portal.BaseUrl)
	require.Equal(t, 60, cfg.Portal.TimeoutSeconds)
	require.Equal(t, "gpt-4o-mini", cfg.Captcha.Model)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[Config](filepath.Join(t.TempDir(), "config.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")
	err := os.MkdirAll(nested, 0777)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "merek.json5"), `{
		portal: { base_url: "https://example.test/", endpoints: { login: "/auth/login" } },
	}`)

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	err = os.Chdir(nested)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load("merek.json5")
	if err != nil {
		t.Fatal(err)
	}

	defaults := Default()
	require.Equal(t, "https://example.test", cfg.Portal.BaseUrl)
	require.Equal(t, "/auth/login", cfg.Portal.Endpoints.Login)
	require.Equal(t, defaults.Portal.Endpoints.SaveGeneral, cfg.Portal.Endpoints.SaveGeneral)
	require.Equal(t, defaults.Portal.TimeoutSeconds, cfg.Portal.TimeoutSeconds)
	require.Equal(t, "sk-test", cfg.Captcha.ApiKey)
	require.Equal(t, "gpt-4o", cfg.Captcha.Model)
}

func TestLoadWithoutFile(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	err = os.Chdir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	cfg, err := Load("does-not-exist-anywhere.json5")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, Default().Portal, cfg.Portal)
}
