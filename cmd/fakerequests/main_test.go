package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_EnvFileAndFlags(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("FAKEREQ_TEST_UNUSED=1\nTOKEN_FIELD=jwt_from_file\nMOCKS_DIR=/from/file\n"), 0o644))
	t.Setenv("TOKEN_FIELD", "")
	t.Setenv("MOCKS_DIR", "")
	os.Unsetenv("TOKEN_FIELD")
	os.Unsetenv("MOCKS_DIR")
	t.Cleanup(func() { os.Unsetenv("FAKEREQ_TEST_UNUSED") })

	cmd := newRootCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--env-file", envFile, "-p", "4321", "--mocks-dir", "/from/flag"}))

	f := flags{envFile: envFile, port: 4321, mocksDir: "/from/flag"}
	cfg, err := loadConfig(cmd.Flags(), f)
	require.NoError(t, err)

	assert.Equal(t, 4321, cfg.Port)
	assert.Equal(t, "jwt_from_file", cfg.TokenField)
	assert.Equal(t, "/from/flag", cfg.MocksDir)
}

func TestLoadConfig_MissingEnvFileIsIgnored(t *testing.T) {
	cmd := newRootCmd()
	cfg, err := loadConfig(cmd.Flags(), flags{envFile: filepath.Join(t.TempDir(), "absent.env")})
	require.NoError(t, err)
	assert.NotZero(t, cfg.Port)
}

func TestLoadConfig_FlagValuesAreNormalized(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--log-format", "JSON", "--log-level", "WARN"}))

	f := flags{envFile: filepath.Join(t.TempDir(), "absent.env"), logFormat: "JSON", logLevel: "WARN"}
	cfg, err := loadConfig(cmd.Flags(), f)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}
