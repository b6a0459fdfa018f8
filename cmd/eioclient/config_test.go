package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "eioclient.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
host: example.com
port: 3000
transport: websocket
b64: true
query:
  token: s3cret
send:
  - hello
  - world
duration: 2s
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, &Config{
		Host:      "example.com",
		Port:      3000,
		Path:      "/engine.io/",
		Transport: "websocket",
		Base64:    true,
		Query:     map[string]string{"token": "s3cret"},
		Send:      []string{"hello", "world"},
		Duration:  2 * time.Second,
	}, cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigInvalid(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "port: [1"))
	assert.ErrorIs(t, err, ErrConfigRead)
}

func TestConfigValidate(t *testing.T) {
	var tests = []struct {
		name   string
		modify func(*Config)
		err    error
	}{
		{name: "default", modify: func(*Config) {}},
		{name: "websocket", modify: func(c *Config) { c.Transport = "websocket" }},
		{name: "unknown transport", modify: func(c *Config) { c.Transport = "flashsocket" }, err: ErrUnknownTransport},
		{name: "no host", modify: func(c *Config) { c.Host = "" }, err: ErrNoHost},
		{name: "port", modify: func(c *Config) { c.Port = 70000 }, err: ErrPortRange},
		{name: "duration", modify: func(c *Config) { c.Duration = -time.Second }, err: ErrNegativeDuration},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			test.modify(cfg)

			err := cfg.Validate()
			if test.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, test.err)
		})
	}
}

func TestOverlay(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "host: example.com\nport: 3000\nquery:\n  a: \"1\"\n"))
	require.NoError(t, err)

	flags := DefaultConfig()
	f := pflag.NewFlagSet("connect", pflag.ContinueOnError)
	bindFlags(f, flags)
	require.NoError(t, f.Parse([]string{"--port", "4000", "-s", "one", "-s", "two", "-q", "b=2", "--socketio"}))

	overlay(f, cfg, flags)

	assert.Equal(t, "example.com", cfg.Host)
	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, []string{"one", "two"}, cfg.Send)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, cfg.Query)
	assert.True(t, cfg.SocketIO)
	assert.Equal(t, "polling", cfg.Transport)
}
