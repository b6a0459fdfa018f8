package main

import (
	"net/url"
	"os"
	"time"

	"github.com/njones/eioclient/engineio/transport"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config is what connect needs to reach a server. It is read from a YAML
// file and flags override it.
type Config struct {
	Host        string            `yaml:"host"`
	Port        int               `yaml:"port"`
	Path        string            `yaml:"path"`
	Secure      bool              `yaml:"secure"`
	Transport   string            `yaml:"transport"`
	Base64      bool              `yaml:"b64"`
	Query       map[string]string `yaml:"query"`
	Send        []string          `yaml:"send"`
	SocketIO    bool              `yaml:"socketio"`
	Duration    time.Duration     `yaml:"duration"`
	MetricsAddr string            `yaml:"metrics_addr"`
}

func DefaultConfig() *Config {
	return &Config{
		Host:      "localhost",
		Port:      80,
		Path:      "/engine.io/",
		Transport: string(transport.Polling),
	}
}

// LoadConfig reads the YAML file at path over the defaults. An empty path
// or a missing file gives the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, ErrConfigRead.F(path, err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if _, ok := transport.Transports[transport.Name(c.Transport)]; !ok {
		return ErrUnknownTransport.F(c.Transport)
	}
	if c.Host == "" {
		return ErrNoHost
	}
	if c.Port < 0 || c.Port > 65535 {
		return ErrPortRange.F(c.Port)
	}
	if c.Duration < 0 {
		return ErrNegativeDuration.F(c.Duration)
	}
	return nil
}

// forceBase64 is always on for polling. A server answers a text payload as
// text/plain, which a binary capable poll takes for the "ok" acknowledgment,
// so the handshake would never be seen.
func (c *Config) forceBase64() bool {
	return c.Base64 || transport.Name(c.Transport) == transport.Polling
}

// Options turns the config into transport options.
func (c *Config) Options(log *zap.Logger, metrics *transport.Metrics) []transport.Option {
	query := url.Values{}
	for key, val := range c.Query {
		query.Set(key, val)
	}

	return []transport.Option{
		transport.WithHost(c.Host),
		transport.WithPort(c.Port),
		transport.WithPath(c.Path),
		transport.WithSecure(c.Secure),
		transport.WithForceBase64(c.forceBase64()),
		transport.WithQuery(query),
		transport.WithLogger(log),
		transport.WithMetrics(metrics),
	}
}
