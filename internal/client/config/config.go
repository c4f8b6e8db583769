package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for authctl.
//
// Fields:
//   - ServerEndpointAddr: host:port of the gophauth gRPC endpoint.
//   - RequestTimeout: deadline of a single call.
//   - SessionPath: SQLite file keeping the access token between runs.
type Config struct {
	ServerEndpointAddr string        `env:"GOPHAUTH_SERVER_ADDR"`
	RequestTimeout     time.Duration `env:"GOPHAUTH_REQUEST_TIMEOUT"`
	SessionPath        string        `env:"GOPHAUTH_SESSION_PATH"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 10 * time.Second
	c.SessionPath = defaultSessionPath()
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "gophauth-session.db"
	}
	return filepath.Join(dir, "gophauth", "session.db")
}

// Validate reports settings authctl cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.ServerEndpointAddr == "" {
		errs = append(errs, errors.New("server address is empty"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.SessionPath == "" {
		errs = append(errs, errors.New("session path is empty"))
	}
	return errors.Join(errs...)
}

// LoadConfig builds a Config from args (usually os.Args[1:]) and returns it
// together with the command arguments that follow the flags.
func LoadConfig(args []string) (*Config, []string, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, nil, err
	}
	rest, err := parseFlags(cfg, args)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, rest, nil
}
