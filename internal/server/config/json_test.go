package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_grpc":               "www.example:9000",
		"database_dsn":                     "postgres://example/auth",
		"secret_key":                       "my_secret_key",
		"access_token_validity_duration":   "1m",
		"max_newcomers_with_same_email":    2,
		"transaction_retry_attempts":       4,
		"transaction_retry_interval_first": "50ms",
		"transaction_retry_backoff_factor": 1.5,
		"registration_token_lifetime":      3600000000000,
		"register_verify_link_template":    "https://example.com/verify/{token}",
		"mail_domain":                      "example.com",
		"smtp_host":                        "smtp.example.com",
		"smtp_port":                        587,
		"cleanup_interval":                 "10m",
	})

	t.Run("loads from json", func(t *testing.T) {
		cfg := &Config{}
		require.NoError(t, parseJson(cfg, []string{"-config", pathFlag}))

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
		assert.Equal(t, "postgres://example/auth", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 1*time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 2, cfg.MaxNewcomersWithSameEmail)
		assert.Equal(t, 4, cfg.TransactionRetryAttempts)
		assert.Equal(t, 50*time.Millisecond, cfg.TransactionRetryIntervalFirst)
		assert.Equal(t, 1.5, cfg.TransactionRetryBackoffFactor)
		assert.Equal(t, time.Hour, cfg.RegistrationTokenLifetime)
		assert.Equal(t, "https://example.com/verify/{token}", cfg.RegisterVerifyLinkTemplate)
		assert.Equal(t, "example.com", cfg.MailDomain)
		assert.Equal(t, "smtp.example.com", cfg.SMTPHost)
		assert.Equal(t, 587, cfg.SMTPPort)
		assert.Equal(t, 10*time.Minute, cfg.CleanupInterval)
	})

	t.Run("absent keys keep current values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"secret_key": "rotated"})

		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJson(cfg, []string{"-c", partial}))

		assert.Equal(t, "rotated", cfg.SecretKey)
		assert.Equal(t, ":50051", cfg.EndpointAddrGRPC)
		assert.Equal(t, 3, cfg.MaxNewcomersWithSameEmail)
	})

	t.Run("no config flag, no changes", func(t *testing.T) {
		cfg := &Config{EndpointAddrGRPC: "defaults:1234", SecretKey: "key"}
		require.NoError(t, parseJson(cfg, []string{"-a", ":1"}))

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrGRPC)
		assert.Equal(t, "key", cfg.SecretKey)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		require.Error(t, parseJson(&Config{}, []string{"-config", bad}))
	})

	t.Run("missing file", func(t *testing.T) {
		require.Error(t, parseJson(&Config{}, []string{"-config", filepath.Join(dir, "nope.json")}))
	})
}
