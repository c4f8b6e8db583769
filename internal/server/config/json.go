package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Every field is
// a pointer so that keys absent from the file keep the value already loaded.
// Durations use timex.Duration and accept "1m" or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC *string `json:"endpoint_addr_grpc"`

	DatabaseDSN     *string         `json:"database_dsn"`
	MaxOpenConns    *int            `json:"db_max_open_conns"`
	MaxIdleConns    *int            `json:"db_max_idle_conns"`
	ConnMaxLifetime *timex.Duration `json:"db_conn_max_lifetime"`
	ConnMaxIdleTime *timex.Duration `json:"db_conn_max_idle_time"`

	SecretKey                   *string         `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`

	MaxNewcomersWithSameEmail     *int            `json:"max_newcomers_with_same_email"`
	TransactionRetryAttempts      *int            `json:"transaction_retry_attempts"`
	TransactionRetryIntervalFirst *timex.Duration `json:"transaction_retry_interval_first"`
	TransactionRetryBackoffFactor *float64        `json:"transaction_retry_backoff_factor"`
	RegistrationTokenLifetime     *timex.Duration `json:"registration_token_lifetime"`

	RegisterVerifyLinkTemplate *string `json:"register_verify_link_template"`
	MailDomain                 *string `json:"mail_domain"`
	SMTPHost                   *string `json:"smtp_host"`
	SMTPPort                   *int    `json:"smtp_port"`
	SMTPUser                   *string `json:"smtp_user"`
	SMTPPassword               *string `json:"smtp_password"`

	LogLevel     *string `json:"log_level"`
	LogFormat    *string `json:"log_format"`
	OTLPEndpoint *string `json:"otlp_endpoint"`

	CleanupInterval *timex.Duration `json:"cleanup_interval"`
}

// parseJson loads configuration values from the JSON file named by the
// -c or -config flag. Without the flag nothing is loaded.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	c.apply(config)
	return nil
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setInt(&config.MaxOpenConns, c.MaxOpenConns)
	setInt(&config.MaxIdleConns, c.MaxIdleConns)
	setDuration(&config.ConnMaxLifetime, c.ConnMaxLifetime)
	setDuration(&config.ConnMaxIdleTime, c.ConnMaxIdleTime)

	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)

	setInt(&config.MaxNewcomersWithSameEmail, c.MaxNewcomersWithSameEmail)
	setInt(&config.TransactionRetryAttempts, c.TransactionRetryAttempts)
	setDuration(&config.TransactionRetryIntervalFirst, c.TransactionRetryIntervalFirst)
	if c.TransactionRetryBackoffFactor != nil {
		config.TransactionRetryBackoffFactor = *c.TransactionRetryBackoffFactor
	}
	setDuration(&config.RegistrationTokenLifetime, c.RegistrationTokenLifetime)

	setString(&config.RegisterVerifyLinkTemplate, c.RegisterVerifyLinkTemplate)
	setString(&config.MailDomain, c.MailDomain)
	setString(&config.SMTPHost, c.SMTPHost)
	setInt(&config.SMTPPort, c.SMTPPort)
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)

	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.OTLPEndpoint, c.OTLPEndpoint)

	setDuration(&config.CleanupInterval, c.CleanupInterval)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
