package config

import (
	"encoding/json"
	"os"

	"github.com/Vicktor007/store-lit/internal/flagx"
	"github.com/Vicktor007/store-lit/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON configuration file. Durations
// use timex.Duration so both "15m" and integer nanoseconds are accepted.
// Absent keys leave the corresponding Config field untouched.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	PublicBaseURL               string         `json:"public_base_url"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	SessionValidityDuration     timex.Duration `json:"session_validity_duration"`
	OneTimeCodeValidityDuration timex.Duration `json:"otp_validity_duration"`
	OneTimeCodeMaxAttempts      int            `json:"otp_max_attempts"`
	SecureCookie                *bool          `json:"secure_cookie"`
	MaxUploadSize               int64          `json:"max_upload_size"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	RabbitMQURL                 string         `json:"rabbitmq_url"`
	EmailQueue                  string         `json:"email_queue"`
	KafkaBrokers                []string       `json:"kafka_brokers"`
	KafkaTopic                  string         `json:"kafka_topic"`
	LogLevel                    string         `json:"log_level"`
	LogBackend                  string         `json:"log_backend"`
}

// parseJson overlays values from the file named by -c/-config. Nothing is
// loaded when neither flag is given. An unreadable file or invalid JSON
// panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.applyTo(config)
}

func (c *JsonConfig) applyTo(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.PublicBaseURL, c.PublicBaseURL)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.SessionValidityDuration.Duration != 0 {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	if c.OneTimeCodeValidityDuration.Duration != 0 {
		config.OneTimeCodeValidityDuration = c.OneTimeCodeValidityDuration.Duration
	}
	if c.OneTimeCodeMaxAttempts != 0 {
		config.OneTimeCodeMaxAttempts = c.OneTimeCodeMaxAttempts
	}
	if c.SecureCookie != nil {
		config.SecureCookie = *c.SecureCookie
	}
	if c.MaxUploadSize != 0 {
		config.MaxUploadSize = c.MaxUploadSize
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.RabbitMQURL, c.RabbitMQURL)
	setString(&config.EmailQueue, c.EmailQueue)
	if len(c.KafkaBrokers) > 0 {
		config.KafkaBrokers = c.KafkaBrokers
	}
	setString(&config.KafkaTopic, c.KafkaTopic)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogBackend, c.LogBackend)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
