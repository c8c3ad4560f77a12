package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/crmkeeper/internal/flagx"
	"github.com/dmitrijs2005/crmkeeper/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "1s" and integer nanoseconds.
//
// Only keys present in the file override the current values.
type JsonConfig struct {
	EndpointAddrGRPC            *string         `json:"endpoint_addr_grpc"`
	EndpointAddrOps             *string         `json:"endpoint_addr_ops"`
	DatabaseDSN                 *string         `json:"database_dsn"`
	TenantDSNTemplate           *string         `json:"tenant_dsn_template"`
	SecretKey                   *string         `json:"secret_key"`
	CipherSecret                *string         `json:"cipher_secret"`
	CipherSalt                  *string         `json:"cipher_salt"`
	CipherVerifier              *string         `json:"cipher_verifier"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	TxTimeout                   *timex.Duration `json:"tx_timeout"`
	S3RootUser                  *string         `json:"s3_root_user"`
	S3RootPassword              *string         `json:"s3_root_password"`
	S3Bucket                    *string         `json:"s3_bucket"`
	S3Region                    *string         `json:"s3_region"`
	S3BaseEndpoint              *string         `json:"s3_base_endpoint"`
	LogLevel                    *string         `json:"log_level"`
}

// parseJson loads configuration values from the JSON file named by -c or
// -config in args. Without either flag nothing is loaded. An unreadable file
// or invalid JSON panics.
func parseJson(config *Config, args []string) {
	jsonConfigFile := flagx.ConfigPath(args)

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	set(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	set(&config.EndpointAddrOps, c.EndpointAddrOps)
	set(&config.DatabaseDSN, c.DatabaseDSN)
	set(&config.TenantDSNTemplate, c.TenantDSNTemplate)
	set(&config.SecretKey, c.SecretKey)
	set(&config.CipherSecret, c.CipherSecret)
	set(&config.CipherSalt, c.CipherSalt)
	set(&config.CipherVerifier, c.CipherVerifier)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.TxTimeout != nil {
		config.TxTimeout = c.TxTimeout.Duration
	}
	set(&config.S3RootUser, c.S3RootUser)
	set(&config.S3RootPassword, c.S3RootPassword)
	set(&config.S3Bucket, c.S3Bucket)
	set(&config.S3Region, c.S3Region)
	set(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	set(&config.LogLevel, c.LogLevel)
}

func set(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
