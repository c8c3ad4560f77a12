package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// envPrefix namespaces every variable read by parseEnv.
const envPrefix = "CRM_"

// parseEnv overlays CRM_* environment variables. A .env file in the working
// directory is loaded first; variables already set in the process win.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	envString(&config.EndpointAddrGRPC, "GRPC_ADDR")
	envString(&config.EndpointAddrOps, "OPS_ADDR")
	envString(&config.DatabaseDSN, "DATABASE_DSN")
	envString(&config.TenantDSNTemplate, "TENANT_DSN_TEMPLATE")
	envString(&config.SecretKey, "JWT_SECRET")
	envString(&config.CipherSecret, "CIPHER_SECRET")
	envString(&config.CipherSalt, "CIPHER_SALT")
	envString(&config.CipherVerifier, "CIPHER_VERIFIER")
	envDuration(&config.AccessTokenValidityDuration, "ACCESS_TOKEN_TTL")
	envDuration(&config.TxTimeout, "TX_TIMEOUT")
	envString(&config.S3RootUser, "S3_USER")
	envString(&config.S3RootPassword, "S3_PASSWORD")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_ENDPOINT")
	envString(&config.LogLevel, "LOG_LEVEL")
}

func envString(dst *string, key string) {
	if v := os.Getenv(envPrefix + key); v != "" {
		*dst = v
	}
}

// envDuration ignores values time.ParseDuration rejects.
func envDuration(dst *time.Duration, key string) {
	v := os.Getenv(envPrefix + key)
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
	}
}
