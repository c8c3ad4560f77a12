package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/crmkeeper/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-o string   ops (health, metrics) bind address
//	-d string   PostgreSQL DSN
//	-m string   tenant DSN template, %s is the organization id
//	-s string   JWT HMAC secret key
//	-k string   field cipher secret
//	-l string   field cipher salt
//	-v string   field cipher key verifier (hex)
//	-t int      access token validity, minutes
//	-x int      transaction timeout, seconds
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-log string log level
//
// The args are filtered with flagx.FilterArgs first so flags owned by other
// components (such as -c) do not break parsing.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-o", "-d", "-m", "-s", "-k", "-l", "-v", "-t", "-x",
		"-u", "-p", "-b", "-g", "-e", "-log"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.EndpointAddrOps, "o", config.EndpointAddrOps, "address and port for health and metrics")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.TenantDSNTemplate, "m", config.TenantDSNTemplate, "tenant database DSN template")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.CipherSecret, "k", config.CipherSecret, "field cipher secret")
	fs.StringVar(&config.CipherSalt, "l", config.CipherSalt, "field cipher salt")
	fs.StringVar(&config.CipherVerifier, "v", config.CipherVerifier, "field cipher key verifier")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	txTimeout := fs.Int("x", int(config.TxTimeout.Seconds()), "transaction timeout (in seconds)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogLevel, "log", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// durations are only touched when given, to keep sub-unit values from JSON
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		case "x":
			config.TxTimeout = time.Duration(*txTimeout) * time.Second
		}
	})
}
