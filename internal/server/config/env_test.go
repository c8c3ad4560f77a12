package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("CRM_GRPC_ADDR", ":7000")
	t.Setenv("CRM_TENANT_DSN_TEMPLATE", "postgres://db/crm_%s")
	t.Setenv("CRM_CIPHER_VERIFIER", "abcd")
	t.Setenv("CRM_ACCESS_TOKEN_TTL", "90s")
	t.Setenv("CRM_TX_TIMEOUT", "not-a-duration")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, ":7000", c.EndpointAddrGRPC)
	assert.Equal(t, "postgres://db/crm_%s", c.TenantDSNTemplate)
	assert.Equal(t, "abcd", c.CipherVerifier)
	assert.Equal(t, 90*time.Second, c.AccessTokenValidityDuration)
	assert.Equal(t, 10*time.Second, c.TxTimeout, "invalid duration is ignored")
	assert.Equal(t, ":9090", c.EndpointAddrOps, "unset variables keep the current value")
}

func TestParseEnv_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CRM_S3_REGION=eu-north-1\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		_ = os.Unsetenv("CRM_S3_REGION")
	})

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, "eu-north-1", c.S3Region)
}
