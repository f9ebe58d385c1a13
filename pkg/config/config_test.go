package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
gateway:
  port: 9090
mysql:
  host: db
  port: 3306
  username: shop
  password: secret
  database: foodshop
mercadopago:
  access_token: TEST-123
shipping:
  zones:
    - name: Centro
      fee: 500
    - name: Barrio Norte
      fee: 800
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Gateway.Port)
	assert.Equal(t, "TEST-123", cfg.MercadoPago.AccessToken)
	assert.Equal(t, "https://api.mercadopago.com", cfg.MercadoPago.BaseURL)
	assert.Equal(t, "ARS", cfg.MercadoPago.Currency)
	assert.Equal(t, 10*time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, "shop:secret@tcp(db:3306)/foodshop?charset=utf8mb4&parseTime=True&loc=Local", cfg.MySQL.DSN())
	require.Len(t, cfg.Shipping.Zones, 2)
	assert.Equal(t, "Barrio Norte", cfg.Shipping.Zones[1].Name)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("FOODSHOP_MERCADOPAGO_ACCESS_TOKEN", "from-env")
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.MercadoPago.AccessToken)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestShippingZone(t *testing.T) {
	cfg := ShippingConfig{Zones: []ShippingZone{{Name: "Centro", Fee: 500}}}

	z, ok := cfg.Zone("  centro ")
	require.True(t, ok)
	assert.Equal(t, 500.0, z.Fee)

	_, ok = cfg.Zone("Sur")
	assert.False(t, ok)
}
