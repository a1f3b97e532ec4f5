package driver

import (
	"errors"
	"testing"
	"time"

	"github.com/datazip-inc/kwanko/constants"
	"github.com/datazip-inc/kwanko/types"
	"github.com/datazip-inc/kwanko/utils/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Authl:       "publisher",
		Authv:       "secret",
		Debut:       "2024-01-01",
		StatsOrSale: constants.SalesEndpoint,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		valid  bool
	}{
		{name: "sales", mutate: func(_ *Config) {}, valid: true},
		{name: "listing with dimension", mutate: func(c *Config) { c.StatsOrSale = constants.ListingEndpoint; c.Dim = 3 }, valid: true},
		{name: "listing without dimension", mutate: func(c *Config) { c.StatsOrSale = constants.ListingEndpoint }},
		{name: "dimension out of range", mutate: func(c *Config) { c.StatsOrSale = constants.ListingEndpoint; c.Dim = 5 }},
		{name: "unknown endpoint", mutate: func(c *Config) { c.StatsOrSale = "/other.php" }},
		{name: "missing login", mutate: func(c *Config) { c.Authl = "" }},
		{name: "missing key", mutate: func(c *Config) { c.Authv = "" }},
		{name: "malformed floor", mutate: func(c *Config) { c.Debut = "01/01/2024" }},
		{name: "malformed host", mutate: func(c *Config) { c.Host = "not a url" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			config := validConfig()
			tc.mutate(config)

			err := config.Validate()
			if tc.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, constants.ErrConfiguration))
		})
	}
}

func TestConfig_Defaults(t *testing.T) {
	config := validConfig()
	config.Host = "https://example.test/"
	require.NoError(t, config.Validate())

	assert.Equal(t, "https://example.test", config.Host)
	assert.Equal(t, constants.DefaultRequestTimeout, config.Timeout())
	assert.Equal(t, constants.DefaultRequestsPerSecond, config.RequestsPerSecond)
	assert.Equal(t, types.SalesFamily, config.Family())
	assert.Equal(t, "2024-01-01", config.Floor().String())

	config = validConfig()
	config.TimeoutSeconds = 5
	require.NoError(t, config.Validate())
	assert.Equal(t, constants.DefaultHost, config.Host)
	assert.Equal(t, 5*time.Second, config.Timeout())
}

func TestConfigSchema(t *testing.T) {
	schema := ConfigSchema()

	assert.NoError(t, jsonschema.Validate(schema, []byte(`{
		"authl": "publisher",
		"authv": "secret",
		"debut": "2024-01-01",
		"stats_or_sale": "/lisann.php",
		"dim": 3
	}`)))

	assert.Error(t, jsonschema.Validate(schema, []byte(`{"authl": "publisher", "debut": "2024-01-01", "stats_or_sale": "/reqann.php"}`)), "authv is required")
	assert.Error(t, jsonschema.Validate(schema, []byte(`{"authl": "a", "authv": "b", "debut": "2024-01-01", "stats_or_sale": "/stats.php"}`)))
	assert.Error(t, jsonschema.Validate(schema, []byte(`{"authl": "a", "authv": "b", "debut": "2024-01-01", "stats_or_sale": "/lisann.php", "dim": 9}`)))
}
