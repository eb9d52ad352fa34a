package azsearch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/azcommit/pkg/azsearch"
)

func validConfig() azsearch.Config {
	return azsearch.Config{
		Endpoint:  "https://example.search.windows.net",
		APIKey:    "1234567890ABCDEF",
		IndexName: "sample-index",
		BatchSize: 100,
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validConfig().Validate())

	cases := []struct {
		name   string
		modify func(*azsearch.Config)
	}{
		{"blank endpoint", func(c *azsearch.Config) { c.Endpoint = "" }},
		{"whitespace endpoint", func(c *azsearch.Config) { c.Endpoint = "  " }},
		{"blank api key", func(c *azsearch.Config) { c.APIKey = "" }},
		{"blank index", func(c *azsearch.Config) { c.IndexName = "" }},
		{"batch size over ceiling", func(c *azsearch.Config) { c.BatchSize = azsearch.MaxBatchSize + 1 }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tc.modify(&cfg)
			assert.ErrorIs(t, cfg.Validate(), azsearch.ErrConfig)
		})
	}
}

func TestConfigValidate_BatchSizeAtCeiling(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.BatchSize = azsearch.MaxBatchSize
	assert.NoError(t, cfg.Validate())
}

func TestConfigEqual(t *testing.T) {
	t.Parallel()

	a := validConfig()
	b := validConfig()
	assert.True(t, a.Equal(b))

	b.IndexName = "other-index"
	assert.False(t, a.Equal(b))

	b = validConfig()
	b.Proxy.Host = "proxy.local"
	assert.False(t, a.Equal(b))

	b = validConfig()
	b.IgnoreResponseErrors = true
	assert.False(t, a.Equal(b))
}

func TestConfigString_RedactsSecrets(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Proxy = azsearch.ProxyConfig{
		Scheme:   "http",
		Host:     "proxy.local",
		Port:     8080,
		Username: "user",
		Password: "hunter2",
	}

	s := cfg.String()
	assert.NotContains(t, s, cfg.APIKey)
	assert.NotContains(t, s, "hunter2")
	assert.Contains(t, s, "sample-index")
	assert.Contains(t, s, "proxy.local")
}

func TestConfigLoad(t *testing.T) {
	t.Setenv("AZURE_SEARCH_ENDPOINT", "https://env.search.windows.net")
	t.Setenv("AZURE_SEARCH_API_KEY", "env-key")
	t.Setenv("AZURE_SEARCH_INDEX", "env-index")
	t.Setenv("AZURE_SEARCH_BATCH_SIZE", "250")
	t.Setenv("AZURE_SEARCH_ARRAY_FIELDS", "tags,links")
	t.Setenv("AZURE_SEARCH_IGNORE_RESPONSE_ERRORS", "true")

	cfg, err := azsearch.Load()
	require.NoError(t, err)
	assert.Equal(t, "https://env.search.windows.net", cfg.Endpoint)
	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, "env-index", cfg.IndexName)
	assert.Equal(t, 250, cfg.BatchSize)
	assert.Equal(t, "tags,links", cfg.ArrayFields)
	assert.True(t, cfg.IgnoreResponseErrors)
	assert.False(t, cfg.ArrayFieldsRegex)
	assert.NoError(t, cfg.Validate())
}

func TestProxyConfigURL(t *testing.T) {
	t.Parallel()

	p := azsearch.ProxyConfig{Scheme: "http", Host: "proxy.local", Port: 3128}
	assert.True(t, p.IsSet())
	assert.Equal(t, "http://proxy.local:3128", p.URL().String())

	p.Username = "user"
	p.Password = "secret"
	u := p.URL()
	assert.Equal(t, "user", u.User.Username())
	pw, ok := u.User.Password()
	assert.True(t, ok)
	assert.Equal(t, "secret", pw)

	assert.False(t, azsearch.ProxyConfig{Scheme: "http"}.IsSet())
}
