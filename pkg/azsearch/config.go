package azsearch

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	// DefaultAPIVersion is the service API version used when none is
	// configured.
	DefaultAPIVersion = "2016-09-01"

	// DefaultKeyField is the target field holding the document key.
	DefaultKeyField = "id"

	// MaxBatchSize is the hard ceiling the service imposes on the number
	// of documents in a single indexing request.
	MaxBatchSize = 1000
)

// ProxyConfig carries explicit outbound proxy settings. The zero value
// means no proxy.
type ProxyConfig struct {
	Scheme   string `env:"AZURE_SEARCH_PROXY_SCHEME" envDefault:"http"`
	Host     string `env:"AZURE_SEARCH_PROXY_HOST"`
	Port     int    `env:"AZURE_SEARCH_PROXY_PORT"`
	Username string `env:"AZURE_SEARCH_PROXY_USERNAME"`
	Password string `env:"AZURE_SEARCH_PROXY_PASSWORD"`
}

// IsSet reports whether a proxy host has been configured.
func (p ProxyConfig) IsSet() bool { return p.Host != "" }

// URL builds the proxy URL, including credentials when a username is set.
func (p ProxyConfig) URL() *url.URL {
	u := &url.URL{Scheme: p.Scheme, Host: p.Host}
	if p.Port > 0 {
		u.Host = fmt.Sprintf("%s:%d", p.Host, p.Port)
	}
	if p.Username != "" {
		u.User = url.UserPassword(p.Username, p.Password)
	}
	return u
}

// Config holds Azure Search connection and batching parameters with
// environment variable mapping. It is read-only to the committer: changing
// endpoint or credentials requires building a new Committer.
type Config struct {
	// Endpoint is the service URL, e.g. https://example.search.windows.net.
	Endpoint string `env:"AZURE_SEARCH_ENDPOINT"`
	// APIKey is the service admin key, sent as the api-key header.
	APIKey string `env:"AZURE_SEARCH_API_KEY"`
	// IndexName is the target index.
	IndexName string `env:"AZURE_SEARCH_INDEX"`
	// APIVersion overrides DefaultAPIVersion when set.
	APIVersion string `env:"AZURE_SEARCH_API_VERSION"`
	// KeyField is the target field holding the document key. Defaults to
	// DefaultKeyField.
	KeyField string `env:"AZURE_SEARCH_KEY_FIELD"`
	// BatchSize is the number of operations the caller groups per commit.
	// Must not exceed MaxBatchSize.
	BatchSize int `env:"AZURE_SEARCH_BATCH_SIZE" envDefault:"100"`

	// DisableKeyEncoding sends document keys as-is instead of URL-safe
	// base64. Raw keys must then pass ValidateDocumentKey or the operation
	// is dropped.
	DisableKeyEncoding bool `env:"AZURE_SEARCH_DISABLE_KEY_ENCODING"`

	// IgnoreValidationErrors downgrades field/key naming violations from
	// batch-fatal errors to logged skips.
	IgnoreValidationErrors bool `env:"AZURE_SEARCH_IGNORE_VALIDATION_ERRORS"`
	// IgnoreResponseErrors downgrades non-success HTTP responses from
	// batch-fatal errors to logged warnings.
	IgnoreResponseErrors bool `env:"AZURE_SEARCH_IGNORE_RESPONSE_ERRORS"`

	// ArrayFields selects fields that serialize as JSON arrays even when
	// single-valued: a comma-separated field list, or a regular expression
	// when ArrayFieldsRegex is set. Empty never forces array form.
	ArrayFields      string `env:"AZURE_SEARCH_ARRAY_FIELDS"`
	ArrayFieldsRegex bool   `env:"AZURE_SEARCH_ARRAY_FIELDS_REGEX"`

	// UseAmbientAuth makes the client pick up proxy settings from the
	// process environment instead of the explicit Proxy configuration.
	// This is the portable equivalent of handing transport authentication
	// to the host.
	UseAmbientAuth bool `env:"AZURE_SEARCH_AMBIENT_AUTH"`

	Proxy ProxyConfig
}

var dotenvOnce sync.Once

// Load populates a Config from environment variables, reading a .env file
// first when one exists.
func Load() (Config, error) {
	dotenvOnce.Do(func() {
		// The .env file is optional.
		_ = godotenv.Load()
	})
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrConfig, err)
	}
	return cfg, nil
}

// Validate checks that every setting required to reach the service is
// present and within service limits. Called once per client construction.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return fmt.Errorf("%w: endpoint is undefined", ErrConfig)
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: API admin key is undefined", ErrConfig)
	}
	if strings.TrimSpace(c.IndexName) == "" {
		return fmt.Errorf("%w: index name is undefined", ErrConfig)
	}
	if c.BatchSize > MaxBatchSize {
		return fmt.Errorf("%w: batch size cannot be greater than %d", ErrConfig, MaxBatchSize)
	}
	return nil
}

// Equal reports structural equality over configuration fields. Transport
// state lives on the Committer and never takes part in the comparison.
func (c Config) Equal(o Config) bool {
	return c.Endpoint == o.Endpoint &&
		c.APIKey == o.APIKey &&
		c.IndexName == o.IndexName &&
		c.APIVersion == o.APIVersion &&
		c.KeyField == o.KeyField &&
		c.BatchSize == o.BatchSize &&
		c.DisableKeyEncoding == o.DisableKeyEncoding &&
		c.IgnoreValidationErrors == o.IgnoreValidationErrors &&
		c.IgnoreResponseErrors == o.IgnoreResponseErrors &&
		c.ArrayFields == o.ArrayFields &&
		c.ArrayFieldsRegex == o.ArrayFieldsRegex &&
		c.UseAmbientAuth == o.UseAmbientAuth &&
		c.Proxy == o.Proxy
}

// String renders the configuration with credentials redacted, safe for
// logging.
func (c Config) String() string {
	return fmt.Sprintf(
		"azsearch.Config{Endpoint:%s Index:%s APIVersion:%s KeyField:%s BatchSize:%d Proxy:%s AmbientAuth:%t}",
		c.Endpoint, c.IndexName, c.apiVersion(), c.keyField(), c.BatchSize,
		c.proxyString(), c.UseAmbientAuth)
}

func (c Config) proxyString() string {
	if !c.Proxy.IsSet() {
		return "none"
	}
	u := c.Proxy.URL()
	return u.Redacted()
}

func (c Config) apiVersion() string {
	if c.APIVersion == "" {
		return DefaultAPIVersion
	}
	return c.APIVersion
}

func (c Config) keyField() string {
	if c.KeyField == "" {
		return DefaultKeyField
	}
	return c.KeyField
}
