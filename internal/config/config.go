package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the museumapp API configuration.
type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Auth          AuthConfig          `yaml:"auth"`
	Availability  AvailabilityConfig  `yaml:"availability"`
	Catalog       CatalogConfig       `yaml:"catalog"`
	Search        SearchConfig        `yaml:"search"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
	File  string `yaml:"file"`  // extra output path, optional
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// ElasticsearchConfig holds search engine connection settings.
type ElasticsearchConfig struct {
	Scheme           string `yaml:"scheme"` // http, https (default: http)
	Host             string `yaml:"host"`
	Port             int    `yaml:"port"`
	Username         string `yaml:"username"`
	Password         string `yaml:"password"`
	Index            string `yaml:"index"`
	ControlIndex     string `yaml:"control_index"`
	ReadinessTimeout int    `yaml:"readiness_timeout_sec"`
}

// UnmarshalYAML decodes the section leniently for port: a value that is not
// a valid port number leaves Port at 0, which MissingRequired reports, so a
// bad ES_PORT degrades the service instead of stopping startup.
func (e *ElasticsearchConfig) UnmarshalYAML(node *yaml.Node) error {
	type plain ElasticsearchConfig
	var p plain
	if node.Kind != yaml.MappingNode {
		if err := node.Decode(&p); err != nil {
			return err //nolint:wrapcheck // yaml errors carry line numbers
		}
		*e = ElasticsearchConfig(p)
		return nil
	}

	rest := *node
	rest.Content = nil
	var rawPort string
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "port" {
			rawPort = node.Content[i+1].Value
			continue
		}
		rest.Content = append(rest.Content, node.Content[i], node.Content[i+1])
	}
	if err := rest.Decode(&p); err != nil {
		return err //nolint:wrapcheck // yaml errors carry line numbers
	}
	*e = ElasticsearchConfig(p)
	e.Port = parsePort(rawPort)
	return nil
}

func parsePort(raw string) int {
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || port <= 0 || port > 65535 {
		return 0
	}
	return port
}

// AuthConfig holds the API account and token settings.
type AuthConfig struct {
	Enabled        *bool   `yaml:"enabled"` // default: true
	User           string  `yaml:"user"`
	Password       string  `yaml:"password"`
	UserID         string  `yaml:"user_id"`
	TokenSecret    string  `yaml:"token_secret"`
	TokenTTLSec    int     `yaml:"token_ttl_sec"`
	LoginPerSecond float64 `yaml:"login_per_second"`
	LoginBurst     int     `yaml:"login_burst"`
}

// IsEnabled reports whether requests must carry a token.
func (a AuthConfig) IsEnabled() bool {
	return a.Enabled == nil || *a.Enabled
}

// AvailabilityConfig holds pre-request gate settings.
type AvailabilityConfig struct {
	PollStatus *bool `yaml:"poll_status"` // default: true
}

// IsPolling reports whether the gate reads the documents status per request.
func (a AvailabilityConfig) IsPolling() bool {
	return a.PollStatus == nil || *a.PollStatus
}

// CatalogConfig holds read endpoint settings.
type CatalogConfig struct {
	Languages []string `yaml:"languages"`
}

// SearchConfig holds engine query settings.
type SearchConfig struct {
	TimeoutSec int `yaml:"timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, docker, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands environment references in data and decodes it.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// LoadDotEnv loads variables from the given .env files (default ".env").
// Missing files are skipped; variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 5000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Elasticsearch.Scheme == "" {
		c.Elasticsearch.Scheme = "http"
	}
	if c.Elasticsearch.ReadinessTimeout <= 0 {
		c.Elasticsearch.ReadinessTimeout = 10
	}
	if c.Auth.TokenTTLSec <= 0 {
		c.Auth.TokenTTLSec = 300
	}
	if c.Auth.LoginPerSecond <= 0 {
		c.Auth.LoginPerSecond = 1
	}
	if c.Auth.LoginBurst <= 0 {
		c.Auth.LoginBurst = 5
	}
	if len(c.Catalog.Languages) == 0 {
		c.Catalog.Languages = []string{"nl", "en"}
	}
	if c.Search.TimeoutSec <= 0 {
		c.Search.TimeoutSec = 5
	}
}

// Validate checks the configuration for structural errors.
// Absent connection settings are reported by MissingRequired instead.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Elasticsearch.Scheme {
	case "http", "https":
		// ok
	default:
		return fmt.Errorf("elasticsearch.scheme must be \"http\" or \"https\", got %q", c.Elasticsearch.Scheme)
	}
	if c.Elasticsearch.Port < 0 || c.Elasticsearch.Port > 65535 {
		return fmt.Errorf("elasticsearch.port must be between 1 and 65535, got %d", c.Elasticsearch.Port)
	}
	for i, lang := range c.Catalog.Languages {
		if strings.TrimSpace(lang) == "" {
			return fmt.Errorf("catalog.languages[%d] is empty", i)
		}
	}
	return nil
}

// MissingRequired lists the settings without which the service cannot answer.
// The process still starts; the availability gate reports them.
func (c *Config) MissingRequired() []string {
	var missing []string
	check := func(name string, ok bool) {
		if !ok {
			missing = append(missing, name)
		}
	}
	check("elasticsearch.host", c.Elasticsearch.Host != "")
	check("elasticsearch.port", c.Elasticsearch.Port > 0)
	check("elasticsearch.index", c.Elasticsearch.Index != "")
	check("auth.user", c.Auth.User != "")
	check("auth.password", c.Auth.Password != "")
	check("auth.user_id", c.Auth.UserID != "")
	check("auth.token_secret", c.Auth.TokenSecret != "")
	return missing
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
