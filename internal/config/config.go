// ABOUTME: Process configuration loaded from .env files and the environment.
// ABOUTME: Provides defaults for the server port, database, API target and seed generator.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the CLI needs to build a server or a client.
type Config struct {
	Port        int
	DBPath      string
	APIURL      string // empty means the embedded demo backend under /api
	APIToken    string
	PageSize    int
	EntitiesDir string
	HTTPTimeout time.Duration
	OpenAIKey   string
	OpenAIModel string
}

// Defaults used when a variable is unset.
const (
	DefaultPort        = 9100
	DefaultDBPath      = "./adminkit.db"
	DefaultPageSize    = 10
	DefaultHTTPTimeout = 15 * time.Second
	DefaultOpenAIModel = "gpt-5-mini"
)

// LoadEnvFiles loads the first .env found in the current directory or its
// parents, then ~/.env. Variables already set in the environment win.
func LoadEnvFiles() {
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		godotenv.Load(filepath.Join(home, ".env"))
	}
}

// Load reads .env files and then the environment.
func Load() (*Config, error) {
	LoadEnvFiles()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function such as os.Getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Port:        DefaultPort,
		DBPath:      getenvDefault(getenv, "ADMINKIT_DB_PATH", DefaultDBPath),
		APIURL:      getenv("ADMINKIT_API_URL"),
		APIToken:    getenv("ADMINKIT_API_TOKEN"),
		PageSize:    DefaultPageSize,
		EntitiesDir: getenv("ADMINKIT_ENTITIES_DIR"),
		HTTPTimeout: DefaultHTTPTimeout,
		OpenAIKey:   getenv("OPENAI_API_KEY"),
		OpenAIModel: getenvDefault(getenv, "OPENAI_MODEL", DefaultOpenAIModel),
	}

	var err error
	if cfg.Port, err = positiveInt(getenv, "ADMINKIT_PORT", DefaultPort); err != nil {
		return nil, err
	}
	if cfg.PageSize, err = positiveInt(getenv, "ADMINKIT_PAGE_SIZE", DefaultPageSize); err != nil {
		return nil, err
	}
	if v := getenv("ADMINKIT_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("ADMINKIT_HTTP_TIMEOUT: invalid duration %q", v)
		}
		cfg.HTTPTimeout = d
	}
	return cfg, nil
}

// UseDemoBackend reports whether the console talks to the embedded backend.
func (c *Config) UseDemoBackend() bool {
	return c.APIURL == ""
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getenvDefault(getenv func(string) string, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

func positiveInt(getenv func(string) string, key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s: must be a positive integer, got %q", key, v)
	}
	return n, nil
}
