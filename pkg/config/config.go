// Package config loads gatefed's runtime configuration (spec.md §6) from a
// YAML file, with environment-variable overrides layered on top. There are
// no per-option CLI-flag overrides; the CLI only supplies the file path.
package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/toolmesh/gatefed/internal/gateway"
)

// Config holds every recognized option from spec.md §6. YAML field names
// match the spec's option names, except cache_type's raft/filelock values
// and raft_bind_addr/raft_peers/filelock_path, which replace the spec's
// redis-shaped fields per the documented leader-elector rename.
type Config struct {
	FederationTimeout  time.Duration `yaml:"federation_timeout"`
	SkipSSLVerify      bool          `yaml:"skip_ssl_verify"`
	UnhealthyThreshold int           `yaml:"unhealthy_threshold"`
	HealthCheckInterval time.Duration `yaml:"health_check_interval"`
	ProbeTimeout        time.Duration `yaml:"probe_timeout"`

	CacheType string `yaml:"cache_type"`

	NodeID       string   `yaml:"node_id"`
	RaftBindAddr string   `yaml:"raft_bind_addr"`
	RaftPeers    []string `yaml:"raft_peers"`
	RaftDataDir  string   `yaml:"raft_data_dir"`

	FilelockPath string `yaml:"filelock_path"`

	BasicAuthUser     string `yaml:"basic_auth_user"`
	BasicAuthPassword string `yaml:"basic_auth_password"`

	DBPath      string `yaml:"db_path"`
	ListenAddr  string `yaml:"listen_addr"`
}

// Defaults returns the configuration a deployment gets with no file and no
// overrides: single-process, no leader election contention, generous
// timeouts.
func Defaults() Config {
	return Config{
		FederationTimeout:  30 * time.Second,
		SkipSSLVerify:      false,
		UnhealthyThreshold: 3,
		HealthCheckInterval: 30 * time.Second,
		ProbeTimeout:       5 * time.Second,
		CacheType:          "none",
		DBPath:             "gatefed.db",
		ListenAddr:         "127.0.0.1:9090",
	}
}

// Load reads path as YAML over Defaults(), then applies environment
// overrides. A missing path is not an error: Defaults() alone is valid for
// a single-process deployment.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return Config{}, &gateway.ConfigurationError{Reason: "config file not found: " + path, Err: err}
			}
			return Config{}, &gateway.ConfigurationError{Reason: "read config file", Err: err}
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, &gateway.ConfigurationError{Reason: "parse config file", Err: err}
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GATEFED_CACHE_TYPE"); v != "" {
		cfg.CacheType = v
	}
	if v := os.Getenv("GATEFED_NODE_ID"); v != "" {
		cfg.NodeID = v
	}
	if v := os.Getenv("GATEFED_RAFT_BIND_ADDR"); v != "" {
		cfg.RaftBindAddr = v
	}
	if v := os.Getenv("GATEFED_FILELOCK_PATH"); v != "" {
		cfg.FilelockPath = v
	}
	if v := os.Getenv("GATEFED_BASIC_AUTH_USER"); v != "" {
		cfg.BasicAuthUser = v
	}
	if v := os.Getenv("GATEFED_BASIC_AUTH_PASSWORD"); v != "" {
		cfg.BasicAuthPassword = v
	}
	if v := os.Getenv("GATEFED_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("GATEFED_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("GATEFED_UNHEALTHY_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.UnhealthyThreshold = n
		}
	}
}

// Validate surfaces missing or contradictory leader-election configuration
// as a ConfigurationError at startup, per spec.md §7.
func (c Config) Validate() error {
	switch c.CacheType {
	case "raft":
		if c.NodeID == "" || c.RaftBindAddr == "" {
			return &gateway.ConfigurationError{Reason: "cache_type=raft requires node_id and raft_bind_addr"}
		}
	case "filelock":
		if c.FilelockPath == "" {
			return &gateway.ConfigurationError{Reason: "cache_type=filelock requires filelock_path"}
		}
	case "none", "":
	default:
		return &gateway.ConfigurationError{Reason: "unknown cache_type: " + c.CacheType}
	}
	if c.UnhealthyThreshold < -1 {
		return &gateway.ConfigurationError{Reason: "unhealthy_threshold must be -1 or >= 0"}
	}
	return nil
}
