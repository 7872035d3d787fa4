package config

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// RuntimeConfig holds derived runtime values other packages may query after
// startup has merged file, env and flags.
type RuntimeConfig struct {
	BackendKeys  map[string]struct{}
	FrontendKeys map[string]struct{}
	AdminKeys    map[string]struct{}
}

var (
	runtimeMu  sync.RWMutex
	runtimeCfg *RuntimeConfig
)

// SetRuntime sets the canonical runtime config used by the running server.
func SetRuntime(rc *RuntimeConfig) {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()
	runtimeCfg = rc
}

func copyKeys(src map[string]struct{}) map[string]struct{} {
	out := map[string]struct{}{}
	for k := range src {
		out[k] = struct{}{}
	}
	return out
}

// GetBackendKeys returns a copy of configured backend keys.
func GetBackendKeys() map[string]struct{} {
	runtimeMu.RLock()
	defer runtimeMu.RUnlock()
	if runtimeCfg == nil {
		return map[string]struct{}{}
	}
	return copyKeys(runtimeCfg.BackendKeys)
}

// GetFrontendKeys returns a copy of configured frontend keys.
func GetFrontendKeys() map[string]struct{} {
	runtimeMu.RLock()
	defer runtimeMu.RUnlock()
	if runtimeCfg == nil {
		return map[string]struct{}{}
	}
	return copyKeys(runtimeCfg.FrontendKeys)
}

// GetAdminKeys returns a copy of configured admin keys.
func GetAdminKeys() map[string]struct{} {
	runtimeMu.RLock()
	defer runtimeMu.RUnlock()
	if runtimeCfg == nil {
		return map[string]struct{}{}
	}
	return copyKeys(runtimeCfg.AdminKeys)
}

type Config struct {
	Server struct {
		Address string `yaml:"address"`
		Port    int    `yaml:"port"`
		TLS     struct {
			CertFile string `yaml:"cert_file"`
			KeyFile  string `yaml:"key_file"`
		} `yaml:"tls"`
	} `yaml:"server"`
	Storage struct {
		DBPath     string    `yaml:"db_path"`
		CacheBytes SizeBytes `yaml:"cache_bytes"`
	} `yaml:"storage"`
	Security struct {
		CORS struct {
			AllowedOrigins []string `yaml:"allowed_origins"`
		} `yaml:"cors"`
		RateLimit struct {
			RPS   float64 `yaml:"rps"`
			Burst int     `yaml:"burst"`
		} `yaml:"rate_limit"`
		IPWhitelist []string `yaml:"ip_whitelist"`
		APIKeys     struct {
			Backend     []string `yaml:"backend"`
			Frontend    []string `yaml:"frontend"`
			Admin       []string `yaml:"admin"`
			AllowUnauth bool     `yaml:"allow_unauth"`
		} `yaml:"api_keys"`
	} `yaml:"security"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	Log struct {
		DefaultSender string   `yaml:"default_sender"`
		MergeWindow   Duration `yaml:"merge_window"`
		MaxTextLen    int      `yaml:"max_text_len"`
	} `yaml:"log"`
	Compaction struct {
		Enabled   bool   `yaml:"enabled"`
		Cron      string `yaml:"cron"`
		KeepLive  int    `yaml:"keep_live"`
		MaxPerRun int    `yaml:"max_per_run"`
	} `yaml:"compaction"`
}

// Addr returns host:port for the HTTP server.
func (c *Config) Addr() string {
	addr := c.Server.Address
	if addr == "" {
		addr = "0.0.0.0"
	}
	p := c.Server.Port
	if p == 0 {
		p = 8080
	}
	return fmt.Sprintf("%s:%d", addr, p)
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseCommandFlags defines and parses command-line flags and returns their
// values along with a map indicating which flags were explicitly set.
func ParseCommandFlags() (addr string, dbPath string, cfgPath string, setFlags map[string]bool) {
	addrPtr := flag.String("addr", ":8080", "HTTP listen address")
	dbPtr := flag.String("db", "./.database", "Pebble DB path")
	cfgPtr := flag.String("config", "./config.yaml", "Path to config file")
	flag.Parse()
	setFlags = map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	return *addrPtr, *dbPtr, *cfgPtr, setFlags
}

// LoadEnvOverrides applies environment overrides onto cfg and returns the
// derived API key maps plus whether env vars were used.
func LoadEnvOverrides(cfg *Config) (*RuntimeConfig, bool) {
	envUsed := false
	parseList := func(v string) []string {
		if v == "" {
			return nil
		}
		parts := []string{}
		for _, p := range strings.Split(v, ",") {
			if s := strings.TrimSpace(p); s != "" {
				parts = append(parts, s)
			}
		}
		return parts
	}

	if v := os.Getenv("RELAYLOG_ADDR"); v != "" {
		envUsed = true
		if h, p, err := net.SplitHostPort(v); err == nil {
			cfg.Server.Address = h
			if pi, err := strconv.Atoi(p); err == nil {
				cfg.Server.Port = pi
			}
		} else {
			cfg.Server.Address = v
		}
	} else {
		if host := os.Getenv("RELAYLOG_ADDRESS"); host != "" {
			envUsed = true
			cfg.Server.Address = host
		}
		if port := os.Getenv("RELAYLOG_PORT"); port != "" {
			envUsed = true
			if pi, err := strconv.Atoi(port); err == nil {
				cfg.Server.Port = pi
			}
		}
	}

	if v := os.Getenv("RELAYLOG_DB_PATH"); v != "" {
		envUsed = true
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("RELAYLOG_CORS_ORIGINS"); v != "" {
		envUsed = true
		cfg.Security.CORS.AllowedOrigins = parseList(v)
	}
	if v := os.Getenv("RELAYLOG_RATE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			envUsed = true
			cfg.Security.RateLimit.RPS = f
		}
	}
	if v := os.Getenv("RELAYLOG_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.Security.RateLimit.Burst = n
		}
	}
	if v := os.Getenv("RELAYLOG_IP_WHITELIST"); v != "" {
		envUsed = true
		cfg.Security.IPWhitelist = parseList(v)
	}
	if v := os.Getenv("RELAYLOG_API_BACKEND_KEYS"); v != "" {
		envUsed = true
		cfg.Security.APIKeys.Backend = parseList(v)
	}
	if v := os.Getenv("RELAYLOG_API_FRONTEND_KEYS"); v != "" {
		envUsed = true
		cfg.Security.APIKeys.Frontend = parseList(v)
	}
	if v := os.Getenv("RELAYLOG_API_ADMIN_KEYS"); v != "" {
		envUsed = true
		cfg.Security.APIKeys.Admin = parseList(v)
	}
	if v := os.Getenv("RELAYLOG_API_ALLOW_UNAUTH"); v != "" {
		envUsed = true
		vl := strings.ToLower(strings.TrimSpace(v))
		cfg.Security.APIKeys.AllowUnauth = vl == "1" || vl == "true" || vl == "yes"
	}
	if v := os.Getenv("RELAYLOG_DEFAULT_SENDER"); v != "" {
		envUsed = true
		cfg.Log.DefaultSender = v
	}
	if v := os.Getenv("RELAYLOG_MERGE_WINDOW"); v != "" {
		if td, err := parseDurationOrSeconds(v); err == nil {
			envUsed = true
			cfg.Log.MergeWindow = Duration(td)
		}
	}
	if v := os.Getenv("RELAYLOG_COMPACTION_CRON"); v != "" {
		envUsed = true
		cfg.Compaction.Cron = v
	}
	if v := os.Getenv("RELAYLOG_KEEP_LIVE"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.Compaction.KeepLive = n
		}
	}
	if c := os.Getenv("RELAYLOG_TLS_CERT"); c != "" {
		envUsed = true
		cfg.Server.TLS.CertFile = c
	}
	if k := os.Getenv("RELAYLOG_TLS_KEY"); k != "" {
		envUsed = true
		cfg.Server.TLS.KeyFile = k
	}

	rc := &RuntimeConfig{
		BackendKeys:  map[string]struct{}{},
		FrontendKeys: map[string]struct{}{},
		AdminKeys:    map[string]struct{}{},
	}
	for _, k := range cfg.Security.APIKeys.Backend {
		rc.BackendKeys[k] = struct{}{}
	}
	for _, k := range cfg.Security.APIKeys.Frontend {
		rc.FrontendKeys[k] = struct{}{}
	}
	for _, k := range cfg.Security.APIKeys.Admin {
		rc.AdminKeys[k] = struct{}{}
	}
	return rc, envUsed
}

// LoadEffective loads config from path and applies environment overrides.
// A missing file is not fatal; env and defaults still apply.
func LoadEffective(path string) (*Config, *RuntimeConfig, bool, error) {
	cfg, err := Load(path)
	if err != nil {
		cfg = &Config{}
	}
	rc, envUsed := LoadEnvOverrides(cfg)
	return cfg, rc, envUsed, nil
}

// ResolveConfigPath decides the config file path using the flag-provided
// value and RELAYLOG_CONFIG when the flag was not set.
func ResolveConfigPath(flagPath string, flagSet bool) string {
	if flagSet {
		return flagPath
	}
	if p := os.Getenv("RELAYLOG_CONFIG"); p != "" {
		return p
	}
	return flagPath
}
