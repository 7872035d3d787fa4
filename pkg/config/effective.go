package config

// EffectiveConfigResult is the fully merged configuration handed to the
// application: file values with env overrides applied, plus the resolved
// listen address and database path after flag precedence.
type EffectiveConfigResult struct {
	Config  *Config
	Runtime *RuntimeConfig
	Addr    string
	DBPath  string
	// Source names the winning config source: "flags", "env" or "config".
	Source string
}
