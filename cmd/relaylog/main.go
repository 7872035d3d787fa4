package main

import (
	"context"

	"github.com/joho/godotenv"

	"relaylog/internal/app"
	"relaylog/pkg/config"
	"relaylog/pkg/logger"
	"relaylog/pkg/shutdown"
)

func main() {
	// build metadata - set via ldflags during build/release
	var (
		version   = "dev"
		commit    = "none"
		buildDate = "unknown"
	)

	_ = godotenv.Load(".env")
	addrVal, dbVal, cfgVal, setFlags := config.ParseCommandFlags()

	cfgPath := config.ResolveConfigPath(cfgVal, setFlags["config"])
	cfg, rc, envUsed, err := config.LoadEffective(cfgPath)
	if err != nil {
		shutdown.Abort("failed to load config", err)
	}

	logger.InitWithLevel(cfg.Logging.Level)

	// flags win over config/env when provided explicitly
	addr := addrVal
	if !setFlags["addr"] {
		addr = cfg.Addr()
	}
	dbPath := dbVal
	if !setFlags["db"] {
		if p := cfg.Storage.DBPath; p != "" {
			dbPath = p
		}
	}
	source := "flags"
	if !setFlags["addr"] && !setFlags["db"] {
		if envUsed {
			source = "env"
		} else {
			source = "config"
		}
	}

	eff := config.EffectiveConfigResult{
		Config: cfg, Runtime: rc, Addr: addr, DBPath: dbPath, Source: source,
	}

	a, err := app.New(eff, version, commit, buildDate)
	if err != nil {
		shutdown.Abort("startup failed", err)
	}

	ctx, cancel := shutdown.SetupSignalHandler(context.Background())
	defer cancel()

	if err := a.Run(ctx); err != nil {
		logger.Error("server_error", "error", err)
	}
	if err := a.Close(); err != nil {
		logger.Error("shutdown_error", "error", err)
	}
	logger.Info("server_stopped")
}
