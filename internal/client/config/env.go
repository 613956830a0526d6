package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/dmitrijs2005/worklogger/internal/flagx"
)

const envPrefix = "WORKLOGGER"

// envConfig mirrors Config for envconfig. Unset variables leave the current
// value alone.
type envConfig struct {
	ServerEndpointAddr  string        `envconfig:"SERVER_ADDR"`
	OnlineCheckInterval time.Duration `envconfig:"ONLINE_CHECK_INTERVAL"`
	DatabasePath        string        `envconfig:"DB_PATH"`
	ExportDir           string        `envconfig:"EXPORT_DIR"`
	RecentLimit         int           `envconfig:"RECENT_LIMIT"`
	RequestTimeout      time.Duration `envconfig:"REQUEST_TIMEOUT"`
}

// parseEnv overlays Config with WORKLOGGER_* variables. A .env file named
// with -e/-env, or ./.env when present, is loaded first; variables already
// set in the process environment win over the file.
func parseEnv(cfg *Config) {
	loadDotEnv(flagx.EnvFile())

	var ec envConfig
	if err := envconfig.Process(envPrefix, &ec); err != nil {
		panic(err)
	}

	if ec.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = ec.ServerEndpointAddr
	}
	if ec.OnlineCheckInterval > 0 {
		cfg.OnlineCheckInterval = ec.OnlineCheckInterval
	}
	if ec.DatabasePath != "" {
		cfg.DatabasePath = ec.DatabasePath
	}
	if ec.ExportDir != "" {
		cfg.ExportDir = ec.ExportDir
	}
	if ec.RecentLimit > 0 {
		cfg.RecentLimit = ec.RecentLimit
	}
	if ec.RequestTimeout > 0 {
		cfg.RequestTimeout = ec.RequestTimeout
	}
}

func loadDotEnv(path string) {
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
		return
	}
	if err := godotenv.Load(path); err != nil {
		panic(err)
	}
}
