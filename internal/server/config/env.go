package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/dmitrijs2005/worklogger/internal/flagx"
)

const envPrefix = "WORKLOGGER_SERVER"

type envConfig struct {
	EndpointAddrGRPC             string        `envconfig:"GRPC_ADDR"`
	MetricsAddr                  string        `envconfig:"METRICS_ADDR"`
	DatabaseDSN                  string        `envconfig:"DATABASE_DSN"`
	SecretKey                    string        `envconfig:"SECRET_KEY"`
	AccessTokenValidityDuration  time.Duration `envconfig:"ACCESS_TOKEN_TTL"`
	RefreshTokenValidityDuration time.Duration `envconfig:"REFRESH_TOKEN_TTL"`
	S3RootUser                   string        `envconfig:"S3_ROOT_USER"`
	S3RootPassword               string        `envconfig:"S3_ROOT_PASSWORD"`
	S3Bucket                     string        `envconfig:"S3_BUCKET"`
	S3Region                     string        `envconfig:"S3_REGION"`
	S3BaseEndpoint               string        `envconfig:"S3_BASE_ENDPOINT"`
	ExportURLValidityDuration    time.Duration `envconfig:"EXPORT_URL_TTL"`
	NotifyBackend                string        `envconfig:"NOTIFY_BACKEND"`
	RedisAddr                    string        `envconfig:"REDIS_ADDR"`
	PruneSchedule                *string       `envconfig:"PRUNE_SCHEDULE"`
}

// parseEnv overlays Config with WORKLOGGER_SERVER_* variables, after loading
// the .env file named by -env (or ./.env when present).
func parseEnv(cfg *Config) {
	loadDotEnv(flagx.EnvFile())

	var ec envConfig
	if err := envconfig.Process(envPrefix, &ec); err != nil {
		panic(err)
	}

	setString(&cfg.EndpointAddrGRPC, ec.EndpointAddrGRPC)
	setString(&cfg.MetricsAddr, ec.MetricsAddr)
	setString(&cfg.DatabaseDSN, ec.DatabaseDSN)
	setString(&cfg.SecretKey, ec.SecretKey)
	setDuration(&cfg.AccessTokenValidityDuration, ec.AccessTokenValidityDuration)
	setDuration(&cfg.RefreshTokenValidityDuration, ec.RefreshTokenValidityDuration)
	setString(&cfg.S3RootUser, ec.S3RootUser)
	setString(&cfg.S3RootPassword, ec.S3RootPassword)
	setString(&cfg.S3Bucket, ec.S3Bucket)
	setString(&cfg.S3Region, ec.S3Region)
	setString(&cfg.S3BaseEndpoint, ec.S3BaseEndpoint)
	setDuration(&cfg.ExportURLValidityDuration, ec.ExportURLValidityDuration)
	setString(&cfg.NotifyBackend, ec.NotifyBackend)
	setString(&cfg.RedisAddr, ec.RedisAddr)
	// an explicitly empty schedule turns pruning off
	if ec.PruneSchedule != nil {
		cfg.PruneSchedule = *ec.PruneSchedule
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
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
