package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/worklogger/internal/flagx"
	"github.com/dmitrijs2005/worklogger/internal/timex"
)

// JsonConfig is the on-disk shape of the server config file. Durations use
// timex.Duration so both "1m" and integer nanoseconds are accepted. Fields
// left out of the file keep their current value.
type JsonConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	MetricsAddr                  string         `json:"metrics_addr"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	ExportURLValidityDuration    timex.Duration `json:"export_url_validity_duration"`
	NotifyBackend                string         `json:"notify_backend"`
	RedisAddr                    string         `json:"redis_addr"`
	PruneSchedule                *string        `json:"prune_schedule"`
}

// parseJson loads the file named by -c/-config into config. Without the
// flag nothing is loaded. An unreadable or invalid file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFile()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.MetricsAddr, c.MetricsAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, time.Duration(c.AccessTokenValidityDuration.Duration))
	setDuration(&config.RefreshTokenValidityDuration, time.Duration(c.RefreshTokenValidityDuration.Duration))
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setDuration(&config.ExportURLValidityDuration, time.Duration(c.ExportURLValidityDuration.Duration))
	setString(&config.NotifyBackend, c.NotifyBackend)
	setString(&config.RedisAddr, c.RedisAddr)
	if c.PruneSchedule != nil {
		config.PruneSchedule = *c.PruneSchedule
	}
}
