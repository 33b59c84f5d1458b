package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/chemsim/internal/config"
)

// validConfig returns a Config that passes Validate().
func validConfig() *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return cfg
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_Invalid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"log level", func(c *config.Config) { c.Log.Level = "trace" }, "log.level"},
		{"log format", func(c *config.Config) { c.Log.Format = "text" }, "log.format"},
		{"fingerprint type", func(c *config.Config) { c.Fingerprint.Type = "maccs" }, "fingerprint.type"},
		{"fingerprint bits small", func(c *config.Config) { c.Fingerprint.Bits = 32 }, "fingerprint.bits"},
		{"fingerprint bits unaligned", func(c *config.Config) { c.Fingerprint.Bits = 1001 }, "fingerprint.bits"},
		{"path range", func(c *config.Config) { c.Fingerprint.MinPath, c.Fingerprint.MaxPath = 5, 2 }, "path range"},
		{"bits per hash", func(c *config.Config) { c.Fingerprint.BitsPerHash = -1 }, "bits_per_hash"},
		{"radius", func(c *config.Config) { c.Fingerprint.Radius = -1 }, "radius"},
		{"metric", func(c *config.Config) { c.Similarity.Metric = "cosine" }, "similarity.metric"},
		{"workers", func(c *config.Config) { c.Similarity.Workers = -2 }, "similarity.workers"},
		{"redis addr", func(c *config.Config) {
			c.Cache.Redis.Enabled = true
			c.Cache.Redis.Addr = ""
		}, "cache.redis.addr"},
		{"redis ttl", func(c *config.Config) {
			c.Cache.Redis.Enabled = true
			c.Cache.Redis.TTL = -1
		}, "cache.redis.ttl"},
		{"redis db", func(c *config.Config) { c.Cache.Redis.DB = -1 }, "cache.redis.db"},
		{"minio bucket", func(c *config.Config) {
			c.Storage.MinIO.Enabled = true
			c.Storage.MinIO.Bucket = ""
		}, "storage.minio.bucket"},
		{"minio endpoint", func(c *config.Config) {
			c.Storage.MinIO.Enabled = true
			c.Storage.MinIO.Endpoint = ""
		}, "storage.minio.endpoint"},
		{"chembl port", func(c *config.Config) { c.ChEMBL.Port = 70000 }, "chembl.port"},
		{"chembl conns", func(c *config.Config) { c.ChEMBL.MaxOpenConns = -1 }, "chembl.max_open_conns"},
		{"metrics namespace", func(c *config.Config) {
			c.Metrics.Enabled = true
			c.Metrics.Namespace = ""
		}, "metrics.namespace"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestConfig_Validate_DisabledBackendsSkipChecks(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Cache.Redis.Addr = ""
	cfg.Storage.MinIO.Bucket = ""
	assert.NoError(t, cfg.Validate())
}

//Personal.AI order the ending
