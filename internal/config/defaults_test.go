package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultFingerprintType, cfg.Fingerprint.Type)
	assert.Equal(t, DefaultFingerprintBits, cfg.Fingerprint.Bits)
	assert.Equal(t, DefaultMaxPath, cfg.Fingerprint.MaxPath)
	assert.Equal(t, DefaultSimilarityMetric, cfg.Similarity.Metric)
	assert.Equal(t, 1, cfg.Similarity.Workers)
	assert.Equal(t, DefaultRedisTTL, cfg.Cache.Redis.TTL)
	assert.Equal(t, "disable", cfg.ChEMBL.SSLMode)
	assert.Equal(t, DefaultMetricsNamespace, cfg.Metrics.Namespace)
}

func TestApplyDefaults_PreserveExistingValues(t *testing.T) {
	cfg := &Config{}
	cfg.Fingerprint.Bits = 1024
	cfg.Similarity.Metric = "dice"
	ApplyDefaults(cfg)

	assert.Equal(t, 1024, cfg.Fingerprint.Bits)
	assert.Equal(t, "dice", cfg.Similarity.Metric)
}

func TestApplyDefaults_Nil(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}

func TestDefaultKeys_CoverAllSections(t *testing.T) {
	keys := defaultKeys()
	for _, k := range []string{"log.level", "fingerprint.type", "similarity.workers",
		"cache.redis.addr", "storage.minio.bucket", "chembl.db_name", "metrics.textfile_path"} {
		assert.Contains(t, keys, k)
	}
}

//Personal.AI order the ending
