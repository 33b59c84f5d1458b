// Package config defines the configuration structures for chemsim.  No I/O or
// parsing logic lives here, only plain data types and validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// LogConfig controls the structured logger.
type LogConfig struct {
	Level       string   `mapstructure:"level"`  // debug | info | warn | error
	Format      string   `mapstructure:"format"` // console | json
	OutputPaths []string `mapstructure:"output_paths"`
}

// FingerprintConfig selects and tunes the fingerprint generator.
type FingerprintConfig struct {
	Type        string `mapstructure:"type"` // topological | morgan
	Bits        int    `mapstructure:"bits"`
	MinPath     int    `mapstructure:"min_path"`
	MaxPath     int    `mapstructure:"max_path"`
	BitsPerHash int    `mapstructure:"bits_per_hash"`
	Radius      int    `mapstructure:"radius"`
}

// SimilarityConfig selects the similarity metric and the number of workers
// used to build matrices.
type SimilarityConfig struct {
	Metric  string `mapstructure:"metric"` // tanimoto | dice
	Workers int    `mapstructure:"workers"`
}

// RedisConfig holds the connection parameters of the report cache.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	TTL          time.Duration `mapstructure:"ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// CacheConfig groups cache backends.
type CacheConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

// MinIOConfig holds S3-compatible object storage parameters.  It backs
// s3://bucket/key structure inputs and report publishing.
type MinIOConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Endpoint     string `mapstructure:"endpoint"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	UseSSL       bool   `mapstructure:"use_ssl"`
	Region       string `mapstructure:"region"`
	Bucket       string `mapstructure:"bucket"`
	ReportPrefix string `mapstructure:"report_prefix"`
}

// StorageConfig groups object storage backends.
type StorageConfig struct {
	MinIO MinIOConfig `mapstructure:"minio"`
}

// ChEMBLConfig holds the connection parameters of a local ChEMBL PostgreSQL
// mirror.
type ChEMBLConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	QueryTimeout    time.Duration `mapstructure:"query_timeout"`
}

// MetricsConfig controls run metrics.  When TextfilePath is set, metrics are
// written in the Prometheus text format for the node-exporter textfile
// collector at the end of each command.
type MetricsConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Namespace    string `mapstructure:"namespace"`
	TextfilePath string `mapstructure:"textfile_path"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root configuration
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration object.
type Config struct {
	Log         LogConfig         `mapstructure:"log"`
	Fingerprint FingerprintConfig `mapstructure:"fingerprint"`
	Similarity  SimilarityConfig  `mapstructure:"similarity"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Storage     StorageConfig     `mapstructure:"storage"`
	ChEMBL      ChEMBLConfig      `mapstructure:"chembl"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config and
// returns the first error encountered.
func (c *Config) Validate() error {
	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// Fingerprint
	switch c.Fingerprint.Type {
	case "topological", "morgan":
	default:
		return fmt.Errorf("config: fingerprint.type %q is invalid; expected topological|morgan", c.Fingerprint.Type)
	}
	if c.Fingerprint.Bits < 64 || c.Fingerprint.Bits%8 != 0 {
		return fmt.Errorf("config: fingerprint.bits must be a multiple of 8 and ≥ 64, got %d", c.Fingerprint.Bits)
	}
	if c.Fingerprint.MinPath < 1 || c.Fingerprint.MaxPath < c.Fingerprint.MinPath {
		return fmt.Errorf("config: fingerprint path range [%d, %d] is invalid", c.Fingerprint.MinPath, c.Fingerprint.MaxPath)
	}
	if c.Fingerprint.BitsPerHash < 1 {
		return fmt.Errorf("config: fingerprint.bits_per_hash must be ≥ 1, got %d", c.Fingerprint.BitsPerHash)
	}
	if c.Fingerprint.Radius < 0 {
		return fmt.Errorf("config: fingerprint.radius must be ≥ 0, got %d", c.Fingerprint.Radius)
	}

	// Similarity
	switch c.Similarity.Metric {
	case "tanimoto", "dice":
	default:
		return fmt.Errorf("config: similarity.metric %q is invalid; expected tanimoto|dice", c.Similarity.Metric)
	}
	if c.Similarity.Workers < 1 {
		return fmt.Errorf("config: similarity.workers must be ≥ 1, got %d", c.Similarity.Workers)
	}

	// Cache
	if c.Cache.Redis.Enabled {
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("config: cache.redis.addr is required when the cache is enabled")
		}
		if c.Cache.Redis.TTL <= 0 {
			return fmt.Errorf("config: cache.redis.ttl must be positive, got %s", c.Cache.Redis.TTL)
		}
	}
	if c.Cache.Redis.DB < 0 {
		return fmt.Errorf("config: cache.redis.db must be ≥ 0, got %d", c.Cache.Redis.DB)
	}

	// Storage
	if c.Storage.MinIO.Enabled {
		if c.Storage.MinIO.Endpoint == "" {
			return fmt.Errorf("config: storage.minio.endpoint is required when storage is enabled")
		}
		if c.Storage.MinIO.Bucket == "" {
			return fmt.Errorf("config: storage.minio.bucket is required when storage is enabled")
		}
	}

	// ChEMBL
	if c.ChEMBL.Port < 1 || c.ChEMBL.Port > 65535 {
		return fmt.Errorf("config: chembl.port %d is out of range [1, 65535]", c.ChEMBL.Port)
	}
	if c.ChEMBL.MaxOpenConns < 1 {
		return fmt.Errorf("config: chembl.max_open_conns must be ≥ 1, got %d", c.ChEMBL.MaxOpenConns)
	}

	// Metrics
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("config: metrics.namespace is required when metrics are enabled")
	}

	return nil
}

//Personal.AI order the ending
