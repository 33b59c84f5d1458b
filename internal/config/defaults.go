package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultLogLevel  = "error"
	DefaultLogFormat = "console"

	DefaultFingerprintType   = "topological"
	DefaultFingerprintBits   = 2048
	DefaultMinPath           = 1
	DefaultMaxPath           = 7
	DefaultBitsPerHash       = 2
	DefaultMorganRadius      = 2
	DefaultSimilarityMetric  = "tanimoto"
	DefaultSimilarityWorkers = 1

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisTTL       = 24 * time.Hour
	DefaultRedisKeyPrefix = "chemsim:"

	DefaultMinIOEndpoint     = "localhost:9000"
	DefaultMinIOBucket       = "chemsim"
	DefaultMinIOReportPrefix = "reports/"

	DefaultChEMBLHost         = "localhost"
	DefaultChEMBLPort         = 5432
	DefaultChEMBLDBName       = "chembl"
	DefaultChEMBLMaxOpenConns = 4
	DefaultChEMBLQueryTimeout = 30 * time.Second

	DefaultMetricsNamespace = "chemsim"
)

// ApplyDefaults fills every zero-value field in cfg with its default.  Fields
// that have already been set are left unchanged so explicit configuration
// always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Fingerprint ───────────────────────────────────────────────────────────
	if cfg.Fingerprint.Type == "" {
		cfg.Fingerprint.Type = DefaultFingerprintType
	}
	if cfg.Fingerprint.Bits == 0 {
		cfg.Fingerprint.Bits = DefaultFingerprintBits
	}
	if cfg.Fingerprint.MinPath == 0 {
		cfg.Fingerprint.MinPath = DefaultMinPath
	}
	if cfg.Fingerprint.MaxPath == 0 {
		cfg.Fingerprint.MaxPath = DefaultMaxPath
	}
	if cfg.Fingerprint.BitsPerHash == 0 {
		cfg.Fingerprint.BitsPerHash = DefaultBitsPerHash
	}
	if cfg.Fingerprint.Radius == 0 {
		cfg.Fingerprint.Radius = DefaultMorganRadius
	}

	// ── Similarity ────────────────────────────────────────────────────────────
	if cfg.Similarity.Metric == "" {
		cfg.Similarity.Metric = DefaultSimilarityMetric
	}
	if cfg.Similarity.Workers == 0 {
		cfg.Similarity.Workers = DefaultSimilarityWorkers
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Cache.Redis.Addr == "" {
		cfg.Cache.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Cache.Redis.TTL == 0 {
		cfg.Cache.Redis.TTL = DefaultRedisTTL
	}
	if cfg.Cache.Redis.KeyPrefix == "" {
		cfg.Cache.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	// DB is an int; 0 is a valid explicit value and also the default.

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.Storage.MinIO.Endpoint == "" {
		cfg.Storage.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.Storage.MinIO.Bucket == "" {
		cfg.Storage.MinIO.Bucket = DefaultMinIOBucket
	}
	if cfg.Storage.MinIO.ReportPrefix == "" {
		cfg.Storage.MinIO.ReportPrefix = DefaultMinIOReportPrefix
	}

	// ── ChEMBL ────────────────────────────────────────────────────────────────
	if cfg.ChEMBL.Host == "" {
		cfg.ChEMBL.Host = DefaultChEMBLHost
	}
	if cfg.ChEMBL.Port == 0 {
		cfg.ChEMBL.Port = DefaultChEMBLPort
	}
	if cfg.ChEMBL.DBName == "" {
		cfg.ChEMBL.DBName = DefaultChEMBLDBName
	}
	if cfg.ChEMBL.SSLMode == "" {
		cfg.ChEMBL.SSLMode = "disable"
	}
	if cfg.ChEMBL.MaxOpenConns == 0 {
		cfg.ChEMBL.MaxOpenConns = DefaultChEMBLMaxOpenConns
	}
	if cfg.ChEMBL.QueryTimeout == 0 {
		cfg.ChEMBL.QueryTimeout = DefaultChEMBLQueryTimeout
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
}

// defaultKeys lists every key that can be overridden through the environment.
// Viper only resolves CHEMSIM_* variables for keys it already knows about, so
// each key is registered with its default before unmarshalling.
func defaultKeys() map[string]interface{} {
	return map[string]interface{}{
		"log.level":  DefaultLogLevel,
		"log.format": DefaultLogFormat,

		"fingerprint.type":          DefaultFingerprintType,
		"fingerprint.bits":          DefaultFingerprintBits,
		"fingerprint.min_path":      DefaultMinPath,
		"fingerprint.max_path":      DefaultMaxPath,
		"fingerprint.bits_per_hash": DefaultBitsPerHash,
		"fingerprint.radius":        DefaultMorganRadius,

		"similarity.metric":  DefaultSimilarityMetric,
		"similarity.workers": DefaultSimilarityWorkers,

		"cache.redis.enabled":    false,
		"cache.redis.addr":       DefaultRedisAddr,
		"cache.redis.password":   "",
		"cache.redis.db":         0,
		"cache.redis.ttl":        DefaultRedisTTL,
		"cache.redis.key_prefix": DefaultRedisKeyPrefix,

		"storage.minio.enabled":       false,
		"storage.minio.endpoint":      DefaultMinIOEndpoint,
		"storage.minio.access_key":    "",
		"storage.minio.secret_key":    "",
		"storage.minio.use_ssl":       false,
		"storage.minio.region":        "",
		"storage.minio.bucket":        DefaultMinIOBucket,
		"storage.minio.report_prefix": DefaultMinIOReportPrefix,

		"chembl.enabled":        false,
		"chembl.host":           DefaultChEMBLHost,
		"chembl.port":           DefaultChEMBLPort,
		"chembl.user":           "",
		"chembl.password":       "",
		"chembl.db_name":        DefaultChEMBLDBName,
		"chembl.ssl_mode":       "disable",
		"chembl.max_open_conns": DefaultChEMBLMaxOpenConns,
		"chembl.query_timeout":  DefaultChEMBLQueryTimeout,

		"metrics.enabled":       false,
		"metrics.namespace":     DefaultMetricsNamespace,
		"metrics.textfile_path": "",
	}
}

//Personal.AI order the ending
