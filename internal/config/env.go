package config

import (
    "os"
    "path/filepath"
    "strconv"
    "strings"
    "time"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
    Level      string
    Pretty     bool
    File       string
    MaxSizeMB  int
    MaxBackups int
    MaxAgeDays int
    Compress   bool
}

// AxiomConfig holds Axiom log forwarding configuration.
type AxiomConfig struct {
    Send          bool
    APIKey        string
    OrgID         string
    Dataset       string
    FlushInterval time.Duration
}

// StorageConfig defines the four artifact areas populated by the pipeline
// and scanned by the retention cleaner.
type StorageConfig struct {
    UploadsDir string
    OutputsDir string
    TempDir    string
    LogsDir    string
}

// PipelineConfig defines conversion defaults for a single document run.
type PipelineConfig struct {
    Language   string // tesseract language code, e.g. "ara"
    Format     string // "png" | "jpeg"
    DPI        int
    Quality    int // jpeg quality 1-100
    KeepImages bool
}

// BatchConfig defines batch scheduling behavior.
type BatchConfig struct {
    Concurrency int
}

// RetentionConfig defines per-area age thresholds. Temp is expressed in hours
// because it churns fastest; the safety margin keeps entries a concurrent
// pipeline may still be writing out of reach.
type RetentionConfig struct {
    UploadsMaxAgeDays int
    OutputsMaxAgeDays int
    TempMaxAgeHours   int
    LogsMaxAgeDays    int
    LogSuffix         string
    TempSafetyMargin  time.Duration
    SweepInterval     time.Duration
}

// ServerConfig defines HTTP server behavior.
type ServerConfig struct {
    Port            string
    MaxUploadMB     int64
    SessionTTL      time.Duration
    RedisURL        string // empty = in-memory session store
    ShutdownTimeout time.Duration
}

// ArchiveConfig defines optional S3 archiving of batch outputs.
type ArchiveConfig struct {
    Enabled bool
    Bucket  string
    Prefix  string
}

// Config is the top-level configuration.
type Config struct {
    Logging   LoggingConfig
    Axiom     AxiomConfig
    Storage   StorageConfig
    Pipeline  PipelineConfig
    Batch     BatchConfig
    Retention RetentionConfig
    Server    ServerConfig
    Archive   ArchiveConfig
}

// FromEnv loads configuration from environment with sensible defaults.
func FromEnv() Config {
    cfg := Config{}

    cfg.Logging = LoggingConfig{
        Level:      getEnv("LOG_LEVEL", "info"),
        Pretty:     parseBool(getEnv("LOG_PRETTY", devDefaultPretty())),
        File:       getEnv("LOG_FILE", "logs/pdfocr.log"),
        MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
        MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "10"), 10),
        MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
        Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
    }

    baseDataset := getEnv("AXIOM_DATASET", "dev")
    cfg.Axiom = AxiomConfig{
        Send:          parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
        APIKey:        getEnv("AXIOM_API_KEY", ""),
        OrgID:         getEnv("AXIOM_ORG_ID", ""),
        Dataset:       baseDataset + "_pdfocr",
        FlushInterval: parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", "10s"), 10*time.Second),
    }

    dataDir := getEnv("DATA_DIR", "data")
    cfg.Storage = StorageConfig{
        UploadsDir: getEnv("UPLOADS_DIR", filepath.Join(dataDir, "uploads")),
        OutputsDir: getEnv("OUTPUTS_DIR", filepath.Join(dataDir, "outputs")),
        TempDir:    getEnv("TEMP_DIR", filepath.Join(dataDir, "temp")),
        LogsDir:    getEnv("LOGS_DIR", "logs"),
    }

    cfg.Pipeline = PipelineConfig{
        Language:   getEnv("OCR_LANGUAGE", "ara"),
        Format:     getEnv("IMAGE_FORMAT", "png"),
        DPI:        parseInt(getEnv("IMAGE_DPI", "300"), 300),
        Quality:    parseInt(getEnv("IMAGE_QUALITY", "90"), 90),
        KeepImages: parseBool(getEnv("KEEP_IMAGES", "0")),
    }

    cfg.Batch = BatchConfig{
        Concurrency: parseInt(getEnv("BATCH_CONCURRENCY", "2"), 2),
    }

    cfg.Retention = RetentionConfig{
        UploadsMaxAgeDays: parseInt(getEnv("RETENTION_UPLOADS_DAYS", "7"), 7),
        OutputsMaxAgeDays: parseInt(getEnv("RETENTION_OUTPUTS_DAYS", "30"), 30),
        TempMaxAgeHours:   parseInt(getEnv("RETENTION_TEMP_HOURS", "24"), 24),
        LogsMaxAgeDays:    parseInt(getEnv("RETENTION_LOGS_DAYS", "14"), 14),
        LogSuffix:         getEnv("RETENTION_LOG_SUFFIX", ".log"),
        TempSafetyMargin:  parseDuration(getEnv("RETENTION_TEMP_SAFETY_MARGIN", "15m"), 15*time.Minute),
        SweepInterval:     parseDuration(getEnv("RETENTION_SWEEP_INTERVAL", "1h"), time.Hour),
    }

    cfg.Server = ServerConfig{
        Port:            getEnv("PORT", "8080"),
        MaxUploadMB:     int64(parseInt(getEnv("MAX_UPLOAD_MB", "64"), 64)),
        SessionTTL:      parseDuration(getEnv("SESSION_TTL", "24h"), 24*time.Hour),
        RedisURL:        getEnv("REDIS_URL", ""),
        ShutdownTimeout: parseDuration(getEnv("SHUTDOWN_TIMEOUT", "10s"), 10*time.Second),
    }

    cfg.Archive = ArchiveConfig{
        Enabled: parseBool(getEnv("ARCHIVE_TO_S3", "0")),
        Bucket:  getEnv("ARCHIVE_S3_BUCKET", ""),
        Prefix:  getEnv("ARCHIVE_S3_PREFIX", "ocr-results"),
    }
    if cfg.Archive.Bucket == "" {
        cfg.Archive.Enabled = false
    }

    return cfg
}

// Helpers
func getEnv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func parseInt(s string, def int) int {
    if s == "" {
        return def
    }
    if n, err := strconv.Atoi(s); err == nil {
        return n
    }
    return def
}

func parseBool(s string) bool {
    v := strings.ToLower(strings.TrimSpace(s))
    return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
    if s == "" {
        return def
    }
    if d, err := time.ParseDuration(s); err == nil {
        return d
    }
    return def
}

func devDefaultPretty() string {
    env := strings.ToLower(os.Getenv("ENVIRONMENT"))
    if env == "dev" || env == "development" || env == "local" {
        return "true"
    }
    return "false"
}
