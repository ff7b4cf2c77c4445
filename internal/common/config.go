package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	OCR      OCRConfig      `yaml:"ocr"`
	LLM      LLMConfig      `yaml:"llm"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Extract  ExtractConfig  `yaml:"extract"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig holds database-related configuration. DSN is either a
// postgres URL or "sqlite://<path>" / ":memory:".
type DatabaseConfig struct {
	DSN              string        `yaml:"dsn"`
	MaxConns         int32         `yaml:"max_conns"`
	MinConns         int32         `yaml:"min_conns"`
	MaxConnLifetime  time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime  time.Duration `yaml:"max_conn_idle_time"`
	DialTimeout      time.Duration `yaml:"dial_timeout"`
	StatementTimeout time.Duration `yaml:"statement_timeout"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr    string `yaml:"grpc_addr"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Tesseract           string `yaml:"tesseract"`
	Lang                string `yaml:"lang"`
	PSM                 int    `yaml:"psm"`
	EnableTSVConfidence bool   `yaml:"enable_tsv_confidence"`
	HeicConverter       string `yaml:"heic_converter"`
	TessdataDir         string `yaml:"tessdata_dir"`
	ArtifactCacheDir    string `yaml:"artifact_cache_dir"`
}

// LLMConfig holds configuration for the optional Gemini refiner.
type LLMConfig struct {
	Model             string        `yaml:"model"`
	APIKey            string        `yaml:"api_key"`
	Temperature       float32       `yaml:"temperature"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
}

// Enabled reports whether refinement can run at all.
func (c LLMConfig) Enabled() bool { return c.APIKey != "" }

// IngestConfig covers the inbox watcher, upload store and worker queue.
type IngestConfig struct {
	InboxDir    string        `yaml:"inbox_dir"`
	ArtifactDir string        `yaml:"artifact_dir"`
	Debounce    time.Duration `yaml:"debounce"`
	Workers     int           `yaml:"workers"`
	QueueSize   int           `yaml:"queue_size"`
	JobTimeout  time.Duration `yaml:"job_timeout"`
}

type ExtractConfig struct {
	DefaultCallingCode string  `yaml:"default_calling_code"`
	MinConfidence      float32 `yaml:"min_confidence"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:             "sqlite://b2breeze.db",
			MaxConns:        20,
			MinConns:        5,
			MaxConnLifetime: 30 * time.Minute,
			MaxConnIdleTime: 5 * time.Minute,
			DialTimeout:     3 * time.Second,
		},
		Server: ServerConfig{
			GRPCAddr:    ":8080",
			MetricsAddr: ":9090",
		},
		OCR: OCRConfig{
			Tesseract:           "tesseract",
			Lang:                "eng",
			PSM:                 11,
			EnableTSVConfidence: true,
			HeicConverter:       "magick",
			ArtifactCacheDir:    "./tmp",
		},
		LLM: LLMConfig{
			Model:             "gemini-2.5-flash",
			Timeout:           45 * time.Second,
			RequestsPerMinute: 60,
		},
		Ingest: IngestConfig{
			ArtifactDir: "./data/cards",
			Debounce:    500 * time.Millisecond,
			Workers:     2,
			QueueSize:   64,
			JobTimeout:  2 * time.Minute,
		},
		Extract: ExtractConfig{DefaultCallingCode: "1", MinConfidence: 0.6},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	cfg := defaultConfig()
	applyEnv(cfg)
	return cfg
}

// LoadConfigFile reads a YAML config file and then applies environment
// overrides on top of it. An empty path behaves like LoadConfig.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, NewAppError("CONFIG_ERROR", "invalid yaml in "+path, err)
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(c *Config) {
	c.Database.DSN = getEnv("DB_URL", c.Database.DSN)
	c.Database.MaxConns = getEnvAsInt32("DB_MAX_CONNS", c.Database.MaxConns)
	c.Database.MinConns = getEnvAsInt32("DB_MIN_CONNS", c.Database.MinConns)
	c.Database.MaxConnLifetime = getEnvAsDuration("DB_MAX_CONN_LIFETIME", c.Database.MaxConnLifetime)
	c.Database.MaxConnIdleTime = getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", c.Database.MaxConnIdleTime)
	c.Database.DialTimeout = getEnvAsDuration("DB_DIAL_TIMEOUT", c.Database.DialTimeout)
	c.Database.StatementTimeout = getEnvAsDuration("DB_STATEMENT_TIMEOUT", c.Database.StatementTimeout)

	c.Server.GRPCAddr = getEnv("GRPC_ADDR", c.Server.GRPCAddr)
	c.Server.MetricsAddr = getEnv("METRICS_ADDR", c.Server.MetricsAddr)

	c.OCR.Tesseract = getEnv("TESSERACT_BIN", c.OCR.Tesseract)
	c.OCR.Lang = getEnv("TESSERACT_LANG", c.OCR.Lang)
	c.OCR.PSM = getEnvAsInt("TESSERACT_PSM", c.OCR.PSM)
	c.OCR.EnableTSVConfidence = getEnvAsBool("OCR_TSV_CONFIDENCE", c.OCR.EnableTSVConfidence)
	c.OCR.HeicConverter = getEnv("HEIC_CONVERTER", c.OCR.HeicConverter)
	c.OCR.TessdataDir = getEnv("TESSDATA_PREFIX", c.OCR.TessdataDir)
	c.OCR.ArtifactCacheDir = getEnv("ARTIFACT_CACHE_DIR", c.OCR.ArtifactCacheDir)

	c.LLM.Model = getEnv("GEMINI_MODEL", c.LLM.Model)
	c.LLM.APIKey = getEnv("GEMINI_API_KEY", c.LLM.APIKey)
	c.LLM.Temperature = getEnvAsFloat32("GEMINI_TEMPERATURE", c.LLM.Temperature)
	c.LLM.Timeout = getEnvAsDuration("GEMINI_TIMEOUT", c.LLM.Timeout)
	c.LLM.RequestsPerMinute = getEnvAsInt("GEMINI_RPM", c.LLM.RequestsPerMinute)

	c.Ingest.InboxDir = getEnv("INBOX_DIR", c.Ingest.InboxDir)
	c.Ingest.ArtifactDir = getEnv("CARD_STORE_DIR", c.Ingest.ArtifactDir)
	c.Ingest.Debounce = getEnvAsDuration("INBOX_DEBOUNCE", c.Ingest.Debounce)
	c.Ingest.Workers = getEnvAsInt("SCAN_WORKERS", c.Ingest.Workers)
	c.Ingest.QueueSize = getEnvAsInt("SCAN_QUEUE_SIZE", c.Ingest.QueueSize)
	c.Ingest.JobTimeout = getEnvAsDuration("SCAN_JOB_TIMEOUT", c.Ingest.JobTimeout)

	c.Extract.DefaultCallingCode = getEnv("DEFAULT_CALLING_CODE", c.Extract.DefaultCallingCode)
	c.Extract.MinConfidence = getEnvAsFloat32("MIN_OCR_CONFIDENCE", c.Extract.MinConfidence)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR is required", ErrInvalidInput)
	}
	if c.Ingest.Workers < 1 {
		return NewAppError("CONFIG_ERROR", "SCAN_WORKERS must be at least 1", ErrInvalidInput)
	}
	if cc := c.Extract.DefaultCallingCode; cc == "" || strings.Trim(cc, "0123456789") != "" {
		return NewAppError("CONFIG_ERROR", "DEFAULT_CALLING_CODE must be digits", ErrInvalidInput)
	}
	if c.Extract.MinConfidence < 0 || c.Extract.MinConfidence > 1 {
		return NewAppError("CONFIG_ERROR", "MIN_OCR_CONFIDENCE must be within 0..1", ErrInvalidInput)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return NewAppError("CONFIG_ERROR", "LOG_FORMAT must be text or json", ErrInvalidInput)
	}
	return nil
}
