package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgallion1/studyhub/internal/render"
	"github.com/dgallion1/studyhub/internal/sheet"
)

type Config struct {
	Port string

	// Auth
	StudyhubAPIKey string

	// Content store publishing (disabled when URL is empty)
	ContentStoreURL    string
	ContentStoreAPIKey string

	// Worker pool
	WorkerCount         int
	MaxQueueSize        int
	MaxConcurrentRender int
	MaxConcurrentStore  int

	// Request limits
	MaxUploadBytes       int64
	MaxFormulaBytes      int // single formula on the formula endpoints
	SheetMaxFormulaBytes int // formula_text of a sheet row; at most MaxFormulaBytes

	// Rendering
	DefaultSize     render.Size
	RenderCachePath string
	SymbolsFile     string

	// Job state
	JobTTL time.Duration

	// Rolling window for latency stats
	StatsWindow time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		StudyhubAPIKey: os.Getenv("STUDYHUB_API_KEY"),

		ContentStoreURL:    os.Getenv("CONTENT_STORE_URL"),
		ContentStoreAPIKey: os.Getenv("CONTENT_STORE_API_KEY"),

		WorkerCount:         envInt("WORKER_COUNT", 4),
		MaxQueueSize:        envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentRender: envInt("MAX_CONCURRENT_RENDER", 8),
		MaxConcurrentStore:  envInt("MAX_CONCURRENT_STORE", 10),

		MaxUploadBytes:       envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB
		MaxFormulaBytes:      envInt("MAX_FORMULA_BYTES", 10000),
		SheetMaxFormulaBytes: envInt("SHEET_MAX_FORMULA_BYTES", sheet.MaxFormulaBytes),

		DefaultSize:     render.Size(envOr("DEFAULT_SIZE", string(render.Medium))),
		RenderCachePath: os.Getenv("RENDER_CACHE_PATH"),
		SymbolsFile:     os.Getenv("SYMBOLS_FILE"),

		JobTTL:      envDuration("JOB_TTL", 1*time.Hour),
		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentRender <= 0 {
		cfg.MaxConcurrentRender = 8
	}
	if cfg.MaxConcurrentStore <= 0 {
		cfg.MaxConcurrentStore = 10
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.MaxFormulaBytes <= 0 {
		cfg.MaxFormulaBytes = 10000
	}
	if cfg.SheetMaxFormulaBytes <= 0 {
		cfg.SheetMaxFormulaBytes = sheet.MaxFormulaBytes
	}
	cfg.SheetMaxFormulaBytes = min(cfg.SheetMaxFormulaBytes, cfg.MaxFormulaBytes)
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}
	if sz, err := render.ParseSize(string(cfg.DefaultSize)); err == nil {
		cfg.DefaultSize = sz
	}

	return cfg
}

func (c Config) Validate() error {
	if c.StudyhubAPIKey == "" {
		return fmt.Errorf("STUDYHUB_API_KEY is required")
	}
	if _, err := render.ParseSize(string(c.DefaultSize)); err != nil {
		return fmt.Errorf("DEFAULT_SIZE: %w", err)
	}
	if c.ContentStoreURL != "" && c.ContentStoreAPIKey == "" {
		return fmt.Errorf("CONTENT_STORE_API_KEY is required when CONTENT_STORE_URL is set")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
