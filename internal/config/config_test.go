package config

import (
	"testing"
	"time"

	"github.com/dgallion1/studyhub/internal/render"
	"github.com/dgallion1/studyhub/internal/sheet"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "WORKER_COUNT", "JOB_TTL", "DEFAULT_SIZE", "MAX_FORMULA_BYTES", "SHEET_MAX_FORMULA_BYTES", "PDF_FALLBACK_PDFTOTEXT"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %q", cfg.Port)
	}
	if cfg.WorkerCount != 4 || cfg.JobTTL != time.Hour || cfg.MaxFormulaBytes != 10000 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.SheetMaxFormulaBytes != sheet.MaxFormulaBytes {
		t.Errorf("expected sheet formula limit %d, got %d", sheet.MaxFormulaBytes, cfg.SheetMaxFormulaBytes)
	}
	if cfg.DefaultSize != render.Medium {
		t.Errorf("expected medium default size, got %q", cfg.DefaultSize)
	}
	if !cfg.PDFFallbackPdftotext {
		t.Error("expected pdftotext fallback on by default")
	}
}

func TestLoad_OverridesAndClamps(t *testing.T) {
	t.Setenv("WORKER_COUNT", "-2")
	t.Setenv("MAX_QUEUE_SIZE", "7")
	t.Setenv("JOB_TTL", "90s")
	t.Setenv("MAX_UPLOAD_BYTES", "not-a-number")
	t.Setenv("PDF_FALLBACK_PDFTOTEXT", "false")
	t.Setenv("DEFAULT_SIZE", "large")

	cfg := Load()
	if cfg.WorkerCount != 4 {
		t.Errorf("expected negative worker count clamped to 4, got %d", cfg.WorkerCount)
	}
	if cfg.MaxQueueSize != 7 {
		t.Errorf("expected queue size 7, got %d", cfg.MaxQueueSize)
	}
	if cfg.JobTTL != 90*time.Second {
		t.Errorf("expected 90s TTL, got %v", cfg.JobTTL)
	}
	if cfg.MaxUploadBytes != 10485760 {
		t.Errorf("expected fallback upload limit, got %d", cfg.MaxUploadBytes)
	}
	if cfg.PDFFallbackPdftotext {
		t.Error("expected pdftotext fallback disabled")
	}
	if cfg.DefaultSize != render.Large {
		t.Errorf("expected large, got %q", cfg.DefaultSize)
	}
}

func TestLoad_SheetFormulaLimitWithinRequestLimit(t *testing.T) {
	t.Setenv("MAX_FORMULA_BYTES", "300")
	t.Setenv("SHEET_MAX_FORMULA_BYTES", "2000")
	if cfg := Load(); cfg.SheetMaxFormulaBytes != 300 {
		t.Errorf("expected sheet limit clamped to 300, got %d", cfg.SheetMaxFormulaBytes)
	}

	t.Setenv("MAX_FORMULA_BYTES", "")
	t.Setenv("SHEET_MAX_FORMULA_BYTES", "1200")
	if cfg := Load(); cfg.SheetMaxFormulaBytes != 1200 {
		t.Errorf("expected sheet limit 1200, got %d", cfg.SheetMaxFormulaBytes)
	}
}

func TestValidate(t *testing.T) {
	ok := Config{StudyhubAPIKey: "k", DefaultSize: render.Small}
	if err := ok.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	bad := []Config{
		{DefaultSize: render.Small},
		{StudyhubAPIKey: "k", DefaultSize: "huge"},
		{StudyhubAPIKey: "k", ContentStoreURL: "http://store"},
	}
	for i, c := range bad {
		if err := c.Validate(); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}
