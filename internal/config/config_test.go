package config

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("TECHNICAL_QUESTIONS", "")
	t.Setenv("TECHNICAL_CUTOFF", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8086" {
		t.Fatalf("unexpected default port: %s", cfg.Port)
	}
	if cfg.Provider != "gemini" {
		t.Fatalf("unexpected default provider: %s", cfg.Provider)
	}
	if cfg.TechnicalQuestions != 0 {
		t.Fatalf("expected zero override, got %d", cfg.TechnicalQuestions)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("TECHNICAL_QUESTIONS", "5")
	t.Setenv("HR_QUESTIONS", "3")
	t.Setenv("TECHNICAL_CUTOFF", "65.5")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.TechnicalQuestions != 5 || cfg.HRQuestions != 3 {
		t.Fatalf("unexpected question counts: %+v", cfg)
	}
	if cfg.TechnicalCutoff != 65.5 {
		t.Fatalf("unexpected cutoff: %v", cfg.TechnicalCutoff)
	}
}

func TestLoadConfigRejectsUnknownProvider(t *testing.T) {
	t.Setenv("AI_PROVIDER", "openai")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

func TestLoadConfigRejectsOutOfRangeCutoff(t *testing.T) {
	t.Setenv("TECHNICAL_CUTOFF", "120")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for cutoff above 100")
	}
}
