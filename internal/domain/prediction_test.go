package domain

import "testing"

func TestClassifyRisk(t *testing.T) {
	cases := []struct {
		name string
		prob float64
		want RiskLevel
	}{
		{"Zero", 0.0, RiskLow},
		{"BelowMedium", 0.4, RiskLow},
		{"JustAboveMedium", 0.41, RiskMedium},
		{"AtHighBoundary", 0.8, RiskMedium},
		{"AboveHigh", 0.81, RiskHigh},
		{"Certain", 1.0, RiskHigh},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyRisk(tc.prob); got != tc.want {
				t.Errorf("ClassifyRisk(%v) = %v, want %v", tc.prob, got, tc.want)
			}
		})
	}
}

func TestTrainingConfigValidate(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg := DefaultTrainingConfig()
		if err := cfg.Validate(); err != nil {
			t.Fatalf("default config should validate: %v", err)
		}
	})

	t.Run("FullDatasetOverride", func(t *testing.T) {
		cfg := DefaultTrainingConfig()
		cfg.UseFullDataset = true
		cfg.SampleFraction = 0.1
		if err := cfg.Validate(); err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if cfg.SampleFraction != 1.0 {
			t.Errorf("expected full-dataset override to set sample fraction to 1.0, got %v", cfg.SampleFraction)
		}
	})

	t.Run("BadSampleFraction", func(t *testing.T) {
		cfg := DefaultTrainingConfig()
		cfg.SampleFraction = 0
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for zero sample fraction")
		}
		cfg.SampleFraction = 1.5
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for sample fraction above 1")
		}
	})

	t.Run("BadTestFraction", func(t *testing.T) {
		cfg := DefaultTrainingConfig()
		cfg.TestFraction = 1.0
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for test fraction of 1")
		}
	})

	t.Run("MissingPath", func(t *testing.T) {
		cfg := DefaultTrainingConfig()
		cfg.DatasetPath = ""
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for empty dataset path")
		}
	})
}

func TestCategoryEncoding(t *testing.T) {
	enc := &CategoryEncoding{Classes: []string{"CASH_OUT", "TRANSFER"}}

	t.Run("KnownLabel", func(t *testing.T) {
		code, ok := enc.Encode("TRANSFER")
		if !ok || code != 1 {
			t.Errorf("Encode(TRANSFER) = (%d, %v), want (1, true)", code, ok)
		}
	})

	t.Run("UnknownLabel", func(t *testing.T) {
		code, ok := enc.Encode("PAYMENT")
		if ok {
			t.Error("expected ok=false for unseen label")
		}
		if code != DefaultCategoryCode {
			t.Errorf("expected default code %d, got %d", DefaultCategoryCode, code)
		}
	})

	t.Run("Roundtrip", func(t *testing.T) {
		label, ok := enc.Decode(0)
		if !ok || label != "CASH_OUT" {
			t.Errorf("Decode(0) = (%q, %v), want (CASH_OUT, true)", label, ok)
		}
		if _, ok := enc.Decode(5); ok {
			t.Error("expected ok=false for out-of-range code")
		}
	})
}
