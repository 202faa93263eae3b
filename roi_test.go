package vitrine

import (
	"encoding/json"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

func TestCalculateProPlan(t *testing.T) {
	cfg := DefaultROIConfig()
	in := ROIInput{
		Plan:          "pro",
		CoversPerDay:  80,
		AverageTicket: 35,
		NoShowRate:    0.1,
		DaysPerWeek:   6,
	}
	result, err := cfg.Calculate(in)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	monthlyRevenue := 80.0 * 35 * 6 * weeksPerMonth
	wantNoShow := monthlyRevenue * 0.1 * 0.60
	if math.Abs(result.NoShowRecovered-wantNoShow) > 0.01 {
		t.Errorf("NoShowRecovered = %.2f, want %.2f", result.NoShowRecovered, wantNoShow)
	}
	if result.MonthlyCost != 99 {
		t.Errorf("MonthlyCost = %.2f, want 99", result.MonthlyCost)
	}
	wantTotal := result.NoShowRecovered + result.WasteSavings + result.AdminTimeSavings
	if math.Abs(result.TotalGain-wantTotal) > 0.02 {
		t.Errorf("TotalGain = %.2f, want sum of parts %.2f", result.TotalGain, wantTotal)
	}
	if math.Abs(result.NetGain-(result.TotalGain-99)) > 0.01 {
		t.Errorf("NetGain = %.2f, want TotalGain minus cost", result.NetGain)
	}
	if result.ROIMultiple <= 0 {
		t.Errorf("ROIMultiple = %.2f, should be positive", result.ROIMultiple)
	}
}

func TestCalculateUnknownPlan(t *testing.T) {
	cfg := DefaultROIConfig()
	_, err := cfg.Calculate(ROIInput{Plan: "platine", CoversPerDay: 50, AverageTicket: 30, DaysPerWeek: 5})
	if err == nil {
		t.Error("unknown plan should error")
	}
}

func TestCalculateZeroNoShowRate(t *testing.T) {
	cfg := DefaultROIConfig()
	result, err := cfg.Calculate(ROIInput{
		Plan:          "essentiel",
		CoversPerDay:  40,
		AverageTicket: 25,
		NoShowRate:    0,
		DaysPerWeek:   5,
	})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if result.NoShowRecovered != 0 {
		t.Errorf("NoShowRecovered = %.2f, want 0", result.NoShowRecovered)
	}
	if result.WasteSavings <= 0 || result.AdminTimeSavings <= 0 {
		t.Error("other savings should still accrue")
	}
}

func TestLoadROIConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roi.yaml")
	raw := []byte(`hourly_rate: 30
food_cost_share: 0.25
waste_share: 0.12
plans:
  custom:
    name: Custom
    monthly_price: 79
    no_show_reduction: 0.5
    waste_reduction: 0.2
    admin_hours_saved: 4
`)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadROIConfig(path)
	if err != nil {
		t.Fatalf("LoadROIConfig failed: %v", err)
	}
	if cfg.HourlyRate != 30 {
		t.Errorf("HourlyRate = %.2f, want 30", cfg.HourlyRate)
	}
	plan, ok := cfg.Plans["custom"]
	if !ok {
		t.Fatal("custom plan missing")
	}
	if plan.MonthlyPrice != 79 {
		t.Errorf("MonthlyPrice = %.2f, want 79", plan.MonthlyPrice)
	}
}

func TestLoadROIConfigDefault(t *testing.T) {
	cfg, err := LoadROIConfig("")
	if err != nil {
		t.Fatalf("LoadROIConfig failed: %v", err)
	}
	if _, ok := cfg.Plans["essentiel"]; !ok {
		t.Error("default config should include the essentiel plan")
	}
	if _, ok := cfg.Plans["pro"]; !ok {
		t.Error("default config should include the pro plan")
	}
}

func TestROIEndpoint(t *testing.T) {
	a := setupTestApp(t)

	rec := doJSON(a, http.MethodPost, "/api/roi/calculate", "", map[string]any{
		"plan":          "essentiel",
		"coversPerDay":  60,
		"averageTicket": 28,
		"noShowRate":    0.08,
		"daysPerWeek":   6,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var result ROIResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Plan != "essentiel" {
		t.Errorf("plan = %q", result.Plan)
	}
	if result.TotalGain <= 0 {
		t.Errorf("TotalGain = %.2f, should be positive", result.TotalGain)
	}

	rec = doJSON(a, http.MethodPost, "/api/roi/calculate", "", map[string]any{
		"plan":         "essentiel",
		"coversPerDay": -5,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid input status = %d, want 400", rec.Code)
	}
}
