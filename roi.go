package vitrine

import (
	"fmt"
	"math"
	"os"

	"github.com/goccy/go-yaml"
)

// ROIPlan describes what one subscription tier is expected to recover for a
// restaurant, expressed as fractions of the relevant monthly figures.
type ROIPlan struct {
	Name            string  `yaml:"name" json:"name"`
	MonthlyPrice    float64 `yaml:"monthly_price" json:"monthlyPrice"`
	NoShowReduction float64 `yaml:"no_show_reduction" json:"noShowReduction"`
	WasteReduction  float64 `yaml:"waste_reduction" json:"wasteReduction"`
	AdminHoursSaved float64 `yaml:"admin_hours_saved" json:"adminHoursSaved"` // per week
}

// ROIConfig is the tunable table the calculator runs over. Marketing adjusts
// it without a deploy by pointing ROIConfigPath at a YAML file.
type ROIConfig struct {
	HourlyRate    float64            `yaml:"hourly_rate"`     // value of one admin hour
	FoodCostShare float64            `yaml:"food_cost_share"` // food cost as a share of revenue
	WasteShare    float64            `yaml:"waste_share"`     // share of food cost thrown away
	Plans         map[string]ROIPlan `yaml:"plans"`
}

// DefaultROIConfig returns the built-in plan table.
func DefaultROIConfig() ROIConfig {
	return ROIConfig{
		HourlyRate:    22,
		FoodCostShare: 0.30,
		WasteShare:    0.10,
		Plans: map[string]ROIPlan{
			"essentiel": {
				Name:            "Essentiel",
				MonthlyPrice:    49,
				NoShowReduction: 0.40,
				WasteReduction:  0.15,
				AdminHoursSaved: 3,
			},
			"pro": {
				Name:            "Pro",
				MonthlyPrice:    99,
				NoShowReduction: 0.60,
				WasteReduction:  0.30,
				AdminHoursSaved: 6,
			},
		},
	}
}

// LoadROIConfig reads a plan table from a YAML file, or returns the built-in
// table when path is empty.
func LoadROIConfig(path string) (ROIConfig, error) {
	if path == "" {
		return DefaultROIConfig(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return ROIConfig{}, fmt.Errorf("read roi config: %w", err)
	}
	var cfg ROIConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return ROIConfig{}, fmt.Errorf("parse roi config: %w", err)
	}
	return cfg, nil
}

// ROIInput is the visitor-supplied side of the calculation.
type ROIInput struct {
	Plan          string  `json:"plan" validate:"required"`
	CoversPerDay  float64 `json:"coversPerDay" validate:"required,gt=0"`
	AverageTicket float64 `json:"averageTicket" validate:"required,gt=0"`
	NoShowRate    float64 `json:"noShowRate" validate:"gte=0,lte=1"`
	DaysPerWeek   float64 `json:"daysPerWeek" validate:"required,gte=1,lte=7"`
}

// ROIResult is the monthly breakdown returned to the calculator widget.
type ROIResult struct {
	Plan             string  `json:"plan"`
	MonthlyCost      float64 `json:"monthlyCost"`
	NoShowRecovered  float64 `json:"noShowRecovered"`
	WasteSavings     float64 `json:"wasteSavings"`
	AdminTimeSavings float64 `json:"adminTimeSavings"`
	TotalGain        float64 `json:"totalGain"`
	NetGain          float64 `json:"netGain"`
	ROIMultiple      float64 `json:"roiMultiple"`
}

// weeksPerMonth converts weekly figures to monthly ones.
const weeksPerMonth = 52.0 / 12.0

// Calculate runs the arithmetic for one plan over the visitor's numbers.
func (c ROIConfig) Calculate(in ROIInput) (ROIResult, error) {
	plan, ok := c.Plans[in.Plan]
	if !ok {
		return ROIResult{}, fmt.Errorf("unknown plan %q", in.Plan)
	}

	monthlyRevenue := in.CoversPerDay * in.AverageTicket * in.DaysPerWeek * weeksPerMonth
	noShowRecovered := monthlyRevenue * in.NoShowRate * plan.NoShowReduction
	wasteSavings := monthlyRevenue * c.FoodCostShare * c.WasteShare * plan.WasteReduction
	adminSavings := plan.AdminHoursSaved * c.HourlyRate * weeksPerMonth

	totalGain := noShowRecovered + wasteSavings + adminSavings
	netGain := totalGain - plan.MonthlyPrice

	result := ROIResult{
		Plan:             in.Plan,
		MonthlyCost:      plan.MonthlyPrice,
		NoShowRecovered:  round2(noShowRecovered),
		WasteSavings:     round2(wasteSavings),
		AdminTimeSavings: round2(adminSavings),
		TotalGain:        round2(totalGain),
		NetGain:          round2(netGain),
	}
	if plan.MonthlyPrice > 0 {
		result.ROIMultiple = round2(totalGain / plan.MonthlyPrice)
	}
	return result, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
