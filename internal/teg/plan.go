// Package teg estimates the aggregate energy, emissions, and cost impact of
// a thermoelectric generator deployment.
package teg

import (
	"fmt"
	"math"
	"strconv"
)

// Emission and tariff constants.
const (
	CO2PerKWhKg       = 0.7        // kg CO2 offset per kWh generated
	CarbonCreditPerKg = 1.0 / 1000 // 1 credit per 1000 kg CO2
	TariffMinRM       = 0.218      // RM/kWh, low-usage TNB tariff band
	TariffMaxRM       = 0.571      // RM/kWh, high-usage TNB tariff band
)

// PlanInput describes a candidate TEG deployment.
type PlanInput struct {
	NumModules        int     `json:"num_tegs" validate:"gte=0"`
	EnergyPerModuleWh float64 `json:"energy_per_module_wh" validate:"gte=0"` // Wh/day
	CostPerModuleRM   float64 `json:"cost_per_module_rm"`                    // accepted, not used in estimates
}

// PlanResult holds the daily estimates. Field labels follow the report
// format consumed by the frontend.
type PlanResult struct {
	TotalEnergyWh  float64 `json:"Total Energy Generated (Wh/day)"`
	TotalEnergyKWh float64 `json:"Total Energy (kWh/day)"`
	NumModules     int     `json:"Number of TEG Modules"`
	CO2SavedKg     float64 `json:"CO2 Saved (kg/day)"`
	CarbonCredits  float64 `json:"Carbon Credits Earned per Day"`
	CostSavingsRM  string  `json:"Daily Energy Cost Savings (RM Range)"`
}

// CalculatePlan is a pure function: identical inputs always produce
// identical results.
func CalculatePlan(in PlanInput) PlanResult {
	totalWh := float64(in.NumModules) * in.EnergyPerModuleWh
	totalKWh := totalWh / 1000

	co2 := totalKWh * CO2PerKWhKg
	credits := co2 * CarbonCreditPerKg

	minSavings := totalKWh * TariffMinRM
	maxSavings := totalKWh * TariffMaxRM

	return PlanResult{
		TotalEnergyWh:  totalWh,
		TotalEnergyKWh: round(totalKWh, 3),
		NumModules:     in.NumModules,
		CO2SavedKg:     round(co2, 3),
		CarbonCredits:  round(credits, 6),
		CostSavingsRM:  fmt.Sprintf("RM %s - RM %s", formatRM(minSavings), formatRM(maxSavings)),
	}
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// formatRM renders an amount to four decimal places with trailing zeros
// trimmed, so small per-day savings stay distinguishable.
func formatRM(v float64) string {
	return strconv.FormatFloat(round(v, 4), 'f', -1, 64)
}
