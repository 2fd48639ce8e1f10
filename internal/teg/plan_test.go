package teg

import (
	"reflect"
	"testing"
)

func TestCalculatePlan(t *testing.T) {
	in := PlanInput{
		NumModules:        100,
		EnergyPerModuleWh: 5.0,
		CostPerModuleRM:   2.0,
	}

	got := CalculatePlan(in)

	if got.TotalEnergyWh != 500 {
		t.Errorf("TotalEnergyWh = %f, want 500", got.TotalEnergyWh)
	}
	if got.TotalEnergyKWh != 0.5 {
		t.Errorf("TotalEnergyKWh = %f, want 0.5", got.TotalEnergyKWh)
	}
	if got.NumModules != 100 {
		t.Errorf("NumModules = %d, want 100", got.NumModules)
	}
	if got.CO2SavedKg != 0.35 {
		t.Errorf("CO2SavedKg = %f, want 0.35", got.CO2SavedKg)
	}
	if got.CarbonCredits != 0.00035 {
		t.Errorf("CarbonCredits = %f, want 0.00035", got.CarbonCredits)
	}
	if want := "RM 0.109 - RM 0.2855"; got.CostSavingsRM != want {
		t.Errorf("CostSavingsRM = %q, want %q", got.CostSavingsRM, want)
	}
}

func TestCalculatePlanZeroModules(t *testing.T) {
	got := CalculatePlan(PlanInput{NumModules: 0, EnergyPerModuleWh: 5.0})

	if got.TotalEnergyWh != 0 || got.TotalEnergyKWh != 0 || got.CO2SavedKg != 0 || got.CarbonCredits != 0 {
		t.Errorf("expected all-zero estimates, got %+v", got)
	}
	if want := "RM 0 - RM 0"; got.CostSavingsRM != want {
		t.Errorf("CostSavingsRM = %q, want %q", got.CostSavingsRM, want)
	}
}

func TestCalculatePlanIdempotent(t *testing.T) {
	in := PlanInput{NumModules: 37, EnergyPerModuleWh: 4.2, CostPerModuleRM: 1.5}

	first := CalculatePlan(in)
	for i := 0; i < 5; i++ {
		if got := CalculatePlan(in); !reflect.DeepEqual(got, first) {
			t.Fatalf("call %d produced %+v, want %+v", i, got, first)
		}
	}
}
