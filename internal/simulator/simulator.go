// Package simulator estimates the inference footprint of running a model in a
// region. The estimate is linear: energy grows with model size, request rate
// and duration, CO2 is energy times the region's grid intensity.
package simulator

import (
	"math"
	"strings"
	"time"

	"github.com/idlab-discover/carbonscope-cli/internal/apperr"
	"github.com/idlab-discover/carbonscope-cli/internal/catalog"
)

// EnergyPerParamKWh is the energy of one request per billion parameters.
const EnergyPerParamKWh = 0.0001

const (
	DefaultFrequency    = 100
	DefaultDurationDays = 30
)

// Conversion factors, in kg CO2 per unit.
const (
	CarKgPerKm        = 0.17
	TreeKgPerYear     = 25
	PhoneKgPerCharge  = 0.005
	FlightKgPerFlight = 1000
	BeefKgPerKg       = 60
)

// Equivalents translate a CO2 mass into everyday units.
type Equivalents struct {
	CarKm        float64 `json:"car_km" yaml:"car_km"`
	Trees        int     `json:"trees" yaml:"trees"`
	PhoneCharges int     `json:"smartphone_charges" yaml:"smartphone_charges"`
	Flights      float64 `json:"flights" yaml:"flights"`
	BeefKg       float64 `json:"beef_kg" yaml:"beef_kg"`
}

// EquivalentsFor converts co2Kg. Everything is zero for a non-positive mass.
func EquivalentsFor(co2Kg float64) Equivalents {
	if co2Kg <= 0 {
		return Equivalents{}
	}
	return Equivalents{
		CarKm:        co2Kg / CarKgPerKm,
		Trees:        int(math.Ceil(co2Kg / TreeKgPerYear)),
		PhoneCharges: int(math.Ceil(co2Kg / PhoneKgPerCharge)),
		Flights:      co2Kg / FlightKgPerFlight,
		BeefKg:       co2Kg / BeefKgPerKg,
	}
}

// Input is one simulation request. Model and Region are nil until chosen.
type Input struct {
	Model        *catalog.Model
	Region       *catalog.Region
	Frequency    int
	DurationDays int
}

// Result is a simulation outcome.
type Result struct {
	ID           string    `json:"id,omitempty" yaml:"id,omitempty"`
	ModelID      string    `json:"model_id" yaml:"model_id"`
	ModelName    string    `json:"model_name" yaml:"model_name"`
	RegionID     string    `json:"region_id" yaml:"region_id"`
	RegionName   string    `json:"region_name" yaml:"region_name"`
	Frequency    int       `json:"frequency_per_day" yaml:"frequency_per_day"`
	DurationDays int       `json:"duration_days" yaml:"duration_days"`
	EnergyKWh    float64   `json:"total_energy_kwh" yaml:"total_energy_kwh"`
	CO2Kg        float64   `json:"total_co2_kg" yaml:"total_co2_kg"`
	Equivalents  `yaml:",inline"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
}

// Validate reports a missing selection or a non-positive rate as a UserError.
func (in Input) Validate() error {
	var missing []string
	if in.Model == nil {
		missing = append(missing, "a model")
	}
	if in.Region == nil {
		missing = append(missing, "a region")
	}
	if len(missing) > 0 {
		return apperr.Userf("select %s before running the simulation", strings.Join(missing, " and "))
	}
	if in.Frequency <= 0 {
		return apperr.Userf("frequency must be a positive number of requests per day (got %d)", in.Frequency)
	}
	if in.DurationDays <= 0 {
		return apperr.Userf("duration must be a positive number of days (got %d)", in.DurationDays)
	}
	return nil
}

// Energy is params x EnergyPerParamKWh x frequency x days, in kWh.
func Energy(paramsBillions float64, frequency, days int) float64 {
	return paramsBillions * EnergyPerParamKWh * float64(frequency) * float64(days)
}

// Simulate runs the estimate. It never touches the network.
func Simulate(in Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}
	energy := Energy(in.Model.ParametersBillions, in.Frequency, in.DurationDays)
	co2 := energy * in.Region.CO2Factor
	if energy < 0 || co2 < 0 {
		energy, co2 = 0, 0
	}
	res := Result{
		ModelID:      in.Model.ID,
		ModelName:    in.Model.Name,
		RegionID:     in.Region.ID,
		RegionName:   in.Region.Name,
		Frequency:    in.Frequency,
		DurationDays: in.DurationDays,
		EnergyKWh:    energy,
		CO2Kg:        co2,
		Equivalents:  EquivalentsFor(co2),
		CreatedAt:    time.Now().UTC(),
	}
	logf(in.Model.Name, "%s %d/day x %d days -> %.3f kWh, %.3f kg CO2",
		in.Region.ID, in.Frequency, in.DurationDays, energy, co2)
	return res, nil
}

// FindRegion looks a region up by id or case-insensitive name.
func FindRegion(regions []catalog.Region, key string) (*catalog.Region, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, apperr.User("select a region before running the simulation")
	}
	for i := range regions {
		if regions[i].ID == key || strings.EqualFold(regions[i].Name, key) {
			r := regions[i]
			return &r, nil
		}
	}
	ids := make([]string, 0, len(regions))
	for _, r := range regions {
		ids = append(ids, r.ID)
	}
	return nil, apperr.Userf("unknown region %q (expected one of %s)", key, strings.Join(ids, "|"))
}
