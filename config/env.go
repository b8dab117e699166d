package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnvFile loads KEY=VALUE pairs into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides rules from TAC_* environment variables.
func ApplyEnv(rules *Rules) error {
	ints := map[string]*int{
		"TAC_CLIENTS":         &rules.Clients,
		"TAC_HOTEL_THRESHOLD": &rules.Planner.HotelThreshold,
		"TAC_STAY_CUTOFF":     &rules.Planner.StayCutoff,
		"TAC_PENDING_LIMIT":   &rules.Bids.PendingLimit,
	}
	floats := map[string]*float64{
		"TAC_FLIGHT_FLOOR":      &rules.Flight.Floor,
		"TAC_FLIGHT_CEILING":    &rules.Flight.Ceiling,
		"TAC_HOTEL_CEILING":     &rules.Hotel.Ceiling,
		"TAC_HOTEL_INCREMENT":   &rules.Hotel.Increment,
		"TAC_REBALANCE_PENALTY": &rules.Rebalance.Penalty,
	}
	durations := map[string]*time.Duration{
		"TAC_GAME_LENGTH":         &rules.GameLength,
		"TAC_FLIGHT_SNAP":         &rules.Flight.SnapTimeLeft,
		"TAC_REBALANCE_TIME_LEFT": &rules.Rebalance.TimeLeft,
	}

	for key, dst := range ints {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid int for %s: %q", key, v)
			}
			*dst = n
		}
	}
	for key, dst := range floats {
		if v, ok := os.LookupEnv(key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid float for %s: %q", key, v)
			}
			*dst = f
		}
	}
	for key, dst := range durations {
		if v, ok := os.LookupEnv(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid duration for %s: %q", key, v)
			}
			*dst = d
		}
	}

	return rules.Validate()
}
