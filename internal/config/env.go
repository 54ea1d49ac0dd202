package config

import (
	"os"
	"strconv"
	"time"
)

// FromEnv loads balance configuration from environment variables.
// Falls back to defaults if variables are not set.
func FromEnv() Balance {
	cfg := Default()

	if val := getEnvInt("STARTING_CASH"); val > 0 {
		cfg.StartingCash = val
	}
	if val := os.Getenv("STARTING_CITY"); val != "" {
		cfg.StartingCity = val
	}
	if val := getEnvInt("SUPPLY_CAP"); val > 0 {
		cfg.SupplyCap = val
	}
	if val := getEnvInt("BULK_PURCHASE_THRESHOLD"); val > 0 {
		cfg.BulkPurchaseThreshold = val
	}
	if val := getEnvInt("BULK_WARRANT_PER_UNIT"); val >= 0 {
		cfg.BulkWarrantPerUnit = val
	}
	if val := getEnvInt("OUTPOST_MIN_GANG_SIZE"); val > 0 {
		cfg.OutpostMinGangSize = val
	}
	if val := getEnvDuration("RAID_COOLDOWN"); val > 0 {
		cfg.RaidCooldown = val
	}
	if val := getEnvDuration("TICK_INTERVAL"); val > 0 {
		cfg.TickInterval = val
	}
	if val := getEnvDuration("DROP_TTL"); val > 0 {
		cfg.DropTTL = val
	}

	// Support preset modes
	if mode := os.Getenv("DIFFICULTY"); mode != "" {
		switch mode {
		case "casual":
			return Casual()
		case "hard":
			return Hard()
		}
	}

	return cfg
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}

func getEnvDuration(key string) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0
	}
	return d
}
