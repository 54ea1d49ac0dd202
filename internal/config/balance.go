package config

import "time"

// Balance holds gameplay balance configuration
type Balance struct {
	// Player start
	StartingCash    int    `json:"starting_cash"`
	StartingCity    string `json:"starting_city"`
	NotificationCap int    `json:"notification_cap"`
	GangRecruitCost int    `json:"gang_recruit_cost"`
	GunPrice        int    `json:"gun_price"`

	// Trading
	SupplyMin             int     `json:"supply_min"`
	SupplyMax             int     `json:"supply_max"` // exclusive
	SupplyCap             int     `json:"supply_cap"`
	DailyDriftMin         float64 `json:"daily_drift_min"`
	DailyDriftMax         float64 `json:"daily_drift_max"`
	PriceFloorFactor      float64 `json:"price_floor_factor"`
	PriceCeilFactor       float64 `json:"price_ceil_factor"`
	BulkPurchaseThreshold int     `json:"bulk_purchase_threshold"`
	BulkWarrantPerUnit    int     `json:"bulk_warrant_per_unit"`
	RestockLowThreshold   int     `json:"restock_low_threshold"`
	RestockLowMin         int     `json:"restock_low_min"`
	RestockLowMax         int     `json:"restock_low_max"` // exclusive
	RestockMidThreshold   int     `json:"restock_mid_threshold"`
	RestockMidMin         int     `json:"restock_mid_min"`
	RestockMidMax         int     `json:"restock_mid_max"` // exclusive
	TravelCostBase        int     `json:"travel_cost_base"`
	TravelCostPerIndex    int     `json:"travel_cost_per_index"`

	// Heat
	WarrantHeatDivisor   float64       `json:"warrant_heat_divisor"`
	WarrantHeatCap       float64       `json:"warrant_heat_cap"`
	StayHeatGraceDays    int           `json:"stay_heat_grace_days"`
	StayHeatPerDay       float64       `json:"stay_heat_per_day"`
	TravelWarrantFactor  float64       `json:"travel_warrant_factor"`
	WarrantDecayBase     float64       `json:"warrant_decay_base"`
	WarrantDecayDay3     float64       `json:"warrant_decay_day3"`
	WarrantDecayDay7     float64       `json:"warrant_decay_day7"`
	WarrantDecayDay14    float64       `json:"warrant_decay_day14"`
	PoliceRaidHeatFloor  float64       `json:"police_raid_heat_floor"`
	PoliceRaidChanceCap  float64       `json:"police_raid_chance_cap"`
	PoliceDrugLossMin    float64       `json:"police_drug_loss_min"`
	PoliceDrugLossMax    float64       `json:"police_drug_loss_max"`
	GunMitigationPerGun  float64       `json:"gun_mitigation_per_gun"`
	GunMitigationCap     float64       `json:"gun_mitigation_cap"`
	PoliceCashLossMin    float64       `json:"police_cash_loss_min"`
	PoliceCashLossMax    float64       `json:"police_cash_loss_max"`
	PoliceGunLossMin     float64       `json:"police_gun_loss_min"`
	PoliceGunLossMax     float64       `json:"police_gun_loss_max"`
	PoliceWarrantMin     int           `json:"police_warrant_min"`
	PoliceWarrantMax     int           `json:"police_warrant_max"`
	PoliceCashLossWindow time.Duration `json:"police_cash_loss_window"`
	PoliceCashLossCap    float64       `json:"police_cash_loss_cap"`
	BribeCostFactor      float64       `json:"bribe_cost_factor"`
	BribeReliefFactor    float64       `json:"bribe_relief_factor"`
	BribeBackfireChance  float64       `json:"bribe_backfire_chance"`
	BribeBackfireFactor  float64       `json:"bribe_backfire_factor"`

	// Outposts
	OutpostMinGangSize     int     `json:"outpost_min_gang_size"`
	DrugStockIncomeBonus   float64 `json:"drug_stock_income_bonus"`
	HourlySaleMultiplier   float64 `json:"hourly_sale_multiplier"`
	DefenseRaidChanceCap   float64 `json:"defense_raid_chance_cap"`
	DefenseWarrantFloor    float64 `json:"defense_warrant_floor"`
	DefenseWarrantDivisor  float64 `json:"defense_warrant_divisor"`
	DefenseCap             float64 `json:"defense_cap"`
	DefensePerGang         float64 `json:"defense_per_gang"`
	DefensePerGun          float64 `json:"defense_per_gun"`
	DefenseCashLossMin     float64 `json:"defense_cash_loss_min"`
	DefenseCashLossMax     float64 `json:"defense_cash_loss_max"`
	DefenseGunsLossMin     float64 `json:"defense_guns_loss_min"`
	DefenseGunsLossMax     float64 `json:"defense_guns_loss_max"`
	DefenseGangLossMin     float64 `json:"defense_gang_loss_min"`
	DefenseGangLossMax     float64 `json:"defense_gang_loss_max"`
	DefenseDrugsLossMin    float64 `json:"defense_drugs_loss_min"`
	DefenseDrugsLossMax    float64 `json:"defense_drugs_loss_max"`
	DefenseLossWarrantMin  int     `json:"defense_loss_warrant_min"`
	DefenseLossWarrantMax  int     `json:"defense_loss_warrant_max"`
	DefenseRepelWarrantMin int     `json:"defense_repel_warrant_min"`
	DefenseRepelWarrantMax int     `json:"defense_repel_warrant_max"`

	// Offensive raids
	RaidCooldown        time.Duration `json:"raid_cooldown"`
	EnemyOutpostsMin    int           `json:"enemy_outposts_min"`
	EnemyOutpostsMax    int           `json:"enemy_outposts_max"` // inclusive
	RaidChanceFloor     float64       `json:"raid_chance_floor"`
	RaidChanceCeil      float64       `json:"raid_chance_ceil"`
	RaidLootBaseFactor  float64       `json:"raid_loot_base_factor"`
	RaidLootChanceShare float64       `json:"raid_loot_chance_share"`
	RaidWinWarrantMin   int           `json:"raid_win_warrant_min"`
	RaidWinWarrantMax   int           `json:"raid_win_warrant_max"`
	RaidFailWarrantMin  int           `json:"raid_fail_warrant_min"`
	RaidFailWarrantMax  int           `json:"raid_fail_warrant_max"`

	// Assets
	BaseJewelryCapacity int           `json:"base_jewelry_capacity"`
	BaseCarCapacity     int           `json:"base_car_capacity"`
	DefaultResaleFactor float64       `json:"default_resale_factor"`
	DropTTL             time.Duration `json:"drop_ttl"`
	DropSurgeFactor     float64       `json:"drop_surge_factor"`

	// Simulation
	TickInterval time.Duration `json:"tick_interval"`
}

// Default returns the default balance configuration
func Default() Balance {
	return Balance{
		StartingCash:    5000,
		StartingCity:    "New York",
		NotificationCap: 100,
		GangRecruitCost: 1500,
		GunPrice:        600,

		SupplyMin:             50,
		SupplyMax:             200,
		SupplyCap:             200,
		DailyDriftMin:         0.95,
		DailyDriftMax:         1.05,
		PriceFloorFactor:      0.5,
		PriceCeilFactor:       2.0,
		BulkPurchaseThreshold: 10,
		BulkWarrantPerUnit:    50,
		RestockLowThreshold:   20,
		RestockLowMin:         10,
		RestockLowMax:         30,
		RestockMidThreshold:   50,
		RestockMidMin:         5,
		RestockMidMax:         15,
		TravelCostBase:        200,
		TravelCostPerIndex:    150,

		WarrantHeatDivisor:   10000,
		WarrantHeatCap:       50,
		StayHeatGraceDays:    3,
		StayHeatPerDay:       5,
		TravelWarrantFactor:  0.40,
		WarrantDecayBase:     0.02,
		WarrantDecayDay3:     0.035,
		WarrantDecayDay7:     0.05,
		WarrantDecayDay14:    0.08,
		PoliceRaidHeatFloor:  70,
		PoliceRaidChanceCap:  0.3,
		PoliceDrugLossMin:    0.10,
		PoliceDrugLossMax:    0.50,
		GunMitigationPerGun:  0.02,
		GunMitigationCap:     0.40,
		PoliceCashLossMin:    0.10,
		PoliceCashLossMax:    0.30,
		PoliceGunLossMin:     0.10,
		PoliceGunLossMax:     0.30,
		PoliceWarrantMin:     5000,
		PoliceWarrantMax:     15000,
		PoliceCashLossWindow: 24 * time.Hour,
		PoliceCashLossCap:    0.05,
		BribeCostFactor:      2.0,
		BribeReliefFactor:    0.75,
		BribeBackfireChance:  0.05,
		BribeBackfireFactor:  0.10,

		OutpostMinGangSize:     4,
		DrugStockIncomeBonus:   1.5,
		HourlySaleMultiplier:   3.0,
		DefenseRaidChanceCap:   0.15,
		DefenseWarrantFloor:    50,
		DefenseWarrantDivisor:  200,
		DefenseCap:             0.8,
		DefensePerGang:         0.1,
		DefensePerGun:          0.05,
		DefenseCashLossMin:     0.30,
		DefenseCashLossMax:     0.70,
		DefenseGunsLossMin:     0.20,
		DefenseGunsLossMax:     0.50,
		DefenseGangLossMin:     0.10,
		DefenseGangLossMax:     0.30,
		DefenseDrugsLossMin:    0.20,
		DefenseDrugsLossMax:    0.50,
		DefenseLossWarrantMin:  1000,
		DefenseLossWarrantMax:  3000,
		DefenseRepelWarrantMin: 200,
		DefenseRepelWarrantMax: 700,

		RaidCooldown:        5 * time.Minute,
		EnemyOutpostsMin:    2,
		EnemyOutpostsMax:    4,
		RaidChanceFloor:     0.05,
		RaidChanceCeil:      0.95,
		RaidLootBaseFactor:  0.3,
		RaidLootChanceShare: 0.7,
		RaidWinWarrantMin:   1000,
		RaidWinWarrantMax:   3000,
		RaidFailWarrantMin:  500,
		RaidFailWarrantMax:  1500,

		BaseJewelryCapacity: 2,
		BaseCarCapacity:     1,
		DefaultResaleFactor: 0.90,
		DropTTL:             7 * 24 * time.Hour,
		DropSurgeFactor:     0.5,

		TickInterval: 60 * time.Second,
	}
}

// Casual returns easier balance for casual play
func Casual() Balance {
	cfg := Default()
	cfg.StartingCash = 10000
	cfg.PoliceRaidChanceCap = 0.2
	cfg.BulkWarrantPerUnit = 25
	cfg.DefenseRaidChanceCap = 0.10
	return cfg
}

// Hard returns harder balance for experienced players
func Hard() Balance {
	cfg := Default()
	cfg.StartingCash = 2500
	cfg.PoliceRaidChanceCap = 0.4
	cfg.PoliceRaidHeatFloor = 60
	cfg.BulkWarrantPerUnit = 75
	cfg.DefenseRaidChanceCap = 0.20
	return cfg
}
