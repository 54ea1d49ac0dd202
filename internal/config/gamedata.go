package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// GameData is the immutable static reference data loaded once at startup:
// drugs, cities, outpost tiers, asset catalog and rank ladder.
type GameData struct {
	Version string        `yaml:"version" json:"version"`
	Drugs   []Drug        `yaml:"drugs" json:"drugs"`
	Cities  []City        `yaml:"cities" json:"cities"`
	Tiers   []OutpostTier `yaml:"outpost_tiers" json:"outpost_tiers"`
	Ranks   []Rank        `yaml:"ranks" json:"ranks"`
	Assets  []AssetSpec   `yaml:"assets" json:"assets"`
}

type Drug struct {
	Name           string  `yaml:"name" json:"name"`
	BasePrice      int     `yaml:"base_price" json:"base_price"`
	Volatility     float64 `yaml:"volatility" json:"volatility"`
	HeatGeneration int     `yaml:"heat_generation" json:"heat_generation"` // reserved
}

type City struct {
	Name          string  `yaml:"name" json:"name"`
	HeatModifier  float64 `yaml:"heat_modifier" json:"heat_modifier"`
	DistanceIndex int     `yaml:"distance_index" json:"distance_index"`
	Population    int     `yaml:"population" json:"population"` // display only
}

// OutpostTier describes one outpost level (1..4)
type OutpostTier struct {
	Level        int    `yaml:"level" json:"level"`
	Name         string `yaml:"name" json:"name"`
	Cost         int    `yaml:"cost" json:"cost"`
	Income       int    `yaml:"income" json:"income"`
	GangRequired int    `yaml:"gang_required" json:"gang_required"`
	GunsRequired int    `yaml:"guns_required" json:"guns_required"`
	MaxInventory int    `yaml:"max_inventory" json:"max_inventory"`
	MaxSafe      int    `yaml:"max_safe" json:"max_safe"`
}

type Rank struct {
	Level         int     `yaml:"level" json:"level"`
	Name          string  `yaml:"name" json:"name"`
	NetWorth      int     `yaml:"net_worth" json:"net_worth"`
	IncomeScaling float64 `yaml:"income_scaling" json:"income_scaling"`
	HeatScaling   float64 `yaml:"heat_scaling" json:"heat_scaling"`
}

type AssetKind string

const (
	AssetJewelry  AssetKind = "jewelry"
	AssetCar      AssetKind = "car"
	AssetProperty AssetKind = "property"
)

// AssetSpec is a purchasable asset template. Properties declare how
// much jewelry can be worn and how many cars can be garaged while owned.
type AssetSpec struct {
	ID              string    `yaml:"id" json:"id"`
	Name            string    `yaml:"name" json:"name"`
	Kind            AssetKind `yaml:"kind" json:"kind"`
	Cost            int       `yaml:"cost" json:"cost"`
	FlexScore       int       `yaml:"flex_score" json:"flex_score"`
	JewelryCapacity int       `yaml:"jewelry_capacity,omitempty" json:"jewelry_capacity,omitempty"`
	CarCapacity     int       `yaml:"car_capacity,omitempty" json:"car_capacity,omitempty"`
	DropEligible    bool      `yaml:"drop_eligible,omitempty" json:"drop_eligible,omitempty"`
	DropSupplyMin   int       `yaml:"drop_supply_min,omitempty" json:"drop_supply_min,omitempty"`
	DropSupplyMax   int       `yaml:"drop_supply_max,omitempty" json:"drop_supply_max,omitempty"`
}

// DefaultGameData returns the compiled-in reference tables.
func DefaultGameData() *GameData {
	return &GameData{
		Version: "1.0",
		Drugs: []Drug{
			{Name: "Weed", BasePrice: 400, Volatility: 0.35, HeatGeneration: 1},
			{Name: "Speed", BasePrice: 300, Volatility: 0.45, HeatGeneration: 2},
			{Name: "Ecstasy", BasePrice: 800, Volatility: 0.40, HeatGeneration: 2},
			{Name: "Oxy", BasePrice: 1200, Volatility: 0.35, HeatGeneration: 3},
			{Name: "Cocaine", BasePrice: 2000, Volatility: 0.30, HeatGeneration: 4},
			{Name: "Heroin", BasePrice: 3500, Volatility: 0.25, HeatGeneration: 5},
		},
		Cities: []City{
			{Name: "New York", HeatModifier: 1.3, DistanceIndex: 0, Population: 8400000},
			{Name: "Los Angeles", HeatModifier: 1.2, DistanceIndex: 5, Population: 3900000},
			{Name: "Chicago", HeatModifier: 1.1, DistanceIndex: 2, Population: 2700000},
			{Name: "Houston", HeatModifier: 0.9, DistanceIndex: 3, Population: 2300000},
			{Name: "Miami", HeatModifier: 1.0, DistanceIndex: 4, Population: 450000},
			{Name: "Atlanta", HeatModifier: 0.8, DistanceIndex: 3, Population: 500000},
			{Name: "Detroit", HeatModifier: 0.7, DistanceIndex: 2, Population: 630000},
		},
		Tiers: []OutpostTier{
			{Level: 1, Name: "Stash House", Cost: 15000, Income: 2000, GangRequired: 4, GunsRequired: 2, MaxInventory: 100, MaxSafe: 10000},
			{Level: 2, Name: "Trap House", Cost: 50000, Income: 6000, GangRequired: 8, GunsRequired: 6, MaxInventory: 250, MaxSafe: 35000},
			{Level: 3, Name: "Compound", Cost: 150000, Income: 15000, GangRequired: 15, GunsRequired: 12, MaxInventory: 600, MaxSafe: 100000},
			{Level: 4, Name: "Fortress", Cost: 400000, Income: 40000, GangRequired: 25, GunsRequired: 20, MaxInventory: 1500, MaxSafe: 300000},
		},
		Ranks: []Rank{
			{Level: 1, Name: "Hustler", NetWorth: 0, IncomeScaling: 1.0, HeatScaling: 1.0},
			{Level: 2, Name: "Dealer", NetWorth: 25000, IncomeScaling: 1.1, HeatScaling: 1.2},
			{Level: 3, Name: "Lieutenant", NetWorth: 100000, IncomeScaling: 1.25, HeatScaling: 1.4},
			{Level: 4, Name: "Underboss", NetWorth: 500000, IncomeScaling: 1.5, HeatScaling: 1.7},
			{Level: 5, Name: "Kingpin", NetWorth: 2000000, IncomeScaling: 2.0, HeatScaling: 2.0},
		},
		Assets: []AssetSpec{
			{ID: "chain_gold", Name: "Gold Chain", Kind: AssetJewelry, Cost: 8000, FlexScore: 10, DropEligible: true, DropSupplyMin: 5, DropSupplyMax: 12},
			{ID: "watch_diamond", Name: "Diamond Watch", Kind: AssetJewelry, Cost: 45000, FlexScore: 40, DropEligible: true, DropSupplyMin: 3, DropSupplyMax: 8},
			{ID: "grill_iced", Name: "Iced-Out Grill", Kind: AssetJewelry, Cost: 20000, FlexScore: 25},
			{ID: "car_lowrider", Name: "Lowrider", Kind: AssetCar, Cost: 35000, FlexScore: 30},
			{ID: "car_sports", Name: "Sports Coupe", Kind: AssetCar, Cost: 120000, FlexScore: 75, DropEligible: true, DropSupplyMin: 2, DropSupplyMax: 5},
			{ID: "car_exotic", Name: "Exotic Supercar", Kind: AssetCar, Cost: 450000, FlexScore: 200},
			{ID: "prop_apartment", Name: "Downtown Apartment", Kind: AssetProperty, Cost: 250000, FlexScore: 60, JewelryCapacity: 3, CarCapacity: 1},
			{ID: "prop_mansion", Name: "Hillside Mansion", Kind: AssetProperty, Cost: 1200000, FlexScore: 250, JewelryCapacity: 6, CarCapacity: 4},
			{ID: "prop_penthouse", Name: "Skyline Penthouse", Kind: AssetProperty, Cost: 3000000, FlexScore: 500, JewelryCapacity: 10, CarCapacity: 8},
		},
	}
}

// LoadGameData reads reference tables from a YAML file, falling back to
// compiled-in defaults for any section the file leaves empty.
func LoadGameData(path string) (*GameData, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var gd GameData
	if err := yaml.Unmarshal(b, &gd); err != nil {
		return nil, err
	}
	gd.applyDefaults()
	if err := gd.Validate(); err != nil {
		return nil, err
	}
	return &gd, nil
}

func (gd *GameData) applyDefaults() {
	def := DefaultGameData()
	if len(gd.Drugs) == 0 {
		gd.Drugs = def.Drugs
	}
	if len(gd.Cities) == 0 {
		gd.Cities = def.Cities
	}
	if len(gd.Tiers) == 0 {
		gd.Tiers = def.Tiers
	}
	if len(gd.Ranks) == 0 {
		gd.Ranks = def.Ranks
	}
	if len(gd.Assets) == 0 {
		gd.Assets = def.Assets
	}
}

// Validate rejects tables the simulation cannot run on.
func (gd *GameData) Validate() error {
	if len(gd.Drugs) == 0 {
		return fmt.Errorf("game data: no drugs defined")
	}
	if len(gd.Cities) == 0 {
		return fmt.Errorf("game data: no cities defined")
	}
	for _, c := range gd.Cities {
		if c.HeatModifier <= 0 {
			return fmt.Errorf("game data: city %q has non-positive heat modifier", c.Name)
		}
	}
	for i, t := range gd.Tiers {
		if t.Level != i+1 {
			return fmt.Errorf("game data: outpost tiers must be contiguous from level 1, got %d at index %d", t.Level, i)
		}
	}
	for i, r := range gd.Ranks {
		if i > 0 && r.NetWorth <= gd.Ranks[i-1].NetWorth {
			return fmt.Errorf("game data: rank thresholds must increase, %q does not", r.Name)
		}
	}
	return nil
}

// City returns the city record by name.
func (gd *GameData) City(name string) (City, bool) {
	for _, c := range gd.Cities {
		if c.Name == name {
			return c, true
		}
	}
	return City{}, false
}

// Drug returns the drug record by name.
func (gd *GameData) Drug(name string) (Drug, bool) {
	for _, d := range gd.Drugs {
		if d.Name == name {
			return d, true
		}
	}
	return Drug{}, false
}

// Tier returns the outpost tier for a level, or false if out of range.
func (gd *GameData) Tier(level int) (OutpostTier, bool) {
	if level < 1 || level > len(gd.Tiers) {
		return OutpostTier{}, false
	}
	return gd.Tiers[level-1], true
}

// MaxTier is the highest outpost level.
func (gd *GameData) MaxTier() int { return len(gd.Tiers) }

// Asset returns the asset template by id.
func (gd *GameData) Asset(id string) (AssetSpec, bool) {
	for _, a := range gd.Assets {
		if a.ID == id {
			return a, true
		}
	}
	return AssetSpec{}, false
}

// RankFor returns the highest rank whose net-worth threshold is met.
func (gd *GameData) RankFor(netWorth int) Rank {
	r := gd.Ranks[0]
	for _, cand := range gd.Ranks {
		if netWorth >= cand.NetWorth {
			r = cand
		}
	}
	return r
}
