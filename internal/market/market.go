// Package market generates and evolves per-city commodity prices and
// supply, and executes buy/sell trades against the state store.
package market

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sirsapient/slang-bang-react-sub000/internal/config"
	"github.com/sirsapient/slang-bang-react-sub000/internal/game"
)

var (
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrUnknownDrug        = errors.New("unknown drug")
	ErrUnknownCity        = errors.New("unknown city")
	ErrInsufficientSupply = errors.New("not enough supply in this city")
	ErrInsufficientStock  = errors.New("not enough in your inventory")
	ErrInsufficientFunds  = errors.New("not enough cash")
)

type System struct {
	state *game.State
	rng   game.Rand
}

func New(state *game.State, rng game.Rand) *System {
	return &System{state: state, rng: rng}
}

// GeneratePrices rolls fresh prices for every drug in one city:
// basePrice x (1 + (roll-0.5) x volatility) x cityHeatModifier, rounded.
func (m *System) GeneratePrices(city string) error {
	c, ok := m.state.Data().City(city)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCity, city)
	}
	for _, d := range m.state.Data().Drugs {
		m.state.SetPrice(city, d.Name, m.rollPrice(c, d))
	}
	return nil
}

func (m *System) rollPrice(c config.City, d config.Drug) int {
	variation := (m.rng.Float64() - 0.5) * d.Volatility
	price := int(math.Round(float64(d.BasePrice) * (1 + variation) * c.HeatModifier))
	if price < 1 {
		price = 1
	}
	return price
}

// SeedMissing fills in any (city, drug) pair with no price and any
// with no supply. A loaded save with gaps in its market tables would
// otherwise stay stuck: the daily drift skips zero prices forever.
func (m *System) SeedMissing() {
	cfg := m.state.Config()
	for _, c := range m.state.Data().Cities {
		for _, d := range m.state.Data().Drugs {
			if m.state.Price(c.Name, d.Name) == 0 {
				m.state.SetPrice(c.Name, d.Name, m.rollPrice(c, d))
			}
			if m.state.Supply(c.Name, d.Name) == 0 {
				m.state.SetSupply(c.Name, d.Name, cfg.SupplyMin+m.rng.Intn(cfg.SupplyMax-cfg.SupplyMin))
			}
		}
	}
}

// GenerateAll seeds prices for every city and supply for every
// (city, drug) pair to a uniform value in the configured band.
func (m *System) GenerateAll() {
	cfg := m.state.Config()
	for _, c := range m.state.Data().Cities {
		_ = m.GeneratePrices(c.Name)
		for _, d := range m.state.Data().Drugs {
			supply := cfg.SupplyMin + m.rng.Intn(cfg.SupplyMax-cfg.SupplyMin)
			m.state.SetSupply(c.Name, d.Name, supply)
		}
	}
}

// UpdateDailyPrices drifts every price by a uniform factor and clamps
// it into [floor, ceil] x basePrice x cityHeatModifier.
func (m *System) UpdateDailyPrices() {
	cfg := m.state.Config()
	for _, c := range m.state.Data().Cities {
		for _, d := range m.state.Data().Drugs {
			current := m.state.Price(c.Name, d.Name)
			if current == 0 {
				continue
			}
			factor := game.FloatBetween(m.rng, cfg.DailyDriftMin, cfg.DailyDriftMax)
			price := int(math.Round(float64(current) * factor))
			anchor := float64(d.BasePrice) * c.HeatModifier
			floor := int(math.Round(anchor * cfg.PriceFloorFactor))
			ceil := int(math.Round(anchor * cfg.PriceCeilFactor))
			if price < floor {
				price = floor
			}
			if price > ceil {
				price = ceil
			}
			m.state.SetPrice(c.Name, d.Name, price)
		}
	}
}

// Restock tops up thin markets: badly depleted supply gets the large
// band, merely low supply the small band, capped at the supply cap.
// Supply never decreases.
func (m *System) Restock() {
	cfg := m.state.Config()
	for _, c := range m.state.Data().Cities {
		for _, d := range m.state.Data().Drugs {
			supply := m.state.Supply(c.Name, d.Name)
			switch {
			case supply < cfg.RestockLowThreshold:
				supply += cfg.RestockLowMin + m.rng.Intn(cfg.RestockLowMax-cfg.RestockLowMin)
			case supply < cfg.RestockMidThreshold:
				supply += cfg.RestockMidMin + m.rng.Intn(cfg.RestockMidMax-cfg.RestockMidMin)
			}
			if supply > cfg.SupplyCap {
				supply = cfg.SupplyCap
			}
			m.state.SetSupply(c.Name, d.Name, supply)
		}
	}
}

// Buy purchases qty units at the current-city price. Cash, inventory
// and supply move together or not at all. Bulk purchases at or above
// the threshold add warrant per unit.
func (m *System) Buy(drug string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if _, ok := m.state.Data().Drug(drug); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDrug, drug)
	}
	cfg := m.state.Config()
	city := m.state.Player().CurrentCity
	price := m.state.Price(city, drug)
	supply := m.state.Supply(city, drug)
	if qty > supply {
		return fmt.Errorf("%w: only %d %s available", ErrInsufficientSupply, supply, drug)
	}
	cost := qty * price
	if cost > m.state.Cash() {
		return fmt.Errorf("%w: need $%d", ErrInsufficientFunds, cost)
	}

	m.state.UpdateCash(-cost)
	m.state.UpdateInventory(drug, qty)
	m.state.SetSupply(city, drug, supply-qty)
	m.state.TrackAchievement(game.CounterDrugsBought, qty)

	m.state.AddNotification(fmt.Sprintf("Bought %d %s for $%d", qty, drug, cost), game.NoticeSuccess)
	if qty >= cfg.BulkPurchaseThreshold {
		penalty := qty * cfg.BulkWarrantPerUnit
		m.state.UpdateWarrant(penalty)
		m.state.AddNotification(fmt.Sprintf("Moving that much %s got noticed. Warrant +%d", drug, penalty), game.NoticeWarning)
	}
	return nil
}

// Sell sells qty held units at the current-city price and returns the
// units to the market supply.
func (m *System) Sell(drug string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if _, ok := m.state.Data().Drug(drug); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDrug, drug)
	}
	held := m.state.InventoryQty(drug)
	if qty > held {
		return fmt.Errorf("%w: you hold %d %s", ErrInsufficientStock, held, drug)
	}
	city := m.state.Player().CurrentCity
	price := m.state.Price(city, drug)
	earned := qty * price

	m.state.UpdateInventory(drug, -qty)
	m.state.UpdateCash(earned)
	m.state.SetSupply(city, drug, m.state.Supply(city, drug)+qty)
	m.state.TrackAchievement(game.CounterDrugsSold, qty)
	m.state.TrackAchievement(game.CounterCashEarned, earned)
	m.state.RecalcRank()

	m.state.AddNotification(fmt.Sprintf("Sold %d %s for $%d", qty, drug, earned), game.NoticeSuccess)
	return nil
}

// SellAllResult reports the one-pass liquidation outcome.
type SellAllResult struct {
	TotalEarned int      `json:"totalEarned"`
	DrugsSold   []string `json:"drugsSold"`
}

// SellAll liquidates every held unit at current-city prices in one
// pass. Calling it with an empty inventory is a no-op.
func (m *System) SellAll() SellAllResult {
	city := m.state.Player().CurrentCity
	inv := m.state.Inventory()

	drugs := make([]string, 0, len(inv))
	for drug, qty := range inv {
		if qty > 0 {
			drugs = append(drugs, drug)
		}
	}
	sort.Strings(drugs)

	res := SellAllResult{}
	totalUnits := 0
	for _, drug := range drugs {
		qty := inv[drug]
		earned := qty * m.state.Price(city, drug)
		m.state.UpdateInventory(drug, -qty)
		m.state.SetSupply(city, drug, m.state.Supply(city, drug)+qty)
		res.TotalEarned += earned
		totalUnits += qty
		res.DrugsSold = append(res.DrugsSold, fmt.Sprintf("%d %s", qty, drug))
	}
	if res.TotalEarned == 0 {
		return res
	}

	m.state.UpdateCash(res.TotalEarned)
	m.state.TrackAchievement(game.CounterDrugsSold, totalUnits)
	m.state.TrackAchievement(game.CounterCashEarned, res.TotalEarned)
	m.state.RecalcRank()
	m.state.AddNotification(
		fmt.Sprintf("Cleared out: %s for $%d", strings.Join(res.DrugsSold, ", "), res.TotalEarned),
		game.NoticeSuccess)
	return res
}

// TravelCost prices a trip between two cities from their distance
// indexes.
func (m *System) TravelCost(from, to string) (int, error) {
	a, ok := m.state.Data().City(from)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCity, from)
	}
	b, ok := m.state.Data().City(to)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCity, to)
	}
	cfg := m.state.Config()
	dist := a.DistanceIndex - b.DistanceIndex
	if dist < 0 {
		dist = -dist
	}
	return cfg.TravelCostBase + cfg.TravelCostPerIndex*dist, nil
}
