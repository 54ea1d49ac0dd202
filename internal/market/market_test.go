package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirsapient/slang-bang-react-sub000/internal/config"
	"github.com/sirsapient/slang-bang-react-sub000/internal/game"
)

func newMarketForTest(rng game.Rand) (*System, *game.State) {
	clock := game.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	s := game.NewState(config.Default(), config.DefaultGameData(), clock)
	return New(s, rng), s
}

func TestGeneratePrices_MidRollYieldsAnchorPrice(t *testing.T) {
	// roll=0.5 means zero variation, so Detroit (modifier 0.7) prices
	// Cocaine (base 2000) at exactly round(2000 * 1 * 0.7) = 1400.
	m, s := newMarketForTest(game.FixedRand{F: 0.5})

	require.NoError(t, m.GeneratePrices("Detroit"))
	assert.Equal(t, 1400, s.Price("Detroit", "Cocaine"))
	assert.Equal(t, 280, s.Price("Detroit", "Weed"))
}

func TestGeneratePrices_UnknownCity(t *testing.T) {
	m, _ := newMarketForTest(game.NewRand(1))
	assert.ErrorIs(t, m.GeneratePrices("Gotham"), ErrUnknownCity)
}

func TestGenerateAll_SeedsSupplyInBand(t *testing.T) {
	m, s := newMarketForTest(game.NewRand(42))
	m.GenerateAll()

	for _, c := range s.Data().Cities {
		for _, d := range s.Data().Drugs {
			supply := s.Supply(c.Name, d.Name)
			assert.GreaterOrEqual(t, supply, 50)
			assert.LessOrEqual(t, supply, 199)
			assert.Positive(t, s.Price(c.Name, d.Name))
		}
	}
}

func TestSeedMissing_FillsGapsLeavesRestAlone(t *testing.T) {
	m, s := newMarketForTest(game.NewRand(9))
	m.GenerateAll()

	// Punch holes the way a damaged save would.
	s.SetPrice("Miami", "Weed", 0)
	s.SetSupply("Miami", "Weed", 0)
	s.SetPrice("Chicago", "Heroin", 0)
	keptPrice := s.Price("New York", "Cocaine")
	keptSupply := s.Supply("New York", "Cocaine")

	m.SeedMissing()

	assert.Positive(t, s.Price("Miami", "Weed"))
	assert.Positive(t, s.Supply("Miami", "Weed"))
	assert.Positive(t, s.Price("Chicago", "Heroin"))
	assert.Equal(t, keptPrice, s.Price("New York", "Cocaine"))
	assert.Equal(t, keptSupply, s.Supply("New York", "Cocaine"))

	// The refilled price drifts like any other from here on.
	m.UpdateDailyPrices()
	assert.Positive(t, s.Price("Miami", "Weed"))
}

func TestUpdateDailyPrices_ClampsToAnchorBand(t *testing.T) {
	m, s := newMarketForTest(game.NewRand(7))
	m.GenerateAll()

	// Force an out-of-band price; one daily update must clamp it.
	s.SetPrice("Miami", "Weed", 100000)
	m.UpdateDailyPrices()

	weed, _ := s.Data().Drug("Weed")
	miami, _ := s.Data().City("Miami")
	ceil := int(float64(weed.BasePrice)*miami.HeatModifier*2.0 + 0.5)
	assert.LessOrEqual(t, s.Price("Miami", "Weed"), ceil)

	for _, c := range s.Data().Cities {
		for _, d := range s.Data().Drugs {
			anchor := float64(d.BasePrice) * c.HeatModifier
			price := s.Price(c.Name, d.Name)
			assert.GreaterOrEqual(t, float64(price), anchor*0.5-1)
			assert.LessOrEqual(t, float64(price), anchor*2.0+1)
		}
	}
}

func TestRestock_NeverShrinksAndRespectsCap(t *testing.T) {
	m, s := newMarketForTest(game.NewRand(11))
	m.GenerateAll()

	s.SetSupply("Chicago", "Weed", 5)     // low band
	s.SetSupply("Chicago", "Cocaine", 35) // mid band
	s.SetSupply("Chicago", "Heroin", 199) // near cap

	before := map[string]int{}
	for _, c := range s.Data().Cities {
		for _, d := range s.Data().Drugs {
			before[c.Name+"/"+d.Name] = s.Supply(c.Name, d.Name)
		}
	}

	m.Restock()

	for _, c := range s.Data().Cities {
		for _, d := range s.Data().Drugs {
			after := s.Supply(c.Name, d.Name)
			assert.GreaterOrEqual(t, after, before[c.Name+"/"+d.Name])
			assert.LessOrEqual(t, after, 200)
		}
	}
	assert.GreaterOrEqual(t, s.Supply("Chicago", "Weed"), 15)
	assert.GreaterOrEqual(t, s.Supply("Chicago", "Cocaine"), 40)
}

func TestBuy_BulkPurchaseAddsWarrant(t *testing.T) {
	m, s := newMarketForTest(game.NewRand(1))
	s.SetPrice("New York", "Weed", 100)
	s.SetSupply("New York", "Weed", 50)

	require.NoError(t, m.Buy("Weed", 10))

	assert.Equal(t, 4000, s.Cash()) // 5000 - 10*100
	assert.Equal(t, 10, s.InventoryQty("Weed"))
	assert.Equal(t, 40, s.Supply("New York", "Weed"))
	assert.Equal(t, 500, s.Warrant()) // 10 * 50 bulk penalty
}

func TestBuy_BelowBulkThresholdNoWarrant(t *testing.T) {
	m, s := newMarketForTest(game.NewRand(1))
	s.SetPrice("New York", "Weed", 100)
	s.SetSupply("New York", "Weed", 50)

	require.NoError(t, m.Buy("Weed", 9))
	assert.Equal(t, 0, s.Warrant())
}

func TestBuy_ValidationFailuresLeaveStateUntouched(t *testing.T) {
	m, s := newMarketForTest(game.NewRand(1))
	s.SetPrice("New York", "Weed", 100)
	s.SetSupply("New York", "Weed", 5)

	assert.ErrorIs(t, m.Buy("Weed", 0), ErrInvalidQuantity)
	assert.ErrorIs(t, m.Buy("Weed", 6), ErrInsufficientSupply)
	assert.ErrorIs(t, m.Buy("Plutonium", 1), ErrUnknownDrug)

	s.SetPrice("New York", "Heroin", 6000)
	s.SetSupply("New York", "Heroin", 10)
	assert.ErrorIs(t, m.Buy("Heroin", 1), ErrInsufficientFunds)

	assert.Equal(t, 5000, s.Cash())
	assert.Equal(t, 0, s.InventoryQty("Weed"))
	assert.Equal(t, 5, s.Supply("New York", "Weed"))
}

func TestSell_MovesCashInventorySupplyTogether(t *testing.T) {
	m, s := newMarketForTest(game.NewRand(1))
	s.SetPrice("New York", "Weed", 120)
	s.SetSupply("New York", "Weed", 10)
	s.UpdateInventory("Weed", 4)

	require.NoError(t, m.Sell("Weed", 3))

	assert.Equal(t, 5360, s.Cash())
	assert.Equal(t, 1, s.InventoryQty("Weed"))
	assert.Equal(t, 13, s.Supply("New York", "Weed"))

	assert.ErrorIs(t, m.Sell("Weed", 5), ErrInsufficientStock)
}

func TestSellAll_LiquidatesAndIsIdempotent(t *testing.T) {
	m, s := newMarketForTest(game.NewRand(1))
	s.SetPrice("New York", "Weed", 50)
	s.UpdateInventory("Weed", 2)

	res := m.SellAll()
	assert.Equal(t, 100, res.TotalEarned)
	assert.Equal(t, []string{"2 Weed"}, res.DrugsSold)
	assert.Equal(t, 0, s.InventoryQty("Weed"))
	assert.Equal(t, 5100, s.Cash())

	// Immediately selling again earns nothing and reports nothing.
	res = m.SellAll()
	assert.Equal(t, 0, res.TotalEarned)
	assert.Empty(t, res.DrugsSold)
	assert.Equal(t, 5100, s.Cash())
}

func TestTravelCost_SymmetricOverDistanceIndex(t *testing.T) {
	m, _ := newMarketForTest(game.NewRand(1))

	// New York index 0, Los Angeles index 5.
	there, err := m.TravelCost("New York", "Los Angeles")
	require.NoError(t, err)
	back, err := m.TravelCost("Los Angeles", "New York")
	require.NoError(t, err)

	assert.Equal(t, 200+150*5, there)
	assert.Equal(t, there, back)

	_, err = m.TravelCost("New York", "Gotham")
	assert.ErrorIs(t, err, ErrUnknownCity)
}
