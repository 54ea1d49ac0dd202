package heat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirsapient/slang-bang-react-sub000/internal/config"
	"github.com/sirsapient/slang-bang-react-sub000/internal/game"
)

func newHeatForTest(rng game.Rand) (*System, *game.State, *game.FakeClock) {
	clock := game.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	s := game.NewState(config.Default(), config.DefaultGameData(), clock)
	return New(s, rng), s, clock
}

func TestLevel_AlwaysWithinBounds(t *testing.T) {
	h, s, _ := newHeatForTest(game.NewRand(1))

	assert.Equal(t, 0.0, h.Level())

	// Warrant contribution caps at 50 no matter how high it climbs.
	s.UpdateWarrant(10_000_000)
	assert.Equal(t, 50.0, h.Level())

	// Stationary days push it further but never past 100.
	for i := 0; i < 40; i++ {
		s.AdvanceDay()
	}
	assert.Equal(t, 100.0, h.Level())
}

func TestLevel_StayPressureStartsAfterGraceDays(t *testing.T) {
	h, s, _ := newHeatForTest(game.NewRand(1))
	s.UpdateWarrant(100_000) // 10 heat

	s.AdvanceDay()
	s.AdvanceDay()
	s.AdvanceDay() // daysInCity = 3
	assert.Equal(t, 10.0, h.Level())

	s.AdvanceDay() // day 4: grace exceeded by one
	assert.Equal(t, 15.0, h.Level())
}

func TestDecayWarrant_EscalatesWithDaysStationary(t *testing.T) {
	cases := []struct {
		days    int
		warrant int
		want    int
	}{
		{days: 1, warrant: 10000, want: 200},  // 2%
		{days: 3, warrant: 10000, want: 350},  // 3.5%
		{days: 7, warrant: 10000, want: 500},  // 5%
		{days: 14, warrant: 10000, want: 800}, // 8%
	}
	for _, tc := range cases {
		h, s, _ := newHeatForTest(game.NewRand(1))
		s.UpdateWarrant(tc.warrant)
		for i := 0; i < tc.days; i++ {
			s.AdvanceDay()
		}
		got := h.DecayWarrant()
		assert.Equal(t, tc.want, got, "days=%d", tc.days)
		assert.Equal(t, tc.warrant-tc.want, s.Warrant())
	}
}

func TestApplyTravelDecay_FlatForty(t *testing.T) {
	h, s, _ := newHeatForTest(game.NewRand(1))
	s.UpdateWarrant(10000)

	reduced := h.ApplyTravelDecay()
	assert.Equal(t, 4000, reduced)
	assert.Equal(t, 6000, s.Warrant())
}

func TestCheckPoliceRaid_NoOpWithEmptyInventory(t *testing.T) {
	// rng pinned to 0 would always trigger if the roll happened.
	h, s, _ := newHeatForTest(game.FixedRand{F: 0})
	s.UpdateWarrant(10_000_000)
	for i := 0; i < 40; i++ {
		s.AdvanceDay()
	}

	_, raided := h.CheckPoliceRaid()
	assert.False(t, raided)
}

func TestCheckPoliceRaid_BelowFloorNeverTriggers(t *testing.T) {
	h, s, _ := newHeatForTest(game.FixedRand{F: 0})
	s.UpdateInventory("Weed", 10)
	s.UpdateWarrant(100_000) // 10 heat, well under 70

	_, raided := h.CheckPoliceRaid()
	assert.False(t, raided)
}

func TestExecutePoliceRaid_SeizuresAndLedgerCap(t *testing.T) {
	// F=0 pins all uniform rolls to their minimum.
	h, s, _ := newHeatForTest(game.FixedRand{F: 0})
	s.UpdateCash(95_000) // 100k total
	s.UpdateInventory("Weed", 100)
	s.AddGuns("New York", 10)

	res := h.ExecutePoliceRaid()

	// Drug loss: 10% base, mitigated by 10 guns x 2% = 20% -> 8%.
	assert.Equal(t, 8, res.DrugsSeized["Weed"])
	assert.Equal(t, 92, s.InventoryQty("Weed"))

	// Cash roll 10% of 100k = 10k, but the rolling-window cap is 5%.
	assert.Equal(t, 5000, res.CashSeized)
	assert.Equal(t, 95_000, s.Cash())

	// Gun loss 10% of 10 = 1.
	assert.Equal(t, 1, res.GunsSeized)
	assert.Equal(t, 9, s.Player().Guns)

	assert.Equal(t, 5000, res.WarrantAdded)

	// A second raid inside the window seizes no further cash.
	res = h.ExecutePoliceRaid()
	assert.Equal(t, 0, res.CashSeized)
}

func TestBribe_CostAndRelief(t *testing.T) {
	// F=0.99 avoids the 5% backfire roll.
	h, s, _ := newHeatForTest(game.FixedRand{F: 0.99})
	s.UpdateCash(25_000) // 30k total
	s.UpdateWarrant(10_000)

	res, err := h.Bribe()
	require.NoError(t, err)

	assert.Equal(t, 20_000, res.Cost)
	assert.Equal(t, 7500, res.WarrantReduced)
	assert.False(t, res.Backfired)
	assert.Equal(t, 10_000, s.Cash())
	assert.Equal(t, 2500, s.Warrant())
}

func TestBribe_Backfire(t *testing.T) {
	// F=0 forces the backfire roll.
	h, s, _ := newHeatForTest(game.FixedRand{F: 0})
	s.UpdateCash(25_000)
	s.UpdateWarrant(10_000)

	res, err := h.Bribe()
	require.NoError(t, err)

	assert.True(t, res.Backfired)
	assert.Equal(t, 2000, res.WarrantReturned) // 10% of the 20k bribe
	assert.Equal(t, 4500, s.Warrant())         // 2500 + 2000
}

func TestBribe_InsufficientFunds(t *testing.T) {
	h, s, _ := newHeatForTest(game.FixedRand{F: 0.99})
	s.UpdateWarrant(10_000) // cost 20k, starting cash only 5k

	_, err := h.Bribe()
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, 5000, s.Cash())
	assert.Equal(t, 10_000, s.Warrant())
}
