package outpost

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirsapient/slang-bang-react-sub000/internal/config"
	"github.com/sirsapient/slang-bang-react-sub000/internal/game"
)

func newOutpostForTest(rng game.Rand) (*System, *game.State, *game.FakeClock) {
	clock := game.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	s := game.NewState(config.Default(), config.DefaultGameData(), clock)
	return New(s, rng), s, clock
}

// buyOutpost funds the player and buys a Miami outpost (modifier 1.0,
// so it costs exactly the tier-1 price).
func buyOutpost(t *testing.T, b *System, s *game.State) *game.Outpost {
	t.Helper()
	s.UpdateCash(100_000)
	s.AddGang("Miami", 10)
	s.AddGuns("Miami", 10)
	o, err := b.Purchase("Miami")
	require.NoError(t, err)
	return o
}

func TestPurchase_CostScalesWithCityHeat(t *testing.T) {
	b, _, _ := newOutpostForTest(game.NewRand(1))

	miami, err := b.PurchaseCost("Miami")
	require.NoError(t, err)
	assert.Equal(t, 15000, miami)

	ny, err := b.PurchaseCost("New York")
	require.NoError(t, err)
	assert.Equal(t, 19500, ny) // 15000 x 1.3
}

func TestPurchase_Validations(t *testing.T) {
	b, s, _ := newOutpostForTest(game.NewRand(1))

	// Crew too small.
	s.UpdateCash(100_000)
	_, err := b.Purchase("Miami")
	assert.ErrorIs(t, err, ErrGangTooSmall)

	s.AddGang("Miami", 4)
	_, err = b.Purchase("Miami")
	require.NoError(t, err)

	// One per city.
	_, err = b.Purchase("Miami")
	assert.ErrorIs(t, err, ErrAlreadyOwned)

	// Broke.
	b2, s3, _ := newOutpostForTest(game.NewRand(1))
	s3.AddGang("Miami", 4)
	_, err = b2.Purchase("Miami")
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestOperational_RequiresStaffGunsAndStock(t *testing.T) {
	b, s, _ := newOutpostForTest(game.NewRand(1))
	o := buyOutpost(t, b, s)
	s.UpdateInventory("Weed", 10)

	// Tier 1 needs 4 gang, 2 guns, and stock. Assign one short.
	require.NoError(t, b.AssignGang("Miami", 3))
	require.NoError(t, b.AssignGuns("Miami", 2))
	require.NoError(t, b.StoreDrugs("Miami", "Weed", 5))
	assert.False(t, o.Operational)

	// One more member flips it true.
	require.NoError(t, b.AssignGang("Miami", 1))
	assert.True(t, o.Operational)

	// Dropping any leg below threshold flips it false again.
	require.NoError(t, b.AssignGuns("Miami", -1))
	assert.False(t, o.Operational)
	require.NoError(t, b.AssignGuns("Miami", 1))
	assert.True(t, o.Operational)

	require.NoError(t, b.TakeDrugs("Miami", "Weed", 5))
	assert.False(t, o.Operational)
}

func TestStoreDrugs_Caps(t *testing.T) {
	b, s, _ := newOutpostForTest(game.NewRand(1))
	buyOutpost(t, b, s)
	s.UpdateInventory("Weed", 500)

	// Tier 1 holds 100 total, 100/6 = 16 per drug.
	err := b.StoreDrugs("Miami", "Weed", 17)
	assert.ErrorIs(t, err, ErrStorageFull)
	require.NoError(t, b.StoreDrugs("Miami", "Weed", 16))

	err = b.StoreDrugs("Miami", "Weed", 1)
	assert.ErrorIs(t, err, ErrStorageFull)

	err = b.StoreDrugs("Miami", "Cocaine", 1)
	assert.ErrorIs(t, err, ErrNotEnoughHeld)
}

func TestDailyIncome_Formula(t *testing.T) {
	b, s, _ := newOutpostForTest(game.NewRand(1))
	o := buyOutpost(t, b, s)
	s.UpdateInventory("Weed", 16)
	require.NoError(t, b.AssignGang("Miami", 4))
	require.NoError(t, b.AssignGuns("Miami", 2))
	require.NoError(t, b.StoreDrugs("Miami", "Weed", 16))
	require.True(t, o.Operational)

	// Full staffing, stocked bonus 1.5, rank 1 scaling 1.0:
	// 2000 x 1 x 1.5 x 1.0 = 3000.
	assert.Equal(t, 3000, b.DailyIncome(o))

	// Understaffed scales linearly: 2 of 4 gang -> half.
	require.NoError(t, b.AssignGang("Miami", -2))
	require.False(t, o.Operational)
	assert.Equal(t, 0, b.DailyIncome(o))
}

func TestAccrueAndCollect(t *testing.T) {
	b, s, _ := newOutpostForTest(game.NewRand(1))
	o := buyOutpost(t, b, s)
	s.UpdateInventory("Weed", 16)
	require.NoError(t, b.AssignGang("Miami", 4))
	require.NoError(t, b.AssignGuns("Miami", 2))
	require.NoError(t, b.StoreDrugs("Miami", "Weed", 16))

	total := b.AccrueDailyIncome()
	assert.Equal(t, 3000, total)
	assert.Equal(t, 3000, o.CashStored)

	cashBefore := s.Cash()
	got, err := b.CollectIncome("Miami")
	require.NoError(t, err)
	assert.Equal(t, 3000, got)
	assert.Equal(t, 0, o.CashStored)
	assert.Equal(t, cashBefore+3000, s.Cash())

	_, err = b.CollectIncome("Miami")
	assert.ErrorIs(t, err, ErrNothingToCollect)
}

func TestProcessHourlySales_SellsOneUnitPerElapsedHour(t *testing.T) {
	b, s, clock := newOutpostForTest(game.NewRand(1))
	o := buyOutpost(t, b, s)
	s.SetPrice("Miami", "Weed", 100)
	s.UpdateInventory("Weed", 16)
	require.NoError(t, b.AssignGang("Miami", 4))
	require.NoError(t, b.AssignGuns("Miami", 2))
	require.NoError(t, b.StoreDrugs("Miami", "Weed", 16))

	sold := b.ProcessHourlySales(clock.Advance(3 * time.Hour))
	assert.Equal(t, 3, sold)
	assert.Equal(t, 13, o.Inventory["Weed"])
	// Each unit sells at 3x the market price.
	assert.Equal(t, 900, o.CashStored)

	// No further full hour elapsed: nothing to sell.
	sold = b.ProcessHourlySales(clock.Advance(30 * time.Minute))
	assert.Equal(t, 0, sold)
}

func TestProcessHourlySales_DepletionFlipsOperational(t *testing.T) {
	b, s, clock := newOutpostForTest(game.NewRand(1))
	o := buyOutpost(t, b, s)
	s.SetPrice("Miami", "Weed", 100)
	s.UpdateInventory("Weed", 2)
	require.NoError(t, b.AssignGang("Miami", 4))
	require.NoError(t, b.AssignGuns("Miami", 2))
	require.NoError(t, b.StoreDrugs("Miami", "Weed", 2))
	require.True(t, o.Operational)

	b.ProcessHourlySales(clock.Advance(10 * time.Hour))
	assert.Equal(t, 0, o.TotalDrugs())
	assert.False(t, o.Operational)
}

func TestProcessHourlySales_DowntimeEarnsNoBacklog(t *testing.T) {
	b, s, clock := newOutpostForTest(game.NewRand(1))
	o := buyOutpost(t, b, s)
	s.SetPrice("Miami", "Weed", 100)
	s.UpdateInventory("Weed", 16)
	require.NoError(t, b.AssignGuns("Miami", 2))
	require.NoError(t, b.StoreDrugs("Miami", "Weed", 16))
	require.False(t, o.Operational) // no gang assigned

	// Five idle hours sell nothing, but the sales clock keeps moving.
	sold := b.ProcessHourlySales(clock.Advance(5 * time.Hour))
	assert.Equal(t, 0, sold)
	assert.Equal(t, 16, o.Inventory["Weed"])
	assert.Equal(t, clock.Now(), o.LastSale)

	// Re-staffing sells only the hours that pass from here on.
	require.NoError(t, b.AssignGang("Miami", 4))
	require.True(t, o.Operational)
	sold = b.ProcessHourlySales(clock.Advance(time.Hour))
	assert.Equal(t, 1, sold)
	assert.Equal(t, 15, o.Inventory["Weed"])
}

func TestUpgrade(t *testing.T) {
	b, s, _ := newOutpostForTest(game.NewRand(1))
	o := buyOutpost(t, b, s)

	s.UpdateCash(50_000)
	_, err := b.Upgrade("Miami")
	require.NoError(t, err)
	assert.Equal(t, 2, o.Level)

	// Top tier is a hard stop.
	s.UpdateCash(10_000_000)
	_, err = b.Upgrade("Miami")
	require.NoError(t, err)
	_, err = b.Upgrade("Miami")
	require.NoError(t, err)
	_, err = b.Upgrade("Miami")
	assert.ErrorIs(t, err, ErrMaxLevel)
}

func TestCheckDefensiveRaids_FailedDefenseLossSchedule(t *testing.T) {
	// F=0: raid always triggers, defense roll always fails (defense>0
	// needs roll < defense... roll 0 < defense means repelled), so pin
	// with a rand that triggers the raid but loses the defense.
	b, s, _ := newOutpostForTest(game.FixedRand{F: 0.99})
	o := buyOutpost(t, b, s)
	s.UpdateWarrant(100_000)
	require.NoError(t, b.AssignGang("Miami", 10))
	require.NoError(t, b.AssignGuns("Miami", 10))
	o.CashStored = 1000
	s.UpdateInventory("Weed", 10)
	require.NoError(t, b.StoreDrugs("Miami", "Weed", 10))

	// chance = min(0.15, (100000-50)/200) = 0.15, and F=0.99 never
	// rolls under it: no raid.
	assert.Empty(t, b.CheckDefensiveRaids())

	// F=0.1: 0.1 >= 0.15 is false -> raid triggers; defense is
	// min(0.8, 10x0.1 + 10x0.05) = 0.8 and 0.1 < 0.8 -> repelled.
	b2 := New(s, game.FixedRand{F: 0.1})
	results := b2.CheckDefensiveRaids()
	require.Len(t, results, 1)
	assert.True(t, results[0].Repelled)
	assert.GreaterOrEqual(t, results[0].WarrantAdded, 200)
	assert.LessOrEqual(t, results[0].WarrantAdded, 700)
	assert.Equal(t, 1000, o.CashStored)
}

func TestResolveDefense_LossesWhenUndefended(t *testing.T) {
	// An unstaffed outpost has defense 0, so any roll loses.
	b, s, _ := newOutpostForTest(game.FixedRand{F: 0})
	o := buyOutpost(t, b, s)
	o.CashStored = 1000
	o.Inventory["Weed"] = 10

	res := b.resolveDefense(o)
	assert.False(t, res.Repelled)
	assert.Equal(t, 300, res.CashLost) // 30% minimum
	assert.Equal(t, 700, o.CashStored)
	assert.Equal(t, 2, res.DrugsLost["Weed"]) // 20% minimum
	assert.Equal(t, 8, o.Inventory["Weed"])
	assert.Equal(t, 1000, res.WarrantAdded)
	assert.Equal(t, 1000, s.Warrant())
}
