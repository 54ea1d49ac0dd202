package asset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirsapient/slang-bang-react-sub000/internal/config"
	"github.com/sirsapient/slang-bang-react-sub000/internal/game"
)

func newAssetForTest(rng game.Rand) (*System, *game.State, *game.FakeClock) {
	clock := game.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s := game.NewState(config.Default(), config.DefaultGameData(), clock)
	return New(s, rng), s, clock
}

func TestPurchase_JewelryCapacityGate(t *testing.T) {
	a, s, _ := newAssetForTest(game.NewRand(1))
	s.UpdateCash(10_000_000)

	// Baseline: two pieces fit in your pockets.
	_, err := a.Purchase("chain_gold")
	require.NoError(t, err)
	_, err = a.Purchase("chain_gold")
	require.NoError(t, err)
	_, err = a.Purchase("chain_gold")
	assert.ErrorIs(t, err, ErrCapacityExhausted)

	// A property raises the cap, and the overflow piece is stored there.
	apt, err := a.Purchase("prop_apartment")
	require.NoError(t, err)
	third, err := a.Purchase("chain_gold")
	require.NoError(t, err)
	assert.Equal(t, apt.InstanceID, third.StoragePropertyID)
}

func TestCapacity_MaxNotSumAcrossProperties(t *testing.T) {
	a, s, _ := newAssetForTest(game.NewRand(1))
	s.UpdateCash(10_000_000)

	_, err := a.Purchase("prop_apartment")
	require.NoError(t, err)
	_, err = a.Purchase("prop_mansion")
	require.NoError(t, err)

	// Mansion holds 6 jewelry / 4 cars; the apartment does not stack
	// on top of it.
	assert.Equal(t, 6, a.JewelryCapacity())
	assert.Equal(t, 4, a.CarCapacity())
}

func TestPurchase_CarCapacityGate(t *testing.T) {
	a, s, _ := newAssetForTest(game.NewRand(1))
	s.UpdateCash(10_000_000)

	_, err := a.Purchase("car_lowrider")
	require.NoError(t, err)
	_, err = a.Purchase("car_lowrider")
	assert.ErrorIs(t, err, ErrCapacityExhausted)
}

func TestPurchase_InsufficientFunds(t *testing.T) {
	a, s, _ := newAssetForTest(game.NewRand(1))

	// Starting cash is 5000, the chain costs 8000.
	_, err := a.Purchase("chain_gold")
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, 5000, s.Cash())
	assert.Empty(t, s.Assets())
}

func TestSell_CreditsResaleValue(t *testing.T) {
	a, s, _ := newAssetForTest(game.NewRand(1))
	s.UpdateCash(10_000)

	inst, err := a.Purchase("chain_gold")
	require.NoError(t, err)
	assert.Equal(t, 7200, inst.ResaleValue) // 8000 x 0.90
	cashAfterBuy := s.Cash()

	got, err := a.Sell(inst.InstanceID)
	require.NoError(t, err)
	assert.Equal(t, 7200, got)
	assert.Equal(t, cashAfterBuy+7200, s.Cash())
	assert.Nil(t, s.FindAsset(inst.InstanceID))
}

func TestSell_WornPieceComesOffFirst(t *testing.T) {
	a, s, _ := newAssetForTest(game.NewRand(1))
	s.UpdateCash(10_000)

	inst, err := a.Purchase("chain_gold")
	require.NoError(t, err)
	require.NoError(t, a.WearJewelry(inst.InstanceID))

	_, err = a.Sell(inst.InstanceID)
	require.NoError(t, err)
	assert.Empty(t, s.Wearing())
}

func TestWearJewelry_Rules(t *testing.T) {
	a, s, _ := newAssetForTest(game.NewRand(1))
	s.UpdateCash(1_000_000)

	car, err := a.Purchase("car_lowrider")
	require.NoError(t, err)
	assert.ErrorIs(t, a.WearJewelry(car.InstanceID), ErrNotJewelry)
	assert.ErrorIs(t, a.WearJewelry("nope"), ErrNotOwned)

	chain, err := a.Purchase("chain_gold")
	require.NoError(t, err)
	require.NoError(t, a.WearJewelry(chain.InstanceID))
	assert.ErrorIs(t, a.WearJewelry(chain.InstanceID), ErrAlreadyWorn)

	require.NoError(t, a.RemoveJewelry(chain.InstanceID))
	assert.ErrorIs(t, a.RemoveJewelry(chain.InstanceID), ErrNotWorn)
}

func TestFlexScore_WornCountsDouble(t *testing.T) {
	a, s, _ := newAssetForTest(game.NewRand(1))
	s.UpdateCash(1_000_000)

	chain, err := a.Purchase("chain_gold") // flex 10
	require.NoError(t, err)
	_, err = a.Purchase("car_lowrider") // flex 30
	require.NoError(t, err)
	assert.Equal(t, 40, a.FlexScore())

	require.NoError(t, a.WearJewelry(chain.InstanceID))
	assert.Equal(t, 50, a.FlexScore())
}

func TestEnsureDrops_OneListingPerCity(t *testing.T) {
	a, s, _ := newAssetForTest(game.FixedRand{N: 0})

	a.EnsureDrops()
	drops := s.Drops()
	require.Len(t, drops, len(s.Data().Cities))
	for _, d := range drops {
		spec, ok := s.Data().Asset(d.TemplateID)
		require.True(t, ok)
		assert.True(t, spec.DropEligible)
		assert.GreaterOrEqual(t, d.TotalSupply, spec.DropSupplyMin)
		assert.LessOrEqual(t, d.TotalSupply, spec.DropSupplyMax)
		assert.Equal(t, d.TotalSupply, d.Remaining)
	}

	// Already live, so a second pass leaves them alone.
	before := s.DropIn("Miami").ID
	a.EnsureDrops()
	assert.Equal(t, before, s.DropIn("Miami").ID)
}

func TestDropPrice_SurgesWithScarcity(t *testing.T) {
	a, s, _ := newAssetForTest(game.FixedRand{N: 0})
	s.UpdateCash(1_000_000)

	a.EnsureDrops()
	d := s.DropIn("New York")
	require.NotNil(t, d)
	// FixedRand picks the gold chain with the minimum 5-unit run.
	require.Equal(t, "chain_gold", d.TemplateID)
	require.Equal(t, 5, d.Remaining)
	assert.Equal(t, 8000, a.DropPrice(d))

	inst, err := a.PurchaseDrop("New York")
	require.NoError(t, err)
	assert.Equal(t, 8000, inst.Cost)
	assert.Equal(t, 4, d.Remaining)
	require.Len(t, d.Purchases, 1)
	assert.Equal(t, inst.InstanceID, d.Purchases[0].InstanceID)
	assert.Equal(t, 8000, d.Purchases[0].Price)

	// 1/5 gone: 8000 x (1 + 0.5 x 0.2) = 8800.
	assert.Equal(t, 8800, a.DropPrice(d))
}

func TestPurchaseDrop_CapacityFailureLeavesListingIntact(t *testing.T) {
	a, s, _ := newAssetForTest(game.FixedRand{N: 0})
	s.UpdateCash(1_000_000)

	a.EnsureDrops()
	_, err := a.PurchaseDrop("New York")
	require.NoError(t, err)
	_, err = a.PurchaseDrop("New York")
	require.NoError(t, err)

	// Jewelry cap of 2 hit. The listing keeps its remaining supply.
	_, err = a.PurchaseDrop("New York")
	assert.ErrorIs(t, err, ErrCapacityExhausted)
	assert.Equal(t, 3, s.DropIn("New York").Remaining)
}

func TestPurchaseDrop_SellOutRegenerates(t *testing.T) {
	a, s, clock := newAssetForTest(game.FixedRand{N: 0})
	s.UpdateCash(1_000_000)

	now := clock.Now()
	old := &game.GlobalDrop{
		ID:          "last-one",
		City:        "Miami",
		TemplateID:  "chain_gold",
		TotalSupply: 5,
		Remaining:   1,
		BasePrice:   8000,
		CreatedAt:   now,
		ExpiresAt:   now.Add(7 * 24 * time.Hour),
	}
	s.SetDrop("Miami", old)

	// Final unit costs the full surge price.
	inst, err := a.PurchaseDrop("Miami")
	require.NoError(t, err)
	assert.Equal(t, 11200, inst.Cost) // 8000 x (1 + 0.5 x 0.8)

	fresh := s.DropIn("Miami")
	require.NotNil(t, fresh)
	assert.NotEqual(t, "last-one", fresh.ID)
	assert.Equal(t, fresh.TotalSupply, fresh.Remaining)
}

func TestPurchaseDrop_ExpiryAndRegen(t *testing.T) {
	a, s, clock := newAssetForTest(game.FixedRand{N: 0})
	s.UpdateCash(1_000_000)

	a.EnsureDrops()
	stale := s.DropIn("Chicago").ID
	clock.Advance(8 * 24 * time.Hour)

	_, err := a.PurchaseDrop("Chicago")
	assert.ErrorIs(t, err, ErrDropExpired)

	a.EnsureDrops()
	assert.NotEqual(t, stale, s.DropIn("Chicago").ID)
}

func TestPurchaseDrop_NoListing(t *testing.T) {
	a, _, _ := newAssetForTest(game.NewRand(1))

	_, err := a.PurchaseDrop("Miami")
	assert.ErrorIs(t, err, ErrNoActiveDrop)
}
