// Package engine wires the world state and every gameplay system into
// one serialized action surface. Compound operations that touch more
// than one system run under the engine lock so ticks and player
// actions never interleave.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirsapient/slang-bang-react-sub000/internal/asset"
	"github.com/sirsapient/slang-bang-react-sub000/internal/game"
	"github.com/sirsapient/slang-bang-react-sub000/internal/heat"
	"github.com/sirsapient/slang-bang-react-sub000/internal/market"
	"github.com/sirsapient/slang-bang-react-sub000/internal/outpost"
	"github.com/sirsapient/slang-bang-react-sub000/internal/raid"
	"github.com/sirsapient/slang-bang-react-sub000/internal/save"
)

var (
	ErrUnknownCity       = errors.New("unknown city")
	ErrAlreadyThere      = errors.New("already in that city")
	ErrInsufficientFunds = errors.New("not enough cash")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrNoStore           = errors.New("no save store attached")
)

type Engine struct {
	mu    sync.Mutex
	state *game.State
	store *save.Store
	clock game.Clock
	rng   game.Rand

	market   *market.System
	heat     *heat.System
	outposts *outpost.System
	raids    *raid.System
	assets   *asset.System
}

// New builds an engine over a state. The save store may be nil for a
// throwaway session.
func New(state *game.State, store *save.Store, rng game.Rand) *Engine {
	return &Engine{
		state:    state,
		store:    store,
		clock:    state.Clock(),
		rng:      rng,
		market:   market.New(state, rng),
		heat:     heat.New(state, rng),
		outposts: outpost.New(state, rng),
		raids:    raid.New(state, rng),
		assets:   asset.New(state, rng),
	}
}

func (e *Engine) State() *game.State { return e.state }

// NewGame seeds the world for a fresh session: market tables for every
// city, raid targets, and the first round of drop listings.
func (e *Engine) NewGame() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.market.GenerateAll()
	e.raids.GenerateWorld()
	e.assets.EnsureDrops()
	e.state.AddNotification(
		fmt.Sprintf("Fresh start in %s with $%d", e.state.Player().CurrentCity, e.state.Cash()),
		game.NoticeInfo)
}

type DayTickResult struct {
	Day            int                     `json:"day"`
	WarrantDecayed int                     `json:"warrantDecayed"`
	Bust           *heat.BustResult        `json:"bust,omitempty"`
	Defenses       []outpost.DefenseResult `json:"defenses,omitempty"`
	IncomeAccrued  int                     `json:"incomeAccrued"`
	Unlocked       []string                `json:"unlocked,omitempty"`
}

// DayTick advances the simulation one day: new prices, restocked
// supply, warrant decay, police and enemy raid rolls, outpost income,
// and drop turnover.
func (e *Engine) DayTick() DayTickResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.AdvanceDay()
	e.market.UpdateDailyPrices()
	e.market.Restock()

	res := DayTickResult{
		Day:            e.state.Player().Day,
		WarrantDecayed: e.heat.DecayWarrant(),
	}
	if bust, ok := e.heat.CheckPoliceRaid(); ok {
		res.Bust = bust
	}
	res.Defenses = e.outposts.CheckDefensiveRaids()
	res.IncomeAccrued = e.outposts.AccrueDailyIncome()
	e.assets.EnsureDrops()
	res.Unlocked = e.state.TrackAchievement(game.CounterDaysPlayed, 1)
	return res
}

type RealTimeTickResult struct {
	UnitsSold int `json:"unitsSold"`
}

// RealTimeTick processes elapsed wall-clock effects: hourly outpost
// drug sales and expired drop listings.
func (e *Engine) RealTimeTick() RealTimeTickResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	sold := e.outposts.ProcessHourlySales(e.clock.Now())
	e.assets.EnsureDrops()
	return RealTimeTickResult{UnitsSold: sold}
}

// Run drives RealTimeTick on the configured interval until the context
// is cancelled.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.state.Config().TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.RealTimeTick()
		}
	}
}

type TravelResult struct {
	City           string `json:"city"`
	Cost           int    `json:"cost"`
	WarrantReduced int    `json:"warrantReduced"`
}

// TravelTo moves the player to another city: charges the distance
// fare, knocks the warrant down, resets the stationary-days counter,
// and refreshes what there is to rob when you arrive.
func (e *Engine) TravelTo(city string) (TravelResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	from := e.state.Player().CurrentCity
	if city == from {
		return TravelResult{}, fmt.Errorf("%w: %s", ErrAlreadyThere, city)
	}
	cost, err := e.market.TravelCost(from, city)
	if err != nil {
		return TravelResult{}, fmt.Errorf("%w: %s", ErrUnknownCity, city)
	}
	if cost > e.state.Cash() {
		return TravelResult{}, fmt.Errorf("%w: fare is $%d", ErrInsufficientFunds, cost)
	}

	e.state.UpdateCash(-cost)
	reduced := e.heat.ApplyTravelDecay()
	e.state.SetCurrentCity(city)
	// Targets persist for the whole session. Arrivals only backfill a
	// city that has none, so looted stashes and raid cooldowns stick.
	if len(e.state.EnemyOutpostsIn(city)) == 0 {
		_, _ = e.raids.GenerateCity(city)
	}
	e.state.AddNotification(fmt.Sprintf("Touched down in %s", city), game.NoticeInfo)
	return TravelResult{City: city, Cost: cost, WarrantReduced: reduced}, nil
}

// RecruitGang hires crew into the current city's unassigned pool.
func (e *Engine) RecruitGang(qty int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	cost := qty * e.state.Config().GangRecruitCost
	if cost > e.state.Cash() {
		return fmt.Errorf("%w: need $%d", ErrInsufficientFunds, cost)
	}
	city := e.state.Player().CurrentCity
	e.state.UpdateCash(-cost)
	e.state.AddGang(city, qty)
	e.state.AddNotification(fmt.Sprintf("Recruited %d crew in %s", qty, city), game.NoticeSuccess)
	return nil
}

// BuyGuns arms the current city's pool.
func (e *Engine) BuyGuns(qty int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	cost := qty * e.state.Config().GunPrice
	if cost > e.state.Cash() {
		return fmt.Errorf("%w: need $%d", ErrInsufficientFunds, cost)
	}
	city := e.state.Player().CurrentCity
	e.state.UpdateCash(-cost)
	e.state.AddGuns(city, qty)
	e.state.AddNotification(fmt.Sprintf("Bought %d guns in %s", qty, city), game.NoticeSuccess)
	return nil
}

// Trading.

func (e *Engine) BuyDrug(drug string, qty int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.market.Buy(drug, qty)
}

func (e *Engine) SellDrug(drug string, qty int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.market.Sell(drug, qty)
}

func (e *Engine) SellAllDrugs() market.SellAllResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.market.SellAll()
}

func (e *Engine) TravelCost(to string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.market.TravelCost(e.state.Player().CurrentCity, to)
}

// Heat.

func (e *Engine) HeatLevel() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.heat.Level()
}

func (e *Engine) BribeCost() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.heat.BribeCost()
}

func (e *Engine) Bribe() (heat.BribeResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.heat.Bribe()
}

// Outposts.

func (e *Engine) PurchaseOutpost(city string) (*game.Outpost, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outposts.Purchase(city)
}

func (e *Engine) UpgradeOutpost(city string) (*game.Outpost, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outposts.Upgrade(city)
}

func (e *Engine) AssignGang(city string, amount int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outposts.AssignGang(city, amount)
}

func (e *Engine) AssignGuns(city string, amount int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outposts.AssignGuns(city, amount)
}

func (e *Engine) StoreDrugs(city, drug string, amount int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outposts.StoreDrugs(city, drug, amount)
}

func (e *Engine) TakeDrugs(city, drug string, amount int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outposts.TakeDrugs(city, drug, amount)
}

func (e *Engine) CollectIncome(city string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outposts.CollectIncome(city)
}

func (e *Engine) CollectAllIncome() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outposts.CollectAll()
}

// Raids.

func (e *Engine) RaidTargets(city string) ([]*game.EnemyOutpost, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if targets := e.state.EnemyOutpostsIn(city); len(targets) > 0 {
		return targets, nil
	}
	return e.raids.GenerateCity(city)
}

func (e *Engine) RaidChance(targetID string, gangSize int) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	target := e.state.FindEnemyOutpost(targetID)
	if target == nil {
		return 0, raid.ErrTargetNotFound
	}
	guns := e.state.GunsIn(target.City)
	return e.raids.SuccessChance(target, gangSize, guns), nil
}

func (e *Engine) ExecuteRaid(targetID string, gangSize int) (raid.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.raids.Execute(targetID, gangSize)
}

// Assets.

func (e *Engine) PurchaseAsset(assetID string) (*game.AssetInstance, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.assets.Purchase(assetID)
}

func (e *Engine) SellAsset(instanceID string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.assets.Sell(instanceID)
}

func (e *Engine) WearJewelry(instanceID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.assets.WearJewelry(instanceID)
}

func (e *Engine) RemoveJewelry(instanceID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.assets.RemoveJewelry(instanceID)
}

func (e *Engine) PurchaseDrop(city string) (*game.AssetInstance, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.assets.PurchaseDrop(city)
}

func (e *Engine) FlexScore() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.assets.FlexScore()
}

// Persistence.

// SaveGame snapshots the state into a named slot.
func (e *Engine) SaveGame(ctx context.Context, slot string) error {
	if e.store == nil {
		return ErrNoStore
	}
	e.mu.Lock()
	snap := e.state.Snapshot()
	e.mu.Unlock()
	if err := e.store.Save(ctx, slot, snap); err != nil {
		return err
	}
	e.state.AddNotification("Game saved", game.NoticeSuccess)
	return nil
}

// LoadGame restores a slot and rebuilds the session-scoped world
// around it: raid targets are regenerated, drops refreshed, outpost
// status recomputed.
func (e *Engine) LoadGame(ctx context.Context, slot string) error {
	if e.store == nil {
		return ErrNoStore
	}
	snap, err := e.store.Load(ctx, slot)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Restore(snap)
	e.market.SeedMissing()
	e.outposts.RefreshAll()
	e.raids.GenerateWorld()
	e.assets.EnsureDrops()
	return nil
}
