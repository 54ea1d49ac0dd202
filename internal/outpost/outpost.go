// Package outpost models the player-owned facilities: purchase,
// staffing, drug storage, income accrual and raid vulnerability.
package outpost

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/sirsapient/slang-bang-react-sub000/internal/game"
)

var (
	ErrAlreadyOwned      = errors.New("you already run an outpost in this city")
	ErrGangTooSmall      = errors.New("your crew is too small to hold an outpost")
	ErrInsufficientFunds = errors.New("not enough cash")
	ErrNoOutpost         = errors.New("no outpost in this city")
	ErrMaxLevel          = errors.New("outpost is already at the top tier")
	ErrNotEnoughGang     = errors.New("not enough gang members available here")
	ErrNotEnoughGuns     = errors.New("not enough guns available here")
	ErrNotAssigned       = errors.New("not that many assigned to the outpost")
	ErrInvalidAmount     = errors.New("amount must not be zero")
	ErrStorageFull       = errors.New("outpost storage is full")
	ErrNotEnoughHeld     = errors.New("not enough in your inventory")
	ErrNotEnoughStored   = errors.New("outpost does not hold that much")
	ErrNothingToCollect  = errors.New("the safe is empty")
	ErrUnknownCity       = errors.New("unknown city")
)

type System struct {
	state *game.State
	rng   game.Rand
}

func New(state *game.State, rng game.Rand) *System {
	return &System{state: state, rng: rng}
}

// PurchaseCost quotes a level-1 outpost in a city.
func (b *System) PurchaseCost(city string) (int, error) {
	c, ok := b.state.Data().City(city)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCity, city)
	}
	tier, _ := b.state.Data().Tier(1)
	return int(math.Round(float64(tier.Cost) * c.HeatModifier)), nil
}

// Purchase buys a level-1 outpost. One outpost per city; the crew must
// be big enough to hold it.
func (b *System) Purchase(city string) (*game.Outpost, error) {
	cost, err := b.PurchaseCost(city)
	if err != nil {
		return nil, err
	}
	if b.state.OutpostIn(city) != nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyOwned, city)
	}
	cfg := b.state.Config()
	if b.state.Player().GangSize < cfg.OutpostMinGangSize {
		return nil, fmt.Errorf("%w: need %d members", ErrGangTooSmall, cfg.OutpostMinGangSize)
	}
	if cost > b.state.Cash() {
		return nil, fmt.Errorf("%w: need $%d", ErrInsufficientFunds, cost)
	}

	b.state.UpdateCash(-cost)
	o := &game.Outpost{
		ID:        uuid.NewString(),
		City:      city,
		Level:     1,
		Inventory: map[string]int{},
		LastSale:  b.state.Clock().Now(),
	}
	b.state.AddOutpost(o)
	b.state.TrackAchievement(game.CounterOutpostsOwned, 1)
	b.state.AddNotification(fmt.Sprintf("Picked up a stash house in %s for $%d", city, cost), game.NoticeSuccess)
	return o, nil
}

// Upgrade moves an outpost to the next tier, priced at the next tier's
// cost times the city heat modifier.
func (b *System) Upgrade(city string) (*game.Outpost, error) {
	o := b.state.OutpostIn(city)
	if o == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoOutpost, city)
	}
	next, ok := b.state.Data().Tier(o.Level + 1)
	if !ok {
		return nil, ErrMaxLevel
	}
	c, _ := b.state.Data().City(city)
	cost := int(math.Round(float64(next.Cost) * c.HeatModifier))
	if cost > b.state.Cash() {
		return nil, fmt.Errorf("%w: need $%d", ErrInsufficientFunds, cost)
	}

	b.state.UpdateCash(-cost)
	o.Level = next.Level
	b.refreshOperational(o)
	b.state.AddNotification(fmt.Sprintf("Upgraded your %s spot to a %s", city, next.Name), game.NoticeSuccess)
	return o, nil
}

// AssignGang moves members between the city pool and the outpost.
// Negative amounts unassign.
func (b *System) AssignGang(city string, amount int) error {
	o := b.state.OutpostIn(city)
	if o == nil {
		return fmt.Errorf("%w: %s", ErrNoOutpost, city)
	}
	switch {
	case amount == 0:
		return ErrInvalidAmount
	case amount > 0:
		if b.state.GangIn(city) < amount {
			return fmt.Errorf("%w: %d in %s", ErrNotEnoughGang, b.state.GangIn(city), city)
		}
		b.state.RemoveGang(city, amount)
		o.AssignedGang += amount
	default:
		back := -amount
		if o.AssignedGang < back {
			return fmt.Errorf("%w: %d assigned", ErrNotAssigned, o.AssignedGang)
		}
		o.AssignedGang -= back
		b.state.AddGang(city, back)
	}
	b.refreshOperational(o)
	return nil
}

// AssignGuns moves guns between the city pool and the outpost.
// Negative amounts unassign.
func (b *System) AssignGuns(city string, amount int) error {
	o := b.state.OutpostIn(city)
	if o == nil {
		return fmt.Errorf("%w: %s", ErrNoOutpost, city)
	}
	switch {
	case amount == 0:
		return ErrInvalidAmount
	case amount > 0:
		if b.state.GunsIn(city) < amount {
			return fmt.Errorf("%w: %d in %s", ErrNotEnoughGuns, b.state.GunsIn(city), city)
		}
		b.state.RemoveGuns(city, amount)
		o.Guns += amount
	default:
		back := -amount
		if o.Guns < back {
			return fmt.Errorf("%w: %d assigned", ErrNotAssigned, o.Guns)
		}
		o.Guns -= back
		b.state.AddGuns(city, back)
	}
	b.refreshOperational(o)
	return nil
}

// StoreDrugs moves units from the player inventory into the outpost,
// bounded by the tier's total cap and the per-drug share of it.
func (b *System) StoreDrugs(city, drug string, amount int) error {
	o := b.state.OutpostIn(city)
	if o == nil {
		return fmt.Errorf("%w: %s", ErrNoOutpost, city)
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if b.state.InventoryQty(drug) < amount {
		return fmt.Errorf("%w: you hold %d %s", ErrNotEnoughHeld, b.state.InventoryQty(drug), drug)
	}
	tier, _ := b.state.Data().Tier(o.Level)
	drugCount := len(b.state.Data().Drugs)
	perDrugCap := tier.MaxInventory / drugCount
	if o.TotalDrugs()+amount > tier.MaxInventory {
		return fmt.Errorf("%w: %d/%d stored", ErrStorageFull, o.TotalDrugs(), tier.MaxInventory)
	}
	if o.Inventory[drug]+amount > perDrugCap {
		return fmt.Errorf("%w: %s capped at %d here", ErrStorageFull, drug, perDrugCap)
	}

	b.state.UpdateInventory(drug, -amount)
	o.Inventory[drug] += amount
	b.refreshOperational(o)
	return nil
}

// TakeDrugs moves units from the outpost back to the player inventory.
func (b *System) TakeDrugs(city, drug string, amount int) error {
	o := b.state.OutpostIn(city)
	if o == nil {
		return fmt.Errorf("%w: %s", ErrNoOutpost, city)
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if o.Inventory[drug] < amount {
		return fmt.Errorf("%w: %d %s stored", ErrNotEnoughStored, o.Inventory[drug], drug)
	}

	o.Inventory[drug] -= amount
	b.state.UpdateInventory(drug, amount)
	b.refreshOperational(o)
	return nil
}

// refreshOperational re-derives the operational flag: staffed to the
// tier's gang and gun thresholds with at least one drug unit stored.
func (b *System) refreshOperational(o *game.Outpost) {
	tier, _ := b.state.Data().Tier(o.Level)
	o.Operational = o.AssignedGang >= tier.GangRequired &&
		o.Guns >= tier.GunsRequired &&
		o.TotalDrugs() > 0
	b.state.TouchOutpost(o)
}

// RefreshAll re-derives the operational flag on every outpost. Used
// after a snapshot load.
func (b *System) RefreshAll() {
	for _, o := range b.state.Outposts() {
		b.refreshOperational(o)
	}
}

// DailyIncome computes one day of income for an outpost:
// tier income x staffing ratio x stocked bonus x rank scaling.
func (b *System) DailyIncome(o *game.Outpost) int {
	if !o.Operational {
		return 0
	}
	cfg := b.state.Config()
	tier, _ := b.state.Data().Tier(o.Level)

	staffing := float64(o.AssignedGang) / float64(tier.GangRequired)
	if staffing > 1 {
		staffing = 1
	}
	stocked := 1.0
	if o.TotalDrugs() > 0 {
		stocked = cfg.DrugStockIncomeBonus
	}
	return int(math.Round(float64(tier.Income) * staffing * stocked * b.state.Rank().IncomeScaling))
}

// AccrueDailyIncome deposits a day of income into each operational
// outpost's safe, capped at the tier's safe limit.
func (b *System) AccrueDailyIncome() int {
	total := 0
	for _, o := range b.state.Outposts() {
		income := b.DailyIncome(o)
		if income == 0 {
			continue
		}
		tier, _ := b.state.Data().Tier(o.Level)
		o.CashStored += income
		if o.CashStored > tier.MaxSafe {
			o.CashStored = tier.MaxSafe
		}
		o.LastCollection = b.state.Player().Day
		total += income
		b.state.TouchOutpost(o)
	}
	return total
}

// ProcessHourlySales applies the real-time sale model: each full hour
// elapsed since an outpost's last sale moves one stored unit at a
// multiple of the local market price, proceeds into the safe. Driven by
// the periodic tick against the injected clock.
func (b *System) ProcessHourlySales(now time.Time) int {
	cfg := b.state.Config()
	sold := 0
	for _, o := range b.state.Outposts() {
		hours := int(now.Sub(o.LastSale).Hours())
		if hours <= 0 {
			continue
		}
		// Downtime earns nothing and accrues no backlog: the clock
		// keeps moving so re-staffing starts selling from now, not
		// from every hour missed.
		if !o.Operational {
			o.LastSale = o.LastSale.Add(time.Duration(hours) * time.Hour)
			continue
		}
		tier, _ := b.state.Data().Tier(o.Level)
		for i := 0; i < hours; i++ {
			drug := b.pickStockedDrug(o)
			if drug == "" {
				break
			}
			price := b.state.Price(o.City, drug)
			o.Inventory[drug]--
			o.CashStored += int(math.Round(float64(price) * cfg.HourlySaleMultiplier))
			if o.CashStored > tier.MaxSafe {
				o.CashStored = tier.MaxSafe
			}
			sold++
		}
		o.LastSale = o.LastSale.Add(time.Duration(hours) * time.Hour)
		b.refreshOperational(o)
	}
	return sold
}

func (b *System) pickStockedDrug(o *game.Outpost) string {
	stocked := make([]string, 0, len(o.Inventory))
	for drug, qty := range o.Inventory {
		if qty > 0 {
			stocked = append(stocked, drug)
		}
	}
	if len(stocked) == 0 {
		return ""
	}
	sort.Strings(stocked)
	return stocked[b.rng.Intn(len(stocked))]
}

// CollectIncome empties one outpost's safe into the player's pocket.
func (b *System) CollectIncome(city string) (int, error) {
	o := b.state.OutpostIn(city)
	if o == nil {
		return 0, fmt.Errorf("%w: %s", ErrNoOutpost, city)
	}
	if o.CashStored == 0 {
		return 0, ErrNothingToCollect
	}
	amount := o.CashStored
	o.CashStored = 0
	o.LastCollection = b.state.Player().Day
	b.state.UpdateCash(amount)
	b.state.TrackAchievement(game.CounterCashEarned, amount)
	b.state.RecalcRank()
	b.state.TouchOutpost(o)
	b.state.AddNotification(fmt.Sprintf("Collected $%d from %s", amount, city), game.NoticeSuccess)
	return amount, nil
}

// CollectAll empties every safe and returns the total.
func (b *System) CollectAll() int {
	total := 0
	for _, o := range b.state.Outposts() {
		if o.CashStored == 0 {
			continue
		}
		total += o.CashStored
		o.CashStored = 0
		o.LastCollection = b.state.Player().Day
		b.state.TouchOutpost(o)
	}
	if total > 0 {
		b.state.UpdateCash(total)
		b.state.TrackAchievement(game.CounterCashEarned, total)
		b.state.RecalcRank()
		b.state.AddNotification(fmt.Sprintf("Collected $%d from your outposts", total), game.NoticeSuccess)
	}
	return total
}

// DefenseResult is the resolved outcome of an enemy raid against one
// of the player's outposts.
type DefenseResult struct {
	City         string         `json:"city"`
	Repelled     bool           `json:"repelled"`
	CashLost     int            `json:"cashLost"`
	GunsLost     int            `json:"gunsLost"`
	GangLost     int            `json:"gangLost"`
	DrugsLost    map[string]int `json:"drugsLost,omitempty"`
	WarrantAdded int            `json:"warrantAdded"`
}

// CheckDefensiveRaids rolls the daily enemy-raid chance for every
// outpost and resolves any that trigger.
func (b *System) CheckDefensiveRaids() []DefenseResult {
	cfg := b.state.Config()
	warrant := float64(b.state.Warrant())
	chance := (warrant - cfg.DefenseWarrantFloor) / cfg.DefenseWarrantDivisor
	if chance > cfg.DefenseRaidChanceCap {
		chance = cfg.DefenseRaidChanceCap
	}
	if chance <= 0 {
		return nil
	}

	var results []DefenseResult
	for _, o := range b.state.Outposts() {
		if b.rng.Float64() >= chance {
			continue
		}
		results = append(results, b.resolveDefense(o))
	}
	return results
}

// resolveDefense pits the outpost's defense rating against the attack.
// Losses follow the percent-loss schedule on a failed defense.
func (b *System) resolveDefense(o *game.Outpost) DefenseResult {
	cfg := b.state.Config()
	res := DefenseResult{City: o.City}

	defense := cfg.DefensePerGang*float64(o.AssignedGang) + cfg.DefensePerGun*float64(o.Guns)
	if defense > cfg.DefenseCap {
		defense = cfg.DefenseCap
	}

	if b.rng.Float64() < defense {
		res.Repelled = true
		res.WarrantAdded = game.IntBetween(b.rng, cfg.DefenseRepelWarrantMin, cfg.DefenseRepelWarrantMax)
		b.state.UpdateWarrant(res.WarrantAdded)
		b.state.AddNotification(fmt.Sprintf("Your crew fought off a raid on %s", o.City), game.NoticeWarning)
		return res
	}

	res.CashLost = int(math.Round(float64(o.CashStored) * game.FloatBetween(b.rng, cfg.DefenseCashLossMin, cfg.DefenseCashLossMax)))
	o.CashStored -= res.CashLost

	res.GunsLost = int(math.Round(float64(o.Guns) * game.FloatBetween(b.rng, cfg.DefenseGunsLossMin, cfg.DefenseGunsLossMax)))
	o.Guns -= res.GunsLost

	res.GangLost = int(math.Round(float64(o.AssignedGang) * game.FloatBetween(b.rng, cfg.DefenseGangLossMin, cfg.DefenseGangLossMax)))
	o.AssignedGang -= res.GangLost

	res.DrugsLost = map[string]int{}
	drugs := make([]string, 0, len(o.Inventory))
	for drug := range o.Inventory {
		drugs = append(drugs, drug)
	}
	sort.Strings(drugs)
	for _, drug := range drugs {
		lost := int(math.Round(float64(o.Inventory[drug]) * game.FloatBetween(b.rng, cfg.DefenseDrugsLossMin, cfg.DefenseDrugsLossMax)))
		if lost > 0 {
			o.Inventory[drug] -= lost
			res.DrugsLost[drug] = lost
		}
	}

	res.WarrantAdded = game.IntBetween(b.rng, cfg.DefenseLossWarrantMin, cfg.DefenseLossWarrantMax)
	b.state.UpdateWarrant(res.WarrantAdded)
	b.refreshOperational(o)
	b.state.AddNotification(fmt.Sprintf("%s got hit! Lost $%d, %d guns, %d crew.", o.City, res.CashLost, res.GunsLost, res.GangLost), game.NoticeError)
	return res
}
