// Package heat derives the 0-100 risk score from accumulated warrant
// and time spent stationary, decays warrant, and resolves punitive
// police raids against the player's personal holdings.
package heat

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/sirsapient/slang-bang-react-sub000/internal/game"
)

var ErrInsufficientFunds = errors.New("not enough cash for the bribe")

type System struct {
	state *game.State
	rng   game.Rand
}

func New(state *game.State, rng game.Rand) *System {
	return &System{state: state, rng: rng}
}

// Level computes the current heat score, always clamped to [0,100]:
// min(100, min(warrant/divisor, warrantCap) + stationary-day pressure).
func (h *System) Level() float64 {
	cfg := h.state.Config()
	p := h.state.Player()

	warrantHeat := float64(p.Warrant) / cfg.WarrantHeatDivisor
	if warrantHeat > cfg.WarrantHeatCap {
		warrantHeat = cfg.WarrantHeatCap
	}
	stayDays := p.DaysInCity - cfg.StayHeatGraceDays
	if stayDays < 0 {
		stayDays = 0
	}
	level := warrantHeat + float64(stayDays)*cfg.StayHeatPerDay
	if level > 100 {
		level = 100
	}
	if level < 0 {
		level = 0
	}
	return level
}

// DecayWarrant applies the daily stationary reduction. The percentage
// escalates with days since the player last travelled.
func (h *System) DecayWarrant() int {
	cfg := h.state.Config()
	p := h.state.Player()
	if p.Warrant == 0 {
		return 0
	}

	pct := cfg.WarrantDecayBase
	switch {
	case p.DaysInCity >= 14:
		pct = cfg.WarrantDecayDay14
	case p.DaysInCity >= 7:
		pct = cfg.WarrantDecayDay7
	case p.DaysInCity >= 3:
		pct = cfg.WarrantDecayDay3
	}
	reduction := int(math.Round(float64(p.Warrant) * pct))
	h.state.UpdateWarrant(-reduction)
	return reduction
}

// ApplyTravelDecay removes the flat travel fraction of warrant. Called
// once per completed trip.
func (h *System) ApplyTravelDecay() int {
	cfg := h.state.Config()
	reduction := int(math.Round(float64(h.state.Warrant()) * cfg.TravelWarrantFactor))
	h.state.UpdateWarrant(-reduction)
	return reduction
}

// BustResult is the resolved outcome of a police raid. A raid is a
// first-class probabilistic resolution, not an error.
type BustResult struct {
	DrugsSeized  map[string]int `json:"drugsSeized"`
	CashSeized   int            `json:"cashSeized"`
	GunsSeized   int            `json:"gunsSeized"`
	WarrantAdded int            `json:"warrantAdded"`
}

// CheckPoliceRaid rolls for a punitive raid. Nothing happens with an
// empty inventory or below the heat floor.
func (h *System) CheckPoliceRaid() (*BustResult, bool) {
	if h.state.TotalInventory() == 0 {
		return nil, false
	}
	cfg := h.state.Config()
	level := h.Level()
	if level < cfg.PoliceRaidHeatFloor {
		return nil, false
	}
	chance := (level - cfg.PoliceRaidHeatFloor) / 100
	if chance > cfg.PoliceRaidChanceCap {
		chance = cfg.PoliceRaidChanceCap
	}
	if h.rng.Float64() >= chance {
		return nil, false
	}
	res := h.ExecutePoliceRaid()
	return &res, true
}

// ExecutePoliceRaid seizes a proportion of every held drug (mitigated
// by guns), a capped slice of cash, some guns, and raises warrant.
// Cash losses inside the rolling window never exceed the configured
// fraction of current cash.
func (h *System) ExecutePoliceRaid() BustResult {
	cfg := h.state.Config()
	p := h.state.Player()

	res := BustResult{DrugsSeized: map[string]int{}}

	mitigation := cfg.GunMitigationPerGun * float64(p.Guns)
	if mitigation > cfg.GunMitigationCap {
		mitigation = cfg.GunMitigationCap
	}
	lossFrac := game.FloatBetween(h.rng, cfg.PoliceDrugLossMin, cfg.PoliceDrugLossMax) * (1 - mitigation)

	inv := h.state.Inventory()
	drugs := make([]string, 0, len(inv))
	for drug := range inv {
		drugs = append(drugs, drug)
	}
	sort.Strings(drugs)
	for _, drug := range drugs {
		qty := inv[drug]
		if qty == 0 {
			continue
		}
		seized := int(math.Round(float64(qty) * lossFrac))
		if seized > qty {
			seized = qty
		}
		if seized > 0 {
			h.state.UpdateInventory(drug, -seized)
			res.DrugsSeized[drug] = seized
		}
	}

	cashRoll := int(math.Round(float64(p.Cash) * game.FloatBetween(h.rng, cfg.PoliceCashLossMin, cfg.PoliceCashLossMax)))
	allowed := int(math.Round(float64(p.Cash)*cfg.PoliceCashLossCap)) - h.state.CashLostSince(cfg.PoliceCashLossWindow)
	if allowed < 0 {
		allowed = 0
	}
	if cashRoll > allowed {
		cashRoll = allowed
	}
	if cashRoll > 0 {
		h.state.UpdateCash(-cashRoll)
		h.state.RecordCashLoss(cashRoll)
		res.CashSeized = cashRoll
	}

	gunLoss := int(math.Round(float64(h.state.GunsIn(p.CurrentCity)) * game.FloatBetween(h.rng, cfg.PoliceGunLossMin, cfg.PoliceGunLossMax)))
	res.GunsSeized = h.state.RemoveGuns(p.CurrentCity, gunLoss)

	res.WarrantAdded = game.IntBetween(h.rng, cfg.PoliceWarrantMin, cfg.PoliceWarrantMax)
	h.state.UpdateWarrant(res.WarrantAdded)

	h.state.TrackAchievement(game.CounterBustsSurvived, 1)
	h.state.AddNotification(
		fmt.Sprintf("Police raid! Lost $%d, %d guns and part of your stash.", res.CashSeized, res.GunsSeized),
		game.NoticeError)
	return res
}

// BribeResult is the resolved outcome of a bribe attempt.
type BribeResult struct {
	Cost            int  `json:"cost"`
	WarrantReduced  int  `json:"warrantReduced"`
	Backfired       bool `json:"backfired"`
	WarrantReturned int  `json:"warrantReturned"`
}

// BribeCost quotes the current price of making the warrant shrink.
func (h *System) BribeCost() int {
	return int(math.Round(float64(h.state.Warrant()) * h.state.Config().BribeCostFactor))
}

// Bribe pays down warrant. A small chance the payoff is discovered and
// part of the spend comes back as fresh warrant.
func (h *System) Bribe() (BribeResult, error) {
	cfg := h.state.Config()
	warrant := h.state.Warrant()
	cost := h.BribeCost()
	if cost > h.state.Cash() {
		return BribeResult{}, fmt.Errorf("%w: need $%d", ErrInsufficientFunds, cost)
	}

	res := BribeResult{
		Cost:           cost,
		WarrantReduced: int(math.Round(float64(warrant) * cfg.BribeReliefFactor)),
	}
	h.state.UpdateCash(-cost)
	h.state.UpdateWarrant(-res.WarrantReduced)

	if h.rng.Float64() < cfg.BribeBackfireChance {
		res.Backfired = true
		res.WarrantReturned = int(math.Round(float64(cost) * cfg.BribeBackfireFactor))
		h.state.UpdateWarrant(res.WarrantReturned)
		h.state.AddNotification("The bribe got discovered. Some heat came right back.", game.NoticeWarning)
	} else {
		h.state.AddNotification(fmt.Sprintf("Paid $%d to make some paperwork disappear.", cost), game.NoticeSuccess)
	}
	return res, nil
}
