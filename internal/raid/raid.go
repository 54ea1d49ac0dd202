// Package raid procedurally generates rival outposts per city and
// resolves player-initiated offensive raids against them.
package raid

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
	ErrUnknownCity    = errors.New("unknown city")
	ErrTargetNotFound = errors.New("raid target not found")
	ErrCooldownActive = errors.New("the target is still on alert")
	ErrNotEnoughGang  = errors.New("not enough gang members available here")
	ErrInvalidGang    = errors.New("bring at least one gang member")
)

// Success-chance weights. Gang advantage is the ratio edge over the
// defenders, the gun bonus is capped, and difficulty always drags.
const (
	successBase      = 0.5
	gangEdgeWeight   = 0.4
	gunWeight        = 0.15
	gunBonusCap      = 0.4
	difficultyWeight = 0.3
)

// Enemy generation scaling: every stat interpolates from a floor up to
// the tier maximum as difficulty approaches 1.
const (
	tier1Ceiling   = 0.3
	tier2Ceiling   = 0.7
	cashFloor      = 0.3
	drugsFloor     = 0.2
	defendersFloor = 0.5
)

type System struct {
	state *game.State
	rng   game.Rand
}

func New(state *game.State, rng game.Rand) *System {
	return &System{state: state, rng: rng}
}

// GenerateWorld rolls a fresh set of rival outposts for every city.
// Called at session start; targets are never persisted.
func (r *System) GenerateWorld() {
	for _, c := range r.state.Data().Cities {
		_, _ = r.GenerateCity(c.Name)
	}
}

// GenerateCity rolls 2-4 rival outposts for one city.
func (r *System) GenerateCity(city string) ([]*game.EnemyOutpost, error) {
	if _, ok := r.state.Data().City(city); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCity, city)
	}
	cfg := r.state.Config()
	count := game.IntBetween(r.rng, cfg.EnemyOutpostsMin, cfg.EnemyOutpostsMax)
	targets := make([]*game.EnemyOutpost, 0, count)
	for i := 0; i < count; i++ {
		targets = append(targets, r.generateTarget(city))
	}
	r.state.SetEnemyOutposts(city, targets)
	return targets, nil
}

func (r *System) generateTarget(city string) *game.EnemyOutpost {
	difficulty := r.rng.Float64()
	tier := 3
	switch {
	case difficulty < tier1Ceiling:
		tier = 1
	case difficulty < tier2Ceiling:
		tier = 2
	}
	tierData, _ := r.state.Data().Tier(tier)

	target := &game.EnemyOutpost{
		ID:         uuid.NewString(),
		City:       city,
		Difficulty: difficulty,
		Tier:       tier,
		Cash:       int(math.Round(float64(tierData.MaxSafe) * (cashFloor + (1-cashFloor)*difficulty))),
		Drugs:      map[string]int{},
		GangSize:   int(math.Round(float64(tierData.GangRequired) * (defendersFloor + (1-defendersFloor)*difficulty))),
	}
	if target.GangSize < 1 {
		target.GangSize = 1
	}

	drugs := r.state.Data().Drugs
	stash := int(math.Round(float64(tierData.MaxInventory) * (drugsFloor + (1-drugsFloor)*difficulty)))
	for stash > 0 {
		d := drugs[r.rng.Intn(len(drugs))]
		portion := 1 + r.rng.Intn(stash)
		target.Drugs[d.Name] += portion
		stash -= portion
	}
	return target
}

// Result is the resolved outcome of an offensive raid. A failed raid
// is a valid resolution, not an error.
type Result struct {
	TargetID      string         `json:"targetId"`
	Success       bool           `json:"success"`
	SuccessChance float64        `json:"successChance"`
	CashLooted    int            `json:"cashLooted"`
	DrugsLooted   map[string]int `json:"drugsLooted,omitempty"`
	WarrantAdded  int            `json:"warrantAdded"`
}

// SuccessChance computes the clamped win probability against a target
// for a given attacking party.
func (r *System) SuccessChance(target *game.EnemyOutpost, gangSize, guns int) float64 {
	cfg := r.state.Config()
	gangEdge := float64(gangSize)/float64(target.GangSize) - 1

	gunBonus := gunWeight * float64(guns)
	if gunBonus > gunBonusCap {
		gunBonus = gunBonusCap
	}

	chance := successBase + gangEdgeWeight*gangEdge + gunBonus - difficultyWeight*target.Difficulty
	if chance < cfg.RaidChanceFloor {
		chance = cfg.RaidChanceFloor
	}
	if chance > cfg.RaidChanceCeil {
		chance = cfg.RaidChanceCeil
	}
	return chance
}

// Execute resolves a raid with gangSize members from the target city's
// pool. The cooldown gate rejects without touching any state; both win
// and loss stamp a fresh cooldown.
func (r *System) Execute(targetID string, gangSize int) (Result, error) {
	if gangSize <= 0 {
		return Result{}, ErrInvalidGang
	}
	target := r.state.FindEnemyOutpost(targetID)
	if target == nil {
		return Result{}, fmt.Errorf("%w: %s", ErrTargetNotFound, targetID)
	}
	cfg := r.state.Config()
	now := r.state.Clock().Now()
	if !target.LastRaid.IsZero() && now.Sub(target.LastRaid) < cfg.RaidCooldown {
		wait := cfg.RaidCooldown - now.Sub(target.LastRaid)
		return Result{}, fmt.Errorf("%w: %s left", ErrCooldownActive, wait.Round(time.Second))
	}
	if r.state.GangIn(target.City) < gangSize {
		return Result{}, fmt.Errorf("%w: %d in %s", ErrNotEnoughGang, r.state.GangIn(target.City), target.City)
	}

	guns := r.state.GunsIn(target.City)
	res := Result{
		TargetID:      targetID,
		SuccessChance: r.SuccessChance(target, gangSize, guns),
	}
	target.LastRaid = now
	r.state.TrackAchievement(game.CounterRaidsAttempted, 1)

	heatScale := math.Pow(r.state.Rank().HeatScaling, float64(r.state.Player().Rank-1))

	if r.rng.Float64() >= res.SuccessChance {
		res.WarrantAdded = int(math.Round(float64(game.IntBetween(r.rng, cfg.RaidFailWarrantMin, cfg.RaidFailWarrantMax)) * heatScale))
		r.state.UpdateWarrant(res.WarrantAdded)
		r.state.AddNotification(fmt.Sprintf("The raid in %s went sideways. Your crew pulled back empty-handed.", target.City), game.NoticeError)
		return res, nil
	}

	res.Success = true
	lootFrac := cfg.RaidLootBaseFactor + cfg.RaidLootChanceShare*res.SuccessChance

	res.CashLooted = int(math.Round(float64(target.Cash) * lootFrac))
	target.Cash -= res.CashLooted
	r.state.UpdateCash(res.CashLooted)

	res.DrugsLooted = map[string]int{}
	drugs := make([]string, 0, len(target.Drugs))
	for drug := range target.Drugs {
		drugs = append(drugs, drug)
	}
	sort.Strings(drugs)
	for _, drug := range drugs {
		looted := int(math.Round(float64(target.Drugs[drug]) * lootFrac))
		if looted > 0 {
			target.Drugs[drug] -= looted
			r.state.UpdateInventory(drug, looted)
			res.DrugsLooted[drug] = looted
		}
	}

	res.WarrantAdded = int(math.Round(float64(game.IntBetween(r.rng, cfg.RaidWinWarrantMin, cfg.RaidWinWarrantMax)) * heatScale))
	r.state.UpdateWarrant(res.WarrantAdded)
	r.state.TrackAchievement(game.CounterRaidsWon, 1)
	r.state.TrackAchievement(game.CounterCashEarned, res.CashLooted)
	r.state.RecalcRank()
	r.state.AddNotification(fmt.Sprintf("Raid in %s paid off: $%d and product seized.", target.City, res.CashLooted), game.NoticeSuccess)
	return res, nil
}
