package game

import "fmt"

// Progress counters accumulated through TrackAchievement.
const (
	CounterDrugsSold      = "drugs_sold"
	CounterDrugsBought    = "drugs_bought"
	CounterCashEarned     = "cash_earned"
	CounterRaidsWon       = "raids_won"
	CounterRaidsAttempted = "raids_attempted"
	CounterOutpostsOwned  = "outposts_owned"
	CounterAssetsOwned    = "assets_owned"
	CounterBustsSurvived  = "busts_survived"
	CounterDaysPlayed     = "days_played"
	CounterRankLevel      = "rank_level"
)

type achievementDef struct {
	ID      string
	Title   string
	Counter string
	// Threshold the counter must reach for the unlock predicate to
	// become true.
	Threshold int
}

// achievementTable is the fixed unlock-predicate table. Evaluated on
// every TrackAchievement call; each entry unlocks at most once.
var achievementTable = []achievementDef{
	{ID: "first_sale", Title: "First Sale", Counter: CounterDrugsSold, Threshold: 1},
	{ID: "moving_weight", Title: "Moving Weight", Counter: CounterDrugsSold, Threshold: 1000},
	{ID: "re_up", Title: "Re-Up", Counter: CounterDrugsBought, Threshold: 100},
	{ID: "enforcer", Title: "Enforcer", Counter: CounterRaidsWon, Threshold: 10},
	{ID: "landlord", Title: "Landlord", Counter: CounterOutpostsOwned, Threshold: 3},
	{ID: "millionaire", Title: "Millionaire", Counter: CounterCashEarned, Threshold: 1000000},
	{ID: "collector", Title: "Collector", Counter: CounterAssetsOwned, Threshold: 10},
	{ID: "untouchable", Title: "Untouchable", Counter: CounterBustsSurvived, Threshold: 5},
	{ID: "veteran", Title: "Veteran", Counter: CounterDaysPlayed, Threshold: 30},
	{ID: "kingpin", Title: "Kingpin", Counter: CounterRankLevel, Threshold: 5},
}

// TrackAchievement accumulates a progress counter and re-evaluates the
// unlock table. Newly unlocked achievement ids are returned; each emits
// an unlock notification the first time its predicate becomes true.
func (s *State) TrackAchievement(counter string, delta int) []string {
	s.mu.Lock()
	s.achievements.Progress[counter] += delta
	var unlocked []achievementDef
	for _, def := range achievementTable {
		if s.achievements.Unlocked[def.ID] {
			continue
		}
		if s.achievements.Progress[def.Counter] >= def.Threshold {
			s.achievements.Unlocked[def.ID] = true
			unlocked = append(unlocked, def)
		}
	}
	s.mu.Unlock()

	ids := make([]string, 0, len(unlocked))
	for _, def := range unlocked {
		ids = append(ids, def.ID)
		s.emit(EventAchievementUnlocked, def.ID, def.Title)
		s.AddNotification(fmt.Sprintf("Achievement unlocked: %s", def.Title), NoticeSuccess)
	}
	return ids
}

// AchievementsState returns a copy of the unlocked set and counters.
func (s *State) AchievementsState() Achievements {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := Achievements{
		Unlocked: make(map[string]bool, len(s.achievements.Unlocked)),
		Progress: cloneCounts(s.achievements.Progress),
	}
	for k, v := range s.achievements.Unlocked {
		out.Unlocked[k] = v
	}
	return out
}
