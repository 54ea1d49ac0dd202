package game

import (
	"math"
	"time"
)

// AssetsSnapshot matches the persisted assets container shape.
type AssetsSnapshot struct {
	Owned   map[string][]*AssetInstance `json:"owned"`
	Wearing map[string][]string         `json:"wearing"`
}

// Snapshot is the full persisted state shape. Enemy outposts are
// session-scoped and deliberately absent.
type Snapshot struct {
	Player        Player                    `json:"player"`
	Inventory     map[string]int            `json:"inventory"`
	Outposts      map[string][]*Outpost     `json:"bases"`
	CityPrices    map[string]map[string]int `json:"cityPrices"`
	CitySupply    map[string]map[string]int `json:"citySupply"`
	Assets        *AssetsSnapshot           `json:"assets"`
	Drops         map[string]*GlobalDrop    `json:"drops"`
	Notifications []Notification            `json:"notifications"`
	Achievements  Achievements              `json:"achievements"`
	SavedAt       time.Time                 `json:"savedAt"`
}

// Snapshot captures the full state as one unit.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Player:        s.player,
		Inventory:     cloneCounts(s.inventory),
		Outposts:      map[string][]*Outpost{},
		CityPrices:    map[string]map[string]int{},
		CitySupply:    map[string]map[string]int{},
		Drops:         map[string]*GlobalDrop{},
		Notifications: append([]Notification(nil), s.notifications...),
		Achievements: Achievements{
			Unlocked: map[string]bool{},
			Progress: cloneCounts(s.achievements.Progress),
		},
		SavedAt: s.clock.Now(),
	}
	snap.Player.GangByCity = cloneCounts(s.player.GangByCity)
	snap.Player.GunsByCity = cloneCounts(s.player.GunsByCity)
	for k, v := range s.achievements.Unlocked {
		snap.Achievements.Unlocked[k] = v
	}
	for city, o := range s.outposts {
		cp := *o
		cp.Inventory = cloneCounts(o.Inventory)
		snap.Outposts[city] = []*Outpost{&cp}
	}
	for city, table := range s.prices {
		snap.CityPrices[city] = cloneCounts(table)
	}
	for city, table := range s.supply {
		snap.CitySupply[city] = cloneCounts(table)
	}
	for city, d := range s.drops {
		cp := *d
		cp.Purchases = append([]DropPurchase(nil), d.Purchases...)
		snap.Drops[city] = &cp
	}
	snap.Assets = &AssetsSnapshot{
		Owned:   map[string][]*AssetInstance{},
		Wearing: map[string][]string{"jewelry": append([]string(nil), s.wearing...)},
	}
	for tpl, list := range s.assets {
		out := make([]*AssetInstance, 0, len(list))
		for _, inst := range list {
			cp := *inst
			out = append(out, &cp)
		}
		snap.Assets.Owned[tpl] = out
	}
	return snap
}

// Restore replaces the state with a loaded snapshot. Known-bad shapes
// are repaired into safe defaults rather than rejected: nil maps become
// empty, NaN or negative cash clamps to zero, a missing asset container
// is recreated, outpost levels clamp into the tier range. Derived
// fields (gang totals, rank) are recomputed after repair.
func (s *State) Restore(snap Snapshot) {
	s.mu.Lock()

	p := snap.Player
	if math.IsNaN(float64(p.Cash)) || p.Cash < 0 {
		p.Cash = 0
	}
	if p.Warrant < 0 {
		p.Warrant = 0
	}
	if p.GangByCity == nil {
		p.GangByCity = map[string]int{}
	}
	if p.GunsByCity == nil {
		p.GunsByCity = map[string]int{}
	}
	if _, ok := s.data.City(p.CurrentCity); !ok {
		p.CurrentCity = s.cfg.StartingCity
	}
	if p.Day < 1 {
		p.Day = 1
	}
	if p.Rank < 1 {
		p.Rank = 1
	}
	if p.Rank > len(s.data.Ranks) {
		p.Rank = len(s.data.Ranks)
	}
	s.player = p

	s.inventory = map[string]int{}
	for drug, qty := range snap.Inventory {
		if qty > 0 {
			s.inventory[drug] = qty
		}
	}

	s.outposts = map[string]*Outpost{}
	for city, list := range snap.Outposts {
		if len(list) == 0 || list[0] == nil {
			continue
		}
		o := *list[0]
		o.City = city
		if o.Inventory == nil {
			o.Inventory = map[string]int{}
		}
		for drug, qty := range o.Inventory {
			if qty < 0 {
				o.Inventory[drug] = 0
			}
		}
		if o.Level < 1 {
			o.Level = 1
		}
		if o.Level > s.data.MaxTier() {
			o.Level = s.data.MaxTier()
		}
		if o.CashStored < 0 {
			o.CashStored = 0
		}
		s.outposts[city] = &o
	}

	s.prices = map[string]map[string]int{}
	for city, table := range snap.CityPrices {
		s.prices[city] = cloneCounts(table)
	}
	s.supply = map[string]map[string]int{}
	for city, table := range snap.CitySupply {
		repaired := map[string]int{}
		for drug, qty := range table {
			if qty < 0 {
				qty = 0
			}
			repaired[drug] = qty
		}
		s.supply[city] = repaired
	}

	assets := snap.Assets
	if assets == nil {
		assets = &AssetsSnapshot{}
	}
	s.assets = map[string][]*AssetInstance{}
	owned := map[string]bool{}
	for tpl, list := range assets.Owned {
		for _, inst := range list {
			if inst == nil || inst.InstanceID == "" {
				continue
			}
			cp := *inst
			cp.TemplateID = tpl
			s.assets[tpl] = append(s.assets[tpl], &cp)
			owned[cp.InstanceID] = true
		}
	}
	s.wearing = nil
	for _, id := range assets.Wearing["jewelry"] {
		if owned[id] {
			s.wearing = append(s.wearing, id)
		}
	}

	s.drops = map[string]*GlobalDrop{}
	for city, d := range snap.Drops {
		if d == nil || d.Remaining <= 0 {
			continue
		}
		cp := *d
		cp.City = city
		s.drops[city] = &cp
	}

	s.notifications = append([]Notification(nil), snap.Notifications...)
	if len(s.notifications) > s.cfg.NotificationCap {
		s.notifications = s.notifications[:s.cfg.NotificationCap]
	}

	s.achievements = Achievements{
		Unlocked: map[string]bool{},
		Progress: map[string]int{},
	}
	for k, v := range snap.Achievements.Unlocked {
		s.achievements.Unlocked[k] = v
	}
	for k, v := range snap.Achievements.Progress {
		s.achievements.Progress[k] = v
	}

	// Session-scoped raid targets never survive a load.
	s.enemies = map[string][]*EnemyOutpost{}
	s.cashLosses = nil

	s.recomputeTotalsLocked()
	s.mu.Unlock()

	s.emit(EventStateChange, "restore", nil)
}
