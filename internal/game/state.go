package game

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sirsapient/slang-bang-react-sub000/internal/config"
)

type NotificationType string

const (
	NoticeSuccess NotificationType = "success"
	NoticeError   NotificationType = "error"
	NoticeWarning NotificationType = "warning"
	NoticeInfo    NotificationType = "info"
)

// Notification is an append-only UI message. The list is capped; oldest
// entries are dropped. Message text is plain text, never markup.
type Notification struct {
	ID        string           `json:"id"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Day       int              `json:"day"`
	Timestamp time.Time        `json:"timestamp"`
	Read      bool             `json:"read"`
}

// Player holds the player-owned attributes. GangSize and Guns are
// derived sums over the per-city pools and recomputed on every change.
type Player struct {
	Cash        int            `json:"cash"`
	Warrant     int            `json:"warrant"`
	GangSize    int            `json:"gangSize"`
	Guns        int            `json:"guns"`
	GangByCity  map[string]int `json:"gangByCity"`
	GunsByCity  map[string]int `json:"gunsByCity"`
	CurrentCity string         `json:"currentCity"`
	DaysInCity  int            `json:"daysInCurrentCity"`
	Day         int            `json:"day"`
	Rank        int            `json:"rank"`
}

// Outpost is a player-owned facility, at most one per city.
type Outpost struct {
	ID             string         `json:"id"`
	City           string         `json:"city"`
	Level          int            `json:"level"`
	AssignedGang   int            `json:"assignedGang"`
	Guns           int            `json:"guns"`
	Inventory      map[string]int `json:"inventory"`
	CashStored     int            `json:"cashStored"`
	Operational    bool           `json:"operational"`
	LastSale       time.Time      `json:"lastDrugSale"`
	LastCollection int            `json:"lastCollection"`
}

// TotalDrugs sums the stored drug units.
func (o *Outpost) TotalDrugs() int {
	total := 0
	for _, qty := range o.Inventory {
		total += qty
	}
	return total
}

// EnemyOutpost is a session-scoped raid target. Never persisted.
type EnemyOutpost struct {
	ID         string         `json:"id"`
	City       string         `json:"city"`
	Difficulty float64        `json:"difficulty"`
	Tier       int            `json:"tier"`
	Cash       int            `json:"cash"`
	Drugs      map[string]int `json:"drugs"`
	GangSize   int            `json:"gangSize"`
	LastRaid   time.Time      `json:"lastRaid"`
}

// AssetInstance is one owned copy of an asset template.
type AssetInstance struct {
	InstanceID        string           `json:"instanceId"`
	TemplateID        string           `json:"assetId"`
	Kind              config.AssetKind `json:"type"`
	Cost              int              `json:"cost"`
	ResaleValue       int              `json:"resaleValue"`
	FlexScore         int              `json:"flexScore"`
	CityPurchased     string           `json:"cityPurchased"`
	StoragePropertyID string           `json:"storagePropertyId,omitempty"`
}

// DropPurchase records one buy against a global drop listing.
type DropPurchase struct {
	InstanceID string    `json:"instanceId"`
	Price      int       `json:"price"`
	At         time.Time `json:"at"`
}

// GlobalDrop is the world-scoped scarce listing for one city.
type GlobalDrop struct {
	ID          string         `json:"id"`
	City        string         `json:"city"`
	TemplateID  string         `json:"templateId"`
	TotalSupply int            `json:"totalSupply"`
	Remaining   int            `json:"remaining"`
	BasePrice   int            `json:"basePrice"`
	CreatedAt   time.Time      `json:"createdAt"`
	ExpiresAt   time.Time      `json:"expiresAt"`
	Purchases   []DropPurchase `json:"purchases,omitempty"`
}

// Achievements holds the unlocked set plus the raw progress counters
// the unlock predicates are evaluated over.
type Achievements struct {
	Unlocked map[string]bool `json:"unlocked"`
	Progress map[string]int  `json:"progress"`
}

type cashLoss struct {
	Amount int       `json:"amount"`
	At     time.Time `json:"at"`
}

// State is the single authoritative game-state store. All mutation goes
// through its methods; every mutation emits a specific event plus the
// generic stateChange for UI subscribers.
type State struct {
	emitter

	mu    sync.RWMutex
	cfg   config.Balance
	data  *config.GameData
	clock Clock

	player        Player
	inventory     map[string]int
	prices        map[string]map[string]int
	supply        map[string]map[string]int
	outposts      map[string]*Outpost
	enemies       map[string][]*EnemyOutpost
	assets        map[string][]*AssetInstance
	wearing       []string
	drops         map[string]*GlobalDrop
	notifications []Notification
	achievements  Achievements
	cashLosses    []cashLoss
}

// NewState builds a fresh store with starting player attributes.
func NewState(cfg config.Balance, data *config.GameData, clock Clock) *State {
	s := &State{
		cfg:       cfg,
		data:      data,
		clock:     clock,
		inventory: map[string]int{},
		prices:    map[string]map[string]int{},
		supply:    map[string]map[string]int{},
		outposts:  map[string]*Outpost{},
		enemies:   map[string][]*EnemyOutpost{},
		assets:    map[string][]*AssetInstance{},
		drops:     map[string]*GlobalDrop{},
		achievements: Achievements{
			Unlocked: map[string]bool{},
			Progress: map[string]int{},
		},
	}
	s.player = Player{
		Cash:        cfg.StartingCash,
		CurrentCity: cfg.StartingCity,
		GangByCity:  map[string]int{},
		GunsByCity:  map[string]int{},
		Day:         1,
		Rank:        1,
	}
	return s
}

// Data exposes the immutable reference tables.
func (s *State) Data() *config.GameData { return s.data }

// Config exposes the balance table.
func (s *State) Config() config.Balance { return s.cfg }

// Clock exposes the injected clock.
func (s *State) Clock() Clock { return s.clock }

// Player returns a copy of the player attributes.
func (s *State) Player() Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.player
	p.GangByCity = cloneCounts(s.player.GangByCity)
	p.GunsByCity = cloneCounts(s.player.GunsByCity)
	return p
}

// Cash returns the current cash balance.
func (s *State) Cash() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.player.Cash
}

// Warrant returns the current warrant total.
func (s *State) Warrant() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.player.Warrant
}

// UpdateCash applies delta and clamps the result at zero.
// Returns the new balance.
func (s *State) UpdateCash(delta int) int {
	s.mu.Lock()
	s.player.Cash += delta
	if s.player.Cash < 0 {
		s.player.Cash = 0
	}
	cash := s.player.Cash
	s.mu.Unlock()
	s.emit(EventCashChanged, "cash", cash)
	return cash
}

// UpdateWarrant applies delta and clamps at zero. Heat is derived from
// warrant on read, so no further recompute is needed here.
func (s *State) UpdateWarrant(delta int) int {
	s.mu.Lock()
	s.player.Warrant += delta
	if s.player.Warrant < 0 {
		s.player.Warrant = 0
	}
	w := s.player.Warrant
	s.mu.Unlock()
	s.emit(EventWarrantChanged, "warrant", w)
	return w
}

// Inventory returns a copy of the player's inventory.
func (s *State) Inventory() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCounts(s.inventory)
}

// InventoryQty returns the held quantity of one drug.
func (s *State) InventoryQty(drug string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inventory[drug]
}

// UpdateInventory applies delta to one drug and clamps at zero.
// Returns the new quantity.
func (s *State) UpdateInventory(drug string, delta int) int {
	s.mu.Lock()
	s.inventory[drug] += delta
	if s.inventory[drug] < 0 {
		s.inventory[drug] = 0
	}
	qty := s.inventory[drug]
	s.mu.Unlock()
	s.emit(EventInventoryChanged, drug, qty)
	return qty
}

// TotalInventory sums all held drug units.
func (s *State) TotalInventory() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, qty := range s.inventory {
		total += qty
	}
	return total
}

// GangIn returns the unassigned gang pool in a city.
func (s *State) GangIn(city string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.player.GangByCity[city]
}

// GunsIn returns the gun pool in a city.
func (s *State) GunsIn(city string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.player.GunsByCity[city]
}

// AddGang adds members to a city pool and recomputes the derived total.
func (s *State) AddGang(city string, n int) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	s.player.GangByCity[city] += n
	s.recomputeTotalsLocked()
	total := s.player.GangSize
	s.mu.Unlock()
	s.emit(EventGangChanged, city, total)
}

// RemoveGang removes up to n members from a city pool and returns how
// many were actually removed.
func (s *State) RemoveGang(city string, n int) int {
	if n <= 0 {
		return 0
	}
	s.mu.Lock()
	removed := n
	if s.player.GangByCity[city] < removed {
		removed = s.player.GangByCity[city]
	}
	s.player.GangByCity[city] -= removed
	s.recomputeTotalsLocked()
	total := s.player.GangSize
	s.mu.Unlock()
	s.emit(EventGangChanged, city, total)
	return removed
}

// AddGuns adds guns to a city pool.
func (s *State) AddGuns(city string, n int) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	s.player.GunsByCity[city] += n
	s.recomputeTotalsLocked()
	total := s.player.Guns
	s.mu.Unlock()
	s.emit(EventGunsChanged, city, total)
}

// RemoveGuns removes up to n guns from a city pool and returns how many
// were actually removed.
func (s *State) RemoveGuns(city string, n int) int {
	if n <= 0 {
		return 0
	}
	s.mu.Lock()
	removed := n
	if s.player.GunsByCity[city] < removed {
		removed = s.player.GunsByCity[city]
	}
	s.player.GunsByCity[city] -= removed
	s.recomputeTotalsLocked()
	total := s.player.Guns
	s.mu.Unlock()
	s.emit(EventGunsChanged, city, total)
	return removed
}

func (s *State) recomputeTotalsLocked() {
	gang, guns := 0, 0
	for _, n := range s.player.GangByCity {
		gang += n
	}
	for _, n := range s.player.GunsByCity {
		guns += n
	}
	s.player.GangSize = gang
	s.player.Guns = guns
}

// SetCurrentCity moves the player and resets the stationary-day count.
func (s *State) SetCurrentCity(city string) {
	s.mu.Lock()
	s.player.CurrentCity = city
	s.player.DaysInCity = 0
	s.mu.Unlock()
	s.emit(EventCityChanged, "currentCity", city)
}

// AdvanceDay steps the day counter and the stationary-day count.
// Returns the new day.
func (s *State) AdvanceDay() int {
	s.mu.Lock()
	s.player.Day++
	s.player.DaysInCity++
	day := s.player.Day
	s.mu.Unlock()
	s.emit(EventDayChanged, "day", day)
	return day
}

// Price returns the price of a drug in a city, zero if unknown.
func (s *State) Price(city, drug string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prices[city][drug]
}

// SetPrice sets the price of a drug in a city.
func (s *State) SetPrice(city, drug string, price int) {
	s.mu.Lock()
	if s.prices[city] == nil {
		s.prices[city] = map[string]int{}
	}
	s.prices[city][drug] = price
	s.mu.Unlock()
	s.emit(EventMarketChanged, city, drug)
}

// Supply returns the market supply of a drug in a city.
func (s *State) Supply(city, drug string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.supply[city][drug]
}

// SetSupply sets the market supply of a drug in a city, clamped at zero.
func (s *State) SetSupply(city, drug string, qty int) {
	if qty < 0 {
		qty = 0
	}
	s.mu.Lock()
	if s.supply[city] == nil {
		s.supply[city] = map[string]int{}
	}
	s.supply[city][drug] = qty
	s.mu.Unlock()
	s.emit(EventMarketChanged, city, drug)
}

// CityPrices returns a copy of one city's price table.
func (s *State) CityPrices(city string) map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCounts(s.prices[city])
}

// CitySupply returns a copy of one city's supply table.
func (s *State) CitySupply(city string) map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCounts(s.supply[city])
}

// AddOutpost registers a newly purchased outpost.
func (s *State) AddOutpost(o *Outpost) {
	s.mu.Lock()
	s.outposts[o.City] = o
	s.mu.Unlock()
	s.emit(EventOutpostChanged, o.City, o.ID)
}

// OutpostIn returns the outpost in a city, nil if none.
func (s *State) OutpostIn(city string) *Outpost {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.outposts[city]
}

// Outposts returns all owned outposts.
func (s *State) Outposts() []*Outpost {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Outpost, 0, len(s.outposts))
	for _, o := range s.outposts {
		out = append(out, o)
	}
	return out
}

// TouchOutpost emits a change event after in-place outpost mutation.
func (s *State) TouchOutpost(o *Outpost) {
	s.emit(EventOutpostChanged, o.City, o.ID)
}

// SetEnemyOutposts replaces the session raid targets for a city.
func (s *State) SetEnemyOutposts(city string, targets []*EnemyOutpost) {
	s.mu.Lock()
	s.enemies[city] = targets
	s.mu.Unlock()
}

// EnemyOutpostsIn returns the raid targets for a city.
func (s *State) EnemyOutpostsIn(city string) []*EnemyOutpost {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*EnemyOutpost(nil), s.enemies[city]...)
}

// FindEnemyOutpost looks up a raid target by id across all cities.
func (s *State) FindEnemyOutpost(id string) *EnemyOutpost {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, targets := range s.enemies {
		for _, t := range targets {
			if t.ID == id {
				return t
			}
		}
	}
	return nil
}

// AddAsset registers a purchased asset instance.
func (s *State) AddAsset(inst *AssetInstance) {
	s.mu.Lock()
	s.assets[inst.TemplateID] = append(s.assets[inst.TemplateID], inst)
	s.mu.Unlock()
	s.emit(EventAssetsChanged, inst.TemplateID, inst.InstanceID)
}

// RemoveAsset deletes an owned instance by id. Returns the removed
// instance, or nil if not owned.
func (s *State) RemoveAsset(instanceID string) *AssetInstance {
	s.mu.Lock()
	var removed *AssetInstance
	for tpl, list := range s.assets {
		for i, inst := range list {
			if inst.InstanceID == instanceID {
				removed = inst
				s.assets[tpl] = append(list[:i], list[i+1:]...)
				break
			}
		}
		if removed != nil {
			break
		}
	}
	s.mu.Unlock()
	if removed != nil {
		s.emit(EventAssetsChanged, removed.TemplateID, instanceID)
	}
	return removed
}

// FindAsset looks up an owned instance by id.
func (s *State) FindAsset(instanceID string) *AssetInstance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, list := range s.assets {
		for _, inst := range list {
			if inst.InstanceID == instanceID {
				return inst
			}
		}
	}
	return nil
}

// Assets returns all owned instances.
func (s *State) Assets() []*AssetInstance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*AssetInstance
	for _, list := range s.assets {
		out = append(out, list...)
	}
	return out
}

// Wearing returns the worn jewelry instance ids.
func (s *State) Wearing() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.wearing...)
}

// IsWearing reports whether an instance is in the worn set.
func (s *State) IsWearing(instanceID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.wearing {
		if id == instanceID {
			return true
		}
	}
	return false
}

// Wear adds an instance to the worn set.
func (s *State) Wear(instanceID string) {
	s.mu.Lock()
	s.wearing = append(s.wearing, instanceID)
	s.mu.Unlock()
	s.emit(EventAssetsChanged, "wearing", instanceID)
}

// Unwear removes an instance from the worn set.
func (s *State) Unwear(instanceID string) {
	s.mu.Lock()
	for i, id := range s.wearing {
		if id == instanceID {
			s.wearing = append(s.wearing[:i], s.wearing[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.emit(EventAssetsChanged, "wearing", instanceID)
}

// DropIn returns the active global drop listing for a city.
func (s *State) DropIn(city string) *GlobalDrop {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drops[city]
}

// SetDrop replaces the active drop listing for a city.
func (s *State) SetDrop(city string, d *GlobalDrop) {
	s.mu.Lock()
	if d == nil {
		delete(s.drops, city)
	} else {
		s.drops[city] = d
	}
	s.mu.Unlock()
	s.emit(EventDropChanged, city, d)
}

// TouchDrop emits a change event after in-place drop mutation.
func (s *State) TouchDrop(d *GlobalDrop) {
	s.emit(EventDropChanged, d.City, d.ID)
}

// Drops returns every active listing.
func (s *State) Drops() []*GlobalDrop {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*GlobalDrop, 0, len(s.drops))
	for _, d := range s.drops {
		out = append(out, d)
	}
	return out
}

// AddNotification prepends a notification and trims the list to the cap.
func (s *State) AddNotification(message string, typ NotificationType) Notification {
	s.mu.Lock()
	n := Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Type:      typ,
		Day:       s.player.Day,
		Timestamp: s.clock.Now(),
	}
	s.notifications = append([]Notification{n}, s.notifications...)
	if len(s.notifications) > s.cfg.NotificationCap {
		s.notifications = s.notifications[:s.cfg.NotificationCap]
	}
	s.mu.Unlock()
	s.emit(EventNotificationAdded, string(typ), n)
	return n
}

// Notifications returns a copy of the notification list, newest first.
func (s *State) Notifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Notification(nil), s.notifications...)
}

// MarkNotificationsRead flags every notification as read.
func (s *State) MarkNotificationsRead() {
	s.mu.Lock()
	for i := range s.notifications {
		s.notifications[i].Read = true
	}
	s.mu.Unlock()
}

// RecordCashLoss appends to the rolling punitive-loss ledger.
func (s *State) RecordCashLoss(amount int) {
	s.mu.Lock()
	s.cashLosses = append(s.cashLosses, cashLoss{Amount: amount, At: s.clock.Now()})
	s.mu.Unlock()
}

// CashLostSince sums punitive cash losses in the window ending now.
// Entries older than the window are pruned.
func (s *State) CashLostSince(window time.Duration) int {
	cutoff := s.clock.Now().Add(-window)
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.cashLosses[:0]
	total := 0
	for _, l := range s.cashLosses {
		if l.At.After(cutoff) {
			kept = append(kept, l)
			total += l.Amount
		}
	}
	s.cashLosses = kept
	return total
}

// NetWorth values cash, held drugs at base price, outpost safes and
// asset resale values.
func (s *State) NetWorth() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	worth := s.player.Cash
	for drug, qty := range s.inventory {
		if d, ok := s.data.Drug(drug); ok {
			worth += qty * d.BasePrice
		}
	}
	for _, o := range s.outposts {
		worth += o.CashStored
	}
	for _, list := range s.assets {
		for _, inst := range list {
			worth += inst.ResaleValue
		}
	}
	return worth
}

// Rank returns the player's current rank record.
func (s *State) Rank() config.Rank {
	s.mu.RLock()
	level := s.player.Rank
	s.mu.RUnlock()
	if level < 1 || level > len(s.data.Ranks) {
		return s.data.Ranks[0]
	}
	return s.data.Ranks[level-1]
}

// RecalcRank re-derives rank from net worth. Promotion emits an event
// and a notification; rank never demotes.
func (s *State) RecalcRank() config.Rank {
	worth := s.NetWorth()
	r := s.data.RankFor(worth)

	s.mu.Lock()
	promoted := r.Level > s.player.Rank
	if promoted {
		s.player.Rank = r.Level
	} else {
		r = s.data.Ranks[s.player.Rank-1]
	}
	s.mu.Unlock()

	if promoted {
		s.emit(EventRankChanged, "rank", r.Level)
		s.AddNotification("Word is out. You made "+r.Name+".", NoticeSuccess)
		s.TrackAchievement(CounterRankLevel, r.Level-s.achievementProgress(CounterRankLevel))
	}
	return r
}

func (s *State) achievementProgress(counter string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.achievements.Progress[counter]
}

func cloneCounts(src map[string]int) map[string]int {
	out := make(map[string]int, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
