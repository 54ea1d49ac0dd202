package game

import "sync"

// Event names emitted by the state store. Every mutation emits the
// generic EventStateChange plus one specific event.
const (
	EventStateChange         = "stateChange"
	EventCashChanged         = "cashChanged"
	EventInventoryChanged    = "inventoryChanged"
	EventWarrantChanged      = "warrantChanged"
	EventGangChanged         = "gangChanged"
	EventGunsChanged         = "gunsChanged"
	EventCityChanged         = "cityChanged"
	EventDayChanged          = "dayChanged"
	EventRankChanged         = "rankChanged"
	EventOutpostChanged      = "outpostChanged"
	EventMarketChanged       = "marketChanged"
	EventAssetsChanged       = "assetsChanged"
	EventDropChanged         = "dropChanged"
	EventNotificationAdded   = "notificationAdded"
	EventAchievementUnlocked = "achievementUnlocked"
)

// Event is a change notification for subscribers (the UI layer).
type Event struct {
	Name  string `json:"name"`
	Key   string `json:"key"`
	Value any    `json:"value,omitempty"`
}

// Subscriber receives events synchronously, in mutation order.
type Subscriber func(Event)

type emitter struct {
	mu   sync.Mutex
	next int
	subs map[int]Subscriber
}

// Subscribe registers fn for all future events and returns an
// unsubscribe function.
func (e *emitter) Subscribe(fn Subscriber) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.subs == nil {
		e.subs = make(map[int]Subscriber)
	}
	id := e.next
	e.next++
	e.subs[id] = fn
	return func() {
		e.mu.Lock()
		delete(e.subs, id)
		e.mu.Unlock()
	}
}

// emit dispatches the specific event plus the generic stateChange.
func (e *emitter) emit(name, key string, value any) {
	e.mu.Lock()
	subs := make([]Subscriber, 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	e.mu.Unlock()

	ev := Event{Name: name, Key: key, Value: value}
	for _, fn := range subs {
		fn(ev)
		if name != EventStateChange {
			fn(Event{Name: EventStateChange, Key: key, Value: value})
		}
	}
}
