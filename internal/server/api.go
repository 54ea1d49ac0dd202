// Package server exposes the whole action surface as a JSON API plus
// a websocket event stream for the UI layer.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/sirsapient/slang-bang-react-sub000/internal/engine"
	"github.com/sirsapient/slang-bang-react-sub000/internal/game"
	"github.com/sirsapient/slang-bang-react-sub000/internal/market"
	"github.com/sirsapient/slang-bang-react-sub000/internal/outpost"
	"github.com/sirsapient/slang-bang-react-sub000/internal/raid"
	"github.com/sirsapient/slang-bang-react-sub000/internal/save"
)

// App holds what the handlers depend on.
type App struct {
	Engine *engine.Engine
	Hub    *Hub
	Stats  *SessionStats
}

// SessionStats counts events observed since boot, keyed by event name.
type SessionStats struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewSessionStats() *SessionStats {
	return &SessionStats{counts: make(map[string]int)}
}

// Bind subscribes the counter to a state store. Returns the
// unsubscribe handle.
func (st *SessionStats) Bind(s *game.State) func() {
	return s.Subscribe(func(ev game.Event) {
		st.mu.Lock()
		st.counts[ev.Name]++
		st.mu.Unlock()
	})
}

func (st *SessionStats) Counts() map[string]int {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make(map[string]int, len(st.counts))
	for k, v := range st.counts {
		out[k] = v
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ok wraps a payload in the success envelope the UI consumes.
func ok(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": v})
}

// fail maps domain errors onto the failure envelope. Validation
// failures are results, not server faults, so everything lands on 400
// except missing entities.
func fail(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, save.ErrNoSave),
		errors.Is(err, raid.ErrTargetNotFound),
		errors.Is(err, raid.ErrUnknownCity),
		errors.Is(err, market.ErrUnknownCity),
		errors.Is(err, market.ErrUnknownDrug),
		errors.Is(err, outpost.ErrNoOutpost),
		errors.Is(err, engine.ErrUnknownCity):
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]any{"success": false, "error": err.Error()})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid json body"})
		return false
	}
	return true
}

func RegisterAPIRoutes(mux *http.ServeMux, rr *RouteRegistry, app *App) {
	e := app.Engine
	s := e.State()

	// Reads.

	rr.Handle(mux, "GET /api/state", "Full game snapshot", "", func(w http.ResponseWriter, r *http.Request) {
		ok(w, s.Snapshot())
	})

	rr.Handle(mux, "GET /api/player", "Player summary", "", func(w http.ResponseWriter, r *http.Request) {
		ok(w, map[string]any{
			"player":   s.Player(),
			"heat":     e.HeatLevel(),
			"netWorth": s.NetWorth(),
			"rank":     s.Rank(),
			"flex":     e.FlexScore(),
		})
	})

	rr.Handle(mux, "GET /api/market", "Prices and supply in the current city", "", func(w http.ResponseWriter, r *http.Request) {
		city := r.URL.Query().Get("city")
		if city == "" {
			city = s.Player().CurrentCity
		}
		ok(w, map[string]any{
			"city":   city,
			"prices": s.CityPrices(city),
			"supply": s.CitySupply(city),
		})
	})

	rr.Handle(mux, "GET /api/outposts", "Owned outposts", "", func(w http.ResponseWriter, r *http.Request) {
		ok(w, s.Outposts())
	})

	rr.Handle(mux, "GET /api/raids/targets", "Raid targets in a city", "", func(w http.ResponseWriter, r *http.Request) {
		city := r.URL.Query().Get("city")
		if city == "" {
			city = s.Player().CurrentCity
		}
		targets, err := e.RaidTargets(city)
		if err != nil {
			fail(w, err)
			return
		}
		ok(w, targets)
	})

	rr.Handle(mux, "GET /api/assets", "Catalog plus owned assets", "", func(w http.ResponseWriter, r *http.Request) {
		ok(w, map[string]any{
			"catalog": s.Data().Assets,
			"owned":   s.Assets(),
			"wearing": s.Wearing(),
			"flex":    e.FlexScore(),
		})
	})

	rr.Handle(mux, "GET /api/drops", "Active drop listings", "", func(w http.ResponseWriter, r *http.Request) {
		ok(w, s.Drops())
	})

	rr.Handle(mux, "GET /api/notifications", "Notification feed", "", func(w http.ResponseWriter, r *http.Request) {
		ok(w, s.Notifications())
	})

	rr.Handle(mux, "POST /api/notifications/read", "Mark all notifications read", "", func(w http.ResponseWriter, r *http.Request) {
		s.MarkNotificationsRead()
		ok(w, nil)
	})

	rr.Handle(mux, "GET /api/achievements", "Unlocks and counters", "", func(w http.ResponseWriter, r *http.Request) {
		ok(w, s.AchievementsState())
	})

	rr.Handle(mux, "GET /api/heat", "Heat level and bribe quote", "", func(w http.ResponseWriter, r *http.Request) {
		ok(w, map[string]any{
			"heat":      e.HeatLevel(),
			"warrant":   s.Warrant(),
			"bribeCost": e.BribeCost(),
		})
	})

	rr.Handle(mux, "GET /api/stats", "Session event counters", "", func(w http.ResponseWriter, r *http.Request) {
		if app.Stats == nil {
			ok(w, map[string]int{})
			return
		}
		ok(w, app.Stats.Counts())
	})

	rr.Handle(mux, "GET /api/routes", "List API routes", "", func(w http.ResponseWriter, r *http.Request) {
		ok(w, rr.List())
	})

	// Trading.

	rr.Handle(mux, "POST /api/market/buy", "Buy drugs", `{"drug":"Weed","qty":5}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Drug string `json:"drug"`
			Qty  int    `json:"qty"`
		}
		if !decode(w, r, &body) {
			return
		}
		if err := e.BuyDrug(body.Drug, body.Qty); err != nil {
			fail(w, err)
			return
		}
		ok(w, s.Inventory())
	})

	rr.Handle(mux, "POST /api/market/sell", "Sell drugs", `{"drug":"Weed","qty":5}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Drug string `json:"drug"`
			Qty  int    `json:"qty"`
		}
		if !decode(w, r, &body) {
			return
		}
		if err := e.SellDrug(body.Drug, body.Qty); err != nil {
			fail(w, err)
			return
		}
		ok(w, s.Inventory())
	})

	rr.Handle(mux, "POST /api/market/sell-all", "Liquidate the whole inventory", "", func(w http.ResponseWriter, r *http.Request) {
		ok(w, e.SellAllDrugs())
	})

	rr.Handle(mux, "POST /api/travel", "Travel to another city", `{"city":"Miami"}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			City string `json:"city"`
		}
		if !decode(w, r, &body) {
			return
		}
		res, err := e.TravelTo(body.City)
		if err != nil {
			fail(w, err)
			return
		}
		ok(w, res)
	})

	// Crew.

	rr.Handle(mux, "POST /api/crew/recruit", "Recruit gang members", `{"qty":2}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Qty int `json:"qty"`
		}
		if !decode(w, r, &body) {
			return
		}
		if err := e.RecruitGang(body.Qty); err != nil {
			fail(w, err)
			return
		}
		ok(w, s.Player())
	})

	rr.Handle(mux, "POST /api/crew/guns", "Buy guns", `{"qty":2}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Qty int `json:"qty"`
		}
		if !decode(w, r, &body) {
			return
		}
		if err := e.BuyGuns(body.Qty); err != nil {
			fail(w, err)
			return
		}
		ok(w, s.Player())
	})

	// Heat.

	rr.Handle(mux, "POST /api/heat/bribe", "Pay down the warrant", "", func(w http.ResponseWriter, r *http.Request) {
		res, err := e.Bribe()
		if err != nil {
			fail(w, err)
			return
		}
		ok(w, res)
	})

	// Outposts.

	rr.Handle(mux, "POST /api/outposts/purchase", "Buy an outpost", `{"city":"Miami"}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			City string `json:"city"`
		}
		if !decode(w, r, &body) {
			return
		}
		o, err := e.PurchaseOutpost(body.City)
		if err != nil {
			fail(w, err)
			return
		}
		ok(w, o)
	})

	rr.Handle(mux, "POST /api/outposts/upgrade", "Upgrade an outpost", `{"city":"Miami"}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			City string `json:"city"`
		}
		if !decode(w, r, &body) {
			return
		}
		o, err := e.UpgradeOutpost(body.City)
		if err != nil {
			fail(w, err)
			return
		}
		ok(w, o)
	})

	rr.Handle(mux, "POST /api/outposts/assign-gang", "Move gang in or out", `{"city":"Miami","amount":2}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			City   string `json:"city"`
			Amount int    `json:"amount"`
		}
		if !decode(w, r, &body) {
			return
		}
		if err := e.AssignGang(body.City, body.Amount); err != nil {
			fail(w, err)
			return
		}
		ok(w, s.OutpostIn(body.City))
	})

	rr.Handle(mux, "POST /api/outposts/assign-guns", "Move guns in or out", `{"city":"Miami","amount":2}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			City   string `json:"city"`
			Amount int    `json:"amount"`
		}
		if !decode(w, r, &body) {
			return
		}
		if err := e.AssignGuns(body.City, body.Amount); err != nil {
			fail(w, err)
			return
		}
		ok(w, s.OutpostIn(body.City))
	})

	rr.Handle(mux, "POST /api/outposts/store", "Stock drugs at an outpost", `{"city":"Miami","drug":"Weed","amount":5}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			City   string `json:"city"`
			Drug   string `json:"drug"`
			Amount int    `json:"amount"`
		}
		if !decode(w, r, &body) {
			return
		}
		if err := e.StoreDrugs(body.City, body.Drug, body.Amount); err != nil {
			fail(w, err)
			return
		}
		ok(w, s.OutpostIn(body.City))
	})

	rr.Handle(mux, "POST /api/outposts/take", "Take drugs back out", `{"city":"Miami","drug":"Weed","amount":5}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			City   string `json:"city"`
			Drug   string `json:"drug"`
			Amount int    `json:"amount"`
		}
		if !decode(w, r, &body) {
			return
		}
		if err := e.TakeDrugs(body.City, body.Drug, body.Amount); err != nil {
			fail(w, err)
			return
		}
		ok(w, s.OutpostIn(body.City))
	})

	rr.Handle(mux, "POST /api/outposts/collect", "Empty one outpost safe", `{"city":"Miami"}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			City string `json:"city"`
		}
		if !decode(w, r, &body) {
			return
		}
		amount, err := e.CollectIncome(body.City)
		if err != nil {
			fail(w, err)
			return
		}
		ok(w, map[string]int{"collected": amount})
	})

	rr.Handle(mux, "POST /api/outposts/collect-all", "Empty every safe", "", func(w http.ResponseWriter, r *http.Request) {
		ok(w, map[string]int{"collected": e.CollectAllIncome()})
	})

	// Raids.

	rr.Handle(mux, "POST /api/raids/execute", "Raid a rival outpost", `{"targetId":"...","gangSize":5}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			TargetID string `json:"targetId"`
			GangSize int    `json:"gangSize"`
		}
		if !decode(w, r, &body) {
			return
		}
		res, err := e.ExecuteRaid(body.TargetID, body.GangSize)
		if err != nil {
			fail(w, err)
			return
		}
		ok(w, res)
	})

	// Assets.

	rr.Handle(mux, "POST /api/assets/purchase", "Buy an asset at list price", `{"assetId":"chain_gold"}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			AssetID string `json:"assetId"`
		}
		if !decode(w, r, &body) {
			return
		}
		inst, err := e.PurchaseAsset(body.AssetID)
		if err != nil {
			fail(w, err)
			return
		}
		ok(w, inst)
	})

	rr.Handle(mux, "POST /api/assets/sell", "Sell an owned asset", `{"instanceId":"..."}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			InstanceID string `json:"instanceId"`
		}
		if !decode(w, r, &body) {
			return
		}
		value, err := e.SellAsset(body.InstanceID)
		if err != nil {
			fail(w, err)
			return
		}
		ok(w, map[string]int{"value": value})
	})

	rr.Handle(mux, "POST /api/assets/wear", "Wear jewelry", `{"instanceId":"..."}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			InstanceID string `json:"instanceId"`
		}
		if !decode(w, r, &body) {
			return
		}
		if err := e.WearJewelry(body.InstanceID); err != nil {
			fail(w, err)
			return
		}
		ok(w, s.Wearing())
	})

	rr.Handle(mux, "POST /api/assets/remove", "Take jewelry off", `{"instanceId":"..."}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			InstanceID string `json:"instanceId"`
		}
		if !decode(w, r, &body) {
			return
		}
		if err := e.RemoveJewelry(body.InstanceID); err != nil {
			fail(w, err)
			return
		}
		ok(w, s.Wearing())
	})

	rr.Handle(mux, "POST /api/drops/purchase", "Buy from a drop listing", `{"city":"Miami"}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			City string `json:"city"`
		}
		if !decode(w, r, &body) {
			return
		}
		inst, err := e.PurchaseDrop(body.City)
		if err != nil {
			fail(w, err)
			return
		}
		ok(w, inst)
	})

	// Simulation control and persistence.

	rr.Handle(mux, "POST /api/day/end", "Advance the simulation one day", "", func(w http.ResponseWriter, r *http.Request) {
		ok(w, e.DayTick())
	})

	rr.Handle(mux, "POST /api/save", "Save to a slot", `{"slot":"slot1"}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Slot string `json:"slot"`
		}
		if !decode(w, r, &body) {
			return
		}
		if err := e.SaveGame(r.Context(), body.Slot); err != nil {
			fail(w, err)
			return
		}
		ok(w, nil)
	})

	rr.Handle(mux, "POST /api/load", "Load a slot", `{"slot":"slot1"}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Slot string `json:"slot"`
		}
		if !decode(w, r, &body) {
			return
		}
		if err := e.LoadGame(r.Context(), body.Slot); err != nil {
			fail(w, err)
			return
		}
		ok(w, s.Snapshot())
	})

	if app.Hub != nil {
		rr.Handle(mux, "GET /ws", "Websocket event stream", "", app.Hub.ServeWs)
	}
}
