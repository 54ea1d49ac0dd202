package asset

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/sirsapient/slang-bang-react-sub000/internal/config"
	"github.com/sirsapient/slang-bang-react-sub000/internal/game"
)

var (
	ErrNoActiveDrop = errors.New("no active drop here")
	ErrDropExpired  = errors.New("the drop has expired")
	ErrDropSoldOut  = errors.New("the drop is sold out")
)

// DropPrice computes the current unit price of a listing: the base
// price surges as remaining supply falls.
func (a *System) DropPrice(d *game.GlobalDrop) int {
	cfg := a.state.Config()
	scarcity := 1 - float64(d.Remaining)/float64(d.TotalSupply)
	return int(math.Round(float64(d.BasePrice) * (1 + cfg.DropSurgeFactor*scarcity)))
}

// EnsureDrops keeps exactly one live listing per city, regenerating
// any that expired or sold out.
func (a *System) EnsureDrops() {
	now := a.state.Clock().Now()
	for _, c := range a.state.Data().Cities {
		d := a.state.DropIn(c.Name)
		if d != nil && d.Remaining > 0 && now.Before(d.ExpiresAt) {
			continue
		}
		a.regenerateDrop(c.Name)
	}
}

func (a *System) regenerateDrop(city string) *game.GlobalDrop {
	eligible := make([]config.AssetSpec, 0)
	for _, spec := range a.state.Data().Assets {
		if spec.DropEligible {
			eligible = append(eligible, spec)
		}
	}
	if len(eligible) == 0 {
		return nil
	}
	cfg := a.state.Config()
	spec := eligible[a.rng.Intn(len(eligible))]
	now := a.state.Clock().Now()
	supply := game.IntBetween(a.rng, spec.DropSupplyMin, spec.DropSupplyMax)
	d := &game.GlobalDrop{
		ID:          uuid.NewString(),
		City:        city,
		TemplateID:  spec.ID,
		TotalSupply: supply,
		Remaining:   supply,
		BasePrice:   spec.Cost,
		CreatedAt:   now,
		ExpiresAt:   now.Add(cfg.DropTTL),
	}
	a.state.SetDrop(city, d)
	return d
}

// PurchaseDrop buys one unit from a city's active listing at the
// current surge price. Selling out regenerates the listing.
func (a *System) PurchaseDrop(city string) (*game.AssetInstance, error) {
	d := a.state.DropIn(city)
	if d == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoActiveDrop, city)
	}
	now := a.state.Clock().Now()
	if !now.Before(d.ExpiresAt) {
		return nil, fmt.Errorf("%w: %s", ErrDropExpired, city)
	}
	if d.Remaining <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrDropSoldOut, city)
	}
	spec, ok := a.state.Data().Asset(d.TemplateID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAsset, d.TemplateID)
	}

	price := a.DropPrice(d)
	inst, err := a.purchaseAt(spec, price)
	if err != nil {
		return nil, err
	}

	d.Remaining--
	d.Purchases = append(d.Purchases, game.DropPurchase{
		InstanceID: inst.InstanceID,
		Price:      price,
		At:         now,
	})
	a.state.TouchDrop(d)
	if d.Remaining == 0 {
		a.regenerateDrop(city)
	}
	return inst, nil
}
