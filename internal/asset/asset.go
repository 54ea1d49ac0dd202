// Package asset handles flex-value collectibles: jewelry, cars and
// properties, their capacity rules, and the globally scarce drop
// listings shared across the world state.
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
	ErrUnknownAsset      = errors.New("unknown asset")
	ErrInsufficientFunds = errors.New("not enough cash")
	ErrCapacityExhausted = errors.New("no room for another one")
	ErrNotOwned          = errors.New("you do not own that")
	ErrNotJewelry        = errors.New("only jewelry can be worn")
	ErrAlreadyWorn       = errors.New("already wearing it")
	ErrNotWorn           = errors.New("not currently worn")
)

type System struct {
	state *game.State
	rng   game.Rand
}

func New(state *game.State, rng game.Rand) *System {
	return &System{state: state, rng: rng}
}

// JewelryCapacity is the wearable cap: the best owned property's
// declared capacity, or the pocket baseline without one. Maximum, not
// sum, across properties.
func (a *System) JewelryCapacity() int {
	capacity := a.state.Config().BaseJewelryCapacity
	for _, inst := range a.state.Assets() {
		if inst.Kind != config.AssetProperty {
			continue
		}
		if spec, ok := a.state.Data().Asset(inst.TemplateID); ok && spec.JewelryCapacity > capacity {
			capacity = spec.JewelryCapacity
		}
	}
	return capacity
}

// CarCapacity is the garage cap, derived the same way.
func (a *System) CarCapacity() int {
	capacity := a.state.Config().BaseCarCapacity
	for _, inst := range a.state.Assets() {
		if inst.Kind != config.AssetProperty {
			continue
		}
		if spec, ok := a.state.Data().Asset(inst.TemplateID); ok && spec.CarCapacity > capacity {
			capacity = spec.CarCapacity
		}
	}
	return capacity
}

func (a *System) countKind(kind config.AssetKind) int {
	n := 0
	for _, inst := range a.state.Assets() {
		if inst.Kind == kind {
			n++
		}
	}
	return n
}

// bestProperty returns the owned property with the highest capacity
// for the given kind, if any.
func (a *System) bestProperty(kind config.AssetKind) *game.AssetInstance {
	var best *game.AssetInstance
	bestCap := 0
	for _, inst := range a.state.Assets() {
		if inst.Kind != config.AssetProperty {
			continue
		}
		spec, ok := a.state.Data().Asset(inst.TemplateID)
		if !ok {
			continue
		}
		c := spec.JewelryCapacity
		if kind == config.AssetCar {
			c = spec.CarCapacity
		}
		if c > bestCap {
			bestCap = c
			best = inst
		}
	}
	return best
}

// Purchase buys one instance of an asset template at list price.
// Jewelry and cars are capacity-gated; properties are not.
func (a *System) Purchase(assetID string) (*game.AssetInstance, error) {
	spec, ok := a.state.Data().Asset(assetID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAsset, assetID)
	}
	return a.purchaseAt(spec, spec.Cost)
}

func (a *System) purchaseAt(spec config.AssetSpec, price int) (*game.AssetInstance, error) {
	cfg := a.state.Config()
	switch spec.Kind {
	case config.AssetJewelry:
		if a.countKind(config.AssetJewelry) >= a.JewelryCapacity() {
			return nil, fmt.Errorf("%w: jewelry capped at %d", ErrCapacityExhausted, a.JewelryCapacity())
		}
	case config.AssetCar:
		if a.countKind(config.AssetCar) >= a.CarCapacity() {
			return nil, fmt.Errorf("%w: garage holds %d", ErrCapacityExhausted, a.CarCapacity())
		}
	}
	if price > a.state.Cash() {
		return nil, fmt.Errorf("%w: need $%d", ErrInsufficientFunds, price)
	}

	inst := &game.AssetInstance{
		InstanceID:    uuid.NewString(),
		TemplateID:    spec.ID,
		Kind:          spec.Kind,
		Cost:          price,
		ResaleValue:   int(math.Round(float64(price) * cfg.DefaultResaleFactor)),
		FlexScore:     spec.FlexScore,
		CityPurchased: a.state.Player().CurrentCity,
	}
	// Overflow past the pocket/driveway baseline lives at the best
	// owned property.
	if spec.Kind == config.AssetJewelry && a.countKind(config.AssetJewelry) >= cfg.BaseJewelryCapacity {
		if p := a.bestProperty(config.AssetJewelry); p != nil {
			inst.StoragePropertyID = p.InstanceID
		}
	}
	if spec.Kind == config.AssetCar && a.countKind(config.AssetCar) >= cfg.BaseCarCapacity {
		if p := a.bestProperty(config.AssetCar); p != nil {
			inst.StoragePropertyID = p.InstanceID
		}
	}

	a.state.UpdateCash(-price)
	a.state.AddAsset(inst)
	a.state.TrackAchievement(game.CounterAssetsOwned, 1)
	a.state.AddNotification(fmt.Sprintf("Copped a %s for $%d", spec.Name, price), game.NoticeSuccess)
	return inst, nil
}

// Sell liquidates an owned instance at its precomputed resale value.
// Worn jewelry comes off first.
func (a *System) Sell(instanceID string) (int, error) {
	inst := a.state.FindAsset(instanceID)
	if inst == nil {
		return 0, fmt.Errorf("%w: %s", ErrNotOwned, instanceID)
	}
	if a.state.IsWearing(instanceID) {
		a.state.Unwear(instanceID)
	}
	a.state.RemoveAsset(instanceID)
	a.state.UpdateCash(inst.ResaleValue)
	a.state.AddNotification(fmt.Sprintf("Flipped an asset for $%d", inst.ResaleValue), game.NoticeInfo)
	return inst.ResaleValue, nil
}

// WearJewelry adds owned jewelry to the worn set, bounded by the
// wearable cap.
func (a *System) WearJewelry(instanceID string) error {
	inst := a.state.FindAsset(instanceID)
	if inst == nil {
		return fmt.Errorf("%w: %s", ErrNotOwned, instanceID)
	}
	if inst.Kind != config.AssetJewelry {
		return ErrNotJewelry
	}
	if a.state.IsWearing(instanceID) {
		return ErrAlreadyWorn
	}
	if len(a.state.Wearing()) >= a.JewelryCapacity() {
		return fmt.Errorf("%w: wearing %d already", ErrCapacityExhausted, len(a.state.Wearing()))
	}
	a.state.Wear(instanceID)
	return nil
}

// RemoveJewelry takes a worn piece off.
func (a *System) RemoveJewelry(instanceID string) error {
	if !a.state.IsWearing(instanceID) {
		return ErrNotWorn
	}
	a.state.Unwear(instanceID)
	return nil
}

// FlexScore sums every owned asset's score; worn pieces count double.
func (a *System) FlexScore() int {
	total := 0
	for _, inst := range a.state.Assets() {
		total += inst.FlexScore
		if a.state.IsWearing(inst.InstanceID) {
			total += inst.FlexScore
		}
	}
	return total
}
