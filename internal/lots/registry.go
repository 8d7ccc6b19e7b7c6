// Package lots holds the static parking facility registry.
package lots

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"parkingpass/internal/refdata"
	"parkingpass/internal/types"
)

// Source loads the facility registry from a backing store.
type Source interface {
	LoadLots(ctx context.Context) ([]types.ParkingLot, error)
}

// Registry indexes facilities by ID. It is immutable after construction and
// safe for concurrent use.
type Registry struct {
	byID  map[string]*types.ParkingLot
	order []*types.ParkingLot
	dongs map[string]string
}

// NewRegistry builds a registry. When IDs repeat, the later entry replaces
// the earlier one but keeps its position.
func NewRegistry(list []types.ParkingLot) *Registry {
	r := &Registry{
		byID:  make(map[string]*types.ParkingLot, len(list)),
		order: make([]*types.ParkingLot, 0, len(list)),
		dongs: make(map[string]string, len(list)),
	}
	for i := range list {
		lot := list[i]
		if existing, ok := r.byID[lot.ID]; ok {
			*existing = lot
		} else {
			p := &lot
			r.byID[lot.ID] = p
			r.order = append(r.order, p)
		}
		r.dongs[lot.ID] = ExtractDong(lot.Address)
	}
	return r
}

// Load reads the registry from src.
func Load(ctx context.Context, src Source) (*Registry, error) {
	list, err := src.LoadLots(ctx)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalReferenceData, "failed to load parking lots", err)
	}
	return NewRegistry(list), nil
}

// Get returns a copy of the facility with the given ID.
func (r *Registry) Get(id string) (types.ParkingLot, bool) {
	p, ok := r.byID[id]
	if !ok {
		return types.ParkingLot{}, false
	}
	return *p, true
}

// Dong returns the neighborhood derived from the facility's address.
func (r *Registry) Dong(id string) string {
	return r.dongs[id]
}

// Len returns the number of facilities.
func (r *Registry) Len() int {
	return len(r.order)
}

// List returns all facilities in load order.
func (r *Registry) List() []types.ParkingLot {
	out := make([]types.ParkingLot, len(r.order))
	for i, p := range r.order {
		out[i] = *p
	}
	return out
}

// Located returns the facilities that carry coordinates, in load order.
func (r *Registry) Located() []types.ParkingLot {
	out := make([]types.ParkingLot, 0, len(r.order))
	for _, p := range r.order {
		if p.HasCoordinates() {
			out = append(out, *p)
		}
	}
	return out
}

// FileSource reads the registry from a JSON or .json.zst file. A missing file
// is not an error; the registry is then empty and every facility scores
// neutral.
type FileSource struct {
	Path string
}

// LoadLots implements Source.
func (s FileSource) LoadLots(_ context.Context) ([]types.ParkingLot, error) {
	var list []types.ParkingLot
	if err := refdata.ReadJSON(s.Path, &list); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("parking lots: %w", err)
	}
	return list, nil
}
