// Package layer keeps the authored sector layers in memory, hit-tests them for
// the context menu and exports them as GeoJSON.
package layer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/UnknownOlympus/shooter/internal/geometry"
	"github.com/UnknownOlympus/shooter/internal/models"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

var (
	// ErrUnknownLayer is returned for layer names other than the tool layers.
	ErrUnknownLayer = errors.New("unknown layer")
	// ErrUnknownFeature is returned when an id is not present in any layer.
	ErrUnknownFeature = errors.New("unknown feature")
)

// Persister stores features outside the process. The repository implements it.
type Persister interface {
	Insert(ctx context.Context, layer string, ring geometry.Ring, attrs models.SectorAttributes) (int64, error)
	Update(ctx context.Context, id int64, ring geometry.Ring, delta models.AttributeDelta) error
	Remove(ctx context.Context, id int64) error
	List(ctx context.Context, layer string) ([]models.Feature, error)
}

// Store holds the sector and site layers. Features are kept in insertion
// order, so the last one drawn is the topmost. It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	log       *slog.Logger
	persister Persister
	layers    map[string][]models.Feature
	nextID    int64
}

// NewStore creates an empty store. persister may be nil for a purely
// in-memory session.
func NewStore(log *slog.Logger, persister Persister) *Store {
	layers := make(map[string][]models.Feature, len(models.ResolveOrder))
	for _, name := range models.ResolveOrder {
		layers[name] = nil
	}

	return &Store{log: log, persister: persister, layers: layers}
}

// Layers returns the layer names in hit-test priority.
func (s *Store) Layers() []string {
	return slices.Clone(models.ResolveOrder)
}

// Load replaces the in-memory layers with the persisted features.
func (s *Store) Load(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}

	loaded := make(map[string][]models.Feature, len(models.ResolveOrder))
	for _, name := range models.ResolveOrder {
		features, err := s.persister.List(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to load layer %s: %w", name, err)
		}
		loaded[name] = features
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.layers = loaded
	for _, features := range loaded {
		for _, f := range features {
			s.nextID = max(s.nextID, f.ID)
		}
	}
	s.log.InfoContext(ctx, "Layers loaded",
		"sectors", len(loaded[models.LayerSector]), "sites", len(loaded[models.LayerSite]))

	return nil
}

// Insert adds a feature to a layer and returns its id.
func (s *Store) Insert(
	ctx context.Context,
	layer string,
	ring geometry.Ring,
	attrs models.SectorAttributes,
) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.layers[layer]; !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownLayer, layer)
	}

	var id int64
	if s.persister != nil {
		var err error
		if id, err = s.persister.Insert(ctx, layer, ring, attrs); err != nil {
			return 0, err
		}
		s.nextID = max(s.nextID, id)
	} else {
		s.nextID++
		id = s.nextID
	}

	s.layers[layer] = append(s.layers[layer], models.Feature{
		ID:         id,
		Layer:      layer,
		Geometry:   slices.Clone(ring),
		Attributes: attrs,
	})

	return id, nil
}

// Update replaces the geometry when ring is not nil and applies delta.
func (s *Store) Update(ctx context.Context, id int64, ring geometry.Ring, delta models.AttributeDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	layer, idx, ok := s.locate(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownFeature, id)
	}
	if s.persister != nil {
		if err := s.persister.Update(ctx, id, ring, delta); err != nil {
			return err
		}
	}

	feature := &s.layers[layer][idx]
	if ring != nil {
		feature.Geometry = slices.Clone(ring)
	}
	feature.Attributes = delta.Apply(feature.Attributes)

	return nil
}

// Remove deletes a feature.
func (s *Store) Remove(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	layer, idx, ok := s.locate(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownFeature, id)
	}
	if s.persister != nil {
		if err := s.persister.Remove(ctx, id); err != nil {
			return err
		}
	}
	s.layers[layer] = slices.Delete(s.layers[layer], idx, idx+1)

	return nil
}

// Resolve returns the topmost feature containing the point, searching the
// site layer before the sector layer.
func (s *Store) Resolve(_ context.Context, at geometry.Point) (models.Feature, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pt := at.Orb()
	for _, name := range models.ResolveOrder {
		features := s.layers[name]
		for i := len(features) - 1; i >= 0; i-- {
			if planar.RingContains(features[i].Geometry.Orb(), pt) {
				return cloneFeature(features[i]), true, nil
			}
		}
	}

	return models.Feature{}, false, nil
}

// Feature returns a feature by id.
func (s *Store) Feature(id int64) (models.Feature, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	layer, idx, ok := s.locate(id)
	if !ok {
		return models.Feature{}, false
	}

	return cloneFeature(s.layers[layer][idx]), true
}

// Features returns a copy of a layer in drawing order.
func (s *Store) Features(layer string) ([]models.Feature, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	features, ok := s.layers[layer]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLayer, layer)
	}

	out := make([]models.Feature, 0, len(features))
	for _, f := range features {
		out = append(out, cloneFeature(f))
	}

	return out, nil
}

// FeatureCollection renders a layer as GeoJSON polygons carrying the
// attribute fields as properties.
func (s *Store) FeatureCollection(layer string) (*geojson.FeatureCollection, error) {
	features, err := s.Features(layer)
	if err != nil {
		return nil, err
	}

	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		gf := geojson.NewFeature(orb.Polygon{f.Geometry.Orb()})
		gf.ID = f.ID
		gf.Properties = geojson.Properties(f.Attributes.Properties())
		fc.Append(gf)
	}

	return fc, nil
}

// GeoJSON marshals a layer as a GeoJSON FeatureCollection.
func (s *Store) GeoJSON(layer string) ([]byte, error) {
	fc, err := s.FeatureCollection(layer)
	if err != nil {
		return nil, err
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal layer %s: %w", layer, err)
	}

	return data, nil
}

// locate must be called with the lock held.
func (s *Store) locate(id int64) (string, int, bool) {
	for name, features := range s.layers {
		for idx, f := range features {
			if f.ID == id {
				return name, idx, true
			}
		}
	}

	return "", 0, false
}

func cloneFeature(f models.Feature) models.Feature {
	f.Geometry = slices.Clone(f.Geometry)
	return f
}
