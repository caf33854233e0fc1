package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shaunharker/conley-morse-database/internal/atlas"
	"github.com/shaunharker/conley-morse-database/internal/model"
)

// ListAtlases returns stored atlases ordered by seq ASC, id ASC COLLATE BINARY.
// A non-empty modelHash restricts the list to that model.
//
// Returns an empty slice (not nil) if nothing is stored.
func (s *Store) ListAtlases(ctx context.Context, modelHash string) ([]AtlasRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.model_hash, m.name, a.dimension, a.region_count,
		       a.ordering, a.generator_version, a.seq
		FROM atlases a
		JOIN models m ON m.hash = a.model_hash
		WHERE ? = '' OR a.model_hash = ?
		ORDER BY a.seq ASC, a.id COLLATE BINARY ASC
	`, modelHash, modelHash)
	if err != nil {
		return nil, fmt.Errorf("query atlases: %w", err)
	}
	defer rows.Close()

	records := []AtlasRecord{}
	for rows.Next() {
		var rec AtlasRecord
		if err := rows.Scan(&rec.ID, &rec.ModelHash, &rec.ModelName, &rec.Dimension,
			&rec.RegionCount, &rec.Ordering, &rec.GeneratorVersion, &rec.Seq); err != nil {
			return nil, fmt.Errorf("scan atlas: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate atlases: %w", err)
	}
	return records, nil
}

// ReadAtlas loads a stored atlas. Partitions are rebuilt from the stored
// thresholds and upper bounds.
func (s *Store) ReadAtlas(ctx context.Context, id string) (*atlas.Atlas, AtlasRecord, error) {
	var (
		rec                                 AtlasRecord
		names, lower, upper, dLower, dUpper string
		thresholdsJSON                      string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.model_hash, m.name, a.dimension, a.region_count,
		       a.ordering, a.generator_version, a.seq,
		       a.names, a.lower_bounds, a.upper_bounds, a.decay_lower, a.decay_upper, a.thresholds
		FROM atlases a
		JOIN models m ON m.hash = a.model_hash
		WHERE a.id = ?
	`, id).Scan(&rec.ID, &rec.ModelHash, &rec.ModelName, &rec.Dimension, &rec.RegionCount,
		&rec.Ordering, &rec.GeneratorVersion, &rec.Seq,
		&names, &lower, &upper, &dLower, &dUpper, &thresholdsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, AtlasRecord{}, fmt.Errorf("read atlas %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, AtlasRecord{}, fmt.Errorf("read atlas %s: %w", id, err)
	}

	a := &atlas.Atlas{}
	var thresholds [][]float64
	if err := decodeAll(
		column{names, &a.Names},
		column{lower, &a.Lower},
		column{upper, &a.Upper},
		column{dLower, &a.DecayLower},
		column{dUpper, &a.DecayUpper},
		column{thresholdsJSON, &thresholds},
	); err != nil {
		return nil, AtlasRecord{}, fmt.Errorf("read atlas %s: %w", id, err)
	}

	if a.Ordering, err = atlas.ParseOrdering(rec.Ordering); err != nil {
		return nil, AtlasRecord{}, fmt.Errorf("read atlas %s: %w", id, err)
	}
	if len(thresholds) != len(a.Upper) {
		return nil, AtlasRecord{}, fmt.Errorf("read atlas %s: %d threshold lists for %d variables", id, len(thresholds), len(a.Upper))
	}
	a.Partitions = make([]atlas.Partition, len(thresholds))
	for j, th := range thresholds {
		if a.Partitions[j], err = atlas.NewPartition(th, a.Upper[j]); err != nil {
			return nil, AtlasRecord{}, fmt.Errorf("read atlas %s: partition %d: %w", id, j, err)
		}
	}

	if a.Regions, err = s.readBoxes(ctx, id, rec.RegionCount); err != nil {
		return nil, AtlasRecord{}, err
	}
	return a, rec, nil
}

// readBoxes returns the regions of an atlas in product-index order.
func (s *Store) readBoxes(ctx context.Context, id string, count int) ([]atlas.Region, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, lower, upper, sigma_lower, sigma_upper
		FROM boxes
		WHERE atlas_id = ?
		ORDER BY idx ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query boxes: %w", err)
	}
	defer rows.Close()

	regions := make([]atlas.Region, 0, count)
	for rows.Next() {
		var (
			idx                 int
			lo, hi, sLo, sHi    string
			lower, upper        []float64
			sigmaLower, sigmaHi []float64
		)
		if err := rows.Scan(&idx, &lo, &hi, &sLo, &sHi); err != nil {
			return nil, fmt.Errorf("scan box: %w", err)
		}
		if err := decodeAll(
			column{lo, &lower},
			column{hi, &upper},
			column{sLo, &sigmaLower},
			column{sHi, &sigmaHi},
		); err != nil {
			return nil, fmt.Errorf("box %d: %w", idx, err)
		}
		if len(upper) != len(lower) || len(sigmaLower) != len(lower) || len(sigmaHi) != len(lower) {
			return nil, fmt.Errorf("box %d: vectors disagree on dimension", idx)
		}

		region := atlas.Region{
			Index:  idx,
			Bounds: make(atlas.Box, len(lower)),
			Sigma:  make([]atlas.Interval, len(lower)),
		}
		for i := range lower {
			region.Bounds[i] = atlas.Interval{Lo: lower[i], Hi: upper[i]}
			region.Sigma[i] = atlas.Interval{Lo: sigmaLower[i], Hi: sigmaHi[i]}
		}
		regions = append(regions, region)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate boxes: %w", err)
	}
	if len(regions) != count {
		return nil, fmt.Errorf("atlas %s: found %d boxes, want %d", id, len(regions), count)
	}
	return regions, nil
}

// ReadModel returns the model stored under hash.
func (s *Store) ReadModel(ctx context.Context, hash string) (*model.Spec, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT spec FROM models WHERE hash = ?`, hash).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read model %s: %w", hash, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", hash, err)
	}

	var spec model.Spec
	if err := json.Unmarshal([]byte(data), &spec); err != nil {
		return nil, fmt.Errorf("read model %s: %w", hash, err)
	}
	return &spec, nil
}

// column pairs a JSON TEXT value with its destination.
type column struct {
	data string
	dst  any
}

func decodeAll(cols ...column) error {
	for i, c := range cols {
		if err := json.Unmarshal([]byte(c.data), c.dst); err != nil {
			return fmt.Errorf("decode column %d: %w", i, err)
		}
	}
	return nil
}
