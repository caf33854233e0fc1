package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shaunharker/conley-morse-database/internal/atlas"
	"github.com/shaunharker/conley-morse-database/internal/model"
)

// AtlasRecord is the catalogue entry of a stored atlas.
type AtlasRecord struct {
	ID               string `json:"id"`
	ModelHash        string `json:"model_hash"`
	ModelName        string `json:"model_name"`
	Dimension        int    `json:"dimension"`
	RegionCount      int    `json:"region_count"`
	Ordering         string `json:"ordering"`
	GeneratorVersion string `json:"generator_version"`
	Seq              int64  `json:"seq"`
}

// WriteAtlas stores a and the model it was built from in one transaction.
//
// The model row is keyed by model.Hash and written with ON CONFLICT DO
// NOTHING, so rebuilding a model adds only a new atlas. The atlas gets the
// next logical seq.
func (s *Store) WriteAtlas(ctx context.Context, spec *model.Spec, a *atlas.Atlas) (AtlasRecord, error) {
	hash, err := model.Hash(spec)
	if err != nil {
		return AtlasRecord{}, fmt.Errorf("write atlas: %w", err)
	}
	canonical, err := model.Canonical(spec)
	if err != nil {
		return AtlasRecord{}, fmt.Errorf("write atlas: %w", err)
	}

	thresholds := make([][]float64, len(a.Partitions))
	for j, p := range a.Partitions {
		thresholds[j] = p.Thresholds()
	}
	header, err := encodeAll(a.Names, a.Lower, a.Upper, a.DecayLower, a.DecayUpper, thresholds)
	if err != nil {
		return AtlasRecord{}, fmt.Errorf("write atlas: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AtlasRecord{}, fmt.Errorf("write atlas: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO models (hash, name, spec)
		VALUES (?, ?, ?)
		ON CONFLICT(hash) DO NOTHING
	`, hash, spec.Name, string(canonical))
	if err != nil {
		return AtlasRecord{}, fmt.Errorf("write atlas: insert model: %w", err)
	}

	rec := AtlasRecord{
		ID:               s.ids.Generate(),
		ModelHash:        hash,
		ModelName:        spec.Name,
		Dimension:        a.Dimension(),
		RegionCount:      len(a.Regions),
		Ordering:         a.Ordering.String(),
		GeneratorVersion: model.GeneratorVersion,
	}
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM atlases`).Scan(&rec.Seq); err != nil {
		return AtlasRecord{}, fmt.Errorf("write atlas: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO atlases
		(id, model_hash, dimension, region_count, ordering, names,
		 lower_bounds, upper_bounds, decay_lower, decay_upper, thresholds,
		 generator_version, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.ModelHash,
		rec.Dimension,
		rec.RegionCount,
		rec.Ordering,
		header[0], header[1], header[2], header[3], header[4], header[5],
		rec.GeneratorVersion,
		rec.Seq,
	)
	if err != nil {
		return AtlasRecord{}, fmt.Errorf("write atlas: insert atlas: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO boxes (atlas_id, idx, lower, upper, sigma_lower, sigma_upper)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return AtlasRecord{}, fmt.Errorf("write atlas: prepare boxes: %w", err)
	}
	defer stmt.Close()

	arr := a.Arrays()
	for r, region := range a.Regions {
		cols, err := encodeAll(region.Bounds.Lower(), region.Bounds.Upper(), arr.LowerSigmas[r], arr.UpperSigmas[r])
		if err != nil {
			return AtlasRecord{}, fmt.Errorf("write atlas: box %d: %w", region.Index, err)
		}
		if _, err := stmt.ExecContext(ctx, rec.ID, region.Index, cols[0], cols[1], cols[2], cols[3]); err != nil {
			return AtlasRecord{}, fmt.Errorf("write atlas: insert box %d: %w", region.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return AtlasRecord{}, fmt.Errorf("write atlas: commit: %w", err)
	}
	return rec, nil
}

// DeleteAtlas removes an atlas and its boxes. The model row is kept.
func (s *Store) DeleteAtlas(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM atlases WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete atlas: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete atlas: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete atlas %s: %w", id, ErrNotFound)
	}
	return nil
}

// encodeAll JSON-encodes each value into a TEXT column.
func encodeAll(values ...any) ([]string, error) {
	out := make([]string, len(values))
	for i, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode column %d: %w", i, err)
		}
		out[i] = string(data)
	}
	return out, nil
}
