// Package store provides SQLite-backed storage for computed atlases.
//
// Tables:
//   - models: model descriptions keyed by their content hash
//   - atlases: one row per build, with phase-space bounds and partitions
//   - boxes: the regions of each atlas with their sigma intervals
//
// # Ordering
//
// Atlases are ordered by a logical seq INTEGER, never by timestamps.
// List queries use ORDER BY seq ASC, id ASC COLLATE BINARY, and boxes are
// read back in product-index order.
//
// # Identity
//
// A model is stored once per content hash (model.Hash), so rebuilding the
// same model reuses its row. Atlas IDs come from an IDGenerator, UUIDv7 by
// default.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait on lock contention
//   - foreign_keys=ON: Boxes cannot outlive their atlas
//   - MaxOpenConns=1: Single writer
package store
