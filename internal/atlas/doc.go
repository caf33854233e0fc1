// Package atlas computes the combinatorial decomposition of a bounded phase
// space into axis-aligned boxes and the sigma interval of every box.
//
// PIPELINE:
//
//  1. BuildInteraction turns source lists and thresholds into an N×N
//     ThresholdMatrix (entry (target, source), 0 = no influence).
//  2. UpperBounds derives the phase-space box [0, U_j] per variable.
//  3. NewDomain builds one Partition per variable from the distinct
//     thresholds in that variable's matrix column and enumerates the
//     Cartesian product of the partitions.
//  4. Resolver evaluates, for every box and target, the binary signature
//     of source midpoints against thresholds and looks it up in the
//     target's InteractionMap.
//
// ORDERING:
//
// Regions are addressed by their product index. With FirstFastest (the
// default) the first variable's interval varies fastest, which is the box
// order the downstream Conley-Morse tools expect; LastFastest is plain
// row-major order. Region i of an Atlas always has Index i.
//
// CONCURRENCY:
//
// Everything is pure. Build fans the region loop out over a bounded
// worker pool; each worker fills the preallocated slot of its region, so
// output order never depends on scheduling. When several regions fail,
// the error of the lowest region index is returned.
package atlas
