// Package model provides the typed description of a Boolean-switching
// network: variables, their sources and thresholds, interaction maps,
// decay-rate intervals and production rates.
//
// This package contains type definitions plus canonical serialization.
// All other internal packages import model; model imports nothing internal.
//
// Key design constraints:
//   - Variable order is significant: it is the axis order of every vector
//     in the atlas.
//   - Source order within a variable is significant: it is the bit order of
//     that variable's signatures.
//   - All JSON tags use snake_case.
package model
