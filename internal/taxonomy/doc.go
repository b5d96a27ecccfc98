// Package taxonomy canonicalizes tag and category names.
//
// Canonicalization is a two-step transform: a configurable synonym table maps
// known variants to one display form, then a deterministic slug transform
// produces the lookup identity. Near-duplicate detection over entity names is
// advisory; only synonym-table entries are ever merged automatically.
package taxonomy
