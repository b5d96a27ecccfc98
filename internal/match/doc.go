// Package match pairs scanned content files with their mirror rows. Three
// strategies run in order over the unmatched remainder: exact normalized
// title, path-inferred date and slug scoring, and gated content similarity.
// A claimed row leaves the pool immediately, so each file matches at most
// one row and vice versa.
package match
