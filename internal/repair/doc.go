// Package repair applies idempotent corrective writes to the mirror:
// synonym-driven entity merges, tag creation and relinking, conditional
// field syncs, and the usage-count recompute. One item's failure never
// aborts the batch; the run always ends with a tally.
package repair
