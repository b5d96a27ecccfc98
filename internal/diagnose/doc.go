// Package diagnose compares scanned content files against the relational
// mirror and reports inconsistencies as a flat, severity-ordered issue list.
// Diagnosis is strictly read-only; repairs live in internal/repair.
package diagnose
