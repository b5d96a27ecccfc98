// Package report aggregates run results into a single document and renders
// it as a console table, JSON, or markdown. It holds no reconciliation
// logic; everything here is formatting over diagnoser and executor output.
package report
