// Package reconcile runs the full pipeline: scan the content tree, match
// files to mirror rows, diagnose inconsistencies, optionally repair them,
// and write a run report. A file lock serializes runs over the same mirror.
package reconcile
