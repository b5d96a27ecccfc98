// Command inksync keeps a file-based markdown content store and its SQLite
// relational mirror consistent: check diagnoses drift, repair applies
// idempotent fixes, report export serializes the last run.
package main
