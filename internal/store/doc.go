// Package store owns the SQLite relational mirror: contents, tags,
// categories, and the content_tags join table. All multi-statement writes
// run inside transactions so a failed repair never leaves the mirror half
// applied.
package store
