// Package logging provides slog construction and attribute helpers.
//
// Two output formats are supported: a compact console format
// (timestamp LEVEL component: message key=value ...) and standard slog JSON.
// Log output goes to stderr and the configured log file so stdout stays
// reserved for report rendering.
package logging
