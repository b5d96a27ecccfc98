// Package config loads and validates inksync configuration from TOML.
//
// Configuration resolution order: an explicit --config path, then
// ~/.config/inksync/config.toml, then ./inksync.toml. Missing files fall back
// to defaults; path fields are tilde-expanded and made absolute during
// normalization.
//
// Matching thresholds and the taxonomy synonym table live here rather than as
// code constants because they are empirically tuned values operators adjust
// per corpus.
package config
