// Package snapshot persists device status snapshots so a rollback survives
// process restarts.
//
// Each device has at most one stored snapshot, written as deterministic CBOR
// to <dir>/<deviceID>.cbor. Writes go through a temporary file and a rename
// so a crash never leaves a half-written snapshot behind.
package snapshot
