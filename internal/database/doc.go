// Package database provides the SQLite asset index.
//
// It records, per asset:
//   - the client-supplied name and the normalized extension
//   - probed metadata (width, height, duration)
//   - the lifecycle state and the outcome of every rendition tier
//
// The upload directory stays authoritative for whether an asset exists;
// the index only enriches listings so they never re-probe originals.
// The database uses WAL mode and creates its schema on open.
package database
