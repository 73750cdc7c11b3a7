// Command assetctl inspects and maintains the asset catalog of a video
// ingest deployment from the command line.
//
// Usage:
//
//	assetctl <command> [arguments]
//
// Commands:
//
//	list            Print every asset with its state, per-tier outcome,
//	                resolution and upload time.
//
//	delete <id>     Remove an asset directory and its index rows. Asks for
//	                confirmation on a terminal; pass -y to skip the prompt.
//
//	prune           Remove staging leftovers, tombstones and directories
//	                without an original, then drop index rows for assets
//	                no longer on disk. Anything touched within the last
//	                hour is kept, since the server may still be writing
//	                it; -older-than DURATION changes that window.
//
// Environment:
//
//	UPLOAD_DIR   - Asset directory (default: uploads)
//	DATABASE_DIR - Path to database directory (default: data)
//
// The server may keep running while assetctl operates; the storage watcher
// picks up deletions made here.
package main
