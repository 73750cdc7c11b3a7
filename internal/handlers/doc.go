// Package handlers provides the HTTP handlers of the video ingest API.
//
// It includes handlers for:
//   - Multipart upload into the ingest pipeline
//   - Listing, lookup and deletion of assets
//   - Streaming originals, renditions and posters with Range support
//   - Health, liveness and readiness checks, version and metrics
//
// Errors are answered as JSON {"error": "..."}; validation failures map to
// 400, unknown assets and files to 404, and everything else to 500 with a
// generic message.
package handlers
