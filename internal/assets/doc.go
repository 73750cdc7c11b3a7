// Package assets defines the domain model shared by the ingestion pipeline:
// assets, quality tiers, rendition and asset states, filename sanitizing, and
// the typed errors that the HTTP layer maps to status codes.
package assets
