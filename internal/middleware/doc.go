// Package middleware wraps the API router with an access log and
// Prometheus request metrics labelled by route template.
package middleware
