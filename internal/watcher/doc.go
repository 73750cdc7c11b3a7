// Package watcher notices asset directories removed from the upload root
// outside the API (an operator running rm, a sync job) so their index rows
// can be dropped without waiting for the next startup reconciliation.
package watcher
