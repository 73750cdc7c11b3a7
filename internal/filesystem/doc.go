/*
Package filesystem retries upload storage operations that fail with a stale
NFS file handle (ESTALE).

The catalog directory is often an NFS export shared between replicas. A
rename or readdir on one replica can invalidate a handle another replica still
holds; retrying the call after a short backoff re-resolves the path.

	info, err := filesystem.StatWithRetry(dir, filesystem.DefaultRetryConfig())

Only ESTALE is retried. Every other error is returned from the first call.
Outcomes are reported to the [Observer] installed with [SetObserver], labelled
by the [Volume] the path resolves to.
*/
package filesystem
