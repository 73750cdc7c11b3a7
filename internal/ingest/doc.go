/*
Package ingest runs the upload pipeline and answers catalog queries.

An upload moves through these steps:

	validate name -> reserve directory -> stage + fsync -> probe staged file
	  -> commit original -> poster (optional) -> transcode all tiers -> settle

Nothing is visible until the commit. A probe failure purges the reserved
directory, so probe-failed uploads never appear in listings. Once committed,
the asset survives any tier failure: the returned state is ready when every
tier succeeded and partially_ready otherwise.

Listings come from a scan of the upload directory (authoritative for
existence) enriched with the asset index (metadata, state and tier errors),
so listing never re-probes originals. [Service.Reconcile] repairs the index
at startup.
*/
package ingest
