/*
Package catalog is the directory-per-asset store under the upload root.

Layout:

	<root>/<id>/original.<ext>
	<root>/<id>/{high,medium,low}.<ext>
	<root>/<id>/poster.jpg

The presence of a file named original.* is the only signal that an asset is
committed. Everything else is derived by scanning:

  - [Catalog.Reserve] claims a directory with an atomic mkdir, suffixing the
    id with a UUID fragment on collision.
  - [Catalog.WriteStaging] persists the upload under a hidden name and fsyncs it.
  - [Catalog.Commit] renames the staged file to original.<ext>, which makes the
    asset visible to [Catalog.List].
  - [Catalog.Delete] renames the directory to a hidden tombstone before the
    recursive removal, so observers never see a half-deleted asset.

Hidden entries (leading dot) are never listed. [Catalog.Prune] removes
tombstones and reservations that never committed, left behind by a crash.
*/
package catalog
