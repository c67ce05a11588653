// Package downloader batch-downloads remote resources into a local tree.
//
// Tasks are registered on a Builder, which deduplicates identical
// (url, path, filename) triples. Build freezes the settings and tasks into
// a Downloader whose Run dispatches every task under a fixed number of
// permits and returns the failed ones.
//
// Each task ends either in success or in exactly one *Error. Every Kind
// carries a static ignorable flag, so callers can split failures into
// expected outcomes and faults:
//
//	failures, err := builder.Build().Run(ctx, func(r downloader.Report) {
//	    fmt.Println(r.URL, r.Err)
//	})
//
// With hash checking enabled an existing file is compared by BLAKE3 digest
// against the remote body, which makes reruns idempotent.
package downloader
