// Package blobstore abstracts the object storage that holds analysis inputs
// (ROOT trees) and outputs (mixed-pair trees, pair logs, QA files).
//
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local directory, read through mmap
//   - MemoryStore: in-process map, used by tests
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible servers
package blobstore
