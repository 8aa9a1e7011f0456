// Package blobstore is the object-store abstraction that storage snapshots
// are exported to.
//
// Store holds immutable named blobs; Committer records which blob is the
// current version of a named series, so readers never observe a half-written
// snapshot. Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore, MemoryCommitter: in-process, for tests and single-process use
//   - LocalStore, LocalCommitter: a local directory; reads are memory-mapped
//   - minio.Store: MinIO and other S3-compatible storage
//   - s3.Store: Amazon S3 with multipart uploads
//   - s3.DDBCommitter: DynamoDB conditional writes as the version log
package blobstore
