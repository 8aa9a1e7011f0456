// Package s3 provides Amazon S3 and DynamoDB implementations of the blobstore
// interfaces.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket", "snapshots/")
//	committer := s3.NewDDBCommitter(dynamodb.NewFromConfig(cfg), "hugegraph-commits", "s3://my-bucket/snapshots")
//
// # Features
//
//   - Multipart uploads for large snapshots
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
//   - Conditional DynamoDB writes so concurrent writers never commit the same version
package s3
