// Package s3 implements blobstore.Store on Amazon S3.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "analysis-bucket", "li4/")
//
// Reads use ranged GETs; writes stream through the multipart upload manager.
package s3
