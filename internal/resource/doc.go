// Package resource bounds the staging I/O of a run.
//
// The Controller manages two resources:
//
//   - Transfers: a weighted semaphore limiting concurrent downloads and
//     uploads.
//   - IO: a token-bucket limiter on transferred bytes.
//
// # Transfer Limits
//
//	rc := resource.NewController(resource.Config{
//	    MaxTransfers: 4,
//	})
//
//	if err := rc.AcquireTransfer(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseTransfer()
//
// # IO Rate Limiting
//
//	rc := resource.NewController(resource.Config{
//	    IOLimitBytesPerSec: 100 * 1024 * 1024, // 100MB/s
//	})
//
//	reader := resource.NewRateLimitedReader(ctx, blob, rc)
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully; they become no-ops.
package resource
