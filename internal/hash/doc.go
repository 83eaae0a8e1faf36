// Package hash provides the CRC32-Castagnoli checksums attached to
// uploaded objects.
//
//	sum := hash.CRC32C(data)
//	header := hash.EncodeCRC32C(sum) // base64 of the big-endian value
package hash
