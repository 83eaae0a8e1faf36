// Package mmap maps local blobs read-only into memory.
//
// On unix systems the file is mapped with mmap(2) and Advise forwards to
// madvise(2). Elsewhere the file is read into a heap buffer and Advise is a
// no-op.
package mmap
