// Package fs abstracts the file operations of the stager so tests can
// inject I/O failures.
//
// Production code uses [Default]; tests wrap it in a [FaultyFS]:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("mixed.root", fs.Fault{FailAfterBytes: 1024})
package fs
