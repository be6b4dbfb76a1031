// Package dsfs defines the filesystem abstraction that dataset adapters do
// their byte I/O through, and a registry that maps protocol prefixes to
// shared filesystem instances.
//
// The local ("file") and in-process ("memory") filesystems are built in.
// Other protocols are provided by driver packages that register themselves
// on import:
//
//	import (
//	    _ "github.com/datacraft-oss/go-dataset-sdk/dss3"   // s3://
//	    _ "github.com/datacraft-oss/go-dataset-sdk/dshttp" // http:// and https://
//	)
//
// Instances are shared: asking for the same protocol with the same storage
// options twice returns the same handle, so any caches the implementation
// keeps (directory listings, HTTP responses) are shared by every dataset
// pointing at that filesystem.
package dsfs
