package dsfs

import (
	"io"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

// OpenOptions is a passthrough option map for FileSystem.Open and
// FileSystem.Create. Recognized keys are implementation-specific; unknown
// keys are ignored.
type OpenOptions map[string]ldvalue.Value

// FileSystem is the storage contract used by all dataset adapters. Paths
// are protocol-relative: for "s3://bucket/raw/cars.csv" the implementation
// registered for "s3" receives "bucket/raw/cars.csv".
//
// Implementations must be safe for concurrent use, since one instance is
// shared by every dataset with the same protocol and storage options.
type FileSystem interface {
	// Protocol returns the protocol prefix this instance serves.
	Protocol() string

	// Open returns a reader for the object at path. A missing object yields
	// an error satisfying errors.Is(err, fs.ErrNotExist).
	Open(path string, opts OpenOptions) (io.ReadCloser, error)

	// Create returns a writer for the object at path, creating parent
	// directories where the backend has them. The object's content is
	// defined only after Close returns successfully.
	Create(path string, opts OpenOptions) (io.WriteCloser, error)

	// Exists reports whether an object or directory exists at path.
	Exists(path string) (bool, error)

	// Glob returns the paths matching a shell-style pattern.
	Glob(pattern string) ([]string, error)

	// InvalidateCache drops any cached state the implementation holds for
	// path and everything under it, so that subsequent Exists and Glob
	// calls observe freshly written objects.
	InvalidateCache(path string)
}

// ReaderAtCloser is a random-access handle returned by RandomAccess
// implementations.
type ReaderAtCloser interface {
	io.ReaderAt
	io.Closer
}

// RandomAccess is an optional interface for filesystems that can serve
// random reads cheaply. Adapters use it for bounded partial reads, such as
// parquet previews that only touch the pages they need.
type RandomAccess interface {
	OpenRandom(path string) (ReaderAtCloser, int64, error)
}

// DirChecker is an optional interface for filesystems that distinguish
// directories from objects. Where it is unavailable, adapters treat every
// existing path as a plain object.
type DirChecker interface {
	// IsDir reports whether path exists and is a directory. A missing path
	// is (false, nil).
	IsDir(path string) (bool, error)
}
