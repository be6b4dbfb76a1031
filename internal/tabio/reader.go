package tabio

import (
	"bytes"
	"io"

	"github.com/datacraft-oss/go-dataset-sdk/dsfs"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenReaderAt obtains random access to an object. Filesystems that can
// serve ranged reads cheaply do so directly; for the rest the object is
// buffered in memory, which the eager adapters are doing anyway.
func OpenReaderAt(fs dsfs.FileSystem, path string, opts dsfs.OpenOptions) (io.ReaderAt, int64, io.Closer, error) {
	if ra, ok := fs.(dsfs.RandomAccess); ok {
		r, size, err := ra.OpenRandom(path)
		if err != nil {
			return nil, 0, nil, err
		}
		return r, size, r, nil
	}
	rc, err := fs.Open(path, opts)
	if err != nil {
		return nil, 0, nil, err
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, 0, nil, err
	}
	return bytes.NewReader(data), int64(len(data)), nopCloser{}, nil
}
