package dslazy

import (
	"fmt"
	"io"
	"sort"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/datacraft-oss/go-dataset-sdk/dsframe"
	"github.com/datacraft-oss/go-dataset-sdk/dsfs"
	"github.com/datacraft-oss/go-dataset-sdk/internal/tabio"
)

// FileFormat identifies the serialization format of a lazy dataset.
type FileFormat string

// The accepted file formats. Anything else is rejected at construction
// time, before any filesystem access.
const (
	FormatCSV     FileFormat = "csv"
	FormatParquet FileFormat = "parquet"
)

// formatHandler pairs the scan and write entry points for one format. The
// mapping is an explicit table rather than a by-name lookup so that a
// missing entry point is caught when the package is initialized, not when
// a dataset first calls Save.
type formatHandler struct {
	scan  func(fs dsfs.FileSystem, path string, opts dsfs.OpenOptions, args map[string]ldvalue.Value) (*dsframe.Frame, error)
	write func(w io.Writer, f *dsframe.Frame, args map[string]ldvalue.Value) error
}

var formatHandlers = map[FileFormat]formatHandler{
	FormatCSV:     {scan: scanCSV, write: tabio.WriteCSV},
	FormatParquet: {scan: scanParquet, write: tabio.WriteParquet},
}

func init() {
	for format, h := range formatHandlers {
		if h.scan == nil || h.write == nil {
			panic(fmt.Sprintf("format %q is missing a scan or write entry point", format))
		}
	}
}

// AcceptedFileFormats returns the supported format tags, sorted.
func AcceptedFileFormats() []string {
	out := make([]string, 0, len(formatHandlers))
	for f := range formatHandlers {
		out = append(out, string(f))
	}
	sort.Strings(out)
	return out
}

func scanCSV(filesystem dsfs.FileSystem, path string, opts dsfs.OpenOptions, args map[string]ldvalue.Value) (*dsframe.Frame, error) {
	rc, err := filesystem.Open(path, opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return tabio.ReadCSV(rc, args)
}

// scanParquet works uniformly across remote object stores: where random
// access is unavailable the object is read sequentially into memory before
// decoding, rather than assuming ranged reads are cheap.
func scanParquet(filesystem dsfs.FileSystem, path string, opts dsfs.OpenOptions, args map[string]ldvalue.Value) (*dsframe.Frame, error) {
	ra, size, closer, err := tabio.OpenReaderAt(filesystem, path, opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = closer.Close() }()
	return tabio.ReadParquet(ra, size, args)
}
