// Package dsparquet provides the eager Parquet dataset adapter. Load
// materializes the whole file as a dsframe.Frame; Preview reads a bounded
// head without materializing the file; Save writes a single parquet
// object.
//
// Column-partitioned output is deliberately unsupported: a partitioned
// parquet dataset is a directory tree, not a single object, and needs a
// dedicated partitioned-dataset abstraction.
package dsparquet

import (
	"errors"
	"io/fs"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	datasets "github.com/datacraft-oss/go-dataset-sdk"
	"github.com/datacraft-oss/go-dataset-sdk/dsframe"
	"github.com/datacraft-oss/go-dataset-sdk/dsfs"
	"github.com/datacraft-oss/go-dataset-sdk/internal/tabio"
)

// DefaultPreviewRows is the row count Preview uses when given a
// non-positive count.
const DefaultPreviewRows = 5

const partitionColsArg = "partition_cols"

// Dataset loads and saves Parquet files through a pluggable filesystem.
//
// Recognized load args: "columns". Recognized save args: "compression"
// ("snappy" by default). "partition_cols" in save args is rejected.
type Dataset struct {
	*datasets.Descriptor
}

// New creates a Parquet dataset from the common configuration.
func New(config datasets.CommonConfig) (*Dataset, error) {
	d, err := datasets.NewDescriptor(config)
	if err != nil {
		return nil, err
	}
	return &Dataset{Descriptor: d}, nil
}

// Load reads the file at the resolved load path and materializes it fully.
func (d *Dataset) Load() (*dsframe.Frame, error) {
	loadPath, err := d.Resolver().ResolveLoadPath()
	if err != nil {
		return nil, err
	}
	ra, size, closer, err := tabio.OpenReaderAt(d.FileSystem(), loadPath, loadOpenArgs(d))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, datasets.WrapError(datasets.ErrorKindNotFound, loadPath+" does not exist", err)
		}
		return nil, datasets.WrapError(datasets.ErrorKindIO, "could not open "+loadPath, err)
	}
	defer func() { _ = closer.Close() }()
	frame, err := tabio.ReadParquet(ra, size, d.LoadArgs())
	if err != nil {
		return nil, datasets.WrapError(datasets.ErrorKindIO, "could not read "+loadPath, err)
	}
	return frame, nil
}

// Save writes the frame to the resolved save path and invalidates the
// filesystem cache so the new object is observable immediately.
func (d *Dataset) Save(data *dsframe.Frame) error {
	if _, ok := d.SaveArgs()[partitionColsArg]; ok {
		return datasets.NewError(datasets.ErrorKindConfiguration,
			"parquet datasets do not support the save argument 'partition_cols'; use a partitioned dataset abstraction instead")
	}
	savePath, err := d.Resolver().ResolveSavePath()
	if err != nil {
		return err
	}
	if err := d.EnsureNotDirectory(savePath); err != nil {
		return err
	}
	wc, err := d.FileSystem().Create(savePath, d.OpenArgsSave())
	if err != nil {
		return datasets.WrapError(datasets.ErrorKindIO, "could not create "+savePath, err)
	}
	writeErr := tabio.WriteParquet(wc, data, d.SaveArgs())
	closeErr := wc.Close()
	if writeErr != nil {
		return datasets.WrapError(datasets.ErrorKindIO, "could not write "+savePath, writeErr)
	}
	if closeErr != nil {
		return datasets.WrapError(datasets.ErrorKindIO, "could not finalize "+savePath, closeErr)
	}
	d.InvalidateCache()
	d.CheckSaveConsistency(savePath)
	return nil
}

// Preview returns at most nrows leading rows in split orientation,
// restricted to the columns named in the "columns" load arg when present.
// The cost is bounded by nrows: only the pages needed for those rows are
// decoded.
func (d *Dataset) Preview(nrows int) (dsframe.TablePreview, error) {
	if nrows <= 0 {
		nrows = DefaultPreviewRows
	}
	loadPath, err := d.Resolver().ResolveLoadPath()
	if err != nil {
		return dsframe.TablePreview{}, err
	}
	ra, size, closer, err := tabio.OpenReaderAt(d.FileSystem(), loadPath, loadOpenArgs(d))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return dsframe.TablePreview{}, datasets.WrapError(datasets.ErrorKindNotFound, loadPath+" does not exist", err)
		}
		return dsframe.TablePreview{}, datasets.WrapError(datasets.ErrorKindIO, "could not open "+loadPath, err)
	}
	defer func() { _ = closer.Close() }()

	var columns []string
	if v, ok := d.LoadArgs()["columns"]; ok {
		for i := 0; i < v.Count(); i++ {
			columns = append(columns, v.GetByIndex(i).StringValue())
		}
	}
	head, err := tabio.ReadParquetHead(ra, size, nrows, columns)
	if err != nil {
		return dsframe.TablePreview{}, datasets.WrapError(datasets.ErrorKindIO, "could not preview "+loadPath, err)
	}
	return dsframe.PreviewOf(head), nil
}

// Describe returns the dataset's diagnostic description.
func (d *Dataset) Describe() ldvalue.Value {
	return d.Descriptor.Describe()
}

func loadOpenArgs(d *Dataset) dsfs.OpenOptions {
	if d.Protocol() == datasets.DefaultProtocol {
		return nil
	}
	return d.OpenArgsLoad()
}
