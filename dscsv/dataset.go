// Package dscsv provides the eager CSV dataset adapter: Load materializes
// the whole file as a dsframe.Frame, Save writes a frame back out through
// the configured filesystem. Versioning, protocol dispatch, and the
// configuration surface are shared with every other adapter via the
// datasets package.
package dscsv

import (
	"errors"
	"io/fs"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	datasets "github.com/datacraft-oss/go-dataset-sdk"
	"github.com/datacraft-oss/go-dataset-sdk/dsframe"
	"github.com/datacraft-oss/go-dataset-sdk/dsfs"
	"github.com/datacraft-oss/go-dataset-sdk/internal/tabio"
)

// Dataset loads and saves CSV files through a pluggable filesystem.
//
// Recognized load args: "sep", "has_header", "null_value", "columns".
// Recognized save args: "sep", "has_header", "null_value". Unknown keys
// are ignored.
type Dataset struct {
	*datasets.Descriptor
}

// New creates a CSV dataset from the common configuration.
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
	rc, err := d.FileSystem().Open(loadPath, loadOpenArgs(d))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, datasets.WrapError(datasets.ErrorKindNotFound, loadPath+" does not exist", err)
		}
		return nil, datasets.WrapError(datasets.ErrorKindIO, "could not open "+loadPath, err)
	}
	defer func() { _ = rc.Close() }()
	frame, err := tabio.ReadCSV(rc, d.LoadArgs())
	if err != nil {
		return nil, datasets.WrapError(datasets.ErrorKindIO, "could not read "+loadPath, err)
	}
	return frame, nil
}

// Save writes the frame to the resolved save path and invalidates the
// filesystem cache so the new object is observable immediately.
func (d *Dataset) Save(data *dsframe.Frame) error {
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
	writeErr := tabio.WriteCSV(wc, data, d.SaveArgs())
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

// Describe returns the dataset's diagnostic description.
func (d *Dataset) Describe() ldvalue.Value {
	return d.Descriptor.Describe()
}

// Local loads skip the open-args plumbing entirely: plain OS paths need
// none, and passing them along has caused surprising behavior with
// file://-style URL handling in the past.
func loadOpenArgs(d *Dataset) dsfs.OpenOptions {
	if d.Protocol() == datasets.DefaultProtocol {
		return nil
	}
	return d.OpenArgsLoad()
}
