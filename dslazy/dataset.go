// Package dslazy provides the lazy dataset adapter: Load returns a
// dsframe.LazyFrame whose contents are only read when it is collected, and
// Save accepts either an eager frame or a lazy frame, which is collected
// fully before anything is written.
//
// The serialization format is fixed at construction to one of the accepted
// formats; see AcceptedFileFormats.
package dslazy

import (
	"strings"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	datasets "github.com/datacraft-oss/go-dataset-sdk"
	"github.com/datacraft-oss/go-dataset-sdk/dsframe"
	"github.com/datacraft-oss/go-dataset-sdk/dsfs"
)

// Dataset is a lazy dataset bound to one file format.
type Dataset struct {
	*datasets.Descriptor
	format FileFormat
}

// New creates a lazy dataset. The format tag is lowercased and must be one
// of the accepted formats; an unknown tag fails with a configuration error
// before any filesystem access occurs.
func New(config datasets.CommonConfig, fileFormat string) (*Dataset, error) {
	format := FileFormat(strings.ToLower(fileFormat))
	if _, ok := formatHandlers[format]; !ok {
		return nil, datasets.NewErrorf(datasets.ErrorKindConfiguration,
			"%q is not an accepted file format (accepted: %s); check the 'file_format' parameter",
			fileFormat, strings.Join(AcceptedFileFormats(), ", "))
	}
	d, err := datasets.NewDescriptor(config)
	if err != nil {
		return nil, err
	}
	return &Dataset{Descriptor: d, format: format}, nil
}

// FileFormat returns the dataset's format tag.
func (d *Dataset) FileFormat() FileFormat { return d.format }

// Load resolves the current load path and returns a lazy frame over it.
// The path must exist at Load time; the data itself is not read until the
// frame is collected.
func (d *Dataset) Load() (*dsframe.LazyFrame, error) {
	loadPath, err := d.Resolver().ResolveLoadPath()
	if err != nil {
		return nil, err
	}
	ok, err := d.FileSystem().Exists(loadPath)
	if err != nil {
		return nil, datasets.WrapError(datasets.ErrorKindIO, "could not check "+loadPath, err)
	}
	if !ok {
		return nil, datasets.NewErrorf(datasets.ErrorKindNotFound, "%s does not exist", loadPath)
	}

	handler := formatHandlers[d.format]
	filesystem := d.FileSystem()
	opts := loadOpenArgs(d)
	args := d.LoadArgs()
	return dsframe.NewLazyFrame(func() (*dsframe.Frame, error) {
		return handler.scan(filesystem, loadPath, opts, args)
	}), nil
}

// Save writes data to the resolved save path. data may be a
// *dsframe.Frame or a *dsframe.LazyFrame; a lazy frame is collected fully
// before anything is written.
func (d *Dataset) Save(data any) error {
	var frame *dsframe.Frame
	switch v := data.(type) {
	case *dsframe.Frame:
		frame = v
	case *dsframe.LazyFrame:
		collected, err := v.Collect()
		if err != nil {
			return datasets.WrapError(datasets.ErrorKindIO, "could not collect lazy frame", err)
		}
		frame = collected
	default:
		return datasets.NewErrorf(datasets.ErrorKindInvalidOperation,
			"cannot save a %T; expected *dsframe.Frame or *dsframe.LazyFrame", data)
	}

	// Unreachable with the accepted-format check in New, but kept so a
	// future format addition that forgets a write entry point fails loudly
	// rather than writing nothing.
	handler, ok := formatHandlers[d.format]
	if !ok || handler.write == nil {
		return datasets.NewErrorf(datasets.ErrorKindConfiguration,
			"no write entry point for file format %q", d.format)
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
	writeErr := handler.write(wc, frame, d.SaveArgs())
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

// Describe returns the dataset's diagnostic description, including the
// format tag.
func (d *Dataset) Describe() ldvalue.Value {
	return d.DescribeWith(map[string]ldvalue.Value{
		"file_format": ldvalue.String(string(d.format)),
	})
}

func loadOpenArgs(d *Dataset) dsfs.OpenOptions {
	if d.Protocol() == datasets.DefaultProtocol {
		return nil
	}
	return d.OpenArgsLoad()
}
