package datasets

import (
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"golang.org/x/exp/maps"

	"github.com/datacraft-oss/go-dataset-sdk/dsfs"
)

// Descriptor is the normalized form of a CommonConfig, shared by every
// adapter: protocol and bare path split out, storage options merged,
// filesystem handle acquired from the registry, and a PathResolver bound to
// that filesystem. Adapters embed a *Descriptor and add only their
// codec-specific Load/Save logic.
//
// A Descriptor is immutable after construction.
type Descriptor struct {
	protocol       string
	path           string
	storageOptions map[string]ldvalue.Value
	loadArgs       map[string]ldvalue.Value
	saveArgs       map[string]ldvalue.Value
	openArgsLoad   dsfs.OpenOptions
	openArgsSave   dsfs.OpenOptions
	version        *Version
	loggers        ldlog.Loggers
	fs             dsfs.FileSystem
	resolver       *PathResolver
}

// NewDescriptor validates and normalizes a CommonConfig and acquires the
// filesystem handle for its protocol.
func NewDescriptor(config CommonConfig) (*Descriptor, error) {
	if config.Filepath == "" {
		return nil, NewError(ErrorKindConfiguration, "filepath is required")
	}
	protocol, path := SplitProtocol(config.Filepath)
	if config.Version != nil && (protocol == "http" || protocol == "https") {
		return nil, NewError(ErrorKindConfiguration,
			"versioning is not supported for http(s) protocols")
	}

	storageOptions := make(map[string]ldvalue.Value, len(config.Credentials)+len(config.FSArgs.Args))
	for k, v := range config.Credentials {
		storageOptions[k] = v
	}
	for k, v := range config.FSArgs.Args {
		storageOptions[k] = v
	}
	if protocol == DefaultProtocol {
		if _, ok := storageOptions["auto_mkdir"]; !ok {
			storageOptions["auto_mkdir"] = ldvalue.Bool(true)
		}
	}

	loadArgs := copyArgs(config.LoadArgs)
	saveArgs := copyArgs(config.SaveArgs)
	// Storage options ride on fs_args/credentials, never on codec args.
	if _, inLoad := loadArgs["storage_options"]; inLoad {
		delete(loadArgs, "storage_options")
		config.Loggers.Warnf("Dropping 'storage_options' for %s, please specify them under 'fs_args' or 'credentials'", config.Filepath)
	}
	if _, inSave := saveArgs["storage_options"]; inSave {
		delete(saveArgs, "storage_options")
		config.Loggers.Warnf("Dropping 'storage_options' for %s, please specify them under 'fs_args' or 'credentials'", config.Filepath)
	}

	fs, err := dsfs.ForProtocol(protocol, storageOptions, config.Loggers)
	if err != nil {
		return nil, WrapError(ErrorKindConfiguration, "could not create filesystem for "+config.Filepath, err)
	}

	return &Descriptor{
		protocol:       protocol,
		path:           path,
		storageOptions: storageOptions,
		loadArgs:       loadArgs,
		saveArgs:       saveArgs,
		openArgsLoad:   dsfs.OpenOptions(copyArgs(config.FSArgs.OpenArgsLoad)),
		openArgsSave:   dsfs.OpenOptions(copyArgs(config.FSArgs.OpenArgsSave)),
		version:        config.Version,
		loggers:        config.Loggers,
		fs:             fs,
		resolver:       NewPathResolver(path, config.Version, fs.Exists, fs.Glob),
	}, nil
}

func copyArgs(in map[string]ldvalue.Value) map[string]ldvalue.Value {
	out := make(map[string]ldvalue.Value, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Protocol returns the dataset's protocol prefix ("file" if none was
// given).
func (d *Descriptor) Protocol() string { return d.protocol }

// Path returns the filepath with the protocol prefix removed.
func (d *Descriptor) Path() string { return d.path }

// FileSystem returns the shared filesystem handle.
func (d *Descriptor) FileSystem() dsfs.FileSystem { return d.fs }

// Resolver returns the dataset's path resolver.
func (d *Descriptor) Resolver() *PathResolver { return d.resolver }

// LoadArgs returns a copy of the codec options for loads.
func (d *Descriptor) LoadArgs() map[string]ldvalue.Value { return maps.Clone(d.loadArgs) }

// SaveArgs returns a copy of the codec options for saves.
func (d *Descriptor) SaveArgs() map[string]ldvalue.Value { return maps.Clone(d.saveArgs) }

// OpenArgsLoad returns a copy of the filesystem open options for loads.
func (d *Descriptor) OpenArgsLoad() dsfs.OpenOptions { return maps.Clone(d.openArgsLoad) }

// OpenArgsSave returns a copy of the filesystem open options for saves.
func (d *Descriptor) OpenArgsSave() dsfs.OpenOptions { return maps.Clone(d.openArgsSave) }

// StorageOptions returns a copy of the merged credential and constructor
// options.
func (d *Descriptor) StorageOptions() map[string]ldvalue.Value { return maps.Clone(d.storageOptions) }

// Loggers returns the log destination configured for this dataset.
func (d *Descriptor) Loggers() ldlog.Loggers { return d.loggers }

// Exists reports whether the current load target exists; an unresolvable
// version is "does not exist".
func (d *Descriptor) Exists() (bool, error) {
	ok, err := d.resolver.Exists()
	if err != nil {
		return false, WrapError(ErrorKindIO, "could not check existence of "+d.path, err)
	}
	return ok, nil
}

// InvalidateCache drops the filesystem's cached state for the dataset's
// base path, so listings and existence checks observe the latest write.
func (d *Descriptor) InvalidateCache() {
	d.fs.InvalidateCache(d.path)
}

// Release discards any cached derived state. The base implementation only
// invalidates the filesystem cache.
func (d *Descriptor) Release() {
	d.InvalidateCache()
}

// EnsureNotDirectory refuses a save path that is an existing directory.
// Single-file adapters cannot overwrite a directory, and the check must
// happen before any write is attempted.
func (d *Descriptor) EnsureNotDirectory(savePath string) error {
	dc, ok := d.fs.(dsfs.DirChecker)
	if !ok {
		return nil
	}
	isDir, err := dc.IsDir(savePath)
	if err != nil {
		return WrapError(ErrorKindIO, "could not inspect "+savePath, err)
	}
	if isDir {
		return NewErrorf(ErrorKindInvalidOperation,
			"saving to the directory %s is not supported, the save target must be a single file", savePath)
	}
	return nil
}

// CheckSaveConsistency logs a warning when the version just saved is not
// the version a load would resolve to, which happens when an explicit load
// version pins the dataset to older data, or when a concurrent writer won
// the race for "latest".
func (d *Descriptor) CheckSaveConsistency(savePath string) {
	if d.version == nil {
		return
	}
	saveToken := versionTokenOf(d.path, savePath)
	loadToken, err := d.resolver.LoadVersion()
	if err == nil && saveToken != loadToken {
		d.loggers.Warnf("Save version %q did not match load version %q for %s", saveToken, loadToken, d.path)
	}
}

// DescribeWith is like Describe but merges extra entries into the result.
// Adapters use it to add fields of their own, such as a file format tag.
func (d *Descriptor) DescribeWith(extra map[string]ldvalue.Value) ldvalue.Value {
	b := ldvalue.ObjectBuild().
		Set("filepath", ldvalue.String(d.path)).
		Set("protocol", ldvalue.String(d.protocol)).
		Set("load_args", objectValue(d.loadArgs)).
		Set("save_args", objectValue(d.saveArgs))
	if d.version != nil {
		b.Set("version", ldvalue.ObjectBuild().
			Set("load", optionalStringValue(d.version.Load)).
			Set("save", optionalStringValue(d.version.Save)).
			Build())
	}
	for k, v := range extra {
		b.Set(k, v)
	}
	return b.Build()
}

// Describe returns a diagnostic description of the dataset configuration,
// with codec arguments included verbatim. Credentials and storage options
// are never included.
func (d *Descriptor) Describe() ldvalue.Value {
	return d.DescribeWith(nil)
}

func objectValue(m map[string]ldvalue.Value) ldvalue.Value {
	b := ldvalue.ObjectBuild()
	for k, v := range m {
		b.Set(k, v)
	}
	return b.Build()
}

func optionalStringValue(s ldvalue.OptionalString) ldvalue.Value {
	if s.IsDefined() {
		return ldvalue.String(s.StringValue())
	}
	return ldvalue.Null()
}
