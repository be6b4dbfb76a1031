package dsfs

import (
	"io"
	"os"
	"path/filepath"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"github.com/spf13/afero"
)

// aferoFileSystem adapts an afero.Fs to the FileSystem contract. It backs
// both the "file" and "memory" protocols.
type aferoFileSystem struct {
	protocol  string
	fs        afero.Fs
	autoMkdir bool
}

func init() {
	RegisterProtocol("file", newLocalFileSystem)
	RegisterProtocol("memory", newMemoryFileSystem)
}

// newLocalFileSystem builds the "file" protocol implementation. The only
// recognized storage option is "auto_mkdir" (default true): create missing
// parent directories on save.
func newLocalFileSystem(storageOptions map[string]ldvalue.Value, _ ldlog.Loggers) (FileSystem, error) {
	autoMkdir := true
	if v, ok := storageOptions["auto_mkdir"]; ok {
		autoMkdir = v.BoolValue()
	}
	return &aferoFileSystem{protocol: "file", fs: afero.NewOsFs(), autoMkdir: autoMkdir}, nil
}

// The memory filesystem's contents live for the whole process, independent
// of registry instance lifetimes.
var sharedMemFs = afero.NewMemMapFs()

func newMemoryFileSystem(map[string]ldvalue.Value, ldlog.Loggers) (FileSystem, error) {
	return &aferoFileSystem{protocol: "memory", fs: sharedMemFs, autoMkdir: true}, nil
}

func (a *aferoFileSystem) Protocol() string { return a.protocol }

func (a *aferoFileSystem) Open(path string, _ OpenOptions) (io.ReadCloser, error) {
	return a.fs.Open(path)
}

func (a *aferoFileSystem) Create(path string, _ OpenOptions) (io.WriteCloser, error) {
	if a.autoMkdir {
		if err := a.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	return a.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
}

func (a *aferoFileSystem) Exists(path string) (bool, error) {
	return afero.Exists(a.fs, path)
}

func (a *aferoFileSystem) Glob(pattern string) ([]string, error) {
	return afero.Glob(a.fs, pattern)
}

// InvalidateCache is a no-op: the OS and memory filesystems are never
// stale.
func (a *aferoFileSystem) InvalidateCache(string) {}

func (a *aferoFileSystem) IsDir(path string) (bool, error) {
	info, err := a.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

func (a *aferoFileSystem) OpenRandom(path string) (ReaderAtCloser, int64, error) {
	f, err := a.fs.Open(path)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

var (
	_ DirChecker   = (*aferoFileSystem)(nil)
	_ RandomAccess = (*aferoFileSystem)(nil)
)
