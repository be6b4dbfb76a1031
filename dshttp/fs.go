// Package dshttp provides the read-only HTTP filesystem driver. Importing
// it registers the "http" and "https" protocols:
//
//	import _ "github.com/datacraft-oss/go-dataset-sdk/dshttp"
//
// Responses are cached in memory with standard HTTP caching semantics, so
// repeated loads of the same URL revalidate instead of re-downloading.
// HTTP datasets cannot be saved, globbed, or versioned.
//
// Recognized storage options are "timeout" (seconds), "proxy",
// "ntlm_user", "ntlm_password", "ntlm_domain", and "headers" (an object of
// extra request headers).
package dshttp

import (
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/datacraft-oss/go-dataset-sdk/dsfs"
	"github.com/datacraft-oss/go-dataset-sdk/internal/httpconfig"
)

const (
	optionTimeout      = "timeout"
	optionProxy        = "proxy"
	optionNTLMUser     = "ntlm_user"
	optionNTLMPassword = "ntlm_password"
	optionNTLMDomain   = "ntlm_domain"
	optionHeaders      = "headers"
)

func init() {
	for _, protocol := range []string{"http", "https"} {
		scheme := protocol
		dsfs.RegisterProtocol(scheme, func(storageOptions map[string]ldvalue.Value, loggers ldlog.Loggers) (dsfs.FileSystem, error) {
			return newHTTPFileSystem(scheme, storageOptions, loggers)
		})
	}
}

type fileSystem struct {
	scheme  string
	client  *http.Client
	cache   *httpcache.MemoryCache
	headers http.Header
	loggers ldlog.Loggers
}

func newHTTPFileSystem(scheme string, storageOptions map[string]ldvalue.Value, loggers ldlog.Loggers) (*fileSystem, error) {
	opts := httpconfig.Options{
		ProxyURL:     storageOptions[optionProxy].StringValue(),
		NTLMUsername: storageOptions[optionNTLMUser].StringValue(),
		NTLMPassword: storageOptions[optionNTLMPassword].StringValue(),
		NTLMDomain:   storageOptions[optionNTLMDomain].StringValue(),
	}
	if v, ok := storageOptions[optionTimeout]; ok && !v.IsNull() {
		opts.Timeout = time.Duration(v.Float64Value() * float64(time.Second))
	}
	client, err := opts.NewHTTPClient()
	if err != nil {
		return nil, err
	}

	cache := httpcache.NewMemoryCache()
	client.Transport = &httpcache.Transport{
		Cache:               cache,
		MarkCachedResponses: true,
		Transport:           client.Transport,
	}

	headers := make(http.Header)
	if v, ok := storageOptions[optionHeaders]; ok {
		for _, name := range v.Keys(nil) {
			headers.Set(name, v.GetByKey(name).StringValue())
		}
	}
	return &fileSystem{
		scheme:  scheme,
		client:  client,
		cache:   cache,
		headers: headers,
		loggers: loggers,
	}, nil
}

func (f *fileSystem) Protocol() string { return f.scheme }

func (f *fileSystem) url(p string) string { return f.scheme + "://" + p }

func (f *fileSystem) Open(p string, opts dsfs.OpenOptions) (io.ReadCloser, error) {
	resp, err := f.do(http.MethodGet, p)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%s: %w", f.url(p), fs.ErrNotExist)
	}
	if resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("GET %s returned status %d", f.url(p), resp.StatusCode)
	}
	return resp.Body, nil
}

func (f *fileSystem) Create(p string, opts dsfs.OpenOptions) (io.WriteCloser, error) {
	return nil, fmt.Errorf("%s datasets are read-only", f.scheme)
}

func (f *fileSystem) Exists(p string) (bool, error) {
	resp, err := f.do(http.MethodHead, p)
	if err != nil {
		return false, err
	}
	_ = resp.Body.Close()
	if resp.StatusCode == http.StatusMethodNotAllowed {
		// Some static file servers reject HEAD.
		resp, err = f.do(http.MethodGet, p)
		if err != nil {
			return false, err
		}
		_ = resp.Body.Close()
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= 300:
		return false, fmt.Errorf("%s returned status %d", f.url(p), resp.StatusCode)
	}
	return true, nil
}

func (f *fileSystem) Glob(pattern string) ([]string, error) {
	return nil, fmt.Errorf("%s datasets do not support glob patterns", f.scheme)
}

func (f *fileSystem) InvalidateCache(p string) {
	if p == "" {
		return
	}
	f.cache.Delete(f.url(p))
}

func (f *fileSystem) do(method, p string) (*http.Response, error) {
	req, err := http.NewRequest(method, f.url(p), nil)
	if err != nil {
		return nil, err
	}
	for name, values := range f.headers {
		req.Header[name] = values
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, f.url(p), err)
	}
	return resp, nil
}

var _ dsfs.FileSystem = (*fileSystem)(nil)
