// Package dss3 provides the S3 filesystem driver. Importing it registers
// the "s3" protocol, so that datasets whose filepath starts with "s3://"
// resolve against an S3 bucket:
//
//	import _ "github.com/datacraft-oss/go-dataset-sdk/dss3"
//
// The first path segment is the bucket name and the rest is the object key.
// Recognized storage options are "key", "secret", "token", "region",
// "endpoint_url", and "anon"; anything the options leave unset falls back
// to the usual AWS environment and shared-config resolution.
package dss3

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/launchdarkly/ccache"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/datacraft-oss/go-dataset-sdk/dsfs"
)

// Protocol is the protocol prefix served by this package.
const Protocol = "s3"

const (
	optionKey         = "key"
	optionSecret      = "secret"
	optionToken       = "token"
	optionRegion      = "region"
	optionEndpointURL = "endpoint_url"
	optionAnon        = "anon"
)

// Listing and existence results are cached between InvalidateCache calls.
// The TTL is a backstop for writers outside this process.
const (
	listingCacheTTL     = 30 * time.Second
	listingCacheEntries = 1000
)

func init() {
	dsfs.RegisterProtocol(Protocol, func(storageOptions map[string]ldvalue.Value, loggers ldlog.Loggers) (dsfs.FileSystem, error) {
		return newS3FileSystem(storageOptions, loggers)
	})
}

type fileSystem struct {
	client   s3iface.S3API
	uploader *s3manager.Uploader
	loggers  ldlog.Loggers

	cacheLock  sync.Mutex
	cache      *ccache.Cache
	cachedKeys map[string]struct{}
}

func newS3FileSystem(storageOptions map[string]ldvalue.Value, loggers ldlog.Loggers) (*fileSystem, error) {
	config := aws.NewConfig()
	if v, ok := storageOptions[optionRegion]; ok && !v.IsNull() {
		config = config.WithRegion(v.StringValue())
	}
	if v, ok := storageOptions[optionEndpointURL]; ok && !v.IsNull() {
		// Custom endpoints (MinIO, localstack) generally do not support
		// virtual-hosted bucket addressing.
		config = config.WithEndpoint(v.StringValue()).WithS3ForcePathStyle(true)
	}
	if v, ok := storageOptions[optionAnon]; ok && v.BoolValue() {
		config = config.WithCredentials(credentials.AnonymousCredentials)
	} else if v, ok := storageOptions[optionKey]; ok && !v.IsNull() {
		config = config.WithCredentials(credentials.NewStaticCredentials(
			v.StringValue(),
			storageOptions[optionSecret].StringValue(),
			storageOptions[optionToken].StringValue(),
		))
	}
	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            *config,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create AWS session: %w", err)
	}
	client := s3.New(sess)
	return &fileSystem{
		client:     client,
		uploader:   s3manager.NewUploaderWithClient(client),
		loggers:    loggers,
		cache:      ccache.New(ccache.Configure().MaxSize(listingCacheEntries)),
		cachedKeys: make(map[string]struct{}),
	}, nil
}

func (f *fileSystem) Protocol() string { return Protocol }

func (f *fileSystem) Open(p string, opts dsfs.OpenOptions) (io.ReadCloser, error) {
	bucket, key, err := splitBucketKey(p)
	if err != nil {
		return nil, err
	}
	out, err := f.client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("s3 object %s: %w", p, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("could not get s3 object %s: %w", p, err)
	}
	return out.Body, nil
}

// Create returns a writer that buffers the object in memory and uploads it
// on Close. The object becomes visible only after Close succeeds.
func (f *fileSystem) Create(p string, opts dsfs.OpenOptions) (io.WriteCloser, error) {
	bucket, key, err := splitBucketKey(p)
	if err != nil {
		return nil, err
	}
	return &uploadWriter{fs: f, bucket: bucket, key: key}, nil
}

func (f *fileSystem) Exists(p string) (bool, error) {
	cacheKey := "exists\x00" + p
	if item := f.cacheGet(cacheKey); item != nil && !item.Expired() {
		return item.Value().(bool), nil
	}
	bucket, key, err := splitBucketKey(p)
	if err != nil {
		return false, err
	}
	exists := false
	if key == "" {
		exists, err = f.bucketExists(bucket)
	} else {
		_, headErr := f.client.HeadObject(&s3.HeadObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		switch {
		case headErr == nil:
			exists = true
		case isNotFound(headErr):
			// A "directory" exists if any object lives under key/.
			exists, err = f.hasPrefix(bucket, key+"/")
		default:
			err = fmt.Errorf("could not check s3 object %s: %w", p, headErr)
		}
	}
	if err != nil {
		return false, err
	}
	f.cacheSet(cacheKey, exists)
	return exists, nil
}

func (f *fileSystem) Glob(pattern string) ([]string, error) {
	cacheKey := "glob\x00" + pattern
	if item := f.cacheGet(cacheKey); item != nil && !item.Expired() {
		return item.Value().([]string), nil
	}
	bucket, keyPattern, err := splitBucketKey(pattern)
	if err != nil {
		return nil, err
	}
	if strings.ContainsAny(bucket, "*?[") {
		return nil, fmt.Errorf("glob pattern %q: bucket names cannot contain wildcards", pattern)
	}
	prefix := keyPattern
	if i := strings.IndexAny(keyPattern, "*?["); i >= 0 {
		prefix = keyPattern[:i]
	}
	var matches []string
	err = f.client.ListObjectsV2Pages(&s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			key := aws.StringValue(obj.Key)
			if ok, _ := path.Match(keyPattern, key); ok {
				matches = append(matches, bucket+"/"+key)
			}
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("could not list s3 objects for %q: %w", pattern, err)
	}
	f.cacheSet(cacheKey, matches)
	return matches, nil
}

// InvalidateCache drops cached listing and existence results for the bucket
// that p belongs to. An empty path drops everything.
func (f *fileSystem) InvalidateCache(p string) {
	bucket := ""
	if p != "" {
		bucket, _, _ = splitBucketKey(p)
	}
	f.cacheLock.Lock()
	defer f.cacheLock.Unlock()
	for key := range f.cachedKeys {
		if bucket == "" || cacheKeyBucket(key) == bucket {
			f.cache.Delete(key)
			delete(f.cachedKeys, key)
		}
	}
}

// IsDir reports whether p names a bucket or an object-key prefix rather
// than a single object.
func (f *fileSystem) IsDir(p string) (bool, error) {
	bucket, key, err := splitBucketKey(p)
	if err != nil {
		return false, err
	}
	if key == "" {
		return f.bucketExists(bucket)
	}
	if _, err := f.client.HeadObject(&s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err == nil {
		return false, nil
	} else if !isNotFound(err) {
		return false, fmt.Errorf("could not check s3 object %s: %w", p, err)
	}
	return f.hasPrefix(bucket, key+"/")
}

// OpenRandom serves bounded partial reads with ranged GETs, so that parquet
// previews do not download whole objects.
func (f *fileSystem) OpenRandom(p string) (dsfs.ReaderAtCloser, int64, error) {
	bucket, key, err := splitBucketKey(p)
	if err != nil {
		return nil, 0, err
	}
	head, err := f.client.HeadObject(&s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, 0, fmt.Errorf("s3 object %s: %w", p, fs.ErrNotExist)
		}
		return nil, 0, fmt.Errorf("could not check s3 object %s: %w", p, err)
	}
	size := aws.Int64Value(head.ContentLength)
	return &rangeReader{client: f.client, bucket: bucket, key: key, size: size}, size, nil
}

func (f *fileSystem) bucketExists(bucket string) (bool, error) {
	_, err := f.client.HeadBucket(&s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("could not check s3 bucket %s: %w", bucket, err)
	}
	return true, nil
}

func (f *fileSystem) hasPrefix(bucket, prefix string) (bool, error) {
	out, err := f.client.ListObjectsV2(&s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int64(1),
	})
	if err != nil {
		return false, fmt.Errorf("could not list s3 prefix %s/%s: %w", bucket, prefix, err)
	}
	return len(out.Contents) > 0, nil
}

func (f *fileSystem) cacheGet(key string) *ccache.Item {
	f.cacheLock.Lock()
	defer f.cacheLock.Unlock()
	return f.cache.Get(key)
}

func (f *fileSystem) cacheSet(key string, value interface{}) {
	f.cacheLock.Lock()
	defer f.cacheLock.Unlock()
	f.cache.Set(key, value, listingCacheTTL)
	f.cachedKeys[key] = struct{}{}
}

// cacheKeyBucket recovers the bucket name from a cache key of the form
// "kind\x00bucket/key...".
func cacheKeyBucket(cacheKey string) string {
	_, p, ok := strings.Cut(cacheKey, "\x00")
	if !ok {
		return ""
	}
	bucket, _, _ := splitBucketKey(p)
	return bucket
}

func splitBucketKey(p string) (bucket, key string, err error) {
	p = strings.TrimPrefix(p, "/")
	bucket, key, _ = strings.Cut(p, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("s3 path %q has no bucket name", p)
	}
	return bucket, key, nil
}

func isNotFound(err error) bool {
	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return false
	}
	switch aerr.Code() {
	case s3.ErrCodeNoSuchKey, s3.ErrCodeNoSuchBucket, "NotFound":
		return true
	}
	return false
}

// uploadWriter buffers Write calls and performs the upload on Close.
type uploadWriter struct {
	fs     *fileSystem
	bucket string
	key    string
	buf    bytes.Buffer
	closed bool
}

func (w *uploadWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, fs.ErrClosed
	}
	return w.buf.Write(p)
}

func (w *uploadWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	_, err := w.fs.uploader.Upload(&s3manager.UploadInput{
		Bucket: aws.String(w.bucket),
		Key:    aws.String(w.key),
		Body:   bytes.NewReader(w.buf.Bytes()),
	})
	if err != nil {
		return fmt.Errorf("could not upload s3 object %s/%s: %w", w.bucket, w.key, err)
	}
	return nil
}

// rangeReader implements io.ReaderAt with ranged GETs.
type rangeReader struct {
	client s3iface.S3API
	bucket string
	key    string
	size   int64
}

func (r *rangeReader) ReadAt(p []byte, off int64) (int, error) {
	if off >= r.size {
		return 0, io.EOF
	}
	end := off + int64(len(p)) - 1
	if end >= r.size {
		end = r.size - 1
	}
	out, err := r.client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", off, end)),
	})
	if err != nil {
		return 0, fmt.Errorf("could not read s3 object %s/%s: %w", r.bucket, r.key, err)
	}
	defer out.Body.Close() //nolint:errcheck
	n, err := io.ReadFull(out.Body, p[:end-off+1])
	if err != nil {
		return n, err
	}
	if int64(n) < int64(len(p)) {
		return n, io.EOF
	}
	return n, nil
}

func (r *rangeReader) Close() error { return nil }

var (
	_ dsfs.FileSystem   = (*fileSystem)(nil)
	_ dsfs.DirChecker   = (*fileSystem)(nil)
	_ dsfs.RandomAccess = (*fileSystem)(nil)
)
