package datasets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitProtocol(t *testing.T) {
	for _, p := range []struct {
		input    string
		protocol string
		rest     string
	}{
		{"s3://bucket/raw/cars.csv", "s3", "bucket/raw/cars.csv"},
		{"S3://bucket/raw/cars.csv", "s3", "bucket/raw/cars.csv"},
		{"https://example.com/data.parquet", "https", "example.com/data.parquet"},
		{"memory://dir/data.csv", "memory", "dir/data.csv"},
		{"/local/data.csv", "file", "/local/data.csv"},
		{"relative/data.csv", "file", "relative/data.csv"},
		{"C://weird/windows/path", "file", "C://weird/windows/path"},
	} {
		t.Run(p.input, func(t *testing.T) {
			protocol, rest := SplitProtocol(p.input)
			assert.Equal(t, p.protocol, protocol)
			assert.Equal(t, p.rest, rest)
		})
	}
}

func TestQualifyPath(t *testing.T) {
	assert.Equal(t, "s3://bucket/key", QualifyPath("s3", "bucket/key"))
	assert.Equal(t, "/local/data.csv", QualifyPath("file", "/local/data.csv"))
}

func TestVersionedPath(t *testing.T) {
	assert.Equal(t, "data/cars.csv/v1/cars.csv", VersionedPath("data/cars.csv", "v1"))
}

func TestVersionTokenOf(t *testing.T) {
	base := "data/cars.csv"
	assert.Equal(t, "v1", versionTokenOf(base, "data/cars.csv/v1/cars.csv"))
	assert.Equal(t, "", versionTokenOf(base, "data/cars.csv/v1/other.csv"))
	assert.Equal(t, "", versionTokenOf(base, "elsewhere/cars.csv/v1/cars.csv"))
	assert.Equal(t, "", versionTokenOf(base, "data/cars.csv"))
}
