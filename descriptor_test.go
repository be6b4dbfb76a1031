package datasets

import (
	"strings"
	"testing"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldlogtest"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDescriptorRequiresFilepath(t *testing.T) {
	_, err := NewDescriptor(CommonConfig{})
	require.Error(t, err)
	assert.Equal(t, ErrorKindConfiguration, ErrorKindOf(err))
}

func TestNewDescriptorRejectsVersionedHTTP(t *testing.T) {
	for _, filepath := range []string{
		"http://example.com/data.csv",
		"https://example.com/data.csv",
	} {
		t.Run(filepath, func(t *testing.T) {
			_, err := NewDescriptor(CommonConfig{Filepath: filepath, Version: NewVersion("", "")})
			require.Error(t, err)
			assert.Equal(t, ErrorKindConfiguration, ErrorKindOf(err))
		})
	}
}

func TestNewDescriptorRejectsUnknownProtocol(t *testing.T) {
	_, err := NewDescriptor(CommonConfig{Filepath: "bogus://somewhere/data.csv"})
	require.Error(t, err)
	assert.Equal(t, ErrorKindConfiguration, ErrorKindOf(err))
	assert.Contains(t, err.Error(), "bogus")
}

func TestNewDescriptorSplitsProtocol(t *testing.T) {
	d, err := NewDescriptor(CommonConfig{Filepath: "memory://dir/data.csv"})
	require.NoError(t, err)
	assert.Equal(t, "memory", d.Protocol())
	assert.Equal(t, "dir/data.csv", d.Path())
	assert.Equal(t, "memory", d.FileSystem().Protocol())
}

func TestNewDescriptorMergesStorageOptions(t *testing.T) {
	d, err := NewDescriptor(CommonConfig{
		Filepath: "memory://dir/data.csv",
		Credentials: map[string]ldvalue.Value{
			"key":    ldvalue.String("from-credentials"),
			"secret": ldvalue.String("hunter2"),
		},
		FSArgs: FSArgs{Args: map[string]ldvalue.Value{
			"key": ldvalue.String("from-fs-args"),
		}},
	})
	require.NoError(t, err)
	// Constructor arguments win over credentials on conflict.
	assert.Equal(t, "from-fs-args", d.StorageOptions()["key"].StringValue())
	assert.Equal(t, "hunter2", d.StorageOptions()["secret"].StringValue())
}

func TestNewDescriptorDefaultsAutoMkdirForLocalFiles(t *testing.T) {
	d, err := NewDescriptor(CommonConfig{Filepath: "/tmp/dataset-test/data.csv"})
	require.NoError(t, err)
	assert.Equal(t, ldvalue.Bool(true), d.StorageOptions()["auto_mkdir"])

	dm, err := NewDescriptor(CommonConfig{Filepath: "memory://dir/data.csv"})
	require.NoError(t, err)
	_, present := dm.StorageOptions()["auto_mkdir"]
	assert.False(t, present)
}

func TestNewDescriptorStripsStorageOptionsFromCodecArgs(t *testing.T) {
	mockLog := ldlogtest.NewMockLog()
	d, err := NewDescriptor(CommonConfig{
		Filepath: "memory://dir/data.csv",
		LoadArgs: map[string]ldvalue.Value{
			"storage_options": ldvalue.ObjectBuild().Build(),
			"sep":             ldvalue.String(";"),
		},
		SaveArgs: map[string]ldvalue.Value{
			"storage_options": ldvalue.ObjectBuild().Build(),
		},
		Loggers: mockLog.Loggers,
	})
	require.NoError(t, err)

	_, inLoad := d.LoadArgs()["storage_options"]
	_, inSave := d.SaveArgs()["storage_options"]
	assert.False(t, inLoad)
	assert.False(t, inSave)
	assert.Equal(t, ";", d.LoadArgs()["sep"].StringValue())

	warnings := mockLog.GetOutput(ldlog.Warn)
	require.Len(t, warnings, 2)
	for _, w := range warnings {
		assert.True(t, strings.Contains(w, "storage_options"))
	}
}

func TestDescriptorDescribe(t *testing.T) {
	d, err := NewDescriptor(CommonConfig{
		Filepath: "memory://dir/data.csv",
		LoadArgs: map[string]ldvalue.Value{"sep": ldvalue.String(";")},
		Version:  NewVersion("v1", ""),
		Credentials: map[string]ldvalue.Value{
			"secret": ldvalue.String("hunter2"),
		},
	})
	require.NoError(t, err)

	desc := d.Describe()
	assert.Equal(t, "dir/data.csv", desc.GetByKey("filepath").StringValue())
	assert.Equal(t, "memory", desc.GetByKey("protocol").StringValue())
	assert.Equal(t, ";", desc.GetByKey("load_args").GetByKey("sep").StringValue())
	assert.Equal(t, "v1", desc.GetByKey("version").GetByKey("load").StringValue())
	assert.True(t, desc.GetByKey("version").GetByKey("save").IsNull())
	// No credential material may appear in the description.
	assert.NotContains(t, desc.JSONString(), "hunter2")
}

func TestDescriptorDescribeWith(t *testing.T) {
	d, err := NewDescriptor(CommonConfig{Filepath: "memory://dir/data.csv"})
	require.NoError(t, err)

	desc := d.DescribeWith(map[string]ldvalue.Value{"file_format": ldvalue.String("csv")})
	assert.Equal(t, "csv", desc.GetByKey("file_format").StringValue())
	assert.Equal(t, "memory", desc.GetByKey("protocol").StringValue())
}

func TestDescriptorExists(t *testing.T) {
	d, err := NewDescriptor(CommonConfig{Filepath: "memory://descriptor-exists/data.csv"})
	require.NoError(t, err)

	ok, err := d.Exists()
	require.NoError(t, err)
	assert.False(t, ok)

	w, err := d.FileSystem().Create("descriptor-exists/data.csv", nil)
	require.NoError(t, err)
	_, err = w.Write([]byte("a,b\n1,2\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	ok, err = d.Exists()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDescriptorArgAccessorsReturnCopies(t *testing.T) {
	d, err := NewDescriptor(CommonConfig{
		Filepath: "memory://copies/data.csv",
		LoadArgs: map[string]ldvalue.Value{"sep": ldvalue.String(";")},
		SaveArgs: map[string]ldvalue.Value{"sep": ldvalue.String(";")},
	})
	require.NoError(t, err)

	d.LoadArgs()["sep"] = ldvalue.String("|")
	d.SaveArgs()["injected"] = ldvalue.Bool(true)

	assert.Equal(t, ldvalue.String(";"), d.LoadArgs()["sep"])
	assert.NotContains(t, d.SaveArgs(), "injected")
}
