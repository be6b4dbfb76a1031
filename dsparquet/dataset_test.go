package dsparquet

import (
	"testing"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	datasets "github.com/datacraft-oss/go-dataset-sdk"
	"github.com/datacraft-oss/go-dataset-sdk/dsframe"
	"github.com/datacraft-oss/go-dataset-sdk/internal/sharedtest"
)

func makeDataset(t *testing.T, config datasets.CommonConfig) *Dataset {
	t.Helper()
	d, err := New(config)
	require.NoError(t, err)
	return d
}

func TestDatasetRoundTrip(t *testing.T) {
	d := makeDataset(t, datasets.CommonConfig{
		Filepath: sharedtest.UniqueMemoryFilepath("cars.parquet"),
	})
	frame := sharedtest.SampleFrame()

	require.NoError(t, d.Save(frame))
	got, err := d.Load()
	require.NoError(t, err)
	assert.True(t, frame.Equal(got))
}

func TestDatasetRoundTripWithNulls(t *testing.T) {
	d := makeDataset(t, datasets.CommonConfig{
		Filepath: sharedtest.UniqueMemoryFilepath("nulls.parquet"),
	})
	frame := sharedtest.SampleFrameWithNulls()

	require.NoError(t, d.Save(frame))
	got, err := d.Load()
	require.NoError(t, err)
	assert.True(t, frame.Equal(got))
}

func TestDatasetLoadMissingFile(t *testing.T) {
	d := makeDataset(t, datasets.CommonConfig{
		Filepath: sharedtest.UniqueMemoryFilepath("missing.parquet"),
	})

	_, err := d.Load()
	require.Error(t, err)
	assert.True(t, datasets.IsNotFound(err), "expected a not-found error, got: %s", err)
}

func TestDatasetRejectsPartitionCols(t *testing.T) {
	d := makeDataset(t, datasets.CommonConfig{
		Filepath: sharedtest.UniqueMemoryFilepath("partitioned.parquet"),
		SaveArgs: map[string]ldvalue.Value{
			"partition_cols": ldvalue.ArrayOf(ldvalue.String("name")),
		},
	})

	err := d.Save(sharedtest.SampleFrame())
	require.Error(t, err)
	assert.Equal(t, datasets.ErrorKindConfiguration, datasets.ErrorKindOf(err))
	assert.Contains(t, err.Error(), "partition_cols")

	exists, existsErr := d.Exists()
	require.NoError(t, existsErr)
	assert.False(t, exists, "nothing should have been written")
}

func TestDatasetLoadColumnsArg(t *testing.T) {
	d := makeDataset(t, datasets.CommonConfig{
		Filepath: sharedtest.UniqueMemoryFilepath("cols.parquet"),
	})
	require.NoError(t, d.Save(sharedtest.SampleFrame()))

	narrowed := makeDataset(t, datasets.CommonConfig{
		Filepath: d.Protocol() + "://" + d.Path(),
		LoadArgs: map[string]ldvalue.Value{
			"columns": ldvalue.ArrayOf(ldvalue.String("name"), ldvalue.String("score")),
		},
	})
	got, err := narrowed.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "score"}, got.Columns())
	assert.Equal(t, 3, got.NumRows())
}

func TestDatasetPreview(t *testing.T) {
	d := makeDataset(t, datasets.CommonConfig{
		Filepath: sharedtest.UniqueMemoryFilepath("preview.parquet"),
	})
	frame := sharedtest.SampleFrame()
	require.NoError(t, d.Save(frame))

	t.Run("bounded row count", func(t *testing.T) {
		preview, err := d.Preview(2)
		require.NoError(t, err)
		assert.Equal(t, frame.Columns(), preview.Columns)
		assert.Equal(t, []int{0, 1}, preview.Index)
		assert.Len(t, preview.Data, 2)
	})

	t.Run("non-positive count uses the default", func(t *testing.T) {
		preview, err := d.Preview(0)
		require.NoError(t, err)
		assert.Len(t, preview.Data, frame.NumRows())
	})

	t.Run("columns load arg narrows the preview", func(t *testing.T) {
		narrowed := makeDataset(t, datasets.CommonConfig{
			Filepath: d.Protocol() + "://" + d.Path(),
			LoadArgs: map[string]ldvalue.Value{
				"columns": ldvalue.ArrayOf(ldvalue.String("age")),
			},
		})
		preview, err := narrowed.Preview(1)
		require.NoError(t, err)
		assert.Equal(t, []string{"age"}, preview.Columns)
		assert.Len(t, preview.Data, 1)
	})

	t.Run("bounded on a large file", func(t *testing.T) {
		big, err := dsframe.NewFrame([]string{"id"}, []dsframe.ColumnType{dsframe.Int})
		require.NoError(t, err)
		for i := 0; i < 100; i++ {
			require.NoError(t, big.AppendRow(ldvalue.Int(i)))
		}
		wide := makeDataset(t, datasets.CommonConfig{
			Filepath: sharedtest.UniqueMemoryFilepath("big-preview.parquet"),
		})
		require.NoError(t, wide.Save(big))

		preview, err := wide.Preview(3)
		require.NoError(t, err)
		require.Len(t, preview.Data, 3)
		assert.Equal(t, []int{0, 1, 2}, preview.Index)
		assert.Equal(t, ldvalue.Int(2), preview.Data[2][0])
	})

	t.Run("missing file", func(t *testing.T) {
		missing := makeDataset(t, datasets.CommonConfig{
			Filepath: sharedtest.UniqueMemoryFilepath("no-preview.parquet"),
		})
		_, err := missing.Preview(1)
		require.Error(t, err)
		assert.True(t, datasets.IsNotFound(err))
	})
}

func TestDatasetCompressionArg(t *testing.T) {
	d := makeDataset(t, datasets.CommonConfig{
		Filepath: sharedtest.UniqueMemoryFilepath("gzip.parquet"),
		SaveArgs: map[string]ldvalue.Value{"compression": ldvalue.String("gzip")},
	})
	frame := sharedtest.SampleFrame()

	require.NoError(t, d.Save(frame))
	got, err := d.Load()
	require.NoError(t, err)
	assert.True(t, frame.Equal(got))
}
