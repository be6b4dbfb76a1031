package dshooks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptySeriesData(t *testing.T) {
	data := EmptySeriesData()
	assert.Empty(t, data.AsAnyMap())
	_, ok := data.Get("anything")
	assert.False(t, ok)
}

func TestSeriesDataBuilder(t *testing.T) {
	data := NewSeriesDataBuilder(EmptySeriesData()).
		Set("a", 1).
		Merge(map[string]any{"b": 2, "c": 3}).
		Build()

	a, ok := data.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, a)
	assert.Equal(t, map[string]any{"a": 1, "b": 2, "c": 3}, data.AsAnyMap())
}

func TestSeriesDataBuilderPreservesPreviousData(t *testing.T) {
	first := NewSeriesDataBuilder(EmptySeriesData()).Set("a", 1).Build()
	second := NewSeriesDataBuilder(first).Set("b", 2).Build()

	assert.Equal(t, map[string]any{"a": 1}, first.AsAnyMap())
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, second.AsAnyMap())
}

func TestSeriesDataIsCopiedOnRead(t *testing.T) {
	data := NewSeriesDataBuilder(EmptySeriesData()).Set("a", 1).Build()
	m := data.AsAnyMap()
	m["a"] = 99

	a, _ := data.Get("a")
	assert.Equal(t, 1, a)
}

func TestCommandSeriesContext(t *testing.T) {
	args := []string{"--pipeline", "ingest"}
	c := NewCommandSeriesContext("run", args, "/project")

	assert.Equal(t, "run", c.Command())
	assert.Equal(t, args, c.Args())
	assert.Equal(t, "/project", c.ProjectPath())

	// The context holds its own copy of the arguments.
	args[0] = "mutated"
	assert.Equal(t, "--pipeline", c.Args()[0])
}

func TestCommandResult(t *testing.T) {
	ok := NewCommandResult(nil, 2*time.Second)
	assert.True(t, ok.Succeeded())
	assert.NoError(t, ok.Err())
	assert.Equal(t, 2*time.Second, ok.Duration())

	failed := NewCommandResult(assert.AnError, time.Second)
	assert.False(t, failed.Succeeded())
	assert.Equal(t, assert.AnError, failed.Err())
}

func TestMetadata(t *testing.T) {
	m := NewMetadata("my-hook")
	assert.Equal(t, "my-hook", m.Name())
}
