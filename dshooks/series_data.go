package dshooks

// SeriesData is an immutable data type used for passing implementation-specific data between stages in the
// command series.
type SeriesData struct {
	data map[string]any
}

// SeriesDataBuilder should be used by hook implementers to append data.
type SeriesDataBuilder struct {
	data map[string]any
}

// EmptySeriesData returns empty series data. This function is not intended for use by hook implementors.
// Hook implementations should always use NewSeriesDataBuilder.
func EmptySeriesData() SeriesData {
	return SeriesData{
		data: make(map[string]any),
	}
}

// Get gets the value associated with the given key. If there is no value, then ok will be false.
func (b SeriesData) Get(key string) (value any, ok bool) {
	val, ok := b.data[key]
	return val, ok
}

// AsAnyMap returns a copy of the contents of the series data as a map.
func (b SeriesData) AsAnyMap() map[string]any {
	ret := make(map[string]any)
	for key, value := range b.data {
		ret[key] = value
	}
	return ret
}

// NewSeriesDataBuilder creates a SeriesDataBuilder based on the provided SeriesData.
//
//	func(h MyHook) BeforeCommandRun(ctx context.Context, seriesContext CommandSeriesContext,
//		data SeriesData) (SeriesData, error) {
//		// Some hook functionality.
//		return NewSeriesDataBuilder(data).Set("my-key", myValue).Build(), nil
//	}
func NewSeriesDataBuilder(data SeriesData) *SeriesDataBuilder {
	newData := make(map[string]any, len(data.data))
	for k, v := range data.data {
		newData[k] = v
	}
	return &SeriesDataBuilder{
		data: newData,
	}
}

// Set sets the given key to the given value.
func (b *SeriesDataBuilder) Set(key string, value any) *SeriesDataBuilder {
	b.data[key] = value
	return b
}

// Merge copies the keys and values from the given map to the builder.
func (b *SeriesDataBuilder) Merge(newValues map[string]any) *SeriesDataBuilder {
	for k, v := range newValues {
		b.data[k] = v
	}
	return b
}

// Build builds a SeriesData based on the contents of the builder.
func (b *SeriesDataBuilder) Build() SeriesData {
	newData := make(map[string]any, len(b.data))
	for k, v := range b.data {
		newData[k] = v
	}
	return SeriesData{data: newData}
}
