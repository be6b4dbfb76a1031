package datasets

import (
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

// FSArgs carries extra parameters for the underlying filesystem: Args is
// passed to the filesystem constructor (via the dsfs registry), and
// OpenArgsLoad/OpenArgsSave are passed to the filesystem's Open and Create
// calls respectively.
type FSArgs struct {
	Args         map[string]ldvalue.Value
	OpenArgsLoad map[string]ldvalue.Value
	OpenArgsSave map[string]ldvalue.Value
}

// CommonConfig is the configuration surface shared by every dataset
// adapter. Once an adapter has been constructed from it, the configuration
// is never consulted again, so mutating the maps afterwards has no effect
// on the adapter.
type CommonConfig struct {
	// Filepath is the protocol-qualified location of the data, such as
	// "data/01_raw/cars.csv" or "s3://bucket/raw/cars.parquet". Required.
	Filepath string

	// LoadArgs and SaveArgs are passed through to the underlying codec.
	// Recognized keys are codec-specific and not validated here, except for
	// the exclusions documented by each adapter.
	LoadArgs map[string]ldvalue.Value
	SaveArgs map[string]ldvalue.Value

	// Version enables versioned path resolution when non-nil.
	Version *Version

	// Credentials is merged into the filesystem's storage options. Keys in
	// FSArgs.Args take precedence on conflict.
	Credentials map[string]ldvalue.Value

	// FSArgs carries filesystem constructor and open parameters.
	FSArgs FSArgs

	// Metadata is arbitrary and ignored by the SDK; plugins may consume it.
	Metadata map[string]ldvalue.Value

	// Loggers receives warnings and debug output. The zero value logs to
	// standard error at the default level.
	Loggers ldlog.Loggers
}
