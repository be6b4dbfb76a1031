package datasets

import (
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

// Dataset is the format-independent surface shared by every adapter. The
// typed Load and Save methods live on the concrete adapter types (for
// example dscsv.Dataset.Load returns a *dsframe.Frame, dslazy.Dataset.Load
// a *dsframe.LazyFrame), since their signatures differ per adapter.
type Dataset interface {
	// Exists reports whether the current load target exists. Version
	// resolution failure means false, not an error.
	Exists() (bool, error)

	// Release discards cached derived state, including the filesystem's
	// cached listings for this dataset's path.
	Release()

	// Describe returns a diagnostic description of the configuration,
	// suitable for logging. It never includes credentials.
	Describe() ldvalue.Value
}
