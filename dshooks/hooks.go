package dshooks

import (
	"context"
)

// Implementation Note: The Unimplemented struct is provided to simplify hook implementation. It should always
// contain an implementation of all series interfaces. It should not contain the Hook interface directly
// because the implementer should be required to implement Metadata.

// A Hook is used to observe and extend dataset tooling. Hooks are called
// around CLI command execution and after a data catalog is constructed.
//
// In order to avoid implementing unused methods, as well as easing maintenance of compatibility, implementors should
// compose the `Unimplemented`.
//
//	type MyHook struct {
//	  dshooks.Unimplemented
//	}
type Hook interface {
	Metadata() Metadata
	CommandSeries
	CatalogSeries
}

// The CommandSeries is composed of stages, methods that are called around the execution of a CLI command.
type CommandSeries interface {
	// BeforeCommandRun is called before a command's work begins. The method returns SeriesData that will
	// be passed to the AfterCommandRun stage.
	//
	// The SeriesData returned should always contain the previous data as well as any new data which is
	// required for subsequent stage execution.
	BeforeCommandRun(
		ctx context.Context,
		seriesContext CommandSeriesContext,
		data SeriesData,
	) (SeriesData, error)

	// AfterCommandRun is called after a command's work completes, whether or not it succeeded. The result
	// describes the outcome.
	AfterCommandRun(
		ctx context.Context,
		seriesContext CommandSeriesContext,
		data SeriesData,
		result CommandResult,
	) (SeriesData, error)
}

// The CatalogSeries is composed of stages that are called when a data catalog has been constructed.
type CatalogSeries interface {
	// AfterCatalogCreated is called once a catalog has been built and all of its datasets are registered.
	AfterCatalogCreated(
		ctx context.Context,
		seriesContext CatalogSeriesContext,
	) error
}

// hookInterfaces is an interface for implementation by the Unimplemented
type hookInterfaces interface {
	CommandSeries
	CatalogSeries
}

// Unimplemented implements all Hook series methods with empty functions.
// Hook implementors should use this to avoid having to implement empty methods and to ease updates when the Hook
// interface is extended.
//
//	type MyHook struct {
//	  Unimplemented
//	}
//
// The hook should implement at least one stage as well as the Metadata function.
type Unimplemented struct {
}

// BeforeCommandRun is a default implementation of the BeforeCommandRun stage.
func (h Unimplemented) BeforeCommandRun(
	_ context.Context,
	_ CommandSeriesContext,
	data SeriesData,
) (SeriesData, error) {
	return data, nil
}

// AfterCommandRun is a default implementation of the AfterCommandRun stage.
func (h Unimplemented) AfterCommandRun(
	_ context.Context,
	_ CommandSeriesContext,
	data SeriesData,
	_ CommandResult,
) (SeriesData, error) {
	return data, nil
}

// AfterCatalogCreated is a default implementation of the AfterCatalogCreated stage.
func (h Unimplemented) AfterCatalogCreated(
	_ context.Context,
	_ CatalogSeriesContext,
) error {
	return nil
}

var _ hookInterfaces = Unimplemented{}
