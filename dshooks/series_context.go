package dshooks

import (
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

// CommandSeriesContext contains contextual information for the execution of stages in the command series.
type CommandSeriesContext struct {
	command     string
	args        []string
	projectPath string
}

// NewCommandSeriesContext creates a new CommandSeriesContext. Hook implementations do not need to use this function.
func NewCommandSeriesContext(command string, args []string, projectPath string) CommandSeriesContext {
	return CommandSeriesContext{
		command:     command,
		args:        append([]string(nil), args...),
		projectPath: projectPath,
	}
}

// Command gets the name of the command being run.
func (c CommandSeriesContext) Command() string {
	return c.command
}

// Args gets a copy of the command's arguments, not including the command name itself.
func (c CommandSeriesContext) Args() []string {
	return append([]string(nil), c.args...)
}

// ProjectPath gets the root directory of the project the command runs in.
func (c CommandSeriesContext) ProjectPath() string {
	return c.projectPath
}

// CommandResult describes the outcome of a command run, passed to the AfterCommandRun stage.
type CommandResult struct {
	err      error
	duration time.Duration
}

// NewCommandResult creates a new CommandResult. Hook implementations do not need to use this function.
func NewCommandResult(err error, duration time.Duration) CommandResult {
	return CommandResult{err: err, duration: duration}
}

// Err gets the error the command returned, or nil if it succeeded.
func (r CommandResult) Err() error {
	return r.err
}

// Succeeded reports whether the command completed without an error.
func (r CommandResult) Succeeded() bool {
	return r.err == nil
}

// Duration gets how long the command ran.
func (r CommandResult) Duration() time.Duration {
	return r.duration
}

// CatalogSeriesContext contains contextual information for the execution of stages in the catalog series.
type CatalogSeriesContext struct {
	projectPath string
	summary     ldvalue.Value
}

// NewCatalogSeriesContext creates a new CatalogSeriesContext. The summary is an object value describing
// the catalog's contents, such as dataset counts by type.
func NewCatalogSeriesContext(projectPath string, summary ldvalue.Value) CatalogSeriesContext {
	return CatalogSeriesContext{
		projectPath: projectPath,
		summary:     summary,
	}
}

// ProjectPath gets the root directory of the project the catalog belongs to.
func (c CatalogSeriesContext) ProjectPath() string {
	return c.projectPath
}

// Summary gets the catalog summary.
func (c CatalogSeriesContext) Summary() ldvalue.Value {
	return c.summary
}
