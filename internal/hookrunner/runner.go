package hookrunner

import (
	gocontext "context"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	"github.com/datacraft-oss/go-dataset-sdk/dshooks"
)

// Runner manages the registration and execution of hooks.
type Runner struct {
	hooks   []dshooks.Hook
	loggers ldlog.Loggers
}

// NewRunner creates a new hook runner.
func NewRunner(loggers ldlog.Loggers, hooks []dshooks.Hook) *Runner {
	return &Runner{
		loggers: loggers,
		hooks:   hooks,
	}
}

// AddHooks registers additional hooks after construction.
func (h *Runner) AddHooks(hooks ...dshooks.Hook) {
	h.hooks = append(h.hooks, hooks...)
}

// RunCommand runs the command series surrounding the given command function. A hook error never
// fails the command itself; it is logged and the remaining hooks still run.
func (h *Runner) RunCommand(
	ctx gocontext.Context,
	command string,
	args []string,
	projectPath string,
	fn func() error,
) error {
	if len(h.hooks) == 0 {
		return fn()
	}
	e := h.prepareCommandSeries(command, args, projectPath)
	e.BeforeCommandRun(ctx)
	started := time.Now()
	err := fn()
	e.AfterCommandRun(ctx, dshooks.NewCommandResult(err, time.Since(started)))
	return err
}

// CatalogCreated runs the AfterCatalogCreated stage of registered hooks.
func (h *Runner) CatalogCreated(ctx gocontext.Context, seriesContext dshooks.CatalogSeriesContext) {
	for _, hook := range h.hooks {
		if err := hook.AfterCatalogCreated(ctx, seriesContext); err != nil {
			h.loggers.Errorf(
				"An error was encountered in \"AfterCatalogCreated\" of the \"%s\" hook: %s",
				hook.Metadata().Name(),
				err.Error())
		}
	}
}

// prepareCommandSeries creates a CommandExecution suitable for executing command stages.
func (h *Runner) prepareCommandSeries(command string, args []string, projectPath string) *CommandExecution {
	returnData := make([]dshooks.SeriesData, len(h.hooks))
	for i := range h.hooks {
		returnData[i] = dshooks.EmptySeriesData()
	}
	return &CommandExecution{
		hooks:   h.hooks,
		data:    returnData,
		context: dshooks.NewCommandSeriesContext(command, args, projectPath),
		loggers: &h.loggers,
	}
}
