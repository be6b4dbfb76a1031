package hookrunner

import (
	gocontext "context"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	"github.com/datacraft-oss/go-dataset-sdk/dshooks"
)

// CommandExecution represents the state of a running series of command stages.
type CommandExecution struct {
	hooks   []dshooks.Hook
	data    []dshooks.SeriesData
	context dshooks.CommandSeriesContext
	loggers *ldlog.Loggers
}

// BeforeCommandRun executes the BeforeCommandRun stage of registered hooks.
func (e *CommandExecution) BeforeCommandRun(ctx gocontext.Context) {
	e.executeStage(
		false,
		"BeforeCommandRun",
		func(hook dshooks.Hook, data dshooks.SeriesData) (dshooks.SeriesData, error) {
			return hook.BeforeCommandRun(ctx, e.context, data)
		})
}

// AfterCommandRun executes the AfterCommandRun stage of registered hooks. The after stage runs in
// reverse registration order, so the first hook to see a command starting is the last to see it end.
func (e *CommandExecution) AfterCommandRun(ctx gocontext.Context, result dshooks.CommandResult) {
	e.executeStage(
		true,
		"AfterCommandRun",
		func(hook dshooks.Hook, data dshooks.SeriesData) (dshooks.SeriesData, error) {
			return hook.AfterCommandRun(ctx, e.context, data, result)
		})
}

func (e *CommandExecution) executeStage(
	reverse bool,
	stageName string,
	fn func(hook dshooks.Hook, data dshooks.SeriesData) (dshooks.SeriesData, error),
) {
	returnData := make([]dshooks.SeriesData, len(e.hooks))
	indexes := make([]int, len(e.hooks))
	for i := range e.hooks {
		if reverse {
			indexes[i] = len(e.hooks) - 1 - i
		} else {
			indexes[i] = i
		}
	}
	for _, i := range indexes {
		hook := e.hooks[i]
		outData, err := fn(hook, e.data[i])
		if err != nil {
			returnData[i] = e.data[i]
			e.loggers.Errorf(
				"During execution of command \"%s\", an error was encountered in \"%s\" of the \"%s\" hook: %s",
				e.context.Command(),
				stageName,
				hook.Metadata().Name(),
				err.Error())
			continue
		}
		returnData[i] = outData
	}
	e.data = returnData
}
