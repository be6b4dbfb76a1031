package dstelemetry

import (
	"context"
	"runtime"
	"strings"
	"sync"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/datacraft-oss/go-dataset-sdk/dshooks"
)

const telemetryVersion = "1.0.0"

const optOutNotice = "Anonymous usage data is being collected with the sole purpose of improving the product. " +
	"No personal data or IP addresses are stored on our side. " +
	"If you want to opt out, set the DISABLE_TELEMETRY or DO_NOT_TRACK environment variables, " +
	"or create a .telemetry file in the project root with the contents `consent: false`."

// TelemetryHook is a dshooks.Hook that reports anonymized usage events:
// one per CLI command run and one per catalog construction. All failures
// are contained; the hook never returns an error to the host.
type TelemetryHook struct {
	processor    *Processor
	config       Config
	vocabulary   []string
	checkConsent func(projectPath string) bool

	noticeOnce sync.Once

	identityOnce sync.Once
	identity     string
	userID       string
}

// NewTelemetryHook creates the telemetry hook. The vocabulary lists the
// command verbs and flag names that may appear unmasked in events; any
// argument outside it is replaced with MaskToken.
func NewTelemetryHook(config Config, vocabulary []string) *TelemetryHook {
	return &TelemetryHook{
		processor:    NewProcessor(config),
		config:       config,
		vocabulary:   vocabulary,
		checkConsent: CheckConsent,
	}
}

// Metadata returns the hook's metadata.
func (h *TelemetryHook) Metadata() dshooks.Metadata {
	return dshooks.NewMetadata("datacraft-telemetry")
}

// BeforeCommandRun implements the command series. The event itself is sent
// from AfterCommandRun, where the outcome is known.
func (h *TelemetryHook) BeforeCommandRun(
	_ context.Context,
	seriesContext dshooks.CommandSeriesContext,
	data dshooks.SeriesData,
) (dshooks.SeriesData, error) {
	if h.consented(seriesContext.ProjectPath()) {
		h.noticeOnce.Do(func() {
			h.config.Loggers.Info(optOutNotice)
		})
	}
	return data, nil
}

// AfterCommandRun implements the command series, reporting one "CLI command"
// event with masked arguments.
func (h *TelemetryHook) AfterCommandRun(
	_ context.Context,
	seriesContext dshooks.CommandSeriesContext,
	data dshooks.SeriesData,
	result dshooks.CommandResult,
) (dshooks.SeriesData, error) {
	if !h.consented(seriesContext.ProjectPath()) {
		return data, nil
	}
	maskedArgs := MaskCommandArgs(seriesContext.Args(), h.vocabulary)
	properties := h.baseProperties()
	properties["command"] = ldvalue.String(strings.TrimSpace(seriesContext.Command() + " " + strings.Join(maskedArgs, " ")))
	properties["main_command"] = ldvalue.String(seriesContext.Command())
	properties["success"] = ldvalue.Bool(result.Succeeded())
	properties["duration_ms"] = ldvalue.Int(int(result.Duration().Milliseconds()))
	h.processor.SendEvent(NewEvent("CLI command", h.userIdentity(), properties))
	return data, nil
}

// AfterCatalogCreated implements the catalog series, reporting one
// "Catalog statistics" event built from the catalog summary.
func (h *TelemetryHook) AfterCatalogCreated(
	_ context.Context,
	seriesContext dshooks.CatalogSeriesContext,
) error {
	if !h.consented(seriesContext.ProjectPath()) {
		return nil
	}
	properties := h.baseProperties()
	summary := seriesContext.Summary()
	for _, k := range summary.Keys(nil) {
		properties[k] = summary.GetByKey(k)
	}
	h.processor.SendEvent(NewEvent("Catalog statistics", h.userIdentity(), properties))
	return nil
}

// Flush asks the underlying processor to post pending events.
func (h *TelemetryHook) Flush() {
	h.processor.Flush()
}

// Close flushes pending events and shuts the hook down.
func (h *TelemetryHook) Close() error {
	return h.processor.Close()
}

func (h *TelemetryHook) consented(projectPath string) bool {
	return h.checkConsent(projectPath)
}

func (h *TelemetryHook) baseProperties() map[string]ldvalue.Value {
	h.computeIdentity()
	return map[string]ldvalue.Value{
		"username":          ldvalue.String(h.userID),
		"identity":          ldvalue.String(h.identity),
		"telemetry_version": ldvalue.String(telemetryVersion),
		"os":                ldvalue.String(runtime.GOOS),
		"arch":              ldvalue.String(runtime.GOARCH),
		"is_ci_env":         ldvalue.Bool(IsKnownCIEnv()),
	}
}

func (h *TelemetryHook) userIdentity() string {
	h.computeIdentity()
	return h.userID
}

// Identity lookups touch the OS and the user's config directory, so they
// are done once and only when the first consented event is produced.
func (h *TelemetryHook) computeIdentity() {
	h.identityOnce.Do(func() {
		h.identity = HashedIdentity()
		h.userID = GetOrCreateUserID()
	})
}

var _ dshooks.Hook = (*TelemetryHook)(nil)
