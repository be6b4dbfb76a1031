package sharedtest

import (
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldlogtest"
)

// NewTestLoggers returns a Loggers instance that captures output for test assertions.
func NewTestLoggers() (ldlog.Loggers, *ldlogtest.MockLog) {
	mockLog := ldlogtest.NewMockLog()
	return mockLog.Loggers, mockLog
}
