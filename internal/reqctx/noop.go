package reqctx

import (
	"net/http"

	"dex-aggregator/internal/ports"

	"github.com/sirupsen/logrus"
)

// noopLogger discards everything; used by tests that don't assert on logs.
type noopLogger struct{}

func (noopLogger) WithField(string, interface{}) ports.Logger { return noopLogger{} }
func (noopLogger) Debugf(string, ...interface{})              {}
func (noopLogger) Infof(string, ...interface{})               {}
func (noopLogger) Warnf(string, ...interface{})               {}
func (noopLogger) Errorf(string, ...interface{})              {}

// noopMetrics discards every counter/timer call.
type noopMetrics struct{}

func (noopMetrics) Count(string, ...string) {}
func (noopMetrics) Timer(string) func()     { return func() {} }

// noopFetcher always fails; tests that need HTTP should inject their own.
type noopFetcher struct{}

func (noopFetcher) Do(*http.Request) (*http.Response, error) {
	return nil, http.ErrHandlerTimeout
}

// Noop is a ports.RequestContext whose logger discards every entry, used in
// unit tests that exercise pipeline stages without caring about telemetry.
type Noop struct{}

func NewNoop() *Noop {
	logrus.SetLevel(logrus.PanicLevel)
	return &Noop{}
}

func (Noop) Logger() ports.Logger       { return noopLogger{} }
func (Noop) Metrics() ports.Metrics     { return noopMetrics{} }
func (Noop) Fetcher() ports.HTTPFetcher { return noopFetcher{} }
