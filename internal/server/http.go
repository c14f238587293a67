package server

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// NewServer wraps handler in an HTTP/1.x server that closes every connection
// after one response. Serve it on a listener from Listen so that connections
// are handled strictly one after another.
func NewServer(handler http.Handler, readTimeout time.Duration, baseLogger *zap.Logger) *http.Server {
	s := &http.Server{
		Handler:     otelhttp.NewHandler(handler, "waiter"),
		ReadTimeout: readTimeout,
		ConnContext: withHead,
		ErrorLog:    zap.NewStdLog(baseLogger.Named("http")),
	}
	s.SetKeepAlivesEnabled(false)
	return s
}
