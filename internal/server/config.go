package server

import (
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Config is what the server needs beyond its address.
type Config struct {
	Out          io.Writer
	HeaderFormat HeaderFormat
	ReadTimeout  time.Duration
}

// New builds the request logger server described by cfg.
func New(cfg Config, baseLogger *zap.Logger) *http.Server {
	h := NewHandler(cfg.Out, cfg.HeaderFormat, baseLogger)
	return NewServer(h, cfg.ReadTimeout, baseLogger)
}
