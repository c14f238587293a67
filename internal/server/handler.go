package server

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/replicate/go/uuid"
	"go.uber.org/zap"
)

const (
	GetResponseBody  = "success!\n"
	PostResponseBody = "POST-success!\n"
)

// Handler prints one summary per request to out. GET and POST are answered
// with a canned plaintext body, a POST that cannot be read gets 400 and any
// other method gets 501.
type Handler struct {
	out    io.Writer
	format HeaderFormat
	logger *zap.Logger
}

func NewHandler(out io.Writer, format HeaderFormat, baseLogger *zap.Logger) *Handler {
	return &Handler{
		out:    out,
		format: format,
		logger: baseLogger.Named("handler"),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := h.logger.Sugar()
	id := requestID()

	s := summary{
		method:  r.Method,
		path:    r.RequestURI,
		client:  r.RemoteAddr,
		headers: requestHeaders(r),
	}
	var status, size int
	switch r.Method {
	case http.MethodGet:
		h.print(s)
		status = respond(w, GetResponseBody)
	case http.MethodPost:
		body, err := readBody(r)
		size = len(body)
		if err != nil {
			s.err = err
			h.print(s)
			status = http.StatusBadRequest
			http.Error(w, err.Error(), status)
			if IsClientError(err) {
				log.Warnw("rejected request", "id", id, "method", r.Method, "path", r.RequestURI, "error", err)
			} else {
				log.Errorw("failed to handle request", "id", id, "method", r.Method, "path", r.RequestURI, "error", err)
			}
			break
		}
		text := string(body)
		s.body = &text
		h.print(s)
		status = respond(w, PostResponseBody)
	default:
		h.print(s)
		status = http.StatusNotImplemented
		http.Error(w, fmt.Sprintf("Unsupported method (%q)", r.Method), status)
	}

	log.Infow("request",
		"id", id,
		"method", r.Method,
		"path", r.RequestURI,
		"client", r.RemoteAddr,
		"status", status,
		"body_size", size,
	)
}

// readBody reads exactly Content-Length bytes and requires them to be UTF-8.
func readBody(r *http.Request) ([]byte, error) {
	n, err := contentLength(r)
	if err != nil {
		return nil, err
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, n))
	if err != nil {
		return body, fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(body)) != n {
		return body, &MalformedRequestError{
			Reason: fmt.Sprintf("body is %d bytes, Content-Length is %d", len(body), n),
		}
	}
	if !utf8.Valid(body) {
		return body, &UndecodableBodyError{MIMEType: mimetype.Detect(body).String(), Size: len(body)}
	}
	return body, nil
}

func contentLength(r *http.Request) (int64, error) {
	v := r.Header.Get("Content-Length")
	if v == "" {
		return 0, &MalformedRequestError{Reason: "missing Content-Length header"}
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, &MalformedRequestError{Reason: "invalid Content-Length header", Err: err}
	}
	if n < 0 {
		return 0, &MalformedRequestError{Reason: fmt.Sprintf("negative Content-Length %d", n)}
	}
	return n, nil
}

func respond(w http.ResponseWriter, body string) int {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	// Client may be gone already, nothing to do about it
	_, _ = io.WriteString(w, body)
	return http.StatusOK
}

type summary struct {
	method  string
	path    string
	client  string
	headers Headers
	body    *string
	err     error
}

func (h *Handler) print(s summary) {
	log := h.logger.Sugar()
	headers, err := h.format.Format(s.headers)
	if err != nil {
		log.Errorw("failed to format headers", "error", err)
		headers = "<unavailable>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Received %s request: %s\n", s.method, s.path)
	fmt.Fprintf(&b, "Client address: %s\n", s.client)
	sep := " "
	if strings.HasPrefix(headers, "\n") {
		sep = ""
	}
	fmt.Fprintf(&b, "Request headers:%s%s\n", sep, headers)
	if s.body != nil {
		fmt.Fprintf(&b, "Request body: %s\n", *s.body)
	}
	if s.err != nil {
		fmt.Fprintf(&b, "Request error: %v\n", s.err)
	}
	if _, err := io.WriteString(h.out, b.String()); err != nil {
		log.Errorw("failed to write request summary", "error", err)
	}
}

func requestID() string {
	u, err := uuid.NewV7()
	if err != nil {
		return ""
	}
	return hex.EncodeToString(u[:])
}

// IsClientError reports whether err was caused by the request itself.
func IsClientError(err error) bool {
	var malformed *MalformedRequestError
	var undecodable *UndecodableBodyError
	return errors.As(err, &malformed) || errors.As(err, &undecodable)
}
