package server

import (
	"bufio"
	"bytes"
	"errors"
	"net/http"
	"net/textproto"
	"slices"
	"strings"
)

var errNoHead = errors.New("request head not recorded")

type Header struct {
	Name  string
	Value string
}

// Headers is an ordered header list with unique, case-insensitive names.
// A repeated name keeps the position of its first occurrence and the value of
// its last one.
type Headers []Header

func (hs *Headers) set(name, value string, index map[string]int) {
	key := textproto.CanonicalMIMEHeaderKey(name)
	if i, ok := index[key]; ok {
		(*hs)[i].Value = value
		return
	}
	index[key] = len(*hs)
	*hs = append(*hs, Header{Name: name, Value: value})
}

// Get returns the value for name, matched case-insensitively.
func (hs Headers) Get(name string) (string, bool) {
	for _, h := range hs {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// parseHead reads header lines from a raw request head in arrival order.
func parseHead(raw []byte) (Headers, error) {
	if len(raw) == 0 {
		return nil, errNoHead
	}
	tp := textproto.NewReader(bufio.NewReader(bytes.NewReader(raw)))
	// Request line
	if _, err := tp.ReadLine(); err != nil {
		return nil, err
	}
	hs := Headers{}
	index := make(map[string]int)
	for {
		line, err := tp.ReadContinuedLine()
		if err != nil {
			return nil, err
		}
		if line == "" {
			return hs, nil
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		hs.set(name, strings.TrimSpace(value), index)
	}
}

// headersFromRequest is used when no raw head is available. net/http keeps
// Host outside of r.Header, so it goes first; the rest are sorted.
func headersFromRequest(r *http.Request) Headers {
	hs := Headers{}
	index := make(map[string]int)
	if r.Host != "" {
		hs.set("Host", r.Host, index)
	}
	names := make([]string, 0, len(r.Header))
	for name := range r.Header {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		values := r.Header[name]
		if len(values) == 0 {
			continue
		}
		hs.set(name, values[len(values)-1], index)
	}
	return hs
}

func requestHeaders(r *http.Request) Headers {
	if hs, err := parseHead(headFromContext(r.Context())); err == nil {
		return hs
	}
	return headersFromRequest(r)
}
