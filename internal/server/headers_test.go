package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHead(t *testing.T) {
	t.Run("ArrivalOrder", func(t *testing.T) {
		raw := "GET /hello HTTP/1.1\r\nUser-Agent: curl/8.0\r\nHost: localhost\r\nAccept: */*\r\n\r\n"
		hs, err := parseHead([]byte(raw))
		require.NoError(t, err)
		assert.Equal(t, Headers{
			{Name: "User-Agent", Value: "curl/8.0"},
			{Name: "Host", Value: "localhost"},
			{Name: "Accept", Value: "*/*"},
		}, hs)
	})

	t.Run("DuplicatesKeepFirstPositionLastValue", func(t *testing.T) {
		raw := "GET / HTTP/1.1\r\nX-Trace: a\r\nHost: h\r\nx-trace: b\r\nX-TRACE: c\r\n\r\n"
		hs, err := parseHead([]byte(raw))
		require.NoError(t, err)
		assert.Equal(t, Headers{
			{Name: "X-Trace", Value: "c"},
			{Name: "Host", Value: "h"},
		}, hs)
	})

	t.Run("BareLineFeeds", func(t *testing.T) {
		raw := "GET / HTTP/1.1\nHost: h\nAccept: text/plain\n\n"
		hs, err := parseHead([]byte(raw))
		require.NoError(t, err)
		assert.Equal(t, Headers{
			{Name: "Host", Value: "h"},
			{Name: "Accept", Value: "text/plain"},
		}, hs)
	})

	t.Run("ValueWhitespaceTrimmed", func(t *testing.T) {
		raw := "GET / HTTP/1.1\r\nHost:    spaced   \r\n\r\n"
		hs, err := parseHead([]byte(raw))
		require.NoError(t, err)
		assert.Equal(t, Headers{{Name: "Host", Value: "spaced"}}, hs)
	})

	t.Run("NoHeaders", func(t *testing.T) {
		hs, err := parseHead([]byte("GET / HTTP/1.0\r\n\r\n"))
		require.NoError(t, err)
		assert.Empty(t, hs)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := parseHead(nil)
		assert.ErrorIs(t, err, errNoHead)
	})

	t.Run("Unterminated", func(t *testing.T) {
		_, err := parseHead([]byte("GET / HTTP/1.1\r\nHost: h\r\n"))
		assert.Error(t, err)
	})
}

func TestHeadersFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Host = "localhost"
	r.Header.Set("X-B", "2")
	r.Header.Add("X-A", "first")
	r.Header.Add("X-A", "last")

	assert.Equal(t, Headers{
		{Name: "Host", Value: "localhost"},
		{Name: "X-A", Value: "last"},
		{Name: "X-B", Value: "2"},
	}, headersFromRequest(r))
}

func TestRequestHeadersFallsBackWithoutHead(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Host = "localhost"
	assert.Equal(t, Headers{{Name: "Host", Value: "localhost"}}, requestHeaders(r))
}

func TestHeadersGet(t *testing.T) {
	hs := Headers{{Name: "Content-Length", Value: "11"}}
	v, ok := hs.Get("content-length")
	assert.True(t, ok)
	assert.Equal(t, "11", v)
	_, ok = hs.Get("Host")
	assert.False(t, ok)
}
