package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryInt(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "missing uses default", query: "", want: 50},
		{name: "valid value", query: "limit=10", want: 10},
		{name: "below minimum uses default", query: "limit=0", want: 50},
		{name: "above maximum clamps", query: "limit=500", want: 100},
		{name: "malformed uses default", query: "limit=abc", want: 50},
		{name: "negative uses default", query: "limit=-5", want: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/?"+tt.query, nil)
			assert.Equal(t, tt.want, queryInt(r, "limit", 50, 1, 100))
		})
	}
}

func TestClientLimiter(t *testing.T) {
	l := newClientLimiter(0.001, 2)

	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))

	// Each client gets its own bucket.
	assert.True(t, l.Allow("5.6.7.8"))
}

func TestClientLimiterDefaults(t *testing.T) {
	l := newClientLimiter(0, 0)
	assert.True(t, l.Allow("1.2.3.4"))
}

func TestClientKey(t *testing.T) {
	t.Run("remote addr", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "10.0.0.1:5555"
		assert.Equal(t, "10.0.0.1", clientKey(r))
	})

	t.Run("forwarded header wins", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "10.0.0.1:5555"
		r.Header.Set("X-Forwarded-For", "203.0.113.9")
		assert.Equal(t, "203.0.113.9", clientKey(r))
	})

	t.Run("addr without port", func(t *testing.T) {
		r := &http.Request{RemoteAddr: "10.0.0.1", Header: http.Header{}}
		assert.Equal(t, "10.0.0.1", clientKey(r))
	})
}
