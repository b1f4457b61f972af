package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	return NewClient(Config{
		Enabled:  true,
		Endpoint: srv.URL + "/%s/json/",
		Timeout:  200 * time.Millisecond,
	}), &calls
}

func TestShouldSkip(t *testing.T) {
	tests := []struct {
		ip   string
		skip bool
	}{
		{"", true},
		{"   ", true},
		{"localhost", true},
		{"not-an-ip", true},
		{"127.0.0.1", true},
		{"::1", true},
		{"0.0.0.0", true},
		{"10.1.2.3", true},
		{"192.168.0.10", true},
		{"172.16.5.4", true},
		{"169.254.1.1", true},
		{"fe80::1", true},
		{"8.8.8.8", false},
		{"203.0.113.9", false},
		{"2001:4860:4860::8888", false},
	}
	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			assert.Equal(t, tt.skip, ShouldSkip(tt.ip))
		})
	}
}

func TestLookup_Success(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/8.8.8.8/json/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ip":"8.8.8.8","city":"Mountain View","region":"California",
			"country":"US","country_name":"United States","latitude":37.42,"longitude":-122.08}`))
	})

	loc := client.Lookup(context.Background(), "8.8.8.8")
	require.False(t, loc.IsEmpty())
	assert.Equal(t, "Mountain View", *loc.City)
	assert.Equal(t, "California", *loc.Region)
	assert.Equal(t, "United States", *loc.Country)
	assert.InDelta(t, 37.42, *loc.Latitude, 1e-9)
	assert.InDelta(t, -122.08, *loc.Longitude, 1e-9)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestLookup_CountryFallbackAndBlankFields(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"city":"","country":"DE","latitude":52.5}`))
	})

	loc := client.Lookup(context.Background(), "203.0.113.9")
	assert.Nil(t, loc.City)
	assert.Nil(t, loc.Region)
	require.NotNil(t, loc.Country)
	assert.Equal(t, "DE", *loc.Country)
	require.NotNil(t, loc.Latitude)
	assert.Nil(t, loc.Longitude)
}

func TestLookup_FailuresCollapseToEmpty(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"rate limited", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":true,"reason":"RateLimited"}`))
		}},
		{"provider error payload", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"error":true,"reason":"Reserved IP Address","city":"Nowhere"}`))
		}},
		{"garbage body", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>oops</html>`))
		}},
		{"timeout", func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(500 * time.Millisecond)
			_, _ = w.Write([]byte(`{"city":"Too Late"}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, calls := newTestClient(t, tt.handler)
			loc := client.Lookup(context.Background(), "8.8.4.4")
			assert.True(t, loc.IsEmpty())
			assert.Equal(t, int32(1), atomic.LoadInt32(calls))
		})
	}
}

func TestLookup_SkipsWithoutNetwork(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"city":"Should Not Happen"}`))
	})

	for _, ip := range []string{"127.0.0.1", "::1", "", "192.168.1.1"} {
		assert.True(t, client.Lookup(context.Background(), ip).IsEmpty())
	}
	assert.Zero(t, atomic.LoadInt32(calls))
}

func TestLookup_Disabled(t *testing.T) {
	client := NewClient(Config{Enabled: false, Endpoint: "http://127.0.0.1:1/%s"})
	assert.True(t, client.Lookup(context.Background(), "8.8.8.8").IsEmpty())
}
