// Package geo resolves visitor IP addresses to an approximate location
// using the ipapi.co JSON API. Lookups are best effort: every failure
// yields an empty Location.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"analytics/internal/middleware"
	"analytics/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// DefaultEndpoint is the lookup URL template; %s is replaced by the IP.
const DefaultEndpoint = "https://ipapi.co/%s/json/"

// DefaultTimeout bounds each lookup.
const DefaultTimeout = 5 * time.Second

const maxBodyBytes = 64 << 10

// Location is an approximate visitor location. Any field may be nil.
type Location struct {
	City      *string  `json:"city"`
	Region    *string  `json:"region"`
	Country   *string  `json:"country"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// IsEmpty reports whether no field was resolved.
func (l Location) IsEmpty() bool {
	return l.City == nil && l.Region == nil && l.Country == nil && l.Latitude == nil && l.Longitude == nil
}

// Config configures a Client.
type Config struct {
	Enabled  bool
	Endpoint string
	Timeout  time.Duration
	// HTTPClient overrides the default client; its Timeout is left untouched.
	HTTPClient *http.Client
}

// Client looks up IP locations over HTTP.
type Client struct {
	enabled    bool
	endpoint   string
	httpClient *http.Client
}

// NewClient builds a Client from cfg, filling in defaults.
func NewClient(cfg Config) *Client {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		enabled:    cfg.Enabled,
		endpoint:   endpoint,
		httpClient: httpClient,
	}
}

type ipapiResponse struct {
	Error       bool     `json:"error"`
	Reason      string   `json:"reason"`
	City        string   `json:"city"`
	Region      string   `json:"region"`
	CountryName string   `json:"country_name"`
	Country     string   `json:"country"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// Lookup returns the location of ip. Local, private and malformed addresses
// return an empty Location without any network call.
func (c *Client) Lookup(ctx context.Context, ip string) Location {
	ip = strings.TrimSpace(ip)
	if !c.enabled || ShouldSkip(ip) {
		observability.GeoLookups.WithLabelValues(observability.GeoResultSkipped).Inc()
		return Location{}
	}

	ctx, span := observability.StartClientSpan(ctx, "ipapi", "lookup")
	span.SetAttributes(attribute.String("net.peer.ip", ip))

	loc, err := c.fetch(ctx, ip)
	observability.EndSpan(span, err)

	switch {
	case err != nil:
		observability.GeoLookups.WithLabelValues(observability.GeoResultError).Inc()
		middleware.Logger.DebugContext(ctx, "geo lookup failed",
			slog.String("ip", ip),
			slog.String("error", err.Error()),
		)
		return Location{}
	case loc.IsEmpty():
		observability.GeoLookups.WithLabelValues(observability.GeoResultMiss).Inc()
	default:
		observability.GeoLookups.WithLabelValues(observability.GeoResultHit).Inc()
	}
	return loc
}

func (c *Client) fetch(ctx context.Context, ip string) (Location, error) {
	lookupURL := fmt.Sprintf(c.endpoint, url.PathEscape(ip))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return Location{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Location{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Location{}, fmt.Errorf("geo lookup returned status %d", resp.StatusCode)
	}

	var body ipapiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return Location{}, fmt.Errorf("decoding geo response: %w", err)
	}
	if body.Error {
		return Location{}, fmt.Errorf("geo provider error: %s", body.Reason)
	}

	country := body.CountryName
	if country == "" {
		country = body.Country
	}
	return Location{
		City:      optional(body.City),
		Region:    optional(body.Region),
		Country:   optional(country),
		Latitude:  body.Latitude,
		Longitude: body.Longitude,
	}, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// ShouldSkip reports whether ip cannot be meaningfully geolocated:
// empty, unparsable, loopback, private, link-local or unspecified.
func ShouldSkip(ip string) bool {
	ip = strings.TrimSpace(ip)
	if ip == "" || strings.EqualFold(ip, "localhost") {
		return true
	}
	addr := net.ParseIP(ip)
	if addr == nil {
		return true
	}
	return addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast()
}
