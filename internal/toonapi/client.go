// Package toonapi speaks the local HTTP surface of a Toon thermostat.
package toonapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"toon_bridge/internal/toon"
)

// Device endpoints.
const (
	PathThermostat = "/happ_thermstat"
	PathPowerUsage = "/happ_pwrusage"
	PathZwave      = "/hdrv_zwave"
	PathWater      = "/mobile/water_mobile.json"
)

// Scheme states accepted by changeSchemeState.
const (
	SchemeProgramOff      = 0
	SchemeProgramOn       = 1
	SchemeTemporaryChange = 2
)

const (
	DefaultTimeout  = 8 * time.Second
	maxBodyBytes    = 1 << 20 // 1 MB
	dialTimeout     = 5 * time.Second
	offlineErrorKey = "communicationError"
	offlineDesc     = "Error communicating with Toon"
)

// AddressSource yields the device's network address. It is read on every
// request so a changed setting takes effect immediately.
type AddressSource interface {
	Address(ctx context.Context) (string, error)
}

// AddressFunc adapts a function to AddressSource.
type AddressFunc func(ctx context.Context) (string, error)

func (f AddressFunc) Address(ctx context.Context) (string, error) { return f(ctx) }

// StaticAddress is a fixed address.
type StaticAddress string

func (a StaticAddress) Address(context.Context) (string, error) { return string(a), nil }

// Client issues requests against one device.
type Client struct {
	httpClient *http.Client
	address    AddressSource
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient returns a client for the device at address.
func NewClient(address AddressSource, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				DialContext:         (&net.Dialer{Timeout: dialTimeout}).DialContext,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		address: address,
		timeout: DefaultTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// param is a query parameter; order is preserved on the wire.
type param struct{ key, value string }

func encodeQuery(params []param) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, p.key+"="+p.value)
	}
	return strings.Join(parts, "&")
}

// GetThermostatInfo fetches temperatures and the active state.
func (c *Client) GetThermostatInfo(ctx context.Context) ([]byte, error) {
	return c.get(ctx, PathThermostat, []param{{"action", "getThermostatInfo"}})
}

// GetPowerUsage fetches current electricity usage.
func (c *Client) GetPowerUsage(ctx context.Context) ([]byte, error) {
	return c.get(ctx, PathPowerUsage, []param{{"action", "GetCurrentUsage"}})
}

// GetMeterTotals fetches the z-wave device list carrying the meter registers.
func (c *Client) GetMeterTotals(ctx context.Context) ([]byte, error) {
	return c.get(ctx, PathZwave, []param{{"action", "getDevices.json"}})
}

// GetWater fetches the water meter.
func (c *Client) GetWater(ctx context.Context) ([]byte, error) {
	return c.get(ctx, PathWater, nil)
}

// SetSetpoint writes a new target temperature in centi-degrees.
func (c *Client) SetSetpoint(ctx context.Context, centiDeg int) error {
	_, err := c.get(ctx, PathThermostat, []param{
		{"action", "setSetpoint"},
		{"Setpoint", strconv.Itoa(centiDeg)},
	})
	return err
}

// ChangeSchemeState switches the program state. temperatureState is only sent
// when non-nil.
func (c *Client) ChangeSchemeState(ctx context.Context, state int, temperatureState *int) error {
	params := []param{
		{"action", "changeSchemeState"},
		{"state", strconv.Itoa(state)},
	}
	if temperatureState != nil {
		params = append(params, param{"temperatureState", strconv.Itoa(*temperatureState)})
	}
	_, err := c.get(ctx, PathThermostat, params)
	return err
}

// get performs a GET against the device and returns the response body.
// Transport failures and timeouts are *toon.CommunicationError, non-2xx
// answers are *toon.DeviceRejectedError.
func (c *Client) get(ctx context.Context, path string, params []param) ([]byte, error) {
	addr, err := c.address.Address(ctx)
	if err != nil {
		return nil, &toon.CommunicationError{Op: path, Err: fmt.Errorf("resolve device address: %w", err)}
	}
	u := baseURL(addr) + path
	if len(params) > 0 {
		u += "?" + encodeQuery(params)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &toon.CommunicationError{Op: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &toon.CommunicationError{Op: path, Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, &toon.CommunicationError{Op: path, Err: fmt.Errorf("read body: %w", err)}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, rejection(res.StatusCode, body)
	}
	return body, nil
}

// baseURL accepts "host", "host:port" or a full http(s) URL.
func baseURL(addr string) string {
	addr = strings.TrimRight(strings.TrimSpace(addr), "/")
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr
	}
	return "http://" + addr
}

type errorBody struct {
	Error       json.RawMessage `json:"error"`
	Type        string          `json:"type"`
	ErrorCode   string          `json:"errorCode"`
	Description string          `json:"description"`
	Reason      string          `json:"reason"`
}

// rejection builds the DeviceRejectedError for a non-2xx answer, carrying the
// device's own message when the body has one.
func rejection(status int, body []byte) error {
	e := &toon.DeviceRejectedError{StatusCode: status}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		e.Message = errorMessage(eb)
		e.Offline = status == http.StatusInternalServerError &&
			(eb.Type == offlineErrorKey || eb.ErrorCode == offlineErrorKey || eb.Description == offlineDesc)
	}
	if e.Message == "" {
		e.Message = strings.TrimSpace(string(body))
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

func errorMessage(eb errorBody) string {
	if len(eb.Error) > 0 {
		var s string
		if err := json.Unmarshal(eb.Error, &s); err == nil && s != "" {
			return s
		}
		var nested struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(eb.Error, &nested); err == nil && nested.Error != "" {
			return nested.Error
		}
		return string(eb.Error)
	}
	for _, s := range []string{eb.Description, eb.Reason} {
		if s != "" {
			return s
		}
	}
	return ""
}

// IsOffline reports whether err is the device's explicit offline signal.
func IsOffline(err error) bool {
	var rej *toon.DeviceRejectedError
	return errors.As(err, &rej) && rej.Offline
}
