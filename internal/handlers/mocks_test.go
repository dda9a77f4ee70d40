package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"toon_bridge/internal/models"
	"toon_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(_ context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(_ context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockDevices struct {
	list      []models.Device
	device    models.Device
	probe     service.ProbeResult
	err       error
	lastAdd   service.AddDeviceParams
	lastID    string
	lastAddr  string
	removed   int
	addCalled int
}

func (m *mockDevices) List(context.Context) ([]models.Device, error) { return m.list, m.err }
func (m *mockDevices) Get(_ context.Context, id string) (models.Device, error) {
	m.lastID = id
	return m.device, m.err
}
func (m *mockDevices) Add(_ context.Context, p service.AddDeviceParams) (models.Device, error) {
	m.addCalled++
	m.lastAdd = p
	return m.device, m.err
}
func (m *mockDevices) Remove(_ context.Context, id string) error {
	m.lastID = id
	m.removed++
	return m.err
}
func (m *mockDevices) UpdateAddress(_ context.Context, id, address string) error {
	m.lastID, m.lastAddr = id, address
	return m.err
}
func (m *mockDevices) Probe(_ context.Context, address string) (service.ProbeResult, error) {
	m.lastAddr = address
	return m.probe, m.err
}

type thermostatCall struct {
	method        string
	deviceID      string
	degrees       float64
	state         string
	resumeProgram bool
	capability    string
	value         any
}

type mockThermostat struct {
	err   error
	calls []thermostatCall
}

func (m *mockThermostat) SetTargetTemperature(_ context.Context, id string, degrees float64) error {
	m.calls = append(m.calls, thermostatCall{method: "SetTargetTemperature", deviceID: id, degrees: degrees})
	return m.err
}
func (m *mockThermostat) SetState(_ context.Context, id, state string, resumeProgram bool) error {
	m.calls = append(m.calls, thermostatCall{method: "SetState", deviceID: id, state: state, resumeProgram: resumeProgram})
	return m.err
}
func (m *mockThermostat) EnableProgram(_ context.Context, id string) error {
	m.calls = append(m.calls, thermostatCall{method: "EnableProgram", deviceID: id})
	return m.err
}
func (m *mockThermostat) DisableProgram(_ context.Context, id string) error {
	m.calls = append(m.calls, thermostatCall{method: "DisableProgram", deviceID: id})
	return m.err
}
func (m *mockThermostat) SetCapability(_ context.Context, id, capability string, value any) error {
	m.calls = append(m.calls, thermostatCall{method: "SetCapability", deviceID: id, capability: capability, value: value})
	return m.err
}

type mockMonitoring struct {
	mu    sync.Mutex
	state service.DeviceState
	err   error
	calls int
}

func (m *mockMonitoring) GetDeviceState(context.Context, string) (service.DeviceState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.state, m.err
}

func (m *mockMonitoring) setErr(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

type mockFlows struct {
	result     bool
	err        error
	lastState  string
	lastAction string
	lastArgs   service.FlowArgs
}

func (m *mockFlows) TemperatureStateIs(_ context.Context, _ string, state string) (bool, error) {
	m.lastState = state
	return m.result, m.err
}
func (m *mockFlows) RunAction(_ context.Context, _ string, action string, args service.FlowArgs) error {
	m.lastAction = action
	m.lastArgs = args
	return m.err
}

type mockEventLog struct {
	resp []models.DeviceEvent
	err  error
	last service.LogFilter
}

func (m *mockEventLog) List(_ context.Context, f service.LogFilter) ([]models.DeviceEvent, error) {
	m.last = f
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

// do sends an authenticated request through r.
func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
