package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"toon_bridge/internal/service"
	"toon_bridge/internal/toon"
)

func TestThermostatRoutes(t *testing.T) {
	cases := []struct {
		name   string
		path   string
		body   string
		want   thermostatCall
		status string
	}{
		{
			name:   "target temperature",
			path:   "/api/v1/devices/dev-1/target-temperature",
			body:   `{"temperature":21.3}`,
			want:   thermostatCall{method: "SetTargetTemperature", deviceID: "dev-1", degrees: 21.3},
			status: statusTargetSet,
		},
		{
			name:   "state",
			path:   "/api/v1/devices/dev-1/state",
			body:   `{"state":"away","resume_program":true}`,
			want:   thermostatCall{method: "SetState", deviceID: "dev-1", state: "away", resumeProgram: true},
			status: statusStateSet,
		},
		{
			name:   "enable program",
			path:   "/api/v1/devices/dev-1/program/enable",
			want:   thermostatCall{method: "EnableProgram", deviceID: "dev-1"},
			status: statusProgramEnabled,
		},
		{
			name:   "disable program",
			path:   "/api/v1/devices/dev-1/program/disable",
			want:   thermostatCall{method: "DisableProgram", deviceID: "dev-1"},
			status: statusProgramDisabled,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			th := &mockThermostat{}
			r := newTestRouter(&service.Service{Authorization: &mockAuth{}, Thermostat: th})

			w := do(r, http.MethodPost, tc.path, tc.body)
			if w.Code != http.StatusOK {
				t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
			}
			if len(th.calls) != 1 || th.calls[0] != tc.want {
				t.Fatalf("calls=%+v, want %+v", th.calls, tc.want)
			}
			var m map[string]any
			_ = json.Unmarshal(w.Body.Bytes(), &m)
			if m["status"] != tc.status {
				t.Fatalf("status field=%v, want %s", m["status"], tc.status)
			}
		})
	}
}

func TestThermostatRoutes_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid", toon.ErrInvalidArgument, http.StatusBadRequest},
		{"not found", service.ErrDeviceNotFound, http.StatusNotFound},
		{"rejected", &toon.DeviceRejectedError{StatusCode: 200, Message: "failed"}, http.StatusBadGateway},
		{"timeout", &toon.CommunicationError{Op: "setpoint", Err: errors.New("deadline")}, http.StatusGatewayTimeout},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			th := &mockThermostat{err: tc.err}
			r := newTestRouter(&service.Service{Authorization: &mockAuth{}, Thermostat: th})

			w := do(r, http.MethodPost, "/api/v1/devices/dev-1/target-temperature", `{"temperature":19}`)
			if w.Code != tc.code {
				t.Fatalf("status=%d, want %d", w.Code, tc.code)
			}
		})
	}
}

func TestThermostatRoutes_BadBody(t *testing.T) {
	th := &mockThermostat{}
	r := newTestRouter(&service.Service{Authorization: &mockAuth{}, Thermostat: th})

	w := do(r, http.MethodPost, "/api/v1/devices/dev-1/target-temperature", `{"temperature":"warm"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", w.Code)
	}
	if len(th.calls) != 0 {
		t.Fatalf("unexpected calls: %+v", th.calls)
	}
}
