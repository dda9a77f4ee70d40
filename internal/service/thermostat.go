package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"toon_bridge/internal/models"
	"toon_bridge/internal/toon"
	"toon_bridge/internal/toonapi"
)

// Command names recorded in the device log.
const (
	cmdSetTargetTemperature = "set_target_temperature"
	cmdSetState             = "set_temperature_state"
	cmdEnableProgram        = "enable_program"
	cmdDisableProgram       = "disable_program"
)

// SetTargetTemperature rounds degrees to the nearest half degree, reports the
// rounded value at once and then writes it to the device.
func (d *DeviceActor) SetTargetTemperature(ctx context.Context, degrees float64) error {
	if degrees == 0 || math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return fmt.Errorf("%w: missing target temperature", toon.ErrInvalidArgument)
	}
	rounded := toon.RoundToHalfDegree(degrees)
	centi := toon.DecimalToCentiDeg(rounded)

	ctx, done, err := d.enter(ctx)
	if err != nil {
		return err
	}
	defer done()

	d.report(ctx, []models.CapabilityAssignment{{Capability: models.CapTargetTemperature, Value: rounded}})
	d.writeThroughSetpoint(centi)

	err = d.client.SetSetpoint(ctx, centi)
	return d.commandDone(ctx, cmdSetTargetTemperature, map[string]any{
		"requested":   degrees,
		"temperature": rounded,
		"setpoint":    centi,
	}, err)
}

// SetState switches the thermostat to a preset until the next program change.
// resumeProgram is recorded but the device request is the same either way.
func (d *DeviceActor) SetState(ctx context.Context, name string, resumeProgram bool) error {
	code, err := toon.CodeForTemperatureState(name)
	if err != nil {
		return err
	}
	ctx, done, err := d.enter(ctx)
	if err != nil {
		return err
	}
	defer done()

	err = d.client.ChangeSchemeState(ctx, toonapi.SchemeTemporaryChange, &code)
	if err == nil {
		d.report(ctx, []models.CapabilityAssignment{{Capability: models.CapTemperatureState, Value: name}})
	}
	return d.commandDone(ctx, cmdSetState, map[string]any{
		"state":          name,
		"state_code":     code,
		"resume_program": resumeProgram,
	}, err)
}

func (d *DeviceActor) EnableProgram(ctx context.Context) error {
	ctx, done, err := d.enter(ctx)
	if err != nil {
		return err
	}
	defer done()
	err = d.client.ChangeSchemeState(ctx, toonapi.SchemeProgramOn, nil)
	return d.commandDone(ctx, cmdEnableProgram, nil, err)
}

func (d *DeviceActor) DisableProgram(ctx context.Context) error {
	ctx, done, err := d.enter(ctx)
	if err != nil {
		return err
	}
	defer done()
	err = d.client.ChangeSchemeState(ctx, toonapi.SchemeProgramOff, nil)
	return d.commandDone(ctx, cmdDisableProgram, nil, err)
}

// commandDone feeds availability, records the outcome and returns err unchanged.
func (d *DeviceActor) commandDone(ctx context.Context, command string, meta map[string]any, err error) error {
	d.observe(ctx, err)

	if meta == nil {
		meta = map[string]any{}
	}
	meta["command"] = command
	ev := models.DeviceEvent{
		DeviceID:    d.id,
		OccurredAt:  time.Now().UTC(),
		Type:        models.EventCommand,
		Description: "Command " + command + " accepted",
		Metadata:    meta,
	}
	if err != nil {
		ev.Type = models.EventCommandFailed
		ev.Description = "Command " + command + " failed"
		meta["error"] = err.Error()
		d.log.Warnw("device_command_failed", "device_id", d.id, "command", command, "err", err)
	} else {
		d.log.Infow("device_command", "device_id", d.id, "command", command)
	}
	if d.events != nil {
		if aerr := d.events.Append(context.WithoutCancel(ctx), ev); aerr != nil {
			d.log.Errorw("event_append_failed", "device_id", d.id, "type", ev.Type, "err", aerr)
		}
	}
	return err
}

// ThermostatService routes commands to the addressed device.
type ThermostatService struct {
	reg *Registry
}

func NewThermostatService(reg *Registry) *ThermostatService {
	return &ThermostatService{reg: reg}
}

func (s *ThermostatService) SetTargetTemperature(ctx context.Context, deviceID string, degrees float64) error {
	d, err := s.reg.actor(deviceID)
	if err != nil {
		return err
	}
	return d.SetTargetTemperature(ctx, degrees)
}

func (s *ThermostatService) SetState(ctx context.Context, deviceID, state string, resumeProgram bool) error {
	d, err := s.reg.actor(deviceID)
	if err != nil {
		return err
	}
	return d.SetState(ctx, state, resumeProgram)
}

func (s *ThermostatService) EnableProgram(ctx context.Context, deviceID string) error {
	d, err := s.reg.actor(deviceID)
	if err != nil {
		return err
	}
	return d.EnableProgram(ctx)
}

func (s *ThermostatService) DisableProgram(ctx context.Context, deviceID string) error {
	d, err := s.reg.actor(deviceID)
	if err != nil {
		return err
	}
	return d.DisableProgram(ctx)
}

// errNotSettable is returned for capabilities that only report values.
var errNotSettable = errors.New("capability is read-only")

// SetCapability handles a write to a settable capability. Only the target
// temperature and the temperature state accept writes.
func (s *ThermostatService) SetCapability(ctx context.Context, deviceID, capability string, value any) error {
	switch capability {
	case models.CapTargetTemperature:
		var degrees float64
		switch v := value.(type) {
		case nil:
		case float64:
			degrees = v
		case int:
			degrees = float64(v)
		default:
			return fmt.Errorf("%w: %s must be a number", toon.ErrInvalidArgument, capability)
		}
		return s.SetTargetTemperature(ctx, deviceID, degrees)
	case models.CapTemperatureState:
		name, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %s must be a string", toon.ErrInvalidArgument, capability)
		}
		return s.SetState(ctx, deviceID, name, false)
	}
	return fmt.Errorf("%w: %s: %w", toon.ErrInvalidArgument, capability, errNotSettable)
}
