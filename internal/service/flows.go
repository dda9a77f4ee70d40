package service

import (
	"context"
	"fmt"

	"toon_bridge/internal/models"
	"toon_bridge/internal/toon"
)

// Flow card identifiers.
const (
	ConditionTemperatureStateIs = "temperature_state_is"

	ActionSetTemperatureState = "set_temperature_state"
	ActionEnableProgram       = "enable_program"
	ActionDisableProgram      = "disable_program"
	ActionUpdateStatus        = "update_status"
	ActionUpdatePowerUsage    = "update_powerusage"
	ActionUpdateMeterTotals   = "update_metertotals"
	ActionUpdateWater         = "update_water"
)

// refreshActions maps the update_* actions to the fetch they run.
var refreshActions = map[string]FetchKind{
	ActionUpdateStatus:      FetchThermostat,
	ActionUpdatePowerUsage:  FetchPowerUsage,
	ActionUpdateMeterTotals: FetchMeterTotals,
	ActionUpdateWater:       FetchWater,
}

// FlowService answers rule-engine conditions and runs rule-engine actions.
type FlowService struct {
	reg   *Registry
	store *CapabilityStore
}

func NewFlowService(reg *Registry, store *CapabilityStore) *FlowService {
	return &FlowService{reg: reg, store: store}
}

// TemperatureStateIs reports whether the last known temperature state equals
// state. An unknown state never matches.
func (s *FlowService) TemperatureStateIs(_ context.Context, deviceID, state string) (bool, error) {
	if _, err := s.reg.actor(deviceID); err != nil {
		return false, err
	}
	v, ok := s.store.Get(deviceID, models.CapTemperatureState)
	if !ok || v.Value == nil {
		return false, nil
	}
	current, ok := v.Value.(string)
	return ok && current == state, nil
}

// RunAction runs one flow action. The update_* actions wait for the fetch to
// finish but never fail because of it.
func (s *FlowService) RunAction(ctx context.Context, deviceID, action string, args FlowArgs) error {
	d, err := s.reg.actor(deviceID)
	if err != nil {
		return err
	}
	if kind, ok := refreshActions[action]; ok {
		d.Refresh(ctx, kind)
		return nil
	}
	switch action {
	case ActionSetTemperatureState:
		return d.SetState(ctx, args.State, args.ResumeProgram)
	case ActionEnableProgram:
		return d.EnableProgram(ctx)
	case ActionDisableProgram:
		return d.DisableProgram(ctx)
	}
	return fmt.Errorf("%w: unknown flow action %q", toon.ErrInvalidArgument, action)
}
