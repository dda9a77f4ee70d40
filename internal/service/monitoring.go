package service

import (
	"context"
)

// MonitoringService exposes the live state of paired devices.
type MonitoringService struct {
	reg   *Registry
	store *CapabilityStore
}

func NewMonitoringService(reg *Registry, store *CapabilityStore) *MonitoringService {
	return &MonitoringService{reg: reg, store: store}
}

// GetDeviceState returns the persisted device, its in-memory snapshot and the
// latest capability values.
func (s *MonitoringService) GetDeviceState(ctx context.Context, deviceID string) (DeviceState, error) {
	a, err := s.reg.actor(deviceID)
	if err != nil {
		return DeviceState{}, err
	}
	dev, err := s.reg.Get(ctx, deviceID)
	if err != nil {
		return DeviceState{}, err
	}
	snap := a.Snapshot()
	dev.Available = snap.Available
	return DeviceState{
		Device:       dev,
		Snapshot:     snap,
		Capabilities: s.store.List(deviceID),
	}, nil
}
