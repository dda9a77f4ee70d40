package service

import (
	"context"
	"time"

	"toon_bridge/internal/logger"
	"toon_bridge/internal/models"
	"toon_bridge/internal/repository"
)

// AvailabilitySink is told when a device becomes reachable or unreachable.
type AvailabilitySink interface {
	MarkReachable(ctx context.Context, deviceID string)
	MarkUnreachable(ctx context.Context, deviceID, reason string)
}

// AvailabilityFanout forwards transitions to each sink in order.
type AvailabilityFanout []AvailabilitySink

func (f AvailabilityFanout) MarkReachable(ctx context.Context, deviceID string) {
	for _, s := range f {
		s.MarkReachable(ctx, deviceID)
	}
}

func (f AvailabilityFanout) MarkUnreachable(ctx context.Context, deviceID, reason string) {
	for _, s := range f {
		s.MarkUnreachable(ctx, deviceID, reason)
	}
}

func (f AvailabilityFanout) ForgetDevice(deviceID string) {
	for _, s := range f {
		if fg, ok := s.(DeviceForgetter); ok {
			fg.ForgetDevice(deviceID)
		}
	}
}

// availabilityRecorder persists the flag on the device row and logs the transition.
type availabilityRecorder struct {
	devices repository.DeviceRepo
	events  repository.EventRepo
	log     *logger.Logger
}

func newAvailabilityRecorder(devices repository.DeviceRepo, events repository.EventRepo, log *logger.Logger) *availabilityRecorder {
	return &availabilityRecorder{devices: devices, events: events, log: log}
}

func (r *availabilityRecorder) MarkReachable(ctx context.Context, deviceID string) {
	r.log.Infow("device_available", "device_id", deviceID)
	r.record(ctx, deviceID, true, models.DeviceEvent{
		Type:        models.EventAvailable,
		Description: "Device is reachable again",
	})
}

func (r *availabilityRecorder) MarkUnreachable(ctx context.Context, deviceID, reason string) {
	r.log.Warnw("device_unavailable", "device_id", deviceID, "reason", reason)
	r.record(ctx, deviceID, false, models.DeviceEvent{
		Type:        models.EventUnavailable,
		Description: "Device is unreachable",
		Metadata:    map[string]any{"reason": reason},
	})
}

func (r *availabilityRecorder) record(ctx context.Context, deviceID string, available bool, ev models.DeviceEvent) {
	if err := r.devices.SetAvailable(ctx, deviceID, available); err != nil {
		r.log.Errorw("availability_persist_failed", "device_id", deviceID, "err", err)
	}
	ev.DeviceID = deviceID
	ev.OccurredAt = time.Now().UTC()
	if err := r.events.Append(ctx, ev); err != nil {
		r.log.Errorw("event_append_failed", "device_id", deviceID, "type", ev.Type, "err", err)
	}
}
