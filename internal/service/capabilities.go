package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"toon_bridge/internal/logger"
	"toon_bridge/internal/models"
	"toon_bridge/internal/repository"
)

// CapabilitySink receives capability values reported for a device. Value may be
// nil and must be accepted. Calls can arrive out of order.
type CapabilitySink interface {
	SetCapability(ctx context.Context, deviceID, capability string, value any)
}

// DeviceForgetter is implemented by sinks that keep per-device state.
type DeviceForgetter interface {
	ForgetDevice(deviceID string)
}

// CapabilityFanout forwards every value to each sink in order.
type CapabilityFanout []CapabilitySink

func (f CapabilityFanout) SetCapability(ctx context.Context, deviceID, capability string, value any) {
	for _, s := range f {
		s.SetCapability(ctx, deviceID, capability, value)
	}
}

func (f CapabilityFanout) ForgetDevice(deviceID string) {
	for _, s := range f {
		if fg, ok := s.(DeviceForgetter); ok {
			fg.ForgetDevice(deviceID)
		}
	}
}

// CapabilityStore holds the latest value per device and capability.
type CapabilityStore struct {
	mu     sync.RWMutex
	values map[string]map[string]models.CapabilityValue
	now    func() time.Time
}

func NewCapabilityStore() *CapabilityStore {
	return &CapabilityStore{
		values: make(map[string]map[string]models.CapabilityValue),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *CapabilityStore) SetCapability(_ context.Context, deviceID, capability string, value any) {
	s.put(models.CapabilityValue{
		DeviceID:   deviceID,
		Capability: capability,
		Value:      value,
		UpdatedAt:  s.now(),
	})
}

func (s *CapabilityStore) put(v models.CapabilityValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dev, ok := s.values[v.DeviceID]
	if !ok {
		dev = make(map[string]models.CapabilityValue, len(models.Capabilities))
		s.values[v.DeviceID] = dev
	}
	dev[v.Capability] = v
}

// Load seeds the store with persisted values.
func (s *CapabilityStore) Load(values []models.CapabilityValue) {
	for _, v := range values {
		s.put(v)
	}
}

// Get returns the latest value of one capability.
func (s *CapabilityStore) Get(deviceID, capability string) (models.CapabilityValue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[deviceID][capability]
	return v, ok
}

// List returns all known values of a device sorted by capability name.
func (s *CapabilityStore) List(deviceID string) []models.CapabilityValue {
	s.mu.RLock()
	out := make([]models.CapabilityValue, 0, len(s.values[deviceID]))
	for _, v := range s.values[deviceID] {
		out = append(out, v)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Capability < out[j].Capability })
	return out
}

func (s *CapabilityStore) ForgetDevice(deviceID string) {
	s.mu.Lock()
	delete(s.values, deviceID)
	s.mu.Unlock()
}

// capabilityRecorder persists capability values.
type capabilityRecorder struct {
	repo repository.CapabilityRepo
	log  *logger.Logger
}

func newCapabilityRecorder(repo repository.CapabilityRepo, log *logger.Logger) *capabilityRecorder {
	return &capabilityRecorder{repo: repo, log: log}
}

func (r *capabilityRecorder) SetCapability(ctx context.Context, deviceID, capability string, value any) {
	err := r.repo.Upsert(ctx, models.CapabilityValue{
		DeviceID:   deviceID,
		Capability: capability,
		Value:      value,
		UpdatedAt:  time.Now().UTC(),
	})
	if err != nil {
		r.log.Errorw("capability_persist_failed", "device_id", deviceID, "capability", capability, "err", err)
	}
}
