package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"toon_bridge/internal/logger"
	"toon_bridge/internal/models"
	"toon_bridge/internal/repository"
	"toon_bridge/internal/toon"
	"toon_bridge/internal/toonapi"

	"github.com/google/uuid"
)

// Registry keeps the paired devices and their actors.
type Registry struct {
	devices   repository.DeviceRepo
	capRepo   repository.CapabilityRepo
	events    repository.EventRepo
	store     *CapabilityStore
	caps      CapabilityFanout
	avail     AvailabilityFanout
	fetches   FetchObserver
	newClient ClientFactory
	log       *logger.Logger

	mu      sync.RWMutex
	running map[string]*DeviceActor
}

// RegistryOptions carries the collaborators of a Registry.
type RegistryOptions struct {
	NewClient         ClientFactory
	CapabilitySinks   []CapabilitySink
	AvailabilitySinks []AvailabilitySink
	Fetches           FetchObserver
}

func NewRegistry(repos *repository.Repository, store *CapabilityStore, log *logger.Logger, opts RegistryOptions) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	if opts.NewClient == nil {
		opts.NewClient = func(a toonapi.AddressSource) DeviceClient { return toonapi.NewClient(a) }
	}
	caps := CapabilityFanout{store, newCapabilityRecorder(repos.Capabilities, log)}
	caps = append(caps, opts.CapabilitySinks...)
	avail := AvailabilityFanout{newAvailabilityRecorder(repos.Devices, repos.Events, log)}
	avail = append(avail, opts.AvailabilitySinks...)

	return &Registry{
		devices:   repos.Devices,
		capRepo:   repos.Capabilities,
		events:    repos.Events,
		store:     store,
		caps:      caps,
		avail:     avail,
		fetches:   opts.Fetches,
		newClient: opts.NewClient,
		log:       log,
		running:   make(map[string]*DeviceActor),
	}
}

// Restore starts actors for every persisted device and preloads their
// capability values.
func (r *Registry) Restore(ctx context.Context) error {
	list, err := r.devices.List(ctx)
	if err != nil {
		return fmt.Errorf("list devices: %w", err)
	}
	for _, d := range list {
		values, err := r.capRepo.List(ctx, d.ID)
		if err != nil {
			r.log.Errorw("capability_preload_failed", "device_id", d.ID, "err", err)
		}
		r.store.Load(values)

		a := r.start(d.ID, toon.RestoreTracker(d.Available))
		a.Init()
		r.log.Infow("device_restored", "device_id", d.ID, "name", d.Name, "address", d.Address)
	}
	return nil
}

func (r *Registry) start(id string, tracker *toon.Tracker) *DeviceActor {
	addr := toonapi.AddressFunc(func(ctx context.Context) (string, error) {
		return r.devices.Address(ctx, id)
	})
	a := newDeviceActor(id, actorDeps{
		client:  r.newClient(addr),
		tracker: tracker,
		caps:    r.caps,
		avail:   r.avail,
		events:  r.events,
		fetches: r.fetches,
		log:     r.log,
	})
	r.mu.Lock()
	r.running[id] = a
	r.mu.Unlock()
	return a
}

func (r *Registry) actor(id string) (*DeviceActor, error) {
	r.mu.RLock()
	a, ok := r.running[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}
	return a, nil
}

// actors returns the running actors ordered by id.
func (r *Registry) actors() []*DeviceActor {
	r.mu.RLock()
	out := make([]*DeviceActor, 0, len(r.running))
	for _, a := range r.running {
		out = append(out, a)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Add pairs a new device and runs its initial status fetches.
func (r *Registry) Add(ctx context.Context, p AddDeviceParams) (models.Device, error) {
	name := strings.TrimSpace(p.Name)
	address := strings.TrimSpace(p.Address)
	if name == "" || address == "" {
		return models.Device{}, fmt.Errorf("%w: name and address are required", toon.ErrInvalidArgument)
	}

	now := time.Now().UTC()
	d := models.Device{
		ID:        uuid.NewString(),
		Name:      name,
		Address:   address,
		Available: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.devices.Create(ctx, d); err != nil {
		return models.Device{}, err
	}
	r.appendEvent(ctx, models.DeviceEvent{
		DeviceID:    d.ID,
		Type:        models.EventPaired,
		Description: "Device paired",
		Metadata:    map[string]any{"name": d.Name, "address": d.Address},
	})

	a := r.start(d.ID, toon.NewTracker())
	a.Init()
	r.log.Infow("device_added", "device_id", d.ID, "name", d.Name, "address", d.Address)
	return d, nil
}

// Remove stops the device actor and deletes everything stored for it.
func (r *Registry) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	a, ok := r.running[id]
	delete(r.running, id)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}
	a.Close()

	if err := r.devices.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	r.caps.ForgetDevice(id)
	r.avail.ForgetDevice(id)

	r.appendEvent(ctx, models.DeviceEvent{
		DeviceID:    id,
		Type:        models.EventUnpaired,
		Description: "Device removed",
	})
	r.log.Infow("device_removed", "device_id", id)
	return nil
}

// UpdateAddress changes the network address used by subsequent requests.
func (r *Registry) UpdateAddress(ctx context.Context, id, address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return fmt.Errorf("%w: address is required", toon.ErrInvalidArgument)
	}
	if _, err := r.actor(id); err != nil {
		return err
	}
	if err := r.devices.UpdateAddress(ctx, id, address); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
		}
		return err
	}
	r.log.Infow("device_address_updated", "device_id", id, "address", address)
	return nil
}

func (r *Registry) Get(ctx context.Context, id string) (models.Device, error) {
	d, err := r.devices.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Device{}, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}
	return d, err
}

func (r *Registry) List(ctx context.Context) ([]models.Device, error) {
	return r.devices.List(ctx)
}

// Probe tests a connection to address before pairing. No device state is touched.
func (r *Registry) Probe(ctx context.Context, address string) (ProbeResult, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return ProbeResult{}, fmt.Errorf("%w: address is required", toon.ErrInvalidArgument)
	}
	raw, err := r.newClient(toonapi.StaticAddress(address)).GetThermostatInfo(ctx)
	if err != nil {
		return ProbeResult{}, err
	}
	snap, assignments, err := toon.Merge(models.DeviceStateSnapshot{}, raw)
	if err != nil {
		return ProbeResult{}, err
	}
	if snap.ThermostatInfo == nil {
		return ProbeResult{}, fmt.Errorf("%w: %s did not report thermostat info", toon.ErrMalformedPayload, address)
	}
	return ProbeResult{Address: address, Thermostat: snap.ThermostatInfo, Capabilities: assignments}, nil
}

// Close stops every actor.
func (r *Registry) Close() {
	for _, a := range r.actors() {
		a.Close()
	}
}

func (r *Registry) appendEvent(ctx context.Context, ev models.DeviceEvent) {
	ev.OccurredAt = time.Now().UTC()
	if err := r.events.Append(ctx, ev); err != nil {
		r.log.Errorw("event_append_failed", "device_id", ev.DeviceID, "type", ev.Type, "err", err)
	}
}
