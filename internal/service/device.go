package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"toon_bridge/internal/logger"
	"toon_bridge/internal/models"
	"toon_bridge/internal/repository"
	"toon_bridge/internal/toon"
	"toon_bridge/internal/toonapi"
)

// ErrDeviceNotFound is returned for an id that is not paired.
var ErrDeviceNotFound = errors.New("device not found")

// DeviceClient is the device HTTP surface.
type DeviceClient interface {
	GetThermostatInfo(ctx context.Context) ([]byte, error)
	GetPowerUsage(ctx context.Context) ([]byte, error)
	GetMeterTotals(ctx context.Context) ([]byte, error)
	GetWater(ctx context.Context) ([]byte, error)
	SetSetpoint(ctx context.Context, centiDeg int) error
	ChangeSchemeState(ctx context.Context, state int, temperatureState *int) error
}

var _ DeviceClient = (*toonapi.Client)(nil)

// ClientFactory builds a client whose address is resolved per request.
type ClientFactory func(address toonapi.AddressSource) DeviceClient

// DeviceActor owns the snapshot and availability state of one paired device.
// Fetches and commands may run concurrently; the snapshot is replaced per
// domain so disjoint domains never clobber each other, while overlapping
// fetches of the same domain are last-to-complete-wins.
type DeviceActor struct {
	id      string
	client  DeviceClient
	tracker *toon.Tracker
	caps    CapabilitySink
	avail   AvailabilitySink
	events  repository.EventRepo
	fetches FetchObserver
	log     *logger.Logger

	mu   sync.Mutex
	snap models.DeviceStateSnapshot

	inFlight [numFetchKinds]atomic.Int32

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type actorDeps struct {
	client  DeviceClient
	tracker *toon.Tracker
	caps    CapabilitySink
	avail   AvailabilitySink
	events  repository.EventRepo
	fetches FetchObserver
	log     *logger.Logger
}

func newDeviceActor(id string, d actorDeps) *DeviceActor {
	if d.tracker == nil {
		d.tracker = toon.NewTracker()
	}
	if d.log == nil {
		d.log = logger.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &DeviceActor{
		id:      id,
		client:  d.client,
		tracker: d.tracker,
		caps:    d.caps,
		avail:   d.avail,
		events:  d.events,
		fetches: d.fetches,
		log:     d.log,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// ID returns the device id.
func (d *DeviceActor) ID() string { return d.id }

// Snapshot returns a copy of the current state including availability.
func (d *DeviceActor) Snapshot() models.DeviceStateSnapshot {
	d.mu.Lock()
	snap := d.snap
	d.mu.Unlock()

	state, streak := d.tracker.State()
	snap.Available = state == toon.Available
	snap.UnavailableStreak = streak
	return snap
}

// merge applies a payload to the snapshot and returns what to report.
func (d *DeviceActor) merge(raw []byte) ([]models.CapabilityAssignment, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	next, assignments, err := toon.Merge(d.snap, raw)
	if err == nil || len(assignments) > 0 {
		next.UpdatedAt = time.Now().UTC()
	}
	d.snap = next
	return assignments, err
}

// writeThroughSetpoint records an optimistic target before the device confirms.
func (d *DeviceActor) writeThroughSetpoint(centiDeg int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.snap.ThermostatInfo == nil {
		return
	}
	ti := *d.snap.ThermostatInfo
	ti.TargetTemperatureCentiDeg = centiDeg
	d.snap.ThermostatInfo = &ti
	d.snap.UpdatedAt = time.Now().UTC()
}

// enter registers a request with the actor lifetime. The returned context ends
// when either ctx or the actor does; done must be called when the request is over.
// It fails once Close has started.
func (d *DeviceActor) enter(ctx context.Context) (context.Context, func(), error) {
	d.mu.Lock()
	if d.ctx.Err() != nil {
		d.mu.Unlock()
		return nil, nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, d.id)
	}
	d.wg.Add(1)
	d.mu.Unlock()

	rctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(d.ctx, cancel)
	return rctx, func() {
		stop()
		cancel()
		d.wg.Done()
	}, nil
}

// closed reports whether the device has been removed or shut down.
func (d *DeviceActor) closed() bool {
	return d.ctx.Err() != nil
}

func (d *DeviceActor) report(ctx context.Context, assignments []models.CapabilityAssignment) {
	if d.closed() {
		return
	}
	for _, a := range assignments {
		d.caps.SetCapability(ctx, d.id, a.Capability, a.Value)
	}
}

// observe feeds the outcome of a device request into the availability state.
// A cancelled caller is not a device failure, and a closed actor reports nothing.
func (d *DeviceActor) observe(ctx context.Context, err error) {
	if d.closed() {
		return
	}
	if err == nil {
		if _, changed := d.tracker.Success(); changed {
			d.avail.MarkReachable(ctx, d.id)
		}
		return
	}
	if ctx.Err() != nil {
		return
	}
	tr, changed := d.tracker.Failure(toonapi.IsOffline(err), err.Error())
	if changed {
		d.avail.MarkUnreachable(context.WithoutCancel(ctx), d.id, tr.Reason)
	}
}

// Close cancels running fetches and commands and waits for them to finish.
// Nothing is reported for the device afterwards.
func (d *DeviceActor) Close() {
	d.mu.Lock()
	d.cancel()
	d.mu.Unlock()
	d.wg.Wait()
}

// Wait blocks until all running fetches and commands have finished.
func (d *DeviceActor) Wait() {
	d.wg.Wait()
}
