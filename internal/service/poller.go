package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"toon_bridge/internal/logger"
)

// FetchObserver is told about every completed status fetch.
type FetchObserver interface {
	ObserveFetch(deviceID, kind string, ok bool, took time.Duration)
}

// FetchKind identifies one of the device status endpoints.
type FetchKind int

const (
	FetchThermostat FetchKind = iota
	FetchPowerUsage
	FetchMeterTotals
	FetchWater

	numFetchKinds
)

// FetchKinds lists every status fetch in init order.
var FetchKinds = []FetchKind{FetchThermostat, FetchPowerUsage, FetchWater, FetchMeterTotals}

var fetchKindNames = [numFetchKinds]string{
	FetchThermostat:  "thermostat",
	FetchPowerUsage:  "powerusage",
	FetchMeterTotals: "metertotals",
	FetchWater:       "water",
}

func (k FetchKind) String() string {
	if k < 0 || k >= numFetchKinds {
		return fmt.Sprintf("FetchKind(%d)", int(k))
	}
	return fetchKindNames[k]
}

// ParseFetchKind resolves a fetch kind by name.
func ParseFetchKind(s string) (FetchKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range fetchKindNames {
		if name == s {
			return FetchKind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown fetch kind %q", s)
}

func (d *DeviceActor) fetch(ctx context.Context, kind FetchKind) ([]byte, error) {
	switch kind {
	case FetchThermostat:
		return d.client.GetThermostatInfo(ctx)
	case FetchPowerUsage:
		return d.client.GetPowerUsage(ctx)
	case FetchMeterTotals:
		return d.client.GetMeterTotals(ctx)
	case FetchWater:
		return d.client.GetWater(ctx)
	}
	return nil, fmt.Errorf("unknown fetch kind %d", int(kind))
}

// Refresh runs one status fetch and applies it. Errors never reach the caller:
// they are logged and reflected only through availability.
// A removed device is a no-op.
func (d *DeviceActor) Refresh(ctx context.Context, kind FetchKind) {
	ctx, done, err := d.enter(ctx)
	if err != nil {
		d.log.Debugw("device_fetch_skipped_closed", "device_id", d.id, "kind", kind.String())
		return
	}
	defer done()
	d.inFlight[kind].Add(1)
	defer d.inFlight[kind].Add(-1)
	d.refresh(ctx, kind)
}

func (d *DeviceActor) refresh(ctx context.Context, kind FetchKind) {
	start := time.Now()
	raw, err := d.fetch(ctx, kind)
	if d.fetches != nil && ctx.Err() == nil {
		d.fetches.ObserveFetch(d.id, kind.String(), err == nil, time.Since(start))
	}
	if err != nil {
		if ctx.Err() != nil {
			d.log.Debugw("device_fetch_cancelled", "device_id", d.id, "kind", kind.String())
			return
		}
		d.log.Warnw("device_fetch_failed", "device_id", d.id, "kind", kind.String(), "err", err)
		d.observe(ctx, err)
		return
	}

	assignments, mergeErr := d.merge(raw)
	if mergeErr != nil {
		d.log.Warnw("device_payload_malformed", "device_id", d.id, "kind", kind.String(), "err", mergeErr)
	}
	d.report(ctx, assignments)
	d.observe(ctx, nil)
}

// Trigger starts a fetch in the background and returns at once.
func (d *DeviceActor) Trigger(kind FetchKind) {
	d.inFlight[kind].Add(1)
	d.spawn(kind)
}

// poll triggers a fetch unless one of the same kind is still running.
func (d *DeviceActor) poll(kind FetchKind) bool {
	if !d.inFlight[kind].CompareAndSwap(0, 1) {
		return false
	}
	d.spawn(kind)
	return true
}

// spawn runs a fetch whose in-flight count was already taken.
func (d *DeviceActor) spawn(kind FetchKind) {
	ctx, done, err := d.enter(d.ctx)
	if err != nil {
		d.inFlight[kind].Add(-1)
		return
	}
	go func() {
		defer done()
		defer d.inFlight[kind].Add(-1)
		d.refresh(ctx, kind)
	}()
}

// Init triggers every status fetch, as done when a device is added or restored.
func (d *DeviceActor) Init() {
	for _, k := range FetchKinds {
		d.Trigger(k)
	}
}

// PollScheduler drives the periodic status fetches of all paired devices.
type PollScheduler struct {
	devices func() []*DeviceActor
	kinds   []FetchKind
	log     *logger.Logger
}

func NewPollScheduler(reg *Registry, kinds []FetchKind, log *logger.Logger) *PollScheduler {
	if len(kinds) == 0 {
		kinds = FetchKinds
	}
	if log == nil {
		log = logger.Nop()
	}
	return &PollScheduler{devices: reg.actors, kinds: kinds, log: log}
}

// Run ticks at the given interval until ctx is canceled. A non-positive
// interval disables the timer; fetches then only happen on demand.
func (p *PollScheduler) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		p.log.Infow("poller_disabled")
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.tick()
		}
	}
}

func (p *PollScheduler) tick() {
	for _, d := range p.devices() {
		for _, k := range p.kinds {
			if !d.poll(k) {
				p.log.Debugw("poll_skipped_in_flight", "device_id", d.ID(), "kind", k.String())
			}
		}
	}
}
