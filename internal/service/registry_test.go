package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"toon_bridge/internal/models"
	"toon_bridge/internal/toon"
)

func TestRegistry_AddRunsInitialFetches(t *testing.T) {
	t.Parallel()

	tr := newTestRegistry(func(c *fakeClient) {
		c.respond(FetchThermostat, thermostatPayload, nil)
	})
	defer tr.reg.Close()
	ctx := context.Background()

	d, err := tr.reg.Add(ctx, AddDeviceParams{Name: " Living room ", Address: "192.168.1.10"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if d.ID == "" || d.Name != "Living room" || !d.Available {
		t.Fatalf("unexpected device: %+v", d)
	}
	if _, err := tr.devices.Get(ctx, d.ID); err != nil {
		t.Fatalf("device not persisted: %v", err)
	}

	a, err := tr.reg.actor(d.ID)
	if err != nil {
		t.Fatalf("actor not started: %v", err)
	}
	a.Wait()

	c := tr.client(0)
	for _, k := range FetchKinds {
		if c.calls(k) != 1 {
			t.Fatalf("%s fetched %d times", k, c.calls(k))
		}
	}
	if v, ok := tr.store.Get(d.ID, models.CapTargetTemperature); !ok || v.Value != 21.5 {
		t.Fatalf("store not updated: %+v", v)
	}
	if got, _ := tr.capRepo.List(ctx, d.ID); len(got) != 3 {
		t.Fatalf("expected 3 persisted capabilities, got %+v", got)
	}
	if got := tr.events.types(); !reflect.DeepEqual(got, []string{models.EventPaired}) {
		t.Fatalf("unexpected events: %v", got)
	}
}

func TestRegistry_AddValidates(t *testing.T) {
	t.Parallel()

	tr := newTestRegistry(nil)
	for _, p := range []AddDeviceParams{{Name: "x"}, {Address: "10.0.0.1"}, {Name: " ", Address: " "}} {
		if _, err := tr.reg.Add(context.Background(), p); !errors.Is(err, toon.ErrInvalidArgument) {
			t.Fatalf("%+v: expected ErrInvalidArgument, got %v", p, err)
		}
	}
	if list, _ := tr.reg.List(context.Background()); len(list) != 0 {
		t.Fatalf("nothing may be stored: %+v", list)
	}
}

func TestRegistry_Remove(t *testing.T) {
	t.Parallel()

	tr := newTestRegistry(func(c *fakeClient) {
		c.respond(FetchThermostat, thermostatPayload, nil)
	})
	ctx := context.Background()

	d, err := tr.reg.Add(ctx, AddDeviceParams{Name: "Hall", Address: "10.0.0.7"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := tr.reg.Remove(ctx, d.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if _, err := tr.reg.actor(d.ID); !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("actor must be gone, got %v", err)
	}
	if _, err := tr.reg.Get(ctx, d.ID); !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("device must be gone, got %v", err)
	}
	if len(tr.store.List(d.ID)) != 0 {
		t.Fatalf("cached capabilities must be dropped")
	}
	tr.avail.mu.Lock()
	forgotten := tr.avail.forgotten
	tr.avail.mu.Unlock()
	if !reflect.DeepEqual(forgotten, []string{d.ID}) {
		t.Fatalf("availability sinks must forget the device: %v", forgotten)
	}
	if got := tr.events.types(); !reflect.DeepEqual(got, []string{models.EventPaired, models.EventUnpaired}) {
		t.Fatalf("unexpected events: %v", got)
	}

	if err := tr.reg.Remove(ctx, d.ID); !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("second remove: expected ErrDeviceNotFound, got %v", err)
	}
}

func TestRegistry_RemoveDuringRefreshLeavesNoState(t *testing.T) {
	t.Parallel()

	tr := newTestRegistry(func(c *fakeClient) {
		c.respond(FetchThermostat, thermostatPayload, nil)
		c.block = make(chan struct{})
	})
	ctx := context.Background()
	flows := NewFlowService(tr.reg, tr.store)

	d, err := tr.reg.Add(ctx, AddDeviceParams{Name: "Hall", Address: "10.0.0.7"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	c := tr.client(0)

	actionDone := make(chan error, 1)
	go func() {
		actionDone <- flows.RunAction(ctx, d.ID, ActionUpdateStatus, FlowArgs{})
	}()
	// one thermostat fetch from Init, one from the action
	deadline := time.Now().Add(2 * time.Second)
	for c.calls(FetchThermostat) < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("update_status never reached the device")
		}
		time.Sleep(time.Millisecond)
	}

	removed := make(chan error, 1)
	go func() { removed <- tr.reg.Remove(ctx, d.ID) }()
	select {
	case err := <-removed:
		if err != nil {
			t.Fatalf("remove: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("remove did not return while a refresh was running")
	}
	close(c.block)

	select {
	case err := <-actionDone:
		if err != nil {
			t.Fatalf("update_status: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("update_status did not return")
	}

	if got := tr.store.List(d.ID); len(got) != 0 {
		t.Fatalf("removed device got values back: %+v", got)
	}
	if vals, _ := tr.capRepo.List(ctx, d.ID); len(vals) != 0 {
		t.Fatalf("removed device got persisted values back: %+v", vals)
	}
	if r, u := tr.avail.counts(); r != 0 || u != 0 {
		t.Fatalf("no transition expected after remove, got reachable=%d unreachable=%d", r, u)
	}
}

func TestRegistry_RestoreSeedsState(t *testing.T) {
	t.Parallel()

	dev := models.Device{ID: "dev-1", Name: "Living", Address: "10.0.0.5", Available: false}
	tr := newTestRegistry(func(c *fakeClient) { c.block = make(chan struct{}) }, dev)
	defer tr.reg.Close()
	ctx := context.Background()
	_ = tr.capRepo.Upsert(ctx, models.CapabilityValue{DeviceID: "dev-1", Capability: models.CapMeterGas, Value: 1234.5})

	if err := tr.reg.Restore(ctx); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if v, ok := tr.store.Get("dev-1", models.CapMeterGas); !ok || v.Value != 1234.5 {
		t.Fatalf("persisted value not preloaded: %+v", v)
	}
	a, err := tr.reg.actor("dev-1")
	if err != nil {
		t.Fatalf("actor: %v", err)
	}
	if a.Snapshot().Available {
		t.Fatalf("persisted availability must be restored")
	}

	c := tr.client(0)
	close(c.block)
	a.Wait()

	if !a.Snapshot().Available {
		t.Fatalf("a successful fetch must make the device available")
	}
	if r, _ := tr.avail.counts(); r != 1 {
		t.Fatalf("expected one reachable transition, got %d", r)
	}
	if got, _ := tr.devices.Get(ctx, "dev-1"); !got.Available {
		t.Fatalf("availability must be persisted")
	}
	if got := tr.events.types(); !reflect.DeepEqual(got, []string{models.EventAvailable}) {
		t.Fatalf("unexpected events: %v", got)
	}
}

func TestRegistry_UpdateAddressAppliesToNextRequest(t *testing.T) {
	t.Parallel()

	tr := newTestRegistry(nil, models.Device{ID: "dev-1", Name: "Living", Address: "10.0.0.5", Available: true})
	defer tr.reg.Close()
	ctx := context.Background()
	if err := tr.reg.Restore(ctx); err != nil {
		t.Fatalf("restore: %v", err)
	}
	a, _ := tr.reg.actor("dev-1")
	a.Wait()

	if err := tr.reg.UpdateAddress(ctx, "dev-1", " 10.0.0.9 "); err != nil {
		t.Fatalf("update: %v", err)
	}
	a.Refresh(ctx, FetchThermostat)

	c := tr.client(0)
	c.mu.Lock()
	last := c.addresses[len(c.addresses)-1]
	c.mu.Unlock()
	if last != "10.0.0.9" {
		t.Fatalf("request went to %q", last)
	}

	if err := tr.reg.UpdateAddress(ctx, "dev-1", ""); !errors.Is(err, toon.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if err := tr.reg.UpdateAddress(ctx, "nope", "10.0.0.1"); !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("expected ErrDeviceNotFound, got %v", err)
	}
}

func TestRegistry_Probe(t *testing.T) {
	t.Parallel()

	tr := newTestRegistry(func(c *fakeClient) {
		c.respond(FetchThermostat, thermostatPayload, nil)
	})
	ctx := context.Background()

	res, err := tr.reg.Probe(ctx, "192.168.1.20")
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if res.Address != "192.168.1.20" || res.Thermostat == nil || res.Thermostat.CurrentTemperatureCentiDeg != 2134 {
		t.Fatalf("unexpected probe result: %+v", res)
	}
	if len(res.Capabilities) != 3 {
		t.Fatalf("expected 3 capabilities, got %+v", res.Capabilities)
	}
	if c := tr.client(0); !reflect.DeepEqual(c.addresses, []string{"192.168.1.20"}) {
		t.Fatalf("probe used %v", c.addresses)
	}
	if list, _ := tr.reg.List(ctx); len(list) != 0 {
		t.Fatalf("probe must not pair anything")
	}
	if len(tr.events.types()) != 0 {
		t.Fatalf("probe must not log events")
	}
}

func TestRegistry_ProbeFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		address string
		body    string
		err     error
		check   func(error) bool
	}{
		{
			name:  "empty address",
			check: func(err error) bool { return errors.Is(err, toon.ErrInvalidArgument) },
		},
		{
			name:    "no thermostat block",
			address: "10.0.0.1",
			body:    `{"result":"ok"}`,
			check:   func(err error) bool { return errors.Is(err, toon.ErrMalformedPayload) },
		},
		{
			name:    "unreachable",
			address: "10.0.0.1",
			err:     commErr(),
			check: func(err error) bool {
				var ce *toon.CommunicationError
				return errors.As(err, &ce)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestRegistry(func(c *fakeClient) {
				c.respond(FetchThermostat, tt.body, tt.err)
			})
			_, err := tr.reg.Probe(context.Background(), tt.address)
			if !tt.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
