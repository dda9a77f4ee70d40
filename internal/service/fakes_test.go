package service

import (
	"context"
	"sort"
	"sync"

	"toon_bridge/internal/models"
	"toon_bridge/internal/repository"
	"toon_bridge/internal/toonapi"
)

type fakeResponse struct {
	body string
	err  error
}

type schemeCall struct {
	state            int
	temperatureState *int
}

// fakeClient is a scripted DeviceClient.
type fakeClient struct {
	mu sync.Mutex

	src       toonapi.AddressSource
	addresses []string

	responses  map[FetchKind]fakeResponse
	fetchCalls map[FetchKind]int
	block      chan struct{} // fetches wait on it when set

	cmdErr    error
	setpoints []int
	schemes   []schemeCall
	onCommand func()
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		responses:  make(map[FetchKind]fakeResponse),
		fetchCalls: make(map[FetchKind]int),
	}
}

func (f *fakeClient) respond(kind FetchKind, body string, err error) {
	f.mu.Lock()
	f.responses[kind] = fakeResponse{body: body, err: err}
	f.mu.Unlock()
}

func (f *fakeClient) resolve(ctx context.Context) {
	if f.src == nil {
		return
	}
	addr, _ := f.src.Address(ctx)
	f.mu.Lock()
	f.addresses = append(f.addresses, addr)
	f.mu.Unlock()
}

func (f *fakeClient) get(ctx context.Context, kind FetchKind) ([]byte, error) {
	f.resolve(ctx)
	f.mu.Lock()
	f.fetchCalls[kind]++
	resp, ok := f.responses[kind]
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !ok {
		return []byte(`{"result":"ok"}`), nil
	}
	if resp.err != nil {
		return nil, resp.err
	}
	return []byte(resp.body), nil
}

func (f *fakeClient) calls(kind FetchKind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls[kind]
}

func (f *fakeClient) GetThermostatInfo(ctx context.Context) ([]byte, error) {
	return f.get(ctx, FetchThermostat)
}

func (f *fakeClient) GetPowerUsage(ctx context.Context) ([]byte, error) {
	return f.get(ctx, FetchPowerUsage)
}

func (f *fakeClient) GetMeterTotals(ctx context.Context) ([]byte, error) {
	return f.get(ctx, FetchMeterTotals)
}

func (f *fakeClient) GetWater(ctx context.Context) ([]byte, error) {
	return f.get(ctx, FetchWater)
}

func (f *fakeClient) SetSetpoint(ctx context.Context, centiDeg int) error {
	f.resolve(ctx)
	if f.onCommand != nil {
		f.onCommand()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setpoints = append(f.setpoints, centiDeg)
	return f.cmdErr
}

func (f *fakeClient) ChangeSchemeState(ctx context.Context, state int, temperatureState *int) error {
	f.resolve(ctx)
	if f.onCommand != nil {
		f.onCommand()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.schemes = append(f.schemes, schemeCall{state: state, temperatureState: temperatureState})
	return f.cmdErr
}

type capSet struct {
	deviceID   string
	capability string
	value      any
}

// recordingCaps remembers every capability write.
type recordingCaps struct {
	mu   sync.Mutex
	sets []capSet
}

func (r *recordingCaps) SetCapability(_ context.Context, deviceID, capability string, value any) {
	r.mu.Lock()
	r.sets = append(r.sets, capSet{deviceID, capability, value})
	r.mu.Unlock()
}

func (r *recordingCaps) last(capability string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.sets) - 1; i >= 0; i-- {
		if r.sets[i].capability == capability {
			return r.sets[i].value, true
		}
	}
	return nil, false
}

func (r *recordingCaps) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sets)
}

// recordingAvail remembers availability transitions.
type recordingAvail struct {
	mu          sync.Mutex
	reachable   int
	unreachable []string
	forgotten   []string
}

func (r *recordingAvail) MarkReachable(context.Context, string) {
	r.mu.Lock()
	r.reachable++
	r.mu.Unlock()
}

func (r *recordingAvail) MarkUnreachable(_ context.Context, _ string, reason string) {
	r.mu.Lock()
	r.unreachable = append(r.unreachable, reason)
	r.mu.Unlock()
}

func (r *recordingAvail) ForgetDevice(id string) {
	r.mu.Lock()
	r.forgotten = append(r.forgotten, id)
	r.mu.Unlock()
}

func (r *recordingAvail) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reachable, len(r.unreachable)
}

// fakeDeviceRepo is an in-memory repository.DeviceRepo.
type fakeDeviceRepo struct {
	mu      sync.Mutex
	devices map[string]models.Device
	deleted []string
}

func newFakeDeviceRepo(devs ...models.Device) *fakeDeviceRepo {
	r := &fakeDeviceRepo{devices: make(map[string]models.Device)}
	for _, d := range devs {
		r.devices[d.ID] = d
	}
	return r
}

func (r *fakeDeviceRepo) Create(_ context.Context, d models.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices[d.ID] = d
	return nil
}

func (r *fakeDeviceRepo) Get(_ context.Context, id string) (models.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.devices[id]
	if !ok {
		return models.Device{}, repository.ErrNotFound
	}
	return d, nil
}

func (r *fakeDeviceRepo) List(context.Context) ([]models.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Device, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeDeviceRepo) Address(ctx context.Context, id string) (string, error) {
	d, err := r.Get(ctx, id)
	return d.Address, err
}

func (r *fakeDeviceRepo) UpdateAddress(_ context.Context, id, address string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.devices[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.Address = address
	r.devices[id] = d
	return nil
}

func (r *fakeDeviceRepo) SetAvailable(_ context.Context, id string, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.devices[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.Available = available
	r.devices[id] = d
	return nil
}

func (r *fakeDeviceRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.devices[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.devices, id)
	r.deleted = append(r.deleted, id)
	return nil
}

// fakeCapabilityRepo is an in-memory repository.CapabilityRepo.
type fakeCapabilityRepo struct {
	mu     sync.Mutex
	values map[string][]models.CapabilityValue
}

func newFakeCapabilityRepo() *fakeCapabilityRepo {
	return &fakeCapabilityRepo{values: make(map[string][]models.CapabilityValue)}
}

func (r *fakeCapabilityRepo) Upsert(_ context.Context, v models.CapabilityValue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	vals := r.values[v.DeviceID]
	for i := range vals {
		if vals[i].Capability == v.Capability {
			vals[i] = v
			return nil
		}
	}
	r.values[v.DeviceID] = append(vals, v)
	return nil
}

func (r *fakeCapabilityRepo) List(_ context.Context, deviceID string) ([]models.CapabilityValue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.CapabilityValue(nil), r.values[deviceID]...), nil
}

// testActor builds an actor wired to recording sinks.
func testActor(client DeviceClient) (*DeviceActor, *recordingCaps, *recordingAvail, *fakeEventRepo) {
	caps := &recordingCaps{}
	avail := &recordingAvail{}
	events := &fakeEventRepo{}
	a := newDeviceActor("dev-1", actorDeps{
		client: client,
		caps:   caps,
		avail:  avail,
		events: events,
	})
	return a, caps, avail, events
}

type testRegistry struct {
	reg     *Registry
	store   *CapabilityStore
	devices *fakeDeviceRepo
	capRepo *fakeCapabilityRepo
	events  *fakeEventRepo
	avail   *recordingAvail

	mu      sync.Mutex
	clients []*fakeClient
	script  func(*fakeClient)
}

// newTestRegistry builds a registry whose clients are fakeClients prepared by script.
func newTestRegistry(script func(*fakeClient), devs ...models.Device) *testRegistry {
	tr := &testRegistry{
		store:   NewCapabilityStore(),
		devices: newFakeDeviceRepo(devs...),
		capRepo: newFakeCapabilityRepo(),
		events:  &fakeEventRepo{},
		avail:   &recordingAvail{},
		script:  script,
	}
	repos := &repository.Repository{
		Devices:      tr.devices,
		Capabilities: tr.capRepo,
		Events:       tr.events,
	}
	tr.reg = NewRegistry(repos, tr.store, nil, RegistryOptions{
		NewClient: func(src toonapi.AddressSource) DeviceClient {
			c := newFakeClient()
			c.src = src
			if tr.script != nil {
				tr.script(c)
			}
			tr.mu.Lock()
			tr.clients = append(tr.clients, c)
			tr.mu.Unlock()
			return c
		},
		AvailabilitySinks: []AvailabilitySink{tr.avail},
	})
	return tr
}

func (tr *testRegistry) client(i int) *fakeClient {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.clients[i]
}
