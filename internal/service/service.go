package service

import (
	"context"
	"time"

	"toon_bridge/internal/logger"
	"toon_bridge/internal/models"
	"toon_bridge/internal/repository"
	"toon_bridge/internal/toonapi"
)

type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Devices manages the set of paired devices.
type Devices interface {
	List(ctx context.Context) ([]models.Device, error)
	Get(ctx context.Context, id string) (models.Device, error)
	Add(ctx context.Context, p AddDeviceParams) (models.Device, error)
	Remove(ctx context.Context, id string) error
	UpdateAddress(ctx context.Context, id, address string) error
	Probe(ctx context.Context, address string) (ProbeResult, error)
}

// Thermostat exposes the mutating device operations.
type Thermostat interface {
	SetTargetTemperature(ctx context.Context, deviceID string, degrees float64) error
	SetState(ctx context.Context, deviceID, state string, resumeProgram bool) error
	EnableProgram(ctx context.Context, deviceID string) error
	DisableProgram(ctx context.Context, deviceID string) error
	SetCapability(ctx context.Context, deviceID, capability string, value any) error
}

// Monitoring exposes read-only device state.
type Monitoring interface {
	GetDeviceState(ctx context.Context, deviceID string) (DeviceState, error)
}

// Flows exposes rule-engine conditions and actions.
type Flows interface {
	TemperatureStateIs(ctx context.Context, deviceID, state string) (bool, error)
	RunAction(ctx context.Context, deviceID, action string, args FlowArgs) error
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.DeviceEvent, error)
}

// Poller runs the periodic status fetches. Stop via context cancellation.
type Poller interface {
	Run(ctx context.Context, interval time.Duration)
}

// Service aggregates all sub-services.
type Service struct {
	Devices
	Thermostat
	Monitoring
	Flows
	EventLog
	Poller
	Authorization

	registry *Registry
}

// Options configures NewService.
type Options struct {
	RequestTimeout    time.Duration
	PollKinds         []FetchKind
	Auth              AuthConfig
	CapabilitySinks   []CapabilitySink
	AvailabilitySinks []AvailabilitySink
	Fetches           FetchObserver
	NewClient         ClientFactory
}

func NewService(repos *repository.Repository, log *logger.Logger, opts Options) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if opts.NewClient == nil {
		timeout := opts.RequestTimeout
		opts.NewClient = func(a toonapi.AddressSource) DeviceClient {
			return toonapi.NewClient(a, toonapi.WithTimeout(timeout))
		}
	}

	store := NewCapabilityStore()
	reg := NewRegistry(repos, store, log, RegistryOptions{
		NewClient:         opts.NewClient,
		CapabilitySinks:   opts.CapabilitySinks,
		AvailabilitySinks: opts.AvailabilitySinks,
		Fetches:           opts.Fetches,
	})

	return &Service{
		Devices:       reg,
		Thermostat:    NewThermostatService(reg),
		Monitoring:    NewMonitoringService(reg, store),
		Flows:         NewFlowService(reg, store),
		EventLog:      NewEventLogService(repos.Events),
		Poller:        NewPollScheduler(reg, opts.PollKinds, log),
		Authorization: NewAuthService(repos.Auth, opts.Auth),
		registry:      reg,
	}
}

// Start restores the persisted devices.
func (s *Service) Start(ctx context.Context) error {
	return s.registry.Restore(ctx)
}

// Close stops all device actors.
func (s *Service) Close() {
	s.registry.Close()
}
