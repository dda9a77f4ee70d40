package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"toon_bridge/internal/config"
	"toon_bridge/internal/handlers"
	"toon_bridge/internal/logger"
	"toon_bridge/internal/metrics"
	"toon_bridge/internal/mqtt"
	"toon_bridge/internal/repository"
	"toon_bridge/internal/repository/db"
	"toon_bridge/internal/server"
	"toon_bridge/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title        Toon Bridge API
// @version      1.0
// @description  Local bridge for Toon thermostats: pairing, capabilities, commands and event history.
// @host         localhost:8080
// @BasePath     /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	configPath := flag.String("config", "", "path to config file (default configs/config.yml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Init(cfg.LogLevel, cfg.LogFormat)

	conn, err := openDB(cfg, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	kinds, err := pollKinds(cfg.PollKinds)
	if err != nil {
		log.Fatalw("invalid poll.kinds", "err", err)
	}

	opts := service.Options{
		RequestTimeout: cfg.RequestTimeout,
		PollKinds:      kinds,
		Auth:           service.AuthConfig{SigningKey: cfg.SigningKey, TokenTTL: cfg.TokenTTL},
	}

	// optional sinks
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		opts.CapabilitySinks = append(opts.CapabilitySinks, m)
		opts.AvailabilitySinks = append(opts.AvailabilitySinks, m)
		opts.Fetches = m
	}
	var pub *mqtt.Publisher
	if cfg.MQTT.Enabled {
		pub, err = mqtt.Connect(mqtt.Config{
			Broker:      cfg.MQTT.Broker,
			ClientID:    cfg.MQTT.ClientID,
			Username:    cfg.MQTT.Username,
			Password:    cfg.MQTT.Password,
			TopicPrefix: cfg.MQTT.TopicPrefix,
		}, log)
		if err != nil {
			log.Fatalw("failed to connect to mqtt broker", "broker", cfg.MQTT.Broker, "err", err)
		}
		opts.CapabilitySinks = append(opts.CapabilitySinks, pub)
		opts.AvailabilitySinks = append(opts.AvailabilitySinks, pub)
	}

	// wire dependencies
	repos := repository.NewRepository(conn)
	services := service.NewService(repos, log, opts)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seedAvailability(ctx, services, log, m, pub)
	if err := services.Start(ctx); err != nil {
		log.Fatalw("failed to restore devices", "err", err)
	}
	go services.Run(ctx, cfg.PollInterval)

	apiHandler := handlers.NewHandler(services, log)
	if m != nil {
		apiHandler.WithMetrics(cfg.Metrics.Path, m.Handler())
	}

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
	services.Close()
	if pub != nil {
		pub.Close()
	}
}

// openDB initializes the SQLite database using configuration.
func openDB(cfg config.Config, log *logger.Logger) (*sql.DB, error) {
	log.Infow("opening database", "path", cfg.DBPath)
	return db.InitDB(cfg.DBPath)
}

func pollKinds(names []string) ([]service.FetchKind, error) {
	kinds := make([]service.FetchKind, 0, len(names))
	for _, n := range names {
		k, err := service.ParseFetchKind(n)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// seedAvailability publishes the stored availability of every device so
// gauges and retained topics are correct before the first fetch completes.
func seedAvailability(ctx context.Context, services *service.Service, log *logger.Logger, m *metrics.Metrics, pub *mqtt.Publisher) {
	if m == nil && pub == nil {
		return
	}
	devices, err := services.Devices.List(ctx)
	if err != nil {
		log.Errorw("failed to list devices for availability seed", "err", err)
		return
	}
	for _, d := range devices {
		if m != nil {
			m.SetAvailable(d.ID, d.Available)
		}
		if pub != nil {
			pub.SetAvailable(d.ID, d.Available)
		}
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		log.Infow("http server listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
