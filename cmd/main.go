package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mycenter/adapters/grpchealth"
	"mycenter/adapters/h2conn"
	"mycenter/adapters/memstore"
	"mycenter/adapters/myredis"
	"mycenter/domain"
	"mycenter/handlers"
	"mycenter/helpers"
	"mycenter/interfaces"
	"mycenter/service"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/go-redis/redis/v8"
	"github.com/hashicorp/go-metrics"
	"github.com/labstack/echo/v4"
	"google.golang.org/grpc"
)

func main() {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.WithPrefix(logger, "ts", log.DefaultTimestampUTC)
	logger = log.WithPrefix(logger, "caller", log.DefaultCaller)

	level.Info(logger).Log("msg", "Starting mycenter gateway")

	config, err := LoadConfig()
	if err != nil {
		level.Error(logger).Log("msg", "Failed to load configuration", "err", err)
		os.Exit(1)
	}
	level.Info(logger).Log(
		"msg", "Configuration loaded",
		"service_port_http", config.HTTPPort,
		"admin_port_http", config.AdminPort,
		"health_port_grpc", config.HealthPort,
		"redis_addr", config.Redis.Addr,
		"tls", config.TLS.Enabled(),
		"reconnect_delay", config.Registry.ReconnectDelay,
		"reconnect_attempts", config.Registry.ReconnectAttempts,
	)

	// In-memory metrics, dumped to stderr on SIGUSR1.
	inmem := metrics.NewInmemSink(10*time.Second, time.Minute)
	inmemSignal := metrics.DefaultInmemSignal(inmem)
	defer inmemSignal.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var observers []interfaces.RegistryObserver

	var redisClient redis.UniversalClient
	if config.Redis.Addr != "" {
		redisClient, err = myredis.NewRedisUniversalClient(config.Redis.Addr)
		if err != nil {
			level.Error(logger).Log("msg", "Failed to create Redis client", "err", err)
			os.Exit(1)
		}
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		err = redisClient.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			level.Error(logger).Log("msg", "Failed to connect to Redis", "err", err)
			os.Exit(1)
		}
		level.Info(logger).Log("msg", "Connected to Redis")

		marshal := func(i domain.Instance) ([]byte, error) { return json.Marshal(i) }
		cache := myredis.NewCache[domain.Instance](redisClient, config.Redis.Prefix, marshal)
		mirror := myredis.NewMirror(cache, config.Redis.QueueSize, config.Redis.Timeout, logger)
		go mirror.Run(ctx)
		observers = append(observers, mirror)
	}

	var reporter *grpchealth.Reporter
	if config.HealthPort != 0 {
		reporter = grpchealth.NewReporter(logger)
		observers = append(observers, reporter)
	}

	var registry *service.Registry
	{
		store := memstore.New[*service.Entry]()
		dialer := h2conn.NewDialer(logger)
		registry = service.NewRegistry(store, dialer, helpers.NewObserverChain(observers...), inmem, logger, config.Registry)
	}

	var gatewayServer *http.Server
	{
		router := service.NewRouter(registry, config.Token, config.Fallback, inmem, logger)
		gateway := handlers.NewGateway(registry, router, config.Token, logger)
		gatewayServer, err = handlers.NewGatewayServer(fmt.Sprintf(":%d", config.HTTPPort), gateway, config.TLS.Enabled())
		if err != nil {
			level.Error(logger).Log("msg", "Failed to configure gateway server", "err", err)
			os.Exit(1)
		}
	}

	var admin *echo.Echo
	if config.AdminPort != 0 {
		admin, err = handlers.NewAdminEcho(handlers.NewAdminServer(registry, logger), logger)
		if err != nil {
			level.Error(logger).Log("msg", "Failed to create admin API", "err", err)
			os.Exit(1)
		}
	}

	var grpcServer *grpc.Server
	var healthLis net.Listener
	if reporter != nil {
		grpcServer = newHealthServer(reporter)

		healthLis, err = net.Listen("tcp", fmt.Sprintf(":%d", config.HealthPort))
		if err != nil {
			level.Error(logger).Log("msg", "Failed to listen", "err", err)
			os.Exit(1)
		}
	}

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		level.Info(logger).Log("msg", "Starting gateway server", "addr", gatewayServer.Addr, "tls", config.TLS.Enabled())
		var err error
		if config.TLS.Enabled() {
			err = gatewayServer.ListenAndServeTLS(config.TLS.CertFile, config.TLS.KeyFile)
		} else {
			err = gatewayServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			level.Error(logger).Log("msg", "Gateway server error", "err", err)
			select {
			case quit <- syscall.SIGTERM:
			default:
			}
		}
	}()

	if admin != nil {
		go func() {
			addr := fmt.Sprintf(":%d", config.AdminPort)
			level.Info(logger).Log("msg", "Starting admin HTTP server", "addr", addr)
			if err := admin.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				level.Error(logger).Log("msg", "Admin HTTP server error", "err", err)
			}
		}()
	}

	if grpcServer != nil {
		go func() {
			level.Info(logger).Log("msg", "Starting gRPC health server", "addr", healthLis.Addr())
			if err := grpcServer.Serve(healthLis); err != nil {
				level.Error(logger).Log("msg", "gRPC server error", "err", err)
			}
		}()
	}

	if config.ConsoleEnabled {
		console := handlers.NewConsole(registry, os.Stdin, os.Stdout, logger)
		go func() {
			if err := console.Run(ctx); err != nil {
				level.Warn(logger).Log("msg", "Console stopped", "err", err)
			}
		}()
	}

	<-quit
	level.Info(logger).Log("msg", "Shutting down...")

	if reporter != nil {
		reporter.Shutdown()
	}

	// Pending control streams are answered here, before Shutdown waits on active requests.
	if err := registry.Close(); err != nil {
		level.Error(logger).Log("msg", "Error closing registry", "err", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), defaultShutdownDeadline)
	defer shutdownCancel()

	if err := gatewayServer.Shutdown(shutdownCtx); err != nil {
		level.Error(logger).Log("msg", "Error during gateway shutdown", "err", err)
	}
	if admin != nil {
		if err := admin.Shutdown(shutdownCtx); err != nil {
			level.Error(logger).Log("msg", "Error during admin shutdown", "err", err)
		}
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}

	cancel()
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			level.Error(logger).Log("msg", "Error closing Redis client", "err", err)
		}
	}

	level.Info(logger).Log("msg", "Server stopped")
}
