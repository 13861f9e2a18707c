package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/mitchelldurbincs/QuoridorEngine/internal/config"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/grpc/matchserver"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/monitoring"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to config file")
	env := flag.String("env", os.Getenv("APP_ENV"), "Environment overlay (loads config.<env>.yaml)")
	port := flag.Int("port", -1, "The server port (-1 to use config default)")
	host := flag.String("host", "", "The server host (empty to use config default)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	maxMatches := flag.Int("max-matches", -1, "Maximum concurrent matches, 0 for unlimited (-1 to use config default)")
	enableReflection := flag.Bool("enable-reflection", false, "Enable gRPC reflection for debugging")
	watchConfig := flag.Bool("watch-config", false, "Reload log level from the config file when it changes")
	monitorInterval := flag.Duration("monitor-interval", 30*time.Second, "Runtime metrics sampling interval (0 disables)")
	flag.Parse()

	// Initialize configuration
	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	if err := config.LoadEnvironmentConfig(*env); err != nil {
		log.Fatal().Err(err).Str("env", *env).Msg("Failed to load environment config")
	}

	cfg := config.Get()
	ms := cfg.Server.MatchServer

	// Use config defaults if not overridden by flags
	if *port == -1 {
		*port = ms.Port
	}
	if *host == "" {
		*host = ms.Host
	}
	if *logLevel == "" {
		*logLevel = ms.LogLevel
	}
	if *maxMatches == -1 {
		*maxMatches = ms.MaxMatches
	}

	setupLogging(*logLevel, ms.LogFormat)

	if *watchConfig {
		config.WatchConfig(func() {
			level := config.Get().Server.MatchServer.LogLevel
			zerolog.SetGlobalLevel(parseLevel(level))
			log.Info().Str("log_level", level).Msg("Config reloaded")
		}, func(err error) {
			log.Error().Err(err).Msg("Ignoring invalid config reload")
		})
	}

	log.Info().
		Int("port", *port).
		Str("host", *host).
		Int("max_matches", *maxMatches).
		Str("config_file", config.ConfigFilePath()).
		Msg("Starting Quoridor match server")

	// Create listener
	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", *host, *port))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to listen")
	}

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(
		loggingInterceptor,
		recoveryInterceptor,
	))

	managerCfg := matchserver.ManagerConfigFromConfig(cfg, log.Logger)
	managerCfg.MaxMatches = *maxMatches
	manager := matchserver.NewMatchManager(managerCfg)
	matchserver.RegisterMatchServiceServer(grpcServer, matchserver.NewServer(manager))

	// Register health service
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(matchserver.MatchServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	if *enableReflection {
		reflection.Register(grpcServer)
		log.Info().Msg("gRPC reflection enabled")
	}

	var monitor *monitoring.Monitor
	if *monitorInterval > 0 {
		monitor = monitoring.NewMonitor(log.Logger, *monitorInterval, 1000)
		monitor.Register("matches", manager.ActiveMatches)
		monitor.Start()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

		healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		healthServer.SetServingStatus(matchserver.MatchServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

		// Give ongoing requests time to complete
		time.Sleep(time.Duration(ms.GracefulShutdownDelay) * time.Second)

		log.Info().Msg("Gracefully stopping gRPC server")
		grpcServer.GracefulStop()
		cancel()
	}()

	log.Info().Str("address", lis.Addr().String()).Msg("gRPC server listening")

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("Failed to serve")
		}
	}()

	<-ctx.Done()
	manager.Close()
	if monitor != nil {
		monitor.Stop()
		m := monitor.Metrics()
		log.Info().
			Int("peak_goroutines", m.Peak).
			Int("peak_matches", m.Peaks["matches"]).
			Msg("Runtime summary")
	}
	log.Info().Msg("Server shutdown complete")
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func setupLogging(level, format string) {
	zerolog.SetGlobalLevel(parseLevel(level))

	if format == "json" || os.Getenv("APP_ENV") == "production" {
		// JSON output for production
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}
}

// loggingInterceptor logs all unary RPC calls
func loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()

	resp, err := handler(ctx, req)

	code := status.Code(err)
	event := log.Info()
	if code == codes.Internal || code == codes.Unknown {
		event = log.Error()
	}
	event.
		Str("method", info.FullMethod).
		Str("code", code.String()).
		Str("kind", matchserver.ErrorKind(err)).
		Dur("duration", time.Since(start)).
		Err(err).
		Msg("gRPC call")

	return resp, err
}

// recoveryInterceptor catches panics and returns proper gRPC errors
func recoveryInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("method", info.FullMethod).
				Interface("panic", r).
				Msg("Recovered from panic in gRPC handler")
			err = status.Errorf(codes.Internal, "internal server error")
		}
	}()

	return handler(ctx, req)
}
