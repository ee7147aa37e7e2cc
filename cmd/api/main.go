package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adactor "motorfleet2mqtt/internal/adapter/actor"
	"motorfleet2mqtt/internal/config"
	"motorfleet2mqtt/internal/core/actor"
	"motorfleet2mqtt/internal/core/domain"
	"motorfleet2mqtt/internal/core/service"
	"motorfleet2mqtt/internal/server"
	"motorfleet2mqtt/internal/tree"
	"motorfleet2mqtt/internal/util/actorutil"

	pactor "github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/reugn/go-quartz/job"
	"github.com/reugn/go-quartz/quartz"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Println("shutting down gracefully, press Ctrl+C again to force")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	log.Println("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {

	// load and print config
	cfg, err := initConfig()
	if err != nil {
		slog.Error("config errors", "error", err)
		return
	}
	safePrintConfig(*cfg)

	// zap logger
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)

	logger := zap.Must(zapCfg.Build())

	defer logger.Sync()

	// build the fleet and register it on the attribute tree
	template, err := service.MotorTemplate(cfg.Fleet.TemplateName, cfg.Fleet.MaxSpeed)
	if err != nil {
		logger.Fatal("invalid motor template", zap.Error(err))
	}
	fleet, err := service.NewFleet(template, service.FleetParams{
		DevicePrefix: cfg.Fleet.DevicePrefix,
		DeviceCount:  int(cfg.Fleet.DeviceCount),
		MaxSpeed:     cfg.Fleet.MaxSpeed,
		RampTick:     time.Duration(cfg.Sim.RampTickMillis) * time.Millisecond,
		Jitter:       fleetJitter(cfg.Sim.Seed),
	}, logger)
	if err != nil {
		logger.Fatal("fleet setup failed", zap.Error(err))
	}
	attrTree := tree.NewMemoryTree()
	handles, err := service.RegisterFleet(attrTree, fleet, "fleet")
	if err != nil {
		logger.Fatal("fleet registration failed", zap.Error(err))
	}

	// init actor system
	as := actorutil.NewActorSystemWithZapLogger(logger)
	ctx := as.Root

	props := pactor.PropsFromProducer(func() pactor.Actor {
		return actor.NewMasterActor(*cfg, fleet, attrTree, handles, mqttActorProvider(cfg, logger), logger)
	})
	pid, err := ctx.SpawnNamed(props, domain.ACTOR_ID_MASTER)
	if err != nil {
		return
	}

	// periodic metadata refresh
	sched, err := startMetadataRefresh(cfg, ctx, pid)
	if err != nil {
		logger.Fatal("metadata refresh setup failed", zap.Error(err))
	}

	server := server.NewServer(*cfg, ctx, pid, fleet, attrTree, handles)
	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(server, done)

	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Println("Graceful shutdown complete.")

	if sched != nil {
		sched.Stop()
	}
	ctx.Stop(pid)
	as.Shutdown()
}

func initConfig() (*config.Config, error) {

	// alias PORT => MOTORFLEET_PORT
	if port := os.Getenv("PORT"); port != "" {
		os.Setenv("MOTORFLEET_PORT", port)
	}

	setConfigDefaults()

	viper.SetEnvPrefix("motorfleet")
	viper.AutomaticEnv()

	// if defined, try to load config from yaml file
	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			slog.Info("Using config", "file", cfgFile)
			viper.SetConfigFile(cfgFile)

			err = viper.ReadInConfig()
			if err != nil {
				slog.Error("Error reading config file", "error", err)
			}
		}
	}

	var cfg config.Config

	err := viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	// parse log level
	switch viper.GetString("log_level") {
	case "trace":
		cfg.LogLevel = zap.DebugLevel
	case "debug":
		cfg.LogLevel = zap.DebugLevel
	case "info":
		cfg.LogLevel = zap.InfoLevel
	case "error":
		cfg.LogLevel = zap.ErrorLevel
	case "warn":
		cfg.LogLevel = zap.WarnLevel
	case "fatal":
		cfg.LogLevel = zap.FatalLevel
	default:
		cfg.LogLevel = zap.InfoLevel
	}

	// check and fix base topic
	baseTopic, err := config.CheckMQTTTopic(cfg.MQTT.BaseTopic)
	if err != nil {
		return nil, errors.New("invalid base topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.BaseTopic = baseTopic

	// check bounds
	if cfg.Fleet.DeviceCount < 1 || cfg.Fleet.DeviceCount > 64 {
		return nil, errors.New("config param fleet.device_count should be between 1 and 64")
	}
	if cfg.Fleet.MaxSpeed <= 0 {
		return nil, errors.New("config param fleet.max_speed should be > 0")
	}
	if cfg.Sim.RampTickMillis < 10 {
		return nil, errors.New("config param sim.ramp_tick_millis should be >= 10")
	}
	if cfg.Sim.SyncIntervalMillis < 100 {
		return nil, errors.New("config param sim.sync_interval_millis should be >= 100")
	}
	if cfg.Metadata.Enable && cfg.Metadata.RefreshMinutes < 1 {
		return nil, errors.New("config param metadata.refresh_minutes should be >= 1")
	}

	return &cfg, nil
}

// fleetJitter derives one deterministic randomness source per device. A zero
// seed keeps the controller default.
func fleetJitter(seed int64) func(deviceIndex int) service.JitterSource {
	if seed == 0 {
		return nil
	}
	return func(deviceIndex int) service.JitterSource {
		rnd := rand.New(rand.NewSource(seed + int64(deviceIndex)))
		return rnd.Float64
	}
}

func mqttActorProvider(cfg *config.Config, logger *zap.Logger) actor.MQTTActorProvider {
	return func(eventStream *eventstream.EventStream) *adactor.MQTTActor {
		return adactor.NewMQTTActor(cfg, eventStream, logger)
	}
}

func startMetadataRefresh(cfg *config.Config, ctx *pactor.RootContext, master *pactor.PID) (quartz.Scheduler, error) {
	if !cfg.Metadata.Enable || cfg.Metadata.RefreshMinutes == 0 {
		return nil, nil
	}
	sched := quartz.NewStdScheduler()
	sched.Start(context.Background())

	refreshJob := job.NewFunctionJob(func(_ context.Context) (int, error) {
		ctx.Send(master, domain.RefreshMetadata{})
		return 0, nil
	})
	interval := time.Duration(cfg.Metadata.RefreshMinutes) * time.Minute
	err := sched.ScheduleJob(
		quartz.NewJobDetail(refreshJob, quartz.NewJobKey("metadata_refresh")),
		quartz.NewSimpleTrigger(interval))
	if err != nil {
		return nil, err
	}
	return sched, nil
}

func setConfigDefaults() {
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("mqtt.base_topic", "motorfleet")
	viper.SetDefault("fleet.template_name", "MotorType")
	viper.SetDefault("fleet.device_prefix", "Motor")
	viper.SetDefault("fleet.device_count", 5)
	viper.SetDefault("fleet.max_speed", 1000)
	viper.SetDefault("sim.ramp_tick_millis", 100)
	viper.SetDefault("sim.sync_interval_millis", 1000)
	viper.SetDefault("sim.seed", 0)
	viper.SetDefault("metadata.enable", true)
	viper.SetDefault("metadata.refresh_minutes", 15)
	viper.SetDefault("port", 8080)
}

func safePrintConfig(cfg config.Config) {
	cfg.MQTT.Username = "*redacted*"
	cfg.MQTT.Password = "*redacted*"
	slog.Info("Using", "config", cfg)
}
