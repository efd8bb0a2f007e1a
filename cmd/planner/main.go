package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/strikerbot/planner/internal/api"
	"github.com/strikerbot/planner/internal/bot"
	"github.com/strikerbot/planner/internal/config"
	"github.com/strikerbot/planner/internal/dispatcher"
	"github.com/strikerbot/planner/internal/influx"
	"github.com/strikerbot/planner/internal/logging"
	"github.com/strikerbot/planner/internal/monitor"
	intOtel "github.com/strikerbot/planner/internal/otel"
	"github.com/strikerbot/planner/internal/recorder"
	"github.com/strikerbot/planner/internal/storage"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"

	ProgramName string = "strikerbot_planner"
)

// ConfigDirEnv overrides the directory planner.cfg.json is read from.
const ConfigDirEnv = "PLANNER_CONFIG_DIR"

var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// InfraLogger is used by the zerolog-based managers and the dispatcher
	InfraLogger zerolog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	LogFilePath string
	LogFile     *os.File
	MetricFile  *os.File

	SessionStartTime time.Time = time.Now()
)

func main() {
	args := os.Args[1:]
	command := ""
	if len(args) > 0 {
		command = strings.ToLower(args[0])
	}

	switch command {
	case "compare":
		config.SetDefaults()
		_ = loadConfig()
		os.Exit(runCompare(args[1:], os.Stdout, os.Stderr))
	case "version":
		fmt.Printf("%s %s (%s)\n", ProgramName, CurrentVersion, BuildDate)
		return
	}

	setupLogging()
	defer shutdownLogging()

	var err error
	switch command {
	case "setupdb":
		err = setupDB()
	case "dumps":
		err = listDumps(os.Stdout)
	case "", "run":
		err = serve(os.Stdin, os.Stdout)
	default:
		err = fmt.Errorf("unknown command %q", args[0])
	}
	if err != nil {
		Logger.Error("Exiting with error", "error", err)
		fmt.Fprintln(os.Stderr, err)
		shutdownLogging()
		os.Exit(1)
	}
}

func loadConfig() error {
	dir := os.Getenv(ConfigDirEnv)
	if dir == "" {
		dir = "."
	}
	return config.Load(dir)
}

// setupLogging brings logging up in stages: stderr first, then the log file
// once config names the logs directory, then OTel and Graylog if enabled.
// stdout is never used; it carries the host protocol.
func setupLogging() {
	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(nil, "info", nil)
	Logger = SlogManager.Logger()

	if err := loadConfig(); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config", "file", viper.ConfigFileUsed())
	}

	logsDir := viper.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		Logger.Error("Failed to create logs directory", "error", err, "path", logsDir)
	}

	LogFilePath = logging.LogFilePath(logsDir, ProgramName, SessionStartTime)
	var err error
	LogFile, err = os.OpenFile(LogFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		Logger.Error("Failed to create/open log file!", "error", err, "path", LogFilePath)
		LogFile = nil
	}

	var infraOut io.Writer = os.Stderr
	if LogFile != nil {
		infraOut = LogFile
	}
	InfraLogger = zerolog.New(infraOut).With().Timestamp().Str("program", ProgramName).Logger().
		Level(zerologLevel(viper.GetString("logLevel")))

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		cfg := intOtel.Config{
			Enabled:        otelCfg.Enabled,
			ServiceName:    otelCfg.ServiceName,
			BatchTimeout:   otelCfg.BatchTimeout,
			MetricInterval: otelCfg.MetricInterval,
			Endpoint:       otelCfg.Endpoint,
			Insecure:       otelCfg.Insecure,
		}
		if LogFile != nil {
			cfg.LogWriter = LogFile
			MetricFile, err = os.OpenFile(strings.TrimSuffix(LogFilePath, ".log")+".metrics.json",
				os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
			if err != nil {
				Logger.Error("Failed to open metrics file", "error", err)
			} else {
				cfg.MetricWriter = MetricFile
			}
		}
		OTelProvider, err = intOtel.New(cfg)
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
		} else {
			Logger.Info("OTel provider initialized", "endpoint", otelCfg.Endpoint)
		}
	}

	var extra []slog.Handler
	if viper.GetBool("graylog.enabled") {
		if h, err := graylogHandler(); err != nil {
			Logger.Error("Failed to connect to Graylog", "error", err)
		} else {
			extra = append(extra, h)
		}
	}

	// Re-setup logging with file output and optional OTel
	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}
	var file io.Writer
	if LogFile != nil {
		file = LogFile
	}
	SlogManager.Setup(file, viper.GetString("logLevel"), otelLogProvider, extra...)
	Logger = SlogManager.Logger()
	Logger.Info("Logging to file", "path", LogFilePath, "version", CurrentVersion, "build", BuildDate)
}

// graylogHandler sends logs to Graylog over UDP, the only transport the gelf
// writer speaks.
func graylogHandler() (slog.Handler, error) {
	if p := viper.GetString("graylog.protocol"); p != "" && p != "udp" {
		Logger.Warn("Graylog protocol not supported, using udp", "protocol", p)
	}
	w, err := gelf.NewWriter(viper.GetString("graylog.address"))
	if err != nil {
		return nil, err
	}
	w.Facility = ProgramName
	return logging.NewGelfHandler(w, slog.LevelInfo, ProgramName), nil
}

func zerologLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

func shutdownLogging() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if SlogManager != nil {
		_ = SlogManager.Flush(ctx)
	}
	if OTelProvider != nil {
		if err := OTelProvider.Shutdown(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "otel shutdown:", err)
		}
		OTelProvider = nil
	}
	if MetricFile != nil {
		_ = MetricFile.Close()
		MetricFile = nil
	}
	if LogFile != nil {
		_ = LogFile.Sync()
	}
}

// botConfig maps the planner settings onto the bot.
func botConfig(pc config.PlannerConfig) bot.Config {
	cfg := bot.DefaultConfig()
	if pc.BallHorizon > 0 {
		cfg.Predictor.Horizon = pc.BallHorizon
	}
	if pc.SimStep > 0 {
		cfg.Predictor.Step = pc.SimStep
	}
	if pc.PositionTolerance > 0 {
		cfg.Predictor.PositionTolerance = pc.PositionTolerance
	}
	if pc.VelocityTolerance > 0 {
		cfg.Predictor.VelocityTolerance = pc.VelocityTolerance
	}
	if cfg.Predictor.MinRemaining > cfg.Predictor.Horizon {
		cfg.Predictor.MinRemaining = cfg.Predictor.Horizon
	}
	if pc.CarHorizon > 0 {
		cfg.CarHorizon = pc.CarHorizon
	}
	if pc.PredictionLookahead > 0 {
		cfg.PredictionLookahead = pc.PredictionLookahead
	}
	if pc.BoostAssumption > 0 {
		cfg.BoostAssumption = pc.BoostAssumption
	}
	cfg.FlipCutoffDistance = pc.FlipCutoffDistance
	return cfg
}

// serve answers the host until stdin closes or the process is signalled.
func serve(in io.Reader, out io.Writer) error {
	var host *Host
	SlogManager.WithContext(func() []slog.Attr {
		if host == nil {
			return nil
		}
		return host.LogContext()
	})
	Logger = SlogManager.Logger()

	plannerCfg := config.GetPlannerConfig()

	backend, err := createStorageBackend(config.GetStorageConfig(), Logger)
	if err == nil {
		err = backend.Init()
	}
	if err != nil {
		Logger.Error("Recording disabled, storage backend unavailable", "error", err)
		backend = nil
	}

	var rec *recorder.Manager
	var points *influx.Manager
	if backend != nil {
		deps := recorder.Dependencies{
			Backend:     backend,
			Logger:      Logger.With("component", "recorder"),
			RecordEvery: plannerCfg.RecordEvery,
			MaxDuration: plannerCfg.RecordMaxDuration,
		}

		if viper.GetBool("influx.enabled") {
			points = influx.NewManager(InfraLogger, filepath.Join(viper.GetString("logsDir"), "influx_backup.log.gz"))
			if err := points.Connect(); err != nil {
				Logger.Error("Failed to connect to InfluxDB", "error", err)
				points = nil
			} else {
				deps.Points = points
			}
		}

		if _, ok := backend.(storage.Uploadable); ok && viper.GetString("api.apiKey") != "" {
			client := api.New(viper.GetString("api.serverUrl"), viper.GetString("api.apiKey"))
			go checkServerStatus(client)
			deps.Uploader = client
		}

		rec = recorder.NewManager(deps)
	}

	var opts []bot.Option
	if rec != nil {
		opts = append(opts, bot.WithRecorder(rec), bot.WithPredictionObserver(rec.ObservePrediction))
	}
	b, err := bot.New(botConfig(plannerCfg), Logger.With("component", "bot"), opts...)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	d, err := dispatcher.New(logging.NewDispatcherLogger(InfraLogger))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	host = NewHost(d, b, rec, out, Logger)

	status := monitor.NewService(monitor.Dependencies{
		Logger:     Logger.With("component", "monitor"),
		StatusFile: filepath.Join(viper.GetString("logsDir"), "status.json"),
		Interval:   viper.GetDuration("statusInterval"),
		Status:     host.Status,
	})
	if err := status.Start(); err != nil {
		Logger.Error("Failed to start status monitor", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	Logger.Info("Planner ready",
		"ballHorizon", plannerCfg.BallHorizon,
		"simStep", plannerCfg.SimStep,
		"recording", rec != nil,
	)

	done := make(chan error, 1)
	go func() { done <- host.Run(ctx, in) }()

	select {
	case err = <-done:
	case <-ctx.Done():
		Logger.Info("Signal received, shutting down")
	}

	status.Stop()
	if rec != nil {
		if err := rec.Stop(); err != nil {
			Logger.Error("Failed to save recording on shutdown", "error", err)
		}
	}
	d.Close()
	if backend != nil {
		if err := backend.Close(); err != nil {
			Logger.Error("Failed to close storage backend", "error", err)
		}
	}
	if points != nil {
		if err := points.Close(); err != nil {
			Logger.Error("Failed to close InfluxDB manager", "error", err)
		}
	}

	Logger.Info("Planner stopped")
	return err
}

func checkServerStatus(client *api.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Healthcheck(ctx); err != nil {
		Logger.Info("Tuning dashboard is offline", "error", err)
		return
	}
	Logger.Info("Tuning dashboard is online")
}
