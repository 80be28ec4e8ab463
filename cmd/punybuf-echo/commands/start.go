package commands

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/whzard/punybuf/config"
	"github.com/whzard/punybuf/internal/logger"
	"github.com/whzard/punybuf/internal/schema"
	"github.com/whzard/punybuf/internal/telemetry"
	"github.com/whzard/punybuf/metrics"
	metricsprom "github.com/whzard/punybuf/metrics/prometheus"
	"github.com/whzard/punybuf/rpc"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the loopback getMe/echo/ping demo",
	Long: `Start wires a server Session and a client Session over a single
in-process connection, registers the getMe/echo/ping commands, drives one
call of each, and prints a trace of the frames exchanged.

Examples:
  # Run with default config
  punybuf-echo start

  # Run with a custom config file
  punybuf-echo start --config /etc/punybuf/config.yaml

  # Override a field that the config file sets, via environment variable
  PUNYBUF_LOGGING_LEVEL=DEBUG punybuf-echo start --config /etc/punybuf/config.yaml`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "punybuf-echo",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "punybuf-echo",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	logger.Info("configuration loaded", "source", getConfigSource(GetConfigFile()))
	logger.Info("limits",
		"max_uint", cfg.Limits.MaxUInt,
		"max_bytes_len", cfg.Limits.MaxBytesLen.String(),
		"max_frame_size", cfg.Limits.MaxFrameSize.String())

	metrics.InitRegistry(cfg.Metrics.Enabled)
	sessionMetrics := metricsprom.NewSessionMetrics()
	if sessionMetrics != nil {
		logger.Info("metrics enabled", "port", cfg.Metrics.Port)
	} else {
		logger.Info("metrics disabled")
	}

	trace, err := runLoopbackDemo(ctx, cfg, sessionMetrics)
	if err != nil {
		return fmt.Errorf("run demo session: %w", err)
	}
	printTrace(trace)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("demo complete, press Ctrl+C to exit")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received")
	case <-time.After(cfg.ShutdownTimeout):
		logger.Info("idle timeout reached, exiting")
	}
	return nil
}

// frameTraceRow describes one command round trip driven by the demo, for
// the summary table printed at the end of start.
type frameTraceRow struct {
	Command  string
	Outcome  string
	Duration time.Duration
}

func runLoopbackDemo(ctx context.Context, cfg *config.Config, sm metrics.SessionMetrics) ([]frameTraceRow, error) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	maxFrameSize := uint32(cfg.Limits.MaxFrameSize.Uint64())
	server := rpc.NewSession(b, maxFrameSize, rpc.NewConnID())
	client := rpc.NewSession(a, maxFrameSize, rpc.NewConnID())

	getMe := schema.GetMeDescriptor()
	echo := schema.EchoDescriptor()
	ping := schema.PingDescriptor()

	server.Register(getMe)
	server.Register(echo)
	server.Register(ping)

	server.SetDispatcher(func(ctx context.Context, d rpc.Descriptor, arg any) (any, any, error) {
		if sm != nil {
			sm.RecordCommandStart(d.Name, "inbound")
			defer sm.RecordCommandEnd(d.Name, "inbound")
		}
		switch d.Name {
		case "getMe":
			return schema.User{Name: "ada", Mood: schema.Mood{Discriminant: schema.MoodHappy}}, nil, nil
		case "echo":
			value, errValue := schema.EchoDispatch(arg)
			return value, errValue, nil
		case "ping":
			logger.InfoCtx(ctx, "ping received")
			return nil, nil, nil
		default:
			return nil, nil, fmt.Errorf("no handler for %s", d.Name)
		}
	})

	go server.ReceiveLoop(ctx)
	go client.ReceiveLoop(ctx)

	var trace []frameTraceRow
	call := func(name string, d rpc.Descriptor, arg any) {
		start := time.Now()
		_, err := client.Call(ctx, d, arg)
		outcome := "ok"
		if err != nil {
			outcome = err.Error()
		}
		trace = append(trace, frameTraceRow{Command: name, Outcome: outcome, Duration: time.Since(start)})
	}

	call("getMe", getMe, nil)
	call("echo", echo, "hello from punybuf")
	call("ping", ping, nil)

	return trace, nil
}

func printTrace(rows []frameTraceRow) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Command", "Outcome", "Duration"})
	for _, r := range rows {
		table.Append([]string{r.Command, r.Outcome, r.Duration.String()})
	}
	table.Render()
}

func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}
