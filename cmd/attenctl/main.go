// Command attenctl runs the attenuation controller daemon: it serves
// the control channel, subscribes to per-frame data messages, drives
// the filter engine, and publishes events, per spec.md §§1-6.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/attenctl/internal/config"
	"github.com/tamzrod/attenctl/internal/control"
	"github.com/tamzrod/attenctl/internal/filterengine"
	"github.com/tamzrod/attenctl/internal/motion"
	"github.com/tamzrod/attenctl/internal/poller"
	"github.com/tamzrod/attenctl/internal/status"
	"github.com/tamzrod/attenctl/internal/supervisor"
	"github.com/tamzrod/attenctl/internal/transport"
)

// buildVersion is overridable at link time (-ldflags -X main.buildVersion=...);
// it backs the supplemented status.version readback (SPEC_FULL.md).
var buildVersion = "dev"

const usage = `attenctl <control_port> <publish_port> <subscribe_endpoints> [defaults_file]

  control_port        TCP port for the control request/reply channel
  publish_port        TCP port the event publisher listens on
  subscribe_endpoints  comma-separated host:port list of data endpoints
  defaults_file        optional YAML file of startup defaults
`

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--help" || os.Args[1] == "-h") {
		fmt.Fprint(os.Stdout, usage)
		os.Exit(0)
	}

	args, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger init:", err)
		os.Exit(1)
	}
	defer log.Sync()
	sugar := log.Sugar()

	if err := run(sugar, args); err != nil {
		sugar.Fatalw("attenctl exited with an error", "error", err)
	}
}

type cliArgs struct {
	controlAddr     string
	publishAddr     string
	subscribeAddrs  []string
	defaultsFile    string
}

func parseArgs(argv []string) (cliArgs, error) {
	if len(argv) < 3 || len(argv) > 4 {
		return cliArgs{}, fmt.Errorf("expected 3 or 4 arguments, got %d", len(argv))
	}

	if _, err := strconv.Atoi(argv[0]); err != nil {
		return cliArgs{}, fmt.Errorf("control_port: %w", err)
	}
	if _, err := strconv.Atoi(argv[1]); err != nil {
		return cliArgs{}, fmt.Errorf("publish_port: %w", err)
	}

	endpoints := strings.Split(argv[2], ",")
	for i, e := range endpoints {
		endpoints[i] = strings.TrimSpace(e)
		if endpoints[i] == "" {
			return cliArgs{}, fmt.Errorf("subscribe_endpoints: empty endpoint in list %q", argv[2])
		}
	}

	out := cliArgs{
		controlAddr:    ":" + argv[0],
		publishAddr:    ":" + argv[1],
		subscribeAddrs: endpoints,
	}
	if len(argv) == 4 {
		out.defaultsFile = argv[3]
	}
	return out, nil
}

func run(log *zap.SugaredLogger, args cliArgs) error {
	cfg := config.Default()

	if args.defaultsFile != "" {
		defaults, err := config.Load(args.defaultsFile)
		if err != nil {
			return fmt.Errorf("loading defaults file: %w", err)
		}
		if err := defaults.ApplyTo(&cfg); err != nil {
			log.Warnw("some startup defaults were rejected", "error", err)
		}
	}

	if err := config.Validate(&cfg); err != nil {
		return fmt.Errorf("startup configuration invalid: %w", err)
	}
	config.Normalize(&cfg)

	cfgStore := config.NewStore(cfg)
	stStore := status.NewStore(status.Snapshot{Version: buildVersion})
	flags := control.NewFlags()

	sink, health := buildMotionSink(log)
	positions := positionMapFromConfig(cfg)
	engine := filterengine.New(log, sink, positions)

	sub := poller.Dial(log, args.subscribeAddrs)
	defer sub.Close()

	pub, err := transport.NewPublisher(args.publishAddr, log)
	if err != nil {
		return fmt.Errorf("binding publish port: %w", err)
	}
	defer pub.Close()
	go func() {
		if err := pub.Serve(); err != nil {
			log.Infow("event publisher stopped", "error", err)
		}
	}()

	dispatcher := control.NewDispatcher(log, cfgStore, stStore, flags)
	controlSrv, err := transport.NewControlServer(args.controlAddr, dispatcher.Handle, log)
	if err != nil {
		return fmt.Errorf("binding control port: %w", err)
	}
	defer controlSrv.Close()
	go func() {
		if err := controlSrv.Serve(); err != nil {
			log.Infow("control server stopped", "error", err)
		}
	}()

	loop := supervisor.New(log, cfgStore, stStore, flags, sub, pub, engine, health, buildVersion)

	stop := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info("signal received, shutting down")
		close(stop)
	}()

	loop.Run(stop)
	return nil
}

// buildMotionSink wires a Modbus motion sink from the environment when
// one is configured, falling back to the logging no-op sink otherwise
// (spec.md §6's escape hatch for deployments without a real motion
// controller, e.g. local testing). health is nil unless the Modbus
// sink's layout opts into the supplemented health heartbeat.
func buildMotionSink(log *zap.SugaredLogger) (filterengine.MotionSink, interface {
	WriteHealth(healthCode, secondsInError uint16) error
}) {
	endpoint := os.Getenv("ATTENCTL_MOTION_TCP_ENDPOINT")
	if endpoint == "" {
		return motion.NewLoggingSink(log), nil
	}

	layout := motion.RegisterLayout{
		Phase1Base:  400,
		Phase2Base:  408,
		RunCoil:     0,
		ShutterCoil: 1,
	}
	if os.Getenv("ATTENCTL_MOTION_HEALTH_ENABLED") == "true" {
		layout.HealthEnabled = true
		layout.HealthBase = 416
	}

	sink, err := motion.NewModbusTCPSink(motion.TCPConfig{
		Endpoint: endpoint,
		UnitID:   1,
		Timeout:  2 * time.Second,
		Layout:   layout,
	})
	if err != nil {
		log.Warnw("failed to connect to Modbus motion controller, falling back to logging sink", "endpoint", endpoint, "error", err)
		return motion.NewLoggingSink(log), nil
	}

	if layout.HealthEnabled {
		return sink, sink
	}
	return sink, nil
}

func positionMapFromConfig(cfg config.Config) filterengine.PositionMap {
	var pm filterengine.PositionMap
	for i := 0; i < 4; i++ {
		pm[i] = filterengine.Positions{In: cfg.InPositions[i], Out: cfg.OutPositions[i]}
	}
	return pm
}
