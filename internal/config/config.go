package config

import (
	"flag"
	"strings"
	"time"
)

// Config holds runtime configuration for netconnd.
type Config struct {
	ProcfsPath string

	SelfCheckComm    string
	SelfCheckExe     string
	SelfCheckTimeout time.Duration

	ControlTarget string

	EventTapePath string

	WebTelemetryPath          string
	WebDisableExporterMetrics bool
	WebMaxRequests            int
	WebListenAddresses        multiString

	LogLevel  string
	LogFormat string

	ShowHelp    bool
	ShowVersion bool
}

// ParseFlags parses CLI flags.
func ParseFlags() Config {
	var cfg Config

	flag.StringVar(&cfg.ProcfsPath, "path.procfs", "/proc", "Procfs mountpoint used to resolve container ids from /proc/<pid>/cgroup.")

	flag.StringVar(&cfg.SelfCheckComm, "self-check.comm", "netconnd-self-check", "Process comm name the self-check handlers watch for at startup.")
	flag.StringVar(&cfg.SelfCheckExe, "self-check.exe", "", "Process exe path the self-check handlers watch for at startup (either signal alone is sufficient).")
	selfCheckTimeoutSeconds := flag.Int("self-check.timeout-seconds", 5, "Seconds to wait for the self-check process and network signals before exiting with an error.")

	flag.StringVar(&cfg.ControlTarget, "control.target", "localhost:443", "gRPC address of the upstream sensor's duplex control channel.")

	flag.StringVar(&cfg.EventTapePath, "events.tape", "", "Path to a newline-delimited JSON event tape to replay instead of a live probe. Empty disables the tape source.")

	flag.StringVar(&cfg.WebTelemetryPath, "web.telemetry-path", "/metrics", "Path under which to expose metrics.")
	flag.BoolVar(&cfg.WebDisableExporterMetrics, "web.disable-exporter-metrics", false, "Exclude metrics about the process itself (promhttp_*, process_*, go_*).")
	flag.IntVar(&cfg.WebMaxRequests, "web.max-requests", 40, "Maximum number of parallel scrape requests. Use 0 to disable.")
	flag.Var(&cfg.WebListenAddresses, "web.listen-address", "Addresses on which to expose metrics. Repeatable for multiple addresses. Examples: :9100 or [::1]:9100")

	flag.StringVar(&cfg.LogLevel, "log.level", "info", "Only log messages with the given severity or above. One of: [debug, info, warn, error]")
	flag.StringVar(&cfg.LogFormat, "log.format", "logfmt", "Output format of log messages. One of: [logfmt, json]")

	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help and exit.")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help and exit.")

	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show application version and exit.")
	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show application version and exit.")

	flag.Parse()

	cfg.SelfCheckTimeout = time.Duration(*selfCheckTimeoutSeconds) * time.Second
	if len(cfg.WebListenAddresses) == 0 {
		cfg.WebListenAddresses = append(cfg.WebListenAddresses, ":9100")
	}

	return cfg
}

type multiString []string

func (m *multiString) String() string {
	if m == nil {
		return ""
	}
	return strings.Join(*m, ",")
}

func (m *multiString) Set(value string) error {
	*m = append(*m, value)
	return nil
}
