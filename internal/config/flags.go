// Package config defines the CLI flags (and their environment variable
// and TOML config file equivalents) for cmd/jerrydbg, following the
// three-tier precedence (flag > env var > config file) used throughout
// this module's stack.
package config

import (
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"

	"github.com/jerryscript-project/jerry-debugger-go/pkg/debugger"
)

const (
	ConfigDirName  = "jerrydbg"
	ConfigFileName = "config.toml"

	DefaultPort             = 6501
	DefaultBufferSize       = 128
	DefaultCPointerSize     = 2
	DefaultMessageFrequency = 5
	DefaultPollIntervalMS   = 100
)

// Flags defines jerrydbg's CLI surface. Every flag can also be set via
// an environment variable or the application's TOML config file.
func Flags(configFilePath altsrc.StringSourcer) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "port",
			Usage: "TCP port the debugger listens on for one client",
			Value: DefaultPort,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("JERRYDBG_PORT"),
				toml.TOML("jerrydbg.port", configFilePath),
			),
		},
		&cli.IntFlag{
			Name:  "buffer-size",
			Usage: "fixed send/receive buffer size in bytes (64-256)",
			Value: DefaultBufferSize,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("JERRYDBG_BUFFER_SIZE"),
				toml.TOML("jerrydbg.buffer_size", configFilePath),
			),
		},
		&cli.IntFlag{
			Name:  "cpointer-size",
			Usage: "compressed pointer wire width in bytes (2 or 4)",
			Value: DefaultCPointerSize,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("JERRYDBG_CPOINTER_SIZE"),
				toml.TOML("jerrydbg.cpointer_size", configFilePath),
			),
		},
		&cli.IntFlag{
			Name:  "message-frequency",
			Usage: "bytecode dispatches between non-blocking polls",
			Value: DefaultMessageFrequency,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("JERRYDBG_MESSAGE_FREQUENCY"),
				toml.TOML("jerrydbg.message_frequency", configFilePath),
			),
		},
		&cli.IntFlag{
			Name:  "poll-interval",
			Usage: "milliseconds to sleep between polls while blocked on a pause",
			Value: DefaultPollIntervalMS,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("JERRYDBG_POLL_INTERVAL_MS"),
				toml.TOML("jerrydbg.poll_interval_ms", configFilePath),
			),
		},
		&cli.BoolFlag{
			Name:  "pretty-log",
			Usage: "human-readable console logging, instead of JSON",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("JERRYDBG_PRETTY_LOG"),
				toml.TOML("jerrydbg.pretty_log", configFilePath),
			),
		},
		&cli.StringFlag{
			Name:  "metrics-csv",
			Usage: "path to append a CSV row of session activity to on disconnect",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("JERRYDBG_METRICS_CSV"),
				toml.TOML("jerrydbg.metrics_csv", configFilePath),
			),
		},
	}
}

// SessionConfig builds a debugger.Config from a parsed cli.Command.
func SessionConfig(cmd *cli.Command) debugger.Config {
	return debugger.Config{
		BufferSize:       int(cmd.Int("buffer-size")),
		CPointerSize:     int(cmd.Int("cpointer-size")),
		MessageFrequency: int(cmd.Int("message-frequency")),
		PollInterval:     time.Duration(cmd.Int("poll-interval")) * time.Millisecond,
		MetricsCSVPath:   cmd.String("metrics-csv"),
	}
}
