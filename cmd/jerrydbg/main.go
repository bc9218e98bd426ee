// Command jerrydbg hosts a single debugger session over TCP, wiring
// pkg/debugger to a real socket (pkg/transport.TCP) and a toy script
// engine (pkg/refengine) so the protocol can be exercised end to end
// without a real bytecode VM.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tzrikka/xdg"
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli/v3"

	"github.com/jerryscript-project/jerry-debugger-go/internal/config"
	"github.com/jerryscript-project/jerry-debugger-go/internal/logger"
	"github.com/jerryscript-project/jerry-debugger-go/pkg/debugger"
	"github.com/jerryscript-project/jerry-debugger-go/pkg/refengine"
	"github.com/jerryscript-project/jerry-debugger-go/pkg/transport"
)

func main() {
	bi, _ := debug.ReadBuildInfo()

	cmd := &cli.Command{
		Name:    "jerrydbg",
		Usage:   "standalone host for the jerry-debugger protocol engine",
		Version: bi.Main.Version,
		Commands: []*cli.Command{
			serveCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serveCommand() *cli.Command {
	path := configFile()

	return &cli.Command{
		Name:  "serve",
		Usage: "accept one debugger client and run the reference script engine against it",
		Flags: config.Flags(path),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			initLog(cmd.Bool("pretty-log"))
			return serve(ctx, cmd)
		},
	}
}

// configFile returns the path to jerrydbg's TOML config file, creating an
// empty one if it doesn't already exist — the same xdg-based precedence
// the teacher's cmd/timpani establishes for its own config file.
func configFile() altsrc.StringSourcer {
	p, err := xdg.CreateFile(xdg.ConfigHome, config.ConfigDirName, config.ConfigFileName)
	if err != nil {
		logger.FatalError("failed to create config file", err)
	}
	return altsrc.StringSourcer(p)
}

// initLog configures both halves of the ambient logging split
// (SPEC_FULL.md §2): zerolog's global logger, used by pkg/debugger for
// session/connection narration, and log/slog's default logger, used by
// pkg/wsframe and pkg/message for frame/codec-level detail.
func initLog(pretty bool) {
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		return
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg := config.SessionConfig(cmd)
	port := int(cmd.Int("port"))

	eng := refengine.New()
	sess := debugger.New(ctx, transport.NewTCP(), eng, cfg, log.Logger)

	log.Info().Int("port", port).Msg("waiting for debugger client")
	if err := sess.Init(port); err != nil {
		return fmt.Errorf("jerrydbg: %w", err)
	}
	defer sess.Close()

	return runDemoScript(ctx, sess, eng)
}
