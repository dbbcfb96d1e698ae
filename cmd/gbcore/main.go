// Command gbcore runs a DMG ROM either interactively, in a terminal
// window driven by the half-block ScreenSink, or headlessly for a fixed
// number of frames.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/jrastelli/gbcore"
	"github.com/jrastelli/gbcore/input"
	"github.com/jrastelli/gbcore/render/terminal"
	"github.com/jrastelli/gbcore/timing"
)

func main() {
	app := cli.NewApp()
	app.Name = "gbcore"
	app.Usage = "gbcore [options] <ROM file>"
	app.Description = "A DMG (original Game Boy) emulator core"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "path to the ROM file",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "run without a terminal display",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "number of frames to run in headless mode (required with --headless)",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "debug, info, warn, or error",
			Value: "info",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("gbcore exited with an error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	configureLogging(c.String("log-level"))

	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	emu, err := gbcore.NewWithFile(romPath)
	if err != nil {
		return err
	}

	if c.Bool("headless") {
		return runHeadless(emu, c.Int("frames"))
	}
	return runInteractive(emu)
}

func runHeadless(emu *gbcore.Emulator, frames int) error {
	if frames <= 0 {
		return errors.New("--headless requires --frames with a positive value")
	}

	source := input.None{}
	for i := 0; i < frames; i++ {
		emu.RunFrame(source)
		if (i+1)%60 == 0 {
			slog.Info("frame progress", "completed", i+1, "total", frames)
		}
	}

	slog.Info("headless run complete", "frames", frames)
	return nil
}

func runInteractive(emu *gbcore.Emulator) error {
	backend, err := terminal.NewBackend()
	if err != nil {
		return fmt.Errorf("starting terminal: %w", err)
	}
	defer backend.Close()

	emu.AttachSink(backend)

	limiter := timing.NewTicker()
	defer limiter.Stop()

	for {
		select {
		case <-backend.QuitRequested():
			return nil
		default:
		}

		emu.RunFrame(backend)
		limiter.WaitForNextFrame()
	}
}

func configureLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
