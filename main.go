// Command scorescribble lays an annotation overlay over a music score.
//
// By default it opens a desktop window. With --headless it serves the
// websocket bridge instead, so a browser page can drive the overlay, and
// --discover lists bridges advertised on the LAN.
package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ScoreScribble/internal/config"
	bridgenet "ScoreScribble/internal/net"
	"ScoreScribble/internal/overlay"
	"ScoreScribble/internal/state"
	"ScoreScribble/internal/ui"

	"github.com/spf13/pflag"
)

const discoverTimeout = 3 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath string
		scorePath  string
		headless   bool
		discover   bool
		debugMode  bool
		showHelp   bool
	)

	flags := pflag.NewFlagSet("scorescribble", pflag.ContinueOnError)
	flags.StringVarP(&configPath, "config", "c", "", "Path to a YAML settings file")
	flags.StringVarP(&scorePath, "score", "s", "", "PNG or JPEG score page to annotate (default: staff paper)")
	flags.BoolVar(&headless, "headless", false, "Serve the websocket bridge without opening a window")
	flags.BoolVar(&discover, "discover", false, "List bridges advertised on the LAN and exit")
	flags.BoolVar(&debugMode, "debug", false, "Log engine activity to stderr")
	flags.BoolVarP(&showHelp, "help", "h", false, "Show help message")
	config.RegisterFlags(flags)
	if err := flags.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	if showHelp {
		fmt.Fprintln(os.Stderr, "Usage: scorescribble [flags]")
		flags.PrintDefaults()
		return 0
	}

	if debugMode {
		state.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}
	if err := cfg.ApplyFlags(flags); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading flags: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid settings: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if discover {
		return runDiscover(ctx)
	}

	ctrl := overlay.New(
		overlay.WithToolState(cfg.ToolState()),
		overlay.WithPollInterval(cfg.PollInterval),
		overlay.WithStrokeOptions(cfg.StrokeOptions()...),
	)
	defer ctrl.Close()

	if headless {
		return runBridge(ctx, cfg, ctrl)
	}
	return runDesktop(ctx, cfg, ctrl, scorePath)
}

func runDesktop(ctx context.Context, cfg config.Config, ctrl *overlay.Controller, scorePath string) int {
	log.Println("Starting desktop host")
	var score image.Image
	if scorePath != "" {
		img, err := ui.LoadScore(scorePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		score = img
		log.Printf("[HOST] Loaded score %s (%dx%d)", scorePath, img.Bounds().Dx(), img.Bounds().Dy())
	}
	ui.RunApp(ctx, ctrl, ui.Options{Score: score, HeaderVisible: cfg.Header})
	return 0
}

func runBridge(ctx context.Context, cfg config.Config, ctrl *overlay.Controller) int {
	log.Println("Starting bridge host")
	ln, err := net.Listen("tcp", cfg.Bridge.Listen)
	if err != nil {
		log.Printf("[HOST] Failed to listen on %s: %v", cfg.Bridge.Listen, err)
		return 1
	}

	if cfg.Bridge.Advertise {
		port := ln.Addr().(*net.TCPAddr).Port
		server, err := bridgenet.Advertise(cfg.Bridge.Instance, port)
		if err != nil {
			log.Printf("[HOST] Could not advertise bridge: %v", err)
		} else {
			defer server.Shutdown()
			log.Printf("[HOST] Advertising %q on port %d", cfg.Bridge.Instance, port)
		}
	}

	log.Printf("[HOST] Bridge listening on ws://%s%s", ln.Addr(), bridgenet.BridgePath)
	b := bridgenet.NewBridge(ctx, ctrl)
	if err := bridgenet.Serve(ctx, ln, b); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("[HOST] Bridge stopped: %v", err)
		return 1
	}
	log.Println("[HOST] Bridge stopped")
	return 0
}

func runDiscover(ctx context.Context) int {
	log.Println("[CLIENT] Searching for bridges...")
	found := 0
	err := bridgenet.Browse(ctx, discoverTimeout, func(addr string) {
		found++
		fmt.Printf("ws://%s%s\n", addr, bridgenet.BridgePath)
	})
	if err != nil {
		log.Printf("[CLIENT] Discovery failed: %v", err)
		return 1
	}
	if found == 0 {
		log.Println("[CLIENT] No bridges found on the local network")
		return 1
	}
	log.Printf("[CLIENT] Found %d bridge(s)", found)
	return 0
}
