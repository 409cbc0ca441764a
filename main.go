// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"tuner/cmd"
	"tuner/internal/audio"
	"tuner/internal/config"
	"tuner/internal/log"
	"tuner/internal/transport"
	"tuner/internal/transport/udp"
	"tuner/internal/tui"
	"tuner/internal/tuner"
	"tuner/pkg/build"
)

// main is the entry point for the tuner.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Parse command line arguments and load configuration
//   - Execute one-off commands if requested
//
// 2. Concurrent Phase (Hot Path):
//   - Initialize PortAudio and the tuning session
//   - Begin input stream processing and analysis
//   - Start recording and transports if enabled
//
// 3. Shutdown Phase (Cold Path):
//   - Handle termination signals
//   - Stop recording if active
//   - Clean up resources
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	// Development builds carry no ldflags; the defaults stay in place.
	if err := build.Initialize(); err != nil {
		log.Debugf("build: %v", err)
	}

	options, err := cmd.ParseArgs()
	if err != nil {
		log.Fatalf("%v", err)
	}
	if options == nil {
		return // help or version
	}

	cfg, err := options.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.Configure(cfg.LogLevel, cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Handle one-off commands that don't require the capture engine.
	if options.Command != cmd.CommandListen {
		if err := executeCommand(ctx, options, cfg); err != nil {
			log.Fatalf("%v", err)
		}
		return
	}

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	if err := listen(ctx, options, cfg); err != nil {
		log.Fatalf("%v", err)
	}
}

// listen captures from the input device and publishes readings until ctx
// is cancelled or the terminal interface is closed.
func listen(ctx context.Context, options *cmd.Options, cfg *config.Config) error {
	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()

	sessionOpts, err := cfg.SessionOptions()
	if err != nil {
		return err
	}
	session, err := tuner.NewSession(sessionOpts)
	if err != nil {
		return err
	}

	sinks, cleanup, err := openSinks(cfg, options.TUIMode)
	if err != nil {
		return err
	}
	defer cleanup()

	engine, err := audio.NewEngine(cfg, session, sinks.all...)
	if err != nil {
		return err
	}
	defer func() {
		if err := engine.Close(); err != nil {
			log.Errorf("Error closing audio engine: %v", err)
		}
	}()

	// CRITICAL: Start of real-time audio processing
	// The first call to StartInputStream triggers PortAudio to begin
	// calling the callback function, marking the start of the hot path
	if err := engine.StartInputStream(); err != nil {
		return err
	}

	outputFile := ""
	if cfg.Recording.Enabled {
		outputFile = options.Output
		if outputFile == "" {
			outputFile = audio.RecordingFilename(cfg.Recording.OutputDir, time.Now())
		}
		if err := engine.StartRecording(outputFile); err != nil {
			return err
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- engine.Run(runCtx) }()

	if sinks.feed != nil {
		// The terminal interface owns the foreground until the user quits.
		if err := tui.RunTuner(sinks.feed, cfg.Tuning.ReferenceHz, deviceLabel(cfg)); err != nil {
			log.Errorf("tui: %v", err)
		}
		cancel()
	} else {
		log.Infof("Listening on %s (A4 = %.1f Hz), press Ctrl+C to stop", deviceLabel(cfg), cfg.Tuning.ReferenceHz)
	}

	// Block until termination signal is received
	runErr := <-errc

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	if err := engine.StopInputStream(); err != nil {
		log.Warnf("Error stopping input stream: %v", err)
	}

	// Stop recording if active and save the file
	if cfg.Recording.Enabled {
		if err := engine.StopRecording(); err != nil {
			log.Errorf("Error stopping recording: %v", err)
		} else {
			log.Infof("Recording saved to: %s", outputFile)
		}
	}

	return runErr
}

type sinkSet struct {
	all  []audio.Sink
	feed *tui.Feed
}

// openSinks builds the reading consumers the configuration asks for. The
// returned cleanup closes them in reverse order.
func openSinks(cfg *config.Config, tuiMode bool) (sinkSet, func(), error) {
	var (
		set     sinkSet
		closers []func() error
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warnf("transport: close: %v", err)
			}
		}
	}

	if tuiMode {
		set.feed = tui.NewFeed(8)
		set.all = append(set.all, set.feed)
		closers = append(closers, set.feed.Close)
	} else {
		logging := transport.NewLoggingTransport()
		set.all = append(set.all, logging)
		closers = append(closers, logging.Close)
	}

	if cfg.Transport.WebSocketEnabled {
		ws := transport.NewWebSocketTransport(cfg.Transport.WebSocketAddress)
		set.all = append(set.all, ws)
		closers = append(closers, ws.Close)
	}

	if cfg.Transport.UDPEnabled {
		latest := transport.NewLatest()
		sender, err := udp.NewUDPSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			cleanup()
			return sinkSet{}, nil, err
		}
		publisher, err := udp.NewUDPPublisher(cfg.Transport.UDPSendInterval, sender, latest)
		if err != nil {
			sender.Close()
			cleanup()
			return sinkSet{}, nil, err
		}
		publisher.Start()
		set.all = append(set.all, latest)
		closers = append(closers, sender.Close, publisher.Close)
	}

	return set, cleanup, nil
}

func deviceLabel(cfg *config.Config) string {
	if cfg.Audio.InputDevice == config.MinDeviceID {
		return "default input"
	}
	return "device " + strconv.Itoa(cfg.Audio.InputDevice)
}
