package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

var (
	serverURL  = flag.String("server", "ws://localhost:8080/ws/media", "Media stream WebSocket URL")
	toNumber   = flag.String("to", "+14155550100", "Dialed bot number")
	fromNumber = flag.String("from", "+14155550199", "Caller number")
	callSID    = flag.String("call-sid", "CA0000000000000000000000000000sim1", "Call SID")
	streamSID  = flag.String("stream-sid", "MZ0000000000000000000000000000sim1", "Stream SID")
	toneHz     = flag.Float64("tone", 440.0, "Caller tone frequency (Hz)")
	burstMs    = flag.Int("burst", 2000, "Utterance length (ms)")
	pauseMs    = flag.Int("pause", 1500, "Silence between utterances (ms)")
	duration   = flag.Duration("duration", 0, "Hang up after this long (0 = until Ctrl+C)")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Parse()

	// Setup logger
	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	config := &SimulatorConfig{
		ServerURL:  *serverURL,
		CallSID:    *callSID,
		StreamSID:  *streamSID,
		ToNumber:   *toNumber,
		FromNumber: *fromNumber,
		FrameMs:    20,
		ToneHz:     *toneHz,
		BurstMs:    *burstMs,
		PauseMs:    *pauseMs,
	}

	simulator := NewSimulator(config, logger)

	if err := simulator.Connect(); err != nil {
		logger.Fatal("Failed to connect to server", zap.Error(err))
	}
	simulator.Run()

	fmt.Printf("Media stream call simulator started\n")
	fmt.Printf("  Server: %s\n", *serverURL)
	fmt.Printf("  To:     %s\n", *toNumber)
	fmt.Printf("  From:   %s\n", *fromNumber)
	fmt.Println("\nPress Ctrl+C to hang up")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if *duration > 0 {
		select {
		case <-sigChan:
		case <-time.After(*duration):
		}
	} else {
		<-sigChan
	}

	fmt.Println("\nHanging up...")
	simulator.Stop()
}
