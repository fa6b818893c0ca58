package cli

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/tablevoice/widget/internal/exchange"
	"github.com/tablevoice/widget/internal/logger"
	"github.com/tablevoice/widget/internal/media"
	"github.com/tablevoice/widget/internal/metrics"
	"github.com/tablevoice/widget/internal/recorder"
	"github.com/tablevoice/widget/internal/session"
	"github.com/tablevoice/widget/internal/transport"
)

// NewChatCmd builds the interactive chat command.
func NewChatCmd(deps *Dependencies) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive reservation conversation",
		Long:  "Opens a conversation with the configured assistant.\nType messages, pick quick actions by number, or use /record to capture a simulated voice clip (/cancel discards it, /quit exits).",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(deps, metricsAddr)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")

	return cmd
}

func runChat(deps *Dependencies, metricsAddr string) error {
	cfg := deps.Config
	logger.SetLevel(cfg.Logging.Level)

	if cfg.Assistant.BaseURL == "" {
		return fmt.Errorf("assistant base_url is required for the terminal client")
	}

	var m *metrics.Metrics
	if metricsAddr != "" {
		m = metrics.New(nil)
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				logger.L.Error("metrics server failed", "error", err)
			}
		}()
	}

	ctx := context.Background()
	sessionID := session.NewID(cfg.Assistant.ID)
	client := transport.NewClient(cfg.Assistant.BaseURL, cfg.Assistant.ID, 30*time.Second)
	console := NewConsole(os.Stdout, cfg.Widget.HeaderTitle)
	console.Banner()

	orch := exchange.New(client, console, sessionID, cfg.Widget.WelcomeMessage, m)

	rec := recorder.New(&media.SimulatedPlatform{Rate: cfg.Audio.SampleRate}, recorder.Config{
		SampleRate:      cfg.Audio.SampleRate,
		Timeslice:       time.Duration(cfg.Audio.TimesliceMillis) * time.Millisecond,
		ProcessorBuffer: cfg.Audio.ProcessorBuffer,
		EchoCancel:      cfg.Audio.EchoCancel,
		NoiseSuppress:   cfg.Audio.NoiseSuppress,
	})
	rec.OnTick = func(seconds int) {
		fmt.Printf("\rrecording %s ", recorder.FormatElapsed(seconds))
	}
	rec.OnClip = func(clip recorder.Clip) {
		fmt.Println()
		if m != nil {
			m.RecordingsCompleted.Inc()
		}
		if err := orch.SendClip(ctx, clip.Data, clip.MIMEType); err != nil {
			fmt.Println(err)
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Printf("%s\n", cfg.Widget.InputPlaceholder)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			return nil
		case line == "/record":
			wasRecording := rec.Recording()
			if err := rec.Toggle(ctx); err != nil {
				if m != nil {
					m.RecordingsFailed.Inc()
				}
				fmt.Println(recorder.UserMessage(err))
				continue
			}
			if !wasRecording {
				if m != nil {
					m.RecordingsStarted.Inc()
				}
				fmt.Println("recording... /record stops, /cancel discards")
			}
		case line == "/cancel":
			if err := rec.Cancel(); err != nil {
				fmt.Println("nothing to cancel")
				continue
			}
			if m != nil {
				m.RecordingsCancelled.Inc()
			}
			fmt.Println("\nrecording discarded")
		default:
			text := line
			if n, err := strconv.Atoi(line); err == nil {
				if b, ok := console.Button(n); ok {
					text = b.Message
				}
			}
			if err := orch.SendText(ctx, text); err != nil {
				fmt.Println(err)
			}
		}
	}
	return scanner.Err()
}
