package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mkaino/ebot/internal/bot"
	"github.com/mkaino/ebot/internal/config"
	"github.com/mkaino/ebot/internal/display"
	"github.com/mkaino/ebot/internal/ebusb"
	"github.com/mkaino/ebot/internal/robot"
)

// Exit codes.
const (
	exitOK       = 0
	exitInit     = 1
	exitNotFound = 2
	exitTransfer = 3
)

func main() { os.Exit(run()) }

func run() int {
	logLevel := parseLogLevel(envStr("EBOT_LOG_LEVEL", "info"))
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	cfg, err := config.Load(envStr("EBOT_CONFIG", "ebot.yml"))
	if err != nil {
		slog.Error("config load failed", "err", err)
		return exitInit
	}
	applyEnv(cfg)

	pixels, err := renderFrame(cfg)
	if err != nil {
		slog.Error("frame render failed", "err", err)
		return exitInit
	}

	joints := robot.NewState()
	joints.SetEnabled(cfg.Servos.Enabled)
	for i, a := range cfg.Servos.Angles {
		joints.Set(i, a)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	b := bot.New(cfg)
	if err := b.Connect(); err != nil {
		if errors.Is(err, ebusb.ErrNotFound) {
			slog.Error("device not found", "err", err)
			return exitNotFound
		}
		slog.Error("device open failed", "err", err)
		return exitInit
	}
	defer b.Disconnect()

	frame := bot.Frame{Pixels: pixels, Joint: joints.Config()}

	if cfg.Stream.FPS <= 0 {
		if err := b.SendFrame(ctx, frame); err != nil {
			slog.Error("frame send failed", "err", err)
			return exitTransfer
		}
		slog.Info("frame sent", "bytes", ebusb.FrameWireSize)
		return exitOK
	}

	frames := make(chan bot.Frame)
	go func() {
		defer close(frames)
		ticker := time.NewTicker(time.Second / time.Duration(cfg.Stream.FPS))
		defer ticker.Stop()
		sent := 0
		for {
			select {
			case <-ctx.Done():
				return
			case frames <- frame:
				sent++
				if cfg.Stream.Frames > 0 && sent >= cfg.Stream.Frames {
					return
				}
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	slog.Info("streaming", "fps", cfg.Stream.FPS, "mode", cfg.Display.Mode)
	if err := b.Stream(ctx, frames); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("stream failed", "err", err)
		return exitTransfer
	}
	slog.Info("done")
	return exitOK
}

func renderFrame(cfg *config.Config) ([]byte, error) {
	switch cfg.Display.Mode {
	case "", "eyes":
		return display.Eyes(), nil
	case "stripes":
		return display.Stripes(), nil
	case "gradient":
		return display.Gradient(), nil
	case "solid":
		r, g, b, err := parseColor(cfg.Display.Color)
		if err != nil {
			return nil, err
		}
		return display.Solid(r, g, b), nil
	case "image":
		return display.LoadImage(cfg.Display.Image)
	}
	return nil, fmt.Errorf("unknown display mode %q", cfg.Display.Mode)
}

func parseColor(s string) (r, g, b byte, err error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 0, 0, 0, fmt.Errorf("color must be RRGGBB, got %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, err
	}
	return byte(v >> 16), byte(v >> 8), byte(v), nil
}

// applyEnv layers environment overrides over the file configuration.
func applyEnv(cfg *config.Config) {
	if v := os.Getenv("EBOT_SERIAL_PORT"); v != "" {
		cfg.Serial.Enabled = true
		cfg.Serial.Port = v
	}
	if v := os.Getenv("EBOT_MODE"); v != "" {
		cfg.Display.Mode = v
	}
	if v := os.Getenv("EBOT_IMAGE"); v != "" {
		cfg.Display.Mode = "image"
		cfg.Display.Image = v
	}
	if v := os.Getenv("EBOT_VID"); v != "" {
		if id, err := parseID(v); err == nil {
			cfg.USB.VendorID = id
		}
	}
	if v := os.Getenv("EBOT_PID"); v != "" {
		if id, err := parseID(v); err == nil {
			cfg.USB.ProductID = id
		}
	}
	cfg.USB.Interface = envInt("EBOT_INTERFACE", cfg.USB.Interface)
	cfg.USB.EndpointOut = envInt("EBOT_EP_OUT", cfg.USB.EndpointOut)
	cfg.Stream.FPS = envInt("EBOT_FPS", cfg.Stream.FPS)
	cfg.Stream.Frames = envInt("EBOT_FRAMES", cfg.Stream.Frames)
}

func parseID(s string) (uint16, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 16)
	return uint16(v), err
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
