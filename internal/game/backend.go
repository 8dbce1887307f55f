package game

import (
	"log/slog"

	"github.com/alwan/alwan/internal/bot"
	"github.com/alwan/alwan/internal/config"
)

// NewBackend builds the Windows collaborators for one session: input source
// first, then the injector, then the screen capture.
func NewBackend(cfg *config.Config, logger *slog.Logger) (*bot.Collaborators, error) {
	in, err := NewInputSource(cfg.KeyBindings)
	if err != nil {
		return nil, err
	}

	var mouse bot.Injector
	switch cfg.Mouse.Type {
	case config.MouseLog:
		mouse = NewLogHID(logger)
	default:
		mouse = NewHID(cfg)
	}

	screen, err := NewScreen(cfg)
	if err != nil {
		return nil, err
	}

	logger.Debug("Session backend ready",
		slog.Int("screenWidth", screen.screenW),
		slog.Int("screenHeight", screen.screenH),
		slog.Int("fovX", screen.fovW),
		slog.Int("fovY", screen.fovH),
		slog.String("detector", cfg.Screen.Detector))

	return &bot.Collaborators{Input: in, Acquirer: screen, Mouse: mouse}, nil
}
