package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	sloggger "github.com/alwan/alwan/cmd/alwan/log"
	"github.com/alwan/alwan/internal/bot"
	"github.com/alwan/alwan/internal/config"
	"github.com/alwan/alwan/internal/game"
	"github.com/alwan/alwan/internal/utils"
	"github.com/alwan/alwan/internal/utils/winproc"
	"golang.org/x/sync/errgroup"
)

var (
	buildID   string
	buildTime string
)

const license = `Alwan - Colorbot Research Project (fork of Unibot)
Original Copyright (C) 2025 vike256
This program comes with ABSOLUTELY NO WARRANTY.
This is free software for EDUCATIONAL PURPOSES ONLY, licensed under the
GNU General Public License version 3 or later.
For details see <https://www.gnu.org/licenses/>.`

// wrapWithRecover wraps a function with panic recovery logic
func wrapWithRecover(logger *slog.Logger, f func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				stackTrace := debug.Stack()
				errMsg := fmt.Sprintf("panic recovered: %v\nStacktrace: %s", r, stackTrace)
				logger.Error(errMsg)
				sloggger.FlushLog()
				err = fmt.Errorf("panic recovered: %v", r)
			}
		}()
		return f()
	}
}

func main() {
	copied, err := config.EnsureFromTemplate(config.DefaultPath, config.TemplatePath)
	if err != nil {
		utils.ShowDialog("Error loading configuration", err.Error())
		log.Fatalf("Error loading configuration: %s", err.Error())
		return
	}

	provider := config.NewFileProvider(config.DefaultPath)
	cfg, err := provider.Load()
	if err != nil {
		utils.ShowDialog("Error loading configuration", err.Error())
		log.Fatalf("Error loading configuration: %s", err.Error())
		return
	}

	logger, err := sloggger.NewLogger(cfg.Debug.Log, cfg.LogSaveDirectory, "")
	if err != nil {
		log.Fatalf("Error starting logger: %s", err.Error())
	}
	defer sloggger.FlushAndClose()

	fmt.Println(license)
	logger.Info("Starting Alwan",
		slog.String("version", config.Version),
		slog.String("buildID", buildID),
		slog.String("buildTime", buildTime))
	if copied {
		logger.Info("Configuration created from template", slog.String("path", config.DefaultPath))
	}

	winproc.SetProcessDpiAware.Call() // Set DPI awareness so screen metrics are reported in physical pixels

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	loop := bot.NewLoop(provider, game.NewBackend, logger)

	g.Go(wrapWithRecover(logger, func() error {
		defer cancel()
		err := loop.Run(ctx)
		if errors.Is(err, context.Canceled) {
			logger.Info("Loop stopped", slog.Int("sessions", loop.Sessions()))
			return nil
		}
		return err
	}))

	g.Go(wrapWithRecover(logger, func() error {
		<-ctx.Done()
		logger.Info("Alwan shutting down...")
		return nil
	}))

	if err := g.Wait(); err != nil {
		logger.Error("Error running Alwan", slog.Any("error", err))
		sloggger.FlushAndClose()
		utils.ShowDialog("Alwan error :(", fmt.Sprintf("Alwan stopped with the following error, check the latest log file for more info!\n %s", err.Error()))
		os.Exit(1)
	}
}
