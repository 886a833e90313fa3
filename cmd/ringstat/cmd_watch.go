package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ringstat/internal/campaign"
)

// debounce window: simulators write a run directory file-by-file, so wait
// for the burst of events to settle before re-analyzing.
const watchSettle = 2 * time.Second

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	root := args[0]

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(root); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}

	// Initial pass; an empty root is fine in watch mode, runs may still
	// be on their way.
	if err := analyzeOnce(cmd, cfg, root); err != nil && !errors.Is(err, campaign.ErrNoRuns) {
		return err
	}

	logger.Info("watching campaign root", zap.String("root", root))

	var settle *time.Timer
	settleCh := make(chan struct{}, 1)
	arm := func() {
		if settle != nil {
			settle.Stop()
		}
		settle = time.AfterFunc(watchSettle, func() {
			select {
			case settleCh <- struct{}{}:
			default:
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename) {
				logger.Debug("campaign change", zap.String("path", event.Name), zap.String("op", event.Op.String()))
				arm()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))
		case <-settleCh:
			if err := analyzeOnce(cmd, cfg, root); err != nil && !errors.Is(err, campaign.ErrNoRuns) {
				return err
			}
		}
	}
}
