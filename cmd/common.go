package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"quickmenu/internal/accessibility/filesource"
	"quickmenu/internal/config"
	"quickmenu/internal/domain"
	"quickmenu/internal/eventbus"
	"quickmenu/internal/logging"
	"quickmenu/internal/menu"
	"quickmenu/internal/search"
)

var logCloser io.Closer

// openLog sends log output to path; an empty path keeps the current output
func openLog(path string) error {
	if path == "" || logCloser != nil {
		return nil
	}
	closer, err := logging.SetOutputFile(path)
	if err != nil {
		return err
	}
	logCloser = closer
	return nil
}

// closeLog restores stderr output
func closeLog() {
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
}

// loadConfig reads the config file and applies the log flags on top of it
func loadConfig(bus eventbus.EventBus) (config.ConfigService, *config.Config, error) {
	svc := config.NewConfigService(cfgFile, bus)
	cfg, err := svc.Load()
	if err != nil {
		return nil, nil, err
	}

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	if err := logging.SetLevel(level); err != nil {
		return nil, nil, err
	}
	logging.Log.WithField("path", svc.Path()).Debug("Configuration loaded")
	return svc, cfg, nil
}

func openSource() (*filesource.Source, error) {
	if menuFile == "" {
		return nil, errors.New("no menu source: pass --menu with a menu description file")
	}
	return filesource.Open(menuFile)
}

// capture reads and indexes the menu of the source's application once
func capture(ctx context.Context, src *filesource.Source, cfg *config.Config) (domain.Target, *domain.MenuNode, []domain.Item, error) {
	if !src.Trusted() {
		return domain.Target{}, nil, nil, domain.ErrPermissionDenied
	}
	target, err := src.Frontmost(ctx)
	if err != nil {
		return domain.Target{}, nil, nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.CaptureTimeout())
	defer cancel()

	opts := menu.Options{SkipFirstTopLevel: cfg.SkipFirstTopLevel, MaxDepth: cfg.MaxDepth}
	tree, err := menu.NewBuilder(src, opts).Capture(ctx, target.PID)
	if err != nil {
		return target, nil, nil, fmt.Errorf("failed to capture menus of %s: %w", target, err)
	}

	indexer, err := search.NewIndexer(cfg.Exclude)
	if err != nil {
		return target, nil, nil, err
	}
	return target, tree, indexer.Build(tree), nil
}
