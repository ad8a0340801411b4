package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/saizk/whapbot/internal/browser"
	"github.com/saizk/whapbot/internal/config"
	"github.com/saizk/whapbot/internal/driver"
	"github.com/saizk/whapbot/internal/logging"
	"github.com/saizk/whapbot/internal/platform"
	"github.com/saizk/whapbot/internal/release"
)

// Test hooks.
var (
	newDetector = platform.NewDetector
	newFetcher  = func() driver.Fetcher { return driver.NewDownloader() }
	newProber   = func(osTag string) defaultProber { return browser.NewProber(osTag) }
)

// defaultProber is the browser probe as used by the CLI.
type defaultProber interface {
	release.VersionProber
	DefaultBrowser(ctx context.Context) (browser.Family, error)
}

// app holds everything a subcommand needs, built from flags and config.
type app struct {
	info    *platform.Info
	config  *config.Config
	manager *driver.Manager
	prober  defaultProber
	logger  *zap.Logger
}

func newApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	ctx := cmd.Context()
	logger := logging.New(cmd.ErrOrStderr(), opts.verbose)

	info, err := newDetector().Detect(ctx)
	if err != nil {
		return nil, fmt.Errorf("detect platform: %w", err)
	}

	cfg, err := loadConfig(ctx, opts, info, logger)
	if err != nil {
		return nil, err
	}
	if opts.root != "" {
		cfg.Root = opts.root
	}

	feeds := release.NewFeedClient(info.OSTag())
	for f, url := range cfg.Feeds {
		feeds.SetEndpoint(f, url)
	}
	prober := newProber(info.OSTag())

	mgr, err := driver.NewManager(driver.Config{
		Root:     cfg.Root,
		OSTag:    info.OSTag(),
		Resolver: release.NewResolver(feeds, prober),
		Fetcher:  newFetcher(),
		Logger:   logging.NewAdapter(logger, "driver"),
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("platform detected",
		zap.String("os", info.OS),
		zap.String("arch", info.Arch),
		zap.String("root", cfg.Root))

	return &app{info: info, config: cfg, manager: mgr, prober: prober, logger: logger}, nil
}

// loadConfig parses --config, or ./whapbot.lua when it exists. Without either
// the defaults apply.
func loadConfig(ctx context.Context, opts *rootOptions, info *platform.Info, logger *zap.Logger) (*config.Config, error) {
	path := opts.configPath
	if path == "" {
		if _, err := os.Stat(config.DefaultFile); errors.Is(err, os.ErrNotExist) {
			return &config.Config{Root: config.DefaultRoot}, nil
		}
		path = config.DefaultFile
	}

	parser := config.NewParser(platform.StaticDetector{Info: info}).
		WithLogger(logging.NewAdapter(logger, "config"))
	cfg, err := parser.ParseFile(ctx, path)
	if err != nil {
		return nil, errors.New(config.FormatError(err, opts.verbose))
	}
	return cfg, nil
}

// report prints one line per acquisition result.
func report(cmd *cobra.Command, results []*driver.Result) {
	for _, res := range results {
		if res == nil {
			continue
		}
		if res.Skipped {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: already installed at %s\n", res.Family, res.Path)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: installed %s at %s\n", res.Family, res.Version, res.Path)
	}
}
