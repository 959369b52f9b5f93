package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/google/uuid"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for minimal containers

	"github.com/ericfisherdev/panelctl/internal/adapter/driven/panel"
	"github.com/ericfisherdev/panelctl/internal/adapter/driven/redisstore"
	"github.com/ericfisherdev/panelctl/internal/adapter/driven/secretbox"
	sqliteadapter "github.com/ericfisherdev/panelctl/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/panelctl/internal/adapter/driving/cli"
	"github.com/ericfisherdev/panelctl/internal/application"
	"github.com/ericfisherdev/panelctl/internal/config"
	"github.com/ericfisherdev/panelctl/internal/datefmt"
	"github.com/ericfisherdev/panelctl/internal/domain/port/driven"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		if !errors.Is(err, cli.ErrReported) {
			fmt.Fprintln(os.Stderr, "panelctl:", err)
		}
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
		With("invocation", uuid.NewString())
	slog.SetDefault(logger)
	logger.Debug("config loaded",
		"base_url", cfg.BaseURL,
		"store", cfg.Store,
		"timezone", cfg.Timezone,
		"cache_dir", cfg.CacheDir,
		"max_stale", cfg.MaxStale,
		"encryption", cfg.HasSecretKey(),
	)

	// 2. Cancel in-flight requests on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open the credential store.
	box, err := secretbox.New(cfg.SecretKey)
	if err != nil {
		return err
	}
	store, closeStore, err := openStore(ctx, cfg, box)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeStore(); closeErr != nil {
			logger.Error("error closing credential store", "error", closeErr)
		}
	}()

	// 4. Wire the session, the panel client and the error handler.
	landing, err := panel.ResolveLanding(cfg.BaseURL, cfg.LandingPage)
	if err != nil {
		return err
	}
	notifier := cli.NewTerminalNotifier(os.Stderr, !color.NoColor)
	navigator := cli.NewBrowserNavigator(os.Stdout, cfg.OpenBrowser)
	session := application.NewSession(store, navigator, landing, logger)

	client, err := panel.NewClient(cfg.BaseURL, session, panel.ClientOptions{
		Timeout:  cfg.Timeout,
		CacheDir: cfg.CacheDir,
		MaxStale: cfg.MaxStale,
	}, logger)
	if err != nil {
		return err
	}

	app := &cli.App{
		Session: session,
		Errors:  application.NewErrorHandler(session, notifier, logger),
		Panel:   client,
		Dates:   datefmt.New(cfg.Location()),
	}

	// 5. Run the command.
	return cli.NewRootCommand(app, version).ExecuteContext(ctx)
}

// openStore returns the configured credential backend and its close func.
func openStore(ctx context.Context, cfg *config.Config, box *secretbox.Box) (driven.CredentialStore, func() error, error) {
	switch cfg.Store {
	case config.StoreRedis:
		client, err := redisstore.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return redisstore.New(client, box), client.Close, nil
	default:
		db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		version, err := sqliteadapter.RunMigrations(db.Writer)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		slog.Debug("credential schema ready", "path", cfg.DBPath, "version", version)
		return sqliteadapter.NewCredentialRepo(db, box), db.Close, nil
	}
}
