package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/mmcdole/reelkeep/internal/browse"
	"github.com/mmcdole/reelkeep/internal/config"
	"github.com/mmcdole/reelkeep/internal/domain"
	"github.com/mmcdole/reelkeep/internal/lists"
	"github.com/mmcdole/reelkeep/internal/log"
	"github.com/mmcdole/reelkeep/internal/store"
	"github.com/mmcdole/reelkeep/internal/store/redis"
	"github.com/mmcdole/reelkeep/internal/tmdb"
)

// Version is set at build time via -ldflags
var Version = "dev"

const usage = `Usage: reelkeep [flags] <command> [args]

Commands:
  login                      sign in to your TMDB account
  sync                       replace local lists with the account's
  status                     show sync status and list sizes
  list <kind>                show a list (favorites, watchlist, watched)
  add <kind> <id>            save a movie to a list
  remove <kind> <id>         remove a movie from a list
  toggle <kind> <id>         add or remove a movie
  rate <id> <value>          rate a movie (0.5-10)
  unrate <id>                delete a local rating
  ratings                    show all ratings
  clear                      delete every saved list and rating
  search <query>             search the catalog
  find <query>               fuzzy-find saved movies
  discover <category> [page] popular, top_rated, now_playing, upcoming, trending
  info <id>                  show movie details

Flags:
`

func main() {
	// Handle version flag
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("reelkeep %s\n", Version)
		return
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, flag.Args(), os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render(err.Error()))
			flag.Usage()
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("Error:"), err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Setup logger
	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting reelkeep", "version", Version, "command", args[0])

	if args[0] == "login" {
		return runLogin(ctx, cfg, logger, out)
	}

	a, err := newApp(ctx, cfg, logger, out)
	if err != nil {
		return err
	}
	defer a.close()

	return a.dispatch(ctx, args)
}

// app holds the services a command runs against
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer

	client *tmdb.Client
	store  domain.Store
	lists  *lists.Service
	browse *browse.Service
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) (*app, error) {
	client := newClient(cfg, logger)

	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	// Without a session nothing can be mirrored
	var remote domain.AccountRepository
	if client.Authenticated() {
		remote = client
	}

	listSvc := lists.NewService(st, remote, logger, lists.WithMirrorTimeout(cfg.Sync.MirrorTimeout))
	return &app{
		cfg:    cfg,
		logger: logger,
		out:    out,
		client: client,
		store:  st,
		lists:  listSvc,
		browse: browse.NewService(client, listSvc, logger),
	}, nil
}

// close waits for pending remote mirrors before releasing storage
func (a *app) close() {
	a.lists.Wait()
	if err := a.store.Close(); err != nil {
		a.logger.Error("failed to close storage", "error", err)
	}
	a.logger.Info("shutting down")
}

func newClient(cfg *config.Config, logger *slog.Logger) *tmdb.Client {
	return tmdb.NewClient(tmdb.Config{
		BaseURL:      cfg.Catalog.BaseURL,
		ImageBaseURL: cfg.Catalog.ImageBaseURL,
		APIKey:       cfg.Catalog.APIKey,
		AccessToken:  cfg.Catalog.AccessToken,
		Language:     cfg.Catalog.Language,
		AccountID:    cfg.Catalog.AccountID,
		SessionID:    cfg.Catalog.SessionID,
		Timeout:      cfg.Catalog.Timeout,
	}, logger)
}

// openStore selects the storage backend from configuration
func openStore(ctx context.Context, cfg *config.Config) (domain.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return store.NewMemory(), nil
	case config.BackendRedis:
		st, err := redis.Connect(ctx, redis.Options{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
			Prefix:   cfg.Storage.Redis.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		st, err := store.Open(cfg.Storage.Path, cfg.Profile())
		if err != nil {
			return nil, err
		}
		return st, nil
	}
}

// runLogin runs the interactive session flow and saves the session
func runLogin(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	if !cfg.IsConfigured() {
		return fmt.Errorf("%w: set catalog.api_key or catalog.access_token in %s",
			domain.ErrNotAuthenticated, config.DefaultConfigPath())
	}

	client := newClient(cfg, logger)
	session, err := tmdb.NewAuthFlow(client, logger).Run(ctx)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	cfg.SetSession(*session)
	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, SuccessStyle.Render("✓ Session saved for "+session.Username))
	fmt.Fprintln(out, "Run 'reelkeep sync' to pull your lists.")
	return nil
}
