package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"git.sr.ht/~jakintosh/shopfront/internal/api"
	"git.sr.ht/~jakintosh/shopfront/internal/config"
	"git.sr.ht/~jakintosh/shopfront/internal/domain"
	"git.sr.ht/~jakintosh/shopfront/internal/session"
	"git.sr.ht/~jakintosh/shopfront/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app is everything a command needs once flags and config are resolved.
type app struct {
	// Global flags
	configPath string
	apiURL     string
	dbPath     string
	verbose    bool

	cfg      config.Config
	logger   *zap.Logger
	store    domain.LocalStore
	sessions *session.Manager
	client   *api.Client
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// run executes one command line. The local store is closed even when the
// command fails.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{}
	defer a.teardown()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "shopfront",
		Short: "Storefront client for admins and shoppers",
		Long: `shopfront talks to the storefront backend.

Admins manage categories and products and set their display order.
Shoppers browse the catalog and keep a local cart.

Run "shopfront serve" for the web console.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath, "config file")
	root.PersistentFlags().StringVar(&a.apiURL, "api", "", "backend base URL (env: SHOPFRONT_API_URL)")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "local session and cart database (env: SHOPFRONT_DB)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newRegisterCmd(a),
		newCategoriesCmd(a),
		newProductsCmd(a),
		newCatalogCmd(a),
		newCartCmd(a),
		newServeCmd(a),
	)
	return root
}

// setup resolves config as flag > env > file > default, then opens the
// local store and builds the backend client.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()
	if a.apiURL != "" {
		cfg.API.BaseURL = a.apiURL
	}
	if a.dbPath != "" {
		cfg.Storage.Path = a.dbPath
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	if addr := cmd.Flags().Lookup("addr"); addr != nil && addr.Changed {
		cfg.Server.Addr = addr.Value.String()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.logger, err = newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.store, err = store.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}

	a.sessions, err = session.New(a.store, a.logger)
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	errOut := cmd.ErrOrStderr()
	a.sessions.OnUnauthorized(func(error) {
		fmt.Fprintln(errOut, "Session expired. Run \"shopfront login\" again.")
	})

	timeout, _ := cfg.APITimeout()
	a.client = api.NewClient(cfg.API.BaseURL, api.Options{
		HTTPClient: &http.Client{Timeout: timeout},
		Tokens:     a.sessions,
		Logger:     a.logger,
	})
	return nil
}

func (a *app) teardown() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("failed to close store", zap.Error(err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zc.Level = level
	return zc.Build()
}

// requireSession fails early for commands that need a signed-in user.
func (a *app) requireSession(roles ...string) error {
	if !a.sessions.Authenticated() {
		return errors.New("not signed in; run \"shopfront login\" first")
	}
	if len(roles) == 0 {
		return nil
	}
	for _, role := range roles {
		if a.sessions.HasRole(role) {
			return nil
		}
	}
	return fmt.Errorf("requires role %v", roles)
}

// reportUnauthorized clears the session when the backend rejected the token.
func (a *app) reportUnauthorized(err error) {
	if errors.Is(err, domain.ErrUnauthorized) {
		a.sessions.HandleUnauthorized(err)
	}
}

// apiError turns a backend failure into the message a person should see.
func (a *app) apiError(err error, fallback string) error {
	a.reportUnauthorized(err)
	return errors.New(api.UserMessage(err, fallback))
}
