package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-crm-nosql/internal/application/notification"
	"github.com/go-crm-nosql/internal/config"
	"github.com/go-crm-nosql/internal/infrastructure/observability"
	"github.com/go-crm-nosql/internal/provider"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries the state shared by every subcommand once the root
// command's pre-run has opened the backend.
type app struct {
	flags struct {
		provider string
		dbPath   string
		apiURL   string
		jsonOut  bool
		verbose  bool
	}

	cfg           *config.Config
	logger        *zap.Logger
	prov          *provider.Provider
	notifications notification.Service
	now           func() time.Time
}

func newRootCmd() *cobra.Command {
	a := &app{now: time.Now}

	root := &cobra.Command{
		Use:           "crm",
		Short:         "Customers, jobs and payments for a small service business",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}
	root.Version = version

	f := root.PersistentFlags()
	f.StringVar(&a.flags.provider, "provider", "", "Backend: local, dynamo or remote (default from DATA_PROVIDER)")
	f.StringVar(&a.flags.dbPath, "db", "", "Local database path (default from LOCAL_DB_PATH)")
	f.StringVar(&a.flags.apiURL, "api-url", "", "Remote API base URL (default from REMOTE_API_URL)")
	f.BoolVar(&a.flags.jsonOut, "json", false, "Print JSON instead of tables")
	f.BoolVarP(&a.flags.verbose, "verbose", "v", false, "Log at debug level")

	root.AddCommand(
		newCustomersCmd(a),
		newJobsCmd(a),
		newDashboardCmd(a),
		newNotificationsCmd(a),
		newQRCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newWipeCmd(a),
	)
	return root
}

func (a *app) open(cmd *cobra.Command) error {
	_ = godotenv.Load()
	a.cfg = config.Load()
	if a.flags.provider != "" {
		a.cfg.DataProvider = strings.ToLower(a.flags.provider)
	}
	if a.flags.dbPath != "" {
		a.cfg.LocalDBPath = a.flags.dbPath
	}
	if a.flags.apiURL != "" {
		a.cfg.RemoteAPIURL = strings.TrimRight(a.flags.apiURL, "/")
	}

	level := "warn"
	if a.flags.verbose {
		level = "debug"
	}
	a.logger = observability.NewLogger(level)

	prov, err := provider.New(cmd.Context(), a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("open %s backend: %w", a.cfg.DataProvider, err)
	}
	a.prov = prov
	a.notifications = notification.NewService(notification.ServiceDeps{
		Source:        prov.Store,
		Dismissals:    prov.Dismissals,
		RetentionDays: a.cfg.NotificationRetentionDays,
		Logger:        a.logger,
	})
	return nil
}

func (a *app) close() error {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.prov == nil {
		return nil
	}
	return a.prov.Close()
}
