package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mark3labs/inspectr/internal/api"
	"github.com/mark3labs/inspectr/internal/config"
	"github.com/mark3labs/inspectr/internal/logger"
	"github.com/mark3labs/inspectr/internal/nats"
	"github.com/mark3labs/inspectr/internal/session"
)

var globalFlags struct {
	apiURL   string
	webURL   string
	token    string
	dataDir  string
	logLevel string
}

// flagKeys maps config keys to the persistent flags that override them.
var flagKeys = map[string]string{
	"api_url":   "api-url",
	"web_url":   "web-url",
	"token":     "token",
	"data_dir":  "data-dir",
	"log_level": "log-level",
}

func addGlobalFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&globalFlags.apiURL, "api-url", "", "API base URL (default: "+config.DefaultAPIURL+")")
	f.StringVar(&globalFlags.webURL, "web-url", "", "Web app URL used for inspection links")
	f.StringVar(&globalFlags.token, "token", "", "API bearer token")
	f.StringVar(&globalFlags.dataDir, "data-dir", "", "Data directory for preferences and the commit journal (default: .inspectr)")
	f.StringVar(&globalFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// loadConfig resolves configuration with the command's flags bound on top
// and applies the logging settings.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := viper.New()
	for key, name := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding --%s: %w", name, err)
			}
		}
	}

	cfg, err := config.LoadWith(v)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("failed to configure logger: %w", err)
	}
	return cfg, nil
}

// app is the wiring shared by commands: config, API client and, when
// requested, the commit journal.
type app struct {
	cfg     *config.Config
	client  *api.Client
	journal *nats.Journal
	events  *session.Store
}

// openApp builds the app. With journal set, the embedded NATS journal is
// started; a failure to start it is logged and the app runs without one,
// unless required is also set.
func openApp(ctx context.Context, cmd *cobra.Command, journal, required bool) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	client, err := api.NewClient(cfg.APIURL, cfg.Token,
		api.WithTimeout(cfg.APITimeout),
		api.WithUserAgent(userAgent()),
	)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, client: client}
	if !journal {
		return a, nil
	}

	logger.Debug("Opening commit journal in %s", cfg.DataDir)
	j, err := nats.Open(ctx, cfg.DataDir)
	if err != nil {
		if required {
			return nil, fmt.Errorf("failed to open commit journal: %w", err)
		}
		logger.Warn("Commit journal unavailable, continuing without it: %v", err)
		return a, nil
	}
	a.journal = j
	a.events = session.NewStore(j.JS, j.Stream)
	return a, nil
}

// publisher returns the journal publisher, or nil when there is none.
func (a *app) publisher() session.Publisher {
	if a.events == nil {
		return nil
	}
	return a.events
}

// journalFor returns a journal for one session, or nil when there is none.
func (a *app) journalFor(sess *session.Session, kind string) *session.Journal {
	if a.events == nil {
		return nil
	}
	return session.NewJournal(a.events, sess.Name, kind)
}

// Close stops the journal.
func (a *app) Close() {
	if a == nil {
		return
	}
	if err := a.journal.Close(); err != nil {
		logger.Warn("Failed to close commit journal: %v", err)
	}
}

func userAgent() string {
	return "inspectr/" + version
}
