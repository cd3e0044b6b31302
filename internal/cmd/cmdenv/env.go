// Package cmdenv bootstraps the pieces every subcommand needs: config,
// logger, filesystem, session store and the API client.
package cmdenv

import (
	"flag"
	"log/slog"
	"time"

	"github.com/spf13/afero"

	"filevault/internal/api"
	"filevault/internal/config"
	"filevault/internal/logging"
	"filevault/internal/session"
)

// Env is the wired-up client environment.
type Env struct {
	Cfg    config.Config
	Log    *slog.Logger
	Fs     afero.Fs
	Store  *session.Store
	Client *api.Client
}

// Overrides are flag values that win over the config file.
type Overrides struct {
	ConfigPath string
	Addr       string
	Insecure   bool
	LogLevel   string
}

// Setup loads configuration, builds the logger, and wires the session
// store and gateway client together. The store is the client's token
// source, so it is created first and bound afterwards.
func Setup(o Overrides) (*Env, error) {
	path := o.ConfigPath
	if path == "" {
		path = config.DefaultPath()
		if !fileExists(path) {
			path = ""
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if o.Addr != "" {
		cfg.Server.Addr = o.Addr
	}
	if o.Insecure {
		cfg.Server.Insecure = true
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}

	log, err := logging.New(logging.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON})
	if err != nil {
		return nil, err
	}

	fs := afero.NewOsFs()
	store := session.NewStore(fs, cfg.StatePath, log)

	client, err := api.NewClient(api.ClientOptions{
		Addr:     cfg.Server.Addr,
		Insecure: cfg.Server.Insecure,
		Timeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		Tokens:   store,
		Logger:   log,
	})
	if err != nil {
		return nil, err
	}
	store.Bind(client)

	if err := store.Load(); err != nil {
		log.Warn("could not restore session", "err", err)
	}

	return &Env{Cfg: cfg, Log: log, Fs: fs, Store: store, Client: client}, nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	ok, err := afero.Exists(afero.NewOsFs(), path)
	return err == nil && ok
}

// Flags returns the override set parsed from a standard flag group;
// subcommands register these on their own FlagSet.
type Flags struct {
	Config   *string
	Addr     *string
	Insecure *bool
	LogLevel *string
}

// RegisterFlags adds the standard override flags to a subcommand's set.
func RegisterFlags(fs *flag.FlagSet) Flags {
	return Flags{
		Config:   fs.String("config", "", "path to filevault.yaml"),
		Addr:     fs.String("addr", "", "server address (overrides config)"),
		Insecure: fs.Bool("insecure", false, "skip TLS verification (self-signed certs)"),
		LogLevel: fs.String("log-level", "", "debug, info, warn or error"),
	}
}

func (f Flags) Overrides() Overrides {
	return Overrides{
		ConfigPath: *f.Config,
		Addr:       *f.Addr,
		Insecure:   *f.Insecure,
		LogLevel:   *f.LogLevel,
	}
}
