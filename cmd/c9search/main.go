package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/duydb2/cloud9/internal/api"
	"github.com/duydb2/cloud9/internal/cache"
	"github.com/duydb2/cloud9/internal/config"
	"github.com/duydb2/cloud9/internal/history"
	"github.com/duydb2/cloud9/internal/logging"
	"github.com/duydb2/cloud9/internal/stream"
	"github.com/duydb2/cloud9/internal/tui"
	"github.com/duydb2/cloud9/internal/tui/findform"
)

var version = "dev"

func init() {
	if version != "dev" {
		return
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// env holds the global flags and the configuration they resolve to.
type env struct {
	cfgPath string
	server  string
	token   string
	project string
	debug   bool

	cfg *config.Config
}

// load reads the config file and applies the global flag overrides.
func (e *env) load(c *cobra.Command) error {
	cfg, err := config.Load(e.cfgPath)
	if err != nil {
		return err
	}
	flags := c.Flags()
	if flags.Changed("server") {
		cfg.Server.URL = e.server
	}
	if flags.Changed("token") {
		cfg.Server.Token = e.token
	}
	if flags.Changed("project") {
		cfg.Server.Project = e.project
	}
	if e.debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.cfg = cfg
	return nil
}

func (e *env) client() (*api.Client, error) {
	client, err := api.NewClient(api.Options{
		ServerURL: e.cfg.Server.URL,
		Token:     e.cfg.Server.Token,
		Timeout:   e.cfg.Server.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("%w\nSet server.url in %s or pass --server", err, config.Path())
	}
	return client, nil
}

func (e *env) sessionOptions(header bool) stream.Options {
	return stream.Options{
		Header:          header,
		Timeout:         e.cfg.Poll.Timeout,
		MaxPollFailures: e.cfg.Poll.MaxFailures,
	}
}

func (e *env) stderrLogger() *slog.Logger {
	return logging.New(os.Stderr, e.cfg.Debug)
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "c9search",
		Short:         "Find and replace in files on a remote workspace",
		Long:          `Streams search-in-files and replace-in-files results from a workspace search backend into a terminal panel.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			return e.load(c)
		},
		RunE: func(c *cobra.Command, _ []string) error {
			return runTUI(e)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&e.cfgPath, "config", "", "Config file (default $"+config.EnvPath+" or ~/.config/c9search/config.yaml)")
	pf.StringVarP(&e.server, "server", "s", "", "Search backend URL")
	pf.StringVar(&e.token, "token", "", "Search backend token")
	pf.StringVarP(&e.project, "project", "p", "", "Project root as the backend names it, e.g. /workspace")
	pf.BoolVar(&e.debug, "debug", false, "Debug logging")

	root.AddCommand(
		newSearchCmd(e),
		newReplaceCmd(e),
		newServeCmd(e),
		newHistoryCmd(e),
		newResultsCmd(e),
		newConfigCmd(e),
		newVersionCmd(),
	)
	return root
}

func runTUI(e *env) error {
	cfg := e.cfg
	log, closeLog, err := logging.OpenFile(cfg.LogFile, cfg.Debug)
	if err != nil {
		return err
	}
	defer closeLog()

	client, err := e.client()
	if err != nil {
		return err
	}

	store, err := history.Open(cfg.History.DB, cfg.History.Limit)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	defer store.Close()

	archive, err := cache.NewArchive(cfg.Archive.Dir, cfg.Archive.MaxSizeMB, cfg.Archive.TTL)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}

	log.Info("starting", "version", version, "server", cfg.Server.URL, "project", cfg.Server.Project)
	app := tui.NewApp(tui.Options{
		Backend:  client,
		History:  store,
		Archive:  archive,
		Logger:   log,
		Server:   cfg.Server.URL,
		Project:  cfg.Server.Project,
		Interval: cfg.Poll.Interval,
		Session:  e.sessionOptions(cfg.Search.Header),
		Defaults: findform.Defaults{
			Regex:        cfg.Search.Regex,
			MatchCase:    cfg.Search.MatchCase,
			WholeWord:    cfg.Search.WholeWord,
			FilePatterns: cfg.Search.FilePatterns,
		},
	})
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(c *cobra.Command, _ []string) {
			fmt.Fprintln(c.OutOrStdout(), "c9search", version)
		},
	}
}
