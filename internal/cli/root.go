package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"kanban-cli/internal/api"
	"kanban-cli/internal/boardsync"
	"kanban-cli/internal/format"
	"kanban-cli/internal/logging"
	"kanban-cli/internal/session"
	"kanban-cli/internal/store"
	"kanban-cli/internal/tui"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type App struct {
	Server   string
	Token    string
	Board    string
	Format   string
	Pretty   bool
	LogLevel string

	cfg       *store.GlobalConfig
	log       *log.Logger
	logCloser io.Closer
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "kanban",
		Short:        "Kanban board client (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive board
  kanban

  # Scriptable commands
  kanban board show --query invoice
  kanban cards move 12 list:3

  # Direct card lookup (shortcut for: kanban cards show 12)
  kanban card-12
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if !format.Valid(app.Format) {
			return writeErr(cmd, fmt.Errorf("unknown format: %s (json|edn|text)", app.Format))
		}
		cfg, err := store.LoadConfig()
		if err != nil {
			return writeErr(cmd, fmt.Errorf("load config: %w", err))
		}
		app.cfg = cfg
		app.setupLogging()
		return nil
	}

	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.logCloser != nil {
			_ = app.logCloser.Close()
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Server, "server", envOr("KANBAN_SERVER", ""), "API base URL (default: config server, then "+api.DefaultBaseURL+")")
	cmd.PersistentFlags().StringVar(&app.Token, "token", envOr("KANBAN_TOKEN", ""), "Bearer token (overrides the saved session)")
	cmd.PersistentFlags().StringVar(&app.Board, "board", envOr("KANBAN_BOARD", ""), "Board id (overrides currentBoardId in config)")
	cmd.PersistentFlags().BoolVar(&app.Pretty, "pretty", false, "Pretty-print JSON/EDN output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("KANBAN_FORMAT", "json"), "Output format (json|edn|text)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("KANBAN_LOG_LEVEL", ""), "Log level for ~/.kanban/kanban.log (debug|info|warn|error)")

	cmd.AddCommand(newSessionCmd(app))
	cmd.AddCommand(newBoardsCmd(app))
	cmd.AddCommand(newListsCmd(app))
	cmd.AddCommand(newBoardCmd(app))
	cmd.AddCommand(newCardsCmd(app))
	cmd.AddCommand(newWorklogCmd(app))
	cmd.AddCommand(newReportCmd(app))
	cmd.AddCommand(newJournalCmd(app))
	cmd.AddCommand(newWebCmd(app))
	cmd.AddCommand(newDoctorCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newVersionCmd(app))

	return cmd
}

func (app *App) setupLogging() {
	level := app.LogLevel
	if level == "" && app.cfg != nil {
		level = app.cfg.LogLevel
	}
	dir, err := store.ConfigDir()
	if err == nil {
		if l, c, err := logging.OpenFile(dir, level); err == nil {
			app.log, app.logCloser = l, c
			return
		}
	}
	// Logging is never allowed to stop a command.
	app.log = logging.Discard()
}

func (app *App) logger() *log.Logger {
	if app.log == nil {
		app.log = logging.Discard()
	}
	return app.log
}

func (app *App) config() *store.GlobalConfig {
	if app.cfg == nil {
		app.cfg = &store.GlobalConfig{}
	}
	return app.cfg
}

// Precedence everywhere: flag > env > config file > default.
func (app *App) serverURL() string {
	if s := strings.TrimSpace(app.Server); s != "" {
		return s
	}
	if s := strings.TrimSpace(app.config().Server); s != "" {
		return s
	}
	return api.DefaultBaseURL
}

func (app *App) session() *session.Session {
	if t := strings.TrimSpace(app.Token); t != "" {
		return session.New(t)
	}
	return session.New(app.config().Token)
}

func (app *App) client() (*api.Client, error) {
	return api.New(app.serverURL(), app.session(), api.WithLogger(app.logger()))
}

func (app *App) boardID() (int64, error) {
	if b := strings.TrimSpace(app.Board); b != "" {
		id, err := strconv.ParseInt(b, 10, 64)
		if err != nil || id <= 0 {
			return 0, fmt.Errorf("invalid --board %q", b)
		}
		return id, nil
	}
	if id := app.config().CurrentBoardID; id > 0 {
		return id, nil
	}
	return 0, errors.New("no board selected; run `kanban boards use <board-id>` (or pass --board)")
}

// engine wires client, journal and sync engine for the selected board. The store
// is empty until Load is run. The returned func releases the journal.
func (app *App) engine(cmd *cobra.Command, n boardsync.Notifier) (*boardsync.Engine, *api.Client, func(), error) {
	boardID, err := app.boardID()
	if err != nil {
		return nil, nil, nil, err
	}
	c, err := app.client()
	if err != nil {
		return nil, nil, nil, err
	}
	opts := []boardsync.ReconcilerOption{boardsync.WithLogger(app.logger())}
	closeFn := func() {}
	if j := app.openJournal(cmd); j != nil {
		opts = append(opts, boardsync.WithJournal(j))
		closeFn = func() { _ = j.Close() }
	}
	rec := boardsync.NewReconciler(boardID, c, opts...)
	return boardsync.NewEngine(rec, boardsync.WithNotifier(n)), c, closeFn, nil
}

// openJournal is best effort: a broken journal only costs diagnostics.
func (app *App) openJournal(cmd *cobra.Command) *store.Journal {
	path, err := store.JournalPath()
	if err != nil {
		app.logger().WithError(err).Warn("journal path")
		return nil
	}
	j, err := store.OpenJournal(ctxOf(cmd), path)
	if err != nil {
		app.logger().WithError(err).Warn("journal open")
		return nil
	}
	return j
}

// loadEngine returns an engine with the board already loaded.
func (app *App) loadEngine(cmd *cobra.Command) (*boardsync.Engine, *api.Client, func(), error) {
	e, c, closeFn, err := app.engine(cmd, app.logNotifier())
	if err != nil {
		return nil, nil, nil, err
	}
	if err := e.Run(ctxOf(cmd), e.Load()); err != nil {
		closeFn()
		return nil, nil, nil, err
	}
	return e, c, closeFn, nil
}

func (app *App) logNotifier() boardsync.Notifier {
	return boardsync.NotifierFunc(func(msg string) {
		app.logger().Warn(msg)
	})
}

func runTUI(cmd *cobra.Command, app *App) error {
	e, c, closeFn, err := app.engine(cmd, nil)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer closeFn()
	return tui.Run(ctxOf(cmd), tui.Config{
		Engine: e,
		Client: c,
		Log:    app.logger(),
		Prefs:  app.config().TUI,
	})
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func parseID(kind, s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(s), kind+"-"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id: %q", kind, s)
	}
	return id, nil
}

// writeOut prints v. In text format an envelope's "data" prints itself when it
// can; meta and hints are for machines.
func writeOut(cmd *cobra.Command, app *App, v any) error {
	if m, ok := v.(map[string]any); ok && strings.EqualFold(strings.TrimSpace(app.Format), format.Text) {
		if t, ok := m["data"].(format.Texter); ok {
			return t.WriteText(cmd.OutOrStdout())
		}
	}
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.Pretty)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
