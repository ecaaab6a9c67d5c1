package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"kanban-cli/internal/api"
	"kanban-cli/internal/session"
	"kanban-cli/internal/store"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var errDoctorIssuesFound = errors.New("doctor found problems")

const (
	checkOK    = "ok"
	checkWarn  = "warn"
	checkError = "error"
	checkSkip  = "skip"
)

type doctorCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type doctorReport struct {
	Checks []doctorCheck `json:"checks"`
}

func (r *doctorReport) add(name, status, detail string) {
	r.Checks = append(r.Checks, doctorCheck{Name: name, Status: status, Detail: detail})
}

func (r doctorReport) HasErrors() bool {
	for _, c := range r.Checks {
		if c.Status == checkError {
			return true
		}
	}
	return false
}

func (r doctorReport) WriteText(w io.Writer) error {
	for _, c := range r.Checks {
		if _, err := fmt.Fprintf(w, "%-5s %-8s %s\n", c.Status, c.Name, c.Detail); err != nil {
			return err
		}
	}
	return nil
}

func newDoctorCmd(app *App) *cobra.Command {
	var fail bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check config, session, server reachability, board access and the sync journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(ctxOf(cmd), 10*time.Second)
			defer cancel()

			report := app.diagnose(ctx)
			meta := map[string]any{
				"checks":    len(report.Checks),
				"hasErrors": report.HasErrors(),
			}
			if err := writeOut(cmd, app, map[string]any{
				"data":   report,
				"meta":   meta,
				"_hints": []string{"kanban session show", "kanban boards list"},
			}); err != nil {
				return err
			}
			if fail && report.HasErrors() {
				return errDoctorIssuesFound
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fail, "fail", false, "Exit with non-zero status if errors are found")
	return cmd
}

func (app *App) diagnose(ctx context.Context) doctorReport {
	var r doctorReport

	if path, err := store.ConfigPath(); err != nil {
		r.add("config", checkError, err.Error())
	} else {
		r.add("config", checkOK, path)
	}

	s := app.session()
	sessionOK := false
	switch claims, err := s.Claims(); {
	case s.Token() == "":
		r.add("session", checkError, explain(session.ErrNoToken).Error())
	case err != nil:
		// Opaque tokens are allowed; the server is the judge.
		r.add("session", checkOK, "opaque token "+s.Redacted())
		sessionOK = true
	case claims.Expired(time.Now()):
		r.add("session", checkError, "token expired "+humanize.Time(claims.ExpiresAt))
	case claims.ExpiresAt.IsZero():
		r.add("session", checkOK, "token for "+claims.Subject)
		sessionOK = true
	default:
		r.add("session", checkOK, "token for "+claims.Subject+", expires "+humanize.Time(claims.ExpiresAt))
		sessionOK = true
	}

	c, err := app.client()
	if err != nil {
		r.add("server", checkError, err.Error())
	} else if !sessionOK {
		r.add("server", checkSkip, c.BaseURL())
	} else if me, err := c.Me(ctx); err != nil {
		r.add("server", checkError, explain(err).Error())
		c = nil
	} else {
		r.add("server", checkOK, fmt.Sprintf("%s as %s", c.BaseURL(), me.Email))
	}

	boardID, err := app.boardID()
	switch {
	case err != nil:
		r.add("board", checkWarn, err.Error())
	case c == nil || !sessionOK:
		r.add("board", checkSkip, fmt.Sprintf("board %d", boardID))
	default:
		st, detail := boardCheck(ctx, c, boardID)
		r.add("board", st, detail)
	}

	if path, err := store.JournalPath(); err != nil {
		r.add("journal", checkWarn, err.Error())
	} else if j, err := store.OpenJournal(ctx, path); err != nil {
		r.add("journal", checkWarn, err.Error())
	} else {
		_ = j.Close()
		r.add("journal", checkOK, path)
	}
	return r
}

func boardCheck(ctx context.Context, c *api.Client, boardID int64) (string, string) {
	lists, err := c.ListLists(ctx, boardID)
	if err != nil {
		return checkError, explain(err).Error()
	}
	if len(lists) == 0 {
		return checkWarn, fmt.Sprintf("board %d has no lists", boardID)
	}
	return checkOK, fmt.Sprintf("board %d, %d lists", boardID, len(lists))
}
