package cli

import (
	"context"
	"errors"
	"strings"
	"time"

	"kanban-cli/internal/model"
	"kanban-cli/internal/session"
	"kanban-cli/internal/store"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newSessionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage the saved API session (server + bearer token)",
	}
	cmd.AddCommand(newSessionSetCmd(app))
	cmd.AddCommand(newSessionShowCmd(app))
	cmd.AddCommand(newSessionClearCmd(app))
	return cmd
}

type sessionOut struct {
	Server    string      `json:"server"`
	Token     string      `json:"token,omitempty"`
	Subject   string      `json:"subject,omitempty"`
	ExpiresAt *time.Time  `json:"expiresAt,omitempty"`
	Expires   string      `json:"expires,omitempty"`
	Expired   bool        `json:"expired"`
	User      *model.User `json:"user,omitempty"`
}

func describeSession(server string, s *session.Session) sessionOut {
	out := sessionOut{Server: server, Token: s.Redacted()}
	claims, err := s.Claims()
	if err != nil {
		return out
	}
	out.Subject = claims.Subject
	if !claims.ExpiresAt.IsZero() {
		exp := claims.ExpiresAt.UTC()
		out.ExpiresAt = &exp
		out.Expires = humanize.Time(exp)
		out.Expired = claims.Expired(time.Now())
	}
	return out
}

func newSessionSetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <token>",
		Short: "Save a bearer token (and --server, if given) to the config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := strings.TrimSpace(args[0])
			if token == "" {
				return writeErr(cmd, errors.New("empty token"))
			}
			cfg, err := store.UpdateConfig(func(cfg *store.GlobalConfig) {
				cfg.Token = token
				if s := strings.TrimSpace(app.Server); s != "" {
					cfg.Server = s
				}
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			app.cfg = cfg
			app.Token = ""
			out := describeSession(app.serverURL(), session.New(token))
			hints := []string{"kanban boards list"}
			if out.Expired {
				hints = append([]string{"token is already expired"}, hints...)
			}
			return writeOut(cmd, app, map[string]any{"data": out, "_hints": hints})
		},
	}
	return cmd
}

func newSessionShowCmd(app *App) *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the active session (token redacted)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.session()
			if s.Token() == "" {
				return writeErr(cmd, explain(session.ErrNoToken))
			}
			out := describeSession(app.serverURL(), s)
			meta := map[string]any{}
			if remote {
				c, err := app.client()
				if err != nil {
					return writeErr(cmd, err)
				}
				ctx, cancel := context.WithTimeout(ctxOf(cmd), 5*time.Second)
				defer cancel()
				if me, err := c.Me(ctx); err == nil {
					out.User = &me
				} else {
					meta["remoteError"] = explain(err).Error()
				}
			}
			return writeOut(cmd, app, map[string]any{"data": out, "meta": meta})
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", true, "Also ask the server who the token belongs to (/auth/me)")
	return cmd
}

func newSessionClearCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget the saved token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.UpdateConfig(func(cfg *store.GlobalConfig) { cfg.Token = "" })
			if err != nil {
				return writeErr(cmd, err)
			}
			app.cfg = cfg
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"cleared": true}})
		},
	}
}
