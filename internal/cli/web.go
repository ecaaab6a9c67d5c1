package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"kanban-cli/internal/web"

	"github.com/spf13/cobra"
)

func newWebCmd(app *App) *cobra.Command {
	var addr string
	var open bool
	var readOnly bool
	var datastarURL string

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the board in a browser with drag and drop",
		Long: strings.TrimSpace(`
Serve the current board from a local HTTP server.

Cards are moved by dragging them onto another card or a column. Moves across
columns are saved to the server; reordering inside a column is local to this
server process and is lost on the next reload. Every open page follows changes
made from any other page.
`),
		Example: strings.TrimSpace(`
# Serve the current board on localhost
kanban web --addr 127.0.0.1:3335

# Show another board without allowing changes
kanban --board 4 web --read-only --open=false
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				return writeErr(cmd, errors.New("web: missing --addr"))
			}

			e, c, closeFn, err := app.loadEngine(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()

			srv, err := web.NewServer(web.ServerConfig{
				Addr:        listenAddr,
				Engine:      e,
				Worklogs:    c,
				Log:         app.logger(),
				DatastarURL: datastarURL,
				ReadOnly:    readOnly,
			})
			if err != nil {
				return writeErr(cmd, err)
			}

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}

			actualAddr := ln.Addr().String()
			url := "http://" + actualAddr + "/"

			opened := false
			openErr := ""
			if open {
				if err := openBrowser(url); err != nil {
					openErr = err.Error()
				} else {
					opened = true
				}
			}

			hints := []string{}
			if !opened {
				hints = append(hints, "open "+url)
			}

			_ = writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"addr":      actualAddr,
					"url":       url,
					"boardId":   e.Store().BoardID(),
					"readOnly":  readOnly,
					"opened":    opened,
					"openError": openErr,
					"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
				"_hints": hints,
			})

			fmt.Fprintf(cmd.ErrOrStderr(), "Board %d served at %s\n", e.Store().BoardID(), url)
			if openErr != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Failed to open browser: %s\n", openErr)
			}
			return serveUntilDone(ctxOf(cmd), ln, srv.Handler())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:3335", "Bind address (host:port or :port)")
	cmd.Flags().BoolVar(&open, "open", true, "Open the board in your default browser")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "Disable drag and drop, reload and delete")
	cmd.Flags().StringVar(&datastarURL, "datastar-url", web.DefaultDatastarURL, "Where pages load the datastar client from")
	return cmd
}

// serveUntilDone serves until ctx is cancelled, then gives open streams a few
// seconds to finish.
func serveUntilDone(ctx context.Context, ln net.Listener, h http.Handler) error {
	hs := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- hs.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			_ = hs.Close()
		}
		return nil
	}
}

func openBrowser(url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return errors.New("empty url")
	}
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Run()
	case "windows":
		return exec.Command("cmd", "/c", "start", "", url).Run()
	default:
		return exec.Command("xdg-open", url).Run()
	}
}
