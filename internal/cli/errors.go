package cli

import (
	"errors"
	"fmt"
	"net/http"

	"kanban-cli/internal/api"
	"kanban-cli/internal/session"
)

type notFoundError struct {
	kind string
	id   int64
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %d", e.kind, e.id)
}

func errNotFound(kind string, id int64) error {
	return notFoundError{kind: kind, id: id}
}

// explain rewrites remote and session failures into actionable messages.
func explain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, session.ErrNoToken):
		return fmt.Errorf("%w; run `kanban session set <token>` (or pass --token)", err)
	case errors.Is(err, session.ErrTokenExpired):
		return fmt.Errorf("%w; obtain a new token and run `kanban session set <token>`", err)
	case api.IsStatus(err, http.StatusUnauthorized):
		return fmt.Errorf("%w (is the session token valid for this server?)", err)
	}
	return err
}
