package board

import (
	"errors"

	"kanban-cli/internal/model"
)

// DragState is the phase of the single active drag gesture.
type DragState int

const (
	DragIdle DragState = iota
	DragDragging
	DragCommitting
	DragCancelled
)

func (s DragState) String() string {
	switch s {
	case DragIdle:
		return "idle"
	case DragDragging:
		return "dragging"
	case DragCommitting:
		return "committing"
	case DragCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

var ErrDragInProgress = errors.New("a drag is already in progress")

// DragSession is the ephemeral state of one gesture.
//
// Card is a snapshot taken when the gesture starts; it is for rendering the
// dragged overlay only. Placement always re-reads the card from the Store.
type DragSession struct {
	Card model.Card
	Over string
}

// DragController tracks at most one drag gesture.
// idle -> dragging -> {committing, cancelled} -> idle
type DragController struct {
	state   DragState
	session DragSession
}

func (c *DragController) State() DragState { return c.state }

// Session returns the current session; ok is false when idle.
func (c *DragController) Session() (DragSession, bool) {
	if c.state == DragIdle {
		return DragSession{}, false
	}
	return c.session, true
}

func (c *DragController) Begin(card model.Card) error {
	if c.state != DragIdle {
		return ErrDragInProgress
	}
	c.state = DragDragging
	c.session = DragSession{Card: cloneCard(card)}
	return nil
}

// Over records the drop target currently under the pointer ("" for none).
func (c *DragController) Over(target string) {
	if c.state != DragDragging {
		return
	}
	c.session.Over = target
}

// Release ends the gesture. With a target the controller moves to committing and
// commit is true; without one it moves to cancelled.
func (c *DragController) Release() (DragSession, bool) {
	if c.state != DragDragging {
		return DragSession{}, false
	}
	if c.session.Over == "" {
		c.state = DragCancelled
		return c.session, false
	}
	c.state = DragCommitting
	return c.session, true
}

func (c *DragController) Cancel() {
	if c.state == DragDragging {
		c.state = DragCancelled
	}
}

// Settle returns the controller to idle from any state.
func (c *DragController) Settle() {
	c.state = DragIdle
	c.session = DragSession{}
}
