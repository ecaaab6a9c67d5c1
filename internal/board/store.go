// Package board holds the in-memory state of the active board and the pure logic
// that operates on it: drag sessions, drop placement and filtered projections.
//
// Nothing in this package performs I/O or blocks. A Store is owned by a single
// logical thread (the TUI update loop or a CLI command) and is not safe for
// concurrent use.
package board

import (
	"kanban-cli/internal/model"
	"kanban-cli/internal/normalize"
)

// Store is the canonical collection of lists and cards for one board.
type Store struct {
	boardID int64
	lists   []model.List
	cards   []model.Card
}

func NewStore(boardID int64, lists []model.List) *Store {
	s := &Store{boardID: boardID}
	s.SetLists(lists)
	return s
}

func (s *Store) BoardID() int64 { return s.boardID }

// SetLists installs the board's lists (fetched once per activation).
func (s *Store) SetLists(lists []model.List) {
	s.lists = append([]model.List(nil), lists...)
	normalize.SortLists(s.lists)
}

// ApplySnapshot replaces every card wholesale. It is the only way bulk consistency
// is restored after a remote round trip.
func (s *Store) ApplySnapshot(cards []model.Card) {
	next := make([]model.Card, len(cards))
	for i, c := range cards {
		next[i] = cloneCard(c)
	}
	s.cards = next
}

// MoveCardToList reassigns exactly one card's list. Ordering of other cards is untouched.
func (s *Store) MoveCardToList(cardID, targetListID int64) bool {
	i := s.indexOf(cardID)
	if i < 0 {
		return false
	}
	if s.cards[i].ListID == targetListID {
		return false
	}
	s.cards[i].ListID = targetListID
	return true
}

// ReorderWithinList moves cardID to overCardID's position (remove, then reinsert).
// Both cards must currently share a list; otherwise it is a no-op.
func (s *Store) ReorderWithinList(cardID, overCardID int64) bool {
	if cardID == overCardID {
		return false
	}
	from := s.indexOf(cardID)
	to := s.indexOf(overCardID)
	if from < 0 || to < 0 {
		return false
	}
	if s.cards[from].ListID != s.cards[to].ListID {
		return false
	}
	s.cards = arrayMove(s.cards, from, to)
	return true
}

func arrayMove(cards []model.Card, from, to int) []model.Card {
	moved := cards[from]
	out := make([]model.Card, 0, len(cards))
	out = append(out, cards[:from]...)
	out = append(out, cards[from+1:]...)
	out = append(out[:to], append([]model.Card{moved}, out[to:]...)...)
	return out
}

func (s *Store) indexOf(cardID int64) int {
	for i := range s.cards {
		if s.cards[i].ID == cardID {
			return i
		}
	}
	return -1
}

func (s *Store) Card(cardID int64) (model.Card, bool) {
	i := s.indexOf(cardID)
	if i < 0 {
		return model.Card{}, false
	}
	return cloneCard(s.cards[i]), true
}

// Cards returns a copy of every card in store order.
func (s *Store) Cards() []model.Card {
	out := make([]model.Card, len(s.cards))
	for i, c := range s.cards {
		out[i] = cloneCard(c)
	}
	return out
}

func (s *Store) Len() int { return len(s.cards) }

// Lists returns the lists in column order.
func (s *Store) Lists() []model.List {
	return append([]model.List(nil), s.lists...)
}

func (s *Store) List(listID int64) (model.List, bool) {
	for _, l := range s.lists {
		if l.ID == listID {
			return l, true
		}
	}
	return model.List{}, false
}

func (s *Store) HasList(listID int64) bool {
	_, ok := s.List(listID)
	return ok
}

// CardsInList returns the cards of one list in store order.
func (s *Store) CardsInList(listID int64) []model.Card {
	out := make([]model.Card, 0)
	for _, c := range s.cards {
		if c.ListID == listID {
			out = append(out, cloneCard(c))
		}
	}
	return out
}

func cloneCard(c model.Card) model.Card {
	if c.Labels != nil {
		labels := make([]model.Label, len(c.Labels))
		copy(labels, c.Labels)
		c.Labels = labels
	}
	if c.DueDate != nil {
		d := *c.DueDate
		c.DueDate = &d
	}
	return c
}
