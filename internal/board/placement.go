package board

import (
	"strconv"
	"strings"
)

type PlacementKind int

const (
	// PlaceNone means the gesture is treated as a cancellation.
	PlaceNone PlacementKind = iota
	// PlaceReorder is a purely local reorder inside the card's current list.
	PlaceReorder
	// PlaceMove is a column transition that must be persisted.
	PlaceMove
)

func (k PlacementKind) String() string {
	switch k {
	case PlaceReorder:
		return "reorder"
	case PlaceMove:
		return "move"
	default:
		return "none"
	}
}

type Placement struct {
	Kind       PlacementKind
	CardID     int64
	FromListID int64
	ToListID   int64
	// OverCardID is set when the drop landed on a card.
	OverCardID int64
}

// Target prefixes restrict resolution to a single tier.
const (
	CardTargetPrefix = "card:"
	ListTargetPrefix = "list:"
)

func CardTarget(id int64) string { return CardTargetPrefix + strconv.FormatInt(id, 10) }
func ListTarget(id int64) string { return ListTargetPrefix + strconv.FormatInt(id, 10) }

// Resolve maps a drop on target to a placement for the dragged card.
//
// A bare id first matches a card (the card's current list wins, not its index),
// then a list. Prefixed ids ("card:12", "list:3") only try their own tier. Anything
// else, including ids that are not integers, resolves to PlaceNone.
func Resolve(s *Store, draggedID int64, target string) Placement {
	none := Placement{Kind: PlaceNone, CardID: draggedID}
	if s == nil {
		return none
	}
	dragged, ok := s.Card(draggedID)
	if !ok {
		return none
	}
	none.FromListID = dragged.ListID

	target = strings.TrimSpace(target)
	tryCard, tryList := true, true
	switch {
	case strings.HasPrefix(target, CardTargetPrefix):
		target = strings.TrimPrefix(target, CardTargetPrefix)
		tryList = false
	case strings.HasPrefix(target, ListTargetPrefix):
		target = strings.TrimPrefix(target, ListTargetPrefix)
		tryCard = false
	}
	id, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		return none
	}

	p := Placement{CardID: draggedID, FromListID: dragged.ListID}
	switch {
	case tryCard && hasCard(s, id):
		over, _ := s.Card(id)
		p.ToListID = over.ListID
		p.OverCardID = over.ID
	case tryList && s.HasList(id):
		p.ToListID = id
	default:
		return none
	}

	if p.ToListID != p.FromListID {
		p.Kind = PlaceMove
		return p
	}
	if p.OverCardID != 0 && p.OverCardID != draggedID {
		p.Kind = PlaceReorder
		return p
	}
	return none
}

func hasCard(s *Store, id int64) bool {
	_, ok := s.Card(id)
	return ok
}
