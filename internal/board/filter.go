package board

import (
	"strconv"
	"strings"
	"unicode"

	"kanban-cli/internal/model"

	"golang.org/x/text/unicode/norm"
)

// Filter selects which cards are rendered. The zero value matches everything.
type Filter struct {
	Query string
	// ResponsibleID restricts to one responsible user; a pointer to 0 means unassigned.
	ResponsibleID *int64
	LabelID       *int64
}

func (f Filter) IsZero() bool {
	return strings.TrimSpace(f.Query) == "" && f.ResponsibleID == nil && f.LabelID == nil
}

// Matches reports whether a single card passes every active criterion.
func (f Filter) Matches(c model.Card) bool {
	if f.ResponsibleID != nil && c.ResponsibleID != *f.ResponsibleID {
		return false
	}
	if f.LabelID != nil && !c.HasLabel(*f.LabelID) {
		return false
	}
	q := Fold(f.Query)
	if q == "" {
		return true
	}
	return strings.Contains(Fold(c.Title), q) || strings.Contains(Fold(c.Description), q)
}

// Fold lowercases s and strips diacritics so "Diseño" matches "diseno".
func Fold(s string) string {
	s = norm.NFKD.String(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Mn, r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

type Column struct {
	List  model.List
	Cards []model.Card
	// Placeholder is set when the store knows no lists and the column only
	// groups cards by their list id. It is not a drop target.
	Placeholder bool
}

// View is a derived, read-only rendering of the store.
type View struct {
	Columns []Column
	// Total is the number of cards in the store; Matched the number rendered.
	Total   int
	Matched int
}

func (v View) Column(listID int64) (Column, bool) {
	for _, c := range v.Columns {
		if c.List.ID == listID {
			return c, true
		}
	}
	return Column{}, false
}

// Project computes the filtered view. It never mutates the store.
//
// Cards whose list is unknown are shown in the first column so that clearing the
// filter always renders every stored card. With no lists at all, cards are
// grouped into placeholder columns named after their list id.
func Project(s *Store, f Filter) View {
	v := View{}
	if s == nil {
		return v
	}
	lists := s.Lists()
	v.Total = s.Len()
	v.Columns = make([]Column, len(lists))
	index := make(map[int64]int, len(lists))
	for i, l := range lists {
		v.Columns[i] = Column{List: l, Cards: []model.Card{}}
		index[l.ID] = i
	}
	if len(v.Columns) == 0 {
		return projectUnlisted(s, f, v)
	}
	for _, c := range s.Cards() {
		if !f.Matches(c) {
			continue
		}
		ci, ok := index[c.ListID]
		if !ok {
			ci = 0
		}
		v.Columns[ci].Cards = append(v.Columns[ci].Cards, c)
		v.Matched++
	}
	return v
}

func projectUnlisted(s *Store, f Filter, v View) View {
	index := map[int64]int{}
	for _, c := range s.Cards() {
		ci, ok := index[c.ListID]
		if !ok {
			ci = len(v.Columns)
			index[c.ListID] = ci
			v.Columns = append(v.Columns, Column{
				List:        model.List{ID: c.ListID, BoardID: s.BoardID(), Name: "List " + strconv.FormatInt(c.ListID, 10)},
				Cards:       []model.Card{},
				Placeholder: true,
			})
		}
		if !f.Matches(c) {
			continue
		}
		v.Columns[ci].Cards = append(v.Columns[ci].Cards, c)
		v.Matched++
	}
	return v
}

// Responsibles returns the distinct responsible ids present in the store, in first-seen order.
func Responsibles(s *Store) []int64 {
	seen := map[int64]bool{}
	out := []int64{}
	for _, c := range s.Cards() {
		if c.ResponsibleID == 0 || seen[c.ResponsibleID] {
			continue
		}
		seen[c.ResponsibleID] = true
		out = append(out, c.ResponsibleID)
	}
	return out
}

// Labels returns the distinct labels present in the store, in first-seen order.
func Labels(s *Store) []model.Label {
	seen := map[int64]bool{}
	out := []model.Label{}
	for _, c := range s.Cards() {
		for _, l := range c.Labels {
			if seen[l.ID] {
				continue
			}
			seen[l.ID] = true
			out = append(out, l)
		}
	}
	return out
}
