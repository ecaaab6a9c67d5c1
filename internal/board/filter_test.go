package board

import (
	"reflect"
	"testing"

	"kanban-cli/internal/model"
)

func int64Ptr(v int64) *int64 { return &v }

func filterStore() *Store {
	s := NewStore(1, testLists())
	s.ApplySnapshot([]model.Card{
		{ID: 1, ListID: 1, Title: "Diseño de la portada", ResponsibleID: 7, Labels: []model.Label{{ID: 1, Name: "ui", Color: model.LabelBlue}}},
		{ID: 2, ListID: 1, Title: "Fix login", Description: "token refresh broken", ResponsibleID: 8, Labels: []model.Label{{ID: 2, Name: "bug", Color: model.LabelRed}}},
		{ID: 3, ListID: 2, Title: "Write report", ResponsibleID: 7},
		{ID: 4, ListID: 3, Title: "Deploy", Labels: []model.Label{{ID: 2, Name: "bug", Color: model.LabelRed}}},
		{ID: 5, ListID: 42, Title: "Orphan"},
	})
	return s
}

func viewIDs(v View) []int64 {
	var out []int64
	for _, c := range v.Columns {
		out = append(out, ids(c.Cards)...)
	}
	return out
}

func TestProject_NoFilterRendersEverything(t *testing.T) {
	s := filterStore()
	v := Project(s, Filter{})
	if v.Total != 5 || v.Matched != 5 {
		t.Fatalf("expected 5/5, got %d/%d", v.Matched, v.Total)
	}
	first, _ := v.Column(1)
	if got := ids(first.Cards); !reflect.DeepEqual(got, []int64{1, 2, 5}) {
		t.Fatalf("orphan card should fall into the first column: %v", got)
	}
}

func TestProject_Filters(t *testing.T) {
	tests := []struct {
		name string
		f    Filter
		want []int64
	}{
		{name: "query accent insensitive", f: Filter{Query: "diseno"}, want: []int64{1}},
		{name: "query case insensitive", f: Filter{Query: "FIX"}, want: []int64{2}},
		{name: "query matches description", f: Filter{Query: "refresh"}, want: []int64{2}},
		{name: "responsible", f: Filter{ResponsibleID: int64Ptr(7)}, want: []int64{1, 3}},
		{name: "unassigned", f: Filter{ResponsibleID: int64Ptr(0)}, want: []int64{5, 4}},
		{name: "label", f: Filter{LabelID: int64Ptr(2)}, want: []int64{2, 4}},
		{name: "combined", f: Filter{Query: "fix", LabelID: int64Ptr(2), ResponsibleID: int64Ptr(8)}, want: []int64{2}},
		{name: "no match", f: Filter{Query: "nothing like this"}, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := filterStore()
			v := Project(s, tt.f)
			if got := viewIDs(v); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v want %v", got, tt.want)
			}
			if v.Matched != len(tt.want) {
				t.Fatalf("matched=%d want %d", v.Matched, len(tt.want))
			}
		})
	}
}

func TestProject_FilterPurity(t *testing.T) {
	s := filterStore()
	before := s.Cards()
	filters := []Filter{
		{Query: "x"},
		{ResponsibleID: int64Ptr(7)},
		{LabelID: int64Ptr(1), Query: "dis"},
		{Query: "fix", ResponsibleID: int64Ptr(8), LabelID: int64Ptr(2)},
	}
	for _, f := range filters {
		v := Project(s, f)
		if v.Total != len(before) {
			t.Fatalf("filter %+v changed total: %d", f, v.Total)
		}
	}
	if !reflect.DeepEqual(before, s.Cards()) {
		t.Fatalf("projection mutated the store")
	}
	cleared := Project(s, Filter{})
	if cleared.Matched != len(before) {
		t.Fatalf("clearing filters should restore all cards: %d/%d", cleared.Matched, len(before))
	}
}

func TestFilter_IsZero(t *testing.T) {
	if !(Filter{Query: "  "}).IsZero() {
		t.Fatalf("blank query should be zero")
	}
	if (Filter{LabelID: int64Ptr(1)}).IsZero() {
		t.Fatalf("label filter should not be zero")
	}
}

func TestResponsiblesAndLabels(t *testing.T) {
	s := filterStore()
	if got := Responsibles(s); !reflect.DeepEqual(got, []int64{7, 8}) {
		t.Fatalf("responsibles: %v", got)
	}
	labels := Labels(s)
	if len(labels) != 2 || labels[0].ID != 1 || labels[1].ID != 2 {
		t.Fatalf("labels: %+v", labels)
	}
}

func TestProject_NoListsGroupsCardsIntoPlaceholders(t *testing.T) {
	s := NewStore(1, nil)
	s.ApplySnapshot([]model.Card{
		{ID: 1, ListID: 1, Title: "Draft"},
		{ID: 2, ListID: 1, Title: "Review"},
		{ID: 3, ListID: 5, Title: "Ship"},
	})

	v := Project(s, Filter{})
	if v.Total != 3 || v.Matched != 3 {
		t.Fatalf("expected 3/3, got %d/%d", v.Matched, v.Total)
	}
	if len(v.Columns) != 2 {
		t.Fatalf("expected one placeholder column per list id, got %d", len(v.Columns))
	}
	first := v.Columns[0]
	if !first.Placeholder || first.List.ID != 1 || first.List.Name != "List 1" {
		t.Fatalf("unexpected first column: %+v", first)
	}
	if got := ids(first.Cards); !reflect.DeepEqual(got, []int64{1, 2}) {
		t.Fatalf("unexpected cards in first column: %v", got)
	}

	// A filter hides cards but keeps the columns.
	v = Project(s, Filter{Query: "ship"})
	if v.Matched != 1 || len(v.Columns) != 2 || len(v.Columns[0].Cards) != 0 {
		t.Fatalf("unexpected filtered view: %+v", v)
	}

	if p := Resolve(s, 3, ListTarget(1)); p.Kind != PlaceNone {
		t.Fatalf("placeholder column must not be a drop target, got %+v", p)
	}
}

func TestProject_EmptyStore(t *testing.T) {
	v := Project(NewStore(1, nil), Filter{})
	if len(v.Columns) != 0 || v.Total != 0 {
		t.Fatalf("expected empty view, got %+v", v)
	}
}
