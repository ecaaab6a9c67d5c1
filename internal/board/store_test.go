package board

import (
	"reflect"
	"testing"

	"kanban-cli/internal/model"
)

func testLists() []model.List {
	return []model.List{
		{ID: 3, Name: "Done", Order: 3},
		{ID: 1, Name: "Todo", Order: 1},
		{ID: 2, Name: "Doing", Order: 2},
	}
}

func testCards() []model.Card {
	return []model.Card{
		{ID: 10, ListID: 1, Title: "A", Labels: []model.Label{}},
		{ID: 11, ListID: 1, Title: "B", Labels: []model.Label{}},
		{ID: 12, ListID: 1, Title: "C", Labels: []model.Label{}},
		{ID: 20, ListID: 2, Title: "D", Labels: []model.Label{{ID: 1, Name: "bug", Color: model.LabelRed}}},
	}
}

func newTestStore() *Store {
	s := NewStore(1, testLists())
	s.ApplySnapshot(testCards())
	return s
}

func ids(cards []model.Card) []int64 {
	out := make([]int64, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.ID)
	}
	return out
}

func TestStore_ListsInColumnOrder(t *testing.T) {
	s := newTestStore()
	got := s.Lists()
	if got[0].ID != 1 || got[1].ID != 2 || got[2].ID != 3 {
		t.Fatalf("unexpected list order: %+v", got)
	}
}

func TestStore_ApplySnapshotIsIdempotent(t *testing.T) {
	s := NewStore(1, testLists())
	s.ApplySnapshot(testCards())
	first := s.Cards()
	s.ApplySnapshot(testCards())
	second := s.Cards()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("applying the same snapshot twice changed the store:\n first: %#v\nsecond: %#v", first, second)
	}
}

func TestStore_ApplySnapshotCopiesInput(t *testing.T) {
	in := testCards()
	s := NewStore(1, testLists())
	s.ApplySnapshot(in)
	in[0].ListID = 3
	in[3].Labels[0].Name = "mutated"

	c, _ := s.Card(10)
	if c.ListID != 1 {
		t.Fatalf("store aliased caller slice: list=%d", c.ListID)
	}
	d, _ := s.Card(20)
	if d.Labels[0].Name != "bug" {
		t.Fatalf("store aliased caller labels: %q", d.Labels[0].Name)
	}
}

func TestStore_MoveCardToListTouchesOneCard(t *testing.T) {
	s := newTestStore()
	before := s.Cards()
	if !s.MoveCardToList(11, 2) {
		t.Fatalf("expected move to report a change")
	}
	after := s.Cards()
	if !reflect.DeepEqual(ids(before), ids(after)) {
		t.Fatalf("move must not change ordering: before=%v after=%v", ids(before), ids(after))
	}
	for i := range after {
		if after[i].ID == 11 {
			if after[i].ListID != 2 {
				t.Fatalf("expected card 11 in list 2, got %d", after[i].ListID)
			}
			continue
		}
		if after[i].ListID != before[i].ListID {
			t.Fatalf("card %d list changed unexpectedly", after[i].ID)
		}
	}
}

func TestStore_MoveCardToList_UnknownCard(t *testing.T) {
	s := newTestStore()
	if s.MoveCardToList(999, 2) {
		t.Fatalf("expected no change for unknown card")
	}
	if s.MoveCardToList(10, 1) {
		t.Fatalf("expected no change when already in target list")
	}
}

func TestStore_ReorderWithinList(t *testing.T) {
	tests := []struct {
		name   string
		card   int64
		over   int64
		want   []int64
		change bool
	}{
		{name: "down", card: 10, over: 12, want: []int64{11, 12, 10, 20}, change: true},
		{name: "up", card: 12, over: 10, want: []int64{12, 10, 11, 20}, change: true},
		{name: "adjacent", card: 10, over: 11, want: []int64{11, 10, 12, 20}, change: true},
		{name: "different lists", card: 10, over: 20, want: []int64{10, 11, 12, 20}},
		{name: "self", card: 11, over: 11, want: []int64{10, 11, 12, 20}},
		{name: "unknown", card: 10, over: 999, want: []int64{10, 11, 12, 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore()
			changed := s.ReorderWithinList(tt.card, tt.over)
			if changed != tt.change {
				t.Fatalf("changed=%v want %v", changed, tt.change)
			}
			if got := ids(s.Cards()); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("order: got %v want %v", got, tt.want)
			}
			for _, c := range s.Cards() {
				orig := findCard(testCards(), c.ID)
				if c.ListID != orig.ListID {
					t.Fatalf("reorder changed list of card %d", c.ID)
				}
			}
		})
	}
}

func TestStore_CardsInList(t *testing.T) {
	s := newTestStore()
	if got := ids(s.CardsInList(1)); !reflect.DeepEqual(got, []int64{10, 11, 12}) {
		t.Fatalf("unexpected list 1 cards: %v", got)
	}
	if got := s.CardsInList(3); len(got) != 0 {
		t.Fatalf("expected empty list 3, got %v", ids(got))
	}
}

func TestStore_SingleListInvariantAfterMoves(t *testing.T) {
	s := newTestStore()
	s.MoveCardToList(10, 2)
	s.MoveCardToList(10, 3)
	s.ReorderWithinList(11, 12)
	s.MoveCardToList(20, 1)

	claims := map[int64]int{}
	for _, l := range s.Lists() {
		for _, c := range s.CardsInList(l.ID) {
			claims[c.ID]++
		}
	}
	for _, c := range s.Cards() {
		if claims[c.ID] != 1 {
			t.Fatalf("card %d claimed by %d lists", c.ID, claims[c.ID])
		}
	}
}

func findCard(cards []model.Card, id int64) model.Card {
	for _, c := range cards {
		if c.ID == id {
			return c
		}
	}
	return model.Card{}
}
