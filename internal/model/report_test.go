package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseWeek(t *testing.T) {
	tests := []struct {
		in      string
		want    Week
		wantErr bool
	}{
		{in: "2025-05", want: Week{Year: 2025, Num: 5}},
		{in: "2026-53", want: Week{Year: 2026, Num: 53}},
		{in: "2025-53", wantErr: true},
		{in: "2025-00", wantErr: true},
		{in: "2025-5", wantErr: true},
		{in: "25-05", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWeek(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %v want %v", got, tt.want)
			}
		})
	}
}

func TestWeekRange(t *testing.T) {
	w := Week{Year: 2025, Num: 1}
	// ISO week 1 of 2025 starts on Monday 2024-12-30.
	if got := w.Start(); !got.Equal(time.Date(2024, time.December, 30, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %v", got)
	}
	if got := w.End(); !got.Equal(time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end %v", got)
	}
	if got := WeekOf(w.Start().AddDate(0, 0, 6)); got != w {
		t.Fatalf("sunday should stay in the same week, got %v", got)
	}
	if got := w.Prev(); got != (Week{Year: 2024, Num: 52}) {
		t.Fatalf("unexpected previous week %v", got)
	}
}

func TestWeekJSON(t *testing.T) {
	b, err := json.Marshal(map[string]Week{"week": {Year: 2025, Num: 7}})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"week":"2025-07"}` {
		t.Fatalf("unexpected json %s", b)
	}
	var back struct{ Week Week }
	if err := json.Unmarshal([]byte(`{"Week":"2025-07"}`), &back); err != nil {
		t.Fatal(err)
	}
	if back.Week != (Week{Year: 2025, Num: 7}) {
		t.Fatalf("unexpected week %v", back.Week)
	}
}
