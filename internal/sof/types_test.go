package sof

import (
	"encoding/json"
	"testing"
)

func strp(s string) *string { return &s }

func TestEffectiveAndClosingTime(t *testing.T) {
	cases := []struct {
		name      string
		event     Event
		effective string
		closing   string
	}{
		{
			name:      "explicit time wins",
			event:     Event{Time: strp("0900"), TimeFrame: &TimeFrame{Start: strp("1000"), End: strp("1100")}},
			effective: "0900",
			closing:   "0900",
		},
		{
			name:      "range splits by side",
			event:     Event{TimeFrame: &TimeFrame{Start: strp("1000"), End: strp("1800")}},
			effective: "1000",
			closing:   "1800",
		},
		{
			name:      "start only",
			event:     Event{TimeFrame: &TimeFrame{Start: strp("1000")}},
			effective: "1000",
			closing:   "1000",
		},
		{
			name:      "end only",
			event:     Event{TimeFrame: &TimeFrame{End: strp("1800")}},
			effective: "1800",
			closing:   "1800",
		},
		{
			name:  "no time at all",
			event: Event{},
		},
	}
	for _, tc := range cases {
		if got := tc.event.EffectiveTime(); got != tc.effective {
			t.Fatalf("%s: EffectiveTime = %q, want %q", tc.name, got, tc.effective)
		}
		if got := tc.event.ClosingTime(); got != tc.closing {
			t.Fatalf("%s: ClosingTime = %q, want %q", tc.name, got, tc.closing)
		}
	}
}

func TestEventJSONShape(t *testing.T) {
	e := Event{Event: "NOR Tendered", Date: strp("2023-06-15"), HasHandwritten: true,
		SourcePages: []SourcePage{{Page: 1, Role: RoleMaster}}}
	b, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"event":"NOR Tendered","date":"2023-06-15","time":null,"hasHandwritten":true,"sourcePages":[{"page":1,"role":"master"}]}`
	if string(b) != want {
		t.Fatalf("json shape:\n got %s\nwant %s", b, want)
	}
}

func TestVocabularyIsACopy(t *testing.T) {
	v := Vocabulary()
	v[0] = "tampered"
	if Vocabulary()[0] != KeyEndOfSeaPassage {
		t.Fatalf("Vocabulary leaked internal state")
	}
}

func TestIsCanonical(t *testing.T) {
	if !IsCanonical(KeyAllFast) {
		t.Fatalf("all_fast should be canonical")
	}
	if IsCanonical("made_up_milestone") {
		t.Fatalf("unknown key reported canonical")
	}
}
