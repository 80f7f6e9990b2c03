package domain

import (
	"encoding/json"
	"errors"
	"math/rand"
	"reflect"
	"testing"
)

func TestCatalogShape(t *testing.T) {
	kinds := Catalog()
	if len(kinds) != KindCount {
		t.Fatalf("catalog has %d kinds, want %d", len(kinds), KindCount)
	}
	seenRank := make(map[int]bool)
	for i, info := range kinds {
		if info.Rank != i+1 {
			t.Errorf("catalog[%d].Rank = %d, want %d", i, info.Rank, i+1)
		}
		if info.Kind.Rank() != info.Rank {
			t.Errorf("%s: Kind.Rank() = %d, want %d", info.Key, info.Kind.Rank(), info.Rank)
		}
		if seenRank[info.Rank] {
			t.Errorf("duplicate rank %d", info.Rank)
		}
		seenRank[info.Rank] = true
		if info.Count <= 0 {
			t.Errorf("%s has count %d", info.Key, info.Count)
		}
	}
	if TotalCards() != 16 {
		t.Fatalf("TotalCards() = %d, want 16", TotalCards())
	}
	if Oracle.Info().Count != 1 || Watcher.Info().Count != 5 {
		t.Fatal("unexpected counts for oracle/watcher")
	}
}

func TestBuildDeckIsPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	want := CountKinds(NewDeck())
	for i := 0; i < 20; i++ {
		deck := BuildDeck(rng)
		if len(deck) != TotalCards() {
			t.Fatalf("deck size = %d, want %d", len(deck), TotalCards())
		}
		if got := CountKinds(deck); !reflect.DeepEqual(got, want) {
			t.Fatalf("deck multiset = %v, want %v", got, want)
		}
	}
}

func TestBuildDeckDeterministicForSeed(t *testing.T) {
	a := BuildDeck(rand.New(rand.NewSource(7)))
	b := BuildDeck(rand.New(rand.NewSource(7)))
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed produced different decks")
	}
}

func TestStackedDeckDrawOrder(t *testing.T) {
	s := NewSession("R")
	s.Deck = StackedDeck(Oracle, Aegis, Watcher)
	if len(s.Deck) != TotalCards() {
		t.Fatalf("stacked deck size = %d", len(s.Deck))
	}
	for _, want := range []CardKind{Oracle, Aegis, Watcher} {
		got, err := s.DrawCard()
		if err != nil || got != want {
			t.Fatalf("DrawCard() = %s, %v; want %s", got, err, want)
		}
	}
}

func TestStackedDeckPanicsOnOvercount(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for two oracles")
		}
	}()
	StackedDeck(Oracle, Oracle)
}

func TestParseCardKind(t *testing.T) {
	tests := []struct {
		in      string
		want    CardKind
		wantErr bool
	}{
		{in: "", want: NoCard},
		{in: "watcher", want: Watcher},
		{in: "Oracle", want: Oracle},
		{in: "SWITCH", want: Switch},
		{in: "3", want: Aegis},
		{in: "0", wantErr: true},
		{in: "264", wantErr: true},
		{in: "joker", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCardKind(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownCard) {
					t.Fatalf("ParseCardKind(%q) err = %v, want ErrUnknownCard", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("ParseCardKind(%q) = %s, %v; want %s", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestCardKindJSON(t *testing.T) {
	type payload struct {
		Hand  []CardKind `json:"hand"`
		Guess CardKind   `json:"guess,omitempty"`
	}
	raw, err := json.Marshal(payload{Hand: []CardKind{Courier, Heir}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"hand":["courier","heir"]}` {
		t.Fatalf("unexpected json %s", raw)
	}

	var decoded payload
	if err := json.Unmarshal([]byte(`{"hand":["seer","8"],"guess":"duelist"}`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(decoded.Hand, []CardKind{Seer, Oracle}) || decoded.Guess != Duelist {
		t.Fatalf("decoded = %+v", decoded)
	}
}
