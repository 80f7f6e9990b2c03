package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// CardKind identifies one of the eight card kinds. Its numeric value is the rank.
type CardKind uint8

const (
	NoCard  CardKind = iota
	Watcher          // 1: guess a card, eliminate on a hit
	Seer             // 2: look at another hand
	Aegis            // 3: protection until the holder's next turn
	Duelist          // 4: compare hands, lower is out
	Switch           // 5: trade hands
	Courier          // 6: force a discard and redraw
	Heir             // 7: must be played next to Switch or Courier
	Oracle           // 8: eliminated when discarded
)

// KindCount is the number of distinct card kinds in the catalog.
const KindCount = 8

// TargetRule describes which participants a card may be aimed at.
type TargetRule uint8

const (
	// TargetNone means the card never takes a target.
	TargetNone TargetRule = iota
	// TargetOther means another alive participant must be chosen when one is available.
	TargetOther
	// TargetSelfOrOther means the target is optional and defaults to the actor.
	TargetSelfOrOther
)

// KindInfo is the static catalog entry for a card kind.
type KindInfo struct {
	Kind    CardKind   `json:"kind"`
	Key     string     `json:"key"`
	Name    string     `json:"name"`
	Rank    int        `json:"rank"`
	Count   int        `json:"count"`
	Target  TargetRule `json:"target"`
	Summary string     `json:"summary"`
}

var catalog = [KindCount + 1]KindInfo{
	Watcher: {Kind: Watcher, Key: "watcher", Name: "Watcher", Rank: 1, Count: 5, Target: TargetOther,
		Summary: "Name a card other than Watcher. If the target holds it, they are out."},
	Seer: {Kind: Seer, Key: "seer", Name: "Seer", Rank: 2, Count: 2, Target: TargetOther,
		Summary: "Privately look at another participant's hand."},
	Aegis: {Kind: Aegis, Key: "aegis", Name: "Aegis", Rank: 3, Count: 2, Target: TargetSelfOrOther,
		Summary: "The chosen participant ignores card effects until their next turn."},
	Duelist: {Kind: Duelist, Key: "duelist", Name: "Duelist", Rank: 4, Count: 2, Target: TargetOther,
		Summary: "Compare hands with another participant. The lower card is out."},
	Switch: {Kind: Switch, Key: "switch", Name: "Switch", Rank: 5, Count: 2, Target: TargetOther,
		Summary: "Trade hands with another participant."},
	Courier: {Kind: Courier, Key: "courier", Name: "Courier", Rank: 6, Count: 1, Target: TargetSelfOrOther,
		Summary: "The chosen participant discards their hand and draws a new card."},
	Heir: {Kind: Heir, Key: "heir", Name: "Heir", Rank: 7, Count: 1, Target: TargetNone,
		Summary: "Must be played when held together with Switch or Courier."},
	Oracle: {Kind: Oracle, Key: "oracle", Name: "Oracle", Rank: 8, Count: 1, Target: TargetNone,
		Summary: "If this card is discarded for any reason, its holder is out."},
}

// Catalog returns the eight card definitions ordered by rank.
func Catalog() []KindInfo {
	out := make([]KindInfo, 0, KindCount)
	for _, info := range catalog[1:] {
		out = append(out, info)
	}
	return out
}

// AllKinds returns every valid card kind in rank order.
func AllKinds() []CardKind {
	kinds := make([]CardKind, 0, KindCount)
	for k := Watcher; k <= Oracle; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// TotalCards is the size of a full deck.
func TotalCards() int {
	total := 0
	for _, info := range catalog[1:] {
		total += info.Count
	}
	return total
}

// Valid reports whether k is one of the eight catalog kinds.
func (k CardKind) Valid() bool {
	return k >= Watcher && k <= Oracle
}

// Rank returns the power of the card; NoCard ranks 0.
func (k CardKind) Rank() int {
	if !k.Valid() {
		return 0
	}
	return catalog[k].Rank
}

// Info returns the catalog entry for k.
func (k CardKind) Info() KindInfo {
	if !k.Valid() {
		return KindInfo{}
	}
	return catalog[k]
}

func (k CardKind) String() string {
	if !k.Valid() {
		return "none"
	}
	return catalog[k].Key
}

// Name returns the display name of the card.
func (k CardKind) Name() string {
	if !k.Valid() {
		return ""
	}
	return catalog[k].Name
}

// MarshalText encodes the kind as its catalog key.
func (k CardKind) MarshalText() ([]byte, error) {
	if k == NoCard {
		return []byte{}, nil
	}
	if !k.Valid() {
		return nil, fmt.Errorf("marshal card kind %d: %w", uint8(k), ErrUnknownCard)
	}
	return []byte(catalog[k].Key), nil
}

// UnmarshalText accepts a catalog key, a display name or a rank number.
func (k *CardKind) UnmarshalText(text []byte) error {
	kind, err := ParseCardKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// ParseCardKind resolves a key, display name or rank ("1".."8"). An empty string is NoCard.
func ParseCardKind(s string) (CardKind, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NoCard, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < int(Watcher) || n > int(Oracle) {
			return NoCard, fmt.Errorf("card %q: %w", s, ErrUnknownCard)
		}
		return CardKind(n), nil
	}
	for _, info := range catalog[1:] {
		if strings.EqualFold(info.Key, s) || strings.EqualFold(info.Name, s) {
			return info.Kind, nil
		}
	}
	return NoCard, fmt.Errorf("card %q: %w", s, ErrUnknownCard)
}
