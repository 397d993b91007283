package game

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/lox/pontoon/internal/deck"
)

// Hidden is the placeholder reported for cards and totals the player may not see.
const Hidden = "Hidden"

// Phase is the position of a game in its round lifecycle.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseInProgress
	PhaseRoundOver
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not_started"
	case PhaseInProgress:
		return "in_progress"
	case PhaseRoundOver:
		return "round_over"
	default:
		return "unknown"
	}
}

// MarshalText encodes the phase name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(text []byte) error {
	switch string(text) {
	case "not_started":
		*p = PhaseNotStarted
	case "in_progress":
		*p = PhaseInProgress
	case "round_over":
		*p = PhaseRoundOver
	default:
		return fmt.Errorf("unknown phase %q", text)
	}
	return nil
}

// DealerView is the part of the dealer's hand the player is allowed to see.
// Hidden counts face-down cards, which encode as the "Hidden" placeholder.
type DealerView struct {
	Cards  []deck.Card
	Hidden int
}

// Len returns the number of dealer cards, visible or not.
func (v DealerView) Len() int {
	return len(v.Cards) + v.Hidden
}

// MarshalJSON encodes visible cards followed by one "Hidden" per face-down card.
func (v DealerView) MarshalJSON() ([]byte, error) {
	items := make([]any, 0, v.Len())
	for _, c := range v.Cards {
		items = append(items, c)
	}
	for range v.Hidden {
		items = append(items, Hidden)
	}
	return json.Marshal(items)
}

// UnmarshalJSON decodes the mixed card/placeholder array.
func (v *DealerView) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = DealerView{Cards: []deck.Card{}}
	for _, item := range raw {
		if bytes.Equal(bytes.TrimSpace(item), []byte(`"`+Hidden+`"`)) {
			v.Hidden++
			continue
		}
		var c deck.Card
		if err := json.Unmarshal(item, &c); err != nil {
			return err
		}
		v.Cards = append(v.Cards, c)
	}
	return nil
}

// DealerTotal is the dealer's total, or the hidden placeholder while the
// round is in play.
type DealerTotal struct {
	value  int
	hidden bool
}

// HiddenTotal returns the redacted total.
func HiddenTotal() DealerTotal { return DealerTotal{hidden: true} }

// KnownTotal returns a revealed total.
func KnownTotal(v int) DealerTotal { return DealerTotal{value: v} }

// Hidden reports whether the total is redacted.
func (t DealerTotal) Hidden() bool { return t.hidden }

// Value returns the total and whether it is known.
func (t DealerTotal) Value() (int, bool) { return t.value, !t.hidden }

func (t DealerTotal) String() string {
	if t.hidden {
		return Hidden
	}
	return fmt.Sprintf("%d", t.value)
}

// MarshalJSON encodes a number, or "Hidden" when redacted.
func (t DealerTotal) MarshalJSON() ([]byte, error) {
	if t.hidden {
		return json.Marshal(Hidden)
	}
	return json.Marshal(t.value)
}

// UnmarshalJSON accepts a number or the "Hidden" placeholder.
func (t *DealerTotal) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != Hidden {
			return fmt.Errorf("unexpected dealer value %q", s)
		}
		*t = HiddenTotal()
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = KnownTotal(n)
	return nil
}

// State is the player's view of a game.
type State struct {
	PlayerHand  []deck.Card `json:"player_hand"`
	DealerHand  DealerView  `json:"dealer_hand"`
	PlayerValue int         `json:"player_value"`
	DealerValue DealerTotal `json:"dealer_value"`
	GameOver    bool        `json:"game_over"`
	PlayerStuck bool        `json:"player_stuck"`
	Phase       Phase       `json:"phase"`
}
