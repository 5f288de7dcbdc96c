package types

// Action represents the directional intent of a strategy for one candle
type Action string

const (
	ActionEnterLong  Action = "enter_long"
	ActionEnterShort Action = "enter_short"
	ActionExit       Action = "exit"
	ActionHold       Action = "hold"
)

// Signal is the per-candle output of a strategy. Index refers to the candle
// position inside the series the signal was generated for.
type Signal struct {
	Index    int     `json:"index"`
	Action   Action  `json:"action"`
	SizeHint float64 `json:"size_hint,omitempty"` // optional strength in (0, 1], 0 means full size
}

// Hold returns a neutral signal for the given index
func Hold(index int) Signal {
	return Signal{Index: index, Action: ActionHold}
}

// IsEntry returns true for enter_long and enter_short actions
func (s Signal) IsEntry() bool {
	return s.Action == ActionEnterLong || s.Action == ActionEnterShort
}
