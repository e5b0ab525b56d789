package pricing

import (
	"fmt"
	"time"
)

// Tier is a time-bounded pricing stage. End == nil means the stage stays open
// until a later tier begins or registration closes.
type Tier struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Price          int64      `json:"price"`
	FormattedPrice string     `json:"formatted_price"`
	Start          time.Time  `json:"start"`
	End            *time.Time `json:"end"`
	Features       []string   `json:"features"`
}

// State classifies the instant relative to the tier table.
type State int

const (
	StateOpen State = iota
	StatePreOpening
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "OPEN"
	case StatePreOpening:
		return "PRE_OPENING"
	default:
		return "CLOSED"
	}
}

var bogota = time.FixedZone("America/Bogota", -5*60*60)

func date(y int, m time.Month, d, hh, mm, ss int) time.Time {
	return time.Date(y, m, d, hh, mm, ss, 0, bogota)
}

func datePtr(t time.Time) *time.Time { return &t }

var standardFeatures = []string{"KIT OFICIAL COMPLETO", "ACCESO BRACKET 1V1", "SEGURO DE ATLETA"}

// Tiers is the static, ordered stage table for the 2026 event.
// Ranges are non-overlapping; exactly one is active at any open instant.
func Tiers() []Tier {
	return []Tier{
		{
			ID:             "EARLY",
			Name:           "ETAPA 1",
			Price:          170000,
			FormattedPrice: FormatCOP(170000),
			Start:          date(2026, time.January, 15, 0, 0, 0),
			End:            datePtr(date(2026, time.March, 15, 23, 59, 59)),
			Features:       standardFeatures,
		},
		{
			ID:             "REGULAR",
			Name:           "ETAPA 2",
			Price:          195000,
			FormattedPrice: FormatCOP(195000),
			Start:          date(2026, time.March, 16, 0, 0, 0),
			End:            datePtr(date(2026, time.May, 31, 23, 59, 59)),
			Features:       standardFeatures,
		},
		{
			ID:             "LATE",
			Name:           "ETAPA 3",
			Price:          210000,
			FormattedPrice: FormatCOP(210000),
			Start:          date(2026, time.June, 1, 0, 0, 0),
			End:            datePtr(date(2026, time.July, 10, 23, 59, 59)),
			Features:       standardFeatures,
		},
	}
}

// Resolve returns the first tier whose range contains now. When none matches
// the second return distinguishes pre-opening (before the first start) from
// closed (a gap or past the last end).
func Resolve(tiers []Tier, now time.Time) (Tier, State) {
	for _, t := range tiers {
		if now.Before(t.Start) {
			continue
		}
		if t.End == nil || !now.After(*t.End) {
			return t, StateOpen
		}
	}

	if len(tiers) > 0 && now.Before(tiers[0].Start) {
		return Tier{}, StatePreOpening
	}
	return Tier{}, StateClosed
}

// FormatCOP renders a peso amount the way the event advertises it: "$170.000".
func FormatCOP(amount int64) string {
	if amount < 0 {
		return "-" + FormatCOP(-amount)
	}
	s := fmt.Sprintf("%d", amount)
	out := ""
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out += "."
		}
		out += string(r)
	}
	return "$" + out
}
