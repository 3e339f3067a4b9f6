// Package ranking orders arbitrage opportunities and buckets them into
// display tiers. Everything here is pure: no I/O, no shared state.
package ranking

import (
	"fmt"
	"slices"
	"strings"

	"github.com/alanyoungcy/quiverx/internal/domain"
)

// SortKey selects the numeric field opportunities are ordered by.
type SortKey string

const (
	SortBySpread SortKey = "spread"
	SortByProfit SortKey = "profit"
)

// Direction is the ordering direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseSortKey maps a user-supplied column name to a SortKey. Both "profit"
// and "profitPotential" select the profit column.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spread":
		return SortBySpread, nil
	case "profit", "profitpotential", "profit_potential":
		return SortByProfit, nil
	default:
		return "", fmt.Errorf("ranking: unknown sort key %q", s)
	}
}

// ParseDirection maps "asc"/"desc" (and their long forms) to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	default:
		return "", fmt.Errorf("ranking: unknown direction %q", s)
	}
}

// Value returns the field of o selected by k.
func (k SortKey) Value(o domain.Opportunity) float64 {
	if k == SortByProfit {
		return o.ProfitPotential
	}
	return o.Spread
}

// Rank returns a new slice holding opps ordered by key in the given
// direction. Equal keys keep their input order. The input slice is not
// modified, and a nil or empty input yields an empty, non-nil slice.
func Rank(opps []domain.Opportunity, key SortKey, dir Direction) []domain.Opportunity {
	out := make([]domain.Opportunity, len(opps))
	copy(out, opps)

	slices.SortStableFunc(out, func(a, b domain.Opportunity) int {
		va, vb := key.Value(a), key.Value(b)
		var c int
		switch {
		case va < vb:
			c = -1
		case va > vb:
			c = 1
		}
		if dir == Descending {
			c = -c
		}
		return c
	})
	return out
}

// SortState is the column/direction pair a view is currently sorted by.
type SortState struct {
	Key       SortKey   `json:"key"`
	Direction Direction `json:"direction"`
}

// DefaultSortState sorts by spread, widest first.
func DefaultSortState() SortState {
	return SortState{Key: SortBySpread, Direction: Descending}
}

// Toggle returns the state after the user selects the key column. Selecting
// the current column flips the direction; selecting another column switches
// to it in descending order.
func (s SortState) Toggle(key SortKey) SortState {
	if s.Key == key {
		if s.Direction == Descending {
			return SortState{Key: key, Direction: Ascending}
		}
		return SortState{Key: key, Direction: Descending}
	}
	return SortState{Key: key, Direction: Descending}
}
