package models

import (
	"fmt"
	"math"
	"strings"
)

// Boxer represents a row in the "boxers" table. The weight class is derived
// from Weight on every call and never stored.
type Boxer struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Weight int     `json:"weight"`
	Height int     `json:"height"`
	Reach  float64 `json:"reach"`
	Age    int     `json:"age"`
	Fights int     `json:"fights"`
	Wins   int     `json:"wins"`
}

// WeightClass returns the class for the boxer's current weight. A boxer read
// from the repository always has a weight of at least MinWeight; for any
// other value the result is empty.
func (b Boxer) WeightClass() WeightClass {
	wc, err := ClassifyWeight(b.Weight)
	if err != nil {
		return ""
	}
	return wc
}

// Valid reports whether b looks like a persisted boxer: a repository id, a
// name and attributes inside the creation bounds.
func (b *Boxer) Valid() bool {
	if b == nil || b.ID <= 0 || strings.TrimSpace(b.Name) == "" {
		return false
	}
	return b.Weight >= MinWeight && b.Height > 0 && b.Reach > 0 &&
		b.Age >= MinAge && b.Age <= MaxAge && b.Fights >= 0 && b.Wins >= 0 && b.Wins <= b.Fights
}

// ─────────────────────────────────────────────────────────────────────────────
// Creation input
// ─────────────────────────────────────────────────────────────────────────────

// Attribute bounds enforced at creation time.
const (
	MinWeight = 125
	MinAge    = 18
	MaxAge    = 40
)

// CreateBoxerParams holds the fields required to create a new boxer.
// Fights and wins always start at zero.
type CreateBoxerParams struct {
	Name   string  `json:"name"`
	Weight int     `json:"weight"`
	Height int     `json:"height"`
	Reach  float64 `json:"reach"`
	Age    int     `json:"age"`
}

// Validate checks every attribute bound and returns an ErrValidation error
// naming the first offending field.
func (p CreateBoxerParams) Validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return Errorf(ErrValidation, "name must not be empty")
	case p.Weight < MinWeight:
		return Errorf(ErrValidation, "invalid weight: %d, must be at least %d", p.Weight, MinWeight)
	case p.Height <= 0:
		return Errorf(ErrValidation, "invalid height: %d, must be greater than 0", p.Height)
	case p.Reach <= 0 || math.IsNaN(p.Reach) || math.IsInf(p.Reach, 0):
		return Errorf(ErrValidation, "invalid reach: %v, must be greater than 0", p.Reach)
	case p.Age < MinAge || p.Age > MaxAge:
		return Errorf(ErrValidation, "invalid age: %d, must be between %d and %d", p.Age, MinAge, MaxAge)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Weight classes
// ─────────────────────────────────────────────────────────────────────────────

// WeightClass is the categorical label derived from a boxer's weight.
type WeightClass string

const (
	Heavyweight   WeightClass = "HEAVYWEIGHT"
	Middleweight  WeightClass = "MIDDLEWEIGHT"
	Lightweight   WeightClass = "LIGHTWEIGHT"
	Featherweight WeightClass = "FEATHERWEIGHT"
)

// weightClasses lists inclusive lower bounds, highest first.
var weightClasses = []struct {
	min   int
	class WeightClass
}{
	{203, Heavyweight},
	{166, Middleweight},
	{133, Lightweight},
	{MinWeight, Featherweight},
}

// ClassifyWeight maps a weight in pounds to its class.
func ClassifyWeight(weight int) (WeightClass, error) {
	for _, wc := range weightClasses {
		if weight >= wc.min {
			return wc.class, nil
		}
	}
	return "", Errorf(ErrValidation, "invalid weight: %d, must be at least %d", weight, MinWeight)
}

// ─────────────────────────────────────────────────────────────────────────────
// Fight outcomes
// ─────────────────────────────────────────────────────────────────────────────

// Outcome is the per-boxer result of a fight.
type Outcome string

const (
	Win  Outcome = "win"
	Loss Outcome = "loss"
)

// ParseOutcome accepts "win" or "loss".
func ParseOutcome(s string) (Outcome, error) {
	switch o := Outcome(s); o {
	case Win, Loss:
		return o, nil
	}
	return "", Errorf(ErrValidation, "invalid result: %q, expected 'win' or 'loss'", s)
}

// FightResult is the ephemeral value produced by a resolved fight.
type FightResult struct {
	Winner Boxer `json:"winner"`
	Loser  Boxer `json:"loser"`
}

// WinnerName returns the name of the winning boxer.
func (r FightResult) WinnerName() string { return r.Winner.Name }

func (r FightResult) String() string {
	return fmt.Sprintf("%s defeated %s", r.Winner.Name, r.Loser.Name)
}
