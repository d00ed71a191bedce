package domain

import (
	"encoding/json"
	"math"
	"strconv"
)

// Reading is an optional numeric observation. The zero value is missing.
type Reading struct {
	Value float64
	Valid bool
}

// Of wraps v as a present reading. NaN and ±Inf are treated as missing.
func Of(v float64) Reading {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Reading{}
	}
	return Reading{Value: v, Valid: true}
}

// Missing returns an absent reading.
func Missing() Reading { return Reading{} }

// Get returns the value and whether it is present.
func (r Reading) Get() (float64, bool) { return r.Value, r.Valid }

// Float returns the value, or NaN when missing.
func (r Reading) Float() float64 {
	if !r.Valid {
		return math.NaN()
	}
	return r.Value
}

// String formats the reading for tabular output; missing renders as "".
func (r Reading) String() string {
	if !r.Valid {
		return ""
	}
	return strconv.FormatFloat(r.Value, 'f', -1, 64)
}

// MarshalJSON encodes missing readings as null.
func (r Reading) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}

// UnmarshalJSON accepts a number or null.
func (r *Reading) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = Reading{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Of(v)
	return nil
}
