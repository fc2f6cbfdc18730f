package domain

import (
	"encoding/json"
	"math"
)

// OptFloat is an explicitly optional float64. Derived statistics that cannot
// be computed (rolling values inside the warm-up period, z-scores over a
// zero-variance window, Sharpe over flat returns) are carried as invalid
// OptFloats rather than NaN or zero, so downstream code has to check before
// doing arithmetic.
type OptFloat struct {
	Value float64
	Valid bool
}

// Float returns a valid OptFloat holding v.
func Float(v float64) OptFloat {
	return OptFloat{Value: v, Valid: true}
}

// Absent returns the invalid OptFloat. The zero value is equivalent.
func Absent() OptFloat {
	return OptFloat{}
}

// Or returns the held value, or def when absent.
func (o OptFloat) Or(def float64) float64 {
	if !o.Valid {
		return def
	}
	return o.Value
}

// MarshalJSON encodes absent values as null so diagnostic series keep their
// index positions in artifacts.
func (o OptFloat) MarshalJSON() ([]byte, error) {
	if !o.Valid || math.IsNaN(o.Value) || math.IsInf(o.Value, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// UnmarshalJSON decodes null back into the absent marker.
func (o *OptFloat) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*o = OptFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*o = Float(v)
	return nil
}
