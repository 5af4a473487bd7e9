// Copyright (c) 2013, 2014 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dcrutil

import (
	"errors"
	"math"
	"strconv"
)

// AmountUnit describes a method of converting an Amount to a floating point
// value representing a quantity of pals.
type AmountUnit int

// These constants define various units used when describing an amount.
const (
	AmountMegaTMPL  AmountUnit = 6
	AmountKiloTMPL  AmountUnit = 3
	AmountTMPL      AmountUnit = 0
	AmountMilliTMPL AmountUnit = -3
	AmountMicroTMPL AmountUnit = -6
	AmountPal       AmountUnit = -8
)

// String returns the unit's suffix, e.g. "MTMPL", "TMPL", "Pal".
func (u AmountUnit) String() string {
	switch u {
	case AmountMegaTMPL:
		return "MTMPL"
	case AmountKiloTMPL:
		return "kTMPL"
	case AmountTMPL:
		return "TMPL"
	case AmountMilliTMPL:
		return "mTMPL"
	case AmountMicroTMPL:
		return "µTMPL"
	case AmountPal:
		return "Pal"
	default:
		return "1e" + strconv.FormatInt(int64(u), 10) + " TMPL"
	}
}

// PalsPerTMPL is the number of pals in one TMPL.
const PalsPerTMPL = 1e8

// MaxPals is the maximum number of pals that can ever exist, used as a
// sanity bound by NewAmount; the protocol's own MaxTransactionAmount (a
// chaincfg.Params field, much smaller) is the real per-transfer cap.
const MaxPals = 21e6 * PalsPerTMPL

// ErrInvalidAmount is returned when an amount exceeds MaxPals or is NaN/Inf.
var ErrInvalidAmount = errors.New("dcrutil: invalid amount")

// Amount represents a quantity of pals as an int64. It mirrors btcutil's
// Amount type: a fixed-point integer rather than a float, so that
// arithmetic never drifts.
type Amount int64

// round converts a floating point number, which may or may not be
// representing an amount of TMPL, to an integer of pals.
func round(f float64) Amount {
	if f < 0 {
		return Amount(f - 0.5)
	}
	return Amount(f + 0.5)
}

// NewAmount creates an Amount from a floating point value representing some
// value in TMPL. NewAmount errors if f is NaN, +-Infinity, or in excess of
// MaxPals.
func NewAmount(f float64) (Amount, error) {
	switch {
	case math.IsNaN(f), math.IsInf(f, 0):
		return 0, ErrInvalidAmount
	}
	amount := round(f * PalsPerTMPL)
	if amount > MaxPals || amount < -MaxPals {
		return 0, ErrInvalidAmount
	}
	return amount, nil
}

// ToUnit converts a monetary amount counted in pals to a floating point
// value representing an amount of the given unit.
func (a Amount) ToUnit(u AmountUnit) float64 {
	return float64(a) / math.Pow10(int(u+8))
}

// ToTMPL is the equivalent of calling ToUnit with AmountTMPL.
func (a Amount) ToTMPL() float64 {
	return a.ToUnit(AmountTMPL)
}

// Format formats a monetary amount counted in pals as a string for a given
// unit, with full precision suffixed by the unit's abbreviation.
func (a Amount) Format(u AmountUnit) string {
	units := " " + u.String()
	formatted := strconv.FormatFloat(a.ToUnit(u), 'f', -int(u+8), 64)
	return formatted + units
}

// String is the equivalent of calling Format with AmountTMPL.
func (a Amount) String() string {
	return a.Format(AmountTMPL)
}

// MulF64 multiplies an Amount by a floating point value, rounding to the
// nearest whole pal.
func (a Amount) MulF64(f float64) Amount {
	return round(float64(a) * f)
}
