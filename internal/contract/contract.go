// Package contract decodes vendor option-contract identifiers and applies
// economic filters (moneyness band, days to expiry) to the decoded contracts.
//
// The vendor encodes a contract as the underlying ticker followed by a
// fixed-width 15-character tail: a 6-digit YYMMDD expiry, a one-character
// side flag (C or P) and an 8-digit strike scaled by 1000. An optional "O:"
// prefix marks the options asset class and is stripped before decoding.
package contract

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrMalformedIdentifier is returned when an identifier does not match the
// fixed-width encoding. Malformed identifiers are rejected outright, never
// partially parsed.
var ErrMalformedIdentifier = errors.New("contract: malformed identifier")

// Side is the option side encoded in the identifier.
type Side string

const (
	SideCall Side = "call"
	SidePut  Side = "put"
)

const (
	expiryLayout = "060102"
	encodedLen   = 15 // 6 expiry + 1 side + 8 strike
	strikeScale  = 3  // strike field is thousandths
)

// Contract is the structural decomposition of an option identifier.
type Contract struct {
	Underlying string
	Expiry     time.Time // date only, UTC midnight
	Side       Side
	Strike     decimal.Decimal
}

// Parse decodes identifier into a Contract. The underlying prefix must be
// known up front because ticker lengths vary (A vs AAPL). Decoding is total
// over its failure domain: anything that is not a well-formed identifier for
// the given underlying fails with ErrMalformedIdentifier.
func Parse(identifier, underlying string) (Contract, error) {
	s := strings.TrimPrefix(identifier, "O:")
	if !strings.HasPrefix(s, underlying) || underlying == "" {
		return Contract{}, fmt.Errorf("%w: %q does not start with underlying %q", ErrMalformedIdentifier, identifier, underlying)
	}
	tail := s[len(underlying):]
	if len(tail) != encodedLen {
		return Contract{}, fmt.Errorf("%w: %q tail is %d chars, want %d", ErrMalformedIdentifier, identifier, len(tail), encodedLen)
	}

	expiry, err := time.ParseInLocation(expiryLayout, tail[:6], time.UTC)
	if err != nil {
		return Contract{}, fmt.Errorf("%w: %q has invalid expiry date %q", ErrMalformedIdentifier, identifier, tail[:6])
	}

	var side Side
	switch tail[6] {
	case 'C':
		side = SideCall
	case 'P':
		side = SidePut
	default:
		return Contract{}, fmt.Errorf("%w: %q has unknown side flag %q", ErrMalformedIdentifier, identifier, string(tail[6]))
	}

	milli, err := parseStrikeField(tail[7:])
	if err != nil {
		return Contract{}, fmt.Errorf("%w: %q has invalid strike field %q", ErrMalformedIdentifier, identifier, tail[7:])
	}

	return Contract{
		Underlying: underlying,
		Expiry:     expiry,
		Side:       side,
		Strike:     decimal.New(milli, -strikeScale),
	}, nil
}

// parseStrikeField decodes the 8-digit thousandths field. strconv.ParseInt
// tolerates a leading sign, which the encoding does not.
func parseStrikeField(s string) (int64, error) {
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-digit %q", r)
		}
	}
	return strconv.ParseInt(s, 10, 64)
}

// Symbol re-encodes the contract into its canonical identifier (without the
// "O:" prefix). Parse followed by Symbol reproduces the original string.
func (c Contract) Symbol() string {
	flag := byte('C')
	if c.Side == SidePut {
		flag = 'P'
	}
	return fmt.Sprintf("%s%s%c%08d", c.Underlying, c.Expiry.Format(expiryLayout), flag, c.Strike.Shift(strikeScale).IntPart())
}

// Filter holds the economic criteria a contract must meet to be retained.
type Filter struct {
	// Span is the maximum fractional distance between strike and the
	// reference price, in (0, 1].
	Span float64
	// MaxDTE is the maximum number of calendar days between AsOf and expiry.
	MaxDTE int
	// AsOf is the reference date for the days-to-expiry window.
	AsOf time.Time
	// RefPrice is the reference (spot) price for the moneyness test. A
	// non-positive value disables the moneyness test rather than failing
	// every contract; vendors sometimes omit the underlying price.
	RefPrice float64
}

// Keep reports whether the contract passes the moneyness and days-to-expiry
// criteria. Both bounds are inclusive, so widening Span or MaxDTE never
// drops a previously passing contract.
func (f Filter) Keep(c Contract) bool {
	dte := daysBetween(f.AsOf, c.Expiry)
	if dte < 0 || dte > f.MaxDTE {
		return false
	}
	if f.RefPrice > 0 {
		strike, _ := c.Strike.Float64()
		if math.Abs(strike-f.RefPrice)/f.RefPrice > f.Span {
			return false
		}
	}
	return true
}

// daysBetween counts calendar days from a to b, ignoring time of day.
func daysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a) / (24 * time.Hour))
}
