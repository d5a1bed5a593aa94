// Package units converts between decimal ether strings and wei.
package units

import (
	"math/big"
	"strings"

	"github.com/cockroachdb/apd"
	"github.com/pkg/errors"
)

// EtherDecimals is the number of fractional digits of one ether in wei.
const EtherDecimals = 18

// MaxWeiBits bounds amounts to what a uint256 contract argument can hold.
const MaxWeiBits = 256

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNegativeAmount = errors.New("amount is negative")
	ErrTooPrecise     = errors.New("amount has more than 18 fractional digits")
)

// 100 significant digits is far beyond any uint256 amount.
var decimalCtx = apd.BaseContext.WithPrecision(100)

// ParseEther converts a decimal ether string such as "0.5" into wei.
// The conversion is exact; amounts that cannot be represented in wei are
// rejected instead of rounded.
func ParseEther(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "-") {
		return nil, ErrNegativeAmount
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return nil, errors.Wrapf(ErrInvalidAmount, "%q", s)
		}
	}

	d, _, err := apd.NewFromString(s)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q: %v", s, err)
	}
	if d.Form != apd.Finite {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q", s)
	}

	wei := new(apd.Decimal)
	cond, err := decimalCtx.Quantize(wei, d, -EtherDecimals)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q: %v", s, err)
	}
	if cond.Inexact() {
		return nil, ErrTooPrecise
	}
	if wei.Coeff.BitLen() > MaxWeiBits {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q does not fit in %d bits of wei", s, MaxWeiBits)
	}
	return new(big.Int).Set(&wei.Coeff), nil
}

// FormatEther renders wei as the shortest exact decimal ether string.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	d := apd.NewWithBigInt(new(big.Int).Set(wei), -EtherDecimals)
	s := d.Text('f')
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
