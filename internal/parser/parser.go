// internal/parser/parser.go
package parser

import (
	"strconv"
	"strings"
)

// Delimiter separates readings in a drained buffer blob.
const Delimiter = ","

// Result is the outcome of parsing one drained blob.
// Samples keep the device acquisition order.
type Result struct {
	Samples []float64
	Skipped int
}

// Parse converts a delimited blob into samples.
// It never fails: malformed tokens are counted in Skipped and dropped.
//
// Fragment tokens ("-", ".", "E", "-.", ".E", "E-", ...) are an expected
// artifact of the instrument streaming its buffer back in fixed-size chunks.
func Parse(blob string) Result {
	if blob == "" {
		return Result{}
	}

	tokens := strings.Split(blob, Delimiter)
	res := Result{Samples: make([]float64, 0, len(tokens))}

	for _, raw := range tokens {
		tok := strings.TrimSpace(raw)

		if IsFragment(tok) {
			res.Skipped++
			continue
		}

		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			res.Skipped++
			continue
		}
		res.Samples = append(res.Samples, v)
	}

	return res
}

// IsFragment reports whether tok cannot be a complete number:
// it is empty or carries no decimal digit once sign, decimal point
// and exponent markers are ignored.
func IsFragment(tok string) bool {
	for i := 0; i < len(tok); i++ {
		if tok[i] >= '0' && tok[i] <= '9' {
			return false
		}
	}
	return true
}
