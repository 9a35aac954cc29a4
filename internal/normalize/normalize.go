package normalize

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// FullPrecision is the DecimalPlaces sentinel meaning "render every
// significant fractional digit". Treat it as a tag, never as a count.
const FullPrecision = -1

// Options is the complete formatting configuration for one pass. It is a
// read-only snapshot: callers supply a consistent value per call and the
// pipeline never mutates it.
type Options struct {
	// Multiplier scales every numeric value; 1 means no change, 0.001
	// renders thousands, and so on. Zero is treated as 1 so the zero value
	// stays usable.
	Multiplier float64
	// DecimalPlaces is the fixed fractional digit count, or FullPrecision.
	DecimalPlaces int
	// ForceNegative coerces non-zero numeric results to their negative
	// absolute value. Zero is never signed.
	ForceNegative bool
	// TitleCase applies title casing to headers and non-numeric cell text.
	TitleCase bool
	// CustomInstruction is passed through to the extraction model verbatim
	// and is not interpreted here.
	CustomInstruction string
}

// DefaultOptions returns the identity configuration: no scaling, full
// precision, no sign or case changes.
func DefaultOptions() Options {
	return Options{Multiplier: 1, DecimalPlaces: FullPrecision}
}

// Cell is the normalized interpretation of one raw cell value: either a
// signed real number or pass-through text.
type Cell struct {
	Number  float64
	Text    string
	Numeric bool
}

// ParseCell classifies a raw cell value. Numeric inputs are accepted
// directly. Strings are trimmed, checked for a single wrapping pair of
// accounting parentheses (which records a negative sign), stripped of comma
// thousands separators, and parsed. Anything left unparseable is text; the
// original string is preserved untouched.
//
// The parenthesis sign is the sole sign source for a wrapped value: the
// result is the negation of the inner value's absolute value, so "(5)" and
// "(-5)" both normalize to -5 rather than double-negating.
func ParseCell(v any) Cell {
	switch x := v.(type) {
	case float64:
		return Cell{Number: x, Numeric: true}
	case int:
		return Cell{Number: float64(x), Numeric: true}
	case int64:
		return Cell{Number: float64(x), Numeric: true}
	case string:
		s := strings.TrimSpace(foldDigits(x))
		neg := false
		if len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' {
			neg = true
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return Cell{Text: x}
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Cell{Text: x}
		}
		if neg {
			n = -math.Abs(n)
		}
		return Cell{Number: n, Numeric: true}
	default:
		return Cell{}
	}
}

// foldDigits maps full-width digits, signs and no-break spaces produced by
// OCR of mixed-script documents onto their ASCII equivalents (NFKC). Cells
// that stay textual keep their original form; folding only feeds the numeric
// probe.
func foldDigits(s string) string {
	for _, r := range s {
		if r >= 0x80 {
			return norm.NFKC.String(s)
		}
	}
	return s
}

// Formatted is the outcome of one transform pass over a single cell.
type Formatted struct {
	// Display is the UI-facing string, thousands separators included for
	// numbers.
	Display string
	// Plain is the machine-parseable rendering: identical to Display except
	// that numeric values carry no thousands separators. Export paths use
	// Plain so copied text survives re-parsing.
	Plain string
	// Number is the raw transformed value, valid only when Numeric is true.
	Number  float64
	Numeric bool
}

// Apply runs the full pipeline over one raw cell value: normalize, scale,
// epsilon-clean, force sign, render. Non-numeric text passes through with
// optional title casing. The step order is load-bearing: scaling before the
// cleanup rounding keeps multiplication noise out of the rendering, and the
// sign coercion after rounding can never produce a signed zero.
func Apply(v any, opts Options) Formatted {
	c := ParseCell(v)
	if !c.Numeric {
		t := c.Text
		if opts.TitleCase {
			t = TitleCase(t)
		}
		return Formatted{Display: t, Plain: t}
	}
	mult := opts.Multiplier
	if mult == 0 {
		mult = 1
	}
	n := roundEpsilon(c.Number * mult)
	if opts.ForceNegative && n != 0 {
		n = -math.Abs(n)
	}
	return Formatted{
		Display: FormatNumber(n, opts.DecimalPlaces),
		Plain:   formatPlain(n, opts.DecimalPlaces),
		Number:  n,
		Numeric: true,
	}
}

// roundEpsilon rounds to 10 decimal digits, wiping binary representation
// artifacts (trailing ...9999 / ...0001 noise) left by the multiplication
// without touching intended precision at that resolution.
func roundEpsilon(v float64) float64 {
	return math.Round(v*1e10) / 1e10
}

// FormatNumber renders a value with thousands separators in the integer
// part. places == FullPrecision keeps every significant fractional digit and
// trims trailing zeros; places >= 0 renders exactly that many fractional
// digits, zero-padded.
func FormatNumber(v float64, places int) string {
	return groupThousands(formatPlain(v, places))
}

func formatPlain(v float64, places int) string {
	if v == 0 {
		v = 0 // canonicalize negative zero
	}
	if places == FullPrecision {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', places, 64)
}

// groupThousands inserts comma separators into the integer part of an
// already-rendered decimal string.
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}
	if len(intPart) <= 3 {
		return sign + intPart + fracPart
	}
	var b strings.Builder
	b.Grow(len(s) + len(intPart)/3 + 1)
	b.WriteString(sign)
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	b.WriteString(fracPart)
	return b.String()
}
