package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ChicagoDave/klaro/pkg/optimize"
)

// Placeholder is shown for missing values.
const Placeholder = "-"

var usd = message.NewPrinter(language.AmericanEnglish)

// Fmt formats a value for display: integers without a decimal point, other
// numbers with four decimals, nil as the placeholder dash.
func Fmt(v *float64) string {
	if v == nil {
		return Placeholder
	}
	f := *v
	switch {
	case math.IsNaN(f):
		return Placeholder
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	case f == math.Trunc(f):
		return strconv.FormatFloat(f, 'f', -1, 64)
	default:
		return strconv.FormatFloat(f, 'f', 4, 64)
	}
}

// FmtNumber is Fmt for a possibly-missing Number.
func FmtNumber(n optimize.Number) string { return Fmt(n.Ptr()) }

// FmtFloat is Fmt for a present value.
func FmtFloat(f float64) string { return Fmt(&f) }

// USD formats an amount as whole US dollars with thousands separators.
func USD(v float64) string {
	rounded := math.Round(v)
	if rounded < 0 {
		return "-$" + usd.Sprintf("%.0f", -rounded)
	}
	return "$" + usd.Sprintf("%.0f", rounded)
}

// CostLine is the headline sentence for an optimal objective value.
func CostLine(z float64) string {
	return fmt.Sprintf("The cost of this optimal mitigation project is %s", USD(z))
}

var mojibake = strings.NewReplacer(
	"â€”", ": ",
	"â€“", ": ",
	"�", "?",
)

// Sanitize is the last-step guard for text shown to the user. Solver output is
// decoded with a declared encoding before it gets here; this only patches the
// leftovers of a mis-declared one.
func Sanitize(s string) string {
	return mojibake.Replace(strings.ToValidUTF8(s, "?"))
}
