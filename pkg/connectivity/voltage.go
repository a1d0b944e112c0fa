package connectivity

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/annotation"
)

// ErrBadVoltage is returned for bus voltages that do not parse.
var ErrBadVoltage = errors.New("connectivity: bad voltage")

// VoltageLexer tokenizes bus voltage labels such as "+5V", "3V3", "-12 V"
// and "500mV".
var VoltageLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Number", Pattern: `\d+(?:\.\d+)?`},
	{Name: "Unit", Pattern: `(?i)m?v`},
	{Name: "Sign", Pattern: `[-+]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// voltageLabel is the grammar of a voltage label. Frac holds the digits
// after the unit in RKM notation ("3V3" is 3.3 V).
type voltageLabel struct {
	Sign  string `parser:"@Sign?"`
	Whole string `parser:"@Number"`
	Unit  string `parser:"@Unit?"`
	Frac  string `parser:"@Number?"`
}

var voltageParser = participle.MustBuild[voltageLabel](
	participle.Lexer(VoltageLexer),
	participle.Elide("Whitespace"),
)

// ParseVoltage converts a label into volts.
func ParseVoltage(s string) (float64, error) {
	label, err := voltageParser.ParseString("", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrBadVoltage, s, err)
	}

	text := label.Whole
	if label.Frac != "" {
		if label.Unit == "" || strings.Contains(label.Whole, ".") || strings.Contains(label.Frac, ".") {
			return 0, fmt.Errorf("%w: %q: malformed fraction", ErrBadVoltage, s)
		}
		text += "." + label.Frac
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrBadVoltage, s, err)
	}
	if strings.EqualFold(label.Unit, "mv") {
		v /= 1000
	}
	if label.Sign == "-" {
		v = -v
	}
	return v, nil
}

// SortBuses orders buses by parsed voltage, highest first. Buses whose
// voltage does not parse go last; ties keep name order.
func SortBuses(buses []annotation.PowerBus) []annotation.PowerBus {
	out := append([]annotation.PowerBus(nil), buses...)
	key := func(b annotation.PowerBus) float64 {
		v, err := ParseVoltage(b.Voltage)
		if err != nil {
			return math.Inf(-1)
		}
		return v
	}
	sort.SliceStable(out, func(i, j int) bool {
		vi, vj := key(out[i]), key(out[j])
		if vi != vj {
			return vi > vj
		}
		return out[i].Name < out[j].Name
	})
	return out
}
