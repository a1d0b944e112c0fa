package geom

import (
	"math"

	"github.com/shopspring/decimal"
)

// Precision is the number of decimal places kept on every stored coordinate.
const Precision = 3

// QuantizeCoord rounds v to Precision decimal places. The rounding happens in
// decimal space so that values which print the same compare equal as
// float64. NaN and infinities are returned unchanged.
func QuantizeCoord(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	q, _ := decimal.NewFromFloat(v).Round(Precision).Float64()
	return q
}

// Quantize rounds both coordinates of p. Quantize(Quantize(p)) == Quantize(p).
func Quantize(p Point) Point {
	return Point{X: QuantizeCoord(p.X), Y: QuantizeCoord(p.Y)}
}
