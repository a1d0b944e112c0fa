package geom

import (
	"math"
	"testing"

	"gioui.org/f32"
)

func TestQuantizeIdempotent(t *testing.T) {
	values := []float64{
		0, -0.0004, 0.0005, 1.23456789, -1.23456789, 10.0001, 99.9995,
		0.1 + 0.2, 1e6 + 0.12345, -273.15, 123.4565, 1.0 / 3.0,
	}
	for _, x := range values {
		for _, y := range values {
			p := Pt(x, y)
			q := Quantize(p)
			if qq := Quantize(q); qq != q {
				t.Errorf("Quantize not idempotent for %v: %v then %v", p, q, qq)
			}
		}
	}
}

func TestQuantizeRoundsToThreePlaces(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.23456, 1.235},
		{1.2344, 1.234},
		{-2.0004, -2},
		{0.1 + 0.2, 0.3},
		{42, 42},
	}
	for _, tt := range tests {
		if got := QuantizeCoord(tt.in); got != tt.want {
			t.Errorf("QuantizeCoord(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestQuantizeLeavesNonFinite(t *testing.T) {
	if !math.IsNaN(QuantizeCoord(math.NaN())) {
		t.Errorf("NaN should pass through")
	}
	if !math.IsInf(QuantizeCoord(math.Inf(1)), 1) {
		t.Errorf("+Inf should pass through")
	}
}

func TestViewportRoundTrip(t *testing.T) {
	vp := Viewport{
		Pan:              Pt(40, -25),
		Scale:            2.5,
		ContentBorder:    20,
		DevicePixelRatio: 2,
	}
	world := Pt(123.5, 77.25)
	back := vp.ScreenToWorld(vp.WorldToScreen(world))
	if math.Abs(back.X-world.X) > 1e-3 || math.Abs(back.Y-world.Y) > 1e-3 {
		t.Fatalf("round trip mismatch: got %v, want %v", back, world)
	}
}

func TestScreenToWorldComposition(t *testing.T) {
	vp := Viewport{
		Pan:              Pt(10, 20),
		Scale:            2,
		ContentBorder:    5,
		DevicePixelRatio: 2,
	}
	// (100/2 - 5 - 10) / 2 = 17.5 ; (200/2 - 5 - 20) / 2 = 37.5
	got := vp.ScreenToWorld(f32.Pt(100, 200))
	if got != Pt(17.5, 37.5) {
		t.Fatalf("ScreenToWorld = %v, want (17.5, 37.5)", got)
	}
}

func TestClampScale(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.1, MinScale},
		{1, 1},
		{20, MaxScale},
		{0, 1},
		{-3, 1},
	}
	for _, tt := range tests {
		if got := ClampScale(tt.in); got != tt.want {
			t.Errorf("ClampScale(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestZoomAtKeepsCursorFixed(t *testing.T) {
	vp := NewViewport(10)
	cursor := f32.Pt(300, 200)
	before := vp.ScreenToWorld(cursor)

	vp.ZoomAt(cursor, 3)
	after := vp.ScreenToWorld(cursor)

	if vp.Scale != 3 {
		t.Fatalf("scale = %v, want 3", vp.Scale)
	}
	if math.Abs(before.X-after.X) > 1e-6 || math.Abs(before.Y-after.Y) > 1e-6 {
		t.Errorf("cursor drifted: before %v after %v", before, after)
	}

	vp.ZoomAt(cursor, 100)
	if vp.Scale != MaxScale {
		t.Errorf("scale not clamped: %v", vp.Scale)
	}
}

func TestHitTolerance(t *testing.T) {
	tests := []struct {
		scale, want float64
	}{
		{0.25, 24},
		{1, 6},
		{1.5, 4},
		{8, 4},
	}
	for _, tt := range tests {
		if got := HitTolerance(tt.scale); got != tt.want {
			t.Errorf("HitTolerance(%v) = %v, want %v", tt.scale, got, tt.want)
		}
	}
}

func TestSegmentIntersectsRect(t *testing.T) {
	r := NewRect(Pt(0, 0), Pt(10, 10))
	tests := []struct {
		name string
		a, b Point
		want bool
	}{
		{"crosses corner", Pt(-5, 5), Pt(5, -5), true},
		{"fully inside", Pt(2, 2), Pt(8, 8), true},
		{"passes through", Pt(-5, 5), Pt(15, 5), true},
		{"one end inside", Pt(5, 5), Pt(50, 50), true},
		{"fully left", Pt(-5, 0), Pt(-1, 10), false},
		{"misses corner", Pt(-5, 4), Pt(4, -5), false},
		{"above and right", Pt(11, 20), Pt(20, 11), false},
		{"touches edge", Pt(10, -5), Pt(10, 15), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SegmentIntersectsRect(tt.a, tt.b, r); got != tt.want {
				t.Errorf("SegmentIntersectsRect(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestClipSegmentReturnsVisiblePart(t *testing.T) {
	r := NewRect(Pt(0, 0), Pt(10, 10))
	a, b, ok := ClipSegment(Pt(-10, 5), Pt(20, 5), r)
	if !ok {
		t.Fatalf("expected segment to be visible")
	}
	if a != Pt(0, 5) || b != Pt(10, 5) {
		t.Errorf("clipped to %v-%v, want (0,5)-(10,5)", a, b)
	}
}

func TestDistanceToSegment(t *testing.T) {
	tests := []struct {
		p, a, b Point
		want    float64
	}{
		{Pt(5, 3), Pt(0, 0), Pt(10, 0), 3},
		{Pt(-4, 3), Pt(0, 0), Pt(10, 0), 5},
		{Pt(13, 4), Pt(0, 0), Pt(10, 0), 5},
		{Pt(3, 4), Pt(0, 0), Pt(0, 0), 5},
	}
	for _, tt := range tests {
		if got := DistanceToSegment(tt.p, tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("DistanceToSegment(%v, %v, %v) = %v, want %v", tt.p, tt.a, tt.b, got, tt.want)
		}
	}
}

func TestNewRectNormalizes(t *testing.T) {
	r := NewRect(Pt(10, -2), Pt(-3, 7))
	if r.Min != Pt(-3, -2) || r.Max != Pt(10, 7) {
		t.Fatalf("unexpected rect %+v", r)
	}
	if !r.Contains(Pt(10, 7)) {
		t.Errorf("edge point should be contained")
	}
	sq := Square(Pt(5, 5), 4)
	if sq.Min != Pt(3, 3) || sq.Max != Pt(7, 7) {
		t.Errorf("unexpected square %+v", sq)
	}
}
