package query

import (
	"math"
	"testing"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/annotation"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/geom"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/nodeid"
)

func build(t *testing.T, entities ...annotation.Entity) *annotation.Store {
	t.Helper()
	s := annotation.New()
	for _, e := range entities {
		var err error
		s, err = s.Add(e)
		if err != nil {
			t.Fatalf("Add(%s) failed: %v", e.EntityRef(), err)
		}
	}
	return s
}

func via(id string, node nodeid.ID, x, y float64) annotation.Via {
	return annotation.Via{ID: id, Center: annotation.NodePoint(node, geom.Pt(x, y)), Size: 10}
}

func pad(id string, node nodeid.ID, x, y float64, layer annotation.Layer) annotation.Pad {
	return annotation.Pad{ID: id, Center: annotation.NodePoint(node, geom.Pt(x, y)), Size: 8, Layer: layer}
}

func TestSnapIsZoomInvariant(t *testing.T) {
	s := build(t, via("v1", 7, 0, 0))

	for _, scale := range []float64{1, 8} {
		vp := geom.NewViewport(0)
		vp.Scale = scale
		// Cursor sits 10 world units to the right of the via
		cursor := vp.ScreenToWorld(vp.WorldToScreen(geom.Pt(10, 0)))

		res := Snap(s, cursor, SnapOptions{Kinds: SnapAll})
		if !res.Snapped {
			t.Fatalf("scale %v: expected snap", scale)
		}
		if res.NodeID() != 7 {
			t.Errorf("scale %v: node = %v, want 7", scale, res.NodeID())
		}
		if res.Point.Pos() != geom.Pt(0, 0) {
			t.Errorf("scale %v: point = %+v, want origin", scale, res.Point)
		}
	}
}

func TestSnapMissReturnsQuantizedInput(t *testing.T) {
	s := build(t, via("v1", 7, 0, 0))

	res := Snap(s, geom.Pt(40.12345, 0), SnapOptions{Kinds: SnapAll})
	if res.Snapped {
		t.Fatalf("unexpected snap to %s", res.Target)
	}
	if res.NodeID() != nodeid.None {
		t.Errorf("node = %v, want none", res.NodeID())
	}
	if res.Point.X != 40.123 {
		t.Errorf("x = %v, want 40.123", res.Point.X)
	}
}

func TestSnapNonFiniteInput(t *testing.T) {
	s := build(t, via("v1", 7, 500, 500))

	for _, p := range []geom.Point{
		geom.Pt(math.NaN(), 0),
		geom.Pt(math.Inf(1), 500),
		geom.Pt(500, math.Inf(-1)),
	} {
		res := Snap(s, p, SnapOptions{Kinds: SnapAll, Radius: 1e9})
		if res.Snapped || res.NodeID() != nodeid.None {
			t.Errorf("Snap(%v) snapped to %s", p, res.Target)
		}
	}
}

func TestSnapNearestWinsAndTiesKeepFirst(t *testing.T) {
	s := build(t,
		via("far", 1, 12, 0),
		via("near", 2, 5, 0),
		pad("tie", 3, -5, 0, annotation.LayerTop),
	)

	res := Snap(s, geom.Pt(0, 0), SnapOptions{Kinds: SnapAll})
	if res.Target.ID != "near" {
		t.Errorf("target = %s, want near", res.Target)
	}

	res = Snap(s, geom.Pt(0, 0), SnapOptions{Kinds: SnapPads})
	if res.Target.ID != "tie" {
		t.Errorf("pads only: target = %s, want tie", res.Target)
	}
}

func TestSnapLayerAndKindFilters(t *testing.T) {
	s := build(t,
		pad("bottom", 3, 1, 0, annotation.LayerBottom),
		via("v", 4, 6, 0),
	)

	res := Snap(s, geom.Pt(0, 0), SnapOptions{Kinds: SnapAll, Layer: annotation.LayerTop})
	if res.Target.ID != "v" {
		t.Errorf("layer top: target = %s, want v", res.Target)
	}

	res = Snap(s, geom.Pt(0, 0), SnapOptions{Kinds: SnapPower | SnapGround})
	if res.Snapped {
		t.Errorf("power/ground only: unexpected snap to %s", res.Target)
	}

	res = Snap(s, geom.Pt(0, 0), SnapOptions{Kinds: SnapAll, Radius: 0.5})
	if res.Snapped {
		t.Errorf("radius 0.5: unexpected snap to %s", res.Target)
	}
}

func TestNearestIsDeterministic(t *testing.T) {
	s := build(t, via("a", 1, 0, 0), via("b", 2, 100, 100))

	hits := HitAll(s, geom.Pt(1, 1), 4, nil)
	if len(hits) != 1 || hits[0].Ref.ID != "a" {
		t.Fatalf("hits = %+v, want only a", hits)
	}
}

func TestHitEntity(t *testing.T) {
	trace := annotation.Trace{
		ID:     "t",
		Layer:  annotation.LayerTop,
		Size:   2,
		Points: []annotation.Point{annotation.NewPoint(geom.Pt(0, 0)), annotation.NewPoint(geom.Pt(100, 0))},
	}
	power := annotation.PowerNode{ID: "p", Point: annotation.NodePoint(1, geom.Pt(0, 0)), Size: 20}
	comp := annotation.Component{ID: "c", Position: geom.Pt(0, 0), Width: 20, Height: 10, Layer: annotation.LayerTop}

	tests := []struct {
		name string
		e    annotation.Entity
		p    geom.Point
		tol  float64
		want bool
	}{
		{"via inside radius", via("v", 1, 0, 0), geom.Pt(4, 0), 1, true},
		{"via tolerance dominates", via("v", 1, 0, 0), geom.Pt(7, 0), 8, true},
		{"via miss", via("v", 1, 0, 0), geom.Pt(7, 0), 4, false},
		{"trace near segment", trace, geom.Pt(50, 3), 4, true},
		{"trace miss", trace, geom.Pt(50, 6), 4, false},
		{"trace past end", trace, geom.Pt(105, 0), 4, false},
		{"power arm", power, geom.Pt(18, 1), 2, true},
		{"power beyond arm", power, geom.Pt(25, 0), 2, false},
		{"component inside", comp, geom.Pt(9, 4), 1, true},
		{"component within tolerance", comp, geom.Pt(10.5, 0), 1, true},
		{"component miss", comp, geom.Pt(11.5, 0), 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, got := HitEntity(tt.e, tt.p, tt.tol); got != tt.want {
				t.Errorf("HitEntity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInRect(t *testing.T) {
	crossing := annotation.Trace{
		ID:     "t",
		Layer:  annotation.LayerBottom,
		Size:   1,
		Points: []annotation.Point{annotation.NewPoint(geom.Pt(-5, 5)), annotation.NewPoint(geom.Pt(5, -5))},
	}
	s := build(t,
		via("in", 1, 5, 5),
		via("out", 2, 50, 50),
		crossing,
		annotation.Component{ID: "c", Position: geom.Pt(12, 12), Width: 6, Height: 6, Layer: annotation.LayerTop, PinCount: 2},
	)

	got := InRect(s, geom.NewRect(geom.Pt(10, 10), geom.Pt(0, 0)), nil)
	var ids []string
	for _, e := range got {
		ids = append(ids, e.EntityRef().ID)
	}
	want := []string{"in", "t", "c"}
	if len(ids) != len(want) {
		t.Fatalf("InRect = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("InRect[%d] = %s, want %s", i, ids[i], want[i])
		}
	}

	hidden := Visibility{HideBottom: true}
	for _, e := range InRect(s, geom.NewRect(geom.Pt(0, 0), geom.Pt(10, 10)), hidden) {
		if e.EntityRef().ID == "t" {
			t.Errorf("bottom trace returned while bottom layer hidden")
		}
	}
}

func TestVisibility(t *testing.T) {
	v := Visibility{HideTop: true, Hidden: map[annotation.Kind]bool{annotation.KindGround: true}}

	if !v.Accept(via("v", 1, 0, 0)) {
		t.Errorf("via hidden by top layer toggle")
	}
	if v.Accept(pad("p", 1, 0, 0, annotation.LayerTop)) {
		t.Errorf("top pad visible")
	}
	if !v.Accept(pad("p", 1, 0, 0, annotation.LayerBottom)) {
		t.Errorf("bottom pad hidden")
	}
	if v.Accept(annotation.GroundNode{ID: "g", Point: annotation.NodePoint(1, geom.Pt(0, 0))}) {
		t.Errorf("ground visible while kind hidden")
	}
}
