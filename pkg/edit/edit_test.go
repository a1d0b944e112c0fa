package edit

import (
	"errors"
	"testing"

	"gioui.org/f32"
	"gioui.org/io/key"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/annotation"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/geom"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/nodeid"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/query"
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
	return annotation.Via{ID: id, Center: annotation.NodePoint(node, geom.Pt(x, y)), Size: 4}
}

func ref(k annotation.Kind, id string) annotation.Ref {
	return annotation.Ref{Kind: k, ID: id}
}

func fixture(t *testing.T) *annotation.Store {
	return build(t,
		via("v1", 1, 0, 0),
		via("v2", 2, 100, 100),
		annotation.Trace{
			ID:     "t1",
			Layer:  annotation.LayerTop,
			Size:   1,
			Points: []annotation.Point{annotation.NodePoint(1, geom.Pt(0, 0)), annotation.NodePoint(2, geom.Pt(100, 100))},
		},
		annotation.PowerNode{ID: "p1", Point: annotation.NodePoint(3, geom.Pt(50, 0)), Size: 6},
		annotation.GroundNode{ID: "g1", Point: annotation.NodePoint(4, geom.Pt(0, 50)), Size: 6},
		annotation.Component{ID: "c1", Designator: "U1", Position: geom.Pt(60, 60), Width: 10, Height: 10, Layer: annotation.LayerTop, PinCount: 2},
	)
}

func TestSelectTinyDragPicksSingleNearest(t *testing.T) {
	s := build(t, via("a", 1, 0, 0), via("b", 2, 100, 100))

	drag := geom.NewRect(geom.Pt(0.5, 0.5), geom.Pt(1.5, 1.5))
	sel := Select(s, Selection{}, drag, SelectOptions{Tolerance: 4})
	if sel.Len() != 1 || !sel.Contains(ref(annotation.KindVia, "a")) {
		t.Fatalf("selection = %+v, want only a", sel)
	}

	// Clicking empty space clears unless additive
	empty := geom.NewRect(geom.Pt(50, 50), geom.Pt(51, 51))
	if got := Select(s, sel, empty, SelectOptions{Tolerance: 4}); !got.IsEmpty() {
		t.Errorf("non-additive miss kept %+v", got)
	}
	if got := Select(s, sel, empty, SelectOptions{Tolerance: 4, Additive: true}); got.Len() != 1 {
		t.Errorf("additive miss dropped selection: %+v", got)
	}
}

func TestSelectRectanglePartitionsByGroup(t *testing.T) {
	s := fixture(t)

	sel := Select(s, Selection{}, geom.NewRect(geom.Pt(-10, -10), geom.Pt(70, 70)), SelectOptions{Tolerance: 1})
	if len(sel.Strokes) != 2 || !sel.Contains(ref(annotation.KindVia, "v1")) || !sel.Contains(ref(annotation.KindTrace, "t1")) {
		t.Errorf("strokes = %v, want v1 and t1", sel.Strokes)
	}
	if len(sel.Components) != 1 || len(sel.Powers) != 1 || len(sel.Grounds) != 1 {
		t.Errorf("selection = %+v", sel)
	}

	onlyBottom := SelectOptions{Tolerance: 1, Filter: query.Visibility{HideTop: true}}
	sel = Select(s, Selection{}, geom.NewRect(geom.Pt(-10, -10), geom.Pt(70, 70)), onlyBottom)
	for _, r := range sel.Refs() {
		if r.Kind == annotation.KindTrace || r.Kind == annotation.KindComponent {
			t.Errorf("top layer entity %s selected while hidden", r)
		}
	}
}

func TestSelectAdditiveUnion(t *testing.T) {
	s := fixture(t)
	first := Select(s, Selection{}, geom.NewRect(geom.Pt(-1, -1), geom.Pt(1, 1)), SelectOptions{Tolerance: 1})
	both := Select(s, first, geom.NewRect(geom.Pt(49, -1), geom.Pt(51, 1)), SelectOptions{Tolerance: 1, Additive: true})

	if !both.Contains(ref(annotation.KindVia, "v1")) || !both.Contains(ref(annotation.KindPower, "p1")) {
		t.Errorf("union = %+v", both)
	}
	again := Select(s, both, geom.NewRect(geom.Pt(49, -1), geom.Pt(51, 1)), SelectOptions{Tolerance: 1, Additive: true})
	if again.Len() != both.Len() {
		t.Errorf("re-adding duplicated refs: %d vs %d", again.Len(), both.Len())
	}
}

func TestEraseIsIdempotentAndRespectsLocks(t *testing.T) {
	s := fixture(t)
	locks := Locks{annotation.KindVia: true}

	r1 := Erase(s, geom.Pt(0, 0), 10, locks, nil)
	if len(r1.Removed) != 1 || r1.Removed[0] != ref(annotation.KindTrace, "t1") {
		t.Errorf("removed = %v, want only the trace", r1.Removed)
	}
	if !errors.Is(r1.Err(), ErrLocked) {
		t.Errorf("expected lock violation, got %v", r1.Err())
	}
	if _, ok := r1.Store.Lookup(ref(annotation.KindVia, "v1")); !ok {
		t.Errorf("locked via was erased")
	}

	r2 := Erase(r1.Store, geom.Pt(0, 0), 10, locks, nil)
	if r2.Store != r1.Store || len(r2.Removed) != 0 {
		t.Errorf("second sample changed the store: removed %v", r2.Removed)
	}
}

func TestEraseSkipsComponents(t *testing.T) {
	s := fixture(t)
	r := Erase(s, geom.Pt(60, 60), 20, nil, nil)
	if _, ok := r.Store.Lookup(ref(annotation.KindComponent, "c1")); !ok {
		t.Errorf("component erased")
	}
	if r.Err() != nil {
		t.Errorf("unexpected error: %v", r.Err())
	}
}

func TestEraseStroke(t *testing.T) {
	s := fixture(t)
	r := EraseStroke(s, []geom.Point{geom.Pt(50, 0), geom.Pt(0, 50), geom.Pt(0, 50)}, 4, nil, nil)
	if len(r.Removed) != 2 {
		t.Errorf("removed = %v, want power and ground", r.Removed)
	}
	if r.Store.Count(annotation.KindPower) != 0 || r.Store.Count(annotation.KindGround) != 0 {
		t.Errorf("power/ground remain after stroke")
	}
}

func TestDeleteSelectionSkipsLockedKinds(t *testing.T) {
	s := fixture(t)
	var sel Selection
	sel.Add(ref(annotation.KindVia, "v1"))
	sel.Add(ref(annotation.KindPower, "p1"))
	sel.Add(ref(annotation.KindComponent, "c1"))

	next, kept, err := DeleteSelection(s, sel, Locks{annotation.KindComponent: true})

	var lv *LockViolationError
	if !errors.As(err, &lv) {
		t.Fatalf("expected LockViolationError, got %v", err)
	}
	if len(lv.Kinds) != 1 || lv.Kinds[0] != annotation.KindComponent {
		t.Errorf("skipped kinds = %v", lv.Kinds)
	}
	if _, ok := next.Lookup(ref(annotation.KindVia, "v1")); ok {
		t.Errorf("unlocked via not deleted")
	}
	if _, ok := next.Lookup(ref(annotation.KindPower, "p1")); ok {
		t.Errorf("unlocked power node not deleted")
	}
	if kept.Len() != 1 || !kept.Contains(ref(annotation.KindComponent, "c1")) {
		t.Errorf("kept selection = %+v", kept)
	}
}

func TestMoveAndResizeSelection(t *testing.T) {
	s := fixture(t)
	var sel Selection
	sel.Add(ref(annotation.KindVia, "v2"))
	sel.Add(ref(annotation.KindGround, "g1"))
	sel.Add(ref(annotation.KindVia, "missing"))

	next, err := MoveSelection(s, sel, geom.Pt(1, 2), Locks{annotation.KindGround: true})
	if !errors.Is(err, ErrLocked) {
		t.Errorf("expected ErrLocked, got %v", err)
	}
	e, _ := next.Lookup(ref(annotation.KindVia, "v2"))
	if v := e.(annotation.Via); v.Center.Pos() != geom.Pt(101, 102) || v.Center.ID != 2 {
		t.Errorf("moved via = %+v", v)
	}
	e, _ = next.Lookup(ref(annotation.KindGround, "g1"))
	if g := e.(annotation.GroundNode); g.Point.Pos() != geom.Pt(0, 50) {
		t.Errorf("locked ground moved to %+v", g.Point)
	}

	resized, err := ResizeSelection(next, sel, 9, nil)
	if err != nil {
		t.Fatalf("ResizeSelection failed: %v", err)
	}
	e, _ = resized.Lookup(ref(annotation.KindVia, "v2"))
	if e.(annotation.Via).Size != 9 {
		t.Errorf("via size = %v, want 9", e.(annotation.Via).Size)
	}
	if _, err := ResizeSelection(next, sel, 0, nil); !errors.Is(err, annotation.ErrInvalidGeometry) {
		t.Errorf("expected ErrInvalidGeometry, got %v", err)
	}

	recolored, err := RecolorSelection(resized, sel, "#00ff00", nil)
	if err != nil {
		t.Fatalf("RecolorSelection failed: %v", err)
	}
	e, _ = recolored.Lookup(ref(annotation.KindGround, "g1"))
	if e.(annotation.GroundNode).Color != "#00ff00" {
		t.Errorf("ground not recolored")
	}
}

func TestTraceBuilderFinish(t *testing.T) {
	p := func(x float64) annotation.Point { return annotation.NewPoint(geom.Pt(x, 0)) }

	tests := []struct {
		name   string
		points []annotation.Point
		ok     bool
		want   int
	}{
		{"empty discards", nil, false, 0},
		{"single point becomes dot", []annotation.Point{p(5)}, true, 2},
		{"repeated click is one point", []annotation.Point{p(5), p(5)}, true, 2},
		{"polyline commits", []annotation.Point{p(0), p(5), p(10)}, true, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewTraceBuilder(annotation.LayerBottom, 2, "#ccc")
			for _, pt := range tt.points {
				b.Append(pt)
			}
			tr, ok := b.Finish("t")
			if ok != tt.ok {
				t.Fatalf("Finish ok = %v, want %v", ok, tt.ok)
			}
			if b.Active() {
				t.Errorf("builder still active after Finish")
			}
			if !ok {
				return
			}
			if len(tr.Points) != tt.want {
				t.Errorf("points = %d, want %d", len(tr.Points), tt.want)
			}
			if _, err := annotation.New().Add(tr); err != nil {
				t.Errorf("finished trace rejected by store: %v", err)
			}
		})
	}
}

func TestTraceBuilderPop(t *testing.T) {
	b := NewTraceBuilder(annotation.LayerTop, 1, "")
	b.Append(annotation.NewPoint(geom.Pt(1, 1)))
	b.Append(annotation.NewPoint(geom.Pt(2, 2)))
	if !b.Pop() || b.Len() != 1 {
		t.Errorf("Pop left %d points", b.Len())
	}
	b.Cancel()
	if b.Pop() {
		t.Errorf("Pop on empty builder returned true")
	}
}

func TestDragGesture(t *testing.T) {
	vp := geom.NewViewport(0)
	vp.Scale = 2

	var g DragGesture
	if _, ok := g.Release(f32.Pt(1, 1), vp); ok {
		t.Fatalf("Release without Press returned a drag")
	}

	g.Press(f32.Pt(20, 20), key.ModShift)
	g.Move(f32.Pt(10, 40))
	res, ok := g.Release(f32.Pt(0, 40), vp)
	if !ok {
		t.Fatalf("Release returned no drag")
	}
	want := geom.NewRect(geom.Pt(0, 10), geom.Pt(10, 20))
	if res.Rect != want {
		t.Errorf("rect = %+v, want %+v", res.Rect, want)
	}
	if !res.Additive {
		t.Errorf("shift press not additive")
	}
	if g.Active() {
		t.Errorf("gesture active after release")
	}

	g.Press(f32.Pt(0, 0), 0)
	res, _ = g.Release(f32.Pt(1, 1), vp)
	if res.Additive {
		t.Errorf("plain press additive")
	}
}
