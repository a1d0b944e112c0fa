package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/annotation"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/geom"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/nodeid"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/project"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/query"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/session"
)

// writeFixture saves a small board: two vias joined by a trace on a +5V
// rail, a grounded via and a component wired to both nets.
func writeFixture(t *testing.T, dir string) string {
	t.Helper()
	s, err := session.New(nil, nil)
	if err != nil {
		t.Fatalf("session.New failed: %v", err)
	}

	bus, err := s.AddBus("VCC", "+5V", "#ff0000")
	if err != nil {
		t.Fatalf("AddBus failed: %v", err)
	}
	s.Bus = bus.ID

	v1, _ := s.PlaceVia(geom.Pt(10, 10))
	s.PlaceVia(geom.Pt(40, 10))
	gv, _ := s.PlaceVia(geom.Pt(100, 100))

	s.TracePoint(geom.Pt(11, 10))
	s.TracePoint(geom.Pt(39, 10))
	if _, ok, err := s.FinishTrace(); !ok || err != nil {
		t.Fatalf("FinishTrace = %v, %v", ok, err)
	}
	if _, err := s.PlacePower(geom.Pt(10, 10)); err != nil {
		t.Fatalf("PlacePower failed: %v", err)
	}
	if _, err := s.PlaceGround(geom.Pt(100, 100), ""); err != nil {
		t.Fatalf("PlaceGround failed: %v", err)
	}
	c, err := s.PlaceComponent("U1", "SOT-23", geom.Pt(200, 200), 10, 6, 3)
	if err != nil {
		t.Fatalf("PlaceComponent failed: %v", err)
	}
	s.ConnectPin(c.ID, 1, v1.Center.ID)
	s.ConnectPin(c.ID, 2, gv.Center.ID)

	path := filepath.Join(dir, "board.json")
	if err := s.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	return path
}

const brokenDoc = `{
  "version": 1,
  "drawing": {
    "drawingStrokes": [
      {"id": "t1", "type": "trace", "layer": "top", "points": [{"x": 1, "y": 1}]},
      {"id": "v1", "type": "via", "points": [{"id": 2, "x": -1, "y": 5}]}
    ]
  },
  "pointIdCounter": 3
}`

func resetFlags() {
	verbose = false
	outputJSON = false
	netlistFormat = "text"
	kicadOutput = ""
	checkKiCad = false
	snapKinds = []string{"via", "pad", "power", "ground"}
	snapRadius = query.DefaultSnapRadius
	snapLayer = ""
	selectRect = ""
	selectScale = 1
	hideTop = false
	hideBottom = false
	hiddenKinds = nil
	eraseAt = nil
	eraseBrush = 20
	eraseOutput = ""
	eraseLocks = nil
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommandsE2E(t *testing.T) {
	dir := t.TempDir()
	board := writeFixture(t, dir)
	broken := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(broken, []byte(brokenDoc), 0644); err != nil {
		t.Fatalf("write broken fixture: %v", err)
	}
	kicad := filepath.Join(dir, "board.net")

	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "info",
			args:        []string{"info", board},
			wantContain: []string{"Vias:       3", "Traces:     1", "Components: 1", "VCC", "Next ID:    4"},
		},
		{
			name:        "info json",
			args:        []string{"info", "--json", board},
			wantContain: []string{`"via": 3`, `"next_node_id": 4`, `"voltage": "+5V"`},
		},
		{
			name:        "resolve power",
			args:        []string{"resolve", board, "1"},
			wantContain: []string{"1: Power(+5V)"},
		},
		{
			name:        "resolve ground",
			args:        []string{"resolve", board, "3"},
			wantContain: []string{"3: Ground(GND)"},
		},
		{
			name:        "resolve signal",
			args:        []string{"resolve", board, "2"},
			wantContain: []string{"2: Signal"},
		},
		{
			name:    "resolve bad id",
			args:    []string{"resolve", board, "abc"},
			wantErr: true,
		},
		{
			name:        "netlist text",
			args:        []string{"netlist", board},
			wantContain: []string{"2 net(s)", "VCC", "U1.1", "GND", "U1.2"},
		},
		{
			name:        "netlist json",
			args:        []string{"netlist", "-o", "json", board},
			wantContain: []string{`"net_count": 2`, `"name": "VCC"`},
		},
		{
			name:    "netlist bad format",
			args:    []string{"netlist", "-o", "xml", board},
			wantErr: true,
		},
		{
			name: "netlist kicad",
			args: []string{"netlist", "--output-kicad", kicad, board},
		},
		{
			name:        "snap hit",
			args:        []string{"snap", board, "12", "10"},
			wantContain: []string{"snapped to via:", "node 1 at (10, 10)"},
		},
		{
			name:        "snap miss",
			args:        []string{"snap", board, "500", "500"},
			wantContain: []string{"no snap: (500, 500)"},
		},
		{
			name:    "snap bad kind",
			args:    []string{"snap", "--kinds", "trace", board, "1", "1"},
			wantErr: true,
		},
		{
			name:        "select rectangle",
			args:        []string{"select", board, "--rect", "0,0,50,50"},
			wantContain: []string{"4 selected", "trace:"},
		},
		{
			name:        "select click",
			args:        []string{"select", board, "--rect", "100,100,101,101", "--hide", "ground"},
			wantContain: []string{"1 selected", "via:"},
		},
		{
			name:    "select bad rect",
			args:    []string{"select", board, "--rect", "1,2,3"},
			wantErr: true,
		},
		{
			name:        "validate ok",
			args:        []string{"validate", board},
			wantContain: []string{"OK (7 entities)"},
		},
		{
			name:    "validate broken",
			args:    []string{"validate", broken},
			wantErr: true,
		},
		{
			name:    "missing project",
			args:    []string{"info", filepath.Join(dir, "nope.json")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := execute(t, tt.args...)

			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error but got none\nOutput: %s", output)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v\nOutput: %s", err, output)
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(output, want) {
					t.Errorf("Output missing expected string: %q\nGot:\n%s", want, output)
				}
			}
		})
	}

	data, err := os.ReadFile(kicad)
	if err != nil {
		t.Fatalf("KiCad netlist not written: %v", err)
	}
	for _, want := range []string{"(export (version D)", "(comp (ref U1) (footprint SOT-23))", "(node (ref U1) (pin 1))"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("KiCad netlist missing %q:\n%s", want, data)
		}
	}
}

func TestEraseE2E(t *testing.T) {
	dir := t.TempDir()
	board := writeFixture(t, dir)

	tests := []struct {
		name        string
		args        []string
		wantContain []string
		wantVias    int
		wantTraces  int
	}{
		{
			name:        "erase via and trace end",
			args:        []string{"--at", "40,10", "--brush", "4"},
			wantContain: []string{"removed 2 entities"},
			wantVias:    2,
			wantTraces:  0,
		},
		{
			name:        "locked vias survive",
			args:        []string{"--at", "40,10", "--brush", "4", "--lock", "via"},
			wantContain: []string{"removed 1 entities", "kept locked: [via]"},
			wantVias:    3,
			wantTraces:  0,
		},
		{
			name:        "empty area",
			args:        []string{"--at", "300,300", "--at", "310,300"},
			wantContain: []string{"removed 0 entities"},
			wantVias:    3,
			wantTraces:  1,
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(dir, "erased-"+string(rune('a'+i))+".json")
			args := append([]string{"erase", board, "-o", out}, tt.args...)

			output, err := execute(t, args...)
			if err != nil {
				t.Fatalf("Unexpected error: %v\nOutput: %s", err, output)
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(output, want) {
					t.Errorf("Output missing expected string: %q\nGot:\n%s", want, output)
				}
			}

			store, _, err := project.LoadFile(out, nodeid.NewAllocator(nodeid.DefaultSeed), nil)
			if err != nil {
				t.Fatalf("LoadFile failed: %v", err)
			}
			if n := store.Count(annotation.KindVia); n != tt.wantVias {
				t.Errorf("vias = %d, want %d", n, tt.wantVias)
			}
			if n := store.Count(annotation.KindTrace); n != tt.wantTraces {
				t.Errorf("traces = %d, want %d", n, tt.wantTraces)
			}
		})
	}
}
