package connectivity

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/chewxy/sexp"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/annotation"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/nodeid"
)

// PinNode is one component pin attached to a net.
type PinNode struct {
	Designator string `json:"ref"`
	Pin        int    `json:"pin"`
}

// Net is a set of Node IDs joined by traces, together with the component
// pins wired to any of them.
type Net struct {
	Code  int         `json:"code"`
	Name  string      `json:"name"`
	Type  string      `json:"type"`
	Nodes []nodeid.ID `json:"nodes"`
	Pins  []PinNode   `json:"pins,omitempty"`

	// Short is set when the net joins a power node and a ground node.
	Short bool `json:"short,omitempty"`
}

// Netlist groups Node IDs into nets using a union-find structure. Traces
// join every id on their points; a component pin belongs to the net of the
// id it references.
type Netlist struct {
	parent map[nodeid.ID]nodeid.ID
	rank   map[nodeid.ID]int

	// Nets is filled by Finalize.
	Nets []*Net

	resolver   *Resolver
	components []annotation.Component
}

// NewNetlist creates a netlist in which every id is its own net.
func NewNetlist(ids []nodeid.ID) *Netlist {
	nl := &Netlist{
		parent: make(map[nodeid.ID]nodeid.ID, len(ids)),
		rank:   make(map[nodeid.ID]int, len(ids)),
	}
	for _, id := range ids {
		nl.add(id)
	}
	return nl
}

// BuildNetlist derives the finalized netlist of a store. Pins referencing ids
// that no entity carries are left out; DanglingPins reports them.
func BuildNetlist(s *annotation.Store) *Netlist {
	nl := NewNetlist(s.NodeIDs())
	for _, t := range s.Traces() {
		var first nodeid.ID
		for _, p := range t.Points {
			if !p.ID.Valid() {
				continue
			}
			if !first.Valid() {
				first = p.ID
				continue
			}
			nl.Connect(first, p.ID)
		}
	}
	nl.resolver = NewResolver(s)
	nl.components = s.Components()
	nl.Finalize()
	return nl
}

func (nl *Netlist) add(id nodeid.ID) {
	if _, ok := nl.parent[id]; ok {
		return
	}
	nl.parent[id] = id
	nl.rank[id] = 0
}

// Connect merges the nets of a and b.
func (nl *Netlist) Connect(a, b nodeid.ID) {
	nl.add(a)
	nl.add(b)
	rootA := nl.Find(a)
	rootB := nl.Find(b)
	if rootA == rootB {
		return
	}

	// Union by rank
	switch {
	case nl.rank[rootA] < nl.rank[rootB]:
		nl.parent[rootA] = rootB
	case nl.rank[rootA] > nl.rank[rootB]:
		nl.parent[rootB] = rootA
	default:
		nl.parent[rootB] = rootA
		nl.rank[rootA]++
	}
}

// Find returns the representative id of the net containing id, compressing
// the path on the way.
func (nl *Netlist) Find(id nodeid.ID) nodeid.ID {
	if _, ok := nl.parent[id]; !ok {
		return id
	}
	root := id
	for nl.parent[root] != root {
		root = nl.parent[root]
	}
	for cur := id; cur != root; {
		next := nl.parent[cur]
		nl.parent[cur] = root
		cur = next
	}
	return root
}

// Connected reports whether a and b are on the same net.
func (nl *Netlist) Connected(a, b nodeid.ID) bool {
	return nl.Find(a) == nl.Find(b)
}

// Finalize groups ids into Nets. Nets are ordered by their lowest id and
// numbered from 1. Each net is named after its power bus, then its ground
// label, then "Net-<code>".
func (nl *Netlist) Finalize() {
	groups := make(map[nodeid.ID][]nodeid.ID)
	for id := range nl.parent {
		root := nl.Find(id)
		groups[root] = append(groups[root], id)
	}

	nl.Nets = make([]*Net, 0, len(groups))
	byRoot := make(map[nodeid.ID]*Net, len(groups))
	for root, ids := range groups {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		n := &Net{Nodes: ids}
		nl.Nets = append(nl.Nets, n)
		byRoot[root] = n
	}
	sort.Slice(nl.Nets, func(i, j int) bool {
		return nl.Nets[i].Nodes[0] < nl.Nets[j].Nodes[0]
	})

	for i, n := range nl.Nets {
		n.Code = i + 1
		nl.label(n)
	}

	for _, c := range nl.components {
		for i, v := range c.PinConnections {
			id, ok := nodeid.Parse(v)
			if !ok {
				continue
			}
			if _, known := nl.parent[id]; !known {
				continue
			}
			n := byRoot[nl.Find(id)]
			n.Pins = append(n.Pins, PinNode{Designator: c.Designator, Pin: i + 1})
		}
	}
	for _, n := range nl.Nets {
		sort.Slice(n.Pins, func(i, j int) bool {
			if n.Pins[i].Designator != n.Pins[j].Designator {
				return n.Pins[i].Designator < n.Pins[j].Designator
			}
			return n.Pins[i].Pin < n.Pins[j].Pin
		})
	}
}

func (nl *Netlist) label(n *Net) {
	n.Name = fmt.Sprintf("Net-%d", n.Code)
	n.Type = Signal
	if nl.resolver == nil {
		return
	}

	var power, ground string
	var powerType, groundType string
	for _, id := range n.Nodes {
		if p, ok := nl.resolver.powers[id]; ok && power == "" {
			power = p.Type
			if b, ok := nl.resolver.buses[p.BusID]; ok {
				power = b.Name
			}
			powerType = nl.resolver.Type(id)
		}
		if g, ok := nl.resolver.grounds[id]; ok && ground == "" {
			ground = g.DisplayLabel()
			groundType = nl.resolver.Type(id)
		}
	}
	switch {
	case powerType != "":
		if power != "" {
			n.Name = power
		}
		n.Type = powerType
	case groundType != "":
		n.Name = ground
		n.Type = groundType
	}
	n.Short = powerType != "" && groundType != ""
}

// Net returns the net containing id.
func (nl *Netlist) Net(id nodeid.ID) (*Net, bool) {
	root := nl.Find(id)
	for _, n := range nl.Nets {
		if nl.Find(n.Nodes[0]) == root {
			return n, true
		}
	}
	return nil, false
}

// NetCount returns the number of nets. Only valid after Finalize.
func (nl *Netlist) NetCount() int {
	return len(nl.Nets)
}

// Shorts returns the nets joining power and ground.
func (nl *Netlist) Shorts() []*Net {
	var out []*Net
	for _, n := range nl.Nets {
		if n.Short {
			out = append(out, n)
		}
	}
	return out
}

// ExportJSON exports the netlist as indented JSON.
func (nl *Netlist) ExportJSON() ([]byte, error) {
	if nl.Nets == nil {
		return nil, fmt.Errorf("connectivity: netlist not finalized")
	}

	output := struct {
		Version     string `json:"version"`
		NetCount    int    `json:"net_count"`
		Nets        []*Net `json:"nets"`
		GeneratedBy string `json:"generated_by"`
	}{
		Version:     "1.0",
		NetCount:    nl.NetCount(),
		Nets:        nl.Nets,
		GeneratedBy: "pcbtrace",
	}
	return json.MarshalIndent(output, "", "  ")
}

// ExportKiCad writes the netlist in the KiCad "(export (version D) ...)"
// format. Only nets with at least one component pin are listed.
func (nl *Netlist) ExportKiCad() (string, error) {
	if nl.Nets == nil {
		return "", fmt.Errorf("connectivity: netlist not finalized")
	}

	var b strings.Builder
	b.WriteString("(export (version D)\n")
	b.WriteString("  (design\n")
	b.WriteString("    (source pcbtrace)\n")
	b.WriteString("  )\n")
	b.WriteString("  (components\n")

	comps := append([]annotation.Component(nil), nl.components...)
	sort.SliceStable(comps, func(i, j int) bool {
		return comps[i].Designator < comps[j].Designator
	})
	for _, c := range comps {
		fmt.Fprintf(&b, "    (comp (ref %s) (footprint %s))\n", kicadToken(c.Designator), kicadToken(c.Package))
	}
	b.WriteString("  )\n")

	b.WriteString("  (nets\n")
	for _, n := range nl.Nets {
		if len(n.Pins) == 0 {
			continue
		}
		fmt.Fprintf(&b, "    (net (code %d) (name %s)\n", n.Code, kicadToken(n.Name))
		for _, p := range n.Pins {
			fmt.Fprintf(&b, "      (node (ref %s) (pin %d))\n", kicadToken(p.Designator), p.Pin)
		}
		b.WriteString("    )\n")
	}
	b.WriteString("  )\n")
	b.WriteString(")\n")

	return b.String(), nil
}

// kicadToken makes s usable as a bare symbol.
func kicadToken(s string) string {
	if s == "" {
		return "~"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '(', ')', '"':
			return '_'
		}
		return r
	}, s)
}

// ValidateKiCad checks that text parses as a single S-expression list.
func ValidateKiCad(text string) error {
	exprs, err := sexp.ParseString(text)
	if err != nil {
		return fmt.Errorf("connectivity: kicad netlist: %w", err)
	}
	if len(exprs) != 1 || exprs[0].IsLeaf() {
		return fmt.Errorf("connectivity: kicad netlist: expected one list, got %d expressions", len(exprs))
	}
	return nil
}
