// Package connectivity derives electrical meaning from Node IDs: the display
// type of vias and pads, power/ground claim conflicts, and the netlist
// formed by traces and component pins.
package connectivity

import (
	"github.com/OpenTraceLab/OpenTracePCB/pkg/annotation"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/nodeid"
)

// Signal is the type of a node with no power or ground claim.
const Signal = "Signal"

// PowerLabel formats the type of a node on a power rail.
func PowerLabel(voltage string) string {
	return "Power(" + voltage + ")"
}

// GroundLabel formats the type of a grounded node.
func GroundLabel(label string) string {
	return "Ground(" + label + ")"
}

// ResolveType returns the display type of nodeID. A power node takes
// precedence over a ground node. When the power node's bus no longer exists
// its own Type string is used, or "Power" when that is empty too.
func ResolveType(id nodeid.ID, buses []annotation.PowerBus, powers []annotation.PowerNode, grounds []annotation.GroundNode) string {
	if !id.Valid() {
		return Signal
	}
	for _, p := range powers {
		if p.Point.ID != id {
			continue
		}
		for _, b := range buses {
			if b.ID == p.BusID {
				return PowerLabel(b.Voltage)
			}
		}
		if p.Type != "" {
			return p.Type
		}
		return "Power"
	}
	for _, g := range grounds {
		if g.Point.ID == id {
			return GroundLabel(g.DisplayLabel())
		}
	}
	return Signal
}

// Resolver answers ResolveType for one store snapshot using indexed
// registries.
type Resolver struct {
	buses   map[string]annotation.PowerBus
	powers  map[nodeid.ID]annotation.PowerNode
	grounds map[nodeid.ID]annotation.GroundNode
}

// NewResolver indexes the power, ground and bus registries of s. Where a
// registry holds several claims on one id the first wins, matching
// ResolveType.
func NewResolver(s *annotation.Store) *Resolver {
	r := &Resolver{
		buses:   make(map[string]annotation.PowerBus),
		powers:  make(map[nodeid.ID]annotation.PowerNode),
		grounds: make(map[nodeid.ID]annotation.GroundNode),
	}
	for _, b := range s.Buses() {
		if _, ok := r.buses[b.ID]; !ok {
			r.buses[b.ID] = b
		}
	}
	for _, p := range s.PowerNodes() {
		if _, ok := r.powers[p.Point.ID]; !ok {
			r.powers[p.Point.ID] = p
		}
	}
	for _, g := range s.GroundNodes() {
		if _, ok := r.grounds[g.Point.ID]; !ok {
			r.grounds[g.Point.ID] = g
		}
	}
	return r
}

// Type returns the display type of id.
func (r *Resolver) Type(id nodeid.ID) string {
	if !id.Valid() {
		return Signal
	}
	if p, ok := r.powers[id]; ok {
		if b, ok := r.buses[p.BusID]; ok {
			return PowerLabel(b.Voltage)
		}
		if p.Type != "" {
			return p.Type
		}
		return "Power"
	}
	if g, ok := r.grounds[id]; ok {
		return GroundLabel(g.DisplayLabel())
	}
	return Signal
}

// Apply recomputes the display type of every via and pad in s. It must run
// after any change to power nodes, ground nodes or buses.
func Apply(s *annotation.Store) *annotation.Store {
	return s.WithDisplayTypes(NewResolver(s).Type)
}
