package connectivity

import (
	"sort"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/annotation"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/nodeid"
)

// CheckPlacement reports whether a power or ground node may be placed on
// id. It returns a *annotation.ConflictError when the id is already claimed.
func CheckPlacement(s *annotation.Store, id nodeid.ID, kind annotation.Kind) error {
	return s.CheckClaim(id, kind)
}

// FindConflicts scans raw power and ground registries, such as those read
// from a document, for ids claimed more than once. The first claim on an id
// is treated as the existing one; every later claim yields a conflict.
func FindConflicts(powers []annotation.PowerNode, grounds []annotation.GroundNode) []*annotation.ConflictError {
	type claim struct {
		kind annotation.Kind
		id   string
	}
	first := make(map[nodeid.ID]claim)
	var out []*annotation.ConflictError

	check := func(node nodeid.ID, kind annotation.Kind, entity string) {
		if c, ok := first[node]; ok {
			out = append(out, &annotation.ConflictError{
				NodeID:     node,
				Attempted:  kind,
				Existing:   c.kind,
				ExistingID: c.id,
			})
			return
		}
		first[node] = claim{kind: kind, id: entity}
	}
	for _, p := range powers {
		check(p.Point.ID, annotation.KindPower, p.ID)
	}
	for _, g := range grounds {
		check(g.Point.ID, annotation.KindGround, g.ID)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NodeID < out[j].NodeID
	})
	return out
}

// Conflicts scans a store. A store built only through Add and Update holds
// none; the scan exists for stores assembled from external data.
func Conflicts(s *annotation.Store) []*annotation.ConflictError {
	return FindConflicts(s.PowerNodes(), s.GroundNodes())
}
