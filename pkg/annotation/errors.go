package annotation

import (
	"errors"
	"fmt"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/nodeid"
)

var (
	ErrNotFound        = errors.New("annotation: entity not found")
	ErrDuplicateID     = errors.New("annotation: duplicate entity id")
	ErrInvalidGeometry = errors.New("annotation: trace needs at least two points")
	ErrInvalidLayer    = errors.New("annotation: invalid layer")
	ErrNoLayer         = errors.New("annotation: entity has no layer")
	ErrLayerImmutable  = errors.New("annotation: pad layer changes require Relayer")
	ErrMissingNodeID   = errors.New("annotation: connection point has no node id")
	ErrPinRange        = errors.New("annotation: pin out of range")
	ErrConflict        = errors.New("annotation: node id conflict")
)

// ConflictError reports a rejected power or ground placement on a Node ID
// that is already claimed.
type ConflictError struct {
	NodeID     nodeid.ID
	Attempted  Kind
	Existing   Kind
	ExistingID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("annotation: node %d already has a %s node (%s); cannot add %s",
		e.NodeID, e.Existing, e.ExistingID, e.Attempted)
}

// Is makes errors.Is(err, ErrConflict) match.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
