package edit

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/annotation"
)

// ErrLocked matches every *LockViolationError.
var ErrLocked = errors.New("edit: locked")

// Locks holds the per-kind edit locks. A nil Locks locks nothing.
type Locks map[annotation.Kind]bool

// Locked reports whether kind k may not be modified.
func (l Locks) Locked(k annotation.Kind) bool {
	return l[k]
}

// LockViolationError lists the kinds an operation skipped because they were
// locked. The operation was still applied to every unlocked kind.
type LockViolationError struct {
	Op    string
	Kinds []annotation.Kind
}

func (e *LockViolationError) Error() string {
	names := make([]string, len(e.Kinds))
	for i, k := range e.Kinds {
		names[i] = k.String()
	}
	return fmt.Sprintf("edit: %s: skipped locked %s", e.Op, strings.Join(names, ", "))
}

func (e *LockViolationError) Is(target error) bool {
	return target == ErrLocked
}

// skipped collects locked kinds hit by an operation.
type skipped map[annotation.Kind]bool

func (s skipped) kinds() []annotation.Kind {
	out := make([]annotation.Kind, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s skipped) err(op string) error {
	if len(s) == 0 {
		return nil
	}
	return &LockViolationError{Op: op, Kinds: s.kinds()}
}
