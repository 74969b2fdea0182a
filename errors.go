package richdoc

import "fmt"

// VersionMismatchError reports an operation applied against a document whose
// version no longer matches the operation's base version. This is fatal: the
// local model and any remote peer are provably out of sync.
type VersionMismatchError struct {
	Kind        OperationKind
	BaseVersion int
	DocVersion  int
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("operation %s has base version %d but document is at version %d",
		e.Kind, e.BaseVersion, e.DocVersion)
}

// ValidationError reports an operation whose structural precondition does not
// hold against the current tree (missing nodes, stale attribute values, a
// move target inside the moved range).
type ValidationError struct {
	Kind   OperationKind
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s operation: %s", e.Kind, e.Reason)
}

// MarkerDestroyedError reports access to a marker after its collection
// removed it.
type MarkerDestroyedError struct {
	Name string
}

func (e *MarkerDestroyedError) Error() string {
	return fmt.Sprintf("marker %q has been destroyed", e.Name)
}

// UsageError reports programmer errors such as anchoring a live position in a
// detached fragment or reusing a marker name without override.
type UsageError struct {
	Reason string
}

func (e *UsageError) Error() string {
	return e.Reason
}
