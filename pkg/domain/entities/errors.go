package entities

import (
	"fmt"
	"strings"
)

// CycleError reports a cyclic BOM structure. A cycle indicates corrupt master
// data, so the whole run aborts rather than truncating the traversal.
type CycleError struct {
	Path []ItemID
}

func (e *CycleError) Error() string {
	ids := make([]string, len(e.Path))
	for i, id := range e.Path {
		ids[i] = string(id)
	}
	return fmt.Sprintf("BOM cycle detected: %s", strings.Join(ids, " -> "))
}

// IncompleteMasterDataError reports an item that cannot be planned or costed
// because required master data is missing
type IncompleteMasterDataError struct {
	ItemID  ItemID
	Missing string
}

func (e *IncompleteMasterDataError) Error() string {
	return fmt.Sprintf("incomplete master data for item %s: missing %s", e.ItemID, e.Missing)
}

// ConcurrentModificationError reports that the catalog snapshot was
// invalidated by a master-data edit while the run was in flight
type ConcurrentModificationError struct {
	Resource string
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("catalog modified during run: %s changed, restart the run", e.Resource)
}

// InvalidScopeError reports a run request rejected before any processing
type InvalidScopeError struct {
	Reason string
}

func (e *InvalidScopeError) Error() string {
	return fmt.Sprintf("invalid run scope: %s", e.Reason)
}
