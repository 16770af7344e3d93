package visits

// Event is a state transition on the local visit list. Every event returns a
// fresh slice; the previous list is never mutated in place, so a partial
// update is never observable.
type Event interface {
	apply(list []Visit) []Visit
}

// Apply runs one event against the list and returns the new list.
func Apply(list []Visit, ev Event) []Visit {
	return ev.apply(list)
}

// OptimisticInsert appends a synthetic visit before the remote create
// resolves.
type OptimisticInsert struct {
	Visit Visit
}

func (e OptimisticInsert) apply(list []Visit) []Visit {
	next := make([]Visit, 0, len(list)+1)
	next = append(next, list...)
	v := e.Visit
	v.IsOptimistic = true
	next = append(next, v)
	return next
}

// CommitReplace promotes the optimistic record to authoritative, swapping the
// temporary id for the server-assigned one.
type CommitReplace struct {
	TempID   string
	ServerID string
}

func (e CommitReplace) apply(list []Visit) []Visit {
	next := make([]Visit, len(list))
	for i, v := range list {
		if v.ID == e.TempID {
			v.ID = e.ServerID
			v.IsOptimistic = false
		}
		next[i] = v
	}
	return next
}

// RollbackRemove drops a record from the list entirely. The booking
// coordinator uses it to discard a failed optimistic insert; the cancellation
// coordinator reuses it to drop a visit canceled on the server.
type RollbackRemove struct {
	ID string
}

func (e RollbackRemove) apply(list []Visit) []Visit {
	next := make([]Visit, 0, len(list))
	for _, v := range list {
		if v.ID == e.ID {
			continue
		}
		next = append(next, v)
	}
	return next
}
