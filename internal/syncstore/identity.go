package syncstore

// Identity tags a visible row as either pending (optimistic, known only by a
// client-generated token that never leaves the process) or confirmed (carrying
// the server-assigned id).
type Identity struct {
	value   string
	pending bool
}

// PendingIdentity tags an optimistic row awaiting server acknowledgment.
func PendingIdentity(token string) Identity {
	return Identity{value: token, pending: true}
}

// ConfirmedIdentity tags a server-acknowledged row.
func ConfirmedIdentity(id string) Identity {
	return Identity{value: id}
}

// Value returns the token or the server id, depending on state.
func (i Identity) Value() string {
	return i.value
}

// IsPending reports whether the row is still optimistic.
func (i Identity) IsPending() bool {
	return i.pending
}

// Entry pairs a row with its identity state.
type Entry[T any] struct {
	Identity Identity
	Row      T
}
