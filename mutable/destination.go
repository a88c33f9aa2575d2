package mutable

// Destination is a single-slot handoff of mutations between one producer
// and one consumer goroutine. The producer never blocks: mutations that
// were not consumed yet are merged with the new ones. The consumer polls
// the slot at the points where it's safe to mutate its state.
type Destination chan Mutations

// NewDestination returns an empty destination.
func NewDestination() Destination {
	return make(chan Mutations, 1)
}

// Put merges mutations into the slot. Put must be called from a single
// goroutine.
func (d Destination) Put(mutations ...Mutation) {
	var pending Mutations
	select {
	case pending = <-d:
	default:
	}
	for _, m := range mutations {
		pending = pending.Put(m)
	}
	d <- pending
}

// Poll applies pending mutations of the context without blocking. If
// slot is empty, nil is returned. A destination serves a single consumer,
// mutations of other contexts are discarded.
func (d Destination) Poll(id Context) error {
	select {
	case ms := <-d:
		return ms.ApplyTo(id)
	default:
		return nil
	}
}
