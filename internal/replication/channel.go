package replication

// UserChannel tracks one connected user's view and previously-emitted
// entity snapshots, producing a bounded per-tick Frame. It is the
// generalization of a per-connection broadcast loop
// (game.go:broadcastWorldState ranges over all presences every tick) into
// a per-user filtered diff with bounded size and deterministic ordering.
type UserChannel struct {
	OwnerNID NID
	View     ViewBox

	lastVisible map[NID]Snapshot
}

// NewUserChannel creates a channel for a newly connected user.
func NewUserChannel(owner NID, view ViewBox) *UserChannel {
	return &UserChannel{
		OwnerNID:    owner,
		View:        view,
		lastVisible: make(map[NID]Snapshot),
	}
}

// Compute produces this tick's Frame by comparing 'current' (every entity
// that exists in the world this tick) against the view box and the
// previously-emitted set.
//
//   - G1 (eventual consistency): an entity inside the view every tick
//     converges to the server's slice because every changed field is
//     diffed and emitted.
//   - G2 (ordering): Frame.Create/Update/Delete are three disjoint lists
//     built in that order below and the caller is expected to serialize
//     them in that order; no nid ever appears in more than one list.
//   - G3 (bounded size): diffFields only emits properties that changed
//     since the last tick this user was sent *anything* for that nid.
//   - G4 (owner bias): the owner's own entity is always visible,
//     regardless of the view box.
func (c *UserChannel) Compute(current map[NID]Snapshot) Frame {
	var frame Frame

	visibleNow := make(map[NID]struct{}, len(current))
	for nid, snap := range current {
		if nid != c.OwnerNID && !c.View.Contains(snap.Position) {
			continue
		}
		visibleNow[nid] = struct{}{}

		prev, wasVisible := c.lastVisible[nid]
		if !wasVisible {
			frame.Create = append(frame.Create, snap)
		} else if updates := diffFields(nid, prev, snap); len(updates) > 0 {
			frame.Update = append(frame.Update, updates...)
		}
		c.lastVisible[nid] = snap.clone()
	}

	for nid := range c.lastVisible {
		if _, stillVisible := visibleNow[nid]; !stillVisible {
			frame.Delete = append(frame.Delete, nid)
			delete(c.lastVisible, nid)
		}
	}

	return frame
}

// IsEmpty reports whether a Frame carries no changes, letting callers skip
// sending an empty diff.
func (f Frame) IsEmpty() bool {
	return len(f.Create) == 0 && len(f.Update) == 0 && len(f.Delete) == 0
}
