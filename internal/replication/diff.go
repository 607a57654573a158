package replication

// FieldUpdate is one changed field on an entity the user has already seen
// created — updates carry only changed fields, never a full re-send.
type FieldUpdate struct {
	NID   NID
	Prop  string
	Value any
}

// Frame is one user's per-tick replication output: create
// precedes update precedes delete for any given nid, enforced by the
// field order here and by UserChannel.Compute never emitting both a create
// and an update for the same nid in the same frame.
type Frame struct {
	Create []Snapshot
	Update []FieldUpdate
	Delete []NID
}

// diffFields returns the field updates needed to bring 'prev' (last
// emitted) up to date with 'cur', emitting only values that actually
// changed, keeping each diff bounded in size.
func diffFields(nid NID, prev, cur Snapshot) []FieldUpdate {
	var updates []FieldUpdate
	push := func(prop string, value any) {
		updates = append(updates, FieldUpdate{NID: nid, Prop: prop, Value: value})
	}

	if prev.Position != cur.Position {
		push("position", cur.Position)
	}
	if prev.Yaw != cur.Yaw {
		push("yaw", cur.Yaw)
	}
	if prev.Pitch != cur.Pitch {
		push("pitch", cur.Pitch)
	}
	if prev.Grounded != cur.Grounded {
		push("grounded", cur.Grounded)
	}
	if prev.Health != cur.Health {
		push("health", cur.Health)
	}
	if prev.MaxHealth != cur.MaxHealth {
		push("maxHealth", cur.MaxHealth)
	}
	for k, v := range cur.Fields {
		if pv, ok := prev.Fields[k]; !ok || pv != v {
			push(k, v)
		}
	}
	for k := range prev.Fields {
		if _, ok := cur.Fields[k]; !ok {
			push(k, nil)
		}
	}

	return updates
}
