// Package replication implements the area-of-interest entity replication
// channel: per-user 3D view boxes, create/update/delete
// diffing, and ordering/bounded-size guarantees. It generalizes
// broadcastWorldState/BroadcastObjectUpdate (game.go) — "iterate owners,
// build a payload, broadcast" — into per-user filtered diffs.
package replication

import "github.com/elderford/realmcore/internal/kernel"

// ViewBox is a user's axis-aligned 3D view volume.
type ViewBox struct {
	Center                           kernel.Vec3
	HalfWidth, HalfHeight, HalfDepth float64
}

// Contains reports whether pos lies inside the view box.
func (v ViewBox) Contains(pos kernel.Vec3) bool {
	return absf(pos.X-v.Center.X) <= v.HalfWidth &&
		absf(pos.Y-v.Center.Y) <= v.HalfHeight &&
		absf(pos.Z-v.Center.Z) <= v.HalfDepth
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// MoveTo recenters the view box on pos, called once per tick per user.
func (v *ViewBox) MoveTo(pos kernel.Vec3) {
	v.Center = pos
}
