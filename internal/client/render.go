package client

import "github.com/elderford/realmcore/internal/kernel"

// RenderEntity is one entity's pose for a single render frame, whether
// it's the locally-controlled player (predicted + smoothed) or a remote
// entity (interpolated from the snapshot store).
type RenderEntity struct {
	NID       uint32
	ModelID   string
	Position  kernel.Vec3
	Yaw       float64
	Pitch     float64
	Grounded  bool
	Health    float64
	MaxHealth float64
	IsLocal   bool
}

// AssembleFrame builds the render snapshot: the local predictor's smoothed
// pose for ownNID, plus every remote entity the snapshot store currently
// tracks, interpolated at renderTime.
func AssembleFrame(ownNID uint32, predictor *Predictor, dt float64, remotes *RemoteStore, renderTime float64) []RenderEntity {
	out := make([]RenderEntity, 0, len(remotes.current)+1)

	localPos := predictor.RenderPosition(dt)
	state := predictor.State()
	out = append(out, RenderEntity{
		NID:      ownNID,
		ModelID:  "player",
		Position: localPos,
		Grounded: state.Grounded,
		IsLocal:  true,
	})

	for _, nid := range remotes.Visible() {
		if nid == ownNID {
			continue
		}
		snap, ok := remotes.Interpolate(nid, renderTime)
		if !ok {
			continue
		}
		out = append(out, RenderEntity{
			NID:       nid,
			ModelID:   snap.ModelID,
			Position:  snap.Position,
			Yaw:       snap.Yaw,
			Pitch:     snap.Pitch,
			Grounded:  snap.Grounded,
			Health:    snap.Health,
			MaxHealth: snap.MaxHealth,
		})
	}

	return out
}
