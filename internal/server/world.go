// Package server implements the authoritative tick loop,
// wiring the kernel, netcode, replication and combat packages together the
// way game.go:MatchLoop wires physicsEngine/inputProcessor/
// dispatcher together, generalized from "host hands you a batch of
// messages" to "drain a channel of inbound commands every tick".
package server

import (
	"math"

	"github.com/elderford/realmcore/internal/ability"
	"github.com/elderford/realmcore/internal/combat"
	"github.com/elderford/realmcore/internal/idgen"
	"github.com/elderford/realmcore/internal/kernel"
	"github.com/elderford/realmcore/internal/netcode"
	"github.com/elderford/realmcore/internal/replication"
	"github.com/elderford/realmcore/internal/world"
	"go.uber.org/zap"
)

// defaultViewHalfExtent sizes a new user's AOI view box.
var defaultViewHalfExtent = kernel.Vec3{X: 60, Y: 30, Z: 60}

// World is one map instance's entire authoritative state: the tick loop
// exclusively owns player/projectile/dummy state during its step — nothing
// outside World.Step mutates these maps.
type World struct {
	Tick    int64
	SimTime float64

	platforms    *kernel.PlatformIndex
	platformDefs []world.Platform
	spawnPoint   kernel.Vec3

	players     map[world.NID]*world.Player
	projectiles map[uint32]*world.Projectile
	dummies     map[uint32]*world.TrainingDummy
	abilities   map[uint16]*world.Ability

	channels map[world.NID]*replication.UserChannel
	queues   map[world.NID]*InputQueue

	eids *idgen.Recycler

	abilityTiers    *ability.Tiers
	abilityRegistry *ability.Registry
	drafts          map[world.NID]*ability.Draft

	log *zap.SugaredLogger
}

// NewWorld constructs an empty map instance.
func NewWorld(platformDefs []world.Platform, spawnPoint kernel.Vec3, abilities map[uint16]*world.Ability, log *zap.SugaredLogger) *World {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if abilities == nil {
		abilities = make(map[uint16]*world.Ability)
	}
	return &World{
		platforms:    kernel.NewPlatformIndex(platformDefs),
		platformDefs: platformDefs,
		spawnPoint:   spawnPoint,
		players:      make(map[world.NID]*world.Player),
		projectiles:  make(map[uint32]*world.Projectile),
		dummies:      make(map[uint32]*world.TrainingDummy),
		abilities:    abilities,
		channels:     make(map[world.NID]*replication.UserChannel),
		queues:       make(map[world.NID]*InputQueue),
		eids:         idgen.NewRecycler(1),
		log:          log,
	}
}

// AddPlayer creates a new authoritative player record and its replication
// channel, returning the player so the caller (the connection layer) can
// send the owner-only IdentityMessage.
func (w *World) AddPlayer(nid world.NID, accountID string, maxHealth float64) *world.Player {
	p := world.NewPlayer(accountID, nid, w.spawnPoint, maxHealth)
	w.players[nid] = p
	w.channels[nid] = replication.NewUserChannel(replication.NID(nid), replication.ViewBox{
		Center:     p.Position,
		HalfWidth:  defaultViewHalfExtent.X,
		HalfHeight: defaultViewHalfExtent.Y,
		HalfDepth:  defaultViewHalfExtent.Z,
	})
	w.queues[nid] = NewInputQueue()
	return p
}

// RemovePlayer drops a player and every projectile it owns synchronously,
// rather than leaving orphaned projectiles to expire on their own TTL.
func (w *World) RemovePlayer(nid world.NID) {
	delete(w.players, nid)
	delete(w.channels, nid)
	delete(w.queues, nid)
	for eid, proj := range w.projectiles {
		if proj.Owner == nid {
			delete(w.projectiles, eid)
		}
	}
}

// Player returns the authoritative record for a connected nid.
func (w *World) Player(nid world.NID) (*world.Player, bool) {
	p, ok := w.players[nid]
	return p, ok
}

// RegisterAbility adds a newly created ability definition to the world's
// authoritative ability table, making it immediately fireable once bound
// to a hotbar slot.
func (w *World) RegisterAbility(a *world.Ability) {
	w.abilities[a.ID] = a
}

// EnableAbilityCreator wires the ability creator session into the world,
// validating drafts against tiers. Until called,
// ApplyAbilityCreatorCommand is a no-op — a map instance with no tuning
// data configured simply has no creator.
func (w *World) EnableAbilityCreator(tiers *ability.Tiers) {
	w.abilityTiers = tiers
	w.abilityRegistry = ability.NewRegistry()
	w.drafts = make(map[world.NID]*ability.Draft)
}

// ApplyAbilityCreatorCommand applies one creator "apply"/"submit" command
// for nid, opening a fresh draft on DefaultTierName if the
// account has none active yet. On a successful submit the new ability is
// registered into the world and returned alongside the canonical draft
// snapshot; handled is false only when the creator was never enabled via
// EnableAbilityCreator.
func (w *World) ApplyAbilityCreatorCommand(nid world.NID, cmd netcode.AbilityCreatorCommand) (state netcode.AbilityCreatorStateMessage, created *world.Ability, handled bool) {
	if w.abilityTiers == nil {
		return netcode.AbilityCreatorStateMessage{}, nil, false
	}

	draft, ok := w.drafts[nid]
	if !ok {
		d, err := ability.NewDraft(ability.DefaultTierName, w.abilityTiers)
		if err != nil {
			w.log.Warnw("ability creator: opening draft", "nid", nid, "err", err)
			return netcode.AbilityCreatorStateMessage{}, nil, true
		}
		draft = d
		w.drafts[nid] = draft
	}

	state = draft.Apply(cmd)
	if !cmd.Submit {
		return state, nil, true
	}

	a, err := draft.Submit(w.abilityRegistry)
	if err != nil {
		state.Errors = append(state.Errors, err.Error())
		return state, nil, true
	}
	w.RegisterAbility(a)
	delete(w.drafts, nid)
	return state, a, true
}

// ApplyLoadoutCommand mutates a connected player's hotbar/mouse-slot
// bindings. Returns false if nid isn't a connected player.
func (w *World) ApplyLoadoutCommand(nid world.NID, cmd netcode.LoadoutCommand) (netcode.AbilityStateMessage, bool) {
	p, ok := w.players[nid]
	if !ok {
		return netcode.AbilityStateMessage{}, false
	}
	return ability.ApplyLoadoutCommand(p, cmd), true
}

// AddDummy registers a training dummy.
func (w *World) AddDummy(pos kernel.Vec3, yaw float64, maxHealth float64) *world.TrainingDummy {
	d := world.NewTrainingDummy(w.eids.Acquire(), pos, yaw, maxHealth)
	w.dummies[d.EID] = d
	return d
}

// Enqueue pushes an inbound command for nid. Called from the connection's
// read pump, never from the tick goroutine.
func (w *World) Enqueue(nid world.NID, cmd netcode.InputCommand) {
	if q, ok := w.queues[nid]; ok {
		q.Push(cmd)
	}
}

// TickOutput is everything a call to Step produced that the transport
// layer needs to deliver.
type TickOutput struct {
	Acks        map[world.NID]netcode.InputAckMessage
	Diffs       map[world.NID]replication.Frame
	AbilityUses []netcode.AbilityUseMessage
}

// Step advances the world by one fixed tick: drain input, move players,
// resolve abilities, integrate projectiles, then compute replication
// diffs.
func (w *World) Step(dt float64) TickOutput {
	out := TickOutput{
		Acks:  make(map[world.NID]netcode.InputAckMessage),
		Diffs: make(map[world.NID]replication.Frame),
	}

	// 1-2-3: drain one command per player, step movement/platform-carry,
	// resolve grounding; evaluate any ability use triggered by that
	// command (melee resolves instantly, projectiles spawn).
	for nid, player := range w.players {
		cmd, ok := w.queues[nid].PopOldestNonStale()
		if !ok {
			continue
		}

		in := kernel.MovementInput{
			Forward: cmd.Forward,
			Strafe:  cmd.Strafe,
			Jump:    cmd.Jump,
			Sprint:  cmd.Sprint,
			Yaw:     cmd.Yaw,
		}
		result := kernel.Step(w.platforms, player.KinematicState(), in, w.SimTime, dt)
		player.ApplyKinematicState(result.State)
		player.Yaw = kernel.SanitizeYaw(cmd.Yaw)
		player.Pitch = cmd.Pitch
		player.LastProcessedSequence = cmd.Sequence

		if cmd.UsePrimaryPressed {
			if use, ok := w.fireAbility(player); ok {
				out.AbilityUses = append(out.AbilityUses, use)
			}
		}

		out.Acks[nid] = netcode.InputAckMessage{
			Sequence:            cmd.Sequence,
			ServerTick:          w.Tick,
			X:                   player.Position.X,
			Y:                   player.Position.Y,
			Z:                   player.Position.Z,
			VX:                  player.Velocity.X,
			VY:                  player.Velocity.Y,
			VZ:                  player.Velocity.Z,
			Grounded:            player.Grounded,
			GroundedPlatformPID: player.GroundedPlatformPID,
			MovementMode:        int(player.MovementMode),
		}
	}

	// 4. Integrate projectiles (the platform timeline itself is a pure
	// function of SimTime, stepped implicitly below).
	w.stepProjectiles(dt)

	// 6. Replication diffs, one per connected user.
	current := w.snapshotEntities()
	for nid, ch := range w.channels {
		if player, ok := w.players[nid]; ok {
			ch.View.MoveTo(player.Position)
		}
		out.Diffs[nid] = ch.Compute(current)
	}

	w.Tick++
	w.SimTime += dt
	return out
}

// fireAbility resolves the player's currently-bound primary ability,
// spawning a projectile or resolving a melee hit in place. Returns
// ok=false if no ability is bound — the use is canceled silently rather
// than producing an error the client would have to handle.
func (w *World) fireAbility(player *world.Player) (netcode.AbilityUseMessage, bool) {
	if player.PrimaryMouseSlot < 0 || player.PrimaryMouseSlot >= world.HotbarSize {
		return netcode.AbilityUseMessage{}, false
	}
	abilityID := player.HotbarAbilityIDs[player.PrimaryMouseSlot]
	ability, ok := w.abilities[abilityID]
	if !ok {
		return netcode.AbilityUseMessage{}, false
	}

	switch {
	case ability.Category == world.CategoryProjectile && ability.Projectile != nil:
		w.spawnProjectile(player, ability.Projectile)
	case ability.Category == world.CategoryMelee && ability.Melee != nil:
		w.resolveMelee(player, ability.Melee)
	default:
		return netcode.AbilityUseMessage{}, false
	}

	return netcode.AbilityUseMessage{
		CasterNID: uint32(player.NID),
		AbilityID: abilityID,
		Origin:    [3]float64{player.Position.X, player.Position.Y, player.Position.Z},
		Yaw:       player.Yaw,
		Pitch:     player.Pitch,
	}, true
}

func (w *World) spawnProjectile(player *world.Player, profile *world.ProjectileProfile) {
	dir := kernel.ViewDirection(player.Yaw, player.Pitch)
	origin := kernel.Add(player.Position, kernel.Add(profile.SpawnOffset, kernel.Vec3{}))

	p := &world.Projectile{
		EID:            w.eids.Acquire(),
		Owner:          player.NID,
		Kind:           profile.Kind,
		Position:       origin,
		Velocity:       kernel.Scale(profile.Speed, dir),
		Radius:         profile.Radius,
		Damage:         profile.Damage,
		TTLSeconds:     profile.LifetimeSec,
		RemainingRange: profile.Speed * profile.LifetimeSec,
		MaxSpeed:       profile.Speed,
	}
	w.projectiles[p.EID] = p
}

func (w *World) resolveMelee(player *world.Player, profile *world.MeleeProfile) {
	attacker := combat.Attacker{Position: player.Position, Yaw: player.Yaw, Pitch: player.Pitch}
	params := combat.MeleeParams{Damage: profile.Damage, Radius: profile.Radius, Range: profile.Range, ArcDegrees: profile.ArcDegrees}

	candidates := w.damageableCandidates(player.NID)
	hitNID, ok := combat.Resolve(attacker, params, candidates, nil)
	if !ok {
		return
	}
	w.applyDamage(hitNID, profile.Damage)
}

// stepProjectiles integrates every live projectile once and applies
// damage/removal decisions.
func (w *World) stepProjectiles(dt float64) {
	geo := w.geometry()
	for eid, proj := range w.projectiles {
		candidates := w.damageableCandidates(proj.Owner)
		state := combat.ProjectileState{
			Position:               proj.Position,
			Velocity:               proj.Velocity,
			Radius:                 proj.Radius,
			Damage:                 proj.Damage,
			TTLSeconds:             proj.TTLSeconds,
			RemainingRange:         proj.RemainingRange,
			Gravity:                proj.Gravity,
			Drag:                   proj.Drag,
			MaxSpeed:               proj.MaxSpeed,
			MinSpeed:               proj.MinSpeed,
			RemainingPierces:       proj.RemainingPierces,
			DespawnOnDamageableHit: proj.DespawnOnDamageableHit,
			DespawnOnWorldHit:      proj.DespawnOnWorldHit,
			Depleted:               proj.Depleted,
			OwnerNID:               uint32(proj.Owner),
		}

		outcome := combat.StepProjectile(state, dt, geo, candidates)

		proj.Position = outcome.NextState.Position
		proj.Velocity = outcome.NextState.Velocity
		proj.TTLSeconds = outcome.NextState.TTLSeconds
		proj.RemainingRange = outcome.NextState.RemainingRange
		proj.RemainingPierces = outcome.NextState.RemainingPierces
		proj.Depleted = outcome.NextState.Depleted

		if outcome.Damaged {
			w.applyDamage(outcome.HitNID, proj.Damage)
		}
		if outcome.Remove {
			proj.Removed = true
			delete(w.projectiles, eid)
		}
	}
}

// applyDamage routes damage to whichever entity kind owns hitNID. Players
// respawn at the world's spawn point; dummies revive in place.
func (w *World) applyDamage(hitNID uint32, damage int) {
	if player, ok := w.players[world.NID(hitNID)]; ok {
		player.ApplyDamage(damage, w.spawnPoint)
		return
	}
	if dummy, ok := w.dummies[hitNID]; ok {
		dummy.ApplyDamage(damage)
	}
}

// damageableCandidates lists every player (other than excludeOwner) and
// every dummy as sweep/melee targets.
func (w *World) damageableCandidates(excludeOwner world.NID) []combat.DamageableCandidate {
	candidates := make([]combat.DamageableCandidate, 0, len(w.players)+len(w.dummies))
	for nid, p := range w.players {
		if nid == excludeOwner {
			continue
		}
		candidates = append(candidates, combat.DamageableCandidate{
			NID:      uint32(nid),
			Position: p.Position,
			Radius:   kernel.CapsuleRadius,
		})
	}
	for eid, d := range w.dummies {
		candidates = append(candidates, combat.DamageableCandidate{
			NID:      eid,
			Position: d.Position,
			Radius:   kernel.CapsuleRadius,
		})
	}
	return candidates
}

// geometry builds the static-world sweep target from the platform
// definitions sampled at the world's current simulation time.
func (w *World) geometry() combat.Geometry {
	boxes := make([]combat.PlatformBox, 0, len(w.platformDefs))
	for _, p := range w.platformDefs {
		pose := p.Sample(w.SimTime)
		half := p.HalfExtent
		boxes = append(boxes, combat.PlatformBox{
			PID: p.PID,
			Min: kernel.Vec3{X: pose.Position.X - half.X, Y: pose.Position.Y - half.Y, Z: pose.Position.Z - half.Z},
			Max: kernel.Vec3{X: pose.Position.X + half.X, Y: pose.Position.Y + half.Y, Z: pose.Position.Z + half.Z},
		})
	}
	return combat.Geometry{GroundY: kernel.GroundPlaneY, Platforms: boxes}
}

// snapshotEntities builds this tick's full replicated entity set,
// consumed by every user channel's diff.
func (w *World) snapshotEntities() map[replication.NID]replication.Snapshot {
	out := make(map[replication.NID]replication.Snapshot, len(w.players)+len(w.projectiles)+len(w.dummies))
	for nid, p := range w.players {
		out[replication.NID(nid)] = replication.Snapshot{
			NID:       replication.NID(nid),
			ModelID:   "player",
			Position:  p.Position,
			Yaw:       p.Yaw,
			Pitch:     p.Pitch,
			Grounded:  p.Grounded,
			Health:    p.Health,
			MaxHealth: p.MaxHealth,
		}
	}
	for eid, proj := range w.projectiles {
		out[replication.NID(eid)] = replication.Snapshot{
			NID:      replication.NID(eid),
			ModelID:  "projectile:" + string(proj.Kind),
			Position: proj.Position,
			Fields:   map[string]any{"ownerNid": uint32(proj.Owner)},
		}
	}
	for eid, d := range w.dummies {
		out[replication.NID(eid)] = replication.Snapshot{
			NID:       replication.NID(eid),
			ModelID:   "dummy",
			Position:  d.Position,
			Yaw:       d.Yaw,
			Health:    d.Health,
			MaxHealth: d.MaxHealth,
		}
	}
	return out
}

// clampDT keeps a caller-supplied wall-clock delta within the kernel's
// sane simulation bounds before it ever reaches Step (defense in depth;
// kernel.Step also clamps internally).
func clampDT(dt float64) float64 {
	return math.Max(kernel.MinDeltaTime, math.Min(kernel.MaxDeltaTime, dt))
}
