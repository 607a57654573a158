package netcode

// Envelope is the wire wrapper around every message, generalizing the
// teacher's GameMessage{Type string, Data interface{}} (game.go) into a
// typed opcode + raw payload pair so the codec can dispatch before
// unmarshaling the payload.
type Envelope struct {
	Op      OpCode `json:"op"`
	Payload []byte `json:"payload"`
}

// InputCommand is sent by the client once per fixed step.
type InputCommand struct {
	Sequence        uint16  `json:"sequence"`
	Forward         float64 `json:"forward"`
	Strafe          float64 `json:"strafe"`
	Jump            bool    `json:"jump"`
	Sprint          bool    `json:"sprint"`
	UsePrimaryPressed bool  `json:"usePrimaryPressed"`
	UsePrimaryHeld  bool    `json:"usePrimaryHeld"`
	Yaw             float64 `json:"yaw"`
	YawDelta        float64 `json:"yawDelta"`
	Pitch           float64 `json:"pitch"`
}

// InputAckMessage confirms the highest input sequence processed for one
// player, carrying the post-step authoritative state.
// It is addressed to the owner only, generalized from
// InputACK{PlayerID,Action,InputSequence,Approved,X,Y} (game.go) to the
// full 3D kinematic tuple.
type InputAckMessage struct {
	Sequence            uint16  `json:"sequence"`
	ServerTick          int64   `json:"serverTick"`
	X                   float64 `json:"x"`
	Y                   float64 `json:"y"`
	Z                   float64 `json:"z"`
	VX                  float64 `json:"vx"`
	VY                  float64 `json:"vy"`
	VZ                  float64 `json:"vz"`
	Grounded            bool    `json:"grounded"`
	GroundedPlatformPID *uint16 `json:"groundedPlatformPid,omitempty"`
	MovementMode        int     `json:"movementMode"`
}

// IdentityMessage is sent owner-only at connect, naming the player's own
// nid and account id.
type IdentityMessage struct {
	AccountID string `json:"accountId"`
	NID       uint32 `json:"nid"`
}

// EntityDiff is the per-tick AOI replication payload:
// creates carry the full replicated slice, updates carry only changed
// fields, deletes carry nid only.
type EntityDiff struct {
	Create []ReplicatedEntity `json:"create,omitempty"`
	Update []EntityFieldUpdate `json:"update,omitempty"`
	Delete []uint32            `json:"delete,omitempty"`
}

// ReplicatedEntity is the unified polymorphic entity shape:
// all replicated entities (players, projectiles, dummies, platforms) carry
// this shape; the client disambiguates by ModelID.
type ReplicatedEntity struct {
	NID       uint32         `json:"nid"`
	ModelID   string         `json:"modelId"`
	Position  [3]float64     `json:"position"`
	Rotation  [2]float64     `json:"rotation"` // yaw, pitch
	Grounded  bool           `json:"grounded"`
	Health    float64        `json:"health"`
	MaxHealth float64        `json:"maxHealth"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// EntityFieldUpdate is one changed field on an already-created entity.
type EntityFieldUpdate struct {
	NID   uint32 `json:"nid"`
	Prop  string `json:"prop"`
	Value any    `json:"value"`
}

// MapTransferMessage tells the owner to reconnect to a new map instance.
type MapTransferMessage struct {
	WSUrl      string `json:"wsUrl"`
	JoinTicket string `json:"joinTicket"`
	MapConfig  any    `json:"mapConfig"`
}

// ServerPopulationMessage reports periodic server-wide population info to
// the owner.
type ServerPopulationMessage struct {
	PlayerCount int `json:"playerCount"`
}

// AbilityUseMessage is broadcast to all users whose view contains the
// caster.
type AbilityUseMessage struct {
	CasterNID uint32     `json:"casterNid"`
	AbilityID uint16     `json:"abilityId"`
	Origin    [3]float64 `json:"origin"`
	Yaw       float64    `json:"yaw"`
	Pitch     float64    `json:"pitch"`
}

// LoadoutCommand mutates the player's hotbar/mouse-slot bindings.
type LoadoutCommand struct {
	PrimaryMouseSlot   *int   `json:"primaryMouseSlot,omitempty"`
	SecondaryMouseSlot *int   `json:"secondaryMouseSlot,omitempty"`
	HotbarSlot         *int   `json:"hotbarSlot,omitempty"`
	AbilityID          uint16 `json:"abilityId,omitempty"`
}

// AbilityStateMessage is owner-only loadout state.
type AbilityStateMessage struct {
	PrimaryMouseSlot   int       `json:"primaryMouseSlot"`
	SecondaryMouseSlot int       `json:"secondaryMouseSlot"`
	HotbarAbilityIDs   [10]uint16 `json:"hotbarAbilityIds"`
}

// AbilityOwnershipMessage is a CSV of unlocked ability ids, broadcast to
// the owner on unlock.
type AbilityOwnershipMessage struct {
	UnlockedAbilityIDsCSV string `json:"unlockedAbilityIdsCsv"`
}

// AbilityDefinitionMessage carries one full ability definition to its
// owner, sent on unlock.
type AbilityDefinitionMessage struct {
	ID            uint16  `json:"id"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Power         int     `json:"power"`
	Velocity      int     `json:"velocity"`
	Efficiency    int     `json:"efficiency"`
	Control       int     `json:"control"`
	AttributeMask uint32  `json:"attributeMask"`
}

// AbilityCreatorCommand mutates one field of the in-progress draft.
type AbilityCreatorCommand struct {
	Field string `json:"field"`
	Value any    `json:"value"`
	Submit bool  `json:"submit"`
}

// AbilityCreatorStateMessage is the canonical draft snapshot.
type AbilityCreatorStateMessage struct {
	Name            string `json:"name"`
	Category        string `json:"category"`
	Power           int    `json:"power"`
	Velocity        int    `json:"velocity"`
	Efficiency      int    `json:"efficiency"`
	Control         int    `json:"control"`
	AttributeMask   uint32 `json:"attributeMask"`
	PointsRemaining int    `json:"pointsRemaining"`
	Valid           bool   `json:"valid"`
	Errors          []string `json:"errors,omitempty"`
}

// HandshakePayload is the transport handshake.
type HandshakePayload struct {
	AuthVersion int    `json:"authVersion"`
	AuthKey     string `json:"authKey,omitempty"`
	JoinTicket  string `json:"joinTicket,omitempty"`
}
