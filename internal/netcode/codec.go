package netcode

import "encoding/json"

// Encode marshals a typed payload into an Envelope ready to send over the
// transport, matching the "json.Marshal(message); dispatcher.
// BroadcastMessage(opcode, data, ...)" shape (game.go) one-for-one.
func Encode(op OpCode, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Op: op, Payload: raw}, nil
}

// Decode unmarshals an envelope's payload into out.
func Decode(env Envelope, out any) error {
	return json.Unmarshal(env.Payload, out)
}

// MarshalFrame serializes a full envelope (opcode + payload) into the
// bytes sent over one websocket message.
func MarshalFrame(env Envelope) ([]byte, error) {
	return json.Marshal(env)
}

// UnmarshalFrame parses one websocket message into an Envelope.
func UnmarshalFrame(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}
