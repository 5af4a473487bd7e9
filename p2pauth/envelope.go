// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2pauth

import "encoding/json"

// Envelope is the wire shape every P2P message is carried in: a typed
// payload plus the four mandatory authentication fields. Wire framing
// (the transport the envelope travels over) is outside this package's
// scope; p2pauth only ever operates on a decoded Envelope.
type Envelope struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp float64         `json:"timestamp"`
	Nonce     string          `json:"nonce"`
	PublicKey string          `json:"public_key"`
	Signature string          `json:"signature"`
}

// hasAuthFields reports whether every mandatory authentication field is
// present; an empty Signature, PublicKey, or Nonce, or a zero Timestamp,
// all count as missing per the "missing any of these fails immediately"
// contract.
func (e *Envelope) hasAuthFields() bool {
	return e.Signature != "" && e.PublicKey != "" && e.Nonce != "" && e.Timestamp != 0
}

// canonicalWithoutSignature returns the canonical JSON serialization of
// the envelope with Signature removed: sorted keys, no extraneous
// whitespace, by marshaling a map (encoding/json always sorts map string
// keys) rather than the struct directly.
func (e *Envelope) canonicalWithoutSignature() ([]byte, error) {
	fields := map[string]interface{}{
		"type":       e.Type,
		"timestamp":  e.Timestamp,
		"nonce":      e.Nonce,
		"public_key": e.PublicKey,
	}
	if len(e.Payload) > 0 {
		fields["payload"] = e.Payload
	}
	return json.Marshal(fields)
}
