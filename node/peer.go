// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/timpalnet/timpal-node/p2pauth"
	"github.com/timpalnet/timpal-node/transaction"
)

// peerUpgrader upgrades an inbound HTTP connection to a websocket carrying
// p2pauth.Envelope frames. Origin checking is left open: the envelope's own
// signature is what admits or rejects a peer, not the handshake.
var peerUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handlePeerSocket is the websocket transport for peer-to-peer traffic: a
// thin JSON-over-websocket framing around p2pauth.Envelope, matching
// p2pauth's transport-agnostic design (it validates decoded envelopes, never
// a socket). Every inbound frame is authenticated before its payload is
// acted on; an envelope that fails authentication never reaches admit.
func (n *Node) handlePeerSocket(w http.ResponseWriter, r *http.Request) {
	peerID := r.URL.Query().Get("peer_id")
	if peerID == "" {
		peerID = r.RemoteAddr
	}

	conn, err := peerUpgrader.Upgrade(w, r, nil)
	if err != nil {
		n.log.Warnf("node: peer %s websocket upgrade failed: %v", peerID, err)
		return
	}
	defer conn.Close()
	atomic.AddInt64(&n.peerCount, 1)
	defer atomic.AddInt64(&n.peerCount, -1)

	for {
		var env p2pauth.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			return
		}
		n.handlePeerEnvelope(conn, peerID, &env)
	}
}

func (n *Node) handlePeerEnvelope(conn *websocket.Conn, peerID string, env *p2pauth.Envelope) {
	if err := n.Auth.Validate(env, peerID, nowUnix()); err != nil {
		conn.WriteJSON(map[string]string{"type": "reject", "error": sanitize(err)})
		return
	}

	switch env.Type {
	case "transaction":
		var tx transaction.Transaction
		if err := json.Unmarshal(env.Payload, &tx); err != nil {
			conn.WriteJSON(map[string]string{"type": "reject", "error": "malformed transaction payload"})
			return
		}
		if err := n.admit(&tx); err != nil {
			conn.WriteJSON(map[string]string{"type": "reject", "error": sanitize(err)})
			return
		}
		conn.WriteJSON(map[string]string{"type": "accept", "tx_hash": tx.Hash()})
	default:
		conn.WriteJSON(map[string]string{"type": "reject", "error": "unknown envelope type"})
	}
}
