package messageplane

import (
	"crypto/ed25519"
	"fmt"
	"sort"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-ws-relay/certmap"
	"github.com/forestrie/go-ws-relay/hostsign"
	"github.com/forestrie/go-ws-relay/wswire"
)

// Clock returns the current time as nanoseconds since epoch, the same
// unit WebsocketMessage.Timestamp and the delete queue use. Injectable so
// tests can drive the age-eviction scenario (spec.md S4) deterministically.
type Clock func() uint64

// Plane is the Canister Message Plane. One value owns every table spec.md
// §4.2 names; callers must serialize access (see package doc).
type Plane struct {
	log       logger.Logger
	clock     Clock
	certifier hostsign.Certifier
	app       Application

	clients       map[ClientId]*clientRecord
	nextClientID  ClientId
	nextNonce     uint64
	gatewayQueues map[string]*gatewayQueue
	deleteQueue   []deleteQueueEntry
	cms           *certmap.Tree
}

// New builds an empty Plane. app is wired in after construction with
// SetApplication so the application can in turn be handed the Plane as
// its Sender (breaking the otherwise-circular construction order).
func New(log logger.Logger, clock Clock, certifier hostsign.Certifier) *Plane {
	return &Plane{
		log:           log,
		clock:         clock,
		certifier:     certifier,
		clients:       make(map[ClientId]*clientRecord),
		nextClientID:  initialClientId,
		nextNonce:     initialNonce,
		gatewayQueues: make(map[string]*gatewayQueue),
		cms:           certmap.New(certmap.DefaultLabel),
	}
}

// SetApplication wires the application hook. Must be called before Open
// or Message are invoked.
func (p *Plane) SetApplication(app Application) { p.app = app }

// Register allocates and returns a new client id for publicKeyBytes,
// associated with caller (the host-provided identity of whoever called
// Register — an external collaborator in this Go port, supplied
// explicitly rather than read from ambient state).
func (p *Plane) Register(caller string, publicKeyBytes []byte) (ClientId, error) {
	if len(publicKeyBytes) != ed25519.PublicKeySize {
		return 0, ErrBadKey
	}
	cid := p.nextClientID
	p.nextClientID++

	rec := &clientRecord{caller: caller}
	copy(rec.publicKey[:], publicKeyBytes)
	p.clients[cid] = rec

	p.log.Debugf("register: client=%d caller=%s", cid, caller)
	return cid, nil
}

// GetClientKey returns the Ed25519 public key registered for clientID.
func (p *Plane) GetClientKey(clientID ClientId) ([]byte, error) {
	rec, ok := p.clients[clientID]
	if !ok {
		return nil, ErrUnknownClient
	}
	out := make([]byte, len(rec.publicKey))
	copy(out, rec.publicKey[:])
	return out, nil
}

// Open verifies the handshake signature and, on success, binds caller
// as the client's delivery gateway and invokes the application's OnOpen
// hook. caller is the gateway's identity.
//
// Re-open policy (spec.md open question §9.1, resolved): a client already
// bound to a different gateway cannot be re-opened by another gateway —
// that would let a second gateway steal delivery of a live client by
// replaying its first message. Re-opening from the *same* gateway is
// accepted and re-runs OnOpen, since that is the ordinary "gateway
// reconnected" case.
func (p *Plane) Open(caller string, firstMessageBytes, sig []byte) (bool, error) {
	var first wswire.FirstMessage
	if err := wswire.Unmarshal(firstMessageBytes, &first); err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}

	rec, ok := p.clients[first.ClientId]
	if !ok {
		return false, ErrUnknownClient
	}

	if !ed25519.Verify(ed25519.PublicKey(rec.publicKey[:]), firstMessageBytes, sig) {
		return false, nil
	}

	if rec.gatewaySet && rec.gateway != caller {
		p.log.Infof("open: rejecting gateway %s, client %d already bound to %s", caller, first.ClientId, rec.gateway)
		return false, nil
	}

	rec.gateway = caller
	rec.gatewaySet = true

	if p.app != nil {
		p.app.OnOpen(first.ClientId)
	}
	return true, nil
}

// Message verifies the envelope's signature and sequence number and, on
// acceptance, advances the client's inbound sequence and invokes the
// application's OnMessage hook.
func (p *Plane) Message(envelopeBytes []byte) (bool, error) {
	var envelope wswire.ClientMessage
	if err := wswire.Unmarshal(envelopeBytes, &envelope); err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	var msg wswire.WebsocketMessage
	if err := wswire.Unmarshal(envelope.Val, &msg); err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}

	rec, ok := p.clients[msg.ClientId]
	if !ok {
		return false, ErrUnknownClient
	}

	if !ed25519.Verify(ed25519.PublicKey(rec.publicKey[:]), envelope.Val, envelope.Sig) {
		return false, nil
	}

	if msg.SequenceNum != rec.inboundSeq {
		return false, nil
	}
	rec.inboundSeq = msg.SequenceNum + 1

	if p.app != nil {
		p.app.OnMessage(msg)
	}
	return true, nil
}

// Send is called by the application to deliver payload to clientID. It
// silently drops the message if the client has no bound gateway (never
// opened, or since closed).
func (p *Plane) Send(clientID ClientId, payload []byte) {
	rec, ok := p.clients[clientID]
	if !ok || !rec.gatewaySet {
		return
	}
	gw := rec.gateway

	t := p.clock()
	nonce := p.nextNonce
	p.nextNonce++
	key := messageKey(gw, nonce)

	p.deleteQueue = append(p.deleteQueue, deleteQueueEntry{key: key, gateway: gw, enqueueNS: t})
	p.evictAged(t)

	seq := rec.outboundSeq
	rec.outboundSeq++

	wsMsg := wswire.WebsocketMessage{
		ClientId:    clientID,
		SequenceNum: seq,
		Timestamp:   t,
		Message:     payload,
	}
	val, err := wswire.Marshal(wsMsg)
	if err != nil {
		p.log.Errorf("send: encoding message for client %d: %v", clientID, err)
		return
	}

	p.cms.Insert(key, val)

	gq := p.gatewayQueue(gw)
	gq.pushBack(wswire.EncodedMessage{ClientId: clientID, Key: key, Val: val})
}

// evictAged runs spec.md §4.2 step 4: inspect the head of the delete
// queue, evict if older than MsgTimeout, and repeat the check exactly one
// additional time. This bounds eviction work per Send at O(1); a bursty
// queue that then goes idle can leave stale entries until the next Send
// (spec.md open question §9.2 — documented, not "fixed").
func (p *Plane) evictAged(now uint64) {
	timeoutNS := uint64(MsgTimeout.Nanoseconds())
	for i := 0; i < 2; i++ {
		if len(p.deleteQueue) == 0 {
			return
		}
		head := p.deleteQueue[0]
		if now-head.enqueueNS <= timeoutNS {
			return
		}
		if gq, ok := p.gatewayQueues[head.gateway]; ok {
			gq.popFront()
		}
		p.cms.Delete(head.key)
		p.deleteQueue = p.deleteQueue[1:]
	}
}

func (p *Plane) gatewayQueue(gw string) *gatewayQueue {
	gq, ok := p.gatewayQueues[gw]
	if !ok {
		gq = &gatewayQueue{}
		p.gatewayQueues[gw] = gq
	}
	return gq
}

// Poll returns the next batch of messages queued for gateway caller at or
// after nonce, together with the certificate and range witness covering
// exactly that batch.
func (p *Plane) Poll(caller string, nonce uint64) (wswire.CertMessages, error) {
	gq := p.gatewayQueue(caller)

	threshold := messageKey(caller, nonce)
	start := sort.Search(len(gq.messages), func(i int) bool { return gq.messages[i].Key >= threshold })
	end := start + MaxBatch
	if end > len(gq.messages) {
		end = len(gq.messages)
	}
	if end == start {
		return wswire.CertMessages{Messages: []wswire.EncodedMessage{}}, nil
	}

	batch := make([]wswire.EncodedMessage, end-start)
	copy(batch, gq.messages[start:end])

	tree, err := p.cms.WitnessRange(batch[0].Key, batch[len(batch)-1].Key)
	if err != nil {
		return wswire.CertMessages{}, fmt.Errorf("messageplane: building range witness: %w", err)
	}
	cert, err := p.certifier.Certify(p.cms.Root())
	if err != nil {
		return wswire.CertMessages{}, fmt.Errorf("messageplane: certifying root: %w", err)
	}

	return wswire.CertMessages{Messages: batch, Cert: cert, Tree: tree}, nil
}

// Close removes clientID's identity, gateway binding and sequence
// counters. Idempotent: closing an already-closed or unknown client is a
// no-op. Queued outbound messages for the client are left in place; they
// expire by age, same as any other message.
func (p *Plane) Close(clientID ClientId) {
	delete(p.clients, clientID)
}

// Wipe resets all process-wide state — client tables, gateway queues, the
// delete queue and the CMS — and both monotone counters to their initial
// values. Debug-only, mirrors spec.md's ws_wipe.
func (p *Plane) Wipe() {
	p.clients = make(map[ClientId]*clientRecord)
	p.nextClientID = initialClientId
	p.nextNonce = initialNonce
	p.gatewayQueues = make(map[string]*gatewayQueue)
	p.deleteQueue = nil
	p.cms = certmap.New(certmap.DefaultLabel)
}

// Stats summarises plane occupancy for the demo's debug endpoint.
type Stats struct {
	Clients          int
	Gateways         int
	QueuedMessages   int
	DeleteQueueDepth int
}

// Stats reports current table sizes.
func (p *Plane) Stats() Stats {
	queued := 0
	for _, gq := range p.gatewayQueues {
		queued += len(gq.messages)
	}
	return Stats{
		Clients:          len(p.clients),
		Gateways:         len(p.gatewayQueues),
		QueuedMessages:   queued,
		DeleteQueueDepth: len(p.deleteQueue),
	}
}
