package gatewayrelay

import (
	"context"
	"sync"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-ws-relay/wswire"
	"github.com/google/uuid"
)

// mailboxSize bounds how many outbound frames a Poller may have queued
// for one session before deliver starts dropping them as undeliverable
// (the session is presumed gone; the canister's own age-eviction reclaims
// the message).
const mailboxSize = 32

// Session is the per-connection actor: one goroutine pair (read/write)
// per client socket. It never reaches into Server or Poller state beyond
// the attach/detach/deliver calls those types expose.
type Session struct {
	id     uint64
	logID  string // uuid, for correlating this session's log lines across processes
	log    logger.Logger
	socket Socket
	server *Server

	outbox chan wswire.GatewayFrame
	done   chan struct{}
	once   sync.Once

	opened     bool
	clientID   wswire.ClientId
	canisterID string
	poller     *Poller
}

// NewSession wraps socket. id should come from Server.NextSessionID.
func NewSession(id uint64, socket Socket, server *Server, log logger.Logger) *Session {
	return &Session{
		id:     id,
		logID:  uuid.NewString(),
		log:    log,
		socket: socket,
		server: server,
		outbox: make(chan wswire.GatewayFrame, mailboxSize),
		done:   make(chan struct{}),
	}
}

// deliver hands frame to this session's write loop. Called from a
// Poller's goroutine; never blocks past the session closing.
func (s *Session) deliver(frame wswire.GatewayFrame) {
	select {
	case s.outbox <- frame:
	case <-s.done:
	default:
		s.log.Infof("session %d/%s: outbox full, dropping frame for key %s", s.id, s.logID, frame.Key)
	}
}

// Run drives the session until the socket errors or ctx is cancelled; a
// rejected handshake or message does not end it. It returns once both the
// read and write loops have stopped.
func (s *Session) Run(ctx context.Context) {
	defer s.close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.readLoop(ctx)
	}()
	s.writeLoop(ctx)
	// Once the write side has stopped, closing the socket unblocks
	// readLoop's ReadMessage so it can return too.
	s.socket.Close()
	wg.Wait()
}

func (s *Session) readLoop(ctx context.Context) {
	defer s.close()
	for {
		mt, data, err := s.socket.ReadMessage()
		if err != nil {
			return
		}
		if mt != binaryMessage {
			continue
		}
		s.handleFrame(ctx, data)
	}
}

func (s *Session) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case frame := <-s.outbox:
			buf, err := wswire.Marshal(frame)
			if err != nil {
				s.log.Errorf("session %d/%s: encoding frame: %v", s.id, s.logID, err)
				continue
			}
			if err := s.socket.WriteMessage(binaryMessage, buf); err != nil {
				return
			}
		}
	}
}

// handleFrame processes one client frame. Per spec.md §4.3/§6, rejection
// at any stage (malformed CBOR, bad signature, a sequence mismatch) is
// logged and the session is left open exactly as it was — never closed —
// matching the original main.rs's binary() handler, which never tears
// down the socket on a bad signature or a false/Err outcome.
func (s *Session) handleFrame(ctx context.Context, data []byte) {
	if !s.opened {
		s.handleHandshake(ctx, data)
		return
	}

	// data is a wswire.ClientMessage {val, sig} envelope; Plane.Message
	// decodes it itself, so it's forwarded as-is.
	ok, err := s.poller.agent.Message(ctx, data)
	if err != nil {
		s.log.Infof("session %d/%s: message: %v", s.id, s.logID, err)
		return
	}
	if !ok {
		s.log.Infof("session %d/%s: message rejected", s.id, s.logID)
	}
}

func (s *Session) handleHandshake(ctx context.Context, data []byte) {
	var frame wswire.FirstFrame
	if err := wswire.Unmarshal(data, &frame); err != nil {
		s.log.Infof("session %d/%s: malformed handshake: %v", s.id, s.logID, err)
		return
	}
	var first wswire.FirstMessage
	if err := wswire.Unmarshal(frame.Content, &first); err != nil {
		s.log.Infof("session %d/%s: malformed handshake content: %v", s.id, s.logID, err)
		return
	}

	poller, agent, err := s.server.attach(first.CanisterId, first.ClientId, s)
	if err != nil {
		s.log.Infof("session %d/%s: attach: %v", s.id, s.logID, err)
		return
	}

	ok, err := agent.Open(ctx, frame.Content, frame.Sig)
	if err != nil {
		s.server.detach(first.CanisterId, first.ClientId)
		s.log.Infof("session %d/%s: open: %v", s.id, s.logID, err)
		return
	}
	if !ok {
		s.server.detach(first.CanisterId, first.ClientId)
		s.log.Infof("session %d/%s: open rejected", s.id, s.logID)
		return
	}

	s.opened = true
	s.clientID = first.ClientId
	s.canisterID = first.CanisterId
	s.poller = poller
	s.log.Infof("session %d/%s: opened client %d on canister %s", s.id, s.logID, first.ClientId, first.CanisterId)
}

func (s *Session) close() {
	s.once.Do(func() {
		close(s.done)
		s.socket.Close()
		if s.opened {
			s.server.detach(s.canisterID, s.clientID)
			if err := s.poller.agent.Close(context.Background(), s.clientID); err != nil {
				s.log.Infof("session %d/%s: notifying close: %v", s.id, s.logID, err)
			}
		}
	})
}
