package gatewayrelay

import (
	"context"
	"fmt"
	"sync"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-ws-relay/wswire"
)

// Server owns the canisterID -> Poller table (connected_canisters) and
// the session id counter. It is the only thing that starts or stops a
// Poller; Session reaches it only through attach/detach, never touching
// pollerEntry fields directly.
type Server struct {
	log      logger.Logger
	newAgent AgentFactory

	mu            sync.Mutex
	nextSessionID uint64
	pollers       map[string]*pollerEntry
}

type pollerEntry struct {
	poller *Poller
	cancel context.CancelFunc
}

// NewServer builds a Server that creates canister Agents with newAgent.
func NewServer(log logger.Logger, newAgent AgentFactory) *Server {
	return &Server{
		log:      log,
		newAgent: newAgent,
		pollers:  make(map[string]*pollerEntry),
	}
}

// NextSessionID returns a fresh, monotone session identifier.
func (srv *Server) NextSessionID() uint64 {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	srv.nextSessionID++
	return srv.nextSessionID
}

// attach registers sess as interested in clientID's messages on
// canisterID, starting that canister's Poller if no other session is
// currently using it, and returns the Agent the caller should use to
// forward the handshake.
//
// A poller's lifetime is scoped to the canister, not to whichever
// session happened to start it: its context is rooted in
// context.Background(), not in any one session's request context, and is
// cancelled only by detach's ref-counted "last session left" logic below.
// Deriving it from the first session's context instead would cancel
// every other live client's delivery on that canister the moment the
// first-connecting client disconnects.
func (srv *Server) attach(canisterID string, clientID wswire.ClientId, sess *Session) (*Poller, Agent, error) {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	entry, ok := srv.pollers[canisterID]
	if !ok {
		agent, err := srv.newAgent(canisterID)
		if err != nil {
			return nil, nil, fmt.Errorf("gatewayrelay: starting canister %s: %w", canisterID, err)
		}
		pollerCtx, cancel := context.WithCancel(context.Background())
		poller := newPoller(canisterID, agent, srv.log)
		entry = &pollerEntry{poller: poller, cancel: cancel}
		srv.pollers[canisterID] = entry
		go poller.run(pollerCtx)
		srv.log.Infof("gatewayrelay: started poller for canister %s", canisterID)
	}

	entry.poller.attach(clientID, sess)
	return entry.poller, entry.poller.agent, nil
}

// detach removes clientID from canisterID's poller and, if that was the
// last interested session, cancels and drops the poller (spec.md open
// question §9.3: idle pollers don't run forever).
func (srv *Server) detach(canisterID string, clientID wswire.ClientId) {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	entry, ok := srv.pollers[canisterID]
	if !ok {
		return
	}
	if empty := entry.poller.detach(clientID); empty {
		entry.cancel()
		delete(srv.pollers, canisterID)
		srv.log.Infof("gatewayrelay: stopped poller for canister %s, no sessions left", canisterID)
	}
}
