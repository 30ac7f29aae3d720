package gatewayrelay

import (
	"context"
	"sync"
	"time"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-ws-relay/messageplane"
	"github.com/forestrie/go-ws-relay/wswire"
)

// Poller is the one-per-canister polling loop: it calls Agent.Poll on a
// fixed interval and fans each returned message out to whichever session
// currently holds its ClientId. clientSessions is the one piece of state
// genuinely shared between two actors — the Server's attach/detach calls
// (from whatever goroutine accepted a new socket) and the poller's own
// loop — so it alone is mutex-guarded; everything else about a Poller is
// only ever touched by its own goroutine.
type Poller struct {
	log        logger.Logger
	canisterID string
	agent      Agent
	interval   time.Duration

	mu             sync.Mutex
	clientSessions map[wswire.ClientId]*Session

	nonce uint64
}

func newPoller(canisterID string, agent Agent, log logger.Logger) *Poller {
	return &Poller{
		log:            log,
		canisterID:     canisterID,
		agent:          agent,
		interval:       messageplane.PollInterval,
		clientSessions: make(map[wswire.ClientId]*Session),
	}
}

// attach registers sess as the delivery target for clientID's messages.
func (p *Poller) attach(clientID wswire.ClientId, sess *Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clientSessions[clientID] = sess
}

// detach removes clientID, and reports whether any session is left, so
// the caller can decide whether this canister still needs polling.
func (p *Poller) detach(clientID wswire.ClientId) (empty bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.clientSessions, clientID)
	return len(p.clientSessions) == 0
}

func (p *Poller) sessionFor(clientID wswire.ClientId) (*Session, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	sess, ok := p.clientSessions[clientID]
	return sess, ok
}

// run polls until ctx is cancelled, which the server actor does once the
// last session for this canister disconnects (spec.md open question §9.3).
func (p *Poller) run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

func (p *Poller) pollOnce(ctx context.Context) {
	result, err := p.agent.Poll(ctx, p.nonce)
	if err != nil {
		p.log.Errorf("poller %s: poll: %v", p.canisterID, err)
		return
	}
	if len(result.Messages) == 0 {
		return
	}

	for _, msg := range result.Messages {
		sess, ok := p.sessionFor(msg.ClientId)
		if !ok {
			// Session disconnected between the message being queued and
			// this poll; the canister's own age-eviction will reclaim it.
			continue
		}
		frame := wswire.GatewayFrame{Key: msg.Key, Val: msg.Val, Cert: result.Cert, Tree: result.Tree}
		sess.deliver(frame)
	}

	last := result.Messages[len(result.Messages)-1]
	next, err := messageplane.NextNonce(last.Key)
	if err != nil {
		p.log.Errorf("poller %s: advancing cursor: %v", p.canisterID, err)
		return
	}
	p.nonce = next
}
