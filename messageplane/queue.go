package messageplane

import "github.com/forestrie/go-ws-relay/wswire"

// deleteQueueEntry records when a message was enqueued so Send's
// age-based eviction (spec.md §4.2 step 4) can find the oldest surviving
// message in O(1).
type deleteQueueEntry struct {
	key       string
	gateway   string
	enqueueNS uint64
}

// gatewayQueue is one gateway's FIFO of encoded outbound messages. Keys
// only ever grow (monotone in nonce), so the queue is always sorted by
// key; the binary search in Plane.Poll relies on that.
type gatewayQueue struct {
	messages []wswire.EncodedMessage
}

func (q *gatewayQueue) pushBack(m wswire.EncodedMessage) {
	q.messages = append(q.messages, m)
}

// popFront drops the oldest message. It is a no-op on an empty queue,
// which happens when the delete queue holds an entry whose message never
// reached the gateway queue (Send records the delete-queue entry before
// encoding, and returns without queueing if encoding fails).
func (q *gatewayQueue) popFront() {
	if len(q.messages) == 0 {
		return
	}
	q.messages = q.messages[1:]
}
