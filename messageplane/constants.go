package messageplane

import "time"

// MsgTimeout bounds how long an enqueued outbound message may survive
// without being delivered; Send's age-based eviction is the system's
// sole backpressure mechanism (spec.md §5).
const MsgTimeout = 5 * time.Minute

// MaxBatch is the largest number of messages a single Poll call returns.
const MaxBatch = 50

// PollInterval is the gateway poller's sleep between polls (used by
// package gatewayrelay; defined here so both packages agree on the
// system constant without importing each other).
const PollInterval = 200 * time.Millisecond
