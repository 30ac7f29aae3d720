package messageplane_test

import (
	"crypto/ed25519"
	"testing"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-ws-relay/hostsign"
	"github.com/forestrie/go-ws-relay/messageplane"
	"github.com/forestrie/go-ws-relay/wswire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualClock lets tests drive Plane's notion of "now" exactly, needed for
// the age-eviction scenario (spec.md S4).
type manualClock struct{ now uint64 }

func (c *manualClock) Now() uint64 { return c.now }

func newTestPlane(t *testing.T) (*messageplane.Plane, *manualClock) {
	t.Helper()
	logger.New("ERROR")
	log := logger.Sugar.WithServiceName(t.Name())

	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	certifier, err := hostsign.NewReferenceCertifier("test-host", priv)
	require.NoError(t, err)

	clock := &manualClock{now: 1_000_000}
	plane := messageplane.New(log, clock.Now, certifier)
	return plane, clock
}

type recordingApp struct {
	sender messageplane.Sender
	opened []messageplane.ClientId
	echoed []wswire.WebsocketMessage
}

func (a *recordingApp) OnOpen(clientID messageplane.ClientId) {
	a.opened = append(a.opened, clientID)
	a.sender.Send(clientID, []byte("ping"))
}

func (a *recordingApp) OnMessage(msg wswire.WebsocketMessage) {
	a.echoed = append(a.echoed, msg)
}

func registerClient(t *testing.T, plane *messageplane.Plane, caller string) (messageplane.ClientId, ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	cid, err := plane.Register(caller, pub)
	require.NoError(t, err)
	return cid, pub, priv
}

func TestRegisterIdsAreMonotoneFromSixteen(t *testing.T) {
	plane, _ := newTestPlane(t)
	first, _, _ := registerClient(t, plane, "alice")
	second, _, _ := registerClient(t, plane, "bob")
	assert.EqualValues(t, 16, first)
	assert.EqualValues(t, 17, second)
}

func TestHappyEcho(t *testing.T) {
	plane, _ := newTestPlane(t)
	app := &recordingApp{sender: plane}
	plane.SetApplication(app)

	cid, _, priv := registerClient(t, plane, "client-caller")

	first := wswire.FirstMessage{ClientId: cid, CanisterId: "aaaaa-aa"}
	firstBytes, err := wswire.Marshal(first)
	require.NoError(t, err)
	sig := ed25519.Sign(priv, firstBytes)

	ok, err := plane.Open("gw-1", firstBytes, sig)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []messageplane.ClientId{cid}, app.opened)

	result, err := plane.Poll("gw-1", 0)
	require.NoError(t, err)
	require.Len(t, result.Messages, 1)
	assert.EqualValues(t, 0, mustDecodeSeq(t, result.Messages[0].Val))
}

func mustDecodeSeq(t *testing.T, val []byte) uint64 {
	t.Helper()
	var msg wswire.WebsocketMessage
	require.NoError(t, wswire.Unmarshal(val, &msg))
	return msg.SequenceNum
}

func TestSequenceGapRejected(t *testing.T) {
	plane, _ := newTestPlane(t)
	plane.SetApplication(&recordingApp{sender: plane})

	cid, _, priv := registerClient(t, plane, "client-caller")
	openClient(t, plane, cid, priv, "gw-1")

	msg := wswire.WebsocketMessage{ClientId: cid, SequenceNum: 1, Timestamp: 1, Message: []byte("hi")}
	val, err := wswire.Marshal(msg)
	require.NoError(t, err)
	sig := ed25519.Sign(priv, val)
	envelope, err := wswire.Marshal(wswire.ClientMessage{Val: val, Sig: sig})
	require.NoError(t, err)

	ok, err := plane.Message(envelope)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWrongSignatureRejected(t *testing.T) {
	plane, _ := newTestPlane(t)
	cid, _, _ := registerClient(t, plane, "client-caller")
	_, otherPriv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	first := wswire.FirstMessage{ClientId: cid, CanisterId: "aaaaa-aa"}
	firstBytes, err := wswire.Marshal(first)
	require.NoError(t, err)
	badSig := ed25519.Sign(otherPriv, firstBytes)

	ok, err := plane.Open("gw-1", firstBytes, badSig)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAgeEviction(t *testing.T) {
	plane, clock := newTestPlane(t)
	plane.SetApplication(&recordingApp{sender: plane})

	cid, _, priv := registerClient(t, plane, "client-caller")
	openClient(t, plane, cid, priv, "gw-1")

	plane.Send(cid, []byte("m1"))

	clock.now += uint64(messageplane.MsgTimeout.Nanoseconds()) + uint64(10*1_000_000_000)
	plane.Send(cid, []byte("m2"))

	// Open's "ping" and m1 are both older than MsgTimeout when m2 is sent,
	// so both are evicted; a poll from their nonce returns only m2.
	result, err := plane.Poll("gw-1", 16)
	require.NoError(t, err)
	require.Len(t, result.Messages, 1, "ping and m1 should have been evicted by age")
	var survivor wswire.WebsocketMessage
	require.NoError(t, wswire.Unmarshal(result.Messages[0].Val, &survivor))
	assert.Equal(t, []byte("m2"), survivor.Message)
}

func TestBatchCap(t *testing.T) {
	plane, _ := newTestPlane(t)
	cid, _, priv := registerClient(t, plane, "client-caller")
	openClient(t, plane, cid, priv, "gw-1")

	for i := 0; i < 75; i++ {
		plane.Send(cid, []byte{byte(i)})
	}

	first, err := plane.Poll("gw-1", 16)
	require.NoError(t, err)
	assert.Len(t, first.Messages, messageplane.MaxBatch)

	second, err := plane.Poll("gw-1", 16+messageplane.MaxBatch)
	require.NoError(t, err)
	assert.Len(t, second.Messages, 75-messageplane.MaxBatch)
}

func TestMultiGatewayIsolation(t *testing.T) {
	plane, _ := newTestPlane(t)

	cid1, _, priv1 := registerClient(t, plane, "c1")
	cid2, _, priv2 := registerClient(t, plane, "c2")
	openClient(t, plane, cid1, priv1, "gw-1")
	openClient(t, plane, cid2, priv2, "gw-2")

	plane.Send(cid1, []byte("to g1"))
	plane.Send(cid2, []byte("to g2"))
	plane.Send(cid1, []byte("to g1 again"))

	g1, err := plane.Poll("gw-1", 0)
	require.NoError(t, err)
	for _, m := range g1.Messages {
		assert.Equal(t, cid1, m.ClientId)
	}

	g2, err := plane.Poll("gw-2", 0)
	require.NoError(t, err)
	for _, m := range g2.Messages {
		assert.Equal(t, cid2, m.ClientId)
	}
}

func TestWipeResetsCounters(t *testing.T) {
	plane, _ := newTestPlane(t)
	registerClient(t, plane, "c1")
	registerClient(t, plane, "c2")

	plane.Wipe()

	next, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	cid, err := plane.Register("c3", next)
	require.NoError(t, err)
	assert.EqualValues(t, 16, cid)
}

func TestReopenSameGatewayAccepted(t *testing.T) {
	plane, _ := newTestPlane(t)
	plane.SetApplication(&recordingApp{sender: plane})
	cid, _, priv := registerClient(t, plane, "client-caller")
	openClient(t, plane, cid, priv, "gw-1")

	first := wswire.FirstMessage{ClientId: cid, CanisterId: "aaaaa-aa"}
	firstBytes, err := wswire.Marshal(first)
	require.NoError(t, err)
	sig := ed25519.Sign(priv, firstBytes)

	ok, err := plane.Open("gw-1", firstBytes, sig)
	require.NoError(t, err)
	assert.True(t, ok, "the same gateway reopening its own client should be accepted")
}

func TestReopenDifferentGatewayRejected(t *testing.T) {
	plane, _ := newTestPlane(t)
	plane.SetApplication(&recordingApp{sender: plane})
	cid, _, priv := registerClient(t, plane, "client-caller")
	openClient(t, plane, cid, priv, "gw-1")

	first := wswire.FirstMessage{ClientId: cid, CanisterId: "aaaaa-aa"}
	firstBytes, err := wswire.Marshal(first)
	require.NoError(t, err)
	sig := ed25519.Sign(priv, firstBytes)

	ok, err := plane.Open("gw-2", firstBytes, sig)
	require.NoError(t, err)
	assert.False(t, ok, "a different gateway must not be able to steal an already-open client")

	// The client's messages should still be routed to gw-1, unaffected by
	// the rejected steal attempt from gw-2: gw-1 holds the "ping" from the
	// first open plus "still mine".
	plane.Send(cid, []byte("still mine"))
	g1, err := plane.Poll("gw-1", 0)
	require.NoError(t, err)
	assert.Len(t, g1.Messages, 2)
	g2, err := plane.Poll("gw-2", 0)
	require.NoError(t, err)
	assert.Empty(t, g2.Messages)
}

func TestCloseIsIdempotent(t *testing.T) {
	plane, _ := newTestPlane(t)
	cid, _, _ := registerClient(t, plane, "client-caller")

	plane.Close(cid)
	assert.NotPanics(t, func() { plane.Close(cid) }, "closing an already-closed client must be a no-op")

	_, err := plane.GetClientKey(cid)
	assert.ErrorIs(t, err, messageplane.ErrUnknownClient)

	assert.NotPanics(t, func() { plane.Close(messageplane.ClientId(99999)) }, "closing an unknown client must be a no-op")
}

func openClient(t *testing.T, plane *messageplane.Plane, cid messageplane.ClientId, priv ed25519.PrivateKey, gateway string) {
	t.Helper()
	first := wswire.FirstMessage{ClientId: cid, CanisterId: "aaaaa-aa"}
	firstBytes, err := wswire.Marshal(first)
	require.NoError(t, err)
	sig := ed25519.Sign(priv, firstBytes)
	ok, err := plane.Open(gateway, firstBytes, sig)
	require.NoError(t, err)
	require.True(t, ok)
}
