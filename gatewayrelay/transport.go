package gatewayrelay

// Socket is the minimal surface gatewayrelay needs from a client
// connection. *websocket.Conn from github.com/gorilla/websocket satisfies
// it directly, with no adapter — this package is deliberately kept free
// of that import, since the WebSocket framing layer itself is out of
// scope here (spec.md Non-goals) and is wired only in cmd/wsrelay-demo.
type Socket interface {
	ReadMessage() (messageType int, data []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// binaryMessage mirrors gorilla/websocket.BinaryMessage (RFC 6455 opcode
// 0x2). Every frame in this protocol is a binary CBOR payload; anything
// else (ping/pong/text/close control frames) is ignored by Session.
const binaryMessage = 2
