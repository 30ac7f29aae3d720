package echoapp

import (
	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-ws-relay/messageplane"
	"github.com/forestrie/go-ws-relay/wswire"
)

// App is a messageplane.Application that greets every new client with
// "ping" and echoes back whatever it sends, with " ping" appended.
type App struct {
	log    logger.Logger
	sender messageplane.Sender
}

// New builds an App that sends through sender (normally the *Plane it
// will be registered on via SetApplication).
func New(log logger.Logger, sender messageplane.Sender) *App {
	return &App{log: log, sender: sender}
}

func (a *App) OnOpen(clientID messageplane.ClientId) {
	a.log.Debugf("echoapp: client %d opened, sending ping", clientID)
	a.sender.Send(clientID, []byte("ping"))
}

func (a *App) OnMessage(msg wswire.WebsocketMessage) {
	reply := append(append([]byte{}, msg.Message...), []byte(" ping")...)
	a.log.Debugf("echoapp: echoing to client %d", msg.ClientId)
	a.sender.Send(msg.ClientId, reply)
}
