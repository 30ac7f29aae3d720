// Command wsrelay-demo runs one canister's worth of the relay end to end:
// an HTTP server exposing client registration and a WebSocket endpoint,
// backed by a single echoapp-driven messageplane.Plane.
package main

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-ws-relay/echoapp"
	"github.com/forestrie/go-ws-relay/gatewayrelay"
	"github.com/forestrie/go-ws-relay/host"
	"github.com/forestrie/go-ws-relay/hostsign"
	"github.com/forestrie/go-ws-relay/localagent"
	"github.com/forestrie/go-ws-relay/messageplane"
	"github.com/gorilla/websocket"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	logLevel := flag.String("log-level", "INFO", "log level (DEBUG, INFO, WARN, ERROR)")
	canisterID := flag.String("canister-id", "aaaaa-aa", "canister id this demo serves")
	gatewayID := flag.String("gateway-id", "wsrelay-demo", "this gateway's identity, as seen by the canister")
	flag.Parse()

	logger.New(*logLevel)
	log := logger.Sugar.WithServiceName("wsrelay-demo")

	_, hostPriv, err := ed25519.GenerateKey(nil)
	if err != nil {
		log.Errorf("generating demo host key: %v", err)
		os.Exit(1)
	}
	certifier, err := hostsign.NewReferenceCertifier(*gatewayID, hostPriv)
	if err != nil {
		log.Errorf("building certifier: %v", err)
		os.Exit(1)
	}

	plane := messageplane.New(log, nowNanos, certifier)
	app := echoapp.New(log, plane)
	plane.SetApplication(app)
	runtime := host.New(plane)

	agent := localagent.New(runtime, *gatewayID)
	srv := gatewayrelay.NewServer(log, func(requestedCanisterID string) (gatewayrelay.Agent, error) {
		// This demo only hosts *canisterID; a multi-canister deployment
		// would look requestedCanisterID up in a registry of Runtimes here.
		return agent, nil
	})

	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/register", registerHandler(log, runtime, *gatewayID))
	mux.HandleFunc("/ws", wsHandler(log, srv, upgrader))
	mux.HandleFunc("/debug/stats", statsHandler(runtime))

	log.Infof("wsrelay-demo: serving canister %s as gateway %s on %s", *canisterID, *gatewayID, *addr)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		log.Errorf("serving: %v", err)
		os.Exit(1)
	}
}

func nowNanos() uint64 { return uint64(time.Now().UnixNano()) }

type registerRequest struct {
	PublicKey string `json:"public_key"` // base64-encoded Ed25519 public key
}

type registerResponse struct {
	ClientID uint64 `json:"client_id"`
}

func registerHandler(log logger.Logger, runtime *host.Runtime, gatewayID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "malformed request body", http.StatusBadRequest)
			return
		}
		pub, err := base64.StdEncoding.DecodeString(req.PublicKey)
		if err != nil {
			http.Error(w, "public_key must be base64", http.StatusBadRequest)
			return
		}
		clientID, err := runtime.Register(gatewayID, pub)
		if err != nil {
			log.Infof("register: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, registerResponse{ClientID: uint64(clientID)})
	}
}

func wsHandler(log logger.Logger, srv *gatewayrelay.Server, upgrader websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Infof("ws: upgrade failed: %v", err)
			return
		}
		sess := gatewayrelay.NewSession(srv.NextSessionID(), conn, srv, log)
		sess.Run(r.Context())
	}
}

func statsHandler(runtime *host.Runtime) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, runtime.Stats())
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
