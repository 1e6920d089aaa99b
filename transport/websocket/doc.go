// Package websocket provides the real-time transport for the light race game.
//
// The package implements:
//   - A hub tracking every connection, with a display room subset
//   - The session's Broadcaster contract (room broadcast + per-player send)
//   - Per-connection read/write pumps with ping keepalive
//   - Inbound action routing to the game service
//
// Message Protocol:
//
// Both directions use a JSON envelope:
//   - Incoming: {"type": "joinGame", "data": {"name": "Ana"}}
//   - Outgoing: {"type": "gameState", "data": {...}}
//
// Controllers send joinGame/holdStart/holdEnd; the host UI additionally sends
// startGame, resetLobby, and kickPlayer; the TV page sends joinTV to enter the
// display room and immediately receives the current state.
//
// Concurrency:
//
// The session broadcasts while holding its own lock, so ToDisplay and ToPlayer
// never block: frames go into a buffered per-client channel, and a client that
// falls too far behind is dropped. A dropped or closed player connection is
// reported to the service as a disconnect.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	sess := session.New(hub)
//	svc := service.NewGameService(sess)
//	hub.Bind(svc)
//	http.HandleFunc("/ws", hub.ServeWS)
package websocket
