// Package websocket provides WebSocket transport for the grid pathfinder.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - Grid snapshot broadcasting after every change
//   - Live search tracing, one event per expanded node
//
// Architecture:
//
// A central Hub owns all connections. Its Run loop is the only goroutine that
// touches the client registry; registration, broadcasts and client counts all
// travel over channels. Each connection has a read pump and a write pump.
//
// Message Protocol:
//
// Clients only receive. Every frame is one JSON Message:
//
//	{"session_id":"ab12","event":"grid_update","grid":{...}}
//	{"session_id":"ab12","event":"search_step","data":{"iteration":3,...}}
//	{"session_id":"ab12","event":"search_complete","data":{"found":true,...}}
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
//	hub.BroadcastGrid(sessionID, snapshot)
//
// Broadcasts never block the caller. When the queue is full the message is
// dropped and logged; clients that cannot keep up are disconnected.
package websocket
