// Package websocket streams round snapshots to browser and terminal clients.
//
// A Hub owns every connection. Clients attach to one session with
// ?session=ID; the session must already exist. On connect the hub replies
// with a welcome frame carrying the client id and the current snapshot.
//
// Inbound frames are commands:
//
//	{"command": "move_up"}
//
// Outbound frames share one envelope, distinguished by type:
//
//	welcome   first frame, with client_id and snapshot
//	snapshot  state after a command or a realtime tick; result is set when
//	          the frame answers a command, client_id names the sender
//	events    round events such as collect, wave, victory
//	error     a malformed or rejected command, sent only to its sender
//
// The hub also satisfies the runner's Publisher interface so realtime
// sessions are pushed to watchers as the clock advances.
//
//	hub := websocket.NewHub(svc, log)
//	go hub.Run(ctx)
//	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
