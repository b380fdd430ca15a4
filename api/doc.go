// Package api serves the REST interface for rounds.
//
// Endpoints:
//
//	GET    /api/health
//	POST   /api/sessions                 {"level_id","realtime","autopilot","adversary_autopilot","seed"}
//	GET    /api/sessions                 ?sort=created|accessed&order=asc|desc&limit=N
//	GET    /api/sessions/{id}
//	DELETE /api/sessions/{id}
//	GET    /api/sessions/{id}/snapshot   ?format=text renders the board
//	POST   /api/sessions/{id}/command    {"command":"move_up"}
//	POST   /api/sessions/{id}/advance    {"elapsed_ms":100,"ticks":5}
//	POST   /api/sessions/{id}/restart
//	GET    /api/sessions/{id}/history    ?page=&limit=&order=
//	GET    /api/sessions/{id}/cell       ?x=&y=
//	GET    /api/levels
//	GET    /api/levels/{id}
//	PUT    /api/levels/{id}              level descriptor body
//	GET    /ws?session=ID                websocket upgrade
//
// Mutating calls push the new snapshot and any round events to websocket
// watchers of the session.
//
// Errors are JSON objects with a single "error" field. Unknown sessions and
// levels map to 404, malformed commands, advances and levels to 400.
package api
