// Package mcp exposes rounds to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API, and responses are rendered as plain text boards that a language
// model can read cell by cell.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - snapshot: board, scores and clock
//   - command: one command such as move_up or act, with an intent note
//   - advance: run the clock forward for turn-based rounds
//   - command_history: paged command log
//   - list_levels, game_instructions
//   - describe_cell: every occupant of one cell
//
// Tool failures are returned as error results rather than Go errors so the
// agent sees the message.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
