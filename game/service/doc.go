// Package service provides the business logic layer for Icebound.
//
// The service package implements:
//   - Multi-session round management
//   - Level loading and listing
//   - Command dispatch and clock advancement
//   - Realtime ticking for server-clocked rounds
//   - Command history pagination
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level round operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// LevelManager manages level descriptor loading and validation.
//
// Architecture:
//
// The service layer sits between the transports (HTTP/WebSocket/MCP) and the
// engine. Each session owns one engine and a mutex; every engine call happens
// under that mutex, so the engine itself stays single-threaded.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	levelMgr := config.NewManager("levels")
//	gameService := service.NewGameService(sessionMgr, levelMgr)
//
//	info, err := gameService.CreateSession(ctx, "glacier", service.SessionOptions{})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	resp, err := gameService.Command(ctx, info.ID, "move_up")
//	adv, err := gameService.Advance(ctx, info.ID, 50, 20)
package service
