// Package session provides session management for Icebound.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - File persistence with JSON or MessagePack encoding
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the session manager that handles all session operations.
// FilePersistence stores one file per session holding the level id, the
// session options, the full engine World and the command history. A Codec
// selects the encoding.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. IDs are
// case-insensitive and generated from cryptographic randomness.
//
// Concurrency:
//
// The manager map is guarded by an RWMutex. Each service.Session carries its
// own mutex guarding its engine; persistence saves run under that lock.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions", levels,
//		session.WithCodec(session.MsgpackCodec{}))
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(persistence)
//
//	sess, err := manager.Create("", "courtyard", level, service.SessionOptions{})
//	if err != nil {
//		log.Fatal(err)
//	}
package session
