// Package api serves the game operations over HTTP with chi.
//
// Mutating routes require an identity-signed request (see package identity):
// the caller of an operation is the hex public key that signed it. Read
// routes are open.
//
//	POST /games                   create a game, the caller owns it
//	POST /games/{id}/join         join an open game
//	POST /games/{id}/start        start a game
//	POST /games/{id}/draw         draw with {"signature": "<hex>"}
//	GET  /games/{id}              game state
//	GET  /games/{id}/winner       winner, empty while running
//	GET  /games/{id}/next-round   beacon round backing the next draw
//	GET  /games/{id}/turn         turn pointer
//	GET  /games/{id}/audit        replay the game from the ledger
//	GET  /ledger/verify           check the ledger hash chain
//	GET  /health                  liveness
//
// Failures are answered with {"code": ..., "message": ...}, where code is the
// stable reason of the error.
package api
