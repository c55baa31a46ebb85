// Package repositories implements SQLite persistence for the menu board.
//
// Key Implementations:
//   - [DocumentRepository] : JSON document bodies with a per-document version, merged in a transaction
//   - [UserRepository] : local admin accounts with bcrypt password hashes
//   - [SessionRepository] : signed-in sessions referenced by token ids
//
// Users support soft deletes via deleted_at and are excluded from queries once deleted.
// Sessions are hard deleted on sign-out and when they expire.
package repositories
