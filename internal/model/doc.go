// Package model defines the documents UniClaim stores and reconciles.
//
// A Post carries a denormalized copy of every claim request made against it
// (ClaimRequests). The copy outlives the conversation the claim was made in,
// so claim history survives conversation deletion. Conversations and their
// Messages are the source records; the claims service backfills the post's
// array from them.
//
// # Identity
//
//   - A ClaimRecord is identified within its post by MessageID
//   - Posts, conversations and messages use UUIDv7 identifiers (see IDGenerator)
//
// # Status Lifecycle
//
//	pending → accepted | rejected | withdrawn
//
// Terminal claim statuses never transition again.
package model
