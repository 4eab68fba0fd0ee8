// Package claims keeps each post's denormalized claim history consistent
// with the claim-request messages in its conversations.
//
// Entry points:
//   - AddClaimRequest: append one record to a post's history
//   - UpdateClaimRequestStatus: respond to one record inside a transaction
//   - SyncPostClaims: backfill records from every conversation about a post
//   - PreserveClaimsBeforeDeletion: backfill from one conversation before it
//     is deleted
//
// Backfilling is best effort. A conversation whose messages cannot be read
// is logged and skipped, and DeleteConversation proceeds even when
// preservation fails. Claim history is an audit aid, not the source of truth
// for who owns an item.
//
// Ghost conversations (whose post is missing or deleted) are found with
// FindGhostConversations and removed with CleanupGhostConversations.
package claims
