// Package harness runs YAML scenarios against the claim reconciler and
// turnover workflow.
//
// A scenario seeds a fresh in-memory store (posts, conversations,
// messages), runs a list of steps through the real services and checks the
// final claim history of each post. Time comes from a deterministic clock,
// so the final state can be compared against golden files.
//
// Example scenario:
//
//	name: preserve_before_delete
//	description: deleting a conversation keeps its claim on the post
//	setup:
//	  posts:
//	    - {id: post-1, type: found}
//	  conversations:
//	    - {id: conv-1, post_id: post-1}
//	  messages:
//	    - {id: c1, conversation_id: conv-1, sender_id: u1, type: claim_request,
//	       claim: {reason: "my initials", status: pending}}
//	steps:
//	  - {op: delete_conversation, conversation: conv-1}
//	expect:
//	  posts:
//	    - {id: post-1, claims: {c1: pending}}
//	  conversations: []
package harness
