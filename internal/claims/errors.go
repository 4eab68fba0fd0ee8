package claims

import "errors"

var (
	// ErrPostNotFound is returned when the referenced post does not exist.
	ErrPostNotFound = errors.New("post not found")

	// ErrClaimNotFound is returned when a post has no claim record for the
	// given message ID.
	ErrClaimNotFound = errors.New("claim request not found")

	// ErrInvalidTransition is returned when a claim in a terminal status is
	// asked to change status.
	ErrInvalidTransition = errors.New("invalid claim status transition")

	// ErrInvalidClaim is returned when a claim record or status fails
	// validation.
	ErrInvalidClaim = errors.New("invalid claim request")
)

// ErrConversationNotFound is returned when the referenced conversation does
// not exist.
var ErrConversationNotFound = errors.New("conversation not found")
