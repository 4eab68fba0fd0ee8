package model

import "time"

// PostType distinguishes lost reports from found reports.
type PostType string

const (
	PostLost  PostType = "lost"
	PostFound PostType = "found"
)

// Valid reports whether t is a known post type.
func (t PostType) Valid() bool {
	return t == PostLost || t == PostFound
}

// PostStatus is the lifecycle state of a post.
type PostStatus string

const (
	PostPending   PostStatus = "pending"
	PostResolved  PostStatus = "resolved"
	PostUnclaimed PostStatus = "unclaimed"
	PostDeleted   PostStatus = "deleted"
)

// Valid reports whether s is a known post status.
func (s PostStatus) Valid() bool {
	switch s {
	case PostPending, PostResolved, PostUnclaimed, PostDeleted:
		return true
	}
	return false
}

// Location is where an item was lost or found.
// Name is the campus location resolved from the coordinates, if any.
type Location struct {
	Name string  `json:"name,omitempty"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// Post is a lost or found item report.
type Post struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description,omitempty"`
	Type          PostType         `json:"type"`
	Status        PostStatus       `json:"status"`
	CreatorID     string           `json:"creator_id"`
	Location      Location         `json:"location"`
	ClaimRequests []ClaimRecord    `json:"claim_requests"`
	Turnover      *TurnoverDetails `json:"turnover,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// FindClaim returns the index of the claim record with the given message ID,
// or -1 if the post has no such record.
func (p *Post) FindClaim(messageID string) int {
	for i := range p.ClaimRequests {
		if p.ClaimRequests[i].MessageID == messageID {
			return i
		}
	}
	return -1
}

// ClaimIDs returns the set of message IDs already recorded on the post.
func (p *Post) ClaimIDs() map[string]bool {
	ids := make(map[string]bool, len(p.ClaimRequests))
	for _, c := range p.ClaimRequests {
		ids[c.MessageID] = true
	}
	return ids
}

// Conversation is a chat thread about a post.
// PostID is not a foreign key: the post may be gone (see GhostConversation).
type Conversation struct {
	ID           string    `json:"id"`
	PostID       string    `json:"post_id"`
	Participants []string  `json:"participants"`
	CreatedAt    time.Time `json:"created_at"`
}

// MessageType is the kind of a chat message.
type MessageType string

const (
	MessageText            MessageType = "text"
	MessageClaimRequest    MessageType = "claim_request"
	MessageHandoverRequest MessageType = "handover_request"
	MessageSystem          MessageType = "system"
)

// Valid reports whether t is a known message type.
func (t MessageType) Valid() bool {
	switch t {
	case MessageText, MessageClaimRequest, MessageHandoverRequest, MessageSystem:
		return true
	}
	return false
}

// ClaimData is the payload of a claim_request message.
type ClaimData struct {
	Reason         string      `json:"reason"`
	IDPhotoURL     string      `json:"id_photo_url,omitempty"`
	EvidencePhotos []string    `json:"evidence_photos,omitempty"`
	Status         ClaimStatus `json:"status"`
}

// Message is a single chat message. Claim is set only for claim requests.
type Message struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversation_id"`
	SenderID       string      `json:"sender_id"`
	SenderName     string      `json:"sender_name,omitempty"`
	SenderEmail    string      `json:"sender_email,omitempty"`
	Type           MessageType `json:"type"`
	Text           string      `json:"text,omitempty"`
	Claim          *ClaimData  `json:"claim,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

// GhostReason explains why a conversation is considered a ghost.
type GhostReason string

const (
	GhostPostMissing GhostReason = "post_missing"
	GhostPostDeleted GhostReason = "post_deleted"
)

// GhostConversation is a conversation whose post no longer exists or has
// been deleted.
type GhostConversation struct {
	Conversation Conversation `json:"conversation"`
	Reason       GhostReason  `json:"reason"`
}

// TurnoverDestination is the office that takes custody of a found item.
type TurnoverDestination string

const (
	TurnoverOSA            TurnoverDestination = "osa"
	TurnoverCampusSecurity TurnoverDestination = "campus_security"
)

// Valid reports whether d is a known destination.
func (d TurnoverDestination) Valid() bool {
	return d == TurnoverOSA || d == TurnoverCampusSecurity
}

// TurnoverStatus tracks custody handover of a found item.
type TurnoverStatus string

const (
	TurnoverAwaiting    TurnoverStatus = "awaiting_confirmation"
	TurnoverConfirmed   TurnoverStatus = "confirmed"
	TurnoverNotReceived TurnoverStatus = "not_received"
)

// TurnoverDetails records who handed an item over and whether the receiving
// office confirmed it.
type TurnoverDetails struct {
	Destination TurnoverDestination `json:"destination"`
	Status      TurnoverStatus      `json:"status"`
	InitiatedBy string              `json:"initiated_by"`
	InitiatedAt time.Time           `json:"initiated_at"`
	ConfirmedBy string              `json:"confirmed_by,omitempty"`
	ConfirmedAt *time.Time          `json:"confirmed_at,omitempty"`
	Notes       string              `json:"notes,omitempty"`
}
