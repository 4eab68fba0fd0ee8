package model

import (
	"fmt"
	"time"
)

// ClaimStatus is the state of a claim request.
type ClaimStatus string

const (
	ClaimPending   ClaimStatus = "pending"
	ClaimAccepted  ClaimStatus = "accepted"
	ClaimRejected  ClaimStatus = "rejected"
	ClaimWithdrawn ClaimStatus = "withdrawn"
)

// Valid reports whether s is a known claim status.
func (s ClaimStatus) Valid() bool {
	switch s {
	case ClaimPending, ClaimAccepted, ClaimRejected, ClaimWithdrawn:
		return true
	}
	return false
}

// Terminal reports whether s can no longer change.
func (s ClaimStatus) Terminal() bool {
	return s == ClaimAccepted || s == ClaimRejected || s == ClaimWithdrawn
}

// ClaimRecord is the denormalized copy of a claim request kept on its post.
type ClaimRecord struct {
	MessageID      string      `json:"message_id"`
	ConversationID string      `json:"conversation_id"`
	ClaimantID     string      `json:"claimant_id"`
	ClaimantName   string      `json:"claimant_name,omitempty"`
	ClaimantEmail  string      `json:"claimant_email,omitempty"`
	Reason         string      `json:"reason,omitempty"`
	IDPhotoURL     string      `json:"id_photo_url,omitempty"`
	EvidencePhotos []string    `json:"evidence_photos,omitempty"`
	Status         ClaimStatus `json:"status"`
	RequestedAt    time.Time   `json:"requested_at"`
	RespondedAt    *time.Time  `json:"responded_at,omitempty"`
	ResponderID    string      `json:"responder_id,omitempty"`
}

// Validate checks the fields every stored record must have.
func (r ClaimRecord) Validate() error {
	if r.MessageID == "" {
		return fmt.Errorf("claim record: message_id is required")
	}
	if r.ClaimantID == "" {
		return fmt.Errorf("claim record: claimant_id is required")
	}
	if !r.Status.Valid() {
		return fmt.Errorf("claim record: invalid status %q", r.Status)
	}
	return nil
}

// Normalized returns a copy with free-text fields NFC-normalized and trimmed.
func (r ClaimRecord) Normalized() ClaimRecord {
	r.ClaimantName = NormalizeText(r.ClaimantName)
	r.ClaimantEmail = NormalizeText(r.ClaimantEmail)
	r.Reason = NormalizeText(r.Reason)
	if r.EvidencePhotos != nil {
		photos := make([]string, len(r.EvidencePhotos))
		copy(photos, r.EvidencePhotos)
		r.EvidencePhotos = photos
	}
	return r
}

// ClaimFromMessage builds the denormalized record for a claim request
// message. Returns false for any other message type, or for a claim request
// that carries no claim data.
//
// A message without a status is recorded as pending.
func ClaimFromMessage(msg Message) (ClaimRecord, bool) {
	if msg.Type != MessageClaimRequest || msg.Claim == nil {
		return ClaimRecord{}, false
	}

	status := msg.Claim.Status
	if status == "" {
		status = ClaimPending
	}

	rec := ClaimRecord{
		MessageID:      msg.ID,
		ConversationID: msg.ConversationID,
		ClaimantID:     msg.SenderID,
		ClaimantName:   msg.SenderName,
		ClaimantEmail:  msg.SenderEmail,
		Reason:         msg.Claim.Reason,
		IDPhotoURL:     msg.Claim.IDPhotoURL,
		EvidencePhotos: msg.Claim.EvidencePhotos,
		Status:         status,
		RequestedAt:    msg.CreatedAt,
	}
	return rec.Normalized(), true
}
