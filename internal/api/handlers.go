package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/uniclaim/claimsync/internal/campus"
	"github.com/uniclaim/claimsync/internal/claims"
	"github.com/uniclaim/claimsync/internal/model"
	"github.com/uniclaim/claimsync/internal/store"
	"github.com/uniclaim/claimsync/internal/turnover"
)

// addClaimRequest carries the claimant's side of a claim. Status is accepted
// only so that anything other than pending can be refused.
type addClaimRequest struct {
	MessageID      string            `json:"message_id" binding:"required"`
	ConversationID string            `json:"conversation_id"`
	ClaimantID     string            `json:"claimant_id" binding:"required"`
	ClaimantName   string            `json:"claimant_name"`
	ClaimantEmail  string            `json:"claimant_email"`
	Reason         string            `json:"reason"`
	IDPhotoURL     string            `json:"id_photo_url"`
	EvidencePhotos []string          `json:"evidence_photos"`
	Status         model.ClaimStatus `json:"status"`
}

type updateClaimRequest struct {
	Status      model.ClaimStatus `json:"status" binding:"required"`
	ResponderID string            `json:"responder_id" binding:"required"`
}

type initiateTurnoverRequest struct {
	Destination model.TurnoverDestination `json:"destination" binding:"required"`
	By          string                    `json:"by" binding:"required"`
}

type confirmTurnoverRequest struct {
	Received *bool  `json:"received" binding:"required"`
	By       string `json:"by" binding:"required"`
	Notes    string `json:"notes"`
}

type collectRequest struct {
	MessageID string `json:"message_id" binding:"required"`
	By        string `json:"by" binding:"required"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleLocate(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng must be numbers"})
		return
	}

	name, ok := s.campus.Locate(campus.Point{Lat: lat, Lng: lng})
	c.JSON(http.StatusOK, gin.H{"name": name, "on_campus": ok})
}

func (s *Server) handleGetPost(c *gin.Context) {
	p, err := s.store.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleListClaims(c *gin.Context) {
	p, err := s.store.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"claims": p.ClaimRequests})
}

func (s *Server) handleAddClaim(c *gin.Context) {
	var req addClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec := model.ClaimRecord{
		MessageID:      req.MessageID,
		ConversationID: req.ConversationID,
		ClaimantID:     req.ClaimantID,
		ClaimantName:   req.ClaimantName,
		ClaimantEmail:  req.ClaimantEmail,
		Reason:         req.Reason,
		IDPhotoURL:     req.IDPhotoURL,
		EvidencePhotos: req.EvidencePhotos,
		Status:         req.Status,
	}

	added, err := s.claims.AddClaimRequest(c.Request.Context(), c.Param("id"), rec)
	if err != nil {
		s.writeError(c, err)
		return
	}

	status := http.StatusCreated
	if !added {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"added": added, "message_id": rec.MessageID})
}

func (s *Server) handleUpdateClaim(c *gin.Context) {
	var req updateClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := s.claims.UpdateClaimRequestStatus(c.Request.Context(),
		c.Param("id"), c.Param("messageId"), req.Status, req.ResponderID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleSync(c *gin.Context) {
	report, err := s.claims.SyncPostClaims(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleDeleteConversation(c *gin.Context) {
	report, err := s.claims.DeleteConversation(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleListGhosts(c *gin.Context) {
	ghosts, err := s.claims.FindGhostConversations(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ghosts": ghosts})
}

func (s *Server) handleCleanupGhosts(c *gin.Context) {
	dryRun, err := strconv.ParseBool(c.DefaultQuery("dry_run", "false"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dry_run must be a boolean"})
		return
	}

	report, err := s.claims.CleanupGhostConversations(c.Request.Context(), dryRun)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleInitiateTurnover(c *gin.Context) {
	var req initiateTurnoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := s.turnover.Initiate(c.Request.Context(), c.Param("id"), req.Destination, req.By)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleConfirmTurnover(c *gin.Context) {
	var req confirmTurnoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := s.turnover.Confirm(c.Request.Context(), c.Param("id"), *req.Received, req.By, req.Notes)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleCollect(c *gin.Context) {
	var req collectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := s.turnover.MarkCollected(c.Request.Context(), c.Param("id"), req.MessageID, req.By)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// writeError maps service sentinels to HTTP status codes.
func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, claims.ErrPostNotFound),
		errors.Is(err, claims.ErrClaimNotFound),
		errors.Is(err, claims.ErrConversationNotFound),
		errors.Is(err, turnover.ErrPostNotFound):
		status = http.StatusNotFound
	case errors.Is(err, claims.ErrInvalidTransition),
		errors.Is(err, turnover.ErrInvalidState),
		errors.Is(err, turnover.ErrWrongPostType):
		status = http.StatusConflict
	case errors.Is(err, claims.ErrInvalidClaim),
		errors.Is(err, turnover.ErrInvalidDestination):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
