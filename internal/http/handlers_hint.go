package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dicaapp/backend/internal/models"
)

type UpsertAdmirerInput struct {
	Email string `json:"email" binding:"required,email"`
}

type CreateHintInput struct {
	Content   json.RawMessage `json:"content" binding:"required"`
	Type      string          `json:"type" binding:"required"`
	PublicURL string          `json:"publicUrl"`
	QRCodeURL string          `json:"qrCodeUrl"`
}

// hintSummary is the owner-facing listing shape.
type hintSummary struct {
	ID           string    `json:"id"`
	Content      string    `json:"content"`
	Type         string    `json:"type"`
	Interactions int64     `json:"interactions"`
	Views        int       `json:"views"`
	PublicURL    string    `json:"publicUrl,omitempty"`
	QRCodeURL    string    `json:"qrCodeUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UpsertAdmirer finds or creates an anonymous sender identity by email.
func (e *Env) UpsertAdmirer(c *gin.Context) {
	var input UpsertAdmirerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid email is required"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var admirer models.Admirer
	err := e.DB.Where("email = ?", email).First(&admirer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		admirer = models.Admirer{Email: &email}
		err = e.DB.Create(&admirer).Error
	}
	if err != nil {
		log.Printf("Error upserting admirer: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve admirer"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": admirer.ID})
}

// CreateHint stores a new hint owned by the caller's admirer identity,
// creating that identity on first use. Mixed-type structured content is
// stored serialized.
func (e *Env) CreateHint(c *gin.Context) {
	var input CreateHintInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if !models.ValidType(input.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid hint type"})
		return
	}

	var content string
	if err := json.Unmarshal(input.Content, &content); err != nil {
		// Not a plain string: only the mixed type carries a structured
		// payload, kept serialized in storage.
		if input.Type != models.TypeMixed {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Content must be a string"})
			return
		}
		content = string(input.Content)
	}
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content is required"})
		return
	}

	claims := claimsFrom(c)
	admirer, err := e.admirerForUser(claims.UserID, true)
	if err != nil {
		log.Printf("Error resolving admirer: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create hint"})
		return
	}

	hint := models.Hint{
		AdmirerID: admirer.ID,
		Content:   content,
		Type:      input.Type,
		PublicURL: input.PublicURL,
		QRCodeURL: input.QRCodeURL,
	}
	if err := e.DB.Create(&hint).Error; err != nil {
		log.Printf("Error creating hint: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create hint"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": hint.ID})
}

// GetHint is the public read. The view increment and the fetch run in one
// transaction: a read that fails partway consumes no view, and a hint deleted
// underneath the read stays a plain 404.
func (e *Env) GetHint(c *gin.Context) {
	id := c.Param("id")

	var hint models.Hint
	var replies []models.Reply
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Hint{}).
			Where("id = ?", id).
			UpdateColumn("views", gorm.Expr("views + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errHintNotFound
		}
		if err := tx.First(&hint, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Where("hint_id = ?", id).Order("created_at asc").Find(&replies).Error
	})
	switch {
	case errors.Is(err, errHintNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Hint not found"})
		return
	case err != nil:
		log.Printf("Error fetching hint: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch hint"})
		return
	}

	// Mixed payloads were serialized on write; hand them back structured.
	var content any = hint.Content
	if hint.Type == models.TypeMixed {
		var structured any
		if err := json.Unmarshal([]byte(hint.Content), &structured); err == nil {
			content = structured
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        hint.ID,
		"content":   content,
		"type":      hint.Type,
		"views":     hint.Views,
		"publicUrl": hint.PublicURL,
		"qrCodeUrl": hint.QRCodeURL,
		"createdAt": hint.CreatedAt,
		"replies":   replies,
	})
}

// ListMyHints returns the caller's hints, newest first, with view and
// interaction counts.
func (e *Env) ListMyHints(c *gin.Context) {
	claims := claimsFrom(c)

	admirer, err := e.admirerForUser(claims.UserID, false)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusOK, []hintSummary{})
		return
	}
	if err != nil {
		log.Printf("Error resolving admirer: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch hints"})
		return
	}

	var hints []models.Hint
	if err := e.DB.Where("admirer_id = ?", admirer.ID).Order("created_at desc").Find(&hints).Error; err != nil {
		log.Printf("Error fetching hints: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch hints"})
		return
	}

	ids := make([]string, len(hints))
	for i, h := range hints {
		ids[i] = h.ID
	}
	counts, err := e.interactionCounts(ids)
	if err != nil {
		log.Printf("Error counting interactions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch hints"})
		return
	}

	out := make([]hintSummary, 0, len(hints))
	for _, h := range hints {
		out = append(out, hintSummary{
			ID:           h.ID,
			Content:      h.Content,
			Type:         h.Type,
			Interactions: counts[h.ID],
			Views:        h.Views,
			PublicURL:    h.PublicURL,
			QRCodeURL:    h.QRCodeURL,
			CreatedAt:    h.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, out)
}

// Dashboard returns the caller's hints with their interactions embedded.
func (e *Env) Dashboard(c *gin.Context) {
	claims := claimsFrom(c)

	admirer, err := e.admirerForUser(claims.UserID, false)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusOK, []gin.H{})
		return
	}
	if err != nil {
		log.Printf("Error resolving admirer: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dashboard"})
		return
	}

	var hints []models.Hint
	if err := e.DB.Where("admirer_id = ?", admirer.ID).Order("created_at desc").Find(&hints).Error; err != nil {
		log.Printf("Error fetching hints: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dashboard"})
		return
	}

	ids := make([]string, len(hints))
	for i, h := range hints {
		ids[i] = h.ID
	}
	byHint := make(map[string][]models.Interaction, len(ids))
	if len(ids) > 0 {
		var interactions []models.Interaction
		if err := e.DB.Where("hint_id IN ?", ids).Order("created_at asc").Find(&interactions).Error; err != nil {
			log.Printf("Error fetching interactions: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dashboard"})
			return
		}
		for _, it := range interactions {
			byHint[it.HintID] = append(byHint[it.HintID], it)
		}
	}

	out := make([]gin.H, 0, len(hints))
	for _, h := range hints {
		interactions := byHint[h.ID]
		if interactions == nil {
			interactions = []models.Interaction{}
		}
		out = append(out, gin.H{
			"id":           h.ID,
			"content":      h.Content,
			"type":         h.Type,
			"views":        h.Views,
			"createdAt":    h.CreatedAt,
			"interactions": interactions,
		})
	}

	c.JSON(http.StatusOK, out)
}

// DeleteHint removes a hint and everything attached to it. Owner or admin only.
func (e *Env) DeleteHint(c *gin.Context) {
	id := c.Param("id")
	claims := claimsFrom(c)

	var hint models.Hint
	if err := e.DB.First(&hint, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Hint not found"})
			return
		}
		log.Printf("Error fetching hint: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete hint"})
		return
	}

	allowed, err := e.canManageHint(claims, &hint)
	if err != nil {
		log.Printf("Error checking hint ownership: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete hint"})
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to delete this hint"})
		return
	}

	err = e.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("hint_id = ?", id).Delete(&models.Interaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("hint_id = ?", id).Delete(&models.Reply{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Hint{}, "id = ?", id).Error
	})
	if err != nil {
		log.Printf("Error in delete transaction: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete hint"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
