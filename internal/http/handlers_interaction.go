package http

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dicaapp/backend/internal/models"
	"github.com/dicaapp/backend/internal/ws"
)

type SubmitQuestionInput struct {
	Question string `json:"question" binding:"required,min=1,max=1000"`
}

type AnswerInput struct {
	InteractionID string `json:"interactionId"`
	Answer        string `json:"answer" binding:"required,min=1,max=1000"`
}

type CreateReplyInput struct {
	Content       string `json:"content" binding:"required,min=1,max=1000"`
	FromRecipient *bool  `json:"fromRecipient" binding:"required"`
}

var (
	errHintNotFound = errors.New("hint not found")
	errQuotaReached = errors.New("interaction quota reached")
)

// SubmitQuestion attaches a question to a hint. The 3-per-hint cap is checked
// and the row inserted inside one transaction so concurrent submissions cannot
// race past it.
func (e *Env) SubmitQuestion(c *gin.Context) {
	id := c.Param("id")

	var input SubmitQuestionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Question is required"})
		return
	}

	var hint models.Hint
	interaction := models.Interaction{HintID: id, Question: input.Question}

	err := e.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&hint, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errHintNotFound
			}
			return err
		}
		var count int64
		if err := tx.Model(&models.Interaction{}).Where("hint_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count >= models.MaxInteractionsPerHint {
			return errQuotaReached
		}
		return tx.Create(&interaction).Error
	})
	switch {
	case errors.Is(err, errHintNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Hint not found"})
		return
	case errors.Is(err, errQuotaReached):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Interaction limit reached"})
		return
	case err != nil:
		log.Printf("Error in question transaction: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit question"})
		return
	}

	e.notifyOwner(&hint, ws.Event{Type: ws.EventQuestion, Data: interaction})

	c.JSON(http.StatusOK, gin.H{"status": "Question submitted", "id": interaction.ID})
}

// AnswerInteraction records the owner's answer. Addressing an interaction by
// id is the canonical path; when the id is omitted the oldest pending question
// is answered. Either way the pending->answered transition happens once.
func (e *Env) AnswerInteraction(c *gin.Context) {
	id := c.Param("id")
	claims := claimsFrom(c)

	var input AnswerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Answer is required"})
		return
	}

	var hint models.Hint
	if err := e.DB.First(&hint, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Hint not found"})
			return
		}
		log.Printf("Error fetching hint: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit answer"})
		return
	}

	allowed, err := e.canManageHint(claims, &hint)
	if err != nil {
		log.Printf("Error checking hint ownership: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit answer"})
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to answer this hint"})
		return
	}

	var interaction models.Interaction
	if input.InteractionID != "" {
		err = e.DB.Where("id = ? AND hint_id = ?", input.InteractionID, id).First(&interaction).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Interaction not found"})
			return
		}
		if err == nil && !interaction.Pending() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Interaction already answered"})
			return
		}
	} else {
		err = e.DB.Where("hint_id = ? AND answer IS NULL", id).Order("created_at asc").First(&interaction).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No pending questions"})
			return
		}
	}
	if err != nil {
		log.Printf("Error fetching interaction: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit answer"})
		return
	}

	now := time.Now()
	res := e.DB.Model(&models.Interaction{}).
		Where("id = ? AND answer IS NULL", interaction.ID).
		Updates(map[string]any{"answer": input.Answer, "answered_at": now})
	if res.Error != nil {
		log.Printf("Error updating interaction: %v", res.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit answer"})
		return
	}
	if res.RowsAffected == 0 {
		// Lost a race with another answer on the same interaction.
		c.JSON(http.StatusBadRequest, gin.H{"error": "Interaction already answered"})
		return
	}

	interaction.Answer = &input.Answer
	interaction.AnsweredAt = &now

	e.notifyOwner(&hint, ws.Event{Type: ws.EventAnswer, Data: interaction})

	c.JSON(http.StatusOK, gin.H{"success": true, "interaction": interaction})
}

// ListInteractions returns a hint's questions in creation order. Questions may
// carry identifying content, so the listing is owner/admin-gated.
func (e *Env) ListInteractions(c *gin.Context) {
	id := c.Param("id")
	claims := claimsFrom(c)

	var hint models.Hint
	if err := e.DB.First(&hint, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Hint not found"})
			return
		}
		log.Printf("Error fetching hint: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch interactions"})
		return
	}

	allowed, err := e.canManageHint(claims, &hint)
	if err != nil {
		log.Printf("Error checking hint ownership: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch interactions"})
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to these interactions"})
		return
	}

	var interactions []models.Interaction
	if err := e.DB.Where("hint_id = ?", id).Order("created_at asc").Find(&interactions).Error; err != nil {
		log.Printf("Error fetching interactions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch interactions"})
		return
	}
	if interactions == nil {
		interactions = []models.Interaction{}
	}

	c.JSON(http.StatusOK, interactions)
}

// CreateReply appends a follow-up to a hint's flat reply thread. The
// recipient has no account, so this stays public behind the api limiter.
func (e *Env) CreateReply(c *gin.Context) {
	id := c.Param("id")

	var input CreateReplyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content and fromRecipient are required"})
		return
	}

	var hint models.Hint
	if err := e.DB.First(&hint, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Hint not found"})
			return
		}
		log.Printf("Error fetching hint: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reply"})
		return
	}

	reply := models.Reply{
		HintID:        id,
		Content:       input.Content,
		FromRecipient: *input.FromRecipient,
	}
	if err := e.DB.Create(&reply).Error; err != nil {
		log.Printf("Error creating reply: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reply"})
		return
	}

	c.JSON(http.StatusCreated, reply)
}
