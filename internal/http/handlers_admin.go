package http

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dicaapp/backend/internal/models"
)

// adminHint is the admin listing shape: every hint plus its owner's email.
type adminHint struct {
	ID           string    `json:"id"`
	Content      string    `json:"content"`
	Type         string    `json:"type"`
	Views        int       `json:"views"`
	Interactions int64     `json:"interactions"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AdminListHints returns all hints across all admirers. Gated by RequireAdmin.
func (e *Env) AdminListHints(c *gin.Context) {
	var hints []models.Hint
	if err := e.DB.Preload("Admirer").Order("created_at desc").Find(&hints).Error; err != nil {
		log.Printf("Error fetching hints: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch hints"})
		return
	}

	ids := make([]string, len(hints))
	userIDs := make([]string, 0, len(hints))
	for i, h := range hints {
		ids[i] = h.ID
		if h.Admirer.UserID != nil {
			userIDs = append(userIDs, *h.Admirer.UserID)
		}
	}

	counts, err := e.interactionCounts(ids)
	if err != nil {
		log.Printf("Error counting interactions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch hints"})
		return
	}

	// User-linked admirers have no email of their own; resolve through the
	// linked account in one query.
	emailByUser := make(map[string]string, len(userIDs))
	if len(userIDs) > 0 {
		var users []models.User
		if err := e.DB.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
			log.Printf("Error fetching hint owners: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch hints"})
			return
		}
		for _, u := range users {
			emailByUser[u.ID] = u.Email
		}
	}

	out := make([]adminHint, 0, len(hints))
	for _, h := range hints {
		email := ""
		if h.Admirer.Email != nil {
			email = *h.Admirer.Email
		} else if h.Admirer.UserID != nil {
			email = emailByUser[*h.Admirer.UserID]
		}
		out = append(out, adminHint{
			ID:           h.ID,
			Content:      h.Content,
			Type:         h.Type,
			Views:        h.Views,
			Interactions: counts[h.ID],
			Email:        email,
			CreatedAt:    h.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, out)
}
