package http

import (
	"errors"

	"gorm.io/gorm"

	"github.com/dicaapp/backend/internal/auth"
	"github.com/dicaapp/backend/internal/config"
	"github.com/dicaapp/backend/internal/models"
	"github.com/dicaapp/backend/internal/ws"
)

// Env holds the shared dependencies injected into every handler.
type Env struct {
	DB  *gorm.DB
	Hub *ws.Hub
	JWT *auth.JWT
	Cfg *config.Config
}

// admirerForUser resolves the caller's anonymous sender identity, creating it
// lazily when create is set.
func (e *Env) admirerForUser(userID string, create bool) (*models.Admirer, error) {
	var admirer models.Admirer
	err := e.DB.Where("user_id = ?", userID).First(&admirer).Error
	if err == nil {
		return &admirer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if !create {
		return nil, gorm.ErrRecordNotFound
	}
	admirer = models.Admirer{UserID: &userID}
	if err := e.DB.Create(&admirer).Error; err != nil {
		return nil, err
	}
	return &admirer, nil
}

// canManageHint reports whether the caller owns the hint or is an admin.
// Ownership matches either the user linkage or the admirer's email, since
// older admirer rows were created by email only.
func (e *Env) canManageHint(claims *auth.Claims, hint *models.Hint) (bool, error) {
	if claims.Role == models.RoleAdmin {
		return true, nil
	}
	var admirer models.Admirer
	if err := e.DB.First(&admirer, "id = ?", hint.AdmirerID).Error; err != nil {
		return false, err
	}
	if admirer.UserID != nil && *admirer.UserID == claims.UserID {
		return true, nil
	}
	if admirer.Email != nil && *admirer.Email == claims.Email {
		return true, nil
	}
	return false, nil
}

// notifyOwner pushes a dashboard event to the hint's owner, when the owning
// admirer is linked to a registered user.
func (e *Env) notifyOwner(hint *models.Hint, ev ws.Event) {
	var admirer models.Admirer
	if err := e.DB.First(&admirer, "id = ?", hint.AdmirerID).Error; err != nil {
		return
	}
	if admirer.UserID != nil {
		e.Hub.Notify(*admirer.UserID, ev)
	}
}

// interactionCounts returns the number of interactions per hint for the given
// hint ids, in one grouped query.
func (e *Env) interactionCounts(hintIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(hintIDs))
	if len(hintIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		HintID string
		N      int64
	}
	err := e.DB.Model(&models.Interaction{}).
		Select("hint_id, count(*) as n").
		Where("hint_id IN ?", hintIDs).
		Group("hint_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		counts[r.HintID] = r.N
	}
	return counts, nil
}
