package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Hint content types.
const (
	TypeText  = "text"
	TypeImage = "image"
	TypeVideo = "video"
	TypeMixed = "mixed"
)

// MaxInteractionsPerHint caps how many questions a single hint can receive.
const MaxInteractionsPerHint = 3

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a registered account. Password holds a bcrypt hash and is never
// serialized.
type User struct {
	ID        string    `gorm:"primarykey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Name      string    `gorm:"not null" json:"name"`
	Birthdate time.Time `json:"birthdate"`
	CPF       string    `gorm:"column:cpf;uniqueIndex;not null" json:"-"`
	Role      string    `gorm:"not null;default:user" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// IsAdmin reports whether the user holds the admin capability.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// Admirer is an anonymous sender identity, linked either to a plain email
// (public upsert) or to a registered user (created lazily on first hint).
// Each linkage carries its own unique index; NULLs are exempt.
type Admirer struct {
	ID        string    `gorm:"primarykey" json:"id"`
	Email     *string   `gorm:"uniqueIndex" json:"email,omitempty"`
	UserID    *string   `gorm:"uniqueIndex" json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (a *Admirer) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Hint is a content item sent anonymously to a recipient. Mixed-type content
// is stored JSON-serialized in Content.
type Hint struct {
	ID        string    `gorm:"primarykey" json:"id"`
	AdmirerID string    `gorm:"index;not null" json:"admirerId"`
	Content   string    `gorm:"not null" json:"content"`
	Type      string    `gorm:"not null;default:text" json:"type"`
	Views     int       `gorm:"not null;default:0" json:"views"`
	PublicURL string    `json:"publicUrl,omitempty"`
	QRCodeURL string    `json:"qrCodeUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`

	Admirer      Admirer       `gorm:"foreignKey:AdmirerID" json:"-"`
	Interactions []Interaction `gorm:"foreignKey:HintID" json:"-"`
	Replies      []Reply       `gorm:"foreignKey:HintID" json:"-"`
}

func (h *Hint) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}

// ValidType reports whether t is one of the accepted hint content types.
func ValidType(t string) bool {
	switch t {
	case TypeText, TypeImage, TypeVideo, TypeMixed:
		return true
	}
	return false
}

// Interaction is a question attached to a hint and its optional answer.
// Answer and AnsweredAt are set together, exactly once.
type Interaction struct {
	ID         string     `gorm:"primarykey" json:"id"`
	HintID     string     `gorm:"index;not null" json:"hintId"`
	Question   string     `gorm:"not null" json:"question"`
	Answer     *string    `json:"answer"`
	CreatedAt  time.Time  `json:"createdAt"`
	AnsweredAt *time.Time `json:"answeredAt"`
}

func (i *Interaction) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// Pending reports whether the interaction still awaits an answer.
func (i *Interaction) Pending() bool { return i.Answer == nil }

// Reply is a follow-up on a hint, from either side of the exchange.
type Reply struct {
	ID            string    `gorm:"primarykey" json:"id"`
	HintID        string    `gorm:"index;not null" json:"hintId"`
	Content       string    `gorm:"not null" json:"content"`
	FromRecipient bool      `gorm:"not null;default:false" json:"fromRecipient"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (r *Reply) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// All lists every model for migration.
func All() []any {
	return []any{&User{}, &Admirer{}, &Hint{}, &Interaction{}, &Reply{}}
}
