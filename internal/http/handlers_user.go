package http

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dicaapp/backend/internal/auth"
	"github.com/dicaapp/backend/internal/models"
)

type RegisterInput struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	Name      string `json:"name" binding:"required"`
	Birthdate string `json:"birthdate" binding:"required"`
	CPF       string `json:"cpf" binding:"required"`
}

type VerifyUserInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates an account and returns its id with a fresh session token.
func (e *Env) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	cpf, ok := models.NormalizeCPF(input.CPF)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "CPF must be formatted as XXX.XXX.XXX-XX or 11 digits"})
		return
	}

	birthdate, err := time.Parse("2006-01-02", input.Birthdate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Birthdate must be formatted as YYYY-MM-DD"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var existing models.User
	err = e.DB.Where("email = ? OR cpf = ?", email, cpf).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Error checking existing user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	user := models.User{
		Email:     email,
		Password:  hash,
		Name:      input.Name,
		Birthdate: birthdate,
		CPF:       cpf,
		Role:      models.RoleUser,
	}
	if err := e.DB.Create(&user).Error; err != nil {
		// The unique indexes are the last word under concurrent registration.
		if strings.Contains(strings.ToLower(err.Error()), "unique") || strings.Contains(err.Error(), "duplicate") {
			c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
			return
		}
		log.Printf("Error creating user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	token, err := e.JWT.Sign(user.ID, user.Name, user.Email, user.Role)
	if err != nil {
		log.Printf("Error signing token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "token": token})
}

// VerifyUser checks credentials and issues a session token. Unknown email and
// wrong password are indistinguishable to the caller.
func (e *Env) VerifyUser(c *gin.Context) {
	var input VerifyUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var user models.User
	if err := e.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Error fetching user: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if !auth.CheckPassword(user.Password, input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := e.JWT.Sign(user.ID, user.Name, user.Email, user.Role)
	if err != nil {
		log.Printf("Error signing token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": user.ID, "name": user.Name, "email": user.Email, "token": token})
}

// Profile returns the authenticated user's account.
func (e *Env) Profile(c *gin.Context) {
	claims := claimsFrom(c)

	var user models.User
	if err := e.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		log.Printf("Error fetching profile: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// SearchUsers finds users by (partial, case-insensitive) name.
func (e *Env) SearchUsers(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name query parameter is required"})
		return
	}

	var results []userSummary
	err := e.DB.Model(&models.User{}).
		Select("id, name").
		Where("lower(name) LIKE ?", "%"+strings.ToLower(name)+"%").
		Scan(&results).Error
	if err != nil {
		log.Printf("Error searching users: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search users"})
		return
	}
	if results == nil {
		results = []userSummary{}
	}

	c.JSON(http.StatusOK, results)
}

type userSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
