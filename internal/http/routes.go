package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dicaapp/backend/internal/auth"
	"github.com/dicaapp/backend/internal/config"
	"github.com/dicaapp/backend/internal/ws"
)

// Setup configures all application routes and middleware.
func Setup(router *gin.Engine, db *gorm.DB, hub *ws.Hub, cfg *config.Config) {

	// --- Dependencies ---
	jwt := auth.NewJWT(cfg.JWTSecret, cfg.TokenExpiration)
	env := &Env{DB: db, Hub: hub, JWT: jwt, Cfg: cfg}

	// --- Middleware ---
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware())

	corsOrigin := cfg.FrontendURL
	if corsOrigin == "" {
		corsOrigin = "*" // allow all for local dev
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{corsOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// --- Rate limiters ---
	authLimiter := NewIPRateLimiter(authRateRPS, authRateBurst)
	apiLimiter := NewIPRateLimiter(apiRateRPS, apiRateBurst)
	go authLimiter.CleanupLoop(10 * time.Minute)
	go apiLimiter.CleanupLoop(10 * time.Minute)

	authRequired := AuthMiddleware(jwt)

	// --- API routes ---
	api := router.Group("/api")
	{
		api.POST("/register", RateLimitMiddleware(authLimiter), env.Register)
		api.POST("/verify-user", RateLimitMiddleware(authLimiter), env.VerifyUser)
		api.GET("/profile", authRequired, env.Profile)
		api.GET("/users/search", authRequired, env.SearchUsers)

		api.POST("/admirer", RateLimitMiddleware(apiLimiter), env.UpsertAdmirer)

		api.POST("/hint", authRequired, env.CreateHint)
		api.GET("/hint/:id", env.GetHint)
		api.GET("/hints", authRequired, env.ListMyHints)
		api.GET("/dashboard", authRequired, env.Dashboard)
		api.DELETE("/hint/:id", authRequired, env.DeleteHint)

		api.POST("/hint/:id/question", RateLimitMiddleware(apiLimiter), env.SubmitQuestion)
		api.POST("/hint/:id/answer", authRequired, env.AnswerInteraction)
		api.GET("/hint/:id/interactions", authRequired, env.ListInteractions)
		api.POST("/hint/:id/reply", RateLimitMiddleware(apiLimiter), env.CreateReply)

		api.GET("/admin/hints", authRequired, RequireAdmin(), env.AdminListHints)

		api.POST("/upload", authRequired, env.Upload)
	}

	// --- Dashboard push channel ---
	router.GET("/ws", func(c *gin.Context) {
		ws.ServeWs(hub, jwt, c.Writer, c.Request)
	})

	// --- Uploaded media ---
	router.Static("/uploads", cfg.UploadDir)
}
