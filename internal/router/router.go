package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/edumaster/edumaster-web/internal/config"
	"github.com/edumaster/edumaster-web/internal/handler"
	"github.com/edumaster/edumaster-web/internal/middleware"
	"github.com/edumaster/edumaster-web/internal/response"
	"github.com/edumaster/edumaster-web/internal/session"
	"github.com/edumaster/edumaster-web/internal/view"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Lesson   *handler.LessonHandler
	Exam     *handler.ExamHandler
	TakeExam *handler.TakeExamHandler
	Admin    *handler.AdminHandler
	WS       *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	sessions *session.Manager,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	router.SetHTMLTemplate(view.Templates())
	router.StaticFS("/static", http.FS(view.Static()))

	// ─── CORS ──────────────────────────────────────────────────────────
	// The app serves its own pages, so CORS only matters for the JSON
	// endpoints when another origin is explicitly allowed in config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Every request resolves its browser session before any handler runs.
	router.Use(middleware.LoadSession(sessions))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 0. Public Pages ───────────────────────────────────────────────
	router.GET("/", func(c *gin.Context) {
		if middleware.GetAuth(c).IsAuthenticated() {
			c.Redirect(http.StatusFound, "/dashboard")
			return
		}
		c.Redirect(http.StatusFound, "/login")
	})
	router.GET("/login", handlers.Auth.ShowLogin)
	router.POST("/login", handlers.Auth.Login)
	router.GET("/register", handlers.Auth.ShowRegister)
	router.POST("/register", handlers.Auth.Register)
	router.GET("/forgot-password", handlers.Auth.ShowForgotPassword)
	router.POST("/forgot-password", handlers.Auth.ForgotPassword)
	router.GET("/reset-password", handlers.Auth.ShowResetPassword)
	router.POST("/reset-password", handlers.Auth.ResetPassword)
	router.POST("/logout", handlers.Auth.Logout)

	// ─── 1. Student Pages (Auth) ───────────────────────────────────────
	pages := router.Group("/")
	pages.Use(middleware.RequireAuth())
	{
		pages.GET("/dashboard", handlers.Auth.ShowDashboard)
		pages.GET("/profile", handlers.Auth.ShowProfile)
		pages.POST("/profile", handlers.Auth.UpdateProfile)
		pages.POST("/profile/password", handlers.Auth.UpdatePassword)
		pages.POST("/profile/delete", handlers.Auth.DeleteAccount)

		pages.GET("/lessons", handlers.Lesson.List)
		pages.GET("/lessons/:id", handlers.Lesson.Detail)
		pages.POST("/lessons/:id/pay", handlers.Lesson.Pay)
		pages.GET("/payments/result", handlers.Lesson.PaymentResult)

		pages.GET("/exams", handlers.Exam.List)
		pages.GET("/exams/:id", handlers.Exam.Detail)
		pages.GET("/exams/:id/result", handlers.Exam.Result)
		pages.POST("/exams/:id/start", handlers.TakeExam.Start)
		pages.GET("/exams/:id/take", handlers.TakeExam.Page)
	}

	// ─── 2. Attempt API (Auth, JSON) ───────────────────────────────────
	api := router.Group("/api")
	api.Use(middleware.RequireAuthAPI())
	{
		api.GET("/exams/:id/state", handlers.TakeExam.State)
		api.POST("/exams/:id/answer", handlers.TakeExam.Answer)
		api.POST("/exams/:id/submit", handlers.TakeExam.Submit)
		api.POST("/exams/:id/leave", handlers.TakeExam.Leave)
	}

	// ─── 3. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws")
	ws.Use(middleware.RequireAuthAPI())
	{
		ws.GET("/exams/:id", handlers.WS.Stream)
	}

	// ─── 4. Admin Pages ────────────────────────────────────────────────
	admin := router.Group("/admin")
	admin.Use(middleware.RequireAuth(), middleware.RequireAdmin())
	{
		admin.GET("", handlers.Admin.Dashboard)
		admin.POST("/admins", middleware.RequireSuperAdmin(), handlers.Admin.CreateAdmin)
	}

	// ─── 5. Admin API (JSON) ───────────────────────────────────────────
	adminAPI := router.Group("/api/admin")
	adminAPI.Use(middleware.RequireAuthAPI(), middleware.RequireAdmin())
	{
		adminAPI.POST("/lessons", handlers.Admin.CreateLesson)
		adminAPI.PUT("/lessons/:id", handlers.Admin.UpdateLesson)
		adminAPI.DELETE("/lessons/:id", handlers.Admin.DeleteLesson)

		adminAPI.POST("/exams", handlers.Admin.CreateExam)
		adminAPI.PUT("/exams/:id", handlers.Admin.UpdateExam)
		adminAPI.DELETE("/exams/:id", handlers.Admin.DeleteExam)

		adminAPI.GET("/questions", handlers.Admin.ListQuestions)
		adminAPI.GET("/questions/:id", handlers.Admin.GetQuestion)
		adminAPI.POST("/questions", handlers.Admin.CreateQuestion)
		adminAPI.PUT("/questions/:id", handlers.Admin.UpdateQuestion)
		adminAPI.DELETE("/questions/:id", handlers.Admin.DeleteQuestion)
	}

	return router
}
