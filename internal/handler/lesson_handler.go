package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/edumaster/edumaster-web/internal/config"
	"github.com/edumaster/edumaster-web/internal/edumaster"
	"github.com/edumaster/edumaster-web/internal/middleware"
	"github.com/edumaster/edumaster-web/internal/session"
)

// LessonHandler renders the lesson catalogue and runs the purchase flow.
type LessonHandler struct {
	sessions *session.Manager
	api      *edumaster.Client
	cfg      *config.Config
	log      zerolog.Logger
}

// NewLessonHandler creates a new LessonHandler.
func NewLessonHandler(sessions *session.Manager, api *edumaster.Client, cfg *config.Config, log zerolog.Logger) *LessonHandler {
	return &LessonHandler{
		sessions: sessions,
		api:      api,
		cfg:      cfg,
		log:      log.With().Str("component", "lesson_handler").Logger(),
	}
}

// List godoc
// GET /lessons
func (h *LessonHandler) List(c *gin.Context) {
	auth := middleware.GetAuth(c)

	lessons, err := h.api.WithToken(auth.Token).ListLessons(c.Request.Context())
	if err != nil {
		renderAPIError(c, h.sessions, h.cfg.CookieSecure, err)
		return
	}

	c.HTML(http.StatusOK, "lessons.html", pageData(c, "الدروس", gin.H{
		"Lessons": lessons,
	}))
}

// Detail godoc
// GET /lessons/:id
func (h *LessonHandler) Detail(c *gin.Context) {
	auth := middleware.GetAuth(c)

	lesson, err := h.api.WithToken(auth.Token).GetLesson(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderAPIError(c, h.sessions, h.cfg.CookieSecure, err)
		return
	}

	c.HTML(http.StatusOK, "lesson_detail.html", pageData(c, lesson.Title, gin.H{
		"Lesson": lesson,
	}))
}

// Pay godoc
// POST /lessons/:id/pay
// Starts a purchase and sends the browser to the payment provider.
func (h *LessonHandler) Pay(c *gin.Context) {
	auth := middleware.GetAuth(c)
	lessonID := c.Param("id")

	info, err := h.api.WithToken(auth.Token).PayLesson(c.Request.Context(), lessonID)
	if err != nil {
		renderAPIError(c, h.sessions, h.cfg.CookieSecure, err)
		return
	}

	if info.PaymentURL == "" {
		// Some purchases complete without an external checkout step.
		c.Redirect(http.StatusFound, "/lessons/"+lessonID)
		return
	}

	h.log.Info().Str("lesson_id", lessonID).Msg("Payment started")
	c.Redirect(http.StatusFound, info.PaymentURL)
}

// PaymentResult godoc
// GET /payments/result
// Landing page the payment gateway returns the browser to.
func (h *LessonHandler) PaymentResult(c *gin.Context) {
	success := c.Query("status") == "success"
	title := "نتيجة الدفع"
	c.HTML(http.StatusOK, "payment_result.html", pageData(c, title, gin.H{
		"Success":  success,
		"LessonID": c.Query("lessonId"),
	}))
}
