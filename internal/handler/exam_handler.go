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

// ExamHandler renders the exam catalogue and result pages. The attempt
// itself lives in TakeExamHandler.
type ExamHandler struct {
	sessions *session.Manager
	api      *edumaster.Client
	cfg      *config.Config
	log      zerolog.Logger
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(sessions *session.Manager, api *edumaster.Client, cfg *config.Config, log zerolog.Logger) *ExamHandler {
	return &ExamHandler{
		sessions: sessions,
		api:      api,
		cfg:      cfg,
		log:      log.With().Str("component", "exam_handler").Logger(),
	}
}

// List godoc
// GET /exams
func (h *ExamHandler) List(c *gin.Context) {
	auth := middleware.GetAuth(c)

	exams, err := h.api.WithToken(auth.Token).ListExams(c.Request.Context())
	if err != nil {
		renderAPIError(c, h.sessions, h.cfg.CookieSecure, err)
		return
	}

	c.HTML(http.StatusOK, "exams.html", pageData(c, "الامتحانات", gin.H{
		"Exams": exams,
	}))
}

// Detail godoc
// GET /exams/:id
func (h *ExamHandler) Detail(c *gin.Context) {
	auth := middleware.GetAuth(c)

	exam, err := h.api.WithToken(auth.Token).GetExam(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderAPIError(c, h.sessions, h.cfg.CookieSecure, err)
		return
	}

	c.HTML(http.StatusOK, "exam_detail.html", pageData(c, exam.Title, gin.H{
		"Exam": exam,
	}))
}

// Result godoc
// GET /exams/:id/result
// Prefers the detailed result; falls back to the bare score when the API
// only has that.
func (h *ExamHandler) Result(c *gin.Context) {
	auth := middleware.GetAuth(c)
	examID := c.Param("id")
	api := h.api.WithToken(auth.Token)

	result, err := api.GetExamResult(c.Request.Context(), examID)
	if err != nil {
		result, err = api.GetExamScore(c.Request.Context(), examID)
	}
	if err != nil {
		renderAPIError(c, h.sessions, h.cfg.CookieSecure, err)
		return
	}

	c.HTML(http.StatusOK, "exam_result.html", pageData(c, "نتيجة الامتحان", gin.H{
		"Result": result,
	}))
}
