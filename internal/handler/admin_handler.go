package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/edumaster/edumaster-web/internal/config"
	"github.com/edumaster/edumaster-web/internal/edumaster"
	"github.com/edumaster/edumaster-web/internal/middleware"
	"github.com/edumaster/edumaster-web/internal/response"
	"github.com/edumaster/edumaster-web/internal/session"
	"github.com/edumaster/edumaster-web/internal/validator"
)

// AdminHandler serves the admin dashboard and the content-management JSON
// endpoints (lessons, exams, questions, admin accounts). Authorization is
// enforced twice: route guards here, and the remote API on every call.
type AdminHandler struct {
	sessions *session.Manager
	api      *edumaster.Client
	cfg      *config.Config
	log      zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(sessions *session.Manager, api *edumaster.Client, cfg *config.Config, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		sessions: sessions,
		api:      api,
		cfg:      cfg,
		log:      log.With().Str("component", "admin_handler").Logger(),
	}
}

// Dashboard godoc
// GET /admin
func (h *AdminHandler) Dashboard(c *gin.Context) {
	auth := middleware.GetAuth(c)
	api := h.api.WithToken(auth.Token)

	users, err := api.ListUsers(c.Request.Context())
	if err != nil {
		renderAPIError(c, h.sessions, h.cfg.CookieSecure, err)
		return
	}

	var admins []edumaster.User
	if auth.IsSuperAdmin() {
		admins, err = api.ListAdmins(c.Request.Context())
		if err != nil {
			renderAPIError(c, h.sessions, h.cfg.CookieSecure, err)
			return
		}
	}

	c.HTML(http.StatusOK, "admin.html", pageData(c, "لوحة التحكم", gin.H{
		"Users":  users,
		"Admins": admins,
	}))
}

type createAdminForm struct {
	FullName    string `form:"fullName" json:"fullName" binding:"required"`
	Email       string `form:"email" json:"email" binding:"required,email"`
	Password    string `form:"password" json:"password" binding:"required,min=6"`
	CPassword   string `form:"cpassword" json:"cpassword" binding:"required,eqfield=Password"`
	PhoneNumber string `form:"phoneNumber" json:"phoneNumber"`
}

// CreateAdmin godoc
// POST /admin/admins
func (h *AdminHandler) CreateAdmin(c *gin.Context) {
	auth := middleware.GetAuth(c)

	var form createAdminForm
	if fields := validator.BindForm(c, &form); fields != nil {
		c.HTML(http.StatusBadRequest, "error.html", pageData(c, "خطأ", gin.H{
			"Message": response.GetMessage(response.ErrValidation),
		}))
		return
	}

	err := h.api.WithToken(auth.Token).CreateAdmin(c.Request.Context(), edumaster.CreateAdminRequest{
		FullName:    form.FullName,
		Email:       form.Email,
		Password:    form.Password,
		CPassword:   form.CPassword,
		PhoneNumber: form.PhoneNumber,
	})
	if err != nil {
		renderAPIError(c, h.sessions, h.cfg.CookieSecure, err)
		return
	}

	h.log.Info().Str("email", form.Email).Msg("Admin account created")
	c.Redirect(http.StatusFound, "/admin")
}

// ─── Lesson management (JSON) ───────────────────────────────────────

// CreateLesson godoc
// POST /api/admin/lessons
func (h *AdminHandler) CreateLesson(c *gin.Context) {
	auth := middleware.GetAuth(c)

	var req edumaster.LessonRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.api.WithToken(auth.Token).CreateLesson(c.Request.Context(), req); err != nil {
		jsonAPIError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{})
}

// UpdateLesson godoc
// PUT /api/admin/lessons/:id
func (h *AdminHandler) UpdateLesson(c *gin.Context) {
	auth := middleware.GetAuth(c)

	var req edumaster.LessonRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.api.WithToken(auth.Token).UpdateLesson(c.Request.Context(), c.Param("id"), req); err != nil {
		jsonAPIError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// DeleteLesson godoc
// DELETE /api/admin/lessons/:id
func (h *AdminHandler) DeleteLesson(c *gin.Context) {
	auth := middleware.GetAuth(c)

	if err := h.api.WithToken(auth.Token).DeleteLesson(c.Request.Context(), c.Param("id")); err != nil {
		jsonAPIError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// ─── Exam management (JSON) ─────────────────────────────────────────

// CreateExam godoc
// POST /api/admin/exams
func (h *AdminHandler) CreateExam(c *gin.Context) {
	auth := middleware.GetAuth(c)

	var req edumaster.ExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.api.WithToken(auth.Token).CreateExam(c.Request.Context(), req); err != nil {
		jsonAPIError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{})
}

// UpdateExam godoc
// PUT /api/admin/exams/:id
func (h *AdminHandler) UpdateExam(c *gin.Context) {
	auth := middleware.GetAuth(c)

	var req edumaster.ExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.api.WithToken(auth.Token).UpdateExam(c.Request.Context(), c.Param("id"), req); err != nil {
		jsonAPIError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// DeleteExam godoc
// DELETE /api/admin/exams/:id
func (h *AdminHandler) DeleteExam(c *gin.Context) {
	auth := middleware.GetAuth(c)

	if err := h.api.WithToken(auth.Token).DeleteExam(c.Request.Context(), c.Param("id")); err != nil {
		jsonAPIError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// ─── Question management (JSON) ─────────────────────────────────────

// ListQuestions godoc
// GET /api/admin/questions
func (h *AdminHandler) ListQuestions(c *gin.Context) {
	auth := middleware.GetAuth(c)

	questions, err := h.api.WithToken(auth.Token).ListQuestions(c.Request.Context())
	if err != nil {
		jsonAPIError(c, err)
		return
	}
	response.Success(c, http.StatusOK, questions)
}

// GetQuestion godoc
// GET /api/admin/questions/:id
func (h *AdminHandler) GetQuestion(c *gin.Context) {
	auth := middleware.GetAuth(c)

	question, err := h.api.WithToken(auth.Token).GetQuestion(c.Request.Context(), c.Param("id"))
	if err != nil {
		jsonAPIError(c, err)
		return
	}
	response.Success(c, http.StatusOK, question)
}

// CreateQuestion godoc
// POST /api/admin/questions
func (h *AdminHandler) CreateQuestion(c *gin.Context) {
	auth := middleware.GetAuth(c)

	var req edumaster.QuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.api.WithToken(auth.Token).CreateQuestion(c.Request.Context(), req); err != nil {
		jsonAPIError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{})
}

// UpdateQuestion godoc
// PUT /api/admin/questions/:id
func (h *AdminHandler) UpdateQuestion(c *gin.Context) {
	auth := middleware.GetAuth(c)

	var req edumaster.QuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.api.WithToken(auth.Token).UpdateQuestion(c.Request.Context(), c.Param("id"), req); err != nil {
		jsonAPIError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// DeleteQuestion godoc
// DELETE /api/admin/questions/:id
func (h *AdminHandler) DeleteQuestion(c *gin.Context) {
	auth := middleware.GetAuth(c)

	if err := h.api.WithToken(auth.Token).DeleteQuestion(c.Request.Context(), c.Param("id")); err != nil {
		jsonAPIError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}
