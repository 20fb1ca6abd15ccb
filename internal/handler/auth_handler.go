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

// AuthHandler handles login, registration, password flows and the profile
// pages. All credential checks happen on the remote API; this handler only
// moves form input there and session state back.
type AuthHandler struct {
	sessions *session.Manager
	api      *edumaster.Client
	cfg      *config.Config
	log      zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(sessions *session.Manager, api *edumaster.Client, cfg *config.Config, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		api:      api,
		cfg:      cfg,
		log:      log.With().Str("component", "auth_handler").Logger(),
	}
}

type loginForm struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required"`
	Next     string `form:"next" json:"-"`
}

// ShowLogin godoc
// GET /login
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	if middleware.GetAuth(c).IsAuthenticated() {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	data := gin.H{"Next": c.Query("next")}
	if c.Query("registered") != "" {
		data["Notice"] = "تم إنشاء حسابك بنجاح. سجل الدخول الآن."
	}
	if c.Query("expired") != "" {
		data["Notice"] = response.GetMessage(response.ErrSessionInvalidated)
	}
	c.HTML(http.StatusOK, "login.html", pageData(c, "تسجيل الدخول", data))
}

// Login godoc
// POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var form loginForm
	if fields := validator.BindForm(c, &form); fields != nil {
		c.HTML(http.StatusBadRequest, "login.html", pageData(c, "تسجيل الدخول", gin.H{
			"Error": response.GetMessage(response.ErrValidation),
			"Email": form.Email,
			"Next":  form.Next,
		}))
		return
	}

	rec, err := h.sessions.Login(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		c.HTML(http.StatusUnauthorized, "login.html", pageData(c, "تسجيل الدخول", gin.H{
			"Error": edumaster.UserMessage(err),
			"Email": form.Email,
			"Next":  form.Next,
		}))
		return
	}

	setSessionCookie(c, rec.ID, h.cfg.SessionTTL, h.cfg.CookieSecure)
	c.Redirect(http.StatusFound, safeNext(form.Next))
}

type registerForm struct {
	FullName    string `form:"fullName" json:"fullName" binding:"required"`
	Email       string `form:"email" json:"email" binding:"required,email"`
	Password    string `form:"password" json:"password" binding:"required,min=6"`
	CPassword   string `form:"cpassword" json:"cpassword" binding:"required,eqfield=Password"`
	PhoneNumber string `form:"phoneNumber" json:"phoneNumber" binding:"required"`
	ClassLevel  string `form:"classLevel" json:"classLevel" binding:"required"`
}

// ShowRegister godoc
// GET /register
func (h *AuthHandler) ShowRegister(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", pageData(c, "إنشاء حساب", nil))
}

// Register godoc
// POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var form registerForm
	if fields := validator.BindForm(c, &form); fields != nil {
		c.HTML(http.StatusBadRequest, "register.html", pageData(c, "إنشاء حساب", gin.H{
			"Error":  response.GetMessage(response.ErrValidation),
			"Fields": fields,
			"Form": map[string]string{
				"fullName":    form.FullName,
				"email":       form.Email,
				"phoneNumber": form.PhoneNumber,
			},
		}))
		return
	}

	err := h.api.Register(c.Request.Context(), edumaster.RegisterRequest{
		FullName:    form.FullName,
		Email:       form.Email,
		Password:    form.Password,
		CPassword:   form.CPassword,
		PhoneNumber: form.PhoneNumber,
		ClassLevel:  form.ClassLevel,
	})
	if err != nil {
		c.HTML(apiErrorStatus(err), "register.html", pageData(c, "إنشاء حساب", gin.H{
			"Error": edumaster.UserMessage(err),
			"Form": map[string]string{
				"fullName":    form.FullName,
				"email":       form.Email,
				"phoneNumber": form.PhoneNumber,
			},
		}))
		return
	}

	c.Redirect(http.StatusFound, "/login?registered=1")
}

// ShowForgotPassword godoc
// GET /forgot-password
func (h *AuthHandler) ShowForgotPassword(c *gin.Context) {
	c.HTML(http.StatusOK, "forgot_password.html", pageData(c, "استعادة كلمة المرور", nil))
}

// ForgotPassword godoc
// POST /forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	email := c.PostForm("email")
	if err := h.api.ForgotPassword(c.Request.Context(), email); err != nil {
		c.HTML(apiErrorStatus(err), "forgot_password.html", pageData(c, "استعادة كلمة المرور", gin.H{
			"Error": edumaster.UserMessage(err),
			"Email": email,
		}))
		return
	}
	c.HTML(http.StatusOK, "forgot_password.html", pageData(c, "استعادة كلمة المرور", gin.H{
		"Sent":  true,
		"Email": email,
	}))
}

type resetPasswordForm struct {
	Email       string `form:"email" json:"email" binding:"required,email"`
	OTP         string `form:"otp" json:"otp" binding:"required"`
	NewPassword string `form:"newPassword" json:"newPassword" binding:"required,min=6"`
}

// ShowResetPassword godoc
// GET /reset-password
func (h *AuthHandler) ShowResetPassword(c *gin.Context) {
	c.HTML(http.StatusOK, "reset_password.html", pageData(c, "تعيين كلمة مرور جديدة", gin.H{
		"Email": c.Query("email"),
	}))
}

// ResetPassword godoc
// POST /reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var form resetPasswordForm
	if fields := validator.BindForm(c, &form); fields != nil {
		c.HTML(http.StatusBadRequest, "reset_password.html", pageData(c, "تعيين كلمة مرور جديدة", gin.H{
			"Error": response.GetMessage(response.ErrValidation),
			"Email": form.Email,
		}))
		return
	}

	err := h.api.ResetPassword(c.Request.Context(), edumaster.ResetPasswordRequest{
		Email:       form.Email,
		OTP:         form.OTP,
		NewPassword: form.NewPassword,
	})
	if err != nil {
		c.HTML(apiErrorStatus(err), "reset_password.html", pageData(c, "تعيين كلمة مرور جديدة", gin.H{
			"Error": edumaster.UserMessage(err),
			"Email": form.Email,
		}))
		return
	}

	c.Redirect(http.StatusFound, "/login?registered=1")
}

// Logout godoc
// POST /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	auth := middleware.GetAuth(c)
	h.sessions.Logout(c.Request.Context(), auth.SessionID)
	clearSessionCookie(c, h.cfg.CookieSecure)
	c.Redirect(http.StatusFound, "/login")
}

// ShowProfile godoc
// GET /profile
func (h *AuthHandler) ShowProfile(c *gin.Context) {
	data := gin.H{}
	if c.Query("saved") != "" {
		data["Notice"] = "تم حفظ التغييرات بنجاح."
	}
	c.HTML(http.StatusOK, "profile.html", pageData(c, "حسابي", data))
}

// UpdateProfile godoc
// POST /profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	auth := middleware.GetAuth(c)

	fields := map[string]string{}
	for _, name := range []string{"fullName", "phoneNumber", "classLevel"} {
		if value := c.PostForm(name); value != "" {
			fields[name] = value
		}
	}

	if err := h.api.WithToken(auth.Token).UpdateProfile(c.Request.Context(), fields); err != nil {
		renderAPIError(c, h.sessions, h.cfg.CookieSecure, err)
		return
	}

	h.sessions.Refresh(c.Request.Context(), auth.SessionID)
	c.Redirect(http.StatusFound, "/profile?saved=1")
}

type updatePasswordForm struct {
	OldPassword string `form:"oldPassword" json:"oldPassword" binding:"required"`
	NewPassword string `form:"newPassword" json:"newPassword" binding:"required,min=6"`
	CPassword   string `form:"cpassword" json:"cpassword" binding:"required,eqfield=NewPassword"`
}

// UpdatePassword godoc
// POST /profile/password
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	auth := middleware.GetAuth(c)

	var form updatePasswordForm
	if fields := validator.BindForm(c, &form); fields != nil {
		c.HTML(http.StatusBadRequest, "profile.html", pageData(c, "حسابي", gin.H{
			"Error":  response.GetMessage(response.ErrValidation),
			"Fields": fields,
		}))
		return
	}

	err := h.api.WithToken(auth.Token).UpdatePassword(c.Request.Context(), edumaster.UpdatePasswordRequest{
		OldPassword: form.OldPassword,
		NewPassword: form.NewPassword,
		CPassword:   form.CPassword,
	})
	if err != nil {
		renderAPIError(c, h.sessions, h.cfg.CookieSecure, err)
		return
	}

	c.Redirect(http.StatusFound, "/profile?saved=1")
}

// DeleteAccount godoc
// POST /profile/delete
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	auth := middleware.GetAuth(c)

	if err := h.api.WithToken(auth.Token).DeleteAccount(c.Request.Context()); err != nil {
		renderAPIError(c, h.sessions, h.cfg.CookieSecure, err)
		return
	}

	h.sessions.Logout(c.Request.Context(), auth.SessionID)
	clearSessionCookie(c, h.cfg.CookieSecure)
	h.log.Info().Str("user_id", auth.User.ID).Msg("Account deleted")
	c.Redirect(http.StatusFound, "/login")
}

// ShowDashboard godoc
// GET /dashboard
func (h *AuthHandler) ShowDashboard(c *gin.Context) {
	c.HTML(http.StatusOK, "dashboard.html", pageData(c, "الرئيسية", nil))
}
