package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/edumaster/edumaster-web/internal/config"
	"github.com/edumaster/edumaster-web/internal/examflow"
	"github.com/edumaster/edumaster-web/internal/middleware"
	"github.com/edumaster/edumaster-web/internal/response"
	"github.com/edumaster/edumaster-web/internal/session"
	"github.com/edumaster/edumaster-web/internal/validator"
)

// TakeExamHandler drives a live exam attempt: page render, answer capture
// and both submission paths. The state machine itself lives in examflow;
// this handler translates HTTP into its calls.
type TakeExamHandler struct {
	flow     *examflow.Manager
	sessions *session.Manager
	cfg      *config.Config
	log      zerolog.Logger
}

// NewTakeExamHandler creates a new TakeExamHandler.
func NewTakeExamHandler(flow *examflow.Manager, sessions *session.Manager, cfg *config.Config, log zerolog.Logger) *TakeExamHandler {
	return &TakeExamHandler{
		flow:     flow,
		sessions: sessions,
		cfg:      cfg,
		log:      log.With().Str("component", "take_exam_handler").Logger(),
	}
}

// Start godoc
// POST /exams/:id/start
// Starts (or reattaches to) the attempt, then sends the browser to the
// exam page. A start failure never leaves a half-created attempt behind.
func (h *TakeExamHandler) Start(c *gin.Context) {
	auth := middleware.GetAuth(c)
	examID := c.Param("id")

	if _, err := h.flow.Start(c.Request.Context(), auth.SessionID, auth.Token, examID); err != nil {
		renderAPIError(c, h.sessions, h.cfg.CookieSecure, err)
		return
	}

	c.Redirect(http.StatusFound, "/exams/"+examID+"/take")
}

// Page godoc
// GET /exams/:id/take
func (h *TakeExamHandler) Page(c *gin.Context) {
	auth := middleware.GetAuth(c)
	examID := c.Param("id")

	sess, ok := h.flow.Get(auth.SessionID, examID)
	if !ok {
		c.Redirect(http.StatusFound, "/exams/"+examID)
		return
	}

	snap := sess.Snapshot()
	if snap.State == examflow.StateSubmitted {
		c.Redirect(http.StatusFound, "/exams/"+examID+"/result")
		return
	}

	c.HTML(http.StatusOK, "take_exam.html", pageData(c, snap.Exam.Title, gin.H{
		"Exam":      snap.Exam,
		"Questions": snap.Questions,
		"Answers":   snap.Answers,
		"State":     snap.State,
		"Display":   snap.Display,
	}))
}

type answerRequest struct {
	QuestionID string `json:"questionId" binding:"required"`
	Value      string `json:"value"`
}

// Answer godoc
// POST /api/exams/:id/answer
// Records the latest value for one question.
func (h *TakeExamHandler) Answer(c *gin.Context) {
	auth := middleware.GetAuth(c)

	sess, ok := h.flow.Get(auth.SessionID, c.Param("id"))
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrAttemptNotFound)
		return
	}

	var req answerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := sess.SetAnswer(req.QuestionID, req.Value); err != nil {
		h.flowError(c, sess, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"unanswered": sess.Snapshot().Unanswered})
}

type submitRequest struct {
	Confirmed bool `json:"confirmed"`
}

// Submit godoc
// POST /api/exams/:id/submit
// When unanswered questions remain and the request is not yet confirmed,
// answers 409 with the count; the page asks the student and retries with
// confirmed=true.
func (h *TakeExamHandler) Submit(c *gin.Context) {
	auth := middleware.GetAuth(c)
	examID := c.Param("id")

	sess, ok := h.flow.Get(auth.SessionID, examID)
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrAttemptNotFound)
		return
	}

	var req submitRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	err := sess.Submit(c.Request.Context(), func(int) bool { return req.Confirmed })
	if err != nil {
		h.flowError(c, sess, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"redirect": "/exams/" + examID + "/result"})
}

// State godoc
// GET /api/exams/:id/state
// Lets a reconnecting page resync without waiting for the next tick.
func (h *TakeExamHandler) State(c *gin.Context) {
	auth := middleware.GetAuth(c)

	sess, ok := h.flow.Get(auth.SessionID, c.Param("id"))
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrAttemptNotFound)
		return
	}

	snap := sess.Snapshot()
	response.Success(c, http.StatusOK, gin.H{
		"state":      snap.State,
		"remaining":  snap.Remaining,
		"display":    snap.Display,
		"unanswered": snap.Unanswered,
	})
}

// Leave godoc
// POST /api/exams/:id/leave
// Tears the attempt down when the student abandons the exam page.
func (h *TakeExamHandler) Leave(c *gin.Context) {
	auth := middleware.GetAuth(c)
	h.flow.Remove(auth.SessionID, c.Param("id"))
	response.Success(c, http.StatusOK, gin.H{})
}

// flowError maps state machine errors onto the JSON envelope. Remote API
// failures pass through with their own message.
func (h *TakeExamHandler) flowError(c *gin.Context, sess *examflow.Session, err error) {
	switch {
	case errors.Is(err, examflow.ErrCancelled):
		// The page needs the count to phrase the confirmation dialog.
		response.FailWithData(c, http.StatusConflict, response.ErrSubmissionCancelled,
			gin.H{"unanswered": sess.Snapshot().Unanswered})
	case errors.Is(err, examflow.ErrTimeExpired):
		response.Fail(c, http.StatusConflict, response.ErrTimeExpired)
	case errors.Is(err, examflow.ErrSubmitInFlight):
		response.Fail(c, http.StatusConflict, response.ErrSubmitInFlight)
	case errors.Is(err, examflow.ErrAlreadySubmitted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
	case errors.Is(err, examflow.ErrUnknownQuestion):
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownQuestion)
	case errors.Is(err, examflow.ErrNotInProgress):
		response.Fail(c, http.StatusConflict, response.ErrAttemptNotFound)
	default:
		jsonAPIError(c, err)
	}
}
