package edumaster

import (
	"context"
	"net/http"
)

// ExamRequest is the admin create/update payload for an exam.
type ExamRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Duration    int      `json:"duration"` // minutes
	ClassLevel  string   `json:"classLevel"`
	StartDate   string   `json:"startDate,omitempty"`
	EndDate     string   `json:"endDate,omitempty"`
	Questions   []string `json:"questions,omitempty"`
}

// ListExams returns all exams visible to the current user.
func (c *Client) ListExams(ctx context.Context) ([]Exam, error) {
	var exams []Exam
	if err := c.get(ctx, "/exam", &exams); err != nil {
		return nil, err
	}
	return exams, nil
}

// GetExam returns a single exam by ID.
func (c *Client) GetExam(ctx context.Context, id string) (*Exam, error) {
	var exam Exam
	if err := c.get(ctx, "/exam/get/"+id, &exam); err != nil {
		return nil, err
	}
	return &exam, nil
}

// StartExam starts (or resumes) the student's attempt at an exam. The
// server is the source of truth for the attempt's deadline.
func (c *Client) StartExam(ctx context.Context, examID string) (*StartExamResult, error) {
	var result StartExamResult
	if err := c.do(ctx, http.MethodPost, "/studentExam/start/"+examID, nil, &result, true); err != nil {
		return nil, err
	}
	return &result, nil
}

// SubmitExam submits the attempt's answers. The server grades and closes
// the attempt.
func (c *Client) SubmitExam(ctx context.Context, examID string, req SubmitExamRequest) error {
	return c.do(ctx, http.MethodPost, "/studentExam/submit/"+examID, req, nil, false)
}

// RemainingTime asks the server how much attempt time is left.
func (c *Client) RemainingTime(ctx context.Context, examID string) (*RemainingTimeInfo, error) {
	var info RemainingTimeInfo
	if err := c.do(ctx, http.MethodGet, "/studentExam/exams/remaining-time/"+examID, nil, &info, true); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetExamScore returns the student's score summary for a finished attempt.
func (c *Client) GetExamScore(ctx context.Context, examID string) (*ExamResult, error) {
	var result ExamResult
	if err := c.get(ctx, "/studentExam/exams/score/"+examID, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetExamResult returns the full graded result for a finished attempt.
func (c *Client) GetExamResult(ctx context.Context, examID string) (*ExamResult, error) {
	var result ExamResult
	if err := c.get(ctx, "/studentExam/exams/"+examID, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateExam creates an exam (admin only).
func (c *Client) CreateExam(ctx context.Context, req ExamRequest) error {
	return c.do(ctx, http.MethodPost, "/exam", req, nil, false)
}

// UpdateExam updates an exam (admin only).
func (c *Client) UpdateExam(ctx context.Context, id string, req ExamRequest) error {
	return c.do(ctx, http.MethodPut, "/exam/"+id, req, nil, false)
}

// DeleteExam removes an exam (admin only).
func (c *Client) DeleteExam(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/exam/"+id, nil, nil, false)
}
