package edumaster

import (
	"context"
	"net/http"
)

// QuestionRequest is the admin create/update payload for a question.
type QuestionRequest struct {
	Text          string   `json:"text"`
	Type          string   `json:"type"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correctAnswer,omitempty"`
	Points        int      `json:"points"`
	Exam          string   `json:"exam,omitempty"`
}

// ListQuestions returns all questions (admin only).
func (c *Client) ListQuestions(ctx context.Context) ([]Question, error) {
	var questions []Question
	if err := c.get(ctx, "/question", &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// GetQuestion returns a single question by ID. Students only ever see
// questions of exams they have started.
func (c *Client) GetQuestion(ctx context.Context, id string) (*Question, error) {
	var question Question
	if err := c.get(ctx, "/question/get/"+id, &question); err != nil {
		return nil, err
	}
	return &question, nil
}

// CreateQuestion creates a question (admin only).
func (c *Client) CreateQuestion(ctx context.Context, req QuestionRequest) error {
	return c.do(ctx, http.MethodPost, "/question", req, nil, false)
}

// UpdateQuestion updates a question (admin only).
func (c *Client) UpdateQuestion(ctx context.Context, id string, req QuestionRequest) error {
	return c.do(ctx, http.MethodPut, "/question/"+id, req, nil, false)
}

// DeleteQuestion removes a question (admin only).
func (c *Client) DeleteQuestion(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/question/"+id, nil, nil, false)
}
