package edumaster

import (
	"context"
	"net/http"
)

// LessonRequest is the admin create/update payload for a lesson.
type LessonRequest struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Video         string  `json:"video"`
	ClassLevel    string  `json:"classLevel"`
	Price         float64 `json:"price"`
	ScheduledDate string  `json:"scheduledDate,omitempty"`
}

// ListLessons returns all lessons visible to the current user. Purchased
// lessons carry IsPaid.
func (c *Client) ListLessons(ctx context.Context) ([]Lesson, error) {
	var lessons []Lesson
	if err := c.get(ctx, "/lesson/", &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}

// GetLesson returns a single lesson by ID.
func (c *Client) GetLesson(ctx context.Context, id string) (*Lesson, error) {
	var lesson Lesson
	if err := c.get(ctx, "/lesson/"+id, &lesson); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// PayLesson initiates the payment flow for a lesson. The returned
// PaymentInfo carries the gateway redirect URL.
func (c *Client) PayLesson(ctx context.Context, id string) (*PaymentInfo, error) {
	var info PaymentInfo
	if err := c.do(ctx, http.MethodPost, "/lesson/pay/"+id, nil, &info, true); err != nil {
		return nil, err
	}
	return &info, nil
}

// CreateLesson creates a lesson (admin only).
func (c *Client) CreateLesson(ctx context.Context, req LessonRequest) error {
	return c.do(ctx, http.MethodPost, "/lesson", req, nil, false)
}

// UpdateLesson updates a lesson (admin only).
func (c *Client) UpdateLesson(ctx context.Context, id string, req LessonRequest) error {
	return c.do(ctx, http.MethodPut, "/lesson/"+id, req, nil, false)
}

// DeleteLesson removes a lesson (admin only).
func (c *Client) DeleteLesson(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/lesson/"+id, nil, nil, false)
}
