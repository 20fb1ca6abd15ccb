package edumaster

import (
	"encoding/json"
	"strings"
)

// User is the authenticated account as returned by the profile endpoint.
type User struct {
	ID          string `json:"_id"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	ClassLevel  string `json:"classLevel,omitempty"`
	Role        string `json:"role,omitempty"`
	IsAdmin     bool   `json:"isAdmin,omitempty"`
}

// Admin reports whether the user may access administrative screens.
func (u *User) Admin() bool {
	if u == nil {
		return false
	}
	return u.IsAdmin || strings.EqualFold(u.Role, "admin") || u.SuperAdmin()
}

// SuperAdmin reports whether the user may manage admin accounts.
func (u *User) SuperAdmin() bool {
	return u != nil && u.Role == "SUPER_ADMIN"
}

// Lesson is a purchasable video lesson.
type Lesson struct {
	ID            string  `json:"_id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Video         string  `json:"video"`
	ClassLevel    string  `json:"classLevel"`
	Price         float64 `json:"price"`
	IsPaid        bool    `json:"isPaid"`
	ScheduledDate string  `json:"scheduledDate,omitempty"`
}

// Exam metadata. Questions may arrive as full objects or bare identifiers;
// QuestionRef absorbs both.
type Exam struct {
	ID          string        `json:"_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Duration    int           `json:"duration"` // minutes
	ClassLevel  string        `json:"classLevel"`
	StartDate   string        `json:"startDate,omitempty"`
	EndDate     string        `json:"endDate,omitempty"`
	Questions   []QuestionRef `json:"questions"`
}

// QuestionType distinguishes the two supported question kinds.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multipleChoice"
	QuestionTypeEssay          QuestionType = "essay"
)

// Question is immutable once fetched for an exam session.
type Question struct {
	ID            string
	Text          string
	Type          QuestionType
	Options       []string
	CorrectAnswer string
	Points        int
}

// UnmarshalJSON normalizes the aliases the API uses interchangeably:
// _id/id, text/title, options/choices, and missing type/points defaults.
func (q *Question) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID            string   `json:"_id"`
		AltID         string   `json:"id"`
		Text          string   `json:"text"`
		Title         string   `json:"title"`
		Type          string   `json:"type"`
		Options       []string `json:"options"`
		Choices       []string `json:"choices"`
		CorrectAnswer string   `json:"correctAnswer"`
		Points        int      `json:"points"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	q.ID = raw.ID
	if q.ID == "" {
		q.ID = raw.AltID
	}
	q.Text = raw.Text
	if q.Text == "" {
		q.Text = raw.Title
	}
	q.Type = QuestionType(raw.Type)
	if q.Type == "" {
		q.Type = QuestionTypeMultipleChoice
	}
	q.Options = raw.Options
	if len(q.Options) == 0 {
		q.Options = raw.Choices
	}
	q.CorrectAnswer = raw.CorrectAnswer
	q.Points = raw.Points
	if q.Points == 0 {
		q.Points = 1
	}
	return nil
}

// MarshalJSON writes the canonical field names back out.
func (q Question) MarshalJSON() ([]byte, error) {
	type out struct {
		ID            string   `json:"_id"`
		Text          string   `json:"text"`
		Type          string   `json:"type"`
		Options       []string `json:"options,omitempty"`
		CorrectAnswer string   `json:"correctAnswer,omitempty"`
		Points        int      `json:"points"`
	}
	return json.Marshal(out{q.ID, q.Text, string(q.Type), q.Options, q.CorrectAnswer, q.Points})
}

// QuestionRef is one entry of an exam's question list: either a bare
// identifier or an inlined full question.
type QuestionRef struct {
	ID string
	// Question is non-nil only when the server inlined the full object
	// (detected by a non-empty prompt, as an id-only stub decodes to one).
	Question *Question
}

func (r *QuestionRef) UnmarshalJSON(b []byte) error {
	var id string
	if err := json.Unmarshal(b, &id); err == nil {
		r.ID = id
		r.Question = nil
		return nil
	}

	var q Question
	if err := json.Unmarshal(b, &q); err != nil {
		return err
	}
	r.ID = q.ID
	if q.Text != "" {
		r.Question = &q
	}
	return nil
}

func (r QuestionRef) MarshalJSON() ([]byte, error) {
	if r.Question != nil {
		return json.Marshal(r.Question)
	}
	return json.Marshal(r.ID)
}

// StartExamResult is the start-exam response payload.
type StartExamResult struct {
	Exam Exam `json:"exam"`
}

// MinuteSecond is the explicit remaining-time pair form.
type MinuteSecond struct {
	Minutes int
	Seconds int
}

// Total returns the pair as whole seconds.
func (m MinuteSecond) Total() int { return m.Minutes*60 + m.Seconds }

// RemainingTimeInfo captures the three shapes the remaining-time endpoint
// answers with: {remainingTime:{minutes,seconds}}, {remainingTime:number}
// or {expiresAt:ISO-instant}. Exactly one of the fields is populated.
type RemainingTimeInfo struct {
	Pair      *MinuteSecond
	Seconds   *float64
	ExpiresAt string
}

func (r *RemainingTimeInfo) UnmarshalJSON(b []byte) error {
	var raw struct {
		RemainingTime json.RawMessage `json:"remainingTime"`
		ExpiresAt     string          `json:"expiresAt"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	r.Pair = nil
	r.Seconds = nil
	r.ExpiresAt = raw.ExpiresAt

	if len(raw.RemainingTime) == 0 {
		return nil
	}

	// The pair form sometimes carries numbers as strings; json.Number
	// tolerates both.
	var pair struct {
		Minutes json.Number `json:"minutes"`
		Seconds json.Number `json:"seconds"`
	}
	if err := json.Unmarshal(raw.RemainingTime, &pair); err == nil &&
		(pair.Minutes != "" || pair.Seconds != "") {
		minutes, _ := pair.Minutes.Int64()
		seconds, _ := pair.Seconds.Int64()
		r.Pair = &MinuteSecond{Minutes: int(minutes), Seconds: int(seconds)}
		return nil
	}

	var secs float64
	if err := json.Unmarshal(raw.RemainingTime, &secs); err == nil {
		r.Seconds = &secs
	}
	return nil
}

// SubmittedAnswer is one (questionId, selectedAnswer) pair of a submission.
type SubmittedAnswer struct {
	QuestionID     string `json:"questionId"`
	SelectedAnswer string `json:"selectedAnswer"`
}

// SubmitExamRequest is the submission payload. Unanswered questions are
// omitted, never sent as null.
type SubmitExamRequest struct {
	Answers []SubmittedAnswer `json:"answers"`
}

// ResultAnswer is the per-question correctness breakdown of a result.
type ResultAnswer struct {
	QuestionID     string `json:"questionId"`
	SelectedAnswer string `json:"selectedAnswer"`
	IsCorrect      bool   `json:"isCorrect"`
	Points         int    `json:"points"`
}

// ExamResult is created server-side in response to a submission and is
// read-only on the client.
type ExamResult struct {
	Exam        *Exam          `json:"exam,omitempty"`
	Score       float64        `json:"score"`
	TotalScore  float64        `json:"totalScore"`
	TimeSpent   int            `json:"timeSpent"` // seconds
	CompletedAt string         `json:"completedAt,omitempty"`
	Answers     []ResultAnswer `json:"answers,omitempty"`
}

// PaymentInfo is the payment-initiation response for a lesson purchase.
type PaymentInfo struct {
	PaymentURL string `json:"paymentUrl"`
	Reference  string `json:"reference,omitempty"`
}
