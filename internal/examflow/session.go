// Package examflow runs the timed exam-attempt state machine: one Session
// per in-progress attempt, driving the countdown, collecting answers and
// submitting them — manually or automatically when time runs out. The
// remote API is the source of truth for the deadline; a session only ever
// counts it down.
package examflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/edumaster/edumaster-web/internal/edumaster"
	"github.com/edumaster/edumaster-web/internal/timeutil"
)

// State is the attempt lifecycle state. The only transitions are
// Loading → InProgress → (Submitting → Submitted) and
// Loading/InProgress → Expired → AutoSubmitting → Submitted; a failed
// submission falls back to InProgress (manual) or Expired (automatic).
// There is no way out of Submitted.
type State string

const (
	StateLoading        State = "LOADING"
	StateInProgress     State = "IN_PROGRESS"
	StateSubmitting     State = "SUBMITTING"
	StateExpired        State = "EXPIRED"
	StateAutoSubmitting State = "AUTO_SUBMITTING"
	StateSubmitted      State = "SUBMITTED"
)

var (
	// ErrTimeExpired rejects manual submission (and answer capture) after
	// the countdown has run out.
	ErrTimeExpired = errors.New("examflow: time expired")
	// ErrSubmitInFlight rejects a submission while another one is running.
	ErrSubmitInFlight = errors.New("examflow: submission already in flight")
	// ErrAlreadySubmitted rejects any action on a finished attempt.
	ErrAlreadySubmitted = errors.New("examflow: already submitted")
	// ErrNotInProgress rejects actions outside the InProgress state.
	ErrNotInProgress = errors.New("examflow: attempt not in progress")
	// ErrCancelled reports that the student declined the unanswered-
	// questions confirmation; no network call was made.
	ErrCancelled = errors.New("examflow: submission cancelled")
	// ErrUnknownQuestion rejects answers for questions outside the attempt.
	ErrUnknownQuestion = errors.New("examflow: unknown question")
)

// ExamAPI is the slice of the EduMaster client the flow depends on.
// *edumaster.Client satisfies it; tests substitute fakes.
type ExamAPI interface {
	StartExam(ctx context.Context, examID string) (*edumaster.StartExamResult, error)
	GetQuestion(ctx context.Context, id string) (*edumaster.Question, error)
	RemainingTime(ctx context.Context, examID string) (*edumaster.RemainingTimeInfo, error)
	SubmitExam(ctx context.Context, examID string, req edumaster.SubmitExamRequest) error
}

// EventType tags events pushed to subscribers (the WebSocket handler).
type EventType string

const (
	EventTick        EventType = "tick"
	EventStateChange EventType = "state"
	EventSubmitted   EventType = "submitted"
	EventSubmitError EventType = "submit_error"
)

// Event is one update of the attempt's visible state.
type Event struct {
	Type      EventType `json:"type"`
	State     State     `json:"state"`
	Remaining int       `json:"remaining"`
	Display   string    `json:"display"`
	Message   string    `json:"message,omitempty"`
}

// Snapshot is a consistent read of the attempt for page rendering.
type Snapshot struct {
	State      State
	Remaining  int
	Display    string
	Exam       *edumaster.Exam
	Questions  []edumaster.Question
	Answers    map[string]string
	Unanswered int
}

// Session is one student's attempt at one exam. All fields behind mu; the
// answer set is written only through SetAnswer and read once per
// submission to build the payload.
type Session struct {
	ExamID string

	api            ExamAPI
	log            zerolog.Logger
	defaultMinutes int

	mu        sync.Mutex
	state     State
	exam      *edumaster.Exam
	questions []edumaster.Question
	answers   map[string]string
	remaining int

	tickerCancel context.CancelFunc
	subs         map[int]chan Event
	nextSubID    int
	closed       bool
}

// NewSession creates an attempt in the Loading state. Call Start to enter
// the flow.
func NewSession(api ExamAPI, examID string, defaultMinutes int, log zerolog.Logger) *Session {
	return &Session{
		ExamID:         examID,
		api:            api,
		log:            log.With().Str("component", "examflow").Str("exam_id", examID).Logger(),
		defaultMinutes: defaultMinutes,
		state:          StateLoading,
		answers:        make(map[string]string),
		subs:           make(map[int]chan Event),
	}
}

// Start launches the attempt: starts it server-side, resolves questions and
// the deadline, and begins the countdown. Any start-exam failure is fatal
// to session entry — the caller reports the error and no partial session
// exists. A deadline already at or below zero enters Expired immediately
// without ever entering InProgress.
func (s *Session) Start(ctx context.Context) error {
	result, err := s.api.StartExam(ctx, s.ExamID)
	if err != nil {
		return err
	}

	questions := s.resolveQuestions(ctx, result.Exam.Questions)

	answers := make(map[string]string, len(questions))
	for _, q := range questions {
		answers[q.ID] = "" // unanswered sentinel
	}

	remaining := s.resolveDeadline(ctx, &result.Exam)

	s.mu.Lock()
	s.exam = &result.Exam
	s.questions = questions
	s.answers = answers

	if remaining <= 0 {
		s.remaining = 0
		s.state = StateExpired
		s.mu.Unlock()
		s.log.Info().Msg("Attempt already expired at start")
		s.publishState(StateExpired, "انتهى وقت الامتحان")
		return nil
	}

	s.remaining = remaining
	s.state = StateInProgress
	tickCtx, cancel := context.WithCancel(context.Background())
	s.tickerCancel = cancel
	s.mu.Unlock()

	go s.run(tickCtx)

	s.log.Info().Int("remaining", remaining).Int("questions", len(questions)).Msg("Attempt started")
	s.publishState(StateInProgress, "")
	return nil
}

// resolveQuestions turns the exam's question list into full questions.
// Inlined objects are used as-is; bare identifiers are fetched
// concurrently, and an individual lookup failure drops that question
// (logged, not fatal to the session).
func (s *Session) resolveQuestions(ctx context.Context, refs []edumaster.QuestionRef) []edumaster.Question {
	resolved := make([]*edumaster.Question, len(refs))
	var wg sync.WaitGroup

	for i, ref := range refs {
		if ref.Question != nil {
			resolved[i] = ref.Question
			continue
		}
		if ref.ID == "" {
			continue
		}
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			q, err := s.api.GetQuestion(ctx, id)
			if err != nil {
				s.log.Warn().Err(err).Str("question_id", id).Msg("Question fetch failed, dropping")
				return
			}
			resolved[i] = q
		}(i, ref.ID)
	}
	wg.Wait()

	questions := make([]edumaster.Question, 0, len(refs))
	for _, q := range resolved {
		if q != nil {
			questions = append(questions, *q)
		}
	}
	return questions
}

// resolveDeadline asks the server for the remaining time and normalizes it
// to whole seconds, in priority order: explicit {minutes,seconds} pair,
// plain numeric seconds, absolute expiresAt instant, then the exam's
// duration. A failed request is non-fatal and falls back to the duration.
func (s *Session) resolveDeadline(ctx context.Context, exam *edumaster.Exam) int {
	fallbackMinutes := exam.Duration
	if fallbackMinutes <= 0 {
		fallbackMinutes = s.defaultMinutes
	}

	info, err := s.api.RemainingTime(ctx, s.ExamID)
	if err != nil {
		s.log.Warn().Err(err).Msg("Remaining-time fetch failed, using exam duration")
		return fallbackMinutes * 60
	}

	switch {
	case info.Pair != nil:
		return info.Pair.Total()
	case info.Seconds != nil:
		return int(*info.Seconds)
	case info.ExpiresAt != "":
		return timeutil.ParseServerTime(info.ExpiresAt, fallbackMinutes)
	default:
		return fallbackMinutes * 60
	}
}

// run is the single countdown goroutine: one 1-second tick loop per
// session, canceled via Stop/Close or when the attempt is submitted.
func (s *Session) run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Session) tick() {
	s.mu.Lock()
	if s.state != StateInProgress && s.state != StateSubmitting {
		s.mu.Unlock()
		return
	}
	if s.remaining > 0 {
		s.remaining--
	}

	if s.state == StateInProgress && s.remaining <= 0 {
		s.state = StateExpired
		s.mu.Unlock()
		s.publishState(StateExpired, "انتهى وقت الامتحان، سيتم إرسال إجاباتك تلقائياً...")
		// Detached from any request context: the submission must outlive
		// the page that happened to be open.
		go s.autoSubmit(context.Background())
		return
	}

	remaining := s.remaining
	s.mu.Unlock()

	s.publish(Event{
		Type:      EventTick,
		State:     StateInProgress,
		Remaining: remaining,
		Display:   timeutil.FormatTimeForDisplay(float64(remaining)),
	})
}

// SetAnswer records the student's current answer for a question,
// overwriting any previous value. Allowed in InProgress only.
func (s *Session) SetAnswer(questionID, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInProgress {
		if s.state == StateExpired || s.state == StateAutoSubmitting {
			return ErrTimeExpired
		}
		return ErrNotInProgress
	}
	if _, ok := s.answers[questionID]; !ok {
		return ErrUnknownQuestion
	}
	s.answers[questionID] = value
	return nil
}

// Submit performs a manual submission. When unanswered questions remain,
// confirm is consulted with their count; declining aborts with ErrCancelled
// and no network call. On server failure the attempt returns to InProgress
// and stays resubmittable.
func (s *Session) Submit(ctx context.Context, confirm func(unanswered int) bool) error {
	s.mu.Lock()
	if err := s.submitGuardLocked(); err != nil {
		s.mu.Unlock()
		return err
	}

	if unanswered := s.unansweredLocked(); unanswered > 0 {
		s.mu.Unlock()
		if confirm == nil || !confirm(unanswered) {
			return ErrCancelled
		}
		s.mu.Lock()
		// The countdown may have run out while the student was deciding.
		if err := s.submitGuardLocked(); err != nil {
			s.mu.Unlock()
			return err
		}
	}

	payload := s.payloadLocked()
	s.state = StateSubmitting
	s.mu.Unlock()
	s.publishState(StateSubmitting, "")

	err := s.api.SubmitExam(ctx, s.ExamID, payload)

	s.mu.Lock()
	if err != nil {
		if s.state == StateSubmitting {
			s.state = StateInProgress
		}
		state := s.state
		s.mu.Unlock()
		s.log.Warn().Err(err).Msg("Manual submission failed")
		s.publish(Event{Type: EventSubmitError, State: state, Message: edumaster.UserMessage(err)})
		return err
	}
	s.finishLocked()
	return nil
}

// autoSubmit runs when the countdown expires. It shares the payload path
// with Submit but skips confirmation, and the Expired-state guard makes a
// second expiry-triggered call a no-op — including the race where a manual
// submission's network reply beats a stale timer callback.
func (s *Session) autoSubmit(ctx context.Context) {
	s.mu.Lock()
	if s.state != StateExpired {
		s.mu.Unlock()
		return
	}
	s.state = StateAutoSubmitting
	payload := s.payloadLocked()
	s.mu.Unlock()
	s.publishState(StateAutoSubmitting, "جاري إرسال إجاباتك تلقائياً...")

	err := s.api.SubmitExam(ctx, s.ExamID, payload)

	s.mu.Lock()
	if err != nil {
		// The student cannot resume answering after expiry regardless of
		// submission outcome: back to Expired, inputs stay disabled.
		s.state = StateExpired
		s.mu.Unlock()
		s.log.Error().Err(err).Msg("Automatic submission failed")
		s.publish(Event{Type: EventSubmitError, State: StateExpired, Message: edumaster.UserMessage(err)})
		return
	}
	s.finishLocked()
}

// finishLocked transitions to Submitted and stops the countdown.
// Called with mu held; releases it.
func (s *Session) finishLocked() {
	s.state = StateSubmitted
	cancel := s.tickerCancel
	s.tickerCancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.log.Info().Msg("Attempt submitted")
	s.publish(Event{Type: EventSubmitted, State: StateSubmitted})
}

// submitGuardLocked maps the current state to the submission-blocking
// error, or nil when a manual submission may proceed.
func (s *Session) submitGuardLocked() error {
	switch s.state {
	case StateInProgress:
		return nil
	case StateExpired, StateAutoSubmitting:
		return ErrTimeExpired
	case StateSubmitting:
		return ErrSubmitInFlight
	case StateSubmitted:
		return ErrAlreadySubmitted
	default:
		return ErrNotInProgress
	}
}

// payloadLocked builds the submission payload: answered questions only, in
// question order, with the most recently stored value.
func (s *Session) payloadLocked() edumaster.SubmitExamRequest {
	answers := make([]edumaster.SubmittedAnswer, 0, len(s.questions))
	for _, q := range s.questions {
		if value := s.answers[q.ID]; value != "" {
			answers = append(answers, edumaster.SubmittedAnswer{
				QuestionID:     q.ID,
				SelectedAnswer: value,
			})
		}
	}
	return edumaster.SubmitExamRequest{Answers: answers}
}

func (s *Session) unansweredLocked() int {
	count := 0
	for _, q := range s.questions {
		if s.answers[q.ID] == "" {
			count++
		}
	}
	return count
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns a consistent copy of the attempt for rendering.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	answers := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	return Snapshot{
		State:      s.state,
		Remaining:  s.remaining,
		Display:    timeutil.FormatTimeForDisplay(float64(s.remaining)),
		Exam:       s.exam,
		Questions:  s.questions,
		Answers:    answers,
		Unanswered: s.unansweredLocked(),
	}
}

// Subscribe registers an event listener. The channel is buffered; slow
// consumers miss events rather than blocking the countdown.
func (s *Session) Subscribe() (int, <-chan Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan Event, 16)
	if s.closed {
		close(ch)
		return id, ch
	}
	s.subs[id] = ch
	return id, ch
}

// Unsubscribe removes and closes a listener channel.
func (s *Session) Unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
	}
}

// Close stops the countdown and releases subscribers. Navigating away
// closes the session; an in-flight submission request is not cancelled.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	cancel := s.tickerCancel
	s.tickerCancel = nil
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (s *Session) publishState(state State, message string) {
	s.mu.Lock()
	remaining := s.remaining
	s.mu.Unlock()
	s.publish(Event{
		Type:      EventStateChange,
		State:     state,
		Remaining: remaining,
		Display:   timeutil.FormatTimeForDisplay(float64(remaining)),
		Message:   message,
	})
}

func (s *Session) publish(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default: // drop rather than stall the timer
		}
	}
}
