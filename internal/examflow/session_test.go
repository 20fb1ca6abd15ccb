package examflow

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/edumaster/edumaster-web/internal/edumaster"
)

type fakeAPI struct {
	mu sync.Mutex

	exam         edumaster.Exam
	questions    map[string]edumaster.Question
	remaining    *edumaster.RemainingTimeInfo
	remainingErr error
	startErr     error
	submitErr    error

	submits []edumaster.SubmitExamRequest
}

func (f *fakeAPI) StartExam(_ context.Context, _ string) (*edumaster.StartExamResult, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &edumaster.StartExamResult{Exam: f.exam}, nil
}

func (f *fakeAPI) GetQuestion(_ context.Context, id string) (*edumaster.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.questions[id]
	if !ok {
		return nil, &edumaster.APIError{Status: 404, Message: "غير موجود"}
	}
	return &q, nil
}

func (f *fakeAPI) RemainingTime(_ context.Context, _ string) (*edumaster.RemainingTimeInfo, error) {
	if f.remainingErr != nil {
		return nil, f.remainingErr
	}
	return f.remaining, nil
}

func (f *fakeAPI) SubmitExam(_ context.Context, _ string, req edumaster.SubmitExamRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submits = append(f.submits, req)
	return nil
}

func (f *fakeAPI) submitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.submits)
}

func floatPtr(v float64) *float64 { return &v }

func threeQuestionExam() edumaster.Exam {
	return edumaster.Exam{
		ID:       "e1",
		Title:    "امتحان تجريبي",
		Duration: 30,
		Questions: []edumaster.QuestionRef{
			{ID: "q1", Question: &edumaster.Question{ID: "q1", Text: "س١", Type: edumaster.QuestionTypeMultipleChoice, Options: []string{"أ", "ب"}}},
			{ID: "q2", Question: &edumaster.Question{ID: "q2", Text: "س٢", Type: edumaster.QuestionTypeEssay}},
			{ID: "q3", Question: &edumaster.Question{ID: "q3", Text: "س٣", Type: edumaster.QuestionTypeMultipleChoice, Options: []string{"ج", "د"}}},
		},
	}
}

func startedSession(t *testing.T, api *fakeAPI) *Session {
	t.Helper()
	sess := NewSession(api, "e1", 30, zerolog.Nop())
	if err := sess.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(sess.Close)
	return sess
}

func TestStartEntersInProgress(t *testing.T) {
	api := &fakeAPI{
		exam:      threeQuestionExam(),
		remaining: &edumaster.RemainingTimeInfo{Pair: &edumaster.MinuteSecond{Minutes: 2, Seconds: 5}},
	}
	sess := startedSession(t, api)

	snap := sess.Snapshot()
	if snap.State != StateInProgress {
		t.Fatalf("state = %s, want %s", snap.State, StateInProgress)
	}
	if snap.Remaining != 125 {
		t.Errorf("remaining = %d, want 125 from the {minutes,seconds} pair", snap.Remaining)
	}
	if len(snap.Questions) != 3 {
		t.Errorf("questions = %d, want 3", len(snap.Questions))
	}
	if snap.Unanswered != 3 {
		t.Errorf("unanswered = %d, want 3", snap.Unanswered)
	}
}

func TestStartWithNonPositiveTimeExpiresWithoutAutoSubmit(t *testing.T) {
	api := &fakeAPI{
		exam:      threeQuestionExam(),
		remaining: &edumaster.RemainingTimeInfo{Seconds: floatPtr(0)},
	}
	sess := startedSession(t, api)

	if got := sess.State(); got != StateExpired {
		t.Fatalf("state = %s, want %s without ever entering InProgress", got, StateExpired)
	}
	if n := api.submitCount(); n != 0 {
		t.Errorf("submissions = %d, want 0 on immediate expiry", n)
	}
	if err := sess.SetAnswer("q1", "أ"); !errors.Is(err, ErrTimeExpired) {
		t.Errorf("SetAnswer after expiry: err = %v, want ErrTimeExpired", err)
	}
	if err := sess.Submit(context.Background(), nil); !errors.Is(err, ErrTimeExpired) {
		t.Errorf("Submit after expiry: err = %v, want ErrTimeExpired", err)
	}
}

func TestRemainingTimeFailureFallsBackToDuration(t *testing.T) {
	api := &fakeAPI{
		exam:         threeQuestionExam(), // 30 minutes
		remainingErr: &edumaster.APIError{Status: 500, Message: "خطأ"},
	}
	sess := startedSession(t, api)

	snap := sess.Snapshot()
	if snap.State != StateInProgress {
		t.Fatalf("state = %s, want %s despite remaining-time failure", snap.State, StateInProgress)
	}
	if snap.Remaining != 1800 {
		t.Errorf("remaining = %d, want 1800 from the 30-minute duration", snap.Remaining)
	}
}

func TestQuestionFetchFailureDropsQuestion(t *testing.T) {
	exam := threeQuestionExam()
	exam.Questions = []edumaster.QuestionRef{
		{ID: "q1"},
		{ID: "missing"},
		{ID: "q3"},
	}
	api := &fakeAPI{
		exam: exam,
		questions: map[string]edumaster.Question{
			"q1": {ID: "q1", Text: "س١"},
			"q3": {ID: "q3", Text: "س٣"},
		},
		remaining: &edumaster.RemainingTimeInfo{Seconds: floatPtr(600)},
	}
	sess := startedSession(t, api)

	snap := sess.Snapshot()
	if len(snap.Questions) != 2 {
		t.Fatalf("questions = %d, want 2 with the failed fetch dropped", len(snap.Questions))
	}
	if snap.Questions[0].ID != "q1" || snap.Questions[1].ID != "q3" {
		t.Errorf("question order not preserved: %q, %q", snap.Questions[0].ID, snap.Questions[1].ID)
	}
}

func TestSubmitPayloadOmitsUnansweredAndKeepsLatest(t *testing.T) {
	api := &fakeAPI{
		exam:      threeQuestionExam(),
		remaining: &edumaster.RemainingTimeInfo{Seconds: floatPtr(600)},
	}
	sess := startedSession(t, api)

	if err := sess.SetAnswer("q3", "ج"); err != nil {
		t.Fatal(err)
	}
	if err := sess.SetAnswer("q1", "أ"); err != nil {
		t.Fatal(err)
	}
	if err := sess.SetAnswer("q1", "ب"); err != nil { // overwrite
		t.Fatal(err)
	}

	confirmed := 0
	err := sess.Submit(context.Background(), func(unanswered int) bool {
		confirmed = unanswered
		return true
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if confirmed != 1 {
		t.Errorf("confirm called with %d unanswered, want 1", confirmed)
	}
	if got := sess.State(); got != StateSubmitted {
		t.Fatalf("state = %s, want %s", got, StateSubmitted)
	}

	if n := api.submitCount(); n != 1 {
		t.Fatalf("submissions = %d, want 1", n)
	}
	got := api.submits[0].Answers
	want := []edumaster.SubmittedAnswer{
		{QuestionID: "q1", SelectedAnswer: "ب"},
		{QuestionID: "q3", SelectedAnswer: "ج"},
	}
	if len(got) != len(want) {
		t.Fatalf("payload = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("payload[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDeclinedConfirmationAborts(t *testing.T) {
	api := &fakeAPI{
		exam:      threeQuestionExam(),
		remaining: &edumaster.RemainingTimeInfo{Seconds: floatPtr(600)},
	}
	sess := startedSession(t, api)

	err := sess.Submit(context.Background(), func(int) bool { return false })
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}
	if n := api.submitCount(); n != 0 {
		t.Errorf("submissions = %d, want 0 after a declined confirmation", n)
	}
	if got := sess.State(); got != StateInProgress {
		t.Errorf("state = %s, want %s", got, StateInProgress)
	}
}

func TestFullyAnsweredSubmitSkipsConfirmation(t *testing.T) {
	api := &fakeAPI{
		exam:      threeQuestionExam(),
		remaining: &edumaster.RemainingTimeInfo{Seconds: floatPtr(600)},
	}
	sess := startedSession(t, api)

	for _, id := range []string{"q1", "q2", "q3"} {
		if err := sess.SetAnswer(id, "إجابة"); err != nil {
			t.Fatal(err)
		}
	}

	err := sess.Submit(context.Background(), func(int) bool {
		t.Error("confirm must not run when everything is answered")
		return false
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
}

func TestSubmitFailureReturnsToInProgress(t *testing.T) {
	api := &fakeAPI{
		exam:      threeQuestionExam(),
		remaining: &edumaster.RemainingTimeInfo{Seconds: floatPtr(600)},
		submitErr: &edumaster.APIError{Status: 500, Message: "فشل الإرسال"},
	}
	sess := startedSession(t, api)

	if err := sess.Submit(context.Background(), func(int) bool { return true }); err == nil {
		t.Fatal("expected submission error")
	}
	if got := sess.State(); got != StateInProgress {
		t.Fatalf("state = %s, want %s after a failed submission", got, StateInProgress)
	}

	// Still resubmittable.
	api.mu.Lock()
	api.submitErr = nil
	api.mu.Unlock()
	if err := sess.Submit(context.Background(), func(int) bool { return true }); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if got := sess.State(); got != StateSubmitted {
		t.Errorf("state = %s, want %s after retry", got, StateSubmitted)
	}
}

func TestAutoSubmitRunsOnceAndSendsAnswered(t *testing.T) {
	api := &fakeAPI{
		exam:      threeQuestionExam(),
		remaining: &edumaster.RemainingTimeInfo{Seconds: floatPtr(600)},
	}
	sess := startedSession(t, api)

	if err := sess.SetAnswer("q2", "مقال"); err != nil {
		t.Fatal(err)
	}

	// Force expiry the way the ticker does.
	sess.mu.Lock()
	sess.remaining = 0
	sess.state = StateExpired
	sess.mu.Unlock()

	sess.autoSubmit(context.Background())
	sess.autoSubmit(context.Background()) // duplicate trigger is a no-op

	if n := api.submitCount(); n != 1 {
		t.Fatalf("submissions = %d, want exactly 1", n)
	}
	got := api.submits[0].Answers
	if len(got) != 1 || got[0].QuestionID != "q2" || got[0].SelectedAnswer != "مقال" {
		t.Errorf("payload = %+v, want the single answered question", got)
	}
	if state := sess.State(); state != StateSubmitted {
		t.Errorf("state = %s, want %s", state, StateSubmitted)
	}
}

func TestAutoSubmitFailureStaysExpired(t *testing.T) {
	api := &fakeAPI{
		exam:      threeQuestionExam(),
		remaining: &edumaster.RemainingTimeInfo{Seconds: floatPtr(600)},
		submitErr: &edumaster.APIError{Status: 500, Message: "فشل"},
	}
	sess := startedSession(t, api)

	sess.mu.Lock()
	sess.remaining = 0
	sess.state = StateExpired
	sess.mu.Unlock()

	sess.autoSubmit(context.Background())

	if got := sess.State(); got != StateExpired {
		t.Fatalf("state = %s, want %s after failed auto-submission", got, StateExpired)
	}
	if err := sess.SetAnswer("q1", "أ"); !errors.Is(err, ErrTimeExpired) {
		t.Errorf("inputs must stay disabled, got err = %v", err)
	}
}

func TestSetAnswerRejectsUnknownQuestion(t *testing.T) {
	api := &fakeAPI{
		exam:      threeQuestionExam(),
		remaining: &edumaster.RemainingTimeInfo{Seconds: floatPtr(600)},
	}
	sess := startedSession(t, api)

	if err := sess.SetAnswer("nope", "أ"); !errors.Is(err, ErrUnknownQuestion) {
		t.Errorf("err = %v, want ErrUnknownQuestion", err)
	}
}

func TestSubscribeReceivesSubmittedEvent(t *testing.T) {
	api := &fakeAPI{
		exam:      threeQuestionExam(),
		remaining: &edumaster.RemainingTimeInfo{Seconds: floatPtr(600)},
	}
	sess := startedSession(t, api)

	id, ch := sess.Subscribe()
	defer sess.Unsubscribe(id)

	if err := sess.Submit(context.Background(), func(int) bool { return true }); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	var sawSubmitted bool
	for {
		select {
		case ev := <-ch:
			if ev.Type == EventSubmitted {
				sawSubmitted = true
			}
		default:
		}
		if sawSubmitted {
			break
		}
		if len(ch) == 0 {
			break
		}
	}
	if !sawSubmitted {
		t.Error("expected an EventSubmitted on the subscriber channel")
	}
}

func TestManagerReattachesLiveAttempt(t *testing.T) {
	api := &fakeAPI{
		exam:      threeQuestionExam(),
		remaining: &edumaster.RemainingTimeInfo{Seconds: floatPtr(600)},
	}
	m := NewManager(func(string) ExamAPI { return api }, 30, zerolog.Nop())
	defer m.CloseAll()

	first, err := m.Start(context.Background(), "s1", "tok", "e1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	second, err := m.Start(context.Background(), "s1", "tok", "e1")
	if err != nil {
		t.Fatalf("Start again: %v", err)
	}
	if first != second {
		t.Error("reload should reattach to the live attempt, not restart it")
	}

	if _, ok := m.Get("s1", "e1"); !ok {
		t.Error("Get should find the live attempt")
	}
	if _, ok := m.Get("other", "e1"); ok {
		t.Error("attempts must be scoped to the browser session")
	}

	m.Remove("s1", "e1")
	if _, ok := m.Get("s1", "e1"); ok {
		t.Error("Remove should forget the attempt")
	}
}

func TestManagerReplacesSubmittedAttempt(t *testing.T) {
	api := &fakeAPI{
		exam:      threeQuestionExam(),
		remaining: &edumaster.RemainingTimeInfo{Seconds: floatPtr(600)},
	}
	m := NewManager(func(string) ExamAPI { return api }, 30, zerolog.Nop())
	defer m.CloseAll()

	first, err := m.Start(context.Background(), "s1", "tok", "e1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := first.Submit(context.Background(), func(int) bool { return true }); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	second, err := m.Start(context.Background(), "s1", "tok", "e1")
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if first == second {
		t.Error("a submitted attempt should be replaced by a fresh one")
	}
}
