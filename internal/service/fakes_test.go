package service

import (
	"time"

	"github.com/psymetrics/sessioncore/internal/model"
	"gorm.io/gorm"
)

// In-memory repository fakes. They mimic the gorm behaviors the
// services rely on: ErrRecordNotFound on misses and ErrDuplicatedKey on
// unique-index collisions.

type fakeSessionRepo struct {
	sessions map[uint]*model.Session
}

func newFakeSessionRepo(sessions ...*model.Session) *fakeSessionRepo {
	r := &fakeSessionRepo{sessions: make(map[uint]*model.Session)}
	for _, s := range sessions {
		r.sessions[s.ID] = s
	}
	return r
}

func (r *fakeSessionRepo) Create(session *model.Session) error {
	if session.ID == 0 {
		session.ID = uint(len(r.sessions) + 1)
	}
	r.sessions[session.ID] = session
	return nil
}

func (r *fakeSessionRepo) Update(session *model.Session) error {
	r.sessions[session.ID] = session
	return nil
}

func (r *fakeSessionRepo) FindByID(id uint) (*model.Session, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *fakeSessionRepo) FindByIDWithModules(id uint) (*model.Session, error) {
	return r.FindByID(id)
}

func (r *fakeSessionRepo) FindByIDs(ids []uint) ([]model.Session, error) {
	var out []model.Session
	for _, id := range ids {
		if s, ok := r.sessions[id]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) UpdateStatus(id uint, from, to string) (int64, error) {
	s, ok := r.sessions[id]
	if !ok || s.Status != from {
		return 0, nil
	}
	s.Status = to
	return 1, nil
}

type fakeParticipantRepo struct {
	participants map[uint]*model.SessionParticipant
	nextID       uint
}

func newFakeParticipantRepo(participants ...*model.SessionParticipant) *fakeParticipantRepo {
	r := &fakeParticipantRepo{participants: make(map[uint]*model.SessionParticipant), nextID: 1}
	for _, p := range participants {
		if p.ID == 0 {
			p.ID = r.nextID
		}
		if p.ID >= r.nextID {
			r.nextID = p.ID + 1
		}
		r.participants[p.ID] = p
	}
	return r
}

func (r *fakeParticipantRepo) Create(p *model.SessionParticipant) error {
	for _, existing := range r.participants {
		if existing.SessionID == p.SessionID && existing.UserID == p.UserID {
			return gorm.ErrDuplicatedKey
		}
	}
	p.ID = r.nextID
	r.nextID++
	r.participants[p.ID] = p
	return nil
}

func (r *fakeParticipantRepo) Update(p *model.SessionParticipant) error {
	r.participants[p.ID] = p
	return nil
}

func (r *fakeParticipantRepo) FindByID(id uint) (*model.SessionParticipant, error) {
	p, ok := r.participants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *fakeParticipantRepo) FindBySessionAndUser(sessionID, userID uint) (*model.SessionParticipant, error) {
	for _, p := range r.participants {
		if p.SessionID == sessionID && p.UserID == userID {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeParticipantRepo) FindBySession(sessionID uint) ([]model.SessionParticipant, error) {
	var out []model.SessionParticipant
	for _, p := range r.participants {
		if p.SessionID == sessionID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeParticipantRepo) CountBySession(sessionID uint) (int64, error) {
	var count int64
	for _, p := range r.participants {
		if p.SessionID == sessionID {
			count++
		}
	}
	return count, nil
}

type fakeTestRepo struct {
	tests map[uint]*model.Test
}

func newFakeTestRepo(tests ...*model.Test) *fakeTestRepo {
	r := &fakeTestRepo{tests: make(map[uint]*model.Test)}
	for _, t := range tests {
		r.tests[t.ID] = t
	}
	return r
}

func (r *fakeTestRepo) FindByID(id uint) (*model.Test, error) {
	t, ok := r.tests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (r *fakeTestRepo) FindByIDWithQuestions(id uint) (*model.Test, error) {
	return r.FindByID(id)
}

type fakeQuestionRepo struct {
	questions []model.Question
}

func (r *fakeQuestionRepo) FindByID(id uint) (*model.Question, error) {
	for i := range r.questions {
		if r.questions[i].ID == id {
			return &r.questions[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeQuestionRepo) FindByTestID(testID uint) ([]model.Question, error) {
	var out []model.Question
	for _, q := range r.questions {
		if q.TestID == testID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *fakeQuestionRepo) CountByTestID(testID uint) (int64, error) {
	qs, _ := r.FindByTestID(testID)
	return int64(len(qs)), nil
}

type fakeAttemptRepo struct {
	attempts map[uint]*model.TestAttempt
	nextID   uint
}

func newFakeAttemptRepo(attempts ...*model.TestAttempt) *fakeAttemptRepo {
	r := &fakeAttemptRepo{attempts: make(map[uint]*model.TestAttempt), nextID: 1}
	for _, a := range attempts {
		if a.ID == 0 {
			a.ID = r.nextID
		}
		if a.ID >= r.nextID {
			r.nextID = a.ID + 1
		}
		r.attempts[a.ID] = a
	}
	return r
}

func (r *fakeAttemptRepo) Create(a *model.TestAttempt) error {
	for _, existing := range r.attempts {
		if existing.SessionID == a.SessionID && existing.UserID == a.UserID && existing.TestID == a.TestID {
			return gorm.ErrDuplicatedKey
		}
	}
	a.ID = r.nextID
	r.nextID++
	r.attempts[a.ID] = a
	return nil
}

func (r *fakeAttemptRepo) Update(a *model.TestAttempt) error {
	r.attempts[a.ID] = a
	return nil
}

func (r *fakeAttemptRepo) FindByID(id uint) (*model.TestAttempt, error) {
	a, ok := r.attempts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *fakeAttemptRepo) FindByIDWithAnswers(id uint) (*model.TestAttempt, error) {
	return r.FindByID(id)
}

func (r *fakeAttemptRepo) FindByIdentity(sessionID, userID, testID uint) (*model.TestAttempt, error) {
	for _, a := range r.attempts {
		if a.SessionID == sessionID && a.UserID == userID && a.TestID == testID {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAttemptRepo) FindBySession(sessionID uint) ([]model.TestAttempt, error) {
	var out []model.TestAttempt
	for _, a := range r.attempts {
		if a.SessionID == sessionID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAttemptRepo) FindBySessionAndUser(sessionID, userID uint) ([]model.TestAttempt, error) {
	var out []model.TestAttempt
	for _, a := range r.attempts {
		if a.SessionID == sessionID && a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAttemptRepo) FindByUser(userID uint) ([]model.TestAttempt, error) {
	var out []model.TestAttempt
	for _, a := range r.attempts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

type fakeAnswerRepo struct {
	answers []model.Answer
}

func (r *fakeAnswerRepo) FindByAttempt(attemptID uint) ([]model.Answer, error) {
	var out []model.Answer
	for _, a := range r.answers {
		if a.TestAttemptID == attemptID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAnswerRepo) FindByAttemptAndQuestion(attemptID, questionID uint) (*model.Answer, error) {
	for i := range r.answers {
		if r.answers[i].TestAttemptID == attemptID && r.answers[i].QuestionID == questionID {
			return &r.answers[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// fakeAttemptStore backs the transactional attempt writes. Reads hand
// out copies, mirroring a locked row loaded into memory; the guarded
// updates act on the stored row, so flipping finalizeBeforeWrite
// simulates another transaction finalizing between the read and the
// write.
type fakeAttemptStore struct {
	attempt   *model.TestAttempt
	test      *model.Test
	questions map[uint]*model.Question
	answers   map[uint]*model.Answer

	finalizeBeforeWrite bool
}

func (s *fakeAttemptStore) LockAttempt(id uint) (*model.TestAttempt, error) {
	if s.attempt == nil || s.attempt.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s.attempt
	return &cp, nil
}

func (s *fakeAttemptStore) FindTest(id uint) (*model.Test, error) {
	if s.test == nil || s.test.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s.test
	return &cp, nil
}

func (s *fakeAttemptStore) FindQuestion(testID, questionID uint) (*model.Question, error) {
	q, ok := s.questions[questionID]
	if !ok || q.TestID != testID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *q
	return &cp, nil
}

func (s *fakeAttemptStore) FindAnswer(attemptID, questionID uint) (*model.Answer, error) {
	a, ok := s.answers[questionID]
	if !ok || a.TestAttemptID != attemptID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *fakeAttemptStore) SaveAttempt(attempt *model.TestAttempt) error {
	cp := *attempt
	s.attempt = &cp
	return nil
}

func (s *fakeAttemptStore) SaveAnswer(answer *model.Answer) error {
	if s.answers == nil {
		s.answers = make(map[uint]*model.Answer)
	}
	cp := *answer
	s.answers[answer.QuestionID] = &cp
	return nil
}

func (s *fakeAttemptStore) UpdateProgressWhileInProgress(attemptID uint, answeredCount, timeSpentSeconds int) (int64, error) {
	if s.finalizeBeforeWrite {
		s.attempt.Status = model.AttemptStatusCompleted
		s.finalizeBeforeWrite = false
	}
	if s.attempt == nil || s.attempt.ID != attemptID || s.attempt.Status != model.AttemptStatusInProgress {
		return 0, nil
	}
	s.attempt.AnsweredCount = answeredCount
	s.attempt.TimeSpentSeconds = timeSpentSeconds
	return 1, nil
}

func (s *fakeAttemptStore) FinalizeWhileInProgress(attemptID uint, completedAt time.Time, timeSpentSeconds int) (int64, error) {
	if s.finalizeBeforeWrite {
		s.attempt.Status = model.AttemptStatusCompleted
		s.finalizeBeforeWrite = false
	}
	if s.attempt == nil || s.attempt.ID != attemptID || s.attempt.Status != model.AttemptStatusInProgress {
		return 0, nil
	}
	s.attempt.Status = model.AttemptStatusCompleted
	s.attempt.CompletedAt = &completedAt
	s.attempt.TimeSpentSeconds = timeSpentSeconds
	return 1, nil
}
