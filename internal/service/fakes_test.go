package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/classwork-backend/internal/cache"
	"github.com/stemsi/classwork-backend/internal/config"
	"github.com/stemsi/classwork-backend/internal/model"
	"github.com/stemsi/classwork-backend/internal/repository"
	"github.com/stemsi/classwork-backend/internal/storage"
)

// fakeDB is an in-memory stand-in for the PostgreSQL schema. The wrapper
// types below expose it through the store interfaces.
type fakeDB struct {
	mu          sync.Mutex
	classes     map[int]model.ClassRef
	subjects    map[int]model.SubjectRef
	assignments map[uuid.UUID]model.Assignment
	questions   map[uuid.UUID][]model.Question
	attachments []model.Attachment
	submissions map[uuid.UUID]model.Submission
	responses   map[uuid.UUID][]model.QuestionResponse
	links       map[uuid.UUID]model.ShareableLink
	users       map[uuid.UUID]model.User

	// tokenCollisions makes the next n link inserts fail with ErrConflict.
	tokenCollisions int
	// failAssignmentInsert makes CreateWithQuestions fail.
	failAssignmentInsert error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		classes:     map[int]model.ClassRef{1: {ID: 1, Name: "1A", Section: "A"}, 2: {ID: 2, Name: "2B", Section: "B"}},
		subjects:    map[int]model.SubjectRef{1: {ID: 1, Name: "Science"}},
		assignments: map[uuid.UUID]model.Assignment{},
		questions:   map[uuid.UUID][]model.Question{},
		submissions: map[uuid.UUID]model.Submission{},
		responses:   map[uuid.UUID][]model.QuestionResponse{},
		links:       map[uuid.UUID]model.ShareableLink{},
		users:       map[uuid.UUID]model.User{},
	}
}

func (db *fakeDB) addUser(name string, role model.Role, classID *int) model.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	u := model.User{ID: uuid.New(), Email: strings.ToLower(name) + "@school.test", Name: name, Role: role, ClassID: classID}
	db.users[u.ID] = u
	return u
}

// ─── Assignments ────────────────────────────────────────────────────

type fakeAssignments struct{ db *fakeDB }

func (f fakeAssignments) CreateWithQuestions(_ context.Context, a *model.Assignment, qs []model.Question, atts []model.Attachment) error {
	db := f.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.failAssignmentInsert != nil {
		return db.failAssignmentInsert
	}
	if _, ok := db.classes[a.ClassID]; !ok {
		return repository.ErrForeignKey
	}
	if _, ok := db.subjects[a.SubjectID]; !ok {
		return repository.ErrForeignKey
	}

	now := time.Now().UTC()
	a.ID, a.CreatedAt, a.UpdatedAt = uuid.New(), now, now
	row := *a
	row.Questions, row.Attachments = nil, nil
	db.assignments[a.ID] = row

	stored := make([]model.Question, len(qs))
	for i, q := range qs {
		q.ID, q.AssignmentID = uuid.New(), a.ID
		stored[i] = q
	}
	db.questions[a.ID] = stored

	for _, at := range atts {
		at.ID, at.OwnerID, at.CreatedAt = uuid.New(), a.ID, now
		db.attachments = append(db.attachments, at)
	}
	return nil
}

func (f fakeAssignments) GetByID(_ context.Context, id uuid.UUID) (*model.Assignment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.db.assignmentRow(id)
}

func (db *fakeDB) assignmentRow(id uuid.UUID) (*model.Assignment, error) {
	a, ok := db.assignments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	class := db.classes[a.ClassID]
	subject := db.subjects[a.SubjectID]
	a.Class, a.Subject = &class, &subject
	a.QuestionCount = len(db.questions[id])
	return &a, nil
}

func (f fakeAssignments) List(_ context.Context, flt model.AssignmentFilter) ([]model.Assignment, int, error) {
	db := f.db
	db.mu.Lock()
	defer db.mu.Unlock()

	var all []model.Assignment
	for id, a := range db.assignments {
		if flt.ClassID != nil && a.ClassID != *flt.ClassID {
			continue
		}
		if flt.SubjectID != nil && a.SubjectID != *flt.SubjectID {
			continue
		}
		if flt.Status != "" && a.Status != flt.Status {
			continue
		}
		if flt.Search != "" && !strings.Contains(strings.ToLower(a.Title), strings.ToLower(flt.Search)) {
			continue
		}
		row, _ := db.assignmentRow(id)
		all = append(all, *row)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Title < all[j].Title })

	start := (flt.Page - 1) * flt.PerPage
	if start > len(all) {
		start = len(all)
	}
	end := start + flt.PerPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (f fakeAssignments) Update(_ context.Context, id uuid.UUID, req *model.UpdateAssignmentRequest) error {
	db := f.db
	db.mu.Lock()
	defer db.mu.Unlock()
	a, ok := db.assignments[id]
	if !ok {
		return repository.ErrNotFound
	}
	if req.Title != nil {
		a.Title = *req.Title
	}
	if req.Description != nil {
		a.Description = *req.Description
	}
	if req.DueDate != nil {
		d := *req.DueDate
		a.DueDate = &d
	}
	if req.Difficulty != nil {
		a.Difficulty = *req.Difficulty
	}
	if req.Celebration != nil {
		a.Celebration = *req.Celebration
	}
	a.UpdatedAt = time.Now().UTC()
	db.assignments[id] = a
	return nil
}

func (f fakeAssignments) UpdateStatus(_ context.Context, id uuid.UUID, from []model.AssignmentStatus, to model.AssignmentStatus) error {
	db := f.db
	db.mu.Lock()
	defer db.mu.Unlock()
	a, ok := db.assignments[id]
	if !ok {
		return repository.ErrNotFound
	}
	for _, s := range from {
		if a.Status == s {
			a.Status = to
			db.assignments[id] = a
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f fakeAssignments) Delete(_ context.Context, id uuid.UUID) ([]string, error) {
	db := f.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.assignments[id]; !ok {
		return nil, repository.ErrNotFound
	}

	owners := map[uuid.UUID]bool{id: true}
	for sid, s := range db.submissions {
		if s.AssignmentID == id {
			owners[sid] = true
			delete(db.submissions, sid)
			delete(db.responses, sid)
		}
	}
	var keys []string
	kept := db.attachments[:0]
	for _, at := range db.attachments {
		if owners[at.OwnerID] {
			keys = append(keys, at.ObjectKey)
			continue
		}
		kept = append(kept, at)
	}
	db.attachments = kept
	for lid, l := range db.links {
		if l.ContentID == id {
			delete(db.links, lid)
		}
	}
	delete(db.questions, id)
	delete(db.assignments, id)
	return keys, nil
}

func (f fakeAssignments) ListPublishedIDs(_ context.Context) ([]uuid.UUID, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var ids []uuid.UUID
	for id, a := range f.db.assignments {
		if a.Status == model.AssignmentStatusPublished {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ─── Questions ──────────────────────────────────────────────────────

type fakeQuestions struct{ db *fakeDB }

func (f fakeQuestions) ListByAssignment(_ context.Context, assignmentID uuid.UUID) ([]model.Question, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	qs := append([]model.Question(nil), f.db.questions[assignmentID]...)
	sort.Slice(qs, func(i, j int) bool { return qs[i].Order < qs[j].Order })
	return qs, nil
}

func (f fakeQuestions) ReplaceAll(_ context.Context, assignmentID uuid.UUID, qs []model.Question) error {
	db := f.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.assignments[assignmentID]; !ok {
		return repository.ErrNotFound
	}

	stored := make([]model.Question, len(qs))
	keep := map[uuid.UUID]bool{}
	for i, q := range qs {
		q.ID, q.AssignmentID = uuid.New(), assignmentID
		stored[i] = q
		keep[q.ID] = true
	}
	db.questions[assignmentID] = stored

	for sid, rs := range db.responses {
		kept := rs[:0]
		for _, r := range rs {
			if keep[r.QuestionID] || db.submissions[sid].AssignmentID != assignmentID {
				kept = append(kept, r)
			}
		}
		db.responses[sid] = kept
	}
	return nil
}

// ─── Attachments ────────────────────────────────────────────────────

type fakeAttachments struct{ db *fakeDB }

func (f fakeAttachments) Create(_ context.Context, a *model.Attachment) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	a.ID, a.CreatedAt = uuid.New(), time.Now().UTC()
	f.db.attachments = append(f.db.attachments, *a)
	return nil
}

func (f fakeAttachments) ListByOwner(_ context.Context, ownerType model.OwnerType, ownerID uuid.UUID) ([]model.Attachment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Attachment
	for _, a := range f.db.attachments {
		if a.OwnerType == ownerType && a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f fakeAttachments) Delete(_ context.Context, id uuid.UUID) (*model.Attachment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for i, a := range f.db.attachments {
		if a.ID == id {
			f.db.attachments = append(f.db.attachments[:i], f.db.attachments[i+1:]...)
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ─── Submissions ────────────────────────────────────────────────────

type fakeSubmissions struct{ db *fakeDB }

func (db *fakeDB) findSubmission(assignmentID, studentID uuid.UUID) (model.Submission, bool) {
	for _, s := range db.submissions {
		if s.AssignmentID == assignmentID && s.StudentID == studentID {
			return s, true
		}
	}
	return model.Submission{}, false
}

func (db *fakeDB) submissionRow(s model.Submission) *model.Submission {
	s.StudentName = db.users[s.StudentID].Name
	return &s
}

func (f fakeSubmissions) Start(_ context.Context, assignmentID, studentID uuid.UUID) (*model.Submission, error) {
	db := f.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if s, ok := db.findSubmission(assignmentID, studentID); ok {
		return db.submissionRow(s), nil
	}
	s := model.Submission{
		ID:           uuid.New(),
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Status:       model.SubmissionStatusStarted,
		StartedAt:    time.Now().UTC(),
	}
	db.submissions[s.ID] = s
	return db.submissionRow(s), nil
}

// Submit stands in for the single upsert in SubmissionRepository.Submit:
// INSERT ... ON CONFLICT (assignment_id, student_id) DO UPDATE. A new row gets
// started_at = submitted_at = now; a conflicting row keeps started_at, takes
// the new submitted_at and SUBMITTED status, and has score, feedback and
// grader nulled, which reopens a GRADED row. Responses are then replaced
// wholesale and attachments appended. Keep the two in step.
func (f fakeSubmissions) Submit(_ context.Context, sub *model.Submission, responses []model.QuestionResponse, atts []model.Attachment) error {
	db := f.db
	db.mu.Lock()
	defer db.mu.Unlock()

	now := time.Now().UTC()
	s, ok := db.findSubmission(sub.AssignmentID, sub.StudentID)
	if !ok {
		s = model.Submission{ID: uuid.New(), AssignmentID: sub.AssignmentID, StudentID: sub.StudentID, StartedAt: now}
	}
	s.Status = model.SubmissionStatusSubmitted
	s.SubmittedAt = &now
	s.Score, s.Feedback, s.GradedBy, s.GradedAt = nil, nil, nil, nil
	db.submissions[s.ID] = s
	*sub = s

	stored := make([]model.QuestionResponse, len(responses))
	for i, r := range responses {
		r.ID, r.SubmissionID = uuid.New(), s.ID
		stored[i] = r
	}
	db.responses[s.ID] = stored

	for _, at := range atts {
		at.ID, at.OwnerID, at.CreatedAt = uuid.New(), s.ID, now
		db.attachments = append(db.attachments, at)
	}
	return nil
}

func (f fakeSubmissions) Grade(_ context.Context, id uuid.UUID, score *float64, feedback *string, graderID uuid.UUID) (*model.Submission, error) {
	db := f.db
	db.mu.Lock()
	defer db.mu.Unlock()
	s, ok := db.submissions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	now := time.Now().UTC()
	s.Status, s.Score, s.Feedback, s.GradedBy, s.GradedAt = model.SubmissionStatusGraded, score, feedback, &graderID, &now
	db.submissions[id] = s
	return db.submissionRow(s), nil
}

func (f fakeSubmissions) GetByID(_ context.Context, id uuid.UUID) (*model.Submission, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	s, ok := f.db.submissions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return f.db.submissionRow(s), nil
}

func (f fakeSubmissions) GetByAssignmentAndStudent(_ context.Context, assignmentID, studentID uuid.UUID) (*model.Submission, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	s, ok := f.db.findSubmission(assignmentID, studentID)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return f.db.submissionRow(s), nil
}

func (f fakeSubmissions) ListResponses(_ context.Context, submissionID uuid.UUID) ([]model.QuestionResponse, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return append([]model.QuestionResponse(nil), f.db.responses[submissionID]...), nil
}

func (f fakeSubmissions) ListByAssignment(_ context.Context, assignmentID uuid.UUID, status model.SubmissionStatus, page, perPage int) ([]model.Submission, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Submission
	for _, s := range f.db.submissions {
		if s.AssignmentID == assignmentID && (status == "" || s.Status == status) {
			out = append(out, *f.db.submissionRow(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentName < out[j].StudentName })
	return out, len(out), nil
}

// ─── Links ──────────────────────────────────────────────────────────

type fakeLinks struct{ db *fakeDB }

func (f fakeLinks) Create(_ context.Context, l *model.ShareableLink) error {
	db := f.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.tokenCollisions > 0 {
		db.tokenCollisions--
		return repository.ErrConflict
	}
	for _, other := range db.links {
		if other.Token == l.Token {
			return repository.ErrConflict
		}
	}
	l.ID, l.CreatedAt, l.IsActive, l.ViewCount = uuid.New(), time.Now().UTC(), true, 0
	db.links[l.ID] = *l
	return nil
}

func (f fakeLinks) GetActiveByToken(_ context.Context, token string) (*model.ShareableLink, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, l := range f.db.links {
		if l.Token == token && l.IsActive {
			return &l, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakeLinks) GetByID(_ context.Context, id uuid.UUID) (*model.ShareableLink, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	l, ok := f.db.links[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &l, nil
}

func (f fakeLinks) SetActive(_ context.Context, id uuid.UUID, active bool) (*model.ShareableLink, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	l, ok := f.db.links[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	l.IsActive = active
	f.db.links[id] = l
	return &l, nil
}

func (f fakeLinks) Delete(_ context.Context, id uuid.UUID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.links[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.db.links, id)
	return nil
}

func (f fakeLinks) ListByContent(_ context.Context, contentType model.LinkContentType, contentID uuid.UUID) ([]model.ShareableLink, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.ShareableLink
	for _, l := range f.db.links {
		if l.ContentType == contentType && l.ContentID == contentID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f fakeLinks) IncrementViews(_ context.Context, id uuid.UUID, n int, at time.Time) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	l, ok := f.db.links[id]
	if !ok {
		return nil
	}
	l.ViewCount += int64(n)
	l.LastViewedAt = &at
	f.db.links[id] = l
	return nil
}

// ─── Users ──────────────────────────────────────────────────────────

type fakeUsers struct{ db *fakeDB }

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, u := range f.db.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (f fakeUsers) Create(_ context.Context, u *model.User) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, other := range f.db.users {
		if strings.EqualFold(other.Email, u.Email) {
			return repository.ErrConflict
		}
	}
	u.ID = uuid.New()
	u.CreatedAt, u.UpdatedAt = time.Now().UTC(), time.Now().UTC()
	f.db.users[u.ID] = *u
	return nil
}

func (f fakeUsers) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	f.db.users[id] = u
	return nil
}

func (f fakeUsers) ListByRole(_ context.Context, role model.Role, classID *int, page, perPage int) ([]model.User, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.User
	for _, u := range f.db.users {
		if u.Role != role {
			continue
		}
		if classID != nil && (u.ClassID == nil || *u.ClassID != *classID) {
			continue
		}
		out = append(out, u)
	}
	return out, len(out), nil
}

// ─── Redis and storage stand-ins ────────────────────────────────────

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}}
}

func (o *fakeObjects) Put(_ context.Context, b storage.Bucket, key string, body io.Reader) (int64, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return 0, err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.objects[string(b)+"/"+key] = data
	return int64(len(data)), nil
}

func (o *fakeObjects) Delete(_ context.Context, b storage.Bucket, key string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.objects, string(b)+"/"+key)
	return nil
}

func (o *fakeObjects) List(_ context.Context, b storage.Bucket, prefix string) ([]storage.Object, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []storage.Object
	for k, data := range o.objects {
		key := strings.TrimPrefix(k, string(b)+"/")
		if key != k && strings.HasPrefix(key, prefix) {
			out = append(out, storage.Object{Bucket: b, Key: key, Size: int64(len(data))})
		}
	}
	return out, nil
}

func (o *fakeObjects) URL(b storage.Bucket, key string) (string, error) {
	return "https://files.test/" + string(b) + "/" + key, nil
}

func (o *fakeObjects) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.objects)
}

type fakeCache struct {
	mu       sync.Mutex
	payloads map[uuid.UUID]model.AssignmentPayload
	sets     int
	down     bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{payloads: map[uuid.UUID]model.AssignmentPayload{}}
}

func (c *fakeCache) GetPayload(_ context.Context, id uuid.UUID) (*model.AssignmentPayload, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.down {
		return nil, errors.New("redis: connection refused")
	}
	p, ok := c.payloads[id]
	if !ok {
		return nil, cache.ErrMiss
	}
	return &p, nil
}

func (c *fakeCache) SetPayload(_ context.Context, p *model.AssignmentPayload) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.down {
		return errors.New("redis: connection refused")
	}
	c.payloads[p.AssignmentID] = *p
	c.sets++
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.payloads, id)
	return nil
}

func (c *fakeCache) has(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.payloads[id]
	return ok
}

type fakeViews struct {
	mu     sync.Mutex
	queued []uuid.UUID
	down   bool
}

func (v *fakeViews) EnqueueView(_ context.Context, linkID uuid.UUID, _ time.Time) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.down {
		return errors.New("redis: connection refused")
	}
	v.queued = append(v.queued, linkID)
	return nil
}

type fakeEvents struct {
	mu     sync.Mutex
	events []model.SubmissionEvent
}

func (e *fakeEvents) Publish(_ context.Context, ev model.SubmissionEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
	return nil
}

type fakeTokens struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func (t *fakeTokens) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.revoked == nil {
		t.revoked = map[string]time.Duration{}
	}
	t.revoked[jti] = ttl
	return nil
}

func (t *fakeTokens) IsRevoked(_ context.Context, jti string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.revoked[jti]
	return ok, nil
}

// ─── Wiring ─────────────────────────────────────────────────────────

type testEnv struct {
	db          *fakeDB
	objects     *fakeObjects
	cache       *fakeCache
	views       *fakeViews
	events      *fakeEvents
	tokens      *fakeTokens
	cfg         *config.Config
	media       *MediaService
	assignments *AssignmentService
	submissions *SubmissionService
	links       *LinkService
	auth        *AuthService
	users       *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zerolog.Nop()

	env := &testEnv{
		db:      newFakeDB(),
		objects: newFakeObjects(),
		cache:   newFakeCache(),
		views:   &fakeViews{},
		events:  &fakeEvents{},
		tokens:  &fakeTokens{},
		cfg: &config.Config{
			JWTSecret:  "test-secret",
			JWTExpiry:  time.Hour,
			BcryptCost: 4,
		},
	}

	env.media = NewMediaService(env.objects, 1<<20, log)
	env.assignments = NewAssignmentService(
		fakeAssignments{env.db}, fakeQuestions{env.db}, fakeAttachments{env.db},
		env.media, env.cache, log)
	env.submissions = NewSubmissionService(
		fakeSubmissions{env.db}, fakeAssignments{env.db}, fakeQuestions{env.db}, fakeAttachments{env.db},
		env.media, env.events, log)
	env.links = NewLinkService(
		fakeLinks{env.db}, fakeAssignments{env.db}, env.assignments, env.views,
		"https://classwork.test/share/", log)
	env.auth = NewAuthService(env.cfg, fakeUsers{env.db}, env.tokens, log)
	env.users = NewUserService(fakeUsers{env.db}, env.auth, log)
	return env
}

func fileUpload(name string, body []byte) storage.Upload {
	return storage.Upload{
		FileName: name,
		Size:     int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		},
	}
}

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }
