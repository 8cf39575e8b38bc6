package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stemsi/classwork-backend/internal/model"
	"github.com/stemsi/classwork-backend/internal/question"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// matchAnswer links the animal to the sound of pair soundID and the bird to its own.
func matchAnswer(animalID, soundID string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(
		`{"matches":[{"left_id":%q,"right_id":%q},{"left_id":"bird","right_id":"s-bird"}]}`, animalID, "s-"+soundID))
}

func correctAnimalResponses(a *model.Assignment) []model.ResponseInput {
	ids := []string{"dog", "cat", "cow"}
	out := make([]model.ResponseInput, len(a.Questions))
	for i, q := range a.Questions {
		out[i] = model.ResponseInput{QuestionID: q.ID, ResponseData: matchAnswer(ids[i], ids[i])}
	}
	return out
}

func TestAnimalSoundsSubmitAndGrade(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := publishedAnimalSounds(t, env)
	student := env.db.addUser("Budi", model.RoleStudent, intPtr(1))
	teacher := env.db.addUser("Bu Sari", model.RoleTeacher, nil)

	sub, err := env.submissions.SubmitAssignment(ctx,
		&model.SubmitAssignmentRequest{AssignmentID: a.ID, Responses: correctAnimalResponses(a)},
		nil, student.ID, student.ClassID)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionStatusSubmitted, sub.Status)

	got, err := env.submissions.GetStudentSubmission(ctx, a.ID, student.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Responses, 3)
	for _, r := range got.Responses {
		require.NotNil(t, r.IsCorrect)
		assert.True(t, *r.IsCorrect)
	}

	score := 100.0
	graded, err := env.submissions.GradeSubmission(ctx, got.ID,
		&model.GradeSubmissionRequest{Score: &score, Feedback: strPtr("Perfect")}, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionStatusGraded, graded.Status)

	got, err = env.submissions.GetStudentSubmission(ctx, a.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionStatusGraded, got.Status)
	require.NotNil(t, got.Score)
	assert.Equal(t, 100.0, *got.Score)
	assert.Equal(t, "Perfect", *got.Feedback)
	assert.Equal(t, teacher.ID, *got.GradedBy)

	require.Len(t, env.events.events, 2)
	assert.Equal(t, model.SubmissionEventSubmitted, env.events.events[0].Type)
	assert.Equal(t, model.SubmissionEventGraded, env.events.events[1].Type)
	assert.Equal(t, a.ID, env.events.events[1].AssignmentID)
}

func TestResubmitReplacesResponses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := publishedAnimalSounds(t, env)
	student := env.db.addUser("Budi", model.RoleStudent, intPtr(1))

	first, err := env.submissions.SubmitAssignment(ctx,
		&model.SubmitAssignmentRequest{AssignmentID: a.ID, Responses: correctAnimalResponses(a)},
		nil, student.ID, student.ClassID)
	require.NoError(t, err)

	second, err := env.submissions.SubmitAssignment(ctx,
		&model.SubmitAssignmentRequest{AssignmentID: a.ID, Responses: []model.ResponseInput{
			{QuestionID: a.Questions[0].ID, ResponseData: matchAnswer("dog", "bird")},
		}},
		nil, student.ID, student.ClassID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.StartedAt, second.StartedAt)
	assert.Len(t, env.db.submissions, 1)
	assert.Equal(t, model.SubmissionStatusSubmitted, second.Status)
	require.Len(t, second.Responses, 1)
	assert.Equal(t, a.Questions[0].ID, second.Responses[0].QuestionID)
	require.NotNil(t, second.Responses[0].IsCorrect)
	assert.False(t, *second.Responses[0].IsCorrect)
}

func TestResubmitAfterGradeReopens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := publishedAnimalSounds(t, env)
	student := env.db.addUser("Budi", model.RoleStudent, intPtr(1))
	req := &model.SubmitAssignmentRequest{AssignmentID: a.ID, Responses: correctAnimalResponses(a)}

	first, err := env.submissions.SubmitAssignment(ctx, req, nil, student.ID, student.ClassID)
	require.NoError(t, err)
	score := 70.0
	_, err = env.submissions.GradeSubmission(ctx, first.ID, &model.GradeSubmissionRequest{Score: &score}, uuid.New())
	require.NoError(t, err)

	sub, err := env.submissions.SubmitAssignment(ctx, req, nil, student.ID, student.ClassID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, sub.ID)
	assert.Equal(t, first.StartedAt, sub.StartedAt)
	assert.Equal(t, model.SubmissionStatusSubmitted, sub.Status)
	assert.Nil(t, sub.Score)
	assert.Nil(t, sub.Feedback)
	assert.Nil(t, sub.GradedBy)
	assert.Nil(t, sub.GradedAt)
}

func TestGetStudentSubmissionBeforeSubmitting(t *testing.T) {
	env := newTestEnv(t)
	a := publishedAnimalSounds(t, env)

	got, err := env.submissions.GetStudentSubmission(context.Background(), a.ID, uuid.New())

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGradeStartedSubmissionDirectly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := publishedAnimalSounds(t, env)
	student := env.db.addUser("Budi", model.RoleStudent, intPtr(1))

	started, err := env.submissions.Start(ctx, a.ID, student.ID, student.ClassID)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionStatusStarted, started.Status)

	again, err := env.submissions.Start(ctx, a.ID, student.ID, student.ClassID)
	require.NoError(t, err)
	assert.Equal(t, started.ID, again.ID)

	score := 0.0
	graded, err := env.submissions.GradeSubmission(ctx, started.ID,
		&model.GradeSubmissionRequest{Score: &score, Feedback: strPtr("Not turned in")}, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionStatusGraded, graded.Status)
	assert.Equal(t, 0.0, *graded.Score)
	assert.Equal(t, "Not turned in", *graded.Feedback)
	assert.Empty(t, graded.Responses)
}

func TestGradeMissingSubmission(t *testing.T) {
	env := newTestEnv(t)
	score := 50.0
	_, err := env.submissions.GradeSubmission(context.Background(), uuid.New(),
		&model.GradeSubmissionRequest{Score: &score}, uuid.New())
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestSubmitRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := publishedAnimalSounds(t, env)
	draft := createAnimalSounds(t, env)
	student := env.db.addUser("Budi", model.RoleStudent, intPtr(1))
	q := a.Questions[0]

	tests := []struct {
		name      string
		target    uuid.UUID
		classID   *int
		responses []model.ResponseInput
		wantErr   error
	}{
		{"unknown assignment", uuid.New(), student.ClassID,
			[]model.ResponseInput{{QuestionID: q.ID, ResponseData: matchAnswer("dog", "dog")}}, ErrAssignmentNotFound},
		{"draft assignment", draft.ID, student.ClassID,
			[]model.ResponseInput{{QuestionID: draft.Questions[0].ID, ResponseData: matchAnswer("dog", "dog")}}, ErrAssignmentNotPublished},
		{"other class", a.ID, intPtr(2),
			[]model.ResponseInput{{QuestionID: q.ID, ResponseData: matchAnswer("dog", "dog")}}, ErrClassMismatch},
		{"foreign question", a.ID, student.ClassID,
			[]model.ResponseInput{{QuestionID: draft.Questions[0].ID, ResponseData: matchAnswer("dog", "dog")}}, ErrQuestionNotInAssignment},
		{"answered twice", a.ID, student.ClassID,
			[]model.ResponseInput{
				{QuestionID: q.ID, ResponseData: matchAnswer("dog", "dog")},
				{QuestionID: q.ID, ResponseData: matchAnswer("dog", "dog")},
			}, ErrDuplicateResponse},
		{"malformed answer", a.ID, student.ClassID,
			[]model.ResponseInput{{QuestionID: q.ID, ResponseData: json.RawMessage(`{"matches":[{"left_id":"lion","right_id":"dog"}]}`)}}, question.ErrInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.submissions.SubmitAssignment(ctx,
				&model.SubmitAssignmentRequest{AssignmentID: tt.target, Responses: tt.responses},
				nil, student.ID, tt.classID)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Empty(t, env.db.submissions)
	assert.Empty(t, env.events.events)
}

func TestListSubmissionsByAssignment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := publishedAnimalSounds(t, env)
	for _, name := range []string{"Citra", "Budi"} {
		s := env.db.addUser(name, model.RoleStudent, intPtr(1))
		_, err := env.submissions.SubmitAssignment(ctx,
			&model.SubmitAssignmentRequest{AssignmentID: a.ID, Responses: correctAnimalResponses(a)},
			nil, s.ID, s.ClassID)
		require.NoError(t, err)
	}

	subs, page, err := env.submissions.ListByAssignment(ctx, a.ID, model.SubmissionStatusSubmitted, 1, 10)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "Budi", subs[0].StudentName)
	assert.Equal(t, 2, page.TotalItems)

	_, _, err = env.submissions.ListByAssignment(ctx, uuid.New(), "", 1, 10)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}
