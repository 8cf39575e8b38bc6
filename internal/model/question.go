package model

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/stemsi/classwork-backend/internal/question"
)

// Question is one exercise inside an assignment. QuestionData's shape
// depends on QuestionType.
type Question struct {
	ID           uuid.UUID       `json:"id"`
	AssignmentID uuid.UUID       `json:"assignment_id"`
	QuestionType question.Type   `json:"question_type"`
	QuestionText string          `json:"question_text"`
	QuestionData json.RawMessage `json:"question_data"`
	Order        int             `json:"order"`
	Hint         *string         `json:"hint,omitempty"`
	AudioURL     *string         `json:"audio_url,omitempty"`
	FeedbackText *string         `json:"feedback_text,omitempty"`
}

// QuestionInput is an authored question. Its position in the request list
// becomes its order.
type QuestionInput struct {
	QuestionType question.Type   `json:"question_type" binding:"required,questiontype"`
	QuestionText string          `json:"question_text" binding:"required,max=2000"`
	QuestionData json.RawMessage `json:"question_data" binding:"required"`
	Hint         *string         `json:"hint" binding:"omitempty,max=1000"`
	AudioURL     *string         `json:"audio_url" binding:"omitempty,url"`
	FeedbackText *string         `json:"feedback_text" binding:"omitempty,max=2000"`
}

// ReplaceQuestionsRequest replaces an assignment's full question list.
type ReplaceQuestionsRequest struct {
	Questions []QuestionInput `json:"questions" binding:"omitempty,dive"`
}

// QuestionForStudent is a question with its answer key removed.
type QuestionForStudent struct {
	ID           uuid.UUID       `json:"id"`
	QuestionType question.Type   `json:"question_type"`
	QuestionText string          `json:"question_text"`
	QuestionData json.RawMessage `json:"question_data"`
	Order        int             `json:"order"`
	Hint         *string         `json:"hint,omitempty"`
	AudioURL     *string         `json:"audio_url,omitempty"`
}
