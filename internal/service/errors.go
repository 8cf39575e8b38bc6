package service

import "errors"

// Domain errors returned by the services. Handlers map them to response codes.
var (
	ErrAssignmentNotFound      = errors.New("assignment not found")
	ErrAssignmentNotPublished  = errors.New("assignment is not published")
	ErrInvalidStatusTransition = errors.New("assignment status change not allowed")
	ErrNoQuestions             = errors.New("assignment has no questions")
	ErrQuestionNotInAssignment = errors.New("question does not belong to assignment")
	ErrDuplicateResponse       = errors.New("question answered more than once")
	ErrClassMismatch           = errors.New("assignment belongs to another class")

	ErrSubmissionNotFound = errors.New("submission not found")

	ErrLinkNotFound    = errors.New("share link not found")
	ErrLinkContentGone = errors.New("shared content is no longer available")
	ErrTokenExhausted  = errors.New("could not allocate a unique share token")

	ErrAttachmentNotFound = errors.New("attachment not found")
)
