package service

import (
	"errors"
	"time"

	"github.com/stemsi/classwork-backend/internal/repository"
)

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

// clampPage applies the default and maximum page sizes.
func clampPage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

// notFound swaps repository.ErrNotFound for the caller's domain error.
func notFound(err, domain error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain
	}
	return err
}

func utcTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
