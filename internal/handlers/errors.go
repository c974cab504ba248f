package handlers

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/potluck-signup/internal/signup"
	"github.com/gdg-garage/potluck-signup/internal/slots"
	"github.com/gdg-garage/potluck-signup/internal/store"
	"github.com/sirupsen/logrus"
)

// apiError maps domain errors onto HTTP statuses.
func apiError(err error, msg string) error {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, signup.ErrUnknownCategory):
		return huma.Error404NotFound(msg, err)
	case errors.Is(err, store.ErrConflict), errors.Is(err, signup.ErrSlotTaken):
		return huma.Error409Conflict(msg, err)
	case errors.Is(err, store.ErrInvalid),
		errors.Is(err, signup.ErrEmptyEntry),
		errors.Is(err, signup.ErrWrongKind),
		errors.Is(err, slots.ErrIndexOutOfRange):
		return huma.Error422UnprocessableEntity(msg, err)
	}

	logrus.WithError(err).Error(msg)
	return huma.Error500InternalServerError(msg)
}
