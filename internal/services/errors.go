package services

import "errors"

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrForbidden              = errors.New("forbidden")
	ErrConflict               = errors.New("conflict")
	ErrNotFound               = errors.New("not found")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrKindMismatch           = errors.New("offering kind mismatch")
	ErrScheduleFull           = errors.New("schedule has no seats available")
	ErrScheduleHasEnrollments = errors.New("schedule has enrolled students")
	ErrDiscountNotUsable      = errors.New("discount code is not usable")
	ErrPaymentFailed          = errors.New("payment failed")
	ErrProcessorUnavailable   = errors.New("payment processor is not configured")
)
