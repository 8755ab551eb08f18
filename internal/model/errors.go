package model

import "errors"

var (
	ErrAnalysisFailed         = errors.New("analysis failed")
	ErrResolutionNoteRequired = errors.New("resolution note required")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrJurisdictionMismatch   = errors.New("jurisdiction unknown")
	ErrNotFound               = errors.New("not found")
	ErrAccessDenied           = errors.New("access denied")
	ErrAlreadyRegistered      = errors.New("already registered")
	ErrUnknownOfficer         = errors.New("unknown officer")
	ErrTooManyEvidence        = errors.New("too many evidence files")
	ErrInvalidEmail           = errors.New("invalid email")
	ErrValidation             = errors.New("invalid request")
)
