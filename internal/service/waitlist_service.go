package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"grievance-service/internal/model"

	"github.com/go-playground/validator/v10"
)

type WaitlistStore interface {
	Add(ctx context.Context, email string) error
}

type WaitlistService struct {
	store    WaitlistStore
	validate *validator.Validate
}

func NewWaitlistService(store WaitlistStore) *WaitlistService {
	return &WaitlistService{store: store, validate: validator.New()}
}

// Registers an email for launch updates. A repeat address is reported as
// ErrAlreadyRegistered rather than a failure.
func (s *WaitlistService) Join(ctx context.Context, email string) (*model.WaitlistResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, fmt.Errorf("%w: %s", model.ErrInvalidEmail, email)
	}

	if err := s.store.Add(ctx, email); err != nil {
		if errors.Is(err, model.ErrAlreadyRegistered) {
			return &model.WaitlistResponse{Success: false, Message: "This email is already on the waitlist"}, err
		}
		return nil, err
	}
	return &model.WaitlistResponse{Success: true, Message: "You have joined the waitlist"}, nil
}
