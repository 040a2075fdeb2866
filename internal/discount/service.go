package discount

import (
	"context"
	"strings"
)

type Service interface {
	Validate(ctx context.Context, code string) (*DiscountCode, error)
	List(ctx context.Context) ([]*DiscountCode, error)
	Create(ctx context.Context, code *DiscountCode) error
	Delete(ctx context.Context, code string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Validate resolves a user-supplied code. Codes are matched case-insensitively
// and stored uppercase.
func (s *service) Validate(ctx context.Context, code string) (*DiscountCode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrInvalidCode
	}
	return s.repo.GetByCode(ctx, code)
}

func (s *service) List(ctx context.Context) ([]*DiscountCode, error) {
	return s.repo.List(ctx)
}

func (s *service) Create(ctx context.Context, code *DiscountCode) error {
	code.Code = strings.ToUpper(strings.TrimSpace(code.Code))
	if code.Code == "" {
		return ErrInvalidCode
	}
	if code.Type != TypePercentage && code.Type != TypeFixed {
		return ErrInvalidCode
	}
	if code.Value <= 0 {
		return ErrInvalidCode
	}
	return s.repo.Create(ctx, code)
}

func (s *service) Delete(ctx context.Context, code string) error {
	return s.repo.Delete(ctx, strings.ToUpper(strings.TrimSpace(code)))
}
