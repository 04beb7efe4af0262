package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidToken indicates an unparseable or mismatched API token.
var ErrInvalidToken = errors.New("users: invalid token")

// Service handles authentication and profile logic.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate resolves a bearer API token of the form "pf_<id>_<secret>"
// against the stored bcrypt hash.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	parts := strings.SplitN(token, "_", 3)
	if len(parts) != 3 || parts[0] != "pf" {
		return nil, ErrInvalidToken
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.TokenHash), []byte(parts[2])); err != nil {
		return nil, ErrInvalidToken
	}
	return user, nil
}

// Profile returns the user's profile.
func (s *Service) Profile(ctx context.Context, id int64) (*User, error) {
	return s.repo.Get(ctx, id)
}

// UpdateProfileInput for profile edits.
type UpdateProfileInput struct {
	Name       *string
	TaxID      *string
	EntityType *EntityType
}

// UpdateProfile applies profile edits, validating the entity type.
func (s *Service) UpdateProfile(ctx context.Context, id int64, input UpdateProfileInput) (*User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.TaxID != nil {
		user.TaxID = *input.TaxID
	}
	if input.EntityType != nil {
		if *input.EntityType != EntityNatural && *input.EntityType != EntityJuridica {
			return nil, fmt.Errorf("users: unknown entity type %q", *input.EntityType)
		}
		user.EntityType = *input.EntityType
	}
	user.UpdatedAt = time.Now()
	if err := s.repo.UpdateProfile(ctx, *user); err != nil {
		return nil, err
	}
	return user, nil
}

// HashToken produces the bcrypt hash stored for an API token secret.
func HashToken(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
