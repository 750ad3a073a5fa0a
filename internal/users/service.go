package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/factdeck/factdeck/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 8
	defaultHashCost   = 12
)

var (
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInvalidInput       = errors.New("invalid input")
	ErrSavedFactNotFound  = errors.New("saved fact not found")
)

// Service encapsulates user-related business logic
type Service struct {
	repo     UserRepository
	hashCost int
	now      func() time.Time
}

func NewService(r UserRepository) *Service {
	return &Service{repo: r, hashCost: defaultHashCost, now: func() time.Time { return time.Now().UTC() }}
}

// SetHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *Service) SetHashCost(cost int) {
	s.hashCost = cost
}

// Signup creates an account. prefs may be nil, in which case the defaults apply.
func (s *Service) Signup(ctx context.Context, name, email, password string, prefs *models.Preferences) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrInvalidInput)
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := s.now()
	u := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Preferences:  models.DefaultPreferences(),
		SavedFacts:   []models.SavedFact{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if prefs != nil {
		u.Preferences = *prefs
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate checks credentials. Unknown email and wrong password both
// yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// SignInWithGoogle returns the account for a verified Google identity. An
// account already linked to googleID wins; otherwise an account with the same
// verified email is linked; otherwise a new account without a password is
// created.
func (s *Service) SignInWithGoogle(ctx context.Context, googleID, email, name string, emailVerified bool) (*models.User, error) {
	if googleID == "" {
		return nil, fmt.Errorf("%w: google subject is required", ErrInvalidInput)
	}
	u, err := s.repo.GetByGoogleID(ctx, googleID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	email = normalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: google account has no email", ErrInvalidInput)
	}
	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if !emailVerified {
			return nil, ErrEmailTaken
		}
		return s.repo.LinkGoogleID(ctx, existing.ID, googleID)
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	now := s.now()
	u = &models.User{
		Name:        name,
		Email:       email,
		GoogleID:    googleID,
		Preferences: models.DefaultPreferences(),
		SavedFacts:  []models.SavedFact{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	return s.repo.List(ctx)
}

func (s *Service) UpdatePreferences(ctx context.Context, id string, p models.Preferences) (*models.User, error) {
	if p.FavoriteCategories == nil {
		p.FavoriteCategories = []string{}
	}
	return s.repo.UpdatePreferences(ctx, id, p)
}

// SaveFact bookmarks a fact for the user and returns the stored entry.
func (s *Service) SaveFact(ctx context.Context, userID, text, category, notes string) (*models.SavedFact, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: fact is required", ErrInvalidInput)
	}
	f := models.SavedFact{
		ID:       uuid.NewString(),
		Fact:     text,
		Category: strings.ToLower(strings.TrimSpace(category)),
		Notes:    notes,
		SavedAt:  s.now(),
	}
	if err := s.repo.AddSavedFact(ctx, userID, f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Service) ListSaved(ctx context.Context, userID string) ([]models.SavedFact, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.SavedFacts == nil {
		return []models.SavedFact{}, nil
	}
	return u.SavedFacts, nil
}

func (s *Service) DeleteSaved(ctx context.Context, userID, factID string) error {
	removed, err := s.repo.RemoveSavedFact(ctx, userID, factID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrSavedFactNotFound
	}
	return nil
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
