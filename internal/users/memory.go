package users

import (
	"context"
	"sync"
	"time"

	"github.com/factdeck/factdeck/internal/models"
	"github.com/google/uuid"
)

// MemoryUserRepository keeps users in process memory. Used in tests and when
// MongoDB is not configured.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]string
	// googleId -> user id
	byGoogle map[string]string
	order    []string
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{byID: map[string]*models.User{}, byEmail: map[string]string{}, byGoogle: map[string]string{}}
}

func (r *MemoryUserRepository) Create(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email]; ok {
		return ErrEmailTaken
	}
	if _, ok := r.byGoogle[u.GoogleID]; ok && u.GoogleID != "" {
		return ErrGoogleLinked
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.SavedFacts == nil {
		u.SavedFacts = []models.SavedFact{}
	}
	r.byID[u.ID] = cloneUser(u)
	r.byEmail[u.Email] = u.ID
	if u.GoogleID != "" {
		r.byGoogle[u.GoogleID] = u.ID
	}
	r.order = append(r.order, u.ID)
	return nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[email]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *MemoryUserRepository) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	r.mu.RLock()
	id, ok := r.byGoogle[googleID]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *MemoryUserRepository) LinkGoogleID(ctx context.Context, id, googleID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if owner, ok := r.byGoogle[googleID]; ok && owner != id {
		return nil, ErrGoogleLinked
	}
	if u.GoogleID != "" {
		delete(r.byGoogle, u.GoogleID)
	}
	u.GoogleID = googleID
	u.UpdatedAt = time.Now().UTC()
	r.byGoogle[googleID] = id
	return cloneUser(u), nil
}

func (r *MemoryUserRepository) List(ctx context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, cloneUser(r.byID[id]))
	}
	return out, nil
}

func (r *MemoryUserRepository) UpdatePreferences(ctx context.Context, id string, p models.Preferences) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.Preferences = p
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

func (r *MemoryUserRepository) AddSavedFact(ctx context.Context, id string, f models.SavedFact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.SavedFacts = append(u.SavedFacts, f)
	return nil
}

func (r *MemoryUserRepository) RemoveSavedFact(ctx context.Context, id, factID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return false, ErrNotFound
	}
	kept := u.SavedFacts[:0]
	removed := false
	for _, f := range u.SavedFacts {
		if f.ID == factID {
			removed = true
			continue
		}
		kept = append(kept, f)
	}
	u.SavedFacts = kept
	return removed, nil
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.SavedFacts = append([]models.SavedFact{}, u.SavedFacts...)
	c.Preferences.FavoriteCategories = append([]string{}, u.Preferences.FavoriteCategories...)
	return &c
}
