package repositories

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"article-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.ErrorConflict{Message: "email already registered"}
		}
		return models.NewUpstream("create user", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", strings.ToLower(email))
}

func (r *userRepository) first(ctx context.Context, cond string, arg string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where(cond, arg).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFound("user", "")
	}
	if err != nil {
		return nil, models.NewUpstream("get user", err)
	}
	return &user, nil
}

type memoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{users: make(map[string]models.User)}
}

func (r *memoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return models.ErrorConflict{Message: "email already registered"}
		}
	}

	if user.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return models.NewUpstream("create user", err)
		}
		user.ID = id.String()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, models.NewNotFound("user", "")
	}
	return &u, nil
}

func (r *memoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.ToLower(email)
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, models.NewNotFound("user", "")
}
