package service

import (
	"bitwise74/drive-api/internal/model"
	"bitwise74/drive-api/pkg/security"
	"bitwise74/drive-api/pkg/util"
	"bitwise74/drive-api/pkg/validators"
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Accounts stores users and checks their credentials
type Accounts struct {
	DB    *gorm.DB
	Argon *security.ArgonHash
	// MaxStorage is copied into the usage row of every new user
	MaxStorage int64
}

func NewAccounts(db *gorm.DB, argon *security.ArgonHash, maxStorage int64) *Accounts {
	return &Accounts{
		DB:         db,
		Argon:      argon,
		MaxStorage: maxStorage,
	}
}

// Signup registers a new active user
func (a *Accounts) Signup(ctx context.Context, email, name, password string) (*model.User, error) {
	email, err := validators.EmailValidator(email)
	if err != nil {
		return nil, BadRequest("Invalid email address")
	}

	name, err = validators.NameValidator(name)
	if err != nil {
		return nil, BadRequest("Invalid name")
	}

	if err := validators.PasswordValidator(password); err != nil {
		if errors.Is(err, validators.ErrPasswordTooLong) {
			return nil, BadRequest("Password is too long")
		}

		return nil, BadRequest("Password can't be empty")
	}

	var found bool

	err = a.DB.WithContext(ctx).
		Model(model.User{}).
		Select("count(*) > 0").
		Where("email = ?", email).
		Find(&found).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to check if user is registered, %w", err)
	}

	if found {
		return nil, ErrEmailTaken
	}

	hash, err := a.Argon.GenerateFromPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password, %w", err)
	}

	userID := util.NewID()
	user := &model.User{
		ID:           userID,
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		IsActive:     true,
		Stats: model.Stats{
			UserID:     userID,
			MaxStorage: a.MaxStorage,
		},
	}

	if err := a.DB.WithContext(ctx).Create(user).Error; err != nil {
		// Lost a race with a concurrent signup for the same email
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}

		return nil, fmt.Errorf("failed to create user, %w", err)
	}

	return user, nil
}

// Authenticate returns the user owning email if password matches
func (a *Accounts) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	email, err := validators.EmailValidator(email)
	if err != nil || password == "" {
		return nil, ErrBadCredentials
	}

	var user model.User

	err = a.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBadCredentials
		}

		return nil, fmt.Errorf("failed to look up user, %w", err)
	}

	ok, err := a.Argon.VerifyPasswd(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password, %w", err)
	}

	if !ok {
		return nil, ErrBadCredentials
	}

	if !user.IsActive {
		return nil, ErrInactive
	}

	return &user, nil
}

// ByEmail looks up a user by the email carried in a session token
func (a *Accounts) ByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User

	err := a.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("failed to look up user, %w", err)
	}

	return &user, nil
}
