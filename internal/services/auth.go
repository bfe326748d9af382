package services

import (
	"context"
	"errors"

	"github.com/sbilibin2017/gw-library/internal/logger"
	"github.com/sbilibin2017/gw-library/internal/models"
	"github.com/sbilibin2017/gw-library/internal/repositories"
	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=auth.go -destination=auth_mock.go -package=services

// Error variables
var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMissingCredentials = errors.New("email and password are required")
)

// PasswordCost is the bcrypt work factor used for new passwords.
const PasswordCost = bcrypt.DefaultCost

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByEmail(ctx context.Context, email string) (*models.UserDB, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Save(ctx context.Context, username, passwordHash, email string) (int64, error)
}

// TokenGenerator issues signed tokens over a user's identity claims.
type TokenGenerator interface {
	Generate(ctx context.Context, userID int64, email string) (string, error)
}

// AuthService handles signup and login.
type AuthService struct {
	reader UserReader
	writer UserWriter
	jwt    TokenGenerator
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(reader UserReader, writer UserWriter, jwt TokenGenerator) *AuthService {
	return &AuthService{
		reader: reader,
		writer: writer,
		jwt:    jwt,
	}
}

// Signup stores a new user with a bcrypt-hashed password and returns its id
// together with a token over the new id and email.
func (svc *AuthService) Signup(ctx context.Context, username, password, email string) (int64, string, error) {
	if email == "" || password == "" {
		return 0, "", ErrMissingCredentials
	}

	user, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to check user exists", "err", err)
		return 0, "", err
	}
	if user != nil {
		logger.Log.Infow("email already registered", "email", email)
		return 0, "", ErrEmailAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return 0, "", err
	}

	id, err := svc.writer.Save(ctx, username, string(hashedPassword), email)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			logger.Log.Infow("email already registered", "email", email)
			return 0, "", ErrEmailAlreadyExists
		}
		logger.Log.Errorw("failed to save user", "err", err)
		return 0, "", err
	}

	token, err := svc.jwt.Generate(ctx, id, email)
	if err != nil {
		logger.Log.Errorw("failed to generate JWT", "err", err)
		return 0, "", err
	}

	return id, token, nil
}

// Login verifies the email/password pair and returns a token and the username.
// An unknown email and a wrong password both yield ErrInvalidCredentials.
func (svc *AuthService) Login(ctx context.Context, email, password string) (string, string, error) {
	user, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return "", "", err
	}
	if user == nil {
		logger.Log.Infow("login failed", "email", email, "reason", "unknown email")
		return "", "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		logger.Log.Infow("login failed", "email", email, "reason", "password mismatch")
		return "", "", ErrInvalidCredentials
	}

	token, err := svc.jwt.Generate(ctx, user.ID, user.Email)
	if err != nil {
		logger.Log.Errorw("failed to generate JWT", "err", err)
		return "", "", err
	}

	return token, user.Username, nil
}
