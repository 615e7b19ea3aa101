package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"todo-api/internal/apperrors"
	"todo-api/internal/auth"
	"todo-api/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthService struct {
	users    UserRepository
	sessions Sessions
	validate *validator.Validate
	log      *logrus.Logger
	hashCost int
}

func NewAuthService(users UserRepository, sessions Sessions, log *logrus.Logger) *AuthService {
	validate := validator.New()
	// bcrypt reads at most 72 bytes, and a multi-byte password can pass a
	// 72-rune max while exceeding that.
	_ = validate.RegisterValidation("maxbytes", maxBytes)
	return &AuthService{
		users:    users,
		sessions: sessions,
		validate: validate,
		log:      log,
		hashCost: bcrypt.DefaultCost,
	}
}

// Register creates a regular user account
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	req.Email = models.NormalizeEmail(req.Email)
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	return s.createUser(ctx, req.Email, req.Password, models.RoleUser)
}

func (s *AuthService) createUser(ctx context.Context, email, password string, role models.Role) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, apperrors.Validation("password is too long", map[string]string{"password": "must be at most 72 bytes"})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &models.User{Email: email, PasswordHash: string(hash), Role: role}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("user registered")
	return user, nil
}

// Login checks credentials and opens a session. Unknown email and wrong
// password produce the same error.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (string, *auth.Session, error) {
	if err := s.validateRequest(req); err != nil {
		return "", nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		var nf *apperrors.NotFoundError
		if errors.As(err, &nf) {
			return "", nil, apperrors.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, apperrors.ErrInvalidCredentials
	}

	token, session, err := s.sessions.Establish(models.IdentityOf(*user))
	if err != nil {
		return "", nil, fmt.Errorf("failed to establish session: %w", err)
	}
	return token, session, nil
}

// Logout ends the given session
func (s *AuthService) Logout(sessionID string) {
	s.sessions.Revoke(sessionID)
}

// Me returns the account behind identity
func (s *AuthService) Me(ctx context.Context, identity models.Identity) (*models.User, error) {
	if identity.IsAnonymous() {
		return nil, apperrors.Unauthorized("authentication required")
	}
	user, err := s.users.GetUserByID(ctx, identity.UserID)
	if err != nil {
		var nf *apperrors.NotFoundError
		if errors.As(err, &nf) {
			return nil, apperrors.Unauthorized("account no longer exists")
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) validateRequest(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Validation("invalid request", nil)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[strings.ToLower(fe.Field())] = fieldMessage(fe)
	}
	return apperrors.Validation("email and password are required; password must be at least 6 characters", fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "missed value"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "maxbytes":
		return "must be at most " + fe.Param() + " bytes"
	}
	return "is invalid"
}

func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}
