package service

import (
	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DTOs for Request validation

type RegisterRequest struct {
	CompanyName string `json:"company_name" binding:"required"`
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone"`
	Password    string `json:"password" binding:"required,min=8"`
}

type CreateUserRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      string `json:"role" binding:"required,oneof=admin technician customer"`
}

type UpdateUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Role      string `json:"role" binding:"omitempty,oneof=admin technician customer"`
	IsActive  *bool  `json:"is_active"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UserResponse returns the user without exposing sensitive data
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CompanyID string    `json:"company_id,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt string    `json:"updated_at"`
}

type LoginResponse struct {
	User   UserResponse `json:"user"`
	Tokens TokenPair    `json:"tokens"`
}

// UserService defines the interface for business logic related to accounts
type UserService interface {
	Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, userID string) (*UserResponse, error)
	ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error
	CreateUser(ctx context.Context, scope Scope, req CreateUserRequest) (*UserResponse, error)
	GetUserByID(ctx context.Context, scope Scope, id string) (*UserResponse, error)
	ListUsers(ctx context.Context, scope Scope, role string, page, limit int) ([]UserResponse, int64, error)
	UpdateUser(ctx context.Context, scope Scope, id string, req UpdateUserRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, scope Scope, id string) error
}

type userService struct {
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
	txManager   repository.TransactionManager
}

// NewUserService returns a new instance of UserService
func NewUserService(userRepo repository.UserRepository, companyRepo repository.CompanyRepository, txManager repository.TransactionManager) UserService {
	return &userService{userRepo: userRepo, companyRepo: companyRepo, txManager: txManager}
}

func mapUserResponse(user *model.User) *UserResponse {
	resp := &UserResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}
	if user.CompanyID != nil {
		resp.CompanyID = user.CompanyID.String()
	}
	return resp
}

// Register creates a company together with its first admin account.
func (s *userService) Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error) {
	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperror.Conflictf("email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  string(hashedPassword),
		Role:      model.RoleAdmin,
		IsActive:  true,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		company := &model.Company{
			Name:  req.CompanyName,
			Email: req.Email,
		}
		if createErr := s.companyRepo.Create(txCtx, company); createErr != nil {
			return createErr
		}
		user.CompanyID = &company.ID
		return s.userRepo.Create(txCtx, user)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register: %w", err)
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{User: *mapUserResponse(user), Tokens: *tokens}, nil
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.Validationf("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperror.Validationf("invalid email or password")
	}

	if !user.IsActive {
		return nil, apperror.Validationf("account is deactivated")
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{User: *mapUserResponse(user), Tokens: *tokens}, nil
}

func (s *userService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	stored, err := s.userRepo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, apperror.Validationf("invalid refresh token")
	}
	if time.Now().After(stored.ExpiresAt) {
		_ = s.userRepo.DeleteRefreshToken(ctx, refreshToken)
		return nil, apperror.Validationf("refresh token expired")
	}

	// Rotate: the old token is single use.
	if err := s.userRepo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return s.issueTokens(ctx, &stored.User)
}

func (s *userService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.userRepo.DeleteRefreshToken(ctx, refreshToken)
}

func (s *userService) Me(ctx context.Context, userID string) (*UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.NotFoundf("user not found")
	}
	return mapUserResponse(user), nil
}

func (s *userService) ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return apperror.NotFoundf("user not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return apperror.Validationf("current password is incorrect")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.Password = string(hashedPassword)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *userService) CreateUser(ctx context.Context, scope Scope, req CreateUserRequest) (*UserResponse, error) {
	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperror.Conflictf("email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	companyID := scope.CompanyID
	user := &model.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  string(hashedPassword),
		Role:      req.Role,
		CompanyID: &companyID,
		IsActive:  true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapUserResponse(user), nil
}

func (s *userService) GetUserByID(ctx context.Context, scope Scope, id string) (*UserResponse, error) {
	user, err := s.findInCompany(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	return mapUserResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, scope Scope, role string, page, limit int) ([]UserResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	users, total, err := s.userRepo.ListByCompany(ctx, scope.CompanyID, role, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *mapUserResponse(&users[i]))
	}

	return responses, total, nil
}

func (s *userService) UpdateUser(ctx context.Context, scope Scope, id string, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.findInCompany(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return mapUserResponse(user), nil
}

func (s *userService) DeleteUser(ctx context.Context, scope Scope, id string) error {
	user, err := s.findInCompany(ctx, scope, id)
	if err != nil {
		return err
	}
	if user.ID == scope.UserID {
		return apperror.Conflictf("cannot delete your own account")
	}
	return s.userRepo.Delete(ctx, id)
}

// findInCompany loads a user and checks it belongs to the caller's company.
func (s *userService) findInCompany(ctx context.Context, scope Scope, id string) (*model.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperror.Validationf("invalid user id: %v", err)
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFoundf("user %s not found", id)
	}
	if user.CompanyID == nil || *user.CompanyID != scope.CompanyID {
		return nil, apperror.NotFoundf("user %s not found", id)
	}
	return user, nil
}

func (s *userService) issueTokens(ctx context.Context, user *model.User) (*TokenPair, error) {
	companyID := ""
	if user.CompanyID != nil {
		companyID = user.CompanyID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        user.ID.String(),
		"role":       user.Role,
		"company_id": companyID,
		"exp":        time.Now().Add(24 * time.Hour).Unix(),
	})

	accessToken, err := token.SignedString(middleware.GetJWTSecret())
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	refreshToken := hex.EncodeToString(raw)

	err = s.userRepo.CreateRefreshToken(ctx, &model.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: time.Now().Add(7 * 24 * time.Hour),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
