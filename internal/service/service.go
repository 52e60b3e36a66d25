package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/craftbill/invoice-service/internal/config"
	"github.com/craftbill/invoice-service/internal/models"
	"github.com/craftbill/invoice-service/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Service handles business logic
type Service struct {
	repo   *repository.Repository
	log    *logrus.Logger
	config *config.Config
}

// NewService initializes a new service
func NewService(repo *repository.Repository, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{repo: repo, log: log, config: cfg}
}

// Register creates a new user with hashed password
func (s *Service) Register(username, email, password string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.repo.CreateUser(user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(email, password string) (string, error) {
	user, err := s.repo.FindUserByEmail(email)
	if err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", user.ID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}

// ListUsers returns all registered users, for admin tooling
func (s *Service) ListUsers() ([]models.User, error) {
	return s.repo.ListUsers()
}

func (s *Service) userIDFromContext(ctx context.Context) (int64, error) {
	userIDStr, ok := ctx.Value("userID").(string)
	if !ok || userIDStr == "" {
		return 0, failf("user ID not found in context")
	}

	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		return 0, failf("invalid user ID: %v", err)
	}
	return userID, nil
}

// clientOwnedBy loads a client and verifies it belongs to the user
func (s *Service) clientOwnedBy(userID, clientID int64) (*models.Client, error) {
	client, err := s.repo.FindClientByID(clientID)
	if err != nil {
		return nil, err
	}
	if client.UserID != userID {
		return nil, failf("client does not belong to user")
	}
	return client, nil
}

// invoiceOwnedBy loads an invoice and verifies it belongs to the user
func (s *Service) invoiceOwnedBy(userID, invoiceID int64) (*models.Invoice, error) {
	invoice, err := s.repo.FindInvoiceByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.UserID != userID {
		return nil, failf("invoice does not belong to user")
	}
	return invoice, nil
}
