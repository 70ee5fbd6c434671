package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"festivaltickets/internal/clients"
	"festivaltickets/internal/shared/apperrors"
	"festivaltickets/internal/shared/config"
	"festivaltickets/internal/shared/constants"
	"festivaltickets/pkg/logger"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var errInvalidToken = fmt.Errorf("%w: invalid token", apperrors.ErrInvalidCredentials)

type Service interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	ChangePassword(ctx context.Context, clientID uuid.UUID, req *ChangePasswordRequest) error
	Me(ctx context.Context, clientID uuid.UUID) (*clients.ClientResponse, error)
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// ClientAccounts is the part of the clients service auth depends on
type ClientAccounts interface {
	CreateClient(ctx context.Context, in clients.NewClient) (*clients.Client, error)
	GetByEmail(ctx context.Context, email string) (*clients.Client, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*clients.ClientResponse, error)
}

var _ ClientAccounts = clients.Service(nil)

type service struct {
	accounts ClientAccounts
	repo     Repository
	jwt      config.JWTConfig
	log      *logger.Logger
	now      func() time.Time
}

func NewService(accounts ClientAccounts, repo Repository, cfg config.JWTConfig, log *logger.Logger) Service {
	return &service{
		accounts: accounts,
		repo:     repo,
		jwt:      cfg,
		log:      log.WithComponent("auth"),
		now:      time.Now,
	}
}

func (s *service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := constants.Role(strings.ToUpper(req.Role)) // stored as uppercase enum
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		subject = uuid.NewString()
	}

	client, err := s.accounts.CreateClient(ctx, clients.NewClient{
		Name:         req.Name,
		Surname:      req.Surname,
		Email:        req.Email,
		Phone:        req.Phone,
		Subject:      subject,
		PasswordHash: string(hashedPassword),
		Role:         role,
	})
	if err != nil {
		return nil, err
	}

	s.log.LogAuthSuccess(ctx, client.ID.String(), "register")
	return s.authResponse(clients.ToClientResponse(*client), client.Subject)
}

func (s *service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	client, err := s.accounts.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrEntityNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(client.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	s.log.LogAuthSuccess(ctx, client.ID.String(), "password")
	return s.authResponse(clients.ToClientResponse(*client), client.Subject)
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.ValidateToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Type != tokenTypeRefresh {
		return nil, errInvalidToken
	}

	clientID, err := uuid.Parse(claims.ClientID)
	if err != nil {
		return nil, errInvalidToken
	}

	// Role may have changed since the token was issued
	profile, err := s.accounts.GetProfile(ctx, clientID)
	if err != nil {
		if errors.Is(err, apperrors.ErrEntityNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	s.log.LogAuthSuccess(ctx, clientID.String(), "refresh")
	return s.generateTokenPair(profile.ID.String(), claims.ClientSubject, string(profile.Role))
}

func (s *service) ChangePassword(ctx context.Context, clientID uuid.UUID, req *ChangePasswordRequest) error {
	current, err := s.repo.GetPasswordHash(ctx, clientID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(current), []byte(req.CurrentPassword)); err != nil {
		return apperrors.ErrInvalidCredentials
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.repo.UpdatePasswordHash(ctx, clientID, string(hashedPassword))
}

func (s *service) Me(ctx context.Context, clientID uuid.UUID) (*clients.ClientResponse, error) {
	return s.accounts.GetProfile(ctx, clientID)
}

func (s *service) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return []byte(s.jwt.Secret), nil
	})
	if err != nil {
		return nil, errInvalidToken
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errInvalidToken
}

func (s *service) authResponse(client clients.ClientResponse, subject string) (*AuthResponse, error) {
	tokenPair, err := s.generateTokenPair(client.ID.String(), subject, string(client.Role))
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		Client:       client,
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	}, nil
}

func (s *service) generateTokenPair(clientID, subject, role string) (*TokenPair, error) {
	now := s.now()

	accessToken, err := s.sign(clientID, subject, role, tokenTypeAccess, now, s.jwt.JWTExpiresIn)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.sign(clientID, subject, role, tokenTypeRefresh, now, s.jwt.RefreshExpiresIn)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwt.JWTExpiresIn.Seconds()),
	}, nil
}

func (s *service) sign(clientID, subject, role, tokenType string, now time.Time, ttl time.Duration) (string, error) {
	claims := JWTClaims{
		ClientID:      clientID,
		ClientSubject: subject,
		Role:          role,
		Type:          tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    tokenIssuer,
			Subject:   clientID,
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwt.Secret))
}
