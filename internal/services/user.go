package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"pillpal-backend/internal/config"
	domainerrors "pillpal-backend/internal/errors"
	"pillpal-backend/internal/models"
	"pillpal-backend/internal/repository"
	"pillpal-backend/internal/validation"
)

const defaultTokenTTL = 365 * 24 * time.Hour

// UpdateProfileRequest represents a partial profile update
type UpdateProfileRequest struct {
	Name      *string `json:"name" validate:"omitempty,max=100"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

// UpdatePushTokenRequest sets or clears the device push token
type UpdatePushTokenRequest struct {
	PushToken string `json:"push_token" validate:"omitempty,max=200"`
}

// UserService handles user-related business logic
type UserService struct {
	users     repository.UserStore
	profiles  repository.ProfileStore
	jwtSecret string
	tokenTTL  time.Duration
	verifier  *oidc.IDTokenVerifier
	validator *validation.Validator
	now       func() time.Time
}

// NewUserService creates a new user service. A nil verifier disables OIDC sign-in.
func NewUserService(
	users repository.UserStore,
	profiles repository.ProfileStore,
	jwtCfg config.JWTConfig,
	verifier *oidc.IDTokenVerifier,
	v *validation.Validator,
) *UserService {
	ttl := jwtCfg.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &UserService{
		users:     users,
		profiles:  profiles,
		jwtSecret: jwtCfg.Secret,
		tokenTTL:  ttl,
		verifier:  verifier,
		validator: v,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// NewOIDCVerifier discovers the issuer and returns an ID token verifier for the client
func NewOIDCVerifier(ctx context.Context, cfg config.OIDCConfig) (*oidc.IDTokenVerifier, error) {
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}
	return provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}), nil
}

// GenerateJWT generates a JWT token for a user
func (s *UserService) GenerateJWT(userID string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(s.tokenTTL).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the user ID
func (s *UserService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", domainerrors.Unauthorized("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", domainerrors.Unauthorized("user_id not found in token")
	}

	return userID, nil
}

// CreateUser creates a new anonymous user
func (s *UserService) CreateUser(ctx context.Context) (*models.User, error) {
	user := &models.User{
		ID:        uuid.New().String(),
		CreatedAt: s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.Token = token

	log.Info().Str("user_id", user.ID).Msg("Anonymous user created")
	return user, nil
}

type idTokenClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// SignInWithOIDC verifies an identity provider ID token and returns the matching user,
// creating it with a profile on first sign-in
func (s *UserService) SignInWithOIDC(ctx context.Context, rawIDToken string) (*models.User, error) {
	if s.verifier == nil {
		return nil, domainerrors.Forbidden("identity provider sign-in is disabled")
	}
	if rawIDToken == "" {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{"id_token": "is required"})
	}

	idToken, err := s.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeUnauthorized, "invalid id token")
	}

	var claims idTokenClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeUnauthorized, "invalid id token claims")
	}

	subject := idToken.Issuer + "|" + idToken.Subject
	user, err := s.users.GetBySubject(ctx, subject)
	switch {
	case err == nil:
	case errors.Is(err, domainerrors.ErrNotFound):
		user, err = s.createExternalUser(ctx, subject, claims)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.Token = token
	return user, nil
}

func (s *UserService) createExternalUser(ctx context.Context, subject string, claims idTokenClaims) (*models.User, error) {
	now := s.now()
	user := &models.User{
		ID:              uuid.New().String(),
		ExternalSubject: &subject,
		CreatedAt:       now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	profile := &models.Profile{UserID: user.ID, Name: claims.Name, UpdatedAt: now}
	if profile.Name == "" {
		profile.Name = claims.Email
	}
	if claims.Picture != "" {
		profile.AvatarURL = &claims.Picture
	}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to create profile")
	}

	log.Info().Str("user_id", user.ID).Msg("User signed up with identity provider")
	return user, nil
}

// GetUser returns a user by ID
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// GetProfile returns the user's profile, empty when never set
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.profiles.Get(ctx, userID)
	if errors.Is(err, domainerrors.ErrNotFound) {
		return &models.Profile{UserID: userID}, nil
	}
	return profile, err
}

// UpdateProfile applies a partial profile update
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*models.Profile, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		profile.Name = *req.Name
	}
	if req.AvatarURL != nil {
		profile.AvatarURL = req.AvatarURL
	}
	profile.UpdatedAt = s.now()

	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return profile, nil
}

// UpdatePushToken stores the device token; an empty token clears it
func (s *UserService) UpdatePushToken(ctx context.Context, userID string, req UpdatePushTokenRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	var pushToken *string
	if req.PushToken != "" {
		pushToken = &req.PushToken
	}
	return s.users.UpdatePushToken(ctx, userID, pushToken)
}
