package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"grocery-backend/internal/models"
	"grocery-backend/internal/store"
)

// Principal is the authenticated caller as carried by the access token.
type Principal struct {
	UserID primitive.ObjectID
	Role   string
	Email  string
}

func (p Principal) Staff() bool {
	return p.Role == models.RoleAdmin || p.Role == models.RoleSeller
}

// Recipient is the notification inbox the principal reads.
func (p Principal) Recipient() string {
	if p.Staff() {
		return models.AdminRecipient
	}
	return p.UserID.Hex()
}

type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type Session struct {
	Tokens
	User models.User `json:"user"`
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

type AuthConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type AuthService struct {
	users  store.UserStore
	tokens store.RefreshTokenStore
	cfg    AuthConfig
	log    *zap.Logger
}

func NewAuthService(users store.UserStore, tokens store.RefreshTokenStore, cfg AuthConfig, log *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, cfg: cfg, log: log}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (Session, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)

	fe := fieldErrors{}
	fe.require("name", name)
	fe.require("email", email)
	if email != "" && !strings.Contains(email, "@") {
		fe["email"] = "invalid"
	}
	if len(strings.TrimSpace(in.Password)) < 6 {
		fe["password"] = "must be at least 6 characters"
	}
	if err := fe.err("invalid registration"); err != nil {
		return Session{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Phone:        strings.TrimSpace(in.Phone),
		Role:         models.RoleCustomer,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return Session{}, conflict("email already registered")
		}
		return Session{}, err
	}

	s.log.Info("user registered", zap.String("userId", user.ID.Hex()))
	return s.issue(ctx, user)
}

// Login accepts any active account; AdminLogin additionally requires a staff
// role.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	return s.issue(ctx, user)
}

func (s *AuthService) AdminLogin(ctx context.Context, email, password string) (Session, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	if !user.IsStaff() {
		s.log.Warn("admin login rejected for non-staff user", zap.String("userId", user.ID.Hex()))
		return Session{}, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	return s.issue(ctx, user)
}

func (s *AuthService) authenticate(ctx context.Context, email, password string) (models.User, error) {
	email = normalizeEmail(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return models.User{}, invalid("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if err != nil {
		return models.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if !user.IsActive {
		return models.User{}, fmt.Errorf("%w: user is inactive", ErrForbidden)
	}
	return user, nil
}

// Refresh rotates a refresh token: the presented one is revoked and points
// at its replacement.
func (s *AuthService) Refresh(ctx context.Context, plain string) (Session, error) {
	plain = strings.TrimSpace(plain)
	if plain == "" {
		return Session{}, invalid("refreshToken is required")
	}

	token, err := s.tokens.FindActive(ctx, hashToken(plain))
	if errors.Is(err, store.ErrNotFound) {
		return Session{}, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}
	if err != nil {
		return Session{}, err
	}
	if token.Expired(time.Now()) {
		_ = s.tokens.Revoke(ctx, token.ID, nil)
		return Session{}, fmt.Errorf("%w: refresh token expired", ErrUnauthorized)
	}

	user, err := s.users.Get(ctx, token.UserID)
	if err != nil {
		return Session{}, fmt.Errorf("%w: user not found", ErrUnauthorized)
	}
	if !user.IsActive {
		return Session{}, fmt.Errorf("%w: user is inactive", ErrForbidden)
	}

	session, replacement, err := s.issueWithID(ctx, user)
	if err != nil {
		return Session{}, err
	}
	if err := s.tokens.Revoke(ctx, token.ID, &replacement); err != nil {
		s.log.Warn("revoke rotated refresh token failed", zap.String("tokenId", token.ID.Hex()), zap.Error(err))
	}
	return session, nil
}

func (s *AuthService) Logout(ctx context.Context, plain string) error {
	plain = strings.TrimSpace(plain)
	if plain == "" {
		return invalid("refreshToken is required")
	}
	revoked, err := s.tokens.RevokeByHash(ctx, hashToken(plain))
	if err != nil {
		return err
	}
	if !revoked {
		return fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}
	return nil
}

func (s *AuthService) Me(ctx context.Context, userID primitive.ObjectID) (models.User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return models.User{}, storeErr("user", err)
	}
	return user, nil
}

// ParseAccessToken validates an access token and returns its principal.
func (s *AuthService) ParseAccessToken(raw string) (Principal, error) {
	return ParseAccessToken(s.cfg.Secret, raw)
}

func ParseAccessToken(secret, raw string) (Principal, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Principal{}, ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, ErrUnauthorized
	}
	idValue, _ := claims["userId"].(string)
	userID, err := primitive.ObjectIDFromHex(strings.TrimSpace(idValue))
	if err != nil {
		return Principal{}, ErrUnauthorized
	}
	role, _ := claims["role"].(string)
	email, _ := claims["email"].(string)
	return Principal{UserID: userID, Role: role, Email: email}, nil
}

func (s *AuthService) accessToken(user models.User, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"userId": user.ID.Hex(),
		"role":   user.Role,
		"email":  user.Email,
		"exp":    now.Add(s.cfg.AccessTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
}

func (s *AuthService) issue(ctx context.Context, user models.User) (Session, error) {
	session, _, err := s.issueWithID(ctx, user)
	return session, err
}

func (s *AuthService) issueWithID(ctx context.Context, user models.User) (Session, primitive.ObjectID, error) {
	now := time.Now()
	access, err := s.accessToken(user, now)
	if err != nil {
		return Session{}, primitive.NilObjectID, fmt.Errorf("sign access token: %w", err)
	}

	plain, err := generateRefreshString()
	if err != nil {
		return Session{}, primitive.NilObjectID, fmt.Errorf("generate refresh token: %w", err)
	}
	refresh := models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(plain),
		ExpiresAt: now.Add(s.cfg.RefreshTTL),
		CreatedAt: now,
	}
	if err := s.tokens.Create(ctx, &refresh); err != nil {
		return Session{}, primitive.NilObjectID, err
	}

	return Session{
		Tokens: Tokens{
			AccessToken:  access,
			RefreshToken: plain,
			ExpiresIn:    int64(s.cfg.AccessTTL.Seconds()),
		},
		User: user,
	}, refresh.ID, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateRefreshString() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
