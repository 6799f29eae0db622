package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"twocare/config"
	"twocare/internal/domain"
	"twocare/internal/repository"
	"twocare/pkg/auth"
	apperrors "twocare/pkg/errors"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type tokenClaims struct {
	jwt.RegisteredClaims
	UserID    uuid.UUID       `json:"user_id"`
	Role      domain.UserRole `json:"role"`
	TokenType string          `json:"token_type"`
}

type AuthServiceImpl struct {
	authRepo  repository.AuthRepository
	userRepo  repository.UserRepository
	jwtConfig config.JWTConfig
	logger    *zap.Logger
	now       func() time.Time
}

func NewAuthService(authRepo repository.AuthRepository, userRepo repository.UserRepository, jwtConfig config.JWTConfig, logger *zap.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		authRepo:  authRepo,
		userRepo:  userRepo,
		jwtConfig: jwtConfig,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, dto domain.RegisterRequest) (uuid.UUID, error) {
	existingUser, err := s.userRepo.GetByEmail(ctx, dto.Email)
	if err == nil && existingUser != nil {
		return uuid.Nil, apperrors.NewConflictError("пользователь с таким email уже существует")
	}
	if err != nil && !apperrors.IsNotFound(err) {
		s.logger.Error("ошибка проверки email", zap.String("email", dto.Email), zap.Error(err))
		return uuid.Nil, err
	}

	hashedPassword, err := auth.HashPassword(dto.Password)
	if err != nil {
		s.logger.Error("ошибка при хешировании пароля", zap.Error(err))
		return uuid.Nil, apperrors.NewInternalError("ошибка при регистрации пользователя", err)
	}

	userID, err := s.userRepo.Create(ctx, domain.CreateUserDTO{
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		Email:        dto.Email,
		Phone:        dto.Phone,
		PasswordHash: hashedPassword,
		Role:         dto.Role,
	})
	if err != nil {
		s.logger.Error("ошибка при создании пользователя", zap.String("email", dto.Email), zap.Error(err))
		return uuid.Nil, err
	}

	s.logger.Info("зарегистрирован пользователь", zap.String("userId", userID.String()), zap.String("role", string(dto.Role)))

	return userID, nil
}

func (s *AuthServiceImpl) ObtainTokens(ctx context.Context, dto domain.LoginRequest, client domain.ClientInfo) (*domain.Tokens, error) {
	invalid := apperrors.NewUnauthorizedError("неверный email или пароль")

	user, err := s.userRepo.GetByEmail(ctx, dto.Email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			s.logger.Warn("пользователь не найден", zap.String("email", dto.Email))
			return nil, invalid
		}
		s.logger.Error("ошибка получения пользователя", zap.String("email", dto.Email), zap.Error(err))
		return nil, err
	}

	ok, err := auth.VerifyPassword(dto.Password, user.PasswordHash)
	if err != nil {
		s.logger.Error("ошибка проверки пароля", zap.String("userId", user.ID.String()), zap.Error(err))
		return nil, invalid
	}
	if !ok {
		s.logger.Warn("неверный пароль", zap.String("userId", user.ID.String()))
		return nil, invalid
	}

	if !user.IsActive {
		return nil, apperrors.NewUnauthorizedError("аккаунт деактивирован")
	}

	if err := s.authRepo.DeleteExpiredSessions(ctx, user.ID); err != nil {
		s.logger.Warn("ошибка удаления истекших сессий", zap.String("userId", user.ID.String()), zap.Error(err))
	}

	return s.openSession(ctx, user, client)
}

func (s *AuthServiceImpl) VerifyToken(ctx context.Context, token string) error {
	_, err := s.parse(token, "")
	return err
}

func (s *AuthServiceImpl) RefreshTokens(ctx context.Context, refreshToken string, client domain.ClientInfo) (*domain.Tokens, error) {
	if _, err := s.parse(refreshToken, tokenTypeRefresh); err != nil {
		return nil, err
	}

	session, err := s.authRepo.GetSessionByRefreshToken(ctx, refreshToken)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorizedError("недействительный refresh token")
		}
		s.logger.Error("ошибка получения сессии", zap.Error(err))
		return nil, err
	}

	if session.ExpiresAt.Before(s.now()) {
		if err := s.authRepo.DeleteSession(ctx, session.ID); err != nil {
			s.logger.Warn("ошибка удаления истекшей сессии", zap.String("sessionId", session.ID.String()), zap.Error(err))
		}
		return nil, apperrors.NewUnauthorizedError("refresh token истек")
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		s.logger.Error("пользователь сессии не найден", zap.String("userId", session.UserID.String()), zap.Error(err))
		return nil, apperrors.NewUnauthorizedError("пользователь не найден")
	}

	if !user.IsActive {
		return nil, apperrors.NewUnauthorizedError("аккаунт деактивирован")
	}

	if err := s.authRepo.DeleteSession(ctx, session.ID); err != nil {
		s.logger.Error("ошибка удаления старой сессии", zap.String("sessionId", session.ID.String()), zap.Error(err))
		return nil, err
	}

	return s.openSession(ctx, user, client)
}

func (s *AuthServiceImpl) ParseToken(ctx context.Context, tokenString string) (domain.Actor, error) {
	claims, err := s.parse(tokenString, tokenTypeAccess)
	if err != nil {
		return domain.Actor{}, err
	}

	return domain.Actor{UserID: claims.UserID, Role: claims.Role}, nil
}

// parse проверяет подпись и срок действия. Пустой tokenType принимает токен любого типа.
func (s *AuthServiceImpl) parse(tokenString, tokenType string) (*tokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return []byte(s.jwtConfig.SigningKey), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.NewUnauthorizedError("срок действия токена истек")
		}
		return nil, apperrors.NewUnauthorizedError("недействительный токен")
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, apperrors.NewUnauthorizedError("недействительный токен")
	}

	if tokenType != "" && claims.TokenType != tokenType {
		return nil, apperrors.NewUnauthorizedError("неверный тип токена")
	}

	return claims, nil
}

func (s *AuthServiceImpl) openSession(ctx context.Context, user *domain.User, client domain.ClientInfo) (*domain.Tokens, error) {
	tokens, err := s.generateTokens(user.ID, user.Role)
	if err != nil {
		s.logger.Error("ошибка генерации токенов", zap.String("userId", user.ID.String()), zap.Error(err))
		return nil, apperrors.NewInternalError("ошибка при аутентификации", err)
	}

	now := s.now()
	session := domain.Session{
		ID:           uuid.New(),
		UserID:       user.ID,
		RefreshToken: tokens.Refresh,
		UserAgent:    client.UserAgent,
		IP:           client.IP,
		ExpiresAt:    now.Add(s.jwtConfig.RefreshTokenTTL),
		CreatedAt:    now,
	}

	if err := s.authRepo.CreateSession(ctx, session); err != nil {
		s.logger.Error("ошибка сохранения сессии", zap.String("userId", user.ID.String()), zap.Error(err))
		return nil, err
	}

	return tokens, nil
}

func (s *AuthServiceImpl) generateTokens(userID uuid.UUID, role domain.UserRole) (*domain.Tokens, error) {
	accessToken, err := s.signToken(userID, role, tokenTypeAccess, s.jwtConfig.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("ошибка подписи access token: %w", err)
	}

	refreshToken, err := s.signToken(userID, role, tokenTypeRefresh, s.jwtConfig.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("ошибка подписи refresh token: %w", err)
	}

	return &domain.Tokens{
		Access:  accessToken,
		Refresh: refreshToken,
	}, nil
}

func (s *AuthServiceImpl) signToken(userID uuid.UUID, role domain.UserRole, tokenType string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			// jti различает токены, выпущенные в одну секунду
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID:    userID,
		Role:      role,
		TokenType: tokenType,
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtConfig.SigningKey))
}
