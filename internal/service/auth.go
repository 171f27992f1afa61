package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cloudly/miniapp/internal/model"
	"github.com/cloudly/miniapp/internal/telegram"
)

const AuthCookieName = "auth_token"

var (
	ErrInvalidInitData = errors.New("invalid telegram init data")
	ErrInitDataExpired = errors.New("telegram init data has expired")
	ErrInvalidToken    = errors.New("invalid token")
)

type AuthService struct {
	userService    *UserService
	botToken       string
	initDataMaxAge time.Duration
	jwtSecret      string
	jwtExpiry      time.Duration
	isProduction   bool
	now            func() time.Time
}

func NewAuthService(
	userService *UserService,
	botToken string,
	initDataMaxAge time.Duration,
	jwtSecret string,
	jwtExpiry time.Duration,
	isProduction bool,
) *AuthService {
	return &AuthService{
		userService:    userService,
		botToken:       botToken,
		initDataMaxAge: initDataMaxAge,
		jwtSecret:      jwtSecret,
		jwtExpiry:      jwtExpiry,
		isProduction:   isProduction,
		now:            time.Now,
	}
}

// VerifyInitData checks the signature and, when configured, the age of an
// init data payload. The payload must carry a user object.
func (s *AuthService) VerifyInitData(payload string) (*telegram.InitData, error) {
	data, ok := telegram.VerifyInitData(payload, s.botToken)
	if !ok {
		return nil, ErrInvalidInitData
	}

	if data.User == nil || data.User.ID == 0 {
		return nil, fmt.Errorf("%w: missing user", ErrInvalidInitData)
	}

	if s.initDataMaxAge > 0 && s.now().Sub(data.AuthDate) > s.initDataMaxAge {
		return nil, ErrInitDataExpired
	}

	return data, nil
}

// Login verifies payload, records the visit and issues a session token.
func (s *AuthService) Login(ctx context.Context, payload string) (*model.User, string, time.Time, error) {
	data, err := s.VerifyInitData(payload)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user, err := s.userService.RecordVisit(ctx, data.User)
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("failed to record visit: %w", err)
	}

	token, expiry, err := s.GenerateJWT(user)
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("failed to generate token: %w", err)
	}

	slog.Info("user logged in", "user_id", user.ID, "total_visits", user.TotalVisits)
	return user, token, expiry, nil
}

// Authenticate resolves a session token to its user.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*model.User, error) {
	claims, err := s.VerifyJWT(tokenString)
	if err != nil {
		return nil, err
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, ErrInvalidToken
	}

	return s.userService.ByID(ctx, userID)
}

func (s *AuthService) GenerateJWT(user *model.User) (string, time.Time, error) {
	now := s.now()
	expiry := now.Add(s.jwtExpiry)
	claims := jwt.MapClaims{
		"user_id":     user.ID,
		"telegram_id": user.TelegramID,
		"exp":         expiry.Unix(),
		"iat":         now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiry, nil
}

func (s *AuthService) VerifyJWT(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

func (s *AuthService) SetJWTCookie(w http.ResponseWriter, token string, expiry time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Expires:  expiry,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		// Mini apps run inside Telegram's webview on a foreign top-level site.
		SameSite: s.sameSite(),
	})
}

func (s *AuthService) ClearJWTCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: s.sameSite(),
	})
}

func (s *AuthService) sameSite() http.SameSite {
	if s.isProduction {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}
