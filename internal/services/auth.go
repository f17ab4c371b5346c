package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/transfermarket-backend/internal/data/aggregates"
	"github.com/yungbote/transfermarket-backend/internal/data/repos"
	domainagg "github.com/yungbote/transfermarket-backend/internal/domain/aggregates"
	types "github.com/yungbote/transfermarket-backend/internal/domain/market"
	"github.com/yungbote/transfermarket-backend/internal/platform/ctxutil"
	"github.com/yungbote/transfermarket-backend/internal/platform/dbctx"
	"github.com/yungbote/transfermarket-backend/internal/platform/logger"
)

const minPasswordLength = 8

var ErrInvalidCredentials = errors.New("invalid email or password")

type JWTClaims struct {
	TeamID string `json:"team_id"`
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Email    string
	Password string
	TeamName string
	Country  string
}

type AuthResult struct {
	AccessToken string      `json:"access_token"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        *types.User `json:"user"`
	Team        *types.Team `json:"team,omitempty"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	ParseToken(tokenString string) (*ctxutil.RequestData, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	log          *logger.Logger
	runner       aggregates.TxRunner
	userRepo     repos.UserRepo
	teamService  TeamService
	jwtSecretKey string
	accessTTL    time.Duration
	bcryptCost   int
}

func NewAuthService(
	log *logger.Logger,
	runner aggregates.TxRunner,
	userRepo repos.UserRepo,
	teamService TeamService,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	return &authService{
		log:          log.With("service", "AuthService"),
		runner:       runner,
		userRepo:     userRepo,
		teamService:  teamService,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
		bcryptCost:   bcrypt.DefaultCost,
	}
}

func (as *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	const op = "Market.AuthService.Register"
	email := normalizeEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "A valid email is required.", nil)
	}
	if len(in.Password) < minPasswordLength {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("Password must be at least %d characters.", minPasswordLength), nil)
	}
	teamName := strings.TrimSpace(in.TeamName)
	if teamName == "" {
		teamName = strings.SplitN(email, "@", 2)[0] + " FC"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), as.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var user *types.User
	var team *types.Team
	err = as.runner.InTx(ctx, func(dbc dbctx.Context) error {
		existing, err := as.userRepo.GetByEmail(dbc, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return domainagg.NewError(domainagg.CodeConflict, op, "The email has already been taken.", nil)
		}
		team, err = as.teamService.CreateTeam(dbc, teamName, in.Country)
		if err != nil {
			return err
		}
		user, err = as.userRepo.Create(dbc, &types.User{
			ID:           uuid.New(),
			Email:        email,
			PasswordHash: string(hash),
			TeamID:       team.ID,
		})
		return err
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}

	token, expiresAt, err := as.generateAccessToken(user)
	if err != nil {
		return nil, err
	}
	as.log.Info("User registered", "user_id", user.ID, "team_id", team.ID)
	return &AuthResult{AccessToken: token, ExpiresAt: expiresAt, User: user, Team: team}, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := as.userRepo.GetByEmail(dbctx.Background(ctx), email)
	if err != nil {
		return nil, fmt.Errorf("load user by email: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	token, expiresAt, err := as.generateAccessToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{AccessToken: token, ExpiresAt: expiresAt, User: user}, nil
}

func (as *authService) generateAccessToken(user *types.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(as.accessTTL)
	claims := JWTClaims{
		TeamID: user.TeamID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

func (as *authService) ParseToken(tokenString string) (*ctxutil.RequestData, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, fmt.Errorf("missing token")
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid user id in token: %w", err)
	}
	teamID, err := uuid.Parse(claims.TeamID)
	if err != nil {
		return nil, fmt.Errorf("invalid team id in token: %w", err)
	}
	return &ctxutil.RequestData{UserID: userID, TeamID: teamID}, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	rd, err := as.ParseToken(tokenString)
	if err != nil {
		return ctx, err
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
