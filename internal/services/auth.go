package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/teecraft/storefront/internal/data/db"
	"github.com/teecraft/storefront/internal/data/repos"
	types "github.com/teecraft/storefront/internal/domain"
	"github.com/teecraft/storefront/internal/domain/user"
	"github.com/teecraft/storefront/internal/gate"
	"github.com/teecraft/storefront/internal/platform/apierr"
	"github.com/teecraft/storefront/internal/platform/ctxutil"
	"github.com/teecraft/storefront/internal/platform/dbctx"
	"github.com/teecraft/storefront/internal/platform/logger"
	"github.com/teecraft/storefront/internal/realtime/bus"
	"github.com/teecraft/storefront/internal/session"
	"github.com/teecraft/storefront/internal/snapshot"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrSignOutFailed      = errors.New("sign out failed")
)

type JWTClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type SignupInput struct {
	FullName        string
	Email           string
	Password        string
	ConfirmPassword string
}

type AuthResult struct {
	UserID       uuid.UUID
	Email        string
	Role         string
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	RedirectTo   string
}

// SessionInvalidator drops cached per-client session state.
type SessionInvalidator interface {
	Invalidate(clientID string)
}

type AuthService interface {
	Signup(ctx context.Context, clientID string, in SignupInput) (*AuthResult, error)
	Login(ctx context.Context, clientID, email, password string) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	// Logout signs the bearer token out. When that fails the cached auth
	// snapshot is kept unless force is set.
	Logout(ctx context.Context, clientID string, force bool) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	VerifyAccessToken(ctx context.Context, tokenString string) (*session.Identity, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	profileRepo   repos.ProfileRepo
	userTokenRepo repos.UserTokenRepo
	snapshots     *snapshot.Snapshots
	events        bus.Bus
	sessions      SessionInvalidator
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	profileRepo repos.ProfileRepo,
	userTokenRepo repos.UserTokenRepo,
	snapshots *snapshot.Snapshots,
	events bus.Bus,
	sessions SessionInvalidator,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		userRepo:      userRepo,
		profileRepo:   profileRepo,
		userTokenRepo: userTokenRepo,
		snapshots:     snapshots,
		events:        events,
		sessions:      sessions,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) Signup(ctx context.Context, clientID string, in SignupInput) (*AuthResult, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = normalizeEmail(in.Email)
	if in.FullName == "" || in.Email == "" || in.Password == "" || in.ConfirmPassword == "" {
		return nil, invalid("form", MsgFillAllFields)
	}
	if in.Password != in.ConfirmPassword {
		return nil, invalid("confirm_password", MsgPasswordsMismatch)
	}
	if len(in.Password) < minPasswordLength {
		return nil, invalid("password", MsgPasswordTooShort)
	}
	exists, err := as.userRepo.EmailExists(dbctx.New(ctx), in.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, invalid("email", MsgEmailRegistered)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var result *AuthResult
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		u := &types.User{ID: uuid.New(), Email: in.Email, Password: string(hashed)}
		if _, err := as.userRepo.Create(dbc, []*types.User{u}); err != nil {
			if db.IsUniqueViolation(err) {
				return invalid("email", MsgEmailRegistered)
			}
			return fmt.Errorf("create user: %w", err)
		}
		p := &types.Profile{ID: u.ID, Email: u.Email, FullName: in.FullName, Role: user.RoleUser}
		if _, err := as.profileRepo.Create(dbc, []*types.Profile{p}); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		res, err := as.issueTokens(dbc, u)
		if err != nil {
			return err
		}
		res.Role = p.Role
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	as.signedIn(ctx, clientID, result)
	as.log.Info("User signed up", "user_id", result.UserID)
	return result, nil
}

func (as *authService) Login(ctx context.Context, clientID, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, invalid("form", MsgFillAllFields)
	}
	users, err := as.userRepo.GetByEmails(dbctx.New(ctx), []string{email})
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if len(users) == 0 {
		return nil, apierr.New(http.StatusUnauthorized, "invalid_credentials", ErrInvalidCredentials)
	}
	u := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, apierr.New(http.StatusUnauthorized, "invalid_credentials", ErrInvalidCredentials)
	}

	var result *AuthResult
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		found, err := as.userTokenRepo.GetByUserIDs(dbc, []uuid.UUID{u.ID})
		if err != nil {
			return fmt.Errorf("load user tokens: %w", err)
		}
		var expired []*types.UserToken
		for _, t := range found {
			if t.ExpiresAt.Before(time.Now()) {
				expired = append(expired, t)
			}
		}
		if err := as.userTokenRepo.FullDeleteByTokens(dbc, expired); err != nil {
			return fmt.Errorf("delete expired tokens: %w", err)
		}
		res, err := as.issueTokens(dbc, u)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Role comes from the profile; a missing row logs in as a plain user.
	profile, err := as.profileRepo.GetByID(dbctx.New(ctx), u.ID)
	if err != nil {
		as.log.Warn("Profile lookup failed at login, assuming default role", "user_id", u.ID, "error", err)
	}
	result.Role = user.RoleUser
	if profile != nil {
		result.Role = user.NormalizeRole(profile.Role)
	}
	as.signedIn(ctx, clientID, result)
	return result, nil
}

func (as *authService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, apierr.New(http.StatusUnauthorized, "refresh_failed", ErrInvalidToken)
	}
	found, err := as.userTokenRepo.GetByRefreshTokens(dbctx.New(ctx), []string{refreshToken})
	if err != nil {
		return nil, fmt.Errorf("load refresh token: %w", err)
	}
	if len(found) == 0 {
		return nil, apierr.New(http.StatusUnauthorized, "refresh_failed", ErrInvalidToken)
	}
	existing := found[0]
	if existing.ExpiresAt.Before(time.Now()) {
		if err := as.userTokenRepo.FullDeleteByTokens(dbctx.New(ctx), []*types.UserToken{existing}); err != nil {
			as.log.Warn("Failed to delete expired refresh token", "user_id", existing.UserID, "error", err)
		}
		return nil, apierr.New(http.StatusUnauthorized, "refresh_failed", ErrInvalidToken)
	}

	var result *AuthResult
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		users, err := as.userRepo.GetByIDs(dbc, []uuid.UUID{existing.UserID})
		if err != nil {
			return fmt.Errorf("load user for refresh: %w", err)
		}
		if len(users) == 0 {
			return apierr.New(http.StatusUnauthorized, "refresh_failed", ErrInvalidToken)
		}
		res, err := as.issueTokens(dbc, users[0])
		if err != nil {
			return err
		}
		if err := as.userTokenRepo.FullDeleteByTokens(dbc, []*types.UserToken{existing}); err != nil {
			return fmt.Errorf("remove old refresh token: %w", err)
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (as *authService) Logout(ctx context.Context, clientID string, force bool) error {
	rd := ctxutil.GetRequestData(ctx)
	signOutErr := as.signOut(ctx, rd)
	if signOutErr != nil && !force {
		as.log.Warn("Sign out failed, keeping cached session", "client_id", clientID, "error", signOutErr)
		return apierr.New(http.StatusBadGateway, "logout_failed", fmt.Errorf("%w: %v", ErrSignOutFailed, signOutErr))
	}
	if signOutErr != nil {
		as.log.Warn("Sign out failed, clearing cached session on request", "client_id", clientID, "error", signOutErr)
	}

	if err := as.snapshots.ClearAuth(ctx, clientID); err != nil {
		as.log.Warn("Failed to clear auth snapshot", "client_id", clientID, "error", err)
	}
	as.sessions.Invalidate(clientID)
	userID := ""
	if rd != nil {
		userID = rd.UserID.String()
	}
	as.publish(ctx, bus.AuthEvent{Type: bus.EventSignedOut, ClientID: clientID, UserID: userID, At: time.Now().UTC()})
	return nil
}

func (as *authService) signOut(ctx context.Context, rd *ctxutil.RequestData) error {
	if rd == nil || rd.TokenString == "" {
		return fmt.Errorf("no bearer token on request")
	}
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		found, err := as.userTokenRepo.GetByAccessTokens(dbc, []string{rd.TokenString})
		if err != nil {
			return fmt.Errorf("find user token: %w", err)
		}
		if len(found) == 0 {
			return fmt.Errorf("session already signed out")
		}
		return as.userTokenRepo.FullDeleteByTokens(dbc, found)
	})
}

func (as *authService) issueTokens(dbc dbctx.Context, u *types.User) (*AuthResult, error) {
	access, err := as.generateAccessToken(u)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	tok := &types.UserToken{
		UserID:       u.ID,
		AccessToken:  access,
		RefreshToken: uuid.NewString(),
		ExpiresAt:    time.Now().Add(as.refreshTTL),
	}
	if _, err := as.userTokenRepo.Create(dbc, []*types.UserToken{tok}); err != nil {
		return nil, fmt.Errorf("create user token: %w", err)
	}
	return &AuthResult{
		UserID:       u.ID,
		Email:        u.Email,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    int(as.accessTTL.Seconds()),
	}, nil
}

func (as *authService) generateAccessToken(u *types.User) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) parseAccessToken(tokenString string) (*JWTClaims, uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return nil, uuid.Nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return claims, userID, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, nil
	}
	claims, userID, err := as.parseAccessToken(tokenString)
	if err != nil {
		return ctx, err
	}
	found, err := as.userTokenRepo.GetByAccessTokens(dbctx.New(ctx), []string{tokenString})
	if err != nil {
		return ctx, fmt.Errorf("fetch user token: %w", err)
	}
	if len(found) == 0 {
		return ctx, fmt.Errorf("%w: signed out", ErrInvalidToken)
	}
	rd := &ctxutil.RequestData{
		TokenString:  tokenString,
		RefreshToken: found[0].RefreshToken,
		TokenID:      found[0].ID,
		UserID:       userID,
		Email:        claims.Email,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (as *authService) VerifyAccessToken(ctx context.Context, tokenString string) (*session.Identity, error) {
	vctx, err := as.SetContextFromToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	rd := ctxutil.GetRequestData(vctx)
	if rd == nil {
		return nil, ErrInvalidToken
	}
	return &session.Identity{UserID: rd.UserID, Email: rd.Email}, nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}

func (as *authService) signedIn(ctx context.Context, clientID string, res *AuthResult) {
	res.RedirectTo = gate.DefaultViewFor(res.Role)
	if clientID == "" {
		return
	}
	snap := session.AuthSnapshotFor(gate.Session{
		UserID:        res.UserID.String(),
		Email:         res.Email,
		Role:          res.Role,
		Authenticated: true,
	})
	if err := as.snapshots.SaveAuth(ctx, clientID, snap); err != nil {
		as.log.Warn("Failed to cache auth snapshot", "client_id", clientID, "error", err)
	}
	as.sessions.Invalidate(clientID)
	as.publish(ctx, bus.AuthEvent{Type: bus.EventSignedIn, ClientID: clientID, UserID: res.UserID.String(), At: time.Now().UTC()})
}

func (as *authService) publish(ctx context.Context, evt bus.AuthEvent) {
	if as.events == nil {
		return
	}
	if err := as.events.Publish(ctx, evt); err != nil {
		as.log.Warn("Failed to publish auth event", "type", evt.Type, "client_id", evt.ClientID, "error", err)
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
