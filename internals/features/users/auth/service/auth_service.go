package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"thesis_backend/internals/constants"
	authDTO "thesis_backend/internals/features/users/auth/dto"
	authRepo "thesis_backend/internals/features/users/auth/repository"
	userDTO "thesis_backend/internals/features/users/user/dto"
	userModel "thesis_backend/internals/features/users/user/model"
	userRepo "thesis_backend/internals/features/users/user/repository"
	helper "thesis_backend/internals/helpers"
	"thesis_backend/internals/helpers/apperr"
	helpersAuth "thesis_backend/internals/helpers/auth"
)

const tokenLeeway = 30 * time.Second

// GoogleClaims adalah bagian ID token Google yang dipakai login.
type GoogleClaims struct {
	Email string
	Name  string
	Sub   string
}

type GoogleVerifier interface {
	Verify(idToken, audience string) (GoogleClaims, error)
}

type googleIDTokenVerifier struct{}

func (googleIDTokenVerifier) Verify(idToken, audience string) (GoogleClaims, error) {
	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(idToken, []string{audience}); err != nil {
		return GoogleClaims{}, err
	}
	cs, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return GoogleClaims{}, err
	}
	return GoogleClaims{Email: cs.Email, Name: cs.Name, Sub: cs.Sub}, nil
}

type AuthService struct {
	DB             *gorm.DB
	Secret         string
	TTL            time.Duration
	GoogleClientID string
	Google         GoogleVerifier
	Now            func() time.Time
}

func NewAuthService(db *gorm.DB, secret string, ttl time.Duration, googleClientID string) *AuthService {
	return &AuthService{
		DB:             db,
		Secret:         secret,
		TTL:            ttl,
		GoogleClientID: googleClientID,
		Google:         googleIDTokenVerifier{},
		Now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

/* ==========================
   Register / Login
========================== */

func (s *AuthService) Register(ctx context.Context, req authDTO.RegisterRequest) (*userModel.UserModel, error) {
	if err := helper.ValidateStruct(req); err != nil {
		return nil, err
	}
	role, ok := constants.ParseRole(req.Role)
	if !ok {
		return nil, apperr.ValidationFields("invalid role", map[string][]string{"role": {"oneof"}})
	}
	if !role.SelfRegistrable() {
		return nil, apperr.Forbidden("only student and teacher accounts can be self-registered")
	}
	return s.createUser(ctx, req.Name, req.UserName, req.Password, req.Email, role)
}

// CreateUser: jalur admin untuk membuat akun role apa pun (termasuk admin/uniadmin).
func (s *AuthService) CreateUser(ctx context.Context, actor helpersAuth.Identity, req authDTO.CreateUserRequest) (*userModel.UserModel, error) {
	if !actor.Can(constants.CapManageUsers) {
		return nil, apperr.Forbidden(constants.RoleErrorAdmin("user creation"))
	}
	if err := helper.ValidateStruct(req); err != nil {
		return nil, err
	}
	role, ok := constants.ParseRole(req.Role)
	if !ok {
		return nil, apperr.ValidationFields("invalid role", map[string][]string{"role": {"oneof"}})
	}
	return s.createUser(ctx, req.Name, req.UserName, req.Password, req.Email, role)
}

// BootstrapAdmin membuat admin pertama bila belum ada admin sama sekali.
// created=false bila sudah ada admin (tidak ada yang diubah).
func (s *AuthService) BootstrapAdmin(ctx context.Context, userName, password string) (created bool, err error) {
	userName = strings.TrimSpace(userName)
	if userName == "" || len(password) < 6 {
		return false, apperr.Validation("bootstrap admin needs a user name and a password of at least 6 characters")
	}
	if _, err := userRepo.FirstUserByRole(ctx, s.DB, constants.RoleAdmin); err == nil {
		return false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, apperr.Internal("failed to look up admins", err)
	}
	if _, err := s.createUser(ctx, "Administrator", userName, password, "", constants.RoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}

func (s *AuthService) createUser(ctx context.Context, name, userName, password, email string, role constants.Role) (*userModel.UserModel, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	user := &userModel.UserModel{
		Name:     strings.TrimSpace(name),
		UserName: strings.TrimSpace(userName),
		Password: string(hashed),
		Role:     role,
	}
	if email := strings.ToLower(strings.TrimSpace(email)); email != "" {
		user.Email = &email
	}
	if err := userRepo.CreateUser(ctx, s.DB, user); err != nil {
		if helper.IsUniqueViolation(err) {
			return nil, apperr.Conflict("user name or email is already registered")
		}
		return nil, apperr.Internal("failed to create user", err)
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req authDTO.LoginRequest) (authDTO.LoginResponse, error) {
	if err := helper.ValidateStruct(req); err != nil {
		return authDTO.LoginResponse{}, err
	}
	user, err := userRepo.FindUserByUserName(ctx, s.DB, req.UserName)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return authDTO.LoginResponse{}, apperr.Unauthenticated("invalid user name or password")
	}
	if err != nil {
		return authDTO.LoginResponse{}, apperr.Internal("failed to load user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return authDTO.LoginResponse{}, apperr.Unauthenticated("invalid user name or password")
	}
	return s.issue(user)
}

// LoginGoogle: hanya untuk akun yang sudah ada (role tidak bisa ditebak dari token Google).
func (s *AuthService) LoginGoogle(ctx context.Context, req authDTO.GoogleLoginRequest) (authDTO.LoginResponse, error) {
	if err := helper.ValidateStruct(req); err != nil {
		return authDTO.LoginResponse{}, err
	}
	if s.GoogleClientID == "" {
		return authDTO.LoginResponse{}, apperr.Internal("google login is not configured", errors.New("GOOGLE_CLIENT_ID is empty"))
	}
	claims, err := s.Google.Verify(req.IDToken, s.GoogleClientID)
	if err != nil {
		log.Printf("[WARN] google id token rejected: %v", err)
		return authDTO.LoginResponse{}, apperr.Unauthenticated("invalid Google ID token")
	}

	user, err := userRepo.FindUserByGoogleOrEmail(ctx, s.DB, claims.Sub, claims.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return authDTO.LoginResponse{}, apperr.NotFound("no account is linked to this Google account")
	}
	if err != nil {
		return authDTO.LoginResponse{}, apperr.Internal("failed to load user", err)
	}
	if user.GoogleID == nil && claims.Sub != "" {
		if err := userRepo.LinkGoogleID(ctx, s.DB, user.ID, claims.Sub); err != nil {
			log.Printf("[WARN] link google id for %s: %v", user.ID, err)
		}
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *userModel.UserModel) (authDTO.LoginResponse, error) {
	token, exp, err := helpersAuth.IssueAccessToken(s.Secret, helpersAuth.Identity{
		UserID: user.ID,
		Role:   user.Role,
		Name:   user.Name,
	}, s.TTL, s.now())
	if err != nil {
		return authDTO.LoginResponse{}, apperr.Internal("failed to issue token", err)
	}
	return authDTO.LoginResponse{AccessToken: token, ExpiresAt: exp, User: userDTO.ToUserResponse(*user)}, nil
}

/* ==========================
   Logout / Authenticate
========================== */

func (s *AuthService) Logout(ctx context.Context, rawToken string, exp time.Time) error {
	if rawToken == "" {
		return apperr.Unauthenticated("missing token")
	}
	if exp.IsZero() {
		exp = s.now().Add(s.TTL)
	}
	if err := authRepo.BlacklistToken(ctx, s.DB, helpersAuth.HashToken(rawToken, s.Secret), exp); err != nil {
		return apperr.Internal("failed to revoke token", err)
	}
	return nil
}

// Authenticate memenuhi middleware Authenticator: tanda tangan, exp, blacklist, user masih ada.
func (s *AuthService) Authenticate(ctx context.Context, rawToken string) (helpersAuth.Identity, time.Time, error) {
	if s.Secret == "" {
		return helpersAuth.Identity{}, time.Time{}, apperr.Internal("missing JWT secret", errors.New("JWT_SECRET is empty"))
	}
	id, exp, err := helpersAuth.ParseAccessToken(s.Secret, rawToken, s.now(), tokenLeeway)
	switch {
	case errors.Is(err, helpersAuth.ErrTokenExpired):
		return helpersAuth.Identity{}, exp, apperr.Unauthenticated("Unauthorized - token expired")
	case err != nil:
		return helpersAuth.Identity{}, exp, apperr.Unauthenticated("Unauthorized - invalid token")
	}

	revoked, err := authRepo.IsTokenBlacklisted(ctx, s.DB, helpersAuth.HashToken(rawToken, s.Secret))
	if err != nil {
		return helpersAuth.Identity{}, exp, apperr.Internal("failed to check token", err)
	}
	if revoked {
		return helpersAuth.Identity{}, exp, apperr.Unauthenticated("Unauthorized - token is revoked")
	}

	user, err := userRepo.FindUserByID(ctx, s.DB, id.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return helpersAuth.Identity{}, exp, apperr.Unauthenticated("Unauthorized - user not found")
	}
	if err != nil {
		return helpersAuth.Identity{}, exp, apperr.Internal("failed to load user", err)
	}
	return helpersAuth.Identity{UserID: user.ID, Role: user.Role, Name: user.Name}, exp, nil
}

func (s *AuthService) Me(ctx context.Context, id helpersAuth.Identity) (*userModel.UserModel, error) {
	user, err := userRepo.FindUserByID(ctx, s.DB, id.UserID)
	if err != nil {
		return nil, helper.MapStoreError(err, "user not found", "", "failed to load user")
	}
	return user, nil
}
