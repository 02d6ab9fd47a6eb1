package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thesis_backend/internals/constants"
	"thesis_backend/internals/databases/dbtest"
	authDTO "thesis_backend/internals/features/users/auth/dto"
	"thesis_backend/internals/features/users/auth/scheduler"
	userRepo "thesis_backend/internals/features/users/user/repository"
	"thesis_backend/internals/helpers/apperr"
	helpersAuth "thesis_backend/internals/helpers/auth"
)

type stubGoogle struct {
	claims GoogleClaims
	err    error
}

func (s stubGoogle) Verify(string, string) (GoogleClaims, error) { return s.claims, s.err }

func newService(t *testing.T) *AuthService {
	t.Helper()
	svc := NewAuthService(dbtest.Open(t), "test-secret", time.Hour, "client-id")
	return svc
}

func register(t *testing.T, svc *AuthService, userName string, role constants.Role) {
	t.Helper()
	_, err := svc.Register(context.Background(), authDTO.RegisterRequest{
		Name: "User " + userName, UserName: userName, Password: "secret123", Role: string(role),
	})
	require.NoError(t, err)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	register(t, svc, "ana", constants.RoleStudent)

	_, err := svc.Register(ctx, authDTO.RegisterRequest{Name: "Ana 2", UserName: "ana", Password: "secret123", Role: "student"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = svc.Register(ctx, authDTO.RegisterRequest{Name: "X", UserName: "xx1", Password: "123", Role: "owner"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	res, err := svc.Login(ctx, authDTO.LoginRequest{UserName: "ana", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, constants.RoleStudent, res.User.Role)

	_, err = svc.Login(ctx, authDTO.LoginRequest{UserName: "ana", Password: "wrong-pass"})
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
	_, err = svc.Login(ctx, authDTO.LoginRequest{UserName: "nobody", Password: "secret123"})
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
}

func TestRegisterRejectsPrivilegedRoles(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	for _, role := range []string{"admin", "uniadmin", "UniAdmin"} {
		_, err := svc.Register(ctx, authDTO.RegisterRequest{
			Name: "Mallory", UserName: "mallory", Password: "secret123", Role: role,
		})
		require.Error(t, err, role)
		assert.True(t, apperr.Is(err, apperr.KindValidation) || apperr.Is(err, apperr.KindForbidden), role)
	}

	_, err := svc.Login(ctx, authDTO.LoginRequest{UserName: "mallory", Password: "secret123"})
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
}

func TestCreateUserRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	created, err := svc.BootstrapAdmin(ctx, "root", "secret123")
	require.NoError(t, err)
	assert.True(t, created)
	created, err = svc.BootstrapAdmin(ctx, "root2", "secret123")
	require.NoError(t, err)
	assert.False(t, created, "admin sudah ada")

	_, err = svc.BootstrapAdmin(ctx, "root3", "123")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	res, err := svc.Login(ctx, authDTO.LoginRequest{UserName: "root", Password: "secret123"})
	require.NoError(t, err)
	require.Equal(t, constants.RoleAdmin, res.User.Role)
	admin := helpersAuth.Identity{UserID: res.User.ID, Role: constants.RoleAdmin}

	req := authDTO.CreateUserRequest{Name: "Rektorat", UserName: "rektorat", Password: "secret123", Role: "uniadmin"}

	for _, role := range []constants.Role{constants.RoleStudent, constants.RoleTeacher, constants.RoleUniAdmin} {
		_, err = svc.CreateUser(ctx, helpersAuth.Identity{UserID: res.User.ID, Role: role}, req)
		assert.True(t, apperr.Is(err, apperr.KindForbidden), role)
	}

	user, err := svc.CreateUser(ctx, admin, req)
	require.NoError(t, err)
	assert.Equal(t, constants.RoleUniAdmin, user.Role)

	_, err = svc.CreateUser(ctx, admin, req)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = svc.CreateUser(ctx, admin, authDTO.CreateUserRequest{Name: "X", UserName: "xx2", Password: "secret123", Role: "owner"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestAuthenticateAndLogout(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	register(t, svc, "tono", constants.RoleTeacher)

	res, err := svc.Login(ctx, authDTO.LoginRequest{UserName: "tono", Password: "secret123"})
	require.NoError(t, err)

	id, exp, err := svc.Authenticate(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, constants.RoleTeacher, id.Role)
	assert.Equal(t, res.User.ID, id.UserID)

	require.NoError(t, svc.Logout(ctx, res.AccessToken, exp))
	require.NoError(t, svc.Logout(ctx, res.AccessToken, exp))
	_, _, err = svc.Authenticate(ctx, res.AccessToken)
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))

	_, _, err = svc.Authenticate(ctx, "not-a-jwt")
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	register(t, svc, "lama", constants.RoleStudent)
	res, err := svc.Login(ctx, authDTO.LoginRequest{UserName: "lama", Password: "secret123"})
	require.NoError(t, err)

	svc.Now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }
	_, _, err = svc.Authenticate(ctx, res.AccessToken)
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
}

func TestLoginGoogle(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	_, err := svc.Register(ctx, authDTO.RegisterRequest{
		Name: "Gita", UserName: "gita", Password: "secret123", Role: "student", Email: "Gita@Uni.edu",
	})
	require.NoError(t, err)

	svc.Google = stubGoogle{claims: GoogleClaims{Email: "gita@uni.edu", Sub: "g-123"}}
	res, err := svc.LoginGoogle(ctx, authDTO.GoogleLoginRequest{IDToken: "tok"})
	require.NoError(t, err)
	assert.Equal(t, "gita", res.User.UserName)

	user, err := userRepo.FindUserByID(ctx, svc.DB, res.User.ID)
	require.NoError(t, err)
	require.NotNil(t, user.GoogleID)
	assert.Equal(t, "g-123", *user.GoogleID)

	svc.Google = stubGoogle{claims: GoogleClaims{Email: "stranger@uni.edu", Sub: "g-999"}}
	_, err = svc.LoginGoogle(ctx, authDTO.GoogleLoginRequest{IDToken: "tok"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	svc.Google = stubGoogle{err: errors.New("bad audience")}
	_, err = svc.LoginGoogle(ctx, authDTO.GoogleLoginRequest{IDToken: "tok"})
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
}

func TestBlacklistCleanup(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	now := time.Now().UTC()

	require.NoError(t, svc.Logout(ctx, "old-token", now.Add(-10*24*time.Hour)))
	require.NoError(t, svc.Logout(ctx, "fresh-token", now.Add(time.Hour)))

	n, err := scheduler.RunBlacklistCleanup(ctx, svc.DB, now, 7)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, _, err = svc.Authenticate(ctx, "fresh-token")
	assert.Error(t, err)
}
