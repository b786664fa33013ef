package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/pharmacy-portal/internal/cache"
	"github.com/jwalitptl/pharmacy-portal/internal/model"
	"github.com/jwalitptl/pharmacy-portal/internal/repository"
	jwtauth "github.com/jwalitptl/pharmacy-portal/pkg/auth"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.AuthUser) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.AuthUser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthUser), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*model.AuthUser, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthUser), args.Error(1)
}

func (m *mockUserRepo) TouchSignIn(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func newTestService(users repository.UserRepository, accessTTL time.Duration) Service {
	return newTestServiceWithRotations(users, accessTTL, cache.NewRotations(time.Minute, time.Minute))
}

func newTestServiceWithRotations(users repository.UserRepository, accessTTL time.Duration, rotations Rotations) Service {
	jwt := jwtauth.NewJWTService(jwtauth.Config{
		Secret:     "secret",
		Issuer:     "test",
		AccessTTL:  accessTTL,
		RefreshTTL: time.Hour,
	})
	return NewService(users, jwt, cache.NewDenylist(time.Minute), rotations, zerolog.Nop())
}

// refreshFixture signs a user in with already-expired access tokens so every
// GetUser goes through the refresh path.
func refreshFixture(t *testing.T, rotations Rotations) (Service, *model.AuthUser, *model.Session) {
	t.Helper()
	user := storedUser(t, "pw1234")
	users := new(mockUserRepo)
	users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	users.On("TouchSignIn", mock.Anything, user.ID, mock.Anything).Return(nil)
	users.On("Get", mock.Anything, user.ID).Return(user, nil)

	svc := newTestServiceWithRotations(users, -time.Minute, rotations)
	session, err := svc.SignIn(context.Background(), user.Email, "pw1234")
	require.NoError(t, err)
	return svc, user, session
}

func storedUser(t *testing.T, password string) *model.AuthUser {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &model.AuthUser{
		ID:           uuid.New(),
		Email:        "asha@example.com",
		PasswordHash: string(hash),
		Metadata:     model.JSONMap{model.MetaRole: "pharmacist"},
	}
}

func TestSignUp(t *testing.T) {
	t.Run("attaches metadata and opens a session", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.AuthUser) bool {
			return u.Email == "new@example.com" && u.Metadata.String(model.MetaRole) == "doctor"
		})).Return(nil)

		svc := newTestService(users, time.Hour)
		session, err := svc.SignUp(context.Background(), " new@example.com ", "secret1", model.JSONMap{model.MetaRole: "doctor"})
		require.NoError(t, err)
		assert.NotEmpty(t, session.AccessToken)
		assert.NotEmpty(t, session.RefreshToken)
		assert.Equal(t, "new@example.com", session.User.Email)
		users.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("Create", mock.Anything, mock.Anything).
			Return(&repository.StoreError{Code: "23505", Message: "duplicate", Kind: repository.ErrDuplicate})

		_, err := newTestService(users, time.Hour).SignUp(context.Background(), "a@b.co", "secret1", nil)
		assert.ErrorIs(t, err, model.ErrEmailTaken)
	})
}

func TestSignIn(t *testing.T) {
	user := storedUser(t, "correct-horse")

	users := new(mockUserRepo)
	users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, repository.ErrNotFound)
	users.On("TouchSignIn", mock.Anything, user.ID, mock.Anything).Return(nil)

	svc := newTestService(users, time.Hour)

	_, err := svc.SignIn(context.Background(), user.Email, "wrong")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)

	_, err = svc.SignIn(context.Background(), "ghost@example.com", "whatever")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)

	session, err := svc.SignIn(context.Background(), user.Email, "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.User.ID)
}

func TestGetUser_ValidAccessToken(t *testing.T) {
	user := storedUser(t, "pw1234")
	users := new(mockUserRepo)
	users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	users.On("TouchSignIn", mock.Anything, user.ID, mock.Anything).Return(nil)

	svc := newTestService(users, time.Hour)
	session, err := svc.SignIn(context.Background(), user.Email, "pw1234")
	require.NoError(t, err)

	got, renewed, err := svc.GetUser(context.Background(), session.AccessToken, session.RefreshToken)
	require.NoError(t, err)
	assert.Nil(t, renewed)
	assert.Equal(t, user.ID, got.ID)
	users.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestGetUser_RefreshesExpiredAccess(t *testing.T) {
	svc, user, session := refreshFixture(t, cache.NewRotations(time.Minute, time.Minute))

	got, renewed, err := svc.GetUser(context.Background(), session.AccessToken, session.RefreshToken)
	require.NoError(t, err)
	require.NotNil(t, renewed)
	assert.Equal(t, user.ID, got.ID)
	assert.NotEqual(t, session.RefreshToken, renewed.RefreshToken)

	// a request racing on the same cookie gets the same replacement
	_, again, err := svc.GetUser(context.Background(), session.AccessToken, session.RefreshToken)
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, renewed.RefreshToken, again.RefreshToken)
}

func TestGetUser_ConcurrentRefreshSharesSession(t *testing.T) {
	svc, user, session := refreshFixture(t, cache.NewRotations(time.Minute, time.Minute))

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*model.Session, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i], errs[i] = svc.GetUser(context.Background(), session.AccessToken, session.RefreshToken)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i], "caller %d", i)
		require.NotNil(t, results[i])
		assert.Equal(t, user.ID, results[i].User.ID)
		assert.Equal(t, results[0].RefreshToken, results[i].RefreshToken, "caller %d", i)
	}
}

func TestGetUser_SpentRefreshRejectedWithoutReuseWindow(t *testing.T) {
	svc, _, session := refreshFixture(t, nil)

	_, renewed, err := svc.GetUser(context.Background(), session.AccessToken, session.RefreshToken)
	require.NoError(t, err)
	require.NotNil(t, renewed)

	_, _, err = svc.GetUser(context.Background(), session.AccessToken, session.RefreshToken)
	assert.ErrorIs(t, err, model.ErrNoSession)
}

func TestGetUser_ReuseWindowEndsAtSignOut(t *testing.T) {
	svc, _, session := refreshFixture(t, cache.NewRotations(time.Minute, time.Minute))

	_, renewed, err := svc.GetUser(context.Background(), session.AccessToken, session.RefreshToken)
	require.NoError(t, err)
	require.NoError(t, svc.SignOut(context.Background(), renewed.AccessToken, renewed.RefreshToken))

	_, _, err = svc.GetUser(context.Background(), session.AccessToken, session.RefreshToken)
	assert.ErrorIs(t, err, model.ErrNoSession)
}

func TestGetUser_NoTokens(t *testing.T) {
	_, _, err := newTestService(new(mockUserRepo), time.Hour).GetUser(context.Background(), "", "")
	assert.ErrorIs(t, err, model.ErrNoSession)
}

func TestSignOut_RevokesSession(t *testing.T) {
	user := storedUser(t, "pw1234")
	users := new(mockUserRepo)
	users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	users.On("TouchSignIn", mock.Anything, user.ID, mock.Anything).Return(nil)

	svc := newTestService(users, time.Hour)
	session, err := svc.SignIn(context.Background(), user.Email, "pw1234")
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(context.Background(), session.AccessToken, session.RefreshToken))

	_, _, err = svc.GetUser(context.Background(), session.AccessToken, session.RefreshToken)
	assert.ErrorIs(t, err, model.ErrNoSession)
}
