package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"newera.app/reentry/internal/entity"
	"newera.app/reentry/internal/modules/user/dto"
	"newera.app/reentry/pkg/apperror"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[uuid.UUID]*entity.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindStaff(_ context.Context, superuser bool) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range r.users {
		if u.IsSuperuser == superuser && (superuser || u.IsStaff) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.IsActive = active
	return nil
}

func (r *fakeUserRepo) Count(context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

func staffUser(t *testing.T, username, password string) *entity.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &entity.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@newera.org",
		PasswordHash: string(hash),
		Phone:        "4125550100",
		FirstName:    "Dana",
		LastName:     "Lee",
		IsActive:     true,
		IsStaff:      true,
	}
}

func TestLogin(t *testing.T) {
	u := staffUser(t, "dlee", "correct horse")
	svc := NewAuthService(newFakeUserRepo(u), "secret", time.Hour)

	t.Run("by username", func(t *testing.T) {
		res, err := svc.Login(context.Background(), dto.LoginInput{Login: "dlee", Password: "correct horse"})
		require.NoError(t, err)
		assert.Equal(t, "Bearer", res.TokenType)

		claims := &jwt.RegisteredClaims{}
		_, err = jwt.ParseWithClaims(res.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
			return []byte("secret"), nil
		})
		require.NoError(t, err)
		assert.Equal(t, u.ID.String(), claims.Subject)
	})

	t.Run("by email", func(t *testing.T) {
		_, err := svc.Login(context.Background(), dto.LoginInput{Login: "dlee@newera.org", Password: "correct horse"})
		assert.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), dto.LoginInput{Login: "dlee", Password: "nope"})
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login(context.Background(), dto.LoginInput{Login: "ghost", Password: "x"})
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("inactive user", func(t *testing.T) {
		u.IsActive = false
		defer func() { u.IsActive = true }()
		_, err := svc.Login(context.Background(), dto.LoginInput{Login: "dlee", Password: "correct horse"})
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})
}

func TestRegisterUser(t *testing.T) {
	existing := staffUser(t, "dlee", "correct horse")
	repo := newFakeUserRepo(existing)
	svc := NewAdminService(repo)

	input := dto.RegisterUserInput{
		Username:  "mkhan",
		Password:  "longenough",
		Email:     "mkhan@newera.org",
		Phone:     "4125550111",
		FirstName: "Mo",
		LastName:  "Khan",
		UserType:  dto.UserTypeAdmin,
	}

	created, err := svc.RegisterUser(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, created.IsStaff)
	assert.True(t, created.IsSuperuser)
	assert.True(t, created.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("longenough")))

	input.Username = "dlee"
	_, err = svc.RegisterUser(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err))

	input.Username = "other"
	input.Email = existing.Email
	_, err = svc.RegisterUser(context.Background(), input)
	assert.EqualError(t, err, "email already registered")
}

func TestRegisterStaffIsNotSuperuser(t *testing.T) {
	svc := NewAdminService(newFakeUserRepo())

	created, err := svc.RegisterUser(context.Background(), dto.RegisterUserInput{
		Username: "sow1", Password: "longenough", Email: "sow1@newera.org",
		Phone: "4125550112", FirstName: "Sam", LastName: "Ow", UserType: dto.UserTypeStaff,
	})
	require.NoError(t, err)
	assert.True(t, created.IsStaff)
	assert.False(t, created.IsSuperuser)
}

func TestListStaffAndSetActive(t *testing.T) {
	staff := staffUser(t, "dlee", "pw-pw-pw-pw")
	admin := staffUser(t, "boss", "pw-pw-pw-pw")
	admin.IsSuperuser = true
	svc := NewAdminService(newFakeUserRepo(staff, admin))

	res, err := svc.ListStaff(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Admins, 1)
	require.Len(t, res.Staff, 1)
	assert.Equal(t, "boss", res.Admins[0].Username)
	assert.Equal(t, "dlee", res.Staff[0].Username)

	require.NoError(t, svc.SetActive(context.Background(), staff.ID.String(), false))
	assert.False(t, staff.IsActive)

	assert.ErrorIs(t, svc.SetActive(context.Background(), uuid.NewString(), true), apperror.ErrNotFound)
	assert.ErrorIs(t, svc.SetActive(context.Background(), "not-a-uuid", true), apperror.ErrBadRequest)
}
