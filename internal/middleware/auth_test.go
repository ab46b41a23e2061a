package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"newera.app/reentry/internal/entity"
	"newera.app/reentry/pkg/response"
)

type stubUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func (r *stubUserRepo) Create(context.Context, *entity.User) error { return nil }
func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (r *stubUserRepo) FindByEmail(context.Context, string) (*entity.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (r *stubUserRepo) FindByUsername(context.Context, string) (*entity.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (r *stubUserRepo) FindStaff(context.Context, bool) ([]*entity.User, error) { return nil, nil }
func (r *stubUserRepo) Update(context.Context, *entity.User) error              { return nil }
func (r *stubUserRepo) SetActive(context.Context, uuid.UUID, bool) error         { return nil }
func (r *stubUserRepo) Count(context.Context) (int64, error)                     { return 0, nil }

func signToken(t *testing.T, subject string, secret string) string {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newRouter(m *AuthMiddleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ok := func(c *gin.Context) {
		u, err := response.GetUser(c)
		if err != nil {
			c.Status(http.StatusNoContent)
			return
		}
		c.String(http.StatusOK, u.Username)
	}
	r.GET("/staff", m.RequireAuth(), m.RequireStaff(), ok)
	r.GET("/admin", m.RequireAuth(), m.RequireAdmin(), ok)
	return r
}

func TestAuthMiddleware(t *testing.T) {
	staff := &entity.User{ID: uuid.New(), Username: "sow", IsActive: true, IsStaff: true}
	admin := &entity.User{ID: uuid.New(), Username: "boss", IsActive: true, IsStaff: true, IsSuperuser: true}
	client := &entity.User{ID: uuid.New(), Username: "plain", IsActive: true}
	retired := &entity.User{ID: uuid.New(), Username: "gone", IsActive: false, IsStaff: true}
	repo := &stubUserRepo{users: map[uuid.UUID]*entity.User{
		staff.ID: staff, admin.ID: admin, client.ID: client, retired.ID: retired,
	}}
	router := newRouter(NewAuthMiddleware(repo, "secret"))

	cases := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{"no token", "/staff", "", http.StatusUnauthorized},
		{"bad signature", "/staff", signToken(t, staff.ID.String(), "other"), http.StatusUnauthorized},
		{"staff ok", "/staff", signToken(t, staff.ID.String(), "secret"), http.StatusOK},
		{"admin as staff", "/staff", signToken(t, admin.ID.String(), "secret"), http.StatusOK},
		{"non staff", "/staff", signToken(t, client.ID.String(), "secret"), http.StatusForbidden},
		{"inactive", "/staff", signToken(t, retired.ID.String(), "secret"), http.StatusUnauthorized},
		{"staff on admin", "/admin", signToken(t, staff.ID.String(), "secret"), http.StatusForbidden},
		{"admin ok", "/admin", signToken(t, admin.ID.String(), "secret"), http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestAuthMiddlewareQueryToken(t *testing.T) {
	staff := &entity.User{ID: uuid.New(), Username: "sow", IsActive: true, IsStaff: true}
	repo := &stubUserRepo{users: map[uuid.UUID]*entity.User{staff.ID: staff}}
	router := newRouter(NewAuthMiddleware(repo, "secret"))

	req := httptest.NewRequest(http.MethodGet, "/staff?token="+signToken(t, staff.ID.String(), "secret"), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sow", rec.Body.String())
}
