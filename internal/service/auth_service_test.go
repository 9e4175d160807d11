package service

import (
	"testing"
	"time"

	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	f := newFixture(t)
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour}}
	svc := NewAuthService(f.users, cfg)

	hashed, err := HashPassword("s3cret")
	require.NoError(t, err)
	u := &model.User{Username: "jdoe", Email: "jdoe@example.com", Password: hashed, SiteRole: model.SiteUser}
	require.NoError(t, f.users.Create(f.ctx, u))

	res, err := svc.Login(f.ctx, "jdoe", "s3cret")
	require.NoError(t, err)
	claims, err := util.ParseJWT(res.Token, cfg.JWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, model.SiteUser, claims.SiteRole)

	_, err = svc.Login(f.ctx, "jdoe", "wrong")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
	_, err = svc.Login(f.ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
}
