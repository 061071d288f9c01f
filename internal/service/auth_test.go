package service

import (
	"context"
	"testing"

	"github.com/refrain2333/link-ai/internal/domain"
	"github.com/stretchr/testify/suite"
)

type AuthServiceSuite struct {
	suite.Suite
	f   *fixture
	ctx context.Context
}

func TestAuthService(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) SetupTest() {
	s.f = newFixture(s.T())
	s.ctx = context.Background()
}

func (s *AuthServiceSuite) TestRegisterThenLogin() {
	reg, err := s.f.auth.Register(s.ctx, "  A@X.com ", "secret1", "Alice")
	s.Require().NoError(err)
	s.Equal("a@x.com", reg.User.Email)
	s.Equal("100", reg.User.Credits.String())
	s.Equal(domain.RoleUser, reg.User.Role)

	login, err := s.f.auth.Login(s.ctx, "a@x.com", "secret1", "10.0.0.1")
	s.Require().NoError(err)

	claims, err := s.f.auth.Verify(login.Token)
	s.Require().NoError(err)
	s.Equal(reg.User.ID, claims.UserID)
	s.Equal("Alice", claims.Name)
	s.Equal("a@x.com", claims.Email)

	u, err := s.f.store.GetUserByID(s.ctx, reg.User.ID)
	s.Require().NoError(err)
	s.Require().NotNil(u.LastLoginAt)
	s.Equal("10.0.0.1", *u.LastLoginIP)

	s.Require().Len(s.f.notifier.registrations, 1)
	s.Equal(reg.User.ID, s.f.notifier.registrations[0].ID)
}

func (s *AuthServiceSuite) TestWrongPasswordMutatesNothing() {
	reg, err := s.f.auth.Register(s.ctx, "a@x.com", "secret1", "")
	s.Require().NoError(err)

	res, err := s.f.auth.Login(s.ctx, "a@x.com", "secret2", "10.0.0.1")
	s.ErrorIs(err, domain.ErrInvalidCredentials)
	s.Nil(res)

	u, err := s.f.store.GetUserByID(s.ctx, reg.User.ID)
	s.Require().NoError(err)
	s.Nil(u.LastLoginAt)
	s.Nil(u.LastLoginIP)
}

func (s *AuthServiceSuite) TestUnknownEmailLooksLikeWrongPassword() {
	_, err := s.f.auth.Register(s.ctx, "a@x.com", "secret1", "")
	s.Require().NoError(err)

	_, unknown := s.f.auth.Login(s.ctx, "nobody@x.com", "secret1", "")
	_, wrong := s.f.auth.Login(s.ctx, "a@x.com", "nope123", "")
	s.Require().Error(unknown)
	s.Equal(unknown.Error(), wrong.Error())
}

func (s *AuthServiceSuite) TestRegisterDefaultsNameToLocalPart() {
	reg, err := s.f.auth.Register(s.ctx, "bob.smith@example.com", "secret1", "   ")
	s.Require().NoError(err)
	s.Equal("bob.smith", reg.User.Name)
}

func (s *AuthServiceSuite) TestRegisterDuplicateEmail() {
	_, err := s.f.auth.Register(s.ctx, "a@x.com", "secret1", "")
	s.Require().NoError(err)

	_, err = s.f.auth.Register(s.ctx, "A@x.com", "secret1", "")
	s.ErrorIs(err, domain.ErrEmailTaken)
}

func (s *AuthServiceSuite) TestRegisterValidation() {
	cases := []struct {
		email, password, name, field string
	}{
		{"not-an-email", "secret1", "", "email"},
		{"a@x.com", "short", "", "password"},
		{"a@x.com", string(make([]byte, 73)), "", "password"},
		{"a@x.com", "secret1", string(make([]rune, 65)), "name"},
	}
	for _, tc := range cases {
		_, err := s.f.auth.Register(s.ctx, tc.email, tc.password, tc.name)
		var derr *domain.Error
		s.Require().ErrorAs(err, &derr, tc.field)
		s.Equal(domain.KindValidation, derr.Kind)
		s.Equal(tc.field, derr.Field)
	}
}

func (s *AuthServiceSuite) TestChangePassword() {
	reg, err := s.f.auth.Register(s.ctx, "a@x.com", "secret1", "")
	s.Require().NoError(err)

	s.ErrorIs(s.f.auth.ChangePassword(s.ctx, reg.User.ID, "wrong!!", "newsecret"), domain.ErrWrongPassword)
	s.Require().NoError(s.f.auth.ChangePassword(s.ctx, reg.User.ID, "secret1", "newsecret"))

	_, err = s.f.auth.Login(s.ctx, "a@x.com", "secret1", "")
	s.ErrorIs(err, domain.ErrInvalidCredentials)
	_, err = s.f.auth.Login(s.ctx, "a@x.com", "newsecret", "")
	s.NoError(err)
}

func (s *AuthServiceSuite) TestProfileAndStats() {
	reg, err := s.f.auth.Register(s.ctx, "a@x.com", "secret1", "Old")
	s.Require().NoError(err)

	u, err := s.f.auth.UpdateProfile(s.ctx, reg.User.ID, "  New  ")
	s.Require().NoError(err)
	s.Equal("New", u.Name)

	_, err = s.f.auth.UpdateProfile(s.ctx, reg.User.ID, "")
	s.Error(err)

	chat, err := s.f.store.CreateChat(s.ctx, reg.User.ID, "t", nil)
	s.Require().NoError(err)
	_, err = s.f.store.CreateMessage(s.ctx, domain.Message{ChatID: chat.ID, Role: domain.MessageRoleUser, Content: "x", TotalTokens: 7})
	s.Require().NoError(err)

	stats, err := s.f.auth.Stats(s.ctx, reg.User.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), stats.ChatCount)
	s.Equal(int64(1), stats.MessageCount)
	s.Equal(int64(7), stats.TotalTokens)
	s.Equal("100", stats.Credits.String())
}
