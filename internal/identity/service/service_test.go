package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"eventhub/internal/audit"
	"eventhub/internal/identity"
	"eventhub/internal/identity/token"
	"eventhub/pkg/domain"
	dErrors "eventhub/pkg/domain-errors"
	"eventhub/pkg/platform/tx"
	"eventhub/pkg/requestcontext"
)

type IdentityServiceSuite struct {
	suite.Suite

	ctx      context.Context
	users    *identity.InMemoryStore
	tokens   *token.Service
	revoked  *token.InMemoryRevocationList
	auditLog *audit.InMemoryStore
	verifier *token.Verifier
	svc      *Service
}

func TestIdentityServiceSuite(t *testing.T) {
	suite.Run(t, new(IdentityServiceSuite))
}

func (s *IdentityServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, time.June, 1, 8, 0, 0, 0, time.UTC))
	s.users = identity.NewInMemoryStore()
	s.tokens = token.NewService("test-signing-key", time.Hour)
	s.revoked = token.NewInMemoryRevocationList()
	s.auditLog = audit.NewInMemoryStore()
	s.verifier = token.NewVerifier(s.tokens, s.revoked)
	s.svc = New(s.users, s.tokens, s.revoked, tx.NopRunner{}, audit.NewPublisher(s.auditLog))
}

func (s *IdentityServiceSuite) signup(email, role string) *AuthResult {
	result, err := s.svc.Register(s.ctx, RegisterParams{
		Email:    email,
		FullName: "Test Person",
		Password: "correct-horse",
		Role:     role,
	})
	s.Require().NoError(err)
	return result
}

func (s *IdentityServiceSuite) TestRegisterIssuesUsableToken() {
	result := s.signup("student@campus.edu", "student")

	s.Equal(domain.RoleStudent, result.User.Role)
	s.NotEmpty(result.Token)

	actor, jti, err := s.verifier.Verify(s.ctx, result.Token)
	s.Require().NoError(err)
	s.Equal(result.User.ID, actor.UserID)
	s.NotEmpty(jti)
}

func (s *IdentityServiceSuite) TestRegisterValidation() {
	cases := []struct {
		name   string
		params RegisterParams
	}{
		{"bad email", RegisterParams{Email: "nope", FullName: "A", Password: "longenough", Role: "student"}},
		{"empty name", RegisterParams{Email: "a@b.edu", FullName: " ", Password: "longenough", Role: "student"}},
		{"short password", RegisterParams{Email: "a@b.edu", FullName: "A", Password: "short", Role: "student"}},
		{"unknown role", RegisterParams{Email: "a@b.edu", FullName: "A", Password: "longenough", Role: "dean"}},
		{"super-admin signup", RegisterParams{Email: "a@b.edu", FullName: "A", Password: "longenough", Role: "super-admin"}},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.svc.Register(s.ctx, tc.params)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}

func (s *IdentityServiceSuite) TestRegisterDuplicateEmail() {
	s.signup("taken@campus.edu", "student")

	_, err := s.svc.Register(s.ctx, RegisterParams{
		Email:    "Taken@Campus.edu",
		FullName: "Someone Else",
		Password: "longenough",
		Role:     "student",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *IdentityServiceSuite) TestLoginRoundTrip() {
	created := s.signup("admin@campus.edu", "college-admin")

	result, err := s.svc.Login(s.ctx, "admin@campus.edu", "correct-horse")
	s.Require().NoError(err)
	s.Equal(created.User.ID, result.User.ID)

	actor, _, err := s.verifier.Verify(s.ctx, result.Token)
	s.Require().NoError(err)
	s.Equal(domain.RoleCollegeAdmin, actor.Role)
}

func (s *IdentityServiceSuite) TestLoginDoesNotRevealWhichCredentialFailed() {
	s.signup("known@campus.edu", "student")

	_, errUnknown := s.svc.Login(s.ctx, "unknown@campus.edu", "whatever-pass")
	_, errWrongPass := s.svc.Login(s.ctx, "known@campus.edu", "wrong-password")

	s.Require().Error(errUnknown)
	s.Require().Error(errWrongPass)
	s.Equal(dErrors.MessageOf(errUnknown), dErrors.MessageOf(errWrongPass))
	s.True(dErrors.HasCode(errUnknown, dErrors.CodeUnauthorized))
	s.True(dErrors.HasCode(errWrongPass, dErrors.CodeUnauthorized))
}

func (s *IdentityServiceSuite) TestFailedLoginIsAudited() {
	s.signup("known@campus.edu", "student")

	_, err := s.svc.Login(s.ctx, "known@campus.edu", "wrong-password")
	s.Require().Error(err)

	entries, err := s.auditLog.ListRecent(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().NotEmpty(entries)
	s.Equal(audit.ActionUserLogin, entries[0].Action)
	s.Equal(audit.OutcomeDenied, entries[0].Outcome)
}

func (s *IdentityServiceSuite) TestLogoutRevokesToken() {
	result := s.signup("student@campus.edu", "student")

	actor, jti, err := s.verifier.Verify(s.ctx, result.Token)
	s.Require().NoError(err)

	ctx := requestcontext.WithTokenID(s.ctx, jti)
	s.Require().NoError(s.svc.Logout(ctx, actor))

	_, _, err = s.verifier.Verify(s.ctx, result.Token)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *IdentityServiceSuite) TestMe() {
	result := s.signup("me@campus.edu", "student")

	user, err := s.svc.Me(s.ctx, result.User.Actor())
	s.Require().NoError(err)
	s.Equal("me@campus.edu", user.Email)

	_, err = s.svc.Me(s.ctx, domain.Actor{UserID: domain.NewUserID(), Role: domain.RoleStudent})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
