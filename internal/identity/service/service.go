package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"eventhub/internal/audit"
	"eventhub/internal/identity"
	"eventhub/internal/identity/token"
	"eventhub/pkg/domain"
	dErrors "eventhub/pkg/domain-errors"
	"eventhub/pkg/platform/sentinel"
	"eventhub/pkg/platform/tx"
	"eventhub/pkg/requestcontext"
)

const minPasswordLength = 8

// dummyHash keeps the bcrypt cost of a failed lookup in line with a real
// comparison, so response timing does not reveal whether the email exists.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("timing-equalizer"), bcrypt.DefaultCost)

// AuditPublisher records account lifecycle actions.
type AuditPublisher interface {
	Emit(ctx context.Context, entry audit.Entry) error
}

// Service owns account signup, login, and logout.
type Service struct {
	users   identity.Store
	tokens  *token.Service
	revoked token.RevocationList
	audit   AuditPublisher
	tx      tx.Runner
	logger  *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(users identity.Store, tokens *token.Service, revoked token.RevocationList, txRunner tx.Runner, auditPub AuditPublisher, opts ...Option) *Service {
	s := &Service{
		users:   users,
		tokens:  tokens,
		revoked: revoked,
		tx:      txRunner,
		audit:   auditPub,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// RegisterParams are the signup fields.
type RegisterParams struct {
	Email    string
	FullName string
	Password string
	Role     string
}

// AuthResult is a signed-in session: the account plus its bearer token.
type AuthResult struct {
	User  *identity.User
	Token string
}

// Register creates an account and signs it in. Super-admin accounts are
// provisioned out of band, never through signup.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}
	if strings.TrimSpace(params.FullName) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "full name is required")
	}
	if len(params.Password) < minPasswordLength {
		return nil, dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}

	role, err := domain.ParseRole(params.Role)
	if err != nil {
		return nil, err
	}
	if role == domain.RoleSuperAdmin {
		return nil, dErrors.New(dErrors.CodeValidation, "this role cannot be self-assigned")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	user := &identity.User{
		ID:           domain.NewUserID(),
		Email:        email,
		FullName:     strings.TrimSpace(params.FullName),
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    requestcontext.Now(ctx),
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.users.Create(txCtx, user); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "email is already registered")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
		}
		return s.emit(txCtx, user.Actor(), audit.ActionUserRegister, user.ID.String(), string(role))
	})
	if err != nil {
		return nil, err
	}

	signed, _, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.logger.InfoContext(ctx, "user registered",
		"user_id", user.ID, "role", user.Role,
		"request_id", requestcontext.RequestID(ctx))
	return &AuthResult{User: user, Token: signed}, nil
}

// Login verifies credentials and issues a token. The error never says
// which credential was wrong.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "user lookup failed")
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		s.emitDenied(ctx, user.Actor(), audit.ActionUserLogin, user.ID.String(), "password mismatch")
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}

	signed, _, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	if err := s.emit(ctx, user.Actor(), audit.ActionUserLogin, user.ID.String(), ""); err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: signed}, nil
}

// Logout revokes the presented token's jti for the remainder of its
// lifetime.
func (s *Service) Logout(ctx context.Context, actor domain.Actor) error {
	jti := requestcontext.TokenID(ctx)
	if jti == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "no token to revoke")
	}

	if err := s.revoked.Revoke(ctx, jti, s.tokens.TTL()); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
	}
	return s.emit(ctx, actor, audit.ActionUserLogout, actor.UserID.String(), "")
}

// Me returns the caller's account.
func (s *Service) Me(ctx context.Context, actor domain.Actor) (*identity.User, error) {
	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "user lookup failed")
	}
	return user, nil
}

func (s *Service) emit(ctx context.Context, actor domain.Actor, action audit.Action, targetID, reason string) error {
	err := s.audit.Emit(ctx, audit.Entry{
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		Action:     action,
		TargetType: audit.TargetUser,
		TargetID:   targetID,
		Outcome:    audit.OutcomeSuccess,
		Reason:     reason,
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeConsistency, "audit write failed")
	}
	return nil
}

func (s *Service) emitDenied(ctx context.Context, actor domain.Actor, action audit.Action, targetID, reason string) {
	err := s.audit.Emit(ctx, audit.Entry{
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		Action:     action,
		TargetType: audit.TargetUser,
		TargetID:   targetID,
		Outcome:    audit.OutcomeDenied,
		Reason:     reason,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to record denied login", "error", err,
			"request_id", requestcontext.RequestID(ctx))
	}
}
