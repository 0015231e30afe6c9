package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/edugrant/internal/domain/apperror"
	"github.com/oksasatya/edugrant/internal/domain/entity"
	repo "github.com/oksasatya/edugrant/internal/domain/repository"
	"github.com/oksasatya/edugrant/pkg/helpers"
)

const DefaultCodeTTL = 5 * time.Minute

type AuthService struct {
	Identities repo.IdentityRepository
	Codes      repo.OneTimeCodeStore
	// Denylist is optional; without it logout only clears the client credential.
	Denylist repo.SessionDenylist
	Sender   CodeSender
	JWT      *helpers.JWTManager
	Avatars  AvatarStorage
	CodeTTL  time.Duration
	Logger   *logrus.Logger
	Now      func() time.Time
}

func NewAuthService(identities repo.IdentityRepository, codes repo.OneTimeCodeStore, denylist repo.SessionDenylist,
	sender CodeSender, jwt *helpers.JWTManager, avatars AvatarStorage, codeTTL time.Duration, logger *logrus.Logger) *AuthService {
	if codeTTL <= 0 {
		codeTTL = DefaultCodeTTL
	}
	return &AuthService{
		Identities: identities,
		Codes:      codes,
		Denylist:   denylist,
		Sender:     sender,
		JWT:        jwt,
		Avatars:    avatars,
		CodeTTL:    codeTTL,
		Logger:     logger,
		Now:        func() time.Time { return time.Now().UTC() },
	}
}

// Session is a minted session token.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

type VerifyResult struct {
	IsRegistered bool
	Identity     *entity.Identity
	Session      *Session
}

type RegisterInput struct {
	Email   string
	Name    string
	Role    entity.Role
	Student *entity.StudentProfile
	Admin   *entity.AdminProfile
}

// ProfileUpdate carries the editable parts of an identity. Nil fields are left unchanged;
// a non-nil Student or Admin replaces that variant whole.
type ProfileUpdate struct {
	Name    *string
	Student *entity.StudentProfile
	Admin   *entity.AdminProfile
}

var errInvalidCode = apperror.New(apperror.KindInvalidCode, "Invalid or expired code")

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// RequestCode issues a fresh code for email, replacing any live one, and hands it
// to the sender. A delivery failure is reported but the stored code stays valid.
func (s *AuthService) RequestCode(ctx context.Context, email string) error {
	email = helpers.NormalizeEmail(email)
	code, err := helpers.GenOTPCode()
	if err != nil {
		return apperror.Wrap(apperror.KindInternal, "could not generate code", err)
	}
	hash, err := helpers.HashCode(code)
	if err != nil {
		return apperror.Wrap(apperror.KindInternal, "could not generate code", err)
	}
	issued := s.now()
	if err := s.Codes.Save(ctx, entity.OneTimeCode{Email: email, CodeHash: hash, IssuedAt: issued}, s.CodeTTL); err != nil {
		return storeErr(err, "code not found")
	}
	if err := s.Sender.SendCode(ctx, email, code, issued, s.CodeTTL); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("email", email).Error("send verification code failed")
		}
		return apperror.Wrap(apperror.KindUpstream, "Could not send the verification code, please try again", err)
	}
	return nil
}

// VerifyCode consumes the live code for email. A wrong code leaves it in place.
func (s *AuthService) VerifyCode(ctx context.Context, email, code string) (*VerifyResult, error) {
	email = helpers.NormalizeEmail(email)
	otp, err := s.Codes.Get(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, errInvalidCode
	}
	if err != nil {
		return nil, storeErr(err, "code not found")
	}
	if otp.Expired(s.now(), s.CodeTTL) {
		_ = s.Codes.Delete(ctx, email)
		return nil, errInvalidCode
	}
	if !helpers.CompareCode(otp.CodeHash, strings.TrimSpace(code)) {
		return nil, errInvalidCode
	}
	consumed, err := s.Codes.Consume(ctx, email, otp.CodeHash)
	if err != nil {
		return nil, storeErr(err, "code not found")
	}
	if !consumed {
		return nil, errInvalidCode
	}

	identity, err := s.Identities.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return &VerifyResult{IsRegistered: false}, nil
	}
	if err != nil {
		return nil, storeErr(err, "user not found")
	}
	sess, err := s.issue(identity)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{IsRegistered: true, Identity: identity, Session: sess}, nil
}

// Register creates the identity as submitted; only the profile variant matching the role is kept.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.Identity, *Session, error) {
	email := helpers.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)

	var identity *entity.Identity
	switch in.Role {
	case entity.RoleStudent:
		var p entity.StudentProfile
		if in.Student != nil {
			p = *in.Student
		}
		if err := checkStudentNumbers(&p); err != nil {
			return nil, nil, err
		}
		identity = entity.NewStudent(email, name, p)
	case entity.RoleAdmin:
		var p entity.AdminProfile
		if in.Admin != nil {
			p = *in.Admin
		}
		identity = entity.NewAdmin(email, name, p)
	default:
		return nil, nil, apperror.Validation("Invalid role", map[string]string{"role": "must be one of: student admin"})
	}

	if err := s.Identities.Create(ctx, identity); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, nil, apperror.New(apperror.KindDuplicateEmail, "User already exists")
		}
		return nil, nil, storeErr(err, "user not found")
	}
	sess, err := s.issue(identity)
	if err != nil {
		return nil, nil, err
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"identity_id": identity.ID, "role": identity.Role}).Info("identity registered")
	}
	return identity, sess, nil
}

func (s *AuthService) issue(identity *entity.Identity) (*Session, error) {
	token, exp, err := s.JWT.Issue(identity.ID, string(identity.Role))
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("identity_id", identity.ID).Error("issue session token failed")
		}
		return nil, apperror.Wrap(apperror.KindInternal, "could not create session", err)
	}
	return &Session{Token: token, ExpiresAt: exp}, nil
}

// ResolveSession verifies token and loads the identity it is bound to.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*entity.Identity, *helpers.Claims, error) {
	if token == "" {
		return nil, nil, apperror.New(apperror.KindInvalidSession, "Not authorized, no token")
	}
	claims, err := s.JWT.Parse(token)
	if errors.Is(err, helpers.ErrTokenExpired) {
		return nil, nil, apperror.New(apperror.KindSessionExpired, "Session expired, please log in again")
	}
	if err != nil {
		return nil, nil, apperror.Wrap(apperror.KindInvalidSession, "Invalid session", err)
	}
	if s.Denylist != nil && claims.ID != "" {
		revoked, err := s.Denylist.IsRevoked(ctx, claims.ID)
		if err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("session denylist lookup failed")
		}
		if revoked {
			return nil, nil, apperror.New(apperror.KindInvalidSession, "Invalid session")
		}
	}
	identity, err := s.Identities.GetByID(ctx, claims.IdentityID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil, apperror.New(apperror.KindInvalidSession, "Invalid session")
	}
	if err != nil {
		return nil, nil, storeErr(err, "user not found")
	}
	return identity, claims, nil
}

// Logout revokes the token id for the rest of its lifetime when a denylist is configured.
func (s *AuthService) Logout(ctx context.Context, claims *helpers.Claims) error {
	if s.Denylist == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := claims.Expiry().Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.Denylist.Revoke(ctx, claims.ID, ttl); err != nil {
		return storeErr(err, "session not found")
	}
	return nil
}

func (s *AuthService) GetProfile(ctx context.Context, identityID string) (*entity.Identity, error) {
	identity, err := s.Identities.GetByID(ctx, identityID)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	return identity, nil
}

// UpdateProfile edits the name and the profile variant of the identity's own role.
func (s *AuthService) UpdateProfile(ctx context.Context, identityID string, in ProfileUpdate) (*entity.Identity, error) {
	identity, err := s.GetProfile(ctx, identityID)
	if err != nil {
		return nil, err
	}
	if in.Student != nil && !identity.IsStudent() {
		return nil, apperror.Validation("Student fields cannot be set on an admin profile", map[string]string{"student": "not allowed for role admin"})
	}
	if in.Admin != nil && !identity.IsAdmin() {
		return nil, apperror.Validation("Admin fields cannot be set on a student profile", map[string]string{"admin": "not allowed for role student"})
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperror.Validation("Name is required", map[string]string{"name": "is required"})
		}
		identity.Name = name
	}
	if in.Student != nil {
		if err := checkStudentNumbers(in.Student); err != nil {
			return nil, err
		}
		p := *in.Student
		identity.Student = &p
	}
	if in.Admin != nil {
		p := *in.Admin
		identity.Admin = &p
	}
	if err := s.Identities.Update(ctx, identity); err != nil {
		return nil, storeErr(err, "User not found")
	}
	return identity, nil
}

// UploadAvatar stores the image and points the identity's avatar at it.
func (s *AuthService) UploadAvatar(ctx context.Context, identityID, filename, contentType string, r io.Reader) (*entity.Identity, error) {
	if s.Avatars == nil {
		return nil, apperror.New(apperror.KindUpstream, "Avatar storage is not configured")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, apperror.Validation("Avatar must be an image", map[string]string{"file": "must be an image"})
	}
	identity, err := s.GetProfile(ctx, identityID)
	if err != nil {
		return nil, err
	}
	url, err := s.Avatars.UploadAvatar(ctx, identityID, filename, contentType, r)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("identity_id", identityID).Error("avatar upload failed")
		}
		return nil, apperror.Wrap(apperror.KindUpstream, "Could not store the avatar", err)
	}
	identity.AvatarURL = url
	if err := s.Identities.Update(ctx, identity); err != nil {
		return nil, storeErr(err, "User not found")
	}
	return identity, nil
}
