package application

import (
	"context"
	"io"
	"time"

	"github.com/oksasatya/edugrant/internal/domain/entity"
)

// CodeSender delivers a verification code to an email address.
type CodeSender interface {
	SendCode(ctx context.Context, email, code string, issuedAt time.Time, ttl time.Duration) error
}

// ChatTurn is one message of an assistant conversation. Role is "user" or "model".
type ChatTurn struct {
	Role string
	Text string
}

type CompletionRequest struct {
	SystemInstruction string
	History           []ChatTurn
	Message           string
}

// Completer is an external text-completion service.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ScholarshipIndex is a full-text index over scholarships. Search returns ids by relevance.
type ScholarshipIndex interface {
	Index(ctx context.Context, s *entity.Scholarship) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q string, size int) ([]string, error)
}

// AvatarStorage stores an avatar image and returns its public URL.
type AvatarStorage interface {
	UploadAvatar(ctx context.Context, identityID, filename, contentType string, r io.Reader) (string, error)
}
