package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/edugrant/internal/domain/apperror"
	"github.com/oksasatya/edugrant/internal/domain/entity"
	repo "github.com/oksasatya/edugrant/internal/domain/repository"
)

const (
	DefaultAssistantContextLimit = 10
	DefaultAssistantTimeout      = 30 * time.Second
)

const assistantInstruction = `You are the Edugrant Assistant. Use the following scholarship data to help students.
If a student mentions their GPA, compare it against the "GPA Req".
If they ask for specific categories, filter the list below.

DATA:
%s

Keep answers helpful and formatted in simple markdown if listing scholarships.`

// AssistantService answers a conversation turn grounded on current listings. It keeps no state.
type AssistantService struct {
	Scholarships repo.ScholarshipRepository
	Completer    Completer
	ContextLimit int
	Timeout      time.Duration
	Logger       *logrus.Logger
}

func NewAssistantService(scholarships repo.ScholarshipRepository, completer Completer, contextLimit int,
	timeout time.Duration, logger *logrus.Logger) *AssistantService {
	if contextLimit <= 0 {
		contextLimit = DefaultAssistantContextLimit
	}
	if timeout <= 0 {
		timeout = DefaultAssistantTimeout
	}
	return &AssistantService{
		Scholarships: scholarships,
		Completer:    completer,
		ContextLimit: contextLimit,
		Timeout:      timeout,
		Logger:       logger,
	}
}

// GroundingLine renders one scholarship for the assistant's data block.
func GroundingLine(sc entity.Scholarship) string {
	return fmt.Sprintf("Name: %s, Amount: %s, Category: %s, GPA Req: %s, Level: %s, Deadline: %s",
		sc.Name,
		strconv.FormatFloat(sc.Amount, 'f', -1, 64),
		sc.Category,
		strconv.FormatFloat(sc.GPARequirement, 'f', -1, 64),
		sc.DegreeLevel,
		sc.Deadline.Format(entity.DateLayout),
	)
}

// SystemInstruction builds the instruction carrying the grounding block.
func (s *AssistantService) SystemInstruction(ctx context.Context) (string, error) {
	list, err := s.Scholarships.List(ctx, repo.ScholarshipFilter{Limit: s.ContextLimit})
	if err != nil {
		return "", storeErr(err, "Scholarship not found")
	}
	lines := make([]string, 0, len(list))
	for _, sc := range list {
		lines = append(lines, GroundingLine(sc))
	}
	return fmt.Sprintf(assistantInstruction, strings.Join(lines, "\n")), nil
}

// Converse forwards history plus message to the completer and returns its text verbatim.
func (s *AssistantService) Converse(ctx context.Context, history []ChatTurn, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", apperror.Validation("Message is required", map[string]string{"message": "is required"})
	}
	for i, t := range history {
		if t.Role != "user" && t.Role != "model" {
			return "", apperror.Validation("Invalid history", map[string]string{
				fmt.Sprintf("history[%d].role", i): "must be one of: user model",
			})
		}
	}
	if s.Completer == nil {
		return "", apperror.New(apperror.KindUpstream, "Assistant is not configured")
	}
	instruction, err := s.SystemInstruction(ctx)
	if err != nil {
		return "", err
	}

	cctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	text, err := s.Completer.Complete(cctx, CompletionRequest{
		SystemInstruction: instruction,
		History:           history,
		Message:           message,
	})
	if err != nil {
		err = classifyCompletionErr(cctx, err)
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("kind", apperror.KindOf(err)).Warn("assistant completion failed")
		}
		return "", err
	}
	return text, nil
}

// classifyCompletionErr keeps kinds set by the completer and maps the rest.
func classifyCompletionErr(ctx context.Context, err error) error {
	var ae *apperror.Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperror.Wrap(apperror.KindUpstreamTimeout, "Assistant took too long to answer", err)
	}
	return apperror.Wrap(apperror.KindUpstream, "Assistant is unavailable", err)
}
