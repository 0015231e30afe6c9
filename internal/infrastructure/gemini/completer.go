package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oksasatya/edugrant/internal/application"
	"github.com/oksasatya/edugrant/internal/domain/apperror"
)

// Completer sends one chat turn to a Gemini model.
type Completer struct {
	client *genai.Client
	model  string
}

func NewCompleter(ctx context.Context, apiKey, model string) (*Completer, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Completer{client: client, model: model}, nil
}

func (c *Completer) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Completer) Complete(ctx context.Context, req application.CompletionRequest) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.SystemInstruction)}}

	cs := model.StartChat()
	for _, turn := range req.History {
		cs.History = append(cs.History, &genai.Content{
			Role:  turn.Role,
			Parts: []genai.Part{genai.Text(turn.Text)},
		})
	}

	res, err := cs.SendMessage(ctx, genai.Text(req.Message))
	if err != nil {
		return "", classify(ctx, err)
	}
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return "", apperror.New(apperror.KindUpstream, "assistant returned no answer")
	}
	var sb strings.Builder
	for _, p := range res.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if sb.Len() == 0 {
		return "", apperror.New(apperror.KindUpstream, "assistant returned no answer")
	}
	return sb.String(), nil
}

// classify turns a Gemini client error into an apperror kind.
func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperror.Wrap(apperror.KindUpstreamTimeout, "assistant took too long to answer", err)
	}
	if isRateLimited(err) {
		return apperror.Wrap(apperror.KindRateLimited, "assistant is busy, please try again shortly", err)
	}
	return apperror.Wrap(apperror.KindUpstream, "assistant is unavailable", err)
}

func isRateLimited(err error) bool {
	var ae *apierror.APIError
	if errors.As(err, &ae) {
		if ae.HTTPCode() == http.StatusTooManyRequests {
			return true
		}
		if st := ae.GRPCStatus(); st != nil && st.Code() == codes.ResourceExhausted {
			return true
		}
	}
	var ge *googleapi.Error
	if errors.As(err, &ge) && ge.Code == http.StatusTooManyRequests {
		return true
	}
	return status.Code(err) == codes.ResourceExhausted
}
