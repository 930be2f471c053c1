// Package extract turns a spoken sentence into wheel options with a language model.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrEmptyText rejects blank input.
	ErrEmptyText = errors.New("text is empty")
	// ErrNoItems means the model answered but no option could be read from it.
	ErrNoItems = errors.New("no options found")
	// ErrProvider wraps any failure talking to the model.
	ErrProvider = errors.New("extraction provider failed")
)

// Provider completes a single system+user exchange.
type Provider interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Service extracts options with a Provider.
type Service struct {
	provider Provider
	prompt   string
	log      *zap.SugaredLogger
}

// NewService builds a Service that sends systemPrompt with every request.
func NewService(provider Provider, systemPrompt string, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{provider: provider, prompt: systemPrompt, log: log}
}

// Extract returns the options named in text, in the order the model gave them.
func (s *Service) Extract(ctx context.Context, text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	s.log.Debugw("extracting options", "text", text)

	answer, err := s.provider.Complete(ctx, s.prompt, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProvider, err)
	}
	items := CleanItems(answer)
	s.log.Infow("extracted options", "count", len(items), "items", items)
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	return items, nil
}

// CleanItems splits a model answer into options. Lines are trimmed and blank
// ones dropped; an answer that yields at most one line but contains spaces is
// split on spaces instead.
func CleanItems(answer string) []string {
	items := splitTrim(answer, "\n")
	if len(items) <= 1 && strings.Contains(answer, " ") {
		items = splitTrim(answer, " ")
	}
	return items
}

func splitTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
