// Package summary generates short market blurbs. Providers are tried in
// order and any failure falls through to a deterministic one-liner built
// from the numbers already on hand, so a summary is always produced.
package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/calebrosario/pregame/internal/llm"
	"github.com/calebrosario/pregame/internal/logging"
)

// Request carries the facts a summary may mention. Nil fields are reported
// as unavailable rather than guessed at.
type Request struct {
	Matchup        string   `json:"matchup"`
	Sport          string   `json:"sport"`
	Probability    *float64 `json:"implied_prob,omitempty"`
	Volume24h      *float64 `json:"volume_24h,omitempty"`
	SportsbookProb *float64 `json:"sportsbook_prob,omitempty"`
	GameDate       string   `json:"game_date,omitempty"`
}

// Provider is one summary backend.
type Provider interface {
	Name() string
	Summarize(ctx context.Context, req Request) (string, error)
}

// Service runs the provider chain.
type Service struct {
	providers []Provider
}

// NewService builds a service over the given providers, in preference order.
// A service with no providers always answers with the fallback line.
func NewService(providers ...Provider) *Service {
	return &Service{providers: providers}
}

// Summarize returns the first provider answer and that provider's name, or
// the fallback line under the name "fallback" when every provider fails. It
// never returns an empty string.
func (s *Service) Summarize(ctx context.Context, req Request) (string, string) {
	for _, p := range s.providers {
		text, err := p.Summarize(ctx, req)
		if err != nil {
			logging.Warnf("[summary] provider %s: %v", p.Name(), err)
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			return text, p.Name()
		}
	}
	return Fallback(req), "fallback"
}

// Fallback is the deterministic summary used when no provider answers.
func Fallback(req Request) string {
	return fmt.Sprintf("%s: implied %s, 24h vol %s.", req.Matchup, probText(req.Probability), volumeText(req.Volume24h))
}

func probText(p *float64) string {
	if p == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", *p*100)
}

func volumeText(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return groupDigits(int64(*v))
}

// groupDigits renders 1234567 as "1,234,567".
func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var b strings.Builder
	for i, d := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

const systemPrompt = "Be precise; do not invent numbers."

// llmProvider adapts a chat-completion client into a Provider.
type llmProvider struct {
	name   string
	client *llm.Client
}

// NewOpenAIProvider summarizes via the OpenAI API. An empty model uses the
// client default.
func NewOpenAIProvider(apiKey, model string) (Provider, error) {
	client, err := llm.New(llm.Config{
		APIKey:      apiKey,
		Model:       model,
		Temperature: 0.2,
		Timeout:     30 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	return &llmProvider{name: "openai", client: client}, nil
}

// NewGeminiProvider summarizes via Gemini's OpenAI-compatible endpoint.
func NewGeminiProvider(apiKey, model string) (Provider, error) {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := llm.New(llm.Config{
		APIKey:      apiKey,
		BaseURL:     "https://generativelanguage.googleapis.com/v1beta/openai/",
		Model:       model,
		Temperature: 0.2,
		Timeout:     30 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	return &llmProvider{name: "gemini", client: client}, nil
}

func (p *llmProvider) Name() string {
	return p.name
}

func (p *llmProvider) Summarize(ctx context.Context, req Request) (string, error) {
	sport := req.Sport
	if sport == "" {
		sport = "sports"
	}
	prompt := fmt.Sprintf("You are a concise %s market analyst. Using only the provided numbers, write <=80 words:\n"+
		"- State the matchup.\n"+
		"- Give implied probability and 24h volume context.\n"+
		"- Compare to the sportsbook consensus briefly if present.\n"+
		"Neutral tone. Do not invent numbers.", sport)

	payload, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	return p.client.Complete(ctx, systemPrompt, prompt+"\n\n"+string(payload))
}
