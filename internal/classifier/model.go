package classifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"

	"github.com/amlwatch/aml-backend/internal/logging"
)

const systemPrompt = "You are an assistant that evaluates bank transactions " +
	"for anti-money-laundering purposes. Respond only with 'true' if the " +
	"transaction is suspicious or 'false' if it is not. Consider any amount " +
	"greater than %s suspicious."

// Model delegates the suspicion decision to a Gemini model. The model is
// given the same threshold hint the rule-based strategy enforces, but its
// answer is taken as-is.
type Model struct {
	client    *genai.Client
	modelName string
	threshold decimal.Decimal
	timeout   time.Duration
}

func NewModel(ctx context.Context, modelName string, threshold float64, timeout time.Duration) (*Model, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("classifier.NewModel: %w", err)
	}
	return &Model{
		client:    client,
		modelName: modelName,
		threshold: decimal.NewFromFloat(threshold),
		timeout:   timeout,
	}, nil
}

func (m *Model) Classify(ctx context.Context, amount decimal.Decimal) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	prompt := fmt.Sprintf(systemPrompt, m.threshold.String()) +
		fmt.Sprintf("\n\nTransaction amount: %s. Is this transaction suspicious?", amount.String())

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	start := time.Now()
	resp, err := m.client.Models.GenerateContent(ctx, m.modelName, contents, nil)
	if err != nil {
		return false, fmt.Errorf("Classify: generate content: %w", err)
	}

	answer := strings.ToLower(strings.TrimSpace(resp.Text()))
	logging.FromContext(ctx).Debug("classifier model answered",
		"answer", answer,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	switch answer {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("Classify: unexpected model answer %q", answer)
	}
}
