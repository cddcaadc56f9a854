package insight

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "marketdash/internal/errors"
	"marketdash/internal/logging"
	"marketdash/internal/models"
	"marketdash/pkg/utils"
)

// Fixed responses for the two recoverable failure modes. Insight failures
// never reach the caller as errors; they resolve to displayable text.
const (
	MsgMissingCredential = "API key is missing. Please configure your environment to use AI features."
	MsgUnavailable       = "AI analysis is currently unavailable. Please try again later."
)

// topMovers is how many assets make it into the prompt, ranked by absolute
// 24h change.
const topMovers = 8

// Client produces market summaries. A nil LLM client models the missing
// credential case and degrades to a fixed message instead of failing.
type Client struct {
	llm    LLMClient
	logger zerolog.Logger
	retry  utils.RetryConfig
}

// NewClient creates an insight client. Pass a nil llm when no credential is
// configured.
func NewClient(llm LLMClient, logger zerolog.Logger) *Client {
	return &Client{
		llm:    llm,
		logger: logger.With().Str("component", "insight").Logger(),
		retry: utils.RetryConfig{
			MaxAttempts:   2,
			InitialDelay:  500 * time.Millisecond,
			MaxDelay:      2 * time.Second,
			BackoffFactor: 2.0,
		},
	}
}

// MarketSummary generates a short sentiment summary for the given assets in
// the requested language. It never returns an error: misconfiguration and
// provider failures both resolve to fixed explanatory strings.
func (c *Client) MarketSummary(ctx context.Context, assets []models.Asset, language models.Language) string {
	logger := logging.WithOperation(c.logger, "market_summary")

	if c.llm == nil {
		logger.Warn().Err(apperrors.ErrMissingCredential).Msg("Insight degraded to static message")
		return MsgMissingCredential
	}

	prompt := BuildPrompt(assets, language)

	text, err := utils.RetryWithResult(ctx, c.retry, func() (string, error) {
		return c.llm.Complete(ctx, prompt)
	})
	if err != nil {
		logger.Error().Err(apperrors.NewInsightError("market_summary", err)).Msg("Insight generation failed")
		return MsgUnavailable
	}

	return strings.TrimSpace(text)
}

// BuildPrompt assembles the analyst prompt from the top movers.
func BuildPrompt(assets []models.Asset, language models.Language) string {
	movers := make([]models.Asset, len(assets))
	copy(movers, assets)
	sort.SliceStable(movers, func(i, j int) bool {
		return math.Abs(movers[i].Change24h) > math.Abs(movers[j].Change24h)
	})
	if len(movers) > topMovers {
		movers = movers[:topMovers]
	}

	var sb strings.Builder
	for _, a := range movers {
		sign := ""
		if a.Change24h > 0 {
			sign = "+"
		}
		sb.WriteString(fmt.Sprintf("- %s (%s): $%.4f (24h: %s%.2f%%)\n", a.Name, a.Symbol, a.CurrentPrice, sign, a.Change24h))
	}

	languageInstruction := "Answer in English."
	if language == models.LanguagePortuguese {
		languageInstruction = "Answer in Brazilian Portuguese."
	}

	return fmt.Sprintf(`Act as a crypto market analyst. Here are the top movers right now:
%s
Provide a concise 3-sentence summary of the current market sentiment (Bullish/Bearish/Neutral) based on these movements.
Mention the most significant mover.

%s`, sb.String(), languageInstruction)
}
