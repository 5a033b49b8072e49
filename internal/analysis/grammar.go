package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/RishiKendai/eduscore/internal/models"
)

const (
	maxReportedIssues = 50
	maxReplacements   = 3
)

var categoryWeights = map[string]float64{
	"TYPOGRAPHY": 0.1,
	"STYLE":      0.5,
}

// LanguageToolClient scores grammar through a LanguageTool server
type LanguageToolClient struct {
	client   *resty.Client
	language string
}

type ltResponse struct {
	Matches []ltMatch `json:"matches"`
}

type ltMatch struct {
	Message      string `json:"message"`
	ShortMessage string `json:"shortMessage"`
	Offset       int    `json:"offset"`
	Length       int    `json:"length"`
	Replacements []struct {
		Value string `json:"value"`
	} `json:"replacements"`
	Rule struct {
		ID       string `json:"id"`
		Category struct {
			ID string `json:"id"`
		} `json:"category"`
	} `json:"rule"`
	Context struct {
		Text string `json:"text"`
	} `json:"context"`
}

func NewLanguageToolClient(baseURL, language string, timeout time.Duration) *LanguageToolClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)

	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		return r != nil && r.StatusCode() >= 500
	})

	if language == "" {
		language = "en-US"
	}

	return &LanguageToolClient{client: client, language: language}
}

// Analyze never fails: transport or server errors yield a zero score with
// SystemError set so the evaluation can still complete.
func (c *LanguageToolClient) Analyze(ctx context.Context, text string) models.GrammarResult {
	if text == "" {
		return models.GrammarResult{Errors: []models.GrammarIssue{}}
	}

	matches, err := c.check(ctx, text)
	if err != nil {
		log.Error().Err(err).Msg("Failed to reach LanguageTool")
		return models.GrammarResult{
			Errors:      []models.GrammarIssue{},
			SystemError: err.Error(),
		}
	}

	return models.GrammarResult{
		Score:      grammarScore(matches, len(strings.Fields(text))),
		Errors:     formatIssues(matches),
		ErrorCount: len(matches),
	}
}

func (c *LanguageToolClient) check(ctx context.Context, text string) ([]ltMatch, error) {
	var result ltResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"text":     text,
			"language": c.language,
		}).
		SetResult(&result).
		Post("/v2/check")
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode(), resp.String())
	}
	return result.Matches, nil
}

// grammarScore converts weighted error density into a 0-100 score.
func grammarScore(matches []ltMatch, wordCount int) float64 {
	if wordCount == 0 {
		return 0
	}

	weighted := 0.0
	for _, m := range matches {
		if w, ok := categoryWeights[m.Rule.Category.ID]; ok {
			weighted += w
		} else {
			weighted += 1.0
		}
	}

	errorRate := weighted / float64(wordCount) * 1000
	return clamp(100-errorRate*0.5, 0, 100)
}

func formatIssues(matches []ltMatch) []models.GrammarIssue {
	if len(matches) > maxReportedIssues {
		matches = matches[:maxReportedIssues]
	}

	issues := make([]models.GrammarIssue, 0, len(matches))
	for _, m := range matches {
		replacements := make([]string, 0, maxReplacements)
		for i, r := range m.Replacements {
			if i == maxReplacements {
				break
			}
			replacements = append(replacements, r.Value)
		}
		suggestion := ""
		if len(replacements) > 0 {
			suggestion = replacements[0]
		}
		issues = append(issues, models.GrammarIssue{
			Message:      m.Message,
			ShortMessage: m.ShortMessage,
			Offset:       m.Offset,
			Length:       m.Length,
			Replacements: replacements,
			Suggestion:   suggestion,
			RuleID:       m.Rule.ID,
			RuleCategory: m.Rule.Category.ID,
			Context:      m.Context.Text,
		})
	}
	return issues
}
