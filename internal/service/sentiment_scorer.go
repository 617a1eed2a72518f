package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gaspulse/internal/domain"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ArticleScorer labels news articles bullish/neutral/bearish. A nil scorer
// means articles keep their heuristic label only.
type ArticleScorer interface {
	ScoreBatch(ctx context.Context, articles []*domain.NewsArticle) (map[string]string, error)
}

const scorerBatchSize = 24

// ScoreArticles sets Sentiment on every article: a keyword heuristic first,
// then the LLM label where the scorer answers. Scorer failures degrade to
// the heuristic label silently.
func ScoreArticles(ctx context.Context, scorer ArticleScorer, articles []*domain.NewsArticle) {
	for _, a := range articles {
		a.Sentiment = HeuristicSentiment(a.Title, a.Description)
	}
	if scorer == nil {
		return
	}

	for start := 0; start < len(articles); start += scorerBatchSize {
		end := start + scorerBatchSize
		if end > len(articles) {
			end = len(articles)
		}
		batch := articles[start:end]
		labels, err := scorer.ScoreBatch(ctx, batch)
		if err != nil {
			continue
		}
		for _, a := range batch {
			if label, ok := labels[a.URL]; ok {
				a.Sentiment = normalizeLabel(label)
			}
		}
	}
}

// HeuristicSentiment labels an article from keyword counts.
func HeuristicSentiment(title, description string) string {
	text := strings.ToLower(strings.TrimSpace(title + " " + description))
	if text == "" {
		return "neutral"
	}

	bullish := []string{"bull", "breakout", "surge", "rally", "adoption", "outflow", "growth", "buy", "uptrend", "recover", "approval", "all-time high"}
	bearish := []string{"bear", "dump", "sell", "crash", "hack", "exploit", "lawsuit", "ban", "inflow", "decline", "downtrend", "liquidation"}

	bullCount := countMatches(text, bullish)
	bearCount := countMatches(text, bearish)

	switch {
	case bullCount > bearCount:
		return "bullish"
	case bearCount > bullCount:
		return "bearish"
	default:
		return "neutral"
	}
}

func countMatches(text string, tokens []string) int {
	count := 0
	for _, token := range tokens {
		if strings.Contains(text, token) {
			count++
		}
	}
	return count
}

func normalizeLabel(label string) string {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "bull", "bullish", "positive":
		return "bullish"
	case "bear", "bearish", "negative":
		return "bearish"
	default:
		return "neutral"
	}
}

type openAIChatClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// OpenAIScorer labels article batches with a chat model. NewOpenAIScorer
// returns nil when no API key is configured.
type OpenAIScorer struct {
	client openAIChatClient
	model  string
}

func NewOpenAIScorer(apiKey, model string) *OpenAIScorer {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil
	}
	if strings.TrimSpace(model) == "" {
		model = "gpt-4o-mini"
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIScorer{
		client: &openAIClient{client: client},
		model:  model,
	}
}

func (s *OpenAIScorer) ScoreBatch(ctx context.Context, articles []*domain.NewsArticle) (map[string]string, error) {
	if s == nil || s.client == nil || len(articles) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	for i, a := range articles {
		sb.WriteString(fmt.Sprintf("id=%d\n", i))
		sb.WriteString(fmt.Sprintf("title=%s\n", strings.TrimSpace(a.Title)))
		sb.WriteString(fmt.Sprintf("excerpt=%s\n\n", strings.TrimSpace(a.Description)))
	}

	systemPrompt := "You score crypto news sentiment. Return ONLY a JSON array. Each object requires: id (int), label (bullish|neutral|bearish). No markdown."
	userPrompt := "Items:\n" + sb.String()

	completion, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		return nil, err
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("empty scorer completion")
	}

	raw := trimCodeFence(completion.Choices[0].Message.Content)

	var parsed []struct {
		ID    int    `json:"id"`
		Label string `json:"label"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("parse scorer json: %w", err)
	}

	labels := make(map[string]string, len(parsed))
	for _, row := range parsed {
		if row.ID < 0 || row.ID >= len(articles) {
			continue
		}
		labels[articles[row.ID].URL] = normalizeLabel(row.Label)
	}
	return labels, nil
}

func trimCodeFence(v string) string {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "```") {
		v = strings.TrimPrefix(v, "```")
		v = strings.TrimSpace(v)
		if strings.HasPrefix(strings.ToLower(v), "json") {
			v = strings.TrimSpace(v[4:])
		}
		v = strings.TrimSuffix(v, "```")
		v = strings.TrimSpace(v)
	}
	return v
}

type openAIClient struct {
	client openai.Client
}

func (c *openAIClient) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
