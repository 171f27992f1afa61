package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cloudly/miniapp/internal/llm"
	"github.com/cloudly/miniapp/internal/metrics"
	"github.com/cloudly/miniapp/internal/model"
)

const (
	// CompletenessThreshold is the score from which an answer needs no follow-up question.
	CompletenessThreshold = 0.7
	maxSuggestedEmotions  = 8

	fallbackJournalAnalysis = "Спасибо, что заполнили дневник. Перечитайте свою запись: какие мысли " +
		"повлияли на ваши эмоции и как бы вы посмотрели на ситуацию со стороны?"
)

// DefaultEmotions are suggested when the model is unavailable.
var DefaultEmotions = []string{"Радость", "Грусть", "Страх", "Гнев", "Удивление"}

// ResponseAnalysis grades how complete a diary answer is.
type ResponseAnalysis struct {
	Score    float64 `json:"score"`
	Missing  string  `json:"missing"`
	FollowUp *string `json:"follow_up"`
}

// AnalysisService asks the language model for feedback on diary answers.
// Every method falls back to a fixed answer when the model fails, so callers
// never see model errors.
type AnalysisService struct {
	provider llm.Provider
	timeout  time.Duration
}

func NewAnalysisService(provider llm.Provider, timeout time.Duration) *AnalysisService {
	return &AnalysisService{
		provider: provider,
		timeout:  timeout,
	}
}

const responsePrompt = `Вопрос дневника (%s): %s
Ответ пользователя: %s

Оцени полноту ответа от 0.0 до 1.0. Верни JSON вида
{"score": 0.0, "missing": "чего не хватает", "follow_up": "уточняющий вопрос"}`

func (s *AnalysisService) AnalyzeResponse(ctx context.Context, question, answer, questionType string) *ResponseAnalysis {
	fallback := &ResponseAnalysis{Score: CompletenessThreshold}

	raw, err := s.complete(ctx, "analyze_response", llm.Request{
		System:      "Ты помогаешь пользователю вести КПТ-дневник. Отвечай только JSON.",
		Prompt:      fmt.Sprintf(responsePrompt, questionType, question, answer),
		Temperature: 0.3,
		MaxTokens:   300,
		JSON:        true,
	})
	if err != nil {
		return fallback
	}

	var analysis ResponseAnalysis
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &analysis); err != nil {
		slog.Warn("failed to decode response analysis", "error", err, "provider", s.provider.Name())
		metrics.LLMCalls.WithLabelValues("analyze_response", "fallback").Inc()
		return fallback
	}

	analysis.Score = min(1, max(0, analysis.Score))
	if analysis.Score >= CompletenessThreshold || (analysis.FollowUp != nil && strings.TrimSpace(*analysis.FollowUp) == "") {
		analysis.FollowUp = nil
	}
	return &analysis
}

const emotionsPrompt = `Ситуация: %s
Мысли: %s

Предложи до %d эмоций, которые мог испытывать человек. Верни JSON вида {"emotions": ["..."]}`

// SuggestEmotions returns distinct emotion labels for a situation, capitalised.
func (s *AnalysisService) SuggestEmotions(ctx context.Context, situation, thoughts string) []string {
	raw, err := s.complete(ctx, "analyze_emotions", llm.Request{
		System:      "Ты психолог, работающий с КПТ. Отвечай только JSON.",
		Prompt:      fmt.Sprintf(emotionsPrompt, situation, thoughts, maxSuggestedEmotions),
		Temperature: 0.5,
		MaxTokens:   200,
		JSON:        true,
	})
	if err != nil {
		return DefaultEmotions
	}

	var response struct {
		Emotions []string `json:"emotions"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &response); err != nil {
		slog.Warn("failed to decode emotions", "error", err, "provider", s.provider.Name())
		metrics.LLMCalls.WithLabelValues("analyze_emotions", "fallback").Inc()
		return DefaultEmotions
	}

	emotions := NormalizeEmotions(response.Emotions)
	if len(emotions) == 0 {
		return DefaultEmotions
	}
	return emotions
}

// NormalizeEmotions trims, capitalises and de-duplicates labels, keeping order.
func NormalizeEmotions(labels []string) []string {
	lower := cases.Lower(language.Russian)
	upper := cases.Upper(language.Russian)

	normalized := lo.FilterMap(labels, func(label string, _ int) (string, bool) {
		label = strings.Trim(strings.TrimSpace(label), ".,!")
		if label == "" {
			return "", false
		}
		label = lower.String(label)
		first, size := utf8.DecodeRuneInString(label)
		return upper.String(string(first)) + label[size:], true
	})

	normalized = lo.Uniq(normalized)
	if len(normalized) > maxSuggestedEmotions {
		normalized = normalized[:maxSuggestedEmotions]
	}
	return normalized
}

const journalPrompt = `Запись КПТ-дневника за %s.
Ситуация: %s
Эмоции: %s
Рациональный ответ: %s
Результат: %s

Дай короткий поддерживающий разбор записи: какие когнитивные искажения заметны и что можно попробовать в следующий раз.`

// AnalyzeJournal returns a short supportive review of a journal entry.
func (s *AnalysisService) AnalyzeJournal(ctx context.Context, entry *model.JournalEntry) string {
	text, err := s.complete(ctx, "analyze_journal", llm.Request{
		System:      "Ты доброжелательный психолог, работающий с КПТ. Пиши по-русски, не больше 150 слов.",
		Prompt:      fmt.Sprintf(journalPrompt, entry.JournalDate, deref(entry.Situation), deref(entry.Emotions), deref(entry.RationalResponse), deref(entry.Result)),
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil || text == "" {
		return fallbackJournalAnalysis
	}
	return text
}

// complete calls the model under the configured timeout and records the outcome.
func (s *AnalysisService) complete(ctx context.Context, call string, req llm.Request) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := s.provider.Complete(ctx, req)
	if err != nil {
		slog.Warn("language model call failed, using fallback", "error", err, "call", call, "provider", s.provider.Name())
		metrics.LLMCalls.WithLabelValues(call, "fallback").Inc()
		return "", err
	}

	metrics.LLMCalls.WithLabelValues(call, "ok").Inc()
	return text, nil
}

// stripCodeFence removes a markdown code fence some models wrap JSON in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
