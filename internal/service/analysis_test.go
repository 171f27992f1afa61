package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudly/miniapp/internal/config"
	"github.com/cloudly/miniapp/internal/llm"
	"github.com/cloudly/miniapp/internal/model"
	"github.com/cloudly/miniapp/internal/testutil"
)

type fakeProvider struct {
	answer string
	err    error
	block  bool
	last   llm.Request
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, req llm.Request) (string, error) {
	f.last = req
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.answer, f.err
}

func TestAnalysisService_AnalyzeResponse(t *testing.T) {
	tests := []struct {
		name     string
		provider *fakeProvider
		want     ResponseAnalysis
	}{
		{
			name:     "incomplete answer",
			provider: &fakeProvider{answer: `{"score": 0.4, "missing": "context", "follow_up": "What happened next?"}`},
			want:     ResponseAnalysis{Score: 0.4, Missing: "context", FollowUp: testutil.Ptr("What happened next?")},
		},
		{
			name:     "complete answer drops follow-up",
			provider: &fakeProvider{answer: "```json\n{\"score\": 0.9, \"missing\": \"\", \"follow_up\": \"More?\"}\n```"},
			want:     ResponseAnalysis{Score: 0.9},
		},
		{
			name:     "score is clamped",
			provider: &fakeProvider{answer: `{"score": 3}`},
			want:     ResponseAnalysis{Score: 1},
		},
		{
			name:     "model error",
			provider: &fakeProvider{err: errors.New("boom")},
			want:     ResponseAnalysis{Score: CompletenessThreshold},
		},
		{
			name:     "not json",
			provider: &fakeProvider{answer: "I think it is fine"},
			want:     ResponseAnalysis{Score: CompletenessThreshold},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAnalysisService(tt.provider, time.Second)
			got := svc.AnalyzeResponse(ctx, "What happened?", "Work", "situation")
			testutil.AssertEqual(t, *got, tt.want)
		})
	}
}

func TestAnalysisService_Timeout(t *testing.T) {
	provider := &fakeProvider{block: true}
	svc := NewAnalysisService(provider, 10*time.Millisecond)

	got := svc.AnalyzeResponse(ctx, "q", "a", "situation")
	assert.Equal(t, CompletenessThreshold, got.Score)
	assert.True(t, provider.last.JSON)
}

func TestAnalysisService_SuggestEmotions(t *testing.T) {
	provider := &fakeProvider{answer: `{"emotions": ["тревога", " Тревога ", "СТЫД", "", "лёгкое раздражение."]}`}
	svc := NewAnalysisService(provider, time.Second)

	got := svc.SuggestEmotions(ctx, "Exam", "I will fail")
	assert.Equal(t, []string{"Тревога", "Стыд", "Лёгкое раздражение"}, got)
	assert.Contains(t, provider.last.Prompt, "Exam")

	for _, answer := range []string{`{"emotions": []}`, "nope"} {
		provider.answer = answer
		assert.Equal(t, DefaultEmotions, svc.SuggestEmotions(ctx, "Exam", ""))
	}

	disabled, err := llm.NewProvider(ctx, &config.Config{LLMProvider: llm.ProviderNone})
	require.NoError(t, err)
	assert.Equal(t, DefaultEmotions, NewAnalysisService(disabled, time.Second).SuggestEmotions(ctx, "a", "b"))
}

func TestNormalizeEmotions_Limit(t *testing.T) {
	labels := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	assert.Len(t, NormalizeEmotions(labels), maxSuggestedEmotions)
}

func TestAnalysisService_AnalyzeJournal(t *testing.T) {
	entry := &model.JournalEntry{
		JournalDate: model.NewDate(2025, time.March, 10),
		Situation:   testutil.Ptr("Missed the bus"),
	}

	provider := &fakeProvider{answer: "Notice the all-or-nothing thinking."}
	svc := NewAnalysisService(provider, time.Second)
	assert.Equal(t, "Notice the all-or-nothing thinking.", svc.AnalyzeJournal(ctx, entry))
	assert.Contains(t, provider.last.Prompt, "2025-03-10")
	assert.Contains(t, provider.last.Prompt, "Missed the bus")

	provider.err = errors.New("down")
	assert.Equal(t, fallbackJournalAnalysis, svc.AnalyzeJournal(ctx, entry))
}
