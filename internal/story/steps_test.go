package story

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniel/webtoon-agent/internal/llm"
	"github.com/daniel/webtoon-agent/internal/source"
	"github.com/daniel/webtoon-agent/internal/workflow"
)

// MockLLMClient implements llm.Client for testing
type MockLLMClient struct {
	GenerateContentFunc func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	GenerateJSONFunc    func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
}

func (m *MockLLMClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, prompt, tier)
	}
	return "", nil
}

func (m *MockLLMClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier)
	}
	return "{}", nil
}

func (m *MockLLMClient) GetModel(tier llm.ModelTier) string { return "mock-model" }

func (m *MockLLMClient) Close() error { return nil }

func seedPost() *source.Post {
	return &source.Post{
		ID:      "abc123",
		Title:   "My neighbor kept stealing my parking spot",
		Content: "Every morning for a month the same car was in my spot...",
	}
}

func TestWrite_Success(t *testing.T) {
	var captured string
	mockClient := &MockLLMClient{
		GenerateContentFunc: func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
			captured = prompt
			return "The Parking War\n\nMina had never thought of herself as petty...", nil
		},
	}

	steps := NewSteps(mockClient)
	draft, err := steps.Write(context.Background(), Request{Post: seedPost(), Mood: "revenge"})

	require.NoError(t, err)
	assert.Contains(t, draft.Story, "The Parking War")
	assert.Equal(t, "revenge", draft.Mood)

	assert.Contains(t, captured, "My neighbor kept stealing my parking spot")
	assert.Contains(t, captured, "REVENGE & GLOW-UP")
	assert.NotContains(t, captured, "{{.Title}}")
}

func TestWrite_EmptyBodyFallsBackToTitle(t *testing.T) {
	var captured string
	mockClient := &MockLLMClient{
		GenerateContentFunc: func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
			captured = prompt
			return "A story.", nil
		},
	}

	post := &source.Post{ID: "x", Title: "Title only post", Content: "   "}
	steps := NewSteps(mockClient)
	_, err := steps.Write(context.Background(), Request{Post: post, Mood: "slice_of_life"})

	require.NoError(t, err)
	assert.Contains(t, captured, "Content: Title only post")
}

func TestWrite_UnknownMoodUsesDefaultModifier(t *testing.T) {
	var captured string
	mockClient := &MockLLMClient{
		GenerateContentFunc: func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
			captured = prompt
			return "A story.", nil
		},
	}

	steps := NewSteps(mockClient)
	_, err := steps.Write(context.Background(), Request{Post: seedPost(), Mood: "cyberpunk"})

	require.NoError(t, err)
	assert.Contains(t, captured, "MODERN ROMANCE")
}

func TestWrite_NilPost(t *testing.T) {
	steps := NewSteps(&MockLLMClient{})
	_, err := steps.Write(context.Background(), Request{Mood: "revenge"})
	assert.Error(t, err)
}

func TestWrite_ProviderFailure(t *testing.T) {
	mockClient := &MockLLMClient{
		GenerateContentFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			return "", errors.New("rate limited")
		},
	}

	steps := NewSteps(mockClient)
	_, err := steps.Write(context.Background(), Request{Post: seedPost(), Mood: "revenge"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "story generation failed")
}

func TestEvaluate_Success(t *testing.T) {
	mockClient := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
			assert.Contains(t, prompt, "Rigorous Webtoon Story Evaluator")
			return `{"score": 8.2, "coherence": 9, "engagement": 7.5, "feedback": "Tighten the middle act."}`, nil
		},
	}

	steps := NewSteps(mockClient)
	draft := &Draft{Post: seedPost(), Mood: "revenge", Story: "A story."}
	eval, err := steps.Evaluate(context.Background(), draft)

	require.NoError(t, err)
	assert.Equal(t, 8.2, eval.Score)
	assert.Equal(t, "Tighten the middle act.", eval.Feedback)
	assert.Equal(t, 9.0, eval.Subscores["coherence"])
	assert.Equal(t, 7.5, eval.Subscores["engagement"])
}

func TestEvaluate_ClampsOutOfRangeScores(t *testing.T) {
	mockClient := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			return `{"score": 14, "coherence": -3, "engagement": 5, "feedback": "ok"}`, nil
		},
	}

	steps := NewSteps(mockClient)
	eval, err := steps.Evaluate(context.Background(), &Draft{Post: seedPost(), Mood: "revenge", Story: "A story."})

	require.NoError(t, err)
	assert.Equal(t, 10.0, eval.Score)
	assert.Equal(t, 0.0, eval.Subscores["coherence"])
}

func TestEvaluate_UnparseableOutput(t *testing.T) {
	mockClient := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			return "I'd rate this story a solid 8 out of 10.", nil
		},
	}

	steps := NewSteps(mockClient)
	_, err := steps.Evaluate(context.Background(), &Draft{Post: seedPost(), Mood: "revenge", Story: "A story."})

	require.Error(t, err)
	var parseErr *workflow.EvaluationParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Contains(t, parseErr.Content, "solid 8")
}

func TestRewrite_Success(t *testing.T) {
	var captured string
	mockClient := &MockLLMClient{
		GenerateContentFunc: func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
			captured = prompt
			return "A tighter story.", nil
		},
	}

	steps := NewSteps(mockClient)
	original := &Draft{Post: seedPost(), Mood: "revenge", Story: "A story."}
	revised, err := steps.Rewrite(context.Background(), original, "Tighten the middle act.")

	require.NoError(t, err)
	assert.Equal(t, "A tighter story.", revised.Story)
	assert.Equal(t, "A story.", original.Story)
	assert.Equal(t, original.Mood, revised.Mood)

	assert.True(t, strings.Contains(captured, "Tighten the middle act."))
}

func TestKind(t *testing.T) {
	assert.Equal(t, "story", NewSteps(&MockLLMClient{}).Kind())
}
