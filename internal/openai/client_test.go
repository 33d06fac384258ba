package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAPI is a mock implementation of the API interface
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *MockAPI) CreateCompletion(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func newTestClient(api API, dimensions int) *Client {
	return &Client{api: api, dimensions: dimensions}
}

func TestEmbedTexts(t *testing.T) {
	ctx := context.Background()

	t.Run("returns vectors in order", func(t *testing.T) {
		api := new(MockAPI)
		api.On("CreateEmbeddings", ctx, []string{"first", "second"}).
			Return([][]float32{{0.1, 0.2, 0.3}, {0.4, 0.5, 0.6}}, nil)

		client := newTestClient(api, 3)
		vectors, err := client.EmbedTexts(ctx, []string{"first", "second"})
		require.NoError(t, err)
		require.Len(t, vectors, 2)
		assert.Equal(t, []float32{0.1, 0.2, 0.3}, vectors[0])
		assert.Equal(t, []float32{0.4, 0.5, 0.6}, vectors[1])
		api.AssertExpectations(t)
	})

	t.Run("rejects empty batch", func(t *testing.T) {
		client := newTestClient(new(MockAPI), 3)
		_, err := client.EmbedTexts(ctx, nil)
		assert.ErrorIs(t, err, ErrEmptyText)
	})

	t.Run("rejects empty element", func(t *testing.T) {
		client := newTestClient(new(MockAPI), 3)
		_, err := client.EmbedTexts(ctx, []string{"ok", ""})
		assert.ErrorIs(t, err, ErrEmptyText)
	})

	t.Run("rejects wrong dimensions", func(t *testing.T) {
		api := new(MockAPI)
		api.On("CreateEmbeddings", ctx, []string{"text"}).
			Return([][]float32{{0.1, 0.2}}, nil)

		client := newTestClient(api, 3)
		_, err := client.EmbedTexts(ctx, []string{"text"})
		assert.ErrorIs(t, err, ErrWrongDimensions)
	})

	t.Run("propagates provider error", func(t *testing.T) {
		api := new(MockAPI)
		api.On("CreateEmbeddings", ctx, []string{"text"}).
			Return(nil, errors.New("rate limited"))

		client := newTestClient(api, 3)
		_, err := client.EmbedTexts(ctx, []string{"text"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limited")
	})
}

func TestEmbedText(t *testing.T) {
	ctx := context.Background()

	api := new(MockAPI)
	api.On("CreateEmbeddings", ctx, []string{"single"}).
		Return([][]float32{{1, 2, 3}}, nil)

	client := newTestClient(api, 3)
	vector, err := client.EmbedText(ctx, "single")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, vector)
}

func TestGenerateText(t *testing.T) {
	ctx := context.Background()

	t.Run("returns completion", func(t *testing.T) {
		api := new(MockAPI)
		api.On("CreateCompletion", ctx, "a prompt").Return("an answer", nil)

		client := newTestClient(api, 3)
		text, err := client.GenerateText(ctx, "a prompt")
		require.NoError(t, err)
		assert.Equal(t, "an answer", text)
	})

	t.Run("rejects empty prompt", func(t *testing.T) {
		client := newTestClient(new(MockAPI), 3)
		_, err := client.GenerateText(ctx, "")
		assert.ErrorIs(t, err, ErrEmptyText)
	})

	t.Run("propagates provider error", func(t *testing.T) {
		api := new(MockAPI)
		api.On("CreateCompletion", ctx, "prompt").Return("", errors.New("model overloaded"))

		client := newTestClient(api, 3)
		_, err := client.GenerateText(ctx, "prompt")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "model overloaded")
	})
}

func TestNewClientWithConfigDefaults(t *testing.T) {
	client := NewClientWithConfig(Config{APIKey: "test-key"})
	assert.Equal(t, DefaultEmbeddingDimensions, client.dimensions)

	client = NewClientWithConfig(Config{APIKey: "test-key", EmbeddingDimensions: 768})
	assert.Equal(t, 768, client.dimensions)
}
