package usecase

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Darksun1310/forensic-persona-linker/internal/domain"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"lowercases and drops stop words", "The Quick brown-fox is HERE", []string{"quick", "brown", "fox"}},
		{"drops single characters", "a b c uv", []string{"uv"}},
		{"keeps digits", "Shipped in 24h, 100% pure", []string{"shipped", "24h", "100", "pure"}},
		{"empty", "", []string{}},
		{"only stop words", "the and of", []string{}},
		{"drops numerals and filler nouns", "first two system fill find kush", []string{"kush"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenize(tt.input)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnalyze(t *testing.T) {
	got := analyze("vacuum sealed kush")
	assert.Equal(t, []string{"vacuum", "sealed", "kush", "vacuum sealed", "sealed kush"}, got)
}

func TestTextEncoderFit(t *testing.T) {
	t.Run("learns sorted vocabulary with smoothed idf", func(t *testing.T) {
		enc := NewTextEncoder(0)
		require.NoError(t, enc.Fit([]string{"apple banana", "apple cherry"}))

		state := enc.State()
		assert.Equal(t, []string{"apple", "apple banana", "apple cherry", "banana", "cherry"}, state.Terms)
		assert.InDelta(t, 1.0, state.IDF[0], 1e-12)
		assert.InDelta(t, math.Log(3.0/2.0)+1, state.IDF[3], 1e-12)
		assert.Equal(t, DefaultMaxFeatures, state.MaxFeatures)
	})

	t.Run("caps vocabulary by corpus frequency", func(t *testing.T) {
		enc := NewTextEncoder(2)
		require.NoError(t, enc.Fit([]string{"apple banana", "apple cherry"}))

		assert.Equal(t, 2, enc.VocabularySize())
		assert.Equal(t, []string{"apple", "apple banana"}, enc.State().Terms)
	})

	t.Run("rejects empty corpus", func(t *testing.T) {
		assert.Error(t, NewTextEncoder(0).Fit(nil))
	})

	t.Run("rejects corpus of stop words", func(t *testing.T) {
		assert.Error(t, NewTextEncoder(0).Fit([]string{"the", "and of"}))
	})
}

func TestTextEncoderEncode(t *testing.T) {
	enc := fittedEncoder(t)

	t.Run("produces unit vectors with sorted indices", func(t *testing.T) {
		v := enc.Encode("vacuum sealed tablets, vacuum sealed kush")
		require.False(t, v.IsZero())
		assert.InDelta(t, 1.0, vectorNorm(v), 1e-12)
		for i := 1; i < len(v.Indices); i++ {
			assert.Less(t, v.Indices[i-1], v.Indices[i])
		}
	})

	t.Run("unknown words give the zero vector", func(t *testing.T) {
		assert.True(t, enc.Encode("completely unseen vocabulary").IsZero())
		assert.True(t, enc.Encode("").IsZero())
	})
}

func TestSimilarity(t *testing.T) {
	enc := fittedEncoder(t)

	t.Run("identical text scores one", func(t *testing.T) {
		v := enc.Encode("stealth vacuum sealed kush")
		assert.InDelta(t, 1.0, Similarity(v, v), 1e-12)
	})

	t.Run("is symmetric and bounded", func(t *testing.T) {
		a := enc.Encode("stealth vacuum sealed kush")
		b := enc.Encode("vacuum sealed tablets")
		ab := Similarity(a, b)
		assert.Equal(t, ab, Similarity(b, a))
		assert.Greater(t, ab, 0.0)
		assert.Less(t, ab, 1.0)
	})

	t.Run("disjoint text scores zero", func(t *testing.T) {
		a := enc.Encode("stealth kush")
		b := enc.Encode("pressed blister")
		assert.Equal(t, 0.0, Similarity(a, b))
	})

	t.Run("empty side scores zero", func(t *testing.T) {
		a := enc.Encode("stealth kush")
		assert.Equal(t, 0.0, Similarity(a, SparseVector{}))
		assert.Equal(t, 0.0, Similarity(SparseVector{}, SparseVector{}))
	})
}

func TestTextEncoderFromState(t *testing.T) {
	t.Run("restored encoder encodes identically", func(t *testing.T) {
		enc := fittedEncoder(t)
		restored, err := TextEncoderFromState(enc.State())
		require.NoError(t, err)

		text := "vacuum sealed kush tablets"
		assert.Equal(t, enc.Encode(text), restored.Encode(text))
	})

	t.Run("rejects broken state", func(t *testing.T) {
		tests := []struct {
			name  string
			state domain.EncoderState
		}{
			{"empty vocabulary", domain.EncoderState{}},
			{"length mismatch", domain.EncoderState{Terms: []string{"a", "b"}, IDF: []float64{1}}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := TextEncoderFromState(tt.state)
				assert.True(t, errors.Is(err, domain.ErrInvalidBundle), "error = %v", err)
			})
		}
	})
}
