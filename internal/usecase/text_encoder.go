package usecase

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/Darksun1310/forensic-persona-linker/internal/domain"
)

// DefaultMaxFeatures caps the learned vocabulary
const DefaultMaxFeatures = 1500

// tokenRegex matches runs of two or more word characters
var tokenRegex = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// englishStopWords are dropped before n-grams are formed
var englishStopWords = map[string]bool{
	"a": true, "about": true, "above": true, "across": true, "after": true, "afterwards": true,
	"again": true, "against": true, "all": true, "almost": true, "alone": true, "along": true,
	"already": true, "also": true, "although": true, "always": true, "am": true, "among": true,
	"amongst": true, "amoungst": true, "amount": true, "an": true, "and": true, "another": true,
	"any": true, "anyhow": true, "anyone": true, "anything": true, "anyway": true,
	"anywhere": true, "are": true, "around": true, "as": true, "at": true, "back": true,
	"be": true, "became": true, "because": true, "become": true, "becomes": true,
	"becoming": true, "been": true, "before": true, "beforehand": true, "behind": true,
	"being": true, "below": true, "beside": true, "besides": true, "between": true,
	"beyond": true, "bill": true, "both": true, "bottom": true, "but": true, "by": true,
	"call": true, "can": true, "cannot": true, "cant": true, "co": true, "con": true,
	"could": true, "couldnt": true, "cry": true, "de": true, "describe": true, "detail": true,
	"do": true, "done": true, "down": true, "due": true, "during": true, "each": true, "eg": true,
	"eight": true, "either": true, "eleven": true, "else": true, "elsewhere": true, "empty": true,
	"enough": true, "etc": true, "even": true, "ever": true, "every": true, "everyone": true,
	"everything": true, "everywhere": true, "except": true, "few": true, "fifteen": true,
	"fifty": true, "fill": true, "find": true, "fire": true, "first": true, "five": true,
	"for": true, "former": true, "formerly": true, "forty": true, "found": true, "four": true,
	"from": true, "front": true, "full": true, "further": true, "get": true, "give": true,
	"go": true, "had": true, "has": true, "hasnt": true, "have": true, "he": true, "hence": true,
	"her": true, "here": true, "hereafter": true, "hereby": true, "herein": true,
	"hereupon": true, "hers": true, "herself": true, "him": true, "himself": true, "his": true,
	"how": true, "however": true, "hundred": true, "i": true, "ie": true, "if": true, "in": true,
	"inc": true, "indeed": true, "interest": true, "into": true, "is": true, "it": true,
	"its": true, "itself": true, "keep": true, "last": true, "latter": true, "latterly": true,
	"least": true, "less": true, "ltd": true, "made": true, "many": true, "may": true, "me": true,
	"meanwhile": true, "might": true, "mill": true, "mine": true, "more": true, "moreover": true,
	"most": true, "mostly": true, "move": true, "much": true, "must": true, "my": true,
	"myself": true, "name": true, "namely": true, "neither": true, "never": true,
	"nevertheless": true, "next": true, "nine": true, "no": true, "nobody": true, "none": true,
	"noone": true, "nor": true, "not": true, "nothing": true, "now": true, "nowhere": true,
	"of": true, "off": true, "often": true, "on": true, "once": true, "one": true, "only": true,
	"onto": true, "or": true, "other": true, "others": true, "otherwise": true, "our": true,
	"ours": true, "ourselves": true, "out": true, "over": true, "own": true, "part": true,
	"per": true, "perhaps": true, "please": true, "put": true, "rather": true, "re": true,
	"same": true, "see": true, "seem": true, "seemed": true, "seeming": true, "seems": true,
	"serious": true, "several": true, "she": true, "should": true, "show": true, "side": true,
	"since": true, "sincere": true, "six": true, "sixty": true, "so": true, "some": true,
	"somehow": true, "someone": true, "something": true, "sometime": true, "sometimes": true,
	"somewhere": true, "still": true, "such": true, "system": true, "take": true, "ten": true,
	"than": true, "that": true, "the": true, "their": true, "them": true, "themselves": true,
	"then": true, "thence": true, "there": true, "thereafter": true, "thereby": true,
	"therefore": true, "therein": true, "thereupon": true, "these": true, "they": true,
	"thick": true, "thin": true, "third": true, "this": true, "those": true, "though": true,
	"three": true, "through": true, "throughout": true, "thru": true, "thus": true, "to": true,
	"together": true, "too": true, "top": true, "toward": true, "towards": true, "twelve": true,
	"twenty": true, "two": true, "un": true, "under": true, "until": true, "up": true,
	"upon": true, "us": true, "very": true, "via": true, "was": true, "we": true, "well": true,
	"were": true, "what": true, "whatever": true, "when": true, "whence": true, "whenever": true,
	"where": true, "whereafter": true, "whereas": true, "whereby": true, "wherein": true,
	"whereupon": true, "wherever": true, "whether": true, "which": true, "while": true,
	"whither": true, "who": true, "whoever": true, "whole": true, "whom": true, "whose": true,
	"why": true, "will": true, "with": true, "within": true, "without": true, "would": true,
	"yet": true, "you": true, "your": true, "yours": true, "yourself": true, "yourselves": true,
}

// SparseVector is an L2-normalised weighted term vector. Indices are strictly
// increasing so dot products are always summed in the same order.
type SparseVector struct {
	Indices []int
	Weights []float64
}

// IsZero reports whether the vector carries no weighted terms
func (v SparseVector) IsZero() bool {
	return len(v.Indices) == 0
}

// TextEncoder maps descriptions onto an idf-weighted unigram+bigram vocabulary
type TextEncoder struct {
	maxFeatures int
	terms       []string
	index       map[string]int
	idf         []float64
}

// NewTextEncoder creates an unfitted encoder
func NewTextEncoder(maxFeatures int) *TextEncoder {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}
	return &TextEncoder{maxFeatures: maxFeatures}
}

// TextEncoderFromState restores a fitted encoder
func TextEncoderFromState(state domain.EncoderState) (*TextEncoder, error) {
	if len(state.Terms) == 0 {
		return nil, fmt.Errorf("%w: encoder has empty vocabulary", domain.ErrInvalidBundle)
	}
	if len(state.Terms) != len(state.IDF) {
		return nil, fmt.Errorf("%w: encoder has %d terms but %d idf weights",
			domain.ErrInvalidBundle, len(state.Terms), len(state.IDF))
	}
	enc := NewTextEncoder(state.MaxFeatures)
	enc.terms = append([]string(nil), state.Terms...)
	enc.idf = append([]float64(nil), state.IDF...)
	enc.index = make(map[string]int, len(enc.terms))
	for i, term := range enc.terms {
		enc.index[term] = i
	}
	return enc, nil
}

// Fit learns the vocabulary and idf weights from the corpus
func (e *TextEncoder) Fit(corpus []string) error {
	if len(corpus) == 0 {
		return fmt.Errorf("fit text encoder: empty corpus")
	}

	termFreq := make(map[string]int)
	docFreq := make(map[string]int)
	for _, doc := range corpus {
		seen := make(map[string]bool)
		for _, term := range analyze(doc) {
			termFreq[term]++
			if !seen[term] {
				docFreq[term]++
				seen[term] = true
			}
		}
	}
	if len(termFreq) == 0 {
		return fmt.Errorf("fit text encoder: empty vocabulary, documents only contain stop words")
	}

	candidates := make([]string, 0, len(termFreq))
	for term := range termFreq {
		candidates = append(candidates, term)
	}
	sort.Slice(candidates, func(i, j int) bool {
		fi, fj := termFreq[candidates[i]], termFreq[candidates[j]]
		if fi != fj {
			return fi > fj
		}
		return candidates[i] < candidates[j]
	})
	if len(candidates) > e.maxFeatures {
		candidates = candidates[:e.maxFeatures]
	}
	sort.Strings(candidates)

	n := float64(len(corpus))
	e.terms = candidates
	e.index = make(map[string]int, len(candidates))
	e.idf = make([]float64, len(candidates))
	for i, term := range candidates {
		e.index[term] = i
		e.idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}
	return nil
}

// State exports the fitted vocabulary
func (e *TextEncoder) State() domain.EncoderState {
	return domain.EncoderState{
		Terms:       append([]string(nil), e.terms...),
		IDF:         append([]float64(nil), e.idf...),
		MaxFeatures: e.maxFeatures,
	}
}

// VocabularySize returns the number of learned terms
func (e *TextEncoder) VocabularySize() int {
	return len(e.terms)
}

// Encode maps text onto the learned vocabulary. Unknown terms are dropped.
func (e *TextEncoder) Encode(text string) SparseVector {
	counts := make(map[int]float64)
	for _, term := range analyze(text) {
		if idx, ok := e.index[term]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return SparseVector{}
	}

	indices := make([]int, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	weights := make([]float64, len(indices))
	var norm float64
	for i, idx := range indices {
		weights[i] = counts[idx] * e.idf[idx]
		norm += weights[i] * weights[i]
	}
	norm = math.Sqrt(norm)
	for i := range weights {
		weights[i] /= norm
	}
	return SparseVector{Indices: indices, Weights: weights}
}

// Similarity is the cosine similarity of two encoded vectors, 0 when either is empty
func Similarity(a, b SparseVector) float64 {
	normA := vectorNorm(a)
	normB := vectorNorm(b)
	if normA == 0 || normB == 0 {
		return 0
	}

	var dot float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			dot += a.Weights[i] * b.Weights[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}

	sim := dot / (normA * normB)
	return math.Max(0, math.Min(1, sim))
}

func vectorNorm(v SparseVector) float64 {
	var sum float64
	for _, w := range v.Weights {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// analyze turns text into unigram and bigram terms
func analyze(text string) []string {
	tokens := tokenize(text)
	terms := make([]string, 0, 2*len(tokens))
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}

// tokenize splits a string into lowercase tokens with stop words removed
func tokenize(s string) []string {
	words := tokenRegex.FindAllString(strings.ToLower(s), -1)
	tokens := words[:0]
	for _, word := range words {
		if englishStopWords[word] {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}
