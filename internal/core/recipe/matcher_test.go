package recipe

import (
	"testing"

	"recipe-matcher/internal/core/text"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureRecipes() []Recipe {
	return []Recipe{
		{ID: 0, Title: "Onion Soup", Ingredients: []string{"onion", "butter", "beef broth"}, Instructions: "Cook the onion slowly."},
		{ID: 1, Title: "Chicken Fried Rice", Ingredients: []string{"chicken", "rice", "onion"}, Instructions: "Fry everything."},
		{ID: 2, Title: "Plain Rice", Ingredients: []string{"rice", "water", "salt"}, Instructions: "Boil water, add rice."},
		{ID: 3, Title: "Roast Chicken", Ingredients: []string{"1 whole chicken", "salt", "pepper"}, Instructions: "Roast until golden."},
		{ID: 4, Title: "Garlic Bread", Ingredients: []string{"bread", "garlic", "butter"}, Instructions: "Toast with parsley."},
	}
}

func fixtureCorpus(opts text.Options) (*Corpus, *Vocabulary) {
	c := NewCorpus(fixtureRecipes(), text.NewNormalizer(opts))
	return c, BuildVocabulary(c, VocabularyOptions{})
}

func titles(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Recipe.Title
	}
	return out
}

func TestParseQuery(t *testing.T) {
	c, v := fixtureCorpus(text.Options{})

	ext := ParseQuery(" Chicken, unicorn-dust, chicken ,, RICE ", c.Normalizer(), v)

	assert.Equal(t, []string{"chicken", "unicorn-dust", "rice"}, Texts(ext.Tokens))
	assert.Equal(t, []string{"chicken", "rice"}, Texts(ext.Known))
	assert.Equal(t, []string{"unicorn-dust"}, Texts(ext.Unknown))
}

func TestParseQuery_PunctuationOnlyTokenIsUnknown(t *testing.T) {
	c, v := fixtureCorpus(text.Options{})

	ext := ParseQuery("!!!, rice", c.Normalizer(), v)
	assert.Equal(t, []string{"rice"}, Texts(ext.Known))
	assert.Equal(t, []string{"!!!"}, Texts(ext.Unknown))
}

func TestRank_FullFirst(t *testing.T) {
	c, _ := fixtureCorpus(text.Options{})
	tokens := []Token{{Text: "chicken", Key: "chicken"}, {Text: "rice", Key: "rice"}}

	result := Rank(c, tokens, MatchOptions{Policy: PolicyFullFirst})

	require.Len(t, result.Matches, 1)
	assert.Equal(t, "Chicken Fried Rice", result.Matches[0].Recipe.Title)
	assert.True(t, result.Matches[0].FullMatch)
	assert.Equal(t, 2, result.Matches[0].Score)
	assert.True(t, result.FullMatch)
	assert.Empty(t, result.Unmatched)
	assert.Equal(t, PolicyFullFirst, result.Policy)
}

func TestRank_FullFirstFallsBackToPartial(t *testing.T) {
	c, _ := fixtureCorpus(text.Options{})
	tokens := []Token{{Text: "beef broth", Key: "beef broth"}, {Text: "garlic", Key: "garlic"}}

	result := Rank(c, tokens, MatchOptions{Policy: PolicyFullFirst})

	assert.False(t, result.FullMatch)
	assert.Equal(t, []string{"Onion Soup", "Garlic Bread"}, titles(result.Matches))
	assert.Empty(t, result.Unmatched)
}

func TestRank_Partial(t *testing.T) {
	c, _ := fixtureCorpus(text.Options{})

	tests := []struct {
		name          string
		tokens        []string
		topN          int
		wantTitles    []string
		wantScores    []int
		wantUnmatched []string
	}{
		{
			name:       "stable order on ties",
			tokens:     []string{"chicken", "rice"},
			wantTitles: []string{"Chicken Fried Rice", "Plain Rice", "Roast Chicken"},
			wantScores: []int{2, 1, 1},
		},
		{
			name:       "top n truncation",
			tokens:     []string{"rice", "salt"},
			topN:       1,
			wantTitles: []string{"Plain Rice"},
			wantScores: []int{2},
		},
		{
			name:          "unmatched after truncation",
			tokens:        []string{"chicken", "butter"},
			topN:          1,
			wantTitles:    []string{"Onion Soup"},
			wantScores:    []int{1},
			wantUnmatched: []string{"chicken"},
		},
		{
			name:          "nothing scores",
			tokens:        []string{"whole rice"},
			wantTitles:    []string{},
			wantScores:    []int{},
			wantUnmatched: []string{"whole rice"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := make([]Token, len(tt.tokens))
			for i, s := range tt.tokens {
				tokens[i] = Token{Text: s, Key: s}
			}

			result := Rank(c, tokens, MatchOptions{Policy: PolicyPartial, TopN: tt.topN})

			assert.Equal(t, tt.wantTitles, titles(result.Matches))
			scores := make([]int, len(result.Matches))
			for i, m := range result.Matches {
				scores[i] = m.Score
			}
			assert.Equal(t, tt.wantScores, scores)
			if tt.wantUnmatched == nil {
				assert.Empty(t, result.Unmatched)
			} else {
				assert.Equal(t, tt.wantUnmatched, Texts(result.Unmatched))
			}
		})
	}
}

func TestRank_TopNNeverExceeded(t *testing.T) {
	c, _ := fixtureCorpus(text.Options{})
	tokens := []Token{{Text: "salt", Key: "salt"}, {Text: "butter", Key: "butter"}, {Text: "onion", Key: "onion"}}

	for topN := 1; topN <= 6; topN++ {
		result := Rank(c, tokens, MatchOptions{Policy: PolicyPartial, TopN: topN})
		assert.LessOrEqual(t, len(result.Matches), topN)
	}

	result := Rank(c, tokens, MatchOptions{Policy: PolicyPartial})
	assert.LessOrEqual(t, len(result.Matches), DefaultTopN)
}

func TestRank_MatchedTokensNeverUnmatched(t *testing.T) {
	c, _ := fixtureCorpus(text.Options{})
	tokens := []Token{{Text: "onion", Key: "onion"}, {Text: "pepper", Key: "pepper"}, {Text: "garlic", Key: "garlic"}}

	result := Rank(c, tokens, MatchOptions{Policy: PolicyPartial, TopN: 2})

	unmatched := map[string]bool{}
	for _, u := range result.Unmatched {
		unmatched[u.Key] = true
	}
	for _, m := range result.Matches {
		for _, tok := range tokens {
			if c.docs[m.index].hasIngredient(tok.Key, ContainmentSubstring) {
				assert.False(t, unmatched[tok.Key], "token %q appears in %q", tok.Key, m.Recipe.Title)
			}
		}
	}
}

func TestRank_IncludeTitleAndInstructions(t *testing.T) {
	c, _ := fixtureCorpus(text.Options{})
	tokens := []Token{{Text: "parsley", Key: "parsley"}}

	assert.Empty(t, Rank(c, tokens, MatchOptions{Policy: PolicyPartial}).Matches)

	result := Rank(c, tokens, MatchOptions{Policy: PolicyPartial, IncludeInstructions: true})
	assert.Equal(t, []string{"Garlic Bread"}, titles(result.Matches))

	soup := []Token{{Text: "soup", Key: "soup"}}
	result = Rank(c, soup, MatchOptions{Policy: PolicyPartial, IncludeTitle: true})
	assert.Equal(t, []string{"Onion Soup"}, titles(result.Matches))
}

func TestRank_EmptyTokens(t *testing.T) {
	c, _ := fixtureCorpus(text.Options{})
	result := Rank(c, nil, MatchOptions{})
	assert.Empty(t, result.Matches)
	assert.Equal(t, PolicyFullFirst, result.Policy)
}

func TestRank_Stemmed(t *testing.T) {
	c, v := fixtureCorpus(text.Options{Stem: true})
	ext := ParseQuery("Onions", c.Normalizer(), v)
	require.Len(t, ext.Known, 1)

	result := Rank(c, ext.Known, MatchOptions{Policy: PolicyFullFirst})
	assert.Equal(t, []string{"Onion Soup", "Chicken Fried Rice"}, titles(result.Matches))
}

func TestRank_Containment(t *testing.T) {
	recipes := []Recipe{
		{ID: 0, Title: "Steak", Ingredients: []string{"beef", "black peppercorns"}},
		{ID: 1, Title: "Salad", Ingredients: []string{"pepper", "lettuce"}},
	}
	c := NewCorpus(recipes, text.NewNormalizer(text.Options{}))
	v := BuildVocabulary(c, VocabularyOptions{})
	ext := ParseQuery("beef, pepper", c.Normalizer(), v)
	require.Equal(t, []string{"beef", "pepper"}, Texts(ext.Known))

	tests := []struct {
		name          string
		containment   string
		wantScore     int
		wantUnmatched []string
	}{
		{name: "default is substring", containment: "", wantScore: 2, wantUnmatched: []string{}},
		{name: "substring", containment: ContainmentSubstring, wantScore: 2, wantUnmatched: []string{}},
		{name: "word", containment: ContainmentWord, wantScore: 1, wantUnmatched: []string{"pepper"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Rank(c, ext.Known, MatchOptions{Policy: PolicyPartial, Containment: tt.containment, TopN: 1})

			require.Len(t, result.Matches, 1)
			assert.Equal(t, "Steak", result.Matches[0].Recipe.Title)
			assert.Equal(t, tt.wantScore, result.Matches[0].Score)
			assert.Equal(t, tt.wantUnmatched, Texts(result.Unmatched))
		})
	}
}

func TestRank_WordContainmentKeepsPhrasesApart(t *testing.T) {
	c := NewCorpus([]Recipe{
		{ID: 0, Title: "Candy", Ingredients: []string{"licorice", "sugar"}},
	}, text.NewNormalizer(text.Options{}))
	tokens := []Token{{Text: "rice", Key: "rice"}, {Text: "sugar", Key: "sugar"}}

	assert.Equal(t, 2, Rank(c, tokens, MatchOptions{Policy: PolicyPartial}).Matches[0].Score)

	result := Rank(c, tokens, MatchOptions{Policy: PolicyPartial, Containment: ContainmentWord})
	require.Len(t, result.Matches, 1)
	assert.Equal(t, 1, result.Matches[0].Score)
	assert.Equal(t, []string{"rice"}, Texts(result.Unmatched))
}

func TestValidateContainment(t *testing.T) {
	assert.NoError(t, ValidateContainment(""))
	assert.NoError(t, ValidateContainment(ContainmentSubstring))
	assert.NoError(t, ValidateContainment(ContainmentWord))
	assert.Error(t, ValidateContainment("fuzzy"))
}

func TestValidatePolicy(t *testing.T) {
	assert.NoError(t, ValidatePolicy(""))
	assert.NoError(t, ValidatePolicy(PolicyFullFirst))
	assert.NoError(t, ValidatePolicy(PolicyPartial))
	assert.Error(t, ValidatePolicy("fuzzy"))
}
