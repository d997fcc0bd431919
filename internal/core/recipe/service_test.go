package recipe

import (
	"errors"
	"testing"

	"recipe-matcher/internal/core/text"
	"recipe-matcher/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, opts Options) *Service {
	t.Helper()
	svc, err := NewService(fixtureRecipes(), opts)
	require.NoError(t, err)
	return svc
}

func TestNewService_Defaults(t *testing.T) {
	svc := newTestService(t, Options{})
	assert.Equal(t, PolicyFullFirst, svc.options.Policy)
	assert.Equal(t, DefaultTopN, svc.options.TopN)
	assert.Equal(t, DefaultTopN, svc.options.MaxTopN)
	assert.Equal(t, ContainmentSubstring, svc.options.Containment)

	_, err := NewService(fixtureRecipes(), Options{Policy: "fuzzy"})
	assert.Error(t, err)
	_, err = NewService(fixtureRecipes(), Options{Containment: "fuzzy"})
	assert.Error(t, err)
}

func TestService_SearchContainment(t *testing.T) {
	recipes := []Recipe{
		{ID: 0, Title: "Steak", Ingredients: []string{"beef", "black peppercorns"}},
		{ID: 1, Title: "Salad", Ingredients: []string{"pepper", "lettuce"}},
	}

	substring, err := NewService(recipes, Options{Policy: PolicyPartial, TopN: 1})
	require.NoError(t, err)
	result, err := substring.Search(SearchRequest{Ingredients: "beef, pepper"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Steak"}, titles(result.Recipes))
	assert.Equal(t, 2, result.Recipes[0].Score)
	assert.Equal(t, []string{}, result.UnmatchedIngredients)

	word, err := NewService(recipes, Options{Policy: PolicyPartial, TopN: 1, Containment: ContainmentWord})
	require.NoError(t, err)
	result, err = word.Search(SearchRequest{Ingredients: "beef, pepper"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Steak"}, titles(result.Recipes))
	assert.Equal(t, 1, result.Recipes[0].Score)
	assert.Equal(t, []string{"pepper"}, result.UnmatchedIngredients)
}

func TestService_Search(t *testing.T) {
	svc := newTestService(t, Options{})

	tests := []struct {
		name          string
		req           SearchRequest
		wantOutcome   Outcome
		wantTitles    []string
		wantKnown     []string
		wantUnknown   []string
		wantUnmatched []string
		wantMessage   string
	}{
		{
			name:          "full match ranks first",
			req:           SearchRequest{Ingredients: "chicken, rice"},
			wantOutcome:   OutcomeOK,
			wantTitles:    []string{"Chicken Fried Rice"},
			wantKnown:     []string{"chicken", "rice"},
			wantUnknown:   []string{},
			wantUnmatched: []string{},
			wantMessage:   "",
		},
		{
			name:          "unknown token is reported and not scored",
			req:           SearchRequest{Ingredients: "chicken, unicorn-dust"},
			wantOutcome:   OutcomeOK,
			wantTitles:    []string{"Chicken Fried Rice", "Roast Chicken"},
			wantKnown:     []string{"chicken"},
			wantUnknown:   []string{"unicorn-dust"},
			wantUnmatched: []string{},
			wantMessage:   "Note: These ingredients are not in the recipe collection: unicorn-dust",
		},
		{
			name:          "no known ingredients",
			req:           SearchRequest{Ingredients: "unicorn-dust, moon rocks"},
			wantOutcome:   OutcomeNoKnownIngredients,
			wantTitles:    []string{},
			wantKnown:     []string{},
			wantUnknown:   []string{"unicorn-dust", "moon rocks"},
			wantUnmatched: []string{},
			wantMessage:   MessageNoKnownIngredients + "\nNote: These ingredients are not in the recipe collection: unicorn-dust, moon rocks",
		},
		{
			name:          "no recipes found",
			req:           SearchRequest{Ingredients: "whole rice"},
			wantOutcome:   OutcomeNoRecipesFound,
			wantTitles:    []string{},
			wantKnown:     []string{"whole rice"},
			wantUnknown:   []string{},
			wantUnmatched: []string{"whole rice"},
			wantMessage:   MessageNoRecipesFound + "\nNote: All ingredients were ignored or unmatched: whole rice",
		},
		{
			name:          "partial policy with top n",
			req:           SearchRequest{Ingredients: "chicken, butter", Policy: "PARTIAL", TopN: 1},
			wantOutcome:   OutcomeOK,
			wantTitles:    []string{"Onion Soup"},
			wantKnown:     []string{"chicken", "butter"},
			wantUnknown:   []string{},
			wantUnmatched: []string{"chicken"},
			wantMessage:   "Note: These ingredients were ignored in the best match: chicken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Search(tt.req)
			require.NoError(t, err)

			assert.Equal(t, tt.wantOutcome, result.Outcome)
			assert.Equal(t, tt.wantTitles, titles(result.Recipes))
			assert.Equal(t, tt.wantKnown, result.KnownIngredients)
			assert.Equal(t, tt.wantUnknown, result.UnknownIngredients)
			assert.Equal(t, tt.wantUnmatched, result.UnmatchedIngredients)
			assert.Equal(t, tt.wantMessage, result.Message)
		})
	}
}

func TestService_ReorderedPhraseIsKnownButUnmatched(t *testing.T) {
	svc := newTestService(t, Options{Policy: PolicyPartial})

	result, err := svc.Search(SearchRequest{Ingredients: "broth beef, butter"})
	require.NoError(t, err)

	assert.Equal(t, []string{"broth beef", "butter"}, result.KnownIngredients)
	assert.Equal(t, []string{}, result.UnknownIngredients)
	assert.Equal(t, []string{"broth beef"}, result.UnmatchedIngredients)
	assert.Equal(t, []string{"Onion Soup", "Garlic Bread"}, titles(result.Recipes))
}

func TestService_SearchIsIdempotent(t *testing.T) {
	svc := newTestService(t, Options{Policy: PolicyPartial})

	first, err := svc.Search(SearchRequest{Ingredients: "salt, onion, butter"})
	require.NoError(t, err)
	second, err := svc.Search(SearchRequest{Ingredients: "salt, onion, butter"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestService_SearchErrors(t *testing.T) {
	svc := newTestService(t, Options{})

	_, err := svc.Search(SearchRequest{Ingredients: "   "})
	assert.True(t, errors.Is(err, common.ErrEmptyIngredients))

	_, err = svc.Search(SearchRequest{Ingredients: "rice", Policy: "fuzzy"})
	assert.True(t, errors.Is(err, common.ErrInvalidPolicy))
}

func TestService_TopNCappedByMax(t *testing.T) {
	svc := newTestService(t, Options{Policy: PolicyPartial, TopN: 1, MaxTopN: 2})

	result, err := svc.Search(SearchRequest{Ingredients: "salt, butter, onion", TopN: 100})
	require.NoError(t, err)
	assert.Len(t, result.Recipes, 2)
}

func TestService_StatsAndRecipe(t *testing.T) {
	svc := newTestService(t, Options{})

	stats := svc.Stats()
	assert.Equal(t, 5, stats.Recipes)
	assert.Equal(t, 15, stats.VocabularySize)

	r, ok := svc.Recipe(3)
	require.True(t, ok)
	assert.Equal(t, "Roast Chicken", r.Title)

	_, ok = svc.Recipe(5)
	assert.False(t, ok)
	_, ok = svc.Recipe(-1)
	assert.False(t, ok)
}

func TestBuildVocabulary(t *testing.T) {
	c := NewCorpus(fixtureRecipes(), text.NewNormalizer(text.Options{}))

	v := BuildVocabulary(c, VocabularyOptions{})
	assert.True(t, v.Contains("beef broth"))
	assert.True(t, v.Contains("whole"))
	assert.True(t, v.Contains("broth beef"))
	assert.False(t, v.Contains("soup"))
	assert.False(t, v.Contains("slowly"))
	assert.False(t, v.Contains(""))

	withText := BuildVocabulary(c, VocabularyOptions{IncludeTitle: true, IncludeInstructions: true})
	assert.True(t, withText.Contains("soup"))
	assert.True(t, withText.Contains("slowly"))
	assert.False(t, withText.Contains("the"))

	assert.Equal(t, []string{"beef", "beef broth", "bread", "broth", "butter"}, v.Terms("b", 0))
	assert.Equal(t, []string{"beef", "beef broth"}, v.Terms("b", 2))
}

func TestBuildVocabulary_MalformedRows(t *testing.T) {
	recipes := []Recipe{
		{ID: 0},
		{ID: 1, Title: "Toast", Ingredients: []string{"", "  ", "bread"}},
	}
	c := NewCorpus(recipes, text.NewNormalizer(text.Options{Clean: true}))
	v := BuildVocabulary(c, VocabularyOptions{IncludeTitle: true, IncludeInstructions: true})

	assert.Equal(t, []string{"bread", "toast"}, v.Terms("", 0))
}
