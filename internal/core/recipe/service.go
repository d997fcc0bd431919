package recipe

import (
	"fmt"
	"strings"
	"time"

	"recipe-matcher/internal/core/text"
	"recipe-matcher/internal/pkg/common"
)

// Outcome 搜尋結果分類
type Outcome string

const (
	OutcomeOK                 Outcome = "ok"
	OutcomeNoKnownIngredients Outcome = "no_known_ingredients"
	OutcomeNoRecipesFound     Outcome = "no_recipes_found"
)

// 回覆給使用者的訊息
const (
	MessageNoKnownIngredients = "No known ingredients found in your input."
	MessageNoRecipesFound     = "Sorry, no recipes found with those ingredients."
)

// Options 食譜服務設定
type Options struct {
	Policy              string
	Containment         string
	TopN                int
	MaxTopN             int
	Stem                bool
	CleanEncoding       bool
	IncludeTitle        bool
	IncludeInstructions bool
}

// SearchRequest 搜尋請求，TopN 與 Policy 為零值時使用預設
type SearchRequest struct {
	Ingredients string
	TopN        int
	Policy      string
}

// SearchResult 搜尋結果
// UnknownIngredients 為詞彙表中不存在的食材；UnmatchedIngredients 為已知但沒有出現在回傳食譜中的食材
type SearchResult struct {
	Query                string   `json:"query"`
	Outcome              Outcome  `json:"outcome"`
	Message              string   `json:"message,omitempty"`
	KnownIngredients     []string `json:"known_ingredients"`
	UnknownIngredients   []string `json:"unknown_ingredients"`
	UnmatchedIngredients []string `json:"unmatched_ingredients"`
	Policy               string   `json:"policy"`
	FullMatch            bool     `json:"full_match"`
	Recipes              []Match  `json:"recipes"`
}

// Stats 資料集統計
type Stats struct {
	Recipes        int `json:"recipes"`
	VocabularySize int `json:"vocabulary_size"`
}

// Service 食譜比對服務，持有唯讀的食譜集合與詞彙表
type Service struct {
	options    Options
	corpus     *Corpus
	vocabulary *Vocabulary
}

// NewService 建立食譜索引與詞彙表
func NewService(recipes []Recipe, opts Options) (*Service, error) {
	if err := ValidatePolicy(opts.Policy); err != nil {
		return nil, err
	}
	if opts.Policy == "" {
		opts.Policy = PolicyFullFirst
	}
	if err := ValidateContainment(opts.Containment); err != nil {
		return nil, err
	}
	if opts.Containment == "" {
		opts.Containment = ContainmentSubstring
	}
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	if opts.MaxTopN < opts.TopN {
		opts.MaxTopN = opts.TopN
	}

	normalizer := text.NewNormalizer(text.Options{
		Clean: opts.CleanEncoding,
		Stem:  opts.Stem,
	})
	corpus := NewCorpus(recipes, normalizer)
	vocabulary := BuildVocabulary(corpus, VocabularyOptions{
		IncludeTitle:        opts.IncludeTitle,
		IncludeInstructions: opts.IncludeInstructions,
	})

	return &Service{
		options:    opts,
		corpus:     corpus,
		vocabulary: vocabulary,
	}, nil
}

// Extract 解析查詢並分出已知與未知食材
func (s *Service) Extract(query string) Extraction {
	return ParseQuery(query, s.corpus.Normalizer(), s.vocabulary)
}

// Search 解析查詢、比對並產生回覆訊息
// 找不到已知食材或找不到食譜都不是錯誤，以 Outcome 表示
func (s *Service) Search(req SearchRequest) (*SearchResult, error) {
	start := time.Now()

	if strings.TrimSpace(req.Ingredients) == "" {
		return nil, common.ErrEmptyIngredients
	}

	policy := strings.ToLower(strings.TrimSpace(req.Policy))
	if err := ValidatePolicy(policy); err != nil {
		return nil, common.ErrInvalidPolicy.Wrap(err)
	}
	if policy == "" {
		policy = s.options.Policy
	}

	topN := req.TopN
	if topN <= 0 {
		topN = s.options.TopN
	}
	if topN > s.options.MaxTopN {
		topN = s.options.MaxTopN
	}

	ext := s.Extract(req.Ingredients)
	result := &SearchResult{
		Query:                req.Ingredients,
		KnownIngredients:     Texts(ext.Known),
		UnknownIngredients:   Texts(ext.Unknown),
		UnmatchedIngredients: []string{},
		Policy:               policy,
		Recipes:              []Match{},
	}

	if len(ext.Known) == 0 {
		result.Outcome = OutcomeNoKnownIngredients
		result.Message = joinNotes(MessageNoKnownIngredients, ignoredNote(result))
		common.LogSearch(req.Ingredients, 0, len(ext.Unknown), 0, time.Since(start))
		return result, nil
	}

	matched := Rank(s.corpus, ext.Known, MatchOptions{
		Policy:              policy,
		Containment:         s.options.Containment,
		TopN:                topN,
		IncludeTitle:        s.options.IncludeTitle,
		IncludeInstructions: s.options.IncludeInstructions,
	})

	result.UnmatchedIngredients = Texts(matched.Unmatched)
	result.FullMatch = matched.FullMatch
	if len(matched.Matches) == 0 {
		result.Outcome = OutcomeNoRecipesFound
		result.Message = MessageNoRecipesFound
	} else {
		result.Outcome = OutcomeOK
		result.Recipes = matched.Matches
	}
	result.Message = joinNotes(result.Message, ignoredNote(result))

	common.LogSearch(req.Ingredients, len(ext.Known), len(ext.Unknown), len(result.Recipes), time.Since(start))
	return result, nil
}

// Stats 回傳資料集統計
func (s *Service) Stats() Stats {
	return Stats{
		Recipes:        s.corpus.Len(),
		VocabularySize: s.vocabulary.Size(),
	}
}

// Vocabulary 回傳詞彙表
func (s *Service) Vocabulary() *Vocabulary {
	return s.vocabulary
}

// Recipe 依 ID 取得食譜
func (s *Service) Recipe(id int) (Recipe, bool) {
	if id < 0 || id >= s.corpus.Len() {
		return Recipe{}, false
	}
	return s.corpus.Recipe(id), true
}

// ignoredNote 產生被忽略食材的說明
func ignoredNote(r *SearchResult) string {
	var notes []string
	if len(r.UnknownIngredients) > 0 {
		notes = append(notes, fmt.Sprintf("Note: These ingredients are not in the recipe collection: %s", strings.Join(r.UnknownIngredients, ", ")))
	}
	if len(r.UnmatchedIngredients) > 0 {
		if r.Outcome == OutcomeNoRecipesFound {
			notes = append(notes, fmt.Sprintf("Note: All ingredients were ignored or unmatched: %s", strings.Join(r.UnmatchedIngredients, ", ")))
		} else {
			notes = append(notes, fmt.Sprintf("Note: These ingredients were ignored in the best match: %s", strings.Join(r.UnmatchedIngredients, ", ")))
		}
	}
	return strings.Join(notes, "\n")
}

func joinNotes(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n")
}
