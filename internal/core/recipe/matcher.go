package recipe

import (
	"fmt"
	"sort"
)

// 比對策略
const (
	// PolicyFullFirst 優先回傳包含全部食材的食譜，沒有時改用部分比對
	PolicyFullFirst = "full_first"
	// PolicyPartial 只依符合的食材數量計分
	PolicyPartial = "partial"
)

// 食材包含判斷方式
const (
	// ContainmentSubstring 正規化文字中任意位置出現即算包含，"pepper" 會命中 "black peppercorns"
	ContainmentSubstring = "substring"
	// ContainmentWord 必須以完整單字出現，"rice" 不會命中 "licorice"
	ContainmentWord = "word"
)

// DefaultTopN 預設回傳筆數
const DefaultTopN = 5

// MatchOptions 比對選項
type MatchOptions struct {
	Policy              string
	Containment         string
	TopN                int
	IncludeTitle        bool
	IncludeInstructions bool
}

// Match 一筆命中的食譜與分數
type Match struct {
	Recipe    Recipe `json:"recipe"`
	Score     int    `json:"score"`
	FullMatch bool   `json:"full_match"`

	index int
}

// MatchResult 排序後的結果，以及在結果中都沒出現的食材
type MatchResult struct {
	Matches   []Match `json:"matches"`
	Unmatched []Token `json:"unmatched"`
	Policy    string  `json:"policy"`
	FullMatch bool    `json:"full_match"`
}

// ValidatePolicy 檢查比對策略，空字串視為 full_first
func ValidatePolicy(policy string) error {
	switch policy {
	case "", PolicyFullFirst, PolicyPartial:
		return nil
	default:
		return fmt.Errorf("unknown match policy %q", policy)
	}
}

// ValidateContainment 檢查包含判斷方式，空字串視為 substring
func ValidateContainment(mode string) error {
	switch mode {
	case "", ContainmentSubstring, ContainmentWord:
		return nil
	default:
		return fmt.Errorf("unknown containment mode %q", mode)
	}
}

// Rank 對唯讀的食譜集合計分並排序，不修改任何共用狀態
// 分數相同時保留資料集原本的順序
func Rank(c *Corpus, tokens []Token, opts MatchOptions) MatchResult {
	if opts.Policy == "" {
		opts.Policy = PolicyFullFirst
	}
	if opts.Containment == "" {
		opts.Containment = ContainmentSubstring
	}
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}

	result := MatchResult{Policy: opts.Policy}
	if len(tokens) == 0 {
		return result
	}

	keys := make([]string, len(tokens))
	for i, t := range tokens {
		keys[i] = t.Key
	}

	if opts.Policy == PolicyFullFirst {
		var full []Match
		for i, doc := range c.docs {
			if doc.containsAll(keys, opts.Containment) {
				full = append(full, Match{
					Recipe:    c.recipes[i],
					Score:     score(doc, keys, opts),
					FullMatch: true,
					index:     i,
				})
			}
		}
		if len(full) > 0 {
			result.Matches = top(full, opts.TopN)
			result.FullMatch = true
			result.Unmatched = unmatched(c, result.Matches, tokens, opts)
			return result
		}
	}

	var partial []Match
	for i, doc := range c.docs {
		s := score(doc, keys, opts)
		if s == 0 {
			continue
		}
		partial = append(partial, Match{
			Recipe:    c.recipes[i],
			Score:     s,
			FullMatch: doc.containsAll(keys, opts.Containment),
			index:     i,
		})
	}

	result.Matches = top(partial, opts.TopN)
	result.Unmatched = unmatched(c, result.Matches, tokens, opts)
	return result
}

// score 在合併文字中出現的 key 數量
func score(doc document, keys []string, opts MatchOptions) int {
	n := 0
	for _, key := range keys {
		if doc.contains(key, opts) {
			n++
		}
	}
	return n
}

// top 依分數遞減做穩定排序後取前 n 筆
func top(matches []Match, n int) []Match {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > n {
		matches = matches[:n]
	}
	return matches
}

// unmatched 回傳沒有出現在任何結果食譜中的食材
func unmatched(c *Corpus, matches []Match, tokens []Token, opts MatchOptions) []Token {
	var out []Token
	for _, t := range tokens {
		found := false
		for _, m := range matches {
			if c.docs[m.index].contains(t.Key, opts) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, t)
		}
	}
	return out
}
