package recipe

import (
	"sort"
	"strings"
)

// VocabularyOptions 決定哪些欄位的文字會加入詞彙表
type VocabularyOptions struct {
	IncludeTitle        bool
	IncludeInstructions bool
}

// Vocabulary 資料集中已知的食材片語與單字，建立後唯讀
type Vocabulary struct {
	phrases map[string]struct{}
	words   map[string]struct{}
}

// BuildVocabulary 掃描一次食譜集合建立詞彙表
// 食材片語與其中的單字一定會加入；標題、步驟的單字依選項加入（去除停用詞）
func BuildVocabulary(c *Corpus, opts VocabularyOptions) *Vocabulary {
	v := &Vocabulary{
		phrases: make(map[string]struct{}),
		words:   make(map[string]struct{}),
	}

	n := c.Normalizer()
	for i, doc := range c.docs {
		for phrase := range doc.phrases {
			v.phrases[phrase] = struct{}{}
			for _, w := range strings.Fields(phrase) {
				v.words[w] = struct{}{}
			}
		}

		r := c.recipes[i]
		if opts.IncludeTitle {
			for _, w := range n.Words(r.Title) {
				v.words[w] = struct{}{}
			}
		}
		if opts.IncludeInstructions {
			for _, w := range n.Words(r.Instructions) {
				v.words[w] = struct{}{}
			}
		}
	}

	return v
}

// Contains 判斷已正規化的 key 是否為已知詞彙
// 完整片語存在，或片語中每個單字都存在，皆視為已知
// 單字層級不看順序，"broth beef" 也算已知，但比對時找不到這個片語，會列在 unmatched
func (v *Vocabulary) Contains(key string) bool {
	if key == "" {
		return false
	}
	if _, ok := v.phrases[key]; ok {
		return true
	}
	words := strings.Fields(key)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if _, ok := v.words[w]; !ok {
			return false
		}
	}
	return true
}

// Size 不重複詞彙數量
func (v *Vocabulary) Size() int {
	size := len(v.phrases)
	for w := range v.words {
		if _, ok := v.phrases[w]; !ok {
			size++
		}
	}
	return size
}

// Terms 依字母排序回傳以 prefix 開頭的詞彙，limit <= 0 表示不限
func (v *Vocabulary) Terms(prefix string, limit int) []string {
	seen := make(map[string]struct{}, len(v.phrases))
	var terms []string
	add := func(term string) {
		if !strings.HasPrefix(term, prefix) {
			return
		}
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}
	for p := range v.phrases {
		add(p)
	}
	for w := range v.words {
		add(w)
	}

	sort.Strings(terms)
	if limit > 0 && len(terms) > limit {
		terms = terms[:limit]
	}
	return terms
}
