package recipe

import (
	"strings"

	"recipe-matcher/internal/core/text"
)

// phraseSeparator 分隔不同食材片語，避免比對跨越兩個食材
const phraseSeparator = " | "

// Corpus 預先正規化的食譜集合，建立後唯讀，可在多個請求間共用
type Corpus struct {
	recipes    []Recipe
	docs       []document
	normalizer *text.Normalizer
}

// document 單筆食譜的正規化文字，每段前後補空白以便整詞比對
type document struct {
	phrases      map[string]struct{}
	ingredients  string
	title        string
	instructions string
}

// NewCorpus 建立食譜集合的正規化索引
func NewCorpus(recipes []Recipe, normalizer *text.Normalizer) *Corpus {
	c := &Corpus{
		recipes:    recipes,
		docs:       make([]document, len(recipes)),
		normalizer: normalizer,
	}

	for i, r := range recipes {
		doc := document{phrases: make(map[string]struct{}, len(r.Ingredients))}

		normalized := make([]string, 0, len(r.Ingredients))
		for _, ing := range r.Ingredients {
			phrase := normalizer.Phrase(ing)
			if phrase == "" {
				continue
			}
			doc.phrases[phrase] = struct{}{}
			normalized = append(normalized, phrase)
		}

		doc.ingredients = pad(strings.Join(normalized, phraseSeparator))
		doc.title = pad(normalizer.Phrase(r.Title))
		doc.instructions = pad(normalizer.Phrase(r.Instructions))
		c.docs[i] = doc
	}

	return c
}

// Len 食譜數量
func (c *Corpus) Len() int {
	return len(c.recipes)
}

// Recipe 依資料集順序取得食譜
func (c *Corpus) Recipe(i int) Recipe {
	return c.recipes[i]
}

// Normalizer 回傳建立索引時使用的正規化器
func (c *Corpus) Normalizer() *text.Normalizer {
	return c.normalizer
}

// containsAll 食材清單是否包含所有 key
func (d document) containsAll(keys []string, mode string) bool {
	for _, key := range keys {
		if !d.hasIngredient(key, mode) {
			return false
		}
	}
	return true
}

// hasIngredient 食材片語完全相同，或依 mode 出現在食材文字中
func (d document) hasIngredient(key, mode string) bool {
	if _, ok := d.phrases[key]; ok {
		return true
	}
	return containsKey(d.ingredients, key, mode)
}

// contains 在合併文字（食材，以及選擇性的標題、步驟）中出現
func (d document) contains(key string, opts MatchOptions) bool {
	if d.hasIngredient(key, opts.Containment) {
		return true
	}
	if opts.IncludeTitle && containsKey(d.title, key, opts.Containment) {
		return true
	}
	return opts.IncludeInstructions && containsKey(d.instructions, key, opts.Containment)
}

// containsKey 片語之間以 " | " 分隔，key 不含 "|"，因此兩種方式都不會跨越兩個食材
func containsKey(padded, key, mode string) bool {
	if key == "" || len(padded) <= 2 {
		return false
	}
	if mode == ContainmentWord {
		return strings.Contains(padded, " "+key+" ")
	}
	return strings.Contains(padded, key)
}

func pad(s string) string {
	return " " + s + " "
}
