package recipe

import (
	"strings"

	"recipe-matcher/internal/core/text"
)

// Token 使用者輸入的一個食材
type Token struct {
	Text string `json:"text"` // 小寫、去頭尾空白後的原文
	Key  string `json:"-"`    // 正規化（含詞幹還原）後用於比對的形式
}

// Extraction 解析後的查詢：已知與未知食材分開
type Extraction struct {
	Query   string  `json:"query"`
	Tokens  []Token `json:"-"`
	Known   []Token `json:"known"`
	Unknown []Token `json:"unknown"`
}

// ParseQuery 以逗號切分輸入，逐一正規化並與詞彙表比對
// 相同 key 的食材只保留第一次出現
func ParseQuery(raw string, normalizer *text.Normalizer, vocab *Vocabulary) Extraction {
	ext := Extraction{Query: raw}
	seen := make(map[string]struct{})

	for _, part := range strings.Split(raw, ",") {
		display := text.Normalize(part)
		if display == "" {
			continue
		}

		token := Token{Text: display, Key: normalizer.Phrase(part)}
		dedupe := token.Key
		if dedupe == "" {
			dedupe = "\x00" + display
		}
		if _, ok := seen[dedupe]; ok {
			continue
		}
		seen[dedupe] = struct{}{}

		ext.Tokens = append(ext.Tokens, token)
		if vocab.Contains(token.Key) {
			ext.Known = append(ext.Known, token)
		} else {
			ext.Unknown = append(ext.Unknown, token)
		}
	}

	return ext
}

// Texts 取出 token 原文
func Texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}
