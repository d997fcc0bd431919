package text

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kljensen/snowball/english"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// garbageReplacer 去除資料集中常見的亂碼與分數符號
var garbageReplacer = strings.NewReplacer(
	"Â", "",
	"½", "",
	"¼", "",
	"¾", "",
	"–", "",
	"”", "",
	"“", "",
	"™", "",
)

// Options 正規化選項
type Options struct {
	Clean bool // 修復編碼亂碼並去除重音符號
	Stem  bool // 以 snowball english 做詞幹還原
}

// Normalizer 將食材、標題、步驟文字轉成可比對的形式
type Normalizer struct {
	opts Options
}

// NewNormalizer 創建正規化器
func NewNormalizer(opts Options) *Normalizer {
	return &Normalizer{opts: opts}
}

// Phrase 正規化一段片語：小寫、去頭尾空白、合併空白，必要時清理與詞幹還原
func (n *Normalizer) Phrase(s string) string {
	return strings.Join(n.stem(n.fields(s)), " ")
}

// Words 回傳正規化後的單字，去除停用詞與單一字元
func (n *Normalizer) Words(s string) []string {
	fields := n.fields(s)
	out := fields[:0]
	for _, w := range fields {
		if utf8.RuneCountInString(w) < 2 || stopwords[w] {
			continue
		}
		out = append(out, w)
	}
	return n.stem(out)
}

func (n *Normalizer) fields(s string) []string {
	if n.opts.Clean {
		s = CleanEncoding(s)
	}
	return strings.FieldsFunc(strings.ToLower(s), isSeparator)
}

func (n *Normalizer) stem(words []string) []string {
	if !n.opts.Stem {
		return words
	}
	for i, w := range words {
		words[i] = english.Stem(w, true)
	}
	return words
}

// isSeparator 字母、數字、連字號與撇號以外都視為分隔
func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '\''
}

// Normalize 只做小寫與去頭尾空白
func Normalize(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

// CleanEncoding 修復以 latin1 誤解碼的 UTF-8 文字，去除亂碼字元與重音符號
func CleanEncoding(s string) string {
	if repaired, err := charmap.ISO8859_1.NewEncoder().String(s); err == nil && repaired != s && utf8.ValidString(repaired) {
		s = repaired
	}
	s = garbageReplacer.Replace(s)
	return stripDiacritics(s)
}

func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}
