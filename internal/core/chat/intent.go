package chat

import (
	"strings"
	"unicode"
)

type intent int

const (
	intentOther intent = iota
	intentYes
	intentNo
	intentNext
	intentReset
)

var intents = map[string]intent{
	"yes":            intentYes,
	"y":              intentYes,
	"yeah":           intentYes,
	"yep":            intentYes,
	"sure":           intentYes,
	"ok":             intentYes,
	"okay":           intentYes,
	"please":         intentYes,
	"yes please":     intentYes,
	"show me":        intentYes,
	"no":             intentNo,
	"n":              intentNo,
	"nope":           intentNo,
	"nah":            intentNo,
	"no thanks":      intentNo,
	"not now":        intentNo,
	"next":           intentNext,
	"another":        intentNext,
	"another one":    intentNext,
	"something else": intentNext,
	"reset":          intentReset,
	"restart":        intentReset,
	"start over":     intentReset,
}

// classify 判斷簡短回覆的意圖，忽略大小寫與前後標點
func classify(message string) intent {
	m := strings.ToLower(strings.TrimSpace(message))
	m = strings.TrimFunc(m, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
	m = strings.Join(strings.Fields(m), " ")
	return intents[m]
}
