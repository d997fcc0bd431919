package text

// stopwords 標題與步驟中的常見英文字，不放入詞彙表
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true,
	"was": true, "be": true, "been": true, "will": true, "can": true,
	"not": true, "no": true, "and": true, "or": true, "but": true,
	"if": true, "then": true, "than": true, "so": true, "as": true,
	"at": true, "by": true, "for": true, "from": true, "in": true,
	"into": true, "of": true, "on": true, "to": true, "with": true,
	"about": true, "up": true, "out": true, "it": true, "its": true,
	"this": true, "that": true, "until": true, "each": true, "over": true,
	"your": true, "you": true, "all": true, "any": true, "more": true,
}
