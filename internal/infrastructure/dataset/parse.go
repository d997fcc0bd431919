package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"recipe-matcher/internal/core/recipe"
)

// 資料集欄位名稱（比對時不分大小寫）
const (
	ColumnTitle        = "Title"
	ColumnIngredients  = "Cleaned_Ingredients"
	ColumnInstructions = "Instructions"
	ColumnImageName    = "Image_Name"
)

var requiredColumns = []string{ColumnTitle, ColumnIngredients, ColumnInstructions}

// ParseCSV 解析食譜 CSV，欄位缺漏的列以空字串處理
func ParseCSV(r io.Reader) ([]recipe.Recipe, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty dataset")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		// 去除 BOM 與空白
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		columns[strings.ToLower(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[strings.ToLower(name)]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}

	cell := func(record []string, name string) string {
		idx, ok := columns[strings.ToLower(name)]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var recipes []recipe.Recipe
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(recipes)+1, err)
		}

		raw := cell(record, ColumnIngredients)
		recipes = append(recipes, recipe.Recipe{
			ID:             len(recipes),
			Title:          cell(record, ColumnTitle),
			Ingredients:    ParseIngredientList(raw),
			RawIngredients: raw,
			Instructions:   cell(record, ColumnInstructions),
			ImageName:      cell(record, ColumnImageName),
		})
	}

	return recipes, nil
}

// ParseIngredientList 解析食材欄位
// 支援序列化的 list 字面值（['a', "b, c"]）與逗號分隔文字；list 無法解析時整格視為單一食材
func ParseIngredientList(cell string) []string {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}

	if strings.HasPrefix(cell, "[") && strings.HasSuffix(cell, "]") {
		items, err := parseListLiteral(cell)
		if err != nil {
			return []string{cell}
		}
		return items
	}

	var items []string
	for _, part := range strings.Split(cell, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

// parseListLiteral 解析以單引號或雙引號包住字串的 list 字面值
func parseListLiteral(s string) ([]string, error) {
	runes := []rune(s[1 : len(s)-1])
	items := []string{}
	i := 0

	skipSpace := func() {
		for i < len(runes) && (runes[i] == ' ' || runes[i] == '\t' || runes[i] == '\n' || runes[i] == '\r') {
			i++
		}
	}

	for {
		skipSpace()
		if i >= len(runes) {
			return items, nil
		}

		quote := runes[i]
		if quote != '\'' && quote != '"' {
			return nil, fmt.Errorf("unexpected %q at %d", runes[i], i)
		}
		i++

		var b strings.Builder
		closed := false
		for i < len(runes) {
			r := runes[i]
			if r == '\\' && i+1 < len(runes) {
				b.WriteRune(unescape(runes[i+1]))
				i += 2
				continue
			}
			if r == quote {
				closed = true
				i++
				break
			}
			b.WriteRune(r)
			i++
		}
		if !closed {
			return nil, fmt.Errorf("unterminated string")
		}

		if item := strings.TrimSpace(b.String()); item != "" {
			items = append(items, item)
		}

		skipSpace()
		if i >= len(runes) {
			return items, nil
		}
		if runes[i] != ',' {
			return nil, fmt.Errorf("expected ',' at %d", i)
		}
		i++
	}
}

func unescape(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	default:
		return r
	}
}
