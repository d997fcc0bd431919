package recipe

// Recipe 資料集中的一筆食譜，載入後不再修改
type Recipe struct {
	ID             int      `json:"id"`
	Title          string   `json:"title"`
	Ingredients    []string `json:"ingredients"`
	RawIngredients string   `json:"-"`
	Instructions   string   `json:"instructions"`
	ImageName      string   `json:"image_name,omitempty"`
}

