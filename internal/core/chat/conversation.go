package chat

import (
	"fmt"
	"strings"
	"time"

	"recipe-matcher/internal/core/recipe"
	"recipe-matcher/internal/pkg/common"
)

// State 對話狀態
type State string

const (
	StateAwaitingIngredients    State = "awaiting_ingredients"
	StateAwaitingConfirmation   State = "awaiting_confirmation"
	StateAwaitingShowIngredient State = "awaiting_show_ingredients"
	StateDone                   State = "done"
)

// 固定回覆
const (
	replyGreeting      = "What ingredients do you have? Separate them with commas."
	replyStartOver     = "Let's start over. " + replyGreeting
	replyDeclined      = "Okay, let's try something else. " + replyGreeting
	replyNotUnderstood = "Sorry, I didn't understand that. " + replyGreeting
	replyNoMore        = "That was my last suggestion. " + replyGreeting
	replyEnjoy         = "Enjoy your meal! Send me more ingredients any time."
)

// Suggestion 推薦給使用者的食譜
type Suggestion struct {
	RecipeID int    `json:"recipe_id"`
	Title    string `json:"title"`
	Score    int    `json:"score"`
}

// Conversation 單一 session 的對話狀態，每一步都回傳新的值
type Conversation struct {
	State       State        `json:"state"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
	Current     int          `json:"current"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewConversation 建立初始對話
func NewConversation() Conversation {
	return Conversation{State: StateAwaitingIngredients}
}

// current 目前推薦的食譜
func (c Conversation) current() (Suggestion, bool) {
	if c.Current < 0 || c.Current >= len(c.Suggestions) {
		return Suggestion{}, false
	}
	return c.Suggestions[c.Current], true
}

// Reply 一次回覆
type Reply struct {
	Text   string               `json:"reply"`
	State  State                `json:"state"`
	Recipe *recipe.Recipe       `json:"recipe,omitempty"`
	Search *recipe.SearchResult `json:"search,omitempty"`
}

// RecipeFinder 對話需要的食譜查詢能力
type RecipeFinder interface {
	Search(req recipe.SearchRequest) (*recipe.SearchResult, error)
	Recipe(id int) (recipe.Recipe, bool)
}

// Bot 線性的四段式對話，本身不保存任何狀態
type Bot struct {
	finder RecipeFinder
	now    func() time.Time
}

// NewBot 創建對話機器人
func NewBot(finder RecipeFinder) *Bot {
	return &Bot{
		finder: finder,
		now:    time.Now,
	}
}

// Step 依目前狀態處理一則訊息，回傳新的對話狀態與回覆
func (b *Bot) Step(conv Conversation, message string) (Conversation, Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return conv, Reply{}, common.ErrEmptyMessage
	}

	var (
		next  Conversation
		reply Reply
		err   error
	)

	intent := classify(message)
	switch {
	case intent == intentReset:
		next, reply = reset(replyStartOver)
	case conv.State == StateAwaitingConfirmation:
		next, reply = b.confirm(conv, intent)
	case conv.State == StateAwaitingShowIngredient:
		next, reply = b.showIngredients(conv, intent)
	default:
		// awaiting_ingredients、done 或未知狀態都視為新的查詢
		next, reply, err = b.search(message)
	}
	if err != nil {
		return conv, Reply{}, err
	}

	next.UpdatedAt = b.now()
	reply.State = next.State
	return next, reply, nil
}

func (b *Bot) search(message string) (Conversation, Reply, error) {
	result, err := b.finder.Search(recipe.SearchRequest{Ingredients: message})
	if err != nil {
		return Conversation{}, Reply{}, fmt.Errorf("search recipes: %w", err)
	}

	if result.Outcome != recipe.OutcomeOK {
		conv, reply := reset(result.Message)
		reply.Search = result
		return conv, reply, nil
	}

	conv := Conversation{State: StateAwaitingConfirmation}
	for _, m := range result.Recipes {
		conv.Suggestions = append(conv.Suggestions, Suggestion{
			RecipeID: m.Recipe.ID,
			Title:    m.Recipe.Title,
			Score:    m.Score,
		})
	}

	text := fmt.Sprintf("I found %d recipe(s). %s", len(conv.Suggestions), propose(conv.Suggestions[0]))
	if result.Message != "" {
		text = result.Message + "\n" + text
	}
	return conv, Reply{Text: text, Search: result}, nil
}

func (b *Bot) confirm(conv Conversation, intent intent) (Conversation, Reply) {
	switch intent {
	case intentYes:
		s, ok := conv.current()
		if !ok {
			return reset(replyNotUnderstood)
		}
		r, ok := b.finder.Recipe(s.RecipeID)
		if !ok {
			return reset(replyNotUnderstood)
		}
		next := conv
		next.State = StateAwaitingShowIngredient
		text := fmt.Sprintf("Here is how to make %q:\n%s\n\nWould you like to see the ingredients? (yes/no)", r.Title, r.Instructions)
		return next, Reply{Text: text, Recipe: &r}
	case intentNext:
		if conv.Current+1 >= len(conv.Suggestions) {
			return reset(replyNoMore)
		}
		next := conv
		next.Suggestions = append([]Suggestion(nil), conv.Suggestions...)
		next.Current++
		return next, Reply{Text: propose(next.Suggestions[next.Current])}
	case intentNo:
		return reset(replyDeclined)
	default:
		return reset(replyNotUnderstood)
	}
}

func (b *Bot) showIngredients(conv Conversation, intent intent) (Conversation, Reply) {
	switch intent {
	case intentYes:
		s, ok := conv.current()
		if !ok {
			return reset(replyNotUnderstood)
		}
		r, ok := b.finder.Recipe(s.RecipeID)
		if !ok {
			return reset(replyNotUnderstood)
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "Ingredients for %q:\n", r.Title)
		for _, ing := range r.Ingredients {
			fmt.Fprintf(&sb, "- %s\n", ing)
		}
		sb.WriteString(replyEnjoy)
		return Conversation{State: StateDone}, Reply{Text: sb.String(), Recipe: &r}
	case intentNo:
		return Conversation{State: StateDone}, Reply{Text: replyEnjoy}
	default:
		return reset(replyNotUnderstood)
	}
}

func reset(text string) (Conversation, Reply) {
	return NewConversation(), Reply{Text: text}
}

func propose(s Suggestion) string {
	return fmt.Sprintf("How about %q? Would you like to see the recipe? (yes/no/next)", s.Title)
}
