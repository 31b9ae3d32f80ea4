// Package menu provides a small in-memory restaurant menu exposed to models as tools.
package menu

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cchalm/groupchat/internal/tools"
)

// Item is a single menu entry
type Item struct {
	Category  string  `json:"category"`
	Name      string  `json:"name"`
	Price     float32 `json:"price"`
	IsSpecial bool    `json:"isSpecial"`
}

var defaultItems = []Item{
	{Category: "Soup", Name: "Clam Chowder", Price: 4.95, IsSpecial: true},
	{Category: "Soup", Name: "Tomato Soup", Price: 4.95},
	{Category: "Salad", Name: "Cobb Salad", Price: 9.99},
	{Category: "Salad", Name: "House Salad", Price: 4.95},
	{Category: "Drink", Name: "Chai Tea", Price: 2.95, IsSpecial: true},
	{Category: "Drink", Name: "Soda", Price: 1.95},
}

// Menu is a read-only list of items
type Menu struct {
	items []Item
}

// New returns the default menu
func New() *Menu {
	return NewWithItems(defaultItems)
}

// NewWithItems returns a menu of the given items
func NewWithItems(items []Item) *Menu {
	return &Menu{items: append([]Item(nil), items...)}
}

// Items returns every item on the menu
func (m *Menu) Items() []Item {
	return append([]Item(nil), m.items...)
}

// Specials returns the items marked as specials
func (m *Menu) Specials() []Item {
	var specials []Item
	for _, item := range m.items {
		if item.IsSpecial {
			specials = append(specials, item)
		}
	}
	return specials
}

// Price returns the price of the named item, matched case-insensitively
func (m *Menu) Price(name string) (float32, bool) {
	for _, item := range m.items {
		if strings.EqualFold(item.Name, name) {
			return item.Price, true
		}
	}
	return 0, false
}

// Tools returns the menu's functions as tools
func (m *Menu) Tools() []tools.Tool {
	return []tools.Tool{
		&getMenuTool{menu: m},
		&getSpecialsTool{menu: m},
		&getItemPriceTool{menu: m},
	}
}

type noInput struct{}

type getMenuTool struct {
	menu *Menu
}

func (t *getMenuTool) Definition() tools.Definition {
	return tools.Definition{
		Name:        "get_menu",
		Description: "Provides the full list of items on the menu.",
		InputSchema: tools.MustSchemaFor[noInput](),
	}
}

func (t *getMenuTool) Run(_ context.Context, _ json.RawMessage) (string, error) {
	return tools.JSONResult(t.menu.Items())
}

type getSpecialsTool struct {
	menu *Menu
}

func (t *getSpecialsTool) Definition() tools.Definition {
	return tools.Definition{
		Name:        "get_specials",
		Description: "Provides a list of specials from the menu.",
		InputSchema: tools.MustSchemaFor[noInput](),
	}
}

func (t *getSpecialsTool) Run(_ context.Context, _ json.RawMessage) (string, error) {
	return tools.JSONResult(t.menu.Specials())
}

type itemPriceInput struct {
	MenuItem string `json:"menu_item" jsonschema:"description=The name of the menu item."`
}

type getItemPriceTool struct {
	menu *Menu
}

func (t *getItemPriceTool) Definition() tools.Definition {
	return tools.Definition{
		Name:        "get_item_price",
		Description: "Provides the price of the requested menu item.",
		InputSchema: tools.MustSchemaFor[itemPriceInput](),
	}
}

func (t *getItemPriceTool) Run(_ context.Context, input json.RawMessage) (string, error) {
	var in itemPriceInput
	if err := tools.ParseInput(input, &in); err != nil {
		return "", err
	}
	if strings.TrimSpace(in.MenuItem) == "" {
		return "", tools.NewToolInputError(fmt.Errorf("menu_item is required"))
	}
	price, ok := t.menu.Price(in.MenuItem)
	if !ok {
		return "", tools.NewToolInputError(fmt.Errorf("no menu item named %q", in.MenuItem))
	}
	return tools.JSONResult(price)
}
