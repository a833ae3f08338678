// internal/domain/catalog/catalog.go
package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Category groups catalog items on the storefront
type Category string

const (
	CategoryBreads   Category = "Breads"
	CategoryDrinks   Category = "Drinks"
	CategoryDesserts Category = "Desserts"
)

// Item represents a purchasable catalog item. Items are defined at
// process start and never mutated.
type Item struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    Category        `json:"category"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
}

var items = []Item{
	// Breads
	{ID: 1, Name: "Banana Bread", Price: price("5.00"), Category: CategoryBreads, Image: "/img/banana-bread.jpg", Description: "Moist loaf baked with ripe bananas"},
	{ID: 2, Name: "Baguette", Price: price("4.00"), Category: CategoryBreads, Image: "/img/baguette.jpg", Description: "Crusty French-style baguette"},
	{ID: 3, Name: "Ensaymada", Price: price("2.50"), Category: CategoryBreads, Image: "/img/ensaymada.jpg", Description: "Soft brioche topped with butter and cheese"},
	{ID: 4, Name: "Ham and Cheese Bread", Price: price("8.75"), Category: CategoryBreads, Image: "/img/ham-cheese.jpg", Description: "Savory roll filled with ham and cheese"},
	{ID: 5, Name: "Fresh Bread", Price: price("4.00"), Category: CategoryBreads, Image: "/img/fresh-bread.jpg", Description: "Classic loaf baked fresh every morning"},
	{ID: 6, Name: "Chocolate Brownie", Price: price("3.50"), Category: CategoryBreads, Image: "/img/brownie.jpg", Description: "Fudgy chocolate brownie square"},

	// Drinks
	{ID: 7, Name: "Hot Chocolate", Price: price("3.50"), Category: CategoryDrinks, Image: "/img/hot-chocolate.jpg", Description: "Rich cocoa with steamed milk"},
	{ID: 8, Name: "Classic Coffee", Price: price("4.50"), Category: CategoryDrinks, Image: "/img/coffee.jpg", Description: "House blend, freshly brewed"},
	{ID: 9, Name: "Mocha Latte", Price: price("4.00"), Category: CategoryDrinks, Image: "/img/mocha.jpg", Description: "Espresso with chocolate and milk"},
	{ID: 10, Name: "Strawberry Milkshake", Price: price("5.75"), Category: CategoryDrinks, Image: "/img/strawberry-shake.jpg", Description: "Blended shake with fresh strawberries"},
	{ID: 11, Name: "Milk", Price: price("2.00"), Category: CategoryDrinks, Image: "/img/milk.jpg", Description: "Cold glass of fresh milk"},
	{ID: 12, Name: "Iced Tea", Price: price("2.00"), Category: CategoryDrinks, Image: "/img/iced-tea.jpg", Description: "House-brewed iced tea with lemon"},

	// Desserts
	{ID: 13, Name: "Mousse Cake", Price: price("10.00"), Category: CategoryDesserts, Image: "/img/mousse-cake.jpg", Description: "Layered chocolate mousse cake"},
	{ID: 14, Name: "Bibingka", Price: price("3.00"), Category: CategoryDesserts, Image: "/img/bibingka.jpg", Description: "Baked rice cake with salted egg"},
	{ID: 15, Name: "Leche Flan", Price: price("10.00"), Category: CategoryDesserts, Image: "/img/leche-flan.jpg", Description: "Silky caramel custard"},
	{ID: 16, Name: "Ice Cream", Price: price("8.75"), Category: CategoryDesserts, Image: "/img/ice-cream.jpg", Description: "Two scoops of the flavor of the day"},
	{ID: 17, Name: "Mango Graham", Price: price("4.00"), Category: CategoryDesserts, Image: "/img/mango-graham.jpg", Description: "Chilled mango and graham cracker layers"},
	{ID: 18, Name: "Chocolate Cookie", Price: price("5.00"), Category: CategoryDesserts, Image: "/img/cookie.jpg", Description: "Chewy cookie loaded with chocolate chunks"},
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Items returns all catalog items
func Items() []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

// ItemsByCategory returns the items belonging to a category
func ItemsByCategory(category Category) []Item {
	var out []Item
	for _, item := range items {
		if item.Category == category {
			out = append(out, item)
		}
	}
	return out
}

// ItemByID looks up a catalog item by its id
func ItemByID(id int) (*Item, error) {
	for i := range items {
		if items[i].ID == id {
			item := items[i]
			return &item, nil
		}
	}
	return nil, fmt.Errorf("catalog item %d not found", id)
}

// Categories returns the catalog categories in display order
func Categories() []Category {
	return []Category{CategoryBreads, CategoryDrinks, CategoryDesserts}
}
