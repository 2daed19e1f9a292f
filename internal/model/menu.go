package model

// MenuItemStatus controls whether an item can be ordered.
type MenuItemStatus string

const (
	MenuItemAvailable   MenuItemStatus = "available"
	MenuItemUnavailable MenuItemStatus = "unavailable"
)

// MenuItem is a dish or drink that can be ordered.
type MenuItem struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Price       float64        `json:"price"`
	CategoryID  string         `json:"categoryId"`
	Status      MenuItemStatus `json:"status"`
	Images      []string       `json:"images,omitempty"`
	Audit
}

// MenuCategory groups menu items.
type MenuCategory struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
