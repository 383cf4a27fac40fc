package models

// DefaultCategory is assigned to products created without a category.
const DefaultCategory = "Other"

// CategorySummary is a category name together with the number of
// products filed under it. It is derived from the products table.
type CategorySummary struct {
	Name  string `gorm:"column:name"`
	Count int64  `gorm:"column:count"`
}
