package models

// Product is the catalog record the checkout snapshots prices from. Catalog
// management itself lives in a separate admin surface.
type Product struct {
	BaseModel
	Slug            string  `gorm:"uniqueIndex" json:"slug"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	MRP             float64 `json:"mrp"`
	DiscountPercent float64 `json:"discount_percent"`
	Currency        string  `json:"currency"`
	HeroImage       string  `json:"hero_image"`
}
