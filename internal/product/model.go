package product

type Product struct {
	ID          int64    `json:"id"`
	StoreID     int64    `json:"store_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	ImageURLs   []string `json:"image_urls"`
	Category    string   `json:"category"`
	Stock       int      `json:"stock"`
}
