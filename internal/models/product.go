package models

// Product позиция каталога. Каталог только читается ядром.
type Product struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Price    int64  `json:"price"`
	FileRef  string `json:"file_ref"`
	ImageRef string `json:"image_ref"`
}

// ProductSnapshot замороженная копия товара на момент покупки.
// С каталогом повторно не синхронизируется.
type ProductSnapshot struct {
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	Price     int64  `json:"price"`
	FileRef   string `json:"file_ref"`
	ImageRef  string `json:"image_ref"`
}

// Snapshot снимает копию товара.
func (p Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ProductID: p.ID,
		Title:     p.Title,
		Price:     p.Price,
		FileRef:   p.FileRef,
		ImageRef:  p.ImageRef,
	}
}
