package dto

// UploadData describes a stored image.
type UploadData struct {
	ImageURL    string `json:"imageUrl"`
	Description string `json:"description"`
}

// UploadResponse is returned by the storefront upload endpoint.
type UploadResponse struct {
	Success bool        `json:"success"`
	Data    *UploadData `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// VariantResponse is a purchasable option of a searched product.
type VariantResponse struct {
	ID              string                   `json:"id"`
	Title           string                   `json:"title"`
	Price           string                   `json:"price"`
	Currency        string                   `json:"currency"`
	SelectedOptions []SelectedOptionResponse `json:"selectedOptions"`
}

// ProductSearchResult is one product in the admin product picker.
type ProductSearchResult struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Handle   string            `json:"handle"`
	ImageURL string            `json:"imageUrl"`
	Variants []VariantResponse `json:"variants"`
}
