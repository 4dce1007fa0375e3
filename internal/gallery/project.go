// Package gallery is the storefront-side consumer of the public listing: a controller
// that pages through approved projects and a lightbox navigator over their photos.
package gallery

// Image is one photo shown in a card or the lightbox.
type Image struct {
	URL      string
	Filename string
}

// Product is the product a project was made with.
type Product struct {
	ShopifyID string
	Title     string
	Handle    string
	ImageURL  string
	Price     string
	Currency  string
}

// Project is one approved submission as the storefront renders it.
type Project struct {
	ID             string
	DisplayName    string
	ProjectName    string
	PatternName    string
	DesignerName   string
	PatternLink    string
	ProjectDetails string
	Categories     []string
	Product        *Product
	Images         []Image
}

// Gallery returns the project's photos, or the product image when it has none.
func (p Project) Gallery() []Image {
	if len(p.Images) > 0 {
		return p.Images
	}
	if p.Product != nil && p.Product.ImageURL != "" {
		return []Image{{URL: p.Product.ImageURL, Filename: p.Product.Title}}
	}
	return nil
}

// ImageCounts returns the lightbox length of each project.
func ImageCounts(projects []Project) []int {
	counts := make([]int, len(projects))
	for i, p := range projects {
		counts[i] = len(p.Gallery())
	}
	return counts
}
