package services

import (
	"strings"

	"catalog/internal/models"
)

const (
	RelSelf       = "self"
	RelCollection = "collection"
)

// LinkBuilder derives hyperlinks for product resources mounted under a base path.
type LinkBuilder struct {
	collection string
}

// NewLinkBuilder returns a builder for products served at collectionPath,
// e.g. "/api/v1/products".
func NewLinkBuilder(collectionPath string) LinkBuilder {
	return LinkBuilder{collection: strings.TrimRight(collectionPath, "/")}
}

// Self links to the product itself.
func (b LinkBuilder) Self(id string) models.Link {
	return models.Link{Rel: RelSelf, Href: b.collection + "/" + id}
}

// Collection links to the product list.
func (b LinkBuilder) Collection() models.Link {
	return models.Link{Rel: RelCollection, Href: b.collection}
}

// RenderProduct returns a response view of p carrying links.
// p is copied, never modified.
func RenderProduct(p models.Product, links ...models.Link) models.ProductView {
	view := models.ProductView{Product: p}
	if len(links) > 0 {
		view.Links = append([]models.Link(nil), links...)
	}
	return view
}
