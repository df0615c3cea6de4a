package models

import "time"

// Product represents a product in the catalog.
// Every attribute is free-form text; no numeric typing is applied.
type Product struct {
	ID            string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name          string    `json:"name"`
	Price         string    `json:"price"`
	Description   string    `json:"description"`
	StockQuantity string    `json:"stockQuantity"`
	Weight        string    `json:"weight"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

// ProductInput carries the attributes of a create or update request.
// It has no identifier and is never persisted directly.
type ProductInput struct {
	Name          string
	Price         string
	Description   string
	StockQuantity string
	Weight        string
}

// ApplyTo overwrites every attribute of p with the input values,
// including empty ones.
func (in ProductInput) ApplyTo(p *Product) {
	p.Name = in.Name
	p.Price = in.Price
	p.Description = in.Description
	p.StockQuantity = in.StockQuantity
	p.Weight = in.Weight
}

// ProductRequest is the JSON body accepted by the create and update endpoints.
// Pointers distinguish a missing attribute from an empty one.
type ProductRequest struct {
	Name          *string `json:"name" validate:"required"`
	Price         *string `json:"price" validate:"required"`
	Description   *string `json:"description" validate:"required"`
	StockQuantity *string `json:"stockQuantity" validate:"required"`
	Weight        *string `json:"weight" validate:"required"`
}

// Input converts a validated request into a ProductInput.
func (r ProductRequest) Input() ProductInput {
	return ProductInput{
		Name:          deref(r.Name),
		Price:         deref(r.Price),
		Description:   deref(r.Description),
		StockQuantity: deref(r.StockQuantity),
		Weight:        deref(r.Weight),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Link is a navigational hyperlink attached to a response.
type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// ProductView is the response shape of a product together with its links.
type ProductView struct {
	Product
	Links []Link `json:"links,omitempty"`
}
