package entity

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const maxNameLength = 255

type Book struct {
	Base
	ISBN          string `json:"isbn" db:"isbn"`
	Name          string `json:"name" db:"name"`
	AuthorID      int64  `json:"authorId" db:"author_id"`
	PublisherID   int64  `json:"publisherId" db:"publisher_id"`
	CategoryID    int64  `json:"categoryId" db:"category_id"`
	YearPublished int    `json:"yearPublished" db:"year_published"`
	NumPages      int    `json:"numPages" db:"num_pages"`
}

func (b *Book) Fields() map[string]any {
	return map[string]any{
		"isbn":           b.ISBN,
		"name":           b.Name,
		"author_id":      b.AuthorID,
		"publisher_id":   b.PublisherID,
		"category_id":    b.CategoryID,
		"year_published": b.YearPublished,
		"num_pages":      b.NumPages,
	}
}

func (b *Book) Validate() error {
	return Invalid(validation.ValidateStruct(b,
		validation.Field(&b.ISBN, validation.Required, validation.Length(1, 32)),
		validation.Field(&b.Name, validation.Required, validation.Length(1, maxNameLength)),
		validation.Field(&b.AuthorID, validation.Required, validation.Min(int64(1))),
		validation.Field(&b.PublisherID, validation.Required, validation.Min(int64(1))),
		validation.Field(&b.CategoryID, validation.Required, validation.Min(int64(1))),
		validation.Field(&b.YearPublished, validation.Required, validation.Min(1)),
		validation.Field(&b.NumPages, validation.Required, validation.Min(1)),
	))
}

// BookInput carries a create or partial update request. Nil fields are
// absent; on create every field except Active is required.
type BookInput struct {
	ISBN          *string
	Name          *string
	AuthorID      *int64
	PublisherID   *int64
	CategoryID    *int64
	YearPublished *int
	NumPages      *int
	Active        *bool
}

type ActiveStats struct {
	Books int `json:"books"`
	Loans int `json:"loans"`
}
