package entity

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// LookupKind selects one of the name-only catalog collections.
type LookupKind int

const (
	LookupUndefined LookupKind = iota
	LookupAuthor
	LookupPublisher
	LookupCategory
)

func (k LookupKind) String() string {
	switch k {
	case LookupAuthor:
		return "author"
	case LookupPublisher:
		return "publisher"
	case LookupCategory:
		return "category"
	default:
		return "undefined"
	}
}

// Lookup is an author, a publisher or a category.
type Lookup struct {
	Base
	Name string `json:"name" db:"name"`
}

func (l *Lookup) Fields() map[string]any {
	return map[string]any{"name": l.Name}
}

func (l *Lookup) Validate() error {
	return Invalid(validation.ValidateStruct(l,
		validation.Field(&l.Name, validation.Required, validation.Length(1, maxNameLength)),
	))
}

type LookupInput struct {
	Name   *string
	Active *bool
}
