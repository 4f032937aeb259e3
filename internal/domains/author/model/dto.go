package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	maxNameLength = 255
	maxBioLength  = 5000
)

// CreateAuthorRequest - POST /v1/authors
type CreateAuthorRequest struct {
	Name string  `json:"name"`
	Bio  *string `json:"bio,omitempty"`
}

func (r CreateAuthorRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, maxNameLength)),
		validation.Field(&r.Bio, validation.Length(0, maxBioLength)),
	)
}

// UpdateAuthorRequest - PUT /v1/authors/:id. Nil fields are left unchanged.
type UpdateAuthorRequest struct {
	Name *string `json:"name,omitempty"`
	Bio  *string `json:"bio,omitempty"`
}

func (r UpdateAuthorRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, maxNameLength)),
		validation.Field(&r.Bio, validation.Length(0, maxBioLength)),
	)
}

// AuthorResponse is the API shape: nullable columns become absent fields,
// timestamps become ISO strings.
type AuthorResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Bio       *string `json:"bio,omitempty"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// ToResponse maps the stored entity to its API projection.
func ToResponse(a Author) AuthorResponse {
	return AuthorResponse{
		ID:        a.ID.String(),
		Name:      a.Name,
		Bio:       a.Bio,
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: a.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
