package handler

import "github.com/troindx/oxidize/internal/model"

// RegisterUserRequest is the registration payload.
type RegisterUserRequest struct {
	Email       string `json:"email"       validate:"required,email"`
	Password    string `json:"password"    validate:"required,min=8"`
	Description string `json:"description"`
	Role        int    `json:"role"`
}

// RegisterUserResponse carries the created account and the private key
// PEM. The private key is surfaced here exactly once; the server keeps no
// copy and cannot recover it.
type RegisterUserResponse struct {
	User       model.User `json:"user"`
	PrivateKey string     `json:"private_key"`
}

// UpdateUserRequest is the owner-mutable subset of a user. Only non-nil
// fields are applied.
type UpdateUserRequest struct {
	Email       *string `json:"email"       validate:"omitempty,email"`
	Password    *string `json:"password"    validate:"omitempty,min=8"`
	Description *string `json:"description"`
	PublicKey   *string `json:"public_key"`
}
