package handlers

import (
	"github.com/revelohq/revelo/core"
)

type (
	AdminLoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	// InstituteLoginRequest authenticates by institute name, not email.
	InstituteLoginRequest struct {
		Institute string `json:"institute" validate:"required"`
		Password  string `json:"password" validate:"required"`
	}

	UserLoginRequest struct {
		Email    string `json:"email" validate:"required"` // username or email
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Success bool   `json:"success"`
		Token   string `json:"token,omitempty"`
	}

	DeleteSubEventRequest struct {
		EventID    string `json:"eventId" validate:"required"`
		SubEventID string `json:"subEventId" validate:"required"`
	}
)

func (r *AdminLoginRequest) Validate() error {
	r.Email = core.CleanString(r.Email, true /* lower */)
	return core.Validate.Struct(r)
}

func (r *InstituteLoginRequest) Validate() error {
	r.Institute = core.CleanString(r.Institute)
	return core.Validate.Struct(r)
}

func (r *UserLoginRequest) Validate() error {
	r.Email = core.CleanString(r.Email, true /* lower */)
	return core.Validate.Struct(r)
}

func (r *DeleteSubEventRequest) Validate() error {
	r.EventID = core.CleanString(r.EventID)
	r.SubEventID = core.CleanString(r.SubEventID)
	return core.Validate.Struct(r)
}
