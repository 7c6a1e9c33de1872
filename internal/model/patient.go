package model

type Patient struct {
	Base
	FirstName         string `db:"first_name" json:"first_name"`
	LastName          string `db:"last_name" json:"last_name"`
	Email             string `db:"email" json:"email,omitempty"`
	Phone             string `db:"phone" json:"phone"`
	PreferredLanguage string `db:"preferred_language" json:"preferred_language"`
}

type CreatePatientRequest struct {
	FirstName         string `json:"first_name" binding:"required"`
	LastName          string `json:"last_name" binding:"required"`
	Email             string `json:"email" binding:"omitempty,email"`
	Phone             string `json:"phone" binding:"required"`
	PreferredLanguage string `json:"preferred_language" binding:"required"`
}
