package model

import "github.com/linguacare/admin-api/pkg/geo"

type Facility struct {
	Base
	Name      string  `db:"name" json:"name"`
	Street    string  `db:"street" json:"street"`
	City      string  `db:"city" json:"city"`
	State     string  `db:"state" json:"state"`
	ZipCode   string  `db:"zip_code" json:"zip_code"`
	Phone     string  `db:"phone" json:"phone"`
	Email     string  `db:"email" json:"email,omitempty"`
	Latitude  float64 `db:"latitude" json:"latitude"`
	Longitude float64 `db:"longitude" json:"longitude"`
	Active    bool    `db:"active" json:"active"`
}

func (f *Facility) Location() geo.Point {
	return geo.Point{Latitude: f.Latitude, Longitude: f.Longitude}
}

type CreateFacilityRequest struct {
	Name      string  `json:"name" binding:"required,max=200"`
	Street    string  `json:"street" binding:"required"`
	City      string  `json:"city" binding:"required"`
	State     string  `json:"state" binding:"required"`
	ZipCode   string  `json:"zip_code" binding:"required"`
	Phone     string  `json:"phone" binding:"required"`
	Email     string  `json:"email" binding:"omitempty,email"`
	Latitude  float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
}
