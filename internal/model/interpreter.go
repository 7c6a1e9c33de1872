package model

import (
	"github.com/lib/pq"

	"github.com/linguacare/admin-api/pkg/geo"
)

type Interpreter struct {
	Base
	FirstName     string         `db:"first_name" json:"first_name"`
	LastName      string         `db:"last_name" json:"last_name"`
	Email         string         `db:"email" json:"email"`
	Phone         string         `db:"phone" json:"phone"`
	Languages     pq.StringArray `db:"languages" json:"languages"`
	Latitude      float64        `db:"latitude" json:"latitude"`
	Longitude     float64        `db:"longitude" json:"longitude"`
	CoverageMiles float64        `db:"coverage_miles" json:"coverage_miles"`
	Active        bool           `db:"active" json:"active"`
}

func (i *Interpreter) Location() geo.Point {
	return geo.Point{Latitude: i.Latitude, Longitude: i.Longitude}
}

// Speaks reports whether the interpreter covers a language. An empty
// language filter matches everyone.
func (i *Interpreter) Speaks(language string) bool {
	if language == "" {
		return true
	}
	for _, l := range i.Languages {
		if l == language {
			return true
		}
	}
	return false
}

type CreateInterpreterRequest struct {
	FirstName     string   `json:"first_name" binding:"required"`
	LastName      string   `json:"last_name" binding:"required"`
	Email         string   `json:"email" binding:"required,email"`
	Phone         string   `json:"phone" binding:"required"`
	Languages     []string `json:"languages" binding:"required,min=1"`
	Latitude      float64  `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude     float64  `json:"longitude" binding:"required,gte=-180,lte=180"`
	CoverageMiles float64  `json:"coverage_miles" binding:"gte=0"`
}
