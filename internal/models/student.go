package models

import "time"

// Student represents a player enrolled in classes.
type Student struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          *string   `json:"email,omitempty"`
	Phone          *string   `json:"phone,omitempty"`
	Level          *int      `json:"level,omitempty"`
	RegisteredDate time.Time `json:"registeredDate"`
}

// StudentPatch carries the fields of a partial student update. Nil means unchanged.
type StudentPatch struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=120"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone" validate:"omitempty,max=50"`
	Level *int    `json:"level" validate:"omitempty,min=0,max=5"`
}

// StudentSummary pairs a student with the number of classes they attend.
type StudentSummary struct {
	Student
	ClassCount int `json:"classCount"`
}
