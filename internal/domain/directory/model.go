package directory

import "time"

// Specialty maps to the specialties table.
type Specialty struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Doctor maps to the doctors table. SpecialtyName is populated on reads that
// join against specialties.
type Doctor struct {
	ID            int64     `db:"id" json:"id"`
	FullName      string    `db:"full_name" json:"full_name"`
	Email         string    `db:"email" json:"email"`
	SpecialtyID   int64     `db:"specialty_id" json:"specialty_id"`
	SpecialtyName string    `db:"specialty_name" json:"specialty_name,omitempty"`
	Active        bool      `db:"active" json:"active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
