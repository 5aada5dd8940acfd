package patient

import "time"

// Patient maps to the patients table.
type Patient struct {
	ID           int64     `db:"id" json:"id"`
	FullName     string    `db:"full_name" json:"full_name"`
	Email        string    `db:"email" json:"email"`
	NationalID   string    `db:"national_id" json:"national_id"`
	Phone        string    `db:"phone" json:"phone,omitempty"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Address maps to the addresses table. A patient can keep several addresses
// on file; ambulance dispatch picks one of them.
type Address struct {
	ID        int64     `db:"id" json:"id"`
	PatientID int64     `db:"patient_id" json:"patient_id"`
	Street    string    `db:"street" json:"street"`
	City      string    `db:"city" json:"city"`
	Reference string    `db:"reference" json:"reference,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
