package models

import (
	"time"

	"github.com/google/uuid"
)

type Account struct {
	ID            uuid.UUID `json:"id"`
	ProfileID     uuid.UUID `json:"profile_id"`
	AccountNumber string    `json:"account_number"`
	Kind          string    `json:"kind"`   // "checking" or "savings"
	Balance       int64     `json:"balance"` // micros
	Status        string    `json:"status"` // e.g., "pending_verification", "active"
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
}

type Documents struct {
	IDFront        string `json:"id_front"`
	IDBack         string `json:"id_back"`
	ProfilePicture string `json:"profile_picture"`
}

type CustomerProfile struct {
	ID                 uuid.UUID `json:"id"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone"`
	DateOfBirth        string    `json:"date_of_birth"`
	GovernmentID       string    `json:"government_id"`
	Address            Address   `json:"address"`
	Documents          Documents `json:"documents"`
	VerificationStatus string    `json:"verification_status"` // "pending", "verified", "rejected"
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type Transaction struct {
	ID          uuid.UUID `json:"id"`
	AccountID   uuid.UUID `json:"account_id"`
	Kind        string    `json:"kind"`   // "credit" or "debit"
	Amount      int64     `json:"amount"` // micros, always positive; Kind determines direction
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Balance     int64     `json:"balance"` // account balance immediately after posting
	Status      string    `json:"status"`  // "pending", "completed", "failed"
	CreatedAt   time.Time `json:"created_at"`
}
