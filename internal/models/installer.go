package models

import "time"

type Installer struct {
	ID          int64     `json:"installerId" db:"installer_id"`
	FirstName   string    `json:"firstName" db:"first_name"`
	LastName    string    `json:"lastName" db:"last_name"`
	Trade       Trade     `json:"trade" db:"trade"`
	Phone       *string   `json:"phone,omitempty" db:"phone"`
	Email       *string   `json:"email,omitempty" db:"email"`
	IsActive    bool      `json:"isActive" db:"is_active"`
	LocationIDs []int64   `json:"locationIds"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

func (i Installer) FullName() string {
	return i.FirstName + " " + i.LastName
}

type GeographicLocation struct {
	ID        int64     `json:"locationId" db:"location_id"`
	Name      string    `json:"locationName" db:"location_name"`
	ZipCode   *string   `json:"zipCode,omitempty" db:"zip_code"`
	City      *string   `json:"city,omitempty" db:"city"`
	State     *string   `json:"state,omitempty" db:"state"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Candidate is the projection returned by the candidate query.
type Candidate struct {
	ID        int64  `json:"installerId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (c Candidate) FullName() string {
	return c.FirstName + " " + c.LastName
}

// CandidateFilter fully describes one candidate lookup. A nil LocationID
// disables the location filter; a nil ExcludeDate disables the same-date
// exclusion.
type CandidateFilter struct {
	Trade               Trade
	IsActive            bool
	LocationID          *int64
	ExcludeDate         *Date
	ExcludeInstallerIDs []int64
}
