// Package domain defines the persistence models for animals, users, and
// adoption requests. These types are mapped with GORM and form the core data
// layer of the shelter application.
package domain

import "time"

// DateLayout is the storage format of Animal.ArrivalDate.
const DateLayout = "2006-01-02"

// Animal is a shelter resident. Animals are never deleted; they leave the
// shelter by moving to a non-available status.
//
// Fields:
//   - ID: auto-increment primary key assigned by the store.
//   - Name / Species: required on creation.
//   - Breed / HealthStatus: optional free text.
//   - Age: years; nullable in storage, required by the registry on creation.
//   - ArrivalDate: YYYY-MM-DD, defaults to the creation date.
//   - Status: availability tag (see AnimalStatus).
//   - StatusReason: optional free text explaining the last status change.
type Animal struct {
	ID           uint         `json:"id"            gorm:"primaryKey;autoIncrement"`
	Name         string       `json:"name"          gorm:"type:varchar(128);not null"`
	Species      string       `json:"species"       gorm:"type:varchar(64);not null"`
	Breed        string       `json:"breed"         gorm:"type:varchar(128)"`
	Age          *int         `json:"age"`
	HealthStatus string       `json:"health_status" gorm:"type:varchar(255)"`
	ArrivalDate  string       `json:"arrival_date"  gorm:"type:varchar(10)"`
	Status       AnimalStatus `json:"status"        gorm:"type:varchar(16);not null;default:'available';index;check:status IN ('available','adopted','removed')"`
	StatusReason string       `json:"status_reason,omitempty" gorm:"type:text"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// TableName returns the database table name for Animal.
func (Animal) TableName() string { return "animals" }

// Available reports whether new adoption requests may target the animal.
func (a Animal) Available() bool { return a.Status == AnimalAvailable }

// User is a registered administrator or client. Users are immutable once
// created. Password holds either the plain credential or a bcrypt hash,
// depending on the configured password scheme; it is never serialized.
type User struct {
	ID        uint      `json:"id"       gorm:"primaryKey;autoIncrement"`
	Username  string    `json:"username" gorm:"type:varchar(64);not null;uniqueIndex"`
	Password  string    `json:"-"        gorm:"type:varchar(255);not null"`
	Role      Role      `json:"role"     gorm:"type:varchar(16);not null;index;check:role IN ('admin','client')"`
	Name      string    `json:"name"     gorm:"type:varchar(128);not null"`
	Phone     string    `json:"phone"    gorm:"type:varchar(32);not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// AdoptionRequest is a client's application to adopt an animal.
//
// Fields:
//   - AnimalID / ClientID: foreign keys to animals and users.
//   - RequestDate: creation timestamp (UTC); lists are ordered by it.
//   - Status: lifecycle state (see RequestStatus).
type AdoptionRequest struct {
	ID          uint          `json:"id"           gorm:"primaryKey;autoIncrement"`
	AnimalID    uint          `json:"animal_id"    gorm:"not null;index"`
	ClientID    uint          `json:"client_id"    gorm:"not null;index:idx_client_requests,priority:1"`
	RequestDate time.Time     `json:"request_date" gorm:"not null;index:idx_client_requests,priority:2"`
	Status      RequestStatus `json:"status"       gorm:"type:varchar(16);not null;default:'pending';check:status IN ('pending','approved','rejected','cancelled')"`
	UpdatedAt   time.Time     `json:"updated_at"`

	Animal Animal `json:"-" gorm:"foreignKey:AnimalID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Client User   `json:"-" gorm:"foreignKey:ClientID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the database table name for AdoptionRequest.
func (AdoptionRequest) TableName() string { return "adoption_requests" }

// RequestView is the read model used by request listings: a request joined
// with the client's contact details and the animal's name.
type RequestView struct {
	ID          uint          `json:"id"`
	AnimalID    uint          `json:"animal_id"`
	ClientID    uint          `json:"client_id"`
	RequestDate time.Time     `json:"request_date"`
	Status      RequestStatus `json:"status"`
	ClientName  string        `json:"client_name"`
	ClientPhone string        `json:"client_phone"`
	AnimalName  string        `json:"animal_name"`
}
