package models

import "time"

// Student is a roster entry. AdmissionNumber is the login credential and is
// unique across the whole table.
type Student struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"not null" json:"name"`
	AdmissionNumber string    `gorm:"uniqueIndex;not null" json:"admission_number"`
	ClassName       string    `gorm:"index;not null;default:''" json:"class_name"`
	CreatedAt       time.Time `json:"created_at"`
}

func (Student) TableName() string {
	return "students"
}

// LinkRecord is a redirect target for the students of one class. At most one
// record per class is active at a time.
type LinkRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	URL       string    `gorm:"column:url;not null" json:"url"`
	ClassName string    `gorm:"index;not null;default:''" json:"class_name"`
	IsActive  bool      `gorm:"not null;default:false" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (LinkRecord) TableName() string {
	return "links"
}

// SchemaMigration records an applied migration step.
type SchemaMigration struct {
	Version   string    `gorm:"primaryKey"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

func (SchemaMigration) TableName() string {
	return "schema_migrations"
}

// InsertResult is the outcome of a single roster insert attempt.
type InsertResult int

const (
	Inserted InsertResult = iota
	SkippedDuplicate
	Rejected
)

func (r InsertResult) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case SkippedDuplicate:
		return "skipped_duplicate"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}
