package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// Difficulties
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Solution statuses
const (
	SolutionAccepted = "accepted"
	SolutionRejected = "rejected"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// User is a registered account
type User struct {
	BaseModel
	Username     string    `json:"username" gorm:"unique;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         string    `json:"role" gorm:"not null;default:user"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// UserSession is the single live login of a user. A new login replaces
// TokenID, which revokes every token issued before it.
type UserSession struct {
	UserID    string    `gorm:"primaryKey;type:varchar(26)"`
	TokenID   string    `gorm:"type:varchar(26);not null"`
	ExpiresAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Problem is a coding exercise. It is addressed by UUID in the API.
type Problem struct {
	ID          int       `json:"id" gorm:"primaryKey;autoIncrement"`
	UUID        string    `json:"uuid" gorm:"type:varchar(36);uniqueIndex;not null"`
	Name        string    `json:"name" gorm:"not null"`
	Difficulty  string    `json:"difficulty" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`

	TestCases []TestCase `json:"-" gorm:"foreignKey:ProblemUUID;references:UUID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns a random UUID when none is set
func (p *Problem) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == "" {
		p.UUID = uuid.NewString()
	}
	return nil
}

// TestCase is one input/expected-output pair of a problem
type TestCase struct {
	ID          int    `json:"id" gorm:"primaryKey;autoIncrement"`
	ProblemUUID string `json:"-" gorm:"type:varchar(36);index;not null"`
	Input       string `json:"input" gorm:"type:text"`
	Output      string `json:"output" gorm:"type:text"`
}

// Solution is one stored submission with its measured metrics
type Solution struct {
	BaseModel
	UserID          string  `json:"-" gorm:"type:varchar(26);index;not null"`
	ProblemUUID     string  `json:"problem_uuid" gorm:"type:varchar(36);index;not null"`
	Code            string  `json:"code" gorm:"type:text"`
	Language        string  `json:"language" gorm:"not null"`
	Status          string  `json:"status" gorm:"not null"`
	ExecutionTimeMS float64 `json:"execution_time_ms"`
	MemoryUsageKB   float64 `json:"memory_usage_kb"`
}

// Accepted reports whether every test case passed
func (s *Solution) Accepted() bool {
	return s.Status == SolutionAccepted
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	// Collect all models
	models := []interface{}{
		&User{}, &UserSession{}, &Problem{}, &TestCase{}, &Solution{},
	}

	return db.AutoMigrate(models...)
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}

// FindByUUID finds a record by its public UUID
func FindByUUID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("uuid = ?", id).First(model).Error
}
