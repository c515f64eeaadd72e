package testutil

import (
	"fmt"
	"strings"
	"testing"
	"unicode"

	"github.com/kendall-kelly/gig-marketplace-api/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a migrated in-memory SQLite database private to t.
// A single connection is used so concurrent writers are serialized by the pool.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get test database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// CreateUser inserts an account with the given role
func CreateUser(t *testing.T, db *gorm.DB, name string, role models.Role) models.User {
	t.Helper()

	user := models.User{
		Auth0ID: "auth0|" + name,
		Name:    name,
		Email:   name + "@example.com",
		Role:    role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", name, err)
	}
	return user
}

// CreateVerifiedUser inserts an account with a verification record in the given status
func CreateVerifiedUser(t *testing.T, db *gorm.DB, name string, role models.Role, status models.VerificationStatus) models.User {
	t.Helper()

	user := CreateUser(t, db, name, role)

	var err error
	switch role {
	case models.RoleClient:
		err = db.Create(&models.ClientProfile{UserID: user.ID, Status: status}).Error
	case models.RoleServiceProvider:
		err = db.Create(&models.ProviderProfile{UserID: user.ID, Status: status}).Error
	default:
		t.Fatalf("Role %s has no verification record", role)
	}
	if err != nil {
		t.Fatalf("Failed to create profile for %s: %v", name, err)
	}
	return user
}

// ReferenceData holds one category and one location for gig payloads
type ReferenceData struct {
	Category models.Category
	Location models.Location
}

// CreateReferenceData inserts a category and a location
func CreateReferenceData(t *testing.T, db *gorm.DB) ReferenceData {
	t.Helper()

	ref := ReferenceData{
		Category: models.Category{Name: "Plumbing", Description: "Pipes and fixtures"},
		Location: models.Location{Name: "Downtown", Region: "Central"},
	}
	if err := db.Create(&ref.Category).Error; err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}
	if err := db.Create(&ref.Location).Error; err != nil {
		t.Fatalf("Failed to create location: %v", err)
	}
	return ref
}
