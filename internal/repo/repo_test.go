package repo

import (
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rizzlab/go-review-backend/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.ProfileVersion{},
		&domain.Photo{},
		&domain.ReviewerPreference{},
		&domain.Review{},
		&domain.Feedback{},
		&domain.Idempotency{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id string) *domain.User {
	t.Helper()
	u := &domain.User{ID: id, Email: id + "@example.com", PasswordHash: "x", DisplayName: id}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
	return u
}

func seedVersion(t *testing.T, db *gorm.DB, id, ownerID string) *domain.ProfileVersion {
	t.Helper()
	v := &domain.ProfileVersion{ID: id, UserID: ownerID, Bio: "bio of " + ownerID}
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("seed version %s: %v", id, err)
	}
	return v
}
