package services

import (
	"context"
	"errors"
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
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())

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

func seedUser(t *testing.T, db *gorm.DB, id, gender string, age int) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:           id,
		Email:        id + "@example.com",
		PasswordHash: "x",
		DisplayName:  id,
		Age:          &age,
		Gender:       gender,
		DatingIntent: domain.IntentLongTerm,
	}
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

func seedPreference(t *testing.T, db *gorm.DB, versionID, ownerID string, genders []string, ageMin, ageMax *int) {
	t.Helper()
	p := &domain.ReviewerPreference{
		ID:               uuid.NewString(),
		ProfileVersionID: versionID,
		UserID:           ownerID,
		Genders:          genders,
		Intent:           domain.IntentLongTerm,
		AgeMin:           ageMin,
		AgeMax:           ageMax,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed preference for %s: %v", versionID, err)
	}
}

func intPtr(n int) *int { return &n }

func TestReview_Submit_InvalidRating(t *testing.T) {
	db := newTestDB(t)
	svc := &ReviewService{DB: db}

	for _, rating := range []int{-1, 101} {
		_, err := svc.Submit(context.Background(), "u1", "v1", rating, FeedbackInput{})
		if !errors.Is(err, ErrInvalidRating) {
			t.Fatalf("rating %d: expected ErrInvalidRating, got %v", rating, err)
		}
	}
}

func TestReview_Submit_VersionNotFound(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "u1", domain.GenderMale, 25)
	svc := &ReviewService{DB: db}

	_, err := svc.Submit(context.Background(), "u1", "missing", 50, FeedbackInput{})
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestReview_Submit_SelfReviewLeavesNoRows(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "owner", domain.GenderMale, 25)
	seedVersion(t, db, "v1", "owner")
	svc := &ReviewService{DB: db}

	_, err := svc.Submit(context.Background(), "owner", "v1", 50, FeedbackInput{})
	if !errors.Is(err, ErrSelfReview) {
		t.Fatalf("expected ErrSelfReview, got %v", err)
	}

	var reviews, feedbacks int64
	db.Model(&domain.Review{}).Count(&reviews)
	db.Model(&domain.Feedback{}).Count(&feedbacks)
	if reviews != 0 || feedbacks != 0 {
		t.Fatalf("self review must not persist rows: reviews=%d feedbacks=%d", reviews, feedbacks)
	}
}

func TestReview_Submit_PersistsReviewAndFeedback(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "owner", domain.GenderFemale, 24)
	seedUser(t, db, "rev", domain.GenderMale, 27)
	seedVersion(t, db, "v1", "owner")
	svc := &ReviewService{DB: db}

	r, err := svc.Submit(context.Background(), "rev", "v1", 85, FeedbackInput{
		VibeCheck: "immaculate",
		RedFlags:  []string{"gym selfie"},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if r.Rating != 85 || r.ReviewerID != "rev" || r.ProfileVersionID != "v1" {
		t.Fatalf("unexpected review: %+v", r)
	}
	if r.ReviewerGender != domain.GenderMale {
		t.Fatalf("reviewer gender not captured: %q", r.ReviewerGender)
	}
	if r.Feedback == nil || r.Feedback.VibeCheck != "immaculate" {
		t.Fatalf("feedback not attached: %+v", r.Feedback)
	}
	if len(r.Feedback.RedFlags) != 1 || r.Feedback.RedFlags[0] != "gym selfie" {
		t.Fatalf("red flags not persisted: %+v", r.Feedback.RedFlags)
	}
	if r.IsRead {
		t.Fatal("new review must start unread")
	}
}

func TestReview_Submit_DuplicateRejected(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "owner", domain.GenderFemale, 24)
	seedUser(t, db, "rev", domain.GenderMale, 27)
	seedVersion(t, db, "v1", "owner")
	svc := &ReviewService{DB: db}

	if _, err := svc.Submit(context.Background(), "rev", "v1", 70, FeedbackInput{}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err := svc.Submit(context.Background(), "rev", "v1", 90, FeedbackInput{})
	if !errors.Is(err, ErrDuplicateReview) {
		t.Fatalf("expected ErrDuplicateReview, got %v", err)
	}

	var n int64
	db.Model(&domain.Review{}).Count(&n)
	if n != 1 {
		t.Fatalf("expected exactly one review, got %d", n)
	}
}

func TestReview_Submit_SameReviewerDifferentVersions(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "owner", domain.GenderFemale, 24)
	seedUser(t, db, "rev", domain.GenderMale, 27)
	seedVersion(t, db, "v1", "owner")
	seedVersion(t, db, "v2", "owner")
	svc := &ReviewService{DB: db}

	if _, err := svc.Submit(context.Background(), "rev", "v1", 70, FeedbackInput{}); err != nil {
		t.Fatalf("v1 submit: %v", err)
	}
	if _, err := svc.Submit(context.Background(), "rev", "v2", 80, FeedbackInput{}); err != nil {
		t.Fatalf("v2 submit must be allowed: %v", err)
	}
}

func TestReview_MarkRead_OwnerOnly(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "owner", domain.GenderFemale, 24)
	seedUser(t, db, "rev", domain.GenderMale, 27)
	seedVersion(t, db, "v1", "owner")
	svc := &ReviewService{DB: db}

	r, err := svc.Submit(context.Background(), "rev", "v1", 60, FeedbackInput{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := svc.MarkRead(context.Background(), "rev", r.ID); !errors.Is(err, ErrForbiddenReview) {
		t.Fatalf("reviewer must not mark read, got %v", err)
	}

	got, err := svc.MarkRead(context.Background(), "owner", r.ID)
	if err != nil {
		t.Fatalf("owner mark read: %v", err)
	}
	if !got.IsRead {
		t.Fatal("review should be read")
	}

	if _, err := svc.MarkRead(context.Background(), "owner", "missing"); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("expected ErrReviewNotFound, got %v", err)
	}
}

func TestReview_Lists(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "owner", domain.GenderFemale, 24)
	seedUser(t, db, "rev", domain.GenderMale, 27)
	seedVersion(t, db, "v1", "owner")
	svc := &ReviewService{DB: db}

	if _, err := svc.Submit(context.Background(), "rev", "v1", 77, FeedbackInput{WhatWorks: "the dog pic"}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	received, err := svc.ListReceived(context.Background(), "owner")
	if err != nil {
		t.Fatalf("list received: %v", err)
	}
	if len(received) != 1 || received[0].Review.Rating != 77 {
		t.Fatalf("unexpected received: %+v", received)
	}
	if received[0].Reviewer.DisplayName != "rev" {
		t.Fatalf("reviewer summary missing: %+v", received[0].Reviewer)
	}

	given, err := svc.ListGiven(context.Background(), "rev")
	if err != nil {
		t.Fatalf("list given: %v", err)
	}
	if len(given) != 1 || given[0].Subject.DisplayName != "owner" {
		t.Fatalf("unexpected given: %+v", given)
	}

	// The reviewer received nothing and the owner gave nothing.
	if got, _ := svc.ListReceived(context.Background(), "rev"); len(got) != 0 {
		t.Fatalf("reviewer should have no received reviews, got %d", len(got))
	}
	if got, _ := svc.ListGiven(context.Background(), "owner"); len(got) != 0 {
		t.Fatalf("owner should have no given reviews, got %d", len(got))
	}
}
