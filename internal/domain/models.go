// Package domain defines the persistence models for users, profile versions,
// photos, reviewer preferences, reviews, and feedback. These types are mapped
// with GORM and form the core data layer of the profile-review application.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Gender values accepted for users and reviewer preferences.
const (
	GenderMale      = "MALE"
	GenderFemale    = "FEMALE"
	GenderNonBinary = "NON_BINARY"
	GenderOther     = "OTHER"
)

// Dating intent values accepted for users and reviewer preferences.
const (
	IntentLongTerm   = "LONG_TERM"
	IntentCasual     = "CASUAL"
	IntentFriendship = "FRIENDSHIP"
	IntentUnsure     = "UNSURE"
)

// User represents an account holder. Demographic attributes (name, age,
// gender, intent) are mutable and refreshed whenever a new profile version is
// submitted; the account itself is never hard-deleted.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Email: unique login identity.
//   - PasswordHash: bcrypt hash of the credential; never serialized.
//   - DisplayName / Age / Gender / DatingIntent: profile attributes shown to
//     reviewers. Age and Gender must both be set before the user may review
//     others.
//   - LatestProfileID: back-reference to the currently active ProfileVersion.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker (accounts are retained for history).
type User struct {
	ID              string         `json:"id"            gorm:"type:char(36);primaryKey"`
	Email           string         `json:"email"         gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email"`
	PasswordHash    string         `json:"-"             gorm:"type:varchar(128);not null"`
	DisplayName     string         `json:"display_name"  gorm:"type:varchar(255)"`
	Age             *int           `json:"age,omitempty"`
	Gender          string         `json:"gender,omitempty"        gorm:"type:varchar(16)"`
	DatingIntent    string         `json:"dating_intent,omitempty" gorm:"type:varchar(16)"`
	LatestProfileID *string        `json:"latest_profile_id,omitempty" gorm:"type:char(36)"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-"             gorm:"index"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Prompt is one question/answer pair within a profile version. Prompts are
// stored inline as JSON because they are only ever read with their version.
type Prompt struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ProfileVersion is one immutable snapshot of a user's dating-profile
// content. Corrections are modeled as a new version, never an edit, so the
// full history survives for trend analysis and the leaderboard.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - UserID: owner; indexed for history retrieval.
//   - Bio / Prompts / Hobbies / PickupLines: submitted content. The list
//     fields persist through GORM's JSON serializer.
//   - Photos: ordered photo references, loaded via association.
//   - CreatedAt: submission time; versions are never updated or deleted.
type ProfileVersion struct {
	ID          string         `json:"id"           gorm:"type:char(36);primaryKey"`
	UserID      string         `json:"user_id"      gorm:"type:char(36);not null;index:idx_user_versions"`
	Bio         string         `json:"bio"          gorm:"type:text"`
	Prompts     []Prompt       `json:"prompts"      gorm:"serializer:json"`
	Hobbies     []string       `json:"hobbies"      gorm:"serializer:json"`
	PickupLines []string       `json:"pickup_lines" gorm:"serializer:json"`
	CreatedAt   time.Time      `json:"created_at"   gorm:"index"`
	DeletedAt   gorm.DeletedAt `json:"-"            gorm:"index"`

	Photos []Photo `json:"photos" gorm:"foreignKey:ProfileVersionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	// User is the owning account; loaded when a public summary is needed.
	User User `json:"-" gorm:"foreignKey:UserID;references:ID"`
}

// TableName returns the database table name for ProfileVersion.
func (ProfileVersion) TableName() string { return "profile_versions" }

// Photo references externally stored image content belonging to exactly one
// profile version. Rows are created alongside their version and are immutable.
//
// URL is the durable object-storage address served to clients; StorageKey is
// the bucket-internal key kept so a failed submission can clean up after
// itself.
type Photo struct {
	ID               string    `json:"id"       gorm:"type:char(36);primaryKey"`
	ProfileVersionID string    `json:"profile_version_id" gorm:"type:char(36);not null;index"`
	URL              string    `json:"url"      gorm:"type:text;not null"`
	StorageKey       string    `json:"-"        gorm:"type:text"`
	Position         int       `json:"position" gorm:"not null;default:0"`
	CreatedAt        time.Time `json:"created_at"`
}

// TableName returns the database table name for Photo.
func (Photo) TableName() string { return "photos" }

// ReviewerPreference declares which reviewer audience a submitter wants
// matched to one profile version. Exactly one preference may exist per
// version (unique index); submitting preferences again for the same version
// replaces the row.
//
// An empty Genders list encodes accept-all ("everyone"). Absent age bounds
// are unbounded on that side; when both are present, AgeMin <= AgeMax is
// validated at the service layer.
type ReviewerPreference struct {
	ID               string         `json:"id"        gorm:"type:char(36);primaryKey"`
	ProfileVersionID string         `json:"profile_version_id" gorm:"type:char(36);not null;uniqueIndex:ux_pref_version"`
	UserID           string         `json:"user_id"   gorm:"type:char(36);not null;index"`
	Genders          []string       `json:"genders"   gorm:"serializer:json"`
	Intent           string         `json:"intent"    gorm:"type:varchar(16)"`
	AgeMin           *int           `json:"age_min,omitempty"`
	AgeMax           *int           `json:"age_max,omitempty"`
	Description      string         `json:"description" gorm:"type:text"`
	TasteTags        []string       `json:"taste_tags"  gorm:"serializer:json"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`

	ProfileVersion ProfileVersion `json:"-" gorm:"foreignKey:ProfileVersionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ReviewerPreference.
func (ReviewerPreference) TableName() string { return "reviewer_preferences" }

// Review is one reviewer's numeric judgment of one profile version. A
// reviewer may review a given version at most once (composite unique index);
// the reviewer's own gender and intent are captured at review time for later
// cohort analysis. Only IsRead is ever mutated.
type Review struct {
	ID               string         `json:"id"       gorm:"type:char(36);primaryKey"`
	ProfileVersionID string         `json:"profile_version_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_review_version_reviewer,priority:1"`
	ReviewerID       string         `json:"reviewer_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_review_version_reviewer,priority:2"`
	Rating           int            `json:"rating"   gorm:"not null;check:rating BETWEEN 0 AND 100"`
	ReviewerGender   string         `json:"reviewer_gender,omitempty" gorm:"type:varchar(16)"`
	ReviewerIntent   string         `json:"reviewer_intent,omitempty" gorm:"type:varchar(16)"`
	IsRead           bool           `json:"is_read"  gorm:"not null;default:false"`
	CreatedAt        time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`

	ProfileVersion ProfileVersion `json:"-" gorm:"foreignKey:ProfileVersionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	// Feedback is the structured commentary created atomically with the review.
	Feedback *Feedback `json:"feedback,omitempty" gorm:"foreignKey:ReviewID;references:ID"`
}

// TableName returns the database table name for Review.
func (Review) TableName() string { return "reviews" }

// Feedback holds the structured free-text commentary owned by exactly one
// Review (unique index on ReviewID). It is immutable after creation; a review
// without feedback must never be observable, so both rows are written in one
// transaction.
type Feedback struct {
	ID             string         `json:"id"         gorm:"type:char(36);primaryKey"`
	ReviewID       string         `json:"review_id"  gorm:"type:char(36);not null;uniqueIndex:ux_feedback_review"`
	VibeCheck      string         `json:"vibe_check"       gorm:"type:text"`
	WhatWorks      string         `json:"what_works"       gorm:"type:text"`
	WhatDoesntWork string         `json:"what_doesnt_work" gorm:"type:text"`
	PhotoNotes     string         `json:"photo_notes"      gorm:"type:text"`
	BioNotes       string         `json:"bio_notes"        gorm:"type:text"`
	RedFlags       []string       `json:"red_flags"        gorm:"serializer:json"`
	Suggestions    []string       `json:"suggestions"      gorm:"serializer:json"`
	CreatedAt      time.Time      `json:"created_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`

	Review Review `json:"-" gorm:"foreignKey:ReviewID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Feedback.
func (Feedback) TableName() string { return "feedback" }
