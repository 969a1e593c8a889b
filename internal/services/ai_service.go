// Package services – AIService
//
// This file implements the "Chad" coach: it assembles the caller's latest
// profile version and its community reviews into a persona prompt, sends it
// to a text generator, and parses the structured verdict out of the reply.
// Model output is treated as hostile input: markdown fences are stripped and
// any unparseable reply is reported as an upstream failure, never surfaced
// raw to the client.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rizzlab/go-review-backend/internal/domain"
	"github.com/rizzlab/go-review-backend/internal/repo"
)

// TextGenerator produces one text completion for a prompt. Implemented by
// ai.GeminiClient; tests substitute a canned fake.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ChadAnalysis is the structured verdict parsed from the model's reply.
type ChadAnalysis struct {
	Score      int      `json:"score"`
	Analysis   string   `json:"analysis"`
	RedFlags   []string `json:"redFlags"`
	ActionPlan []string `json:"actionPlan"`
	ChadQuote  string   `json:"chadQuote"`
}

// ChadResult pairs the analyzed profile version with the verdict.
type ChadResult struct {
	Profile  domain.ProfileVersion `json:"profile"`
	Analysis ChadAnalysis          `json:"analysis"`
}

// AIService runs profile analyses through a text generator.
type AIService struct {
	// DB is the database handle used to load the profile and its reviews.
	DB *gorm.DB

	// Generator produces completions. A nil Generator means the feature is
	// not configured and every call returns ErrUpstreamUnavailable.
	Generator TextGenerator
}

// Analyze builds the Chad prompt from userID's latest profile version and
// its reviews, calls the generator, and parses the structured verdict.
// Returns ErrNoProfile when the user has no version yet and
// ErrUpstreamUnavailable when the generator is absent, fails, or replies
// with something that is not the expected JSON object.
func (s *AIService) Analyze(ctx context.Context, userID string) (*ChadResult, error) {
	if s.Generator == nil {
		return nil, ErrUpstreamUnavailable
	}

	v, err := repo.LatestProfileVersion(ctx, s.DB, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNoProfile
		}
		return nil, err
	}
	reviews, err := repo.ListReviewsForVersion(ctx, s.DB, v.ID)
	if err != nil {
		return nil, err
	}

	raw, err := s.Generator.Generate(ctx, chadPrompt(v, reviews))
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("profile analysis generation failed")
		return nil, ErrUpstreamUnavailable
	}

	analysis, err := parseChadReply(raw)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("profile analysis reply unparseable")
		return nil, ErrUpstreamUnavailable
	}
	return &ChadResult{Profile: *v, Analysis: *analysis}, nil
}

// reviewDigest is the review projection serialized into the prompt.
type reviewDigest struct {
	Score          int    `json:"score"`
	Vibe           string `json:"vibe,omitempty"`
	Works          string `json:"works,omitempty"`
	DoesntWork     string `json:"doesntWork,omitempty"`
	ReviewerGender string `json:"reviewerGender,omitempty"`
}

func chadPrompt(v *domain.ProfileVersion, reviews []domain.Review) string {
	digests := make([]reviewDigest, 0, len(reviews))
	for _, r := range reviews {
		d := reviewDigest{Score: r.Rating, ReviewerGender: r.ReviewerGender}
		if r.Feedback != nil {
			d.Vibe = r.Feedback.VibeCheck
			d.Works = r.Feedback.WhatWorks
			d.DoesntWork = r.Feedback.WhatDoesntWork
		}
		digests = append(digests, d)
	}
	promptJSON, _ := json.Marshal(v.Prompts)
	reviewJSON, _ := json.Marshal(digests)

	return fmt.Sprintf(`You are "Chad", a hyper-confident, ultra-smooth AI Rizz consultant.
Your job is to analyze this dating profile and reviews, then give a "Chad Rizz Score" (0-100) and actionable, high-alpha feedback.

Profile Data:
- Bio: %s
- Hobbies: %s
- Pickup Lines: %s
- Prompts: %s

Community Reviews:
%s

Instructions:
1. Act like Chad. Use terms like "bro", "king", "alpha", "rizz", and "game". Be encouraging but brutally honest.
2. Provide a "Chad Rizz Score" (0-100).
3. Identify "Instant Red Flags" (if any).
4. Give "Actionable Insights" to 10x their energy.
5. Return the response in RAW JSON format with these exact keys:
   {
     "score": number,
     "analysis": string,
     "redFlags": string[],
     "actionPlan": string[],
     "chadQuote": string
   }

Only return the JSON. No markdown backticks.`,
		v.Bio,
		strings.Join(v.Hobbies, ", "),
		strings.Join(v.PickupLines, ", "),
		promptJSON,
		reviewJSON,
	)
}

// parseChadReply strips markdown code fences the model sometimes adds and
// unmarshals the remaining JSON object.
func parseChadReply(raw string) (*ChadAnalysis, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	var out ChadAnalysis
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	if out.Score < 0 || out.Score > 100 {
		return nil, fmt.Errorf("analysis score out of range: %d", out.Score)
	}
	return &out, nil
}
