package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	sqlite "github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rizzlab/go-review-backend/internal/domain"
	"github.com/rizzlab/go-review-backend/internal/services"
	"github.com/rizzlab/go-review-backend/internal/storage"
)

// ---------- test DB + fakes ----------

func newAPIDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique DSN per call to avoid cross-test contamination
	dsn := fmt.Sprintf("file:api_handlers_%s?mode=memory&cache=shared", uuid.NewString())

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
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type memPhotoStore struct{ puts int }

func (m *memPhotoStore) Put(_ context.Context, fh *multipart.FileHeader, folder string) (*storage.UploadResult, error) {
	m.puts++
	key := fmt.Sprintf("%s/%d", folder, m.puts)
	return &storage.UploadResult{Key: key, URL: "https://cdn.test/" + key, FileName: fh.Filename, Size: fh.Size}, nil
}

func (m *memPhotoStore) Delete(context.Context, string) error { return nil }

type cannedGenerator struct{ reply string }

func (g cannedGenerator) Generate(context.Context, string) (string, error) {
	return g.reply, nil
}

// newTestHandlers builds the handler set over real services on db.
func newTestHandlers(db *gorm.DB, gen services.TextGenerator) *Handlers {
	auth := &services.AuthService{DB: db, Secret: "test-secret", BcryptCost: bcrypt.MinCost}
	profiles := &services.ProfileService{DB: db, Photos: &memPhotoStore{}}
	prefs := &services.PreferenceService{DB: db}
	matches := &services.MatchingService{DB: db}
	reviews := &services.ReviewService{DB: db}
	board := &services.LeaderboardService{DB: db}
	ai := &services.AIService{DB: db, Generator: gen}
	return New(auth, profiles, prefs, matches, reviews, board, ai)
}

func seedAPIUser(t *testing.T, db *gorm.DB, id, gender string, age int) {
	t.Helper()
	u := &domain.User{
		ID: id, Email: id + "@example.com", PasswordHash: "x",
		DisplayName: id, Age: &age, Gender: gender, DatingIntent: domain.IntentCasual,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

func seedAPIVersion(t *testing.T, db *gorm.DB, id, ownerID string) {
	t.Helper()
	if err := db.Create(&domain.ProfileVersion{ID: id, UserID: ownerID, Bio: "bio"}).Error; err != nil {
		t.Fatalf("seed version %s: %v", id, err)
	}
}

func doJSON(t *testing.T, r *gin.Engine, method, path, asUser string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if asUser != "" {
		req.Header.Set("X-User-ID", asUser)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ---------- helpers-only tests ----------

func Test_userID_and_clampPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// userID helper
	rc := gin.CreateTestContextOnly(httptest.NewRecorder(), gin.New())
	if got := userID(rc); got != "" {
		t.Fatalf("unset userID = %q", got)
	}
	rc.Set("userID", "u1")
	if got := userID(rc); got != "u1" {
		t.Fatalf("ctx userID = %q", got)
	}

	// header fallback
	cH, _ := gin.CreateTestContext(httptest.NewRecorder())
	reqH := httptest.NewRequest("GET", "/", nil)
	reqH.Header.Set("X-User-ID", "u-123")
	cH.Request = reqH
	if got := userID(cH); got != "u-123" {
		t.Fatalf("header fallback userID = %q", got)
	}

	// clampPagination bounds
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=-5&page_size=9999", nil)
	p, ps := clampPagination(c)
	if p != 1 || ps != 100 {
		t.Fatalf("clamp bounds got p=%d ps=%d", p, ps)
	}
	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	p, ps = clampPagination(c)
	if p != 1 || ps != 20 {
		t.Fatalf("clamp defaults got p=%d ps=%d", p, ps)
	}
}

func Test_pageWindow(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page, meta := pageWindow(items, 1, 2)
	if len(page) != 2 || page[0] != 1 || meta.Total != 5 || meta.TotalPages != 3 || !meta.HasNext {
		t.Fatalf("first page unexpected: %v %+v", page, meta)
	}
	page, meta = pageWindow(items, 3, 2)
	if len(page) != 1 || page[0] != 5 || meta.HasNext {
		t.Fatalf("last page unexpected: %v %+v", page, meta)
	}
	page, _ = pageWindow(items, 9, 2)
	if len(page) != 0 {
		t.Fatalf("out-of-range page should be empty, got %v", page)
	}
}

// ---------- auth ----------

func TestSignupAndLoginEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newAPIDB(t)
	h := newTestHandlers(db, nil)
	r := gin.New()
	r.POST("/auth/signup", h.Signup)
	r.POST("/auth/login", h.Login)

	// Bad JSON -> 400
	w := doJSON(t, r, http.MethodPost, "/auth/signup", "", map[string]any{"email": "not-an-email"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad signup -> %d", w.Code)
	}

	// Success -> 201 with token
	w = doJSON(t, r, http.MethodPost, "/auth/signup", "", map[string]any{
		"email": "king@example.com", "password": "longenough", "name": "King", "age": 27,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup -> %d body=%s", w.Code, w.Body.String())
	}
	var created AuthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode signup response: %v", err)
	}
	if created.Token == "" || created.User.Email != "king@example.com" {
		t.Fatalf("signup response unexpected: %+v", created)
	}

	// Duplicate email -> 409
	w = doJSON(t, r, http.MethodPost, "/auth/signup", "", map[string]any{
		"email": "king@example.com", "password": "longenough", "name": "King",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate signup -> %d", w.Code)
	}

	// Login success -> 200
	w = doJSON(t, r, http.MethodPost, "/auth/login", "", map[string]any{
		"email": "king@example.com", "password": "longenough",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login -> %d body=%s", w.Code, w.Body.String())
	}

	// Wrong password -> 401
	w = doJSON(t, r, http.MethodPost, "/auth/login", "", map[string]any{
		"email": "king@example.com", "password": "wrongwrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login -> %d", w.Code)
	}
}

// ---------- profile ----------

func TestSubmitProfileEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newAPIDB(t)
	seedAPIUser(t, db, "u1", domain.GenderMale, 27)
	h := newTestHandlers(db, nil)
	r := gin.New()
	r.POST("/profile", h.SubmitProfile)
	r.GET("/profile/history", h.ProfileHistory)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("bio", "certified gym rat")
	_ = mw.WriteField("name", "alex doe")
	_ = mw.WriteField("age", "27")
	_ = mw.WriteField("gender", "male")
	_ = mw.WriteField("datingIntent", "casual")
	_ = mw.WriteField("hobbies", `["lifting","cooking"]`)
	_ = mw.WriteField("prompts", `[{"question":"green flag","answer":"replies fast"}]`)
	_ = mw.WriteField("preference", `{"genders":["FEMALE"],"age_min":21,"age_max":35}`)
	part, _ := mw.CreateFormFile("photos", "pic.jpg")
	_, _ = part.Write([]byte("jpegbytes"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/profile", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-User-ID", "u1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("submit profile -> %d body=%s", w.Code, w.Body.String())
	}
	var v domain.ProfileVersion
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode version: %v", err)
	}
	if v.UserID != "u1" || len(v.Photos) != 1 {
		t.Fatalf("version unexpected: %+v", v)
	}

	// History shows the new version
	hw := doJSON(t, r, http.MethodGet, "/profile/history", "u1", nil)
	if hw.Code != http.StatusOK {
		t.Fatalf("history -> %d", hw.Code)
	}
	var hist []services.VersionWithStats
	if err := json.Unmarshal(hw.Body.Bytes(), &hist); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(hist) != 1 || hist[0].Version.ID != v.ID {
		t.Fatalf("history unexpected: %+v", hist)
	}

	// Missing name -> 400
	var bad bytes.Buffer
	bw := multipart.NewWriter(&bad)
	_ = bw.WriteField("bio", "no name")
	_ = bw.Close()
	req = httptest.NewRequest(http.MethodPost, "/profile", &bad)
	req.Header.Set("Content-Type", bw.FormDataContentType())
	req.Header.Set("X-User-ID", "u1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("nameless submit -> %d", w.Code)
	}
}

// ---------- reviews ----------

func TestSubmitReviewEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newAPIDB(t)
	seedAPIUser(t, db, "owner", domain.GenderFemale, 24)
	seedAPIUser(t, db, "rev", domain.GenderMale, 27)
	versionID := uuid.NewString()
	seedAPIVersion(t, db, versionID, "owner")

	h := newTestHandlers(db, nil)
	r := gin.New()
	r.POST("/reviews", h.SubmitReview)

	// Missing rating -> 400
	w := doJSON(t, r, http.MethodPost, "/reviews", "rev", map[string]any{"profile_version_id": versionID})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing rating -> %d", w.Code)
	}

	// Non-UUID version id -> 400
	w = doJSON(t, r, http.MethodPost, "/reviews", "rev", map[string]any{"profile_version_id": "nope", "rating": 80})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad uuid -> %d", w.Code)
	}

	// Success -> 201
	w = doJSON(t, r, http.MethodPost, "/reviews", "rev", map[string]any{
		"profile_version_id": versionID,
		"rating":             85,
		"feedback":           map[string]any{"vibe_check": "solid", "red_flags": []string{"fish pic"}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("submit review -> %d body=%s", w.Code, w.Body.String())
	}

	// Same reviewer again -> 409
	w = doJSON(t, r, http.MethodPost, "/reviews", "rev", map[string]any{
		"profile_version_id": versionID, "rating": 60,
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate review -> %d", w.Code)
	}

	// Self review -> 403
	w = doJSON(t, r, http.MethodPost, "/reviews", "owner", map[string]any{
		"profile_version_id": versionID, "rating": 100,
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("self review -> %d", w.Code)
	}

	// Out-of-range rating -> 400
	w = doJSON(t, r, http.MethodPost, "/reviews", "rev", map[string]any{
		"profile_version_id": versionID, "rating": 101,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid rating -> %d", w.Code)
	}

	// Unknown version -> 404
	w = doJSON(t, r, http.MethodPost, "/reviews", "rev", map[string]any{
		"profile_version_id": uuid.NewString(), "rating": 50,
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown version -> %d", w.Code)
	}
}

func TestMarkReviewReadEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newAPIDB(t)
	seedAPIUser(t, db, "owner", domain.GenderFemale, 24)
	seedAPIUser(t, db, "rev", domain.GenderMale, 27)
	seedAPIVersion(t, db, "v1", "owner")
	if err := db.Create(&domain.Review{
		ID: "r1", ReviewerID: "rev", ProfileVersionID: "v1", Rating: 85,
	}).Error; err != nil {
		t.Fatalf("seed review: %v", err)
	}

	h := newTestHandlers(db, nil)
	r := gin.New()
	r.PATCH("/reviews/:id/read", h.MarkReviewRead)

	// Non-owner -> 403
	w := doJSON(t, r, http.MethodPatch, "/reviews/r1/read", "rev", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-owner mark read -> %d", w.Code)
	}

	// Owner -> 200
	w = doJSON(t, r, http.MethodPatch, "/reviews/r1/read", "owner", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("mark read -> %d body=%s", w.Code, w.Body.String())
	}

	// Unknown review -> 404
	w = doJSON(t, r, http.MethodPatch, "/reviews/missing/read", "owner", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing review -> %d", w.Code)
	}
}

func TestListReviewsEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newAPIDB(t)
	seedAPIUser(t, db, "owner", domain.GenderFemale, 24)
	seedAPIUser(t, db, "rev", domain.GenderMale, 27)
	seedAPIVersion(t, db, "v1", "owner")
	if err := db.Create(&domain.Review{
		ID: "r1", ReviewerID: "rev", ProfileVersionID: "v1", Rating: 85,
	}).Error; err != nil {
		t.Fatalf("seed review: %v", err)
	}

	h := newTestHandlers(db, nil)
	r := gin.New()
	r.GET("/reviews/received", h.ListReceivedReviews)
	r.GET("/reviews/given", h.ListGivenReviews)

	w := doJSON(t, r, http.MethodGet, "/reviews/received", "owner", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("received -> %d", w.Code)
	}
	var recv ReceivedReviewsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &recv); err != nil {
		t.Fatalf("decode received: %v", err)
	}
	if len(recv.Reviews) != 1 || recv.Pagination.Total != 1 {
		t.Fatalf("received unexpected: %+v", recv)
	}

	w = doJSON(t, r, http.MethodGet, "/reviews/given", "rev", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("given -> %d", w.Code)
	}
	var given GivenReviewsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &given); err != nil {
		t.Fatalf("decode given: %v", err)
	}
	if len(given.Reviews) != 1 || given.Reviews[0].Review.Rating != 85 {
		t.Fatalf("given unexpected: %+v", given)
	}
}

// ---------- matching ----------

func TestListMatchesEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newAPIDB(t)

	// Reviewer without demographics -> 400
	if err := db.Create(&domain.User{ID: "bare", Email: "bare@example.com", PasswordHash: "x"}).Error; err != nil {
		t.Fatalf("seed bare user: %v", err)
	}

	seedAPIUser(t, db, "rev", domain.GenderMale, 27)
	seedAPIUser(t, db, "owner", domain.GenderFemale, 24)
	seedAPIVersion(t, db, "v1", "owner")
	if err := db.Create(&domain.ReviewerPreference{
		ID: uuid.NewString(), ProfileVersionID: "v1", UserID: "owner",
		Genders: []string{domain.GenderMale}, Intent: domain.IntentCasual,
	}).Error; err != nil {
		t.Fatalf("seed preference: %v", err)
	}

	h := newTestHandlers(db, nil)
	r := gin.New()
	r.GET("/matches", h.ListMatches)

	w := doJSON(t, r, http.MethodGet, "/matches", "bare", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("incomplete reviewer -> %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/matches", "rev", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("matches -> %d body=%s", w.Code, w.Body.String())
	}
	var matches []services.Match
	if err := json.Unmarshal(w.Body.Bytes(), &matches); err != nil {
		t.Fatalf("decode matches: %v", err)
	}
	if len(matches) != 1 || matches[0].Version.ID != "v1" {
		t.Fatalf("matches unexpected: %+v", matches)
	}
}

// ---------- leaderboard ----------

func TestLeaderboardEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newAPIDB(t)
	seedAPIUser(t, db, "owner", domain.GenderFemale, 24)
	seedAPIUser(t, db, "rev", domain.GenderMale, 27)
	seedAPIVersion(t, db, "v1", "owner")
	if err := db.Create(&domain.Review{
		ID: "r1", ReviewerID: "rev", ProfileVersionID: "v1", Rating: 90,
		CreatedAt: time.Now().UTC().Add(-time.Hour),
	}).Error; err != nil {
		t.Fatalf("seed review: %v", err)
	}

	h := newTestHandlers(db, nil)
	r := gin.New()
	r.GET("/leaderboard", h.Leaderboard)

	w := doJSON(t, r, http.MethodGet, "/leaderboard", "rev", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("leaderboard -> %d", w.Code)
	}
	var entries []services.LeaderboardEntry
	if err := json.Unmarshal(w.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode leaderboard: %v", err)
	}
	if len(entries) != 1 || entries[0].AverageScore != 90.0 {
		t.Fatalf("leaderboard unexpected: %+v", entries)
	}
}

// ---------- AI ----------

func TestChadAnalysisEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newAPIDB(t)
	seedAPIUser(t, db, "u1", domain.GenderMale, 27)

	reply := `{"score": 64, "analysis": "Room to grow, king.", "redFlags": [], "actionPlan": ["new photos"], "chadQuote": "Lock in."}`
	h := newTestHandlers(db, cannedGenerator{reply: reply})
	r := gin.New()
	r.GET("/ai/chad", h.ChadAnalysis)

	// No profile yet -> 404
	w := doJSON(t, r, http.MethodGet, "/ai/chad", "u1", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("no profile -> %d", w.Code)
	}

	seedAPIVersion(t, db, "v1", "u1")
	w = doJSON(t, r, http.MethodGet, "/ai/chad", "u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("analysis -> %d body=%s", w.Code, w.Body.String())
	}
	var res services.ChadResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode analysis: %v", err)
	}
	if res.Analysis.Score != 64 || res.Profile.ID != "v1" {
		t.Fatalf("analysis unexpected: %+v", res)
	}

	// Generator disabled -> 502
	hNil := newTestHandlers(db, nil)
	rNil := gin.New()
	rNil.GET("/ai/chad", hNil.ChadAnalysis)
	w = doJSON(t, rNil, http.MethodGet, "/ai/chad", "u1", nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("disabled generator -> %d", w.Code)
	}
}
