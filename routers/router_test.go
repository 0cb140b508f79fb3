package routers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"cursapp/middleware"
	"cursapp/models"
	"cursapp/models/course"
	"cursapp/models/evaluation"
	"cursapp/routers"
	"cursapp/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, app *fiber.App, method, target, token string, body []byte, headers ...string) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func newApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := testutil.SetupDB(t)
	return routers.NewApp(false), db
}

func TestHealth(t *testing.T) {
	app, _ := newApp(t)
	code, out := do(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, out.Status)
}

func TestProfileRequiresToken(t *testing.T) {
	app, db := newApp(t)
	student := testutil.SeedUser(t, db, models.RoleStudent)

	code, _ := do(t, app, http.MethodGet, "/api/v1/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, out := do(t, app, http.MethodGet, "/api/v1/auth/profile", testutil.BearerToken(t, student), nil)
	assert.Equal(t, http.StatusOK, code)
	var got models.User
	require.NoError(t, json.Unmarshal(out.Data, &got))
	assert.Equal(t, student.ID, got.ID)
}

func TestRoleGuards(t *testing.T) {
	app, db := newApp(t)
	student := testutil.SeedUser(t, db, models.RoleStudent)
	instructor := testutil.SeedUser(t, db, models.RoleInstructor)

	body := []byte(`{"title":"Go in practice","price_usd":"19.99"}`)
	code, _ := do(t, app, http.MethodPost, "/api/v1/catalog/courses", testutil.BearerToken(t, student), body)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = do(t, app, http.MethodPost, "/api/v1/catalog/courses", testutil.BearerToken(t, instructor), body)
	assert.Equal(t, http.StatusCreated, code)

	code, _ = do(t, app, http.MethodGet, "/api/v1/evaluation/instructor/dashboard", testutil.BearerToken(t, student), nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = do(t, app, http.MethodGet, "/api/v1/evaluation/instructor/dashboard", testutil.BearerToken(t, instructor), nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestEnrollAndConfirmPayment(t *testing.T) {
	app, db := newApp(t)
	instructor := testutil.SeedUser(t, db, models.RoleInstructor)
	student := testutil.SeedUser(t, db, models.RoleStudent)
	c := testutil.SeedCourse(t, db, instructor.ID, "40.00", course.CoursePublished)
	token := testutil.BearerToken(t, student)

	code, out := do(t, app, http.MethodPost, "/api/v1/evaluation/enrollments", token,
		[]byte(fmt.Sprintf(`{"course_id":%d}`, c.ID)))
	require.Equal(t, http.StatusCreated, code, out.Message)

	var enrolled struct {
		Enrollment evaluation.Enrollment `json:"enrollment"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &enrolled))
	require.NotZero(t, enrolled.Enrollment.ID)

	event := []byte(fmt.Sprintf(`{"evento":"payment_success","referencia":"%d","id_transaccion_gateway":"gw-1"}`, enrolled.Enrollment.ID))

	code, _ = do(t, app, http.MethodPost, "/api/v1/evaluation/payments/webhook", "", event,
		middleware.WebhookSignatureHeader, "deadbeef")
	assert.Equal(t, http.StatusUnauthorized, code)

	sig := middleware.SignWebhookBody(testutil.WebhookSecret, event)
	code, out = do(t, app, http.MethodPost, "/api/v1/evaluation/payments/webhook", "", event,
		middleware.WebhookSignatureHeader, sig)
	require.Equal(t, http.StatusOK, code, out.Message)
	assert.Equal(t, "Payment confirmed!", out.Message)

	// a replay finds no pending enrollment
	code, _ = do(t, app, http.MethodPost, "/api/v1/evaluation/payments/webhook", "", event,
		middleware.WebhookSignatureHeader, sig)
	assert.Equal(t, http.StatusNotFound, code)

	code, out = do(t, app, http.MethodGet, "/api/v1/evaluation/my-learning", token, nil)
	require.Equal(t, http.StatusOK, code)
	var learning []evaluation.Enrollment
	require.NoError(t, json.Unmarshal(out.Data, &learning))
	require.Len(t, learning, 1)
	assert.Equal(t, c.ID, learning[0].CourseID)
}

func TestPublicEvaluationRoutes(t *testing.T) {
	app, _ := newApp(t)

	code, _ := do(t, app, http.MethodGet, "/api/v1/evaluation/leaderboard", "", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = do(t, app, http.MethodGet, "/api/v1/evaluation/certificates/unknown-code", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, app, http.MethodGet, "/api/v1/catalog/courses", "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestDeactivatedRewardIsHidden(t *testing.T) {
	app, db := newApp(t)
	admin := testutil.BearerToken(t, testutil.SeedUser(t, db, models.RoleAdmin))
	student := testutil.BearerToken(t, testutil.SeedUser(t, db, models.RoleStudent))

	code, out := do(t, app, http.MethodPost, "/api/v1/evaluation/rewards", admin,
		[]byte(`{"name":"Sticker pack","cost_points":5}`))
	require.Equal(t, http.StatusCreated, code, out.Message)
	var reward models.Reward
	require.NoError(t, json.Unmarshal(out.Data, &reward))

	code, _ = do(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/evaluation/rewards/%d", reward.ID), student, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = do(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/evaluation/rewards/%d", reward.ID), admin, nil)
	require.Equal(t, http.StatusOK, code)

	code, out = do(t, app, http.MethodGet, "/api/v1/evaluation/rewards", student, nil)
	require.Equal(t, http.StatusOK, code)
	var visible []models.Reward
	require.NoError(t, json.Unmarshal(out.Data, &visible))
	assert.Empty(t, visible)

	code, _ = do(t, app, http.MethodPost, fmt.Sprintf("/api/v1/evaluation/rewards/%d/redeem", reward.ID), student, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, out = do(t, app, http.MethodGet, "/api/v1/evaluation/rewards", admin, nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(out.Data, &visible))
	assert.Len(t, visible, 1)
}

func TestPublicCatalogHidesPrivateFields(t *testing.T) {
	app, db := newApp(t)
	instructor := testutil.SeedUser(t, db, models.RoleInstructor)
	student := testutil.SeedUser(t, db, models.RoleStudent)
	c := testutil.SeedCourse(t, db, instructor.ID, "25.00", course.CoursePublished)
	m := testutil.SeedModule(t, db, c.ID, 1)
	l := testutil.SeedLesson(t, db, m, course.LessonArticle, 1)
	require.NoError(t, db.Model(&l).Updates(map[string]interface{}{
		"title":        "Paid chapter",
		"article_body": "the whole paid article",
		"file_url":     "https://cdn.example.com/paid.pdf",
	}).Error)
	e := testutil.SeedEnrollment(t, db, student.ID, c.ID, evaluation.PaymentPaid, "25.00")
	require.NoError(t, db.Create(&evaluation.Review{
		EnrollmentID: e.ID, CourseID: c.ID, StudentID: student.ID,
		Overall: 5, ContentQuality: 4, Clarity: 3, PracticalValue: 2, InstructorSupport: 1,
	}).Error)

	code, out := do(t, app, http.MethodGet, fmt.Sprintf("/api/v1/catalog/courses/%d", c.ID), "", nil)
	require.Equal(t, http.StatusOK, code, out.Message)
	detail := string(out.Data)
	assert.Contains(t, detail, "Paid chapter")
	assert.Contains(t, detail, instructor.Name)
	for _, field := range []string{"article_body", "file_url", "the whole paid article", "email", "commission", instructor.Email} {
		assert.NotContains(t, detail, field)
	}

	code, out = do(t, app, http.MethodGet, "/api/v1/catalog/courses", "", nil)
	require.Equal(t, http.StatusOK, code, out.Message)
	assert.NotContains(t, string(out.Data), "email")
	assert.NotContains(t, string(out.Data), "commission")

	code, out = do(t, app, http.MethodGet, fmt.Sprintf("/api/v1/catalog/courses/%d/reviews", c.ID), "", nil)
	require.Equal(t, http.StatusOK, code, out.Message)
	assert.Contains(t, string(out.Data), student.Name)
	assert.NotContains(t, string(out.Data), "email")
	assert.NotContains(t, string(out.Data), student.Email)
}

func TestTokenForMissingUser(t *testing.T) {
	app, _ := newApp(t)
	ghost := models.User{Name: "ghost", Email: "ghost@example.com", Role: models.RoleStudent}
	ghost.ID = 9999

	code, out := do(t, app, http.MethodGet, "/api/v1/auth/profile", testutil.BearerToken(t, ghost), nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "User not found!", out.Message)
}
