package validators

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noteRequest struct {
	Title string `json:"title" validate:"required,notblank,max=10"`
	Stars int    `json:"stars" validate:"min=0,max=5"`
}

type envelope struct {
	Status  bool              `json:"status"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data"`
}

func send(t *testing.T, app *fiber.App, method, target, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out envelope
	if resp.StatusCode != http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func TestBody(t *testing.T) {
	app := fiber.New()
	app.Post("/notes", Body[noteRequest]("note", func(req *noteRequest, errs map[string]string) {
		if req.Title == "forbidden" {
			errs["title"] = "Title is reserved!"
		}
	}), func(c *fiber.Ctx) error {
		req := c.Locals("note").(*noteRequest)
		return c.SendString(req.Title)
	})

	code, _ := send(t, app, http.MethodPost, "/notes", `{"title":"hello","stars":3}`)
	assert.Equal(t, http.StatusOK, code)

	code, out := send(t, app, http.MethodPost, "/notes", `{"title":"   ","stars":9}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "Title cannot be blank!", out.Data["title"])
	assert.Contains(t, out.Data, "stars")

	code, out = send(t, app, http.MethodPost, "/notes", `{"title":"forbidden"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "Title is reserved!", out.Data["title"])

	code, out = send(t, app, http.MethodPost, "/notes", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid request body!", out.Message)
}

func TestPathIDs(t *testing.T) {
	app := fiber.New()
	app.Get("/courses/:course_id/modules/:module_id", PathIDs("course_id", "module_id"), func(c *fiber.Ctx) error {
		if ID(c, "course_id") != 4 || ID(c, "module_id") != 2 {
			return c.SendStatus(http.StatusTeapot)
		}
		return c.SendStatus(http.StatusOK)
	})

	code, _ := send(t, app, http.MethodGet, "/courses/4/modules/2", "")
	assert.Equal(t, http.StatusOK, code)

	code, out := send(t, app, http.MethodGet, "/courses/0/modules/abc", "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "course_id must be a positive integer!", out.Data["course_id"])
	assert.Contains(t, out.Data, "module_id")
}

func TestPaginate(t *testing.T) {
	app := fiber.New()
	app.Get("/items", Paginate(), func(c *fiber.Ctx) error {
		p := PageOf(c)
		return c.JSON(fiber.Map{"page": p.Page, "limit": p.Limit, "offset": p.Offset()})
	})

	req := httptest.NewRequest(http.MethodGet, "/items?page=3&limit=20", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	var got map[string]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, map[string]int{"page": 3, "limit": 20, "offset": 40}, got)

	req = httptest.NewRequest(http.MethodGet, "/items", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	got = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, map[string]int{"page": 1, "limit": 10, "offset": 0}, got)

	code, out := send(t, app, http.MethodGet, "/items?limit=500", "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, out.Data, "limit")
}
