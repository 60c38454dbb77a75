package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/zonemap/internal/adapters/http"
	"github.com/samirrijal/zonemap/internal/core/domain"
	"github.com/samirrijal/zonemap/internal/core/usecases"
)

// ---- Mocks ----

type mockPinger struct {
	pingFn func(ctx context.Context) error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(opts ...func(*handler.Dependencies)) *handler.Dependencies {
	n := 0
	store := usecases.NewZoneStore(usecases.WithIDGenerator(func() domain.ZoneID {
		n++
		return domain.ZoneID(fmt.Sprintf("zone-%d", n))
	}))
	d := &handler.Dependencies{
		Store:   store,
		Session: usecases.NewEditSession(store, domain.DefaultColor),
		Queries: usecases.NewQueryService(store, nil, domain.Coordinate{Lat: 47.4979, Lng: 19.0402}),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func do(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func expectError(t *testing.T, resp *http.Response, status int, code string) {
	t.Helper()
	if resp.StatusCode != status {
		t.Fatalf("expected %d, got %d", status, resp.StatusCode)
	}
	var apiErr handler.APIError
	decode(t, resp, &apiErr)
	if apiErr.Code != code {
		t.Errorf("expected code %q, got %q (%s)", code, apiErr.Code, apiErr.Message)
	}
}

func squareBody(name string, lat, lng, size float64) map[string]any {
	return map[string]any{
		"name": name,
		"points": []map[string]float64{
			{"lat": lat, "lng": lng},
			{"lat": lat, "lng": lng + size},
			{"lat": lat + size, "lng": lng + size},
			{"lat": lat + size, "lng": lng},
		},
	}
}

func createZone(t *testing.T, app *fiber.App, name string, lat, lng, size float64) domain.Zone {
	t.Helper()
	resp := do(t, app, "POST", "/v1/zones", squareBody(name, lat, lng, size))
	if resp.StatusCode != 201 {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	var z domain.Zone
	decode(t, resp, &z)
	return z
}

// ---- Health handler tests ----

func TestHealth_Returns200(t *testing.T) {
	app := setupApp(makeDeps())

	resp := do(t, app, "GET", "/v1/health", nil)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result map[string]interface{}
	decode(t, resp, &result)
	if result["status"] != "healthy" {
		t.Errorf("expected healthy status, got %v", result["status"])
	}
}

func TestReady_NothingConfigured(t *testing.T) {
	app := setupApp(makeDeps())

	resp := do(t, app, "GET", "/v1/ready", nil)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 with in-memory store only, got %d", resp.StatusCode)
	}
}

func TestReady_DatabaseDown(t *testing.T) {
	app := setupApp(makeDeps(func(d *handler.Dependencies) {
		d.DB = &mockPinger{pingFn: func(context.Context) error { return errors.New("connection refused") }}
		d.Cache = &mockPinger{}
	}))

	resp := do(t, app, "GET", "/v1/ready", nil)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
	var result struct {
		Checks map[string]string `json:"checks"`
	}
	decode(t, resp, &result)
	if result.Checks["cache"] != "ok" || !strings.HasPrefix(result.Checks["database"], "error") {
		t.Errorf("unexpected checks %v", result.Checks)
	}
}

// ---- Zone handler tests ----

func TestCreateZone_ThenList(t *testing.T) {
	app := setupApp(makeDeps())

	resp := do(t, app, "POST", "/v1/zones", squareBody("Center", 0, 0, 2))
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/v1/zones/zone-1" {
		t.Errorf("unexpected Location %q", loc)
	}
	var z domain.Zone
	decode(t, resp, &z)
	if z.Color != domain.DefaultColor {
		t.Errorf("expected pen color default, got %s", z.Color)
	}

	resp = do(t, app, "GET", "/v1/zones", nil)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var result struct {
		Data       []domain.ZoneSummary `json:"data"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	decode(t, resp, &result)
	if result.Pagination.Total != 1 || len(result.Data) != 1 {
		t.Fatalf("expected 1 zone, got %+v", result)
	}
	if result.Data[0].Name != "Center" || result.Data[0].VertexCount != 4 {
		t.Errorf("unexpected summary %+v", result.Data[0])
	}
}

func TestListZones_Pagination(t *testing.T) {
	app := setupApp(makeDeps())
	for i := 0; i < 5; i++ {
		createZone(t, app, fmt.Sprintf("Zone %d", i), float64(i*3), 0, 1)
	}

	resp := do(t, app, "GET", "/v1/zones?offset=2&limit=2", nil)
	var result struct {
		Data       []domain.ZoneSummary `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	decode(t, resp, &result)
	if result.Pagination.Total != 5 || len(result.Data) != 2 || result.Data[0].Name != "Zone 2" {
		t.Errorf("unexpected page %+v", result)
	}
	if !strings.Contains(resp.Header.Get("Link"), `rel="next"`) {
		t.Errorf("expected next link, got %q", resp.Header.Get("Link"))
	}
}

func TestCreateZone_Errors(t *testing.T) {
	app := setupApp(makeDeps())

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"degenerate ring", map[string]any{"name": "Line", "points": []map[string]float64{
			{"lat": 0, "lng": 0}, {"lat": 1, "lng": 1}}}, 422, "invalid_geometry"},
		{"blank name", squareBody("  ", 0, 0, 1), 422, "invalid_name"},
		{"out of range", squareBody("Far", 89.5, 0, 1), 422, "invalid_geometry"},
		{"missing lng", map[string]any{"name": "A", "points": []map[string]float64{
			{"lat": 0}, {"lat": 1, "lng": 1}, {"lat": 2, "lng": 0}}}, 400, "bad_request"},
		{"missing points", map[string]any{"name": "A"}, 400, "bad_request"},
		{"bad json", "{", 400, "bad_request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, do(t, app, "POST", "/v1/zones", tt.body), tt.status, tt.code)
		})
	}

	body := squareBody("Red", 0, 0, 1)
	body["color"] = "not-a-color"
	expectError(t, do(t, app, "POST", "/v1/zones", body), 422, "invalid_color")
}

func TestGetZone_NotFound(t *testing.T) {
	app := setupApp(makeDeps())
	expectError(t, do(t, app, "GET", "/v1/zones/missing", nil), 404, "not_found")
}

func TestUpdateZone(t *testing.T) {
	app := setupApp(makeDeps())
	z := createZone(t, app, "Old", 0, 0, 1)

	resp := do(t, app, "PATCH", "/v1/zones/"+string(z.ID), map[string]any{"name": "New", "color": "#f00"})
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var got domain.Zone
	decode(t, resp, &got)
	if got.Name != "New" || got.Color != (domain.Color{R: 0xFF}) {
		t.Errorf("unexpected zone %+v", got)
	}
	if got.Revision != z.Revision+1 {
		t.Errorf("name and color should land in one revision, got %d after %d", got.Revision, z.Revision)
	}

	expectError(t, do(t, app, "PATCH", "/v1/zones/"+string(z.ID), map[string]any{"name": ""}), 422, "invalid_name")
	expectError(t, do(t, app, "PATCH", "/v1/zones/"+string(z.ID), map[string]any{}), 400, "bad_request")
	expectError(t, do(t, app, "PATCH", "/v1/zones/missing", map[string]any{"name": "x"}), 404, "not_found")

	// A bad color must not rename.
	expectError(t, do(t, app, "PATCH", "/v1/zones/"+string(z.ID), map[string]any{"name": "Other", "color": "#zz"}), 422, "invalid_color")
	resp = do(t, app, "GET", "/v1/zones/"+string(z.ID), nil)
	decode(t, resp, &got)
	if got.Name != "New" {
		t.Errorf("expected name unchanged, got %q", got.Name)
	}
}

func TestReplaceRing(t *testing.T) {
	app := setupApp(makeDeps())
	z := createZone(t, app, "A", 0, 0, 1)

	body := squareBody("", 5, 5, 2)
	resp := do(t, app, "PUT", "/v1/zones/"+string(z.ID)+"/ring", map[string]any{"points": body["points"]})
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var got domain.Zone
	decode(t, resp, &got)
	if got.Ring[0] != (domain.Coordinate{Lat: 5, Lng: 5}) {
		t.Errorf("unexpected ring %v", got.Ring)
	}
}

func TestDeleteZone(t *testing.T) {
	app := setupApp(makeDeps())
	z := createZone(t, app, "A", 0, 0, 1)

	resp := do(t, app, "DELETE", "/v1/zones/"+string(z.ID), nil)
	if resp.StatusCode != 204 {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	expectError(t, do(t, app, "GET", "/v1/zones/"+string(z.ID), nil), 404, "not_found")
	expectError(t, do(t, app, "DELETE", "/v1/zones/"+string(z.ID), nil), 404, "not_found")
}

func TestContains(t *testing.T) {
	app := setupApp(makeDeps())
	createZone(t, app, "Center", 0, 0, 2)
	createZone(t, app, "Budapest", 47.4, 19.0, 0.2)

	var result handler.ContainsResponse
	decode(t, do(t, app, "GET", "/v1/zones/contains?lat=1&lng=1", nil), &result)
	if !result.Inside || result.Zone == nil || result.Zone.Name != "Center" {
		t.Errorf("expected Center, got %+v", result)
	}

	result = handler.ContainsResponse{}
	decode(t, do(t, app, "GET", "/v1/zones/contains?lat=5&lng=5", nil), &result)
	if result.Inside || result.Zone != nil {
		t.Errorf("expected no zone, got %+v", result)
	}

	result = handler.ContainsResponse{}
	decode(t, do(t, app, "GET", "/v1/zones/contains", nil), &result)
	if result.Point != (domain.Coordinate{Lat: 47.4979, Lng: 19.0402}) || result.Zone == nil || result.Zone.Name != "Budapest" {
		t.Errorf("expected check point inside Budapest, got %+v", result)
	}

	expectError(t, do(t, app, "GET", "/v1/zones/contains?lat=1", nil), 400, "bad_request")
	expectError(t, do(t, app, "GET", "/v1/zones/contains?lat=x&lng=1", nil), 400, "bad_request")
	expectError(t, do(t, app, "GET", "/v1/zones/contains?lat=95&lng=1", nil), 422, "invalid_geometry")
}

func TestExportImport(t *testing.T) {
	src := setupApp(makeDeps())
	createZone(t, src, "A", 0, 0, 1)
	createZone(t, src, "B", 3, 3, 1)

	resp := do(t, src, "GET", "/v1/zones/export", nil)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("unexpected content type %q", ct)
	}
	data, _ := io.ReadAll(resp.Body)

	dst := setupApp(makeDeps())
	resp = do(t, dst, "POST", "/v1/zones/import", string(data))
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var result struct {
		Created []domain.Zone `json:"created"`
	}
	decode(t, resp, &result)
	if len(result.Created) != 2 || result.Created[1].Name != "B" || len(result.Created[0].Ring) != 4 {
		t.Errorf("unexpected import %+v", result.Created)
	}

	bad := `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,1],[0,0]]]}}]}`
	expectError(t, do(t, dst, "POST", "/v1/zones/import", bad), 422, "invalid_geometry")
	expectError(t, do(t, dst, "POST", "/v1/zones/import", "nope"), 400, "bad_request")
}

func TestZones_ETag(t *testing.T) {
	app := setupApp(makeDeps())
	z := createZone(t, app, "A", 0, 0, 1)

	resp := do(t, app, "GET", "/v1/zones", nil)
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag")
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("unexpected Cache-Control %q", cc)
	}

	req := httptest.NewRequest("GET", "/v1/zones", nil)
	req.Header.Set("If-None-Match", etag)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 304 {
		t.Fatalf("expected 304, got %d", resp.StatusCode)
	}

	do(t, app, "PATCH", "/v1/zones/"+string(z.ID), map[string]any{"name": "B"})
	req = httptest.NewRequest("GET", "/v1/zones", nil)
	req.Header.Set("If-None-Match", etag)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 after mutation, got %d", resp.StatusCode)
	}
}

// ---- Session handler tests ----

func TestDrawFlow(t *testing.T) {
	app := setupApp(makeDeps())

	var st domain.SessionState
	decode(t, do(t, app, "POST", "/v1/session/draw", nil), &st)
	if st.Mode != domain.ModeDrawing {
		t.Fatalf("expected drawing, got %s", st.Mode)
	}
	expectError(t, do(t, app, "POST", "/v1/session/draw", nil), 409, "invalid_transition")

	body := squareBody("Center", 0, 0, 2)
	body["color"] = "#00ff00"
	resp := do(t, app, "POST", "/v1/session/draw/complete", body)
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var z domain.Zone
	decode(t, resp, &z)
	if z.Name != "Center" || z.Color != (domain.Color{G: 0xFF}) {
		t.Errorf("unexpected zone %+v", z)
	}

	decode(t, do(t, app, "GET", "/v1/session", nil), &st)
	if st.Mode != domain.ModeIdle {
		t.Errorf("expected idle, got %s", st.Mode)
	}
	if cc := do(t, app, "GET", "/v1/session", nil).Header.Get("Cache-Control"); cc != "no-store" {
		t.Errorf("unexpected Cache-Control %q", cc)
	}
}

func TestCompleteDraw_EmptyNameCancels(t *testing.T) {
	app := setupApp(makeDeps())
	do(t, app, "POST", "/v1/session/draw", nil)

	resp := do(t, app, "POST", "/v1/session/draw/complete", squareBody("", 0, 0, 2))
	if resp.StatusCode != 204 {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	var list struct {
		Data []domain.ZoneSummary `json:"data"`
	}
	decode(t, do(t, app, "GET", "/v1/zones", nil), &list)
	if len(list.Data) != 0 {
		t.Errorf("expected no zones, got %d", len(list.Data))
	}
}

func TestCompleteDraw_NotDrawing(t *testing.T) {
	app := setupApp(makeDeps())
	expectError(t, do(t, app, "POST", "/v1/session/draw/complete", squareBody("A", 0, 0, 1)), 409, "invalid_transition")
	expectError(t, do(t, app, "DELETE", "/v1/session/draw", nil), 409, "invalid_transition")
}

func TestEditFlow(t *testing.T) {
	app := setupApp(makeDeps())
	createZone(t, app, "Other", 5, 5, 1)
	z := createZone(t, app, "Target", 0, 0, 1)

	expectError(t, do(t, app, "POST", "/v1/session/edit", map[string]any{"zone_id": "missing"}), 404, "not_found")
	expectError(t, do(t, app, "POST", "/v1/session/edit", map[string]any{}), 400, "bad_request")

	var st domain.SessionState
	decode(t, do(t, app, "POST", "/v1/session/edit", map[string]any{"zone_id": z.ID}), &st)
	if st.Mode != domain.ModeEditing || st.ZoneID != z.ID {
		t.Fatalf("unexpected state %+v", st)
	}
	expectError(t, do(t, app, "POST", "/v1/session/edit", map[string]any{"zone_id": z.ID}), 409, "invalid_transition")

	var got domain.Zone
	decode(t, do(t, app, "PUT", "/v1/session/edit/vertices/1", map[string]any{"point": map[string]float64{"lat": 0, "lng": 3}}), &got)
	if got.Ring[1] != (domain.Coordinate{Lat: 0, Lng: 3}) {
		t.Errorf("unexpected ring after move %v", got.Ring)
	}

	decode(t, do(t, app, "POST", "/v1/session/edit/edges/0", map[string]any{"point": map[string]float64{"lat": -0.5, "lng": 1}}), &got)
	if len(got.Ring) != 5 || got.Ring[1] != (domain.Coordinate{Lat: -0.5, Lng: 1}) {
		t.Errorf("unexpected ring after insert %v", got.Ring)
	}

	decode(t, do(t, app, "DELETE", "/v1/session/edit/vertices/1", nil), &got)
	if len(got.Ring) != 4 {
		t.Errorf("expected 4 vertices after delete, got %d", len(got.Ring))
	}

	expectError(t, do(t, app, "PUT", "/v1/session/edit/vertices/9", map[string]any{"point": map[string]float64{"lat": 1, "lng": 1}}), 422, "index_out_of_range")
	expectError(t, do(t, app, "DELETE", "/v1/session/edit/vertices/abc", nil), 400, "bad_request")
	expectError(t, do(t, app, "PUT", "/v1/session/edit/vertices/0", map[string]any{}), 400, "bad_request")

	var frame struct {
		Zones []domain.ZoneRender `json:"zones"`
	}
	decode(t, do(t, app, "GET", "/v1/render", nil), &frame)
	if len(frame.Zones) != 2 || frame.Zones[0].Editable || !frame.Zones[1].Editable {
		t.Errorf("unexpected render frame %+v", frame.Zones)
	}

	decode(t, do(t, app, "DELETE", "/v1/session/edit", nil), &st)
	if st.Mode != domain.ModeIdle {
		t.Errorf("expected idle, got %s", st.Mode)
	}
	expectError(t, do(t, app, "PUT", "/v1/session/edit/vertices/0", map[string]any{"point": map[string]float64{"lat": 1, "lng": 1}}), 409, "invalid_transition")
}

func TestVertexEvents(t *testing.T) {
	app := setupApp(makeDeps())
	createZone(t, app, "Other", 5, 5, 1)
	z := createZone(t, app, "Target", 0, 0, 1)
	do(t, app, "POST", "/v1/session/edit", map[string]any{"zone_id": z.ID})

	resp := do(t, app, "POST", "/v1/session/vertex-events", map[string]any{
		"zone_index": 1, "kind": "move", "position": 2, "point": map[string]float64{"lat": 2, "lng": 2},
	})
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var got domain.Zone
	decode(t, resp, &got)
	if got.Ring[2] != (domain.Coordinate{Lat: 2, Lng: 2}) {
		t.Errorf("unexpected ring %v", got.Ring)
	}

	expectError(t, do(t, app, "POST", "/v1/session/vertex-events", map[string]any{
		"zone_index": 0, "kind": "move", "position": 0, "point": map[string]float64{"lat": 1, "lng": 1},
	}), 409, "invalid_transition")
	expectError(t, do(t, app, "POST", "/v1/session/vertex-events", map[string]any{
		"zone_index": 7, "kind": "delete", "position": 0,
	}), 404, "not_found")
	expectError(t, do(t, app, "POST", "/v1/session/vertex-events", map[string]any{
		"zone_index": 1, "kind": "move", "position": 0,
	}), 400, "bad_request")
	expectError(t, do(t, app, "POST", "/v1/session/vertex-events", map[string]any{
		"zone_index": 1, "kind": "rotate", "position": 0,
	}), 400, "bad_request")
}

func TestDeletingEditedZoneEndsEdit(t *testing.T) {
	app := setupApp(makeDeps())
	z := createZone(t, app, "Target", 0, 0, 1)
	do(t, app, "POST", "/v1/session/edit", map[string]any{"zone_id": z.ID})

	do(t, app, "DELETE", "/v1/zones/"+string(z.ID), nil)

	var st domain.SessionState
	decode(t, do(t, app, "GET", "/v1/session", nil), &st)
	if st.Mode != domain.ModeIdle || st.ZoneID != "" {
		t.Errorf("expected idle session, got %+v", st)
	}
}

func TestSetPen(t *testing.T) {
	app := setupApp(makeDeps())

	var st domain.SessionState
	decode(t, do(t, app, "PUT", "/v1/session/pen", map[string]any{"color": "#123456"}), &st)
	if st.PenColor.Hex() != "#123456" {
		t.Errorf("unexpected pen %s", st.PenColor)
	}
	z := createZone(t, app, "A", 0, 0, 1)
	if z.Color.Hex() != "#123456" {
		t.Errorf("expected new zone in pen color, got %s", z.Color)
	}
	expectError(t, do(t, app, "PUT", "/v1/session/pen", map[string]any{"color": "#nope"}), 422, "invalid_color")
}

// ---- GraphQL ----

func TestGraphQL_Queries(t *testing.T) {
	app := setupApp(makeDeps())
	createZone(t, app, "Center", 0, 0, 2)

	resp := do(t, app, "POST", "/graphql", map[string]any{
		"query": `{ zones { id name color ring { lat lng } } containingZone(lat: 1, lng: 1) { name } session { mode } }`,
	})
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var result struct {
		Data struct {
			Zones []struct {
				ID    string `json:"id"`
				Name  string `json:"name"`
				Color string `json:"color"`
				Ring  []struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"ring"`
			} `json:"zones"`
			ContainingZone *struct {
				Name string `json:"name"`
			} `json:"containingZone"`
			Session struct {
				Mode string `json:"mode"`
			} `json:"session"`
		} `json:"data"`
		Errors []any `json:"errors"`
	}
	decode(t, resp, &result)
	if len(result.Errors) > 0 {
		t.Fatalf("graphql errors: %v", result.Errors)
	}
	if len(result.Data.Zones) != 1 || result.Data.Zones[0].Color != "#2196F3" || len(result.Data.Zones[0].Ring) != 4 {
		t.Errorf("unexpected zones %+v", result.Data.Zones)
	}
	if result.Data.ContainingZone == nil || result.Data.ContainingZone.Name != "Center" {
		t.Errorf("unexpected containing zone %+v", result.Data.ContainingZone)
	}
	if result.Data.Session.Mode != "idle" {
		t.Errorf("unexpected session mode %q", result.Data.Session.Mode)
	}
}

func TestGraphQL_Mutations(t *testing.T) {
	app := setupApp(makeDeps())
	z := createZone(t, app, "Old", 0, 0, 1)

	resp := do(t, app, "POST", "/graphql", map[string]any{
		"query":     `mutation($id: String!) { renameZone(id: $id, name: "New") { name } deleteZone(id: $id) }`,
		"variables": map[string]any{"id": z.ID},
	})
	var result struct {
		Data struct {
			RenameZone struct {
				Name string `json:"name"`
			} `json:"renameZone"`
			DeleteZone bool `json:"deleteZone"`
		} `json:"data"`
	}
	decode(t, resp, &result)
	if result.Data.RenameZone.Name != "New" || !result.Data.DeleteZone {
		t.Errorf("unexpected result %+v", result.Data)
	}
	expectError(t, do(t, app, "GET", "/v1/zones/"+string(z.ID), nil), 404, "not_found")
}
