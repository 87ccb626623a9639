package api

import (
	"encoding/binary"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/relic/internal/catalog"
	"github.com/samcharles93/relic/pkg/asset"
)

func newTestEcho() *echo.Echo {
	m := catalog.NewMemory()

	// One DUMB asset referencing a string table and a scan.
	var body []byte
	body = binary.BigEndian.AppendUint32(body, 1)
	body = binary.BigEndian.AppendUint32(body, 0x11)
	body = append(body, "entry\x00"...)
	body = binary.BigEndian.AppendUint32(body, 0x12)
	body = binary.BigEndian.AppendUint32(body, 0)
	m.Add(0x1, "DUMB", body)
	m.Add(0x11, "STRG", nil)
	m.Add(0x12, "SCAN", nil)

	server := NewServer(m, asset.GamePrime)
	e := echo.New()
	server.Register(e)
	return e
}

func doGET(t *testing.T, e *echo.Echo, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestListAssets(t *testing.T) {
	t.Parallel()

	e := newTestEcho()
	rec := doGET(t, e, "/v1/assets")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body=%s", rec.Code, rec.Body.String())
	}

	var list AssetList
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if list.Game != "prime" || list.Count != 3 || len(list.Assets) != 3 {
		t.Fatalf("got %+v", list)
	}
	if list.Assets[0].ID != "0x00000001" || list.Assets[0].Type != "DUMB" {
		t.Fatalf("first asset: %+v", list.Assets[0])
	}
}

func TestGetAsset(t *testing.T) {
	t.Parallel()

	e := newTestEcho()
	rec := doGET(t, e, "/v1/assets/0x11")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body=%s", rec.Code, rec.Body.String())
	}
	var got AssetSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Type != "STRG" {
		t.Fatalf("got %+v", got)
	}

	if rec := doGET(t, e, "/v1/assets/0x999"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown asset status %d", rec.Code)
	}
	if rec := doGET(t, e, "/v1/assets/zzz"); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status %d", rec.Code)
	}
}

func TestGetDependencies(t *testing.T) {
	t.Parallel()

	e := newTestEcho()
	rec := doGET(t, e, "/v1/assets/1/dependencies?recursive=true")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body=%s", rec.Code, rec.Body.String())
	}

	var report DependencyReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.ReportID == "" || !report.Recursive {
		t.Fatalf("got %+v", report)
	}
	if report.Count != 2 || len(report.Dependencies) != 2 {
		t.Fatalf("dependencies: %+v", report.Dependencies)
	}
	if report.Dependencies[0].Type != "STRG" || report.Dependencies[0].ID != "0x00000011" {
		t.Fatalf("first record: %+v", report.Dependencies[0])
	}
}

func TestParseAssetID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want asset.AssetID
		ok   bool
	}{
		{"0xDEADBEEF", 0xDEADBEEF, true},
		{"0xdeadbeef", 0xDEADBEEF, true},
		{"255", 255, true},
		{"ff", 0xFF, true},
		{"", 0, false},
		{"zzz", 0, false},
	}
	for _, tt := range tests {
		got, err := parseAssetID(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("parseAssetID(%q) = %v, %v", tt.in, got, err)
		}
	}
}
