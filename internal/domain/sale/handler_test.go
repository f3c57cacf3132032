package sale

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/optica/optica/pkg/pagination"
)

func TestListPending_PaginatedWithLinks(t *testing.T) {
	repo := &mockSaleRepo{}
	h := NewHandler(NewService(repo))
	for i := 0; i < 3; i++ {
		repo.sales = append(repo.sales, &Sale{
			ID:        uuid.New(),
			PatientID: uuid.New(),
			BranchID:  uuid.New(),
			Date:      date(t, "2024-01-10"),
		})
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?limit=2", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/sales/pending")

	if err := h.ListPending(c); err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Data    []*Sale           `json:"data"`
		Total   int               `json:"total"`
		HasMore bool              `json:"has_more"`
		Links   []pagination.Link `json:"links"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 3 || !resp.HasMore {
		t.Errorf("total=%d has_more=%v, want 3/true", resp.Total, resp.HasMore)
	}

	byRel := map[string]string{}
	for _, l := range resp.Links {
		byRel[l.Relation] = l.URL
	}
	if byRel["self"] != "/sales/pending?offset=0&limit=2" {
		t.Errorf("self link = %q", byRel["self"])
	}
	if byRel["next"] != "/sales/pending?offset=2&limit=2" {
		t.Errorf("next link = %q", byRel["next"])
	}
}
