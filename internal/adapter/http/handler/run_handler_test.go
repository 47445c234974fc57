package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/artistpay/settler/internal/adapter/http/dto"
	"github.com/artistpay/settler/internal/domain"
	"github.com/artistpay/settler/internal/usecase"
	"github.com/artistpay/settler/internal/usecase/mocks"
)

func newRunHandler(opts ...usecase.BatchOption) *RunHandler {
	idGen := mocks.NewMockIDGenerator()
	settlementUC := usecase.NewSettlementUseCase(idGen)
	batchUC := usecase.NewBatchUseCase(settlementUC, idGen, zerolog.Nop(), opts...)

	return NewRunHandler(batchUC)
}

func runRequestBody() string {
	req := dto.CreateRunRequest{
		Revenue: dto.TableRequest{
			Columns: domain.RevenueColumns,
			Rows: []map[string]any{{
				domain.ColArtist:        "A",
				domain.ColAlbum:         "First",
				domain.ColMajorCategory: "국내",
				domain.ColMinorCategory: "스트리밍",
				domain.ColServiceName:   "스트리밍",
				domain.ColNetRevenue:    "1000",
			}},
		},
		Cost: dto.TableRequest{
			Columns: domain.CostColumns,
			Rows: []map[string]any{{
				domain.ColCostArtist:       "A",
				domain.ColPreviousBalance:  "500",
				domain.ColCurrentDeduction: "300",
				domain.ColCurrentBalance:   "200",
				domain.ColShareRate:        "0.5",
			}},
		},
	}

	body, _ := json.Marshal(req)

	return string(body)
}

func TestRunHandler_Create(t *testing.T) {
	h := newRunHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs/", strings.NewReader(runRequestBody()))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body: %s", rec.Code, rec.Body.String())
	}

	var resp dto.RunResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.TotalArtists != 1 || len(resp.Succeeded) != 1 {
		t.Fatalf("unexpected run response: %+v", resp)
	}

	if resp.Succeeded[0].PayableAmount.String() != "350" {
		t.Errorf("payable = %s, want 350", resp.Succeeded[0].PayableAmount)
	}
}

func TestRunHandler_Create_InvalidBody(t *testing.T) {
	h := newRunHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs/", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRunHandler_Create_InvalidLedgers(t *testing.T) {
	h := newRunHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs/", strings.NewReader(`{"revenue":{},"cost":{}}`))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422, body: %s", rec.Code, rec.Body.String())
	}
}

func TestRunHandler_Get(t *testing.T) {
	repo := mocks.NewMockBatchRunRepository()
	h := newRunHandler(usecase.WithRunRepository(repo))

	createReq := httptest.NewRequest(http.MethodPost, "/api/v1/runs/", strings.NewReader(runRequestBody()))
	createRec := httptest.NewRecorder()
	h.Create(createRec, createReq)

	var created dto.RunResponse
	if err := json.NewDecoder(createRec.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/"+created.ID, nil)
	req = withURLParams(req, map[string]string{"id": created.ID})
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}
}

func TestRunHandler_Get_NotFound(t *testing.T) {
	repo := mocks.NewMockBatchRunRepository()
	h := newRunHandler(usecase.WithRunRepository(repo))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/missing", nil)
	req = withURLParams(req, map[string]string{"id": "missing"})
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestRunHandler_GetSettlement(t *testing.T) {
	repo := mocks.NewMockBatchRunRepository()
	h := newRunHandler(usecase.WithRunRepository(repo))

	createReq := httptest.NewRequest(http.MethodPost, "/api/v1/runs/", strings.NewReader(runRequestBody()))
	createRec := httptest.NewRecorder()
	h.Create(createRec, createReq)

	var created dto.RunResponse
	if err := json.NewDecoder(createRec.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/"+created.ID+"/settlements/A", nil)
	req = withURLParams(req, map[string]string{"id": created.ID, "artist": "A"})
	rec := httptest.NewRecorder()

	h.GetSettlement(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}

	var resp dto.SettlementResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode settlement: %v", err)
	}

	if resp.Artist != "A" || resp.PayableAmount.String() != "350" {
		t.Errorf("unexpected settlement: artist=%s payable=%s", resp.Artist, resp.PayableAmount)
	}
}

func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}

	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
