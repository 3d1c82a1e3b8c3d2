package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	app "github.com/skc/procurement/internal/application/requisition"
	"github.com/skc/procurement/internal/infrastructure/persistence"
	"github.com/skc/procurement/internal/infrastructure/persistence/models"
	infraref "github.com/skc/procurement/internal/infrastructure/reference"
	"github.com/skc/procurement/internal/interfaces/http/dto"
	"github.com/skc/procurement/internal/interfaces/http/middleware"
	"github.com/skc/procurement/internal/interfaces/http/router"
)

// newTestServer wires the full stack against an in-memory store, without
// the auth middleware so each test can focus on endpoint behavior.
func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.RequisitionModel{}, &models.RequisitionItemModel{}))

	log := zap.NewNop()
	repo := persistence.NewGormRequisitionRepository(db)
	catalog := infraref.NewInMemoryCatalog(log)
	svc := app.NewService(repo, log, 0)
	items := app.NewItemService(repo, catalog, log, 0)

	engine := gin.New()
	r := router.NewRouter(engine)
	r.Register(NewRequisitionHandler(svc)).
		Register(NewRequisitionItemHandler(items)).
		Register(NewReferenceHandler(catalog))
	r.Setup()
	return engine
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decodeData(t *testing.T, env envelope, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func deliveryDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format("2006-01-02")
}

func createDraft(t *testing.T, engine *gin.Engine) app.RequisitionResponse {
	t.Helper()
	w, env := doJSON(t, engine, http.MethodPost, "/api/v1/requisitions",
		gin.H{"organizerId": "org-1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var r app.RequisitionResponse
	decodeData(t, env, &r)
	return r
}

func addItem(t *testing.T, engine *gin.Engine, reqID int64, code, name string, qty, price float64, unit string) (app.ItemResponse, *httptest.ResponseRecorder, envelope) {
	t.Helper()
	w, env := doJSON(t, engine, http.MethodPost, fmt.Sprintf("/api/v1/requisitions/%d/items", reqID), gin.H{
		"nomenclatureCode":    code,
		"nomenclatureName":    name,
		"quantity":            qty,
		"unitCode":            unit,
		"priceWithoutVat":     price,
		"desiredDeliveryDate": deliveryDate(10),
	})
	var item app.ItemResponse
	if w.Code == http.StatusCreated {
		decodeData(t, env, &item)
	}
	return item, w, env
}

func getRequisition(t *testing.T, engine *gin.Engine, id int64) app.RequisitionResponse {
	t.Helper()
	w, env := doJSON(t, engine, http.MethodGet, fmt.Sprintf("/api/v1/requisitions/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var r app.RequisitionResponse
	decodeData(t, env, &r)
	return r
}

func TestRequisitionLifecycleEndToEnd(t *testing.T) {
	engine := newTestServer(t)

	// Create an empty draft.
	r := createDraft(t, engine)
	assert.Equal(t, "DRAFT", r.Status)
	assert.Equal(t, "0.00", r.TotalAmountWithoutVat)
	assert.Equal(t, fmt.Sprintf("PR-%d-00001", time.Now().Year()), r.Number)

	// First item: 10 x 350.00 = 3500.00, row 1.
	first, w, _ := addItem(t, engine, r.ID, "TRU-001", "Office paper A4", 10, 350, "PACK")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 1, first.RowNumber)
	assert.Equal(t, int64(0), first.Version)
	assert.Equal(t, "3500.00", getRequisition(t, engine, r.ID).TotalAmountWithoutVat)

	// Second item: 5 x 100.00, total 4000.00.
	second, w, _ := addItem(t, engine, r.ID, "TRU-002", "Ballpoint pen", 5, 100, "PIECE")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 2, second.RowNumber)
	assert.Equal(t, "4000.00", getRequisition(t, engine, r.ID).TotalAmountWithoutVat)

	// Delete the first item; total drops to 500.00 and row 2 keeps its number.
	w, _ = doJSON(t, engine, http.MethodDelete,
		fmt.Sprintf("/api/v1/requisitions/%d/items/%d", r.ID, first.ID), nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	after := getRequisition(t, engine, r.ID)
	assert.Equal(t, "500.00", after.TotalAmountWithoutVat)
	require.Len(t, after.Items, 1)
	assert.Equal(t, 2, after.Items[0].RowNumber)

	// The sole remaining item cannot be deleted.
	w, env := doJSON(t, engine, http.MethodDelete,
		fmt.Sprintf("/api/v1/requisitions/%d/items/%d", r.ID, second.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "LAST_ITEM_DELETE_FORBIDDEN", env.Error.Code)

	// Submit the requisition.
	w, env = doJSON(t, engine, http.MethodPost,
		fmt.Sprintf("/api/v1/requisitions/%d/transition", r.ID),
		gin.H{"targetStatus": "SUBMITTED"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var submitted app.RequisitionResponse
	decodeData(t, env, &submitted)
	assert.Equal(t, "SUBMITTED", submitted.Status)

	// Items are frozen outside DRAFT.
	_, w, env = addItem(t, engine, r.ID, "TRU-003", "Stapler", 1, 10, "PIECE")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "REQUISITION_NOT_DRAFT", env.Error.Code)

	// SUBMITTED cannot go back to DRAFT directly.
	w, env = doJSON(t, engine, http.MethodPost,
		fmt.Sprintf("/api/v1/requisitions/%d/transition", r.ID),
		gin.H{"targetStatus": "DRAFT"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_STATUS_TRANSITION", env.Error.Code)
}

func TestCreateRequisition_MissingOrganizer(t *testing.T) {
	engine := newTestServer(t)

	w, env := doJSON(t, engine, http.MethodPost, "/api/v1/requisitions", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	assert.Equal(t, "organizerId", env.Error.Field)
}

func TestGetRequisition_Errors(t *testing.T) {
	engine := newTestServer(t)

	w, env := doJSON(t, engine, http.MethodGet, "/api/v1/requisitions/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "REQUISITION_NOT_FOUND", env.Error.Code)

	w, env = doJSON(t, engine, http.MethodGet, "/api/v1/requisitions/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)

	// Zero and negative ids parse and answer not-found, same as any absent id.
	w, env = doJSON(t, engine, http.MethodGet, "/api/v1/requisitions/0", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "REQUISITION_NOT_FOUND", env.Error.Code)

	w, env = doJSON(t, engine, http.MethodGet, "/api/v1/requisitions/-5", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "REQUISITION_NOT_FOUND", env.Error.Code)
}

func TestUpdateRequisition_OrganizerPatch(t *testing.T) {
	engine := newTestServer(t)
	r := createDraft(t, engine)

	w, env := doJSON(t, engine, http.MethodPatch,
		fmt.Sprintf("/api/v1/requisitions/%d", r.ID), gin.H{"organizerId": "org-2"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated app.RequisitionResponse
	decodeData(t, env, &updated)
	assert.Equal(t, "org-2", updated.OrganizerID)

	// Blank organizer id leaves the header untouched.
	w, env = doJSON(t, engine, http.MethodPatch,
		fmt.Sprintf("/api/v1/requisitions/%d", r.ID), gin.H{"organizerId": ""})
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, env, &updated)
	assert.Equal(t, "org-2", updated.OrganizerID)
}

func TestDeleteRequisition(t *testing.T) {
	engine := newTestServer(t)
	r := createDraft(t, engine)

	w, _ := doJSON(t, engine, http.MethodDelete, fmt.Sprintf("/api/v1/requisitions/%d", r.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, env := doJSON(t, engine, http.MethodGet, fmt.Sprintf("/api/v1/requisitions/%d", r.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "REQUISITION_NOT_FOUND", env.Error.Code)
}

func TestCreateItem_ValidationFailures(t *testing.T) {
	engine := newTestServer(t)
	r := createDraft(t, engine)

	tests := []struct {
		name     string
		code     string
		itemName string
		unit     string
		wantCode string
	}{
		{"unknown nomenclature", "TRU-999", "Anything", "PIECE", "NOMENCLATURE_NOT_FOUND"},
		{"name mismatch", "TRU-001", "Wrong name", "PACK", "NOMENCLATURE_NAME_MISMATCH"},
		{"unit not allowed", "TRU-001", "Office paper A4", "KG", "UNIT_NOT_ALLOWED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, w, env := addItem(t, engine, r.ID, tt.code, tt.itemName, 1, 10, tt.unit)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}
}

func TestCreateItem_DuplicateNomenclature(t *testing.T) {
	engine := newTestServer(t)
	r := createDraft(t, engine)

	_, w, _ := addItem(t, engine, r.ID, "TRU-001", "Office paper A4", 2, 100, "PACK")
	require.Equal(t, http.StatusCreated, w.Code)

	_, w, env := addItem(t, engine, r.ID, "TRU-001", "Office paper A4", 3, 100, "BOX")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "DUPLICATE_NOMENCLATURE", env.Error.Code)
}

func TestCreateItem_FractionalQuantity(t *testing.T) {
	engine := newTestServer(t)
	r := createDraft(t, engine)

	item, w, _ := addItem(t, engine, r.ID, "TRU-008", "Coffee beans", 0.5, 4200, "KG")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "0.5", item.Quantity)
	assert.Equal(t, "2100.00", getRequisition(t, engine, r.ID).TotalAmountWithoutVat)
}

func TestCreateItem_DeliveryDateTooSoon(t *testing.T) {
	engine := newTestServer(t)
	r := createDraft(t, engine)

	w, env := doJSON(t, engine, http.MethodPost,
		fmt.Sprintf("/api/v1/requisitions/%d/items", r.ID), gin.H{
			"nomenclatureCode":    "TRU-001",
			"nomenclatureName":    "Office paper A4",
			"quantity":            1,
			"unitCode":            "PACK",
			"priceWithoutVat":     10,
			"desiredDeliveryDate": deliveryDate(2),
		})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_DELIVERY_DATE", env.Error.Code)
}

func TestPatchItem_VersionFlow(t *testing.T) {
	engine := newTestServer(t)
	r := createDraft(t, engine)
	item, w, _ := addItem(t, engine, r.ID, "TRU-001", "Office paper A4", 2, 100, "PACK")
	require.Equal(t, http.StatusCreated, w.Code)

	path := fmt.Sprintf("/api/v1/requisitions/%d/items/%d", r.ID, item.ID)

	// Patch with the current version succeeds and bumps it.
	w, env := doJSON(t, engine, http.MethodPatch, path, gin.H{"quantity": 7, "version": 0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var patched app.ItemResponse
	decodeData(t, env, &patched)
	assert.Equal(t, "7", patched.Quantity)
	assert.Equal(t, int64(1), patched.Version)
	assert.Equal(t, "700.00", getRequisition(t, engine, r.ID).TotalAmountWithoutVat)

	// Replaying the stale version conflicts.
	w, env = doJSON(t, engine, http.MethodPatch, path, gin.H{"quantity": 9, "version": 0})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "OPTIMISTIC_LOCK_CONFLICT", env.Error.Code)

	// Resubmitting with the current version recovers and advances it again.
	w, env = doJSON(t, engine, http.MethodPatch, path, gin.H{"quantity": 9, "version": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeData(t, env, &patched)
	assert.Equal(t, "9", patched.Quantity)
	assert.Equal(t, int64(2), patched.Version)
	assert.Equal(t, "900.00", getRequisition(t, engine, r.ID).TotalAmountWithoutVat)

	// Missing version is rejected by binding.
	w, env = doJSON(t, engine, http.MethodPatch, path, gin.H{"quantity": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)
}

func TestReactivateEndpoint(t *testing.T) {
	engine := newTestServer(t)
	r := createDraft(t, engine)
	_, w, _ := addItem(t, engine, r.ID, "TRU-001", "Office paper A4", 1, 50, "PACK")
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = doJSON(t, engine, http.MethodPost,
		fmt.Sprintf("/api/v1/requisitions/%d/transition", r.ID), gin.H{"targetStatus": "CANCELLED"})
	require.Equal(t, http.StatusOK, w.Code)

	w, env := doJSON(t, engine, http.MethodPost,
		fmt.Sprintf("/api/v1/requisitions/%d/reactivate", r.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var reactivated app.RequisitionResponse
	decodeData(t, env, &reactivated)
	assert.Equal(t, "DRAFT", reactivated.Status)

	// Only CANCELLED requisitions can be reactivated.
	w, env = doJSON(t, engine, http.MethodPost,
		fmt.Sprintf("/api/v1/requisitions/%d/reactivate", r.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_STATUS_TRANSITION", env.Error.Code)
}

func TestSummaryEndpoint(t *testing.T) {
	engine := newTestServer(t)
	r := createDraft(t, engine)
	_, w, _ := addItem(t, engine, r.ID, "TRU-001", "Office paper A4", 2, 100, "PACK")
	require.Equal(t, http.StatusCreated, w.Code)
	_, w, _ = addItem(t, engine, r.ID, "TRU-002", "Ballpoint pen", 3, 50, "PIECE")
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := doJSON(t, engine, http.MethodGet,
		fmt.Sprintf("/api/v1/requisitions/%d/summary", r.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var summary app.SummaryResponse
	decodeData(t, env, &summary)
	assert.Equal(t, "350.00", summary.TotalAmountWithoutVat)
	assert.Equal(t, "5", summary.TotalQuantity)
	assert.Equal(t, 2, summary.ItemCount)
	assert.Equal(t, "KZT", summary.Currency)
	require.NotNil(t, summary.MinDeliveryDate)
	assert.Equal(t, deliveryDate(10), *summary.MinDeliveryDate)
}

func TestListRequisitions(t *testing.T) {
	engine := newTestServer(t)
	createDraft(t, engine)
	createDraft(t, engine)

	w, env := doJSON(t, engine, http.MethodGet, "/api/v1/requisitions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(2), env.Meta.Total)

	var list []app.RequisitionResponse
	decodeData(t, env, &list)
	assert.Len(t, list, 2)
}

func TestReferenceEndpoints(t *testing.T) {
	engine := newTestServer(t)

	w, env := doJSON(t, engine, http.MethodGet, "/api/v1/reference/units", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var units []UnitResponse
	decodeData(t, env, &units)
	assert.Len(t, units, 7)

	w, env = doJSON(t, engine, http.MethodGet, "/api/v1/reference/nomenclatures", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var noms []NomenclatureResponse
	decodeData(t, env, &noms)
	require.Len(t, noms, 12)
	assert.NotEmpty(t, noms[0].AllowedUnitCodes)
}
