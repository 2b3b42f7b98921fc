//go:build integration

package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"cargoease/api/internal/model"
	"cargoease/api/internal/testhelper"
)

func setupFleetRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testhelper.SetupTestDB(t)
	router := gin.New()
	NewFleetHandler(db).RegisterRoutes(router.Group("/api/v1"))
	return router, db
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestCreateDriverRejectsDuplicateDocumentAndPlate(t *testing.T) {
	router, db := setupFleetRouter(t)

	vehicle := model.Vehicle{
		Brand: "Scania", Model: "R450", YearBuilt: 2020,
		PlateNumber: "DRV001", AxleCount: 2, Status: "active",
	}
	require.NoError(t, db.Create(&vehicle).Error)

	w := postJSON(router, "/api/v1/drivers",
		`{"full_name":"Ana Torres","document_id":"30111222","vehicle_id":1,"plate_number":"DRV001"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	// 证件号重复
	w = postJSON(router, "/api/v1/drivers",
		`{"full_name":"Otra Persona","document_id":"30111222","vehicle_id":1,"plate_number":"DRV999"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "document id")

	// 车牌重复
	w = postJSON(router, "/api/v1/drivers",
		`{"full_name":"Otra Persona","document_id":"40555666","vehicle_id":1,"plate_number":"DRV001"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "plate number")

	var active int64
	require.NoError(t, db.Model(&model.Driver{}).Where("is_active = ?", true).Count(&active).Error)
	assert.Equal(t, int64(1), active)
}

func TestCreateDriverAllowsReuseAfterDeactivation(t *testing.T) {
	router, db := setupFleetRouter(t)

	vehicle := model.Vehicle{
		Brand: "Volvo", Model: "FH16", YearBuilt: 2019,
		PlateNumber: "DRV002", AxleCount: 2, Status: "active",
	}
	require.NoError(t, db.Create(&vehicle).Error)

	w := postJSON(router, "/api/v1/drivers",
		`{"full_name":"Ana Torres","document_id":"30111222","vehicle_id":1,"plate_number":"DRV002"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	// 注销后证件号和车牌都可以再用
	del := httptest.NewRecorder()
	router.ServeHTTP(del, httptest.NewRequest(http.MethodDelete, "/api/v1/drivers/1", nil))
	require.Equal(t, http.StatusOK, del.Code)

	w = postJSON(router, "/api/v1/drivers",
		`{"full_name":"Ana Torres","document_id":"30111222","vehicle_id":1,"plate_number":"DRV002"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}
