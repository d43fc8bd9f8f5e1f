package handlers

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/shophub-backend/internal/database/dbtest"
	"github.com/javajoker/shophub-backend/internal/models"
	"github.com/javajoker/shophub-backend/internal/services"
)

type failingImageStore struct{}

func (failingImageStore) UploadFile(context.Context, multipart.File, *multipart.FileHeader, services.UploadOptions) (*services.UploadResult, error) {
	return nil, errors.New("bucket unavailable")
}

func imageRequest(t *testing.T, productID uuid.UUID) *http.Request {
	t.Helper()
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("image", "shirt.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\n"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/products/"+productID.String()+"/image", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	return req
}

func TestUploadProductImageStorageFailure(t *testing.T) {
	db := dbtest.Open(t)
	product := models.Product{Name: "Shirt", Price: 10, StockQuantity: 1}
	require.NoError(t, db.Create(&product).Error)

	products := services.NewProductService(db, failingImageStore{})
	h := NewAdminHandler(products, services.NewCouponService(db), nil)
	r := gin.New()
	r.POST("/admin/products/:id/image", h.UploadProductImage)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, imageRequest(t, product.ID))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "EXTERNAL_SERVICE_ERROR")
	assert.NotContains(t, w.Body.String(), "bucket unavailable")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, imageRequest(t, uuid.New()))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
