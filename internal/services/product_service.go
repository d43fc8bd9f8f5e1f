// internal/services/product_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/shophub-backend/internal/models"
	"github.com/javajoker/shophub-backend/internal/utils"
)

// ImageStore persists uploaded product images and returns their public URL.
type ImageStore interface {
	UploadFile(ctx context.Context, file multipart.File, header *multipart.FileHeader, options UploadOptions) (*UploadResult, error)
}

type ProductService struct {
	db     *gorm.DB
	images ImageStore
}

type ProductSearchParams struct {
	Query      string
	CategoryID *uuid.UUID
	PriceMin   *float64
	PriceMax   *float64
	utils.PaginationParams
}

// ProductPage is the catalog listing body. HasMore is a heuristic: a full
// page means there may be another one.
type ProductPage struct {
	Items    []models.Product `json:"items"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
	HasMore  bool             `json:"hasMore"`
}

type CreateProductRequest struct {
	Name          string     `json:"name" validate:"required,min=1,max=255"`
	Price         float64    `json:"price" validate:"gt=0"`
	StockQuantity int        `json:"stock_quantity" validate:"gte=0"`
	Description   *string    `json:"description,omitempty"`
	ImageURL      *string    `json:"image_url,omitempty" validate:"omitempty,url"`
	CategoryID    *uuid.UUID `json:"category_id,omitempty"`
}

// UpdateProductRequest only touches the fields that are present. An empty
// category_id clears the category.
type UpdateProductRequest struct {
	Name          *string  `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Price         *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	StockQuantity *int     `json:"stock_quantity,omitempty" validate:"omitempty,gte=0"`
	Description   *string  `json:"description,omitempty"`
	ImageURL      *string  `json:"image_url,omitempty"`
	CategoryID    *string  `json:"category_id,omitempty"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

func NewProductService(db *gorm.DB, images ImageStore) *ProductService {
	return &ProductService{
		db:     db,
		images: images,
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in user input match literally.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

func (s *ProductService) SearchProducts(ctx context.Context, params ProductSearchParams) (*ProductPage, error) {
	query := s.db.WithContext(ctx).Model(&models.Product{}).Preload("Category")

	if q := strings.TrimSpace(params.Query); q != "" {
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(q))+"%")
	}

	if params.CategoryID != nil {
		query = query.Where("category_id = ?", *params.CategoryID)
	}

	if params.PriceMin != nil {
		query = query.Where("price >= ?", *params.PriceMin)
	}

	if params.PriceMax != nil {
		query = query.Where("price <= ?", *params.PriceMax)
	}

	query = utils.ApplyPagination(query.Order("created_at DESC"), params.PaginationParams)

	products := []models.Product{}
	if err := query.Find(&products).Error; err != nil {
		return nil, utils.PersistenceError("failed to fetch products", err)
	}

	return &ProductPage{
		Items:    products,
		Page:     params.Page,
		PageSize: params.PageSize,
		HasMore:  len(products) == params.PageSize,
	}, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("Product")
		}
		return nil, utils.PersistenceError("failed to fetch product", err)
	}
	return &product, nil
}

// GetProductsByIDs returns the products found, keyed by id. Missing ids are
// simply absent from the map.
func (s *ProductService) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	var products []models.Product
	if len(ids) > 0 {
		if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
			return nil, err
		}
	}

	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

// Admin operations

// ListAllProducts is the admin listing: newest first with the category joined.
func (s *ProductService) ListAllProducts(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	if err := s.db.WithContext(ctx).Preload("Category").Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, utils.PersistenceError("failed to list products", err)
	}
	return products, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, utils.ValidationError(validationMessage(err))
	}

	db := s.db.WithContext(ctx)
	if err := s.ensureCategory(db, req.CategoryID); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:          strings.TrimSpace(req.Name),
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		Description:   req.Description,
		ImageURL:      req.ImageURL,
		CategoryID:    req.CategoryID,
	}

	if err := db.Create(product).Error; err != nil {
		return nil, utils.PersistenceError("failed to create product", err)
	}

	logrus.WithFields(logrus.Fields{
		"product_id": product.ID,
		"name":       product.Name,
	}).Info("Product created")
	return s.GetProduct(ctx, product.ID)
}

func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, utils.ValidationError(validationMessage(err))
	}

	db := s.db.WithContext(ctx)

	var product models.Product
	if err := db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("Product")
		}
		return nil, utils.PersistenceError("failed to fetch product", err)
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.StockQuantity != nil {
		updates["stock_quantity"] = *req.StockQuantity
	}
	if req.Description != nil {
		updates["description"] = nullableString(*req.Description)
	}
	if req.ImageURL != nil {
		updates["image_url"] = nullableString(*req.ImageURL)
	}
	if req.CategoryID != nil {
		raw := strings.TrimSpace(*req.CategoryID)
		if raw == "" {
			updates["category_id"] = nil
		} else {
			categoryID, err := uuid.Parse(raw)
			if err != nil {
				return nil, utils.ValidationError("invalid category_id")
			}
			if err := s.ensureCategory(db, &categoryID); err != nil {
				return nil, err
			}
			updates["category_id"] = categoryID
		}
	}

	if len(updates) > 0 {
		if err := db.Model(&product).Updates(updates).Error; err != nil {
			return nil, utils.PersistenceError("failed to update product", err)
		}
	}

	return s.GetProduct(ctx, id)
}

func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	db := s.db.WithContext(ctx)

	var referenced int64
	if err := db.Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&referenced).Error; err != nil {
		return utils.PersistenceError("failed to check product usage", err)
	}
	if referenced > 0 {
		return utils.ValidationError("product is referenced by existing orders")
	}

	result := db.Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return utils.PersistenceError("failed to delete product", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.NotFoundError("Product")
	}
	return nil
}

// UploadProductImage stores the image and points the product at it.
func (s *ProductService) UploadProductImage(ctx context.Context, id uuid.UUID, file multipart.File, header *multipart.FileHeader) (*models.Product, error) {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return nil, err
	}
	if s.images == nil {
		return nil, utils.ExternalServiceError("image storage is not configured", nil)
	}

	result, err := s.images.UploadFile(ctx, file, header, ProductImageUploadOptions())
	if err != nil {
		if errors.Is(err, ErrInvalidUpload) {
			return nil, utils.ValidationError(err.Error())
		}
		return nil, utils.ExternalServiceError("failed to upload image", err)
	}

	if err := s.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("image_url", result.URL).Error; err != nil {
		return nil, utils.PersistenceError("failed to save image url", err)
	}

	return s.GetProduct(ctx, id)
}

// Categories

func (s *ProductService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	if err := s.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, utils.PersistenceError("failed to list categories", err)
	}
	return categories, nil
}

func (s *ProductService) CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, utils.ValidationError(validationMessage(err))
	}

	db := s.db.WithContext(ctx)
	name := strings.TrimSpace(req.Name)

	var existing int64
	if err := db.Model(&models.Category{}).Where("LOWER(name) = ?", strings.ToLower(name)).Count(&existing).Error; err != nil {
		return nil, utils.PersistenceError("failed to check category", err)
	}
	if existing > 0 {
		return nil, utils.ValidationError(fmt.Sprintf("category %q already exists", name))
	}

	category := &models.Category{Name: name}
	if err := db.Create(category).Error; err != nil {
		return nil, utils.PersistenceError("failed to create category", err)
	}
	return category, nil
}

func (s *ProductService) ensureCategory(db *gorm.DB, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	var count int64
	if err := db.Model(&models.Category{}).Where("id = ?", *id).Count(&count).Error; err != nil {
		return utils.PersistenceError("failed to check category", err)
	}
	if count == 0 {
		return utils.ValidationError("unknown category_id")
	}
	return nil
}

func nullableString(value string) *string {
	if value = strings.TrimSpace(value); value == "" {
		return nil
	}
	return &value
}
