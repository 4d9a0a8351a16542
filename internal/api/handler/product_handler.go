package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/chaeso/delivery-api/internal/api/metrics"
	"github.com/chaeso/delivery-api/internal/core/domain"
	"github.com/chaeso/delivery-api/internal/core/ports"
)

// ProductHandler handles HTTP requests for the catalog. Write routes are
// mounted behind RequireStaff.
type ProductHandler struct {
	service ports.CatalogService
}

func NewProductHandler(service ports.CatalogService) *ProductHandler {
	return &ProductHandler{service: service}
}

type createProductRequest struct {
	Name     string           `json:"name"      validate:"required,max=100"`
	Value    *decimal.Decimal `json:"value"     validate:"required" swaggertype:"string" example:"19.90"`
	WeightKg string           `json:"weight_kg" validate:"required,max=100"`
	Photo    string           `json:"photo"     validate:"omitempty,max=255"`
}

type updateProductRequest struct {
	Name     *string          `json:"name"      validate:"omitempty,min=1,max=100"`
	Value    *decimal.Decimal `json:"value"     swaggertype:"string" example:"19.90"`
	WeightKg *string          `json:"weight_kg" validate:"omitempty,min=1,max=100"`
	Photo    *string          `json:"photo"     validate:"omitempty,max=255"`
}

// Create handles POST /products.
//
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProductRequest  true  "Product"
// @Success      201   {object}  domain.Product
// @Failure      400   {object}  ValidationErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Router       /products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	var req createProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	p, err := h.service.CreateProduct(c.Request().Context(), ports.CreateProductInput{
		Name:     req.Name,
		Value:    *req.Value,
		WeightKg: req.WeightKg,
		Photo:    req.Photo,
	})
	if err != nil {
		return err
	}
	metrics.ProductsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, p)
}

// List handles GET /products.
//
// @Summary      List products
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Product
// @Router       /products [get]
func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.service.ListProducts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

// Get handles GET /products/:id.
//
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Product ID"
// @Success      200  {object}  domain.Product
// @Failure      404  {object}  ErrorResponse
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.service.GetProduct(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Update handles PATCH /products/:id.
//
// @Summary      Partially update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                   true  "Product ID"
// @Param        body  body      updateProductRequest  true  "Fields to change"
// @Success      200   {object}  domain.Product
// @Failure      400   {object}  ValidationErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /products/{id} [patch]
func (h *ProductHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	p, err := h.service.UpdateProduct(c.Request().Context(), ports.UpdateProductInput{
		ID:       id,
		Name:     req.Name,
		Value:    req.Value,
		WeightKg: req.WeightKg,
		Photo:    req.Photo,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /products/:id. Orders keep existing without the product.
//
// @Summary      Delete a product
// @Tags         products
// @Security     BearerAuth
// @Param        id   path  int  true  "Product ID"
// @Success      204
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /products/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteProduct(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadPhoto handles PUT /products/:id/photo with a multipart "photo" file.
//
// @Summary      Upload a product photo
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      int   true  "Product ID"
// @Param        photo  formData  file  true  "Image file"
// @Success      200    {object}  domain.Product
// @Failure      400    {object}  ValidationErrorResponse
// @Failure      404    {object}  ErrorResponse
// @Failure      503    {object}  ErrorResponse
// @Router       /products/{id}/photo [put]
func (h *ProductHandler) UploadPhoto(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	fh, err := c.FormFile("photo")
	if err != nil {
		return domain.NewValidationError("photo", "this field is required")
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	p, err := h.service.AttachPhoto(c.Request().Context(), id, ports.PhotoUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}
