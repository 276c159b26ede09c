package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/northmart/backend-go/models"
	"github.com/northmart/backend-go/repository"
	"github.com/northmart/backend-go/services"
	"github.com/northmart/backend-go/utils"
)

type ProductHandler struct {
	catalog *services.CatalogService
}

func NewProductHandler(catalog *services.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// GetProducts lists the catalog with filtering, search and pagination.
func (h *ProductHandler) GetProducts(c echo.Context) error {
	filter := repository.ProductFilter{
		Category: models.ProductCategory(c.QueryParam("category")),
		Search:   c.QueryParam("search"),
		SortBy:   c.QueryParam("sort"),
	}
	filter.MinPrice, _ = strconv.ParseFloat(c.QueryParam("minPrice"), 64)
	filter.MaxPrice, _ = strconv.ParseFloat(c.QueryParam("maxPrice"), 64)
	filter.Page, _ = strconv.Atoi(c.QueryParam("page"))
	filter.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	list, err := h.catalog.ListProducts(c.Request().Context(), filter)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, http.StatusOK, "Products retrieved successfully", list)
}

func (h *ProductHandler) GetFeaturedProducts(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	products, err := h.catalog.FeaturedProducts(c.Request().Context(), limit)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, http.StatusOK, "Featured products retrieved successfully", map[string]interface{}{"products": products})
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := pathObjectID(c, "id")
	if err != nil {
		return utils.Fail(c, utils.BadRequest("Invalid product ID"))
	}

	product, err := h.catalog.GetProduct(c.Request().Context(), id)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, http.StatusOK, "Product retrieved successfully", map[string]interface{}{"product": product})
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var product models.Product
	if err := c.Bind(&product); err != nil {
		return utils.Fail(c, utils.BadRequest("Invalid request format"))
	}

	if err := h.catalog.CreateProduct(c.Request().Context(), &product); err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, http.StatusCreated, "Product created successfully", map[string]interface{}{"product": product})
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := pathObjectID(c, "id")
	if err != nil {
		return utils.Fail(c, utils.BadRequest("Invalid product ID"))
	}

	var upd services.ProductUpdate
	if err := c.Bind(&upd); err != nil {
		return utils.Fail(c, utils.BadRequest("Invalid request format"))
	}

	product, err := h.catalog.UpdateProduct(c.Request().Context(), id, upd)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, http.StatusOK, "Product updated successfully", map[string]interface{}{"product": product})
}

// DeleteProduct soft-deletes: the product is deactivated, never removed.
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := pathObjectID(c, "id")
	if err != nil {
		return utils.Fail(c, utils.BadRequest("Invalid product ID"))
	}

	if _, err := h.catalog.DeleteProduct(c.Request().Context(), id); err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, http.StatusOK, "Product deleted successfully", nil)
}

func (h *ProductHandler) AddReview(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Fail(c, utils.Unauthorized("User not authenticated"))
	}

	id, err := pathObjectID(c, "id")
	if err != nil {
		return utils.Fail(c, utils.BadRequest("Invalid product ID"))
	}

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, utils.BadRequest("Invalid request format"))
	}

	product, err := h.catalog.AddReview(c.Request().Context(), id, userID, req.Rating, req.Comment)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, http.StatusCreated, "Review added successfully", map[string]interface{}{"product": product})
}

// AdjustStock is the admin inventory correction endpoint.
func (h *ProductHandler) AdjustStock(c echo.Context) error {
	id, err := pathObjectID(c, "id")
	if err != nil {
		return utils.Fail(c, utils.BadRequest("Invalid product ID"))
	}

	var req struct {
		Delta int `json:"delta"`
	}
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, utils.BadRequest("Invalid request format"))
	}
	if req.Delta == 0 {
		return utils.Fail(c, utils.BadRequest("Delta must be non-zero"))
	}

	product, err := h.catalog.AdjustStock(c.Request().Context(), id, req.Delta)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, http.StatusOK, "Stock adjusted successfully", map[string]interface{}{"product": product})
}
