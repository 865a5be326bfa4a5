package admin

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/PANHAVORN22/Mini-mart/internal/es"
	"github.com/PANHAVORN22/Mini-mart/internal/images"
	"github.com/PANHAVORN22/Mini-mart/internal/logging"
	"github.com/PANHAVORN22/Mini-mart/internal/models"
)

const uploadDir = "uploads"

func parseID(s string) (uint, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(id), nil
}

type beerRequest struct {
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	Description    string  `json:"description"`
	Price          float64 `json:"price"`
	AlcoholContent float64 `json:"alcohol_content"`
	Volume         int     `json:"volume"`
	Stock          int     `json:"stock"`
	ImageURL       string  `json:"image_url"`
	IsPremium      bool    `json:"is_premium"`
}

func (h *AdminHandler) index(c echo.Context, beer *models.Beer) {
	if err := es.IndexBeer(c.Request().Context(), h.ES, beer); err != nil {
		c.Logger().Errorf("ES index error: %v", err)
	}
}

func (h *AdminHandler) CreateBeer(c echo.Context) error {
	var req beerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" || req.Type == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and type are required")
	}
	if req.Price < 0 || req.Stock < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "price and stock must be non-negative")
	}

	beer := models.Beer{
		Name:           req.Name,
		Type:           req.Type,
		Description:    req.Description,
		Price:          req.Price,
		AlcoholContent: req.AlcoholContent,
		Volume:         req.Volume,
		Stock:          req.Stock,
		ImageURL:       req.ImageURL,
		IsPremium:      req.IsPremium,
	}
	if err := h.DB.Create(&beer).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":   "product_created",
		"beerID": beer.ID,
		"name":   beer.Name,
	})
	h.index(c, &beer)

	return c.JSON(http.StatusCreated, beer)
}

func (h *AdminHandler) UpdateBeer(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req beerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var beer models.Beer
	if err := h.DB.First(&beer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "beer not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	beer.Name = req.Name
	beer.Type = req.Type
	beer.Description = req.Description
	beer.Price = req.Price
	beer.AlcoholContent = req.AlcoholContent
	beer.Volume = req.Volume
	beer.Stock = req.Stock
	beer.ImageURL = req.ImageURL
	beer.IsPremium = req.IsPremium

	if err := h.DB.Save(&beer).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":   "product_updated",
		"beerID": beer.ID,
		"name":   beer.Name,
	})
	h.index(c, &beer)

	return c.JSON(http.StatusOK, beer)
}

// UpdateStockPrice overwrites stock and price unconditionally,
// last-writer-wins.
func (h *AdminHandler) UpdateStockPrice(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Stock int     `json:"stock"`
		Price float64 `json:"price"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Stock < 0 || req.Price < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "stock and price must be non-negative")
	}

	res := h.DB.Model(&models.Beer{}).Where("id = ?", id).
		Updates(map[string]any{"stock": req.Stock, "price": req.Price})
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "beer not found")
	}

	var beer models.Beer
	if err := h.DB.First(&beer, id).Error; err == nil {
		h.index(c, &beer)
	}

	h.publish(c, map[string]any{
		"type":   "product_stock_updated",
		"beerID": id,
		"stock":  req.Stock,
		"price":  req.Price,
	})

	return c.JSON(http.StatusOK, echo.Map{"id": id, "stock": req.Stock, "price": req.Price})
}

func (h *AdminHandler) DeleteBeer(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.DB.Delete(&models.Beer{}, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":   "product_deleted",
		"beerID": id,
	})
	if err := es.DeleteBeer(c.Request().Context(), h.ES, id); err != nil {
		c.Logger().Errorf("ES delete error: %v", err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ExportBeers streams the catalog as an xlsx workbook.
func (h *AdminHandler) ExportBeers(c echo.Context) error {
	var beers []models.Beer
	if err := h.DB.Order("id ASC").Find(&beers).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Beers")
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	header := sheet.AddRow()
	for _, name := range []string{"ID", "Name", "Type", "Price", "ABV", "Volume", "Stock", "Premium"} {
		header.AddCell().Value = name
	}

	for _, b := range beers {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(b.ID))
		row.AddCell().Value = b.Name
		row.AddCell().Value = b.Type
		row.AddCell().SetFloat(b.Price)
		row.AddCell().SetFloat(b.AlcoholContent)
		row.AddCell().SetInt(b.Volume)
		row.AddCell().SetInt(b.Stock)
		row.AddCell().SetBool(b.IsPremium)
	}

	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="beers.xlsx"`)
	c.Response().WriteHeader(http.StatusOK)
	return file.Write(c.Response())
}

// UploadBeerImage accepts a multipart image, downscales it server-side and
// stores it under the uploads directory.
func (h *AdminHandler) UploadBeerImage(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "admin_upload_image")

	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var beer models.Beer
	if err := h.DB.First(&beer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "beer not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image file is required")
	}
	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read image")
	}
	defer src.Close()

	data, err := images.Downscale(src, images.MaxWidth)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unsupported image: "+err.Error())
	}

	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	path := filepath.Join(uploadDir, fmt.Sprintf("beer_%d.jpg", beer.ID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	imageURL := "/" + filepath.ToSlash(path)
	if err := h.DB.Model(&beer).Update("image_url", imageURL).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	l.Info("beer_image_uploaded", "beer_id", beer.ID, "bytes", len(data))
	return c.JSON(http.StatusOK, echo.Map{"id": beer.ID, "image_url": imageURL})
}
