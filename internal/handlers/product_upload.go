package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"grocery-backend/internal/service"
)

const maxMultipartMemory = 32 << 20

// lastPostForm returns the last value of a repeated form field; checkbox
// widgets post a hidden "false" followed by the checked value.
func lastPostForm(c *gin.Context, key string) (string, bool) {
	values, ok := c.GetPostFormArray(key)
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[len(values)-1], true
}

func formString(c *gin.Context, key string) *string {
	value, ok := lastPostForm(c, key)
	if !ok {
		return nil
	}
	value = strings.TrimSpace(value)
	return &value
}

func formFloat(c *gin.Context, key string) (*float64, error) {
	value, ok := lastPostForm(c, key)
	if !ok {
		return nil, nil
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", key)
	}
	return &parsed, nil
}

func formInt(c *gin.Context, key string) (*int, error) {
	value, ok := lastPostForm(c, key)
	if !ok {
		return nil, nil
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", key)
	}
	return &parsed, nil
}

func formBool(c *gin.Context, key string) (*bool, error) {
	value, ok := lastPostForm(c, key)
	if !ok {
		return nil, nil
	}
	parsed, err := parseBoolValue(value)
	if err != nil {
		return nil, fmt.Errorf("%s must be a boolean", key)
	}
	return &parsed, nil
}

// parseMultipartProductRequest reads the admin product form. Absent fields
// stay nil so the same parser serves create and partial update. A submitted
// image is saved immediately; the caller discards it if the write fails.
func parseMultipartProductRequest(c *gin.Context, images *ImageStore) (service.ProductInput, error) {
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		return service.ProductInput{}, err
	}

	var (
		input service.ProductInput
		err   error
	)
	input.Name = formString(c, "name")
	input.Description = formString(c, "description")
	input.Barcode = formString(c, "barcode")
	input.Brand = formString(c, "brand")

	if input.Price, err = formFloat(c, "price"); err != nil {
		return service.ProductInput{}, err
	}
	if input.SalePrice, err = formFloat(c, "salePrice"); err != nil {
		return service.ProductInput{}, err
	}
	if input.Stock, err = formInt(c, "stock"); err != nil {
		return service.ProductInput{}, err
	}
	if input.SaleEnabled, err = formBool(c, "saleEnabled"); err != nil {
		return service.ProductInput{}, err
	}
	if input.IsActive, err = formBool(c, "isActive"); err != nil {
		return service.ProductInput{}, err
	}
	if input.IsCampaign, err = formBool(c, "isCampaign"); err != nil {
		return service.ProductInput{}, err
	}

	if categoryIDs, ok := c.GetPostFormArray("category_id"); ok {
		input.CategoryIDs = categoryIDs
	}

	file, err := c.FormFile("image")
	switch {
	case err == nil:
		imagePath, err := images.Save(file)
		if err != nil {
			return service.ProductInput{}, err
		}
		input.ImagePath = &imagePath
	case errors.Is(err, http.ErrMissingFile), strings.Contains(err.Error(), "no such file"):
	default:
		return service.ProductInput{}, err
	}

	return input, nil
}

func parseBoolValue(value string) (bool, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "on" {
		return true, nil
	}
	return strconv.ParseBool(value)
}
