package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grocery-backend/internal/service"
)

type addressRequest struct {
	Description string `json:"description" binding:"required"`
	City        string `json:"city" binding:"required"`
	Street      string `json:"street" binding:"required"`
	District    string `json:"district" binding:"required"`
	PostalCode  string `json:"postalCode"`
	Phone       string `json:"phone"`
	Notes       string `json:"notes"`
	IsDefault   bool   `json:"isDefault"`
}

func (r addressRequest) input() service.AddressInput {
	return service.AddressInput{
		Description: r.Description,
		City:        r.City,
		Street:      r.Street,
		District:    r.District,
		PostalCode:  r.PostalCode,
		Phone:       r.Phone,
		Notes:       r.Notes,
		IsDefault:   r.IsDefault,
	}
}

/*
GET /address/getAddresses
- default address first, then newest
*/
func GetAddresses(addresses *service.AddressService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /address/getAddresses"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		principal, ok := currentUser(c, log, route)
		if !ok {
			return
		}

		list, err := addresses.List(ctx, principal.UserID)
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"addresses": list})
	}
}

func CreateAddress(addresses *service.AddressService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /address/createAddress"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		principal, ok := currentUser(c, log, route)
		if !ok {
			return
		}

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		address, err := addresses.Create(ctx, principal.UserID, req.input())
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"address": address})
	}
}

func UpdateAddress(addresses *service.AddressService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /address/updateAddress/:id"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		principal, ok := currentUser(c, log, route)
		if !ok {
			return
		}
		addressID, ok := pathObjectID(c, "id")
		if !ok {
			respondWithError(c, log, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		address, err := addresses.Update(ctx, principal.UserID, addressID, req.input())
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"address": address})
	}
}

func DeleteAddress(addresses *service.AddressService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /address/deleteAddress/:id"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		principal, ok := currentUser(c, log, route)
		if !ok {
			return
		}
		addressID, ok := pathObjectID(c, "id")
		if !ok {
			respondWithError(c, log, http.StatusBadRequest, route, "invalid id")
			return
		}

		if err := addresses.Delete(ctx, principal.UserID, addressID); err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "address deleted"})
	}
}

/*
PUT /address/setDefault/:id
- every other address of the user loses its default flag
*/
func SetDefaultAddress(addresses *service.AddressService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /address/setDefault/:id"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		principal, ok := currentUser(c, log, route)
		if !ok {
			return
		}
		addressID, ok := pathObjectID(c, "id")
		if !ok {
			respondWithError(c, log, http.StatusBadRequest, route, "invalid id")
			return
		}

		address, err := addresses.SetDefault(ctx, principal.UserID, addressID)
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"address": address})
	}
}
