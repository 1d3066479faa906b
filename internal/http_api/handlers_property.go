package http_api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rahulbansal29/Landchain/internal/models"
)

// CreatePropertyRequest registers a new property for tokenization.
type CreatePropertyRequest struct {
	Name        string `json:"name" binding:"required"`
	Address     string `json:"address"`
	Description string `json:"description"`
	TotalValue  int64  `json:"totalValue"`
	TotalTokens int64  `json:"totalTokens" binding:"required"`
	TokenPrice  int64  `json:"tokenPrice" binding:"required"`
	MetadataURI string `json:"metadataURI"`
}

func propertyID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid property id %q: %w", c.Param("id"), models.ErrValidation)
	}
	return id, nil
}

// listProperties is a handler for the GET /api/properties endpoint.
func (s *HTTPServer) listProperties(c *gin.Context) {
	properties, err := s.inventory.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	views := make([]*models.PropertyView, 0, len(properties))
	for _, property := range properties {
		views = append(views, models.NewPropertyView(property))
	}
	c.JSON(http.StatusOK, gin.H{"properties": views})
}

// getProperty is a handler for the GET /api/properties/:id endpoint.
func (s *HTTPServer) getProperty(c *gin.Context) {
	id, err := propertyID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	property, err := s.inventory.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewPropertyView(property))
}

// createProperty is a handler for the POST /api/properties endpoint.
func (s *HTTPServer) createProperty(c *gin.Context) {
	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, fmt.Errorf("invalid request body: %v: %w", err, models.ErrValidation))
		return
	}

	property, err := s.inventory.Create(c.Request.Context(), &models.Property{
		Name:        req.Name,
		Address:     req.Address,
		Description: req.Description,
		TotalValue:  req.TotalValue,
		TotalTokens: req.TotalTokens,
		TokenPrice:  req.TokenPrice,
		MetadataURI: req.MetadataURI,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.NewPropertyView(property))
}

// updateProperty is a handler for the PUT /api/properties/:id endpoint.
func (s *HTTPServer) updateProperty(c *gin.Context) {
	id, err := propertyID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	var changes models.PropertyUpdate
	if err := c.ShouldBindJSON(&changes); err != nil {
		s.respondError(c, fmt.Errorf("invalid request body: %v: %w", err, models.ErrValidation))
		return
	}

	property, err := s.inventory.Update(c.Request.Context(), id, &changes)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewPropertyView(property))
}

// deleteProperty is a handler for the DELETE /api/properties/:id endpoint.
func (s *HTTPServer) deleteProperty(c *gin.Context) {
	id, err := propertyID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	property, err := s.inventory.Delete(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": models.NewPropertyView(property)})
}
