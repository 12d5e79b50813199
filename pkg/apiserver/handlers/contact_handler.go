package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/clientdesk/clientdesk/pkg/metrics"
	"github.com/clientdesk/clientdesk/pkg/model"
	"github.com/clientdesk/clientdesk/pkg/store/postgres"
)

type ContactHandler struct {
	repo   *postgres.ContactRepository
	logger *zap.Logger
}

func NewContactHandler(db *postgres.Store, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{repo: postgres.NewContactRepository(db.DB()), logger: logger}
}

type contactRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Position string `json:"position"`
}

type contactResponse struct {
	ID        uint   `json:"id"`
	ClientID  uint   `json:"client_id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Position  string `json:"position,omitempty"`
	IsPrimary bool   `json:"is_primary"`
	Info      string `json:"info"`
}

func (h *ContactHandler) Create(c *gin.Context) {
	clientID, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	contact := &model.Contact{
		ClientID: clientID,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Position: req.Position,
	}

	if err := h.repo.Create(c.Request.Context(), contact); err != nil {
		h.logger.Error("failed to create contact", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create contact"})
		return
	}

	metrics.RecordsCreated.WithLabelValues("contact").Inc()
	c.JSON(http.StatusCreated, mapContact(contact))
}

func (h *ContactHandler) ListByClient(c *gin.Context) {
	clientID, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	contacts, err := h.repo.ListByClient(c.Request.Context(), clientID)
	if err != nil {
		h.logger.Error("failed to list contacts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list contacts"})
		return
	}

	response := make([]contactResponse, 0, len(contacts))
	for i := range contacts {
		response = append(response, mapContact(&contacts[i]))
	}

	c.JSON(http.StatusOK, response)
}

func (h *ContactHandler) Update(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}

	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	contact, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
			return
		}
		h.logger.Error("failed to load contact", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update contact"})
		return
	}

	contact.Name = req.Name
	contact.Email = req.Email
	contact.Phone = req.Phone
	contact.Position = req.Position

	if err := h.repo.Update(c.Request.Context(), contact); err != nil {
		h.logger.Error("failed to update contact", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update contact"})
		return
	}

	c.JSON(http.StatusOK, mapContact(contact))
}

func (h *ContactHandler) Delete(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}

	if err := h.repo.SoftDelete(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
			return
		}
		h.logger.Error("failed to delete contact", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete contact"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// MakePrimary promotes the contact to its client's single primary contact.
func (h *ContactHandler) MakePrimary(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}

	if err := h.repo.MakePrimary(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
			return
		}
		h.logger.Error("failed to make contact primary", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to make contact primary"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "primary"})
}

func mapContact(contact *model.Contact) contactResponse {
	return contactResponse{
		ID:        contact.ID,
		ClientID:  contact.ClientID,
		Name:      contact.Name,
		Email:     contact.Email,
		Phone:     contact.Phone,
		Position:  contact.Position,
		IsPrimary: contact.IsPrimary,
		Info:      contact.FullContactInfo(),
	}
}
