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

type ClientHandler struct {
	repo   *postgres.ClientRepository
	logger *zap.Logger
}

func NewClientHandler(db *postgres.Store, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{repo: postgres.NewClientRepository(db.DB()), logger: logger}
}

type clientRequest struct {
	Name         string `json:"name" binding:"required"`
	Company      string `json:"company"`
	AddressLine1 string `json:"address_line_1"`
	AddressLine2 string `json:"address_line_2"`
	PostalCode   string `json:"postal_code"`
	City         string `json:"city"`
	Country      string `json:"country"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Website      string `json:"website"`
	Notes        string `json:"notes"`
}

type clientResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Company      string `json:"company,omitempty"`
	AddressLine1 string `json:"address_line_1,omitempty"`
	AddressLine2 string `json:"address_line_2,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	City         string `json:"city,omitempty"`
	Country      string `json:"country,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Website      string `json:"website,omitempty"`
	Notes        string `json:"notes,omitempty"`
	FullAddress  string `json:"full_address"`
}

type clientDetailResponse struct {
	clientResponse
	Contacts       []contactResponse `json:"contacts"`
	PrimaryContact *contactResponse  `json:"primary_contact,omitempty"`
}

func (h *ClientHandler) Create(c *gin.Context) {
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	client := &model.Client{
		Name:         req.Name,
		Company:      req.Company,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		PostalCode:   req.PostalCode,
		City:         req.City,
		Country:      req.Country,
		Email:        req.Email,
		Phone:        req.Phone,
		Website:      req.Website,
		Notes:        req.Notes,
	}

	if err := h.repo.Create(c.Request.Context(), client); err != nil {
		h.logger.Error("failed to create client", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create client"})
		return
	}

	metrics.RecordsCreated.WithLabelValues("client").Inc()
	c.JSON(http.StatusCreated, mapClient(client))
}

func (h *ClientHandler) List(c *gin.Context) {
	limit := parseLimit(c.Query("limit"), 20)
	offset := parseOffset(c.Query("offset"))

	clients, total, err := h.repo.List(c.Request.Context(), c.Query("search"), limit, offset)
	if err != nil {
		h.logger.Error("failed to list clients", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list clients"})
		return
	}

	response := make([]clientResponse, 0, len(clients))
	for i := range clients {
		response = append(response, mapClient(&clients[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"clients": response,
		"total":   total,
	})
}

func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	client, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
			return
		}
		h.logger.Error("failed to get client", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get client"})
		return
	}

	contacts := make([]contactResponse, 0, len(client.Contacts))
	for i := range client.Contacts {
		contacts = append(contacts, mapContact(&client.Contacts[i]))
	}

	detail := clientDetailResponse{
		clientResponse: mapClient(client),
		Contacts:       contacts,
	}
	if primary := client.PrimaryContact(); primary != nil {
		mapped := mapContact(primary)
		detail.PrimaryContact = &mapped
	}

	c.JSON(http.StatusOK, detail)
}

func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	client, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
			return
		}
		h.logger.Error("failed to load client", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update client"})
		return
	}

	client.Name = req.Name
	client.Company = req.Company
	client.AddressLine1 = req.AddressLine1
	client.AddressLine2 = req.AddressLine2
	client.PostalCode = req.PostalCode
	client.City = req.City
	client.Country = req.Country
	client.Email = req.Email
	client.Phone = req.Phone
	client.Website = req.Website
	client.Notes = req.Notes

	if err := h.repo.Update(c.Request.Context(), client); err != nil {
		h.logger.Error("failed to update client", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update client"})
		return
	}

	c.JSON(http.StatusOK, mapClient(client))
}

// Delete soft-deletes by default; ?hard=true removes the client and its
// dependents permanently.
func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	var err error
	if c.Query("hard") == "true" {
		err = h.repo.HardDelete(c.Request.Context(), id)
	} else {
		err = h.repo.SoftDelete(c.Request.Context(), id)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
			return
		}
		h.logger.Error("failed to delete client", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete client"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func mapClient(client *model.Client) clientResponse {
	return clientResponse{
		ID:           client.ID,
		Name:         client.Name,
		Company:      client.Company,
		AddressLine1: client.AddressLine1,
		AddressLine2: client.AddressLine2,
		PostalCode:   client.PostalCode,
		City:         client.City,
		Country:      client.Country,
		Email:        client.Email,
		Phone:        client.Phone,
		Website:      client.Website,
		Notes:        client.Notes,
		FullAddress:  client.FullAddress(),
	}
}
