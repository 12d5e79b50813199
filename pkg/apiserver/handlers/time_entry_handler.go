package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/clientdesk/clientdesk/pkg/eventbus"
	"github.com/clientdesk/clientdesk/pkg/metrics"
	"github.com/clientdesk/clientdesk/pkg/model"
	"github.com/clientdesk/clientdesk/pkg/store/postgres"
)

type TimeEntryHandler struct {
	repo   *postgres.TimeEntryRepository
	logger *zap.Logger
	bus    *eventbus.Bus
}

func NewTimeEntryHandler(db *postgres.Store, logger *zap.Logger, bus *eventbus.Bus) *TimeEntryHandler {
	return &TimeEntryHandler{repo: postgres.NewTimeEntryRepository(db.DB()), logger: logger, bus: bus}
}

type timeEntryRequest struct {
	UserID      uint   `json:"user_id" binding:"required"`
	Description string `json:"description"`
	Date        string `json:"date" binding:"required"`
	Hours       string `json:"hours" binding:"required"`
	Billable    *bool  `json:"billable"`
}

type timeEntryResponse struct {
	ID          uint    `json:"id"`
	ProjectID   uint    `json:"project_id"`
	UserID      uint    `json:"user_id"`
	Description string  `json:"description,omitempty"`
	Date        string  `json:"date"`
	Hours       string  `json:"hours"`
	Billable    bool    `json:"billable"`
	Invoiced    bool    `json:"invoiced"`
	InvoiceID   *uint   `json:"invoice_id,omitempty"`
}

func (h *TimeEntryHandler) Create(c *gin.Context) {
	projectID, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req timeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	date, ok := parseDate(req.Date)
	if !ok || date == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}
	hours, ok := parseAmount(req.Hours)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hours"})
		return
	}

	billable := true
	if req.Billable != nil {
		billable = *req.Billable
	}

	entry := &model.TimeEntry{
		ProjectID:   projectID,
		UserID:      req.UserID,
		Description: req.Description,
		Date:        *date,
		Hours:       hours,
		Billable:    billable,
	}

	if err := h.repo.Create(c.Request.Context(), entry); err != nil {
		h.logger.Error("failed to create time entry", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create time entry"})
		return
	}

	metrics.RecordsCreated.WithLabelValues("time_entry").Inc()
	h.publishLogged(c, entry)
	c.JSON(http.StatusCreated, mapTimeEntry(entry))
}

func (h *TimeEntryHandler) ListByProject(c *gin.Context) {
	projectID, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	limit := parseLimit(c.Query("limit"), 50)
	offset := parseOffset(c.Query("offset"))

	entries, total, err := h.repo.ListByProject(c.Request.Context(), projectID, limit, offset)
	if err != nil {
		h.logger.Error("failed to list time entries", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list time entries"})
		return
	}

	response := make([]timeEntryResponse, 0, len(entries))
	for i := range entries {
		response = append(response, mapTimeEntry(&entries[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"time_entries": response,
		"total":        total,
	})
}

func (h *TimeEntryHandler) Update(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid time entry id"})
		return
	}

	var req timeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	entry, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "time entry not found"})
			return
		}
		h.logger.Error("failed to load time entry", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update time entry"})
		return
	}

	date, ok := parseDate(req.Date)
	if !ok || date == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}
	hours, ok := parseAmount(req.Hours)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hours"})
		return
	}

	entry.UserID = req.UserID
	entry.Description = req.Description
	entry.Date = *date
	entry.Hours = hours
	if req.Billable != nil {
		entry.Billable = *req.Billable
	}

	if err := h.repo.Update(c.Request.Context(), entry); err != nil {
		h.logger.Error("failed to update time entry", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update time entry"})
		return
	}

	c.JSON(http.StatusOK, mapTimeEntry(entry))
}

func (h *TimeEntryHandler) Delete(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid time entry id"})
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "time entry not found"})
			return
		}
		h.logger.Error("failed to delete time entry", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete time entry"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type markInvoicedRequest struct {
	InvoiceID uint `json:"invoice_id" binding:"required"`
}

// MarkInvoiced stamps the entry as billed by the given invoice reference.
// The invoice subsystem itself does not exist yet; this only records the
// linkage.
func (h *TimeEntryHandler) MarkInvoiced(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid time entry id"})
		return
	}

	var req markInvoicedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if err := h.repo.MarkInvoiced(c.Request.Context(), id, req.InvoiceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "time entry not found"})
			return
		}
		h.logger.Error("failed to mark time entry invoiced", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark time entry invoiced"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "invoiced"})
}

func (h *TimeEntryHandler) publishLogged(c *gin.Context, entry *model.TimeEntry) {
	if h.bus == nil {
		return
	}
	event, err := eventbus.NewEvent("time_entry_logged", eventbus.TimeEntryEvent{
		TimeEntryID: entry.ID,
		ProjectID:   entry.ProjectID,
		UserID:      entry.UserID,
		Hours:       entry.Hours.String(),
		Billable:    entry.Billable,
	})
	if err != nil {
		return
	}
	_ = h.bus.Publish(c.Request.Context(), eventbus.ChannelTimeEntry, event)
}

func mapTimeEntry(entry *model.TimeEntry) timeEntryResponse {
	return timeEntryResponse{
		ID:          entry.ID,
		ProjectID:   entry.ProjectID,
		UserID:      entry.UserID,
		Description: entry.Description,
		Date:        entry.Date.Format(dateLayout),
		Hours:       entry.Hours.StringFixed(2),
		Billable:    entry.Billable,
		Invoiced:    entry.Invoiced,
		InvoiceID:   entry.InvoiceID,
	}
}
