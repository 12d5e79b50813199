package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/clientdesk/clientdesk/pkg/config"
	"github.com/clientdesk/clientdesk/pkg/eventbus"
	"github.com/clientdesk/clientdesk/pkg/metrics"
	"github.com/clientdesk/clientdesk/pkg/model"
	"github.com/clientdesk/clientdesk/pkg/store/postgres"
)

type QuoteHandler struct {
	repo   *postgres.QuoteRepository
	cfg    config.QuoteConfig
	logger *zap.Logger
	bus    *eventbus.Bus
}

func NewQuoteHandler(db *postgres.Store, cfg config.QuoteConfig, logger *zap.Logger, bus *eventbus.Bus) *QuoteHandler {
	return &QuoteHandler{
		repo:   postgres.NewQuoteRepository(db.DB(), cfg),
		cfg:    cfg,
		logger: logger,
		bus:    bus,
	}
}

type quoteCreateRequest struct {
	ClientID    uint   `json:"client_id" binding:"required"`
	ProjectID   *uint  `json:"project_id"`
	TaxRate     *int64 `json:"tax_rate"` // basis points
	ValidUntil  string `json:"valid_until"`
	Notes       string `json:"notes"`
	ClientNotes string `json:"client_notes"`
}

type quoteUpdateRequest struct {
	ProjectID   *uint  `json:"project_id"`
	TaxRate     *int64 `json:"tax_rate"`
	ValidUntil  string `json:"valid_until"`
	Notes       string `json:"notes"`
	ClientNotes string `json:"client_notes"`
}

type quoteResponse struct {
	ID          uint    `json:"id"`
	ClientID    uint    `json:"client_id"`
	ProjectID   *uint   `json:"project_id,omitempty"`
	QuoteNumber string  `json:"quote_number"`
	Version     int     `json:"version"`
	Status      string  `json:"status"`
	ValidUntil  *string `json:"valid_until,omitempty"`
	SentAt      *string `json:"sent_at,omitempty"`
	AcceptedAt  *string `json:"accepted_at,omitempty"`
	Subtotal    int64   `json:"subtotal"`
	TaxRate     int64   `json:"tax_rate"`
	TaxAmount   int64   `json:"tax_amount"`
	Total       int64   `json:"total"`
	Expired     bool    `json:"expired"`
}

type quoteDetailResponse struct {
	quoteResponse
	Notes          string              `json:"notes,omitempty"`
	ClientNotes    string              `json:"client_notes,omitempty"`
	Items          []quoteItemResponse `json:"items"`
	CanBeEdited    bool                `json:"can_be_edited"`
	CanBeConverted bool                `json:"can_be_converted"`
}

type quoteItemRequest struct {
	Description string `json:"description" binding:"required"`
	Quantity    string `json:"quantity"`
	Unit        string `json:"unit"`
	UnitPrice   *int64 `json:"unit_price"` // cents
	SortOrder   int    `json:"sort_order"`
}

type quoteItemResponse struct {
	ID          uint   `json:"id"`
	QuoteID     uint   `json:"quote_id"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Unit        string `json:"unit"`
	UnitPrice   int64  `json:"unit_price"`
	Total       int64  `json:"total"`
	SortOrder   int    `json:"sort_order"`
}

func (h *QuoteHandler) Create(c *gin.Context) {
	var req quoteCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	taxRate := model.DefaultTaxRateBps
	if req.TaxRate != nil {
		if *req.TaxRate < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tax_rate"})
			return
		}
		taxRate = *req.TaxRate
	}

	validUntil, ok := parseDate(req.ValidUntil)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid valid_until"})
		return
	}
	if validUntil == nil && h.cfg.DefaultValidityDays > 0 {
		date := time.Now().AddDate(0, 0, h.cfg.DefaultValidityDays)
		validUntil = &date
	}

	quote := &model.Quote{
		ClientID:    req.ClientID,
		ProjectID:   req.ProjectID,
		Version:     1,
		Status:      model.QuoteDraft,
		ValidUntil:  validUntil,
		Notes:       req.Notes,
		ClientNotes: req.ClientNotes,
		TaxRate:     taxRate,
	}

	if err := h.repo.Create(c.Request.Context(), quote); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "quote number already taken"})
			return
		}
		h.logger.Error("failed to create quote", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create quote"})
		return
	}

	metrics.RecordsCreated.WithLabelValues("quote").Inc()
	c.JSON(http.StatusCreated, mapQuote(quote))
}

func (h *QuoteHandler) List(c *gin.Context) {
	var clientID uint
	if value := c.Query("client_id"); value != "" {
		parsed, ok := parseID(value)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client_id"})
			return
		}
		clientID = parsed
	}

	var status *model.QuoteStatus
	if value := c.Query("status"); value != "" {
		parsed := model.QuoteStatus(value)
		if !model.ValidQuoteStatus(parsed) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		status = &parsed
	}

	limit := parseLimit(c.Query("limit"), 20)
	offset := parseOffset(c.Query("offset"))

	quotes, total, err := h.repo.List(c.Request.Context(), clientID, status, limit, offset)
	if err != nil {
		h.logger.Error("failed to list quotes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list quotes"})
		return
	}

	response := make([]quoteResponse, 0, len(quotes))
	for i := range quotes {
		response = append(response, mapQuote(&quotes[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"quotes": response,
		"total":  total,
	})
}

// ListByClient lists a client's quotes, newest first.
func (h *QuoteHandler) ListByClient(c *gin.Context) {
	clientID, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	limit := parseLimit(c.Query("limit"), 20)
	offset := parseOffset(c.Query("offset"))

	quotes, total, err := h.repo.List(c.Request.Context(), clientID, nil, limit, offset)
	if err != nil {
		h.logger.Error("failed to list quotes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list quotes"})
		return
	}

	response := make([]quoteResponse, 0, len(quotes))
	for i := range quotes {
		response = append(response, mapQuote(&quotes[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"quotes": response,
		"total":  total,
	})
}

func (h *QuoteHandler) Get(c *gin.Context) {
	quote, ok := h.loadQuote(c)
	if !ok {
		return
	}

	items := make([]quoteItemResponse, 0, len(quote.Items))
	for i := range quote.Items {
		items = append(items, mapQuoteItem(&quote.Items[i]))
	}

	detail := quoteDetailResponse{
		quoteResponse:  mapQuote(quote),
		Notes:          quote.Notes,
		ClientNotes:    quote.ClientNotes,
		Items:          items,
		CanBeEdited:    quote.CanBeEdited(),
		CanBeConverted: quote.CanBeConverted(),
	}

	c.JSON(http.StatusOK, detail)
}

// Update edits quote metadata. Only drafts can be edited; everything past
// draft is immutable by contract.
func (h *QuoteHandler) Update(c *gin.Context) {
	quote, ok := h.loadQuote(c)
	if !ok {
		return
	}
	if !quote.CanBeEdited() {
		c.JSON(http.StatusConflict, gin.H{"error": "quote is not editable"})
		return
	}

	var req quoteUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	validUntil, ok := parseDate(req.ValidUntil)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid valid_until"})
		return
	}

	quote.ProjectID = req.ProjectID
	quote.Notes = req.Notes
	quote.ClientNotes = req.ClientNotes
	if validUntil != nil {
		quote.ValidUntil = validUntil
	}
	if req.TaxRate != nil {
		if *req.TaxRate < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tax_rate"})
			return
		}
		quote.TaxRate = *req.TaxRate
	}

	if err := h.repo.Update(c.Request.Context(), quote); err != nil {
		h.logger.Error("failed to update quote", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update quote"})
		return
	}

	// A tax rate change shifts the derived totals.
	if err := h.repo.RecalculateTotals(c.Request.Context(), quote.ID); err != nil {
		h.logger.Error("failed to recalculate quote totals", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update quote"})
		return
	}

	quote, err := h.repo.GetByID(c.Request.Context(), quote.ID)
	if err != nil {
		h.logger.Error("failed to reload quote", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update quote"})
		return
	}

	c.JSON(http.StatusOK, mapQuote(quote))
}

func (h *QuoteHandler) Delete(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quote id"})
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
			c.JSON(http.StatusNotFound, gin.H{"error": "quote not found"})
			return
		}
		h.logger.Error("failed to delete quote", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete quote"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *QuoteHandler) AddItem(c *gin.Context) {
	quote, ok := h.loadQuote(c)
	if !ok {
		return
	}
	if !quote.CanBeEdited() {
		c.JSON(http.StatusConflict, gin.H{"error": "quote is not editable"})
		return
	}

	item, ok := h.bindItem(c, &model.QuoteItem{QuoteID: quote.ID})
	if !ok {
		return
	}

	if err := h.repo.SaveItem(c.Request.Context(), item); err != nil {
		h.logger.Error("failed to add quote item", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add quote item"})
		return
	}

	c.JSON(http.StatusCreated, mapQuoteItem(item))
}

func (h *QuoteHandler) UpdateItem(c *gin.Context) {
	quote, ok := h.loadQuote(c)
	if !ok {
		return
	}
	if !quote.CanBeEdited() {
		c.JSON(http.StatusConflict, gin.H{"error": "quote is not editable"})
		return
	}

	itemID, ok := parseID(c.Param("item_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	item, err := h.repo.GetItem(c.Request.Context(), itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "quote item not found"})
			return
		}
		h.logger.Error("failed to load quote item", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update quote item"})
		return
	}
	if item.QuoteID != quote.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "quote item not found"})
		return
	}

	if _, ok := h.bindItem(c, item); !ok {
		return
	}

	if err := h.repo.SaveItem(c.Request.Context(), item); err != nil {
		h.logger.Error("failed to update quote item", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update quote item"})
		return
	}

	c.JSON(http.StatusOK, mapQuoteItem(item))
}

func (h *QuoteHandler) DeleteItem(c *gin.Context) {
	quote, ok := h.loadQuote(c)
	if !ok {
		return
	}
	if !quote.CanBeEdited() {
		c.JSON(http.StatusConflict, gin.H{"error": "quote is not editable"})
		return
	}

	itemID, ok := parseID(c.Param("item_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	item, err := h.repo.GetItem(c.Request.Context(), itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "quote item not found"})
			return
		}
		h.logger.Error("failed to load quote item", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete quote item"})
		return
	}
	if item.QuoteID != quote.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "quote item not found"})
		return
	}

	if err := h.repo.DeleteItemAndRecalculate(c.Request.Context(), itemID); err != nil {
		h.logger.Error("failed to delete quote item", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete quote item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *QuoteHandler) Send(c *gin.Context) {
	h.transition(c, model.QuoteSent, func(q *model.Quote) bool { return q.IsDraft() })
}

func (h *QuoteHandler) Accept(c *gin.Context) {
	h.transition(c, model.QuoteAccepted, func(q *model.Quote) bool { return q.Status == model.QuoteSent })
}

func (h *QuoteHandler) Reject(c *gin.Context) {
	h.transition(c, model.QuoteRejected, func(q *model.Quote) bool { return q.Status == model.QuoteSent })
}

func (h *QuoteHandler) Convert(c *gin.Context) {
	h.transition(c, model.QuoteConverted, func(q *model.Quote) bool { return q.CanBeConverted() })
}

func (h *QuoteHandler) transition(c *gin.Context, target model.QuoteStatus, allowed func(*model.Quote) bool) {
	quote, ok := h.loadQuote(c)
	if !ok {
		return
	}
	if !allowed(quote) {
		c.JSON(http.StatusConflict, gin.H{
			"error": "invalid transition",
			"from":  string(quote.Status),
			"to":    string(target),
		})
		return
	}

	if err := h.repo.Transition(c.Request.Context(), quote.ID, target); err != nil {
		h.logger.Error("failed to transition quote", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to transition quote"})
		return
	}

	metrics.QuoteTransitions.WithLabelValues(string(target)).Inc()
	h.publishTransition(c, quote, target)

	c.JSON(http.StatusOK, gin.H{"status": string(target)})
}

func (h *QuoteHandler) loadQuote(c *gin.Context) (*model.Quote, bool) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quote id"})
		return nil, false
	}

	quote, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "quote not found"})
			return nil, false
		}
		h.logger.Error("failed to get quote", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get quote"})
		return nil, false
	}

	return quote, true
}

func (h *QuoteHandler) bindItem(c *gin.Context, item *model.QuoteItem) (*model.QuoteItem, bool) {
	var req quoteItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return nil, false
	}

	quantity := decimalOne
	if req.Quantity != "" {
		parsed, ok := parseAmount(req.Quantity)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quantity"})
			return nil, false
		}
		quantity = parsed
	}

	var unitPrice int64
	if req.UnitPrice != nil {
		if *req.UnitPrice < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid unit_price"})
			return nil, false
		}
		unitPrice = *req.UnitPrice
	}

	unit := req.Unit
	if unit == "" {
		unit = "hours"
	}

	item.Description = req.Description
	item.Quantity = quantity
	item.Unit = unit
	item.UnitPrice = unitPrice
	item.SortOrder = req.SortOrder

	return item, true
}

func (h *QuoteHandler) publishTransition(c *gin.Context, quote *model.Quote, status model.QuoteStatus) {
	if h.bus == nil {
		return
	}
	event, err := eventbus.NewEvent("quote_"+string(status), eventbus.QuoteEvent{
		QuoteID:     quote.ID,
		QuoteNumber: quote.QuoteNumber,
		ClientID:    quote.ClientID,
		Status:      string(status),
		TotalCents:  quote.Total,
	})
	if err != nil {
		return
	}
	_ = h.bus.Publish(c.Request.Context(), eventbus.ChannelQuote, event)
}

func mapQuote(quote *model.Quote) quoteResponse {
	return quoteResponse{
		ID:          quote.ID,
		ClientID:    quote.ClientID,
		ProjectID:   quote.ProjectID,
		QuoteNumber: quote.QuoteNumber,
		Version:     quote.Version,
		Status:      string(quote.Status),
		ValidUntil:  formatDate(quote.ValidUntil),
		SentAt:      formatTime(quote.SentAt),
		AcceptedAt:  formatTime(quote.AcceptedAt),
		Subtotal:    quote.Subtotal,
		TaxRate:     quote.TaxRate,
		TaxAmount:   quote.TaxAmount,
		Total:       quote.Total,
		Expired:     quote.IsExpired(),
	}
}

func mapQuoteItem(item *model.QuoteItem) quoteItemResponse {
	return quoteItemResponse{
		ID:          item.ID,
		QuoteID:     item.QuoteID,
		Description: item.Description,
		Quantity:    item.Quantity.String(),
		Unit:        item.Unit,
		UnitPrice:   item.UnitPrice,
		Total:       item.Total,
		SortOrder:   item.SortOrder,
	}
}
