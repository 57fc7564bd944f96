package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ComptaPME/compta_backend/internal/apperrors"
	portssvc "github.com/ComptaPME/compta_backend/internal/core/ports/services"
	"github.com/ComptaPME/compta_backend/internal/dto"
	"github.com/ComptaPME/compta_backend/internal/middleware"
)

// transactionHandler accepts commercial transactions and feeds them through
// the accounting pipeline.
type transactionHandler struct {
	journalService portssvc.JournalSvcFacade
}

func newTransactionHandler(journalService portssvc.JournalSvcFacade) *transactionHandler {
	return &transactionHandler{journalService: journalService}
}

// createTransaction godoc
// @Summary Book a commercial transaction
// @Description Generates, validates and files the journal entry for a sale or purchase
// @Tags transactions
// @Accept json
// @Produce json
// @Param transaction body dto.CreateTransactionRequest true "Transaction"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Invalid request or rejected entry"
// @Router /transactions [post]
func (h *transactionHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for createTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := req.ValidateAmounts(); err != nil {
		logger.Warn("Transaction rejected at intake", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.journalService.CreateFromTransaction(c.Request.Context(), req.ToTransaction())
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			// Rejected entries report which check failed and the computed
			// amounts so the operator can correct the source transaction.
			logger.Warn("Transaction rejected", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to book transaction", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to book transaction"})
		return
	}

	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(entry))
}
