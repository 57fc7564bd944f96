package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ComptaPME/compta_backend/internal/apperrors"
	"github.com/ComptaPME/compta_backend/internal/core/domain"
	portssvc "github.com/ComptaPME/compta_backend/internal/core/ports/services"
	"github.com/ComptaPME/compta_backend/internal/core/services"
	"github.com/ComptaPME/compta_backend/internal/dto"
	"github.com/ComptaPME/compta_backend/internal/middleware"
)

const filterDateLayout = "2006-01-02"

// journalHandler serves the journal table, entry listings, balances, the
// CSV export and the entry lifecycle actions.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

func newJournalHandler(journalService portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{journalService: journalService}
}

// listJournals godoc
// @Summary List the journal table
// @Tags journals
// @Produce json
// @Success 200 {array} dto.JournalConfigResponse
// @Router /journals [get]
func (h *journalHandler) listJournals(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ToJournalConfigResponses(h.journalService.ListJournals()))
}

// listEntries godoc
// @Summary List the entries of one journal
// @Description Entries can be narrowed by period, reference substring and validated flag
// @Tags journals
// @Produce json
// @Param journalType path string true "Journal type" Enums(sales, purchases, bank, cash, misc)
// @Param startDate query string false "Inclusive period start (YYYY-MM-DD)"
// @Param endDate query string false "Inclusive period end (YYYY-MM-DD)"
// @Param reference query string false "Reference substring"
// @Param validated query bool false "Validated flag"
// @Success 200 {object} dto.ListEntriesResponse
// @Failure 400 {object} map[string]string "Unknown journal or bad filters"
// @Router /journals/{journalType}/entries [get]
func (h *journalHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	journalType := domain.JournalType(c.Param("journalType"))
	filters, err := parseFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries, err := h.journalService.ListEntries(c.Request.Context(), journalType, filters)
	if err != nil {
		if errors.Is(err, services.ErrUnknownJournal) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to list entries", slog.String("journal", string(journalType)), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list entries"})
		return
	}

	balance, err := h.journalService.Balance(c.Request.Context(), journalType, filters)
	if err != nil {
		logger.Error("Failed to aggregate balance", slog.String("journal", string(journalType)), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate balance"})
		return
	}

	c.JSON(http.StatusOK, dto.ListEntriesResponse{
		Entries: dto.ToJournalEntryResponses(entries),
		Balance: dto.ToBalanceResponse(balance),
	})
}

// getBalance godoc
// @Summary Aggregate debit/credit totals of one journal
// @Tags journals
// @Produce json
// @Param journalType path string true "Journal type"
// @Success 200 {object} dto.BalanceResponse
// @Router /journals/{journalType}/balance [get]
func (h *journalHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	journalType := domain.JournalType(c.Param("journalType"))
	filters, err := parseFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	balance, err := h.journalService.Balance(c.Request.Context(), journalType, filters)
	if err != nil {
		if errors.Is(err, services.ErrUnknownJournal) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to aggregate balance", slog.String("journal", string(journalType)), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate balance"})
		return
	}

	c.JSON(http.StatusOK, dto.ToBalanceResponse(balance))
}

// exportEntries godoc
// @Summary Export one journal as CSV
// @Description Semicolon-separated, one row per accounting line
// @Tags journals
// @Produce text/csv
// @Param journalType path string true "Journal type"
// @Success 200 {string} string "CSV content"
// @Router /journals/{journalType}/export [get]
func (h *journalHandler) exportEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	journalType := domain.JournalType(c.Param("journalType"))
	filters, err := parseFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := h.journalService.ExportCSV(c.Request.Context(), journalType, filters)
	if err != nil {
		if errors.Is(err, services.ErrUnknownJournal) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to export journal", slog.String("journal", string(journalType)), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export journal"})
		return
	}

	filename := fmt.Sprintf("journal_%s_%s.csv", journalType, time.Now().UTC().Format(filterDateLayout))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// getEntry godoc
// @Summary Get one journal entry
// @Tags entries
// @Produce json
// @Param entryID path string true "Entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Router /entries/{entryID} [get]
func (h *journalHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	entry, err := h.journalService.GetEntryByID(c.Request.Context(), entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
			return
		}
		logger.Error("Failed to get entry", slog.String("entry_id", entryID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve entry"})
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// validateEntry godoc
// @Summary Validate a journal entry
// @Description Re-checks the entry balance before flipping the validated flag
// @Tags entries
// @Produce json
// @Param entryID path string true "Entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Entry is unbalanced"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry is locked"
// @Router /entries/{entryID}/validate [post]
func (h *journalHandler) validateEntry(c *gin.Context) {
	h.lifecycleAction(c, h.journalService.ValidateEntry)
}

// lockEntry godoc
// @Summary Lock a validated journal entry (period closing)
// @Tags entries
// @Produce json
// @Param entryID path string true "Entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Entry not validated yet"
// @Failure 404 {object} map[string]string "Entry not found"
// @Router /entries/{entryID}/lock [post]
func (h *journalHandler) lockEntry(c *gin.Context) {
	h.lifecycleAction(c, h.journalService.LockEntry)
}

func (h *journalHandler) lifecycleAction(c *gin.Context, action func(ctx context.Context, entryID string) (*domain.JournalEntry, error)) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	entry, err := action(c.Request.Context(), entryID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		case errors.Is(err, apperrors.ErrLocked):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Entry lifecycle action rejected", slog.String("entry_id", entryID), slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Entry lifecycle action failed", slog.String("entry_id", entryID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update entry"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// parseFilters reads the listing filters from the query string.
func parseFilters(c *gin.Context) (domain.JournalFilters, error) {
	filters := domain.JournalFilters{
		Reference: c.Query("reference"),
	}

	if raw := c.Query("startDate"); raw != "" {
		t, err := time.Parse(filterDateLayout, raw)
		if err != nil {
			return filters, fmt.Errorf("invalid startDate %q, expected YYYY-MM-DD", raw)
		}
		filters.StartDate = &t
	}
	if raw := c.Query("endDate"); raw != "" {
		t, err := time.Parse(filterDateLayout, raw)
		if err != nil {
			return filters, fmt.Errorf("invalid endDate %q, expected YYYY-MM-DD", raw)
		}
		filters.EndDate = &t
	}
	if raw := c.Query("validated"); raw != "" {
		v := raw == "true"
		if raw != "true" && raw != "false" {
			return filters, fmt.Errorf("invalid validated %q, expected true or false", raw)
		}
		filters.Validated = &v
	}
	return filters, nil
}
