package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/infrastructure/recordstore"
	"github.com/garyjia/billed/pkg/utils"
)

// RecordStore is the backend record store the handlers act on
type RecordStore interface {
	ForSession(session entity.Session) port.BillStore
	Receipt(ctx context.Context, key string) ([]byte, string, error)
}

// HealthChecker reports whether a dependency is usable
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	store          RecordStore
	tokens         *TokenIssuer
	health         HealthChecker
	maxUploadBytes int64
	logger         Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	store RecordStore,
	tokens *TokenIssuer,
	health HealthChecker,
	maxUploadBytes int64,
	logger Logger,
) *Handlers {
	return &Handlers{
		store:          store,
		tokens:         tokens,
		health:         health,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	if h.health != nil {
		if err := h.health.Health(c.Request.Context()); err != nil {
			h.logger.Error("Health check failed", "error", err)
			response.Status = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, Response{
				Success: false,
				Data:    response,
				Error:   "database unavailable",
			})
			return
		}
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// Login handles POST /api/v1/auth/login. There is no password: the
// endpoint stands in for an identity provider in development setups.
func (h *Handlers) Login(c *gin.Context) {
	var req recordstore.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "email and type are required")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := utils.ValidateEmail(req.Email); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	if err := utils.ValidateUserType(req.Type, entity.UserTypeEmployee, entity.UserTypeAdmin); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	session := entity.Session{Email: req.Email, Type: req.Type}
	token, err := h.tokens.Issue(session)
	if err != nil {
		h.logger.Error("Failed to issue token", "email", req.Email, "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to issue token",
			Code:    recordstore.CodeStoreError,
		})
		return
	}
	session.Token = token

	h.logger.Info("User logged in", "email", session.Email, "type", session.Type)
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    session,
	})
}

// ListBills handles GET /api/v1/bills
func (h *Handlers) ListBills(c *gin.Context) {
	session := SessionFrom(c)

	bills, err := h.store.ForSession(session).List(c.Request.Context())
	if err != nil {
		h.writeError(c, "list", err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    bills,
	})
}

// CreateBill handles POST /api/v1/bills (multipart: bill JSON + file)
func (h *Handlers) CreateBill(c *gin.Context) {
	session := SessionFrom(c)

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	var partial entity.Bill
	if raw := c.PostForm(recordstore.BillField); raw != "" {
		if err := json.Unmarshal([]byte(raw), &partial); err != nil {
			h.writeError(c, "create", port.NewStoreError(port.ErrValidationRejected, "create", "bill field is not valid JSON", err))
			return
		}
	}
	partial.Name = utils.SanitizeString(partial.Name)
	partial.Commentary = utils.SanitizeString(partial.Commentary)

	file, err := h.readReceipt(c)
	if err != nil {
		h.writeError(c, "create", err)
		return
	}

	created, err := h.store.ForSession(session).Create(c.Request.Context(), partial, file)
	if err != nil {
		h.writeError(c, "create", err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    created,
	})
}

// UpdateBill handles PATCH /api/v1/bills/:id
func (h *Handlers) UpdateBill(c *gin.Context) {
	session := SessionFrom(c)
	billID := c.Param("id")

	var partial entity.Bill
	if err := c.ShouldBindJSON(&partial); err != nil {
		h.writeError(c, "update", port.NewStoreError(port.ErrValidationRejected, "update", "body is not a valid bill", err))
		return
	}
	partial.Name = utils.SanitizeString(partial.Name)
	partial.Commentary = utils.SanitizeString(partial.Commentary)
	partial.CommentAdmin = utils.SanitizeString(partial.CommentAdmin)

	updated, err := h.store.ForSession(session).Update(c.Request.Context(), billID, partial)
	if err != nil {
		h.writeError(c, "update", err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    updated,
	})
}

// GetReceipt handles GET /files/*key
func (h *Handlers) GetReceipt(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")

	content, kind, err := h.store.Receipt(c.Request.Context(), key)
	if err != nil {
		h.writeError(c, "receipt", err)
		return
	}

	c.Header("Cache-Control", "private, max-age=3600")
	c.Data(http.StatusOK, kind, content)
}

func (h *Handlers) readReceipt(c *gin.Context) (*entity.ReceiptFile, error) {
	header, err := c.FormFile(recordstore.FileField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, port.NewStoreError(port.ErrValidationRejected, "create", "receipt file is too large", err)
		}
		return nil, port.NewStoreError(port.ErrValidationRejected, "create", "receipt file is required", err)
	}

	src, err := header.Open()
	if err != nil {
		return nil, port.NewStoreError(port.ErrUploadFailed, "create", "receipt could not be read", err)
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return nil, port.NewStoreError(port.ErrUploadFailed, "create", "receipt could not be read", err)
	}

	return entity.NewReceiptFile(header.Filename, header.Header.Get("Content-Type"), content), nil
}

func (h *Handlers) badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error:   message,
		Code:    recordstore.CodeValidationRejected,
	})
}

// writeError maps a store failure onto the response envelope
func (h *Handlers) writeError(c *gin.Context, op string, err error) {
	code := recordstore.CodeFor(err)

	status := http.StatusInternalServerError
	switch code {
	case recordstore.CodeValidationRejected:
		status = http.StatusUnprocessableEntity
	case recordstore.CodeNotFound:
		status = http.StatusNotFound
	case recordstore.CodeForbidden:
		status = http.StatusForbidden
	case recordstore.CodeUploadFailed:
		status = http.StatusBadGateway
	}

	message := port.UserMessage(err)
	if code == recordstore.CodeStoreError {
		h.logger.Error("Record store failure", "op", op, "error", err)
		message = "internal error"
	} else {
		h.logger.Info("Request rejected", "op", op, "code", code, "error", err)
	}

	c.JSON(status, Response{
		Success: false,
		Error:   message,
		Code:    code,
	})
}
