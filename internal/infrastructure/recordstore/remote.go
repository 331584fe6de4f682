package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
)

// maxResponseSize bounds how much of a response body is read
const maxResponseSize = 10 << 20

// HTTPClient interface for testability
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Remote is a BillStore talking to the record store API over HTTP.
// Requests carry the session token as a bearer credential.
type Remote struct {
	baseURL    string
	token      string
	httpClient HTTPClient
	logger     *zap.Logger
}

// NewRemote creates a Remote client for the API at baseURL
func NewRemote(baseURL string, session entity.Session, timeout time.Duration, logger *zap.Logger) *Remote {
	return &Remote{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      session.Token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// WithHTTPClient replaces the underlying HTTP client
func (r *Remote) WithHTTPClient(client HTTPClient) *Remote {
	r.httpClient = client
	return r
}

// Login asks the API for a session token
func (r *Remote) Login(ctx context.Context, email, userType string) (entity.Session, error) {
	body, err := json.Marshal(LoginRequest{Email: email, Type: userType})
	if err != nil {
		return entity.Session{}, fmt.Errorf("failed to encode login request: %w", err)
	}

	req, err := r.newRequest(ctx, http.MethodPost, LoginPath, bytes.NewReader(body))
	if err != nil {
		return entity.Session{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var session entity.Session
	if err := r.do(req, "login", &session); err != nil {
		return entity.Session{}, err
	}
	return session, nil
}

// List implements port.BillStore
func (r *Remote) List(ctx context.Context) ([]entity.Bill, error) {
	req, err := r.newRequest(ctx, http.MethodGet, BillsPath, nil)
	if err != nil {
		return nil, err
	}

	bills := []entity.Bill{}
	if err := r.do(req, "list", &bills); err != nil {
		return nil, err
	}

	r.logger.Debug("Listed bills", zap.Int("count", len(bills)))
	return bills, nil
}

// Create implements port.BillStore. The record and the receipt travel in
// one multipart request so the server can persist them atomically.
func (r *Remote) Create(ctx context.Context, partial entity.Bill, file *entity.ReceiptFile) (*entity.Bill, error) {
	const op = "create"
	if file == nil {
		return nil, port.NewStoreError(port.ErrValidationRejected, op, "receipt file is required", nil)
	}

	body, contentType, err := encodeCreate(partial, file)
	if err != nil {
		return nil, port.NewStoreError(port.ErrUploadFailed, op, "", err)
	}

	req, err := r.newRequest(ctx, http.MethodPost, BillsPath, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	var created entity.Bill
	if err := r.do(req, op, &created); err != nil {
		return nil, err
	}
	if !created.IsPersisted() {
		return nil, port.NewStoreError(port.ErrStoreError, op, "record store returned a bill without id", nil)
	}

	r.logger.Info("Bill created",
		zap.String("bill_id", created.ID),
		zap.String("file_name", file.FileName))
	return &created, nil
}

// Update implements port.BillStore
func (r *Remote) Update(ctx context.Context, billID string, partial entity.Bill) (*entity.Bill, error) {
	const op = "update"

	body, err := json.Marshal(partial)
	if err != nil {
		return nil, port.NewStoreError(port.ErrValidationRejected, op, "", err)
	}

	req, err := r.newRequest(ctx, http.MethodPatch, BillsPath+"/"+url.PathEscape(billID), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var updated entity.Bill
	if err := r.do(req, op, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *Remote) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return nil, port.NewStoreError(port.ErrStoreUnavailable, method+" "+path, "", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	return req, nil
}

// do sends the request and decodes the envelope data into out
func (r *Remote) do(req *http.Request, op string, out interface{}) error {
	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.logger.Error("Record store unreachable", zap.String("op", op), zap.Error(err))
		return port.NewStoreError(port.ErrStoreUnavailable, op, "", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return port.NewStoreError(port.ErrStoreUnavailable, op, "", err)
	}

	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		// not our API, or a proxy error page
		r.logger.Error("Unexpected record store response",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode))
		return port.NewStoreError(port.ErrStoreError, op, fmt.Sprintf("Erreur %d", resp.StatusCode), err)
	}

	if !envelope.Success || resp.StatusCode >= http.StatusBadRequest {
		message := envelope.Error
		if message == "" {
			message = fmt.Sprintf("Erreur %d", resp.StatusCode)
		}
		r.logger.Error("Record store rejected request",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.String("code", envelope.Code),
			zap.String("error", message))
		return port.NewStoreError(KindForCode(envelope.Code), op, message, nil)
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return port.NewStoreError(port.ErrStoreError, op, "malformed response data", err)
		}
	}
	return nil
}

func encodeCreate(partial entity.Bill, file *entity.ReceiptFile) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	billJSON, err := json.Marshal(partial)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode bill: %w", err)
	}
	if err := writer.WriteField(BillField, string(billJSON)); err != nil {
		return nil, "", fmt.Errorf("failed to write bill field: %w", err)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, FileField, file.FileName))
	header.Set("Content-Type", file.MimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(file.Content); err != nil {
		return nil, "", fmt.Errorf("failed to write file part: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}

// Verify interface compliance
var _ port.BillStore = (*Remote)(nil)
