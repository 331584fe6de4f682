package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/infrastructure/recordstore"
)

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

type mockBillStore struct {
	listFunc   func(ctx context.Context) ([]entity.Bill, error)
	createFunc func(ctx context.Context, partial entity.Bill, file *entity.ReceiptFile) (*entity.Bill, error)
	updateFunc func(ctx context.Context, billID string, partial entity.Bill) (*entity.Bill, error)
}

func (m *mockBillStore) List(ctx context.Context) ([]entity.Bill, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return []entity.Bill{}, nil
}

func (m *mockBillStore) Create(ctx context.Context, partial entity.Bill, file *entity.ReceiptFile) (*entity.Bill, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, partial, file)
	}
	partial.ID = "new"
	return &partial, nil
}

func (m *mockBillStore) Update(ctx context.Context, billID string, partial entity.Bill) (*entity.Bill, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, billID, partial)
	}
	partial.ID = billID
	return &partial, nil
}

type mockRecordStore struct {
	store       *mockBillStore
	sessions    []entity.Session
	receiptFunc func(ctx context.Context, key string) ([]byte, string, error)
}

func (m *mockRecordStore) ForSession(session entity.Session) port.BillStore {
	m.sessions = append(m.sessions, session)
	return m.store
}

func (m *mockRecordStore) Receipt(ctx context.Context, key string) ([]byte, string, error) {
	if m.receiptFunc != nil {
		return m.receiptFunc(ctx, key)
	}
	return nil, "", port.NewStoreError(port.ErrNotFound, "receipt", "receipt not found", nil)
}

type mockHealth struct{ err error }

func (m mockHealth) Health(ctx context.Context) error { return m.err }

func newTestServer(store RecordStore, tokens *TokenIssuer) *Server {
	cfg := DefaultServerConfig()
	return NewServer(cfg, store, tokens, mockHealth{}, &mockLogger{})
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) recordstore.Envelope {
	t.Helper()
	var env recordstore.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestHealthCheck(t *testing.T) {
	server := newTestServer(&mockRecordStore{store: &mockBillStore{}}, NewTokenIssuer("", time.Hour))

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode(t, rec).Success)

	unhealthy := NewServer(DefaultServerConfig(), &mockRecordStore{store: &mockBillStore{}}, NewTokenIssuer("", time.Hour), mockHealth{err: errors.New("closed")}, &mockLogger{})
	rec = httptest.NewRecorder()
	unhealthy.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLogin(t *testing.T) {
	tokens := NewTokenIssuer("secret", time.Hour)
	server := newTestServer(&mockRecordStore{store: &mockBillStore{}}, tokens)

	t.Run("issues a token", func(t *testing.T) {
		body := `{"email":"Employee@Test.tld","type":"Employee"}`
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, recordstore.LoginPath, strings.NewReader(body)))
		require.Equal(t, http.StatusOK, rec.Code)

		var session entity.Session
		require.NoError(t, json.Unmarshal(decode(t, rec).Data, &session))
		assert.Equal(t, "employee@test.tld", session.Email)
		assert.NotEmpty(t, session.Token)

		parsed, err := tokens.Parse(session.Token)
		require.NoError(t, err)
		assert.Equal(t, entity.UserTypeEmployee, parsed.Type)
	})

	for name, body := range map[string]string{
		"bad email":    `{"email":"nope","type":"Employee"}`,
		"unknown type": `{"email":"a@test.tld","type":"Boss"}`,
		"missing type": `{"email":"a@test.tld"}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, recordstore.LoginPath, strings.NewReader(body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, recordstore.CodeValidationRejected, decode(t, rec).Code)
		})
	}
}

func TestAuthentication(t *testing.T) {
	tokens := NewTokenIssuer("secret", time.Hour)
	records := &mockRecordStore{store: &mockBillStore{}}
	server := newTestServer(records, tokens)

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, recordstore.BillsPath, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, recordstore.CodeUnauthorized, decode(t, rec).Code)
	})

	t.Run("token from another secret", func(t *testing.T) {
		forged, err := NewTokenIssuer("other", time.Hour).Issue(entity.Session{Email: "a@test.tld", Type: entity.UserTypeAdmin})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, recordstore.BillsPath, nil)
		req.Header.Set("Authorization", "Bearer "+forged)
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		old := NewTokenIssuer("secret", time.Minute)
		old.now = func() time.Time { return time.Now().Add(-time.Hour) }
		expired, err := old.Issue(entity.Session{Email: "a@test.tld", Type: entity.UserTypeEmployee})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, recordstore.BillsPath, nil)
		req.Header.Set("Authorization", "Bearer "+expired)
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token resolves the session", func(t *testing.T) {
		token, err := tokens.Issue(entity.Session{Email: "a@test.tld", Type: entity.UserTypeEmployee})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, recordstore.BillsPath, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotEmpty(t, records.sessions)
		last := records.sessions[len(records.sessions)-1]
		assert.Equal(t, "a@test.tld", last.Email)
		assert.Equal(t, entity.UserTypeEmployee, last.Type)
	})
}

func TestAuthDisabledRunsAsAdmin(t *testing.T) {
	records := &mockRecordStore{store: &mockBillStore{}}
	server := newTestServer(records, NewTokenIssuer("", time.Hour))

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, recordstore.BillsPath, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, records.sessions, 1)
	assert.True(t, records.sessions[0].IsAdmin())
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		code    string
		message string
	}{
		{port.NewStoreError(port.ErrValidationRejected, "list", "date is required", nil), http.StatusUnprocessableEntity, recordstore.CodeValidationRejected, "date is required"},
		{port.NewStoreError(port.ErrNotFound, "list", "bill x not found", nil), http.StatusNotFound, recordstore.CodeNotFound, "bill x not found"},
		{port.NewStoreError(port.ErrForbidden, "list", "no", nil), http.StatusForbidden, recordstore.CodeForbidden, "no"},
		{port.NewStoreError(port.ErrUploadFailed, "list", "disk full", nil), http.StatusBadGateway, recordstore.CodeUploadFailed, "disk full"},
		{errors.New("database is locked"), http.StatusInternalServerError, recordstore.CodeStoreError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			store := &mockBillStore{listFunc: func(ctx context.Context) ([]entity.Bill, error) { return nil, tt.err }}
			server := newTestServer(&mockRecordStore{store: store}, NewTokenIssuer("", time.Hour))

			rec := httptest.NewRecorder()
			server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, recordstore.BillsPath, nil))

			assert.Equal(t, tt.status, rec.Code)
			env := decode(t, rec)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Code)
			assert.Equal(t, tt.message, env.Error)
		})
	}
}

func multipartBody(t *testing.T, billJSON string, fileName, kind string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if billJSON != "" {
		require.NoError(t, w.WriteField(recordstore.BillField, billJSON))
	}
	if fileName != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
		h.Set("Content-Type", kind)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestCreateBill(t *testing.T) {
	t.Run("passes bill and receipt to the store", func(t *testing.T) {
		var gotBill entity.Bill
		var gotFile *entity.ReceiptFile
		store := &mockBillStore{createFunc: func(ctx context.Context, partial entity.Bill, file *entity.ReceiptFile) (*entity.Bill, error) {
			gotBill, gotFile = partial, file
			partial.ID = "47qAXb6fIm2zOKkLzMro"
			return &partial, nil
		}}
		server := newTestServer(&mockRecordStore{store: store}, NewTokenIssuer("", time.Hour))

		body, contentType := multipartBody(t, `{"type":"Hôtel et logement","name":"enc\u0000ore","amount":400,"date":"2004-04-04","vat":"80","pct":20}`, "test.png", "image/png", []byte("png"))
		req := httptest.NewRequest(http.MethodPost, recordstore.BillsPath, body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, "encore", gotBill.Name)
		assert.True(t, gotBill.VAT.Equal(entity.NewNumber(80)))
		require.NotNil(t, gotFile)
		assert.Equal(t, "test.png", gotFile.FileName)
		assert.Equal(t, "image/png", gotFile.MimeType)
		assert.Equal(t, []byte("png"), gotFile.Content)
	})

	t.Run("missing file", func(t *testing.T) {
		server := newTestServer(&mockRecordStore{store: &mockBillStore{}}, NewTokenIssuer("", time.Hour))

		body, contentType := multipartBody(t, `{"type":"Transports"}`, "", "", nil)
		req := httptest.NewRequest(http.MethodPost, recordstore.BillsPath, body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "receipt file is required", decode(t, rec).Error)
	})

	t.Run("malformed bill JSON", func(t *testing.T) {
		server := newTestServer(&mockRecordStore{store: &mockBillStore{}}, NewTokenIssuer("", time.Hour))

		body, contentType := multipartBody(t, `{"type":`, "test.png", "image/png", []byte("png"))
		req := httptest.NewRequest(http.MethodPost, recordstore.BillsPath, body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestUpdateBill(t *testing.T) {
	var gotID string
	store := &mockBillStore{updateFunc: func(ctx context.Context, billID string, partial entity.Bill) (*entity.Bill, error) {
		gotID = billID
		partial.ID = billID
		return &partial, nil
	}}
	server := newTestServer(&mockRecordStore{store: store}, NewTokenIssuer("", time.Hour))

	req := httptest.NewRequest(http.MethodPatch, recordstore.BillsPath+"/abc", strings.NewReader(`{"status":"accepted","commentAdmin":"ok"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", gotID)

	var bill entity.Bill
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &bill))
	assert.Equal(t, entity.BillStatusAccepted, bill.Status)
}

func TestGetReceipt(t *testing.T) {
	records := &mockRecordStore{
		store: &mockBillStore{},
		receiptFunc: func(ctx context.Context, key string) ([]byte, string, error) {
			if key == "a_at_a/x.png" {
				return []byte("png"), "image/png", nil
			}
			return nil, "", port.NewStoreError(port.ErrNotFound, "receipt", "receipt not found", nil)
		},
	}
	server := newTestServer(records, NewTokenIssuer("secret", time.Hour))

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/a_at_a/x.png", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "png", rec.Body.String())

	rec = httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
