// Package httpapi exposes the vault service over HTTP/JSON.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/server/backup"
	"github.com/dmitrijs2005/passvault/internal/server/models"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// VaultService is the business logic behind the handlers.
type VaultService interface {
	GetSalt(ctx context.Context, userID string) (string, error)
	SetSalt(ctx context.Context, userID, salt string) (string, error)
	GetVaultKey(ctx context.Context, userID string) (*models.VaultKey, error)
	InitializeVaultKey(ctx context.Context, userID, ciphertext, iv string) (string, error)
	ListCredentials(ctx context.Context, userID string) ([]*models.Credential, error)
	CreateCredential(ctx context.Context, userID string, f models.CredentialFields) (string, error)
	UpdateCredential(ctx context.Context, id, userID string, f models.CredentialFields) (string, error)
	DeleteCredential(ctx context.Context, id, userID string) (string, error)
	ExportBackup(ctx context.Context, userID string) (*backup.Receipt, error)
}

type SaltRequest struct {
	Salt string `json:"salt" validate:"required,base64"`
}

type SaltResponse struct {
	Salt string `json:"salt"`
}

type VaultKeyBody struct {
	CheckCiphertext string `json:"check_ciphertext" validate:"required,base64"`
	CheckIV         string `json:"check_iv" validate:"required,base64"`
}

type IDResponse struct {
	ID string `json:"id"`
}

// maxBodyBytes bounds every request body.
const maxBodyBytes = 1 << 20

type Handler struct {
	service  VaultService
	validate *validator.Validate
	logger   logging.Logger
}

func NewHandler(service VaultService, logger logging.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

// decode reads and validates a JSON body into dst, answering 400 itself on
// failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		Error(w, http.StatusBadRequest, "invalid request payload")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	Error(w, status, msg)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetSalt(w http.ResponseWriter, r *http.Request) {
	salt, err := h.service.GetSalt(r.Context(), UserID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, SaltResponse{Salt: salt})
}

func (h *Handler) SetSalt(w http.ResponseWriter, r *http.Request) {
	var req SaltRequest
	if !h.decode(w, r, &req) {
		return
	}
	id, err := h.service.SetSalt(r.Context(), UserID(r), req.Salt)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, IDResponse{ID: id})
}

func (h *Handler) GetVaultKey(w http.ResponseWriter, r *http.Request) {
	k, err := h.service.GetVaultKey(r.Context(), UserID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, VaultKeyBody{CheckCiphertext: k.CheckCiphertext, CheckIV: k.CheckIV})
}

func (h *Handler) InitializeVaultKey(w http.ResponseWriter, r *http.Request) {
	var req VaultKeyBody
	if !h.decode(w, r, &req) {
		return
	}
	id, err := h.service.InitializeVaultKey(r.Context(), UserID(r), req.CheckCiphertext, req.CheckIV)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, IDResponse{ID: id})
}

func (h *Handler) ListCredentials(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListCredentials(r.Context(), UserID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, list)
}

func (h *Handler) CreateCredential(w http.ResponseWriter, r *http.Request) {
	var req models.CredentialFields
	if !h.decode(w, r, &req) {
		return
	}
	id, err := h.service.CreateCredential(r.Context(), UserID(r), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, IDResponse{ID: id})
}

func (h *Handler) UpdateCredential(w http.ResponseWriter, r *http.Request) {
	var req models.CredentialFields
	if !h.decode(w, r, &req) {
		return
	}
	id, err := h.service.UpdateCredential(r.Context(), mux.Vars(r)["id"], UserID(r), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, IDResponse{ID: id})
}

func (h *Handler) DeleteCredential(w http.ResponseWriter, r *http.Request) {
	id, err := h.service.DeleteCredential(r.Context(), mux.Vars(r)["id"], UserID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, IDResponse{ID: id})
}

func (h *Handler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.service.ExportBackup(r.Context(), UserID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, receipt)
}
