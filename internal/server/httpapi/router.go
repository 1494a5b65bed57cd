package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/gorilla/mux"
)

// NewRouter wires every route. Everything under /api/v1 requires a bearer
// token.
func NewRouter(h *Handler, verifier TokenVerifier, log logging.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(RecoverMiddleware(log))
	r.Use(LoggerMiddleware(log))

	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(AuthMiddleware(verifier))

	api.HandleFunc("/vault/salt", h.GetSalt).Methods(http.MethodGet)
	api.HandleFunc("/vault/salt", h.SetSalt).Methods(http.MethodPut)
	api.HandleFunc("/vault/key", h.GetVaultKey).Methods(http.MethodGet)
	api.HandleFunc("/vault/key", h.InitializeVaultKey).Methods(http.MethodPut)

	api.HandleFunc("/credentials", h.ListCredentials).Methods(http.MethodGet)
	api.HandleFunc("/credentials", h.CreateCredential).Methods(http.MethodPost)
	api.HandleFunc("/credentials/{id}", h.UpdateCredential).Methods(http.MethodPut)
	api.HandleFunc("/credentials/{id}", h.DeleteCredential).Methods(http.MethodDelete)

	api.HandleFunc("/backups", h.ExportBackup).Methods(http.MethodPost)

	return r
}
