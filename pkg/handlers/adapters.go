package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/datalens/datalens-engine/pkg/adapters/datasource"
)

// AdapterTypeLister lists the compiled-in adapters.
type AdapterTypeLister interface {
	ListTypes() []datasource.DatasourceAdapterInfo
}

// ListAdaptersResponse wraps the adapter list.
type ListAdaptersResponse struct {
	Adapters []datasource.DatasourceAdapterInfo `json:"adapters"`
}

// AdaptersHandler serves adapter discovery.
type AdaptersHandler struct {
	lister AdapterTypeLister
	logger *zap.Logger
}

func NewAdaptersHandler(lister AdapterTypeLister, logger *zap.Logger) *AdaptersHandler {
	return &AdaptersHandler{lister: lister, logger: logger}
}

// RegisterRoutes registers the adapters handler's routes on the given mux.
func (h *AdaptersHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/adapters", h.List)
}

// List handles GET /api/adapters
func (h *AdaptersHandler) List(w http.ResponseWriter, r *http.Request) {
	adapters := h.lister.ListTypes()
	if adapters == nil {
		adapters = []datasource.DatasourceAdapterInfo{}
	}
	writeJSON(w, h.logger, http.StatusOK, ListAdaptersResponse{Adapters: adapters})
}
