package handler

import (
	"net/http"

	"github.com/havenhealth/haven/api/internal/service"
)

// ResourceHandler serves the crisis helpline directory
type ResourceHandler struct {
	directory *service.ResourceDirectory
}

// NewResourceHandler creates a new resource handler
func NewResourceHandler(directory *service.ResourceDirectory) *ResourceHandler {
	return &ResourceHandler{
		directory: directory,
	}
}

// List handles GET /v1/resources. The region query parameter is optional;
// unknown or missing regions fall back to the international directory.
func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")
	contacts := h.directory.ContactsFor(region)

	WriteCollection(w, http.StatusOK, contacts, nil, map[string]string{
		"self": "/v1/resources",
	})
}
