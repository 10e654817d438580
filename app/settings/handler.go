package settings

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/km-arc/simple-lms/app/errorhandler"
	"github.com/km-arc/simple-lms/framework/app"
	"github.com/km-arc/simple-lms/framework/http/validation"
	"github.com/km-arc/simple-lms/framework/routing"
)

// Handler serves the admin settings endpoints.
type Handler struct {
	app.Controller

	service *Service
	errors  *errorhandler.Handler
}

func NewHandler(service *Service, errs *errorhandler.Handler) *Handler {
	return &Handler{service: service, errors: errs}
}

// Routes mounts GET and POST /settings.
func (h *Handler) Routes(r *routing.Router) {
	r.Get("/settings", h.Show)
	r.Post("/settings", h.Update)
}

// Show returns the current settings.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	res := h.Response(w)
	current, err := h.service.Load(r.Context())
	if err != nil {
		h.errors.Report(r.Context(), err)
		res.ServerError()
		return
	}
	res.Success(current)
}

// Update validates and saves a JSON or form submission; invalid input is
// answered with 422.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	req, res := h.Request(r), h.Response(w)

	fields, err := req.Fields()
	if err != nil {
		res.Error(http.StatusBadRequest, err.Error())
		return
	}

	saved, err := h.service.Save(r.Context(), fields)
	var invalid *validation.Errors
	switch {
	case errors.As(err, &invalid):
		res.ValidationError(invalid)
	case err != nil:
		h.errors.Report(r.Context(), err)
		res.ServerError()
	default:
		res.Success(saved)
	}
}
