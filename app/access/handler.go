package access

import (
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	"github.com/km-arc/simple-lms/app/content"
	"github.com/km-arc/simple-lms/app/errorhandler"
	"github.com/km-arc/simple-lms/app/settings"
	"github.com/km-arc/simple-lms/framework/app"
	"github.com/km-arc/simple-lms/framework/providers"
	"github.com/km-arc/simple-lms/framework/routing"
)

// UserTagsHeader carries the requesting user's metadata tags, comma-separated.
// The router's CORS policy allows it on cross-origin requests.
const UserTagsHeader = providers.UserTagsHeader

// Handler serves content items gated by Policy.
type Handler struct {
	app.Controller

	policy   *Policy
	registry *content.Registry
	repo     *content.Repository
	settings *settings.Service
	errors   *errorhandler.Handler
}

func NewHandler(
	policy *Policy,
	registry *content.Registry,
	repo *content.Repository,
	svc *settings.Service,
	errs *errorhandler.Handler,
) *Handler {
	return &Handler{policy: policy, registry: registry, repo: repo, settings: svc, errors: errs}
}

// Routes mounts GET /content/{type} and GET /content/{type}/{id}.
func (h *Handler) Routes(r *routing.Router) {
	r.Get("/content/{type}", h.Index)
	r.Get("/content/{type}/{id}", h.Show)
}

// Index lists the items of a type that the user may access.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	req, res := h.Request(r), h.Response(w)

	t, err := h.registry.Parse(req.RouteParam("type"))
	if err != nil {
		res.NotFound("Unknown content type.")
		return
	}
	items, err := h.repo.List(r.Context(), t)
	if err != nil {
		h.errors.Report(r.Context(), err)
		res.ServerError()
		return
	}
	res.Success(h.policy.Filter(req.HeaderList(UserTagsHeader), items))
}

// Show returns one item, or 403 with the configured access denied message
// when the user lacks a required tag.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	req, res := h.Request(r), h.Response(w)

	t, err := h.registry.Parse(req.RouteParam("type"))
	if err != nil {
		res.NotFound("Unknown content type.")
		return
	}
	id, err := strconv.ParseUint(req.RouteParam("id"), 10, 64)
	if err != nil {
		res.NotFound()
		return
	}

	item, err := h.repo.Find(r.Context(), t, uint(id))
	switch {
	case errors.Is(err, content.ErrNotFound):
		res.NotFound()
		return
	case err != nil:
		h.errors.Report(r.Context(), err)
		res.ServerError()
		return
	}

	if !h.policy.CanAccess(req.HeaderList(UserTagsHeader), item.RequiredTags) {
		current, err := h.settings.Load(r.Context())
		if err != nil {
			h.errors.Report(r.Context(), err)
			current = h.settings.Defaults()
		}
		res.Forbidden(current.AccessDeniedMessage)
		return
	}
	res.Success(item)
}
