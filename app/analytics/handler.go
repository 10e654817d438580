package analytics

import (
	"net/http"

	"github.com/km-arc/simple-lms/app/errorhandler"
	"github.com/km-arc/simple-lms/framework/app"
	"github.com/km-arc/simple-lms/framework/http/validation"
	"github.com/km-arc/simple-lms/framework/routing"
)

type eventRequest struct {
	Name        string         `json:"name"`
	UserID      string         `json:"user_id"`
	ContentType string         `json:"content_type"`
	ContentID   uint           `json:"content_id"`
	Properties  map[string]any `json:"properties"`
}

var eventRules = validation.Rules{
	"name":         "required|max:191",
	"user_id":      "nullable|max:191",
	"content_type": "nullable|alpha_dash|max:32",
}

// Handler accepts events over HTTP.
type Handler struct {
	app.Controller

	recorder *Recorder
	errors   *errorhandler.Handler
}

func NewHandler(recorder *Recorder, errs *errorhandler.Handler) *Handler {
	return &Handler{recorder: recorder, errors: errs}
}

// Routes mounts POST /events.
func (h *Handler) Routes(r *routing.Router) {
	r.Post("/events", h.Store)
}

// Store records one event: 201 with the stored event, or 202 when analytics
// is disabled and the event was dropped.
func (h *Handler) Store(w http.ResponseWriter, r *http.Request) {
	req, res := h.Request(r), h.Response(w)

	var in eventRequest
	if err := req.Bind(&in); err != nil {
		res.Error(http.StatusBadRequest, err.Error())
		return
	}

	v := validation.Make(map[string]string{
		"name":         in.Name,
		"user_id":      in.UserID,
		"content_type": in.ContentType,
	}, eventRules)
	if v.Fails() {
		res.ValidationError(v.Errors())
		return
	}

	ev := &Event{
		Name:        in.Name,
		UserID:      in.UserID,
		ContentType: in.ContentType,
		ContentID:   in.ContentID,
		Properties:  in.Properties,
	}
	recorded, err := h.recorder.Record(r.Context(), ev)
	if err != nil {
		h.errors.Report(r.Context(), err)
		res.ServerError()
		return
	}
	if !recorded {
		res.JSON(http.StatusAccepted, map[string]any{"recorded": false})
		return
	}
	res.Created(ev)
}
