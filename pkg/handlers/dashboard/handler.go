package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/de-tools/pos-atlas/pkg/adapters"
	"github.com/de-tools/pos-atlas/pkg/models/api"
	"github.com/de-tools/pos-atlas/pkg/models/domain"
	dashboardsvc "github.com/de-tools/pos-atlas/pkg/services/dashboard"
	"github.com/de-tools/pos-atlas/pkg/services/derive"
	"github.com/de-tools/pos-atlas/pkg/services/loader"
	"github.com/de-tools/pos-atlas/pkg/services/session"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const (
	DefaultMaxUploadBytes = 32 << 20
	defaultUploadName     = "upload.csv"
	uploadField           = "file"
)

type Dashboard interface {
	Load(ctx context.Context, r io.Reader, source string) (*domain.Dataset, error)
	Discard(ctx context.Context, ds *domain.Dataset)
	Render(ctx context.Context, ds *domain.Dataset, req domain.ViewRequest) (domain.ViewResult, error)
}

type Sessions interface {
	Create(ctx context.Context, ds *domain.Dataset) session.Session
	Get(ctx context.Context, id string) (session.Session, error)
	Replace(ctx context.Context, id string, ds *domain.Dataset) (session.Session, error)
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	dashboard      Dashboard
	sessions       Sessions
	maxUploadBytes int64
}

func NewHandler(dashboard Dashboard, sessions Sessions, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{
		dashboard:      dashboard,
		sessions:       sessions,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ds, ok := h.load(w, r)
	if !ok {
		return
	}

	s := h.sessions.Create(ctx, ds)
	writeJSON(w, r, http.StatusCreated, adapters.MapDatasetToApiSession(s.ID, ds))
}

// ReplaceDataset swaps the dataset of a session. A failed upload leaves the
// current dataset in place.
func (h *Handler) ReplaceDataset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "session")

	if _, err := h.sessions.Get(ctx, id); err != nil {
		writeError(w, r, err)
		return
	}

	ds, ok := h.load(w, r)
	if !ok {
		return
	}

	s, err := h.sessions.Replace(ctx, id, ds)
	if err != nil {
		h.dashboard.Discard(ctx, ds)
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, adapters.MapDatasetToApiSession(s.ID, ds))
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(r.Context(), chi.URLParam(r, "session")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(r.Context(), chi.URLParam(r, "session"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, api.Items{Items: s.Dataset.ItemNames()})
}

func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	view, err := domain.ParseView(chi.URLParam(r, "view"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	s, err := h.sessions.Get(ctx, chi.URLParam(r, "session"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.dashboard.Render(ctx, s.Dataset, domain.ViewRequest{
		View: view,
		Item: r.URL.Query().Get("item"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, adapters.MapDomainViewToApiView(result))
}

func Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

// load reads the upload from a multipart "file" field or the raw request
// body, and writes the error response itself when it fails.
func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*domain.Dataset, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	body, name, err := uploadBody(r)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	defer body.Close()

	ds, err := h.dashboard.Load(r.Context(), body, name)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return ds, true
}

func uploadBody(r *http.Request) (io.ReadCloser, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		name := r.URL.Query().Get("name")
		if name == "" {
			name = defaultUploadName
		}
		return r.Body, name, nil
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return nil, "", &requestError{msg: "multipart upload requires a \"file\" field", err: err}
	}
	return file, header.Filename, nil
}

type requestError struct {
	msg string
	err error
}

func (e *requestError) Error() string { return e.msg }
func (e *requestError) Unwrap() error { return e.err }

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to encode response")
	}
}

// writeError maps an error to its status code and JSON body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)

	logger := zerolog.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Msg("request failed")
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("request rejected")
	}

	writeJSON(w, r, status, body)
}

func classify(err error) (int, api.Error) {
	var (
		maxErr    *http.MaxBytesError
		loadErr   *loader.LoadError
		deriveErr *derive.DerivationError
		reqErr    *requestError
	)

	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge, api.Error{Kind: "too_large", Message: err.Error()}
	case errors.As(err, &loadErr):
		return http.StatusUnprocessableEntity, api.Error{
			Kind:    string(loadErr.Kind),
			Message: loadErr.Error(),
			Column:  loadErr.Column,
			Row:     loadErr.Row,
		}
	case errors.As(err, &deriveErr):
		return http.StatusUnprocessableEntity, api.Error{
			Kind:    "derivation",
			Message: deriveErr.Error(),
			Row:     deriveErr.Row,
		}
	case errors.Is(err, domain.ErrUnknownView):
		return http.StatusBadRequest, api.Error{Kind: "unknown_view", Message: err.Error()}
	case errors.Is(err, dashboardsvc.ErrItemRequired):
		return http.StatusBadRequest, api.Error{Kind: "item_required", Message: err.Error()}
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, api.Error{Kind: "bad_request", Message: err.Error()}
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, api.Error{Kind: "not_found", Message: err.Error()}
	default:
		return http.StatusInternalServerError, api.Error{Kind: "internal", Message: "internal error"}
	}
}
