package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/go-sod/kdspace/internal/byteutil"
	"github.com/go-sod/kdspace/internal/httputil"
	"github.com/go-sod/kdspace/internal/index"
	"github.com/go-sod/kdspace/internal/logging"
	"github.com/go-sod/kdspace/pkg/container/kdtree"
)

const maxBodyBytes = 4 * 1024 * 1024

// Index is the part of index.Index the handlers use.
type Index interface {
	Insert(ctx context.Context, name string, coords []float64) (index.Entry, error)
	FindByID(ctx context.Context, id uuid.UUID) (index.Entry, bool)
	FindByName(ctx context.Context, name string) (index.Entry, bool)
	FindByCoords(ctx context.Context, coords []float64) (index.Entry, bool, error)
	RemoveByID(ctx context.Context, id uuid.UUID) bool
	RemoveByName(ctx context.Context, name string) bool
	RemoveByCoords(ctx context.Context, coords []float64) (bool, error)
	Region(ctx context.Context, dist float64, origin []float64) ([]index.Entry, error)
	Dump(ctx context.Context, w io.Writer) error
}

var _ Index = (*index.Index)(nil)

type insertRequest struct {
	Name   string    `json:"name"`
	Coords []float64 `json:"coords"`
}

// lookupRequest selects a point by exactly one of its keys.
type lookupRequest struct {
	ID     *uuid.UUID `json:"id"`
	Name   *string    `json:"name"`
	Coords []float64  `json:"coords"`
}

func (l lookupRequest) keys() int {
	n := 0
	if l.ID != nil {
		n++
	}
	if l.Name != nil {
		n++
	}
	if l.Coords != nil {
		n++
	}
	return n
}

type regionRequest struct {
	Queries []struct {
		Radius float64   `json:"radius"`
		Origin []float64 `json:"origin"`
	} `json:"queries"`
}

type regionResponse struct {
	Results [][]index.Entry `json:"results"`
}

type removeResponse struct {
	Removed bool `json:"removed"`
}

func NewHandler(cfg *Config, idx Index) (*Handler, error) {
	if idx == nil {
		return nil, fmt.Errorf("index instance is not defined")
	}
	return &Handler{
		cfg: cfg,
		idx: idx,
	}, nil
}

type Handler struct {
	idx Index
	cfg *Config
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/points", h.handleInsert)
	mux.HandleFunc("/search", h.handleSearch)
	mux.HandleFunc("/remove", h.handleRemove)
	mux.HandleFunc("/region", h.handleRegion)
	mux.HandleFunc("/dump", h.handleDump)
}

func isInputErr(err error) bool {
	return errors.Is(err, kdtree.ErrDimensionMismatch)
}

// decode checks method and content type and decodes the JSON body into v.
// It writes the error response itself and reports whether to continue.
func decode(ctx context.Context, w http.ResponseWriter, r *http.Request, v interface{}) bool {
	logger := logging.FromContext(ctx)

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		logger.Debug(fmt.Sprintf(`{"error": "method %v is not allowed"}`, r.Method))
		_, _ = fmt.Fprintf(w, `{"error": "method %v is not allowed"}`, r.Method)
		return false
	}

	if t := r.Header.Get("content-type"); len(t) < 16 || t[:16] != "application/json" {
		w.WriteHeader(http.StatusUnsupportedMediaType)
		logger.Debug(fmt.Sprintf(`{"error": "%v"}`, "content-type is not application/json"))
		_, _ = fmt.Fprintf(w, `{"error": "%v"}`, "content-type is not application/json")
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields()
	if err := d.Decode(v); err != nil {
		httputil.DecodeErr(ctx, w, err)
		return false
	}
	return true
}

func (h *Handler) handleInsert(w http.ResponseWriter, r *http.Request) {
	var req insertRequest
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()
	defer r.Body.Close()

	if !decode(ctx, w, r, &req) {
		return
	}
	if req.Name == "" {
		httputil.RespBadRequest(ctx, w, `{"error": "name must not be empty"}`)
		return
	}
	entry, err := h.idx.Insert(ctx, req.Name, req.Coords)
	if err != nil {
		if isInputErr(err) {
			httputil.RespBadRequest(ctx, w, `{"error": %q}`, err.Error())
			return
		}
		httputil.RespInternalError(ctx, w, `{"error": "insert error, %v"}`, err)
		return
	}
	httputil.RespJSON(ctx, w, http.StatusCreated, entry)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()
	defer r.Body.Close()

	if !decode(ctx, w, r, &req) {
		return
	}
	if req.keys() != 1 {
		httputil.RespBadRequest(ctx, w, `{"error": "exactly one of id, name or coords is required"}`)
		return
	}

	var (
		entry index.Entry
		found bool
		err   error
	)
	switch {
	case req.ID != nil:
		entry, found = h.idx.FindByID(ctx, *req.ID)
	case req.Name != nil:
		entry, found = h.idx.FindByName(ctx, *req.Name)
	default:
		entry, found, err = h.idx.FindByCoords(ctx, req.Coords)
	}
	if err != nil {
		if isInputErr(err) {
			httputil.RespBadRequest(ctx, w, `{"error": %q}`, err.Error())
			return
		}
		httputil.RespInternalError(ctx, w, `{"error": "search error, %v"}`, err)
		return
	}
	if !found {
		httputil.RespNotFound(ctx, w, `{"error": "point not found"}`)
		return
	}
	httputil.RespJSON(ctx, w, http.StatusOK, entry)
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()
	defer r.Body.Close()
	logger := logging.FromContext(ctx)

	if !decode(ctx, w, r, &req) {
		return
	}
	if req.keys() != 1 {
		httputil.RespBadRequest(ctx, w, `{"error": "exactly one of id, name or coords is required"}`)
		return
	}

	var (
		removed bool
		err     error
	)
	switch {
	case req.ID != nil:
		removed = h.idx.RemoveByID(ctx, *req.ID)
	case req.Name != nil:
		removed = h.idx.RemoveByName(ctx, *req.Name)
	default:
		removed, err = h.idx.RemoveByCoords(ctx, req.Coords)
	}
	if err != nil {
		if isInputErr(err) {
			httputil.RespBadRequest(ctx, w, `{"error": %q}`, err.Error())
			return
		}
		httputil.RespInternalError(ctx, w, `{"error": "remove error, %v"}`, err)
		return
	}
	logger.Debugf("remove request handled, removed: %v", removed)
	httputil.RespJSON(ctx, w, http.StatusOK, removeResponse{Removed: removed})
}

func (h *Handler) handleRegion(w http.ResponseWriter, r *http.Request) {
	var req regionRequest
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()
	defer r.Body.Close()

	if !decode(ctx, w, r, &req) {
		return
	}
	if len(req.Queries) == 0 {
		httputil.RespBadRequest(ctx, w, `{"error": "queries must not be empty"}`)
		return
	}
	if len(req.Queries) > h.cfg.MaxBatchLen {
		httputil.RespBadRequest(ctx, w, `{"error": "queries is too large, max allowed len is %d"}`, h.cfg.MaxBatchLen)
		return
	}
	for i, q := range req.Queries {
		if q.Radius < 0 {
			httputil.RespBadRequest(ctx, w, `{"error": "query %d: radius must not be negative"}`, i)
			return
		}
	}

	results := make([][]index.Entry, len(req.Queries))
	errGrp, grpCtx := errgroup.WithContext(ctx)
	for i, q := range req.Queries {
		i, q := i, q
		errGrp.Go(func() error {
			entries, err := h.idx.Region(grpCtx, q.Radius, q.Origin)
			if err != nil {
				return fmt.Errorf("query %d: %w", i, err)
			}
			results[i] = entries
			return nil
		})
	}
	if err := errGrp.Wait(); err != nil {
		if isInputErr(err) {
			httputil.RespBadRequest(ctx, w, `{"error": %q}`, err.Error())
			return
		}
		httputil.RespInternalError(ctx, w, `{"error": "region processing error, %v"}`, err)
		return
	}
	httputil.RespJSON(ctx, w, http.StatusOK, regionResponse{Results: results})
}

func (h *Handler) handleDump(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()

	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		_, _ = fmt.Fprintf(w, `{"error": "method %v is not allowed"}`, r.Method)
		return
	}

	buf := byteutil.GetBytesBuf()
	defer byteutil.PutBytesBuf(buf)
	if err := h.idx.Dump(ctx, buf); err != nil {
		httputil.RespInternalError(ctx, w, `{"error": "dump error, %v"}`, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
