package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/cliptray/cliptray/internal/store"
	"github.com/cliptray/cliptray/pkg/protocol"
)

// handleAddClip handles POST /add-clip. The body is a JSON object decoded
// leniently (numbers kept as json.Number) and handed to the library, which
// applies the ingestion defaults.
func (s *Server) handleAddClip(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody.Load())

	raw, err := decodeObject(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge,
				protocol.NewErrorResponse(protocol.ErrPayloadTooLarge, "request body too large"))
			return
		}
		writeJSON(w, http.StatusBadRequest, protocol.NewErrorResponse(protocol.ErrInvalidRequest, "invalid JSON: "+err.Error()))
		return
	}

	ctx := store.WithSource(r.Context(), store.SourceExtension)
	res, err := s.ingestOnce(ctx, idempotencyKey(r), raw)
	if err != nil {
		status, code := statusFor(err)
		if status >= http.StatusInternalServerError {
			slog.Error("add-clip failed", "error", err)
		}
		writeJSON(w, status, protocol.NewErrorResponse(code, err.Error()))
		return
	}
	if res.duplicate {
		writeJSON(w, http.StatusOK, protocol.NewOKResponse(res.clip.ID, false))
		return
	}

	slog.Info("clip received", "id", res.clip.ID, "section", res.clip.SectionID, "created", res.created, "origin", r.Header.Get("Origin"))
	writeJSON(w, http.StatusOK, protocol.NewOKResponse(res.clip.ID, res.created))
}

type ingestResult struct {
	clip      *store.Clip
	created   bool
	duplicate bool
}

// ingestOnce ingests raw at most once per idempotency key. Requests sharing
// a key while one is in flight wait for it and get its clip id.
func (s *Server) ingestOnce(ctx context.Context, key string, raw map[string]any) (ingestResult, error) {
	if key == "" {
		clip, created, err := s.lib.Ingest(ctx, raw)
		return ingestResult{clip: clip, created: created}, err
	}

	leader := false
	v, err, _ := s.inflight.Do(key, func() (any, error) {
		leader = true
		if id, ok := s.dedupe.Lookup(key); ok {
			return ingestResult{clip: &store.Clip{ID: id}, duplicate: true}, nil
		}
		clip, created, err := s.lib.Ingest(ctx, raw)
		if err != nil {
			return nil, err
		}
		s.dedupe.Record(key, clip.ID)
		return ingestResult{clip: clip, created: created}, nil
	})
	if err != nil {
		return ingestResult{}, err
	}
	res := v.(ingestResult)
	if !leader {
		res.duplicate = true
	}
	if res.duplicate {
		slog.Debug("add-clip: duplicate request", "key", key, "id", res.clip.ID)
	}
	return res, nil
}

// decodeObject reads exactly one JSON object from body.
func decodeObject(body io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New("body must be a JSON object")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON object")
	}
	return obj, nil
}

// statusFor maps library errors to an HTTP status and wire code.
func statusFor(err error) (int, string) {
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, protocol.ErrInvalidRequest
	case errors.Is(err, store.ErrReservedName):
		return http.StatusConflict, protocol.ErrAlreadyExists
	case errors.Is(err, store.ErrLocked):
		return http.StatusLocked, protocol.ErrLocked
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, protocol.ErrNotFound
	default:
		return http.StatusInternalServerError, protocol.ErrInternal
	}
}
