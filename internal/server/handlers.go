package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	errs "github.com/matzehuels/sigsvg/pkg/errors"
	"github.com/matzehuels/sigsvg/pkg/pipeline"
	"github.com/matzehuels/sigsvg/pkg/signature"
)

// HeaderCache reports whether the body was served from the artifact cache.
const HeaderCache = "X-Cache"

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(HeaderCache, "miss")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, errs.New(errs.ErrCodeInvalidInput, "trace exceeds %d bytes", MaxBodyBytes))
			return
		}
		writeError(w, http.StatusBadRequest, errs.Wrap(errs.ErrCodeInvalidInput, err, "read body"))
		return
	}

	query := r.URL.Query()
	cfg, err := s.strokeConfig(query)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	format, err := negotiateFormat(query.Get("format"), r.Header.Get("Accept-Encoding"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), pipeline.Options{
		Trace:   body,
		Config:  &cfg,
		Formats: []string{format},
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	art := result.Artifacts[format]
	h := w.Header()
	h.Set("Content-Type", art.ContentType)
	if art.ContentEncoding != "" {
		h.Set("Content-Encoding", art.ContentEncoding)
	}
	h.Add("Vary", "Accept-Encoding")
	h.Set("Content-Length", strconv.Itoa(len(art.Data)))
	if art.Cached {
		h.Set(HeaderCache, "hit")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(art.Data)
}

// strokeConfig merges the query string over the server defaults. Parameters
// that are not stroke options are carried in Config.Extra.
func (s *Server) strokeConfig(query url.Values) (signature.Config, error) {
	overrides := make(map[string]any, len(query))
	for key, values := range query {
		if key == "format" || len(values) == 0 {
			continue
		}
		v := values[0]
		switch key {
		case signature.KeyTitle:
			if err := errs.ValidateTitle(v); err != nil {
				return signature.Config{}, err
			}
			overrides[key] = v
		case signature.KeyPenWidth:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return signature.Config{}, errs.New(errs.ErrCodeInvalidConfig, "%s must be a number, got %q", key, v)
			}
			overrides[key] = f
		case signature.KeyPenColour:
			if err := errs.ValidateColour(v); err != nil {
				return signature.Config{}, err
			}
			overrides[key] = v
		default:
			overrides[key] = v
		}
	}

	cfg, err := s.defaults.Merge(overrides)
	if err != nil {
		return signature.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return signature.Config{}, err
	}
	return cfg, nil
}

// negotiateFormat picks the artifact to serve. An explicit format wins;
// otherwise the document is compressed when the client accepts gzip.
func negotiateFormat(format, acceptEncoding string) (string, error) {
	if format != "" {
		if err := pipeline.ValidateFormat(format); err != nil {
			return "", err
		}
		return format, nil
	}
	if acceptsGzip(acceptEncoding) {
		return pipeline.FormatSVGZ, nil
	}
	return pipeline.FormatSVG, nil
}

// acceptsGzip reports whether an Accept-Encoding header admits gzip with a
// non-zero quality.
func acceptsGzip(header string) bool {
	for part := range strings.SplitSeq(header, ",") {
		coding, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		coding = strings.ToLower(strings.TrimSpace(coding))
		if coding != signature.EncodingGzip && coding != "x-gzip" {
			continue
		}
		q, found := strings.CutPrefix(strings.ReplaceAll(strings.TrimSpace(params), " ", ""), "q=")
		if !found {
			return true
		}
		if v, err := strconv.ParseFloat(q, 64); err == nil && v > 0 {
			return true
		}
	}
	return false
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("render failed", "id", RequestIDFrom(r.Context()), "error", err)
	} else {
		s.logger.Debug("rejected request", "id", RequestIDFrom(r.Context()), "error", err)
	}
	writeError(w, status, err)
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch errs.GetCode(err) {
	case errs.ErrCodeParse, errs.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errs.ErrCodeInvalidInput:
		return http.StatusUnprocessableEntity
	case errs.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Code  string `json:"code"`
	Cause string `json:"cause,omitempty"`
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	body := errorBody{
		Code:  string(code),
		Cause: string(errs.CauseOf(err)),
		Error: errs.UserMessage(err),
	}
	if status >= http.StatusInternalServerError && code == errs.ErrCodeInternal {
		body.Error = http.StatusText(status)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
