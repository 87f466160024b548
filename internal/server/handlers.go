package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/matzehuels/convgraph/pkg/buildinfo"
	"github.com/matzehuels/convgraph/pkg/errors"
	"github.com/matzehuels/convgraph/pkg/observability"
	"github.com/matzehuels/convgraph/pkg/render/nodelink"
	"github.com/matzehuels/convgraph/pkg/typedecl"
)

// renderTTL bounds how long rendered SVGs stay cached.
const renderTTL = 24 * time.Hour

type healthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Commit   string `json:"commit"`
	Registry string `json:"registry"`
}

type typeEntry struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Kind string `json:"kind"`
}

type findResponse struct {
	Input     string `json:"input"`
	Output    string `json:"output"`
	Converter string `json:"converter"`
	Lazy      bool   `json:"lazy"`
	NilInput  bool   `json:"accepts_nil"`
}

type treeResponse struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	Found  bool   `json:"found"`
	Nodes  any    `json:"nodes"`
	Text   string `json:"text"`
}

type errorResponse struct {
	Error     errorBody `json:"error"`
	RequestID string    `json:"request_id,omitempty"`
}

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Version:  buildinfo.Version,
		Commit:   buildinfo.Commit,
		Registry: s.engine.Registry.ID().String(),
	})
}

func (s *Server) handleTypes(w http.ResponseWriter, r *http.Request) {
	names := s.engine.Catalog.Names()
	out := make([]typeEntry, 0, len(names))
	for _, name := range names {
		t, _ := s.engine.Catalog.Lookup(name)
		out = append(out, typeEntry{Name: name, Type: t.String(), Kind: t.Kind().String()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleFind(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c, err := s.engine.Resolve(q.Get("from"), q.Get("to"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, findResponse{
		Input:     c.Input().String(),
		Output:    c.Output().String(),
		Converter: c.String(),
		Lazy:      c.Lazy(),
		NilInput:  c.AcceptsNilInput(),
	})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := s.engine.Convert(q.Get("value"), q.Get("from"), q.Get("to"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	in, out, ok := s.pair(w, r)
	if !ok {
		return
	}
	snap := s.engine.Registry.Snapshot(in, out)
	writeJSON(w, http.StatusOK, treeResponse{
		Input:  in.String(),
		Output: out.String(),
		Found:  snap.Found,
		Nodes:  snap.Nodes,
		Text:   snap.String(),
	})
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	dot, ok := s.dot(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.Write([]byte(dot))
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	dot, ok := s.dot(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	key := s.keyer.RenderKey(dot, "svg")
	svg, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("render cache read failed", "err", err)
	}
	if !hit {
		svg, err = nodelink.RenderSVG(ctx, dot)
		if err != nil {
			writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "render svg"))
			return
		}
		if err := s.cache.Set(ctx, key, svg, renderTTL); err != nil {
			s.logger.Warn("render cache write failed", "err", err)
		}
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(svg)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Registry.Stats())
}

// pair parses the from and to parameters, writing an error response when
// either does not parse.
func (s *Server) pair(w http.ResponseWriter, r *http.Request) (typedecl.Type, typedecl.Type, bool) {
	q := r.URL.Query()
	in, out, err := s.engine.ParsePair(q.Get("from"), q.Get("to"))
	if err != nil {
		writeError(w, r, err)
		return typedecl.Invalid, typedecl.Invalid, false
	}
	return in, out, true
}

func (s *Server) dot(w http.ResponseWriter, r *http.Request) (string, bool) {
	in, out, ok := s.pair(w, r)
	if !ok {
		return "", false
	}
	detailed, _ := strconv.ParseBool(r.URL.Query().Get("detailed"))
	snap := s.engine.Registry.Snapshot(in, out)
	return nodelink.ToDOT(snap, nodelink.Options{Detailed: detailed}), true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, errorResponse{
		Error:     errorBody{Code: code, Message: err.Error()},
		RequestID: RequestID(r.Context()),
	})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidType:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeTypeNotFound, errors.ErrCodeNoConverter:
		return http.StatusNotFound
	case errors.ErrCodeConversionFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func notFound(path string) error {
	return errors.New(errors.ErrCodeNotFound, "no route for %s", path)
}
