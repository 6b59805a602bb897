package server

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/lineage/pkg/buildinfo"
	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/pipeline"
	"github.com/matzehuels/lineage/pkg/render/nodelink"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RegionSummary is one entry of GET /regions.
type RegionSummary struct {
	Region       string   `json:"region"`
	Districts    int      `json:"districts"`
	Events       int      `json:"events"`
	Roots        []string `json:"roots"`
	FallbackRoot bool     `json:"fallback_root"`
}

// RootsResponse is the body of GET /regions/{region}/roots.
type RootsResponse struct {
	Region       string   `json:"region"`
	Roots        []string `json:"roots"`
	FallbackRoot bool     `json:"fallback_root"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": buildinfo.Get().Version,
		"run_id":  s.result.RunID,
		"regions": len(s.result.Regions),
	})
}

func (s *Server) handleRegions(w http.ResponseWriter, _ *http.Request) {
	out := make([]RegionSummary, len(s.result.Regions))
	for i, rr := range s.result.Regions {
		out[i] = RegionSummary{
			Region:       rr.Name,
			Districts:    rr.Graph.NodeCount(),
			Events:       rr.Graph.EdgeCount(),
			Roots:        rr.Roots,
			FallbackRoot: rr.Fallback,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRegion(w http.ResponseWriter, r *http.Request) {
	if rr, ok := s.region(w, r); ok {
		writeJSON(w, http.StatusOK, rr.View)
	}
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	if rr, ok := s.region(w, r); ok {
		writeJSON(w, http.StatusOK, rr.View.Graph)
	}
}

func (s *Server) handleRoots(w http.ResponseWriter, r *http.Request) {
	if rr, ok := s.region(w, r); ok {
		writeJSON(w, http.StatusOK, RootsResponse{Region: rr.Name, Roots: rr.Roots, FallbackRoot: rr.Fallback})
	}
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	if rr, ok := s.region(w, r); ok {
		writeJSON(w, http.StatusOK, rr.View.Tree)
	}
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	if rr, ok := s.region(w, r); ok {
		writeJSON(w, http.StatusOK, rr.View.Layout)
	}
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	rr, ok := s.region(w, r)
	if !ok {
		return
	}
	dot := rr.Artifacts[pipeline.FormatDOT]
	if dot == nil {
		dot = []byte(nodelink.ToDOT(rr.Graph, s.opts.Nodelink))
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(dot)
}

// region resolves the {region} URL parameter, writing a 404 when unknown.
func (s *Server) region(w http.ResponseWriter, r *http.Request) (*pipeline.RegionResult, bool) {
	name, err := regionParam(r)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	if err := errors.ValidateRegionName(name); err != nil {
		writeError(w, err)
		return nil, false
	}
	rr, ok := s.result.Region(name)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeRegionNotFound, "unknown region %q", name))
		return nil, false
	}
	return rr, true
}

// regionParam returns the decoded {region} parameter. chi matches against
// the escaped path whenever the request carries one (names containing '/',
// '&' and the like), and the parameter is then still percent-encoded.
func regionParam(r *http.Request) (string, error) {
	name := chi.URLParam(r, "region")
	if r.URL.RawPath == "" {
		return name, nil
	}
	decoded, err := url.PathUnescape(name)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed region name %q", name)
	}
	return decoded, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, errors.HTTPStatus(err), errorBody{Code: string(code), Message: errors.UserMessage(err)})
}
