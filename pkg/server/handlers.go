package server

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/auditgraph/pkg/buildinfo"
	"github.com/matzehuels/auditgraph/pkg/errors"
	"github.com/matzehuels/auditgraph/pkg/extract"
	"github.com/matzehuels/auditgraph/pkg/graph"
	"github.com/matzehuels/auditgraph/pkg/intake"
	"github.com/matzehuels/auditgraph/pkg/pipeline"
)

// maxMemory is the multipart form size kept in memory; the rest spills
// to temporary files.
const maxMemory = 8 << 20

// LayoutRequest is the body of POST /api/layout.
type LayoutRequest struct {
	Model   graph.Model      `json:"model"`
	Options pipeline.Options `json:"options"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	opts, err := queryOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ws, units, err := s.receive(w, r)
	if ws != nil {
		defer ws.Close()
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if dot := r.FormValue("dot"); dot != "" {
		opts.DOT = dot
	}

	res, err := s.runner.Parse(r.Context(), units, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Model)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req LayoutRequest
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.writeError(w, r, decodeError(err))
		return
	}
	g, err := graph.ToCallGraph(req.Model)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	d, err := s.runner.Layout(r.Context(), g, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	opts, err := queryOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ws, units, err := s.receive(w, r)
	if ws != nil {
		defer ws.Close()
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if dot := r.FormValue("dot"); dot != "" {
		opts.DOT = dot
	}

	res, err := s.runner.Execute(r.Context(), units, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Debug("analyzed upload",
		"id", RequestID(r.Context()),
		"units", res.Stats.Units,
		"functions", res.Stats.Functions,
		"parse_hit", res.CacheInfo.ParseHit,
		"layout_hit", res.CacheInfo.LayoutHit)
	writeJSON(w, http.StatusOK, res.Diagram)
}

// receive copies the multipart "file" fields into a fresh workspace and
// returns its sources. The caller closes the workspace when it is non-nil.
func (s *Server) receive(w http.ResponseWriter, r *http.Request) (*intake.Workspace, []extract.Unit, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return nil, nil, decodeError(err)
	}
	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "no files uploaded (use multipart field \"file\")")
	}

	ws, err := intake.NewWorkspace(intake.Options{Root: s.cfg.WorkDir, MaxBytes: s.cfg.MaxUploadBytes})
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "create workspace")
	}
	added := 0
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return ws, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open upload %s", fh.Filename)
		}
		n, err := ws.AddFile(fh.Filename, f)
		f.Close()
		if err != nil {
			return ws, nil, err
		}
		added += n
	}
	if added == 0 {
		return ws, nil, errors.New(errors.ErrCodeInvalidInput, "no Solidity sources in upload")
	}
	units, err := ws.Sources()
	return ws, units, err
}

// queryOptions reads pipeline options from the query string:
// code_view, direction, hide, show (comma separated or repeated) and
// refresh.
func queryOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	var opts pipeline.Options
	var err error
	if opts.CodeView, err = queryBool(q.Get("code_view")); err != nil {
		return opts, errors.New(errors.ErrCodeInvalidOptions, "code_view: %v", err)
	}
	if opts.Refresh, err = queryBool(q.Get("refresh")); err != nil {
		return opts, errors.New(errors.ErrCodeInvalidOptions, "refresh: %v", err)
	}
	opts.Direction = strings.ToUpper(q.Get("direction"))
	opts.Hide = queryList(q["hide"])
	opts.Show = queryList(q["show"])
	return opts, opts.ValidateAndSetDefaults()
}

func queryBool(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}

func queryList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}

func decodeError(err error) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
		return errors.Wrap(errors.ErrCodeInputTooLarge, err, "request body too large")
	}
	if stderrors.Is(err, io.EOF) {
		return errors.New(errors.ErrCodeInvalidInput, "empty request body")
	}
	return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request")
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "code", code, "err", err)
	} else {
		s.logger.Debug("request rejected", "id", RequestID(r.Context()), "code", code, "err", err)
	}
	writeJSON(w, status, errorBody{Error: errorDetail{
		Code:    string(code),
		Message: errors.UserMessage(err),
		Details: errors.GetDetails(err),
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
