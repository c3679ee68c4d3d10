package web

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"html/template"
	"net/http"

	"github.com/hpungsan/masscalc/internal/errors"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

var reportPage = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta name="generator" content="masscalc {{.Version}}">
</head>
<body>
{{.Body}}
</body>
</html>
`))

// reportPageData is the data for reportPage.
type reportPageData struct {
	Title   string
	Version string
	Body    template.HTML
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderError writes err as {"error":{code,message,status}}. Internal error
// details are not exposed.
func renderError(w http.ResponseWriter, err error) {
	var cErr *errors.CalcError
	if !stderrors.As(err, &cErr) {
		cErr = errors.NewInternal(err)
	}

	message := cErr.Message
	if cErr.Code == errors.ErrInternal {
		message = "an internal error occurred"
	}
	renderJSON(w, cErr.Status, map[string]any{
		"error": map[string]any{
			"code":    string(cErr.Code),
			"message": message,
			"status":  cErr.Status,
		},
	})
}

// renderReport wraps a rendered report fragment in a page.
func renderReport(w http.ResponseWriter, data reportPageData) {
	var buf bytes.Buffer
	if err := reportPage.Execute(&buf, data); err != nil {
		renderError(w, errors.NewInternal(err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// decodeBody reads a JSON request body into T. Unknown fields are rejected.
func decodeBody[T any](w http.ResponseWriter, r *http.Request) (T, error) {
	var v T
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, errors.NewInvalidRequest("invalid request body: " + err.Error())
	}
	return v, nil
}
