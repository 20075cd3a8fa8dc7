package http

import (
	"bytes"
	"context"
	"html/template"
	"net/http"
	"net/url"
	"slices"

	"github.com/aretw0/paddock"
	"github.com/aretw0/paddock/internal/presentation"
	"github.com/aretw0/paddock/pkg/domain"
	"github.com/aretw0/paddock/pkg/navigator"
	"github.com/aretw0/paddock/pkg/steps"
	"github.com/go-chi/chi/v5"
)

var templateFuncs = template.FuncMap{
	"pathEscape": url.PathEscape,
}

type stepLink struct {
	Number  int
	Label   string
	Current bool
}

// labels exposes the shared UI text to the templates.
type labels struct {
	Name, Email, SelectDriver, SelectADriver string
	Back, Next, Clear                        string
}

var pageLabels = labels{
	Name:          presentation.TitleName,
	Email:         presentation.TitleEmail,
	SelectDriver:  presentation.TitleSelectDriver,
	SelectADriver: presentation.TitleSelectADriver,
	Back:          presentation.ButtonBack,
	Next:          presentation.ButtonNext,
	Clear:         presentation.ButtonClear,
}

type pageData struct {
	Title   string
	Step    int
	Steps   []stepLink
	Buttons navigator.Buttons
	Loading bool
	Error   string
	T       labels

	BasicInfo       steps.BasicInfoModel
	DriverSelection steps.DriverSelectionModel
	Summary         template.HTML
}

func newPageData(w *paddock.Wizard) (pageData, error) {
	st := w.State()
	data := pageData{
		Title:   navigator.LabelForStep(st.Step),
		Step:    st.Step,
		Buttons: w.Buttons(),
		Loading: st.Loading,
		Error:   st.ErrorMessage(),
		T:       pageLabels,
	}
	for i, label := range navigator.Labels {
		data.Steps = append(data.Steps, stepLink{Number: i + 1, Label: label, Current: i+1 == st.Step})
	}

	switch st.Step {
	case steps.BasicInfoStep:
		data.BasicInfo = w.BasicInfo.Model()
	case steps.DriverSelectionStep:
		data.DriverSelection = w.DriverSelection.Model()
	case steps.SummaryStep:
		html, err := presentation.SummaryHTML(w.Summary.Model())
		if err != nil {
			return pageData{}, err
		}
		data.Summary = html
	}
	return data, nil
}

// page renders the step addressed by the URL. Arriving applies the pending
// navigation state once and fetches what the step is missing.
func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path != "/" && !slices.Contains(navigator.Routes, chi.URLParam(r, "route")) {
		http.NotFound(w, r)
		return
	}

	var data pageData
	_, err := s.update(r.Context(), sessionID(r), func(ctx context.Context, sess *domain.Session, wz *paddock.Wizard) error {
		wz.Enter(ctx, path, sess.Pending)
		sess.Pending = nil
		var err error
		data, err = newPageData(wz)
		return err
	})
	if err != nil {
		s.fail(w, r, "failed to render step", err)
		return
	}

	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		s.fail(w, r, "failed to execute template", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}
