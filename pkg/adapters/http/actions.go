package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aretw0/paddock"
	"github.com/aretw0/paddock/pkg/domain"
	"github.com/aretw0/paddock/pkg/navigator"
	"github.com/aretw0/paddock/pkg/validator"
	"github.com/go-chi/chi/v5"
)

// Navigation actions a form may request alongside its fields.
const (
	actionNext  = "next"
	actionBack  = "back"
	actionClear = "clear"
	actionJump  = "jump"
)

// act applies edit, then the requested navigation, and answers 303 to the
// route the user should see. Hidden buttons are ignored.
func (s *Server) act(w http.ResponseWriter, r *http.Request, action, label string, edit func(*paddock.Wizard)) {
	var target string
	_, err := s.update(r.Context(), sessionID(r), func(ctx context.Context, sess *domain.Session, wz *paddock.Wizard) error {
		if edit != nil {
			edit(wz)
		}
		nav, ok := dispatch(wz, action, label)
		if !ok {
			target = navigator.PathForStep(wz.State().Step)
			return nil
		}
		sess.Pending = &nav.State
		target = nav.Path
		return nil
	})
	if err != nil {
		s.fail(w, r, "failed to apply action", err)
		return
	}
	s.logger.Debug("action applied", "session_id", sessionID(r), "action", action, "target", target)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func dispatch(wz *paddock.Wizard, action, label string) (*navigator.Navigation, bool) {
	b := wz.Buttons()
	switch action {
	case actionNext:
		if b.Next && !b.NextDisabled {
			return wz.Nav.Next()
		}
	case actionBack:
		if b.Back {
			return wz.Nav.Back()
		}
	case actionClear:
		if b.Clear {
			return wz.Nav.Clear(), true
		}
	case actionJump:
		return wz.Nav.JumpTo(label)
	}
	return nil, false
}

func (s *Server) postBasicInfo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	values := map[string]string{}
	for _, field := range []string{domain.FieldName, domain.FieldEmail} {
		if !r.PostForm.Has(field) {
			continue
		}
		v, err := validator.SanitizeField(r.PostForm.Get(field))
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid %s: %v", field, err), http.StatusBadRequest)
			return
		}
		values[field] = v
	}
	s.act(w, r, r.PostForm.Get("action"), "", func(wz *paddock.Wizard) {
		current := wz.BasicInfo.Model()
		old := map[string]string{domain.FieldName: current.Name, domain.FieldEmail: current.Email}
		for field, v := range values {
			if v != old[field] {
				// Only name and email reach here.
				_ = wz.BasicInfo.UpdateField(field, v)
			}
		}
	})
}

func (s *Server) postDriverSelection(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	s.act(w, r, r.PostForm.Get("action"), "", func(wz *paddock.Wizard) {
		if !r.PostForm.Has("driverId") {
			return
		}
		id := r.PostForm.Get("driverId")
		if id != wz.DriverSelection.Model().SelectedID || id == "" {
			wz.DriverSelection.Choose(id)
		}
	})
}

func (s *Server) next(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, actionNext, "", nil)
}

func (s *Server) back(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, actionBack, "", nil)
}

func (s *Server) clear(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, actionClear, "", nil)
}

func (s *Server) jump(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, actionJump, chi.URLParam(r, "label"), nil)
}
