package server

import (
	"net/http"

	"bleedforlife/pkg/types"
)

func (s *Service) renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) error {
	userID, _ := r.Context().Value(contextKeyUserID).(string)
	userEmail, _ := r.Context().Value(contextKeyEmail).(string)

	if setter, ok := data.(types.NavbarDataSetter); ok {
		setter.SetNavbarData(types.NavbarData{
			IsAuthenticated: userID != "",
			UserID:          userID,
			UserEmail:       userEmail,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return s.templates.ExecuteTemplate(w, templateName, data)
}

// renderPage renders and logs; callers return right after.
func (s *Service) renderPage(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	s.renderPageStatus(w, r, http.StatusOK, templateName, data)
}

func (s *Service) renderPageStatus(w http.ResponseWriter, r *http.Request, status int, templateName string, data any) {
	if status != http.StatusOK {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
	}
	if err := s.renderTemplate(w, r, templateName, data); err != nil {
		s.logger.WithError(err).WithField("template", templateName).Error("failed to render page")
		s.internalServerError(w)
	}
}

func flashes(r *http.Request) types.BasePageData {
	q := r.URL.Query()
	return types.BasePageData{
		Notice: q.Get("notice"),
		Error:  q.Get("error"),
	}
}
