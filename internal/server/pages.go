package server

import (
	"net/http"

	"bleedforlife/internal/impact"
	"bleedforlife/pkg/types"
)

func (s *Service) handleHome(w http.ResponseWriter, r *http.Request) {
	base := flashes(r)
	base.Title = "Bleed for Life"

	data := &types.HomePageData{
		BasePageData: base,
		Tiers:        impact.Achievements(0),
	}

	s.renderPage(w, r, "page.home", data)
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
