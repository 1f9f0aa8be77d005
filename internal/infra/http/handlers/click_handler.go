package handlers

import (
	"net/http"

	"github.com/hpol369/gold-ira-platform-sub026/internal/usecase"
)

type ClickHandler struct {
	UseCase *usecase.ClickTrackingUseCase
}

func NewClickHandler(uc *usecase.ClickTrackingUseCase) *ClickHandler {
	return &ClickHandler{UseCase: uc}
}

// Handle redirects at once; the notice and conversion run in the background.
func (h *ClickHandler) Handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := usecase.TrackClickInput{
		Destination: q.Get("url"),
		Source:      q.Get("source"),
		Company:     q.Get("company"),
		Placement:   q.Get("placement"),
		ClickID:     q.Get("gclid"),
	}

	h.UseCase.Track(r.Context(), input)
	http.Redirect(w, r, usecase.SafeDestination(input.Destination), http.StatusFound)
}
