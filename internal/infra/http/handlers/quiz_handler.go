package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/hpol369/gold-ira-platform-sub026/internal/entity"
	"github.com/hpol369/gold-ira-platform-sub026/internal/usecase"
)

type QuizHandler struct {
	UseCase *usecase.QuizLeadUseCase
	Log     logrus.FieldLogger
}

func NewQuizHandler(uc *usecase.QuizLeadUseCase, log logrus.FieldLogger) *QuizHandler {
	return &QuizHandler{UseCase: uc, Log: log}
}

func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateQuizLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}

	out, err := h.UseCase.Create(r.Context(), input)
	if err != nil {
		writeUsecaseError(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "id": out.ID})
}

func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	q, err := h.UseCase.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUsecaseError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "quizLead": q})
}

func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.UseCase.List(r.Context())
	if err != nil {
		writeUsecaseError(w, h.Log, err)
		return
	}
	if list == nil {
		list = []*entity.QuizLead{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "quizLeads": list})
}
