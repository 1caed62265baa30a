package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mbolis/quick-form/app"
	"github.com/mbolis/quick-form/httpx"
	"github.com/mbolis/quick-form/log"
	"github.com/mbolis/quick-form/model"
)

func PublicGetForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		form, err := app.Forms.PublicForm(r.Context(), formId)
		if err != nil {
			httpx.WriteError(w, r, "public_form", formId, err)
			return
		}

		render.JSON(w, r, form)
	}
}

type submission struct {
	Answers map[string]model.Answer `json:"answers"`
	Email   string                  `json:"email"`
}

func PublicSubmitResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		body := submission{}
		err := render.DecodeJSON(r.Body, &body)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if body.Answers == nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.answers", "missing answers")
			return
		}

		result, err := app.Forms.Submit(r.Context(), httpx.Actor(r), formId, body.Answers, body.Email)
		if err != nil {
			httpx.WriteError(w, r, "submit", formId, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, result)
	}
}
