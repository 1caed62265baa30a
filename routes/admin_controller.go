package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mbolis/quick-form/app"
	"github.com/mbolis/quick-form/forms"
	"github.com/mbolis/quick-form/httpx"
	"github.com/mbolis/quick-form/log"
)

func CreateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in := forms.NewForm{}
		err := render.DecodeJSON(r.Body, &in)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		form, err := app.Forms.CreateForm(r.Context(), httpx.Actor(r), in)
		if err != nil {
			httpx.WriteError(w, r, "create_form", nil, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, form)
	}
}

func ListForms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := app.Forms.ListForms(r.Context(), httpx.Actor(r))
		if err != nil {
			httpx.WriteError(w, r, "list_forms", nil, err)
			return
		}

		render.JSON(w, r, map[string]any{
			"forms": list,
		})
	}
}

func GetForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		form, err := app.Forms.GetForm(r.Context(), httpx.Actor(r), formId)
		if err != nil {
			httpx.WriteError(w, r, "get_form", formId, err)
			return
		}

		render.JSON(w, r, form)
	}
}

func UpdateFormFlags(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		flags := forms.FormFlags{}
		err := render.DecodeJSON(r.Body, &flags)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		err = app.Forms.SetFlags(r.Context(), httpx.Actor(r), formId, flags)
		if err != nil {
			httpx.WriteError(w, r, "update_form", formId, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		err := app.Forms.DeleteForm(r.Context(), httpx.Actor(r), formId)
		if err != nil {
			httpx.WriteError(w, r, "delete_form", formId, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

type formContent struct {
	forms.FormMeta
	Questions []forms.QuestionInput `json:"questions"`
}

// SaveFormContent replaces the questions of the form with the submitted
// list, and updates title, description and settings when present.
func SaveFormContent(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		content := formContent{}
		err := render.DecodeJSON(r.Body, &content)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if content.Questions == nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.questions", "missing questions")
			return
		}

		var meta *forms.FormMeta
		if content.Title != nil || content.Description != nil || content.Settings != nil {
			meta = &content.FormMeta
		}

		saved, err := app.Forms.Reconcile(r.Context(), httpx.Actor(r), formId, content.Questions, meta)
		if err != nil {
			httpx.WriteError(w, r, "reconcile", formId, err)
			return
		}

		render.JSON(w, r, map[string]any{
			"questions": saved,
		})
	}
}

func GetFormResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		responses, err := app.Forms.Responses(r.Context(), httpx.Actor(r), formId)
		if err != nil {
			httpx.WriteError(w, r, "get_responses", formId, err)
			return
		}

		render.JSON(w, r, map[string]any{
			"responses": responses,
		})
	}
}

func GetFormAnalytics(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		summaries, err := app.Forms.Analytics(r.Context(), httpx.Actor(r), formId)
		if err != nil {
			httpx.WriteError(w, r, "get_analytics", formId, err)
			return
		}

		render.JSON(w, r, map[string]any{
			"questions": summaries,
		})
	}
}
