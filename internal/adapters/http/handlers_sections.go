package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"schooladmin/internal/adapters/http/middleware"
	"schooladmin/internal/application/orchestrators"
	"schooladmin/internal/application/projections"
	"schooladmin/internal/application/validation"
	"schooladmin/internal/domain/section"
	sectionScreen "schooladmin/internal/screens/sections"
)

// MethodOverrideHeader may carry the PUT override instead of the _method field.
const MethodOverrideHeader = "X-HTTP-Method-Override"

const msgSectionNotFound = "Section not found."

// sectionsPage is the data for sections.html.
type sectionsPage struct {
	Sections    []section.Section
	GradeLevels []section.GradeLevel
	Editing     *section.Section       // edit row values: the stored row or a rejected submission
	EditErrors  validation.FieldErrors // inline errors for the edit row
	Draft       sectionDraft           // create form values after a failed submit
	Errors      validation.FieldErrors
	Dialog      *sectionScreen.Feedback // blocking dialog shown on load
}

// sectionsFailure describes a re-render after a rejected submission.
type sectionsFailure struct {
	status     int
	draft      sectionDraft
	errors     validation.FieldErrors
	editing    *section.Section
	editErrors validation.FieldErrors
	dialog     string // error dialog message, "" for none
}

type sectionDraft struct {
	Name         string
	GradeLevelID int64
}

// sectionForm is the create/update payload. GradeLevelID takes a JSON number
// or a string so blank values reach validation instead of failing to decode.
type sectionForm struct {
	Name         string `json:"name"`
	GradeLevelID any    `json:"grade_level_id"`
	Method       string `json:"_method"`
}

func (f sectionForm) input() orchestrators.SectionInput {
	in := orchestrators.SectionInput{Name: f.Name}
	switch v := f.GradeLevelID.(type) {
	case float64:
		in.GradeLevelID = int64(v)
	case string:
		in.GradeLevelID, _ = strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	}
	return in
}

func decodeSectionForm(r *http.Request) (sectionForm, error) {
	var f sectionForm
	err := decodeBody(r, &f, func(v url.Values) {
		f.Name = v.Get("name")
		f.GradeLevelID = v.Get("grade_level_id")
		f.Method = v.Get("_method")
	})
	return f, err
}

// handleSections handles GET /admin/sections
func handleSections(w http.ResponseWriter, r *http.Request) {
	var editID int64
	if raw := r.URL.Query().Get("edit"); raw != "" {
		editID, _ = strconv.ParseInt(raw, 10, 64)
	}
	result, err := projections.QueryGetSections(r.Context(), projections.GetSectionsQuery{EditID: editID},
		projections.GetSectionsDeps{SectionStore: stores.SectionStore})
	if err != nil {
		internalError(w, r, err)
		return
	}

	if middleware.WantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]any{"sections": result.Sections, "gradeLevels": result.GradeLevels})
		return
	}
	renderTemplate(w, r, "sections.html", sectionsPage{
		Sections:    result.Sections,
		GradeLevels: result.GradeLevels,
		Editing:     result.Editing,
	})
}

// handleSectionStore handles POST /admin/section/store
func handleSectionStore(w http.ResponseWriter, r *http.Request) {
	form, err := decodeSectionForm(r)
	if err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := form.input()

	sec, err := orchestrators.ExecuteCreateSection(r.Context(), input,
		orchestrators.CreateSectionDeps{SectionStore: stores.SectionStore})
	if err != nil {
		if fe, ok := validation.AsFieldErrors(err); ok {
			if middleware.WantsJSON(r) {
				writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"message": firstMessage(fe), "errors": fe})
				return
			}
			renderSectionsFailure(w, r, sectionsFailure{
				status: http.StatusUnprocessableEntity,
				draft:  sectionDraft{Name: input.Name, GradeLevelID: input.GradeLevelID},
				errors: fe,
			})
			return
		}
		if middleware.WantsJSON(r) {
			internalError(w, r, err)
			return
		}
		reportError(r, err)
		renderSectionsFailure(w, r, sectionsFailure{
			status: http.StatusInternalServerError,
			draft:  sectionDraft{Name: input.Name, GradeLevelID: input.GradeLevelID},
			dialog: sectionScreen.MsgCreateFailed,
		})
		return
	}

	if middleware.WantsJSON(r) {
		writeJSON(w, http.StatusCreated, map[string]any{"section": sec})
		return
	}
	setFlash(w, middleware.FlashSuccess, sectionScreen.MsgCreated)
	http.Redirect(w, r, "/admin/sections", http.StatusSeeOther)
}

// handleSectionUpdate handles POST /admin/section/update/{id} carrying the
// PUT method override.
func handleSectionUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w, r, msgSectionNotFound)
		return
	}
	form, err := decodeSectionForm(r)
	if err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	method := form.Method
	if h := r.Header.Get(MethodOverrideHeader); h != "" {
		method = h
	}
	if !strings.EqualFold(method, http.MethodPut) && !strings.EqualFold(method, http.MethodPatch) {
		w.Header().Set("Allow", http.MethodPut)
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	input := form.input()
	sec, err := orchestrators.ExecuteUpdateSection(r.Context(),
		orchestrators.UpdateSectionInput{ID: id, SectionInput: input},
		orchestrators.UpdateSectionDeps{SectionStore: stores.SectionStore})
	switch {
	case errors.Is(err, section.ErrNotFound):
		notFound(w, r, msgSectionNotFound)
		return
	case err != nil:
		fe, ok := validation.AsFieldErrors(err)
		if middleware.WantsJSON(r) {
			if !ok {
				internalError(w, r, err)
				return
			}
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"message": firstMessage(fe), "errors": fe})
			return
		}
		// The row stays in edit mode with what the admin submitted.
		failure := sectionsFailure{
			status:     http.StatusUnprocessableEntity,
			editing:    &section.Section{ID: id, Name: input.Name, GradeLevelID: input.GradeLevelID},
			editErrors: fe,
			dialog:     sectionScreen.MsgUpdateFailed,
		}
		if !ok {
			reportError(r, err)
			failure.status = http.StatusInternalServerError
		}
		renderSectionsFailure(w, r, failure)
		return
	}

	if middleware.WantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]any{"section": sec})
		return
	}
	setFlash(w, middleware.FlashSuccess, sectionScreen.MsgUpdated)
	http.Redirect(w, r, "/admin/sections", http.StatusSeeOther)
}

// handleSectionDelete handles DELETE /admin/section/delete/{id}
func handleSectionDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w, r, msgSectionNotFound)
		return
	}
	err := orchestrators.ExecuteDeleteSection(r.Context(), id,
		orchestrators.DeleteSectionDeps{SectionStore: stores.SectionStore})
	if errors.Is(err, section.ErrNotFound) {
		notFound(w, r, msgSectionNotFound)
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": sectionScreen.MsgDeleted})
}

// renderSectionsFailure re-renders the manager with the rejected input kept.
func renderSectionsFailure(w http.ResponseWriter, r *http.Request, f sectionsFailure) {
	result, err := projections.QueryGetSections(r.Context(), projections.GetSectionsQuery{},
		projections.GetSectionsDeps{SectionStore: stores.SectionStore})
	if err != nil {
		internalError(w, r, err)
		return
	}
	page := sectionsPage{
		Sections:    result.Sections,
		GradeLevels: result.GradeLevels,
		Editing:     f.editing,
		EditErrors:  f.editErrors,
		Draft:       f.draft,
		Errors:      f.errors,
	}
	if f.dialog != "" {
		page.Dialog = &sectionScreen.Feedback{Kind: sectionScreen.Dialog, Level: sectionScreen.LevelError, Message: f.dialog}
	}
	renderTemplateStatus(w, r, f.status, "sections.html", page)
}

func notFound(w http.ResponseWriter, r *http.Request, msg string) {
	if middleware.WantsJSON(r) || r.Method == http.MethodDelete {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": msg})
		return
	}
	http.NotFound(w, r)
}

func setFlash(w http.ResponseWriter, level, msg string) {
	if err := flashes.Set(w, middleware.Flash{Level: level, Message: msg}); err != nil {
		slog.Warn("flash_failed", "error", err.Error())
	}
}
