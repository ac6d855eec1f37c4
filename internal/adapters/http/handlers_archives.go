package web

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"schooladmin/internal/adapters/export"
	"schooladmin/internal/adapters/http/middleware"
	"schooladmin/internal/application/projections"
	"schooladmin/internal/domain/archive"
	"schooladmin/internal/metrics"
	"schooladmin/internal/screens/archives"
)

// archivesPage is the data for archives.html.
type archivesPage struct {
	Empty            bool
	Panels           []archives.Panel
	EmptyMessage     string
	NoRecordsMessage string
}

// handleArchives handles GET /admin/archives
func handleArchives(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetArchives(r.Context(), projections.GetArchivesQuery{},
		projections.GetArchivesDeps{ArchiveStore: stores.ArchiveStore})
	if err != nil {
		internalError(w, r, err)
		return
	}

	if middleware.WantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]any{"archivesData": result.Groups})
		return
	}

	browser := archives.NewBrowser(result.Groups, selectionFromQuery(r))
	renderTemplate(w, r, "archives.html", archivesPage{
		Empty:            browser.Empty(),
		Panels:           browser.Panels(),
		EmptyMessage:     archives.EmptyMessage,
		NoRecordsMessage: archives.NoRecordsMessage,
	})
}

// selectionFromQuery reads ?year=<id>&tab=<kind>. Anything malformed means
// every tab is closed.
func selectionFromQuery(r *http.Request) archive.Selection {
	q := r.URL.Query()
	year, err := strconv.ParseInt(q.Get("year"), 10, 64)
	if err != nil {
		return archive.Selection{}
	}
	kind, err := archive.ParseTabKind(q.Get("tab"))
	if err != nil {
		return archive.Selection{}
	}
	return archive.Open(year, kind)
}

// handleArchiveExport handles GET /admin/archives/{id}/export
func handleArchiveExport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	group, err := projections.QueryGetArchive(r.Context(), projections.GetArchiveQuery{SchoolYearID: id},
		projections.GetArchivesDeps{ArchiveStore: stores.ArchiveStore})
	if errors.Is(err, archive.ErrSchoolYearNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteGroup(&buf, group); err != nil {
		internalError(w, r, fmt.Errorf("export %s: %w", group.SchoolYear.Name, err))
		return
	}
	metrics.ArchiveExports.Inc()
	slog.Info("archive_event", "event", "export", "school_year", group.SchoolYear.Name, "bytes", buf.Len())

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(group.SchoolYear.Name)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}
