package handler

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/wallpapersverse/wallpapers-api/domains/wallpapers/be/service"
	platformlogging "github.com/wallpapersverse/wallpapers-api/platform/go/logging"
)

// bulkImportColumns is the required CSV header, in order.
var bulkImportColumns = []string{"title", "category", "tags", "resolution", "deviceType", "imageUrl"}

// bulkImport ingests a CSV of wallpaper records. Rows are processed
// independently: a bad row is reported with its line number and the rest of
// the file still imports.
func (h *Handler) bulkImport(w http.ResponseWriter, r *http.Request) {
	reader := csv.NewReader(http.MaxBytesReader(w, r.Body, 10<<20))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		h.writeValidation(w, "csv header row is required")
		return
	}
	if err := validateBulkHeader(header); err != nil {
		h.writeValidation(w, err.Error())
		return
	}

	var (
		created   []service.Wallpaper
		rowErrors []string
		line      = 1
	)
	for {
		line++
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		wallpaper, err := h.svc.Create(r.Context(), service.CreateInput{
			Title:      row[0],
			Category:   row[1],
			Tags:       splitTags(row[2]),
			Resolution: row[3],
			DeviceType: row[4],
			ImageURL:   row[5],
		})
		if err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		created = append(created, wallpaper)

		if h.ensureCategory != nil {
			if err := h.ensureCategory(r.Context(), wallpaper.Category); err != nil {
				platformlogging.FromRequest(r, h.logger).Warn("category auto-creation failed",
					zap.String("category", wallpaper.Category), zap.Error(err))
			}
		}
	}

	status := http.StatusCreated
	if len(created) == 0 && len(rowErrors) > 0 {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]any{
		"success":  len(rowErrors) == 0,
		"imported": len(created),
		"errors":   stringList(rowErrors),
	})
}

func validateBulkHeader(header []string) error {
	if len(header) != len(bulkImportColumns) {
		return fmt.Errorf("csv header must have %d columns: %s",
			len(bulkImportColumns), strings.Join(bulkImportColumns, ","))
	}
	for i, want := range bulkImportColumns {
		if strings.TrimSpace(header[i]) != want {
			return fmt.Errorf("csv column %d must be %q, got %q", i+1, want, header[i])
		}
	}
	return nil
}

func stringList(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
