package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/taximeter/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"receipt_id", "started_at", "finished_at", "duration_seconds",
	"stopped_seconds", "moving_seconds", "total", "final_state",
}

// GetExport handles GET /export.
// It returns every receipt in the journal. Use ?format=csv to receive CSV;
// the default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	var format *string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &format); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid format parameter")
		return
	}
	wantCSV := false
	if format != nil {
		switch *format {
		case "csv":
			wantCSV = true
		case "json":
		default:
			writeError(w, http.StatusUnprocessableEntity, "validation_error", "format must be csv or json")
			return
		}
	}

	recs, err := s.receipts.Export(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if wantCSV {
		writeCSV(w, recs)
		return
	}
	out := make([]ReceiptResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, receiptToResponse(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

// writeCSV encodes receipts as CSV. Amounts are rounded to cents here, at
// presentation time; the journal keeps the unrounded value.
func writeCSV(w http.ResponseWriter, recs []domain.Receipt) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, rec := range recs {
		//nolint:errcheck
		cw.Write(receiptToCSVRecord(rec))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="receipts.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func receiptToCSVRecord(rec domain.Receipt) []string {
	return []string{
		rec.ID.String(),
		rec.StartedAt.UTC().Format(time.RFC3339),
		rec.FinishedAt.UTC().Format(time.RFC3339),
		seconds(rec.Duration),
		seconds(rec.StoppedFor),
		seconds(rec.MovingFor),
		domain.FormatAmount(rec.Total),
		rec.FinalState.String(),
	}
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 1, 64)
}
