package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/toyinlola/topsis/pkg/delivery"
	"github.com/toyinlola/topsis/pkg/interfaces"
	"github.com/toyinlola/topsis/pkg/report"
	"github.com/toyinlola/topsis/pkg/table"
	"github.com/toyinlola/topsis/pkg/topsis"
)

// Client-facing messages.
const (
	msgFileRequired     = "CSV file required"
	msgInvalidEmail     = "Invalid email format"
	msgMailUnconfigured = "Email is not configured"
	msgMailFailed       = "Email sending failed"
	msgNotFound         = "file not found"
)

var validate = validator.New()

type rankResponse struct {
	Table      []map[string]any `json:"table"`
	Download   string           `json:"download"`
	EmailSent  bool             `json:"emailSent"`
	EmailError *string          `json:"emailError"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "backend running"})
}

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", tooBig.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, msgFileRequired)
		return
	}
	defer file.Close()

	sendMail := formBool(r.FormValue("send_mail"))
	email := strings.TrimSpace(r.FormValue("email"))
	if sendMail && validate.Var(email, "required,email") != nil {
		writeError(w, http.StatusBadRequest, msgInvalidEmail)
		return
	}

	weights, err := topsis.ParseWeights(r.FormValue("weights"))
	if err != nil {
		s.rankFailed(w, err)
		return
	}
	impacts, err := topsis.ParseImpacts(r.FormValue("impacts"))
	if err != nil {
		s.rankFailed(w, err)
		return
	}

	rpt, csvData, err := s.rank(ctx, file, weights, impacts)
	if err != nil {
		s.rankFailed(w, err)
		return
	}
	s.metrics.rankings.WithLabelValues("ok").Inc()
	s.metrics.alternatives.Observe(float64(len(rpt.Alternatives)))

	name, err := s.store.Save(csvData)
	if err != nil {
		slog.Error("storing result failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not store result")
		return
	}
	s.metrics.storedFiles.Set(float64(s.store.Count()))

	slog.Info("ranking completed",
		"report", rpt.ID,
		"alternatives", len(rpt.Alternatives),
		"criteria", len(rpt.Criteria),
		"result", name,
	)

	resp := rankResponse{
		Table:    report.Records(rpt),
		Download: "/api/download/" + name,
	}
	if sendMail {
		resp.EmailSent, resp.EmailError = s.deliver(ctx, email, csvData)
	}
	writeJSON(w, http.StatusOK, resp)
}

// rank parses the uploaded table, scores it and renders the result CSV.
func (s *Server) rank(ctx context.Context, r io.Reader, weights []float64, impacts []interfaces.Impact) (*interfaces.Report, []byte, error) {
	ctx, span := s.tracer.Start(ctx, "topsis.Rank",
		trace.WithAttributes(attribute.Int("topsis.criteria", len(weights))),
	)
	defer span.End()

	fail := func(err error) (*interfaces.Report, []byte, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}

	tbl, err := s.parser.Parse(ctx, r)
	if err != nil {
		return fail(err)
	}
	span.SetAttributes(attribute.Int("topsis.alternatives", len(tbl.Rows)))

	rpt, err := s.gen.Evaluate(s.calc, tbl, weights, impacts)
	if err != nil {
		return fail(err)
	}

	var buf bytes.Buffer
	if err := report.NewCSVFormatter().Format(&buf, rpt); err != nil {
		return fail(fmt.Errorf("server: rendering result: %w", err))
	}
	return rpt, buf.Bytes(), nil
}

func (s *Server) rankFailed(w http.ResponseWriter, err error) {
	if isInputError(err) {
		s.metrics.rankings.WithLabelValues("invalid").Inc()
		slog.Debug("ranking rejected", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.metrics.rankings.WithLabelValues("error").Inc()
	slog.Error("ranking failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// deliver mails the result. Failures are reported in the response only.
func (s *Server) deliver(ctx context.Context, to string, csvData []byte) (bool, *string) {
	if s.mailer == nil {
		s.metrics.mailsSent.WithLabelValues("unconfigured").Inc()
		msg := msgMailUnconfigured
		return false, &msg
	}
	if err := s.mailer.Send(ctx, delivery.NewResultMessage(to, csvData)); err != nil {
		s.metrics.mailsSent.WithLabelValues("failed").Inc()
		slog.Error("result mail failed", "to", to, "error", err)
		msg := msgMailFailed
		return false, &msg
	}
	s.metrics.mailsSent.WithLabelValues("sent").Inc()
	return true, nil
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	path, err := s.store.Path(name)
	if err != nil {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	http.ServeFile(w, r, path)
}

// isInputError reports whether err should be answered with 400.
func isInputError(err error) bool {
	return topsis.IsInputError(err) ||
		errors.Is(err, table.ErrEmptyTable) ||
		errors.Is(err, table.ErrTooFewColumns) ||
		errors.Is(err, table.ErrNoRows) ||
		errors.Is(err, table.ErrMalformedTable)
}

func formBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1":
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("writing response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
