package server

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"rollcall-hq/attendance/pkg/attendance"
	"rollcall-hq/attendance/pkg/attendance/checkin"
	"rollcall-hq/attendance/pkg/attendance/export"
	"rollcall-hq/attendance/pkg/roster"
	"rollcall-hq/attendance/pkg/telemetry/logging"
)

// multipartOverhead is allowed on top of the photo limit for the form
// boundaries and the mssv field.
const multipartOverhead = 64 << 10

// logEntry is a record as shown in log listings. Photo is the photo to
// display: the stored one while retained, the placeholder otherwise.
type logEntry struct {
	attendance.Record
	Photo         string `json:"photo"`
	PhotoRetained bool   `json:"photo_retained"`
}

func (s *Server) handleCheckin(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.config.Server.MaxUploadBytes+multipartOverhead)

	if err := c.Request.ParseMultipartForm(s.config.Server.MaxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, err)
			return
		}
		respondError(c, attendance.NewValidationError("hinhAnh", "malformed multipart form"))
		return
	}

	sub := checkin.Submission{
		StudentID:     c.PostForm("mssv"),
		SourceAddress: c.ClientIP(),
	}

	file, header, err := c.Request.FormFile("hinhAnh")
	switch {
	case err == nil:
		defer func(f multipart.File) { _ = f.Close() }(file)
		sub.Photo = file
		sub.PhotoSize = header.Size
		sub.ContentType = header.Header.Get("Content-Type")
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// Submit reports the missing photo.
	default:
		respondError(c, attendance.NewValidationError("hinhAnh", "unreadable photo upload"))
		return
	}

	ctx := logging.WithStudentID(c.Request.Context(), strings.TrimSpace(sub.StudentID))
	rec, err := s.deps.Checkins.Submit(ctx, sub)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": rec.StudentID + " - " + rec.StudentName + " checked in",
		"data":    rec,
	})
}

func (s *Server) handleLogs(c *gin.Context) {
	day, ok := s.dayQuery(c, "date")
	if !ok {
		return
	}
	start, ok := s.dayQuery(c, "start")
	if !ok {
		return
	}
	end, ok := s.dayQuery(c, "end")
	if !ok {
		return
	}

	var records []attendance.Record
	switch {
	case day != "":
		records = s.deps.Store.FilterByDay(day)
	case start != "" || end != "":
		if start != "" && end != "" && start > end {
			respondError(c, attendance.NewValidationError("start", "start must not be after end"))
			return
		}
		records = s.deps.Store.FilterByDateRange(start, end)
	default:
		records = s.deps.Store.All()
	}

	entries := make([]logEntry, 0, len(records))
	for _, r := range records {
		photo := s.deps.Sweeper.DisplayPhoto(r)
		entries = append(entries, logEntry{
			Record:        r,
			Photo:         photo,
			PhotoRetained: r.HasPhoto() && photo == r.PhotoRef,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(entries),
		"data":    entries,
	})
}

func (s *Server) handleSummary(c *gin.Context) {
	day, ok := s.dayQuery(c, "date")
	if !ok {
		return
	}

	summary := s.deps.Aggregator.Summary(day)
	for i := range summary.Attended {
		a := &summary.Attended[i]
		a.PhotoRef = s.displayPhoto(a.PhotoRef, a.Timestamp)
	}
	for id, d := range summary.Details {
		d.PhotoRef = s.displayPhoto(d.PhotoRef, d.Timestamp)
		summary.Details[id] = d
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    summary,
	})
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    s.deps.Aggregator.Stats(),
	})
}

func (s *Server) handleDeleteRecord(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, attendance.NewValidationError("id", "record id is required"))
		return
	}

	rec, err := s.deps.Store.DeleteByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "record deleted",
		"data":    rec,
	})
}

func (s *Server) handleSweep(c *gin.Context) {
	// A disconnecting client must not abort a sweep half way.
	ctx := context.WithoutCancel(c.Request.Context())

	res, err := s.deps.Sweeper.SweepOnce(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "sweep completed",
		"data":    res,
	})
}

func (s *Server) handleSweepStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    s.deps.Sweeper.Status(),
	})
}

func (s *Server) handleExport(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", export.FormatJSON))
	day, ok := s.dayQuery(c, "date")
	if !ok {
		return
	}

	exporter, err := export.ForFormat(format)
	if err != nil {
		respondError(c, err)
		return
	}

	var records []attendance.Record
	if day != "" {
		records = s.deps.Store.FilterByDay(day)
	} else {
		records = s.deps.Store.All()
	}

	var buf bytes.Buffer
	if err := exporter.Export(c.Request.Context(), records, &buf); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(format, day)+`"`)
	c.Data(http.StatusOK, exporter.ContentType(), buf.Bytes())
}

func (s *Server) handleRoster(c *gin.Context) {
	r, ok := s.requireRoster(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"info":    r.Info(),
		"data":    r.Entries(),
	})
}

func (s *Server) handleRosterReload(c *gin.Context) {
	r, ok := s.requireRoster(c)
	if !ok {
		return
	}

	err := r.Reload(c.Request.Context())
	if t := s.deps.Telemetry; t != nil {
		t.Metrics.RecordRosterReload(err)
	}
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, roster.ErrRosterNotFound) {
			status = http.StatusNotFound
		}
		_ = c.Error(err)
		c.AbortWithStatusJSON(status, errorResponse{
			Error:   codeUnavailable,
			Message: "roster reload failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "roster reloaded",
		"info":    r.Info(),
	})
}

func (s *Server) handleConsistency(c *gin.Context) {
	r, ok := s.requireRoster(c)
	if !ok {
		return
	}
	day, ok := s.dayQuery(c, "date")
	if !ok {
		return
	}

	var records []attendance.Record
	if day != "" {
		records = s.deps.Store.FilterByDay(day)
	} else {
		records = s.deps.Store.All()
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    roster.CheckConsistency(records, r.Entries(), day),
	})
}

// dayQuery reads an optional YYYY-MM-DD query parameter. It writes a 400
// response and returns false when the value is malformed.
func (s *Server) dayQuery(c *gin.Context, name string) (string, bool) {
	day := strings.TrimSpace(c.Query(name))
	if day == "" {
		return "", true
	}
	if _, err := s.deps.Clock.ParseDay(day); err != nil {
		respondError(c, attendance.NewValidationError(name, "expected a date in YYYY-MM-DD format"))
		return "", false
	}
	return day, true
}

func (s *Server) requireRoster(c *gin.Context) (*roster.Roster, bool) {
	if s.deps.Roster == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, errorResponse{
			Error:   codeUnavailable,
			Message: "no roster is configured",
		})
		return nil, false
	}
	return s.deps.Roster, true
}

func (s *Server) displayPhoto(ref, timestamp string) string {
	return s.deps.Sweeper.DisplayPhoto(attendance.Record{PhotoRef: ref, Timestamp: timestamp})
}
