// Package checkin implements the submit-check-in operation.
//
// A submission is validated, checked against the roster and the dedup index,
// its photo is stored, and the record is appended under the store's write
// lock with a dedup guard so two concurrent submissions for the same student
// cannot both succeed.
package checkin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"rollcall-hq/attendance/pkg/attendance"
	"rollcall-hq/attendance/pkg/attendance/dedup"
	"rollcall-hq/attendance/pkg/attendance/store"
)

// DefaultMaxPhotoBytes is the upload size limit.
const DefaultMaxPhotoBytes = 8 << 20

// AllowedContentTypes lists the accepted photo MIME types.
var AllowedContentTypes = []string{"image/jpeg", "image/png", "image/gif"}

// Submission is one check-in request.
type Submission struct {
	StudentID     string    `validate:"required,max=64"`
	SourceAddress string    `validate:"max=128"`
	Photo         io.Reader `validate:"required"`
	PhotoSize     int64     `validate:"gt=0"`
	ContentType   string    `validate:"required,oneof=image/jpeg image/png image/gif"`
}

// Outcome labels reported to the metrics hook.
const (
	OutcomeAccepted  = "accepted"
	OutcomeDuplicate = "duplicate"
	OutcomeInvalid   = "invalid"
	OutcomeUnknown   = "unknown_student"
	OutcomeError     = "error"
)

// RecordStore is the store surface used by the service.
type RecordStore interface {
	AppendIf(ctx context.Context, rec attendance.Record, guard store.Guard) (attendance.Record, error)
}

// PhotoStore stores and removes photos.
type PhotoStore interface {
	Save(ctx context.Context, src io.Reader) (string, error)
	Delete(ctx context.Context, ref string) error
}

// Config configures the service.
type Config struct {
	// MaxPhotoBytes rejects larger photos.
	// Default: 8 MiB
	MaxPhotoBytes int64

	// AllowUnknownStudents accepts identifiers missing from a loaded roster,
	// naming them "Sinh viên <id>".
	AllowUnknownStudents bool
}

// Service handles check-in submissions.
type Service struct {
	store    RecordStore
	photos   PhotoStore
	roster   attendance.RosterSource
	index    *dedup.Index
	clock    *attendance.Clock
	config   Config
	validate *validator.Validate
	logger   *slog.Logger

	// OnOutcome, when set, is called once per submission with one of the
	// Outcome labels.
	OnOutcome func(outcome string)
}

// NewService creates a check-in service. roster may be nil, in which case
// every identifier is accepted.
func NewService(st RecordStore, photos PhotoStore, roster attendance.RosterSource, index *dedup.Index, clock *attendance.Clock, config Config) *Service {
	if config.MaxPhotoBytes <= 0 {
		config.MaxPhotoBytes = DefaultMaxPhotoBytes
	}

	return &Service{
		store:    st,
		photos:   photos,
		roster:   roster,
		index:    index,
		clock:    clock,
		config:   config,
		validate: validator.New(),
		logger:   slog.Default().With("component", "attendance.checkin"),
	}
}

// Submit records a check-in. It returns *attendance.ValidationError,
// *attendance.NotFoundError (unknown student), *attendance.DuplicateError,
// attendance.ErrStoreCorrupt or *attendance.StorageError on failure.
func (s *Service) Submit(ctx context.Context, sub Submission) (attendance.Record, error) {
	rec, outcome, err := s.submit(ctx, sub)
	if s.OnOutcome != nil {
		s.OnOutcome(outcome)
	}
	return rec, err
}

func (s *Service) submit(ctx context.Context, sub Submission) (attendance.Record, string, error) {
	sub.StudentID = strings.TrimSpace(sub.StudentID)
	sub.ContentType = normalizeContentType(sub.ContentType)

	if err := s.validateSubmission(sub); err != nil {
		return attendance.Record{}, OutcomeInvalid, err
	}

	name, err := s.resolveName(sub.StudentID)
	if err != nil {
		return attendance.Record{}, OutcomeUnknown, err
	}

	now := s.clock.Now()
	timestamp, day := s.clock.Stamp(now)

	// Cheap pre-check so duplicates do not leave orphaned photos behind. The
	// authoritative check is the append guard below.
	if s.index != nil && s.index.HasAttendedOn(sub.StudentID, day) {
		return attendance.Record{}, OutcomeDuplicate, attendance.NewDuplicateError(sub.StudentID, day)
	}

	photoRef, err := s.photos.Save(ctx, io.LimitReader(sub.Photo, s.config.MaxPhotoBytes))
	if err != nil {
		s.logger.Error("failed to store photo", "mssv", sub.StudentID, "error", err)
		return attendance.Record{}, OutcomeError, err
	}

	rec := attendance.Record{
		StudentID:     sub.StudentID,
		StudentName:   name,
		SourceAddress: sub.SourceAddress,
		PhotoRef:      photoRef,
		Timestamp:     timestamp,
		Day:           day,
	}

	stored, err := s.store.AppendIf(ctx, rec, func(existing []attendance.Record) error {
		return dedup.Conflict(existing, rec.StudentID, rec.Day)
	})
	if err != nil {
		if delErr := s.photos.Delete(context.WithoutCancel(ctx), photoRef); delErr != nil {
			s.logger.Warn("failed to remove photo of rejected check-in", "photo", photoRef, "error", delErr)
		}

		var dup *attendance.DuplicateError
		if errors.As(err, &dup) {
			return attendance.Record{}, OutcomeDuplicate, err
		}
		s.logger.Error("failed to append check-in", "mssv", sub.StudentID, "error", err)
		return attendance.Record{}, OutcomeError, err
	}

	s.logger.Info("check-in recorded",
		"id", stored.ID,
		"mssv", stored.StudentID,
		"day", stored.Day,
		"ip", stored.SourceAddress,
	)

	return stored, OutcomeAccepted, nil
}

func (s *Service) validateSubmission(sub Submission) error {
	if err := s.validate.Struct(sub); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return toValidationError(verrs[0])
		}
		return attendance.NewValidationError("submission", err.Error())
	}

	if sub.PhotoSize > s.config.MaxPhotoBytes {
		return attendance.NewValidationError("hinhAnh",
			fmt.Sprintf("photo exceeds %d bytes", s.config.MaxPhotoBytes))
	}
	return nil
}

func toValidationError(fe validator.FieldError) *attendance.ValidationError {
	switch fe.Field() {
	case "StudentID":
		if fe.Tag() == "required" {
			return attendance.NewValidationError("mssv", "student id is required")
		}
		return attendance.NewValidationError("mssv", "student id is too long")
	case "Photo", "PhotoSize":
		return attendance.NewValidationError("hinhAnh", "photo is required")
	case "ContentType":
		return attendance.NewValidationError("hinhAnh",
			"photo must be one of "+strings.Join(AllowedContentTypes, ", "))
	case "SourceAddress":
		return attendance.NewValidationError("ip", "source address is too long")
	default:
		return attendance.NewValidationError(fe.Field(), fe.Error())
	}
}

// resolveName returns the roster name for id. With an empty or missing
// roster every id is accepted under a generated name.
func (s *Service) resolveName(id string) (string, error) {
	fallback := "Sinh viên " + id

	if s.roster == nil || len(s.roster.Entries()) == 0 {
		return fallback, nil
	}

	entry, ok := s.roster.Lookup(id)
	if !ok {
		if s.config.AllowUnknownStudents {
			return fallback, nil
		}
		return "", attendance.NewNotFoundError("student", id)
	}
	if strings.TrimSpace(entry.DisplayName) == "" {
		return fallback, nil
	}
	return entry.DisplayName, nil
}

func normalizeContentType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct == "image/jpg" || ct == "image/pjpeg" {
		ct = "image/jpeg"
	}
	return ct
}
