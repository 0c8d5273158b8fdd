// internal/app/features/library/handler.go
package library

import (
	"context"
	"time"

	"github.com/dalemusser/inforepo/internal/app/backend"
	uierrors "github.com/dalemusser/inforepo/internal/app/features/errors"
	"github.com/dalemusser/inforepo/internal/app/system/clientsession"
	"github.com/dalemusser/inforepo/internal/app/system/sequence"
	"github.com/dalemusser/inforepo/internal/domain/models"
	"go.uber.org/zap"
)

// ResourceAPI is the subset of the backend client the library needs.
type ResourceAPI interface {
	List(ctx context.Context, query string) ([]models.Resource, error)
	Upload(ctx context.Context, req backend.UploadRequest) error
	Update(ctx context.Context, id, notes, tags string) error
	Delete(ctx context.Context, id string) error
}

// Handler owns the resource browser/editor: search list, upload form,
// inline edits, and deletes. Every mutation is followed by a full list
// refresh from the backend; nothing is patched locally.
type Handler struct {
	API      ResourceAPI
	Sessions *clientsession.Manager
	Seq      *sequence.Sequencer
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger

	// Loc is the zone created_at dates are shown in.
	Loc *time.Location
	// MaxUploadBytes caps the upload request body.
	MaxUploadBytes int64
}

// Options carries the display and limit settings from app config.
type Options struct {
	Location       *time.Location
	MaxUploadBytes int64
}

// NewHandler constructs a Handler. A nil location means UTC; a
// non-positive upload limit means 32 MiB.
func NewHandler(api ResourceAPI, sm *clientsession.Manager, seq *sequence.Sequencer, errLog *uierrors.ErrorLogger, logger *zap.Logger, opts Options) *Handler {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}
	return &Handler{
		API:            api,
		Sessions:       sm,
		Seq:            seq,
		ErrLog:         errLog,
		Log:            logger,
		Loc:            loc,
		MaxUploadBytes: maxUpload,
	}
}

const defaultMaxUploadBytes = 32 << 20
