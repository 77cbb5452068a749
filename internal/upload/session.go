package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"heartwave/dating-app/internal/storage"
)

var (
	// ErrNotReady is returned by Confirm when there is nothing to send.
	// It is a defensive guard, not a failure: session state is untouched.
	ErrNotReady = errors.New("upload session is not ready to send")

	// ErrUploadInFlight is returned by Select while an upload is running.
	ErrUploadInFlight = errors.New("an upload is already in flight")

	// ErrAbandoned is returned to a Confirm caller whose upload outcome
	// arrived after the session was reset or cancelled.
	ErrAbandoned = errors.New("upload session was abandoned")
)

// Blob is a candidate file: the declared metadata plus the payload.
type Blob struct {
	Name     string
	MimeType string
	Size     int64
	Data     []byte
}

// Result is the stable reference to a successfully uploaded photo.
type Result struct {
	RemoteURL   string
	StoragePath string
}

// Uploader is the blob upload collaborator. storage.ObjectStorage
// satisfies it; tests substitute fakes.
type Uploader interface {
	Upload(ctx context.Context, objectKey, contentType string, body io.Reader, size int64, onProgress storage.ProgressFunc) (storage.ObjectRef, error)
}

// SettledFunc is the side-channel notification fired exactly once per
// upload attempt, with either a result or a classified error.
type SettledFunc func(result *Result, err *ClassifiedError)

// Session owns the lifecycle of a single candidate photo: selection,
// validation, local preview, upload with progress, and the terminal
// outcome. One session per in-flight upload; a single instance is
// reused across repeated selection attempts.
//
// All state is private to the session and guarded by a mutex, since
// progress callbacks arrive on the uploader's goroutine.
type Session struct {
	policy    Policy
	uploader  Uploader
	namespace string // destination prefix, e.g. "users/<id>" or "chats/<id>"
	log       zerolog.Logger

	mu       sync.Mutex
	status   Status
	blob     *Blob
	preview  *Preview
	progress int
	lastErr  *ClassifiedError
	result   *Result
	attempt  uint64 // bumped on reset/cancel so late events are dropped
	inFlight bool

	onProgress storage.ProgressFunc
	onSettled  SettledFunc
}

// Snapshot is a consistent read of the session for rendering. Progress
// is only meaningful while uploading and reads 0 in every other state.
type Snapshot struct {
	Status    Status
	Progress  int
	Preview   *Preview
	LastError *ClassifiedError
	Result    *Result
	HasFile   bool
}

// NewSession creates a session uploading into the given destination
// namespace. The policy comes from configuration.
func NewSession(policy Policy, uploader Uploader, namespace string, log zerolog.Logger) *Session {
	return &Session{
		policy:    policy,
		uploader:  uploader,
		namespace: namespace,
		log:       log,
		status:    StatusIdle,
	}
}

// OnProgress registers an observer for upload progress percentages.
// Calls are monotonically non-decreasing within one attempt.
func (s *Session) OnProgress(fn storage.ProgressFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onProgress = fn
}

// OnSettled registers the side-channel notification for the terminal
// outcome of each attempt.
func (s *Session) OnSettled(fn SettledFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSettled = fn
}

// Select validates a candidate blob and, on success, stores it together
// with a locally derived preview and moves the session to Ready. On a
// validation failure the session moves to Failed with a classified
// error and any previously selected file is left untouched.
func (s *Session) Select(blob Blob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight {
		return ErrUploadInFlight
	}

	// Every selection attempt starts with a clean error slate, and any
	// result from an earlier attempt stops being current.
	s.lastErr = nil
	s.result = nil
	s.status = StatusValidating

	if v := s.policy.Validate(blob); !v.OK {
		cerr := newValidationError(v.Reason, s.policy)
		s.lastErr = cerr
		s.status = StatusFailed
		return cerr
	}

	preview, err := derivePreview(blob, s.policy.PreviewMaxDim)
	if err != nil {
		// Passed validation but undecodable: a defect worth logging.
		s.log.Error().Err(err).Str("mimeType", blob.MimeType).Int64("size", blob.Size).
			Msg("preview derivation failed for validated blob")
		cerr := newInternalError(err)
		s.lastErr = cerr
		s.status = StatusFailed
		return cerr
	}

	s.blob = &blob
	s.preview = preview
	s.progress = 0
	s.result = nil
	s.status = StatusReady
	return nil
}

// Confirm performs the upload of the selected blob. It may only be
// called from Ready; any other state is a no-op returning ErrNotReady
// with all fields unchanged. At most one upload is in flight per
// session: a second call while Uploading is the same no-op.
func (s *Session) Confirm(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	if s.status != StatusReady || s.blob == nil || s.inFlight {
		s.mu.Unlock()
		return nil, ErrNotReady
	}

	s.inFlight = true
	s.status = StatusUploading
	s.progress = 0
	attempt := s.attempt
	blob := *s.blob
	key := s.objectKey(blob)
	s.mu.Unlock()

	ref, err := s.uploader.Upload(ctx, key, blob.MimeType, bytes.NewReader(blob.Data), blob.Size,
		func(pct int) { s.reportProgress(attempt, pct) })

	s.mu.Lock()
	if s.attempt != attempt {
		// Session was torn down mid-upload. The outcome is ignored
		// silently; a fresh attempt may already be running.
		s.mu.Unlock()
		return nil, ErrAbandoned
	}

	s.inFlight = false
	s.progress = 0

	var result *Result
	var cerr *ClassifiedError
	if err != nil {
		cerr = Classify(err)
		s.log.Error().Err(err).Str("key", key).Str("category", string(cerr.Category)).
			Msg("photo upload failed")
		s.lastErr = cerr
		s.status = StatusFailed
	} else {
		result = &Result{RemoteURL: ref.URL, StoragePath: ref.Key}
		s.result = result
		s.status = StatusSucceeded
	}
	notify := s.onSettled
	s.mu.Unlock()

	// The side-channel notification fires exactly once per attempt,
	// outside the lock so observers may read the session.
	if notify != nil {
		notify(result, cerr)
	}

	if cerr != nil {
		return nil, cerr
	}
	return result, nil
}

// Reset clears all transient fields and returns the session to Idle.
// Safe from any state, including mid-upload: the in-flight transfer is
// abandoned, not aborted, and its eventual outcome is dropped.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

// Cancel is an explicit user cancellation: the session passes through
// Cancelled and immediately settles back to Idle.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusCancelled
	s.clearLocked()
}

// Snapshot returns a consistent view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	progress := 0
	if s.status == StatusUploading {
		progress = s.progress
	}

	return Snapshot{
		Status:    s.status,
		Progress:  progress,
		Preview:   s.preview,
		LastError: s.lastErr,
		Result:    s.result,
		HasFile:   s.blob != nil,
	}
}

func (s *Session) clearLocked() {
	s.attempt++
	s.blob = nil
	s.preview = nil
	s.progress = 0
	s.lastErr = nil
	s.result = nil
	s.inFlight = false
	s.status = StatusIdle
}

// reportProgress forwards a progress event if it still belongs to the
// current attempt, clamping to keep the sequence non-decreasing.
func (s *Session) reportProgress(attempt uint64, pct int) {
	s.mu.Lock()
	if s.attempt != attempt || s.status != StatusUploading || pct <= s.progress {
		s.mu.Unlock()
		return
	}
	s.progress = pct
	fn := s.onProgress
	s.mu.Unlock()

	if fn != nil {
		fn(pct)
	}
}

// objectKey builds a unique destination key inside the session's
// namespace, preserving a sensible file extension.
func (s *Session) objectKey(blob Blob) string {
	ext := extensionFor(blob)
	return path.Join(s.namespace, uuid.NewString()+ext)
}

func extensionFor(blob Blob) string {
	switch strings.ToLower(blob.MimeType) {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	}
	if ext := path.Ext(blob.Name); ext != "" {
		return ext
	}
	return ".bin"
}
