package upload

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"heartwave/dating-app/internal/storage"
)

func testPolicy() Policy {
	return Policy{
		MaxBytes:      10 * 1024 * 1024,
		AllowedTypes:  []string{"image/jpeg", "image/png"},
		PreviewMaxDim: 64,
	}
}

// jpegBytes renders a small valid JPEG for preview derivation.
func jpegBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 120, 80))
	for x := 0; x < 120; x++ {
		for y := 0; y < 80; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG))
	return buf.Bytes()
}

func validBlob(t *testing.T) Blob {
	t.Helper()
	data := jpegBytes(t)
	return Blob{
		Name:     "photo.jpg",
		MimeType: "image/jpeg",
		Size:     2 * 1024 * 1024, // declared size drives validation
		Data:     data,
	}
}

// fakeUploader scripts progress events and the terminal outcome.
type fakeUploader struct {
	mu      sync.Mutex
	pcts    []int
	err     error
	calls   int
	lastKey string

	// when set, Upload blocks until released is closed
	block    chan struct{}
	released chan struct{}
}

func (f *fakeUploader) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64, onProgress storage.ProgressFunc) (storage.ObjectRef, error) {
	f.mu.Lock()
	f.calls++
	f.lastKey = key
	block := f.block
	f.mu.Unlock()

	_, _ = io.Copy(io.Discard, body)

	for _, pct := range f.pcts {
		if onProgress != nil {
			onProgress(pct)
		}
	}

	if block != nil {
		close(block)
		<-f.released
	}

	if f.err != nil {
		return storage.ObjectRef{}, f.err
	}
	return storage.ObjectRef{URL: "https://cdn.example.com/" + key, Key: key}, nil
}

func (f *fakeUploader) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestSession(uploader Uploader) *Session {
	return NewSession(testPolicy(), uploader, "chats/default", zerolog.Nop())
}

func TestSelectRejectsDisallowedType(t *testing.T) {
	uploader := &fakeUploader{}
	session := newTestSession(uploader)

	err := session.Select(Blob{Name: "doc.pdf", MimeType: "application/pdf", Size: 1024, Data: []byte("x")})
	require.Error(t, err)

	var classified *ClassifiedError
	require.ErrorAs(t, err, &classified)
	require.Equal(t, CategoryValidation, classified.Category)
	require.Contains(t, classified.Message, "type")

	snap := session.Snapshot()
	require.Equal(t, StatusFailed, snap.Status)
	require.False(t, snap.HasFile)
	require.Nil(t, snap.Preview)
	require.Equal(t, 0, uploader.callCount())
}

func TestSelectRejectsOversizedFile(t *testing.T) {
	session := newTestSession(&fakeUploader{})

	err := session.Select(Blob{Name: "big.png", MimeType: "image/png", Size: 15 * 1024 * 1024, Data: []byte("x")})
	require.Error(t, err)

	var classified *ClassifiedError
	require.ErrorAs(t, err, &classified)
	require.Equal(t, CategoryValidation, classified.Category)
	require.Contains(t, classified.Message, "10 MB")

	snap := session.Snapshot()
	require.Equal(t, StatusFailed, snap.Status)
	require.False(t, snap.HasFile)
}

func TestSelectValidReachesReadyWithPreview(t *testing.T) {
	session := newTestSession(&fakeUploader{})

	require.NoError(t, session.Select(validBlob(t)))

	snap := session.Snapshot()
	require.Equal(t, StatusReady, snap.Status)
	require.True(t, snap.HasFile)
	require.NotNil(t, snap.Preview)
	require.True(t, strings.HasPrefix(snap.Preview.DataURI, "data:image/jpeg;base64,"))
	require.LessOrEqual(t, snap.Preview.Width, 64)
	require.LessOrEqual(t, snap.Preview.Height, 64)
	require.Nil(t, snap.LastError)
	require.Equal(t, 0, snap.Progress)
}

func TestSelectValidationFailureKeepsPreviousFile(t *testing.T) {
	session := newTestSession(&fakeUploader{})

	require.NoError(t, session.Select(validBlob(t)))
	err := session.Select(Blob{Name: "big.png", MimeType: "image/png", Size: 15 * 1024 * 1024})
	require.Error(t, err)

	snap := session.Snapshot()
	require.Equal(t, StatusFailed, snap.Status)
	require.True(t, snap.HasFile, "previously selected file must stay untouched")
	require.NotNil(t, snap.Preview)
}

func TestSelectUndecodableValidatedBlobIsInternalError(t *testing.T) {
	session := newTestSession(&fakeUploader{})

	err := session.Select(Blob{Name: "lie.jpg", MimeType: "image/jpeg", Size: 32, Data: []byte("not an image at all")})
	require.Error(t, err)

	var classified *ClassifiedError
	require.ErrorAs(t, err, &classified)
	require.Equal(t, CategoryInternal, classified.Category)
	require.Equal(t, StatusFailed, session.Snapshot().Status)
}

func TestConfirmIsNoOpUnlessReady(t *testing.T) {
	uploader := &fakeUploader{}
	session := newTestSession(uploader)

	result, err := session.Confirm(context.Background())
	require.ErrorIs(t, err, ErrNotReady)
	require.Nil(t, result)
	require.Equal(t, StatusIdle, session.Snapshot().Status)
	require.Equal(t, 0, uploader.callCount())
}

func TestConfirmSuccess(t *testing.T) {
	uploader := &fakeUploader{pcts: []int{0, 40, 100}}
	session := newTestSession(uploader)

	var observed []int
	session.OnProgress(func(pct int) { observed = append(observed, pct) })

	var settledResult *Result
	var settledCount int
	session.OnSettled(func(result *Result, err *ClassifiedError) {
		settledCount++
		settledResult = result
		require.Nil(t, err)
	})

	require.NoError(t, session.Select(validBlob(t)))
	result, err := session.Confirm(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)

	require.True(t, strings.HasPrefix(result.RemoteURL, "https://cdn.example.com/chats/default/"))
	require.True(t, strings.HasPrefix(result.StoragePath, "chats/default/"))
	require.True(t, strings.HasSuffix(result.StoragePath, ".jpg"))

	// Progress must be non-decreasing; the terminal event is the
	// returned success itself.
	for i := 1; i < len(observed); i++ {
		require.GreaterOrEqual(t, observed[i], observed[i-1])
	}

	snap := session.Snapshot()
	require.Equal(t, StatusSucceeded, snap.Status)
	require.Equal(t, result, snap.Result)
	require.Equal(t, 0, snap.Progress, "progress only reads non-zero while uploading")

	require.Equal(t, 1, settledCount)
	require.Equal(t, result, settledResult)
}

func TestReselectAfterSuccessDropsStaleResult(t *testing.T) {
	uploader := &fakeUploader{pcts: []int{50}}
	session := newTestSession(uploader)

	require.NoError(t, session.Select(validBlob(t)))
	result, err := session.Confirm(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)

	// A rejected follow-up selection must not keep presenting the
	// earlier attempt's outcome.
	err = session.Select(Blob{Name: "doc.pdf", MimeType: "application/pdf", Size: 1024, Data: []byte("x")})
	require.Error(t, err)

	snap := session.Snapshot()
	require.Equal(t, StatusFailed, snap.Status)
	require.Nil(t, snap.Result)
	require.NotNil(t, snap.LastError)
}

func TestConfirmTransportFailureIsClassified(t *testing.T) {
	rawErr := context.DeadlineExceeded
	uploader := &fakeUploader{pcts: []int{30}, err: rawErr}
	session := newTestSession(uploader)

	var settledErr *ClassifiedError
	session.OnSettled(func(result *Result, err *ClassifiedError) {
		require.Nil(t, result)
		settledErr = err
	})

	require.NoError(t, session.Select(validBlob(t)))
	result, err := session.Confirm(context.Background())
	require.Error(t, err)
	require.Nil(t, result)

	var classified *ClassifiedError
	require.ErrorAs(t, err, &classified)
	require.Equal(t, CategoryNetwork, classified.Category)
	require.NotContains(t, classified.Message, rawErr.Error(), "raw error must never reach the user")

	snap := session.Snapshot()
	require.Equal(t, StatusFailed, snap.Status)
	require.Nil(t, snap.Result)
	require.Equal(t, classified, snap.LastError)
	require.Equal(t, classified, settledErr)
}

func TestConfirmPermissionFailure(t *testing.T) {
	uploader := &fakeUploader{err: &smithy.GenericAPIError{Code: "AccessDenied", Message: "nope"}}
	session := newTestSession(uploader)

	require.NoError(t, session.Select(validBlob(t)))
	_, err := session.Confirm(context.Background())

	var classified *ClassifiedError
	require.ErrorAs(t, err, &classified)
	require.Equal(t, CategoryPermission, classified.Category)
}

func TestRetryAfterTransportFailure(t *testing.T) {
	uploader := &fakeUploader{err: context.DeadlineExceeded}
	session := newTestSession(uploader)

	require.NoError(t, session.Select(validBlob(t)))
	_, err := session.Confirm(context.Background())
	require.Error(t, err)

	// Re-selecting clears the error and reaches Ready again.
	require.NoError(t, session.Select(validBlob(t)))
	snap := session.Snapshot()
	require.Equal(t, StatusReady, snap.Status)
	require.Nil(t, snap.LastError)
}

func TestCancelBeforeConfirmMakesNoUploadCall(t *testing.T) {
	uploader := &fakeUploader{}
	session := newTestSession(uploader)

	require.NoError(t, session.Select(validBlob(t)))
	session.Cancel()

	snap := session.Snapshot()
	require.Equal(t, StatusIdle, snap.Status)
	require.False(t, snap.HasFile)
	require.Nil(t, snap.Preview)
	require.Equal(t, 0, uploader.callCount())
}

func TestResetFromAnyStateYieldsIdle(t *testing.T) {
	uploader := &fakeUploader{}

	// From Ready.
	session := newTestSession(uploader)
	require.NoError(t, session.Select(validBlob(t)))
	session.Reset()
	require.Equal(t, StatusIdle, session.Snapshot().Status)

	// From Failed.
	session = newTestSession(uploader)
	_ = session.Select(Blob{MimeType: "application/pdf", Size: 1})
	session.Reset()
	snap := session.Snapshot()
	require.Equal(t, StatusIdle, snap.Status)
	require.Nil(t, snap.LastError)

	// From Succeeded.
	session = newTestSession(uploader)
	require.NoError(t, session.Select(validBlob(t)))
	_, err := session.Confirm(context.Background())
	require.NoError(t, err)
	session.Reset()
	snap = session.Snapshot()
	require.Equal(t, StatusIdle, snap.Status)
	require.Nil(t, snap.Result)
	require.False(t, snap.HasFile)
}

func TestSecondConfirmWhileUploadingIsNoOp(t *testing.T) {
	uploader := &fakeUploader{
		block:    make(chan struct{}),
		released: make(chan struct{}),
	}
	session := newTestSession(uploader)
	require.NoError(t, session.Select(validBlob(t)))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := session.Confirm(context.Background())
		require.NoError(t, err)
	}()

	<-uploader.block // first upload is now in flight

	result, err := session.Confirm(context.Background())
	require.ErrorIs(t, err, ErrNotReady)
	require.Nil(t, result)

	close(uploader.released)
	<-done
	require.Equal(t, StatusSucceeded, session.Snapshot().Status)
	require.Equal(t, 1, uploader.callCount())
}

func TestResetMidUploadAbandonsOutcome(t *testing.T) {
	uploader := &fakeUploader{
		block:    make(chan struct{}),
		released: make(chan struct{}),
	}
	session := newTestSession(uploader)
	require.NoError(t, session.Select(validBlob(t)))

	var settledCount int
	session.OnSettled(func(*Result, *ClassifiedError) { settledCount++ })

	confirmErr := make(chan error, 1)
	go func() {
		_, err := session.Confirm(context.Background())
		confirmErr <- err
	}()

	<-uploader.block
	session.Reset()
	close(uploader.released)

	select {
	case err := <-confirmErr:
		require.ErrorIs(t, err, ErrAbandoned)
	case <-time.After(2 * time.Second):
		t.Fatal("confirm did not return")
	}

	snap := session.Snapshot()
	require.Equal(t, StatusIdle, snap.Status)
	require.Nil(t, snap.Result)
	require.Equal(t, 0, settledCount, "abandoned outcome must be dropped silently")
}

func TestProgressClampedMonotonic(t *testing.T) {
	uploader := &fakeUploader{pcts: []int{10, 50, 30, 80}}
	session := newTestSession(uploader)

	var observed []int
	session.OnProgress(func(pct int) { observed = append(observed, pct) })

	require.NoError(t, session.Select(validBlob(t)))
	_, err := session.Confirm(context.Background())
	require.NoError(t, err)

	require.Equal(t, []int{10, 50, 80}, observed)
}

func TestSelectWhileUploadingIsRejected(t *testing.T) {
	uploader := &fakeUploader{
		block:    make(chan struct{}),
		released: make(chan struct{}),
	}
	session := newTestSession(uploader)
	require.NoError(t, session.Select(validBlob(t)))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = session.Confirm(context.Background())
	}()

	<-uploader.block
	err := session.Select(validBlob(t))
	require.ErrorIs(t, err, ErrUploadInFlight)

	close(uploader.released)
	<-done
}
