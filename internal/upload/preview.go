package upload

import (
	"bytes"
	"encoding/base64"

	"github.com/disintegration/imaging"
)

// Preview is a locally derived, renderable representation of the
// selected blob. It is not the uploaded remote reference: it exists so
// the UI can show the photo before (and while) it is sent.
type Preview struct {
	DataURI string
	Width   int
	Height  int
}

const defaultPreviewMaxDim = 512

// derivePreview decodes the blob, scales it down to fit maxDim and
// re-encodes it as a JPEG data URI. Validation only checks the declared
// MIME type and size, so a blob that lies about its type surfaces here
// as a decode error.
func derivePreview(blob Blob, maxDim int) (*Preview, error) {
	if maxDim <= 0 {
		maxDim = defaultPreviewMaxDim
	}

	img, err := imaging.Decode(bytes.NewReader(blob.Data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}

	thumb := imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, err
	}

	return &Preview{
		DataURI: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		Width:   thumb.Bounds().Dx(),
		Height:  thumb.Bounds().Dy(),
	}, nil
}
