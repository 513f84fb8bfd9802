package ocr

import (
	"context"

	"github.com/tsawler/scribe/model"
)

// Recognizer is the per-image OCR operation. Both the Tesseract client
// and the stub satisfy it.
type Recognizer interface {
	RecognizeImage(data []byte) (string, error)
}

// ImageText is the OCR outcome for one image element. Err is empty on
// success; a failed image never aborts the run.
type ImageText struct {
	ElementID string `json:"element_id"`
	Text      string `json:"text"`
	Err       string `json:"error,omitempty"`
}

// Run recognizes every image in order. Cancellation stops between
// images and returns the results so far along with ctx.Err(); no write
// lock is required since the snapshot is never mutated.
func Run(ctx context.Context, rec Recognizer, images []model.ImageElement) ([]ImageText, error) {
	results := make([]ImageText, 0, len(images))
	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		text, err := rec.RecognizeImage(img.Data)
		if err != nil {
			results = append(results, ImageText{ElementID: img.ID, Err: err.Error()})
			continue
		}
		results = append(results, ImageText{ElementID: img.ID, Text: text})
	}
	return results, nil
}
