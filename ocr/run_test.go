package ocr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/tsawler/scribe/model"
)

// fakeRecognizer maps payload content to recognized text.
type fakeRecognizer struct {
	texts map[string]string
	calls int
}

func (f *fakeRecognizer) RecognizeImage(data []byte) (string, error) {
	f.calls++
	text, ok := f.texts[string(data)]
	if !ok {
		return "", fmt.Errorf("unreadable image")
	}
	return text, nil
}

func TestRunRecognizesAllImages(t *testing.T) {
	rec := &fakeRecognizer{texts: map[string]string{
		"imgA": "first caption",
		"imgB": "second caption",
	}}
	images := []model.ImageElement{
		{ID: "img_0_0", Data: []byte("imgA")},
		{ID: "img_0_1", Data: []byte("imgB")},
	}

	results, err := Run(context.Background(), rec, images)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].ElementID != "img_0_0" || results[0].Text != "first caption" || results[0].Err != "" {
		t.Errorf("results[0] = %+v", results[0])
	}
	if results[1].Text != "second caption" {
		t.Errorf("results[1] = %+v", results[1])
	}
}

func TestRunIsolatesPerImageFailure(t *testing.T) {
	rec := &fakeRecognizer{texts: map[string]string{
		"good": "readable",
	}}
	images := []model.ImageElement{
		{ID: "img_0_0", Data: []byte("bad")},
		{ID: "img_0_1", Data: []byte("good")},
	}

	results, err := Run(context.Background(), rec, images)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Err == "" || results[0].Text != "" {
		t.Errorf("failed image result = %+v", results[0])
	}
	if results[1].Err != "" || results[1].Text != "readable" {
		t.Errorf("healthy image result = %+v", results[1])
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &fakeRecognizer{texts: map[string]string{}}
	images := []model.ImageElement{{ID: "img_0_0", Data: []byte("x")}}

	results, err := Run(ctx, rec, images)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results before cancellation check", len(results))
	}
	if rec.calls != 0 {
		t.Errorf("recognizer called %d times after cancel", rec.calls)
	}
}

func TestRunEmptyImageList(t *testing.T) {
	results, err := Run(context.Background(), &fakeRecognizer{}, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results", len(results))
	}
}
