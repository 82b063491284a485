package merek

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrRecognitionFailed = errors.New("captcha recognition failed")

// Recognizer turns a captcha image into the text it shows. `image` is a data uri
// (data:image/png;base64,...).
type Recognizer interface {
	Recognize(ctx context.Context, image string) (string, error)
}

// RecognizerFunc adapts a function into a Recognizer.
type RecognizerFunc func(ctx context.Context, image string) (string, error)

func (f RecognizerFunc) Recognize(ctx context.Context, image string) (string, error) {
	return f(ctx, image)
}

// CaptchaChallenge is everything the login page hands out for a single login
// attempt. It can only be submitted once.
type CaptchaChallenge struct {
	ImageData    string   `json:"image_data"`
	ChallengeKey string   `json:"challenge_key"`
	CsrfToken    string   `json:"csrf_token"`
	Cookies      []string `json:"cookies"`
}

// ImageBase64 is the image without its data uri prefix.
func (c CaptchaChallenge) ImageBase64() string {
	_, data, found := strings.Cut(c.ImageData, ",")
	if !found {
		return c.ImageData
	}
	return data
}

// solveCaptcha asks the recognizer once, there are no retries since every retry
// needs a new challenge anyway.
func solveCaptcha(ctx context.Context, recognizer Recognizer, image string) (string, error) {
	text, err := recognizer.Recognize(ctx, image)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRecognitionFailed, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty answer", ErrRecognitionFailed)
	}
	return text, nil
}
