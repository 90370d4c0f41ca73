package recognize

import (
    "fmt"

    "github.com/otiai10/gosseract/v2"
)

// TesseractFactory opens gosseract-backed OCR sessions.
type TesseractFactory struct{}

// NewSession creates one Tesseract client configured for the language.
// The caller owns the session and must Close it.
func (f *TesseractFactory) NewSession(language string) (Session, error) {
    c := gosseract.NewClient()
    if language != "" {
        if err := c.SetLanguage(language); err != nil {
            _ = c.Close()
            return nil, fmt.Errorf("set language %q: %w", language, err)
        }
    }
    return &tesseractSession{client: c}, nil
}

type tesseractSession struct {
    client *gosseract.Client
}

func (s *tesseractSession) Recognize(imagePath string) (string, error) {
    if err := s.client.SetImage(imagePath); err != nil {
        return "", fmt.Errorf("set image: %w", err)
    }
    text, err := s.client.Text()
    if err != nil {
        return "", fmt.Errorf("recognize text: %w", err)
    }
    return text, nil
}

func (s *tesseractSession) Close() error {
    return s.client.Close()
}
