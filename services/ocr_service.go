package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"backend/models"
)

// OCRClient extracts invoice fields from an uploaded document so the
// office can review instead of retype.
type OCRClient interface {
	ExtractInvoice(ctx context.Context, filename string, document io.Reader) (models.InvoicePrefill, error)
}

// HTTPOCRService talks to the document extraction API configured in the
// environment.
type HTTPOCRService struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewHTTPOCRService() (*HTTPOCRService, error) {
	baseURL := os.Getenv("OCR_API_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("ocr api not configured")
	}
	return &HTTPOCRService{
		baseURL:    baseURL,
		apiKey:     os.Getenv("OCR_API_KEY"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// ExtractInvoice uploads the document and maps the provider response
// onto the prefill fields.
func (s *HTTPOCRService) ExtractInvoice(ctx context.Context, filename string, document io.Reader) (models.InvoicePrefill, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("document", filename)
	if err != nil {
		return models.InvoicePrefill{}, fmt.Errorf("error building upload: %v", err)
	}
	if _, err := io.Copy(part, document); err != nil {
		return models.InvoicePrefill{}, fmt.Errorf("error reading document: %v", err)
	}
	if err := writer.Close(); err != nil {
		return models.InvoicePrefill{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/invoices/extract", &body)
	if err != nil {
		return models.InvoicePrefill{}, fmt.Errorf("error creating ocr request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return models.InvoicePrefill{}, fmt.Errorf("error calling ocr api: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.InvoicePrefill{}, fmt.Errorf("ocr api returned status %d", resp.StatusCode)
	}

	var prefill models.InvoicePrefill
	if err := json.NewDecoder(resp.Body).Decode(&prefill); err != nil {
		return models.InvoicePrefill{}, fmt.Errorf("error decoding ocr response: %v", err)
	}
	return prefill, nil
}
