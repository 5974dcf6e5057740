// Package gofile uploads files to GoFile and returns their download pages.
package gofile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Errors returned by the client.
var (
	ErrServerDiscovery = errors.New("gofile server discovery failed")
	ErrUpload          = errors.New("gofile upload failed")
	ErrBadResponse     = errors.New("gofile returned an unreadable response")
)

// Uploader puts a local file on GoFile.
type Uploader interface {
	Upload(ctx context.Context, path string) (*UploadResult, error)
}

// UploadResult is the data block of a successful upload.
type UploadResult struct {
	DownloadPage string `json:"downloadPage"`
	Code         string `json:"code"`
	FileID       string `json:"fileId"`
	FileName     string `json:"fileName"`
}

// Config for creating a new GoFile client.
type Config struct {
	BaseURL          string        // Optional, defaults to https://api.gofile.io
	UploadURL        string        // Optional, {server} is replaced by the discovered server
	Token            string        // Optional; anonymous upload without it
	DiscoveryTimeout time.Duration // Optional, defaults to 10 seconds
	UploadTimeout    time.Duration // Optional, defaults to 30 minutes
}

// Client implements Uploader against the GoFile HTTP API.
type Client struct {
	baseURL      string
	uploadURL    string
	token        string
	apiClient    *http.Client
	uploadClient *http.Client
}

// NewClient creates a new GoFile client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.gofile.io"
	}
	if cfg.UploadURL == "" {
		cfg.UploadURL = "https://{server}.gofile.io/uploadFile"
	}
	if cfg.DiscoveryTimeout == 0 {
		cfg.DiscoveryTimeout = 10 * time.Second
	}
	if cfg.UploadTimeout == 0 {
		cfg.UploadTimeout = 30 * time.Minute
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		uploadURL: cfg.UploadURL,
		token:     cfg.Token,
		// short timeout for discovery
		apiClient: &http.Client{
			Timeout: cfg.DiscoveryTimeout,
		},
		// payloads may be hundreds of MB
		uploadClient: &http.Client{
			Timeout: cfg.UploadTimeout,
		},
	}
}

type apiResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

type serverData struct {
	Server  string `json:"server"`
	Servers []struct {
		Name string `json:"name"`
		Zone string `json:"zone"`
	} `json:"servers"`
}

// Upload discovers an upload server and streams the file to it.
func (c *Client) Upload(ctx context.Context, path string) (*UploadResult, error) {
	server, err := c.discoverServer(ctx)
	if err != nil {
		return nil, err
	}
	return c.uploadFile(ctx, server, path)
}

func (c *Client) discoverServer(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/servers", nil)
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", ErrServerDiscovery, err)
	}

	resp, err := c.apiClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrServerDiscovery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrServerDiscovery, resp.StatusCode)
	}

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrServerDiscovery, err)
	}
	if envelope.Status != "ok" {
		return "", fmt.Errorf("%w: status %q", ErrServerDiscovery, envelope.Status)
	}

	var data serverData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return "", fmt.Errorf("%w: decode data: %v", ErrServerDiscovery, err)
	}

	// Current API lists servers, the legacy one returned a single name
	if len(data.Servers) > 0 && data.Servers[0].Name != "" {
		return data.Servers[0].Name, nil
	}
	if data.Server != "" {
		return data.Server, nil
	}
	return "", fmt.Errorf("%w: no server assigned", ErrServerDiscovery)
}

func (c *Client) uploadFile(ctx context.Context, server, path string) (*UploadResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open file: %v", ErrUpload, err)
	}
	defer file.Close()

	// Stream the multipart body so large files are never held in memory
	pr, pw := io.Pipe()
	defer pr.Close()
	writer := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(c.writeBody(writer, file, filepath.Base(path)))
	}()

	target := strings.ReplaceAll(c.uploadURL, "{server}", server)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, pr)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrUpload, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.uploadClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUpload, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpload, resp.StatusCode, truncate(string(respBody), 200))
	}

	var envelope apiResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if envelope.Status != "ok" {
		return nil, fmt.Errorf("%w: status %q", ErrUpload, envelope.Status)
	}

	var result UploadResult
	if err := json.Unmarshal(envelope.Data, &result); err != nil {
		return nil, fmt.Errorf("%w: decode data: %v", ErrBadResponse, err)
	}
	if result.DownloadPage == "" {
		return nil, fmt.Errorf("%w: missing download page", ErrBadResponse)
	}

	return &result, nil
}

func (c *Client) writeBody(writer *multipart.Writer, file io.Reader, filename string) error {
	if c.token != "" {
		if err := writer.WriteField("token", c.token); err != nil {
			return fmt.Errorf("write token field: %w", err)
		}
	}

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copy file data: %w", err)
	}

	return writer.Close()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
