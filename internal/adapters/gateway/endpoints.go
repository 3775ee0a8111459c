package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"plagdesk/internal/domain/account"
	"plagdesk/internal/domain/check"
	"plagdesk/internal/domain/result"
)

// UploadAck is the /files/upload response.
type UploadAck struct {
	Message string    `json:"message"`
	FileID  result.ID `json:"file_id"`
	Preview string    `json:"extracted_text_preview"`
}

func jsonBody(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return b, nil
}

// Register creates an account.
// PRE: creds validated for registration
// POST: nil on 2xx, *RequestError carrying the server message otherwise
func (c *Client) Register(ctx context.Context, creds account.Credentials) error {
	body, err := jsonBody(creds)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, request{method: http.MethodPost, path: "/auth/register", body: body, contentType: "application/json"})
	return err
}

// Login exchanges credentials for a bearer token. A 401 here still clears
// the store; the returned *AuthError carries the server's message.
// PRE: creds validated for login
// POST: returns a non-empty token or an error
func (c *Client) Login(ctx context.Context, creds account.Credentials) (string, error) {
	body, err := jsonBody(creds)
	if err != nil {
		return "", err
	}
	data, err := c.do(ctx, request{method: http.MethodPost, path: "/auth/login", body: body, contentType: "application/json"})
	if err != nil {
		return "", err
	}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(data, &resp); err != nil || resp.AccessToken == "" {
		return "", &RequestError{Method: http.MethodPost, Path: "/auth/login", StatusCode: http.StatusOK, Message: "Login response did not include a token"}
	}
	return resp.AccessToken, nil
}

// multipartFiles builds a multipart body with one part per field.
func multipartFiles(fields []string, files []*check.File) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for i, f := range files {
		part, err := w.CreateFormFile(fields[i], f.Name)
		if err != nil {
			return nil, "", fmt.Errorf("create form file: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("write form file: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func (c *Client) postFiles(ctx context.Context, path string, fields []string, files []*check.File) ([]byte, error) {
	body, contentType, err := multipartFiles(fields, files)
	if err != nil {
		return nil, err
	}
	data, err := c.do(ctx, request{method: http.MethodPost, path: path, body: body, contentType: contentType})
	return data, err
}

// Upload stores a single file without checking it.
func (c *Client) Upload(ctx context.Context, f *check.File) (UploadAck, error) {
	data, err := c.postFiles(ctx, "/files/upload", []string{"file"}, []*check.File{f})
	if err != nil {
		return UploadAck{}, err
	}
	var ack UploadAck
	if err := json.Unmarshal(data, &ack); err != nil {
		return UploadAck{}, fmt.Errorf("decode upload response: %w", err)
	}
	return ack, nil
}

// CheckPlagiarism compares two files. The body is returned unmodified.
// PRE: both files passed check.Request.Validate
func (c *Client) CheckPlagiarism(ctx context.Context, file1, file2 *check.File) (json.RawMessage, error) {
	return c.postFiles(ctx, "/files/check", []string{"file1", "file2"}, []*check.File{file1, file2})
}

// InternetCheck checks one file against web sources. The body is returned unmodified.
// PRE: file passed check.Request.Validate
func (c *Client) InternetCheck(ctx context.Context, file *check.File) (json.RawMessage, error) {
	return c.postFiles(ctx, "/files/internet-check", []string{"file"}, []*check.File{file})
}

// ListResults fetches one page of history.
// PRE: page >= 1, perPage >= 1
func (c *Client) ListResults(ctx context.Context, page, perPage int) (result.HistoryPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	data, err := c.do(ctx, request{method: http.MethodGet, path: "/files/results", query: q})
	if err != nil {
		return result.HistoryPage{}, err
	}
	var p result.HistoryPage
	if err := json.Unmarshal(data, &p); err != nil {
		return result.HistoryPage{}, fmt.Errorf("decode results page: %w", err)
	}
	return p, nil
}

// GetResult fetches one stored result. The body is returned unmodified.
// POST: a 404 satisfies errors.Is(err, ErrNotFound)
func (c *Client) GetResult(ctx context.Context, id result.ID) (json.RawMessage, error) {
	data, err := c.do(ctx, request{method: http.MethodGet, path: "/files/results/" + url.PathEscape(id.String())})
	return data, err
}

// DeleteResult deletes one stored result.
func (c *Client) DeleteResult(ctx context.Context, id result.ID) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: "/files/results/" + url.PathEscape(id.String())})
	return err
}

// Analytics fetches the account summary.
func (c *Client) Analytics(ctx context.Context) (result.Analytics, error) {
	data, err := c.do(ctx, request{method: http.MethodGet, path: "/files/analytics"})
	if err != nil {
		return result.Analytics{}, err
	}
	var a result.Analytics
	if err := json.Unmarshal(data, &a); err != nil {
		return result.Analytics{}, fmt.Errorf("decode analytics: %w", err)
	}
	return a, nil
}

// DownloadReport fetches the server-generated PDF for id.
func (c *Client) DownloadReport(ctx context.Context, id result.ID) (result.Report, error) {
	data, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/files/report/" + url.PathEscape(id.String()),
		accept: "application/pdf",
	})
	if err != nil {
		return result.Report{}, err
	}
	return result.Report{Filename: result.ReportFilename(id), Data: data}, nil
}
