// Package driveprovider implements the Remote Provider component: a
// FetchWorkbook() call against Google Drive, behind the same "opaque
// external source" interface the HTTP facade's refresh-drive endpoint
// consumes. A fetch failure maps to the spec's RemoteFetchFailed error.
package driveprovider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// ErrRemoteFetchFailed wraps any Drive API or transport failure.
var ErrRemoteFetchFailed = errors.New("driveprovider: remote fetch failed")

// Provider fetches the configured workbook file from Google Drive.
type Provider struct {
	fileID string
	opts   []option.ClientOption
}

// New builds a Provider bound to fileID. Additional Drive client
// options (credentials, API key) are passed through unchanged.
func New(fileID string, opts ...option.ClientOption) *Provider {
	return &Provider{fileID: fileID, opts: opts}
}

// FetchWorkbook downloads the configured file's raw bytes. Google
// Sheets documents are exported as XLSX so the result always feeds the
// same Loader path as an uploaded spreadsheet; any other file is
// downloaded verbatim.
func (p *Provider) FetchWorkbook(ctx context.Context) ([]byte, string, error) {
	if p.fileID == "" {
		return nil, "", fmt.Errorf("%w: no file id configured", ErrRemoteFetchFailed)
	}

	svc, err := drive.NewService(ctx, p.opts...)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrRemoteFetchFailed, err)
	}

	file, err := svc.Files.Get(p.fileID).Fields("name", "mimeType").Context(ctx).Do()
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrRemoteFetchFailed, err)
	}

	var body io.ReadCloser
	if file.MimeType == "application/vnd.google-apps.spreadsheet" {
		const xlsxMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		httpResp, err := svc.Files.Export(p.fileID, xlsxMime).Context(ctx).Download()
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrRemoteFetchFailed, err)
		}
		body = httpResp.Body
	} else {
		httpResp, err := svc.Files.Get(p.fileID).Context(ctx).Download()
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrRemoteFetchFailed, err)
		}
		body = httpResp.Body
	}
	defer body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrRemoteFetchFailed, err)
	}
	return buf.Bytes(), file.Name, nil
}
