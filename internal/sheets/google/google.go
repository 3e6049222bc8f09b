// Package google looks up metadata of linked Google spreadsheets.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/erpdesk/erpdesk/internal/records"
)

// ErrNotSpreadsheet is returned for URLs that do not reference a spreadsheet.
var ErrNotSpreadsheet = errors.New("google: not a spreadsheet url")

// Resolver suggests a display name for a spreadsheet URL.
type Resolver interface {
	Title(ctx context.Context, rawURL string) (string, error)
}

// Client resolves spreadsheet titles through the Sheets API.
type Client struct {
	svc    *gsheet.Service
	logger *slog.Logger
}

// Credentials selects the service account used by the client.
type Credentials struct {
	JSON string
	File string
}

// Configured reports whether any credential source is set.
func (c Credentials) Configured() bool {
	return strings.TrimSpace(c.JSON) != "" || strings.TrimSpace(c.File) != ""
}

// New builds a read-only Sheets client from service account credentials.
func New(ctx context.Context, creds Credentials, logger *slog.Logger) (*Client, error) {
	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(creds.JSON) != "":
		credentialsJSON = []byte(creds.JSON)
	case strings.TrimSpace(creds.File) != "":
		data, err := os.ReadFile(creds.File)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("google: missing service account credentials")
	}
	return NewWithOptions(ctx, logger,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
}

// NewWithOptions builds a client from raw client options.
func NewWithOptions(ctx context.Context, logger *slog.Logger, opts ...goption.ClientOption) (*Client, error) {
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{svc: svc, logger: logger}, nil
}

// Title fetches the spreadsheet title for rawURL.
func (c *Client) Title(ctx context.Context, rawURL string) (string, error) {
	id, ok := records.SpreadsheetID(rawURL)
	if !ok {
		return "", ErrNotSpreadsheet
	}
	sheet, err := c.svc.Spreadsheets.Get(id).Fields("properties.title").Context(ctx).Do()
	if err != nil {
		c.logger.Warn("spreadsheet lookup failed", slog.String("spreadsheet", id), slog.Any("error", err))
		return "", fmt.Errorf("get spreadsheet %s: %w", id, err)
	}
	if sheet.Properties == nil {
		return "", nil
	}
	return strings.TrimSpace(sheet.Properties.Title), nil
}
