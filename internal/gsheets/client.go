// Package gsheets wraps the Google Sheets v4 API with the handful of calls
// the workflow modules need.
//
// Reads and writes use separate services. Reads authenticate with an API
// key when one is configured and fall back to the service account. Writes
// always use the service account. Missing or malformed service-account
// credentials do not prevent construction; they surface as a
// CredentialError on the first call that needs them.
package gsheets

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi/transport"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	valueInputUserEntered = "USER_ENTERED"
	insertRows            = "INSERT_ROWS"
	dimensionRows         = "ROWS"
)

// Options configures a Client.
type Options struct {
	// APIKey authenticates reads. Optional when ServiceAccountJSON is set.
	APIKey string

	// ServiceAccountJSON is the service-account key file content.
	ServiceAccountJSON []byte

	// Endpoint overrides the API base URL.
	Endpoint string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// HTTPClient, when set, is used as-is for both reads and writes and
	// no credentials are applied.
	HTTPClient *http.Client
}

// SheetInfo describes one tab of a spreadsheet.
type SheetInfo struct {
	SheetID int64  `json:"sheet_id"`
	Title   string `json:"title"`
	Index   int64  `json:"index"`
}

// WriteResult summarizes a values write.
type WriteResult struct {
	UpdatedRange string
	UpdatedRows  int64
	UpdatedCells int64
}

// Client issues Sheets API calls. It is safe for concurrent use.
type Client struct {
	reader    *sheets.Service
	readerErr error
	writer    *sheets.Service
	writerErr error
}

// New builds a Client. ctx is retained by the service-account token source
// and should outlive the Client.
func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 10 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 30 * time.Second
	}

	var readHTTP, writeHTTP *http.Client
	c := &Client{}

	if opts.HTTPClient != nil {
		readHTTP, writeHTTP = opts.HTTPClient, opts.HTTPClient
	} else {
		var saTransport http.RoundTripper
		switch {
		case len(opts.ServiceAccountJSON) == 0:
			c.writerErr = &CredentialError{Reason: "service account JSON is not configured"}
		default:
			conf, err := google.JWTConfigFromJSON(opts.ServiceAccountJSON, sheets.SpreadsheetsScope)
			if err != nil {
				c.writerErr = &CredentialError{Reason: "invalid service account JSON", Err: err}
				break
			}
			saTransport = conf.Client(ctx).Transport
			writeHTTP = &http.Client{Transport: saTransport, Timeout: opts.WriteTimeout}
		}

		switch {
		case opts.APIKey != "":
			readHTTP = &http.Client{
				Transport: &transport.APIKey{Key: opts.APIKey},
				Timeout:   opts.ReadTimeout,
			}
		case saTransport != nil:
			readHTTP = &http.Client{Transport: saTransport, Timeout: opts.ReadTimeout}
		default:
			c.readerErr = &CredentialError{Reason: "neither an API key nor a service account is configured"}
		}
	}

	var err error
	if readHTTP != nil {
		if c.reader, err = newService(ctx, readHTTP, opts.Endpoint); err != nil {
			return nil, err
		}
	}
	if writeHTTP != nil {
		if c.writer, err = newService(ctx, writeHTTP, opts.Endpoint); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func newService(ctx context.Context, hc *http.Client, endpoint string) (*sheets.Service, error) {
	opts := []option.ClientOption{option.WithHTTPClient(hc)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	return sheets.NewService(ctx, opts...)
}

// CanWrite reports whether write credentials are usable, and why not.
func (c *Client) CanWrite() error { return c.writerErr }

func (c *Client) read() (*sheets.Service, error) {
	if c.readerErr != nil {
		return nil, c.readerErr
	}
	return c.reader, nil
}

func (c *Client) write() (*sheets.Service, error) {
	if c.writerErr != nil {
		return nil, c.writerErr
	}
	return c.writer, nil
}
