package sheets

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/blockitin/blockitin-ai/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const (
	defaultTokenURL = "https://oauth2.googleapis.com/token"
	defaultBaseURL  = "https://sheets.googleapis.com/v4"
	sheetsScope     = "https://www.googleapis.com/auth/spreadsheets"

	// tokens are refreshed this long before they expire
	tokenSkew = time.Minute
)

// Workbook is a Sheets REST API v4 client for one spreadsheet, signed in as
// a service account.
type Workbook struct {
	spreadsheetID string
	clientEmail   string
	key           *rsa.PrivateKey
	client        *http.Client

	tokenURL string
	baseURL  string

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

// NewWorkbook parses the service-account key from cfg.
func NewWorkbook(cfg config.SheetsConfig) (*Workbook, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(cfg.PrivateKey))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse Google service account key")
	}

	return &Workbook{
		spreadsheetID: cfg.SpreadsheetID,
		clientEmail:   cfg.ClientEmail,
		key:           key,
		client:        &http.Client{Timeout: cfg.Timeout},
		tokenURL:      defaultTokenURL,
		baseURL:       defaultBaseURL,
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// token returns a cached access token, exchanging a fresh JWT assertion
// when the cached one is about to expire.
func (w *Workbook) token(ctx context.Context) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.accessToken != "" && time.Now().Before(w.expiresAt.Add(-tokenSkew)) {
		return w.accessToken, nil
	}

	now := time.Now()
	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":   w.clientEmail,
		"scope": sheetsScope,
		"aud":   w.tokenURL,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}).SignedString(w.key)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token assertion")
	}

	form := url.Values{
		"grant_type": {"urn:ietf:params:oauth:grant-type:jwt-bearer"},
		"assertion":  {assertion},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tok tokenResponse
	if err := w.send(req, &tok); err != nil {
		return "", errors.Wrap(err, "failed to obtain access token")
	}

	w.accessToken = tok.AccessToken
	w.expiresAt = now.Add(time.Duration(tok.ExpiresIn) * time.Second)
	return w.accessToken, nil
}

func (w *Workbook) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	token, err := w.token(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	endpoint := w.baseURL + "/spreadsheets/" + url.PathEscape(w.spreadsheetID) + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return w.send(req, out)
}

func (w *Workbook) send(req *http.Request, out any) error {
	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type valueRange struct {
	Range  string  `json:"range,omitempty"`
	Values [][]any `json:"values"`
}

// Append adds row after the last filled row of sheet.
func (w *Workbook) Append(ctx context.Context, sheet string, row []any) (map[string]any, error) {
	var out map[string]any
	err := w.call(ctx, http.MethodPost,
		"/values/"+url.PathEscape(sheet+"!A:Z")+":append",
		url.Values{"valueInputOption": {"USER_ENTERED"}},
		valueRange{Values: [][]any{row}},
		&out,
	)
	return out, err
}

// Read returns the cells of sheet!cells, e.g. Read(ctx, "ChatLogs", "A:E").
func (w *Workbook) Read(ctx context.Context, sheet, cells string) ([][]any, error) {
	var out valueRange
	if err := w.call(ctx, http.MethodGet, "/values/"+url.PathEscape(sheet+"!"+cells), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Values, nil
}

// Metadata describes the spreadsheet.
type Metadata struct {
	Title  string   `json:"title"`
	Sheets []string `json:"sheets"`
}

func (w *Workbook) Metadata(ctx context.Context) (Metadata, error) {
	var out struct {
		Properties struct {
			Title string `json:"title"`
		} `json:"properties"`
		Sheets []struct {
			Properties struct {
				Title string `json:"title"`
			} `json:"properties"`
		} `json:"sheets"`
	}
	err := w.call(ctx, http.MethodGet, "", url.Values{"fields": {"properties.title,sheets.properties.title"}}, nil, &out)
	if err != nil {
		return Metadata{}, err
	}

	meta := Metadata{Title: out.Properties.Title, Sheets: make([]string, 0, len(out.Sheets))}
	for _, s := range out.Sheets {
		meta.Sheets = append(meta.Sheets, s.Properties.Title)
	}
	return meta, nil
}

// EnsureSheet creates sheet with a header row when it does not exist yet.
func (w *Workbook) EnsureSheet(ctx context.Context, sheet string, headers []string) error {
	meta, err := w.Metadata(ctx)
	if err != nil {
		return err
	}
	for _, title := range meta.Sheets {
		if title == sheet {
			return nil
		}
	}

	addSheet := map[string]any{
		"requests": []any{
			map[string]any{"addSheet": map[string]any{"properties": map[string]any{"title": sheet}}},
		},
	}
	if err := w.call(ctx, http.MethodPost, ":batchUpdate", nil, addSheet, nil); err != nil {
		return errors.Wrapf(err, "failed to add sheet %s", sheet)
	}

	row := make([]any, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	cells := fmt.Sprintf("%s!A1:%c1", sheet, 'A'+rune(len(headers)-1))
	return w.call(ctx, http.MethodPut, "/values/"+url.PathEscape(cells),
		url.Values{"valueInputOption": {"USER_ENTERED"}},
		valueRange{Values: [][]any{row}},
		nil,
	)
}
