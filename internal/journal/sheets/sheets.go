package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"rutapro/internal/core"
	"rutapro/internal/journal"
	"rutapro/internal/stats"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client appends finalized day records to a Google Sheets spreadsheet,
// one row per day. The spreadsheet is the driver's long-term ledger.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	daysSheet     string
}

var _ journal.DayAppender = (*Client)(nil)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Optional: GOOGLE_SHEET_NAME (default "Days") for the target tab.
// Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	daysSheet := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if daysSheet == "" {
		daysSheet = "Days"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		daysSheet:     daysSheet,
	}, nil
}

// newSheetsService initializes a Sheets Service. A personal OAuth token
// from cmd/oauth-init takes precedence; otherwise Service Account
// credentials are used.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	ts, err := oauthTokenSource(ctx)
	if err != nil {
		return nil, err
	}
	if ts != nil {
		service, err := gsheet.NewService(ctx, goption.WithTokenSource(ts))
		if err != nil {
			return nil, fmt.Errorf("create sheets service: %w", err)
		}
		slog.InfoContext(ctx, "Google Sheets service created", "auth", "oauth")
		return service, nil
	}

	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created")
	return service, nil
}

// AppendDay writes one closed day as a spreadsheet row:
// date, start, end, income, expenses, profit, services, minutes worked.
// Monetary values are written in currency units, not cents.
func (c *Client) AppendDay(ctx context.Context, day core.Day, totals stats.DayTotals) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if day.End == nil {
		return "", core.ErrNoActiveDay
	}

	// Find the next empty row from the date column.
	rng := fmt.Sprintf("%s!A:A", c.daysSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get sheet dimensions for %s: %w", c.daysSheet, err)
	}
	nextRow := len(resp.Values) + 1

	dataRange := fmt.Sprintf("%s!A%d:H%d", c.daysSheet, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{{
		day.Start.Date.String(),
		day.Start.StartTime.String(),
		day.End.EndTime.String(),
		totals.Income.Units(),
		totals.Expenses.Units(),
		totals.Profit.Units(),
		totals.Services,
		totals.Minutes,
	}}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update row in sheet %s: %w", c.daysSheet, err)
	}

	slog.InfoContext(ctx, "Day appended to sheet",
		"day_id", day.Start.ID,
		"date", day.Start.Date.String(),
		"row", nextRow)
	return dataRange, nil
}
