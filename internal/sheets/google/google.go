package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"expenses/internal/core"
	ports "expenses/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Header is written to an empty mirror sheet before the first row.
var Header = []any{"ID", "Date", "Amount", "Category", "Description"}

// Options selects the spreadsheet and the service account used to reach it.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// Client mirrors expenses into columns A..E of one sheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.ExpenseMirror = (*Client)(nil)

// New builds a client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	creds, err := loadCredentials(ctx, opts)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created",
		"spreadsheet_id", opts.SpreadsheetID,
		"sheet", sheetOrDefault(opts.SheetName))

	return NewWithService(svc, opts.SpreadsheetID, opts.SheetName), nil
}

// NewWithService wraps an already configured service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetName string) *Client {
	return &Client{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(spreadsheetID),
		sheetName:     sheetOrDefault(sheetName),
	}
}

func sheetOrDefault(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Expenses"
	}
	return name
}

// loadCredentials prefers inline JSON, then the file, then
// GOOGLE_APPLICATION_CREDENTIALS.
func loadCredentials(ctx context.Context, opts Options) ([]byte, error) {
	inline := strings.TrimSpace(opts.CredentialsJSON)
	file := strings.TrimSpace(opts.CredentialsFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		slog.InfoContext(ctx, "Using inline service account credentials")
		return []byte(inline), nil
	case file != "":
		slog.InfoContext(ctx, "Reading service account credentials", "path", file)
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// AppendExpense adds a row for e unless one with the same id exists.
func (c *Client) AppendExpense(ctx context.Context, e core.Expense) error {
	ids, err := c.readIDColumn(ctx)
	if err != nil {
		return err
	}
	if findRowByID(ids, e.ID) > 0 {
		slog.DebugContext(ctx, "Expense already mirrored", "id", e.ID)
		return nil
	}

	values := [][]any{expenseRow(e)}
	if len(ids) == 0 {
		values = [][]any{Header, expenseRow(e)}
	}

	rng := fmt.Sprintf("%s!A:E", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", c.sheetName, err)
	}

	updated := ""
	if resp.Updates != nil {
		updated = resp.Updates.UpdatedRange
	}
	slog.InfoContext(ctx, "Mirrored expense", "id", e.ID, "range", updated)
	return nil
}

// DeleteExpense clears the row holding id. A missing row is not an error.
func (c *Client) DeleteExpense(ctx context.Context, id int64) error {
	ids, err := c.readIDColumn(ctx)
	if err != nil {
		return err
	}
	row := findRowByID(ids, id)
	if row == 0 {
		slog.DebugContext(ctx, "Expense not present in mirror", "id", id)
		return nil
	}

	rng := fmt.Sprintf("%s!A%d:E%d", c.sheetName, row, row)
	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}

	slog.InfoContext(ctx, "Removed mirrored expense", "id", id, "range", rng)
	return nil
}

// MirroredIDs reads column A once and returns every id row. The header and
// cleared rows are skipped.
func (c *Client) MirroredIDs(ctx context.Context) ([]int64, error) {
	values, err := c.readIDColumn(ctx)
	if err != nil {
		return nil, err
	}
	return idsInColumn(values), nil
}

func (c *Client) readIDColumn(ctx context.Context) ([][]any, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

func expenseRow(e core.Expense) []any {
	return []any{e.ID, e.Date, e.Amount, e.Category, e.Description}
}

// findRowByID returns the 1-based sheet row whose first cell is id, or 0.
func findRowByID(values [][]any, id int64) int {
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if cellID, ok := parseID(row[0]); ok && cellID == id {
			return i + 1
		}
	}
	return 0
}

func idsInColumn(values [][]any) []int64 {
	ids := make([]int64, 0, len(values))
	for _, row := range values {
		if len(row) == 0 {
			continue
		}
		if id, ok := parseID(row[0]); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// parseID accepts both formatted ("12") and unformatted (12.0) cells.
func parseID(cell any) (int64, bool) {
	s := strings.TrimSpace(fmt.Sprint(cell))
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, false
	}
	return int64(f), true
}
