// Package googlesheets implements storage.Client on a Google Sheets
// spreadsheet, one sheet (tab) per table.
package googlesheets

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/mrlokans/mazo/internal/apperr"
	"github.com/mrlokans/mazo/internal/storage"
)

const (
	valueInputRaw   = "RAW"
	insertRows      = "INSERT_ROWS"
	lastColumn      = "ZZ"
	tokenURI        = "https://oauth2.googleapis.com/token"
	serviceAccount  = "service_account"
	sheetProperties = "sheets.properties"
)

// Credentials identify the service account used to reach the spreadsheet.
type Credentials struct {
	ClientEmail string
	PrivateKey  string
}

// JSON renders the credentials as a service account key file.
func (c Credentials) JSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"type":         serviceAccount,
		"client_email": c.ClientEmail,
		"private_key":  strings.ReplaceAll(c.PrivateKey, `\n`, "\n"),
		"token_uri":    tokenURI,
	})
}

// Client implements storage.Client for one spreadsheet.
type Client struct {
	spreadsheetID string
	svc           *sheets.Service

	mu       sync.Mutex
	sheetIDs map[string]int64
}

// NewClient authenticates with the service account and returns a client for spreadsheetID.
func NewClient(ctx context.Context, spreadsheetID string, creds Credentials, opts ...option.ClientOption) (*Client, error) {
	if spreadsheetID == "" {
		return nil, apperr.MissingConfig("GOOGLE_SPREADSHEET_ID")
	}
	if creds.ClientEmail == "" {
		return nil, apperr.MissingConfig("GOOGLE_SERVICE_ACCOUNT_EMAIL")
	}
	if creds.PrivateKey == "" {
		return nil, apperr.MissingConfig("GOOGLE_PRIVATE_KEY")
	}

	keyJSON, err := creds.JSON()
	if err != nil {
		return nil, fmt.Errorf("encode credentials: %w", err)
	}
	opts = append([]option.ClientOption{
		option.WithCredentialsJSON(keyJSON),
		option.WithScopes(sheets.SpreadsheetsScope),
	}, opts...)

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewClientWithService(spreadsheetID, svc), nil
}

// NewClientWithService wraps an already configured service.
func NewClientWithService(spreadsheetID string, svc *sheets.Service) *Client {
	return &Client{
		spreadsheetID: spreadsheetID,
		svc:           svc,
		sheetIDs:      make(map[string]int64),
	}
}

func (c *Client) ReadRows(ctx context.Context, table string, r storage.Range) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, a1Range(table, r)).Context(ctx).Do()
	if err != nil {
		return nil, translate(storage.OpReadRows, table, err)
	}
	return toStrings(resp.Values), nil
}

func (c *Client) BatchRead(ctx context.Context, tables []string, r storage.Range) ([][][]string, error) {
	ranges := make([]string, len(tables))
	for i, table := range tables {
		ranges[i] = a1Range(table, r)
	}
	resp, err := c.svc.Spreadsheets.Values.BatchGet(c.spreadsheetID).Ranges(ranges...).Context(ctx).Do()
	if err != nil {
		return nil, translate(storage.OpBatchRead, strings.Join(tables, ","), err)
	}
	if len(resp.ValueRanges) != len(tables) {
		return nil, apperr.Upstream(storage.OpBatchRead,
			fmt.Errorf("expected %d ranges, got %d", len(tables), len(resp.ValueRanges)), false)
	}
	out := make([][][]string, len(tables))
	for i, vr := range resp.ValueRanges {
		out[i] = toStrings(vr.Values)
	}
	return out, nil
}

func (c *Client) AppendRows(ctx context.Context, table string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	body := &sheets.ValueRange{Values: toValues(rows)}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, quote(table), body).
		ValueInputOption(valueInputRaw).
		InsertDataOption(insertRows).
		Context(ctx).
		Do()
	if err != nil {
		return translate(storage.OpAppendRows, table, err)
	}
	return nil
}

func (c *Client) BatchUpdate(ctx context.Context, table string, updates []storage.CellUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	data := make([]*sheets.ValueRange, len(updates))
	for i, u := range updates {
		data[i] = &sheets.ValueRange{
			Range:  fmt.Sprintf("%s!%s%d", quote(table), storage.ColumnName(u.Col), u.Row+1),
			Values: toValues([][]string{u.Values}),
		}
	}
	req := &sheets.BatchUpdateValuesRequest{ValueInputOption: valueInputRaw, Data: data}
	if _, err := c.svc.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return translate(storage.OpBatchUpdate, table, err)
	}
	return nil
}

func (c *Client) DeleteRow(ctx context.Context, table string, index int) error {
	sheetID, err := c.sheetID(ctx, table)
	if err != nil {
		return err
	}
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:         sheetID,
					Dimension:       "ROWS",
					StartIndex:      int64(index),
					EndIndex:        int64(index + 1),
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return translate(storage.OpDeleteRow, table, err)
	}
	return nil
}

func (c *Client) ListTables(ctx context.Context) ([]string, error) {
	props, err := c.properties(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(props))
	for _, p := range props {
		names = append(names, p.Title)
	}
	return names, nil
}

func (c *Client) EnsureTables(ctx context.Context, specs ...storage.TableSpec) ([]string, error) {
	existing, err := c.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	missing := storage.MissingSpecs(existing, specs)
	if len(missing) == 0 {
		return nil, nil
	}

	created, err := c.addSheets(ctx, missing)
	if err != nil {
		if !isDuplicateSheet(err) {
			return nil, err
		}
		// Another process created some of them first. Retry with what is still missing.
		if existing, err = c.ListTables(ctx); err != nil {
			return nil, err
		}
		if created, err = c.addSheets(ctx, storage.MissingSpecs(existing, missing)); err != nil && !isDuplicateSheet(err) {
			return nil, err
		}
	}

	// Headers are written for every table that was missing on entry, whoever created it.
	updates := make([]*sheets.ValueRange, len(missing))
	for i, spec := range missing {
		updates[i] = &sheets.ValueRange{
			Range:  quote(spec.Name) + "!A1",
			Values: toValues([][]string{spec.Header}),
		}
	}
	req := &sheets.BatchUpdateValuesRequest{ValueInputOption: valueInputRaw, Data: updates}
	if _, err := c.svc.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return created, translate(storage.OpEnsureTables, "", err)
	}
	return created, nil
}

func (c *Client) addSheets(ctx context.Context, specs []storage.TableSpec) ([]string, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	requests := make([]*sheets.Request, len(specs))
	names := make([]string, len(specs))
	for i, spec := range specs {
		requests[i] = &sheets.Request{AddSheet: &sheets.AddSheetRequest{
			Properties: &sheets.SheetProperties{Title: spec.Name},
		}}
		names[i] = spec.Name
	}
	req := &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return nil, translate(storage.OpEnsureTables, "", err)
	}
	return names, nil
}

func (c *Client) properties(ctx context.Context) ([]*sheets.SheetProperties, error) {
	resp, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields(sheetProperties).Context(ctx).Do()
	if err != nil {
		return nil, translate(storage.OpListTables, "", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	props := make([]*sheets.SheetProperties, 0, len(resp.Sheets))
	for _, s := range resp.Sheets {
		if s.Properties == nil {
			continue
		}
		c.sheetIDs[s.Properties.Title] = s.Properties.SheetId
		props = append(props, s.Properties)
	}
	return props, nil
}

func (c *Client) sheetID(ctx context.Context, table string) (int64, error) {
	c.mu.Lock()
	id, ok := c.sheetIDs[table]
	c.mu.Unlock()
	if ok {
		return id, nil
	}

	if _, err := c.properties(ctx); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok = c.sheetIDs[table]; !ok {
		return 0, fmt.Errorf("delete from %s: %w", table, storage.ErrTableNotFound)
	}
	return id, nil
}

// a1Range renders r in A1 notation. Absolute row 0 is spreadsheet row 1.
func a1Range(table string, r storage.Range) string {
	start := r.Start + 1
	if r.End > 0 {
		return fmt.Sprintf("%s!A%d:%s%d", quote(table), start, lastColumn, r.End)
	}
	return fmt.Sprintf("%s!A%d:%s", quote(table), start, lastColumn)
}

func quote(table string) string {
	return "'" + strings.ReplaceAll(table, "'", "''") + "'"
}

func toStrings(values [][]interface{}) [][]string {
	rows := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, v := range row {
			if v != nil {
				cells[j] = fmt.Sprint(v)
			}
		}
		rows[i] = cells
	}
	return rows
}

func toValues(rows [][]string) [][]interface{} {
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		values[i] = cells
	}
	return values
}
