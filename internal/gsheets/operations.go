package gsheets

import (
	"context"

	"google.golang.org/api/sheets/v4"

	"github.com/JonMunkholm/sheethooks/internal/grid"
)

// Sheets lists the tabs of a spreadsheet in display order.
func (c *Client) Sheets(ctx context.Context, spreadsheetID string) ([]SheetInfo, error) {
	svc, err := c.read()
	if err != nil {
		return nil, err
	}

	resp, err := svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties(sheetId,title,index)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, translate("Failed to fetch spreadsheet metadata", err)
	}

	out := make([]SheetInfo, 0, len(resp.Sheets))
	for _, s := range resp.Sheets {
		if s.Properties == nil {
			continue
		}
		out = append(out, SheetInfo{
			SheetID: s.Properties.SheetId,
			Title:   s.Properties.Title,
			Index:   s.Properties.Index,
		})
	}
	return out, nil
}

// FindSheet picks title out of a metadata listing.
func FindSheet(all []SheetInfo, title string) (SheetInfo, error) {
	titles := make([]string, 0, len(all))
	for _, s := range all {
		if s.Title == title {
			return s, nil
		}
		titles = append(titles, s.Title)
	}
	return SheetInfo{}, &SheetNotFoundError{Title: title, Available: titles}
}

// Values reads an A1 range.
func (c *Client) Values(ctx context.Context, spreadsheetID, rng string) (grid.Grid, error) {
	svc, err := c.read()
	if err != nil {
		return nil, err
	}

	resp, err := svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, translate("Failed to read sheet data", err)
	}
	return grid.FromValues(resp.Values), nil
}

// Append adds row after the last row of the sheet's data table. The API
// picks the destination row.
func (c *Client) Append(ctx context.Context, spreadsheetID, sheet string, row []string) (WriteResult, error) {
	svc, err := c.write()
	if err != nil {
		return WriteResult{}, err
	}

	vr := &sheets.ValueRange{Values: [][]interface{}{toValues(row)}}
	resp, err := svc.Spreadsheets.Values.Append(spreadsheetID, grid.A1(sheet, ""), vr).
		ValueInputOption(valueInputUserEntered).
		InsertDataOption(insertRows).
		Context(ctx).
		Do()
	if err != nil {
		return WriteResult{}, translate("Failed to add row", err)
	}

	var res WriteResult
	if u := resp.Updates; u != nil {
		res = WriteResult{UpdatedRange: u.UpdatedRange, UpdatedRows: u.UpdatedRows, UpdatedCells: u.UpdatedCells}
	}
	return res, nil
}

// WriteRow overwrites the cells starting at rng with row.
func (c *Client) WriteRow(ctx context.Context, spreadsheetID, rng string, row []string) (WriteResult, error) {
	svc, err := c.write()
	if err != nil {
		return WriteResult{}, err
	}

	vr := &sheets.ValueRange{
		MajorDimension: dimensionRows,
		Values:         [][]interface{}{toValues(row)},
	}
	resp, err := svc.Spreadsheets.Values.Update(spreadsheetID, rng, vr).
		ValueInputOption(valueInputUserEntered).
		Context(ctx).
		Do()
	if err != nil {
		return WriteResult{}, translate("Failed to write row", err)
	}
	return WriteResult{
		UpdatedRange: resp.UpdatedRange,
		UpdatedRows:  resp.UpdatedRows,
		UpdatedCells: resp.UpdatedCells,
	}, nil
}

// BatchWrite sends every planned cell write of one sheet in a single
// values:batchUpdate call, one range per cell.
func (c *Client) BatchWrite(ctx context.Context, spreadsheetID, sheet string, writes []grid.CellWrite) (WriteResult, error) {
	if len(writes) == 0 {
		return WriteResult{}, nil
	}
	svc, err := c.write()
	if err != nil {
		return WriteResult{}, err
	}

	data := make([]*sheets.ValueRange, len(writes))
	for i, w := range writes {
		data[i] = &sheets.ValueRange{
			Range:          grid.A1(sheet, w.Cell),
			MajorDimension: dimensionRows,
			Values:         [][]interface{}{{w.Value}},
		}
	}
	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: valueInputUserEntered,
		Data:             data,
	}

	resp, err := svc.Spreadsheets.Values.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return WriteResult{}, translate("Failed to update rows", err)
	}
	return WriteResult{UpdatedRows: resp.TotalUpdatedRows, UpdatedCells: resp.TotalUpdatedCells}, nil
}

// DeleteRows removes rows in the order given. Callers pass the output of
// grid.PlanDelete so later deletions are not shifted by earlier ones.
func (c *Client) DeleteRows(ctx context.Context, spreadsheetID string, sheetID int64, plan []grid.RowDeletion) error {
	if len(plan) == 0 {
		return nil
	}
	svc, err := c.write()
	if err != nil {
		return err
	}

	reqs := make([]*sheets.Request, len(plan))
	for i, d := range plan {
		reqs[i] = &sheets.Request{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  dimensionRows,
					StartIndex: d.StartIndex,
					EndIndex:   d.EndIndex,
					// Sheet id 0 is valid and must still be sent.
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
			},
		}
	}

	_, err = svc.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{Requests: reqs}).
		Context(ctx).
		Do()
	return translate("Failed to delete rows", err)
}

// AddSheet creates a tab and returns its properties.
func (c *Client) AddSheet(ctx context.Context, spreadsheetID, title string) (SheetInfo, error) {
	svc, err := c.write()
	if err != nil {
		return SheetInfo{}, err
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}
	resp, err := svc.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return SheetInfo{}, translate("Failed to create tab", err)
	}

	info := SheetInfo{Title: title}
	if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil && resp.Replies[0].AddSheet.Properties != nil {
		p := resp.Replies[0].AddSheet.Properties
		info = SheetInfo{SheetID: p.SheetId, Title: p.Title, Index: p.Index}
	}
	return info, nil
}

func toValues(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
