// Package export produces XLSX workbooks for the downstream laytime
// workflow, which lives in spreadsheets.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/laytimelab/sof-extractor/internal/align"
	"github.com/laytimelab/sof-extractor/internal/sof"
)

// TimelineXLSX returns a workbook with one row per extracted event, in
// timeline order.
func TimelineXLSX(document string, events []sof.Event) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Timeline"
	f.SetSheetName("Sheet1", sheet)

	header := []any{"#", "Event", "Date", "Time", "From", "To", "Handwritten", "Source Pages"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, e := range events {
		row := []any{
			i + 1,
			e.Event,
			deref(e.Date),
			deref(e.Time),
			frameSide(e.TimeFrame, true),
			frameSide(e.TimeFrame, false),
			e.HasHandwritten,
			formatSources(e.SourcePages),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	_ = f.SetColWidth(sheet, "B", "B", 42)
	_ = f.SetColWidth(sheet, "H", "H", 24)
	_ = f.SetCellValue(sheet, "J1", "Document")
	_ = f.SetCellValue(sheet, "K1", document)
	_ = f.SetColWidth(sheet, "K", "K", 32)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ComparisonXLSX returns a workbook with one row per canonical milestone,
// showing the matched row and event text from each table.
func ComparisonXLSX(cmp sof.Comparison, master, agent []align.TableRow) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Comparison"
	f.SetSheetName("Sheet1", sheet)

	header := []any{"Milestone", "Master Row", "Master Event", "Agent Row", "Agent Event"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, key := range sof.Vocabulary() {
		entry := cmp[key]
		row := []any{
			string(key),
			rowCell(entry.MasterSOFRowNum),
			rowText(master, entry.MasterSOFRowNum),
			rowCell(entry.AgentSOFRowNum),
			rowText(agent, entry.AgentSOFRowNum),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %s: %w", key, err)
		}
	}
	_ = f.SetColWidth(sheet, "A", "A", 26)
	_ = f.SetColWidth(sheet, "C", "C", 42)
	_ = f.SetColWidth(sheet, "E", "E", 42)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func frameSide(tf *sof.TimeFrame, start bool) string {
	if tf == nil {
		return ""
	}
	if start {
		return deref(tf.Start)
	}
	return deref(tf.End)
}

func formatSources(sources []sof.SourcePage) string {
	out := ""
	for i, s := range sources {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s p%d", s.Role, s.Page)
	}
	return out
}

func rowCell(n *int) any {
	if n == nil {
		return ""
	}
	return *n
}

func rowText(rows []align.TableRow, n *int) string {
	if n == nil {
		return ""
	}
	for _, r := range rows {
		if r.RowNum == *n {
			return r.Event
		}
	}
	return ""
}
