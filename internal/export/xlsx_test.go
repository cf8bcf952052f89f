package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/laytimelab/sof-extractor/internal/align"
	"github.com/laytimelab/sof-extractor/internal/sof"
)

func strp(s string) *string { return &s }
func intp(n int) *int       { return &n }

func openWorkbook(t *testing.T, b []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func cell(t *testing.T, f *excelize.File, sheet, axis string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, axis)
	if err != nil {
		t.Fatalf("get cell %s: %v", axis, err)
	}
	return v
}

func TestTimelineXLSX(t *testing.T) {
	events := []sof.Event{
		{
			Event: "NOR Tendered", Date: strp("2023-06-15"), Time: strp("0900"),
			SourcePages: []sof.SourcePage{{Page: 1, Role: sof.RoleMaster}, {Page: 2, Role: sof.RoleMaster}},
		},
		{
			Event:     "Cargo operations",
			Date:      strp("2023-06-15"),
			TimeFrame: &sof.TimeFrame{Start: strp("1000"), End: strp("1800")},
		},
	}
	b, err := TimelineXLSX("mv-example-sof.pdf", events)
	if err != nil {
		t.Fatalf("TimelineXLSX: %v", err)
	}

	f := openWorkbook(t, b)
	if got := cell(t, f, "Timeline", "B1"); got != "Event" {
		t.Fatalf("header B1 = %q", got)
	}
	if got := cell(t, f, "Timeline", "B2"); got != "NOR Tendered" {
		t.Fatalf("B2 = %q", got)
	}
	if got := cell(t, f, "Timeline", "D2"); got != "0900" {
		t.Fatalf("D2 = %q", got)
	}
	if got := cell(t, f, "Timeline", "H2"); got != "master p1, master p2" {
		t.Fatalf("H2 = %q", got)
	}
	if got := cell(t, f, "Timeline", "E3"); got != "1000" {
		t.Fatalf("E3 = %q", got)
	}
	if got := cell(t, f, "Timeline", "F3"); got != "1800" {
		t.Fatalf("F3 = %q", got)
	}
	if got := cell(t, f, "Timeline", "J1"); got != "Document" {
		t.Fatalf("J1 = %q", got)
	}
	if got := cell(t, f, "Timeline", "K1"); got != "mv-example-sof.pdf" {
		t.Fatalf("K1 = %q", got)
	}
}

func TestComparisonXLSX(t *testing.T) {
	master := []align.TableRow{{Event: "Notice of Readiness tendered", RowNum: 1}}
	agent := []align.TableRow{{Event: "NOR", RowNum: 1}, {Event: "All made fast", RowNum: 2}}
	cmp := sof.Comparison{}
	for _, key := range sof.Vocabulary() {
		cmp[key] = sof.ComparisonEntry{}
	}
	cmp[sof.KeyNORTendered] = sof.ComparisonEntry{MasterSOFRowNum: intp(1), AgentSOFRowNum: intp(1)}
	cmp[sof.KeyAllFast] = sof.ComparisonEntry{AgentSOFRowNum: intp(2)}

	b, err := ComparisonXLSX(cmp, master, agent)
	if err != nil {
		t.Fatalf("ComparisonXLSX: %v", err)
	}

	f := openWorkbook(t, b)
	rows, err := f.GetRows("Comparison")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != len(sof.Vocabulary())+1 {
		t.Fatalf("expected %d rows, got %d", len(sof.Vocabulary())+1, len(rows))
	}

	// nor_tendered is third in the vocabulary, so row 4 in the sheet.
	if got := cell(t, f, "Comparison", "A4"); got != "nor_tendered" {
		t.Fatalf("A4 = %q", got)
	}
	if got := cell(t, f, "Comparison", "C4"); got != "Notice of Readiness tendered" {
		t.Fatalf("C4 = %q", got)
	}
	if got := cell(t, f, "Comparison", "E4"); got != "NOR" {
		t.Fatalf("E4 = %q", got)
	}
	// all_fast matched only on the agent side.
	if got := cell(t, f, "Comparison", "B9"); got != "" {
		t.Fatalf("B9 = %q", got)
	}
	if got := cell(t, f, "Comparison", "E9"); got != "All made fast" {
		t.Fatalf("E9 = %q", got)
	}
}
