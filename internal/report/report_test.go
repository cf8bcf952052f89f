package report

import (
	"strings"
	"testing"

	"github.com/laytimelab/sof-extractor/internal/align"
	"github.com/laytimelab/sof-extractor/internal/sof"
)

func intp(n int) *int { return &n }

func testInput() Input {
	cmp := sof.Comparison{}
	for _, key := range sof.Vocabulary() {
		cmp[key] = sof.ComparisonEntry{}
	}
	cmp[sof.KeyNORTendered] = sof.ComparisonEntry{MasterSOFRowNum: intp(1), AgentSOFRowNum: intp(2)}
	cmp[sof.KeyAllFast] = sof.ComparisonEntry{MasterSOFRowNum: intp(3)}
	cmp[sof.KeyHosesConnected] = sof.ComparisonEntry{AgentSOFRowNum: intp(5)}

	return Input{
		Vessel:     "MV Example",
		Port:       "Rotterdam",
		MasterName: "master-sof.pdf",
		AgentName:  "agent-sof.pdf",
		MasterRows: []align.TableRow{
			{Event: "Notice of Readiness tendered", RowNum: 1},
			{Event: "Pilot on board", RowNum: 2},
			{Event: "Vessel all fast | berth 12", RowNum: 3},
		},
		AgentRows: []align.TableRow{
			{Event: "Arrived pilot station", RowNum: 1},
			{Event: "NOR", RowNum: 2},
			{Event: "Hoses connected", RowNum: 5},
		},
		Comparison: cmp,
	}
}

func TestBuildMarkdownHeader(t *testing.T) {
	md := BuildMarkdown(testInput())
	for _, want := range []string{
		"# Statement of Facts Comparison",
		"- Vessel: MV Example",
		"- Port: Rotterdam",
		"- Master statement: master-sof.pdf",
		"- Agent statement: agent-sof.pdf",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestBuildMarkdownMilestoneTable(t *testing.T) {
	md := BuildMarkdown(testInput())
	if !strings.Contains(md, "| NOR Tendered | 1 | Notice of Readiness tendered | 2 | NOR |") {
		t.Fatalf("matched milestone row missing:\n%s", md)
	}
	// The three-letter key renders uppercased, everything else title case.
	if !strings.Contains(md, "| End of Sea Passage | - |") {
		t.Fatalf("unmatched milestone row missing:\n%s", md)
	}
	// Pipes inside event text must not break the table.
	if !strings.Contains(md, `Vessel all fast \| berth 12`) {
		t.Fatalf("pipe escaping missing:\n%s", md)
	}
}

func TestBuildMarkdownDiscrepancies(t *testing.T) {
	md := BuildMarkdown(testInput())
	if !strings.Contains(md, "- All Fast appears only in the master statement.") {
		t.Fatalf("master-only callout missing:\n%s", md)
	}
	if !strings.Contains(md, "- Hoses Connected appears only in the agent statement.") {
		t.Fatalf("agent-only callout missing:\n%s", md)
	}
}

func TestBuildMarkdownNoDiscrepancies(t *testing.T) {
	in := testInput()
	cmp := sof.Comparison{}
	for _, key := range sof.Vocabulary() {
		cmp[key] = sof.ComparisonEntry{}
	}
	in.Comparison = cmp
	md := BuildMarkdown(in)
	if !strings.Contains(md, "Every matched milestone appears in both statements.") {
		t.Fatalf("empty-discrepancy text missing:\n%s", md)
	}
}

func TestMilestoneTitle(t *testing.T) {
	cases := map[sof.CanonicalKey]string{
		sof.KeyNORTendered:         "NOR Tendered",
		sof.KeyEndOfSeaPassage:     "End of Sea Passage",
		sof.KeyFreePratiqueGranted: "Free Pratique Granted",
	}
	for key, want := range cases {
		if got := milestoneTitle(key); got != want {
			t.Fatalf("milestoneTitle(%s) = %q, want %q", key, got, want)
		}
	}
}
