// Package report renders a master-vs-agent comparison as markdown and, via
// headless Chromium, as a PDF for circulation with the laytime statement.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/laytimelab/sof-extractor/internal/align"
	"github.com/laytimelab/sof-extractor/internal/sof"
)

// Input carries everything the comparison report needs.
type Input struct {
	Vessel     string
	Port       string
	MasterName string
	AgentName  string
	MasterRows []align.TableRow
	AgentRows  []align.TableRow
	Comparison sof.Comparison
}

// BuildMarkdown renders the side-by-side milestone comparison. Milestones
// found in only one statement are called out separately, since those are the
// rows a laytime analyst disputes first.
func BuildMarkdown(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Statement of Facts Comparison\n\n")
	if in.Vessel != "" {
		fmt.Fprintf(&b, "- Vessel: %s\n", in.Vessel)
	}
	if in.Port != "" {
		fmt.Fprintf(&b, "- Port: %s\n", in.Port)
	}
	fmt.Fprintf(&b, "- Master statement: %s\n", in.MasterName)
	fmt.Fprintf(&b, "- Agent statement: %s\n", in.AgentName)
	fmt.Fprintf(&b, "- Generated: %s\n\n", time.Now().Format(time.RFC3339))

	fmt.Fprintf(&b, "## Milestones\n\n")
	fmt.Fprintf(&b, "| Milestone | Master Row | Master Event | Agent Row | Agent Event |\n")
	fmt.Fprintf(&b, "|---|---|---|---|---|\n")
	for _, key := range sof.Vocabulary() {
		entry := in.Comparison[key]
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			milestoneTitle(key),
			rowNum(entry.MasterSOFRowNum), cellText(in.MasterRows, entry.MasterSOFRowNum),
			rowNum(entry.AgentSOFRowNum), cellText(in.AgentRows, entry.AgentSOFRowNum))
	}
	b.WriteString("\n")

	onlyMaster, onlyAgent := oneSided(in.Comparison)
	fmt.Fprintf(&b, "## Discrepancies\n\n")
	if len(onlyMaster) == 0 && len(onlyAgent) == 0 {
		fmt.Fprintf(&b, "Every matched milestone appears in both statements.\n\n")
	}
	for _, key := range onlyMaster {
		fmt.Fprintf(&b, "- %s appears only in the master statement.\n", milestoneTitle(key))
	}
	for _, key := range onlyAgent {
		fmt.Fprintf(&b, "- %s appears only in the agent statement.\n", milestoneTitle(key))
	}
	if len(onlyMaster) > 0 || len(onlyAgent) > 0 {
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Row numbers refer to each statement's extracted event table. ")
	fmt.Fprintf(&b, "Milestones absent from both statements were either not logged or not matched.\n")
	return b.String()
}

func milestoneTitle(key sof.CanonicalKey) string {
	words := strings.Split(string(key), "_")
	for i, w := range words {
		switch w {
		case "nor":
			words[i] = "NOR"
		case "of":
			// leave lowercase
		default:
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func rowNum(n *int) string {
	if n == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *n)
}

func cellText(rows []align.TableRow, n *int) string {
	if n == nil {
		return ""
	}
	for _, r := range rows {
		if r.RowNum == *n {
			return strings.ReplaceAll(r.Event, "|", "\\|")
		}
	}
	return ""
}

func oneSided(cmp sof.Comparison) (onlyMaster, onlyAgent []sof.CanonicalKey) {
	for _, key := range sof.Vocabulary() {
		entry := cmp[key]
		switch {
		case entry.MasterSOFRowNum != nil && entry.AgentSOFRowNum == nil:
			onlyMaster = append(onlyMaster, key)
		case entry.MasterSOFRowNum == nil && entry.AgentSOFRowNum != nil:
			onlyAgent = append(onlyAgent, key)
		}
	}
	return onlyMaster, onlyAgent
}
