package extraction

import (
	"fmt"
	"strings"

	"github.com/laytimelab/sof-extractor/internal/sof"
)

const extractionSystemPrompt = `You are a maritime operations analyst reading a Statement of Facts (SOF). ` +
	`Extract every chronological port-call event from the supplied pages. ` +
	`Respond with strict JSON only, shaped exactly as ` +
	`{"data": [{"event": "...", "date": "YYYY-MM-DD" or null, "time": "HHmm" or null, ` +
	`"timeFrame": {"start": "HHmm" or null, "end": "HHmm" or null} or null, "hasHandwritten": true/false}]}. ` +
	`Write dates as YYYY-MM-DD, resolving day/month order from the document's own convention; use null when no date is legible. ` +
	`Set hasHandwritten to true when the entry appears handwritten rather than typed. ` +
	`Do not invent events; omit an event rather than guessing.`

func batchPreamble(batch sof.Batch, doc sof.Document) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Document %q (%s statement of facts), pages %s of this document follow.\n",
		doc.Name, doc.Role, pageRange(batch))
	if strings.TrimSpace(doc.Reference) != "" {
		fmt.Fprintf(&sb, "Document-wide reference context:\n%s\n", doc.Reference)
	}
	sb.WriteString("Extract the port-call events from these pages only.")
	return sb.String()
}

func pageRange(batch sof.Batch) string {
	if len(batch.Pages) == 0 {
		return "-"
	}
	first := batch.Pages[0].Number
	last := batch.Pages[len(batch.Pages)-1].Number
	if first == last {
		return fmt.Sprintf("%d", first)
	}
	return fmt.Sprintf("%d-%d", first, last)
}
