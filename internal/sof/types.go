package sof

// DocumentRole identifies which party's statement of facts a page or event
// came from. A laytime comparison always pairs one master document with one
// agent document.
type DocumentRole string

const (
	RoleMaster DocumentRole = "master"
	RoleAgent  DocumentRole = "agent"
)

// Page is one OCR-processed document page. Pages are owned by the caller and
// referenced, not copied, by the pipeline.
type Page struct {
	Number   int    `json:"number"`
	Text     string `json:"text"`
	ImagePNG []byte `json:"image_png,omitempty"`
}

// Batch is an ordered, contiguous slice of pages sent to the model in one
// call. Index is the batch's position in the partition and fixes its place in
// the final merge.
type Batch struct {
	Index int
	Pages []Page
}

// Document is a full statement of facts: its pages plus a document-wide
// reference (typically the first page's text or a caller-supplied summary)
// included with every batch so the model keeps vessel/port context.
type Document struct {
	Role      DocumentRole `json:"role"`
	Name      string       `json:"name"`
	Reference string       `json:"reference,omitempty"`
	Pages     []Page       `json:"pages"`
}

// TimeFrame is a start/end range in HHmm. Either side may be null when the
// document only records one bound.
type TimeFrame struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

// SourcePage records where an event was extracted from.
type SourcePage struct {
	Page int          `json:"page"`
	Role DocumentRole `json:"role"`
}

// Event is one chronological port-call entry. Identity is immutable: events
// never merge, but Date and Time are corrected in place during normalization.
type Event struct {
	Event          string       `json:"event"`
	Date           *string      `json:"date"`
	Time           *string      `json:"time"`
	TimeFrame      *TimeFrame   `json:"timeFrame,omitempty"`
	HasHandwritten bool         `json:"hasHandwritten"`
	SourcePages    []SourcePage `json:"sourcePages"`
}

// EventList is the wire envelope for a list of events, both as the expected
// model response shape and as the pipeline's output artifact.
type EventList struct {
	Data []Event `json:"data"`
}

// EffectiveTime returns the best single HHmm timestamp for an event: the
// explicit time, else the time frame start, else the end. Empty string when
// the event carries no time at all.
func (e Event) EffectiveTime() string {
	if e.Time != nil {
		return *e.Time
	}
	if e.TimeFrame != nil {
		if e.TimeFrame.Start != nil {
			return *e.TimeFrame.Start
		}
		if e.TimeFrame.End != nil {
			return *e.TimeFrame.End
		}
	}
	return ""
}

// ClosingTime is like EffectiveTime but prefers the end of a range, for
// judging when an event finished.
func (e Event) ClosingTime() string {
	if e.Time != nil {
		return *e.Time
	}
	if e.TimeFrame != nil {
		if e.TimeFrame.End != nil {
			return *e.TimeFrame.End
		}
		if e.TimeFrame.Start != nil {
			return *e.TimeFrame.Start
		}
	}
	return ""
}
