package sof

// CanonicalKey is a fixed port-call milestone used to line up semantically
// equivalent events across a master and an agent statement. The vocabulary is
// closed: keys are lookup handles, never minted at runtime.
type CanonicalKey string

const (
	KeyEndOfSeaPassage      CanonicalKey = "end_of_sea_passage"
	KeyAnchorDropped        CanonicalKey = "anchor_dropped"
	KeyNORTendered          CanonicalKey = "nor_tendered"
	KeyNORAccepted          CanonicalKey = "nor_accepted"
	KeyAnchorAweigh         CanonicalKey = "anchor_aweigh"
	KeyPilotOnBoard         CanonicalKey = "pilot_on_board"
	KeyFirstLineAshore      CanonicalKey = "first_line_ashore"
	KeyAllFast              CanonicalKey = "all_fast"
	KeyGangwayDown          CanonicalKey = "gangway_down"
	KeyFreePratiqueGranted  CanonicalKey = "free_pratique_granted"
	KeyHosesConnected       CanonicalKey = "hoses_connected"
	KeyCargoCommenced       CanonicalKey = "cargo_commenced"
	KeyCargoCompleted       CanonicalKey = "cargo_completed"
	KeyHosesDisconnected    CanonicalKey = "hoses_disconnected"
	KeyDocumentsOnBoard     CanonicalKey = "documents_on_board"
	KeySurveysCompleted     CanonicalKey = "surveys_completed"
	KeyPilotAway            CanonicalKey = "pilot_away"
	KeyVesselSailed         CanonicalKey = "vessel_sailed"
)

// Vocabulary returns the canonical keys in their conventional chronological
// order. The returned slice is a fresh copy.
func Vocabulary() []CanonicalKey {
	return []CanonicalKey{
		KeyEndOfSeaPassage,
		KeyAnchorDropped,
		KeyNORTendered,
		KeyNORAccepted,
		KeyAnchorAweigh,
		KeyPilotOnBoard,
		KeyFirstLineAshore,
		KeyAllFast,
		KeyGangwayDown,
		KeyFreePratiqueGranted,
		KeyHosesConnected,
		KeyCargoCommenced,
		KeyCargoCompleted,
		KeyHosesDisconnected,
		KeyDocumentsOnBoard,
		KeySurveysCompleted,
		KeyPilotAway,
		KeyVesselSailed,
	}
}

// IsCanonical reports whether k belongs to the fixed vocabulary.
func IsCanonical(k CanonicalKey) bool {
	for _, v := range Vocabulary() {
		if v == k {
			return true
		}
	}
	return false
}

// ComparisonEntry pairs the row numbers at which a canonical milestone
// appears in each table. A nil side means the milestone was not found there.
type ComparisonEntry struct {
	MasterSOFRowNum *int `json:"masterSofRowNum"`
	AgentSOFRowNum  *int `json:"agentSofRowNum"`
}

// Comparison maps every canonical key to its per-table row numbers. Built
// once per document pair and read-only afterwards.
type Comparison map[CanonicalKey]ComparisonEntry
