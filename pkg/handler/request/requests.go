package request

// Raw trigger payloads from the UI layer. Canonicalization happens at
// the trigger point, not here.

type RenderTriggerRequest struct {
	SearchQuery string `json:"search_query"`
	Flank       string `json:"flank"`
}

type ClickRequest struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Cleared bool    `json:"cleared"`
}

type ConfirmRequest struct {
	Accept bool `json:"accept"`
}

// FileNotice is the upload collaborator telling the core that a file
// was added or replaced. The collaborator already stored the file and
// judged whether it parsed as its declared format.
type FileNotice struct {
	Role   string `json:"role"`
	Path   string `json:"path"`
	Format string `json:"format"`
	Parsed bool   `json:"parsed"`
	Chrom  string `json:"chrom,omitempty"`
	Start  int64  `json:"start,omitempty"`
	End    int64  `json:"end,omitempty"`
}
