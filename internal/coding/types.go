package coding

// ClinicalQuery is the request-scoped unit of work: the raw narrative plus
// the sub-queries actually searched. SubQueries holds exactly one element
// unless decomposition ran and produced more.
type ClinicalQuery struct {
	RawText    string
	SubQueries []string
}

// Candidate is one retrieved neighbor from the vector index, before merging.
// QueryIndex records which sub-query produced it.
type Candidate struct {
	Code       string
	ShortDesc  string
	LongDesc   string
	Score      float32
	QueryIndex int
}

// Suggestion is the deduplicated, ranked output unit returned to callers.
type Suggestion struct {
	Code         string  `json:"code"`
	Description  string  `json:"description"`
	Score        float32 `json:"score"`
	MatchedQuery string  `json:"matched_query"`
}
