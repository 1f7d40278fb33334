package model

// Status classifies a single hygiene check.
type Status string

const (
	StatusOK   Status = "ok"
	StatusWarn Status = "warn"
	StatusBad  Status = "bad"
)

// Check is one dimension of the hygiene checklist.
type Check struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Status Status `json:"status"`
	Detail string `json:"detail"`
}

// Pillars are the four sub-scores of the AI recommendability score, each 0-100.
type Pillars struct {
	Access        int `json:"access"`
	EntitySchema  int `json:"entitySchema"`
	TrustSignals  int `json:"trustSignals"`
	Answerability int `json:"answerability"`
}

// AIScore is the weighted, optionally capped recommendability score.
type AIScore struct {
	Score      int      `json:"aiScore"`
	Pillars    Pillars  `json:"pillars"`
	Cap        *int     `json:"cap"`
	CapReasons []string `json:"capReasons"`
}

// Interpretation is the optional natural-language reading of a report.
type Interpretation struct {
	Summary    string   `json:"summary"`
	TopRisks   []string `json:"top_risks"`
	QuickWins  []string `json:"quick_wins"`
	Confidence string   `json:"confidence"`
}

// Report is the complete result of a mini-check.
type Report struct {
	InputURL       string          `json:"inputUrl"`
	FinalURL       string          `json:"finalUrl"`
	HygieneScore   int             `json:"hygieneScore"`
	Checks         []Check         `json:"checks"`
	AIScore        int             `json:"aiScore"`
	Pillars        Pillars         `json:"pillars"`
	Cap            *int            `json:"cap"`
	CapReasons     []string        `json:"capReasons"`
	SchemaTypes    []string        `json:"schemaTypes"`
	Interpretation *Interpretation `json:"interpretation"`
	ElapsedMs      int64           `json:"elapsedMs"`
	Timestamp      string          `json:"timestamp"`
}

// StatusResponse is returned by the mini-check status endpoint.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	LLM     bool   `json:"llm"`
}

// ErrorResponse is the JSON shape returned on failure.
type ErrorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}
