package dto

// The submit endpoint accepts up to four parallel lists of raw field sets,
// one per entity kind. Fields arrive as loosely-typed strings straight from
// the form layer; pkg/fieldval normalizes them inside the services. ID is
// empty when the entry creates a new record.

type AssignmentParams struct {
	Index         int      `json:"index"`
	ID            string   `json:"id"`
	Delete        bool     `json:"delete"`
	Title         string   `json:"title"`
	Value         string   `json:"value"`
	Enabled       string   `json:"enabled"`
	Date          string   `json:"date"`
	GroupIDs      []string `json:"group_ids"` // desired group membership, diffed on save
	AttachmentIDs []uint   `json:"attachment_ids"`
}

type EvaluationParams struct {
	Index        int    `json:"index"`
	UserID       string `json:"user_id"`
	AssignmentID string `json:"assignment_id"`
	Delete       bool   `json:"delete"`
	Score        string `json:"score"`
	Enabled      string `json:"enabled"`
	Date         string `json:"date"`
	Comment      string `json:"comment"`
}

type AdjustmentParams struct {
	Index   int    `json:"index"`
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	Delete  bool   `json:"delete"`
	Title   string `json:"title"`
	Value   string `json:"value"`
	Score   string `json:"score"`
	Enabled string `json:"enabled"`
	Date    string `json:"date"`
	Comment string `json:"comment"`
}

type GroupParams struct {
	Index   int    `json:"index"`
	ID      string `json:"id"`
	Delete  bool   `json:"delete"`
	Title   string `json:"title"`
	Enabled string `json:"enabled"`
}

type SubmitRequest struct {
	Token         string             `json:"token" binding:"required"`
	ConfirmDelete bool               `json:"confirm_delete"`
	Assignments   []AssignmentParams `json:"assignment_params"`
	Evaluations   []EvaluationParams `json:"evaluation_params"`
	Adjustments   []AdjustmentParams `json:"adjustment_params"`
	Groups        []GroupParams      `json:"group_params"`
}

// ItemResult reports the outcome of one entry in a batch. Entries are
// independent: a failing entry never rolls back earlier ones.
type ItemResult struct {
	Kind   string       `json:"kind"`
	Index  int          `json:"index"`
	Result *WriteResult `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
}

type SubmitResult struct {
	Results []ItemResult `json:"results"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}
