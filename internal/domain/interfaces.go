package domain

import "context"

// ─── Collaborator Capabilities ──────────────────────────────────────────────
// External providers are modeled as injected capabilities with documented
// neutral defaults when absent — never runtime type inspection.

// StakeData is the per-actor payload of the economic provider.
type StakeData struct {
	StakeAmount          float64 `json:"stake_amount"`
	TransactionDiversity float64 `json:"transaction_diversity"` // [0,1]
}

// StakeProvider supplies optional per-actor economic data. A nil provider or
// a false second return means the graph-node stake is used as-is.
type StakeProvider interface {
	Stake(ctx context.Context, actor string) (StakeData, bool)
}

// ResultConsumer receives computed reputation results for downstream
// persistence or publishing. The engine never serializes to a wire format
// itself.
type ResultConsumer interface {
	Consume(ctx context.Context, result ReputationResult) error
}

// FlagSource yields the append-only flag log consumed by the
// coordinated-flagging detector.
type FlagSource interface {
	FlagsFor(ctx context.Context, target string) ([]FlagRecord, error)
}
