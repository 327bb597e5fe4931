package llm

import "context"

// Purpose tags an LLM request in the event log.
type Purpose string

const (
	PurposeAdvisory Purpose = "advisory"
	PurposeUnknown  Purpose = "unknown"
)

type purposeKey struct{}

func WithPurpose(ctx context.Context, p Purpose) context.Context {
	return context.WithValue(ctx, purposeKey{}, p)
}

// PurposeFrom returns PurposeUnknown for untagged requests.
func PurposeFrom(ctx context.Context) Purpose {
	if p, ok := ctx.Value(purposeKey{}).(Purpose); ok {
		return p
	}
	return PurposeUnknown
}
