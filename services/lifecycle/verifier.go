package lifecycle

import (
	"context"

	"questflow/services/graph"
)

// LinkVerifier is the external access-token capability consulted before quest
// detail is disclosed through a targeted link. The core never validates
// credentials itself.
type LinkVerifier interface {
	VerifyLinkAccess(ctx context.Context, link *graph.Link) (bool, error)
}

// AllowAllVerifier approves every link. It is the default wiring for
// deployments that keep targeted-link verification elsewhere.
type AllowAllVerifier struct{}

func (AllowAllVerifier) VerifyLinkAccess(ctx context.Context, link *graph.Link) (bool, error) {
	return true, nil
}
