package fetch

import "context"

// Retriever resolves a dataset identifier into a local cache path. The
// orchestrator treats any error it returns as opaque and wraps it in a
// DownloadError. Implementations own transport, authentication and
// archive handling.
type Retriever interface {
	Retrieve(ctx context.Context, source string) (string, error)
}
