package render

import "context"

type Renderer interface {
	RenderHome(ctx context.Context, page HomePage) ([]byte, error)
	RenderList(ctx context.Context, page ListPage) ([]byte, error)
	RenderEntry(ctx context.Context, page EntryPage) ([]byte, error)
	RenderNotFound(ctx context.Context, page NotFoundPage) ([]byte, error)
}
