package catalog

import "context"

type CatalogRepository interface {
	CreateBranch(ctx context.Context, b *Branch) error
	ListBranches(ctx context.Context) ([]*Branch, error)
	ListLenses(ctx context.Context) ([]*Lens, error)
}
