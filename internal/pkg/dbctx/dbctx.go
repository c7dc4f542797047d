package dbctx

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/greenscape-backend/internal/platform/ctxutil"
)

// Context carries a request context and, when the caller already holds one, the GORM
// transaction that writes must join.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// Context returns a non-nil request context.
func (c Context) Context() context.Context {
	return ctxutil.Default(c.Ctx)
}

// InTx runs fn inside the caller's transaction when set, otherwise in a new transaction
// on db. A new transaction rolls back when fn returns an error; a joined one is left to
// its owner.
func (c Context) InTx(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if c.Tx != nil {
		return fn(c.Tx)
	}
	return db.WithContext(c.Context()).Transaction(fn)
}
