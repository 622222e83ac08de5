package repo

import (
	iaptopuprepo "github.com/bundl/bundl/internal/repo/iaptopup-repo"
	ledgerrepo "github.com/bundl/bundl/internal/repo/ledger-repo"
	orderrepo "github.com/bundl/bundl/internal/repo/order-repo"
	userrepo "github.com/bundl/bundl/internal/repo/user-repo"

	"github.com/bundl/bundl/internal/engine/orderengine"
	"github.com/bundl/bundl/internal/pg"
)

type Repositories struct {
	UserRepo     *userrepo.Repository
	OrderRepo    orderengine.OrderStore
	LedgerRepo   *ledgerrepo.Repository
	IAPTopupRepo *iaptopuprepo.Repository
}

func New(conn pg.Database, txManager pg.TXManager) *Repositories {
	userRepo := userrepo.New(conn)
	orderRepo := orderrepo.New(conn, txManager)
	ledgerRepo := ledgerrepo.New(conn, txManager)
	iapRepo := iaptopuprepo.New(conn)

	return &Repositories{
		UserRepo:     userRepo,
		OrderRepo:    orderRepo,
		LedgerRepo:   ledgerRepo,
		IAPTopupRepo: iapRepo,
	}
}
