package orderengine

import "time"

// Config carries the enumerated configuration knobs from spec §6.
type Config struct {
	CreditCostPerAction    int
	DefaultOrderExpiry     time.Duration
	DefaultSearchRadiusKm  float64
	OrderMinAmount         float64
	PledgeMinAmount        float64
}

type Engine struct {
	ledger Ledger
	store  OrderStore
	cache  Cache
	users  UserRepo
	events EventSink
	cfg    Config
}

func New(ledger Ledger, store OrderStore, cache Cache, users UserRepo, sink EventSink, cfg Config) *Engine {
	return &Engine{
		ledger: ledger,
		store:  store,
		cache:  cache,
		users:  users,
		events: sink,
		cfg:    cfg,
	}
}
