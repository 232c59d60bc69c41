// Package repo provides clickhouse access for stats
package repo

import (
	"context"
	"time"

	"leadrelay/internal/platform/store"
)

// Repo is the minimal read surface for stats
type Repo interface {
	// OutcomeTotals counts records with recorded_at at or after since
	OutcomeTotals(ctx context.Context, since time.Time) (RowTotals, error)

	// TopServices ranks services by forwarded leads since the given time
	TopServices(ctx context.Context, since time.Time, limit int) ([]RowServiceCount, error)

	// AccountPerf returns all time forwarded counts per sending account
	AccountPerf(ctx context.Context) ([]RowAccountPerf, error)
}

// RowTotals counts records by outcome
type RowTotals struct {
	Seen      int64
	Forwarded int64
	Dropped   int64
	Failed    int64
}

// RowServiceCount is one service with its forwarded count
type RowServiceCount struct {
	Service   string
	Forwarded int64
}

// RowAccountPerf is one account with its forwarded count and last send
type RowAccountPerf struct {
	AccountID     string
	Forwarded     int64
	LastForwarded time.Time
}

const table = "leadrelay.message_records"

// NewCH wires the stats reader to the clickhouse seam
func NewCH(ch store.Clickhouse) Repo {
	if ch == nil {
		panic("stats repo requires a non nil clickhouse")
	}
	return &queries{ch: ch}
}

type queries struct{ ch store.Clickhouse }

func (r *queries) OutcomeTotals(ctx context.Context, since time.Time) (RowTotals, error) {
	const sql = `
select
  count() as seen,
  countIf(outcome = 'forwarded') as forwarded,
  countIf(outcome = 'dropped') as dropped,
  countIf(outcome = 'failed_after_retries') as failed
from ` + table + `
where recorded_at >= ?
`
	rows, err := r.ch.Query(ctx, sql, since)
	if err != nil {
		return RowTotals{}, err
	}
	defer rows.Close()
	var out RowTotals
	if rows.Next() {
		if err := rows.Scan(&out.Seen, &out.Forwarded, &out.Dropped, &out.Failed); err != nil {
			return RowTotals{}, err
		}
	}
	return out, rows.Err()
}

func (r *queries) TopServices(ctx context.Context, since time.Time, limit int) ([]RowServiceCount, error) {
	const sql = `
select service, count() as forwarded
from ` + table + `
where outcome = 'forwarded' and recorded_at >= ?
group by service
order by forwarded desc, service asc
limit ?
`
	rows, err := r.ch.Query(ctx, sql, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RowServiceCount
	for rows.Next() {
		var rr RowServiceCount
		if err := rows.Scan(&rr.Service, &rr.Forwarded); err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

func (r *queries) AccountPerf(ctx context.Context) ([]RowAccountPerf, error) {
	const sql = `
select account_id, count() as forwarded, max(recorded_at) as last_forwarded
from ` + table + `
where outcome = 'forwarded'
group by account_id
order by forwarded desc, account_id asc
`
	rows, err := r.ch.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RowAccountPerf
	for rows.Next() {
		var rr RowAccountPerf
		if err := rows.Scan(&rr.AccountID, &rr.Forwarded, &rr.LastForwarded); err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}
