// Package repo provides postgres access for the account registry
package repo

import (
	"context"
	"time"

	"leadrelay/internal/modkit/repokit"
)

// Storage is the persistence surface for the account registry
type Storage interface {
	List(ctx context.Context) ([]Row, error)
	Insert(ctx context.Context, id, credentialsRef string, now time.Time) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	SetEnabled(ctx context.Context, id string, enabled bool, now time.Time) (bool, error)
	UpdateRuntime(ctx context.Context, row RuntimeRow, now time.Time) error
}

// Row mirrors one accounts row
type Row struct {
	ID             string
	CredentialsRef string
	Enabled        bool
	State          string
	WindowCount    int
	CooldownUntil  *time.Time
	ConsecutiveErr int
	TotalSent      int64
	LastUsed       *time.Time
	AddedAt        time.Time
	UpdatedAt      time.Time
}

// RuntimeRow carries the relay owned columns written on flush
// admin owned columns (enabled, credentials_ref) are never touched here
type RuntimeRow struct {
	ID             string
	State          string
	WindowCount    int
	CooldownUntil  *time.Time
	ConsecutiveErr int
	TotalSent      int64
	LastUsed       *time.Time
}

type (
	// PG is a binder that binds the registry repo to a Queryer
	PG struct{}

	queries struct{ q repokit.Queryer }
)

// NewPG returns the postgres binder
func NewPG() repokit.Binder[Storage] { return PG{} }

// Bind wires a Queryer to the repo
func (PG) Bind(q repokit.Queryer) Storage { return &queries{q: q} }

func (r *queries) List(ctx context.Context) ([]Row, error) {
	const sql = `
select id, credentials_ref, enabled, state, window_count, cooldown_until,
       consecutive_errors, total_sent, last_used, added_at, updated_at
from accounts
order by id
`
	rows, err := r.q.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Row
	for rows.Next() {
		var rr Row
		if err := rows.Scan(
			&rr.ID, &rr.CredentialsRef, &rr.Enabled, &rr.State, &rr.WindowCount, &rr.CooldownUntil,
			&rr.ConsecutiveErr, &rr.TotalSent, &rr.LastUsed, &rr.AddedAt, &rr.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

func (r *queries) Insert(ctx context.Context, id, credentialsRef string, now time.Time) (bool, error) {
	const sql = `
insert into accounts (id, credentials_ref, enabled, state, added_at, updated_at)
values ($1, $2, true, 'disconnected', $3, $3)
on conflict (id) do nothing
`
	tag, err := r.q.Exec(ctx, sql, id, credentialsRef, now)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *queries) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.q.Exec(ctx, `delete from accounts where id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *queries) SetEnabled(ctx context.Context, id string, enabled bool, now time.Time) (bool, error) {
	const sql = `
update accounts
set enabled = $2,
    consecutive_errors = case when $2 then 0 else consecutive_errors end,
    updated_at = $3
where id = $1
`
	tag, err := r.q.Exec(ctx, sql, id, enabled, now)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *queries) UpdateRuntime(ctx context.Context, row RuntimeRow, now time.Time) error {
	const sql = `
update accounts
set state = $2, window_count = $3, cooldown_until = $4, consecutive_errors = $5,
    total_sent = $6, last_used = $7, updated_at = $8
where id = $1
`
	_, err := r.q.Exec(ctx, sql,
		row.ID, row.State, row.WindowCount, row.CooldownUntil,
		row.ConsecutiveErr, row.TotalSent, row.LastUsed, now,
	)
	return err
}
