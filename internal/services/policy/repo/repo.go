// Package repo provides postgres access for policy settings and the sender registry
package repo

import (
	"context"
	"time"

	"leadrelay/internal/modkit/repokit"
)

// Storage is the persistence surface for policy state
type Storage interface {
	Settings(ctx context.Context) (map[string]string, error)
	UpsertSetting(ctx context.Context, key, value string, now time.Time) error
	BumpSeq(ctx context.Context, key string, now time.Time) (int64, error)

	Flagged(ctx context.Context) (black, white []string, err error)
	SetBlacklisted(ctx context.Context, senderID string, flagged bool, now time.Time) error
	SetWhitelisted(ctx context.Context, senderID string, flagged bool, now time.Time) error
	Note(ctx context.Context, senderID, username string, at time.Time) error
	ListSenders(ctx context.Context, limit int) ([]SenderRow, error)
}

// SenderRow mirrors one senders row
type SenderRow struct {
	ID            string
	Username      string
	FirstSeen     time.Time
	LastSeen      time.Time
	MessageCount  int64
	IsBlacklisted bool
	IsWhitelisted bool
}

type (
	// PG is a binder that binds the policy repo to a Queryer
	PG struct{}

	queries struct{ q repokit.Queryer }
)

// NewPG returns the postgres binder
func NewPG() repokit.Binder[Storage] { return PG{} }

// Bind wires a Queryer to the repo
func (PG) Bind(q repokit.Queryer) Storage { return &queries{q: q} }

func (r *queries) Settings(ctx context.Context) (map[string]string, error) {
	rows, err := r.q.Query(ctx, `select key, value from policy_settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

func (r *queries) UpsertSetting(ctx context.Context, key, value string, now time.Time) error {
	const sql = `
insert into policy_settings (key, value, updated_at)
values ($1, $2, $3)
on conflict (key) do update set value = excluded.value, updated_at = excluded.updated_at
`
	_, err := r.q.Exec(ctx, sql, key, value, now)
	return err
}

func (r *queries) BumpSeq(ctx context.Context, key string, now time.Time) (int64, error) {
	const sql = `
insert into policy_settings (key, value, updated_at)
values ($1, '1', $2)
on conflict (key) do update
set value = ((policy_settings.value)::bigint + 1)::text, updated_at = excluded.updated_at
returning (value)::bigint
`
	var seq int64
	if err := r.q.QueryRow(ctx, sql, key, now).Scan(&seq); err != nil {
		return 0, err
	}
	return seq, nil
}

func (r *queries) Flagged(ctx context.Context) (black, white []string, err error) {
	const sql = `
select id, is_blacklisted, is_whitelisted
from senders
where is_blacklisted or is_whitelisted
`
	rows, err := r.q.Query(ctx, sql)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var b, w bool
		if err := rows.Scan(&id, &b, &w); err != nil {
			return nil, nil, err
		}
		if b {
			black = append(black, id)
		}
		if w {
			white = append(white, id)
		}
	}
	return black, white, rows.Err()
}

func (r *queries) SetBlacklisted(ctx context.Context, senderID string, flagged bool, now time.Time) error {
	const sql = `
insert into senders (id, username, first_seen, last_seen, message_count, is_blacklisted, is_whitelisted)
values ($1, '', $3, $3, 0, $2, false)
on conflict (id) do update set is_blacklisted = excluded.is_blacklisted
`
	_, err := r.q.Exec(ctx, sql, senderID, flagged, now)
	return err
}

func (r *queries) SetWhitelisted(ctx context.Context, senderID string, flagged bool, now time.Time) error {
	const sql = `
insert into senders (id, username, first_seen, last_seen, message_count, is_blacklisted, is_whitelisted)
values ($1, '', $3, $3, 0, false, $2)
on conflict (id) do update set is_whitelisted = excluded.is_whitelisted
`
	_, err := r.q.Exec(ctx, sql, senderID, flagged, now)
	return err
}

func (r *queries) Note(ctx context.Context, senderID, username string, at time.Time) error {
	const sql = `
insert into senders (id, username, first_seen, last_seen, message_count, is_blacklisted, is_whitelisted)
values ($1, $2, $3, $3, 1, false, false)
on conflict (id) do update
set username = case when excluded.username <> '' then excluded.username else senders.username end,
    last_seen = excluded.last_seen,
    message_count = senders.message_count + 1
`
	_, err := r.q.Exec(ctx, sql, senderID, username, at)
	return err
}

func (r *queries) ListSenders(ctx context.Context, limit int) ([]SenderRow, error) {
	const sql = `
select id, username, first_seen, last_seen, message_count, is_blacklisted, is_whitelisted
from senders
order by last_seen desc
limit $1
`
	rows, err := r.q.Query(ctx, sql, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SenderRow
	for rows.Next() {
		var rr SenderRow
		if err := rows.Scan(
			&rr.ID, &rr.Username, &rr.FirstSeen, &rr.LastSeen,
			&rr.MessageCount, &rr.IsBlacklisted, &rr.IsWhitelisted,
		); err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}
