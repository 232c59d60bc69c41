package service

import (
	"context"
	"testing"
	"time"

	perr "leadrelay/internal/platform/errors"
	"leadrelay/internal/services/api/policy/domain"
	poldom "leadrelay/internal/services/policy/domain"
)

// fakePolicy scripts both worker ports behind one struct
type fakePolicy struct {
	snap poldom.Snapshot

	applies   []string
	failKey   string
	senders   []poldom.Sender
	lastLimit int
}

func (f *fakePolicy) Snapshot() poldom.Snapshot { return f.snap }

func (f *fakePolicy) Apply(_ context.Context, key, value string) (poldom.Snapshot, error) {
	f.applies = append(f.applies, key)
	if key == f.failKey {
		return poldom.Snapshot{}, perr.InvalidArgf("policy: unknown setting %q", key)
	}
	f.snap.Version++
	return f.snap, nil
}

func (f *fakePolicy) SetBlacklist(_ context.Context, senderID string, flagged bool) error {
	if f.snap.Blacklist == nil {
		f.snap.Blacklist = map[string]struct{}{}
	}
	if flagged {
		f.snap.Blacklist[senderID] = struct{}{}
	} else {
		delete(f.snap.Blacklist, senderID)
	}
	return nil
}

func (f *fakePolicy) SetWhitelist(_ context.Context, senderID string, flagged bool) error {
	if f.snap.Whitelist == nil {
		f.snap.Whitelist = map[string]struct{}{}
	}
	if flagged {
		f.snap.Whitelist[senderID] = struct{}{}
	} else {
		delete(f.snap.Whitelist, senderID)
	}
	return nil
}

func (f *fakePolicy) Reload(context.Context) (poldom.Snapshot, error) { return f.snap, nil }

func (f *fakePolicy) BumpTaxonomy(context.Context) (int64, error) { return 0, nil }

func (f *fakePolicy) ListSenders(_ context.Context, limit int) ([]poldom.Sender, error) {
	f.lastLimit = limit
	return f.senders, nil
}

func baseSnapshot() poldom.Snapshot {
	return poldom.Snapshot{
		ConfidenceThreshold: 70,
		HourlyLimit:         100,
		FloodWaitMultiplier: 1.5,
		BlacklistEnabled:    true,
		MinLength:           10,
		MaxLength:           10000,
		TargetChannel:       "leads",
		TaxonomySeq:         3,
		Version:             7,
		LoadedAt:            time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC),
		Blacklist:           map[string]struct{}{"spammer": {}},
	}
}

func mark(sender string, on bool) domain.FlagInput {
	return domain.FlagInput{SenderID: sender, Flagged: &on}
}

func TestCurrent_MapsSnapshot(t *testing.T) {
	f := &fakePolicy{snap: baseSnapshot()}
	svc := New(f, f)

	v := svc.Current(context.Background())
	if v.ConfidenceThreshold != 70 || v.HourlyLimit != 100 || v.FloodWaitMultiplier != 1.5 {
		t.Fatalf("limits not mapped: %+v", v)
	}
	if !v.BlacklistEnabled || v.WhitelistEnabled {
		t.Fatalf("gate flags not mapped: %+v", v)
	}
	if v.TaxonomySeq != 3 || v.Version != 7 {
		t.Fatalf("sequence fields not mapped: %+v", v)
	}
	if v.LoadedAt != "2025-08-01T09:00:00Z" {
		t.Fatalf("LoadedAt = %q", v.LoadedAt)
	}
	if v.BlacklistSize != 1 || v.WhitelistSize != 0 {
		t.Fatalf("flag sizes = %d/%d", v.BlacklistSize, v.WhitelistSize)
	}
}

func TestUpdate_AppliesInKeyOrder(t *testing.T) {
	f := &fakePolicy{snap: baseSnapshot()}
	svc := New(f, f)

	v, err := svc.Update(context.Background(), domain.UpdateInput{Settings: map[string]string{
		"hourly_limit":         "50",
		"confidence_threshold": "80",
		"target_channel":       "leads-eu",
	}})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	want := []string{"confidence_threshold", "hourly_limit", "target_channel"}
	if len(f.applies) != len(want) {
		t.Fatalf("applies = %v, want %v", f.applies, want)
	}
	for i := range want {
		if f.applies[i] != want[i] {
			t.Fatalf("applies = %v, want %v", f.applies, want)
		}
	}
	// three applies bump the fake version three times
	if v.Version != 10 {
		t.Fatalf("returned version = %d, want 10", v.Version)
	}
}

func TestUpdate_StopsAtFirstRejectedKey(t *testing.T) {
	f := &fakePolicy{snap: baseSnapshot(), failKey: "hourly_limit"}
	svc := New(f, f)

	_, err := svc.Update(context.Background(), domain.UpdateInput{Settings: map[string]string{
		"confidence_threshold": "80",
		"hourly_limit":         "nope",
		"target_channel":       "leads-eu",
	}})
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("err = %v, want invalid argument", err)
	}
	// confidence_threshold landed, hourly_limit rejected, target_channel never tried
	want := []string{"confidence_threshold", "hourly_limit"}
	if len(f.applies) != len(want) || f.applies[0] != want[0] || f.applies[1] != want[1] {
		t.Fatalf("applies = %v, want %v", f.applies, want)
	}
}

func TestSetBlacklist_RefreshesView(t *testing.T) {
	f := &fakePolicy{snap: baseSnapshot()}
	svc := New(f, f)

	v, err := svc.SetBlacklist(context.Background(), mark("scalper", true))
	if err != nil {
		t.Fatalf("SetBlacklist: %v", err)
	}
	if v.BlacklistSize != 2 {
		t.Fatalf("BlacklistSize = %d, want 2", v.BlacklistSize)
	}

	v, err = svc.SetBlacklist(context.Background(), mark("spammer", false))
	if err != nil {
		t.Fatalf("unset: %v", err)
	}
	if v.BlacklistSize != 1 {
		t.Fatalf("BlacklistSize after unset = %d, want 1", v.BlacklistSize)
	}
}

func TestSetWhitelist_RefreshesView(t *testing.T) {
	f := &fakePolicy{snap: baseSnapshot()}
	svc := New(f, f)

	v, err := svc.SetWhitelist(context.Background(), mark("vip", true))
	if err != nil {
		t.Fatalf("SetWhitelist: %v", err)
	}
	if v.WhitelistSize != 1 {
		t.Fatalf("WhitelistSize = %d, want 1", v.WhitelistSize)
	}
}

func TestSetFlag_RejectsIncompleteInput(t *testing.T) {
	f := &fakePolicy{snap: baseSnapshot()}
	svc := New(f, f)

	_, err := svc.SetBlacklist(context.Background(), domain.FlagInput{SenderID: "scalper"})
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("nil flagged: err = %v, want invalid argument", err)
	}
	_, err = svc.SetWhitelist(context.Background(), mark("", true))
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("blank sender: err = %v, want invalid argument", err)
	}
}

func TestSenders_MapsRows(t *testing.T) {
	f := &fakePolicy{snap: baseSnapshot(), senders: []poldom.Sender{
		{
			ID:            "sender-1",
			Username:      "bob",
			FirstSeen:     time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC),
			LastSeen:      time.Date(2025, 8, 20, 12, 30, 0, 0, time.UTC),
			MessageCount:  41,
			IsBlacklisted: true,
		},
	}}
	svc := New(f, f)

	rows, err := svc.Senders(context.Background(), domain.SendersInput{Limit: 25})
	if err != nil {
		t.Fatalf("Senders: %v", err)
	}
	if f.lastLimit != 25 {
		t.Fatalf("limit passed = %d, want 25", f.lastLimit)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	r := rows[0]
	if r.ID != "sender-1" || r.Username != "bob" || r.MessageCount != 41 || !r.IsBlacklisted {
		t.Fatalf("row = %+v", r)
	}
	if r.FirstSeen != "2025-07-01T08:00:00Z" || r.LastSeen != "2025-08-20T12:30:00Z" {
		t.Fatalf("times = %q / %q", r.FirstSeen, r.LastSeen)
	}
}
