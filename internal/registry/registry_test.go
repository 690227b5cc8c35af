package registry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/skymaps/tilefinder/internal/logger"
	"github.com/skymaps/tilefinder/internal/sources/tap"
)

// fakeQuerier feeds canned rows to the sink, counting invocations.
type fakeQuerier struct {
	rows  []tap.Row
	err   error
	calls *atomic.Int64
}

func (q *fakeQuerier) Query(ctx context.Context, adql string, sink tap.RowSink) error {
	if q.calls != nil {
		q.calls.Add(1)
	}
	if q.err != nil {
		return q.err
	}
	for _, row := range q.rows {
		sink.AcceptRow(row)
	}
	sink.EndRows()
	return nil
}

func fakeFactory(q *fakeQuerier) QuerierFactory {
	return func(tapURL string) Querier { return q }
}

func TestServiceNameResolution(t *testing.T) {
	tests := []struct {
		name         string
		serviceName  string
		wantURL      string
		wantNickname string
	}{
		{
			name:         "nickname",
			serviceName:  "otf",
			wantURL:      "https://easotf.esac.esa.int/tap-server/tap",
			wantNickname: "otf",
		},
		{
			name:         "nickname with digits and dashes",
			serviceName:  "idr-2",
			wantURL:      "https://easidr-2.esac.esa.int/tap-server/tap",
			wantNickname: "idr-2",
		},
		{
			name:         "literal url",
			serviceName:  "https://easotf.esac.esa.int/tap-server/tap",
			wantURL:      "https://easotf.esac.esa.int/tap-server/tap",
			wantNickname: UnknownNickname,
		},
		{
			name:         "string with dot treated as url",
			serviceName:  "foo.bar",
			wantURL:      "foo.bar",
			wantNickname: UnknownNickname,
		},
	}

	r := New(Options{Logger: logger.NewNop(), QuerierFactory: fakeFactory(&fakeQuerier{})})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := r.Service(tt.serviceName)
			if svc.TapURL != tt.wantURL {
				t.Errorf("TapURL = %q, want %q", svc.TapURL, tt.wantURL)
			}
			if svc.Nickname != tt.wantNickname {
				t.Errorf("Nickname = %q, want %q", svc.Nickname, tt.wantNickname)
			}
		})
	}
}

func TestServiceIdentityMemoized(t *testing.T) {
	r := New(Options{Logger: logger.NewNop(), QuerierFactory: fakeFactory(&fakeQuerier{})})
	if r.Service("otf") != r.Service("otf") {
		t.Error("same name should yield the same *Service")
	}
	if r.Service("otf") == r.Service("idr") {
		t.Error("distinct names should yield distinct services")
	}
}

func TestAliasOverridesNicknameExpansion(t *testing.T) {
	aliases := map[string]Alias{
		"mirror": {URL: "https://example.org/tap", Nickname: "otf"},
	}
	r := New(Options{Logger: logger.NewNop(), Aliases: aliases, QuerierFactory: fakeFactory(&fakeQuerier{})})

	svc := r.Service("mirror")
	if svc.TapURL != "https://example.org/tap" {
		t.Errorf("TapURL = %q, want alias url", svc.TapURL)
	}
	if svc.Nickname != "otf" {
		t.Errorf("Nickname = %q, want otf", svc.Nickname)
	}
}

func TestTilesBuiltExactlyOnce(t *testing.T) {
	var calls atomic.Int64
	q := &fakeQuerier{
		rows: []tap.Row{
			{TileID: 1, FOV: []float64{0, 0, 1, 0, 1, 1, 0, 1}},
			{TileID: 2, FOV: []float64{1, 0, 2, 0, 2, 1, 1, 1}},
		},
		calls: &calls,
	}
	r := New(Options{Logger: logger.NewNop(), QuerierFactory: fakeFactory(q)})

	const workers = 32
	var wg sync.WaitGroup
	counts := make([]int, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			counts[i] = r.Tiles(context.Background(), "otf").Count()
		}(i)
	}
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("remote query executed %d times, want exactly 1", got)
	}
	for i, c := range counts {
		if c != 2 {
			t.Errorf("caller %d observed %d tiles, want 2 (fully-populated index)", i, c)
		}
	}
}

func TestTilesQueryFailureYieldsEmptyIndex(t *testing.T) {
	var calls atomic.Int64
	q := &fakeQuerier{err: errors.New("boom"), calls: &calls}
	r := New(Options{Logger: logger.NewNop(), QuerierFactory: fakeFactory(q)})

	idx := r.Tiles(context.Background(), "otf")
	if idx.Count() != 0 {
		t.Errorf("failed build should yield empty index, got %d tiles", idx.Count())
	}

	// the failure is remembered; the query is never reissued
	_ = r.Tiles(context.Background(), "otf")
	if got := calls.Load(); got != 1 {
		t.Errorf("remote query executed %d times after failure, want 1", got)
	}
}

func TestTilesDistinctPerServiceName(t *testing.T) {
	var calls atomic.Int64
	q := &fakeQuerier{
		rows:  []tap.Row{{TileID: 1, FOV: []float64{0, 0, 1, 0, 1, 1, 0, 1}}},
		calls: &calls,
	}
	r := New(Options{Logger: logger.NewNop(), QuerierFactory: fakeFactory(q)})

	r.Tiles(context.Background(), "otf")
	r.Tiles(context.Background(), "idr")
	if got := calls.Load(); got != 2 {
		t.Errorf("two service names should trigger two builds, got %d", got)
	}
}
