package covers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cover-manager/core/bib"
	"cover-manager/core/clients/loader"
	"cover-manager/core/clients/resolver"
	"cover-manager/core/reconcile"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) Fetch(ctx context.Context, mmsID string) (*bib.Record, error) {
	args := m.Called(ctx, mmsID)
	if rec, ok := args.Get(0).(*bib.Record); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCatalog) Persist(ctx context.Context, recordID string, payload *bib.CoverIDs) (*bib.Record, error) {
	args := m.Called(ctx, recordID, payload)
	if rec, ok := args.Get(0).(*bib.Record); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) FetchAll(ctx context.Context, ids bib.IdentifierSet) (*reconcile.LiveCoverSet, error) {
	args := m.Called(ctx, ids)
	if live, ok := args.Get(0).(*reconcile.LiveCoverSet); ok {
		return live, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockResolver) FetchOne(ctx context.Context, source, coverCode string) (*resolver.Thumbnail, error) {
	args := m.Called(ctx, source, coverCode)
	if thumb, ok := args.Get(0).(*resolver.Thumbnail); ok {
		return thumb, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCoverServer struct {
	mock.Mock
}

func (m *mockCoverServer) Upload(ctx context.Context, cover loader.Cover) error {
	return m.Called(ctx, cover).Error(0)
}

func (m *mockCoverServer) Delete(ctx context.Context, idType, idCode string) error {
	return m.Called(ctx, idType, idCode).Error(0)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) Record(ctx context.Context, recordID string, d reconcile.Decision, applied bool) error {
	return m.Called(ctx, recordID, d, applied).Error(0)
}

// pngData sniffs as image/png.
var pngData = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)

// marcRecord builds a catalog record whose body holds one ISBN and the
// given active covers, written as "(source)code".
func marcRecord(t *testing.T, mmsID, nzID string, active ...string) *bib.Record {
	t.Helper()
	rec, err := bib.Decode(marcRecordJSON(t, mmsID, nzID, active...))
	require.NoError(t, err)
	return rec
}

// marcRecordJSON is the catalog payload behind marcRecord.
func marcRecordJSON(t *testing.T, mmsID, nzID string, active ...string) []byte {
	t.Helper()

	var body strings.Builder
	body.WriteString(`<record><leader>00000nam a2200000 i 4500</leader>`)
	body.WriteString(`<datafield tag="020" ind1=" " ind2=" "><subfield code="a">0316769487</subfield></datafield>`)
	if len(active) > 0 {
		body.WriteString(`<datafield tag="921" ind1=" " ind2=" "><subfield code="2">cvr</subfield>`)
		for _, a := range active {
			fmt.Fprintf(&body, `<subfield code="c">%s</subfield>`, a)
		}
		body.WriteString(`</datafield>`)
	}
	body.WriteString(`</record>`)

	payload := map[string]any{
		"mms_id": mmsID,
		"title":  "The catcher in the rye",
		"anies":  []string{body.String()},
	}
	if nzID != "" {
		payload["linked_record_id"] = map[string]string{"type": "NZ", "value": nzID}
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return data
}

func liveCovers(covers ...reconcile.CoverRecord) *reconcile.LiveCoverSet {
	live := &reconcile.LiveCoverSet{}
	for _, c := range covers {
		live.Add(c)
	}
	return live
}

func primaryCover(code string) reconcile.CoverRecord {
	return reconcile.CoverRecord{Source: "covers", IDType: "isbn/x", IDCode: code, CoverCode: "c-" + code, IsActive: true}
}

// recordCatalog decodes a new record on every Fetch, since parsing fills
// the record in place.
type recordCatalog struct {
	data    []byte
	fetches atomic.Int32
}

func (c *recordCatalog) Fetch(context.Context, string) (*bib.Record, error) {
	c.fetches.Add(1)
	return bib.Decode(c.data)
}

func (c *recordCatalog) Persist(context.Context, string, *bib.CoverIDs) (*bib.Record, error) {
	return nil, errors.New("unexpected persist")
}

// overlapResolver tracks how many FetchAll calls run at the same time.
// Each call waits on gate when set, otherwise for delay.
type overlapResolver struct {
	delay time.Duration
	gate  chan struct{}

	mu      sync.Mutex
	calls   int
	active  int
	maxSeen int
}

func (r *overlapResolver) FetchAll(context.Context, bib.IdentifierSet) (*reconcile.LiveCoverSet, error) {
	r.mu.Lock()
	r.calls++
	r.active++
	if r.active > r.maxSeen {
		r.maxSeen = r.active
	}
	r.mu.Unlock()

	if r.gate != nil {
		<-r.gate
	} else {
		time.Sleep(r.delay)
	}

	r.mu.Lock()
	r.active--
	r.mu.Unlock()
	return liveCovers(), nil
}

func (r *overlapResolver) FetchOne(context.Context, string, string) (*resolver.Thumbnail, error) {
	return nil, errors.New("unexpected fetch")
}

func (r *overlapResolver) stats() (calls, maxSeen int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls, r.maxSeen
}
