package covers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strconv"
	"sync"
	"testing"
	"time"

	"cover-manager/core/bib"
	"cover-manager/core/clients/loader"
	"cover-manager/core/marc"
	"cover-manager/core/reconcile"
	"cover-manager/core/retry"
	"cover-manager/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	catalog  *mockCatalog
	resolver *mockResolver
	covers   *mockCoverServer
	recorder *mockRecorder
	store    *mocks.Client
	service  *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		catalog:  new(mockCatalog),
		resolver: new(mockResolver),
		covers:   new(mockCoverServer),
		recorder: new(mockRecorder),
		store:    new(mocks.Client),
	}
	f.recorder.On("Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.service = NewService(Dependencies{
		Catalog:  f.catalog,
		Resolver: f.resolver,
		Covers:   f.covers,
		Recorder: f.recorder,
		Storage:  f.store,
		Bucket:   "staging",
		Schema:   bib.DefaultSchema(),
		ViewLink: func(id string) string { return "https://opac.example.org/" + id },
	})
	return f
}

var confirmed = reconcile.Options{Confirmed: true}

func TestService_Refresh_InSync(t *testing.T) {
	f := newFixture(t)
	f.catalog.On("Fetch", mock.Anything, "991").Return(marcRecord(t, "991", "", "(covers)ISBN9780316769488"), nil)
	f.resolver.On("FetchAll", mock.Anything, mock.MatchedBy(func(ids bib.IdentifierSet) bool {
		return ids.MMSID == "991" && len(ids.ISBN) == 1 && ids.ISBN[0] == "9780316769488"
	})).Return(liveCovers(primaryCover("9780316769488")), nil)

	report, err := f.service.Refresh(context.Background(), "s1", "991", confirmed)
	require.NoError(t, err)

	assert.False(t, report.Decision.NeedsUpdate)
	assert.False(t, report.Updated)
	assert.Equal(t, "s1", report.SessionID)
	assert.Equal(t, "The catcher in the rye", report.Record.Title)
	assert.Equal(t, []string{"ISBN9780316769488"}, report.Active.Codes("covers"))
	assert.Equal(t, "https://opac.example.org/991", report.ViewURL)
	f.catalog.AssertNotCalled(t, "Persist", mock.Anything, mock.Anything, mock.Anything)
	f.recorder.AssertCalled(t, "Record", mock.Anything, "991", mock.Anything, false)
}

func TestService_Refresh_PersistsDrift(t *testing.T) {
	f := newFixture(t)
	f.catalog.On("Fetch", mock.Anything, "991").Return(marcRecord(t, "991", "995"), nil)
	f.resolver.On("FetchAll", mock.Anything, mock.Anything).Return(liveCovers(primaryCover("9780000000002")), nil)

	updated := marcRecord(t, "991", "995", "(covers)ISBN9780000000002")
	f.catalog.On("Persist", mock.Anything, "995", mock.MatchedBy(func(p *bib.CoverIDs) bool {
		return assert.ObjectsAreEqual(map[string][]string{"covers": {"ISBN9780000000002"}}, p.Map())
	})).Return(updated, nil).Once()

	report, err := f.service.Refresh(context.Background(), "s1", "991", confirmed)
	require.NoError(t, err)

	assert.True(t, report.Decision.NeedsUpdate)
	assert.True(t, report.Updated)
	assert.Equal(t, "995", report.Record.MMSIDNZ)
	assert.Equal(t, []string{"ISBN9780000000002"}, report.Active.Codes("covers"))
	f.catalog.AssertExpectations(t)
	f.recorder.AssertCalled(t, "Record", mock.Anything, "995", mock.Anything, true)
}

func TestService_Refresh_DryRunThenApply(t *testing.T) {
	f := newFixture(t)
	f.catalog.On("Fetch", mock.Anything, "991").Return(marcRecord(t, "991", ""), nil)
	f.resolver.On("FetchAll", mock.Anything, mock.Anything).Return(liveCovers(primaryCover("9780000000002")), nil)

	report, err := f.service.Refresh(context.Background(), "s1", "991", reconcile.Options{DryRun: true, Confirmed: true})
	require.NoError(t, err)
	assert.True(t, report.Decision.NeedsUpdate)
	assert.False(t, report.Updated)
	f.catalog.AssertNotCalled(t, "Persist", mock.Anything, mock.Anything, mock.Anything)

	f.catalog.On("Persist", mock.Anything, "991", mock.Anything).
		Return(marcRecord(t, "991", "", "(covers)ISBN9780000000002"), nil).Once()

	report, err = f.service.Apply(context.Background(), "s1", "991")
	require.NoError(t, err)
	assert.True(t, report.Updated)
	assert.Equal(t, []string{"ISBN9780000000002"}, report.Active.Codes("covers"))
	f.resolver.AssertNumberOfCalls(t, "FetchAll", 1)
}

func TestService_Refresh_LiveFetchFailureAborts(t *testing.T) {
	f := newFixture(t)
	f.catalog.On("Fetch", mock.Anything, "991").Return(marcRecord(t, "991", ""), nil)
	f.resolver.On("FetchAll", mock.Anything, mock.Anything).
		Return(nil, &retry.ExhaustedError{Attempts: 4, Err: &retry.StatusError{Status: 503}})

	_, err := f.service.Refresh(context.Background(), "s1", "991", confirmed)
	require.Error(t, err)
	assert.Equal(t, 503, retry.StatusOf(err))
	f.catalog.AssertNotCalled(t, "Persist", mock.Anything, mock.Anything, mock.Anything)
	f.recorder.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	_, err = f.service.Current("s1")
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestService_Refresh_ParseError(t *testing.T) {
	f := newFixture(t)
	f.catalog.On("Fetch", mock.Anything, "991").Return(&bib.Record{MMSID: "991", Anies: []string{"<record><datafield"}}, nil)

	_, err := f.service.Refresh(context.Background(), "s1", "991", confirmed)
	var parseErr *marc.ParseError
	assert.ErrorAs(t, err, &parseErr)
	f.resolver.AssertNotCalled(t, "FetchAll", mock.Anything, mock.Anything)
}

func TestService_Refresh_CatalogErrorSurfaces(t *testing.T) {
	f := newFixture(t)
	f.catalog.On("Fetch", mock.Anything, "404").Return(nil, &retry.StatusError{Status: 400, Code: "402203"})

	_, err := f.service.Refresh(context.Background(), "s1", "404", confirmed)
	assert.Equal(t, 400, retry.StatusOf(err))
}

func TestService_Refresh_SupersededByReset(t *testing.T) {
	f := newFixture(t)
	started := make(chan struct{})
	release := make(chan struct{})

	f.catalog.On("Fetch", mock.Anything, "991").Return(marcRecord(t, "991", ""), nil)
	f.resolver.On("FetchAll", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(liveCovers(), nil)

	errCh := make(chan error, 1)
	go func() {
		_, err := f.service.Refresh(context.Background(), "s1", "991", confirmed)
		errCh <- err
	}()

	<-started
	f.service.Reset("s1")
	close(release)

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(5 * time.Second):
		t.Fatal("refresh did not finish")
	}

	_, err := f.service.Current("s1")
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestService_Refresh_SupersededRefreshDoesNotPersist(t *testing.T) {
	f := newFixture(t)
	started := make(chan struct{})
	release := make(chan struct{})

	f.catalog.On("Fetch", mock.Anything, "991").Return(marcRecord(t, "991", ""), nil)
	f.catalog.On("Persist", mock.Anything, mock.Anything, mock.Anything).
		Return(marcRecord(t, "991", "", "(covers)ISBN9780000000002"), nil).Maybe()
	f.resolver.On("FetchAll", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(liveCovers(primaryCover("9780000000002")), nil)

	errCh := make(chan error, 1)
	go func() {
		_, err := f.service.Refresh(context.Background(), "s1", "991", confirmed)
		errCh <- err
	}()

	<-started
	f.service.Reset("s1")
	close(release)

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(5 * time.Second):
		t.Fatal("refresh did not finish")
	}

	f.catalog.AssertNotCalled(t, "Persist", mock.Anything, mock.Anything, mock.Anything)
	f.recorder.AssertCalled(t, "Record", mock.Anything, "991", mock.MatchedBy(func(d reconcile.Decision) bool {
		return d.NeedsUpdate
	}), false)
}

func TestService_Refresh_SharedPassPersistsForCurrentSession(t *testing.T) {
	f := newFixture(t)
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	for i := 0; i < 2; i++ {
		f.catalog.On("Fetch", mock.Anything, "991").Return(marcRecord(t, "991", ""), nil).Once()
		f.catalog.On("Persist", mock.Anything, "991", mock.Anything).
			Return(marcRecord(t, "991", "", "(covers)ISBN9780000000002"), nil).Once()
	}
	f.resolver.On("FetchAll", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			once.Do(func() { close(started) })
			<-release
		}).
		Return(liveCovers(primaryCover("9780000000002")), nil)

	first := make(chan error, 1)
	go func() {
		_, err := f.service.Refresh(context.Background(), "s1", "991", confirmed)
		first <- err
	}()
	<-started

	type outcome struct {
		report *Report
		err    error
	}
	second := make(chan outcome, 1)
	go func() {
		report, err := f.service.Refresh(context.Background(), "s2", "991", confirmed)
		second <- outcome{report, err}
	}()
	require.Eventually(t, func() bool { return waiting(f.service, "991|false|true") == 2 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	f.service.Reset("s1")
	close(release)

	assert.ErrorIs(t, <-first, ErrSuperseded)
	got := <-second
	require.NoError(t, got.err)
	assert.True(t, got.report.Updated)
	f.catalog.AssertCalled(t, "Persist", mock.Anything, "991", mock.Anything)
}

func TestService_Refresh_OnePassPerRecord(t *testing.T) {
	catalog := &recordCatalog{data: marcRecordJSON(t, "991", "")}
	live := &overlapResolver{delay: 20 * time.Millisecond}
	svc := NewService(Dependencies{Catalog: catalog, Resolver: live, Schema: bib.DefaultSchema()})

	options := []reconcile.Options{{}, {DryRun: true}, {Confirmed: true}, {DryRun: true, Confirmed: true}}
	errs := make(chan error, len(options))
	var wg sync.WaitGroup
	for i, opts := range options {
		wg.Add(1)
		go func(sessionID string, opts reconcile.Options) {
			defer wg.Done()
			_, err := svc.Refresh(context.Background(), sessionID, "991", opts)
			errs <- err
		}("s"+strconv.Itoa(i), opts)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	calls, maxSeen := live.stats()
	assert.Equal(t, len(options), calls)
	assert.Equal(t, 1, maxSeen)
}

func TestService_Refresh_IdenticalRefreshesSharePass(t *testing.T) {
	catalog := &recordCatalog{data: marcRecordJSON(t, "991", "")}
	live := &overlapResolver{gate: make(chan struct{})}
	svc := NewService(Dependencies{Catalog: catalog, Resolver: live, Schema: bib.DefaultSchema()})

	sessions := []string{"a", "b", "c"}
	errs := make(chan error, len(sessions))
	var wg sync.WaitGroup
	for _, id := range sessions {
		wg.Add(1)
		go func(sessionID string) {
			defer wg.Done()
			_, err := svc.Refresh(context.Background(), sessionID, "991", confirmed)
			errs <- err
		}(id)
	}

	require.Eventually(t, func() bool {
		calls, _ := live.stats()
		return calls == 1 && waiting(svc, "991|false|true") == len(sessions)
	}, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(live.gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.EqualValues(t, 1, catalog.fetches.Load())
	calls, _ := live.stats()
	assert.Equal(t, 1, calls)

	for _, id := range sessions {
		report, err := svc.Current(id)
		require.NoError(t, err)
		assert.Equal(t, "991", report.RequestedID)
	}
}

// waiting counts the sessions registered on a refresh flight.
func waiting(s *Service, key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.waiters[key])
}

func TestService_Refresh_SessionsAreIsolated(t *testing.T) {
	f := newFixture(t)
	f.catalog.On("Fetch", mock.Anything, "991").Return(marcRecord(t, "991", ""), nil)
	f.catalog.On("Fetch", mock.Anything, "992").Return(marcRecord(t, "992", ""), nil)
	f.resolver.On("FetchAll", mock.Anything, mock.Anything).Return(liveCovers(), nil)

	_, err := f.service.Refresh(context.Background(), "a", "991", confirmed)
	require.NoError(t, err)
	_, err = f.service.Refresh(context.Background(), "b", "992", confirmed)
	require.NoError(t, err)

	a, err := f.service.Current("a")
	require.NoError(t, err)
	assert.Equal(t, "991", a.RequestedID)

	b, err := f.service.Current("b")
	require.NoError(t, err)
	assert.Equal(t, "992", b.RequestedID)
}

// loaded refreshes record 991 (NZ 995) into session s1 with annotations
// already matching live.
func loaded(t *testing.T, f *fixture, live *reconcile.LiveCoverSet) {
	t.Helper()
	var active []string
	for _, source := range live.Sources() {
		for _, c := range live.Covers(source) {
			if c.IsActive {
				active = append(active, "("+source+")"+c.ActiveID())
			}
		}
	}
	f.catalog.On("Fetch", mock.Anything, "991").Return(marcRecord(t, "991", "995", active...), nil)
	f.resolver.On("FetchAll", mock.Anything, mock.Anything).Return(live, nil).Once()
	_, err := f.service.Refresh(context.Background(), "s1", "991", confirmed)
	require.NoError(t, err)
}

func TestService_Upload(t *testing.T) {
	t.Run("requires a loaded record", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Upload(context.Background(), "s1", "991", Upload{Data: pngData}, confirmed)
		assert.ErrorIs(t, err, ErrNoRecord)
	})

	t.Run("rejects non images", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Upload(context.Background(), "s1", "991", Upload{Data: []byte("plain text")}, confirmed)
		assert.ErrorIs(t, err, ErrNotImage)
	})

	t.Run("rejects large files", func(t *testing.T) {
		f := newFixture(t)
		big := append(append([]byte{}, pngData...), make([]byte, MaxCoverSize)...)
		_, err := f.service.Upload(context.Background(), "s1", "991", Upload{Data: big}, confirmed)
		assert.ErrorIs(t, err, ErrCoverTooLarge)
	})

	t.Run("requires overwrite confirmation", func(t *testing.T) {
		f := newFixture(t)
		loaded(t, f, liveCovers(primaryCover("9780000000002")))

		_, err := f.service.Upload(context.Background(), "s1", "991", Upload{Filename: "c.png", Data: pngData}, confirmed)
		assert.ErrorIs(t, err, ErrOverwriteNotConfirmed)
		f.covers.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
	})

	t.Run("uploads and reconciles", func(t *testing.T) {
		f := newFixture(t)
		loaded(t, f, liveCovers(primaryCover("9780000000002")))

		f.covers.On("Upload", mock.Anything, mock.MatchedBy(func(c loader.Cover) bool {
			return c.Type == UploadType && c.Code == "995" && c.ContentType == "image/png" && c.Filename == "c.png"
		})).Return(nil).Once()

		mmsCover := reconcile.CoverRecord{Source: "covers", IDType: "mmsid", IDCode: "995", CoverCode: "c-995", IsActive: true}
		f.resolver.On("FetchAll", mock.Anything, mock.Anything).Return(liveCovers(mmsCover), nil).Once()
		f.catalog.On("Persist", mock.Anything, "995", mock.Anything).
			Return(marcRecord(t, "991", "995", "(covers)MMSID995"), nil).Once()

		report, err := f.service.Upload(context.Background(), "s1", "991", Upload{Filename: "c.png", Data: pngData, Confirm: true}, confirmed)
		require.NoError(t, err)
		assert.True(t, report.Updated)
		assert.Equal(t, []string{"MMSID995"}, report.Active.Codes("covers"))
		f.covers.AssertExpectations(t)
		f.resolver.AssertNumberOfCalls(t, "FetchAll", 2)
	})

	t.Run("upload failure keeps state", func(t *testing.T) {
		f := newFixture(t)
		loaded(t, f, liveCovers())

		f.covers.On("Upload", mock.Anything, mock.Anything).Return(&retry.StatusError{Status: 502}).Once()

		_, err := f.service.Upload(context.Background(), "s1", "991", Upload{Data: pngData}, confirmed)
		assert.Equal(t, 502, retry.StatusOf(err))
		f.resolver.AssertNumberOfCalls(t, "FetchAll", 1)

		current, err := f.service.Current("s1")
		require.NoError(t, err)
		assert.Equal(t, "991", current.RequestedID)
	})
}

func TestService_Delete(t *testing.T) {
	f := newFixture(t)
	loaded(t, f, liveCovers(primaryCover("9780000000002")))

	f.covers.On("Delete", mock.Anything, "isbn", "9780000000002").Return(nil).Once()
	f.resolver.On("FetchAll", mock.Anything, mock.Anything).Return(liveCovers(), nil).Once()
	f.catalog.On("Persist", mock.Anything, "995", mock.MatchedBy(func(p *bib.CoverIDs) bool {
		return p.Len() == 0
	})).Return(marcRecord(t, "991", "995"), nil).Once()

	report, err := f.service.Delete(context.Background(), "s1", "991", "isbn", "9780000000002", confirmed)
	require.NoError(t, err)
	assert.True(t, report.Updated)
	assert.Equal(t, 0, report.Active.Len())
	assert.Contains(t, report.Decision.Reasons, reconcile.Reason{Kind: reconcile.ReasonPrimaryRemoved, Source: "covers"})
	f.covers.AssertExpectations(t)
	f.catalog.AssertExpectations(t)
}

func TestService_UploadStaged(t *testing.T) {
	f := newFixture(t)
	loaded(t, f, liveCovers())

	f.store.On("GetObject", mock.Anything, "staging", "new/c.png", mock.Anything).
		Return(io.NopCloser(bytes.NewReader(pngData)), nil)
	f.store.On("RemoveObject", mock.Anything, "staging", "new/c.png", mock.Anything).Return(nil).Once()
	f.covers.On("Upload", mock.Anything, mock.MatchedBy(func(c loader.Cover) bool {
		return c.Filename == "new/c.png" && bytes.Equal(c.Data, pngData)
	})).Return(nil).Once()
	f.resolver.On("FetchAll", mock.Anything, mock.Anything).Return(liveCovers(), nil).Once()

	_, err := f.service.UploadStaged(context.Background(), "s1", "991", "new/c.png", false, confirmed)
	require.NoError(t, err)
	f.store.AssertExpectations(t)
	f.covers.AssertExpectations(t)
}

func TestService_Staging(t *testing.T) {
	f := newFixture(t)
	f.store.On("PutObject", mock.Anything, "staging", "c.png", mock.Anything, int64(len(pngData)), mock.Anything).
		Return(minio.UploadInfo{}, nil).Once()

	obj, err := f.service.Stage(context.Background(), "c.png", pngData)
	require.NoError(t, err)
	assert.Equal(t, "image/png", obj.ContentType)

	_, err = f.service.Stage(context.Background(), "c.txt", []byte("text"))
	assert.ErrorIs(t, err, ErrNotImage)

	disabled := NewService(Dependencies{Schema: bib.DefaultSchema()})
	_, err = disabled.Staged(context.Background(), "")
	assert.ErrorIs(t, err, ErrStagingDisabled)
	_, err = disabled.UploadStaged(context.Background(), "s1", "991", "c.png", false, confirmed)
	assert.ErrorIs(t, err, ErrStagingDisabled)
}

func TestService_RecorderFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.recorder = new(mockRecorder)
	f.recorder.On("Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("db down"))
	f.service = NewService(Dependencies{
		Catalog:  f.catalog,
		Resolver: f.resolver,
		Recorder: f.recorder,
		Schema:   bib.DefaultSchema(),
	})

	f.catalog.On("Fetch", mock.Anything, "991").Return(marcRecord(t, "991", ""), nil)
	f.resolver.On("FetchAll", mock.Anything, mock.Anything).Return(liveCovers(), nil)

	_, err := f.service.Refresh(context.Background(), "s1", "991", confirmed)
	assert.NoError(t, err)
}
