package firstworld_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"reelsync/internal/firstworld"
)

type fakeTitleStore struct {
	missing  []int64
	set      map[int64]bool
	setErr   error
	listErr  error
	setCalls int
}

func (s *fakeTitleStore) TitlesMissingFirstWorld(context.Context) ([]int64, error) {
	return s.missing, s.listErr
}

func (s *fakeTitleStore) SetFirstWorld(_ context.Context, id int64, firstWorld bool) error {
	s.setCalls++
	if s.setErr != nil {
		return s.setErr
	}
	if s.set == nil {
		s.set = make(map[int64]bool)
	}
	s.set[id] = firstWorld
	return nil
}

type fakeCountrySource struct {
	countries map[string]string
	errs      map[string]error
	calls     []string
}

func (s *fakeCountrySource) Countries(_ context.Context, titleCode string) (string, error) {
	s.calls = append(s.calls, titleCode)
	if err, ok := s.errs[titleCode]; ok {
		return "", err
	}
	return s.countries[titleCode], nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUpdaterClassifiesMissingTitles(t *testing.T) {
	store := &fakeTitleStore{missing: []int64{100, 101, 102}}
	source := &fakeCountrySource{countries: map[string]string{
		"tt0000100": "United States",
		"tt0000101": "India, China",
		"tt0000102": "",
	}}
	updater := firstworld.NewUpdater(store, source, 0, discardLogger())

	report, err := updater.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Processed != 3 || report.Updated != 2 || report.NoData != 1 || report.Errored != 0 {
		t.Fatalf("unexpected report: %#v", report)
	}
	if got, ok := store.set[100]; !ok || !got {
		t.Fatalf("expected title 100 classified first world, got %#v", store.set)
	}
	if got, ok := store.set[101]; !ok || got {
		t.Fatalf("expected title 101 classified non first world, got %#v", store.set)
	}
	if _, ok := store.set[102]; ok {
		t.Fatal("title without country data must stay unclassified")
	}
}

func TestUpdaterIsolatesLookupFailures(t *testing.T) {
	store := &fakeTitleStore{}
	source := &fakeCountrySource{
		countries: map[string]string{"tt0000101": "France"},
		errs:      map[string]error{"tt0000100": firstworld.ErrLookup},
	}
	updater := firstworld.NewUpdater(store, source, 0, discardLogger())

	report, err := updater.Run(context.Background(), []int64{100, 101})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Errored != 1 || report.Updated != 1 {
		t.Fatalf("unexpected report: %#v", report)
	}
	if len(source.calls) != 2 {
		t.Fatalf("expected both titles attempted, got %v", source.calls)
	}
}

func TestUpdaterStoreFailureAborts(t *testing.T) {
	storeErr := errors.New("disk full")
	store := &fakeTitleStore{setErr: storeErr}
	source := &fakeCountrySource{countries: map[string]string{
		"tt0000100": "United States",
		"tt0000101": "France",
	}}
	updater := firstworld.NewUpdater(store, source, 0, discardLogger())

	_, err := updater.Run(context.Background(), []int64{100, 101})
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error to abort run, got %v", err)
	}
	if store.setCalls != 1 {
		t.Fatalf("expected run to stop at first store failure, got %d calls", store.setCalls)
	}
}

func TestUpdaterHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := &fakeTitleStore{}
	source := &fakeCountrySource{errs: map[string]error{
		"tt0000100": context.Canceled,
	}}
	updater := firstworld.NewUpdater(store, source, 0, discardLogger())

	cancel()
	_, err := updater.Run(ctx, []int64{100})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
