package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/crease/internal/adapters/repository"
	"github.com/okian/crease/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func snapshot(id string, version uint64, created time.Time) model.Snapshot {
	m := model.NewMatch(id, "A", "B", 20, created)
	m.Version = version
	if version > 0 {
		m.Status = model.StatusLive
		inn := model.NewInnings(1, "A", "B")
		inn.BatterFor("A1").Runs = int(version)
		inn.Runs = int(version)
		m.Innings = append(m.Innings, inn)
		m.CurrentInningIndex = 1
	}
	return m.Snapshot()
}

func entry(version uint64, kind string) repository.LogEntry {
	return repository.LogEntry{
		Version:   version,
		Kind:      kind,
		Payload:   []byte(`{"kind":"` + kind + `"}`),
		AppliedAt: time.Date(2026, 3, 1, 10, 0, int(version), 0, time.UTC),
	}
}

func stores(t *testing.T) map[string]func() repository.Store {
	return map[string]func() repository.Store{
		"memory": func() repository.Store { return repository.NewMemoryStore() },
		"sqlite": func() repository.Store {
			s, err := repository.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "crease.db"))
			if err != nil {
				t.Fatalf("open sqlite: %v", err)
			}
			return s
		},
	}
}

func TestStores(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for _, name := range []string{"memory", "sqlite"} {
		open := stores(t)[name]

		Convey("Given an empty "+name+" store", t, func() {
			ctx := context.Background()
			store := open()
			Reset(func() { _ = store.Close() })

			Convey("Then unknown matches are not found", func() {
				_, err := store.Load(ctx, "missing")
				So(err, ShouldEqual, repository.ErrNotFound)
				_, err = store.Log(ctx, "missing")
				So(err, ShouldEqual, repository.ErrNotFound)
				list, err := store.List(ctx)
				So(err, ShouldBeNil)
				So(list, ShouldBeEmpty)
			})

			Convey("When a match is created and scored", func() {
				So(store.Save(ctx, snapshot("m-1", 0, created), entry(0, "create_match")), ShouldBeNil)
				So(store.Save(ctx, snapshot("m-1", 1, created), entry(1, "start_match")), ShouldBeNil)
				So(store.Save(ctx, snapshot("m-1", 2, created), entry(2, "apply_ball")), ShouldBeNil)

				Convey("Then the latest snapshot is loaded", func() {
					got, err := store.Load(ctx, "m-1")
					So(err, ShouldBeNil)
					So(got.Version, ShouldEqual, 2)
					So(got.Status, ShouldEqual, model.StatusLive)
					So(got.Innings, ShouldHaveLength, 1)
					So(got.Innings[0].Runs, ShouldEqual, 2)
					So(got.Innings[0].Batting["A1"].Runs, ShouldEqual, 2)
					So(got.CreatedAt.Equal(created), ShouldBeTrue)
				})

				Convey("Then the log holds every command in version order", func() {
					log, err := store.Log(ctx, "m-1")
					So(err, ShouldBeNil)
					So(log, ShouldHaveLength, 3)
					So(log[0].Kind, ShouldEqual, "create_match")
					So(log[2].Kind, ShouldEqual, "apply_ball")
					So(log[2].Version, ShouldEqual, 2)
					So(log[2].MatchID, ShouldEqual, "m-1")
					So(string(log[2].Payload), ShouldEqual, `{"kind":"apply_ball"}`)
					So(log[2].AppliedAt.Equal(entry(2, "").AppliedAt), ShouldBeTrue)
				})

				Convey("Then a stale snapshot does not overwrite a newer one", func() {
					So(store.Save(ctx, snapshot("m-1", 1, created), entry(1, "start_match")), ShouldBeNil)
					got, err := store.Load(ctx, "m-1")
					So(err, ShouldBeNil)
					So(got.Version, ShouldEqual, 2)
					log, err := store.Log(ctx, "m-1")
					So(err, ShouldBeNil)
					So(log, ShouldHaveLength, 3)
				})

				Convey("Then a save without a log entry only updates the snapshot", func() {
					So(store.Save(ctx, snapshot("m-1", 3, created), repository.LogEntry{}), ShouldBeNil)
					log, err := store.Log(ctx, "m-1")
					So(err, ShouldBeNil)
					So(log, ShouldHaveLength, 3)
				})
			})

			Convey("When several matches are stored", func() {
				So(store.Save(ctx, snapshot("m-b", 0, created.Add(time.Minute)), entry(0, "create_match")), ShouldBeNil)
				So(store.Save(ctx, snapshot("m-a", 0, created), entry(0, "create_match")), ShouldBeNil)
				So(store.Save(ctx, snapshot("m-c", 0, created), entry(0, "create_match")), ShouldBeNil)

				Convey("Then they are listed by creation time", func() {
					list, err := store.List(ctx)
					So(err, ShouldBeNil)
					So(list, ShouldHaveLength, 3)
					So(list[0].ID, ShouldEqual, "m-a")
					So(list[1].ID, ShouldEqual, "m-c")
					So(list[2].ID, ShouldEqual, "m-b")
				})
			})
		})
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	Convey("Given a memory store holding a match", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		snap := snapshot("m-1", 1, time.Now())
		So(store.Save(ctx, snap, entry(1, "start_match")), ShouldBeNil)

		Convey("When the caller mutates its copies", func() {
			snap.Innings[0].Runs = 99
			got, _ := store.Load(ctx, "m-1")
			got.Innings[0].Batting["A1"].Runs = 77

			Convey("Then the stored match is unchanged", func() {
				again, err := store.Load(ctx, "m-1")
				So(err, ShouldBeNil)
				So(again.Innings[0].Runs, ShouldEqual, 1)
				So(again.Innings[0].Batting["A1"].Runs, ShouldEqual, 1)
			})
		})

		Convey("When the store is closed", func() {
			So(store.Close(), ShouldBeNil)

			Convey("Then saves are refused", func() {
				So(store.Save(ctx, snap, entry(2, "apply_ball")), ShouldEqual, repository.ErrClosed)
			})
		})

		Convey("When the context is already canceled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := store.Load(cctx, "m-1")
			So(err, ShouldEqual, context.Canceled)
		})
	})
}

func TestOpenSQLite(t *testing.T) {
	Convey("Opening a SQLite store", t, func() {
		Convey("With an empty path fails", func() {
			_, err := repository.OpenSQLite(context.Background(), "  ")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, repository.ErrInvalidPath.Error())
		})

		Convey("Twice on the same file keeps the data", func() {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "reopen.db")
			s, err := repository.OpenSQLite(ctx, path, repository.WithBusyTimeout(time.Second))
			So(err, ShouldBeNil)
			So(s.Save(ctx, snapshot("m-1", 4, time.Now()), entry(4, "apply_ball")), ShouldBeNil)
			So(s.Close(), ShouldBeNil)

			s, err = repository.OpenSQLite(ctx, path)
			So(err, ShouldBeNil)
			defer s.Close()
			got, err := s.Load(ctx, "m-1")
			So(err, ShouldBeNil)
			So(got.Version, ShouldEqual, 4)
		})
	})
}
