package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/sves-daq/backend/internal/adapters/mq/queue"
	"github.com/sves-daq/backend/internal/adapters/mq/worker"
	"github.com/sves-daq/backend/internal/adapters/notify"
	"github.com/sves-daq/backend/internal/domain/model"
	logging "github.com/sves-daq/backend/pkg/logger"
)

type mockPersister struct {
	mu    sync.Mutex
	docs  map[string]model.Document
	fails map[string]error
	seq   int
}

func newMockPersister() *mockPersister {
	return &mockPersister{docs: map[string]model.Document{}, fails: map[string]error{}}
}

func (m *mockPersister) Add(_ context.Context, collection string, doc model.Document) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if collection != model.CollectionPredictions {
		return "", fmt.Errorf("unexpected collection %s", collection)
	}
	testID := doc.String("testId")
	if err, ok := m.fails[testID]; ok {
		return "", err
	}
	m.seq++
	id := fmt.Sprintf("pred-%d", m.seq)
	m.docs[id] = doc
	return id, nil
}

func (m *mockPersister) byTest(testID string) (model.Document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.docs {
		if d.String("testId") == testID {
			return d, true
		}
	}
	return nil, false
}

func (m *mockPersister) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

type mockNotifier struct {
	mu   sync.Mutex
	sent []notify.PredictionNotification
	err  error
}

func (m *mockNotifier) Publish(_ context.Context, n notify.PredictionNotification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, n)
	return nil
}

func (m *mockNotifier) notifications() []notify.PredictionNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notify.PredictionNotification(nil), m.sent...)
}

func predictionJob(testID string) model.PredictionJob {
	return model.PredictionJob{
		JobID:      "job-" + testID,
		TestID:     testID,
		ModelType:  "brakeFade",
		Value:      57.5,
		Confidence: 0.83,
		Timestamp:  "2026-03-01T10:00:00.000Z",
		Features:   map[string]float64{"brakeTemperature": 350},
	}
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a running worker", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		persister := newMockPersister()
		notifier := &mockNotifier{}
		w := worker.NewInMemoryWorker(q, persister, notifier, worker.WithName("test-worker"))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("A job is stored in its prediction shape and announced", func() {
			convey.So(q.Enqueue(ctx, predictionJob("t-1")), convey.ShouldBeTrue)
			convey.So(eventually(func() bool { return len(notifier.notifications()) == 1 }), convey.ShouldBeTrue)

			doc, ok := persister.byTest("t-1")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(doc["modelType"], convey.ShouldEqual, "brakeFade")
			convey.So(doc["value"], convey.ShouldEqual, 57.5)
			convey.So(doc["timestamp"], convey.ShouldEqual, "2026-03-01T10:00:00.000Z")

			n := notifier.notifications()[0]
			convey.So(n.PredictionID, convey.ShouldEqual, "pred-1")
			convey.So(n.TestID, convey.ShouldEqual, "t-1")
			convey.So(n.Confidence, convey.ShouldEqual, 0.83)
		})

		convey.Convey("A persistence failure skips the notification and keeps the worker alive", func() {
			persister.fails["bad"] = errors.New("disk full")
			q.Enqueue(ctx, predictionJob("bad"))
			q.Enqueue(ctx, predictionJob("good"))

			convey.So(eventually(func() bool { return persister.count() == 1 }), convey.ShouldBeTrue)
			_, stored := persister.byTest("bad")
			convey.So(stored, convey.ShouldBeFalse)
			convey.So(eventually(func() bool { return len(notifier.notifications()) == 1 }), convey.ShouldBeTrue)
			convey.So(notifier.notifications()[0].TestID, convey.ShouldEqual, "good")
		})

		convey.Convey("A notification failure still keeps the stored prediction", func() {
			notifier.err = errors.New("redis down")
			q.Enqueue(ctx, predictionJob("t-2"))
			convey.So(eventually(func() bool { return persister.count() == 1 }), convey.ShouldBeTrue)
		})

		convey.Convey("Shutdown stops the worker", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer shutdownCancel()
			convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
		})
	})

	convey.Convey("A worker exits when its queue closes", t, func() {
		_ = logging.Init()
		q := queue.NewInMemoryQueue(queue.WithCapacity(1))
		w := worker.NewInMemoryWorker(q, newMockPersister(), nil)

		done := make(chan struct{})
		go func() {
			w.Run(context.Background())
			close(done)
		}()
		convey.So(q.Close(), convey.ShouldBeNil)

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Error("worker did not exit after the queue closed")
		}
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a pool of workers", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(500))
		persister := newMockPersister()
		notifier := &mockNotifier{}

		convey.Convey("A count below one falls back to the CPU count", func() {
			convey.So(worker.NewPool(0, q, persister, notifier).Size(), convey.ShouldBeGreaterThan, 0)
		})

		convey.Convey("Shutdown drains every buffered job", func() {
			pool := worker.NewPool(4, q, persister, notifier)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			for i := 0; i < 200; i++ {
				convey.So(q.Enqueue(ctx, predictionJob(fmt.Sprintf("t-%d", i))), convey.ShouldBeTrue)
			}
			pool.Start(ctx)

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer shutdownCancel()
			convey.So(pool.Shutdown(shutdownCtx), convey.ShouldBeNil)

			convey.So(persister.count(), convey.ShouldEqual, 200)
			convey.So(len(notifier.notifications()), convey.ShouldEqual, 200)
			convey.So(q.IsClosed(), convey.ShouldBeTrue)
		})
	})
}
