package incentive

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	minTickerInterval = 5 * time.Second
	maxTickerInterval = 30 * time.Second

	popBatchSize = 64
)

// Dispatcher polls the notification queue for due coupon emails and
// spreads them over the worker pool. The tick interval adapts to how far
// behind the queue is running.
type Dispatcher struct {
	WorkerPool chan chan WorkRequest
	maxWorkers int
	jobQueue   chan WorkRequest
	engine     *ReviewIncentive
	workers    []Worker
	stop       chan bool
	mu         sync.Mutex
}

func NewDispatcher(maxWorkers int, jobQueueSize int, engine *ReviewIncentive) *Dispatcher {
	pool := make(chan chan WorkRequest, maxWorkers)
	return &Dispatcher{
		WorkerPool: pool,
		maxWorkers: maxWorkers,
		jobQueue:   make(chan WorkRequest, jobQueueSize),
		engine:     engine,
		stop:       make(chan bool),
	}
}

func (d *Dispatcher) Run() {
	for i := 0; i < d.maxWorkers; i++ {
		worker := NewWorker(i+1, d.WorkerPool, d.engine)
		worker.Start()
		d.workers = append(d.workers, worker)
	}

	go d.dispatch()
}

func (d *Dispatcher) dispatch() {
	tickerInterval := 10 * time.Second
	ticker := time.NewTicker(tickerInterval)
	defer ticker.Stop()
	var wg sync.WaitGroup

	for {
		select {
		case job := <-d.jobQueue:
			wg.Add(1)
			go func(job WorkRequest) {
				defer wg.Done()
				select {
				case jobChannel := <-d.WorkerPool:
					select {
					case jobChannel <- job:
					case <-job.Ctx.Done():
						d.engine.logger.Warn("job context canceled before processing",
							zap.Error(job.Ctx.Err()),
							zap.String("notification_id", job.Notification.ID.String()))
					}
				case <-job.Ctx.Done():
					d.engine.logger.Warn("job context canceled while waiting for available worker",
						zap.Error(job.Ctx.Err()),
						zap.String("notification_id", job.Notification.ID.String()))
				}
			}(job)

		case <-ticker.C:
			d.pollDueNotifications()
			d.adjustWorkerPool()

			jobQueueLength := len(d.jobQueue)
			if jobQueueLength > 50 {
				tickerInterval = minTickerInterval
			} else if jobQueueLength > 20 {
				tickerInterval = 10 * time.Second
			} else {
				tickerInterval = maxTickerInterval
			}

			ticker.Reset(tickerInterval)
		case <-d.stop:
			wg.Wait()
			return
		}
	}
}

func (d *Dispatcher) pollDueNotifications() {
	ctx := context.Background()

	notifications, err := d.engine.scheduler.PopDue(ctx, time.Now(), popBatchSize)
	if err != nil {
		d.engine.logger.Error("failed to poll due notifications", zap.Error(err))
		return
	}

	for _, notification := range notifications {
		select {
		case d.jobQueue <- WorkRequest{Notification: notification, Ctx: ctx}:
		default:
			d.engine.logger.Warn("job queue full, dropping due notification",
				zap.String("notification_id", notification.ID.String()),
				zap.String("email", notification.Email))
		}
	}
}

func (d *Dispatcher) adjustWorkerPool() {
	d.mu.Lock()
	defer d.mu.Unlock()

	threshold := float64(cap(d.jobQueue)) * 0.75
	currentWorkerCount := len(d.workers)

	if float64(len(d.jobQueue)) > threshold && currentWorkerCount < d.maxWorkers {
		newWorker := NewWorker(currentWorkerCount+1, d.WorkerPool, d.engine)
		newWorker.Start()
		d.workers = append(d.workers, newWorker)
		d.engine.logger.Info("added new worker", zap.Int("worker_id", newWorker.ID))
	}

	if float64(len(d.jobQueue)) < threshold/2 && currentWorkerCount > 1 {
		worker := d.workers[len(d.workers)-1]
		worker.Stop()
		d.workers = d.workers[:len(d.workers)-1]
		d.engine.logger.Info("removed worker", zap.Int("worker_id", worker.ID))
	}

	d.cleanupStoppedWorkers()

	if len(d.jobQueue) > 0 && len(d.workers) == 0 {
		newWorker := NewWorker(1, d.WorkerPool, d.engine)
		newWorker.Start()
		d.workers = append(d.workers, newWorker)
		d.engine.logger.Info("added a new worker because job queue is not empty but no workers are available")
	}
}

func (d *Dispatcher) cleanupStoppedWorkers() {
	var activeWorkers []Worker
	for _, worker := range d.workers {
		select {
		case <-worker.quit:
			d.engine.logger.Info("cleaned up stopped worker", zap.Int("worker_id", worker.ID))
		default:
			activeWorkers = append(activeWorkers, worker)
		}
	}
	d.workers = activeWorkers
}

func (d *Dispatcher) Stop() {
	close(d.stop)
	var wg sync.WaitGroup

	d.mu.Lock()
	for _, worker := range d.workers {
		wg.Add(1)
		go func(w Worker) {
			defer wg.Done()
			w.Stop()
		}(worker)
	}
	d.mu.Unlock()

	wg.Wait()
}
