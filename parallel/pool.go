package parallel

import (
	"runtime"
	"sync"
)

type (
	WorkerFunc func(func())
	WaitFunc   func()
)

// Pool fans tasks out to a fixed set of workers. Wait blocks until every
// task queued so far has finished, so one pool can serve several passes in
// a row: queue the rows of one compositing run, Wait, queue the next.
type Pool struct {
	workers sync.WaitGroup
	tasks   sync.WaitGroup

	Do    WorkerFunc
	Wait  WaitFunc
	Close func()
}

func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{
		Do:    func(f func()) { f() },
		Wait:  func() {},
		Close: func() {},
	}

	if numWorkers > 1 {
		workChan := make(chan func(), numWorkers)

		for range numWorkers {
			pool.workers.Go(func() {
				for f := range workChan {
					f()
					pool.tasks.Done()
				}
			})
		}

		pool.Do = func(f func()) {
			pool.tasks.Add(1)
			workChan <- f
		}
		pool.Wait = pool.tasks.Wait
		pool.Close = sync.OnceFunc(func() {
			close(workChan)
			pool.workers.Wait()
		})
	}

	return pool
}
