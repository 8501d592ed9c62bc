package video

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"pica/emu/log"
	"pica/hw/gpu"
	"pica/hw/timing"
)

// synchState is shared by the submitting goroutine and the worker. The
// queue has a single producer and a single consumer.
type synchState struct {
	mu      sync.Mutex
	cond    sync.Cond
	queue   []command
	running bool

	lastFence     uint64 // last fence issued, guarded by mu
	signaledFence atomic.Uint64
}

// ThreadManager is the parallel backend: operations are queued with an
// increasing fence and executed in order by a worker goroutine. After
// queueing, the caller waits according to the timing policy of the
// operation.
//
// The worker performs memory operations and draws with the renderer
// directly, never through the ThreadManager, so region maintenance
// triggered on the worker cannot wait on itself.
type ThreadManager struct {
	exec      *executor
	timing    *timing.Timing
	policies  Policies
	syncEvent *timing.EventType

	st synchState
	eg errgroup.Group
}

func newThreadManager(exec *executor, tm *timing.Timing, policies Policies) *ThreadManager {
	m := &ThreadManager{exec: exec, timing: tm, policies: policies}
	m.st.cond.L = &m.st.mu
	m.st.running = true
	m.syncEvent = tm.RegisterEvent("GPUSynchronizeEvent", func(fence uint64, _ int64) {
		m.WaitForFence(fence)
	})
	m.eg.Go(m.run)
	return m
}

func (m *ThreadManager) run() error {
	st := &m.st
	log.ModThread.InfoZ("gpu worker started").End()
	for {
		st.mu.Lock()
		for len(st.queue) == 0 && st.running {
			st.cond.Wait()
		}
		if !st.running {
			st.mu.Unlock()
			log.ModThread.InfoZ("gpu worker stopped").End()
			return nil
		}
		cmd := st.queue[0]
		st.queue[0] = command{}
		st.queue = st.queue[1:]
		st.mu.Unlock()

		m.exec.execute(&cmd)

		st.mu.Lock()
		st.signaledFence.Store(cmd.fence)
		st.mu.Unlock()
		st.cond.Broadcast()
	}
}

func (m *ThreadManager) push(cmd command) {
	st := &m.st
	st.mu.Lock()
	if !st.running {
		st.mu.Unlock()
		log.ModThread.WarnZ("command dropped after shutdown").Uint("kind", uint64(cmd.kind)).End()
		return
	}
	st.lastFence++
	cmd.fence = st.lastFence
	st.queue = append(st.queue, cmd)
	st.mu.Unlock()
	st.cond.Broadcast()

	switch mode := m.policies.forKind(cmd.kind); mode {
	case Skip, Asynch:
	case Synch:
		m.WaitForFence(cmd.fence)
	default:
		if cycles, ok := mode.DeferredCycles(); ok {
			m.timing.ScheduleEvent(cycles, m.syncEvent, cmd.fence)
		}
	}
}

// WaitForFence blocks until the operation with the given fence completed,
// or the worker is stopped.
func (m *ThreadManager) WaitForFence(fence uint64) {
	st := &m.st
	st.mu.Lock()
	defer st.mu.Unlock()
	for st.signaledFence.Load() < fence && st.running {
		st.cond.Wait()
	}
}

// LastFence returns the fence of the last queued operation.
func (m *ThreadManager) LastFence() uint64 {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	return m.st.lastFence
}

// SignaledFence returns the fence of the last completed operation.
func (m *ThreadManager) SignaledFence() uint64 { return m.st.signaledFence.Load() }

func (m *ThreadManager) WaitForProcessing() { m.WaitForFence(m.LastFence()) }

// Close stops the worker, dropping queued operations, and waits for it to
// exit.
func (m *ThreadManager) Close() error {
	m.st.mu.Lock()
	m.st.running = false
	m.st.mu.Unlock()
	m.st.cond.Broadcast()
	return m.eg.Wait()
}

func (m *ThreadManager) ProcessCommandList(addr, size uint32) {
	if size == 0 {
		return
	}
	m.push(command{kind: cmdSubmitList, addr: addr, size: uint64(size)})
}

func (m *ThreadManager) SwapBuffers() { m.push(command{kind: cmdSwapBuffers}) }

func (m *ThreadManager) DisplayTransfer(cfg gpu.DisplayTransferConfig) {
	m.push(command{kind: cmdDisplayTransfer, transfer: cfg})
}

func (m *ThreadManager) MemoryFill(cfg gpu.MemoryFillConfig, second bool) {
	m.push(command{kind: cmdMemoryFill, fill: cfg, second: second})
}

// FlushRegion queues a flush. Like the other region operations it is
// dropped, without a fence, when its mode is Skip.
func (m *ThreadManager) FlushRegion(addr uint32, size uint64) {
	if m.policies.Flush == Skip {
		return
	}
	m.push(command{kind: cmdFlushRegion, addr: addr, size: size})
}

func (m *ThreadManager) FlushAndInvalidateRegion(addr uint32, size uint64) {
	if m.policies.FlushAndInvalidate == Skip {
		return
	}
	m.push(command{kind: cmdFlushAndInvalidateRegion, addr: addr, size: size})
}

func (m *ThreadManager) InvalidateRegion(addr uint32, size uint64) {
	if m.policies.Invalidate == Skip {
		return
	}
	m.push(command{kind: cmdInvalidateRegion, addr: addr, size: size})
}

// workerRegions is the region cache of memory operations running on the
// worker. They reach the renderer without the queue and honour Skip the
// same way queued region operations do.
type workerRegions struct {
	Renderer
	policies Policies
}

func (w workerRegions) FlushRegion(addr uint32, size uint64) {
	if w.policies.Flush != Skip {
		w.Renderer.FlushRegion(addr, size)
	}
}

func (w workerRegions) FlushAndInvalidateRegion(addr uint32, size uint64) {
	if w.policies.FlushAndInvalidate != Skip {
		w.Renderer.FlushAndInvalidateRegion(addr, size)
	}
}

func (w workerRegions) InvalidateRegion(addr uint32, size uint64) {
	if w.policies.Invalidate != Skip {
		w.Renderer.InvalidateRegion(addr, size)
	}
}
