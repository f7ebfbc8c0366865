package app

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// StopReason 运行结束的原因
type StopReason string

const (
	StopMaxWaves    StopReason = "max-waves"
	StopMaxSimTime  StopReason = "max-sim-time"
	StopMaxDuration StopReason = "max-duration"
	StopCanceled    StopReason = "canceled"
)

// RunnerOptions 无界面运行参数
type RunnerOptions struct {
	// TickRate 每秒 tick 数，默认 60
	TickRate int
	// Realtime 为 true 时按真实时间节奏运行，否则尽可能快地推进
	Realtime bool
	// MaxWaves 完成这么多波后停止，0 表示不限
	MaxWaves int
	// MaxSimTime 模拟时间上限（秒），0 表示不限
	MaxSimTime float64
	// MaxDuration 真实时间上限，0 表示不限
	MaxDuration time.Duration
}

// RunResult 运行结果
type RunResult struct {
	Reason         StopReason
	Ticks          int
	SimulatedTime  float64
	WavesCompleted int
	LastWave       int
}

// Runner 以固定步长驱动会话
// 会话只在 tick 循环的 goroutine 中被访问；另一个 goroutine 只负责真实时间上限
type Runner struct {
	session *Session
	opts    RunnerOptions
}

// NewRunner 创建运行器
func NewRunner(session *Session, opts RunnerOptions) *Runner {
	if opts.TickRate <= 0 {
		opts.TickRate = 60
	}
	return &Runner{session: session, opts: opts}
}

// Run 运行直到达到上限或 ctx 被取消
func (r *Runner) Run(ctx context.Context) (RunResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var timedOut atomic.Bool
	var result RunResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		var err error
		result, err = r.loop(gctx)
		return err
	})
	if r.opts.MaxDuration > 0 {
		g.Go(func() error {
			timer := time.NewTimer(r.opts.MaxDuration)
			defer timer.Stop()
			select {
			case <-timer.C:
				timedOut.Store(true)
				cancel()
			case <-gctx.Done():
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}
	if result.Reason == StopCanceled && timedOut.Load() {
		result.Reason = StopMaxDuration
	}

	log.Printf("[Runner] Stopped (%s): %d ticks, %.1fs simulated, %d waves completed",
		result.Reason, result.Ticks, result.SimulatedTime, result.WavesCompleted)
	return result, nil
}

func (r *Runner) loop(ctx context.Context) (RunResult, error) {
	result := RunResult{}
	if err := r.session.Start(); err != nil {
		return result, err
	}
	defer r.session.Stop()

	deltaTime := 1.0 / float64(r.opts.TickRate)

	var tick <-chan time.Time
	if r.opts.Realtime {
		ticker := time.NewTicker(time.Second / time.Duration(r.opts.TickRate))
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				return r.finish(result, StopCanceled), nil
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return r.finish(result, StopCanceled), nil
		}

		r.session.Update(deltaTime)
		result.Ticks++
		result.SimulatedTime += deltaTime

		if r.opts.MaxWaves > 0 && r.session.CompletedWaves() >= r.opts.MaxWaves {
			return r.finish(result, StopMaxWaves), nil
		}
		if r.opts.MaxSimTime > 0 && result.SimulatedTime >= r.opts.MaxSimTime {
			return r.finish(result, StopMaxSimTime), nil
		}
	}
}

func (r *Runner) finish(result RunResult, reason StopReason) RunResult {
	result.Reason = reason
	result.WavesCompleted = r.session.CompletedWaves()
	result.LastWave = r.session.LastCompletedWave()
	return result
}
