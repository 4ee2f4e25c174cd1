package worker

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"golang.org/x/time/rate"

	"github.com/cask-indexer/internal/chain"
	"github.com/cask-indexer/internal/logging"
	"github.com/cask-indexer/internal/projector"
	"github.com/cask-indexer/internal/retry"
	"github.com/cask-indexer/internal/storage"
	"github.com/cask-indexer/internal/types"
)

const (
	defaultPollInterval     = 15 * time.Second
	defaultMaxBlocksPerPoll = 1000
)

// Config holds the dependencies and tuning for one chain's log worker.
type Config struct {
	Chain            types.ChainID
	Client           *chain.Client
	Decoder          *Decoder
	Projector        *projector.Projector
	Checkpoints      *storage.RedisCheckpoints
	PollInterval     time.Duration
	MaxBlocksPerPoll uint64
	StartBlock       uint64
	RPCRateLimit     int
	Logger           *logging.Logger
}

// Worker polls one chain for contract logs and feeds them to the projector
// in canonical order. One worker per chain; logs within a chain are applied
// serially so entity reads never race entity writes.
type Worker struct {
	chain            types.ChainID
	client           *chain.Client
	decoder          *Decoder
	projector        *projector.Projector
	checkpoints      *storage.RedisCheckpoints
	limiter          *rate.Limiter
	pollInterval     time.Duration
	maxBlocksPerPoll uint64
	startBlock       uint64
	log              *logging.Logger

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	lastBlockProcessed uint64
	lastPollTime       time.Time
}

// Status is a point-in-time snapshot of a worker's progress.
type Status struct {
	Chain              types.ChainID `json:"chain"`
	Running            bool          `json:"running"`
	LastBlockProcessed uint64        `json:"last_block_processed"`
	LastPollTime       time.Time     `json:"last_poll_time"`
}

// New validates the config and builds a worker. It does not touch the chain.
func New(cfg *Config) (*Worker, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Client == nil {
		return nil, fmt.Errorf("chain client is required")
	}
	if cfg.Decoder == nil {
		return nil, fmt.Errorf("decoder is required")
	}
	if cfg.Projector == nil {
		return nil, fmt.Errorf("projector is required")
	}
	if cfg.Checkpoints == nil {
		return nil, fmt.Errorf("checkpoint store is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	maxBlocks := cfg.MaxBlocksPerPoll
	if maxBlocks == 0 {
		maxBlocks = defaultMaxBlocksPerPoll
	}
	limit := rate.Inf
	burst := 1
	if cfg.RPCRateLimit > 0 {
		limit = rate.Limit(cfg.RPCRateLimit)
		burst = cfg.RPCRateLimit
	}

	return &Worker{
		chain:            cfg.Chain,
		client:           cfg.Client,
		decoder:          cfg.Decoder,
		projector:        cfg.Projector,
		checkpoints:      cfg.Checkpoints,
		limiter:          rate.NewLimiter(limit, burst),
		pollInterval:     pollInterval,
		maxBlocksPerPoll: maxBlocks,
		startBlock:       cfg.StartBlock,
		log:              cfg.Logger.WithField("chain", string(cfg.Chain)),
	}, nil
}

// Start resumes from the last checkpoint (or the configured start block)
// and begins polling. It returns once the poll loop is running.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("worker for %s already running", w.chain)
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	last, err := w.resumePoint(ctx)
	if err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}

	w.mu.Lock()
	w.lastBlockProcessed = last
	w.mu.Unlock()

	w.log.WithField("from_block", last+1).Info("starting log worker")
	go w.pollLoop(ctx)
	return nil
}

// Stop signals the poll loop and waits for the in-flight poll to finish.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	doneCh := w.doneCh
	w.mu.Unlock()

	<-doneCh
	w.log.Info("log worker stopped")
}

// GetStatus returns a snapshot of the worker's progress.
func (w *Worker) GetStatus() Status {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return Status{
		Chain:              w.chain,
		Running:            w.running,
		LastBlockProcessed: w.lastBlockProcessed,
		LastPollTime:       w.lastPollTime,
	}
}

// resumePoint picks the block after which polling should begin: the stored
// checkpoint, else the configured start block, else the current head.
func (w *Worker) resumePoint(ctx context.Context) (uint64, error) {
	block, found, err := w.checkpoints.LastBlock(ctx, w.chain)
	if err != nil {
		return 0, err
	}
	if found {
		w.log.WithField("checkpoint", block).Info("resuming from checkpoint")
		return block, nil
	}
	if w.startBlock > 0 {
		return w.startBlock - 1, nil
	}

	var head uint64
	err = retry.WithRetry(ctx, func(ctx context.Context, attempt int) error {
		var err error
		head, err = w.client.BlockNumber(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to fetch head block for %s: %w", w.chain, err)
	}
	return head, nil
}

func (w *Worker) pollLoop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	// First poll immediately rather than waiting a full interval.
	if err := w.PollChain(ctx); err != nil {
		w.log.WithError(err).Error("poll failed")
	}

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.PollChain(ctx); err != nil {
				w.log.WithError(err).Error("poll failed")
			}
		}
	}
}

// PollChain processes the next contiguous block range, clamped to
// maxBlocksPerPoll. The checkpoint advances only after every log of a block
// has been applied, so a crash replays at most one partially applied block.
func (w *Worker) PollChain(ctx context.Context) error {
	w.mu.Lock()
	w.lastPollTime = time.Now()
	from := w.lastBlockProcessed + 1
	w.mu.Unlock()

	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}

	var head uint64
	err := retry.WithRetry(ctx, func(ctx context.Context, attempt int) error {
		var err error
		head, err = w.client.BlockNumber(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to fetch head block: %w", err)
	}
	if from > head {
		return nil
	}

	to := head
	if to-from+1 > w.maxBlocksPerPoll {
		to = from + w.maxBlocksPerPoll - 1
	}

	if err := w.processRange(ctx, from, to); err != nil {
		return err
	}

	w.mu.Lock()
	w.lastBlockProcessed = to
	w.mu.Unlock()

	return w.checkpoints.SetLastBlock(ctx, w.chain, to)
}

func (w *Worker) processRange(ctx context.Context, from, to uint64) error {
	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}

	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: w.decoder.Addresses(),
	}

	var logs []ethtypes.Log
	err := retry.WithRetry(ctx, func(ctx context.Context, attempt int) error {
		var err error
		logs, err = w.client.FilterLogs(ctx, query)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to fetch logs for blocks %d-%d: %w", from, to, err)
	}
	if len(logs) == 0 {
		return nil
	}

	// Canonical order: block, then transaction index, then log index.
	sort.Slice(logs, func(i, j int) bool {
		if logs[i].BlockNumber != logs[j].BlockNumber {
			return logs[i].BlockNumber < logs[j].BlockNumber
		}
		if logs[i].TxIndex != logs[j].TxIndex {
			return logs[i].TxIndex < logs[j].TxIndex
		}
		return logs[i].Index < logs[j].Index
	})

	procCtx := logging.WithLogger(ctx, w.log)

	var (
		blockTimestamp int64
		currentBlock   uint64
	)
	for _, lg := range logs {
		if lg.BlockNumber != currentBlock {
			if currentBlock != 0 {
				if err := w.checkpoints.SetLastBlock(ctx, w.chain, currentBlock); err != nil {
					return err
				}
				w.mu.Lock()
				w.lastBlockProcessed = currentBlock
				w.mu.Unlock()
			}
			ts, err := w.blockTimestamp(ctx, lg.BlockNumber)
			if err != nil {
				return err
			}
			currentBlock = lg.BlockNumber
			blockTimestamp = ts
		}

		ev, err := w.decoder.Decode(w.chain, lg, blockTimestamp)
		if err != nil {
			return fmt.Errorf("failed to decode log %s[%d]: %w", lg.TxHash.Hex(), lg.Index, err)
		}
		if ev == nil {
			continue
		}
		if err := w.projector.Apply(procCtx, ev); err != nil {
			return fmt.Errorf("failed to project log %s[%d]: %w", lg.TxHash.Hex(), lg.Index, err)
		}
	}

	w.log.WithFields(map[string]interface{}{
		"from_block": from,
		"to_block":   to,
		"logs":       len(logs),
	}).Info("processed block range")
	return nil
}

func (w *Worker) blockTimestamp(ctx context.Context, number uint64) (int64, error) {
	if err := w.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	var ts int64
	err := retry.WithRetry(ctx, func(ctx context.Context, attempt int) error {
		header, err := w.client.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
		if err != nil {
			return err
		}
		ts = int64(header.Time)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to fetch header for block %d: %w", number, err)
	}
	return ts, nil
}
