package job

import (
	"context"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"ytscribe/errors"
	"ytscribe/models"
)

const defaultFolderName = "Results"

// unknownChannelName fills in when the channel lookup fails after
// validation already passed.
const unknownChannelName = "Unknown Channel"

type service struct {
	source       ItemSource
	enricher     DetailEnricher
	transcripts  TranscriptFetcher
	resolver     ChannelResolver
	materializer Materializer
	config       Config
	log          *logrus.Entry

	mu         sync.Mutex
	current    *run
	starting   bool
	generation uint64
	folderName string
}

// run is the state record owned by exactly one job. A new Start allocates a
// fresh run tagged with the next generation, so a cancelled run's stragglers
// can only ever write to their own, already-retired record.
type run struct {
	generation uint64
	channelID  string
	apiKey     string

	ctx    context.Context
	cancel context.CancelFunc

	stopRequested atomic.Bool
	done          atomic.Bool

	mu        sync.RWMutex
	snap      models.Snapshot
	startedAt time.Time
}

func NewService(
	source ItemSource,
	enricher DetailEnricher,
	transcripts TranscriptFetcher,
	resolver ChannelResolver,
	materializer Materializer,
	config Config,
	log *logrus.Logger,
) Service {
	if config.Workers < 1 {
		config.Workers = 5
	}
	return &service{
		source:       source,
		enricher:     enricher,
		transcripts:  transcripts,
		resolver:     resolver,
		materializer: materializer,
		config:       config,
		folderName:   defaultFolderName,
		log:          log.WithField("component", "job"),
	}
}

func (s *service) Start(ctx context.Context, req StartRequest) (StartResult, error) {
	const op = "JobService.Start"

	s.mu.Lock()
	if s.starting || (s.current != nil && !s.current.finished()) {
		s.mu.Unlock()
		return StartResult{}, errors.Conflict(op, nil, "A job is already running.")
	}
	s.starting = true
	s.mu.Unlock()

	result, r, err := s.validateAndPrepare(ctx, req)

	s.mu.Lock()
	s.starting = false
	if err != nil {
		s.mu.Unlock()
		return StartResult{}, err
	}
	s.generation++
	r.generation = s.generation
	s.current = r
	if req.FolderName != "" {
		s.folderName = req.FolderName
	} else {
		s.folderName = defaultFolderName
	}
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"generation":   r.generation,
		"channel_id":   req.ChannelID,
		"channel_name": result.ChannelName,
		"total_videos": result.TotalVideos,
	}).Info("Starting channel processing")

	go s.process(r)

	return result, nil
}

// validateAndPrepare runs the synchronous probe and channel lookup and, on
// success, builds the fresh run record with all state reset.
func (s *service) validateAndPrepare(ctx context.Context, req StartRequest) (StartResult, *run, error) {
	const op = "JobService.Start"

	var failures []string
	if err := s.resolver.Probe(ctx, req.APIKey); err != nil {
		s.log.WithError(err).Warn("API key probe failed")
		failures = append(failures, "Invalid API key.")
	}

	channelName, totalVideos, err := s.resolver.ResolveChannel(ctx, req.APIKey, req.ChannelID)
	if err != nil {
		s.log.WithError(err).WithField("channel_id", req.ChannelID).Warn("Channel lookup failed")
		failures = append(failures, "Invalid channel ID.")
	}

	if len(failures) > 0 {
		return StartResult{}, nil, errors.InvalidInput(op, nil, strings.Join(failures, " "))
	}
	if channelName == "" {
		channelName = unknownChannelName
	}

	runCtx, cancel := context.WithCancel(context.Background())
	r := &run{
		channelID: req.ChannelID,
		apiKey:    req.APIKey,
		ctx:       runCtx,
		cancel:    cancel,
		startedAt: time.Now(),
		snap: models.Snapshot{
			ChannelID:   req.ChannelID,
			ChannelName: channelName,
			TotalVideos: totalVideos,
			Running:     true,
		},
	}

	return StartResult{ChannelName: channelName, TotalVideos: totalVideos}, r, nil
}

func (s *service) Cancel() {
	s.mu.Lock()
	r := s.current
	s.mu.Unlock()

	if r == nil || r.done.Load() {
		return
	}
	if r.stopRequested.CompareAndSwap(false, true) {
		s.log.WithField("generation", r.generation).Info("Stop requested")
	}
}

func (s *service) Status() models.Snapshot {
	s.mu.Lock()
	r := s.current
	s.mu.Unlock()

	if r == nil {
		return models.Snapshot{}
	}
	return r.snapshot()
}

func (s *service) FolderName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.folderName
}

// snapshot copies the run's state, recomputing elapsed time live while the
// run is neither complete nor cancelled so pollers see the timer move
// between worker completions.
func (r *run) snapshot() models.Snapshot {
	r.mu.RLock()
	snap := r.snap
	r.mu.RUnlock()

	if !snap.Finished() {
		snap.ProcessTime = roundSeconds(time.Since(r.startedAt))
	}
	return snap
}

// finished reports whether the run reached a terminal state. The snapshot
// check covers the gap between the final progress write and the run
// goroutine's exit.
func (r *run) finished() bool {
	if r.done.Load() {
		return true
	}
	return r.snapshot().Finished()
}

func (r *run) update(fn func(*models.Snapshot)) {
	r.mu.Lock()
	fn(&r.snap)
	r.mu.Unlock()
}

// elapsed needs no lock: startedAt is written once, before the run
// goroutine exists.
func (r *run) elapsed() float64 {
	return roundSeconds(time.Since(r.startedAt))
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}
