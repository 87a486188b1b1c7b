package job

import (
	"math"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"ytscribe/models"
)

type fetchResult struct {
	video      models.Video
	transcript string
	err        error
}

// process drives one job run off the request path: listing, enrichment,
// transcript fan-out, and materialization. It is the only writer of the
// run's tallies; workers hand results back over a channel and never touch
// shared state.
func (s *service) process(r *run) {
	log := s.log.WithField("generation", r.generation)
	defer func() {
		r.done.Store(true)
		r.cancel()
	}()

	videos, err := s.source.ListVideos(r.ctx, r.apiKey, r.channelID)
	if err != nil {
		log.WithError(err).Error("Video listing failed")
		r.update(func(snap *models.Snapshot) {
			snap.Progress = 100
			snap.Running = false
			snap.ProcessTime = r.elapsed()
		})
		return
	}

	total := len(videos)
	log.WithField("total", total).Info("Videos to process")

	if total == 0 {
		// Empty channel still yields valid, empty artifacts.
		r.update(func(snap *models.Snapshot) {
			snap.Progress = 100
			snap.Running = false
			snap.ProcessTime = r.elapsed()
		})
		if err := s.materializer.Write(nil, nil); err != nil {
			log.WithError(err).Error("Materialization failed")
		}
		return
	}

	// The declared count from the channel lookup is best-effort and may be
	// stale; once the real listing is in hand, report that.
	r.update(func(snap *models.Snapshot) {
		snap.TotalVideos = total
	})

	s.enrich(r, videos, log)

	if r.stopRequested.Load() {
		s.finishCancelled(r, log)
		return
	}

	withTranscript, withoutTranscript, completed := s.fanOut(r, videos, log)
	if r.stopRequested.Load() {
		s.finishCancelled(r, log)
		return
	}

	r.update(func(snap *models.Snapshot) {
		snap.Progress = 100
		snap.Running = false
		snap.ProcessTime = r.elapsed()
	})

	log.WithFields(logrus.Fields{
		"completed":       completed,
		"with":            len(withTranscript),
		"without":         len(withoutTranscript),
		"process_seconds": r.elapsed(),
	}).Info("Processing complete")

	// Materialized ordering follows the original listing, not completion
	// order.
	sortByIndex(withTranscript)
	sortByIndex(withoutTranscript)

	// The job is complete once transcript retrieval finishes;
	// materialization is best-effort.
	if err := s.materializer.Write(withTranscript, withoutTranscript); err != nil {
		log.WithError(err).Error("Materialization failed")
	}
}

// enrich merges view counts and durations into the items in place. A
// failure leaves fields absent and never aborts the job.
func (s *service) enrich(r *run, videos []models.Video, log *logrus.Entry) {
	ids := make([]string, len(videos))
	for i := range videos {
		ids[i] = videos[i].ID
	}

	details, err := s.enricher.VideoDetails(r.ctx, r.apiKey, ids)
	if err != nil {
		log.WithError(err).Warn("Detail enrichment failed, continuing without metadata")
		return
	}

	for i := range videos {
		if d, ok := details[videos[i].ID]; ok {
			videos[i].ViewCount = d.ViewCount
			videos[i].Duration = d.Duration
		}
	}
}

// fanOut runs one transcript fetch per video across the bounded worker pool
// and drains completions in arrival order. Returns early (with partial
// partitions) when a stop request is observed; the caller checks the flag.
func (s *service) fanOut(r *run, videos []models.Video, log *logrus.Entry) (withTranscript, withoutTranscript []models.Video, completed int) {
	total := len(videos)

	jobs := make(chan models.Video)
	// Buffered to the task count so abandoned workers can always deliver
	// and exit after a cancellation.
	results := make(chan fetchResult, total)

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for v := range jobs {
				text, err := s.transcripts.Fetch(r.ctx, r.apiKey, v.ID)
				results <- fetchResult{video: v, transcript: text, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, v := range videos {
			select {
			case jobs <- v:
			case <-r.ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		if r.stopRequested.Load() {
			// Stop scheduling, abandon in-flight best-effort, discard the
			// stragglers.
			r.cancel()
			return withTranscript, withoutTranscript, completed
		}

		v := res.video
		switch {
		case res.err != nil:
			if r.ctx.Err() == nil {
				log.WithError(res.err).WithField("video_id", v.ID).Warn("Transcript fetch failed")
			}
			withoutTranscript = append(withoutTranscript, v)
		case res.transcript == "":
			withoutTranscript = append(withoutTranscript, v)
		default:
			v.Transcript = res.transcript
			withTranscript = append(withTranscript, v)
		}

		completed++
		progress := int(math.Round(float64(completed) / float64(total) * 100))
		withCount, withoutCount := len(withTranscript), len(withoutTranscript)
		r.update(func(snap *models.Snapshot) {
			snap.TranscriptsCount = withCount
			snap.NoTranscriptsCount = withoutCount
			snap.Progress = progress
			snap.ProcessTime = r.elapsed()
		})
	}

	return withTranscript, withoutTranscript, completed
}

func (s *service) finishCancelled(r *run, log *logrus.Entry) {
	r.update(func(snap *models.Snapshot) {
		snap.Progress = models.ProgressCancelled
		snap.Running = false
		snap.ProcessTime = r.elapsed()
	})
	log.Info("Processing cancelled")
}

func sortByIndex(videos []models.Video) {
	sort.Slice(videos, func(i, j int) bool {
		return videos[i].Index < videos[j].Index
	})
}
