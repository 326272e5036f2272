package screening

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"resume-screener/internal/analysis"
	"resume-screener/internal/history"
	"resume-screener/internal/llm"
	"resume-screener/internal/positions"
	"resume-screener/internal/shared/metrics"
	"resume-screener/internal/shared/storage/tiered"
	"resume-screener/internal/shared/telemetry"
)

// Extractor turns resume bytes into plain text.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(ctx context.Context, data []byte) (string, error)

func (f ExtractorFunc) Extract(ctx context.Context, data []byte) (string, error) {
	return f(ctx, data)
}

// Analyzer evaluates one prepared conversation.
type Analyzer interface {
	Analyze(ctx context.Context, messages []llm.Message) (analysis.Result, error)
}

// HistoryWriter records completed batches.
type HistoryWriter interface {
	NewRecord(positionName, jobDescription, specialRequirements, actor string, results []history.Entry) history.Record
	Save(ctx context.Context, rec history.Record) error
}

// PositionLookup resolves the selected position.
type PositionLookup interface {
	Get(ctx context.Context, id string) (positions.Position, error)
}

// Request describes one analysis run.
type Request struct {
	JobDescription      string
	SpecialRequirements string
	CandidateType       llm.CandidateType
	PositionID          string
}

// Outcome summarizes a finished run.
type Outcome struct {
	Batch     BatchView       `json:"batch"`
	Submitted int             `json:"submitted"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Record    *history.Record `json:"record,omitempty"`
	Warning   string          `json:"warning,omitempty"`
}

// Orchestrator runs extract, prompt and analysis for every pending file of
// a batch concurrently and records the successes.
type Orchestrator struct {
	Extractor Extractor
	Analyzer  Analyzer
	History   HistoryWriter
	Positions PositionLookup
	Now       func() time.Time
}

// Analyze blocks until every submitted file has settled. Files that already
// succeeded are not resubmitted.
func (o *Orchestrator) Analyze(ctx context.Context, b *Batch, req Request, actor string) (Outcome, error) {
	if strings.TrimSpace(req.JobDescription) == "" {
		return Outcome{}, ErrJobDescriptionRequired
	}
	if b.Count() == 0 {
		return Outcome{}, ErrNoFiles
	}
	if !b.begin() {
		return Outcome{}, ErrBatchBusy
	}
	defer b.end()

	started := o.now()
	positionName := o.positionName(ctx, req.PositionID)
	submitted := b.markAnalyzing()

	runCtx := context.WithoutCancel(ctx)
	var g errgroup.Group
	for _, f := range submitted {
		f := f
		g.Go(func() error {
			o.runFile(runCtx, b, f, req)
			return nil
		})
	}
	_ = g.Wait()

	files := b.Files()
	out := Outcome{Submitted: len(submitted)}
	var entries []history.Entry
	for _, f := range files {
		switch f.Status {
		case StatusSuccess:
			out.Succeeded++
			if f.Result != nil {
				entries = append(entries, history.Entry{FileName: f.Name, Result: *f.Result})
			}
		case StatusError:
			out.Failed++
		}
	}

	// A run that resubmitted nothing leaves history untouched.
	if len(submitted) > 0 && len(entries) > 0 && o.History != nil {
		rec := o.History.NewRecord(positionName, req.JobDescription, req.SpecialRequirements, actor, entries)
		if err := o.History.Save(runCtx, rec); err != nil {
			var perr *tiered.PersistenceError
			if errors.As(err, &perr) {
				out.Warning = "历史记录仅保存在本地: " + perr.Err.Error()
			} else {
				out.Warning = "保存历史记录失败: " + err.Error()
				telemetry.Error("screening.history_failed", telemetry.Fields{
					"batch_id": b.ID,
					"err":      err,
				})
			}
		}
		out.Record = &rec
	}

	telemetry.Info("screening.batch", telemetry.Fields{
		"batch_id":    b.ID,
		"actor":       actor,
		"submitted":   out.Submitted,
		"succeeded":   out.Succeeded,
		"failed":      out.Failed,
		"recorded":    out.Record != nil,
		"duration_ms": o.now().Sub(started).Milliseconds(),
	})
	out.Batch = b.View()
	out.Batch.Running = false
	return out, nil
}

func (o *Orchestrator) runFile(ctx context.Context, b *Batch, f File, req Request) {
	started := o.now()
	metrics.IncFileStarted()

	result, err := o.evaluate(ctx, f.Data, req)
	elapsed := o.now().Sub(started)
	metrics.ObserveFileDurationMs(float64(elapsed.Milliseconds()))

	fields := telemetry.Fields{
		"batch_id":    b.ID,
		"file_id":     f.ID,
		"file_name":   f.Name,
		"duration_ms": elapsed.Milliseconds(),
	}
	if err != nil {
		msg := strings.TrimSpace(err.Error())
		if msg == "" {
			msg = defaultFailure
		}
		metrics.IncFileFailed()
		fields["status"] = StatusError
		fields["err"] = msg
		telemetry.Warn("screening.file", fields)
		b.update(f.ID, func(file *File) {
			file.Status = StatusError
			file.Error = msg
		})
		return
	}

	metrics.IncFileSucceeded()
	fields["status"] = StatusSuccess
	fields["match_score"] = result.MatchScore
	telemetry.Info("screening.file", fields)
	b.update(f.ID, func(file *File) {
		file.Status = StatusSuccess
		file.Result = &result
	})
}

func (o *Orchestrator) evaluate(ctx context.Context, data []byte, req Request) (result analysis.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %v", defaultFailure, r)
		}
	}()
	text, err := o.Extractor.Extract(ctx, data)
	if err != nil {
		return analysis.Result{}, err
	}
	messages := llm.BuildConversation(llm.PromptInput{
		JobDescription:      req.JobDescription,
		SpecialRequirements: req.SpecialRequirements,
		CandidateType:       req.CandidateType,
		ResumeText:          text,
	})
	return o.Analyzer.Analyze(ctx, messages)
}

func (o *Orchestrator) positionName(ctx context.Context, id string) string {
	if id == "" || o.Positions == nil {
		return history.UnassignedPosition
	}
	p, err := o.Positions.Get(ctx, id)
	if err != nil || strings.TrimSpace(p.Name) == "" {
		return history.UnassignedPosition
	}
	return p.Name
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}
