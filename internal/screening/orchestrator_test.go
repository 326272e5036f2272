package screening

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"resume-screener/internal/analysis"
	"resume-screener/internal/history"
	"resume-screener/internal/llm"
	"resume-screener/internal/positions"
	"resume-screener/internal/shared/storage/localcache"
	"resume-screener/internal/shared/telemetry"
)

type fakeExtractor struct{}

func (fakeExtractor) Extract(_ context.Context, data []byte) (string, error) {
	text := string(data)
	if strings.Contains(text, "short") {
		return "", errors.New("PDF内容过少或无法提取，请检查文件")
	}
	return text, nil
}

type fakeAnalyzer struct {
	calls   atomic.Int32
	entered chan struct{}
	gate    chan struct{}
}

func (a *fakeAnalyzer) Analyze(_ context.Context, messages []llm.Message) (analysis.Result, error) {
	a.calls.Add(1)
	if a.entered != nil {
		a.entered <- struct{}{}
	}
	if a.gate != nil {
		<-a.gate
	}
	user := messages[len(messages)-1].Content
	if strings.Contains(user, "gateway-down") {
		return analysis.Result{}, errors.New("API请求失败: Internal Server Error")
	}
	return analysis.Result{MatchScore: 75, Recommendation: analysis.Recommend, HardRequirementsMet: true}, nil
}

type fakePositions map[string]positions.Position

func (p fakePositions) Get(_ context.Context, id string) (positions.Position, error) {
	if pos, ok := p[id]; ok {
		return pos, nil
	}
	return positions.Position{}, positions.ErrNotFound
}

func newOrchestrator(t *testing.T, analyzer *fakeAnalyzer) (*Orchestrator, *history.Service) {
	t.Helper()
	telemetry.SetOutput(io.Discard)
	t.Cleanup(func() { telemetry.SetOutput(nil) })
	cache, err := localcache.New(t.TempDir())
	if err != nil {
		t.Fatalf("localcache.New: %v", err)
	}
	hist := history.NewService(nil, cache, nil, nil)
	return &Orchestrator{
		Extractor: fakeExtractor{},
		Analyzer:  analyzer,
		History:   hist,
		Positions: fakePositions{"p1": {ID: "p1", Name: "后端工程师"}},
	}, hist
}

func resumeUpload(name, body string) Upload {
	return Upload{Name: name, ContentType: "application/pdf", Data: []byte(body)}
}

func TestAnalyzeValidatesInput(t *testing.T) {
	orch, _ := newOrchestrator(t, &fakeAnalyzer{})
	ws := NewWorkspace(nil)
	b := ws.NewBatch("admin")

	if _, err := orch.Analyze(context.Background(), b, Request{JobDescription: "  "}, "admin"); !errors.Is(err, ErrJobDescriptionRequired) {
		t.Fatalf("expected ErrJobDescriptionRequired, got %v", err)
	}
	if _, err := orch.Analyze(context.Background(), b, Request{JobDescription: "Go"}, "admin"); !errors.Is(err, ErrNoFiles) {
		t.Fatalf("expected ErrNoFiles, got %v", err)
	}
}

func TestAnalyzeMixedOutcomesRecordsSuccessesOnly(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	orch, hist := newOrchestrator(t, analyzer)
	ws := NewWorkspace(nil)
	b := ws.NewBatch("admin")
	_, _, err := ws.AddFiles(b.ID, "admin", []Upload{
		resumeUpload("a.pdf", "资深 Go 工程师 八年经验"),
		resumeUpload("b.pdf", "short"),
		resumeUpload("c.pdf", "前端工程师 React"),
	})
	if err != nil {
		t.Fatalf("AddFiles: %v", err)
	}

	out, err := orch.Analyze(context.Background(), b, Request{JobDescription: "招聘 Go 工程师", PositionID: "p1"}, "admin")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if out.Submitted != 3 || out.Succeeded != 2 || out.Failed != 1 {
		t.Fatalf("unexpected counts %+v", out)
	}
	for _, f := range b.Files() {
		if f.Status == StatusPending || f.Status == StatusAnalyzing {
			t.Fatalf("file %s left in %s", f.Name, f.Status)
		}
		if f.Name == "b.pdf" && (f.Status != StatusError || f.Error != "PDF内容过少或无法提取，请检查文件") {
			t.Fatalf("unexpected failed file %+v", f)
		}
	}
	if analyzer.calls.Load() != 2 {
		t.Fatalf("expected 2 gateway calls, got %d", analyzer.calls.Load())
	}

	records, err := hist.Visible(context.Background(), history.Viewer{Admin: true})
	if err != nil {
		t.Fatalf("Visible: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	rec := records[0]
	if len(rec.Results) != 2 || rec.Results[0].FileName != "a.pdf" || rec.Results[1].FileName != "c.pdf" {
		t.Fatalf("unexpected results %+v", rec.Results)
	}
	if rec.PositionName != "后端工程师" || rec.CreatedBy != "admin" || rec.AssignedTo != "admin" {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestAnalyzeSkipsSucceededFiles(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	orch, hist := newOrchestrator(t, analyzer)
	ws := NewWorkspace(nil)
	b := ws.NewBatch("admin")
	_, _, _ = ws.AddFiles(b.ID, "admin", []Upload{resumeUpload("a.pdf", "经验丰富的工程师")})

	req := Request{JobDescription: "招聘"}
	if _, err := orch.Analyze(context.Background(), b, req, "admin"); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	analyzer.calls.Store(0)
	out, err := orch.Analyze(context.Background(), b, req, "admin")
	if err != nil {
		t.Fatalf("second Analyze: %v", err)
	}
	if analyzer.calls.Load() != 0 || out.Submitted != 0 {
		t.Fatalf("expected no resubmission, calls=%d submitted=%d", analyzer.calls.Load(), out.Submitted)
	}
	if out.Record != nil || out.Succeeded != 1 {
		t.Fatalf("expected no new record on rerun, got %+v", out)
	}
	records, err := hist.Visible(context.Background(), history.Viewer{Admin: true})
	if err != nil {
		t.Fatalf("Visible: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected history to keep one record, got %d", len(records))
	}
}

func TestAnalyzeWithoutSuccessWritesNoRecord(t *testing.T) {
	orch, hist := newOrchestrator(t, &fakeAnalyzer{})
	ws := NewWorkspace(nil)
	b := ws.NewBatch("admin")
	_, _, _ = ws.AddFiles(b.ID, "admin", []Upload{resumeUpload("a.pdf", "gateway-down resume")})

	out, err := orch.Analyze(context.Background(), b, Request{JobDescription: "招聘"}, "admin")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if out.Record != nil || out.Failed != 1 {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if f := b.Files()[0]; f.Error != "API请求失败: Internal Server Error" {
		t.Fatalf("unexpected error text %q", f.Error)
	}
	records, _ := hist.Visible(context.Background(), history.Viewer{Admin: true})
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestAnalyzeRejectsConcurrentRun(t *testing.T) {
	analyzer := &fakeAnalyzer{entered: make(chan struct{}, 1), gate: make(chan struct{})}
	orch, _ := newOrchestrator(t, analyzer)
	ws := NewWorkspace(nil)
	b := ws.NewBatch("admin")
	_, _, _ = ws.AddFiles(b.ID, "admin", []Upload{resumeUpload("a.pdf", "简历内容")})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = orch.Analyze(context.Background(), b, Request{JobDescription: "招聘"}, "admin")
	}()
	<-analyzer.entered
	if _, err := orch.Analyze(context.Background(), b, Request{JobDescription: "招聘"}, "admin"); !errors.Is(err, ErrBatchBusy) {
		t.Fatalf("expected ErrBatchBusy, got %v", err)
	}
	close(analyzer.gate)
	wg.Wait()
}

func TestRemovedFileIsDroppedWhenItSettles(t *testing.T) {
	analyzer := &fakeAnalyzer{entered: make(chan struct{}, 1), gate: make(chan struct{})}
	orch, _ := newOrchestrator(t, analyzer)
	ws := NewWorkspace(nil)
	b := ws.NewBatch("admin")
	added, _, _ := ws.AddFiles(b.ID, "admin", []Upload{resumeUpload("a.pdf", "简历内容")})

	done := make(chan Outcome, 1)
	go func() {
		out, _ := orch.Analyze(context.Background(), b, Request{JobDescription: "招聘"}, "admin")
		done <- out
	}()
	<-analyzer.entered
	if err := ws.RemoveFile(b.ID, "admin", added[0].ID); err != nil {
		t.Fatalf("RemoveFile: %v", err)
	}
	close(analyzer.gate)
	out := <-done
	if len(out.Batch.Files) != 0 || out.Record != nil {
		t.Fatalf("expected removed file to stay gone, got %+v", out)
	}
}
