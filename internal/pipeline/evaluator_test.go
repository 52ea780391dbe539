package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fakebench/internal/classifier"
	"fakebench/internal/pipeline"
	"fakebench/internal/report"
	"fakebench/internal/runlog"
	"fakebench/internal/services"
	"fakebench/internal/testsupport"
)

// scoreBehavior is shared by every fake model a test registry produces.
type scoreBehavior struct {
	failFor string             // weight path substring that fails scoring
	cancel  context.CancelFunc // first score call cancels the run when set
	loaded  []string
	batches []int
}

type fakeModel struct {
	behavior *scoreBehavior
	path     string
}

func (m *fakeModel) Load(path string) error {
	m.path = path
	m.behavior.loaded = append(m.behavior.loaded, path)
	return nil
}

func (m *fakeModel) EvaluateRecall(ctx context.Context, classDir string, batchSize int) (float64, error) {
	if m.behavior.cancel != nil {
		m.behavior.cancel()
		return 0, ctx.Err()
	}
	if m.behavior.failFor != "" && strings.Contains(m.path, m.behavior.failFor) {
		return 0, services.Wrap(services.ErrExternalTool, "classifier", "score", "scorer crashed", nil)
	}
	m.behavior.batches = append(m.behavior.batches, batchSize)
	class := filepath.Base(classDir)
	for i, c := range report.Classes {
		if c == class {
			// Sixteenths stay exact in binary and print tersely.
			return 0.5 + float64(i)*0.0625, nil
		}
	}
	return 0, services.Wrap(services.ErrValidation, "classifier", "score", "unknown class "+class, nil)
}

func newFakeRegistry(behavior *scoreBehavior) *classifier.Registry {
	reg := classifier.NewRegistry()
	reg.Register(classifier.ArchMeso4, func() classifier.Model {
		return &fakeModel{behavior: behavior}
	})
	return reg
}

type evaluateFixture struct {
	dataDir   string
	modelsDir string
	output    string
}

func newEvaluateFixture(t *testing.T) *evaluateFixture {
	t.Helper()
	base := t.TempDir()
	fx := &evaluateFixture{
		dataDir:   filepath.Join(base, "classes"),
		modelsDir: filepath.Join(base, "models"),
		output:    filepath.Join(base, "recalls.csv"),
	}
	for _, class := range report.Classes {
		if err := os.MkdirAll(filepath.Join(fx.dataDir, class), 0o755); err != nil {
			t.Fatalf("create class dir: %v", err)
		}
	}
	if err := os.MkdirAll(fx.modelsDir, 0o755); err != nil {
		t.Fatalf("create models dir: %v", err)
	}
	return fx
}

func (fx *evaluateFixture) addModel(t *testing.T, arch, name string) {
	t.Helper()
	testsupport.WriteFile(t, filepath.Join(fx.modelsDir, arch, name, "best.hdf5"), 128)
}

func (fx *evaluateFixture) request() pipeline.EvaluateRequest {
	return pipeline.EvaluateRequest{
		DataDir:    fx.dataDir,
		ModelsDir:  fx.modelsDir,
		MType:      "meso4",
		OutputFile: fx.output,
		BatchSize:  16,
	}
}

func (fx *evaluateFixture) readOutput(t *testing.T) string {
	t.Helper()
	payload, err := os.ReadFile(fx.output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	return string(payload)
}

const recallCells = "0.5,0.5625,0.625,0.6875,0.75,0.8125,0.875"

func TestEvaluateWritesRecallRows(t *testing.T) {
	fx := newEvaluateFixture(t)
	fx.addModel(t, "meso4", "df-to-f2f")
	fx.addModel(t, "meso4", "real-to-fs")
	testsupport.WriteFile(t, filepath.Join(fx.modelsDir, "meso4", "notes.txt"), 16)

	behavior := &scoreBehavior{}
	var out, errOut bytes.Buffer
	ev := pipeline.NewEvaluator(newFakeRegistry(behavior), nil, nil, pipeline.IO{Stdout: &out, Stderr: &errOut})

	req := fx.request()
	req.MType = "Meso4" // lookup and paths normalize the case

	stats, err := ev.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Processed != 2 || stats.Skipped != 0 || stats.Failed != 0 {
		t.Fatalf("stats = %+v, want 2 processed", stats)
	}

	want := strings.Join([]string{
		"Testing transferred models for MESO4",
		fmt.Sprintf("Loading models from %q", fx.modelsDir),
		fmt.Sprintf("Outputting to %q", fx.output),
		"Batch size: 16",
		"",
		"Checking class directories...",
		"",
		`Testing model "df-to-f2f"...`,
		"",
		`Testing model "real-to-fs"...`,
		"",
	}, "\n")
	if out.String() != want {
		t.Fatalf("stdout = %q, want %q", out.String(), want)
	}
	if errOut.Len() != 0 {
		t.Fatalf("unexpected stderr: %q", errOut.String())
	}

	wantCSV := strings.Join([]string{
		"mtype,orig_class,trans_class," + strings.Join(report.Classes, ","),
		"meso4,df,f2f," + recallCells,
		"meso4,real,fs," + recallCells,
		"",
	}, "\n")
	if got := fx.readOutput(t); got != wantCSV {
		t.Fatalf("csv = %q, want %q", got, wantCSV)
	}

	for _, batch := range behavior.batches {
		if batch != 16 {
			t.Fatalf("scorer saw batch size %d, want 16", batch)
		}
	}
	if len(behavior.batches) != 2*len(report.Classes) {
		t.Fatalf("scored %d class dirs, want %d", len(behavior.batches), 2*len(report.Classes))
	}
}

func TestEvaluateUnknownModelTypeExitsTwo(t *testing.T) {
	fx := newEvaluateFixture(t)

	var out, errOut bytes.Buffer
	ev := pipeline.NewEvaluator(newFakeRegistry(&scoreBehavior{}), nil, nil, pipeline.IO{Stdout: &out, Stderr: &errOut})

	req := fx.request()
	req.MType = "meso5"

	_, err := ev.Run(context.Background(), req)
	if err == nil {
		t.Fatal("expected an error for an unknown model type")
	}
	if code, ok := services.ExitCode(err); !ok || code != 2 {
		t.Fatalf("exit code = %d, %v, want 2", code, ok)
	}
	if got := err.Error(); got != `ERROR: "meso5" is not a valid model type` {
		t.Fatalf("error = %q", got)
	}
	if out.Len() != 0 {
		t.Fatalf("stdout written before validation: %q", out.String())
	}
	if _, statErr := os.Stat(fx.output); !os.IsNotExist(statErr) {
		t.Fatal("output file created despite failed validation")
	}
}

func TestEvaluateMissingModelTypeDirExitsOne(t *testing.T) {
	fx := newEvaluateFixture(t)
	// No meso4 subdirectory exists.

	var out, errOut bytes.Buffer
	ev := pipeline.NewEvaluator(newFakeRegistry(&scoreBehavior{}), nil, nil, pipeline.IO{Stdout: &out, Stderr: &errOut})

	_, err := ev.Run(context.Background(), fx.request())
	if err == nil {
		t.Fatal("expected an error for the missing model type directory")
	}
	if code, ok := services.ExitCode(err); !ok || code != 1 {
		t.Fatalf("exit code = %d, %v, want 1", code, ok)
	}
	wantMsg := fmt.Sprintf("ERROR: No directory found for model type %q in %q", "meso4", fx.modelsDir)
	if err.Error() != wantMsg {
		t.Fatalf("error = %q, want %q", err.Error(), wantMsg)
	}

	// The report opens before the directory check, so the header exists.
	wantCSV := "mtype,orig_class,trans_class," + strings.Join(report.Classes, ",") + "\n"
	if got := fx.readOutput(t); got != wantCSV {
		t.Fatalf("csv = %q, want header only", got)
	}
}

func TestEvaluateMissingClassDirIsFatal(t *testing.T) {
	fx := newEvaluateFixture(t)
	fx.addModel(t, "meso4", "df-to-f2f")
	if err := os.Remove(filepath.Join(fx.dataDir, "x2f")); err != nil {
		t.Fatalf("remove class dir: %v", err)
	}

	behavior := &scoreBehavior{}
	var out, errOut bytes.Buffer
	ev := pipeline.NewEvaluator(newFakeRegistry(behavior), nil, nil, pipeline.IO{Stdout: &out, Stderr: &errOut})

	stats, err := ev.Run(context.Background(), fx.request())
	if err == nil {
		t.Fatal("expected an error for the missing class directory")
	}
	if _, ok := services.ExitCode(err); ok {
		t.Fatalf("unexpected explicit exit code on %v", err)
	}
	if !strings.Contains(err.Error(), `class directory "x2f"`) {
		t.Fatalf("error = %v", err)
	}
	if stats.Total() != 0 {
		t.Fatalf("stats = %+v, want none", stats)
	}
	if len(behavior.loaded) != 0 {
		t.Fatal("models were loaded despite the failed environment check")
	}
}

func TestEvaluateSkipsModelsWithoutWeights(t *testing.T) {
	fx := newEvaluateFixture(t)
	fx.addModel(t, "meso4", "real-to-fs")
	weightless := filepath.Join(fx.modelsDir, "meso4", "df-to-f2f")
	if err := os.MkdirAll(weightless, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	var out, errOut bytes.Buffer
	ev := pipeline.NewEvaluator(newFakeRegistry(&scoreBehavior{}), nil, nil, pipeline.IO{Stdout: &out, Stderr: &errOut})

	stats, err := ev.Run(context.Background(), fx.request())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Processed != 1 || stats.Skipped != 1 {
		t.Fatalf("stats = %+v, want 1 processed 1 skipped", stats)
	}

	wantDiag := fmt.Sprintf("ERROR: File %q does not exist. Skipping.\n", filepath.Join(weightless, "best.hdf5"))
	if errOut.String() != wantDiag {
		t.Fatalf("stderr = %q, want %q", errOut.String(), wantDiag)
	}
	if got := fx.readOutput(t); strings.Contains(got, "df,f2f") {
		t.Fatalf("skipped model produced a row: %q", got)
	}
}

func TestEvaluateContinuesPastScoringFailure(t *testing.T) {
	fx := newEvaluateFixture(t)
	fx.addModel(t, "meso4", "df-to-f2f")
	fx.addModel(t, "meso4", "real-to-fs")

	behavior := &scoreBehavior{failFor: "df-to-f2f"}
	var out, errOut bytes.Buffer
	ev := pipeline.NewEvaluator(newFakeRegistry(behavior), nil, nil, pipeline.IO{Stdout: &out, Stderr: &errOut})

	stats, err := ev.Run(context.Background(), fx.request())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Processed != 1 || stats.Failed != 1 {
		t.Fatalf("stats = %+v, want 1 processed 1 failed", stats)
	}
	if !strings.Contains(errOut.String(), `ERROR: Failed to evaluate model "df-to-f2f"`) {
		t.Fatalf("stderr = %q", errOut.String())
	}

	got := fx.readOutput(t)
	if strings.Contains(got, "df,f2f") {
		t.Fatalf("failed model produced a row: %q", got)
	}
	if !strings.Contains(got, "meso4,real,fs,") {
		t.Fatalf("surviving model missing from report: %q", got)
	}
}

func TestEvaluateAppendsAcrossRuns(t *testing.T) {
	fx := newEvaluateFixture(t)
	fx.addModel(t, "meso4", "df-to-f2f")

	var out bytes.Buffer
	ev := pipeline.NewEvaluator(newFakeRegistry(&scoreBehavior{}), nil, nil, pipeline.IO{Stdout: &out, Stderr: &out})
	if _, err := ev.Run(context.Background(), fx.request()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// Second run sees a disjoint model set.
	if err := os.Rename(filepath.Join(fx.modelsDir, "meso4", "df-to-f2f"), filepath.Join(t.TempDir(), "df-to-f2f")); err != nil {
		t.Fatalf("move model: %v", err)
	}
	fx.addModel(t, "meso4", "real-to-fs")
	if _, err := ev.Run(context.Background(), fx.request()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	got := fx.readOutput(t)
	if count := strings.Count(got, "mtype,orig_class,trans_class"); count != 1 {
		t.Fatalf("header written %d times: %q", count, got)
	}
	wantRows := []string{
		"meso4,df,f2f," + recallCells,
		"meso4,real,fs," + recallCells,
	}
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 3 || lines[1] != wantRows[0] || lines[2] != wantRows[1] {
		t.Fatalf("csv = %q, want header plus %v", got, wantRows)
	}
}

func TestEvaluateRecordsRunLedger(t *testing.T) {
	fx := newEvaluateFixture(t)
	fx.addModel(t, "meso4", "df-to-f2f")
	weightless := filepath.Join(fx.modelsDir, "meso4", "icf-to-x2f")
	if err := os.MkdirAll(weightless, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(fx.modelsDir, "meso4", "weirdname"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	var out, errOut bytes.Buffer
	ev := pipeline.NewEvaluator(newFakeRegistry(&scoreBehavior{}), store, nil, pipeline.IO{Stdout: &out, Stderr: &errOut})

	stats, err := ev.Run(context.Background(), fx.request())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Processed != 1 || stats.Skipped != 2 {
		t.Fatalf("stats = %+v, want 1 processed 2 skipped", stats)
	}

	runs, err := store.RecentRuns(context.Background(), 5, false)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	run := runs[0]
	if run.Command != "evaluate" || run.Root != fx.modelsDir {
		t.Fatalf("run = %+v", run)
	}
	if run.Processed != 1 || run.Skipped != 2 || run.Failed != 0 {
		t.Fatalf("run counters = %+v", run)
	}

	items, err := store.ItemsForRun(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("ItemsForRun: %v", err)
	}
	want := []struct {
		item    string
		outcome runlog.Outcome
	}{
		{"weirdname", runlog.OutcomeSkipped},
		{"df-to-f2f", runlog.OutcomeProcessed},
		{"icf-to-x2f", runlog.OutcomeSkipped},
	}
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d: %+v", len(items), len(want), items)
	}
	for i, w := range want {
		got := items[i]
		if got.Phase != "transfer" || got.Item != w.item || got.Outcome != w.outcome {
			t.Fatalf("item %d = %+v, want %+v", i, got, w)
		}
	}
}

func TestEvaluateInterruptFinalizesLedger(t *testing.T) {
	fx := newEvaluateFixture(t)
	fx.addModel(t, "meso4", "df-to-f2f")

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	behavior := &scoreBehavior{cancel: cancel}
	var out, errOut bytes.Buffer
	ev := pipeline.NewEvaluator(newFakeRegistry(behavior), store, nil, pipeline.IO{Stdout: &out, Stderr: &errOut})

	stats, err := ev.Run(ctx, fx.request())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
	if stats.Total() != 0 {
		t.Fatalf("stats = %+v, want none", stats)
	}

	runs, err := store.RecentRuns(context.Background(), 5, false)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 || !runs[0].Interrupted {
		t.Fatalf("runs = %+v, want one interrupted run", runs)
	}
}
