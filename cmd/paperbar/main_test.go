package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/ShayCichocki/paperbar/internal/config"
	"github.com/ShayCichocki/paperbar/internal/llm"
	"github.com/ShayCichocki/paperbar/internal/store"
	"github.com/ShayCichocki/paperbar/pkg/models"
)

const twoTasks = `[
  {"scheduled_date": "2025-03-05", "description": "Outline the experiments section", "estimated_hours": 2},
  {"scheduled_date": "2025-03-06", "description": "Run baseline experiments on CIFAR", "estimated_hours": 3.5}
]`

type stubGenerator struct {
	response string
	calls    int
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls++
	return g.response, nil
}

// env is an isolated paperbar installation.
type env struct {
	t       *testing.T
	dataDir string
	gen     *stubGenerator
}

func newEnv(t *testing.T) *env {
	t.Helper()
	root := t.TempDir()

	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	for _, name := range []string{"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "PAPERBAR_DATA_DIR", "PAPERBAR_STORAGE_BACKEND"} {
		t.Setenv(name, "")
	}
	work := filepath.Join(root, "work")
	if err := os.MkdirAll(work, 0755); err != nil {
		t.Fatalf("create work dir: %v", err)
	}
	t.Chdir(work)

	e := &env{t: t, dataDir: filepath.Join(root, "store"), gen: &stubGenerator{response: twoTasks}}

	prevClock, prevGen := clock, newGenerator
	clock = func() models.Date { return models.MustParseDate("2025-03-05") }
	newGenerator = func(*config.Config, *zap.Logger) (llm.Generator, error) { return e.gen, nil }
	t.Cleanup(func() { clock, newGenerator = prevClock, prevGen })

	return e
}

// resetFlags restores every flag to its default so runs do not leak into
// each other through the package-level flag variables.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// run executes paperbar with args against the env's data directory.
func (e *env) run(args ...string) (stdout, stderr string, code int) {
	e.t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	full := append([]string{"--data-dir", e.dataDir}, args...)
	code = execute(full, &out, &errOut)
	return out.String(), errOut.String(), code
}

// mustRun executes args and fails the test on a non-zero exit.
func (e *env) mustRun(args ...string) string {
	e.t.Helper()
	out, errOut, code := e.run(args...)
	if code != 0 {
		e.t.Fatalf("paperbar %s: exit %d\nstdout: %s\nstderr: %s", strings.Join(args, " "), code, out, errOut)
	}
	return out
}

func (e *env) openStore() store.Store {
	e.t.Helper()
	s, err := store.Open(store.BackendJSON, e.dataDir)
	if err != nil {
		e.t.Fatalf("open store: %v", err)
	}
	e.t.Cleanup(func() { s.Close() })
	return s
}

func assertContains(t *testing.T, got string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	want := []string{"add", "list", "today", "decompose", "task", "milestone", "paper", "export", "config", "version"}
	have := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestVersion(t *testing.T) {
	e := newEnv(t)
	assertContains(t, e.mustRun("version"), "paperbar version ")
}

func TestAddPaper(t *testing.T) {
	e := newEnv(t)

	out := e.mustRun("add", "paper", "Sparse Attention", "-d", "2025-04-01", "-c", "NeurIPS")
	assertContains(t, out, `✓ Created paper "Sparse Attention"`, "Deadline:", "2025-04-01", "Conference: NeurIPS")

	out = e.mustRun("list", "papers")
	assertContains(t, out, "Sparse Attention", "NeurIPS", "27")
}

func TestAddPaper_MissingDeadline(t *testing.T) {
	e := newEnv(t)

	_, errOut, code := e.run("add", "paper", "Sparse")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	assertContains(t, errOut, "✗", "deadline")
}

func TestAddPaper_Errors(t *testing.T) {
	e := newEnv(t)
	e.mustRun("add", "paper", "Sparse", "-d", "2025-04-01")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"duplicate", []string{"add", "paper", "sparse", "-d", "2025-04-02"}, "already exists"},
		{"bad date", []string{"add", "paper", "Other", "-d", "someday"}, "could not parse date"},
		{"milestone unknown paper", []string{"add", "milestone", "Nope", "Draft", "-d", "3/10"}, `paper "Nope" not found`},
		{"milestone priority", []string{"add", "milestone", "Sparse", "Draft", "-d", "3/10", "-p", "9"}, "priority 9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errOut, code := e.run(tt.args...)
			if code != 1 {
				t.Fatalf("exit code = %d, want 1", code)
			}
			assertContains(t, errOut, "✗ ", tt.want)
		})
	}
}

func TestAddMilestone_AfterDeadlineWarns(t *testing.T) {
	e := newEnv(t)
	e.mustRun("add", "paper", "Sparse", "-d", "2025-03-20")

	out := e.mustRun("add", "milestone", "Sparse", "Camera ready", "--due", "2025-03-25", "--priority", "2")
	assertContains(t, out, `✓ Created milestone for "Sparse"`, "Priority: 2", "! Milestone is due after the paper deadline")

	out = e.mustRun("list", "milestones", "sparse")
	assertContains(t, out, "Camera ready", "pending", "no")
}

func TestListPapers_Empty(t *testing.T) {
	e := newEnv(t)
	assertContains(t, e.mustRun("list", "papers"), "ℹ No papers found")
}

func TestToday_NoTasks(t *testing.T) {
	e := newEnv(t)
	assertContains(t, e.mustRun("today"), "No tasks scheduled for today")
	assertContains(t, e.mustRun("today", "--all"), "No pending tasks")
}

func TestDefaultCommandIsToday(t *testing.T) {
	e := newEnv(t)
	assertContains(t, e.mustRun(), "No tasks scheduled for today")
}

func TestDecompose_PaperNotFound(t *testing.T) {
	e := newEnv(t)

	_, errOut, code := e.run("decompose", "Nonexistent")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	assertContains(t, errOut, `✗ paper "Nonexistent" not found`)
	if e.gen.calls != 0 {
		t.Errorf("generator called %d times", e.gen.calls)
	}
}

func TestDecompose_NoMilestones(t *testing.T) {
	e := newEnv(t)
	e.mustRun("add", "paper", "Sparse", "-d", "2025-04-01")

	assertContains(t, e.mustRun("decompose", "Sparse"), "No tasks generated")
}

func TestDecompose_NothingToDoNeedsNoAPIKey(t *testing.T) {
	e := newEnv(t)
	newGenerator = llm.New
	e.mustRun("add", "paper", "Sparse", "-d", "2025-04-01")

	out, errOut, code := e.run("decompose", "Sparse")
	if code != 0 {
		t.Fatalf("exit code = %d, want 0\nstderr: %s", code, errOut)
	}
	assertContains(t, out, "No tasks generated")
}

func TestDecompose_Workflow(t *testing.T) {
	e := newEnv(t)
	e.mustRun("add", "paper", "Sparse", "-d", "2025-04-01")
	e.mustRun("add", "milestone", "Sparse", "Finish experiments", "-d", "3/10", "-p", "3")

	out := e.mustRun("decompose", "Sparse", "--dry-run")
	assertContains(t, out, "Dry run - tasks would be created:", "Today", "Tomorrow",
		"  - Outline the experiments section (2h)", "(3.5h)")
	s := e.openStore()
	if tasks, _ := s.ListTasks(store.TaskFilter{}); len(tasks) != 0 {
		t.Fatalf("dry run stored %d tasks", len(tasks))
	}

	out = e.mustRun("decompose", "Sparse")
	assertContains(t, out, "✓ Generated 2 tasks")

	tasks, err := s.ListTasks(store.TaskFilter{})
	if err != nil || len(tasks) != 2 {
		t.Fatalf("stored tasks = %d, %v; want 2", len(tasks), err)
	}

	// A second run finds nothing left to decompose.
	assertContains(t, e.mustRun("decompose", "Sparse"), "No tasks generated")

	out = e.mustRun("today")
	assertContains(t, out, "Today's Tasks (Wed, Mar 05)", "Outline the experiments section", "2h", "pending")
	if strings.Contains(out, "Run baseline") {
		t.Errorf("today shows tomorrow's task:\n%s", out)
	}

	out = e.mustRun("task", "done", models.ShortID(tasks[0].ID))
	assertContains(t, out, "is now completed", "Outline the experiments section")

	out = e.mustRun("today", "--all")
	assertContains(t, out, "All Pending Tasks", "Run baseline experiments on CIFAR")
	if strings.Contains(out, "Outline the experiments") {
		t.Errorf("completed task listed as pending:\n%s", out)
	}

	out = e.mustRun("decompose", "Sparse", "--force")
	assertContains(t, out, "✓ Generated 2 tasks")
	if tasks, _ := s.ListTasks(store.TaskFilter{}); len(tasks) != 2 {
		t.Errorf("after force: %d tasks, want 2 (replaced)", len(tasks))
	}
}

func TestDecompose_SingleMilestone(t *testing.T) {
	e := newEnv(t)
	e.mustRun("add", "paper", "Sparse", "-d", "2025-04-01")
	e.mustRun("add", "milestone", "Sparse", "First", "-d", "3/10")
	e.mustRun("add", "milestone", "Sparse", "Second", "-d", "3/12")

	s := e.openStore()
	ms, err := s.ListMilestones(store.MilestoneFilter{})
	if err != nil || len(ms) != 2 {
		t.Fatalf("milestones = %d, %v", len(ms), err)
	}

	e.mustRun("decompose", "Sparse", "-m", models.ShortID(ms[1].ID))
	if e.gen.calls != 1 {
		t.Errorf("generator calls = %d, want 1", e.gen.calls)
	}
	got, _ := s.GetMilestone(ms[0].ID)
	if got.Decomposed {
		t.Error("untargeted milestone marked decomposed")
	}
}

func TestDecompose_Overdue(t *testing.T) {
	e := newEnv(t)
	e.mustRun("add", "paper", "Sparse", "-d", "2025-04-01")
	e.mustRun("add", "milestone", "Sparse", "Lit review", "-d", "2025-03-06")
	e.gen.response = `[{"scheduled_date": "2025-03-03", "description": "Read the five closest papers", "estimated_hours": 2}]`
	e.mustRun("decompose", "Sparse")

	out := e.mustRun("today")
	assertContains(t, out, "! You have 1 overdue task(s)!", "Overdue Tasks", "Read the five closest papers")
}

func TestDecompose_MissingAPIKey(t *testing.T) {
	e := newEnv(t)
	newGenerator = llm.New
	e.mustRun("add", "paper", "Sparse", "-d", "2025-04-01")
	e.mustRun("add", "milestone", "Sparse", "Draft", "-d", "3/10")

	_, errOut, code := e.run("decompose", "Sparse")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	assertContains(t, errOut, "✗", "text generation failed", "ANTHROPIC_API_KEY")

	s := e.openStore()
	tasks, err := s.ListTasks(store.TaskFilter{})
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("stored %d tasks after a credential failure, want 0", len(tasks))
	}
}

func TestDecompose_BadResponse(t *testing.T) {
	e := newEnv(t)
	e.gen.response = "I cannot help with that."
	e.mustRun("add", "paper", "Sparse", "-d", "2025-04-01")
	e.mustRun("add", "milestone", "Sparse", "Draft", "-d", "3/10")

	_, errOut, code := e.run("decompose", "Sparse")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	assertContains(t, errOut, "✗", "parse")
}

func TestMilestoneAndPaperStatus(t *testing.T) {
	e := newEnv(t)
	e.mustRun("add", "paper", "Sparse", "-d", "2025-04-01")
	e.mustRun("add", "paper", "Dense", "-d", "2025-05-01")
	e.mustRun("add", "milestone", "Sparse", "Draft", "-d", "3/10")

	ms, _ := e.openStore().ListMilestones(store.MilestoneFilter{})
	ref := models.ShortID(ms[0].ID)

	assertContains(t, e.mustRun("milestone", "start", ref), "is now in_progress")
	assertContains(t, e.mustRun("milestone", "done", ref), "is now completed")
	assertContains(t, e.mustRun("list", "milestones"), "No milestones found")
	assertContains(t, e.mustRun("list", "milestones", "--all"), "Draft", "completed")

	assertContains(t, e.mustRun("paper", "archive", "dense"), `Archived paper "Dense"`)
	if out := e.mustRun("list", "papers"); strings.Contains(out, "Dense") {
		t.Errorf("archived paper listed:\n%s", out)
	}
	assertContains(t, e.mustRun("list", "papers", "--all"), "Dense (archived)")
	assertContains(t, e.mustRun("paper", "unarchive", "Dense"), `Restored paper "Dense"`)

	_, errOut, code := e.run("task", "done", "zzzz")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	assertContains(t, errOut, "task not found")
}

func TestExport(t *testing.T) {
	e := newEnv(t)
	e.mustRun("add", "paper", "Sparse", "-d", "2025-04-01", "-c", "ICML")
	e.mustRun("add", "milestone", "Sparse", "Experiments", "-d", "3/10")
	e.mustRun("decompose", "Sparse")

	out := e.mustRun("export", "Sparse")
	assertContains(t, out, "paper:", "name: Sparse", "conference: ICML", "milestones:", "Run baseline experiments on CIFAR")

	path := filepath.Join(t.TempDir(), "plan.yaml")
	out = e.mustRun("export", "Sparse", "-o", path)
	assertContains(t, out, "Exported plan", "5.5h")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	assertContains(t, string(data), "Outline the experiments section")
}

func TestConfigCommand(t *testing.T) {
	e := newEnv(t)

	assertContains(t, e.mustRun("config", "defaults.task_hours", "3"), "✓ Set defaults.task_hours = 3")
	if got := strings.TrimSpace(e.mustRun("config", "defaults.task_hours")); got != "3" {
		t.Errorf("config defaults.task_hours = %q, want 3", got)
	}

	_, errOut, _ := e.run("config", "anthropic.api_key", "sk-ant-REDACTED")
	if strings.Contains(errOut, "invalid API key format") {
		t.Errorf("well-formed key warned about: %s", errOut)
	}
	if got := strings.TrimSpace(e.mustRun("config", "anthropic.api_key")); got != "sk-ant-...mnop" {
		t.Errorf("secret shown as %q, want masked", got)
	}

	out := e.mustRun("config")
	assertContains(t, out, "llm.provider: anthropic", "storage.backend: json", "anthropic key source: config_file")

	_, errOut, code := e.run("config", "openai.api_key", "not-a-key")
	if code != 0 {
		t.Fatalf("exit code = %d, want 0 for a malformed key", code)
	}
	assertContains(t, errOut, "!", "invalid API key format")

	_, errOut, code = e.run("config", "no.such.key")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	assertContains(t, errOut, "unknown config key")
}

func TestSQLiteBackend(t *testing.T) {
	e := newEnv(t)
	t.Setenv("PAPERBAR_STORAGE_BACKEND", "sqlite")

	e.mustRun("add", "paper", "Sparse", "-d", "2025-04-01")
	e.mustRun("add", "milestone", "Sparse", "Experiments", "-d", "3/10")
	e.mustRun("decompose", "Sparse")
	assertContains(t, e.mustRun("today"), "Outline the experiments section")

	if _, err := os.Stat(filepath.Join(e.dataDir, "paperbar.db")); err != nil {
		t.Errorf("sqlite database not created: %v", err)
	}
}
