package compile

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"qdc/adapters/osf"
	"qdc/internal/config"
	"qdc/internal/dataset"
	"qdc/internal/remap"
)

func TestColumns_ContractOrder(t *testing.T) {
	want := []string{
		"conference_proceedings",
		"paper_type",
		"acm_misclassified",
		"open_methodology",
		"open_data",
		"data_documentation",
		"open_materials",
		"materials_documentation",
		"readme",
		"permissible_software_license",
		"preregistration",
		"reproducible",
		"reference_degradation",
	}
	columns := Columns()
	got := make([]string, len(columns))
	for i, c := range columns {
		got[i] = c.Target
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("target columns mismatch (-want +got):\n%s", diff)
	}
}

func TestColumns_Sentinels(t *testing.T) {
	for _, c := range Columns() {
		if c.Kind == Passthrough {
			continue
		}
		want := remap.DefaultSentinel
		if c.Target == "reference_degradation" {
			want = 0
		}
		if c.Sentinel != want {
			t.Errorf("%s: sentinel = %d, want %d", c.Target, c.Sentinel, want)
		}
	}
}

func TestColumnRemap_Vocabularies(t *testing.T) {
	byTarget := make(map[string]Column)
	for _, c := range Columns() {
		byTarget[c.Target] = c
	}

	tests := []struct {
		target string
		value  string
		want   string
	}{
		{"paper_type", "Research Article", "1"},
		{"paper_type", "Short paper", "2"},
		{"paper_type", "Poster", "3"},
		{"acm_misclassified", "Yes", "1"},
		{"acm_misclassified", "No", "0"},
		{"open_methodology", "Public Access", "3"},
		{"open_methodology", "Open Access", "2"},
		{"open_methodology", "Available", "1"},
		{"open_methodology", "No", "0"},
		{"open_data", "Yes", "2"},
		{"open_data", "Data Available on Request", "1"},
		{"open_data", "No", "0"},
		{"data_documentation", "Yes", "2"},
		{"data_documentation", "Partial", "1"},
		{"open_materials", "Full", "3"},
		{"open_materials", "Partial", "2"},
		{"open_materials", "On Request", "1"},
		{"materials_documentation", "Full", "2"},
		{"materials_documentation", "Partial", "1"},
		{"readme", "Yes", "1"},
		{"permissible_software_license", "No", "0"},
		{"preregistration", "Yes", "1"},
		{"reproducible", "No", "0"},
		{"reference_degradation", "Open Methodology", "1"},
		{"reference_degradation", "Open Data,Preregistration", "10"},
		{"reference_degradation", "Open Methodology,Open Data,Open Materials,Preregistration", "15"},
	}
	for _, tt := range tests {
		c, ok := byTarget[tt.target]
		if !ok {
			t.Fatalf("no column %q in contract", tt.target)
		}
		got, err := c.Remap(dataset.Present(tt.value))
		if err != nil {
			t.Errorf("%s: Remap(%q): %v", tt.target, tt.value, err)
			continue
		}
		if got.Value != tt.want {
			t.Errorf("%s: Remap(%q) = %s, want %s", tt.target, tt.value, got.Value, tt.want)
		}
	}
}

func TestColumnRemap_MissingAndPassthrough(t *testing.T) {
	byTarget := make(map[string]Column)
	for _, c := range Columns() {
		byTarget[c.Target] = c
	}

	got, err := byTarget["paper_type"].Remap(dataset.Cell{})
	if err != nil {
		t.Fatalf("Remap(missing): %v", err)
	}
	if got.Value != "-1" {
		t.Errorf("missing paper_type = %s, want -1", got.Value)
	}

	got, err = byTarget["reference_degradation"].Remap(dataset.Cell{})
	if err != nil {
		t.Fatalf("Remap(missing): %v", err)
	}
	if got.Value != "0" {
		t.Errorf("missing reference_degradation = %s, want 0", got.Value)
	}

	// Passthrough copies verbatim, present or missing.
	cp := byTarget["conference_proceedings"]
	got, err = cp.Remap(dataset.Present("1"))
	if err != nil || got != dataset.Present("1") {
		t.Errorf("passthrough present = %+v, %v", got, err)
	}
	got, err = cp.Remap(dataset.Cell{})
	if err != nil || got.Present {
		t.Errorf("passthrough missing = %+v, %v", got, err)
	}
}

// rawSample is a minimal Qualtrics-shaped export: metadata on physical
// rows 1 and 3, header on row 2, three data rows.
const rawSample = `Q1,Q2,Q3,Q4,Q5,Q6,Q7,Q8,Q9,Q10,Q11,Q12,Q13,Q14
Paper DOI Link,Conference Proceedings,Type,Misclassified,Open Methodology,Open Data,Data Documentation,Open Materials,Materials Documentation,README,License,Preregistration,Reproducible,Reference Degradation
"{""ImportId"":""doi""}",meta,meta,meta,meta,meta,meta,meta,meta,meta,meta,meta,meta,meta
https://doi.org/10.1145/1,1,Research Article,Yes,Public Access,Yes,Yes,Full,Full,Yes,Yes,No,Yes,
https://doi.org/10.1145/2,1,Poster,No,No,No,No,No,No,No,No,No,No,"Open Data,Preregistration"
https://doi.org/10.1145/3,0,Short paper,No,Available,Data Available on Request,Partial,On Request,Partial,Yes,No,Yes,No,Open Methodology
`

func TestTransform_EndToEnd(t *testing.T) {
	raw, err := dataset.Read(strings.NewReader(rawSample), ReadOptions())
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}

	out, err := Transform(raw)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	var sb strings.Builder
	if err := out.Write(&sb); err != nil {
		t.Fatalf("write: %v", err)
	}

	want := strings.Join([]string{
		"doi,conference_proceedings,paper_type,acm_misclassified,open_methodology,open_data,data_documentation,open_materials,materials_documentation,readme,permissible_software_license,preregistration,reproducible,reference_degradation",
		"https://doi.org/10.1145/1,1,1,1,3,2,2,3,2,1,1,0,1,0",
		"https://doi.org/10.1145/2,1,3,0,0,0,0,0,0,0,0,0,0,10",
		"https://doi.org/10.1145/3,0,2,0,1,1,1,1,1,1,0,1,0,1",
		"",
	}, "\n")
	if diff := cmp.Diff(want, sb.String()); diff != "" {
		t.Errorf("compiled CSV mismatch (-want +got):\n%s", diff)
	}
}

func TestTransform_UnknownCategoryFailsWholeRun(t *testing.T) {
	raw := dataset.New(KeySource, []string{"Type"})
	raw.Append(dataset.Row{Key: "d1", Cells: map[string]dataset.Cell{
		"Type": dataset.Present("Research Article"),
	}})
	raw.Append(dataset.Row{Key: "d2", Cells: map[string]dataset.Cell{
		"Type": dataset.Present("Keynote"),
	}})

	_, err := Transform(raw)
	if err == nil {
		t.Fatal("expected error for unknown category")
	}
	var unknown *remap.UnknownCategoryError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected *remap.UnknownCategoryError in chain, got %v", err)
	}
	for _, frag := range []string{`"d2"`, `"Type"`, `"Keynote"`} {
		if !strings.Contains(err.Error(), frag) {
			t.Errorf("error %q missing context %s", err.Error(), frag)
		}
	}
}

func newTestRunner(t *testing.T, server *httptest.Server, dir string) *Runner {
	t.Helper()
	cfg := config.Default()
	cfg.OutputDir = filepath.Join(dir, "data")
	cfg.DatasetURL = server.URL + "/dataset"
	for i := range cfg.Docs {
		cfg.Docs[i].URL = server.URL + "/docs/" + cfg.Docs[i].Name
	}
	return &Runner{
		Config:         cfg,
		Client:         osf.New(osf.WithHTTPClient(server.Client())),
		RawInOutputDir: true,
		FetchDocs:      true,
	}
}

func TestRunner_Run(t *testing.T) {
	var datasetHits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/dataset":
			datasetHits++
			w.Write([]byte(rawSample))
		case strings.HasPrefix(r.URL.Path, "/docs/"):
			w.Write([]byte("doc body"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	dir := t.TempDir()
	runner := newTestRunner(t, server, dir)
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	compiled := runner.Config.CompiledDataPath()
	first, err := os.ReadFile(compiled)
	if err != nil {
		t.Fatalf("read compiled output: %v", err)
	}
	if !strings.HasPrefix(string(first), "doi,conference_proceedings,") {
		t.Errorf("unexpected compiled header: %q", strings.SplitN(string(first), "\n", 2)[0])
	}
	for _, doc := range runner.Config.Docs {
		if _, err := os.Stat(runner.Config.DocPath(doc)); err != nil {
			t.Errorf("doc %s not downloaded: %v", doc.Name, err)
		}
	}
	if datasetHits != 1 {
		t.Errorf("dataset fetched %d times, want 1", datasetHits)
	}

	// Second run short-circuits: no network, output untouched.
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if datasetHits != 1 {
		t.Errorf("dataset fetched %d times after rerun, want 1", datasetHits)
	}
	second, err := os.ReadFile(compiled)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Error("rerun modified the compiled output")
	}
}

func TestRunner_Run_Force(t *testing.T) {
	var datasetHits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		datasetHits++
		w.Write([]byte(rawSample))
	}))
	defer server.Close()

	dir := t.TempDir()
	runner := newTestRunner(t, server, dir)
	runner.FetchDocs = false

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	runner.Force = true
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("forced Run: %v", err)
	}
	if datasetHits != 2 {
		t.Errorf("dataset fetched %d times, want 2 (force re-downloads)", datasetHits)
	}
}

func TestRunner_Run_FetchFailureLeavesNoOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	dir := t.TempDir()
	runner := newTestRunner(t, server, dir)
	runner.FetchDocs = false

	err := runner.Run(context.Background())
	if err == nil {
		t.Fatal("expected error when fetch fails")
	}
	if !osf.IsNotFound(err) {
		t.Errorf("expected IsNotFound, got %v", err)
	}
	if _, statErr := os.Stat(runner.Config.CompiledDataPath()); !os.IsNotExist(statErr) {
		t.Error("no compiled output may exist after a failed run")
	}
}

func TestRunner_Run_UnknownCategoryLeavesNoOutput(t *testing.T) {
	bad := strings.Replace(rawSample, "Research Article", "Keynote", 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(bad))
	}))
	defer server.Close()

	dir := t.TempDir()
	runner := newTestRunner(t, server, dir)
	runner.FetchDocs = false

	err := runner.Run(context.Background())
	var unknown *remap.UnknownCategoryError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected *remap.UnknownCategoryError, got %v", err)
	}
	if _, statErr := os.Stat(runner.Config.CompiledDataPath()); !os.IsNotExist(statErr) {
		t.Error("no compiled output may exist after a failed transform")
	}
}

func TestRunner_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("body"))
	}))
	defer server.Close()

	dir := t.TempDir()
	runner := newTestRunner(t, server, dir)
	if err := runner.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if _, err := os.Stat(runner.Config.RawDataPath(true)); err != nil {
		t.Errorf("raw dataset not downloaded: %v", err)
	}
	if _, err := os.Stat(runner.Config.CompiledDataPath()); !os.IsNotExist(err) {
		t.Error("Fetch must not compile")
	}
}
