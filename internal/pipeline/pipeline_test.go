package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"rdrupload/internal/credential"
	rdrerrors "rdrupload/internal/errors"
	"rdrupload/internal/logging"
	"rdrupload/internal/metadata"
	"rdrupload/internal/models"
	"rdrupload/internal/rdr"
)

const (
	header    = "Title,Authors,Categories,Item type,Keywords,Description,License,Data Sensitivity,RDR Project ID,Research Project ID,Resource DOI,References,Q/A Log\n"
	rowOne    = "Soil cores,Ann Lee;Bo Chen,1;2,dataset,soil;cores,Core samples,CC BY 4.0,Public,100,42,,https://a.example,checked\n"
	rowTwo    = "Reef survey,Cy Dunn,3,dataset,reef,Transects,CC0,Sensitive,200,43,10.1/abc,,\n"
	rowThree  = "Leaf litter,Di Evans,4,dataset,leaf,Litter traps,CC0,Public,300,44,,,\n"
	testToken = "tok-7f3a9c"
)

type call struct {
	ProjectID string
	Article   metadata.Article
}

// fakeSubmitter records calls and answers from a per-call script.
type fakeSubmitter struct {
	mu      sync.Mutex
	calls   []call
	respond func(n int, projectID string) (*rdr.Response, error)
}

func (f *fakeSubmitter) Submit(ctx context.Context, article metadata.Article, projectID string) (*rdr.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{ProjectID: projectID, Article: article})
	n := len(f.calls)
	f.mu.Unlock()

	if f.respond != nil {
		return f.respond(n, projectID)
	}
	return &rdr.Response{StatusCode: http.StatusCreated, Body: json.RawMessage(fmt.Sprintf(`{"entity_id": %d}`, n))}, nil
}

type fakeRecorder struct {
	receipts []models.Receipt
}

func (f *fakeRecorder) Record(ctx context.Context, r models.Receipt) error {
	f.receipts = append(f.receipts, r)
	return nil
}

func restoreDefaultLogger(t *testing.T) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func writeCSV(t *testing.T, rows ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.csv")
	content := header + strings.Join(rows, "")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

type harness struct {
	pipe      *Pipeline
	out       *bytes.Buffer
	logs      *bytes.Buffer
	submitter *fakeSubmitter
	recorder  *fakeRecorder
	tokenAsks int
}

func newHarness(t *testing.T, submitter *fakeSubmitter) *harness {
	t.Helper()
	h := &harness{
		out:       &bytes.Buffer{},
		logs:      &bytes.Buffer{},
		submitter: submitter,
		recorder:  &fakeRecorder{},
	}

	tok, err := credential.NewToken(testToken)
	if err != nil {
		t.Fatalf("NewToken() error = %v", err)
	}

	restoreDefaultLogger(t)
	logger := logging.Setup("debug", "text", h.logs)

	h.pipe = New(Config{
		Credentials: credential.SourceFunc(func(context.Context) (credential.Token, error) {
			h.tokenAsks++
			return tok, nil
		}),
		NewClient: func(credential.Token) Submitter { return submitter },
		Recorder:  h.recorder,
		Out:       h.out,
		Logger:    logger,
		RunID:     "run-test",
	})
	return h
}

func TestPipeline_TwoRowsTwoProjects(t *testing.T) {
	h := newHarness(t, &fakeSubmitter{})

	if err := h.pipe.Run(context.Background(), writeCSV(t, rowOne, rowTwo)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(h.submitter.calls) != 2 {
		t.Fatalf("got %d submits, want 2", len(h.submitter.calls))
	}
	if h.submitter.calls[0].ProjectID != "100" || h.submitter.calls[1].ProjectID != "200" {
		t.Errorf("project order = [%s %s], want [100 200]",
			h.submitter.calls[0].ProjectID, h.submitter.calls[1].ProjectID)
	}
	if h.submitter.calls[0].Article.Title != "Soil cores" || h.submitter.calls[1].Article.Title != "Reef survey" {
		t.Errorf("payloads not matched to their rows: %+v", h.submitter.calls)
	}
	if h.submitter.calls[0].Article.CustomFields.ResearchProjectID != "42" {
		t.Errorf("Research Project ID = %q, want 42", h.submitter.calls[0].Article.CustomFields.ResearchProjectID)
	}
	if h.tokenAsks != 1 {
		t.Errorf("token requested %d times, want 1", h.tokenAsks)
	}

	want := "{\"entity_id\":1}\n{\"entity_id\":2}\n\nComplete!\n"
	if got := h.out.String(); got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}

	summary := h.pipe.Summary()
	if summary.TotalRecords != 2 || summary.Created != 2 || summary.Attempted() != 2 {
		t.Errorf("summary = %+v", summary)
	}
	if len(h.recorder.receipts) != 2 || h.recorder.receipts[1].ProjectID != "200" {
		t.Errorf("receipts = %+v", h.recorder.receipts)
	}
}

func TestPipeline_TransportFailureStopsRun(t *testing.T) {
	netErr := errors.New("connection reset by peer")
	submitter := &fakeSubmitter{
		respond: func(n int, projectID string) (*rdr.Response, error) {
			if n == 2 {
				return nil, fmt.Errorf("%w: %w", rdrerrors.ErrTransport, netErr)
			}
			return &rdr.Response{StatusCode: http.StatusCreated, Body: json.RawMessage(`{"entity_id":1}`)}, nil
		},
	}
	h := newHarness(t, submitter)

	err := h.pipe.Run(context.Background(), writeCSV(t, rowOne, rowTwo, rowThree))

	var upErr *rdrerrors.UploadError
	if !errors.As(err, &upErr) {
		t.Fatalf("Run() error = %v, want *UploadError", err)
	}
	if upErr.Row != 2 || upErr.ProjectID != "200" || upErr.Uploaded != 1 {
		t.Errorf("UploadError = %+v, want row 2, project 200, 1 uploaded", upErr)
	}
	if !errors.Is(err, netErr) {
		t.Errorf("error %v does not wrap the transport cause", err)
	}

	if len(submitter.calls) != 2 {
		t.Errorf("got %d submits, want 2 (no attempt after the failing row)", len(submitter.calls))
	}
	if got, want := h.out.String(), "{\"entity_id\":1}\n"; got != want {
		t.Errorf("stdout = %q, want only the first response %q", got, want)
	}
	if strings.Contains(h.out.String(), CompleteMarker) {
		t.Error("completion marker printed after a failed run")
	}

	if len(h.recorder.receipts) != 2 || h.recorder.receipts[1].Outcome != models.OutcomeFailed {
		t.Errorf("receipts = %+v, want second marked failed", h.recorder.receipts)
	}
}

func TestPipeline_RejectedRowDoesNotStopRun(t *testing.T) {
	submitter := &fakeSubmitter{
		respond: func(n int, projectID string) (*rdr.Response, error) {
			if projectID == "200" {
				return &rdr.Response{StatusCode: http.StatusForbidden, Body: json.RawMessage(`{"message":"Forbidden"}`)}, nil
			}
			return &rdr.Response{StatusCode: http.StatusCreated, Body: json.RawMessage(`{"entity_id":9}`)}, nil
		},
	}
	h := newHarness(t, submitter)

	if err := h.pipe.Run(context.Background(), writeCSV(t, rowOne, rowTwo, rowThree)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := "{\"entity_id\":9}\n{\"message\":\"Forbidden\"}\n{\"entity_id\":9}\n\nComplete!\n"
	if got := h.out.String(); got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}

	summary := h.pipe.Summary()
	if summary.Created != 2 || summary.Rejected != 1 {
		t.Errorf("summary = %+v, want 2 created 1 rejected", summary)
	}
	if !strings.Contains(h.logs.String(), "row rejected by repository") {
		t.Errorf("logs = %q, want rejection warning", h.logs.String())
	}
}

func TestPipeline_ValidationFailureSendsNothing(t *testing.T) {
	missingTitle := ",Cy Dunn,3,dataset,reef,Transects,CC0,Sensitive,200,43,,,\n"
	badCategory := "Reef survey,Cy Dunn,3;x,dataset,reef,Transects,CC0,Sensitive,200,43,,,\n"

	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, err error)
	}{
		{
			name:    "missing column",
			content: "Title,Authors\nA,B\n",
			check: func(t *testing.T, err error) {
				if !errors.Is(err, rdrerrors.ErrMissingColumns) {
					t.Errorf("error = %v, want ErrMissingColumns", err)
				}
			},
		},
		{
			name:    "missing value on row 2",
			content: header + rowOne + missingTitle + rowThree,
			check: func(t *testing.T, err error) {
				if err == nil || err.Error() != "Title is missing on row 2" {
					t.Errorf("error = %v, want %q", err, "Title is missing on row 2")
				}
			},
		},
		{
			name:    "bad category on row 2",
			content: header + rowOne + badCategory,
			check: func(t *testing.T, err error) {
				var fieldErr *rdrerrors.FieldError
				if !errors.As(err, &fieldErr) || fieldErr.Row != 2 {
					t.Errorf("error = %v, want FieldError on row 2", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, &fakeSubmitter{})
			path := filepath.Join(t.TempDir(), "records.csv")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to create test file: %v", err)
			}

			err := h.pipe.Run(context.Background(), path)
			tt.check(t, err)

			if len(h.submitter.calls) != 0 {
				t.Errorf("got %d submits, want 0", len(h.submitter.calls))
			}
			if h.tokenAsks != 0 {
				t.Errorf("token requested %d times before validation passed", h.tokenAsks)
			}
			if h.out.Len() != 0 {
				t.Errorf("stdout = %q, want nothing", h.out.String())
			}
		})
	}
}

func TestPipeline_UnsupportedExtension(t *testing.T) {
	h := newHarness(t, &fakeSubmitter{})

	err := h.pipe.Run(context.Background(), filepath.Join(t.TempDir(), "records.xlsx"))
	if !errors.Is(err, rdrerrors.ErrUnsupportedExtension) {
		t.Errorf("Run() error = %v, want ErrUnsupportedExtension", err)
	}
}

func TestPipeline_TokenError(t *testing.T) {
	h := newHarness(t, &fakeSubmitter{})
	h.pipe.config.Credentials = credential.SourceFunc(func(context.Context) (credential.Token, error) {
		return credential.Token{}, credential.ErrEmptyToken
	})

	err := h.pipe.Run(context.Background(), writeCSV(t, rowOne))
	if !errors.Is(err, credential.ErrEmptyToken) {
		t.Errorf("Run() error = %v, want ErrEmptyToken", err)
	}
	if len(h.submitter.calls) != 0 {
		t.Errorf("got %d submits without a token", len(h.submitter.calls))
	}
}

func TestPipeline_EndToEndOverHTTP(t *testing.T) {
	var mu sync.Mutex
	var paths, auths, bodies []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		paths = append(paths, r.URL.Path)
		auths = append(auths, r.Header.Get("Authorization"))
		bodies = append(bodies, string(b))
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, "{\"location\": \"%s\"}\n", r.URL.Path)
	}))
	defer server.Close()

	restoreDefaultLogger(t)
	var out, logs bytes.Buffer
	tok, _ := credential.NewToken(testToken)
	pipe := New(Config{
		Credentials: credential.Static(tok),
		NewClient: func(t credential.Token) Submitter {
			return rdr.NewClient(server.URL+"/v2", t, server.Client())
		},
		Out:    &out,
		Logger: logging.Setup("debug", "json", &logs),
	})

	if err := pipe.Run(context.Background(), writeCSV(t, rowOne, rowTwo)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantPaths := []string{"/v2/account/projects/100/articles", "/v2/account/projects/200/articles"}
	if len(paths) != 2 || paths[0] != wantPaths[0] || paths[1] != wantPaths[1] {
		t.Errorf("paths = %v, want %v", paths, wantPaths)
	}
	for i, a := range auths {
		if a != "token "+testToken {
			t.Errorf("request %d Authorization = %q", i, a)
		}
	}

	var first map[string]any
	if err := json.Unmarshal([]byte(bodies[0]), &first); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	if first["resource_doi"] != "" {
		t.Errorf("resource_doi = %#v, want empty string", first["resource_doi"])
	}
	if cats, ok := first["categories"].([]any); !ok || len(cats) != 2 || cats[0] != float64(1) {
		t.Errorf("categories = %#v, want [1 2]", first["categories"])
	}

	for name, stream := range map[string]string{
		"stdout": out.String(),
		"logs":   logs.String(),
		"bodies": strings.Join(bodies, "\n"),
	} {
		if strings.Contains(stream, testToken) {
			t.Errorf("%s contains the API token", name)
		}
	}

	if !strings.HasSuffix(out.String(), "\n\nComplete!\n") {
		t.Errorf("stdout = %q, want completion marker", out.String())
	}
	if pipe.RunID() == "" {
		t.Error("RunID() is empty, want generated id")
	}
}

func TestUploadRow(t *testing.T) {
	row := Row{Index: 3, ProjectID: "300", Article: metadata.Article{Title: "Leaf litter"}}

	t.Run("created", func(t *testing.T) {
		res, err := UploadRow(context.Background(), &fakeSubmitter{}, row)
		if err != nil {
			t.Fatalf("UploadRow() error = %v", err)
		}
		if res.Outcome != models.OutcomeCreated || res.Row.Index != 3 {
			t.Errorf("result = %+v", res)
		}

		receipt := res.Receipt("run-1")
		if receipt.Row != 3 || receipt.ProjectID != "300" || receipt.Title != "Leaf litter" || receipt.StatusCode != http.StatusCreated {
			t.Errorf("receipt = %+v", receipt)
		}
	})

	t.Run("transport error", func(t *testing.T) {
		s := &fakeSubmitter{respond: func(int, string) (*rdr.Response, error) {
			return nil, rdrerrors.ErrTransport
		}}
		res, err := UploadRow(context.Background(), s, row)
		if !errors.Is(err, rdrerrors.ErrTransport) {
			t.Fatalf("UploadRow() error = %v, want ErrTransport", err)
		}
		if res.Outcome != models.OutcomeFailed {
			t.Errorf("Outcome = %s, want failed", res.Outcome)
		}
	})
}
