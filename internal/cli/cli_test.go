package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/meetflow/internal/version"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf(`server:
  addr: "127.0.0.1:0"
  upload_dir: %q
database:
  path: %q
logging:
  level: error
`, filepath.Join(dir, "uploads"), filepath.Join(dir, "meetflow.db"))
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, deps *Dependencies, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { deps.Close() })

	var out bytes.Buffer
	cmd := NewRootCmd(deps)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, &Dependencies{}, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if strings.TrimSpace(out) != version.Full() {
		t.Errorf("version output = %q, want %q", out, version.Full())
	}
}

func TestRootRegistersCommands(t *testing.T) {
	root := NewRootCmd(&Dependencies{})
	for _, name := range []string{"serve", "ingest", "list", "status", "dispatch", "retry", "export", "speakers", "doctor", "version"} {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestListEmpty(t *testing.T) {
	out, err := execute(t, &Dependencies{}, "--config", writeConfig(t), "list")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if !strings.Contains(out, "No meetings yet") {
		t.Errorf("list output = %q", out)
	}
}

func TestSpeakersListEmpty(t *testing.T) {
	out, err := execute(t, &Dependencies{}, "--config", writeConfig(t), "speakers", "list")
	if err != nil {
		t.Fatalf("speakers list error = %v", err)
	}
	if !strings.Contains(out, "No speakers yet") {
		t.Errorf("speakers list output = %q", out)
	}
}

func TestStatusUnknownMeeting(t *testing.T) {
	_, err := execute(t, &Dependencies{}, "--config", writeConfig(t), "status", "missing")
	if err == nil {
		t.Fatal("status of unknown meeting should fail")
	}
}

func TestRetryRequiresArgument(t *testing.T) {
	if _, err := execute(t, &Dependencies{}, "retry"); err == nil {
		t.Fatal("retry without an id should fail")
	}
}
