package manifest

import (
	"os"
	"testing"
)

func writeManifest(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("writeManifest failed: %v", err)
	}
}
