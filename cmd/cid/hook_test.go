package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEvaluateHookUnparseableEvent(t *testing.T) {
	d := evaluateHook(strings.NewReader("{broken"))
	if !d.Allow {
		t.Errorf("unparseable event must allow: %+v", d)
	}
}

func TestEvaluateHookMissingFilePath(t *testing.T) {
	d := evaluateHook(strings.NewReader(`{"sessionId":"s1"}`))
	if !d.Allow {
		t.Errorf("event without filePath must allow: %+v", d)
	}
}

func TestEvaluateHookNonSourceFile(t *testing.T) {
	project := t.TempDir()
	event := fmt.Sprintf(`{"filePath":%q,"projectDir":%q}`,
		filepath.Join(project, "README.md"), project)

	d := evaluateHook(strings.NewReader(event))
	if !d.Allow {
		t.Errorf("non-source read must pass through: %+v", d)
	}
}

func TestEvaluateHookSmallSourceFile(t *testing.T) {
	project := t.TempDir()
	path := filepath.Join(project, "tiny.py")
	if err := os.WriteFile(path, []byte("x = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	event := fmt.Sprintf(`{"filePath":%q,"projectDir":%q}`, path, project)

	d := evaluateHook(strings.NewReader(event))
	if !d.Allow {
		t.Errorf("small file must pass through: %+v", d)
	}
}
