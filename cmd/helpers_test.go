package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func backupProcArgs(t *testing.T) (restore func()) {
	t.Helper()
	orig := make([]string, len(os.Args))
	copy(orig, os.Args)
	return func() {
		os.Args = orig
	}
}

// stdoutStream pipes stdout so it can be read line by line using the the returned channel.
// Read errors, other than io.EOF, are pushed to the streamErr channel. On errors, including
// io.EOF, both channels are closed. It is the caller's responsibility to call restoreStdout
// to bring os.Stdout back to its previous state before calling this function
func stdoutStream(t *testing.T) (stdoutLines <-chan []byte, streamErr <-chan error, restoreStdout func()) {
	t.Helper()

	originalStdout := os.Stdout
	pipeRd, pipeWr, err := os.Pipe()
	if err != nil {
		t.Fatalf("creating os pipe: %v", err)
	}
	os.Stdout = pipeWr
	restoreStdout = func() { os.Stdout = originalStdout }

	stdoutLinesChan := make(chan []byte)
	streamErrChan := make(chan error)

	go func() {
		defer close(streamErrChan)
		defer close(stdoutLinesChan)

		for logStream := bufio.NewReader(pipeRd); ; {
			next, cerr := logStream.ReadBytes('\n')
			if cerr == io.EOF {
				stdoutLinesChan <- next
				return
			}
			if cerr != nil {
				streamErrChan <- fmt.Errorf("error reading stdout stream's next line: %w", cerr)
				return
			}
			stdoutLinesChan <- next
		}
	}()

	return stdoutLinesChan, streamErrChan, restoreStdout
}

// expectLine waits for a line on stdout that contains all of the given substrings
func expectLine(t *testing.T, stdoutLines <-chan []byte, streamErr <-chan error, substrs ...string) {
	t.Helper()

	for deadline := time.After(1 * time.Second); ; {
		select {
		case <-deadline:
			t.Fatalf("timeout waiting for the expected line: %q", substrs)
		case err := <-streamErr:
			t.Fatalf("reading stdout stream: %v", err)
		case line := <-stdoutLines:
			if containsAll(string(line), substrs) {
				return // found
			}
		}
	}
}

func containsAll(s string, substrs []string) bool {
	for _, substr := range substrs {
		if !strings.Contains(s, substr) {
			return false
		}
	}
	return true
}

func temporaryFile(t *testing.T) (file *os.File, cleanup func()) {
	t.Helper()

	tmpFile, err := ioutil.TempFile("", t.Name()+"-")
	if err != nil {
		t.Fatal(err)
	}

	cleanup = func() {
		err := tmpFile.Close()
		if err != nil && !errors.Is(err, os.ErrClosed) {
			t.Logf("%s: error closing a temporary test file: %s", tmpFile.Name(), err)
		}
		err = os.Remove(tmpFile.Name())
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			t.Logf("%s: error removing temporary test file: %s", tmpFile.Name(), err)
		}
	}

	return tmpFile, cleanup
}

// fakeBus creates a temporary 1-Wire devices directory holding a w1_slave file per given
// sensor id, with the given content
func fakeBus(t *testing.T, devices map[string]string) (baseDir string, cleanup func()) {
	t.Helper()

	baseDir, err := ioutil.TempDir("", t.Name()+"-")
	if err != nil {
		t.Fatal(err)
	}
	cleanup = func() {
		if err := os.RemoveAll(baseDir); err != nil {
			t.Logf("%s: error removing temporary test directory: %s", baseDir, err)
		}
	}

	for id, content := range devices {
		dir := filepath.Join(baseDir, id)
		if err := os.Mkdir(dir, 0755); err != nil {
			t.Fatal(err)
		}
		if err := ioutil.WriteFile(filepath.Join(dir, "w1_slave"), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	return baseDir, cleanup
}

// slaveContent returns the content of a w1_slave file reporting the given temperature
func slaveContent(milliDegC string) string {
	return "72 01 4b 46 7f ff 0e 10 57 : crc=57 YES\n" +
		"72 01 4b 46 7f ff 0e 10 57 t=" + milliDegC + "\n"
}
