package w1

import (
	"errors"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

var _ rdOnlyFile = (*fakeFile)(nil)

// fakeFile serves the next entry of onContents on every seek to the start of the file
type fakeFile struct {
	onContents  []string
	onSeekErrs  []error
	onReadErrs  []error
	onCloseErrs []error
	numSeeks    int
	reader      io.Reader
	mutex       sync.Mutex
}

func (ff *fakeFile) Close() error {
	ff.mutex.Lock()
	defer ff.mutex.Unlock()

	if len(ff.onCloseErrs) == 0 {
		return nil
	}
	err := ff.onCloseErrs[0]
	ff.onCloseErrs = ff.onCloseErrs[1:]
	return err
}

func (ff *fakeFile) Seek(_ int64, _ int) (_ int64, err error) {
	ff.mutex.Lock()
	defer ff.mutex.Unlock()

	ff.numSeeks++
	if len(ff.onSeekErrs) > 0 {
		err = ff.onSeekErrs[0]
		ff.onSeekErrs = ff.onSeekErrs[1:]
		return
	}
	content := ""
	if len(ff.onContents) > 0 {
		content = ff.onContents[0]
		ff.onContents = ff.onContents[1:]
	}
	ff.reader = strings.NewReader(content)
	return
}

func (ff *fakeFile) Read(b []byte) (int, error) {
	ff.mutex.Lock()
	defer ff.mutex.Unlock()

	if len(ff.onReadErrs) > 0 {
		err := ff.onReadErrs[0]
		ff.onReadErrs = ff.onReadErrs[1:]
		return 0, err
	}
	if ff.reader == nil {
		return 0, io.EOF
	}
	return ff.reader.Read(b)
}

// slaveContent returns the content of a w1_slave file reporting the given temperature
func slaveContent(crcOK bool, milliDegC string) string {
	crc := "NO"
	if crcOK {
		crc = "YES"
	}
	return "72 01 4b 46 7f ff 0e 10 57 : crc=57 " + crc + "\n" +
		"72 01 4b 46 7f ff 0e 10 57 t=" + milliDegC + "\n"
}

func temporaryDir(t *testing.T) (dir string, cleanup func()) {
	t.Helper()

	tmpDir, err := ioutil.TempDir("", strings.ReplaceAll(t.Name(), "/", "_")+"-")
	if err != nil {
		t.Fatal(err)
	}

	cleanup = func() {
		if err := os.RemoveAll(tmpDir); err != nil && !errors.Is(err, os.ErrNotExist) {
			t.Logf("%s: error removing temporary test directory: %s", tmpDir, err)
		}
	}

	return tmpDir, cleanup
}

// fakeDevice creates a sensor directory with a w1_slave file under baseDir and returns the
// path of the sensor directory
func fakeDevice(t *testing.T, baseDir, id, content string) string {
	t.Helper()

	dir := filepath.Join(baseDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := ioutil.WriteFile(filepath.Join(dir, "w1_slave"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func iter(n int) []struct{} {
	return make([]struct{}, n)
}
