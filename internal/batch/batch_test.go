package batch

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Nic0w/zbars/internal/barcode"
	"github.com/Nic0w/zbars/internal/output"
	"github.com/Nic0w/zbars/internal/testutil"
	"github.com/Nic0w/zbars/zbar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend reports the image width as the decoded value.
type fakeBackend struct {
	calls atomic.Int32
	fail  bool
}

func (f *fakeBackend) Decode(ctx context.Context, img image.Image, _ barcode.Options) ([]barcode.Result, error) {
	f.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.fail {
		return nil, errors.New("decode failed")
	}
	return []barcode.Result{{Type: zbar.SymbolQRCode, Value: strconv.Itoa(img.Bounds().Dx())}}, nil
}

type recordingProgress struct {
	mu       sync.Mutex
	started  int
	progress []int
	complete bool
}

func (r *recordingProgress) OnStart(total int) { r.started = total }

func (r *recordingProgress) OnProgress(current, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, current)
}

func (r *recordingProgress) OnComplete() { r.complete = true }

func writeImages(t *testing.T, n int) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, n)
	for i := range n {
		paths[i] = testutil.WriteQRFile(t, dir, "img"+strconv.Itoa(i)+".png", "payload "+strconv.Itoa(i), 100+10*i)
	}
	return paths
}

func TestDefaultConfig(t *testing.T) {
	assert.Positive(t, DefaultConfig().MaxWorkers)
}

func TestScanFilesEmpty(t *testing.T) {
	_, err := ScanFiles(context.Background(), &fakeBackend{}, nil, barcode.Options{}, DefaultConfig())
	assert.Error(t, err)
}

func TestScanFilesPreservesOrder(t *testing.T) {
	for _, workers := range []int{1, 3, 16} {
		t.Run(strconv.Itoa(workers), func(t *testing.T) {
			paths := writeImages(t, 6)
			backend := &fakeBackend{}
			progress := &recordingProgress{}

			reports, err := ScanFiles(context.Background(), backend, paths, barcode.Options{},
				Config{MaxWorkers: workers, Progress: progress})
			require.NoError(t, err)
			require.Len(t, reports, len(paths))
			for i, r := range reports {
				assert.Equal(t, paths[i], r.Source)
				require.NoError(t, r.Err)
				require.Len(t, r.Results, 1)
				assert.Equal(t, strconv.Itoa(r.Width), r.Results[0].Value)
			}
			assert.EqualValues(t, len(paths), backend.calls.Load())
			assert.Equal(t, len(paths), progress.started)
			assert.Len(t, progress.progress, len(paths))
			assert.True(t, progress.complete)
		})
	}
}

func TestScanFilesRecordsFailures(t *testing.T) {
	paths := writeImages(t, 2)
	bad := filepath.Join(t.TempDir(), "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("junk"), 0o600))
	paths = append(paths, bad, filepath.Join(t.TempDir(), "missing.png"))

	reports, err := ScanFiles(context.Background(), &fakeBackend{}, paths, barcode.Options{}, Config{MaxWorkers: 2})
	require.NoError(t, err)
	require.Len(t, reports, 4)
	assert.NoError(t, reports[0].Err)
	assert.NoError(t, reports[1].Err)
	assert.Error(t, reports[2].Err)
	assert.Error(t, reports[3].Err)

	reports, err = ScanFiles(context.Background(), &fakeBackend{fail: true}, paths[:1], barcode.Options{}, Config{})
	require.NoError(t, err)
	assert.EqualError(t, reports[0].Err, "decode failed")
}

func TestScanFilesCanceled(t *testing.T) {
	paths := writeImages(t, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ScanFiles(ctx, &fakeBackend{}, paths, barcode.Options{}, Config{MaxWorkers: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanFilesRealBackend(t *testing.T) {
	paths := writeImages(t, 4)
	reports, err := ScanFiles(context.Background(), barcode.NewZbarBackend(), paths, barcode.Options{}, Config{MaxWorkers: 4})
	require.NoError(t, err)
	for i, r := range reports {
		require.NoError(t, r.Err)
		require.Len(t, r.Results, 1, "file %d", i)
		assert.Equal(t, "payload "+strconv.Itoa(i), r.Results[0].Value)
	}
}

func TestSummarize(t *testing.T) {
	reports := []output.Report{
		{Results: make([]barcode.Result, 2)},
		{Results: make([]barcode.Result, 1)},
		{Err: errors.New("boom")},
		{},
	}
	s := Summarize(reports, 3*time.Second, 2)
	assert.Equal(t, 4, s.Files)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 3, s.Symbols)
	assert.Equal(t, 2, s.Workers)
	assert.Equal(t, time.Second, s.AveragePerFile)
	assert.InDelta(t, 1.0, s.ThroughputPerSec, 1e-9)

	empty := Summarize(nil, 0, 1)
	assert.Zero(t, empty.ThroughputPerSec)
}

func BenchmarkScanFiles(b *testing.B) {
	dir := b.TempDir()
	paths := make([]string, 8)
	for i := range paths {
		paths[i] = testutil.WriteQRFile(b, dir, "b"+strconv.Itoa(i)+".png", "bench "+strconv.Itoa(i), 256)
	}
	backend := barcode.NewZbarBackend()
	b.ResetTimer()
	for b.Loop() {
		if _, err := ScanFiles(context.Background(), backend, paths, barcode.Options{}, DefaultConfig()); err != nil {
			b.Fatal(err)
		}
	}
}
