package media

import (
	"bytes"
	"context"
	"errors"
	"image/gif"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/gifclip/internal/media/mediatest"
	"github.com/backmassage/gifclip/internal/probe"
)

func newTestEngine(duration float64, w, h int) (*Engine, *mediatest.Prober, *mediatest.Runner) {
	p := &mediatest.Prober{Result: mediatest.Video(duration, w, h)}
	r := &mediatest.Runner{SourceWidth: w, SourceHeight: h}
	return &Engine{Prober: p, Runner: r}, p, r
}

func writeSource(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.mp4")
	require.NoError(t, os.WriteFile(path, []byte("not really a video"), 0o644))
	return path
}

func openSession(t *testing.T, duration float64, w, h int) (*Session, *mediatest.Runner) {
	t.Helper()
	eng, _, runner := newTestEngine(duration, w, h)
	s, err := eng.Open(context.Background(), writeSource(t))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, runner
}

func TestOpen_MissingFile(t *testing.T) {
	eng, prober, _ := newTestEngine(10, 320, 240)

	s, err := eng.Open(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"))
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrFileNotFound)
	assert.Contains(t, err.Error(), "missing.mp4")
	assert.Empty(t, prober.Paths, "existence is checked before probing")
}

func TestCheckSource(t *testing.T) {
	dir := t.TempDir()
	file := writeSource(t)
	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"regular file", file, nil},
		{"missing", filepath.Join(dir, "missing.mp4"), ErrFileNotFound},
		{"directory", dir, ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSource(tt.path)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestOpen_Directory(t *testing.T) {
	eng, _, _ := newTestEngine(10, 320, 240)
	_, err := eng.Open(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestOpen_EngineRejectsSource(t *testing.T) {
	src := writeSource(t)
	tests := []struct {
		name   string
		prober *mediatest.Prober
	}{
		{"probe error", &mediatest.Prober{Err: errors.New("Invalid data found when processing input")}},
		{"no video stream", &mediatest.Prober{Result: &probe.ProbeResult{Format: probe.FormatInfo{Duration: 180}}}},
		{"zero duration", &mediatest.Prober{Result: mediatest.Video(0, 320, 240)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := &Engine{Prober: tt.prober, Runner: &mediatest.Runner{}}
			s, err := eng.Open(context.Background(), src)
			assert.Nil(t, s)
			assert.ErrorIs(t, err, ErrEncodingFailure)
		})
	}
}

func TestOpen_ExposesDurationAndSize(t *testing.T) {
	s, _ := openSession(t, 10, 320, 240)

	assert.Equal(t, 10.0, s.Duration())
	w, h := s.Size()
	assert.Equal(t, 320, w)
	assert.Equal(t, 240, h)
	assert.NotNil(t, s.Info())
	assert.False(t, s.Closed())
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	s, _ := openSession(t, 10, 320, 240)

	require.NoError(t, s.Close())
	assert.True(t, s.Closed())
	assert.Nil(t, s.file, "descriptor released")
	assert.NoError(t, s.Close())

	var never *Session
	assert.NoError(t, never.Close(), "a never-opened session is skipped")
}

func TestSession_CloseReleasesClips(t *testing.T) {
	s, _ := openSession(t, 10, 320, 240)
	trimmed, err := s.Trim(1, 4)
	require.NoError(t, err)
	scaled, err := trimmed.Scale(0.5)
	require.NoError(t, err)
	assert.Equal(t, 2, s.openClips())

	require.NoError(t, s.Close())
	assert.Equal(t, 0, s.openClips())

	_, err = scaled.Scale(0.5)
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.NoError(t, trimmed.Close(), "closing a clip after its session is harmless")
}

func TestOpenClose_DoesNotLeakDescriptors(t *testing.T) {
	eng, _, _ := newTestEngine(10, 320, 240)
	src := writeSource(t)

	// Well past the usual 1024 soft limit on open files.
	for i := 0; i < 3000; i++ {
		s, err := eng.Open(context.Background(), src)
		require.NoError(t, err)
		c, err := s.Trim(0, 1)
		require.NoError(t, err)
		require.NoError(t, c.Close())
		require.NoError(t, s.Close())
	}
}

func TestTrim(t *testing.T) {
	tests := []struct {
		name        string
		start, stop float64
		wantErr     error
	}{
		{"inner range", 2, 5, nil},
		{"whole video", 0, 10, nil},
		{"negative start", -1, 5, ErrInvalidRange},
		{"stop before start", 6, 5, ErrInvalidRange},
		{"empty range", 5, 5, ErrInvalidRange},
		{"past the end", 2, 10.5, ErrInvalidRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := openSession(t, 10, 320, 240)
			c, err := s.Trim(tt.start, tt.stop)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.start, c.Start())
			assert.Equal(t, tt.stop, c.Stop())
			assert.Equal(t, tt.stop-tt.start, c.Duration())
			assert.False(t, c.Scaled())
		})
	}
}

func TestTrim_AfterClose(t *testing.T) {
	s, _ := openSession(t, 10, 320, 240)
	require.NoError(t, s.Close())
	_, err := s.Trim(0, 1)
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestScale(t *testing.T) {
	tests := []struct {
		name         string
		factor       float64
		wantW, wantH int
		wantErr      error
	}{
		{"half", 0.5, 960, 540, nil},
		{"double", 2, 3840, 2160, nil},
		{"third rounds", 1.0 / 3, 640, 360, nil},
		{"tiny clamps to one pixel", 0.0001, 1, 1, nil},
		{"zero", 0, 0, 0, ErrInvalidArgument},
		{"negative", -0.5, 0, 0, ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := openSession(t, 10, 1920, 1080)
			c, err := s.Trim(0, 1)
			require.NoError(t, err)

			scaled, err := c.Scale(tt.factor)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			w, h := scaled.Size()
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
			assert.True(t, scaled.Scaled())
			assert.Equal(t, c.Start(), scaled.Start())
			assert.Equal(t, c.Stop(), scaled.Stop())
		})
	}
}

func TestScale_UnitIsPassThrough(t *testing.T) {
	s, _ := openSession(t, 10, 1920, 1080)
	c, err := s.Trim(0, 1)
	require.NoError(t, err)

	same, err := c.Scale(1.0)
	require.NoError(t, err)
	assert.Same(t, c, same)
	assert.Equal(t, 1, s.openClips(), "no new view for a unit scale")
}

func TestEncode_WritesGIF(t *testing.T) {
	s, runner := openSession(t, 10, 64, 48)
	c, err := s.Trim(2, 5)
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "nested", "out.gif")
	require.NoError(t, c.Encode(context.Background(), dest, EncodeOptions{FPS: 10}))

	args := strings.Join(runner.LastArgs(), " ")
	assert.Contains(t, args, "-ss 2 -t 3 -i "+s.Path())
	assert.Contains(t, args, "[0:v]fps=10,split")
	assert.NotContains(t, args, "scale=")

	g := decodeGIF(t, dest)
	assert.Len(t, g.Image, 30, "3 seconds at 10 fps")
	assert.Equal(t, 64, g.Config.Width)
	assert.Equal(t, 48, g.Config.Height)

	fi, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), fi.Mode().Perm())
	assertNoTempFiles(t, filepath.Dir(dest))
}

func TestEncode_Scaled(t *testing.T) {
	s, runner := openSession(t, 10, 64, 48)
	c, err := s.Trim(0, 1)
	require.NoError(t, err)
	scaled, err := c.Scale(0.5)
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "half.gif")
	require.NoError(t, scaled.Encode(context.Background(), dest, EncodeOptions{FPS: 5, Loop: -1}))

	args := strings.Join(runner.LastArgs(), " ")
	assert.Contains(t, args, "scale=32:24:flags=lanczos")
	assert.Contains(t, args, "-loop -1")

	g := decodeGIF(t, dest)
	assert.Equal(t, 32, g.Config.Width)
	assert.Equal(t, 24, g.Config.Height)
	assert.Len(t, g.Image, 5)
}

func TestEncode_FailureKeepsExistingDestination(t *testing.T) {
	s, runner := openSession(t, 10, 64, 48)
	runner.Err = errors.New("exit status 1")
	runner.Stderr = "frame=1\r\n[gif @ 0x1] No space left on device\n"
	c, err := s.Trim(0, 1)
	require.NoError(t, err)

	dir := t.TempDir()
	dest := filepath.Join(dir, "keep.gif")
	require.NoError(t, os.WriteFile(dest, []byte("previous"), 0o644))

	err = c.Encode(context.Background(), dest, EncodeOptions{FPS: 10})
	require.ErrorIs(t, err, ErrEncodingFailure)
	assert.Contains(t, err.Error(), "no space left on device")
	assert.Contains(t, err.Error(), "[gif @ 0x1] No space left on device")

	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(b))
	assertNoTempFiles(t, dir)
}

func TestEncode_InvalidFPS(t *testing.T) {
	s, runner := openSession(t, 10, 64, 48)
	c, err := s.Trim(0, 1)
	require.NoError(t, err)

	err = c.Encode(context.Background(), filepath.Join(t.TempDir(), "x.gif"), EncodeOptions{FPS: 0})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Empty(t, runner.Calls)
}

func TestEncode_AfterSessionClose(t *testing.T) {
	s, runner := openSession(t, 10, 64, 48)
	c, err := s.Trim(0, 1)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	dir := t.TempDir()
	err = c.Encode(context.Background(), filepath.Join(dir, "x.gif"), EncodeOptions{FPS: 10})
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.Empty(t, runner.Calls, "views are not usable without their session")
	assertNoTempFiles(t, dir)
}

func TestCommand_DoesNotRun(t *testing.T) {
	s, runner := openSession(t, 10, 64, 48)
	c, err := s.Trim(1.5, 4)
	require.NoError(t, err)

	args, err := c.Command("/tmp/out.gif", EncodeOptions{FPS: 12})
	require.NoError(t, err)
	assert.Equal(t, "ffmpeg", args[0])
	assert.Equal(t, "/tmp/out.gif", args[len(args)-1])
	assert.Contains(t, strings.Join(args, " "), "-ss 1.5 -t 2.5 ")
	assert.Empty(t, runner.Calls)
}

func TestCommand_RangeBelowFFmpegResolution(t *testing.T) {
	s, runner := openSession(t, 10, 64, 48)

	short, err := s.Trim(9.9996, 10)
	require.NoError(t, err)
	args, err := short.Command("/tmp/out.gif", EncodeOptions{FPS: 10})
	require.NoError(t, err)
	assert.Contains(t, strings.Join(args, " "), "-ss 9.9996 -t 0.0004 ")

	tiny, err := s.Trim(9.9999996, 10)
	require.NoError(t, err)
	dir := t.TempDir()
	err = tiny.Encode(context.Background(), filepath.Join(dir, "x.gif"), EncodeOptions{FPS: 10})
	assert.ErrorIs(t, err, ErrInvalidRange)
	assert.Empty(t, runner.Calls)
	assertNoTempFiles(t, dir)
}

func decodeGIF(t *testing.T, path string) *gif.GIF {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	g, err := gif.DecodeAll(bytes.NewReader(b))
	require.NoError(t, err)
	return g
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, ".gifclip-*"))
	require.NoError(t, err)
	assert.Empty(t, matches, "temporary output must be cleaned up")
}
