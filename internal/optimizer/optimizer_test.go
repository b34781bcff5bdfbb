package optimizer_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/birdplot/internal/adapters/toolchain"
	"github.com/okian/birdplot/internal/optimizer"
)

// fakeRunner imitates pngquant, oxipng and mogrify on the real filesystem.
type fakeRunner struct {
	mu       sync.Mutex
	missing  map[string]bool
	failOn   map[string]bool // base names the quantiser or stripper rejects
	failComp bool
	calls    []string
	onRun    func() // called before every tool run
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	if f.onRun != nil {
		f.onRun()
	}
	f.mu.Lock()
	f.calls = append(f.calls, name+" "+strings.Join(args, " "))
	f.mu.Unlock()

	target := args[len(args)-1]
	switch name {
	case "pngquant":
		var out string
		for i, a := range args {
			if a == "--output" {
				out = args[i+1]
			}
		}
		if f.failOn[filepath.Base(target)] {
			_ = os.WriteFile(out, []byte("partial"), 0o644)
			return []byte("quality too low"), fmt.Errorf("%w: pngquant exited with 99", toolchain.ErrFailed)
		}
		return nil, os.WriteFile(out, []byte("q"), 0o644)
	case "oxipng":
		if f.failComp {
			return nil, fmt.Errorf("%w: oxipng exited with 1", toolchain.ErrFailed)
		}
		return nil, nil
	case "mogrify":
		if f.failOn[filepath.Base(target)] {
			return nil, fmt.Errorf("%w: mogrify exited with 1", toolchain.ErrFailed)
		}
		return nil, os.WriteFile(target, []byte("mm"), 0o644)
	}
	return nil, fmt.Errorf("%w: unexpected tool %s", toolchain.ErrFailed, name)
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.missing[name] {
		return "", fmt.Errorf("%w: %s", toolchain.ErrNotFound, name)
	}
	return "/usr/bin/" + name, nil
}

func (f *fakeRunner) callsTo(tool string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if strings.HasPrefix(c, tool+" ") {
			out = append(out, c)
		}
	}
	return out
}

// tree lays out root/a.png (100 bytes), root/sub/B.PNG (50 bytes) and
// root/notes.txt.
func tree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	must := func(err error) {
		if err != nil {
			t.Fatal(err)
		}
	}
	must(os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	must(os.WriteFile(filepath.Join(root, "a.png"), bytes.Repeat([]byte("a"), 100), 0o644))
	must(os.WriteFile(filepath.Join(root, "sub", "B.PNG"), bytes.Repeat([]byte("b"), 50), 0o644))
	must(os.WriteFile(filepath.Join(root, "notes.txt"), []byte("not an image"), 0o644))
	return root
}

func settings(workers int) optimizer.Settings {
	s := optimizer.DefaultSettings()
	s.Workers = workers
	s.QueueSize = 1
	return s
}

func tmpFiles(t *testing.T, root string) []string {
	t.Helper()
	var out []string
	_ = filepath.WalkDir(root, func(p string, _ os.DirEntry, _ error) error {
		if strings.HasSuffix(p, ".tmp") {
			out = append(out, p)
		}
		return nil
	})
	return out
}

func TestSettings(t *testing.T) {
	Convey("Given optimizer settings", t, func() {
		Convey("Then modes parse case-insensitively", func() {
			m, err := optimizer.ParseMode("STRIP")
			So(err, ShouldBeNil)
			So(m, ShouldEqual, optimizer.ModeStrip)

			_, err = optimizer.ParseMode("shrink")
			So(errors.Is(err, optimizer.ErrInvalidSettings), ShouldBeTrue)
		})

		Convey("Then the extension is normalised", func() {
			s := optimizer.DefaultSettings()
			s.Extension = "PNG"
			So(s.Validate(), ShouldBeNil)
			So(s.Extension, ShouldEqual, ".png")
		})

		Convey("Then unusable values are rejected", func() {
			cases := []struct {
				name   string
				mutate func(*optimizer.Settings)
			}{
				{"empty extension", func(s *optimizer.Settings) { s.Extension = " " }},
				{"zero workers", func(s *optimizer.Settings) { s.Workers = 0 }},
				{"zero queue", func(s *optimizer.Settings) { s.QueueSize = 0 }},
				{"no quantizer", func(s *optimizer.Settings) { s.Quantizer = "" }},
				{"level out of range", func(s *optimizer.Settings) { s.CompressorLevel = 9 }},
				{"strip without size", func(s *optimizer.Settings) { s.Mode = optimizer.ModeStrip; s.MaxDimension = 0 }},
			}
			for _, tc := range cases {
				s := optimizer.DefaultSettings()
				tc.mutate(&s)
				So(errors.Is(s.Validate(), optimizer.ErrInvalidSettings), ShouldBeTrue)
			}
		})
	})
}

func TestDiscover(t *testing.T) {
	ctx := context.Background()

	Convey("Given a tree with images in mixed case", t, func() {
		root := tree(t)
		opt, err := optimizer.New(&fakeRunner{}, settings(1))
		So(err, ShouldBeNil)

		Convey("When the root and a sub-directory are both given", func() {
			jobs, err := opt.Discover(ctx, []string{root, filepath.Join(root, "sub")})

			Convey("Then each image is found once", func() {
				So(err, ShouldBeNil)
				var names []string
				for _, j := range jobs {
					names = append(names, filepath.Base(j.Path))
					So(j.ID, ShouldNotBeEmpty)
				}
				sort.Strings(names)
				So(names, ShouldResemble, []string{"B.PNG", "a.png"})
			})
		})

		Convey("When a symlink points at an image already found", func() {
			if runtime.GOOS == "windows" {
				return
			}
			So(os.Symlink(filepath.Join(root, "a.png"), filepath.Join(root, "sub", "link.png")), ShouldBeNil)
			jobs, err := opt.Discover(ctx, []string{root})

			Convey("Then the link is not listed separately", func() {
				So(err, ShouldBeNil)
				So(len(jobs), ShouldEqual, 2)
			})
		})

		Convey("When a root does not exist", func() {
			_, err := opt.Discover(ctx, []string{filepath.Join(root, "missing")})

			Convey("Then the walk error is returned", func() {
				So(errors.Is(err, optimizer.ErrDiscover), ShouldBeTrue)
				So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
			})
		})
	})
}

func TestRunQuantize(t *testing.T) {
	ctx := context.Background()

	Convey("Given a tree and working tools", t, func() {
		root := tree(t)
		runner := &fakeRunner{}
		opt, err := optimizer.New(runner, settings(2))
		So(err, ShouldBeNil)

		Convey("When the optimizer runs", func() {
			sum, err := opt.Run(ctx, []string{root})

			Convey("Then every image is quantised and re-compressed", func() {
				So(err, ShouldBeNil)
				So(sum, ShouldResemble, optimizer.Summary{Found: 2, Processed: 2, BytesSaved: 99 + 49})
				So(len(runner.callsTo("pngquant")), ShouldEqual, 2)
				So(len(runner.callsTo("oxipng")), ShouldEqual, 2)

				b, _ := os.ReadFile(filepath.Join(root, "a.png"))
				So(string(b), ShouldEqual, "q")
				So(tmpFiles(t, root), ShouldBeEmpty)
			})

			Convey("Then the text file is left alone", func() {
				b, _ := os.ReadFile(filepath.Join(root, "notes.txt"))
				So(string(b), ShouldEqual, "not an image")
			})
		})
	})

	Convey("Given a quantiser that rejects one image", t, func() {
		root := tree(t)
		runner := &fakeRunner{failOn: map[string]bool{"a.png": true}}
		opt, _ := optimizer.New(runner, settings(1))

		sum, err := opt.Run(ctx, []string{root})

		Convey("Then that image is skipped untouched and the rest continue", func() {
			So(err, ShouldBeNil)
			So(sum.Processed, ShouldEqual, 1)
			So(sum.Skipped, ShouldEqual, 1)
			b, _ := os.ReadFile(filepath.Join(root, "a.png"))
			So(len(b), ShouldEqual, 100)
			So(tmpFiles(t, root), ShouldBeEmpty)
			So(len(runner.callsTo("oxipng")), ShouldEqual, 1)
		})
	})

	Convey("Given a re-compressor that always fails", t, func() {
		root := tree(t)
		opt, _ := optimizer.New(&fakeRunner{failComp: true}, settings(1))

		sum, err := opt.Run(ctx, []string{root})

		Convey("Then the quantised files still count as processed", func() {
			So(err, ShouldBeNil)
			So(sum.Processed, ShouldEqual, 2)
			So(sum.Failed, ShouldEqual, 0)
		})
	})

	Convey("Given a missing compressor", t, func() {
		root := tree(t)
		runner := &fakeRunner{missing: map[string]bool{"oxipng": true}}
		opt, _ := optimizer.New(runner, settings(1))

		_, err := opt.Run(ctx, []string{root})

		Convey("Then the run stops before touching any file", func() {
			So(errors.Is(err, optimizer.ErrMissingTool), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "oxipng")
			So(runner.callsTo("pngquant"), ShouldBeEmpty)
			b, _ := os.ReadFile(filepath.Join(root, "a.png"))
			So(len(b), ShouldEqual, 100)
		})
	})
}

func TestRunInterrupted(t *testing.T) {
	Convey("Given many images and a run cancelled by the first tool call", t, func() {
		root := t.TempDir()
		for i := 0; i < 20; i++ {
			So(os.WriteFile(filepath.Join(root, fmt.Sprintf("%02d.png", i)), []byte("image"), 0o644), ShouldBeNil)
		}
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		var once sync.Once
		runner := &fakeRunner{onRun: func() { once.Do(cancel) }}
		opt, err := optimizer.New(runner, settings(1))
		So(err, ShouldBeNil)

		Convey("When the optimizer runs", func() {
			done := make(chan struct{})
			var (
				sum    optimizer.Summary
				runErr error
			)
			go func() {
				sum, runErr = opt.Run(ctx, []string{root})
				close(done)
			}()

			Convey("Then it stops early with the context error", func() {
				select {
				case <-done:
				case <-time.After(5 * time.Second):
					So("run did not stop", ShouldBeEmpty)
				}
				So(errors.Is(runErr, context.Canceled), ShouldBeTrue)
				So(sum.Found, ShouldEqual, 20)
				So(sum.Processed+sum.Skipped+sum.Failed, ShouldBeLessThan, 20)
			})
		})
	})
}

func TestRunStrip(t *testing.T) {
	ctx := context.Background()

	Convey("Given strip mode with only the stripper installed", t, func() {
		root := tree(t)
		runner := &fakeRunner{
			missing: map[string]bool{"pngquant": true, "oxipng": true},
			failOn:  map[string]bool{"B.PNG": true},
		}
		s := settings(2)
		s.Mode = optimizer.ModeStrip
		s.MaxDimension = 800
		opt, err := optimizer.New(runner, s)
		So(err, ShouldBeNil)

		sum, err := opt.Run(ctx, []string{root})

		Convey("Then the stripper runs on every image with the size cap", func() {
			So(err, ShouldBeNil)
			calls := runner.callsTo("mogrify")
			So(len(calls), ShouldEqual, 2)
			So(calls[0], ShouldContainSubstring, "-strip -resize 800x800> -depth 8")
		})

		Convey("Then a stripper failure counts as failed", func() {
			So(sum.Processed, ShouldEqual, 1)
			So(sum.Failed, ShouldEqual, 1)
			So(sum.BytesSaved, ShouldEqual, 98)
		})
	})
}
