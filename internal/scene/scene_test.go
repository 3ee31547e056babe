package scene_test

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/arbor/internal/attr"
	"github.com/san-kum/arbor/internal/fragment"
	"github.com/san-kum/arbor/internal/hasher"
	"github.com/san-kum/arbor/internal/render"
	"github.com/san-kum/arbor/internal/scene"
	"github.com/san-kum/arbor/internal/tree"
)

type countingView struct {
	mu    sync.Mutex
	draws int
	root  bool
}

func (v *countingView) Draw(attr.Values) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.draws++
	return nil
}

func (v *countingView) SetRoot(on bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.root = on
}

func (v *countingView) Draws() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.draws
}

func (v *countingView) IsRoot() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.root
}

func newViews(n int) ([]tree.View, []*countingView) {
	views := make([]tree.View, n)
	counted := make([]*countingView, n)
	for i := range views {
		counted[i] = &countingView{}
		views[i] = counted[i]
	}
	return views, counted
}

func withinStep(table attr.Table, from, to attr.Values) bool {
	diff := attr.Diff(from, to)
	if len(diff) > 1 {
		return false
	}
	for _, n := range diff {
		spec := table[n]
		if math.Abs(to[n]-from[n]) > spec.VaryBy+0.5 {
			return false
		}
		if to[n] != spec.Clamp(to[n]) {
			return false
		}
	}
	return true
}

var _ = Describe("Scene", func() {
	var (
		ctx     context.Context
		watcher *hasher.Memory
		counted []*countingView
		s       *scene.Scene
	)

	build := func(n int, initial string) {
		var views []tree.View
		views, counted = newViews(n)
		watcher = hasher.NewMemory(initial)
		var err error
		s, err = scene.New(views, watcher, scene.Options{Rand: rand.New(rand.NewSource(17))})
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("construction", func() {
		It("rejects missing collaborators", func() {
			_, err := scene.New(nil, hasher.NewMemory(""), scene.Options{})
			Expect(err).To(MatchError(scene.ErrNoViews))

			views, _ := newViews(2)
			_, err = scene.New(views, nil, scene.Options{})
			Expect(err).To(MatchError(scene.ErrNoWatcher))
		})

		It("draws every tree once", func() {
			build(4, "")
			Expect(s.Len()).To(Equal(4))
			for _, v := range counted {
				Expect(v.Draws()).To(Equal(1))
			}
		})
	})

	Describe("Start", func() {
		It("roots tree 0 without publishing when no state exists", func() {
			build(3, "")
			Expect(s.Start(ctx)).To(Succeed())

			Expect(s.Root()).To(Equal(0))
			Expect(counted[0].IsRoot()).To(BeTrue())
			Expect(watcher.Value()).To(BeEmpty())
		})

		It("adopts a state that already exists", func() {
			build(2, "65_35_0.625_6_0,70_40_0.6_6_1")
			Expect(s.Start(ctx)).To(Succeed())

			snap := s.Snapshot()
			Expect(snap.Trees[0]).To(Equal(attr.Values{65, 35, 0.625, 6, 0}))
			Expect(snap.Trees[1]).To(Equal(attr.Values{70, 40, 0.6, 6, 1}))
			Expect(s.Encode()).To(Equal("65_35_0.625_6_0,70_40_0.6_6_1"))
		})

		It("refuses to start twice", func() {
			build(2, "")
			Expect(s.Start(ctx)).To(Succeed())
			Expect(s.Start(ctx)).To(MatchError(scene.ErrStarted))
		})
	})

	Describe("Promote", func() {
		BeforeEach(func() {
			build(9, "")
			Expect(s.Start(ctx)).To(Succeed())
		})

		It("re-derives every other tree from the new root", func() {
			before := s.Snapshot()
			Expect(s.Promote(ctx, 4)).To(Succeed())
			after := s.Snapshot()

			Expect(after.Root).To(Equal(4))
			Expect(after.Trees[4]).To(Equal(before.Trees[4]))
			for i, v := range after.Trees {
				if i == 4 {
					continue
				}
				Expect(withinStep(attr.DefaultTable(), after.Trees[4], v)).To(BeTrue(), "tree %d", i)
			}
			Expect(counted[0].IsRoot()).To(BeFalse())
			Expect(counted[4].IsRoot()).To(BeTrue())
		})

		It("publishes the encoded scene and ignores the echo", func() {
			draws := counted[1].Draws()
			Expect(s.Promote(ctx, 2)).To(Succeed())

			Expect(watcher.Value()).To(Equal(s.Encode()))
			// one redraw from Initialize; the echo caused no restore
			Expect(counted[1].Draws()).To(Equal(draws + 1))
			Expect(s.State()).To(Equal(scene.Idle))
		})

		It("rejects indices outside the scene", func() {
			Expect(s.Promote(ctx, 9)).To(MatchError(scene.ErrOutOfRange))
			Expect(s.Promote(ctx, -1)).To(MatchError(scene.ErrOutOfRange))
		})

		It("notifies observers", func() {
			var got []scene.Snapshot
			s.AddObserver(scene.ObserverFunc(func(snap scene.Snapshot) { got = append(got, snap) }))

			Expect(s.Promote(ctx, 1)).To(Succeed())
			Expect(got).To(HaveLen(1))
			Expect(got[0].Cause).To(Equal(scene.CausePromote))
			Expect(got[0].Root).To(Equal(1))
		})
	})

	Describe("external changes", func() {
		BeforeEach(func() {
			build(3, "")
			Expect(s.Start(ctx)).To(Succeed())
		})

		It("restores values without mutating them", func() {
			state := "65_35_0.625_6_0,70_40_0.6_6_1,80_20_0.7_6_3"
			Expect(watcher.Push(state)).To(Succeed())
			Expect(s.Encode()).To(Equal(state))
		})

		It("clamps out-of-bounds values", func() {
			Expect(watcher.Push("500_35_0.625_6_0,70_40_0.6_6_1,80_20_0.7_6_30")).To(Succeed())
			snap := s.Snapshot()
			Expect(snap.Trees[0][attr.Length]).To(Equal(100.0))
			Expect(snap.Trees[2][attr.Branchings]).To(Equal(8.0))
		})

		It("falls back to defaults for bad and missing segments", func() {
			Expect(watcher.Push("65_35_0.625_6_0,oops")).To(Succeed())
			snap := s.Snapshot()
			Expect(snap.Trees[0]).To(Equal(attr.Values{65, 35, 0.625, 6, 0}))
			defaults := attr.DefaultTable().Defaults()
			Expect(withinStep(attr.DefaultTable(), defaults, snap.Trees[1])).To(BeTrue())
			Expect(withinStep(attr.DefaultTable(), defaults, snap.Trees[2])).To(BeTrue())
		})

		It("ignores extra segments", func() {
			state := "65_35_0.625_6_0,70_40_0.6_6_1,80_20_0.7_6_3,90_10_0.5_6_2"
			Expect(watcher.Push(state)).To(Succeed())
			Expect(s.Encode()).To(Equal("65_35_0.625_6_0,70_40_0.6_6_1,80_20_0.7_6_3"))
		})

		It("keeps the current trees when the value is cleared", func() {
			before := s.Encode()
			Expect(watcher.Push("")).To(Succeed())
			Expect(s.Encode()).To(Equal(before))
		})

		It("keeps the root flag", func() {
			Expect(s.Promote(ctx, 2)).To(Succeed())
			Expect(watcher.Push("65_35_0.625_6_0,70_40_0.6_6_1,80_20_0.7_6_3")).To(Succeed())
			Expect(s.Root()).To(Equal(2))
		})
	})

	Describe("Restore and Randomize", func() {
		BeforeEach(func() {
			build(2, "")
			Expect(s.Start(ctx)).To(Succeed())
		})

		It("applies and publishes a pasted state", func() {
			Expect(s.Restore(ctx, "70_40_0.6_6_1,65_35_0.625_6_0")).To(Succeed())
			Expect(watcher.Value()).To(Equal("70_40_0.6_6_1,65_35_0.625_6_0"))
		})

		It("rejects an empty pasted state", func() {
			Expect(s.Restore(ctx, "")).To(MatchError(fragment.ErrEmpty))
		})

		It("moves one tree by one step", func() {
			before := s.Snapshot()
			Expect(s.Randomize(ctx, 1)).To(Succeed())
			after := s.Snapshot()
			Expect(after.Trees[0]).To(Equal(before.Trees[0]))
			Expect(withinStep(attr.DefaultTable(), before.Trees[1], after.Trees[1])).To(BeTrue())
			Expect(watcher.Value()).To(Equal(after.State))
		})
	})

	Describe("two-tree example", func() {
		It("derives tree 1 from default tree 0", func() {
			build(2, "")
			Expect(s.Start(ctx)).To(Succeed())
			Expect(watcher.Push("65_35_0.625_6_0,65_35_0.625_6_0")).To(Succeed())

			Expect(s.Promote(ctx, 0)).To(Succeed())
			snap := s.Snapshot()
			defaults := attr.Values{65, 35, 0.625, 6, 0}

			Expect(snap.Trees[0]).To(Equal(defaults))
			Expect(withinStep(attr.DefaultTable(), defaults, snap.Trees[1])).To(BeTrue())

			parts := strings.Split(watcher.Value(), fragment.TreeSep)
			Expect(parts).To(HaveLen(2))
			Expect(parts[0]).To(Equal("65_35_0.625_6_0"))
			Expect(parts[1]).To(Equal(fragment.EncodeValues(snap.Trees[1])))
		})
	})

	Describe("with renderers", func() {
		It("draws complete trees on every surface", func() {
			recs := []*render.Recorder{render.NewRecorder(200, 200), render.NewRecorder(200, 200)}
			views := make([]tree.View, len(recs))
			for i, rec := range recs {
				r, err := render.New(rec, render.Options{Scheduler: render.Immediate{}})
				Expect(err).NotTo(HaveOccurred())
				views[i] = r
			}
			w := hasher.NewMemory("")
			sc, err := scene.New(views, w, scene.Options{Rand: rand.New(rand.NewSource(3))})
			Expect(err).NotTo(HaveOccurred())
			Expect(sc.Start(ctx)).To(Succeed())

			Expect(w.Push("65_35_0.625_6_2,70_40_0.6_6_3")).To(Succeed())
			Expect(recs[0].Segments()).To(Equal(render.SegmentCount(2)))
			Expect(recs[1].Segments()).To(Equal(render.SegmentCount(3)))
			Expect(recs[0].Highlighted()).To(BeTrue())
		})
	})
})
