package engine_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/organelle/internal/engine"
	"github.com/san-kum/organelle/internal/frame"
	"github.com/san-kum/organelle/internal/interact"
	"github.com/san-kum/organelle/internal/physics"
	"github.com/san-kum/organelle/internal/vec"
)

var _ = Describe("Membrane simulation", func() {
	var (
		start  = time.Unix(1_700_000_000, 0)
		ids    = []string{"atlas", "helix", "lumen", "nexus", "orbit"}
		sim    *engine.Simulation
		source *frame.Manual
		ctx    context.Context
		cancel context.CancelFunc
	)

	mount := func(compact bool) {
		source = frame.NewManual(start, time.Second/60)
		var err error
		sim, err = engine.New(engine.Options{
			Width:        960,
			Height:       720,
			Compact:      compact,
			EntityRadius: 36,
			IDs:          ids,
			Seed:         2024,
			Clock:        func() time.Time { return start },
			Source:       source,
		})
		Expect(err).NotTo(HaveOccurred())
		ctx, cancel = context.WithCancel(context.Background())
		Expect(sim.Start(ctx)).To(Succeed())
	}

	AfterEach(func() {
		Expect(sim.Close()).To(Succeed())
		cancel()
	})

	for _, compact := range []bool{false, true} {
		compact := compact
		name := "desktop ellipse"
		if compact {
			name = "compact rounded square"
		}

		Context(name, func() {
			BeforeEach(func() { mount(compact) })

			It("keeps every free entity inside the membrane at bounded speed", func() {
				params := physics.DefaultParams()
				for i := 0; i < 20; i++ {
					Expect(source.Advance(ctx, 30)).To(Succeed())
					f := sim.Frame()
					for _, e := range f.Entities {
						Expect(e.Speed()).To(BeNumerically(">=", params.MinSpeed-1e-9))
						Expect(e.Speed()).To(BeNumerically("<=", params.MaxSpeed+1e-9))
						Expect(contains(f.Geometry, e)).To(BeTrue(), "entity %s escaped at %v", e.ID, e.Position)
					}
				}
			})

			It("freezes and enlarges the clicked entity until the view closes", func() {
				ctrl := interact.New(sim, ids, 2.5)
				before, _ := sim.Entity("lumen")

				ctrl.Click("lumen")
				pinned, _ := sim.Entity("lumen")
				Expect(pinned.Expanded).To(BeTrue())
				Expect(pinned.Radius).To(Equal(before.Radius * 2.5))

				Expect(source.Advance(ctx, 3)).To(Succeed())
				after, _ := sim.Entity("lumen")
				Expect(after.Position).To(Equal(pinned.Position))
				Expect(after.Velocity).To(Equal(vec.Vec2{}))

				view := ctrl.View()
				Expect(view.Class("lumen")).To(Equal(interact.ClassActive))
				Expect(view.Class("atlas")).To(Equal(interact.ClassDimmed))

				ctrl.Escape()
				released, _ := sim.Entity("lumen")
				Expect(released.Expanded).To(BeFalse())
				Expect(released.Radius).To(Equal(before.Radius))
				Expect(ctrl.View().ModalOpen()).To(BeFalse())
			})

			It("flags a hovered entity and releases it on leave", func() {
				ctrl := interact.New(sim, ids, 2.5)
				ctrl.PointerEnter("atlas")
				Expect(source.Advance(ctx, 5)).To(Succeed())
				hovered, _ := sim.Entity("atlas")
				Expect(hovered.Hovered).To(BeTrue())
				Expect(hovered.Speed()).To(BeNumerically(">=", physics.DefaultParams().MinSpeed-1e-9))

				ctrl.PointerLeave("atlas")
				released, _ := sim.Entity("atlas")
				Expect(released.Hovered).To(BeFalse())
			})
		})
	}

	Context("desktop breathing", func() {
		BeforeEach(func() { mount(false) })

		It("tracks the breathing radius frame by frame", func() {
			var radii []float64
			sim.AddObserver(engine.ObserverFunc(func(f engine.Frame) {
				radii = append(radii, f.Radius)
			}))
			Expect(source.Advance(ctx, 600)).To(Succeed())

			Expect(radii).To(HaveLen(600))
			for i, r := range radii {
				Expect(r).To(BeNumerically(">=", 37))
				Expect(r).To(BeNumerically("<=", 43))
				if i > 0 {
					Expect(r - radii[i-1]).To(BeNumerically("~", 0, 0.05))
				}
			}
			Expect(sim.Frame().Elapsed).To(Equal(source.Now().Sub(start)))
		})

		It("reports boundary impacts only briefly", func() {
			Expect(source.Advance(ctx, 600)).To(Succeed())
			for _, c := range sim.RecentCollisions() {
				Expect(source.Now().Sub(c.Timestamp)).To(BeNumerically("<", 600*time.Millisecond))
			}
		})
	})

	Context("compact layout", func() {
		BeforeEach(func() { mount(true) })

		It("never records boundary impacts", func() {
			Expect(source.Advance(ctx, 300)).To(Succeed())
			Expect(sim.RecentCollisions()).To(BeEmpty())
		})

		It("re-confines entities after the container shrinks", func() {
			Expect(source.Advance(ctx, 10)).To(Succeed())
			sim.UpdateDimensions(400, 400)
			Expect(source.Advance(ctx, 1)).To(Succeed())
			f := sim.Frame()
			for _, e := range f.Entities {
				Expect(contains(f.Geometry, e)).To(BeTrue())
			}
		})
	})

	It("rejects a duplicate id and keeps the original", func() {
		mount(false)
		orig, _ := sim.Entity("atlas")
		_, err := sim.AddEntity("atlas")
		Expect(err).To(MatchError(physics.ErrDuplicateEntity))
		again, _ := sim.Entity("atlas")
		Expect(again).To(Equal(orig))
		Expect(sim.Snapshot()).To(HaveLen(len(ids)))
	})
})

func contains(g engine.Geometry, e physics.Entity) bool {
	if g.Shape == physics.ShapeEllipse {
		el := physics.NewEllipse(g.Width, g.Height)
		el.RadiusX, el.RadiusY = g.RadiusX, g.RadiusY
		return el.Contains(e.Position, e.Radius)
	}
	r := &physics.RoundedRect{Left: g.Left, Right: g.Right, Top: g.Top, Bottom: g.Bottom, CornerRadius: g.CornerRadius}
	return r.Contains(e.Position, e.Radius)
}
