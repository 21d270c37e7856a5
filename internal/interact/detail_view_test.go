package interact_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/organelle/internal/engine"
	"github.com/san-kum/organelle/internal/interact"
	"github.com/san-kum/organelle/internal/vec"
)

var _ = Describe("Detail view", func() {
	var (
		start = time.Unix(1_700_000_000, 0)
		ids   = []string{"genome", "protein", "ribosome"}
		sim   *engine.Simulation
		ctrl  *interact.Controller
	)

	radius := func(id string) float64 {
		e, ok := sim.Entity(id)
		Expect(ok).To(BeTrue())
		return e.Radius
	}

	BeforeEach(func() {
		var err error
		sim, err = engine.New(engine.Options{
			Width:        900,
			Height:       700,
			EntityRadius: 30,
			IDs:          ids,
			Seed:         7,
			Clock:        func() time.Time { return start },
		})
		Expect(err).NotTo(HaveOccurred())
		ctrl = interact.New(sim, ids, 2.0)

		sim.Place("genome", vec.New(-150, 0), vec.Vec2{})
		sim.Place("protein", vec.New(150, 0), vec.Vec2{})
		sim.Place("ribosome", vec.New(0, 150), vec.Vec2{})
	})

	AfterEach(func() {
		Expect(sim.Close()).To(Succeed())
	})

	It("opens the clicked entity and dims the rest", func() {
		hit, ok := ctrl.ClickAt(vec.New(-150, 0))
		Expect(ok).To(BeTrue())
		Expect(hit).To(Equal("genome"))

		view := ctrl.View()
		Expect(view.ModalOpen()).To(BeTrue())
		Expect(view.Class("genome")).To(Equal(interact.ClassActive))
		Expect(view.Class("protein")).To(Equal(interact.ClassDimmed))
		Expect(radius("genome")).To(BeNumerically("~", 60, 1e-9))
	})

	It("keeps the open entity pinned while frames run", func() {
		ctrl.Click("genome")
		before, _ := sim.Entity("genome")
		Expect(sim.RunFrames(context.Background(), 30, time.Second/60)).To(Succeed())
		after, _ := sim.Entity("genome")
		Expect(after.Position).To(Equal(before.Position))
	})

	It("switches directly between entities", func() {
		ctrl.Click("genome")
		ctrl.Click("protein")

		Expect(ctrl.View().Active).To(Equal("protein"))
		Expect(radius("genome")).To(BeNumerically("~", 30, 1e-9))
		Expect(radius("protein")).To(BeNumerically("~", 60, 1e-9))
	})

	It("closes on escape and on a click in empty space", func() {
		ctrl.Click("genome")
		ctrl.Escape()
		Expect(ctrl.View().ModalOpen()).To(BeFalse())
		Expect(radius("genome")).To(BeNumerically("~", 30, 1e-9))

		ctrl.Click("protein")
		_, ok := ctrl.ClickAt(vec.New(0, -250))
		Expect(ok).To(BeFalse())
		Expect(ctrl.View().ModalOpen()).To(BeFalse())
	})

	It("ignores hover while a detail view is open", func() {
		ctrl.Click("genome")
		ctrl.PointerEnter("protein")
		Expect(ctrl.View().Hovered).To(BeEmpty())

		e, _ := sim.Entity("protein")
		Expect(e.Hovered).To(BeFalse())
	})
})
