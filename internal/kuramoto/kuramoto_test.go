package kuramoto_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/hyperlab/internal/dynamo"
	"github.com/san-kum/hyperlab/internal/generators"
	"github.com/san-kum/hyperlab/internal/hypergraph"
	"github.com/san-kum/hyperlab/internal/kuramoto"
	"github.com/san-kum/hyperlab/internal/metrics"
)

func mustEdges(edges ...[]hypergraph.ID) *hypergraph.Hypergraph {
	h, err := hypergraph.FromEdges(edges)
	Expect(err).NotTo(HaveOccurred())
	return h
}

var _ = Describe("Model", func() {
	It("indexes oscillators by node insertion order", func() {
		h := mustEdges([]hypergraph.ID{"c", "a"}, []hypergraph.ID{"a", "b", "d"})
		m, theta, err := kuramoto.New(h, kuramoto.Params{Seed: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Nodes()).To(Equal([]hypergraph.ID{"c", "a", "b", "d"}))
		Expect(theta).To(HaveLen(4))
		Expect(m.StateDim()).To(Equal(4))
	})

	It("draws phases in [0, 2π) and is reproducible per seed", func() {
		h, err := generators.Empty(200)
		Expect(err).NotTo(HaveOccurred())
		_, a, _ := kuramoto.New(h, kuramoto.Params{Seed: 9})
		_, b, _ := kuramoto.New(h, kuramoto.Params{Seed: 9})
		_, c, _ := kuramoto.New(h, kuramoto.Params{Seed: 10})
		Expect(a).To(Equal(b))
		Expect(a).NotTo(Equal(c))
		for _, t := range a {
			Expect(t).To(BeNumerically(">=", 0))
			Expect(t).To(BeNumerically("<", 2*math.Pi))
		}
	})

	It("couples dyads through sin(θj − θi)", func() {
		h := mustEdges([]hypergraph.ID{"0", "1"})
		m, _, err := kuramoto.New(h, kuramoto.Params{K2: 2, Omega: []float64{0.5, -0.5}})
		Expect(err).NotTo(HaveOccurred())
		d := m.Derive(dynamo.State{0, math.Pi / 2}, 0)
		Expect(d[0]).To(BeNumerically("~", 0.5+2, 1e-12))
		Expect(d[1]).To(BeNumerically("~", -0.5-2, 1e-12))
	})

	It("couples triangles through the second-order harmonic", func() {
		h := mustEdges([]hypergraph.ID{"0", "1", "2"})
		theta := dynamo.State{0.1, 0.7, 2.0}
		m, _, err := kuramoto.New(h, kuramoto.Params{K3: 1.5, Omega: []float64{0, 0, 0}})
		Expect(err).NotTo(HaveOccurred())

		want := func(i, j, k int) float64 {
			ti, tj, tk := theta[i], theta[j], theta[k]
			return 1.5 * (math.Sin(2*tj-tk-ti) + math.Sin(2*tk-tj-ti))
		}
		d := m.Derive(theta, 0)
		Expect(d[0]).To(BeNumerically("~", want(0, 1, 2), 1e-12))
		Expect(d[1]).To(BeNumerically("~", want(1, 0, 2), 1e-12))
		Expect(d[2]).To(BeNumerically("~", want(2, 0, 1), 1e-12))
	})

	It("ignores edges larger than three", func() {
		h := mustEdges([]hypergraph.ID{"0", "1", "2", "3"})
		m, _, _ := kuramoto.New(h, kuramoto.Params{K2: 5, K3: 5, Omega: []float64{1, 2, 3, 4}})
		Expect(m.Derive(dynamo.State{0, 1, 2, 3}, 0)).To(Equal(dynamo.State{1, 2, 3, 4}))
	})

	It("exposes the couplings as parameters", func() {
		m, _, _ := kuramoto.New(mustEdges([]hypergraph.ID{"0", "1"}), kuramoto.Params{K2: 1})
		Expect(m.SetParam("k3", 4)).To(Succeed())
		Expect(m.Params()).To(Equal(map[string]float64{"k2": 1, "k3": 4}))
		Expect(m.SetParam("gain", 1)).To(MatchError(kuramoto.ErrUnknownParam))
	})

	It("rejects bad input", func() {
		_, _, err := kuramoto.New(hypergraph.New(), kuramoto.Params{})
		Expect(err).To(MatchError(kuramoto.ErrNoNodes))

		h := mustEdges([]hypergraph.ID{"0", "1"})
		_, _, err = kuramoto.New(h, kuramoto.Params{Omega: []float64{1}})
		Expect(err).To(MatchError(kuramoto.ErrLength))
		_, _, err = kuramoto.New(h, kuramoto.Params{Theta: []float64{1, 2, 3}})
		Expect(err).To(MatchError(kuramoto.ErrLength))
	})
})

var _ = Describe("OrderParameter", func() {
	It("is one for identical phases and zero for a splay state", func() {
		r := kuramoto.OrderParameter([][]float64{
			{1, 1, 1},
			{0, 2 * math.Pi / 3, 4 * math.Pi / 3},
		})
		Expect(r[0]).To(BeNumerically("~", 1, 1e-12))
		Expect(r[1]).To(BeNumerically("~", 0, 1e-12))
	})

	It("is zero for no oscillators", func() {
		Expect(kuramoto.Order(nil)).To(BeZero())
	})
})

var _ = Describe("Simulate", func() {
	var (
		ctx context.Context
		h   *hypergraph.Hypergraph
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		h, err = generators.Complete(12, 1)
		Expect(err).NotTo(HaveOccurred())
	})

	It("records T states on the grid t = i·dt", func() {
		p := kuramoto.Params{Dt: 0.01, Timesteps: 50, Seed: 3}
		traj, err := kuramoto.Simulate(ctx, h, p)
		Expect(err).NotTo(HaveOccurred())
		Expect(traj.Theta).To(HaveLen(50))
		Expect(traj.Times).To(HaveLen(50))
		Expect(traj.Times[0]).To(BeZero())
		Expect(traj.Times[49]).To(BeNumerically("~", 0.49, 1e-12))
		Expect(traj.Theta[0]).To(HaveLen(12))
	})

	It("starts from the given phases", func() {
		theta := make([]float64, 12)
		for i := range theta {
			theta[i] = float64(i) / 10
		}
		traj, err := kuramoto.Simulate(ctx, h, kuramoto.Params{Dt: 0.01, Timesteps: 3, Theta: theta})
		Expect(err).NotTo(HaveOccurred())
		Expect(traj.Theta[0]).To(Equal(theta))
	})

	It("rotates uncoupled oscillators at their natural frequency", func() {
		omega := make([]float64, 12)
		theta := make([]float64, 12)
		for i := range omega {
			omega[i] = float64(i) - 5.5
		}
		p := kuramoto.Params{Dt: 0.002, Timesteps: 501, Omega: omega, Theta: theta}
		traj, err := kuramoto.Simulate(ctx, h, p)
		Expect(err).NotTo(HaveOccurred())
		for i, th := range traj.Final() {
			Expect(th).To(BeNumerically("~", omega[i]*1.0, 1e-9))
		}
	})

	It("synchronises identical oscillators under pairwise coupling", func() {
		omega := make([]float64, 12)
		p := kuramoto.Params{K2: 1, Dt: 0.01, Timesteps: 2000, Omega: omega, Seed: 5}
		traj, err := kuramoto.Simulate(ctx, h, p, kuramoto.WithMetrics(metrics.NewFinalOrder()))
		Expect(err).NotTo(HaveOccurred())
		r := traj.OrderParameter()
		Expect(r[len(r)-1]).To(BeNumerically(">", 0.99))
		Expect(traj.Metrics["final_order"]).To(BeNumerically("~", r[len(r)-1], 1e-12))
	})

	It("works with every registered integrator", func() {
		for _, name := range []string{"euler", "rk4", "rk45"} {
			p := kuramoto.Params{K2: 1, Dt: 0.01, Timesteps: 20, Seed: 1, Integrator: name}
			traj, err := kuramoto.Simulate(ctx, h, p)
			Expect(err).NotTo(HaveOccurred(), name)
			Expect(traj.Theta).To(HaveLen(20))
		}
	})

	It("records the uneven times of adaptive steps", func() {
		omega := make([]float64, 12)
		for i := range omega {
			omega[i] = float64(i) - 5.5
		}
		p := kuramoto.Params{Dt: 0.01, Timesteps: 41, Omega: omega, Theta: make([]float64, 12),
			Integrator: "rk45", Adaptive: true, Tolerance: 1e-9}
		traj, err := kuramoto.Simulate(ctx, h, p)
		Expect(err).NotTo(HaveOccurred())
		Expect(traj.Times).To(HaveLen(41))
		for i := 1; i < len(traj.Times); i++ {
			Expect(traj.Times[i]).To(BeNumerically(">", traj.Times[i-1]))
		}
		end := traj.Times[40]
		Expect(end).To(BeNumerically(">", 0.4))
		for i, th := range traj.Final() {
			Expect(th).To(BeNumerically("~", omega[i]*end, 1e-6))
		}

		p.Tolerance = 0
		_, err = kuramoto.Simulate(ctx, h, p)
		Expect(err).To(MatchError(kuramoto.ErrInvalidParams))
	})

	It("handles a single timestep", func() {
		traj, err := kuramoto.Simulate(ctx, h, kuramoto.Params{Dt: 0.1, Timesteps: 1, Seed: 2},
			kuramoto.WithMetrics(metrics.NewMeanOrder()))
		Expect(err).NotTo(HaveOccurred())
		Expect(traj.Theta).To(HaveLen(1))
		Expect(traj.Metrics).To(HaveKey("mean_order"))
	})

	It("validates parameters", func() {
		_, err := kuramoto.Simulate(ctx, h, kuramoto.Params{Dt: 0, Timesteps: 10})
		Expect(err).To(MatchError(kuramoto.ErrInvalidParams))
		_, err = kuramoto.Simulate(ctx, h, kuramoto.Params{Dt: 0.1, Timesteps: 0})
		Expect(err).To(MatchError(kuramoto.ErrInvalidParams))
		_, err = kuramoto.Simulate(ctx, h, kuramoto.Params{Dt: 0.1, Timesteps: 2, Integrator: "leapfrog"})
		Expect(err).To(HaveOccurred())
	})

	It("stops on a cancelled context with the partial trajectory", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		traj, err := kuramoto.Simulate(cctx, h, kuramoto.Params{Dt: 0.01, Timesteps: 100, Seed: 1})
		Expect(err).To(MatchError(context.Canceled))
		Expect(traj.Theta).To(HaveLen(1))
	})
})
