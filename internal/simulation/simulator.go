// Package simulation generates Monte-Carlo price paths with geometric
// Brownian motion and derives projection bounds from the simulated
// terminal prices.
package simulation

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/smartwealth/advisor/internal/models"
)

// ErrInsufficientHistory indicates a price series too short to estimate
// returns from. Projections must fail loudly on it rather than produce
// zeros.
var ErrInsufficientHistory = errors.New("insufficient price history")

// Simulator produces GBM price paths. Paths are independent, so they are
// fanned out over a bounded worker pool; determinism under a fixed seed
// is preserved by deriving one sub-seed per path up front.
type Simulator struct {
	seed    uint64
	seeded  bool
	workers int
}

// NewSimulator creates a simulator seeded from the clock.
func NewSimulator() *Simulator {
	return &Simulator{workers: runtime.NumCPU()}
}

// NewSeededSimulator creates a simulator with a fixed seed so runs are
// reproducible. Intended for tests.
func NewSeededSimulator(seed uint64) *Simulator {
	return &Simulator{seed: seed, seeded: true, workers: runtime.NumCPU()}
}

// Simulate generates pathCount GBM paths of horizonDays steps with dt=1:
//
//	price[t] = price[t-1] * exp((drift - 0.5·vol²) + vol·Z)
//
// The result is indexed [day][path]; the first row equals initialPrice
// for every path.
func (s *Simulator) Simulate(initialPrice, drift, volatility float64, horizonDays, pathCount int) ([][]float64, error) {
	if initialPrice <= 0 {
		return nil, fmt.Errorf("initial price must be positive, got %v", initialPrice)
	}
	if horizonDays < 1 {
		return nil, fmt.Errorf("horizon must be at least 1 day, got %d", horizonDays)
	}
	if pathCount < 1 {
		return nil, fmt.Errorf("path count must be at least 1, got %d", pathCount)
	}

	matrix := make([][]float64, horizonDays)
	for t := range matrix {
		matrix[t] = make([]float64, pathCount)
	}

	// One sub-seed per path keeps runs reproducible under a fixed seed
	// regardless of worker scheduling.
	seed := s.seed
	if !s.seeded {
		seed = uint64(time.Now().UnixNano())
	}
	seedSrc := rand.New(rand.NewSource(seed))
	seeds := make([]uint64, pathCount)
	for i := range seeds {
		seeds[i] = seedSrc.Uint64()
	}

	workerCount := s.workers
	if pathCount < workerCount {
		workerCount = pathCount
	}

	paths := make(chan int, pathCount)
	var wg sync.WaitGroup

	for w := 0; w < workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range paths {
				normal := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(seeds[p])}
				price := initialPrice
				matrix[0][p] = price
				for t := 1; t < horizonDays; t++ {
					price *= math.Exp((drift - 0.5*volatility*volatility) + volatility*normal.Rand())
					matrix[t][p] = price
				}
			}
		}()
	}

	for p := 0; p < pathCount; p++ {
		paths <- p
	}
	close(paths)
	wg.Wait()

	return matrix, nil
}

// EstimateParams derives GBM drift and volatility from a historical close
// series: the mean and sample standard deviation of daily percentage
// returns. With a single return the deviation is undefined; it is taken
// as zero rather than NaN.
func EstimateParams(series models.HistoricalSeries) (drift, volatility float64, err error) {
	if len(series) < 2 {
		return 0, 0, fmt.Errorf("%w: need at least 2 closes, got %d", ErrInsufficientHistory, len(series))
	}

	returns := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		if series[i-1] == 0 {
			return 0, 0, fmt.Errorf("zero close at index %d makes returns undefined", i-1)
		}
		returns = append(returns, (series[i]-series[i-1])/series[i-1])
	}

	drift = stat.Mean(returns, nil)
	if len(returns) > 1 {
		volatility = stat.StdDev(returns, nil)
	}
	return drift, volatility, nil
}
